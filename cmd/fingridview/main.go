// Command fingridview solves the canonical analog row stack and shows it in
// a desktop window.
package main

import (
	"flag"
	"fmt"
	"os"

	"fingrid/internal/cli"
	"fingrid/internal/mos"
	"fingrid/internal/render"
	"fingrid/internal/tech"
	"fingrid/internal/viewer"
)

func main() {
	var (
		techPath  = flag.String("tech", "", "TOML process constant table")
		lch       = flag.Int("lch", 18, "channel length in resolution units")
		fg        = flag.Int("fg", 6, "finger count")
		nchW      = flag.Int("nch-w", 4, "nch active-region width in fins")
		pchW      = flag.Int("pch-w", 4, "pch active-region width in fins")
		tapW      = flag.Int("tap-w", 6, "tap active-region width in fins")
		threshold = flag.String("threshold", "standard", "threshold flavor")
	)
	flag.Parse()

	if err := run(*techPath, *lch, *fg, *nchW, *pchW, *tapW, *threshold); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(techPath string, lch, fg, nchW, pchW, tapW int, threshold string) error {
	t := tech.CDSFFMPT()
	if techPath != "" {
		var err error
		t, err = tech.Load(techPath)
		if err != nil {
			return err
		}
	}

	rec, sdPitch, err := cli.BuildStack(t, cli.StackParams{
		Lch: lch, Fg: fg,
		NChW: nchW, PChW: pchW, TapW: tapW,
		Thres: mos.Threshold(threshold),
	})
	if err != nil {
		return err
	}

	img, err := render.Rasterize(rec, render.RasterOptions{
		Grid:   render.NewUniformGrid(sdPitch),
		MaxDim: 2048,
	})
	if err != nil {
		return err
	}
	viewer.Show("fingrid", img)
	return nil
}
