package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"fingrid/internal/render"
	"fingrid/internal/tech"
)

// blockFlags are the flags shared by every block-solving command.
type blockFlags struct {
	techPath string
	out      string
	jsonOut  bool

	lch       int
	fg        int
	threshold string
}

func (f *blockFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.techPath, "tech", "", "TOML process constant table (default: built-in cds_ff_mpt)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output file; format from extension (.svg, .pdf, .png)")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "dump the solved geometry as JSON on stdout")
	cmd.Flags().IntVar(&f.lch, "lch", 18, "channel length in resolution units")
	cmd.Flags().IntVar(&f.fg, "fg", 6, "finger count")
	cmd.Flags().StringVar(&f.threshold, "threshold", "standard", "threshold flavor (fast, standard, low_power)")
}

func (f *blockFlags) loadTech() (*tech.Tech, error) {
	if f.techPath == "" {
		return tech.CDSFFMPT(), nil
	}
	return tech.Load(f.techPath)
}

// emit writes the command outputs: the JSON payload when requested, and the
// recording rendered to the requested file.
func (f *blockFlags) emit(ctx context.Context, rec *render.Recorder, grid *render.UniformGrid, payload any) error {
	logger := loggerFromContext(ctx)

	if f.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	}
	if f.out == "" {
		return nil
	}

	file, err := os.Create(f.out)
	if err != nil {
		return err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(f.out)) {
	case ".svg":
		err = render.WriteSVG(file, rec, render.VectorOptions{Grid: grid})
	case ".pdf":
		err = render.WritePDF(file, rec, render.VectorOptions{Grid: grid})
	case ".png":
		err = render.WritePNG(file, rec, render.RasterOptions{Grid: grid, MaxDim: 4096})
	default:
		err = fmt.Errorf("unsupported output format %q", filepath.Ext(f.out))
	}
	if err != nil {
		return err
	}
	logger.Info("wrote output", "path", f.out, "ops", len(rec.Ops))
	return nil
}
