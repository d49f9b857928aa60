package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"fingrid/internal/mos"
	"fingrid/internal/render"
	"fingrid/internal/tech"
)

func newStackCmd() *cobra.Command {
	var (
		flags blockFlags
		nchW  int
		pchW  int
		tapW  int
	)
	cmd := &cobra.Command{
		Use:   "stack",
		Short: "Solve and render a complete analog row stack",
		Long: `stack assembles the canonical analog row stack from bottom to top: end
terminator, p-tap, nch row, pch row, n-tap, end terminator, with the minimal
legal extension block between each pair of rows.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := flags.loadTech()
			if err != nil {
				return err
			}
			rec, sdPitch, err := BuildStack(t, StackParams{
				Lch: flags.lch, Fg: flags.fg,
				Thres: mos.Threshold(flags.threshold),
				NChW:  nchW, PChW: pchW, TapW: tapW,
			})
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("stack solved",
				"height", rec.BoundBox.H(), "width", rec.BoundBox.W())
			return flags.emit(cmd.Context(), rec, render.NewUniformGrid(sdPitch), nil)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&nchW, "nch-w", 4, "nch active-region width in fins")
	cmd.Flags().IntVar(&pchW, "pch-w", 4, "pch active-region width in fins")
	cmd.Flags().IntVar(&tapW, "tap-w", 6, "tap active-region width in fins")
	return cmd
}

// StackParams sizes the canonical analog row stack.
type StackParams struct {
	Lch, Fg          int
	Thres            mos.Threshold
	NChW, PChW, TapW int
}

// BuildStack solves every block of the stack, then replays them bottom-up
// into one recording at cumulative Y offsets.  The top terminator is drawn
// mirrored.  It returns the recording and the source/drain pitch for track
// mapping.
func BuildStack(t *tech.Tech, p StackParams) (*render.Recorder, int, error) {
	ptap, err := mos.BuildSubstrateRow(t, mos.SubParams{
		Lch: p.Lch, W: p.TapW, Fg: p.Fg,
		SubType: mos.PTap, Threshold: p.Thres, BlkPitch: 1,
	})
	if err != nil {
		return nil, 0, err
	}
	ntap, err := mos.BuildSubstrateRow(t, mos.SubParams{
		Lch: p.Lch, W: p.TapW, Fg: p.Fg,
		SubType: mos.NTap, Threshold: p.Thres, BlkPitch: 1,
	})
	if err != nil {
		return nil, 0, err
	}
	nch, err := mos.BuildDeviceRow(t, mos.RowParams{
		Lch: p.Lch, W: p.NChW, MOSType: mos.NCh, Threshold: p.Thres, Fg: p.Fg,
	})
	if err != nil {
		return nil, 0, err
	}
	pch, err := mos.BuildDeviceRow(t, mos.RowParams{
		Lch: p.Lch, W: p.PChW, MOSType: mos.PCh, Threshold: p.Thres, Fg: p.Fg,
	})
	if err != nil {
		return nil, 0, err
	}
	endBot, err := mos.BuildEndRow(t, mos.EndParams{
		Lch: p.Lch, SubType: mos.PTap, Threshold: p.Thres,
		Fg: p.Fg, IsEnd: true, BlkPitch: 1,
	})
	if err != nil {
		return nil, 0, err
	}
	endTop, err := mos.BuildEndRow(t, mos.EndParams{
		Lch: p.Lch, SubType: mos.NTap, Threshold: p.Thres,
		Fg: p.Fg, IsEnd: true, BlkPitch: 1,
	})
	if err != nil {
		return nil, 0, err
	}

	grid := render.NewUniformGrid(nch.SDPitch)
	master := render.NewRecorder()
	y := 0

	draw := func(layout mos.LayoutInfo, height int) {
		rec := render.NewRecorder()
		mos.DrawLayout(rec, t, layout)
		master.Merge(rec, 0, y)
		y += height
	}
	drawExt := func(bot, top mos.ExtInfo) error {
		widths, err := mos.LegalExtensionWidths(t, p.Lch, top, bot)
		if err != nil {
			return err
		}
		h, err := smallestLegal(widths, 0)
		if err != nil {
			return err
		}
		ext, err := mos.BuildExtension(t, mos.ExtParams{
			Lch: p.Lch, Fg: p.Fg, W: h, Top: top, Bot: bot,
		})
		if err != nil {
			return err
		}
		draw(ext.Layout, h*t.FinPitch)
		return nil
	}

	draw(endBot.Layout, endBot.Layout.ArrayY.Hi)

	tapRec := render.NewRecorder()
	mos.DrawLayout(tapRec, t, ptap.Layout)
	if _, err := mos.ConnectSubstrate(tapRec, grid, t, ptap.Layout, nil, nil, false, false); err != nil {
		return nil, 0, err
	}
	master.Merge(tapRec, 0, y)
	y += ptap.BlkHeight

	if err := drawExt(ptap.ExtTop, nch.ExtBot); err != nil {
		return nil, 0, err
	}
	draw(nch.Layout, nch.Layout.ArrayY.Hi)
	if err := drawExt(nch.ExtTop, pch.ExtBot); err != nil {
		return nil, 0, err
	}
	draw(pch.Layout, pch.Layout.ArrayY.Hi)
	if err := drawExt(pch.ExtTop, ntap.ExtBot); err != nil {
		return nil, 0, err
	}

	tapRec = render.NewRecorder()
	mos.DrawLayout(tapRec, t, ntap.Layout)
	if _, err := mos.ConnectSubstrate(tapRec, grid, t, ntap.Layout, nil, nil, false, false); err != nil {
		return nil, 0, err
	}
	master.Merge(tapRec, 0, y)
	y += ntap.BlkHeight

	endRec := render.NewRecorder()
	mos.DrawLayout(endRec, t, endTop.Layout)
	master.MergeFlipped(endRec, y+endTop.Layout.ArrayY.Hi)

	return master, nch.SDPitch, nil
}

// smallestLegal picks the smallest legal extension height of at least minH,
// falling back to the largest available.
func smallestLegal(widths []int, minH int) (int, error) {
	for _, w := range widths {
		if w >= minH {
			return w, nil
		}
	}
	if n := len(widths); n > 0 {
		return widths[n-1], nil
	}
	return 0, fmt.Errorf("%w: no legal extension height", mos.ErrIllegalExtensionHeight)
}
