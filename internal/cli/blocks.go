package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"fingrid/internal/mos"
	"fingrid/internal/render"
)

func newRowCmd() *cobra.Command {
	var (
		flags   blockFlags
		w       int
		mosType string
		dsDummy bool
	)
	cmd := &cobra.Command{
		Use:   "row",
		Short: "Solve a single transistor row",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := flags.loadTech()
			if err != nil {
				return err
			}
			mt, err := mos.ParseMOSType(mosType)
			if err != nil {
				return err
			}
			res, err := mos.BuildDeviceRow(t, mos.RowParams{
				Lch:       flags.lch,
				W:         w,
				MOSType:   mt,
				Threshold: mos.Threshold(flags.threshold),
				Fg:        flags.fg,
				DSDummy:   dsDummy,
			})
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("row solved",
				"height", res.Layout.ArrayY.Hi, "sd_yc", res.SDCenterY)

			rec := render.NewRecorder()
			mos.DrawLayout(rec, t, res.Layout)
			return flags.emit(cmd.Context(), rec, render.NewUniformGrid(res.SDPitch), res)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&w, "w", 4, "active-region width in fins")
	cmd.Flags().StringVar(&mosType, "type", "nch", "transistor type (nch, pch)")
	cmd.Flags().BoolVar(&dsDummy, "ds-dummy", false, "suppress the active region")
	return cmd
}

func newExtCmd() *cobra.Command {
	var (
		flags  blockFlags
		height int
		botW   int
		topW   int
	)
	cmd := &cobra.Command{
		Use:   "ext",
		Short: "Solve the extension block between an nch and a pch row",
		Long: `ext solves the extension block between a standard nch row below and pch row
above.  Without --height it lists the legal extension heights (in fin
pitches) and exits; with --height it solves and renders the block.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := flags.loadTech()
			if err != nil {
				return err
			}
			thres := mos.Threshold(flags.threshold)
			bot, err := mos.BuildDeviceRow(t, mos.RowParams{
				Lch: flags.lch, W: botW, MOSType: mos.NCh, Threshold: thres, Fg: flags.fg,
			})
			if err != nil {
				return err
			}
			top, err := mos.BuildDeviceRow(t, mos.RowParams{
				Lch: flags.lch, W: topW, MOSType: mos.PCh, Threshold: thres, Fg: flags.fg,
			})
			if err != nil {
				return err
			}

			widths, err := mos.LegalExtensionWidths(t, flags.lch, top.ExtBot, bot.ExtTop)
			if err != nil {
				return err
			}
			if height < 0 {
				fmt.Fprintln(cmd.OutOrStdout(), widths)
				return nil
			}

			res, err := mos.BuildExtension(t, mos.ExtParams{
				Lch: flags.lch, Fg: flags.fg, W: height,
				Top: top.ExtBot, Bot: bot.ExtTop,
			})
			if err != nil {
				return err
			}
			rec := render.NewRecorder()
			mos.DrawLayout(rec, t, res.Layout)
			return flags.emit(cmd.Context(), rec, render.NewUniformGrid(bot.SDPitch), res)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&height, "height", -1, "extension height in fin pitches")
	cmd.Flags().IntVar(&botW, "bot-w", 4, "width in fins of the row below")
	cmd.Flags().IntVar(&topW, "top-w", 4, "width in fins of the row above")
	return cmd
}

func newTapCmd() *cobra.Command {
	var (
		flags   blockFlags
		w       int
		subType string
		connect bool
	)
	cmd := &cobra.Command{
		Use:   "tap",
		Short: "Solve a substrate tap row",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := flags.loadTech()
			if err != nil {
				return err
			}
			st, err := mos.ParseMOSType(subType)
			if err != nil {
				return err
			}
			res, err := mos.BuildSubstrateRow(t, mos.SubParams{
				Lch: flags.lch, W: w, Fg: flags.fg,
				SubType:   st,
				Threshold: mos.Threshold(flags.threshold),
				BlkPitch:  1,
			})
			if err != nil {
				return err
			}

			rec := render.NewRecorder()
			mos.DrawLayout(rec, t, res.Layout)
			grid := render.NewUniformGrid(res.Layout.SDPitch)
			if connect {
				hasOD, err := mos.ConnectSubstrate(rec, grid, t, res.Layout, nil, nil, false, false)
				if err != nil {
					return err
				}
				loggerFromContext(cmd.Context()).Debug("substrate connected", "has_od", hasOD)
			}
			return flags.emit(cmd.Context(), rec, grid, res)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&w, "w", 6, "tap active-region width in fins")
	cmd.Flags().StringVar(&subType, "type", "ptap", "tap type (ptap, ntap)")
	cmd.Flags().BoolVar(&connect, "connect", false, "also draw the supply connection")
	return cmd
}

func newEndCmd() *cobra.Command {
	var (
		flags   blockFlags
		subType string
		isEnd   bool
	)
	cmd := &cobra.Command{
		Use:   "end",
		Short: "Solve a row-stack terminator",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := flags.loadTech()
			if err != nil {
				return err
			}
			st, err := mos.ParseMOSType(subType)
			if err != nil {
				return err
			}
			res, err := mos.BuildEndRow(t, mos.EndParams{
				Lch:       flags.lch,
				SubType:   st,
				Threshold: mos.Threshold(flags.threshold),
				Fg:        flags.fg,
				IsEnd:     isEnd,
				BlkPitch:  1,
			})
			if err != nil {
				return err
			}
			rec := render.NewRecorder()
			mos.DrawLayout(rec, t, res.Layout)
			return flags.emit(cmd.Context(), rec, render.NewUniformGrid(res.Layout.SDPitch), res)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&subType, "type", "ptap", "substrate type behind the terminator (ptap, ntap)")
	cmd.Flags().BoolVar(&isEnd, "is-end", true, "true array end rather than abutment")
	return cmd
}
