package mos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fingrid/internal/tech"
	"fingrid/pkg/geometry"
)

// wideODExt is an extension context whose active regions sit far from the
// boundary, forcing the dummy regime and a forbidden height gap.
func wideODExt(mt MOSType) ExtInfo {
	return ExtInfo{
		ODMargin: 300,
		MType:    mt,
		RowType:  mt,
		Thres:    "standard",
		POTypes:  []bool{true, true, true, true, true, true},
		EdgeL:    EdgeInfo{Class: ODDevice},
		EdgeR:    EdgeInfo{Class: ODDevice},
	}
}

func TestLegalExtensionWidthsConnected(t *testing.T) {
	tc := tech.CDSFFMPT()
	bot := buildRow(t, 4, NCh)
	top := buildRow(t, 4, PCh)

	widths, err := LegalExtensionWidths(tc, 18, top.ExtBot, bot.ExtTop)
	require.NoError(t, err)

	// the no-dummy and with-dummy regimes connect, so only the minimum
	// is returned
	assert.Equal(t, []int{2}, widths)
}

func TestLegalExtensionWidthsForbiddenGap(t *testing.T) {
	tc := tech.CDSFFMPT()

	widths, err := LegalExtensionWidths(tc, 18, wideODExt(PCh), wideODExt(NCh))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4, 6}, widths)
}

func TestBuildExtensionZeroHeight(t *testing.T) {
	tc := tech.CDSFFMPT()
	bot := buildRow(t, 4, NCh)
	top := buildRow(t, 4, PCh)

	res, err := BuildExtension(tc, ExtParams{
		Lch: 18, Fg: 6, W: 0, Top: top.ExtBot, Bot: bot.ExtTop,
	})
	require.NoError(t, err)

	// degenerate block: just the shared boundary cut
	assert.Empty(t, res.Layout.Rows)
	require.Len(t, res.Layout.Layers, 1)
	assert.Equal(t, layerCutPoly, res.Layout.Layers[0].Layer)
	assert.Equal(t, geometry.NewInterval(-30, 30), res.Layout.Layers[0].Y)
}

func TestBuildExtensionNegativeHeight(t *testing.T) {
	tc := tech.CDSFFMPT()
	_, err := BuildExtension(tc, ExtParams{Lch: 18, Fg: 6, W: -1})
	require.ErrorIs(t, err, ErrIllegalExtensionHeight)
}

func TestBuildExtensionNoDummy(t *testing.T) {
	tc := tech.CDSFFMPT()
	bot := buildRow(t, 4, NCh)
	top := buildRow(t, 4, PCh)

	res, err := BuildExtension(tc, ExtParams{
		Lch: 18, Fg: 6, W: 2, Top: top.ExtBot, Bot: bot.ExtTop,
	})
	require.NoError(t, err)

	// short block: one shared cut at the center, poly carried by the
	// flanking rows
	require.Len(t, res.Layout.AdjRows, 2)
	assert.Equal(t, geometry.NewInterval(0, 48), res.Layout.AdjRows[0].POY)
	assert.Equal(t, geometry.NewInterval(48, 96), res.Layout.AdjRows[1].POY)

	require.Len(t, res.Layout.Rows, 1)
	assert.False(t, res.Layout.Rows[0].ODY.IsPhysical())

	// the implants split on the cut, transistor flavors on their own sides
	require.Len(t, res.Layout.Implants, 2)
	assert.Equal(t, NCh, res.Layout.Implants[0].MType)
	assert.Equal(t, geometry.NewInterval(0, 48), res.Layout.Implants[0].ImpY)
	assert.Equal(t, PCh, res.Layout.Implants[1].MType)
	assert.Equal(t, geometry.NewInterval(48, 96), res.Layout.Implants[1].ImpY)
}

func TestBuildExtensionSingleDummy(t *testing.T) {
	tc := tech.CDSFFMPT()

	res, err := BuildExtension(tc, ExtParams{
		Lch: 18, Fg: 6, W: 6, Top: wideODExt(PCh), Bot: wideODExt(NCh),
	})
	require.NoError(t, err)

	require.Len(t, res.Layout.Rows, 1)
	row := res.Layout.Rows[0]
	assert.Equal(t, ODDummy, row.Class)
	assert.Equal(t, geometry.NewInterval(113, 175), row.ODY)
	assert.Equal(t, geometry.NewInterval(93, 195), row.MDY)
	assert.Equal(t, []geometry.Interval{geometry.NewInterval(0, 6)}, row.ODX)
	assert.Equal(t, PTap, row.SubType)

	// one dummy region: the implant split hugs its enclosure, p side wins
	require.Len(t, res.Layout.Implants, 2)
	assert.Equal(t, NCh, res.Layout.Implants[0].MType)
	assert.Equal(t, geometry.NewInterval(0, 220), res.Layout.Implants[0].ImpY)
	assert.Equal(t, PCh, res.Layout.Implants[1].MType)
	assert.Equal(t, geometry.NewInterval(220, 288), res.Layout.Implants[1].ImpY)

	assert.Equal(t, EdgeInfo{Class: ODDummy}, res.EdgeL.Edge)
}

func TestBuildExtensionSingleDummySpansGap(t *testing.T) {
	tc := tech.CDSFFMPT()
	bot := buildRow(t, 4, NCh)
	top := buildRow(t, 4, PCh)

	// tall block, one dummy: the dummy is sized from the whole gap, so it
	// grows until both flanking spacings are legal instead of staying at
	// the packing minimum
	res, err := BuildExtension(tc, ExtParams{
		Lch: 18, Fg: 6, W: 34, Top: top.ExtBot, Bot: bot.ExtTop,
	})
	require.NoError(t, err)

	require.Len(t, res.Layout.Rows, 1)
	row := res.Layout.Rows[0]
	assert.Equal(t, geometry.NewInterval(689, 1135), row.ODY)
	assert.Equal(t, geometry.NewInterval(669, 1155), row.MDY)
}

func TestBuildExtensionSingleDummyGapBound(t *testing.T) {
	tc := tech.CDSFFMPT()
	bot := buildRow(t, 4, NCh).ExtTop
	top := buildRow(t, 4, PCh).ExtBot

	finP := tc.FinPitch
	finP2 := finP / 2
	finH2 := tc.FinH / 2

	for w := 10; w <= 44; w++ {
		res, err := BuildExtension(tc, ExtParams{
			Lch: 18, Fg: 6, W: w, Top: top, Bot: bot,
		})
		require.NoError(t, err, "w=%d", w)
		require.Len(t, res.Layout.Rows, 1, "w=%d", w)
		odY := res.Layout.Rows[0].ODY
		require.True(t, odY.IsPhysical(), "w=%d", w)

		// neighboring active regions in inclusive fin indices
		yt := w * finP
		botFin := geometry.FloorDiv(-bot.ODMargin-finP2-finH2, finP)
		topFin := geometry.FloorDiv(yt+top.ODMargin-finP2+finH2, finP)
		dumBotFin := (odY.Lo - finP2 + finH2) / finP
		dumTopFin := (odY.Hi - finP2 - finH2) / finP

		assert.LessOrEqual(t, dumBotFin-botFin, tc.ODSpNfinMax,
			"w=%d bottom active spacing", w)
		assert.LessOrEqual(t, topFin-dumTopFin, tc.ODSpNfinMax,
			"w=%d top active spacing", w)
	}
}

func TestBuildExtensionEveryLegalHeight(t *testing.T) {
	tc := tech.CDSFFMPT()
	bot := wideODExt(NCh)
	top := wideODExt(PCh)

	widths, err := LegalExtensionWidths(tc, 18, top, bot)
	require.NoError(t, err)
	for _, w := range widths {
		res, err := BuildExtension(tc, ExtParams{
			Lch: 18, Fg: 6, W: w, Top: top, Bot: bot,
		})
		require.NoError(t, err, "w=%d", w)
		assert.Equal(t, geometry.NewInterval(0, w*tc.FinPitch), res.Layout.ArrayY, "w=%d", w)
		require.Len(t, res.Layout.Implants, 2, "w=%d", w)
		assert.Equal(t, res.Layout.Implants[0].ImpY.Hi, res.Layout.Implants[1].ImpY.Lo,
			"w=%d implants tile the block", w)
	}
}

func TestBuildExtensionThresholdTieBreak(t *testing.T) {
	tc := tech.CDSFFMPT()

	bot := wideODExt(NCh)
	top := wideODExt(NCh)
	bot.Thres = "hvt"
	top.Thres = "lvt"

	// same flavor, different thresholds: the tie-break is by string
	// order, so the hvt bottom takes the lower split candidate
	res, err := BuildExtension(tc, ExtParams{
		Lch: 18, Fg: 6, W: 6, Top: top, Bot: bot,
	})
	require.NoError(t, err)
	require.Len(t, res.Layout.Implants, 2)
	assert.Equal(t, Threshold("hvt"), res.Layout.Implants[0].Thres)
	assert.Equal(t, Threshold("lvt"), res.Layout.Implants[1].Thres)
	assert.Equal(t, geometry.NewInterval(0, 68), res.Layout.Implants[0].ImpY)
	assert.Equal(t, geometry.NewInterval(68, 288), res.Layout.Implants[1].ImpY)
}
