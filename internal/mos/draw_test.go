package mos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fingrid/internal/tech"
	"fingrid/pkg/geometry"
)

// traceCanvas records rect calls in emit order.
type traceCanvas struct {
	opCanvas
	layers     []LayerSpec
	boxes      []geometry.Rect
	boundaries int
}

func newTraceCanvas() *traceCanvas {
	return &traceCanvas{opCanvas: *newOpCanvas()}
}

func (c *traceCanvas) AddRect(layer LayerSpec, box geometry.Rect) {
	c.opCanvas.AddRect(layer, box)
	c.layers = append(c.layers, layer)
	c.boxes = append(c.boxes, box)
}

func (c *traceCanvas) AddBoundary(box geometry.Rect) { c.boundaries++ }

func (c *traceCanvas) rect(layer LayerSpec) (geometry.Rect, bool) {
	for i, l := range c.layers {
		if l == layer {
			return c.boxes[i], true
		}
	}
	return geometry.Rect{}, false
}

func TestDrawLayoutDeviceRow(t *testing.T) {
	tc := tech.CDSFFMPT()
	res := buildRow(t, 4, NCh)

	cv := newTraceCanvas()
	DrawLayout(cv, tc, res.Layout)

	assert.Equal(t, 1, cv.rects["Active"])
	assert.Equal(t, 6, cv.rects["Poly"])
	assert.Equal(t, 7, cv.rects["LiAct"])
	assert.Equal(t, 1, cv.boundaries)

	// all six fingers sit on the active region, so every poly is live
	for i, l := range cv.layers {
		if l.Name == "Poly" {
			assert.Equal(t, "drawing", l.Purpose, "poly %d", i)
		}
	}

	// fin area rounds outward to the fin grid from the block interval
	fin, ok := cv.rect(layerFinArea)
	require.True(t, ok)
	assert.Equal(t, geometry.NewRect(0, -31, 540, 511), fin)

	// rows emit before block layers
	assert.Equal(t, "Active", cv.layers[0].Name)
}

func TestDrawLayoutDSDummy(t *testing.T) {
	tc := tech.CDSFFMPT()
	res, err := BuildDeviceRow(tc, RowParams{
		Lch: 18, W: 4, Fg: 6, MOSType: NCh, Threshold: "standard", DSDummy: true,
	})
	require.NoError(t, err)

	cv := newTraceCanvas()
	DrawLayout(cv, tc, res.Layout)

	// dummy source/drain suppresses the active rect but keeps poly and contact
	assert.Zero(t, cv.rects["Active"])
	assert.Equal(t, 6, cv.rects["Poly"])
	assert.Equal(t, 7, cv.rects["LiAct"])
}

func TestDrawLayoutSingleFingerMirrorsEdge(t *testing.T) {
	tc := tech.CDSFFMPT()
	info := LayoutInfo{
		Kind:    BlockEdge,
		Lch:     18,
		MDW:     tc.MDW,
		Fg:      1,
		SDPitch: 90,
		ArrayY:  geometry.NewInterval(0, 96),
		DrawOD:  true,
		Rows: []RowInfo{{
			POY: geometry.NewInterval(0, 96),
		}},
		EdgeR: Explicit(EdgeInfo{Class: ODDevice}),
	}

	cv := newTraceCanvas()
	DrawLayout(cv, tc, info)

	// the unset left side mirrors the right, so the lone finger is live
	require.Equal(t, 1, cv.rects["Poly"])
	assert.Equal(t, "drawing", cv.layers[0].Purpose)
}

func TestDrawLayoutEdgeContactSuppression(t *testing.T) {
	tc := tech.CDSFFMPT()
	info := LayoutInfo{
		Kind:    BlockMOS,
		Lch:     18,
		MDW:     tc.MDW,
		Fg:      2,
		SDPitch: 90,
		ArrayY:  geometry.NewInterval(0, 96),
		DrawOD:  true,
		Rows: []RowInfo{{
			ODX:   []geometry.Interval{geometry.NewInterval(0, 2)},
			ODY:   geometry.NewInterval(17, 65),
			MDY:   geometry.NewInterval(10, 72),
			Class: ODDevice,
		}},
		EdgeL: Explicit(EdgeInfo{Class: ODNone}),
	}

	cv := newTraceCanvas()
	DrawLayout(cv, tc, info)

	// the explicit empty left edge drops the contact on that boundary
	assert.Equal(t, 2, cv.rects["LiAct"])
}

func TestDrawLayoutGuardRingContacts(t *testing.T) {
	tc := tech.CDSFFMPT()
	info := LayoutInfo{
		Kind:    BlockGRSub,
		Lch:     18,
		MDW:     tc.MDW,
		Fg:      6,
		SDPitch: 90,
		ArrayY:  geometry.NewInterval(0, 96),
		DrawOD:  true,
		Rows: []RowInfo{{
			ODX:   []geometry.Interval{geometry.NewInterval(0, 6)},
			ODY:   geometry.NewInterval(17, 65),
			MDY:   geometry.NewInterval(10, 72),
			Class: ODSub,
		}},
	}

	cv := newTraceCanvas()
	DrawLayout(cv, tc, info)

	// the outermost contacts belong to the abutting guard-ring blocks
	assert.Equal(t, 5, cv.rects["LiAct"])
}

func TestDrawLayoutZeroHeight(t *testing.T) {
	tc := tech.CDSFFMPT()
	info := LayoutInfo{
		Kind:    BlockEnd,
		Lch:     18,
		MDW:     tc.MDW,
		Fg:      6,
		SDPitch: 90,
		ArrayY:  geometry.NewInterval(0, 0),
		DrawOD:  true,
		Layers: []LayerEntry{{
			Layer: layerCutPoly,
			Y:     geometry.NewInterval(-30, 30),
		}},
		Fill: []FillInfo{{
			Layer:  layerM1,
			XIntvs: []geometry.Interval{geometry.NewInterval(0, 40)},
			YIntvs: []geometry.Interval{geometry.NewInterval(0, 40)},
		}},
	}

	cv := newTraceCanvas()
	DrawLayout(cv, tc, info)

	// the shared cut still draws, but a zero-height block has no boundary
	// and no fill
	assert.Equal(t, 1, cv.rects["CutPoly"])
	assert.Zero(t, cv.boundaries)
	assert.Zero(t, cv.rects["M1"])
}
