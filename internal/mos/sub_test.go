package mos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fingrid/internal/tech"
	"fingrid/pkg/geometry"
)

func buildTap(t *testing.T, subType MOSType, blkPitch int) SubResult {
	t.Helper()
	res, err := BuildSubstrateRow(tech.CDSFFMPT(), SubParams{
		Lch: 18, W: 6, Fg: 6,
		SubType: subType, Threshold: "standard", BlkPitch: blkPitch,
	})
	require.NoError(t, err)
	return res
}

func TestBuildSubstrateRow(t *testing.T) {
	res := buildTap(t, PTap, 1)

	assert.Equal(t, 576, res.BlkHeight)
	assert.Equal(t, 288, res.SDCenterY)

	require.Len(t, res.Layout.Rows, 1)
	row := res.Layout.Rows[0]
	assert.Equal(t, geometry.NewInterval(161, 415), row.ODY)
	assert.Equal(t, geometry.NewInterval(141, 435), row.MDY)
	assert.Equal(t, ODSub, row.Class)
	assert.Equal(t, PTap, row.SubType)

	assert.Equal(t, geometry.NewInterval(52, 524), res.DSConnY)
	assert.Equal(t, res.DSConnY, res.GateConnY)
}

func TestBuildSubstrateRowSymmetric(t *testing.T) {
	res := buildTap(t, NTap, 1)

	// the active region is re-centered after height quantization, so the
	// boundary descriptors mirror each other
	assert.Equal(t, res.ExtTop.ODMargin, res.ExtBot.ODMargin)
	assert.Equal(t, res.ExtTop.MDMargin, res.ExtBot.MDMargin)
	assert.Equal(t, res.ExtTop.M1Margin, res.ExtBot.M1Margin)
	assert.Equal(t, 2*res.SDCenterY, res.BlkHeight)
}

func TestBuildSubstrateRowBlockPitch(t *testing.T) {
	tc := tech.CDSFFMPT()
	for _, pitch := range []int{1, 90, 100} {
		res := buildTap(t, PTap, pitch)
		assert.Zero(t, res.BlkHeight%tc.FinPitch, "pitch=%d", pitch)
		assert.Zero(t, res.BlkHeight%pitch, "pitch=%d", pitch)

		odYB := res.Layout.Rows[0].ODY.Lo
		assert.Zero(t, (odYB-tc.FinPitch/2+tc.FinH/2)%tc.FinPitch,
			"pitch=%d active region stays on the fin grid", pitch)
	}
}

func TestSelectSupplyTracks(t *testing.T) {
	m2, m3 := SelectSupplyTracks(6, nil, nil)
	assert.Equal(t, []int{0, 4, 8, 12}, m3)
	assert.Equal(t, m3, m2)

	// a dummy track claims its column first and shifts the rest
	m2, m3 = SelectSupplyTracks(6, nil, []int{2})
	assert.Equal(t, []int{2, 6, 10}, m3)
	assert.Equal(t, m3, m2)
}

func TestSelectSupplyTracksNoAdjacentPorts(t *testing.T) {
	for fg := 2; fg <= 12; fg++ {
		_, m3 := SelectSupplyTracks(fg, []int{0}, []int{2 * fg})
		for i := 1; i < len(m3); i++ {
			assert.Greater(t, m3[i]-m3[i-1], 2, "fg=%d ports %v", fg, m3)
		}
	}
}

// opCanvas counts canvas calls so substrate connection drawing can be
// checked without a full render backend.
type opCanvas struct {
	rects map[string]int
	vias  map[string]int
	wires int
	pins  map[string][]Wire
}

func newOpCanvas() *opCanvas {
	return &opCanvas{rects: map[string]int{}, vias: map[string]int{}, pins: map[string][]Wire{}}
}

func (c *opCanvas) AddRect(layer LayerSpec, _ geometry.Rect) { c.rects[layer.Name]++ }
func (c *opCanvas) AddVia(viaType string, _ geometry.Point, _, _ Enclosure, _ ViaArray) {
	c.vias[viaType]++
}
func (c *opCanvas) AddWire(layer, track int, y geometry.Interval) Wire {
	c.wires++
	return Wire{Layer: layer, Track: track, Y: y}
}
func (c *opCanvas) AddPin(name string, wires []Wire, _ bool) {
	c.pins[name] = append(c.pins[name], wires...)
}
func (c *opCanvas) SetArrayBox(geometry.Rect) {}
func (c *opCanvas) SetBoundBox(geometry.Rect) {}
func (c *opCanvas) AddBoundary(geometry.Rect) {}

type fixedGrid int

func (g fixedGrid) NearestTrack(_, coord int) int { return coord / int(g) }
func (g fixedGrid) Track(_, coord int) int        { return coord / int(g) }
func (g fixedGrid) BlockPitch(int) int            { return int(g) }

func TestConnectSubstrate(t *testing.T) {
	tc := tech.CDSFFMPT()
	res := buildTap(t, PTap, 1)

	cv := newOpCanvas()
	hasOD, err := ConnectSubstrate(cv, fixedGrid(90), tc, res.Layout, nil, nil, false, false)
	require.NoError(t, err)
	assert.True(t, hasOD)

	// p-tap connects to VSS only
	assert.NotEmpty(t, cv.pins["VSS"])
	assert.Empty(t, cv.pins["VDD"])

	// one first-metal wire per source/drain column
	assert.Equal(t, 7, cv.wires)

	// contact via array plus the poly-contact shorting vias
	assert.Equal(t, 1, cv.vias[viaM1LiAct])
	assert.Equal(t, 8, cv.vias[viaM1LiPo])
	assert.NotZero(t, cv.vias[viaM2M1])
	assert.Equal(t, cv.vias[viaM2M1], cv.vias[viaM3M2])
}

func TestConnectSubstrateNTapPin(t *testing.T) {
	tc := tech.CDSFFMPT()
	res := buildTap(t, NTap, 1)

	cv := newOpCanvas()
	hasOD, err := ConnectSubstrate(cv, fixedGrid(90), tc, res.Layout, nil, nil, false, false)
	require.NoError(t, err)
	assert.True(t, hasOD)
	assert.NotEmpty(t, cv.pins["VDD"])
	assert.Empty(t, cv.pins["VSS"])
}

func TestConnectSubstrateDummyOnly(t *testing.T) {
	tc := tech.CDSFFMPT()
	res := buildTap(t, PTap, 1)

	cv := newOpCanvas()
	_, err := ConnectSubstrate(cv, fixedGrid(90), tc, res.Layout, nil, []int{0, 4}, true, false)
	require.NoError(t, err)

	// dummy-only connections stop at the second metal
	assert.Zero(t, cv.vias[viaM3M2])
}
