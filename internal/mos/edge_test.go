package mos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fingrid/internal/tech"
	"fingrid/pkg/geometry"
)

func TestBuildEndRowAbutment(t *testing.T) {
	res, err := BuildEndRow(tech.CDSFFMPT(), EndParams{
		Lch: 18, SubType: PTap, Threshold: "standard", Fg: 6, IsEnd: false, BlkPitch: 1,
	})
	require.NoError(t, err)

	// array abutment: zero-height block, just the shared cut
	assert.Equal(t, geometry.NewInterval(0, 0), res.Layout.ArrayY)
	assert.Empty(t, res.Layout.AdjRows)
	require.Len(t, res.Layout.Layers, 1)
	assert.Equal(t, layerCutPoly, res.Layout.Layers[0].Layer)
	assert.Equal(t, geometry.NewInterval(-30, 30), res.Layout.Layers[0].Y)
}

func TestBuildEndRowIsEnd(t *testing.T) {
	res, err := BuildEndRow(tech.CDSFFMPT(), EndParams{
		Lch: 18, SubType: PTap, Threshold: "standard", Fg: 6, IsEnd: true, BlkPitch: 1,
	})
	require.NoError(t, err)

	// the block shifts up so every layer stays in the first quadrant
	assert.Equal(t, geometry.NewInterval(0, 48), res.Layout.ArrayY)
	for _, le := range res.Layout.Layers {
		assert.GreaterOrEqual(t, le.Y.Lo, 0, "layer %s", le.Layer.Name)
	}

	require.Len(t, res.Layout.Layers, 3)
	assert.Equal(t, layerCutPoly, res.Layout.Layers[0].Layer)
	assert.Equal(t, geometry.NewInterval(18, 78), res.Layout.Layers[0].Y)
	assert.Equal(t, layerFinArea, res.Layout.Layers[1].Layer)
	assert.Equal(t, geometry.NewInterval(17, 79), res.Layout.Layers[1].Y)
	assert.Equal(t, "Psvt", res.Layout.Layers[2].Layer.Name)

	// poly stub under the cut
	require.Len(t, res.Layout.AdjRows, 1)
	assert.Equal(t, geometry.NewInterval(44, 48), res.Layout.AdjRows[0].POY)
	require.Len(t, res.EdgeL.AdjRows, 1)
}

func TestEdgeGeometry(t *testing.T) {
	tc := tech.CDSFFMPT()
	g := fixedGrid(80)

	geom, err := EdgeGeometry(g, tc, 18, 0, 3, true)
	require.NoError(t, err)
	assert.Equal(t, 3, geom.OuterFg)
	assert.Equal(t, 0, geom.DXEdge)
	assert.Equal(t, 2, geom.CPOXL)
	assert.Equal(t, 270, geom.EdgeWidth)

	geom, err = EdgeGeometry(g, tc, 18, 2, 3, false)
	require.NoError(t, err)
	assert.Equal(t, 0, geom.OuterFg)
	assert.Equal(t, 6, geom.GRSubFg)
	assert.Equal(t, 2, geom.GRSepFg)
	assert.Equal(t, 720, geom.EdgeWidth)
}

func TestEdgeGeometryInvalidGuardRing(t *testing.T) {
	_, err := EdgeGeometry(fixedGrid(80), tech.CDSFFMPT(), 18, 1, 3, false)
	require.ErrorIs(t, err, ErrInvalidGuardRingWidth)
}

func TestOuterEdge(t *testing.T) {
	tc := tech.CDSFFMPT()
	row := buildRow(t, 4, NCh)

	out, err := OuterEdge(fixedGrid(80), tc, 0, row.Layout, 3, true, AdjBlockInfo{
		Edge: Explicit(row.EdgeL.Edge),
	})
	require.NoError(t, err)

	assert.Equal(t, BlockEdge, out.Kind)
	assert.Equal(t, 3, out.Fg)
	require.Len(t, out.Rows, 1)
	assert.Empty(t, out.Rows[0].ODX, "edge blocks carry no active region")
	assert.Len(t, out.Layers, len(row.Layout.Layers))

	// explicit empty left edge keeps the boundary contact off
	assert.True(t, out.EdgeL.Valid)
	assert.False(t, out.EdgeL.Edge.DrawsContact())

	require.Len(t, out.Fill, 1)
	assert.Equal(t, []geometry.Interval{geometry.NewInterval(70, 110)}, out.Fill[0].XIntvs)
}

func TestOuterEdgeGuardRingImplants(t *testing.T) {
	tc := tech.CDSFFMPT()
	row := buildRow(t, 4, PCh)

	out, err := OuterEdge(fixedGrid(80), tc, 2, row.Layout, 3, false, AdjBlockInfo{})
	require.NoError(t, err)
	assert.Equal(t, BlockGREdge, out.Kind)

	// the pch implant context converts to the n-tap flavor
	names := make([]string, 0, len(out.Layers))
	for _, le := range out.Layers {
		names = append(names, le.Layer.Name)
	}
	assert.Contains(t, names, "NWell")
	assert.Contains(t, names, "Nsvt")
	assert.NotContains(t, names, "Psvt")
}

func TestGuardRingSub(t *testing.T) {
	tc := tech.CDSFFMPT()
	tap := buildTap(t, PTap, 1)

	out, err := GuardRingSub(tc, 2, tap.Layout)
	require.NoError(t, err)

	assert.Equal(t, BlockGRSub, out.Kind)
	assert.Equal(t, 6, out.Fg)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, []geometry.Interval{geometry.NewInterval(2, 4)}, out.Rows[0].ODX)
	assert.Equal(t, ODSub, out.Rows[0].Class)

	_, err = GuardRingSub(tc, 1, tap.Layout)
	require.ErrorIs(t, err, ErrInvalidGuardRingWidth)
}

func TestGuardRingSep(t *testing.T) {
	tc := tech.CDSFFMPT()
	row := buildRow(t, 4, NCh)

	out, err := GuardRingSep(tc, row.Layout, AdjBlockInfo{Edge: Explicit(row.EdgeL.Edge)})
	require.NoError(t, err)
	assert.Equal(t, BlockGRSep, out.Kind)
	assert.Equal(t, 2, out.Fg)
	require.Len(t, out.Fill, 1)
	assert.Equal(t, []geometry.Interval{geometry.NewInterval(-20, 20)}, out.Fill[0].XIntvs)
}

func TestMaskAdjacentPoly(t *testing.T) {
	adjRows := []AdjRowInfo{
		{POY: geometry.NewInterval(0, 48)},
		{POY: geometry.NewInterval(48, 96)},
	}
	adj := AdjBlockInfo{Rows: []OptionalEdge{
		Explicit(EdgeInfo{Class: ODDevice}),
		{},
	}}

	out, err := maskAdjacentPoly(adjRows, adj, 3)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, []bool{false, false, true}, out[0].POTypes,
		"live neighbor poly continues into the innermost finger")
	assert.Equal(t, []bool{false, false, false}, out[1].POTypes)
}
