package mos

import (
	"fmt"

	"fingrid/internal/tech"
	"fingrid/pkg/fill"
	"fingrid/pkg/geometry"
)

// EndParams are the inputs to BuildEndRow.
type EndParams struct {
	Lch       int
	SubType   MOSType
	Threshold Threshold
	Fg        int
	IsEnd     bool // true at the outermost row of the array
	BlkPitch  int
}

// EndResult is a computed end row.
type EndResult struct {
	Layout LayoutInfo   `json:"layout"`
	EdgeL  EdgeSideInfo `json:"edge_l"`
	EdgeR  EdgeSideInfo `json:"edge_r"`
}

// BuildEndRow solves the top or bottom terminator of a row stack.  Interior
// terminators (array abutment) are just the shared boundary cut; a true end
// additionally widens the cut, stubs out the poly underneath it, and keeps
// every layer in the first quadrant by shifting up in block-pitch steps.
func BuildEndRow(t *tech.Tech, p EndParams) (EndResult, error) {
	sdPitch, err := t.SDPitch(p.Lch)
	if err != nil {
		return EndResult{}, err
	}

	finP2 := t.FinPitch / 2
	finH2 := t.FinH / 2

	lrEdge := EdgeInfo{Class: ODSub}
	var (
		arrYT    int
		layers   []LayerEntry
		adjRows  []AdjRowInfo
		adjEdges []EdgeInfo
	)
	if p.IsEnd {
		blkPitch := fill.LCM(p.BlkPitch, t.FinPitch)

		// place the widened cut relative to a zero array top, then
		// shift everything into the first quadrant
		arrYT = 0
		cpoBotYT := arrYT + t.CPOH/2
		cpoBotYB := cpoBotYT - t.CPOHEnd
		finboundYB := arrYT - finP2 - finH2
		if minYB := min(finboundYB, cpoBotYB); minYB < 0 {
			yshift := -geometry.FloorDiv(minYB, blkPitch) * blkPitch
			arrYT += yshift
			cpoBotYT += yshift
			cpoBotYB += yshift
			finboundYB += yshift
		}

		finboundYT := arrYT + finP2 + finH2
		cpoBotYC := geometry.FloorDiv(cpoBotYB+cpoBotYT, 2)
		poYT := arrYT
		poYB := cpoBotYT - t.CPOPOEncY
		if poYT > poYB {
			poTypes := make([]bool, p.Fg)
			for i := range poTypes {
				poTypes[i] = true
			}
			adjRows = []AdjRowInfo{{POY: geometry.NewInterval(poYB, poYT), POTypes: poTypes}}
			adjEdges = []EdgeInfo{lrEdge}
		}

		layers = []LayerEntry{{Layer: layerCutPoly, Y: geometry.NewInterval(cpoBotYB, cpoBotYT)}}
		mosLayers, err := MOSLayers(p.SubType, p.Threshold)
		if err != nil {
			return EndResult{}, err
		}
		for _, lay := range mosLayers {
			y := geometry.NewInterval(min(poYB, cpoBotYC), arrYT)
			if lay.Kind == LayerFin {
				y = geometry.NewInterval(finboundYB, finboundYT)
			}
			if y.IsPhysical() {
				layers = append(layers, LayerEntry{Layer: lay.Spec, Y: y})
			}
		}
	} else {
		arrYT = 0
		layers = []LayerEntry{{Layer: layerCutPoly, Y: geometry.NewInterval(-t.CPOH/2, t.CPOH/2)}}
	}

	layout := LayoutInfo{
		Kind:    BlockEnd,
		Lch:     p.Lch,
		MDW:     t.MDW,
		Fg:      p.Fg,
		SDPitch: sdPitch,
		ArrayY:  geometry.NewInterval(0, arrYT),
		DrawOD:  true,
		Layers:  layers,
		AdjRows: adjRows,
	}
	side := EdgeSideInfo{Edge: lrEdge, AdjRows: adjEdges}
	return EndResult{Layout: layout, EdgeL: side, EdgeR: side}, nil
}

// EdgeGeom is the width decomposition of a left or right edge block.
type EdgeGeom struct {
	EdgeWidth int `json:"edge_width"`
	DXEdge    int `json:"dx_edge"` // shift applied to fit implant enclosure on block pitch
	CPOXL     int `json:"cpo_xl"`  // left extent of the boundary cut
	OuterFg   int `json:"outer_fg"`
	GRSubFg   int `json:"gr_sub_fg"`
	GRSepFg   int `json:"gr_sep_fg"`
}

// EdgeGeometry computes the edge block width and its splits.  Without a
// guard ring the edge is just the outer fingers; with one it decomposes into
// outer fingers, the guard-ring tap, and the separator.  At a true array end
// the whole edge shifts right so the implant enclosure of the first poly
// stays inside, rounded up to the top routing layer's block pitch.
func EdgeGeometry(g Grid, t *tech.Tech, lch, guardRingNF, topLayer int, isEnd bool) (EdgeGeom, error) {
	ec, err := t.Edge(lch)
	if err != nil {
		return EdgeGeom{}, err
	}
	sdPitch, err := t.SDPitch(lch)
	if err != nil {
		return EdgeGeom{}, err
	}
	if guardRingNF > 0 && guardRingNF < ec.GRNfMin {
		return EdgeGeom{}, fmt.Errorf("%w: %d < %d", ErrInvalidGuardRingWidth, guardRingNF, ec.GRNfMin)
	}

	vmPitch := g.BlockPitch(topLayer)
	var xshift, cpoXL int
	if isEnd {
		leftMargin := (sdPitch - lch) / 2
		maxEncX := max(leftMargin, ec.CPOExtX)
		xshift = geometry.CeilDiv(maxEncX-leftMargin, vmPitch) * vmPitch
		cpoXL = leftMargin - ec.CPOExtX + xshift
	}

	outerFg := ec.OuterFg
	grSubFg := 0
	fgTot := outerFg
	if guardRingNF > 0 {
		outerFg = ec.GROuterFg
		grSubFg = guardRingNF + 2 + 2*ec.GRSubFgMargin
		fgTot = outerFg + grSubFg + ec.GRSepFg
	}

	return EdgeGeom{
		EdgeWidth: fgTot*sdPitch + xshift,
		DXEdge:    xshift,
		CPOXL:     cpoXL,
		OuterFg:   outerFg,
		GRSubFg:   grSubFg,
		GRSepFg:   ec.GRSepFg,
	}, nil
}

// OuterEdge derives the outermost edge block from its neighbor's layout.
// Active regions are stripped, poly becomes dummy except where the abutting
// block continues it, and with a guard ring present the neighbor's implants
// are reinterpreted as tap implants.
func OuterEdge(g Grid, t *tech.Tech, guardRingNF int, layout LayoutInfo, topLayer int, isEnd bool, adj AdjBlockInfo) (LayoutInfo, error) {
	geom, err := EdgeGeometry(g, t, layout.Lch, guardRingNF, topLayer, isEnd)
	if err != nil {
		return LayoutInfo{}, err
	}
	edgeXL := geom.DXEdge
	cpoXL := min(edgeXL, geom.CPOXL)

	rows := make([]RowInfo, 0, len(layout.Rows))
	for _, r := range layout.Rows {
		rows = append(rows, r.WithODX(nil))
	}

	var newLayers []LayerEntry
	if guardRingNF == 0 || layout.Implants == nil {
		// keep every layer, shift the left coordinate
		newLayers = make([]LayerEntry, 0, len(layout.Layers))
		for _, le := range layout.Layers {
			xl := edgeXL
			if le.Layer == layerCutPoly {
				xl = cpoXL
			}
			newLayers = append(newLayers, LayerEntry{Layer: le.Layer, XL: xl, Y: le.Y})
		}
	} else {
		newLayers, err = tapImplantLayers(layout, edgeXL, cpoXL, true)
		if err != nil {
			return LayoutInfo{}, err
		}
	}

	adjRows, err := maskAdjacentPoly(layout.AdjRows, adj, geom.OuterFg)
	if err != nil {
		return LayoutInfo{}, err
	}

	var fillX []geometry.Interval
	if geom.OuterFg > 0 {
		m1W := t.MOSConnW()
		fillX = []geometry.Interval{geometry.NewInterval(
			edgeXL+layout.SDPitch-m1W/2, edgeXL+layout.SDPitch+m1W/2)}
	}
	fills := make([]FillInfo, 0, len(layout.Fill))
	for _, f := range layout.Fill {
		fills = append(fills, f.WithXIntvs(fillX))
	}

	kind := BlockEdge
	if guardRingNF > 0 {
		kind = BlockGREdge
	}
	return LayoutInfo{
		Kind:    kind,
		Lch:     layout.Lch,
		MDW:     layout.MDW,
		Fg:      geom.OuterFg,
		SDPitch: layout.SDPitch,
		ArrayXL: edgeXL,
		ArrayY:  layout.ArrayY,
		DrawOD:  true,
		Rows:    rows,
		Layers:  newLayers,
		AdjRows: adjRows,
		EdgeL:   Explicit(EdgeInfo{Class: ODNone}),
		EdgeR:   adj.Edge,
		Fill:    fills,
	}, nil
}

// GuardRingSub derives the guard-ring tap column from its neighbor's layout:
// every row becomes a tap of its recorded flavor, implants are reinterpreted
// as tap implants, and poly outside the tap fingers becomes dummy.
func GuardRingSub(t *tech.Tech, guardRingNF int, layout LayoutInfo) (LayoutInfo, error) {
	ec, err := t.Edge(layout.Lch)
	if err != nil {
		return LayoutInfo{}, err
	}
	if guardRingNF < ec.GRNfMin {
		return LayoutInfo{}, fmt.Errorf("%w: %d < %d", ErrInvalidGuardRingWidth, guardRingNF, ec.GRNfMin)
	}
	margin := ec.GRSubFgMargin
	fg := guardRingNF + 2 + 2*margin

	odX := []geometry.Interval{geometry.NewInterval(margin+1, margin+1+guardRingNF)}
	rows := make([]RowInfo, 0, len(layout.Rows))
	for _, r := range layout.Rows {
		r.ODX = odX
		r.Class = ODSub
		rows = append(rows, r)
	}

	newLayers := layout.Layers
	if layout.Implants != nil {
		newLayers, err = tapImplantLayers(layout, 0, 0, false)
		if err != nil {
			return LayoutInfo{}, err
		}
	}

	poTypes := make([]bool, fg)
	for i := margin; i < fg-margin; i++ {
		poTypes[i] = true
	}
	adjRows := make([]AdjRowInfo, 0, len(layout.AdjRows))
	for _, ar := range layout.AdjRows {
		adjRows = append(adjRows, ar.WithPOTypes(poTypes))
	}

	fills := make([]FillInfo, 0, len(layout.Fill))
	for _, f := range layout.Fill {
		fills = append(fills, f.WithXIntvs(nil))
	}

	return LayoutInfo{
		Kind:    BlockGRSub,
		Lch:     layout.Lch,
		MDW:     layout.MDW,
		Fg:      fg,
		SDPitch: layout.SDPitch,
		ArrayY:  layout.ArrayY,
		DrawOD:  true,
		Rows:    rows,
		Layers:  newLayers,
		AdjRows: adjRows,
		Fill:    fills,
	}, nil
}

// GuardRingSep derives the separator between a guard-ring tap and the core:
// no active regions, dummy poly except where the core continues it, and one
// fill column on the shared boundary.
func GuardRingSep(t *tech.Tech, layout LayoutInfo, adj AdjBlockInfo) (LayoutInfo, error) {
	ec, err := t.Edge(layout.Lch)
	if err != nil {
		return LayoutInfo{}, err
	}
	fg := ec.GRSepFg

	rows := make([]RowInfo, 0, len(layout.Rows))
	for _, r := range layout.Rows {
		rows = append(rows, r.WithODX(nil))
	}

	adjRows, err := maskAdjacentPoly(layout.AdjRows, adj, fg)
	if err != nil {
		return LayoutInfo{}, err
	}

	m1W := t.MOSConnW()
	fillX := []geometry.Interval{geometry.NewInterval(-(m1W / 2), m1W/2)}
	fills := make([]FillInfo, 0, len(layout.Fill))
	for _, f := range layout.Fill {
		fills = append(fills, f.WithXIntvs(fillX))
	}

	return LayoutInfo{
		Kind:    BlockGRSep,
		Lch:     layout.Lch,
		MDW:     layout.MDW,
		Fg:      fg,
		SDPitch: layout.SDPitch,
		ArrayY:  layout.ArrayY,
		DrawOD:  true,
		Rows:    rows,
		Layers:  layout.Layers,
		AdjRows: adjRows,
		EdgeR:   adj.Edge,
		Fill:    fills,
	}, nil
}

// tapImplantLayers rebuilds a block's layer list for a guard-ring context:
// boundary cuts are kept (at cutXL when overrideCut is set) and the recorded
// implant tuples are re-emitted as the matching tap implants at impXL.
func tapImplantLayers(layout LayoutInfo, impXL, cutXL int, overrideCut bool) ([]LayerEntry, error) {
	var out []LayerEntry
	for _, le := range layout.Layers {
		if le.Layer == layerCutPoly {
			if overrideCut {
				le.XL = cutXL
			}
			out = append(out, le)
		}
	}
	for _, spec := range layout.Implants {
		subType := spec.MType.SubType()
		mosLayers, err := MOSLayers(subType, spec.Thres)
		if err != nil {
			return nil, err
		}
		for _, lay := range mosLayers {
			out = append(out, LayerEntry{Layer: lay.Spec, XL: impXL, Y: spec.ImpY})
		}
	}
	return out, nil
}

// maskAdjacentPoly rebuilds adjacent-row finger masks for an fg-wide edge
// block: all dummy, except the innermost finger goes live when the abutting
// block carries device or tap poly there.
func maskAdjacentPoly(adjRows []AdjRowInfo, adj AdjBlockInfo, fg int) ([]AdjRowInfo, error) {
	if fg <= 0 {
		return nil, nil
	}
	var out []AdjRowInfo
	for i, ar := range adjRows {
		live := false
		if i < len(adj.Rows) {
			side := adj.Rows[i]
			live = side.Valid && side.Edge.DrawsPoly()
		}
		poTypes := make([]bool, fg)
		if live {
			poTypes[fg-1] = true
		}
		out = append(out, ar.WithPOTypes(poTypes))
	}
	return out, nil
}
