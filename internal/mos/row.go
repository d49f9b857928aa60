package mos

import (
	"fingrid/internal/tech"
	"fingrid/pkg/geometry"
)

// RowParams are the inputs to BuildDeviceRow.
type RowParams struct {
	Lch       int     // channel length in resolution units
	W         int     // row height in fins
	MOSType   MOSType // nch or pch
	Threshold Threshold
	Fg        int     // finger count
	DSDummy   bool    // suppress the active region but keep its geometry
}

// RowResult is a fully-dimensioned transistor row plus the boundary metadata
// adjacent blocks need to abut it.
type RowResult struct {
	Layout LayoutInfo `json:"layout"`

	ExtTop ExtInfo `json:"ext_top"`
	ExtBot ExtInfo `json:"ext_bot"`

	EdgeL EdgeSideInfo `json:"edge_l"`
	EdgeR EdgeSideInfo `json:"edge_r"`

	SDCenterY int `json:"sd_yc"` // source/drain (active) center Y

	GateConnY   geometry.Interval `json:"g_conn_y"` // routing-level gate span
	DrainConnY  geometry.Interval `json:"d_conn_y"`
	SourceConnY geometry.Interval `json:"s_conn_y"`

	// GateY holds the gate metal spans for levels M1..M3.
	GateY [3]geometry.Interval `json:"g_loc"`

	M3W           int `json:"m3_w"`
	SDPitch       int `json:"sd_pitch"`
	NumSDPerTrack int `json:"num_sd_per_track"`
}

// BuildDeviceRow computes one transistor row with enough margin to draw the
// gate and drain vias.
//
// The placement proceeds strictly downward, each step fixing one more
// coordinate from the previous:
//
//  1. place the bottom boundary cut centered on the row's bottom edge
//  2. place the gate contact and first gate metal above it
//  3. place the active region for gate-to-drain line-end spacing, rounded to
//     the fin grid (half-pitch offset when the fin count is odd)
//  4. derive contact and drain/source first metal, centered on the active
//     region
//  5. pull the gate first metal back up so the gate-to-drain spacing is
//     exactly minimum
//  6. place the top boundary cut from active-to-cut spacing, fin-grid
//     rounded
//  7. derive the routing-level metal spans from the via stacks
//  8. publish extension and edge descriptors
func BuildDeviceRow(t *tech.Tech, p RowParams) (RowResult, error) {
	sdPitch, err := t.SDPitch(p.Lch)
	if err != nil {
		return RowResult{}, err
	}
	gateVia, err := GateViaStack(t, p.Lch)
	if err != nil {
		return RowResult{}, err
	}
	dsVia, err := DSViaStack(t, p.Lch, p.W, false)
	if err != nil {
		return RowResult{}, err
	}
	mosLayers, err := MOSLayers(p.MOSType, p.Threshold)
	if err != nil {
		return RowResult{}, err
	}

	finP := t.FinPitch

	// step 1: bottom boundary cut, then gate contact and first gate metal
	blkYB := 0
	cpoBotYT := blkYB + t.CPOH/2
	mpYB := cpoBotYT + t.MPCPOSp
	mpYT := mpYB + t.MPH
	mpYC := geometry.FloorDiv(mpYB+mpYT, 2)
	gM1YT := mpYC + gateVia.H[0]/2 + gateVia.TopEncY[0]

	// step 2: active region from the gate-to-drain line-end spacing,
	// rounded up to the fin grid.  Even fin counts center on a fin pitch
	// line, odd counts half a pitch off it.
	odYC := gM1YT + t.MXSpYMin + dsVia.M1H/2
	if p.W%2 == 0 {
		odYC = geometry.RoundUp(odYC, finP)
	} else {
		odYC = geometry.RoundUp(odYC-finP/2, finP) + finP/2
	}

	odH := (p.W-1)*finP + t.FinH
	odYB := odYC - odH/2
	odYT := odYB + odH
	mdYB := odYC - dsVia.MDH/2
	mdYT := mdYB + dsVia.MDH
	dsM1YB := odYC - dsVia.M1H/2
	dsM1YT := dsM1YB + dsVia.M1H

	// step 3: tighten the gate first metal back to minimum spacing
	gM1YT = dsM1YB - t.MXSpYMin
	gM1YB := gM1YT - gateVia.M1H
	gM1YC := geometry.FloorDiv(gM1YB+gM1YT, 2)

	// step 4: top boundary cut
	blkYT := geometry.RoundUp(odYT+t.CPOODSp+t.CPOH/2, finP)

	// step 5: gate M2/M3 spans
	gM2YT := gM1YC + gateVia.H[1]/2 + gateVia.TopEncY[1]
	gM2YB := gM2YT - gateVia.M2H
	gM2YC := geometry.FloorDiv(gM2YB+gM2YT, 2)
	gM3YT := gM2YC + gateVia.M3H/2
	gM3YB := gM3YT - gateVia.M3H

	// step 6: drain/source M3 spans, needed for the routing metal margins
	dV1YC := dsM1YT - dsVia.BotEncY[1] - dsVia.H[1]/2
	dM3YB := dV1YC - dsVia.H[2]/2 - dsVia.TopEncY[2]
	dM3YT := dM3YB + dsVia.M3H

	sV1YC := dsM1YB + dsVia.BotEncY[1] + dsVia.H[1]/2
	sM3YT := sV1YC + dsVia.H[2]/2 + dsVia.TopEncY[2]
	sM3YB := sM3YT - dsVia.M3H

	// step 7: extension descriptors
	lrEdge := EdgeInfo{Class: ODDevice}
	poTypes := make([]bool, p.Fg)
	for i := range poTypes {
		poTypes[i] = true
	}
	extTop := ExtInfo{
		MXMargin: blkYT - dM3YT,
		ODMargin: blkYT - odYT,
		MDMargin: blkYT - mdYT,
		M1Margin: blkYT - dsM1YT,
		MType:    p.MOSType,
		RowType:  p.MOSType,
		Thres:    p.Threshold,
		POTypes:  poTypes,
		EdgeL:    lrEdge,
		EdgeR:    lrEdge,
	}
	extBot := ExtInfo{
		MXMargin: gM3YB - blkYB,
		ODMargin: odYB - blkYB,
		MDMargin: mdYB - blkYB,
		M1Margin: gM1YB - blkYB,
		MType:    p.MOSType,
		RowType:  p.MOSType,
		Thres:    p.Threshold,
		POTypes:  poTypes,
		EdgeL:    lrEdge,
		EdgeR:    lrEdge,
	}

	// step 8: layout descriptor
	blkY := geometry.NewInterval(blkYB, blkYT)
	layers := make([]LayerEntry, 0, len(mosLayers))
	for _, lay := range mosLayers {
		layers = append(layers, LayerEntry{Layer: lay.Spec, Y: blkY})
	}

	layout := LayoutInfo{
		Kind:    BlockMOS,
		Lch:     p.Lch,
		MDW:     t.MDW,
		Fg:      p.Fg,
		SDPitch: sdPitch,
		ArrayY:  blkY,
		DrawOD:  !p.DSDummy,
		Rows: []RowInfo{{
			ODX:     []geometry.Interval{geometry.NewInterval(0, p.Fg)},
			ODY:     geometry.NewInterval(odYB, odYT),
			POY:     blkY,
			MDY:     geometry.NewInterval(mdYB, mdYT),
			Class:   ODDevice,
			SubType: p.MOSType.SubType(),
		}},
		Layers: layers,
		Fill: []FillInfo{{
			Layer:  layerM1,
			YIntvs: []geometry.Interval{geometry.NewInterval(dsM1YB, dsM1YT)},
		}},
		Implants: []ImplantSpec{{
			MType:  p.MOSType,
			Thres:  p.Threshold,
			ImpY:   blkY,
			ThresY: blkY,
		}},
	}

	return RowResult{
		Layout:      layout,
		ExtTop:      extTop,
		ExtBot:      extBot,
		EdgeL:       EdgeSideInfo{Edge: lrEdge},
		EdgeR:       EdgeSideInfo{Edge: lrEdge},
		SDCenterY:   odYC,
		GateConnY:   geometry.NewInterval(gM3YB, gM3YT),
		DrainConnY:  geometry.NewInterval(dM3YB, dM3YT),
		SourceConnY: geometry.NewInterval(sM3YB, sM3YT),
		GateY: [3]geometry.Interval{
			geometry.NewInterval(gM1YB, gM1YT),
			geometry.NewInterval(gM2YB, gM2YT),
			geometry.NewInterval(gM3YB, gM3YT),
		},
		M3W:           t.MOSConnW(),
		SDPitch:       sdPitch,
		NumSDPerTrack: tech.NumSDPerTrack,
	}, nil
}
