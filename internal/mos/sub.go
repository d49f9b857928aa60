package mos

import (
	"sort"

	"fingrid/internal/tech"
	"fingrid/pkg/fill"
	"fingrid/pkg/geometry"
)

// SubParams are the inputs to BuildSubstrateRow.
type SubParams struct {
	Lch       int
	W         int     // substrate active-region width in fins
	Fg        int
	SubType   MOSType // PTap or NTap
	Threshold Threshold
	BlkPitch  int     // vertical quantization pitch, 1 for none
}

// SubResult is a computed substrate row.
type SubResult struct {
	Layout    LayoutInfo        `json:"layout"`
	SDCenterY int               `json:"sd_center_y"`
	ExtTop    ExtInfo           `json:"ext_top"`
	ExtBot    ExtInfo           `json:"ext_bot"`
	EdgeL     EdgeSideInfo      `json:"edge_l"`
	EdgeR     EdgeSideInfo      `json:"edge_r"`
	BlkHeight int               `json:"blk_height"`
	GateConnY geometry.Interval `json:"gate_conn_y"`
	DSConnY   geometry.Interval `json:"ds_conn_y"`
}

// BuildSubstrateRow solves a tap row.  Compared to the transistor row this is
// simple: the poly contacts short adjacent source/drain columns together, so
// everything below the second routing layer is available for the supply.
//
// The solve runs bottom-up, then the block height is rounded to the least
// common multiple of the requested pitch and the fin pitch and the active
// region is re-centered on the fin grid.
func BuildSubstrateRow(t *tech.Tech, p SubParams) (SubResult, error) {
	sdPitch, err := t.SDPitch(p.Lch)
	if err != nil {
		return SubResult{}, err
	}

	finP := t.FinPitch
	finP2 := finP / 2
	finH2 := t.FinH / 2

	odH := (p.W-1)*finP + t.FinH
	mdH := max(t.MDHMin, odH+2*t.MDODExtY)
	mdODExt := (mdH - odH) / 2

	// bottom boundary cut, then the lowest poly contact above it
	cpoBotYT := t.CPOH / 2
	mpYB := max(t.MPSpY/2, cpoBotYT+t.MPCPOSp)
	mpYT := mpYB + t.MPH

	// active region on the fin grid above the poly contact
	odBFinYC := mpYT + t.MPMDSp + mdODExt
	odBFinYC = geometry.RoundUp(odBFinYC-finP2, finP) + finP2
	odYB := odBFinYC - finH2
	odYT := odYB + odH
	cpoTopYC := odYT + odYB

	// quantize the height, then re-center the active region
	blkPitch := fill.LCM(p.BlkPitch, finP)
	blkH := geometry.RoundUp(cpoTopYC, blkPitch)
	cpoTopYC = blkH
	odYB = blkH/2 - odH/2
	odYB = geometry.RoundDown(odYB-finP2+finH2, finP) + finP2 - finH2
	odYT = odYB + odH
	odYC := geometry.FloorDiv(odYB+odYT, 2)

	mdYB := geometry.FloorDiv(odYB+odYT-mdH, 2)
	mdYT := mdYB + mdH

	// poly contacts hug the contact region on both sides; the supply
	// metal spans between the two via centers
	via, err := DSViaStack(t, p.Lch, p.W, false)
	if err != nil {
		return SubResult{}, err
	}
	gm1Delta := via.H[0]/2 + via.TopEncY[0]
	mpYT = mdYB - t.MPMDSp
	mpYB = mpYT - t.MPH
	gM1YB := geometry.FloorDiv(mpYT+mpYB, 2) - gm1Delta
	mpYB = mdYT + t.MPMDSp
	mpYT = mpYB + t.MPH
	gM1YT := geometry.FloorDiv(mpYB+mpYT, 2) + gm1Delta

	poY := geometry.NewInterval(0, cpoTopYC)

	mosLayers, err := MOSLayers(p.SubType, p.Threshold)
	if err != nil {
		return SubResult{}, err
	}
	layers := make([]LayerEntry, 0, len(mosLayers))
	for _, lay := range mosLayers {
		layers = append(layers, LayerEntry{Layer: lay.Spec, Y: poY})
	}
	lrEdge := EdgeInfo{Class: ODSub}

	dsConnY := geometry.NewInterval(gM1YB, gM1YT)
	fillInfo := FillInfo{Layer: layerM1, YIntvs: []geometry.Interval{dsConnY}}

	layout := LayoutInfo{
		Kind:    BlockSub,
		Lch:     p.Lch,
		MDW:     t.MDW,
		Fg:      p.Fg,
		SDPitch: sdPitch,
		ArrayY:  poY,
		DrawOD:  true,
		Rows: []RowInfo{{
			ODX:     []geometry.Interval{geometry.NewInterval(0, p.Fg)},
			ODY:     geometry.NewInterval(odYB, odYT),
			POY:     poY,
			MDY:     geometry.NewInterval(mdYB, mdYT),
			Class:   ODSub,
			SubType: p.SubType,
		}},
		Layers: layers,
		Fill:   []FillInfo{fillInfo},
	}

	poTypes := make([]bool, p.Fg)
	for i := range poTypes {
		poTypes[i] = true
	}
	extTop := ExtInfo{
		MXMargin: cpoTopYC - gM1YT,
		ODMargin: cpoTopYC - odYT,
		MDMargin: cpoTopYC - mdYT,
		M1Margin: cpoTopYC - gM1YT,
		MType:    p.SubType,
		RowType:  p.SubType,
		Thres:    p.Threshold,
		POTypes:  poTypes,
		EdgeL:    lrEdge,
		EdgeR:    lrEdge,
	}
	extBot := ExtInfo{
		MXMargin: gM1YB,
		ODMargin: odYB,
		MDMargin: mdYB,
		M1Margin: gM1YB,
		MType:    p.SubType,
		RowType:  p.SubType,
		Thres:    p.Threshold,
		POTypes:  poTypes,
		EdgeL:    lrEdge,
		EdgeR:    lrEdge,
	}

	return SubResult{
		Layout:    layout,
		SDCenterY: odYC,
		ExtTop:    extTop,
		ExtBot:    extBot,
		EdgeL:     EdgeSideInfo{Edge: lrEdge},
		EdgeR:     EdgeSideInfo{Edge: lrEdge},
		BlkHeight: cpoTopYC,
		GateConnY: dsConnY,
		DSConnY:   dsConnY,
	}, nil
}

// SelectSupplyTracks runs the supply track heuristic in half-track units
// (htr 0 is the leftmost source/drain column, one column is 2 htr).  Dummy
// tracks live on the second routing layer, port tracks continue up to the
// third; every port track is also a dummy track.  The heuristic promotes
// dummy tracks and unused columns to port tracks wherever that does not
// create adjacent ports, to lower the supply resistance.  It returns the
// second-layer and third-layer half-track lists, sorted.
func SelectSupplyTracks(fg int, portHtr, dumHtr []int) (m2Htr, m3Htr []int) {
	phtr := make(map[int]bool, len(portHtr))
	for _, v := range portHtr {
		phtr[v] = true
	}
	dhtr := make(map[int]bool, len(dumHtr))
	for _, v := range dumHtr {
		dhtr[v] = true
	}
	dsorted := append([]int(nil), dumHtr...)
	sort.Ints(dsorted)
	for _, d := range dsorted {
		if !phtr[d+2] && !phtr[d-2] {
			phtr[d] = true
		}
	}
	for htr := 0; htr <= 2*fg; htr += 2 {
		if !phtr[htr+2] && !phtr[htr-2] {
			phtr[htr] = true
		}
	}
	for v := range phtr {
		dhtr[v] = true
	}
	m2Htr = make([]int, 0, len(dhtr))
	for v := range dhtr {
		m2Htr = append(m2Htr, v)
	}
	m3Htr = make([]int, 0, len(phtr))
	for v := range phtr {
		m3Htr = append(m3Htr, v)
	}
	sort.Ints(m2Htr)
	sort.Ints(m3Htr)
	return m2Htr, m3Htr
}

// ConnectSubstrate draws the supply connections of a substrate block onto the
// canvas: the source/drain via stacks, the poly-contact shorting strips, and
// the VDD or VSS pins.  Tracks are given in half-track units.  It reports
// whether any active region was present to connect.
func ConnectSubstrate(cv Canvas, g Grid, t *tech.Tech, layout LayoutInfo, portHtr, dumHtr []int, dummyOnly, guardRing bool) (bool, error) {
	sdPitch := layout.SDPitch
	sdPitch2 := sdPitch / 2

	hasOD := false
	for _, row := range layout.Rows {
		if !row.ODY.IsPhysical() {
			continue
		}
		hasOD = true
		odStart, odStop := row.ODX[0].Lo, row.ODX[0].Hi
		fg := odStop - odStart
		xshift := odStart * sdPitch
		portName := "VSS"
		if row.SubType == NTap {
			portName = "VDD"
		}

		odYC := row.ODY.Center()
		w := (row.ODY.Length()-t.FinH)/t.FinPitch + 1
		via, err := DSViaStack(t, layout.Lch, w, guardRing)
		if err != nil {
			return hasOD, err
		}

		var m1X, m3X []int
		if dummyOnly {
			for _, htr := range dumHtr {
				m1X = append(m1X, sdPitch2*htr)
			}
		} else {
			m2Htr, m3Htr := SelectSupplyTracks(fg, portHtr, dumHtr)
			for _, htr := range m2Htr {
				m1X = append(m1X, sdPitch2*htr)
			}
			for _, htr := range m3Htr {
				m3X = append(m3X, sdPitch2*htr)
			}
		}

		m1Wires, m3Wires := drawDSVia(cv, g, t, sdPitch, odYC, fg, via, true, 1, 1, m1X, m3X, xshift)
		cv.AddPin(portName, m1Wires, false)
		cv.AddPin(portName, m3Wires, false)

		if !guardRing {
			drawSubMPConn(cv, t, layout.Lch, sdPitch, fg, xshift, row.MDY, via)
		}
	}
	return hasOD, nil
}

// drawSubMPConn shorts every other source/drain column of a tap row to its
// poly contacts: one contact strip above and one below the contact region,
// with a first-metal stripe and vias at each even column.
func drawSubMPConn(cv Canvas, t *tech.Tech, lch, sdPitch, fg, xshift int, mdY geometry.Interval, via ViaStackInfo) {
	gm1Delta := via.H[0]/2 + via.TopEncY[0]
	m1W := via.W[0] + 2*via.TopEncX[0]
	botEncX := (m1W - via.W[0]) / 2
	botEncY := (t.MPH - via.H[0]) / 2

	mpYT := mdY.Lo - t.MPMDSp
	mpYB := mpYT - t.MPH
	m1YB := geometry.FloorDiv(mpYT+mpYB, 2) - gm1Delta
	mpYs := []geometry.Interval{geometry.NewInterval(mpYB, mpYT)}
	mpYB = mdY.Hi + t.MPMDSp
	mpYT = mpYB + t.MPH
	m1YT := geometry.FloorDiv(mpYB+mpYT, 2) + gm1Delta
	mpYs = append(mpYs, geometry.NewInterval(mpYB, mpYT))

	for fgl := 0; fgl <= fg; fgl += 2 {
		mpXL := xshift + fgl*sdPitch - sdPitch/2 + lch/2 - t.MPPOOvl
		mpXR := xshift + (fgl+2)*sdPitch + sdPitch/2 - lch/2 + t.MPPOOvl
		for _, mpY := range mpYs {
			cv.AddRect(layerLiPo, geometry.NewRect(mpXL, mpY.Lo, mpXR, mpY.Hi))
		}
	}

	botEnc := Enclosure{botEncX, botEncX, botEncY, botEncY}
	topEnc := Enclosure{via.TopEncX[0], via.TopEncX[0], via.TopEncY[0], via.TopEncY[0]}
	for idx := 0; idx <= fg; idx += 2 {
		m1XC := xshift + idx*sdPitch
		cv.AddRect(layerM1, geometry.NewRect(m1XC-m1W/2, m1YB, m1XC+m1W/2, m1YT))
		for _, mpY := range mpYs {
			cv.AddVia(viaM1LiPo, geometry.NewPoint(m1XC, mpY.Center()), botEnc, topEnc, ViaArray{NumRows: 1, NX: 1})
		}
	}
}

// drawDSVia draws the source/drain via stacks for one active region: the
// contact-to-first-metal via array at every column, first-metal wires, and
// for each requested column the stack up to the third layer.  Even columns
// connect at the source side, odd at the drain side, with sdir and ddir
// choosing whether the third-layer wire extends up (2), down (0) or is
// centered (1).  It returns the first-layer and third-layer wires on the
// requested tracks.
func drawDSVia(cv Canvas, g Grid, t *tech.Tech, wirePitch, odYC, numSeg int, via ViaStackInfo, sbot bool, sdir, ddir int, m1X, m3X []int, xshift int) ([]Wire, []Wire) {
	// contact to first metal
	v0Bot := Enclosure{via.BotEncX[0], via.BotEncX[0], via.BotEncY[0], via.BotEncY[0]}
	v0Top := Enclosure{via.TopEncX[0], via.TopEncX[0], via.TopEncY[0], via.TopEncY[0]}
	cv.AddVia(viaM1LiAct, geometry.NewPoint(xshift, odYC), v0Bot, v0Top,
		ViaArray{NumRows: via.NumV0, SpRows: t.V0Sp, NX: numSeg + 1, SpX: wirePitch})

	m1YB := odYC - via.M1H/2
	m1YT := m1YB + via.M1H
	m1Want := make(map[int]bool, len(m1X))
	for _, x := range m1X {
		m1Want[x] = true
	}
	var m1Wires []Wire
	for idx := 0; idx <= numSeg; idx++ {
		m1XC := xshift + idx*wirePitch
		tidx := g.NearestTrack(1, m1XC)
		wire := cv.AddWire(1, tidx, geometry.NewInterval(m1YB, m1YT))
		if m1Want[m1XC] {
			m1Wires = append(m1Wires, wire)
		}
	}

	botYC := m1YB + via.BotEncY[1] + via.H[1]/2
	topYC := m1YT - via.BotEncY[1] - via.H[1]/2

	v1Bot := Enclosure{via.BotEncX[1], via.BotEncX[1], via.BotEncY[1], via.BotEncY[1]}
	v1Top := Enclosure{via.TopEncX[1], via.TopEncX[1], via.TopEncY[1], via.TopEncY[1]}
	v2Bot := Enclosure{via.BotEncX[2], via.BotEncX[2], via.BotEncY[2], via.BotEncY[2]}
	v2Top := Enclosure{via.TopEncX[2], via.TopEncX[2], via.TopEncY[2], via.TopEncY[2]}

	var m3Wires []Wire
	var m2Bot, m2Top *geometry.Interval
	for _, xloc := range m3X {
		parity := geometry.FloorDiv(xloc, wirePitch) % 2
		vdir := sdir
		onBot := sbot
		if parity != 0 {
			vdir = ddir
			onBot = !sbot
		}
		viaYC := topYC
		m2Side := &m2Top
		if onBot {
			viaYC = botYC
			m2Side = &m2Bot
		}

		var mYB, mYT int
		switch vdir {
		case 0:
			mYT = viaYC + via.H[2]/2 + v0Top[2]
			mYB = mYT - via.M3H
		case 2:
			mYB = viaYC - via.H[2]/2 - v0Top[3]
			mYT = mYB + via.M3H
		default:
			mYB = viaYC - via.M3H/2
			mYT = mYB + via.M3H
		}

		curXC := xshift + xloc
		if *m2Side == nil {
			iv := geometry.NewInterval(curXC, curXC)
			*m2Side = &iv
		} else {
			(*m2Side).Lo = min((*m2Side).Lo, curXC)
			(*m2Side).Hi = max((*m2Side).Hi, curXC)
		}

		loc := geometry.NewPoint(curXC, viaYC)
		cv.AddVia(viaM2M1, loc, v1Bot, v1Top, ViaArray{NumRows: 1, NX: 1, CutHeight: via.H[1]})
		cv.AddVia(viaM3M2, loc, v2Bot, v2Top, ViaArray{NumRows: 1, NX: 1, CutHeight: via.H[2]})

		tidx := g.NearestTrack(3, curXC)
		m3Wires = append(m3Wires, cv.AddWire(3, tidx, geometry.NewInterval(mYB, mYT)))
	}

	for _, side := range []struct {
		x  *geometry.Interval
		yc int
	}{{m2Bot, botYC}, {m2Top, topYC}} {
		if side.x == nil {
			continue
		}
		m2YB := side.yc - via.M2H/2
		cv.AddRect(layerM2, geometry.NewRect(side.x.Lo, m2YB, side.x.Hi, m2YB+via.M2H))
	}

	return m1Wires, m3Wires
}
