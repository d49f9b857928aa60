package mos

import (
	"fmt"

	"fingrid/internal/tech"
	"fingrid/pkg/fill"
	"fingrid/pkg/geometry"
)

// LegalExtensionWidths computes the sorted set of legal extension heights, in
// fin pitches, between two rows described by their facing margin descriptors.
//
// Three rule families set the minimum height: routing/first-metal line-end
// spacing, contact spacing, and minimum implant width.  Separately there is a
// maximum height that needs no dummy active region (from the maximum
// active-to-active spacing) and a minimum height at which a dummy active
// region is legal (sized so the implant can split either above or below it).
// When the two regimes connect, only the single minimum is returned;
// otherwise the no-dummy range plus the with-dummy minimum are returned and
// the heights in between are forbidden.
func LegalExtensionWidths(t *tech.Tech, lch int, top, bot ExtInfo) ([]int, error) {
	if _, err := t.SDPitch(lch); err != nil {
		return nil, err
	}

	finP := t.FinPitch
	finP2 := finP / 2
	finH2 := t.FinH / 2

	// minimum height from line-end, contact and implant width rules
	mxMargin := top.MXMargin + bot.MXMargin
	m1Margin := top.M1Margin + bot.M1Margin
	minExtW := max(0, geometry.CeilDiv(t.MXSpYMin-min(mxMargin, m1Margin), finP))
	mdMargin := top.MDMargin + bot.MDMargin
	minExtW = max(minExtW, geometry.CeilDiv(t.MDSp-mdMargin, finP))
	minExtW = max(minExtW, geometry.CeilDiv(bot.ImpMinW+top.ImpMinW, finP))

	// maximum height with no dummy active region
	odSpaceNfin := (top.ODMargin + bot.ODMargin + t.FinH) / finP
	maxExtWNoOD := t.ODSpNfinMax - odSpaceNfin

	// minimum height with a dummy active region.  The dummy is sized so
	// the implant can split either above or below it and stay clean,
	// which costs a little height but keeps placement non-iterative.
	dumMdYB := -bot.MDMargin + t.MDSp
	odYBMax1 := max(dumMdYB+t.MDODExtY, t.CPOH/2+t.CPOODSp)
	odYBMaxFin := geometry.CeilDiv(odYBMax1-finP2+finH2, finP)
	odYBMaxFin = max(odYBMaxFin, geometry.CeilDiv(bot.ImpMinW+t.ImpODEncY-finP2+finH2, finP))

	// top-side bounds assume the block top sits at zero
	dumMdYT := top.MDMargin - t.MDSp
	odYTMin1 := min(dumMdYT-t.MDODExtY, -(t.CPOH/2)-t.CPOODSp)
	odYTMinFin := geometry.FloorDiv(odYTMin1-finP2-finH2, finP)
	odYTMinFin = min(odYTMinFin, geometry.FloorDiv(-top.ImpMinW-t.ImpODEncY-finP2-finH2, finP))

	minExtWOD := max(0, t.ODNfinMin-(odYTMinFin-odYBMaxFin)-1) * finP
	minExtWOD = max(minExtWOD, t.CPOSpY+t.CPOH)
	minExtWOD = max(minExtWOD, t.MDHMin-(dumMdYT-dumMdYB))
	minExtWOD = geometry.CeilDiv(minExtWOD, finP)

	if minExtWOD <= maxExtWNoOD+1 {
		// the regimes connect seamlessly
		return []int{minExtW}, nil
	}
	var widths []int
	for w := minExtW; w <= maxExtWNoOD; w++ {
		widths = append(widths, w)
	}
	widths = append(widths, minExtWOD)
	return widths, nil
}

// ExtParams are the inputs to BuildExtension.
type ExtParams struct {
	Lch int
	Fg  int
	W   int // extension height in fin pitches, from LegalExtensionWidths
	Top ExtInfo
	Bot ExtInfo
}

// ExtResult is a computed extension block.
type ExtResult struct {
	Layout LayoutInfo   `json:"layout"`
	EdgeL  EdgeSideInfo `json:"edge_l"`
	EdgeR  EdgeSideInfo `json:"edge_r"`
}

// BuildExtension synthesizes the extension block between two rows: zero or
// more dummy active regions, the boundary cut layers, and the implant and
// threshold splits that keep the join clean.  The requested height must come
// from LegalExtensionWidths; heights outside the set are a caller error and
// are not re-validated here.
func BuildExtension(t *tech.Tech, p ExtParams) (ExtResult, error) {
	sdPitch, err := t.SDPitch(p.Lch)
	if err != nil {
		return ExtResult{}, err
	}
	if p.W < 0 {
		return ExtResult{}, fmt.Errorf("%w: %d", ErrIllegalExtensionHeight, p.W)
	}

	finP := t.FinPitch
	finP2 := finP / 2
	finH2 := t.FinH / 2
	m1W := t.MOSConnW()

	lrEdge := EdgeInfo{Class: ODDummy}
	if p.W == 0 {
		// degenerate: only the shared boundary cut
		layout := LayoutInfo{
			Kind:    BlockExt,
			Lch:     p.Lch,
			MDW:     t.MDW,
			Fg:      p.Fg,
			SDPitch: sdPitch,
			DrawOD:  true,
			Layers: []LayerEntry{{
				Layer: layerCutPoly,
				Y:     geometry.NewInterval(-t.CPOH/2, t.CPOH/2),
			}},
		}
		return ExtResult{
			Layout: layout,
			EdgeL:  EdgeSideInfo{Edge: lrEdge},
			EdgeR:  EdgeSideInfo{Edge: lrEdge},
		}, nil
	}

	yt := p.W * finP
	yc := yt / 2

	// dummy active-region candidates from the symmetric packing helper,
	// in inclusive fin indices
	botODYTFin := geometry.FloorDiv(-p.Bot.ODMargin-finP2-finH2, finP)
	topODYBFin := geometry.FloorDiv(yt+p.Top.ODMargin-finP2+finH2, finP)
	area := topODYBFin - botODYTFin
	odFins := fill.SymmetricFill(area, t.ODSpNfinMax, t.ODNfinMin-1, t.ODNfinMax-1, botODYTFin)

	// one or two boundary cuts
	cpo2W := geometry.CeilDiv(t.CPOSpY+t.CPOH, finP)
	oneCPO := p.W < cpo2W

	// first-metal fill spans
	areaYB := -p.Bot.M1Margin
	areaYT := yt + p.Top.M1Margin
	fillY := fill.SymmetricFill(areaYT-areaYB, t.M1SpMax, t.M1FillLMin, t.M1FillLMax, areaYB)

	var (
		layers   []LayerEntry
		odX      []geometry.Interval
		odYList  []geometry.Interval
		mdYList  []geometry.Interval
		poYList  []geometry.Interval
		adjRows  []AdjRowInfo
		adjEdgeL []EdgeInfo
		adjEdgeR []EdgeInfo
		impSplit [2]int
	)

	if len(odFins) == 0 {
		odYList = []geometry.Interval{{}}
		mdYList = []geometry.Interval{{}}
		if oneCPO {
			poYList = []geometry.Interval{{}}
			impSplit = [2]int{yc, yc}
			// the flanking rows' poly continues to the shared cut
			adjRows = []AdjRowInfo{
				{POY: geometry.NewInterval(0, yc), POTypes: p.Bot.POTypes},
				{POY: geometry.NewInterval(yc, yt), POTypes: p.Top.POTypes},
			}
			adjEdgeL = []EdgeInfo{p.Bot.EdgeL, p.Top.EdgeL}
			adjEdgeR = []EdgeInfo{p.Bot.EdgeR, p.Top.EdgeR}
			layers = append(layers, LayerEntry{
				Layer: layerCutPoly,
				Y:     geometry.NewInterval(yc-t.CPOH/2, yc+t.CPOH/2),
			})
		} else {
			poYList = []geometry.Interval{geometry.NewInterval(0, yt)}
			impSplit = [2]int{0, yt}
			layers = append(layers,
				LayerEntry{Layer: layerCutPoly, Y: geometry.NewInterval(-t.CPOH/2, t.CPOH/2)},
				LayerEntry{Layer: layerCutPoly, Y: geometry.NewInterval(yt-t.CPOH/2, yt+t.CPOH/2)},
			)
		}
	} else {
		odX = []geometry.Interval{geometry.NewInterval(0, p.Fg)}
		numDum := len(odFins)
		if numDum == 1 {
			// a single dummy is re-derived from the whole gap, growing
			// until both flanking spacings fit, then clamped against the
			// contact and boundary-cut rules
			odY, mdY := extDummyLoc(t, geometry.NewInterval(botODYTFin, topODYBFin),
				t.CPOH/2, yt-t.CPOH/2,
				-p.Bot.MDMargin, yt+p.Top.MDMargin,
				p.Bot.ImpMinW, yt-p.Top.ImpMinW)
			odYList = []geometry.Interval{odY}
			mdYList = []geometry.Interval{mdY}
		} else {
			// the packing spacing bounds guarantee these are clean
			for _, fins := range odFins {
				odYB := finP2 - finH2 + fins.Lo*finP
				odYT := finP2 + finH2 + fins.Hi*finP
				odYC := geometry.FloorDiv(odYB+odYT, 2)
				mdH := max(t.MDHMin, odYT-odYB+2*t.MDODExtY)
				odYList = append(odYList, geometry.NewInterval(odYB, odYT))
				mdYList = append(mdYList, geometry.NewInterval(odYC-mdH/2, odYC+mdH/2))
			}
		}

		// a boundary cut below each dummy, and one at the top
		cpoYC := 0
		for idx, odY := range odYList {
			nextCpoYC := yt
			if idx+1 < numDum {
				nextCpoYC = geometry.FloorDiv(odY.Hi+odYList[idx+1].Lo, 2)
			}
			poYList = append(poYList, geometry.NewInterval(cpoYC, nextCpoYC))
			layers = append(layers, LayerEntry{
				Layer: layerCutPoly,
				Y:     geometry.NewInterval(cpoYC-t.CPOH/2, cpoYC+t.CPOH/2),
			})
			cpoYC = nextCpoYC
		}
		layers = append(layers, LayerEntry{
			Layer: layerCutPoly,
			Y:     geometry.NewInterval(yt-t.CPOH/2, yt+t.CPOH/2),
		})

		if numDum%2 == 0 {
			impSplit = [2]int{yc, yc}
		} else {
			// the middle dummy straddles the center; push the split out
			// to its enclosure boundary
			mid := odYList[numDum/2]
			impSplit = [2]int{mid.Lo - t.ImpODEncY, mid.Hi + t.ImpODEncY}
		}
	}

	// implant and threshold split across the two flanking contexts
	botMType, botThres := p.Bot.MType, p.Bot.Thres
	topMType, topThres := p.Top.MType, p.Top.Thres
	botImp := p.Bot.RowType.DeviceType()
	topImp := p.Top.RowType.DeviceType()
	botTran := p.Bot.RowType.IsTransistor()
	topTran := p.Top.RowType.IsTransistor()
	hasDummy := len(odX) > 0

	var sepIdx int
	if botImp == topImp {
		switch {
		case botTran != topTran:
			// transistor + tap, same flavor: the split lands on the
			// device/tap boundary so the transistor implant wins
			if botTran {
				sepIdx = 0
			} else {
				sepIdx = 1
			}
		case botTran:
			// two transistors: an exposed dummy must not see the tap
			// implant, force both halves to the device implant
			if botThres <= topThres {
				sepIdx = 0
			} else {
				sepIdx = 1
			}
			if hasDummy {
				botMType = botImp
				topMType = botImp
			}
		default:
			// two taps: stable alphabetical threshold tie-break
			if botThres <= topThres {
				sepIdx = 0
			} else {
				sepIdx = 1
			}
		}
	} else {
		switch {
		case botTran != topTran:
			// transistor + tap, different flavor: the transistor implant
			// covers the whole block
			if botTran {
				topMType = botImp
				topThres = botThres
				sepIdx = 1
			} else {
				botMType = topImp
				botThres = topThres
				sepIdx = 0
			}
		case botTran:
			// two transistors, different flavor
			botMType = botImp
			topMType = topImp
			if botImp == NCh {
				sepIdx = 1
			} else {
				sepIdx = 0
			}
		default:
			// two taps, different flavor: favor the p side
			if botImp == NCh {
				sepIdx = 1
			} else {
				sepIdx = 0
			}
		}
	}

	impYSep := impSplit[sepIdx]
	impSpecs := []ImplantSpec{
		{MType: botMType, Thres: botThres,
			ImpY: geometry.NewInterval(0, impYSep), ThresY: geometry.NewInterval(0, impYSep)},
		{MType: topMType, Thres: topThres,
			ImpY: geometry.NewInterval(impYSep, yt), ThresY: geometry.NewInterval(impYSep, yt)},
	}
	for _, spec := range impSpecs {
		mosLayers, err := MOSLayers(spec.MType, spec.Thres)
		if err != nil {
			return ExtResult{}, err
		}
		for _, lay := range mosLayers {
			y := spec.ImpY
			if lay.Kind == LayerThreshold {
				y = spec.ThresY
			}
			layers = append(layers, LayerEntry{Layer: lay.Spec, Y: y})
		}
	}

	// rows pick their tap flavor from the side of the split they fall on
	rows := make([]RowInfo, 0, len(odYList))
	for i, odY := range odYList {
		curM := topMType
		if max(odY.Lo, odY.Hi) < impYSep {
			curM = botMType
		}
		rows = append(rows, RowInfo{
			ODX:     odX,
			ODY:     odY,
			POY:     poYList[i],
			MDY:     mdYList[i],
			Class:   ODDummy,
			SubType: curM.SubType(),
		})
	}

	fillX := make([]geometry.Interval, 0, p.Fg+1)
	for i := 0; i <= p.Fg; i++ {
		fillX = append(fillX, geometry.NewInterval(i*sdPitch-m1W/2, i*sdPitch+m1W/2))
	}

	layout := LayoutInfo{
		Kind:     BlockExt,
		Lch:      p.Lch,
		MDW:      t.MDW,
		Fg:       p.Fg,
		SDPitch:  sdPitch,
		ArrayY:   geometry.NewInterval(0, yt),
		DrawOD:   true,
		Rows:     rows,
		Layers:   layers,
		AdjRows:  adjRows,
		Fill:     []FillInfo{{Layer: layerM1, XIntvs: fillX, YIntvs: fillY}},
		Implants: impSpecs,
	}

	return ExtResult{
		Layout: layout,
		EdgeL:  EdgeSideInfo{Edge: lrEdge, AdjRows: adjEdgeL},
		EdgeR:  EdgeSideInfo{Edge: lrEdge, AdjRows: adjEdgeR},
	}, nil
}

// extDummyLoc places a single dummy active region plus its contact.  The
// active interval is clamped against the stricter of the boundary-cut,
// contact-margin and implant-enclosure bounds on each side; the contact is
// then derived and clamped the same way.  Two passes suffice because each
// clamp only moves coordinates inward.
func extDummyLoc(t *tech.Tech, fins geometry.Interval, botCpoYT, topCpoYB, botMdYT, topMdYB, botImpY, topImpY int) (geometry.Interval, geometry.Interval) {
	finP := t.FinPitch
	finP2 := finP / 2
	finH2 := t.FinH / 2

	mdYBMin := botMdYT + t.MDSp
	mdYTMax := topMdYB - t.MDSp
	odYBMin := max(botCpoYT+t.CPOODSp, max(mdYBMin+t.MDODExtY, botImpY+t.ImpODEncY))
	odYTMax := min(topCpoYB-t.CPOODSp, min(mdYTMax-t.MDODExtY, topImpY-t.ImpODEncY))

	odArea := fins.Hi - fins.Lo
	odSp := min(geometry.FloorDiv(odArea-t.ODNfinMin, 2), t.ODSpNfinMax)
	odNfin := odArea - odSp*2 + 1
	odYB := (fins.Lo+odSp)*finP + finP2 - finH2
	odYT := odYB + (odNfin-1)*finP + t.FinH

	odHMin := (t.ODNfinMin-1)*finP + t.FinH
	if odYB < odYBMin {
		odYB = geometry.CeilDiv(odYBMin-finP2+finH2, finP)*finP + finP2 - finH2
		odYT = max(odYB+odHMin, odYT)
	}
	if odYT > odYTMax {
		odYT = geometry.FloorDiv(odYTMax-finP2-finH2, finP)*finP + finP2 + finH2
		odYB = min(odYT-odHMin, odYB)
	}

	mdH := max(t.MDHMin, odYT-odYB+2*t.MDODExtY)
	odYC := geometry.FloorDiv(odYB+odYT, 2)
	mdYB := odYC - mdH/2
	mdYT := mdYB + mdH
	if mdYB < mdYBMin {
		mdYB = mdYBMin
		mdYT = max(mdYT, mdYB+t.MDHMin)
	}
	if mdYT > mdYTMax {
		mdYT = mdYTMax
		mdYB = min(mdYT-t.MDHMin, mdYB)
	}

	return geometry.NewInterval(odYB, odYT), geometry.NewInterval(mdYB, mdYT)
}
