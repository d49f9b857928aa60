package mos

import (
	"fingrid/internal/tech"
	"fingrid/pkg/geometry"
)

// DrawLayout replays a solved block onto a canvas.  Emit order is fixed:
// transistor rows first, then the block-spanning layers (with fin-area
// rounded outward to the fin grid), then adjacent-row poly, then the array
// and bound boxes with the boundary, and finally fill metal, which only
// exists when the block has nonzero area.
func DrawLayout(cv Canvas, t *tech.Tech, info LayoutInfo) {
	finP := t.FinPitch
	finP2 := finP / 2
	finH2 := t.FinH / 2

	fg := info.Fg
	left, right := info.EdgeL, info.EdgeR
	// a single-finger block shares its only poly with both neighbors, so
	// an unspecified side mirrors the specified one
	if !left.Valid && fg == 1 && right.Valid {
		left = right
	}
	if !right.Valid && fg == 1 {
		right = left
	}

	blkW := fg*info.SDPitch + info.ArrayXL
	poXC := info.ArrayXL + info.SDPitch/2

	for _, row := range info.Rows {
		odLay := layerActive
		if row.Class == ODDummy || row.Class == ODNone {
			odLay = layerActDum
		}

		poOnOD := make([]bool, fg)
		mdOnOD := make([]bool, fg+1)
		if row.ODY.IsPhysical() {
			for _, odx := range row.ODX {
				if odx.Lo-1 >= 0 {
					poOnOD[odx.Lo-1] = true
				}
				for idx := odx.Lo; idx <= odx.Hi; idx++ {
					mdOnOD[idx] = true
					if idx < fg {
						poOnOD[idx] = true
					}
				}
				if info.DrawOD {
					odXL := poXC - info.Lch/2 + (odx.Lo-1)*info.SDPitch
					odXR := poXC + info.Lch/2 + odx.Hi*info.SDPitch
					cv.AddRect(odLay, geometry.NewRect(odXL, row.ODY.Lo, odXR, row.ODY.Hi))
				}
			}
		}

		if row.POY.IsPhysical() {
			for idx := 0; idx < fg; idx++ {
				poXL := poXC + idx*info.SDPitch - info.Lch/2
				curClass := ODNone
				switch {
				case poOnOD[idx]:
					curClass = row.Class
				case idx == 0:
					curClass = left.Edge.Class
				case idx == fg-1:
					curClass = right.Edge.Class
				}
				lay := layerPolyDum
				if curClass == ODDevice || curClass == ODSub {
					lay = layerPoly
				}
				cv.AddRect(lay, geometry.NewRect(poXL, row.POY.Lo, poXL+info.Lch, row.POY.Hi))
			}
		}

		if row.MDY.IsPhysical() && fg > 0 {
			mdLo, mdHi := 0, fg
			if info.Kind == BlockGRSub {
				// guard-ring tap boundary contacts belong to the ring
				mdLo, mdHi = 1, fg-1
			}
			drawL := !left.Valid || left.Edge.DrawsContact()
			drawR := !right.Valid || right.Edge.DrawsContact()
			for idx := mdLo; idx <= mdHi; idx++ {
				onBoundary := idx == 0 || idx == fg
				if onBoundary && ((idx == 0 && !drawL) || (idx == fg && !drawR)) {
					continue
				}
				if mdOnOD[idx] {
					mdXL := info.ArrayXL + idx*info.SDPitch - info.MDW/2
					cv.AddRect(layerLiAct, geometry.NewRect(mdXL, row.MDY.Lo, mdXL+info.MDW, row.MDY.Hi))
				}
			}
		}
	}

	for _, le := range info.Layers {
		yb, yt := le.Y.Lo, le.Y.Hi
		if le.Layer.Name == layerFinArea.Name {
			// fin grid rounding, outward
			yb = geometry.RoundDown(yb-finP2+finH2, finP) + finP2 - finH2
			yt = geometry.RoundUp(yt-finP2-finH2, finP) + finP2 + finH2
		}
		box := geometry.NewRect(le.XL, yb, blkW, yt)
		if box.IsPhysical() {
			cv.AddRect(le.Layer, box)
		}
	}

	for _, adj := range info.AdjRows {
		for idx, live := range adj.POTypes {
			lay := layerPolyDum
			if live {
				lay = layerPoly
			}
			poXL := poXC + idx*info.SDPitch - info.Lch/2
			cv.AddRect(lay, geometry.NewRect(poXL, adj.POY.Lo, poXL+info.Lch, adj.POY.Hi))
		}
	}

	arrBox := geometry.NewRect(info.ArrayXL, info.ArrayY.Lo, blkW, info.ArrayY.Hi)
	cv.SetArrayBox(arrBox)
	cv.SetBoundBox(arrBox)
	if !arrBox.IsPhysical() {
		return
	}
	cv.AddBoundary(arrBox)

	for _, fi := range info.Fill {
		if fi.Exc != (LayerSpec{}) {
			cv.AddRect(fi.Exc, arrBox)
		}
		for _, x := range fi.XIntvs {
			for _, y := range fi.YIntvs {
				cv.AddRect(fi.Layer, geometry.RectFromIntervals(x, y))
			}
		}
	}
}
