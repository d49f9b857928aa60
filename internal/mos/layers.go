package mos

import "fmt"

// LayerKind classifies a MOS layer for Y-interval selection.
type LayerKind uint8

const (
	LayerFin LayerKind = iota
	LayerWell
	LayerThreshold
)

// MOSLayer is one implant/well/threshold layer with its classification.
type MOSLayer struct {
	Spec LayerSpec `json:"spec"`
	Kind LayerKind `json:"kind"`
}

// Layer specs reused across the engine.
var (
	layerCutPoly = LayerSpec{Name: "CutPoly", Purpose: "drawing"}
	layerFinArea = LayerSpec{Name: "FinArea", Purpose: "fin48"}
	layerPoly    = LayerSpec{Name: "Poly", Purpose: "drawing"}
	layerPolyDum = LayerSpec{Name: "Poly", Purpose: "dummy"}
	layerActive  = LayerSpec{Name: "Active", Purpose: "drawing"}
	layerActDum  = LayerSpec{Name: "Active", Purpose: "dummy"}
	layerLiAct   = LayerSpec{Name: "LiAct", Purpose: "drawing"}
	layerLiPo    = LayerSpec{Name: "LiPo", Purpose: "drawing"}
	layerM1      = LayerSpec{Name: "M1", Purpose: "drawing"}
	layerM2      = LayerSpec{Name: "M2", Purpose: "drawing"}
)

// MOSLayers returns the fin-area, well and threshold layers for a device or
// tap flavor.  The threshold letter follows the P group {pch, ptap}; the
// n-well is present for the {pch, ntap} group.
func MOSLayers(mosType MOSType, threshold Threshold) ([]MOSLayer, error) {
	layers := []MOSLayer{{Spec: layerFinArea, Kind: LayerFin}}
	if mosType == PCh || mosType == NTap {
		layers = append(layers, MOSLayer{
			Spec: LayerSpec{Name: "NWell", Purpose: "drawing"},
			Kind: LayerWell,
		})
	}

	letter := "N"
	if mosType == PCh || mosType == PTap {
		letter = "P"
	}

	var flavor string
	switch threshold {
	case "lvt", "fast":
		flavor = "lvt"
	case "svt", "standard":
		flavor = "svt"
	case "hvt", "low_power":
		flavor = "hvt"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownThreshold, threshold)
	}

	layers = append(layers, MOSLayer{
		Spec: LayerSpec{Name: letter + flavor, Purpose: "drawing"},
		Kind: LayerThreshold,
	})
	return layers, nil
}
