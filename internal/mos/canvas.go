package mos

import "fingrid/pkg/geometry"

// Wire is a track-aligned wire segment returned by Canvas.AddWire and
// grouped into named pins.
type Wire struct {
	Layer int               `json:"layer"`
	Track int               `json:"track"`
	Y     geometry.Interval `json:"y"`
}

// ViaArray describes the repetition of a primitive via: NumRows cuts stacked
// vertically SpRows apart, arrayed NX times horizontally at SpX pitch.
// CutHeight overrides the default cut height when positive.
type ViaArray struct {
	NumRows   int `json:"num_rows"`
	SpRows    int `json:"sp_rows"`
	NX        int `json:"nx"`
	SpX       int `json:"sp_x"`
	CutHeight int `json:"cut_height"`
}

// Enclosure holds per-side metal enclosure of a via cut: left, right,
// bottom, top.
type Enclosure [4]int

// Primitive via types between adjacent conductor layers.
const (
	viaM1LiAct = "M1_LiAct"
	viaM1LiPo  = "M1_LiPo"
	viaM2M1    = "M2_M1"
	viaM3M2    = "M3_M2"
)

// Canvas is the drawing capability the engine consumes.  Calls for a single
// block must be issued in the documented order (rows, then boundary layers,
// then fill); distinct blocks are independent.
type Canvas interface {
	AddRect(layer LayerSpec, box geometry.Rect)
	AddVia(viaType string, loc geometry.Point, botEnc, topEnc Enclosure, arr ViaArray)
	AddWire(layer, track int, y geometry.Interval) Wire
	AddPin(name string, wires []Wire, visible bool)
	SetArrayBox(box geometry.Rect)
	SetBoundBox(box geometry.Rect)
	AddBoundary(box geometry.Rect)
}

// Grid is the routing-track capability the engine consumes.
type Grid interface {
	// NearestTrack returns the track index closest to coord on the layer.
	NearestTrack(layer, coord int) int
	// Track returns the track index at or below coord on the layer.
	Track(layer, coord int) int
	// BlockPitch returns the horizontal block quantization pitch of the
	// layer.
	BlockPitch(layer int) int
}
