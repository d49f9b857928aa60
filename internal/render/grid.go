package render

import (
	"fingrid/internal/mos"
	"fingrid/pkg/geometry"
)

// LayerTracks is the track definition of one routing layer: tracks sit at
// Offset + n*Pitch.
type LayerTracks struct {
	Pitch  int `json:"pitch"`
	Offset int `json:"offset"`
}

// UniformGrid implements mos.Grid with a fixed track pitch per layer.
// Layers without an explicit entry fall back to the default pitch, which for
// the transistor engine is the source/drain pitch.
type UniformGrid struct {
	layers   map[int]LayerTracks
	fallback LayerTracks
}

var _ mos.Grid = (*UniformGrid)(nil)

// NewUniformGrid creates a grid whose default track pitch is pitch, with
// tracks at multiples of it.
func NewUniformGrid(pitch int) *UniformGrid {
	return &UniformGrid{
		layers:   make(map[int]LayerTracks),
		fallback: LayerTracks{Pitch: pitch},
	}
}

// SetLayer overrides the track definition of one layer.
func (g *UniformGrid) SetLayer(layer int, lt LayerTracks) {
	g.layers[layer] = lt
}

func (g *UniformGrid) tracks(layer int) LayerTracks {
	if lt, ok := g.layers[layer]; ok {
		return lt
	}
	return g.fallback
}

// NearestTrack returns the track index closest to coord on the layer, ties
// rounding down.
func (g *UniformGrid) NearestTrack(layer, coord int) int {
	lt := g.tracks(layer)
	return geometry.FloorDiv(coord-lt.Offset+lt.Pitch/2, lt.Pitch)
}

// Track returns the track index at or below coord on the layer.
func (g *UniformGrid) Track(layer, coord int) int {
	lt := g.tracks(layer)
	return geometry.FloorDiv(coord-lt.Offset, lt.Pitch)
}

// Coord returns the coordinate of a track on the layer.
func (g *UniformGrid) Coord(layer, track int) int {
	lt := g.tracks(layer)
	return lt.Offset + track*lt.Pitch
}

// BlockPitch returns the horizontal quantization pitch of the layer.
func (g *UniformGrid) BlockPitch(layer int) int {
	return g.tracks(layer).Pitch
}
