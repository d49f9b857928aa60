// Package render provides the drawing backends for solved layout blocks: an
// operation recorder used by the solvers' consumers and as a test double, a
// vector backend producing SVG or PDF, and a raster backend producing PNG.
package render

import (
	"fingrid/internal/mos"
	"fingrid/pkg/geometry"
)

// OpKind identifies a recorded canvas operation.
type OpKind uint8

const (
	OpRect OpKind = iota
	OpVia
	OpWire
	OpPin
	OpBoundary
)

func (k OpKind) String() string {
	switch k {
	case OpRect:
		return "rect"
	case OpVia:
		return "via"
	case OpWire:
		return "wire"
	case OpPin:
		return "pin"
	case OpBoundary:
		return "boundary"
	default:
		return "unknown"
	}
}

// Op is one recorded canvas operation.  Only the fields relevant to its kind
// are populated.
type Op struct {
	Kind OpKind `json:"kind"`

	Layer mos.LayerSpec `json:"layer,omitempty"`
	Box   geometry.Rect `json:"box,omitempty"`

	ViaType string         `json:"via_type,omitempty"`
	Loc     geometry.Point `json:"loc,omitempty"`
	BotEnc  mos.Enclosure  `json:"bot_enc,omitempty"`
	TopEnc  mos.Enclosure  `json:"top_enc,omitempty"`
	Arr     mos.ViaArray   `json:"arr,omitempty"`

	Wire mos.Wire `json:"wire,omitempty"`

	PinName  string     `json:"pin_name,omitempty"`
	PinWires []mos.Wire `json:"pin_wires,omitempty"`
	Visible  bool       `json:"visible,omitempty"`
}

// Recorder implements mos.Canvas by recording every call in order.  The
// recording can be replayed into the vector or raster backends, inspected in
// tests, or serialized as a fixture.
type Recorder struct {
	Ops      []Op
	ArrayBox geometry.Rect
	BoundBox geometry.Rect
}

var _ mos.Canvas = (*Recorder)(nil)

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) AddRect(layer mos.LayerSpec, box geometry.Rect) {
	r.Ops = append(r.Ops, Op{Kind: OpRect, Layer: layer, Box: box})
}

func (r *Recorder) AddVia(viaType string, loc geometry.Point, botEnc, topEnc mos.Enclosure, arr mos.ViaArray) {
	r.Ops = append(r.Ops, Op{
		Kind: OpVia, ViaType: viaType, Loc: loc,
		BotEnc: botEnc, TopEnc: topEnc, Arr: arr,
	})
}

func (r *Recorder) AddWire(layer, track int, y geometry.Interval) mos.Wire {
	w := mos.Wire{Layer: layer, Track: track, Y: y}
	r.Ops = append(r.Ops, Op{Kind: OpWire, Wire: w})
	return w
}

func (r *Recorder) AddPin(name string, wires []mos.Wire, visible bool) {
	r.Ops = append(r.Ops, Op{Kind: OpPin, PinName: name, PinWires: wires, Visible: visible})
}

func (r *Recorder) SetArrayBox(box geometry.Rect) {
	r.ArrayBox = box
}

func (r *Recorder) SetBoundBox(box geometry.Rect) {
	r.BoundBox = box
}

func (r *Recorder) AddBoundary(box geometry.Rect) {
	r.Ops = append(r.Ops, Op{Kind: OpBoundary, Box: box})
}

// Merge appends a translated copy of src's operations.  The array and bound
// boxes grow to cover the translated src boxes, so a row stack assembled from
// per-block recordings keeps a correct overall extent.
func (r *Recorder) Merge(src *Recorder, dx, dy int) {
	for _, op := range src.Ops {
		r.Ops = append(r.Ops, op.translate(dx, dy))
	}
	r.ArrayBox = unionBox(r.ArrayBox, translateRect(src.ArrayBox, dx, dy))
	r.BoundBox = unionBox(r.BoundBox, translateRect(src.BoundBox, dx, dy))
}

// MergeFlipped appends a copy of src mirrored vertically: a source Y
// coordinate y lands at dy-y.  Used for the top terminator of a row stack,
// which is the bottom terminator upside down.
func (r *Recorder) MergeFlipped(src *Recorder, dy int) {
	for _, op := range src.Ops {
		r.Ops = append(r.Ops, op.flip(dy))
	}
	r.ArrayBox = unionBox(r.ArrayBox, flipRect(src.ArrayBox, dy))
	r.BoundBox = unionBox(r.BoundBox, flipRect(src.BoundBox, dy))
}

func (op Op) flip(dy int) Op {
	op.Box = flipRect(op.Box, dy)
	op.Loc = geometry.NewPoint(op.Loc.X, dy-op.Loc.Y)
	op.Wire.Y = flipIntv(op.Wire.Y, dy)
	if len(op.PinWires) > 0 {
		wires := make([]mos.Wire, len(op.PinWires))
		for i, w := range op.PinWires {
			w.Y = flipIntv(w.Y, dy)
			wires[i] = w
		}
		op.PinWires = wires
	}
	return op
}

func flipIntv(iv geometry.Interval, dy int) geometry.Interval {
	return geometry.NewInterval(dy-iv.Hi, dy-iv.Lo)
}

func flipRect(b geometry.Rect, dy int) geometry.Rect {
	return geometry.NewRect(b.XL, dy-b.YT, b.XR, dy-b.YB)
}

func (op Op) translate(dx, dy int) Op {
	op.Box = translateRect(op.Box, dx, dy)
	op.Loc = geometry.NewPoint(op.Loc.X+dx, op.Loc.Y+dy)
	op.Wire.Y = op.Wire.Y.Shift(dy)
	if len(op.PinWires) > 0 {
		wires := make([]mos.Wire, len(op.PinWires))
		for i, w := range op.PinWires {
			w.Y = w.Y.Shift(dy)
			wires[i] = w
		}
		op.PinWires = wires
	}
	return op
}

func translateRect(b geometry.Rect, dx, dy int) geometry.Rect {
	return geometry.NewRect(b.XL+dx, b.YB+dy, b.XR+dx, b.YT+dy)
}

func unionBox(a, b geometry.Rect) geometry.Rect {
	if a == (geometry.Rect{}) {
		return b
	}
	if b == (geometry.Rect{}) {
		return a
	}
	return a.Union(b)
}

// Rects returns the recorded rectangles on the given layer, in emit order.
func (r *Recorder) Rects(layer mos.LayerSpec) []geometry.Rect {
	var out []geometry.Rect
	for _, op := range r.Ops {
		if op.Kind == OpRect && op.Layer == layer {
			out = append(out, op.Box)
		}
	}
	return out
}

// Pins returns the wires recorded under the given pin name.
func (r *Recorder) Pins(name string) []mos.Wire {
	var out []mos.Wire
	for _, op := range r.Ops {
		if op.Kind == OpPin && op.PinName == name {
			out = append(out, op.PinWires...)
		}
	}
	return out
}
