package render

import (
	"fmt"
	"image/color"
	"io"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/svg"

	"fingrid/pkg/geometry"
)

// defaultViaCut is the square cut marker side used when a via operation does
// not carry an explicit cut height.
const defaultViaCut = 32

// Palette maps layer names to fill colors.  Missing layers fall back to a
// translucent gray.
type Palette map[string]color.RGBA

// DefaultPalette resembles the usual layout-editor colors: active in green,
// poly in red, contacts in violet, metals in blue shades.
func DefaultPalette() Palette {
	return Palette{
		"Active":  {R: 0x2e, G: 0x8b, B: 0x2e, A: 0x90},
		"Poly":    {R: 0xc4, G: 0x2b, B: 0x2b, A: 0x90},
		"LiAct":   {R: 0x8a, G: 0x2b, B: 0xc4, A: 0x90},
		"LiPo":    {R: 0xc4, G: 0x2b, B: 0x8a, A: 0x90},
		"M1":      {R: 0x2b, G: 0x5b, B: 0xc4, A: 0x90},
		"M2":      {R: 0x2b, G: 0x9b, B: 0xc4, A: 0x90},
		"M3":      {R: 0x2b, G: 0xc4, B: 0x9b, A: 0x90},
		"CutPoly": {R: 0x70, G: 0x70, B: 0x20, A: 0x70},
		"FinArea": {R: 0x50, G: 0x50, B: 0x50, A: 0x30},
		"NWell":   {R: 0xd0, G: 0xd0, B: 0x40, A: 0x30},
	}
}

func (p Palette) fill(name string) color.RGBA {
	if c, ok := p[name]; ok {
		return c
	}
	return color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0x60}
}

// VectorOptions configures the vector backend.
type VectorOptions struct {
	// Scale is layout units per millimeter; zero means 100.
	Scale float64
	// Grid maps wire tracks back to coordinates; nil disables wire drawing.
	Grid *UniformGrid
	// WireWidth is the drawn width of wires, in layout units.
	WireWidth int
	// Palette overrides the layer colors; nil means DefaultPalette.
	Palette Palette
}

func (o VectorOptions) withDefaults() VectorOptions {
	if o.Scale <= 0 {
		o.Scale = 100
	}
	if o.WireWidth <= 0 {
		o.WireWidth = defaultViaCut
	}
	if o.Palette == nil {
		o.Palette = DefaultPalette()
	}
	return o
}

// WriteSVG renders a recording as SVG.
func WriteSVG(w io.Writer, rec *Recorder, opts VectorOptions) error {
	opts = opts.withDefaults()
	c, err := renderVector(rec, opts)
	if err != nil {
		return err
	}
	writer := svg.New(w, c.W, c.H, nil)
	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// WritePDF renders a recording as a single-page PDF.
func WritePDF(w io.Writer, rec *Recorder, opts VectorOptions) error {
	opts = opts.withDefaults()
	c, err := renderVector(rec, opts)
	if err != nil {
		return err
	}
	writer := pdf.New(w, c.W, c.H, nil)
	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func renderVector(rec *Recorder, opts VectorOptions) (*canvas.Canvas, error) {
	ext, err := Extent(rec, opts.Grid, opts.WireWidth)
	if err != nil {
		return nil, err
	}

	s := opts.Scale
	c := canvas.New(float64(ext.W())/s, float64(ext.H())/s)
	ctx := canvas.NewContext(c)

	toMM := func(v int) float64 { return float64(v) / s }
	drawRect := func(name string, box geometry.Rect) {
		ctx.SetFillColor(opts.Palette.fill(name))
		ctx.DrawPath(toMM(box.XL-ext.XL), toMM(box.YB-ext.YB),
			canvas.Rectangle(toMM(box.W()), toMM(box.H())))
	}

	for _, op := range rec.Ops {
		switch op.Kind {
		case OpRect:
			drawRect(op.Layer.Name, op.Box)
		case OpVia:
			for _, box := range viaCutBoxes(op) {
				drawRect("via", box)
			}
		case OpWire:
			if opts.Grid == nil {
				continue
			}
			xc := opts.Grid.Coord(op.Wire.Layer, op.Wire.Track)
			name := fmt.Sprintf("M%d", op.Wire.Layer)
			drawRect(name, geometry.NewRect(
				xc-opts.WireWidth/2, op.Wire.Y.Lo,
				xc+opts.WireWidth/2, op.Wire.Y.Hi))
		case OpBoundary:
			ctx.SetFillColor(color.RGBA{})
			ctx.SetStrokeColor(color.RGBA{A: 0xff})
			ctx.SetStrokeWidth(0.05)
			ctx.DrawPath(toMM(op.Box.XL-ext.XL), toMM(op.Box.YB-ext.YB),
				canvas.Rectangle(toMM(op.Box.W()), toMM(op.Box.H())))
			ctx.SetStrokeColor(canvas.Transparent)
		}
	}
	return c, nil
}

// Extent computes the bounding rectangle of everything in a recording.
func Extent(rec *Recorder, g *UniformGrid, wireW int) (geometry.Rect, error) {
	var ext geometry.Rect
	have := false
	add := func(box geometry.Rect) {
		if !have {
			ext = box
			have = true
			return
		}
		ext = ext.Union(box)
	}
	if rec.BoundBox.IsPhysical() {
		add(rec.BoundBox)
	}
	for _, op := range rec.Ops {
		switch op.Kind {
		case OpRect, OpBoundary:
			add(op.Box)
		case OpVia:
			for _, box := range viaCutBoxes(op) {
				add(box)
			}
		case OpWire:
			if g == nil {
				continue
			}
			xc := g.Coord(op.Wire.Layer, op.Wire.Track)
			add(geometry.NewRect(xc-wireW/2, op.Wire.Y.Lo, xc+wireW/2, op.Wire.Y.Hi))
		}
	}
	if !have {
		return geometry.Rect{}, fmt.Errorf("empty recording")
	}
	return ext, nil
}

// viaCutBoxes expands a via operation into the rectangles of its cut array.
func viaCutBoxes(op Op) []geometry.Rect {
	cut := op.Arr.CutHeight
	if cut <= 0 {
		cut = defaultViaCut
	}
	nRows := max(op.Arr.NumRows, 1)
	nx := max(op.Arr.NX, 1)
	pitchY := cut + op.Arr.SpRows
	pitchX := op.Arr.SpX

	totH := nRows*cut + (nRows-1)*op.Arr.SpRows
	y0 := op.Loc.Y - totH/2
	// arrayed cuts start at the anchor and extend right
	x0 := op.Loc.X

	boxes := make([]geometry.Rect, 0, nRows*nx)
	for ix := 0; ix < nx; ix++ {
		xc := x0 + ix*pitchX
		for iy := 0; iy < nRows; iy++ {
			yb := y0 + iy*pitchY
			boxes = append(boxes, geometry.NewRect(xc-cut/2, yb, xc+cut/2, yb+cut))
		}
	}
	return boxes
}
