package render

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"

	"fingrid/pkg/geometry"
)

// RasterOptions configures the raster backend.
type RasterOptions struct {
	// UnitsPerPixel is the layout-unit size of one pixel; zero means 4.
	UnitsPerPixel int
	// MaxDim caps the longer output dimension in pixels; the image is
	// downsampled when it exceeds the cap.  Zero means no cap.
	MaxDim int
	// Grid maps wire tracks back to coordinates; nil disables wire drawing.
	Grid *UniformGrid
	// WireWidth is the drawn width of wires, in layout units.
	WireWidth int
	// Palette overrides the layer colors; nil means DefaultPalette.
	Palette Palette
}

func (o RasterOptions) withDefaults() RasterOptions {
	if o.UnitsPerPixel <= 0 {
		o.UnitsPerPixel = 4
	}
	if o.WireWidth <= 0 {
		o.WireWidth = defaultViaCut
	}
	if o.Palette == nil {
		o.Palette = DefaultPalette()
	}
	return o
}

// Rasterize replays a recording into an RGBA image, white background, with
// the layout Y axis pointing up.
func Rasterize(rec *Recorder, opts RasterOptions) (*image.RGBA, error) {
	opts = opts.withDefaults()
	ext, err := Extent(rec, opts.Grid, opts.WireWidth)
	if err != nil {
		return nil, err
	}

	upp := opts.UnitsPerPixel
	w := geometry.CeilDiv(ext.W(), upp)
	h := geometry.CeilDiv(ext.H(), upp)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	blend := func(name string, box geometry.Rect) {
		px := image.Rect(
			(box.XL-ext.XL)/upp, (ext.YT-box.YT)/upp,
			geometry.CeilDiv(box.XR-ext.XL, upp), geometry.CeilDiv(ext.YT-box.YB, upp),
		)
		draw.Draw(img, px, image.NewUniform(opts.Palette.fill(name)), image.Point{}, draw.Over)
	}

	for _, op := range rec.Ops {
		switch op.Kind {
		case OpRect:
			blend(op.Layer.Name, op.Box)
		case OpVia:
			for _, box := range viaCutBoxes(op) {
				blend("via", box)
			}
		case OpWire:
			if opts.Grid == nil {
				continue
			}
			xc := opts.Grid.Coord(op.Wire.Layer, op.Wire.Track)
			blend(fmt.Sprintf("M%d", op.Wire.Layer), geometry.NewRect(
				xc-opts.WireWidth/2, op.Wire.Y.Lo,
				xc+opts.WireWidth/2, op.Wire.Y.Hi))
		}
	}

	if opts.MaxDim > 0 && (w > opts.MaxDim || h > opts.MaxDim) {
		img = downsample(img, opts.MaxDim)
	}
	return img, nil
}

// WritePNG renders a recording as PNG.
func WritePNG(w io.Writer, rec *Recorder, opts RasterOptions) error {
	img, err := Rasterize(rec, opts)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

func downsample(img *image.RGBA, maxDim int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w >= h {
		h = h * maxDim / w
		w = maxDim
	} else {
		w = w * maxDim / h
		h = maxDim
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(out, out.Bounds(), img, b, xdraw.Src, nil)
	return out
}
