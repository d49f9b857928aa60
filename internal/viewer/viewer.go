// Package viewer shows a rendered layout image in a desktop window.
package viewer

import (
	"image"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	fynecanvas "fyne.io/fyne/v2/canvas"
)

// Show opens a window displaying the image and blocks until it is closed.
// Pixels are kept crisp rather than smoothed, since layout geometry reads
// better without interpolation.
func Show(title string, img image.Image) {
	a := fyneapp.New()
	w := a.NewWindow(title)

	view := fynecanvas.NewImageFromImage(img)
	view.FillMode = fynecanvas.ImageFillContain
	view.ScaleMode = fynecanvas.ImageScalePixels

	w.SetContent(view)
	b := img.Bounds()
	w.Resize(fyne.NewSize(float32(min(b.Dx(), 1200)), float32(min(b.Dy(), 900))))
	w.ShowAndRun()
}
