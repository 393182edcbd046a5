// Package render draws detection results onto images for caller display.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/facegate/facegate/internal/facematch"
)

const (
	boxThickness   = 2
	labelStripTall = 20
)

var (
	boxColor  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	textColor = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

// Box is a face bounding box in pixel coordinates.
type Box struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// Mark is one box to draw, optionally with a label strip beneath it.
type Mark struct {
	Box   Box
	Label string // empty = outline only
}

// DecodeImage decodes JPEG, PNG, GIF or BMP image bytes.
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// EncodeJPEG encodes an image as JPEG.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Annotate draws every mark onto a copy of img: a 2px outline per box and,
// when the mark carries a label, a filled strip along the bottom edge of the
// box with the label text inside it. The input image is not modified.
func Annotate(img image.Image, marks []Mark) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	for _, mark := range marks {
		box := clampBox(mark.Box, bounds)
		drawOutline(out, box)
		if mark.Label != "" {
			drawLabel(out, box, mark.Label)
		}
	}
	return out
}

// clampBox constrains a box to the image bounds and fixes inverted edges.
func clampBox(b Box, bounds image.Rectangle) Box {
	r := image.Rect(b.Left, b.Top, b.Right, b.Bottom).Intersect(bounds)
	return Box{Top: r.Min.Y, Right: r.Max.X, Bottom: r.Max.Y, Left: r.Min.X}
}

func drawOutline(out *image.RGBA, b Box) {
	fill(out, image.Rect(b.Left, b.Top, b.Right, b.Top+boxThickness))
	fill(out, image.Rect(b.Left, b.Bottom-boxThickness, b.Right, b.Bottom))
	fill(out, image.Rect(b.Left, b.Top, b.Left+boxThickness, b.Bottom))
	fill(out, image.Rect(b.Right-boxThickness, b.Top, b.Right, b.Bottom))
}

func drawLabel(out *image.RGBA, b Box, label string) {
	strip := image.Rect(b.Left, b.Bottom-labelStripTall, b.Right, b.Bottom)
	fill(out, strip)

	// The bitmap face covers ASCII only; fold diacritics before drawing.
	d := &font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(textColor),
		Face: basicfont.Face7x13,
		Dot: fixed.Point26_6{
			X: fixed.I(b.Left + boxThickness + 2),
			Y: fixed.I(b.Bottom - 6),
		},
	}
	d.DrawString(facematch.RemoveDiacritics(label))
}

func fill(out *image.RGBA, r image.Rectangle) {
	draw.Draw(out, r.Intersect(out.Bounds()), image.NewUniform(boxColor), image.Point{}, draw.Src)
}
