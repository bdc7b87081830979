package render

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	footerBack = color.RGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xff}
	footerText = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// stampFooter returns img with a caption strip along its bottom edge. Text
// wider than the image keeps its tail, so the file name stays readable.
func stampFooter(img image.Image, text string) image.Image {
	text = strings.TrimSpace(text)
	if img == nil || text == "" {
		return img
	}
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)

	face := basicfont.Face7x13
	m := face.Metrics()
	const pad = 3
	strip := image.Rect(b.Min.X, b.Max.Y-(m.Height.Ceil()+2*pad), b.Max.X, b.Max.Y)
	draw.Draw(out, strip, image.NewUniform(footerBack), image.Point{}, draw.Src)

	d := &font.Drawer{Dst: out, Src: image.NewUniform(footerText), Face: face}
	text = fitTail(d, text, b.Dx()-2*pad)
	d.Dot = fixed.P(b.Min.X+pad, b.Max.Y-pad-m.Descent.Ceil())
	d.DrawString(text)
	return out
}

// fitTail trims the head of text until it measures at most width pixels.
func fitTail(d *font.Drawer, text string, width int) string {
	if d.MeasureString(text).Ceil() <= width {
		return text
	}
	r := []rune(text)
	for len(r) > 0 && d.MeasureString("..."+string(r)).Ceil() > width {
		r = r[1:]
	}
	return "..." + string(r)
}
