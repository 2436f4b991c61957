// Package overlay draws labeled bounding boxes onto sample images.
package overlay

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/menta2k/sample-batcher/pkg/region"
)

// labelBGOpacity is the opacity of the box behind each label.
const labelBGOpacity = 0.7

// Draw renders each region's bounding box and class label onto a copy of
// img. Boxes of the same label share a color; each label is drawn once,
// on its widest box, inside the box when it touches the top edge. The
// label function maps class ids to display names; pass nil to keep the
// raw ids.
func Draw(img image.Image, regions []*region.DetectRegion, label func(string) string) image.Image {
	if label == nil {
		label = func(id string) string { return id }
	}

	dst := imaging.Clone(img)
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()

	// One color per distinct label, in first-appearance order.
	var names []string
	colorIdx := map[string]int{}
	for _, r := range regions {
		name := label(r.ClassID)
		if _, ok := colorIdx[name]; !ok {
			colorIdx[name] = len(names)
			names = append(names, name)
		}
	}
	colors := Colors(len(names), 0.8, 1.0, 0.35, 0.5)

	stroke := int(math.Max(2, 0.004*float64(min(w, h))))

	// Track the widest box per label so each label is drawn only once.
	widest := map[string]image.Rectangle{}
	for _, r := range regions {
		name := label(r.ClassID)
		rect := r.Rect(w, h)
		drawRect(dst, rect, colors[colorIdx[name]], stroke)
		if prev, ok := widest[name]; !ok || rect.Dx() > prev.Dx() {
			widest[name] = rect
		}
	}

	for _, name := range names {
		rect := widest[name]
		inside := rect.Min.Y <= 30
		drawLabel(dst, name, rect, colors[colorIdx[name]], inside)
	}
	return dst
}

// Colors generates n colors spread across a hue range of the HSV scale.
func Colors(n int, saturation, brightness, hueOffset, hueRange float64) []color.NRGBA {
	colors := make([]color.NRGBA, n)
	for i := range colors {
		hue := hueOffset + hueRange*(float64(i)/float64(n))
		r, g, b := hsvToRGB(hue, saturation, brightness)
		colors[i] = color.NRGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	h = math.Mod(h, 1)
	if h < 0 {
		h++
	}
	sector := int(h * 6)
	f := h*6 - float64(sector)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch sector % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	}
	return uint8(r*255 + 0.5), uint8(g*255 + 0.5), uint8(b*255 + 0.5)
}

func drawRect(img *image.NRGBA, rect image.Rectangle, c color.NRGBA, stroke int) {
	for s := 0; s < stroke; s++ {
		drawHLine(img, rect.Min.Y+s, rect.Min.X, rect.Max.X, c)
		drawHLine(img, rect.Max.Y-1-s, rect.Min.X, rect.Max.X, c)
		drawVLine(img, rect.Min.X+s, rect.Min.Y, rect.Max.Y, c)
		drawVLine(img, rect.Max.X-1-s, rect.Min.Y, rect.Max.Y, c)
	}
}

func drawLabel(img *image.NRGBA, text string, box image.Rectangle, c color.NRGBA, inside bool) {
	face := basicfont.Face7x13
	pad := 4
	tw := font.MeasureString(face, text).Ceil()
	th := face.Metrics().Height.Ceil()

	x := box.Min.X
	y := box.Min.Y - th - 2*pad
	if inside || y < 0 {
		y = box.Min.Y
	}

	fillRect(img, image.Rect(x, y, x+tw+2*pad, y+th+2*pad), c, labelBGOpacity)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.NRGBA{A: 255}),
		Face: face,
		Dot:  fixed.P(x+pad, y+pad+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

// fillRect blends c over the rectangle at the given opacity.
func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA, opacity float64) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			old := img.NRGBAAt(x, y)
			img.SetNRGBA(x, y, color.NRGBA{
				R: blend(old.R, c.R, opacity),
				G: blend(old.G, c.G, opacity),
				B: blend(old.B, c.B, opacity),
				A: 255,
			})
		}
	}
}

func blend(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t + 0.5)
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	x0 = max(x0, 0)
	x1 = min(x1, img.Bounds().Dx())
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	y0 = max(y0, 0)
	y1 = min(y1, img.Bounds().Dy())
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
