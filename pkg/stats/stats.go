// Package stats computes class-frequency statistics over sample sets and
// renders them as horizontal bar charts.
package stats

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/menta2k/sample-batcher/pkg/overlay"
	"github.com/menta2k/sample-batcher/pkg/sample"
)

// ClassCount is one class-frequency entry.
type ClassCount struct {
	ClassID string
	Count   int
}

// Counts holds per-class frequency tallies over a collection of samples.
type Counts struct {
	// Instances counts every region of the class.
	Instances []ClassCount
	// Appearances counts images containing at least one region of the class.
	Appearances []ClassCount
}

// Collect tallies region classes across all samples. Results are sorted
// by descending count with ties broken by class id, so repeated runs
// produce identical output.
func Collect(samples []*sample.Sample) Counts {
	instances := map[string]int{}
	appearances := map[string]int{}
	for _, s := range samples {
		seen := map[string]bool{}
		for _, r := range s.Regions {
			instances[r.ClassID]++
			if !seen[r.ClassID] {
				seen[r.ClassID] = true
				appearances[r.ClassID]++
			}
		}
	}
	return Counts{Instances: sorted(instances), Appearances: sorted(appearances)}
}

func sorted(m map[string]int) []ClassCount {
	out := make([]ClassCount, 0, len(m))
	for id, n := range m {
		out = append(out, ClassCount{ClassID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ClassID < out[j].ClassID
	})
	return out
}

// TopN maps the first n entries through the label function and folds the
// remainder into an "(OTHERS)" bucket.
func TopN(counts []ClassCount, n int, label func(string) string) []ClassCount {
	if label == nil {
		label = func(id string) string { return id }
	}
	if n > len(counts) {
		n = len(counts)
	}
	out := make([]ClassCount, 0, n+1)
	for _, c := range counts[:n] {
		out = append(out, ClassCount{ClassID: label(c.ClassID), Count: c.Count})
	}
	rest := 0
	for _, c := range counts[n:] {
		rest += c.Count
	}
	if rest > 0 {
		out = append(out, ClassCount{ClassID: "(OTHERS)", Count: rest})
	}
	return out
}

// Chart layout.
const (
	chartWidth  = 900
	barHeight   = 18
	barGap      = 8
	marginLeft  = 240
	marginTop   = 48
	marginRight = 80
)

// BarChart renders the counts as a horizontal bar chart and saves it as a
// PNG at path.
func BarChart(title string, counts []ClassCount, path string) error {
	if len(counts) == 0 {
		return fmt.Errorf("no counts to chart")
	}

	height := marginTop + len(counts)*(barHeight+barGap) + barGap
	img := imaging.New(chartWidth, height, color.NRGBA{R: 245, G: 245, B: 245, A: 255})

	maxCount := counts[0].Count
	for _, c := range counts {
		if c.Count > maxCount {
			maxCount = c.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	drawText(img, title, 16, marginTop/2)

	colors := overlay.Colors(len(counts), 0.7, 0.85, 0.0, 0.75)
	barSpan := chartWidth - marginLeft - marginRight
	for i, c := range counts {
		y := marginTop + i*(barHeight+barGap)
		w := c.Count * barSpan / maxCount
		if w < 1 {
			w = 1
		}
		fillBar(img, image.Rect(marginLeft, y, marginLeft+w, y+barHeight), colors[i])
		drawText(img, c.ClassID, 16, y+barHeight-4)
		drawText(img, fmt.Sprintf("%d", c.Count), marginLeft+w+6, y+barHeight-4)
	}

	return imaging.Save(img, path)
}

func fillBar(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func drawText(img *image.NRGBA, text string, x, y int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.NRGBA{R: 40, G: 40, B: 40, A: 255}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
