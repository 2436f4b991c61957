package region

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidGeometry reports a mutation that would produce an inverted
// or negative-size region. It is a data error, never retried.
var ErrInvalidGeometry = errors.New("invalid geometry")

// Region is a rectangular area in normalized image coordinates, with the
// origin (0, 0) at the top-left corner. The edge tuple is the canonical
// representation; center and size are derived on read, so the two views
// can never drift apart.
type Region struct {
	left, right, top, bottom float64
}

// New creates a Region from its edge coordinates.
func New(left, right, top, bottom float64) (Region, error) {
	var r Region
	if err := r.SetEdges(left, right, top, bottom); err != nil {
		return Region{}, err
	}
	return r, nil
}

// SetEdges replaces all four edges at once. The region is left untouched
// when the edges are inverted.
func (r *Region) SetEdges(left, right, top, bottom float64) error {
	if right < left {
		return fmt.Errorf("%w: right (%v) must not be less than left (%v)", ErrInvalidGeometry, right, left)
	}
	if bottom < top {
		return fmt.Errorf("%w: bottom (%v) must not be less than top (%v)", ErrInvalidGeometry, bottom, top)
	}
	r.left, r.right, r.top, r.bottom = left, right, top, bottom
	return nil
}

// SetCenterSize positions the region by its center point and size.
func (r *Region) SetCenterSize(x, y, width, height float64) error {
	if width < 0 {
		return fmt.Errorf("%w: width (%v) must not be negative", ErrInvalidGeometry, width)
	}
	if height < 0 {
		return fmt.Errorf("%w: height (%v) must not be negative", ErrInvalidGeometry, height)
	}
	r.left = x - width/2
	r.right = x + width/2
	r.top = y - height/2
	r.bottom = y + height/2
	return nil
}

// Left returns the left edge.
func (r Region) Left() float64 { return r.left }

// Right returns the right edge.
func (r Region) Right() float64 { return r.right }

// Top returns the top edge.
func (r Region) Top() float64 { return r.top }

// Bottom returns the bottom edge.
func (r Region) Bottom() float64 { return r.bottom }

// Width returns the horizontal size.
func (r Region) Width() float64 { return r.right - r.left }

// Height returns the vertical size.
func (r Region) Height() float64 { return r.bottom - r.top }

// X returns the horizontal center.
func (r Region) X() float64 { return r.left + r.Width()/2 }

// Y returns the vertical center.
func (r Region) Y() float64 { return r.top + r.Height()/2 }

// SetLeft moves the left edge, keeping the other three in place.
func (r *Region) SetLeft(v float64) error { return r.SetEdges(v, r.right, r.top, r.bottom) }

// SetRight moves the right edge.
func (r *Region) SetRight(v float64) error { return r.SetEdges(r.left, v, r.top, r.bottom) }

// SetTop moves the top edge.
func (r *Region) SetTop(v float64) error { return r.SetEdges(r.left, r.right, v, r.bottom) }

// SetBottom moves the bottom edge.
func (r *Region) SetBottom(v float64) error { return r.SetEdges(r.left, r.right, r.top, v) }

// SetX recenters the region horizontally, keeping its size.
func (r *Region) SetX(v float64) error { return r.SetCenterSize(v, r.Y(), r.Width(), r.Height()) }

// SetY recenters the region vertically, keeping its size.
func (r *Region) SetY(v float64) error { return r.SetCenterSize(r.X(), v, r.Width(), r.Height()) }

// SetWidth resizes the region around its center.
func (r *Region) SetWidth(v float64) error { return r.SetCenterSize(r.X(), r.Y(), v, r.Height()) }

// SetHeight resizes the region around its center.
func (r *Region) SetHeight(v float64) error { return r.SetCenterSize(r.X(), r.Y(), r.Width(), v) }

// Contains reports whether the given point lies within the region.
func (r Region) Contains(x, y float64) bool {
	return x >= r.left && x <= r.right && y >= r.top && y <= r.bottom
}

// Area returns the normalized area of the region.
func (r Region) Area() float64 { return r.Width() * r.Height() }

// Rect converts the normalized region to pixel coordinates for an image
// of the given size. The region itself never stores pixel dimensions.
func (r Region) Rect(imgWidth, imgHeight int) image.Rectangle {
	return image.Rect(
		int(r.left*float64(imgWidth)),
		int(r.top*float64(imgHeight)),
		int(r.right*float64(imgWidth)),
		int(r.bottom*float64(imgHeight)),
	)
}

func (r Region) String() string {
	return fmt.Sprintf("[region x: %v y: %v width: %v height: %v]", r.X(), r.Y(), r.Width(), r.Height())
}
