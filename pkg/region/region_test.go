package region

import (
	"errors"
	"image"
	"math"
	"testing"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestNew(t *testing.T) {
	r, err := New(0.1, 0.5, 0.2, 0.8)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}

	if r.Left() != 0.1 || r.Right() != 0.5 || r.Top() != 0.2 || r.Bottom() != 0.8 {
		t.Errorf("edges not stored: got %v %v %v %v", r.Left(), r.Right(), r.Top(), r.Bottom())
	}
	if !almostEqual(r.Width(), 0.4) {
		t.Errorf("Width() = %v, want 0.4", r.Width())
	}
	if !almostEqual(r.Height(), 0.6) {
		t.Errorf("Height() = %v, want 0.6", r.Height())
	}
	if !almostEqual(r.X(), 0.3) {
		t.Errorf("X() = %v, want 0.3", r.X())
	}
	if !almostEqual(r.Y(), 0.5) {
		t.Errorf("Y() = %v, want 0.5", r.Y())
	}
}

func TestNewInvalidEdges(t *testing.T) {
	cases := []struct {
		name                     string
		left, right, top, bottom float64
	}{
		{"left greater than right", 0.6, 0.5, 0.2, 0.8},
		{"top greater than bottom", 0.1, 0.5, 0.9, 0.8},
		{"left barely greater", 0.5 + 1e-12, 0.5, 0.2, 0.8},
		{"top barely greater", 0.1, 0.5, 0.8 + 1e-12, 0.8},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := New(c.left, c.right, c.top, c.bottom); !errors.Is(err, ErrInvalidGeometry) {
				t.Errorf("New(%v, %v, %v, %v) error = %v, want ErrInvalidGeometry",
					c.left, c.right, c.top, c.bottom, err)
			}
		})
	}
}

func TestZeroSizeEdgesAreValid(t *testing.T) {
	r, err := New(0.5, 0.5, 0.3, 0.3)
	if err != nil {
		t.Fatalf("degenerate region rejected: %v", err)
	}
	if r.Width() != 0 || r.Height() != 0 {
		t.Errorf("expected zero size, got %v x %v", r.Width(), r.Height())
	}
}

func TestEdgeCenterRoundTrip(t *testing.T) {
	edges := [][4]float64{
		{0, 1, 0, 1},
		{0.1, 0.5, 0.2, 0.8},
		{0.25, 0.25, 0.4, 0.9},
		{0.333, 0.667, 0.111, 0.999},
	}
	for _, e := range edges {
		var r Region
		if err := r.SetEdges(e[0], e[1], e[2], e[3]); err != nil {
			t.Fatalf("SetEdges(%v) failed: %v", e, err)
		}

		// Re-derive the edges from the center/size view.
		var back Region
		if err := back.SetCenterSize(r.X(), r.Y(), r.Width(), r.Height()); err != nil {
			t.Fatalf("SetCenterSize failed: %v", err)
		}

		if !almostEqual(back.Left(), e[0]) || !almostEqual(back.Right(), e[1]) ||
			!almostEqual(back.Top(), e[2]) || !almostEqual(back.Bottom(), e[3]) {
			t.Errorf("round trip of %v produced %v %v %v %v",
				e, back.Left(), back.Right(), back.Top(), back.Bottom())
		}
	}
}

func TestInvariantAfterEverySetter(t *testing.T) {
	setters := []struct {
		name string
		call func(r *Region) error
	}{
		{"SetLeft", func(r *Region) error { return r.SetLeft(0.05) }},
		{"SetRight", func(r *Region) error { return r.SetRight(0.95) }},
		{"SetTop", func(r *Region) error { return r.SetTop(0.15) }},
		{"SetBottom", func(r *Region) error { return r.SetBottom(0.85) }},
		{"SetX", func(r *Region) error { return r.SetX(0.5) }},
		{"SetY", func(r *Region) error { return r.SetY(0.5) }},
		{"SetWidth", func(r *Region) error { return r.SetWidth(0.3) }},
		{"SetHeight", func(r *Region) error { return r.SetHeight(0.3) }},
	}

	for _, s := range setters {
		t.Run(s.name, func(t *testing.T) {
			r, err := New(0.1, 0.5, 0.2, 0.8)
			if err != nil {
				t.Fatal(err)
			}
			if err := s.call(&r); err != nil {
				t.Fatalf("%s failed: %v", s.name, err)
			}
			if !almostEqual(r.Width(), r.Right()-r.Left()) {
				t.Errorf("width invariant broken after %s: %v != %v", s.name, r.Width(), r.Right()-r.Left())
			}
			if !almostEqual(r.Height(), r.Bottom()-r.Top()) {
				t.Errorf("height invariant broken after %s: %v != %v", s.name, r.Height(), r.Bottom()-r.Top())
			}
			if !almostEqual(r.X(), r.Left()+r.Width()/2) {
				t.Errorf("center invariant broken after %s", s.name)
			}
		})
	}
}

func TestSetterRejectsInversionWithoutMutating(t *testing.T) {
	r, err := New(0.1, 0.5, 0.2, 0.8)
	if err != nil {
		t.Fatal(err)
	}

	if err := r.SetLeft(0.6); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("SetLeft past right: error = %v, want ErrInvalidGeometry", err)
	}
	if err := r.SetBottom(0.1); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("SetBottom past top: error = %v, want ErrInvalidGeometry", err)
	}
	if err := r.SetWidth(-0.1); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("negative SetWidth: error = %v, want ErrInvalidGeometry", err)
	}
	if err := r.SetHeight(-0.1); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("negative SetHeight: error = %v, want ErrInvalidGeometry", err)
	}

	// Failed mutations must not leave a half-updated region behind.
	if r.Left() != 0.1 || r.Right() != 0.5 || r.Top() != 0.2 || r.Bottom() != 0.8 {
		t.Errorf("region mutated by failed setter: %v", r)
	}
}

func TestContains(t *testing.T) {
	r, _ := New(0.1, 0.5, 0.2, 0.8)

	if !r.Contains(0.3, 0.5) {
		t.Error("expected center point to be contained")
	}
	if !r.Contains(0.1, 0.2) {
		t.Error("expected corner point to be contained")
	}
	if r.Contains(0.05, 0.5) {
		t.Error("point left of region reported as contained")
	}
	if r.Contains(0.3, 0.9) {
		t.Error("point below region reported as contained")
	}
}

func TestRect(t *testing.T) {
	r, _ := New(0.25, 0.75, 0.5, 1.0)

	got := r.Rect(400, 200)
	want := image.Rect(100, 100, 300, 200)
	if got != want {
		t.Errorf("Rect(400, 200) = %v, want %v", got, want)
	}
}

func TestArea(t *testing.T) {
	r, _ := New(0, 0.5, 0, 0.5)
	if !almostEqual(r.Area(), 0.25) {
		t.Errorf("Area() = %v, want 0.25", r.Area())
	}
}
