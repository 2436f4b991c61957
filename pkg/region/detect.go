package region

import (
	"encoding/json"
	"fmt"
)

// DetectRegion is a Region annotated with the detection metadata of one
// ground-truth row. Flags follow the Open Images convention: 0 = no,
// 1 = yes, -1 = unknown.
type DetectRegion struct {
	Region
	ClassID     string
	Confidence  float64
	IsOccluded  int
	IsTruncated int
	IsGroupOf   int
	IsDepiction int
	IsInside    int
}

// NewDetect creates a DetectRegion from edge coordinates with a default
// confidence of 1.0.
func NewDetect(left, right, top, bottom float64) (*DetectRegion, error) {
	r, err := New(left, right, top, bottom)
	if err != nil {
		return nil, err
	}
	return &DetectRegion{Region: r, Confidence: 1.0}, nil
}

// detectRegionJSON is the persisted record shape. Edges are authoritative;
// center and size are re-derived on load.
type detectRegionJSON struct {
	Left        float64 `json:"left"`
	Right       float64 `json:"right"`
	Top         float64 `json:"top"`
	Bottom      float64 `json:"bottom"`
	ClassID     string  `json:"class_id"`
	Confidence  float64 `json:"confidence"`
	IsOccluded  int     `json:"is_occluded"`
	IsTruncated int     `json:"is_truncated"`
	IsGroupOf   int     `json:"is_group_of"`
	IsDepiction int     `json:"is_depiction"`
	IsInside    int     `json:"is_inside"`
}

// MarshalJSON encodes the region as its edge tuple plus detection metadata.
func (d *DetectRegion) MarshalJSON() ([]byte, error) {
	return json.Marshal(detectRegionJSON{
		Left:        d.Left(),
		Right:       d.Right(),
		Top:         d.Top(),
		Bottom:      d.Bottom(),
		ClassID:     d.ClassID,
		Confidence:  d.Confidence,
		IsOccluded:  d.IsOccluded,
		IsTruncated: d.IsTruncated,
		IsGroupOf:   d.IsGroupOf,
		IsDepiction: d.IsDepiction,
		IsInside:    d.IsInside,
	})
}

// UnmarshalJSON decodes a persisted record, validating its geometry.
func (d *DetectRegion) UnmarshalJSON(data []byte) error {
	var rec detectRegionJSON
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	if err := d.SetEdges(rec.Left, rec.Right, rec.Top, rec.Bottom); err != nil {
		return fmt.Errorf("detect region %q: %w", rec.ClassID, err)
	}
	d.ClassID = rec.ClassID
	d.Confidence = rec.Confidence
	d.IsOccluded = rec.IsOccluded
	d.IsTruncated = rec.IsTruncated
	d.IsGroupOf = rec.IsGroupOf
	d.IsDepiction = rec.IsDepiction
	d.IsInside = rec.IsInside
	return nil
}
