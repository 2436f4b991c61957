// Package sample groups ground-truth annotations by image into samples,
// batches samples into fixed-capacity sets, and resolves each sample's
// image bytes from a local cache or the remote source.
package sample

import (
	"github.com/menta2k/sample-batcher/pkg/region"
)

// UnassignedSet marks a sample that has not been placed into a set yet.
const UnassignedSet = -1

// Sample ties one image key to its remote location and the detection
// regions annotated on it. Region order is the annotation order of the
// source data.
type Sample struct {
	Key        string                 `json:"key"`
	SetIndex   int                    `json:"set_index"`
	RemotePath string                 `json:"remote_path"`
	Regions    []*region.DetectRegion `json:"detect_regions"`
}

// New creates a sample that does not belong to a set yet.
func New(key, remotePath string) *Sample {
	return &Sample{
		Key:        key,
		SetIndex:   UnassignedSet,
		RemotePath: remotePath,
		Regions:    []*region.DetectRegion{},
	}
}

// AddRegion appends a detection region, preserving annotation order.
func (s *Sample) AddRegion(r *region.DetectRegion) {
	s.Regions = append(s.Regions, r)
}
