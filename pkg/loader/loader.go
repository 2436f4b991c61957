// Package loader ingests the raw ground-truth CSV files: class labels,
// image URLs, and per-image bounding-box annotations.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/menta2k/sample-batcher/pkg/region"
	"github.com/menta2k/sample-batcher/pkg/sample"
)

// Loader reads the source dataset files and groups annotation rows into
// samples by image key.
type Loader struct {
	labels map[string]string
}

// New creates an empty loader.
func New() *Loader {
	return &Loader{labels: map[string]string{}}
}

// LoadLabels reads the class-descriptions CSV (label id, display name).
func (l *Loader) LoadLabels(path string) error {
	labels := map[string]string{}
	err := forEachRow(path, false, func(row []string) error {
		if len(row) < 2 {
			return fmt.Errorf("label row needs 2 columns, got %d", len(row))
		}
		labels[row[0]] = row[1]
		return nil
	})
	if err != nil {
		return err
	}
	l.labels = labels
	log.Printf("loaded %d class labels from %s", len(labels), filepath.Base(path))
	return nil
}

// Label resolves a class id to its upper-cased display name. Unknown ids
// map to themselves.
func (l *Loader) Label(id string) string {
	if name, ok := l.labels[id]; ok {
		return strings.ToUpper(name)
	}
	return id
}

// LoadSamples reads the image URL CSV (image file name, remote URL) and
// creates one sample per image key, in file order. The key is the file
// name without its extension. A repeated key keeps its original position
// but takes the later URL.
func (l *Loader) LoadSamples(path string) ([]*sample.Sample, error) {
	var samples []*sample.Sample
	byKey := map[string]*sample.Sample{}

	err := forEachRow(path, true, func(row []string) error {
		if len(row) < 2 {
			return fmt.Errorf("image URL row needs 2 columns, got %d", len(row))
		}
		key := strings.TrimSuffix(row[0], filepath.Ext(row[0]))
		if s, ok := byKey[key]; ok {
			s.RemotePath = row[1]
			return nil
		}
		s := sample.New(key, row[1])
		byKey[key] = s
		samples = append(samples, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("loaded %d samples from %s", len(samples), filepath.Base(path))
	return samples, nil
}

// AttachRegions reads the bounding-box CSV and appends a DetectRegion to
// the matching sample for each annotation row. Rows for unknown image
// keys are skipped. Row layout: ImageID, Source, LabelName, Confidence,
// XMin, XMax, YMin, YMax, IsOccluded, IsTruncated, IsGroupOf,
// IsDepiction, IsInside.
func (l *Loader) AttachRegions(path string, samples []*sample.Sample) error {
	byKey := make(map[string]*sample.Sample, len(samples))
	for _, s := range samples {
		byKey[s.Key] = s
	}

	attached := 0
	err := forEachRow(path, true, func(row []string) error {
		if len(row) < 13 {
			return fmt.Errorf("annotation row needs 13 columns, got %d", len(row))
		}
		s, ok := byKey[row[0]]
		if !ok {
			return nil
		}
		dr, err := parseRegion(row)
		if err != nil {
			return fmt.Errorf("annotation for %s: %w", row[0], err)
		}
		s.AddRegion(dr)
		attached++
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("attached %d regions from %s", attached, filepath.Base(path))
	return nil
}

func parseRegion(row []string) (*region.DetectRegion, error) {
	coords := make([]float64, 4)
	for i, col := range row[4:8] {
		v, err := strconv.ParseFloat(strings.TrimSpace(col), 64)
		if err != nil {
			return nil, fmt.Errorf("coordinate column %d: %w", i+4, err)
		}
		coords[i] = v
	}

	// Columns are XMin, XMax, YMin, YMax.
	dr, err := region.NewDetect(coords[0], coords[1], coords[2], coords[3])
	if err != nil {
		return nil, err
	}
	dr.ClassID = row[2]

	dr.Confidence, err = strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
	if err != nil {
		return nil, fmt.Errorf("confidence column: %w", err)
	}

	flags := make([]int, 5)
	for i, col := range row[8:13] {
		flags[i], err = strconv.Atoi(strings.TrimSpace(col))
		if err != nil {
			return nil, fmt.Errorf("flag column %d: %w", i+8, err)
		}
	}
	dr.IsOccluded = flags[0]
	dr.IsTruncated = flags[1]
	dr.IsGroupOf = flags[2]
	dr.IsDepiction = flags[3]
	dr.IsInside = flags[4]
	return dr, nil
}

// forEachRow runs fn on every record of a CSV file. The URL and
// annotation files carry a header row; the labels file does not.
func forEachRow(path string, skipHeader bool, fn func(row []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
		}
		if first && skipHeader {
			first = false
			continue
		}
		first = false
		if err := fn(row); err != nil {
			return err
		}
	}
}
