package sample

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/menta2k/sample-batcher/internal/utils"
)

// DefaultCapacity is the maximum number of samples in a single set.
const DefaultCapacity = 5000

// ErrSetNotFound reports a requested set index with no persisted file.
var ErrSetNotFound = errors.New("sample set not found")

// Set is a fixed-capacity, ordered batch of samples that is persisted and
// downloaded independently of the other sets.
type Set struct {
	Index   int       `json:"index"`
	Samples []*Sample `json:"samples"`
}

// Chunk splits samples into sets of at most capacity entries, preserving
// input order: sample i lands in set i/capacity, so the same input always
// reproduces the same membership. Every sample's SetIndex is assigned to
// its containing set before returning.
func Chunk(samples []*Sample, capacity int) ([]*Set, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("set capacity must be positive, got %d", capacity)
	}
	var sets []*Set
	for start := 0; start < len(samples); start += capacity {
		end := start + capacity
		if end > len(samples) {
			end = len(samples)
		}
		set := &Set{Index: len(sets), Samples: samples[start:end]}
		for _, s := range set.Samples {
			s.SetIndex = set.Index
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// SetPath returns the file path for the set with the given index.
func SetPath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("sample_set_%d.json", index))
}

// Save writes the set to path as indented JSON. The write is atomic so an
// interrupted run cannot leave a truncated set file behind.
func (ss *Set) Save(path string) error {
	data, err := json.MarshalIndent(ss, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sample set %d: %w", ss.Index, err)
	}
	return utils.WriteFileAtomic(path, data)
}

// Load reads a persisted set back from path, reproducing the saved sample
// and region order. A missing file is reported as ErrSetNotFound.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s (have you created the sample sets first?)", ErrSetNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	var ss Set
	if err := json.Unmarshal(data, &ss); err != nil {
		return nil, fmt.Errorf("failed to parse sample set %s: %w", path, err)
	}
	// Samples always carry the index of the file they came from.
	for _, s := range ss.Samples {
		s.SetIndex = ss.Index
	}
	return &ss, nil
}

// LoadIndex loads set <index> from the samples directory.
func LoadIndex(dir string, index int) (*Set, error) {
	return Load(SetPath(dir, index))
}

// Failure records one sample that could not be fetched or decoded.
type Failure struct {
	Key string
	Err error
}

// DownloadReport summarizes a batch download.
type DownloadReport struct {
	Fetched  int
	Failures []Failure
}

// FailedKeys returns the keys of all failed samples, sorted.
func (r *DownloadReport) FailedKeys() []string {
	keys := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		keys[i] = f.Key
	}
	sort.Strings(keys)
	return keys
}

// DownloadAll resolves every sample image in the set, fetching up to
// workers images concurrently. A failure on one sample does not stop the
// others; failures are collected into the report. Cancelling the context
// stops the batch, leaving previously completed images intact.
func (ss *Set) DownloadAll(ctx context.Context, store *Store, workers int) (*DownloadReport, error) {
	if workers < 1 {
		workers = 1
	}

	var (
		mu     sync.Mutex
		report DownloadReport
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, s := range ss.Samples {
		g.Go(func() error {
			if _, err := store.EnsureImage(ctx, s); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				mu.Lock()
				report.Failures = append(report.Failures, Failure{Key: s.Key, Err: err})
				mu.Unlock()
				return nil
			}
			mu.Lock()
			report.Fetched++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return &report, err
	}
	return &report, nil
}
