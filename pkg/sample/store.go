package sample

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/chai2010/webp"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/sample-batcher/internal/utils"
	"github.com/menta2k/sample-batcher/pkg/overlay"
)

var (
	// ErrDownloadFailed reports a fetch that did not produce a complete
	// file. It is transient: re-invoking EnsureImage retries the fetch.
	ErrDownloadFailed = errors.New("download failed")

	// ErrCorruptImage reports bytes that could not be decoded, whether
	// freshly downloaded or previously cached.
	ErrCorruptImage = errors.New("corrupt image")
)

// cacheState classifies the local file backing a sample.
type cacheState int

const (
	cacheAbsent cacheState = iota
	cacheValid
	cacheCorrupt
)

// Store resolves sample images against a local cache directory, fetching
// from the remote source on a miss. The storage root is injected here so
// the same types work against a temporary directory in tests.
type Store struct {
	dir    string
	client *http.Client
}

// NewStore creates a store rooted at dir with a default HTTP client.
func NewStore(dir string) *Store {
	return NewStoreWithClient(dir, &http.Client{Timeout: 60 * time.Second})
}

// NewStoreWithClient creates a store with a caller-supplied HTTP client.
func NewStoreWithClient(dir string, client *http.Client) *Store {
	return &Store{dir: dir, client: client}
}

// LocalPath returns the cache path for a sample. It is a pure function of
// the key, set index, and storage root; it never touches the filesystem.
func (st *Store) LocalPath(s *Sample) string {
	return filepath.Join(
		st.dir,
		"sample_images",
		fmt.Sprintf("set_%d", s.SetIndex),
		utils.SanitizeFilename(s.Key)+".jpg",
	)
}

// EnsureImage returns the decoded image for the sample, downloading it
// into the cache first when the local copy is absent or corrupt. The
// downloaded bytes are written atomically (temp file + rename), so an
// interrupted run can never leave a partial file that passes as a cache
// hit later.
func (st *Store) EnsureImage(ctx context.Context, s *Sample) (image.Image, error) {
	path := st.LocalPath(s)
	if img, state := resolve(path); state == cacheValid {
		return img, nil
	}

	data, err := st.fetch(ctx, s.RemotePath)
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w", s.Key, err)
	}
	if err := utils.WriteFileAtomic(path, data); err != nil {
		return nil, fmt.Errorf("sample %s: %w", s.Key, err)
	}

	img, err := decodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w: %v", s.Key, ErrCorruptImage, err)
	}
	return img, nil
}

// VisualizedImage resolves the sample's image and draws its detection
// regions as labeled boxes. The label function maps class ids to display
// names; pass nil to use the raw ids. The sample itself is not modified.
func (st *Store) VisualizedImage(ctx context.Context, s *Sample, label func(string) string) (image.Image, error) {
	img, err := st.EnsureImage(ctx, s)
	if err != nil {
		return nil, err
	}
	return overlay.Draw(img, s.Regions, label), nil
}

// resolve classifies the cached file for a path and decodes it when valid.
// A zero-byte file can never decode, so it is treated as corrupt without
// reading it.
func resolve(path string) (image.Image, cacheState) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, cacheAbsent
	}
	if info.Size() == 0 {
		return nil, cacheCorrupt
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cacheCorrupt
	}
	img, err := decodeBytes(data)
	if err != nil {
		return nil, cacheCorrupt
	}
	return img, cacheValid
}

func (st *Store) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	req.Header.Set("User-Agent", "sample-batcher/1.0")

	resp, err := st.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d %s", ErrDownloadFailed, resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	return data, nil
}

// decodeBytes decodes with the registered formats first, then falls back
// to explicit WebP decode.
func decodeBytes(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("unknown or unsupported image format")
}
