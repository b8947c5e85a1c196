// Package assets keeps the local copies of document images. Each image is
// stored as <dir>/<documentID>.png; writes replace the previous file
// atomically.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/docme/internal/filex"
	"github.com/dmitrijs2005/docme/internal/netx"
)

// MaxImageSize caps downloads and imported files.
const MaxImageSize = 20 << 20

type Materializer struct {
	dir  string
	http *http.Client
}

// NewMaterializer creates dir if needed.
func NewMaterializer(dir string, timeout time.Duration) (*Materializer, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &Materializer{dir: abs, http: &http.Client{Timeout: timeout}}, nil
}

// Path is where the image of entityID lives, whether or not it exists.
func (m *Materializer) Path(entityID string) string {
	return filepath.Join(m.dir, entityID+".png")
}

// Download fetches url and stores it as the image of entityID.
func (m *Materializer) Download(ctx context.Context, url, entityID string) (string, error) {
	staged, err := m.Fetch(ctx, url, entityID)
	if err != nil {
		return "", err
	}
	path, err := m.Commit(staged, entityID)
	if err != nil {
		m.Discard(staged)
		return "", err
	}
	return path, nil
}

// Fetch downloads url into a staging file next to the image of entityID and
// returns its path. The current image is untouched until Commit; Discard
// drops the staged file instead.
func (m *Materializer) Fetch(ctx context.Context, url, entityID string) (string, error) {
	data, err := netx.Download(ctx, m.http, url, MaxImageSize)
	if err != nil {
		return "", fmt.Errorf("download image: %w", err)
	}

	f, err := os.CreateTemp(m.dir, entityID+".*.part")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// Commit moves a staged file into place as the image of entityID.
func (m *Materializer) Commit(staged, entityID string) (string, error) {
	path := m.Path(entityID)
	if err := os.Rename(staged, path); err != nil {
		return "", fmt.Errorf("commit image: %w", err)
	}
	return path, nil
}

// Discard removes a staged file. Committed or missing files are ignored.
func (m *Materializer) Discard(staged string) {
	if staged == "" {
		return
	}
	_ = os.Remove(staged)
}

// Save encodes img as PNG.
func (m *Materializer) Save(img image.Image, entityID string) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return m.SaveBytes(buf.Bytes(), entityID)
}

// SaveBytes stores already encoded image data.
func (m *Materializer) SaveBytes(data []byte, entityID string) (string, error) {
	if len(data) > MaxImageSize {
		return "", fmt.Errorf("image exceeds %d bytes", MaxImageSize)
	}
	path := m.Path(entityID)
	if err := filex.WriteFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// Import decodes the png at src and stores it re-encoded, which drops any
// ancillary chunks the source carried.
func (m *Materializer) Import(src, entityID string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", err
	}
	if info.Size() > MaxImageSize {
		return "", fmt.Errorf("image exceeds %d bytes", MaxImageSize)
	}

	img, err := m.Load(src)
	if err != nil {
		return "", fmt.Errorf("%s is not a png image: %w", src, err)
	}
	if img == nil {
		return "", fmt.Errorf("%s: %w", src, fs.ErrNotExist)
	}
	return m.Save(img, entityID)
}

// Load decodes the image at path. A missing file yields (nil, nil).
func (m *Materializer) Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// ReadBytes returns the raw file at path.
func (m *Materializer) ReadBytes(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Remove deletes the image of entityID; a missing file is not an error.
func (m *Materializer) Remove(entityID string) error {
	err := os.Remove(m.Path(entityID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
