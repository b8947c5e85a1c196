package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newMaterializer(t *testing.T) *Materializer {
	t.Helper()
	m, err := NewMaterializer(filepath.Join(t.TempDir(), "assets"), time.Second)
	require.NoError(t, err)
	return m
}

func TestDownload_WritesAndOverwrites(t *testing.T) {
	payload := samplePNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	m := newMaterializer(t)
	require.NoError(t, os.WriteFile(m.Path("doc1"), []byte("old"), 0o600))

	path, err := m.Download(context.Background(), srv.URL, "doc1")
	require.NoError(t, err)
	assert.Equal(t, m.Path("doc1"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestDownload_FailureLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	m := newMaterializer(t)
	_, err := m.Download(context.Background(), srv.URL, "doc1")
	require.Error(t, err)

	_, statErr := os.Stat(m.Path("doc1"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSaveAndLoad(t *testing.T) {
	m := newMaterializer(t)

	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	path, err := m.Save(img, "doc2")
	require.NoError(t, err)

	loaded, err := m.Load(path)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 3, loaded.Bounds().Dx())
}

func TestLoad_MissingFile(t *testing.T) {
	m := newMaterializer(t)
	img, err := m.Load(m.Path("nope"))
	assert.NoError(t, err)
	assert.Nil(t, img)
}

func TestImport_RejectsNonPNG(t *testing.T) {
	m := newMaterializer(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(bad, []byte("hello"), 0o600))
	_, err := m.Import(bad, "doc3")
	assert.Error(t, err)

	good := filepath.Join(dir, "scan.png")
	require.NoError(t, os.WriteFile(good, samplePNG(t), 0o600))
	path, err := m.Import(good, "doc3")
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestRemove(t *testing.T) {
	m := newMaterializer(t)
	_, err := m.SaveBytes(samplePNG(t), "doc4")
	require.NoError(t, err)

	require.NoError(t, m.Remove("doc4"))
	assert.NoFileExists(t, m.Path("doc4"))
	assert.NoError(t, m.Remove("doc4"))
}

func TestFetch_KeepsCurrentImageUntilCommit(t *testing.T) {
	payload := samplePNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	m := newMaterializer(t)
	require.NoError(t, os.WriteFile(m.Path("doc5"), []byte("local"), 0o600))

	staged, err := m.Fetch(context.Background(), srv.URL, "doc5")
	require.NoError(t, err)
	assert.NotEqual(t, m.Path("doc5"), staged)

	cur, err := os.ReadFile(m.Path("doc5"))
	require.NoError(t, err)
	assert.Equal(t, []byte("local"), cur)

	path, err := m.Commit(staged, "doc5")
	require.NoError(t, err)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.NoFileExists(t, staged)
}

func TestDiscard_LeavesImageAlone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(samplePNG(t))
	}))
	defer srv.Close()

	m := newMaterializer(t)
	require.NoError(t, os.WriteFile(m.Path("doc6"), []byte("local"), 0o600))

	staged, err := m.Fetch(context.Background(), srv.URL, "doc6")
	require.NoError(t, err)
	m.Discard(staged)
	m.Discard(staged)

	assert.NoFileExists(t, staged)
	cur, err := os.ReadFile(m.Path("doc6"))
	require.NoError(t, err)
	assert.Equal(t, []byte("local"), cur)
}

func TestImport_ReencodesThroughLoad(t *testing.T) {
	m := newMaterializer(t)
	src := filepath.Join(t.TempDir(), "scan.png")
	require.NoError(t, os.WriteFile(src, samplePNG(t), 0o600))

	path, err := m.Import(src, "doc7")
	require.NoError(t, err)

	img, err := m.Load(path)
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Equal(t, 2, img.Bounds().Dx())
	_, _, _, a := img.At(1, 1).RGBA()
	assert.NotZero(t, a)

	_, err = m.Import(filepath.Join(t.TempDir(), "missing.png"), "doc7")
	assert.Error(t, err)
}
