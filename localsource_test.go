package main

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSupportedExt(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"PNG file", "test.png", true},
		{"JPG file", "test.jpg", true},
		{"JPEG file", "test.jpeg", true},
		{"WebP file", "test.webp", true},
		{"BMP file", "test.bmp", true},
		{"GIF file", "test.gif", true},
		{"PNG uppercase", "test.PNG", true},
		{"Text file", "test.txt", false},
		{"No extension", "test", false},
		{"Empty string", "", false},
		{"Multiple dots", "test.backup.jpg", true},
		{"Path with directory", "/path/to/test.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isSupportedExt(tt.path))
		})
	}
}

func TestIsArchiveExt(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"ZIP file", "gallery.zip", true},
		{"RAR file", "gallery.rar", true},
		{"7z file", "gallery.7z", true},
		{"ZIP uppercase", "gallery.ZIP", true},
		{"JPG file", "photo.jpg", false},
		{"No extension", "gallery", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isArchiveExt(tt.path))
		})
	}
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("fake image bytes"), 0644))
	}
}

func TestCollectPhotosFromDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "sunrise.jpg", "dunes.png", "notes.txt")

	photos, err := CollectPhotos([]string{dir}, nil, SortByTitle)
	require.NoError(t, err)
	require.Len(t, photos, 2, "unsupported files are skipped")

	for _, p := range photos {
		assert.NotEmpty(t, p.ID)
		assert.False(t, p.Source.Remote())
		assert.Equal(t, QualityHigh, p.Quality, "local exports are originals")
		assert.False(t, p.CreatedAt.IsZero(), "file mtime backs the creation date")
	}
}

func TestCollectPhotosAppliesManifest(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "01.jpg", "02.jpg")

	manifest := `title: Iceland
photos:
  - file: 01.jpg
    title: Dawn at Vestrahorn
    caption: First light
    location: Stokksnes
    taken: 2024-06-15
    tags: [Landscape, Black & White]
    protected: true
    quality: high
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifestName), []byte(manifest), 0644))

	photos, err := CollectPhotos([]string{dir}, nil, SortByTitle)
	require.NoError(t, err)
	require.Len(t, photos, 2)

	var annotated *Photo
	for _, p := range photos {
		if p.Title == "Dawn at Vestrahorn" {
			annotated = p
		}
	}
	require.NotNil(t, annotated)
	assert.Equal(t, "First light", annotated.Caption)
	assert.Equal(t, "Stokksnes", annotated.Location)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), annotated.TakenAt)
	assert.True(t, annotated.Protected)
	require.Len(t, annotated.Tags, 2)
	assert.Equal(t, ResolvedTag{Name: "Landscape", Slug: "landscape"}, annotated.Tags[0])
	assert.Equal(t, "black-&-white", TagSlug(annotated.Tags[1]))
}

func TestCollectPhotosIncludeFilter(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "keep.png", "drop.jpg")

	includes, err := compileIncludes([]string{"*.png"})
	require.NoError(t, err)

	photos, err := CollectPhotos([]string{dir}, includes, SortByTitle)
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, "keep.png", filepath.Base(photos[0].Source.Path))
}

func TestCompileIncludesRejectsBadPattern(t *testing.T) {
	_, err := compileIncludes([]string{"["})
	assert.Error(t, err)
}

func TestCollectPhotosFromZip(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "gallery.zip")

	f, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, name := range []string{"shot1.jpg", "readme.txt"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte("entry bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	photos, err := CollectPhotos([]string{zipPath}, nil, SortEntryOrder)
	require.NoError(t, err)
	require.Len(t, photos, 1)

	p := photos[0]
	assert.Equal(t, zipPath, p.Source.ArchivePath)
	assert.Equal(t, "shot1.jpg", p.Source.EntryPath)
	assert.Equal(t, LocalPhotoID(zipPath+":shot1.jpg"), p.ID)
}

func TestCollectPhotosSingleFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "solo.jpg")

	path := filepath.Join(dir, "solo.jpg")
	photos, err := CollectPhotos([]string{path}, nil, SortEntryOrder)
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, path, photos[0].Source.Path)
}

func TestLoadManifestMissingIsNil(t *testing.T) {
	entries, err := loadManifest(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestLoadManifestRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifestName), []byte("{not yaml"), 0644))

	_, err := loadManifest(dir)
	assert.Error(t, err)
}
