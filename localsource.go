package main

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bodgit/sevenzip"
	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
	"github.com/nwaples/rardecode"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Local source: builds photo sequences from export directories and
// archives, so galleries can be previewed before they are published to
// the CMS. Metadata comes from an optional gallery.yaml sidecar
// manifest plus EXIF capture dates.

const manifestName = "gallery.yaml"

func extOf(path string) string {
	return filepath.Ext(path)
}

func isArchiveExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".rar", ".7z":
		return true
	default:
		return false
	}
}

func isSupportedExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".webp", ".bmp", ".gif":
		return true
	default:
		return false
	}
}

// galleryManifest is the gallery.yaml sidecar a photographer drops next
// to an export to carry the portfolio metadata for local files.
type galleryManifest struct {
	Title  string          `yaml:"title"`
	Photos []manifestPhoto `yaml:"photos"`
}

type manifestPhoto struct {
	File      string   `yaml:"file"`
	Title     string   `yaml:"title"`
	Caption   string   `yaml:"caption"`
	Location  string   `yaml:"location"`
	Taken     string   `yaml:"taken"`
	Tags      []string `yaml:"tags"`
	Protected bool     `yaml:"protected"`
	Quality   string   `yaml:"quality"`
}

func loadManifest(dir string) (map[string]manifestPhoto, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var m galleryManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Join(dir, manifestName), err)
	}

	byFile := make(map[string]manifestPhoto, len(m.Photos))
	for _, p := range m.Photos {
		byFile[p.File] = p
	}
	return byFile, nil
}

// applyManifest fills a photo's descriptive fields from its manifest
// entry. Manifest tags arrive as plain names and become resolved tags.
func applyManifest(p *Photo, entry manifestPhoto) {
	p.Title = entry.Title
	p.Caption = entry.Caption
	p.Location = entry.Location
	p.Protected = entry.Protected
	if entry.Quality != "" {
		p.Quality = ParseQuality(entry.Quality)
	}
	if entry.Taken != "" {
		if t, err := time.Parse("2006-01-02", entry.Taken); err == nil {
			p.TakenAt = t
		} else {
			logrus.Warnf("manifest: unparseable taken date %q for %s", entry.Taken, entry.File)
		}
	}
	for _, name := range entry.Tags {
		p.Tags = append(p.Tags, ResolvedTag{
			Name: name,
			Slug: strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		})
	}
}

// exifTakenAt reads the capture timestamp from a local file, returning
// the zero time when the file carries no usable EXIF block.
func exifTakenAt(path string) time.Time {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}
	}
	t, err := x.DateTime()
	if err != nil {
		return time.Time{}
	}
	return t
}

func newLocalPhoto(path string, src ImageSource) *Photo {
	p := &Photo{
		ID:      LocalPhotoID(path),
		Source:  src,
		Quality: QualityHigh, // local exports are originals
	}
	if fi, err := os.Stat(firstNonEmpty(src.ArchivePath, src.Path)); err == nil {
		p.CreatedAt = fi.ModTime()
	}
	if src.ArchivePath == "" {
		p.TakenAt = exifTakenAt(path)
	}
	return p
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// compileIncludes compiles --include patterns. Invalid patterns are
// rejected up front rather than silently matching nothing.
func compileIncludes(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pat := range patterns {
		g, err := glob.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", pat, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func matchesIncludes(includes []glob.Glob, path string) bool {
	if len(includes) == 0 {
		return true
	}
	base := filepath.Base(path)
	for _, g := range includes {
		if g.Match(base) {
			return true
		}
	}
	return false
}

// CollectPhotos builds the photo sequence for the given paths:
// directories are walked, archives expanded, plain files taken as-is.
// The returned sequence is ordered by the given sort strategy.
func CollectPhotos(args []string, includes []glob.Glob, sortMethod int) ([]*Photo, error) {
	var list []*Photo
	for _, p := range args {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		switch {
		case info.IsDir():
			dirPhotos, err := collectFromDirectory(p, includes)
			if err != nil {
				return nil, err
			}
			list = append(list, SortPhotos(dirPhotos, sortMethod)...)
		case isSupportedExt(p):
			if matchesIncludes(includes, p) {
				photo := newLocalPhoto(p, ImageSource{Path: p})
				applyDirManifest(filepath.Dir(p), []*Photo{photo})
				list = append(list, photo)
			}
		case isArchiveExt(p):
			archivePhotos, err := collectFromArchive(p, includes)
			if err != nil {
				logrus.Warnf("skipping problematic archive %s: %v", p, err)
				continue
			}
			list = append(list, SortPhotos(archivePhotos, sortMethod)...)
		}
	}
	return list, nil
}

func collectFromDirectory(dir string, includes []glob.Glob) ([]*Photo, error) {
	var photos []*Photo
	err := filepath.Walk(dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		switch {
		case isSupportedExt(path):
			if matchesIncludes(includes, path) {
				photos = append(photos, newLocalPhoto(path, ImageSource{Path: path}))
			}
		case isArchiveExt(path):
			archivePhotos, err := collectFromArchive(path, includes)
			if err != nil {
				logrus.Warnf("skipping problematic archive %s: %v", path, err)
				return nil
			}
			photos = append(photos, archivePhotos...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	applyDirManifest(dir, photos)
	return photos, nil
}

// applyDirManifest matches photos in dir against its gallery.yaml, by
// path relative to the manifest's directory.
func applyDirManifest(dir string, photos []*Photo) {
	entries, err := loadManifest(dir)
	if err != nil {
		logrus.Warnf("ignoring manifest in %s: %v", dir, err)
		return
	}
	if entries == nil {
		return
	}
	for _, p := range photos {
		if p.Source.ArchivePath != "" {
			continue
		}
		rel, err := filepath.Rel(dir, p.Source.Path)
		if err != nil {
			continue
		}
		if entry, ok := entries[filepath.ToSlash(rel)]; ok {
			applyManifest(p, entry)
		}
	}
}

func collectFromArchive(archivePath string, includes []glob.Glob) ([]*Photo, error) {
	var entryNames []string
	var err error

	switch strings.ToLower(filepath.Ext(archivePath)) {
	case ".zip":
		entryNames, err = listZipEntries(archivePath)
	case ".rar":
		entryNames, err = listRarEntries(archivePath)
	case ".7z":
		entryNames, err = list7zEntries(archivePath)
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", archivePath)
	}
	if err != nil {
		return nil, err
	}

	var photos []*Photo
	for _, name := range entryNames {
		if !isSupportedExt(name) || !matchesIncludes(includes, name) {
			continue
		}
		path := archivePath + ":" + name
		photos = append(photos, newLocalPhoto(path, ImageSource{
			Path:        path,
			ArchivePath: archivePath,
			EntryPath:   name,
		}))
	}
	return photos, nil
}

func listZipEntries(archivePath string) ([]string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		if !f.FileInfo().IsDir() {
			names = append(names, f.Name)
		}
	}
	return names, nil
}

func listRarEntries(archivePath string) ([]string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := rardecode.NewReader(f, "")
	if err != nil {
		return nil, err
	}

	var names []string
	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !header.IsDir {
			names = append(names, header.Name)
		}
	}
	return names, nil
}

func list7zEntries(archivePath string) ([]string, error) {
	r, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		if !f.FileInfo().IsDir() {
			names = append(names, f.Name)
		}
	}
	return names, nil
}

// SourceWatcher refreshes the gallery when an export directory changes
// under the viewer (new exports landing while it is open).
type SourceWatcher struct {
	fsWatcher *fsnotify.Watcher
	changed   chan struct{}
	done      chan struct{}
}

// NewSourceWatcher watches the given directories. A nil watcher is
// returned along with the error so callers can degrade to manual
// refresh instead of failing startup.
func NewSourceWatcher(dirs []string) (*SourceWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	for _, dir := range dirs {
		if err := fsWatcher.Add(dir); err != nil {
			fsWatcher.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	w := &SourceWatcher{
		fsWatcher: fsWatcher,
		changed:   make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *SourceWatcher) run() {
	// Debounce: exports arrive as bursts of writes.
	var pending <-chan time.Time
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				pending = time.After(500 * time.Millisecond)
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			logrus.Warnf("watcher error: %v", err)
		case <-pending:
			pending = nil
			select {
			case w.changed <- struct{}{}:
			default:
			}
		}
	}
}

// Changed fires (coalesced) after the watched directories settle.
func (w *SourceWatcher) Changed() <-chan struct{} {
	return w.changed
}

// Stop shuts the watcher down.
func (w *SourceWatcher) Stop() {
	close(w.done)
	w.fsWatcher.Close()
}
