package main

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bodgit/sevenzip"
	"github.com/disintegration/imaging"
	"github.com/hajimehoshi/ebiten/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nwaples/rardecode"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const fetchTimeout = 30 * time.Second

// LoadRequest asks the loader for a photo's pixels at one tier. Gen is
// the surface's generation token; completions are matched against the
// current generation before they may mark anything ready. Preloads and
// thumbnails carry Gen 0 and only warm the cache.
type LoadRequest struct {
	Photo *Photo
	Thumb bool
	Gen   int
}

// LoadResult is one completed (or failed) load.
type LoadResult struct {
	PhotoID string
	Gen     int
	Thumb   bool
	Image   *ebiten.Image
	Err     error
}

// Loader decodes photo sources off the update loop: a single worker
// goroutine consumes requests and posts results to a channel the
// surface drains each tick. Decoded images live in an LRU cache keyed
// by source+tier; evicted images release their GPU memory.
type Loader struct {
	client   *http.Client
	cache    *lru.Cache[string, *ebiten.Image]
	requests chan LoadRequest
	preloads chan LoadRequest
	results  chan LoadResult
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewLoader creates a Loader with the given cache capacity and starts
// its worker.
func NewLoader(cacheSize int) *Loader {
	cache, err := lru.NewWithEvict[string, *ebiten.Image](cacheSize, func(_ string, img *ebiten.Image) {
		if img != nil {
			img.Deallocate()
		}
	})
	if err != nil {
		logrus.Errorf("failed to create LRU cache: %v", err)
		cache, _ = lru.NewWithEvict[string, *ebiten.Image](16, func(_ string, img *ebiten.Image) {
			if img != nil {
				img.Deallocate()
			}
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &Loader{
		client:   &http.Client{Timeout: fetchTimeout},
		cache:    cache,
		requests: make(chan LoadRequest, 64),
		preloads: make(chan LoadRequest, 8),
		results:  make(chan LoadResult, 64),
		ctx:      ctx,
		cancel:   cancel,
	}
	go l.worker()
	return l
}

// Stop cancels the worker. In-flight requests are abandoned.
func (l *Loader) Stop() {
	l.cancel()
}

// Results is drained by the surface each update tick.
func (l *Loader) Results() <-chan LoadResult {
	return l.results
}

// Cached returns the decoded image for a photo at a tier when already
// in cache.
func (l *Loader) Cached(p *Photo, thumb bool) (*ebiten.Image, bool) {
	return l.cache.Get(cacheKey(p, thumb))
}

// Request enqueues a load and reports whether it was accepted. When the
// queue is full the request is dropped and the caller retries on a
// later tick; dropping is cheaper than blocking the update loop.
func (l *Loader) Request(req LoadRequest) bool {
	select {
	case l.requests <- req:
		return true
	default:
		logrus.Debugf("load queue full, dropping request for %s", req.Photo.ID)
		return false
	}
}

// Preload warms the cache with the neighbors of idx so wrap-around
// paging stays smooth. Preloads travel on their own queue so they can
// never displace a display or thumbnail load; pending ones are drained
// first, since after a navigation only the newest neighborhood matters.
func (l *Loader) Preload(sequence []*Photo, idx int) {
	if len(sequence) <= 1 {
		return
	}
drain:
	for {
		select {
		case <-l.preloads:
		default:
			break drain
		}
	}
	prev := (idx - 1 + len(sequence)) % len(sequence)
	next := (idx + 1) % len(sequence)
	for _, i := range []int{next, prev} {
		if i == idx {
			continue
		}
		if _, ok := l.Cached(sequence[i], false); ok {
			continue
		}
		select {
		case l.preloads <- LoadRequest{Photo: sequence[i]}:
		default:
		}
	}
}

func (l *Loader) worker() {
	for {
		// Display and thumbnail loads take priority over preloads.
		select {
		case <-l.ctx.Done():
			return
		case req := <-l.requests:
			l.process(req)
			continue
		default:
		}
		select {
		case <-l.ctx.Done():
			return
		case req := <-l.requests:
			l.process(req)
		case req := <-l.preloads:
			l.process(req)
		}
	}
}

func (l *Loader) process(req LoadRequest) {
	key := cacheKey(req.Photo, req.Thumb)
	if img, ok := l.cache.Get(key); ok {
		l.post(LoadResult{PhotoID: req.Photo.ID, Gen: req.Gen, Thumb: req.Thumb, Image: img})
		return
	}

	img, err := l.load(req.Photo, req.Thumb)
	if err != nil {
		logrus.Warnf("failed to load %s: %v", req.Photo.Source.Key(), err)
		l.post(LoadResult{PhotoID: req.Photo.ID, Gen: req.Gen, Thumb: req.Thumb, Err: err})
		return
	}

	l.cache.Add(key, img)
	l.post(LoadResult{PhotoID: req.Photo.ID, Gen: req.Gen, Thumb: req.Thumb, Image: img})
}

func (l *Loader) post(res LoadResult) {
	select {
	case l.results <- res:
	case <-l.ctx.Done():
	}
}

func (l *Loader) load(p *Photo, thumb bool) (*ebiten.Image, error) {
	data, err := l.readSource(p.Source, p.Quality, thumb)
	if err != nil {
		return nil, err
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", p.Source.Key(), err)
	}

	// Remote sources arrive pre-sized by the delivery layer; local
	// files are downscaled here to the same tier targets.
	if !p.Source.Remote() {
		target, _ := TierParams(p.Quality)
		if thumb {
			target, _ = ThumbParams()
		}
		if decoded.Bounds().Dx() > target {
			decoded = imaging.Resize(decoded, target, 0, imaging.Lanczos)
		}
	}

	return ebiten.NewImageFromImage(decoded), nil
}

// readSource fetches the raw bytes for a source at the requested tier.
func (l *Loader) readSource(src ImageSource, q Quality, thumb bool) ([]byte, error) {
	if src.Remote() {
		width, quality := TierParams(q)
		if thumb {
			width, quality = ThumbParams()
		}
		assetURL, err := BuildAssetURL(src, width, quality)
		if err != nil {
			return nil, err
		}
		return l.fetch(assetURL)
	}

	if src.ArchivePath == "" {
		return os.ReadFile(src.Path)
	}

	switch strings.ToLower(extOf(src.ArchivePath)) {
	case ".zip":
		return readBytesFromZip(src.ArchivePath, src.EntryPath)
	case ".rar":
		return readBytesFromRar(src.ArchivePath, src.EntryPath)
	case ".7z":
		return readBytesFrom7z(src.ArchivePath, src.EntryPath)
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", src.ArchivePath)
	}
}

func (l *Loader) fetch(assetURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(l.ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: %s", assetURL, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func cacheKey(p *Photo, thumb bool) string {
	if thumb {
		return p.Source.Key() + "@thumb"
	}
	return p.Source.Key() + "@" + p.Quality.String()
}

// Archive entry readers

func readBytesFromZip(archivePath, entryPath string) ([]byte, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name == entryPath {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("entry %s not found in %s", entryPath, archivePath)
}

func readBytesFromRar(archivePath, entryPath string) ([]byte, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := rardecode.NewReader(f, "")
	if err != nil {
		return nil, err
	}

	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if header.Name == entryPath {
			return io.ReadAll(r)
		}
	}
	return nil, fmt.Errorf("entry %s not found in %s", entryPath, archivePath)
}

func readBytesFrom7z(archivePath, entryPath string) ([]byte, error) {
	r, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name == entryPath {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("entry %s not found in %s", entryPath, archivePath)
}
