package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrPreviewReleased is returned when a released preview is used.
var ErrPreviewReleased = errors.New("preview released")

// Preview is a locally resolvable thumbnail for a queued video. It owns a
// temporary directory that lives until Release.
type Preview struct {
	source string
	dir    string

	mu       sync.Mutex
	path     string
	err      error
	released bool
}

// NewPreview reserves a temporary directory for the thumbnail of f. The frame
// itself is extracted lazily on the first call to Path.
func NewPreview(f File) (*Preview, error) {
	dir, err := os.MkdirTemp("", "ytupload-preview-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create preview directory: %w", err)
	}
	return &Preview{source: f.Path, dir: dir}, nil
}

// Dir returns the directory the preview owns.
func (p *Preview) Dir() string {
	return p.dir
}

// Path returns the thumbnail path, extracting it on first use.
func (p *Preview) Path() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.released {
		return "", ErrPreviewReleased
	}
	if p.path != "" || p.err != nil {
		return p.path, p.err
	}

	opts := PreviewThumbnailOptions()
	if duration, err := GetVideoDuration(p.source); err == nil {
		opts.Timestamp = thumbnailTimestamp(opts.Timestamp, duration)
	} else {
		opts.Timestamp = 0
	}

	out := filepath.Join(p.dir, "thumbnail.jpg")
	if err := ExtractThumbnail(p.source, opts, out); err != nil {
		p.err = err
		return "", err
	}
	p.path = out
	return p.path, nil
}

// Release removes the preview's files. Safe to call more than once.
func (p *Preview) Release() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.released {
		return nil
	}
	p.released = true
	p.path = ""
	return os.RemoveAll(p.dir)
}

// Released reports whether Release has been called.
func (p *Preview) Released() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}
