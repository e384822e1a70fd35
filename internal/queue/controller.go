// Package queue tracks the videos selected for upload and drives each one
// through metadata generation and the resumable upload.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/chaesoohoon/youtubeuploader/internal/logging"
	"github.com/chaesoohoon/youtubeuploader/internal/media"
	"github.com/chaesoohoon/youtubeuploader/internal/models"
	"github.com/chaesoohoon/youtubeuploader/internal/suggest"
	"github.com/chaesoohoon/youtubeuploader/internal/youtube"
)

// Uploader publishes a file and returns the remote video ID
type Uploader interface {
	Upload(ctx context.Context, file media.File, meta youtube.UploadMetadata, token string, onProgress func(youtube.UploadProgress)) (string, error)
}

// PreviewFactory creates the preview handle for a new item
type PreviewFactory func(media.File) (*media.Preview, error)

type entry struct {
	item     *models.VideoItem
	inFlight bool
	// attempt distinguishes progress ticks of successive uploads
	attempt uint64
}

// Controller owns the upload queue. All methods are safe for concurrent
// use; calls for different items never wait on each other's network I/O.
type Controller struct {
	mu    sync.Mutex
	items map[string]*entry
	order []string

	suggester suggest.Suggester
	uploader  Uploader
	notifier  Notifier
	previews  PreviewFactory
	onEvent   func(Event)
	logger    *slog.Logger
}

// Option customizes the controller.
type Option func(*Controller)

// WithSuggester sets the metadata generator.
func WithSuggester(s suggest.Suggester) Option {
	return func(c *Controller) { c.suggester = s }
}

// WithUploader sets the uploader.
func WithUploader(u Uploader) Option {
	return func(c *Controller) { c.uploader = u }
}

// WithNotifier sets the notifier used for failures and completions.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithPreviewFactory overrides how previews are created.
func WithPreviewFactory(f PreviewFactory) Option {
	return func(c *Controller) { c.previews = f }
}

// WithEventHandler registers a callback invoked after every change. It is
// called without the controller lock held and must not block for long.
func WithEventHandler(fn func(Event)) Option {
	return func(c *Controller) { c.onEvent = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logging.OrDiscard(logger) }
}

// NewController creates an empty queue.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		items:    make(map[string]*entry),
		notifier: nopNotifier{},
		previews: media.NewPreview,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) emit(kind EventKind, item models.VideoItem, err error) {
	if c.onEvent != nil {
		c.onEvent(Event{Kind: kind, Item: item, Err: err})
	}
}

// AddFiles appends one idle item per file in the given order.
func (c *Controller) AddFiles(files []media.File) []models.VideoItem {
	added := make([]models.VideoItem, 0, len(files))
	for _, f := range files {
		var preview *media.Preview
		if c.previews != nil {
			p, err := c.previews(f)
			if err != nil {
				c.logger.Warn("preview unavailable", "file", f.Name, "error", err)
			} else {
				preview = p
			}
		}

		item := models.NewVideoItem(f, preview)

		c.mu.Lock()
		c.items[item.ID] = &entry{item: item}
		c.order = append(c.order, item.ID)
		snapshot := item.Clone()
		c.mu.Unlock()

		c.logger.Info("video queued", "item", item.ID, "file", f.Name, "size", f.Size)
		c.emit(EventAdded, snapshot, nil)
		added = append(added, snapshot)
	}
	return added
}

// RemoveItem drops an item and releases its preview. Unknown ids are a
// no-op. Items with an upload in flight cannot be removed.
func (c *Controller) RemoveItem(id string) error {
	c.mu.Lock()
	e, ok := c.items[id]
	if !ok {
		c.mu.Unlock()
		return nil
	}
	if e.item.Status == models.StatusUploading {
		c.mu.Unlock()
		return fmt.Errorf("remove %s: %w", id, ErrItemBusy)
	}
	delete(c.items, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	snapshot := e.item.Clone()
	c.mu.Unlock()

	if e.item.Preview != nil {
		if err := e.item.Preview.Release(); err != nil {
			c.logger.Warn("failed to release preview", "item", id, "error", err)
		}
	}
	c.logger.Info("video removed", "item", id, "file", snapshot.File.Name)
	c.emit(EventRemoved, snapshot, nil)
	return nil
}

// BeginOptimization generates metadata for an item. The item moves to
// optimizing, then to ready with the suggestion merged, or to error with
// its metadata untouched.
func (c *Controller) BeginOptimization(ctx context.Context, id, notes string) (models.VideoItem, error) {
	c.mu.Lock()
	e, err := c.lookup(id)
	if err == nil {
		err = c.checkStart(e, models.StatusOptimizing)
	}
	if err != nil {
		c.mu.Unlock()
		return models.VideoItem{}, fmt.Errorf("optimize %s: %w", id, err)
	}
	e.item.Status = models.StatusOptimizing
	e.inFlight = true
	filename := e.item.File.Name
	snapshot := e.item.Clone()
	c.mu.Unlock()

	log := c.logger.With("item", id, "file", filename)
	log.Info("generating metadata")
	c.emit(EventUpdated, snapshot, nil)

	var suggestion models.SEOSuggestion
	if c.suggester == nil {
		err = errors.New("no metadata generator configured")
	} else {
		suggestion, err = c.suggester.Suggest(ctx, filename, notes)
	}
	if err != nil && !errors.Is(err, suggest.ErrOptimizationFailed) {
		err = fmt.Errorf("%w: %w", suggest.ErrOptimizationFailed, err)
	}

	c.mu.Lock()
	e, ok := c.items[id]
	if !ok {
		c.mu.Unlock()
		log.Info("item removed during metadata generation, result discarded")
		return models.VideoItem{}, fmt.Errorf("optimize %s: %w", id, ErrItemNotFound)
	}
	e.inFlight = false
	if err != nil {
		e.item.Status = models.StatusError
	} else {
		e.item.Metadata.ApplySuggestion(suggestion)
		e.item.Status = models.StatusReady
	}
	snapshot = e.item.Clone()
	c.mu.Unlock()

	if err != nil {
		log.Warn("metadata generation failed", "error", err)
		c.notifier.OptimizationFailed(snapshot, err)
		c.emit(EventOptimizationFailed, snapshot, err)
		return snapshot, err
	}

	log.Info("metadata generated", "title", snapshot.Metadata.OptimizedTitle, "tags", len(snapshot.Metadata.Tags))
	c.emit(EventOptimized, snapshot, nil)
	return snapshot, nil
}

// UpdateMetadata merges patch into the item's metadata without changing its
// status. It is refused while the item is uploading.
func (c *Controller) UpdateMetadata(id string, patch models.MetadataPatch) (models.VideoItem, error) {
	c.mu.Lock()
	e, err := c.lookup(id)
	if err != nil {
		c.mu.Unlock()
		return models.VideoItem{}, fmt.Errorf("update %s: %w", id, err)
	}
	if e.item.Status == models.StatusUploading {
		c.mu.Unlock()
		return models.VideoItem{}, fmt.Errorf("update %s: %w", id, ErrItemBusy)
	}
	e.item.Metadata.Apply(patch)
	snapshot := e.item.Clone()
	c.mu.Unlock()

	c.logger.Debug("metadata updated", "item", id)
	c.emit(EventUpdated, snapshot, nil)
	return snapshot, nil
}

// MarkReady accepts the current metadata as final so the item can be
// uploaded without generation. Ready items are left alone.
func (c *Controller) MarkReady(id string) (models.VideoItem, error) {
	c.mu.Lock()
	e, err := c.lookup(id)
	if err != nil {
		c.mu.Unlock()
		return models.VideoItem{}, fmt.Errorf("mark ready %s: %w", id, err)
	}
	if e.item.Status == models.StatusReady {
		snapshot := e.item.Clone()
		c.mu.Unlock()
		return snapshot, nil
	}
	if err := c.checkStart(e, models.StatusReady); err != nil {
		c.mu.Unlock()
		return models.VideoItem{}, fmt.Errorf("mark ready %s: %w", id, err)
	}
	e.item.Status = models.StatusReady
	snapshot := e.item.Clone()
	c.mu.Unlock()

	c.emit(EventUpdated, snapshot, nil)
	return snapshot, nil
}

// BeginUpload publishes a ready item. On failure the item returns to ready
// with progress reset and the error is returned unchanged.
func (c *Controller) BeginUpload(ctx context.Context, id, token string) (models.VideoItem, error) {
	c.mu.Lock()
	e, err := c.lookup(id)
	if err != nil {
		c.mu.Unlock()
		return models.VideoItem{}, fmt.Errorf("upload %s: %w", id, err)
	}
	if strings.TrimSpace(token) == "" {
		snapshot := e.item.Clone()
		c.mu.Unlock()
		return snapshot, fmt.Errorf("upload %s: %w", id, ErrAuthRequired)
	}
	if err := c.checkStart(e, models.StatusUploading); err != nil {
		c.mu.Unlock()
		return models.VideoItem{}, fmt.Errorf("upload %s: %w", id, err)
	}
	if c.uploader == nil {
		c.mu.Unlock()
		return models.VideoItem{}, fmt.Errorf("upload %s: no uploader configured", id)
	}
	e.item.Status = models.StatusUploading
	e.item.Progress = 0
	e.item.RemoteID = ""
	e.inFlight = true
	e.attempt++
	attempt := e.attempt
	file := e.item.File
	meta := youtube.MetadataFor(e.item)
	snapshot := e.item.Clone()
	c.mu.Unlock()

	log := c.logger.With("item", id, "file", file.Name)
	log.Info("upload started", "title", meta.Title, "category", meta.CategoryID, "size", file.Size)
	c.emit(EventUpdated, snapshot, nil)

	remoteID, err := c.uploader.Upload(ctx, file, meta, token, func(p youtube.UploadProgress) {
		c.updateProgress(id, attempt, p.Percentage)
	})

	c.mu.Lock()
	e, ok := c.items[id]
	if !ok {
		// Removal is refused while uploading, so this only happens if the
		// queue was closed underneath us.
		c.mu.Unlock()
		return models.VideoItem{}, fmt.Errorf("upload %s: %w", id, ErrItemNotFound)
	}
	e.inFlight = false
	if err != nil {
		e.item.Status = models.StatusReady
		e.item.Progress = 0
	} else {
		e.item.Status = models.StatusCompleted
		e.item.RemoteID = remoteID
	}
	snapshot = e.item.Clone()
	c.mu.Unlock()

	if err != nil {
		log.Error("upload failed", "error", err)
		c.notifier.UploadFailed(snapshot, err)
		c.emit(EventUploadFailed, snapshot, err)
		return snapshot, err
	}

	log.Info("upload complete", "video_id", remoteID, "url", snapshot.WatchURL())
	c.notifier.UploadComplete(snapshot)
	c.emit(EventUploaded, snapshot, nil)
	return snapshot, nil
}

// updateProgress applies a tick if it belongs to the current attempt and
// moves progress forward.
func (c *Controller) updateProgress(id string, attempt uint64, pct int) {
	c.mu.Lock()
	e, ok := c.items[id]
	if !ok || e.attempt != attempt || e.item.Status != models.StatusUploading || pct <= e.item.Progress {
		c.mu.Unlock()
		return
	}
	e.item.Progress = pct
	snapshot := e.item.Clone()
	c.mu.Unlock()

	c.emit(EventProgress, snapshot, nil)
}

// Items returns snapshots of every item in insertion order.
func (c *Controller) Items() []models.VideoItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.VideoItem, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id].item.Clone())
	}
	return out
}

// Get returns a snapshot of one item.
func (c *Controller) Get(id string) (models.VideoItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[id]
	if !ok {
		return models.VideoItem{}, false
	}
	return e.item.Clone(), true
}

// Len returns the number of queued items.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Counts returns how many items are in each status.
func (c *Controller) Counts() map[models.ItemStatus]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts := make(map[models.ItemStatus]int, len(c.items))
	for _, e := range c.items {
		counts[e.item.Status]++
	}
	return counts
}

// Close releases every preview. The queue is unusable afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	items := c.items
	c.items = make(map[string]*entry)
	c.order = nil
	c.mu.Unlock()

	for id, e := range items {
		if e.item.Preview == nil {
			continue
		}
		if err := e.item.Preview.Release(); err != nil {
			c.logger.Warn("failed to release preview", "item", id, "error", err)
		}
	}
}

// lookup and checkStart are called with c.mu held.
func (c *Controller) lookup(id string) (*entry, error) {
	e, ok := c.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	return e, nil
}

func (c *Controller) checkStart(e *entry, to models.ItemStatus) error {
	if e.inFlight {
		return ErrItemBusy
	}
	if !models.CanTransition(e.item.Status, to) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, e.item.Status, to)
	}
	return nil
}
