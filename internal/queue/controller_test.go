package queue

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/chaesoohoon/youtubeuploader/internal/media"
	"github.com/chaesoohoon/youtubeuploader/internal/models"
	"github.com/chaesoohoon/youtubeuploader/internal/suggest"
	"github.com/chaesoohoon/youtubeuploader/internal/youtube"
)

type fakeSuggester struct {
	mu      sync.Mutex
	calls   []string
	result  models.SEOSuggestion
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeSuggester) Suggest(ctx context.Context, filename, notes string) (models.SEOSuggestion, error) {
	f.mu.Lock()
	f.calls = append(f.calls, filename)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.result, f.err
}

type fakeUploader struct {
	mu       sync.Mutex
	calls    int
	token    string
	meta     youtube.UploadMetadata
	ticks    []int
	remoteID string
	err      error
	started  chan struct{}
	release  chan struct{}
}

func (f *fakeUploader) Upload(ctx context.Context, file media.File, meta youtube.UploadMetadata, token string, onProgress func(youtube.UploadProgress)) (string, error) {
	f.mu.Lock()
	f.calls++
	f.token = token
	f.meta = meta
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	for _, pct := range f.ticks {
		onProgress(youtube.UploadProgress{
			Loaded:     file.Size * int64(pct) / 100,
			Total:      file.Size,
			Percentage: pct,
		})
	}
	return f.remoteID, f.err
}

type fakeNotifier struct {
	mu        sync.Mutex
	completed []string
	failed    []error
	optFailed []error
}

func (n *fakeNotifier) UploadComplete(item models.VideoItem) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, item.RemoteID)
}

func (n *fakeNotifier) UploadFailed(_ models.VideoItem, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, err)
}

func (n *fakeNotifier) OptimizationFailed(_ models.VideoItem, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.optFailed = append(n.optFailed, err)
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) handle(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) progress(id string) []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []int
	for _, e := range l.events {
		if e.Item.ID == id && (e.Kind == EventProgress || (e.Kind == EventUpdated && e.Item.Status == models.StatusUploading)) {
			out = append(out, e.Item.Progress)
		}
	}
	return out
}

func noPreview(media.File) (*media.Preview, error) { return nil, nil }

func videoFile(name string, size int64) media.File {
	return media.File{Path: "/videos/" + name, Name: name, Size: size, ContentType: "video/mp4"}
}

func newTestController(opts ...Option) *Controller {
	return NewController(append([]Option{WithPreviewFactory(noPreview)}, opts...)...)
}

func TestAddFiles_PreservesOrder(t *testing.T) {
	c := newTestController()

	c.AddFiles([]media.File{videoFile("b.mp4", 1), videoFile("a.mov", 2)})
	added := c.AddFiles([]media.File{videoFile("c.final.mkv", 3)})
	if len(added) != 1 {
		t.Fatalf("expected 1 added item, got %d", len(added))
	}

	items := c.Items()
	wantTitles := []string{"b", "a", "c.final"}
	if len(items) != len(wantTitles) {
		t.Fatalf("expected %d items, got %d", len(wantTitles), len(items))
	}
	seen := map[string]bool{}
	for i, item := range items {
		if item.Metadata.OriginalTitle != wantTitles[i] {
			t.Errorf("item %d: expected original title %q, got %q", i, wantTitles[i], item.Metadata.OriginalTitle)
		}
		if item.Status != models.StatusIdle {
			t.Errorf("item %d: expected idle, got %s", i, item.Status)
		}
		if item.Metadata.Category != models.DefaultCategoryID {
			t.Errorf("item %d: expected default category, got %q", i, item.Metadata.Category)
		}
		if seen[item.ID] {
			t.Errorf("duplicate id %s", item.ID)
		}
		seen[item.ID] = true
	}
	if c.Len() != 3 {
		t.Errorf("expected Len 3, got %d", c.Len())
	}
}

func TestVacationScenario(t *testing.T) {
	sugg := &fakeSuggester{result: models.SEOSuggestion{
		Title:       "Summer Trip Highlights",
		Description: "...",
		Tags:        []string{"travel", "summer"},
	}}
	up := &fakeUploader{ticks: []int{0, 50, 100}, remoteID: "yt_abc123"}
	notifier := &fakeNotifier{}
	events := &eventLog{}

	c := newTestController(WithSuggester(sugg), WithUploader(up), WithNotifier(notifier), WithEventHandler(events.handle))
	item := c.AddFiles([]media.File{videoFile("vacation.mp4", 5*1024*1024)})[0]

	optimized, err := c.BeginOptimization(context.Background(), item.ID, "")
	if err != nil {
		t.Fatalf("BeginOptimization: %v", err)
	}
	if optimized.Status != models.StatusReady {
		t.Fatalf("expected ready, got %s", optimized.Status)
	}
	if optimized.Metadata.OptimizedTitle != "Summer Trip Highlights" {
		t.Errorf("unexpected title %q", optimized.Metadata.OptimizedTitle)
	}
	if sugg.calls[0] != "vacation.mp4" {
		t.Errorf("expected suggester to receive the file name, got %q", sugg.calls[0])
	}

	final, err := c.BeginUpload(context.Background(), item.ID, "tok123")
	if err != nil {
		t.Fatalf("BeginUpload: %v", err)
	}
	if final.Status != models.StatusCompleted || final.RemoteID != "yt_abc123" || final.Progress != 100 {
		t.Errorf("unexpected final state: status=%s remote=%q progress=%d", final.Status, final.RemoteID, final.Progress)
	}
	if up.token != "tok123" {
		t.Errorf("expected token to be passed through, got %q", up.token)
	}
	if up.meta.Title != "Summer Trip Highlights" || len(up.meta.Tags) != 2 || up.meta.CategoryID != "22" {
		t.Errorf("unexpected upload metadata %+v", up.meta)
	}

	progress := events.progress(item.ID)
	if len(progress) == 0 || progress[len(progress)-1] != 100 {
		t.Fatalf("expected progress to end at 100, got %v", progress)
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Errorf("progress decreased: %v", progress)
		}
	}
	if len(notifier.completed) != 1 || notifier.completed[0] != "yt_abc123" {
		t.Errorf("expected completion notification, got %v", notifier.completed)
	}

	got, _ := c.Get(item.ID)
	if !got.IsPublished() {
		t.Error("expected stored item to be published")
	}
}

func TestBeginUpload_EmptyToken(t *testing.T) {
	up := &fakeUploader{remoteID: "x"}
	c := newTestController(WithUploader(up))
	item := c.AddFiles([]media.File{videoFile("clip.mp4", 10)})[0]
	if _, err := c.MarkReady(item.ID); err != nil {
		t.Fatal(err)
	}

	for _, token := range []string{"", "   "} {
		got, err := c.BeginUpload(context.Background(), item.ID, token)
		if !errors.Is(err, ErrAuthRequired) {
			t.Fatalf("expected ErrAuthRequired, got %v", err)
		}
		if got.Status != models.StatusReady {
			t.Errorf("expected status unchanged, got %s", got.Status)
		}
	}
	if up.calls != 0 {
		t.Errorf("expected uploader not to be called, got %d calls", up.calls)
	}
}

func TestUpdateMetadata_RoundTrip(t *testing.T) {
	c := newTestController()
	item := c.AddFiles([]media.File{videoFile("clip.mp4", 10)})[0]

	updated, err := c.UpdateMetadata(item.ID, models.MetadataPatch{OptimizedTitle: models.StringPtr("X")})
	if err != nil {
		t.Fatalf("UpdateMetadata: %v", err)
	}
	got, _ := c.Get(item.ID)
	if got.Metadata.OptimizedTitle != "X" || updated.Metadata.OptimizedTitle != "X" {
		t.Errorf("expected title X, got %q", got.Metadata.OptimizedTitle)
	}
	if got.Metadata.OriginalTitle != item.Metadata.OriginalTitle ||
		got.Metadata.OptimizedDescription != item.Metadata.OptimizedDescription ||
		got.Metadata.Category != item.Metadata.Category ||
		len(got.Metadata.Tags) != len(item.Metadata.Tags) ||
		got.Status != item.Status ||
		got.Progress != item.Progress {
		t.Errorf("expected other fields unchanged: before=%+v after=%+v", item, got)
	}

	if _, err := c.UpdateMetadata("missing", models.MetadataPatch{}); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestBeginUpload_FailureResets(t *testing.T) {
	uploadErr := &youtube.UploadError{Phase: youtube.PhaseTransferring, StatusCode: 500, Message: "500 Internal Server Error", Err: youtube.ErrTransferFailed}
	up := &fakeUploader{ticks: []int{0, 40}, err: uploadErr}
	notifier := &fakeNotifier{}
	c := newTestController(WithUploader(up), WithNotifier(notifier))
	item := c.AddFiles([]media.File{videoFile("clip.mp4", 100)})[0]
	_, _ = c.MarkReady(item.ID)

	got, err := c.BeginUpload(context.Background(), item.ID, "tok")
	if !errors.Is(err, youtube.ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}
	if got.Status != models.StatusReady || got.Progress != 0 || got.RemoteID != "" {
		t.Errorf("expected reset to ready/0, got status=%s progress=%d remote=%q", got.Status, got.Progress, got.RemoteID)
	}
	if len(notifier.failed) != 1 {
		t.Errorf("expected failure notification, got %d", len(notifier.failed))
	}

	// The item is retryable from ready.
	up.err = nil
	up.remoteID = "second"
	up.ticks = []int{100}
	if got, err := c.BeginUpload(context.Background(), item.ID, "tok"); err != nil || got.RemoteID != "second" {
		t.Errorf("expected retry to succeed, got %v %+v", err, got)
	}
}

func TestBeginUpload_InitiationRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The user has exceeded the number of videos they may upload."}}`))
	}))
	defer srv.Close()

	uploader := youtube.NewResumableUploader(youtube.WithEndpoint(srv.URL))
	c := newTestController(WithUploader(uploader))
	item := c.AddFiles([]media.File{videoFile("clip.mp4", 10)})[0]
	_, _ = c.MarkReady(item.ID)

	got, err := c.BeginUpload(context.Background(), item.ID, "tok")
	if !errors.Is(err, youtube.ErrInitiationFailed) {
		t.Fatalf("expected ErrInitiationFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "exceeded the number of videos") {
		t.Errorf("expected server message in error, got %v", err)
	}
	if got.Status != models.StatusReady {
		t.Errorf("expected ready, got %s", got.Status)
	}
}

func TestBeginOptimization_Failure(t *testing.T) {
	sugg := &fakeSuggester{err: errors.New("model overloaded")}
	notifier := &fakeNotifier{}
	c := newTestController(WithSuggester(sugg), WithNotifier(notifier))
	item := c.AddFiles([]media.File{videoFile("clip.mp4", 10)})[0]
	_, _ = c.UpdateMetadata(item.ID, models.MetadataPatch{OptimizedTitle: models.StringPtr("mine")})

	got, err := c.BeginOptimization(context.Background(), item.ID, "")
	if !errors.Is(err, suggest.ErrOptimizationFailed) {
		t.Fatalf("expected ErrOptimizationFailed, got %v", err)
	}
	if got.Status != models.StatusError {
		t.Errorf("expected error status, got %s", got.Status)
	}
	if got.Metadata.OptimizedTitle != "mine" {
		t.Errorf("expected metadata untouched, got %q", got.Metadata.OptimizedTitle)
	}
	if len(notifier.optFailed) != 1 {
		t.Errorf("expected optimization failure notification")
	}

	// error allows a fresh attempt
	sugg.err = nil
	sugg.result = models.SEOSuggestion{Title: "ok", Tags: []string{}}
	if got, err := c.BeginOptimization(context.Background(), item.ID, ""); err != nil || got.Status != models.StatusReady {
		t.Errorf("expected retry from error to succeed, got %v %s", err, got.Status)
	}
}

func TestBeginOptimization_NoSuggester(t *testing.T) {
	c := newTestController()
	item := c.AddFiles([]media.File{videoFile("clip.mp4", 10)})[0]
	if _, err := c.BeginOptimization(context.Background(), item.ID, ""); !errors.Is(err, suggest.ErrOptimizationFailed) {
		t.Fatalf("expected ErrOptimizationFailed, got %v", err)
	}
}

func TestBeginOptimization_DoubleTrigger(t *testing.T) {
	sugg := &fakeSuggester{
		result:  models.SEOSuggestion{Title: "t", Tags: []string{}},
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	c := newTestController(WithSuggester(sugg))
	item := c.AddFiles([]media.File{videoFile("clip.mp4", 10)})[0]

	done := make(chan error, 1)
	go func() {
		_, err := c.BeginOptimization(context.Background(), item.ID, "")
		done <- err
	}()
	<-sugg.started

	if _, err := c.BeginOptimization(context.Background(), item.ID, ""); !errors.Is(err, ErrItemBusy) {
		t.Errorf("expected ErrItemBusy for duplicate trigger, got %v", err)
	}
	if _, err := c.MarkReady(item.ID); !errors.Is(err, ErrItemBusy) {
		t.Errorf("expected ErrItemBusy for MarkReady while optimizing, got %v", err)
	}

	close(sugg.release)
	if err := <-done; err != nil {
		t.Fatalf("first optimization failed: %v", err)
	}
	if len(sugg.calls) != 1 {
		t.Errorf("expected one suggester call, got %d", len(sugg.calls))
	}
}

func TestRemoveItem(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/clip.mp4"
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := media.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}

	c := NewController()
	defer c.Close()
	item := c.AddFiles([]media.File{f})[0]
	if item.Preview == nil {
		t.Fatal("expected default preview factory to create a preview")
	}
	previewDir := item.Preview.Dir()

	if err := c.RemoveItem(item.ID); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if _, ok := c.Get(item.ID); ok {
		t.Error("expected item to be gone")
	}
	if !item.Preview.Released() {
		t.Error("expected preview to be released")
	}
	if _, err := os.Stat(previewDir); !os.IsNotExist(err) {
		t.Errorf("expected preview dir to be removed, stat err=%v", err)
	}

	if err := c.RemoveItem("unknown"); err != nil {
		t.Errorf("expected unknown id to be a no-op, got %v", err)
	}
}

func TestRemoveItem_DuringUpload(t *testing.T) {
	up := &fakeUploader{remoteID: "id", started: make(chan struct{}, 1), release: make(chan struct{})}
	c := newTestController(WithUploader(up))
	item := c.AddFiles([]media.File{videoFile("clip.mp4", 10)})[0]
	_, _ = c.MarkReady(item.ID)

	done := make(chan error, 1)
	go func() {
		_, err := c.BeginUpload(context.Background(), item.ID, "tok")
		done <- err
	}()
	<-up.started

	if err := c.RemoveItem(item.ID); !errors.Is(err, ErrItemBusy) {
		t.Errorf("expected ErrItemBusy, got %v", err)
	}
	if _, err := c.UpdateMetadata(item.ID, models.MetadataPatch{Category: models.StringPtr("10")}); !errors.Is(err, ErrItemBusy) {
		t.Errorf("expected metadata edits to be refused while uploading, got %v", err)
	}
	if _, err := c.BeginUpload(context.Background(), item.ID, "tok"); !errors.Is(err, ErrItemBusy) {
		t.Errorf("expected duplicate upload to be refused, got %v", err)
	}

	close(up.release)
	if err := <-done; err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if err := c.RemoveItem(item.ID); err != nil {
		t.Errorf("expected completed item to be removable, got %v", err)
	}
}

func TestRemoveItem_DuringOptimization(t *testing.T) {
	sugg := &fakeSuggester{
		result:  models.SEOSuggestion{Title: "t"},
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	c := newTestController(WithSuggester(sugg))
	item := c.AddFiles([]media.File{videoFile("clip.mp4", 10)})[0]

	done := make(chan error, 1)
	go func() {
		_, err := c.BeginOptimization(context.Background(), item.ID, "")
		done <- err
	}()
	<-sugg.started

	if err := c.RemoveItem(item.ID); err != nil {
		t.Fatalf("expected removal while optimizing to succeed, got %v", err)
	}
	close(sugg.release)

	if err := <-done; !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected discarded result to report ErrItemNotFound, got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("expected empty queue, got %d", c.Len())
	}
}

func TestInvalidTransitions(t *testing.T) {
	up := &fakeUploader{remoteID: "id"}
	c := newTestController(WithUploader(up), WithSuggester(&fakeSuggester{}))
	item := c.AddFiles([]media.File{videoFile("clip.mp4", 10)})[0]

	if _, err := c.BeginUpload(context.Background(), item.ID, "tok"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected upload from idle to be invalid, got %v", err)
	}

	if _, err := c.MarkReady(item.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := c.MarkReady(item.ID); err != nil {
		t.Errorf("expected MarkReady on ready item to be a no-op, got %v", err)
	}
	if _, err := c.BeginOptimization(context.Background(), item.ID, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected optimize from ready to be invalid, got %v", err)
	}

	if _, err := c.BeginUpload(context.Background(), item.ID, "tok"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.BeginUpload(context.Background(), item.ID, "tok"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected completed to be terminal, got %v", err)
	}
	if _, err := c.MarkReady(item.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected MarkReady on completed to be invalid, got %v", err)
	}

	if _, err := c.BeginUpload(context.Background(), "missing", "tok"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestProgressIgnoresRegressions(t *testing.T) {
	up := &fakeUploader{ticks: []int{0, 60, 30, 60, 90}, remoteID: "id"}
	events := &eventLog{}
	c := newTestController(WithUploader(up), WithEventHandler(events.handle))
	item := c.AddFiles([]media.File{videoFile("clip.mp4", 100)})[0]
	_, _ = c.MarkReady(item.ID)

	got, err := c.BeginUpload(context.Background(), item.ID, "tok")
	if err != nil {
		t.Fatal(err)
	}
	if got.Progress != 90 {
		t.Errorf("expected last progress 90, got %d", got.Progress)
	}

	want := []int{0, 60, 90}
	progress := events.progress(item.ID)
	if len(progress) != len(want) {
		t.Fatalf("expected progress %v, got %v", want, progress)
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Errorf("expected progress %v, got %v", want, progress)
			break
		}
	}
}

func TestConcurrentUploads(t *testing.T) {
	up := &fakeUploader{ticks: []int{0, 100}, remoteID: "id"}
	c := newTestController(WithUploader(up))

	var files []media.File
	for _, name := range []string{"a.mp4", "b.mp4", "c.mp4", "d.mp4"} {
		files = append(files, videoFile(name, 10))
	}
	items := c.AddFiles(files)

	var wg sync.WaitGroup
	for _, item := range items {
		_, _ = c.MarkReady(item.ID)
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := c.BeginUpload(context.Background(), id, "tok"); err != nil {
				t.Errorf("upload %s: %v", id, err)
			}
		}(item.ID)
	}
	wg.Wait()

	if counts := c.Counts(); counts[models.StatusCompleted] != len(items) {
		t.Errorf("expected all items completed, got %v", counts)
	}
}

func TestEventKindString(t *testing.T) {
	if EventUploadFailed.String() != "upload-failed" {
		t.Errorf("unexpected %q", EventUploadFailed.String())
	}
	if EventKind(99).String() != "unknown" {
		t.Errorf("unexpected %q", EventKind(99).String())
	}
}
