package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/chaesoohoon/youtubeuploader/internal/media"
)

func writeVideo(t *testing.T, name string, size int) media.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(strings.Repeat("v", size)), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	f, err := media.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	return f
}

type fakeYouTube struct {
	mu          sync.Mutex
	initHeaders http.Header
	initQuery   string
	initBody    map[string]any
	putBody     []byte
	putHeaders  http.Header

	initStatus  int
	initBodyOut string
	noLocation  bool
	putStatus   int
	videoID     string
}

func (f *fakeYouTube) server(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/upload":
			f.initHeaders = r.Header.Clone()
			f.initQuery = r.URL.RawQuery
			_ = json.NewDecoder(r.Body).Decode(&f.initBody)
			if f.initStatus != 0 && f.initStatus != http.StatusOK {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(f.initStatus)
				_, _ = io.WriteString(w, f.initBodyOut)
				return
			}
			if !f.noLocation {
				w.Header().Set("Location", srv.URL+"/session/abc")
			}
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPut && r.URL.Path == "/session/abc":
			f.putHeaders = r.Header.Clone()
			f.putBody, _ = io.ReadAll(r.Body)
			if f.putStatus != 0 && f.putStatus != http.StatusOK {
				w.WriteHeader(f.putStatus)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"kind": "youtube#video", "id": f.videoID})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

type progressLog struct {
	mu    sync.Mutex
	ticks []int
}

func (p *progressLog) record(u UploadProgress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ticks = append(p.ticks, u.Percentage)
}

func (p *progressLog) snapshot() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.ticks...)
}

func TestUpload_Success(t *testing.T) {
	fake := &fakeYouTube{videoID: "yt_abc123"}
	srv := fake.server(t)
	file := writeVideo(t, "vacation.mp4", 64*1024)

	uploader := NewResumableUploader(WithEndpoint(srv.URL + "/upload"))
	progress := &progressLog{}

	id, err := uploader.Upload(context.Background(), file, UploadMetadata{
		Title:       "Summer Vacation",
		Description: "Beach trip",
		Tags:        []string{"beach", "summer"},
		CategoryID:  "19",
	}, "tok-123", progress.record)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if id != "yt_abc123" {
		t.Errorf("expected video id yt_abc123, got %q", id)
	}

	if got := fake.initHeaders.Get("Authorization"); got != "Bearer tok-123" {
		t.Errorf("expected bearer token, got %q", got)
	}
	if got := fake.initHeaders.Get("X-Upload-Content-Length"); got != "65536" {
		t.Errorf("expected X-Upload-Content-Length 65536, got %q", got)
	}
	if got := fake.initHeaders.Get("X-Upload-Content-Type"); got != "video/mp4" {
		t.Errorf("expected X-Upload-Content-Type video/mp4, got %q", got)
	}
	if !strings.Contains(fake.initQuery, "uploadType=resumable") {
		t.Errorf("expected resumable upload type, got query %q", fake.initQuery)
	}
	if !strings.Contains(fake.initQuery, "part=snippet%2Cstatus") {
		t.Errorf("expected snippet,status parts, got query %q", fake.initQuery)
	}

	snippet, _ := fake.initBody["snippet"].(map[string]any)
	if snippet["title"] != "Summer Vacation" {
		t.Errorf("expected title in snippet, got %v", snippet["title"])
	}
	if snippet["categoryId"] != "19" {
		t.Errorf("expected categoryId 19, got %v", snippet["categoryId"])
	}
	status, _ := fake.initBody["status"].(map[string]any)
	if status["privacyStatus"] != "unlisted" {
		t.Errorf("expected unlisted privacy, got %v", status["privacyStatus"])
	}
	if kids, ok := status["selfDeclaredMadeForKids"]; !ok || kids != false {
		t.Errorf("expected selfDeclaredMadeForKids=false to be sent, got %v (present=%v)", kids, ok)
	}

	if len(fake.putBody) != 64*1024 {
		t.Errorf("expected %d bytes transferred, got %d", 64*1024, len(fake.putBody))
	}
	if got := fake.putHeaders.Get("Authorization"); got != "" {
		t.Errorf("expected no Authorization on transfer, got %q", got)
	}

	ticks := progress.snapshot()
	if len(ticks) < 2 {
		t.Fatalf("expected at least two progress ticks, got %v", ticks)
	}
	if ticks[0] != 0 {
		t.Errorf("expected first tick 0, got %d", ticks[0])
	}
	if ticks[len(ticks)-1] != 100 {
		t.Errorf("expected last tick 100, got %d", ticks[len(ticks)-1])
	}
	for i := 1; i < len(ticks); i++ {
		if ticks[i] < ticks[i-1] {
			t.Errorf("progress went backwards: %v", ticks)
			break
		}
	}
}

func TestUpload_DefaultCategory(t *testing.T) {
	fake := &fakeYouTube{videoID: "id1"}
	srv := fake.server(t)
	file := writeVideo(t, "clip.mp4", 10)

	uploader := NewResumableUploader(WithEndpoint(srv.URL + "/upload"))
	if _, err := uploader.Upload(context.Background(), file, UploadMetadata{Title: "clip"}, "tok", nil); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	snippet, _ := fake.initBody["snippet"].(map[string]any)
	if snippet["categoryId"] != DefaultCategoryID {
		t.Errorf("expected default category %s, got %v", DefaultCategoryID, snippet["categoryId"])
	}
}

func TestUpload_InitiationRejected(t *testing.T) {
	fake := &fakeYouTube{
		initStatus:  http.StatusForbidden,
		initBodyOut: `{"error":{"code":403,"message":"The request cannot be completed because you have exceeded your quota.","errors":[{"reason":"quotaExceeded"}]}}`,
	}
	srv := fake.server(t)
	file := writeVideo(t, "clip.mp4", 10)

	uploader := NewResumableUploader(WithEndpoint(srv.URL + "/upload"))
	_, err := uploader.Upload(context.Background(), file, UploadMetadata{Title: "clip"}, "tok", nil)
	if !errors.Is(err, ErrInitiationFailed) {
		t.Fatalf("expected ErrInitiationFailed, got %v", err)
	}

	var uploadErr *UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("expected *UploadError, got %T", err)
	}
	if uploadErr.StatusCode != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", uploadErr.StatusCode)
	}
	if !strings.Contains(uploadErr.Message, "exceeded your quota") {
		t.Errorf("expected server message, got %q", uploadErr.Message)
	}
	if uploadErr.Phase != PhaseAwaitingSession {
		t.Errorf("expected phase awaiting-session, got %s", uploadErr.Phase)
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.putBody != nil {
		t.Error("expected no transfer after rejected initiation")
	}
}

func TestUpload_InitiationStatusFallback(t *testing.T) {
	fake := &fakeYouTube{initStatus: http.StatusInternalServerError, initBodyOut: "oops"}
	srv := fake.server(t)
	file := writeVideo(t, "clip.mp4", 10)

	_, err := NewResumableUploader(WithEndpoint(srv.URL+"/upload")).
		Upload(context.Background(), file, UploadMetadata{Title: "clip"}, "tok", nil)

	var uploadErr *UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("expected *UploadError, got %v", err)
	}
	if !strings.Contains(uploadErr.Message, "500") {
		t.Errorf("expected status text fallback, got %q", uploadErr.Message)
	}
}

func TestUpload_MissingLocation(t *testing.T) {
	fake := &fakeYouTube{noLocation: true}
	srv := fake.server(t)
	file := writeVideo(t, "clip.mp4", 10)

	_, err := NewResumableUploader(WithEndpoint(srv.URL+"/upload")).
		Upload(context.Background(), file, UploadMetadata{Title: "clip"}, "tok", nil)
	if !errors.Is(err, ErrNoSessionURL) {
		t.Fatalf("expected ErrNoSessionURL, got %v", err)
	}
}

func TestUpload_TransferFailed(t *testing.T) {
	fake := &fakeYouTube{putStatus: http.StatusServiceUnavailable}
	srv := fake.server(t)
	file := writeVideo(t, "clip.mp4", 1024)

	uploader := NewResumableUploader(WithEndpoint(srv.URL + "/upload"))
	session, err := uploader.Initiate(context.Background(), file, UploadMetadata{Title: "clip"}, "tok")
	if err != nil {
		t.Fatalf("Initiate failed: %v", err)
	}
	if session.Phase() != PhaseTransferring {
		t.Fatalf("expected transferring phase, got %s", session.Phase())
	}

	_, err = session.Transfer(context.Background(), nil)
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}
	if session.Phase() != PhaseFailed {
		t.Errorf("expected failed phase, got %s", session.Phase())
	}

	// A session is single use.
	if _, err := session.Transfer(context.Background(), nil); !errors.Is(err, ErrTransferFailed) {
		t.Errorf("expected reuse of failed session to fail, got %v", err)
	}
}

func TestUpload_MissingVideoID(t *testing.T) {
	fake := &fakeYouTube{videoID: ""}
	srv := fake.server(t)
	file := writeVideo(t, "clip.mp4", 10)

	_, err := NewResumableUploader(WithEndpoint(srv.URL+"/upload")).
		Upload(context.Background(), file, UploadMetadata{Title: "clip"}, "tok", nil)
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}
}

func TestUpload_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL + "/upload"
	srv.Close()

	file := writeVideo(t, "clip.mp4", 10)
	_, err := NewResumableUploader(WithEndpoint(endpoint)).
		Upload(context.Background(), file, UploadMetadata{Title: "clip"}, "tok", nil)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}

	var uploadErr *UploadError
	if errors.As(err, &uploadErr) && uploadErr.StatusCode != 0 {
		t.Errorf("expected no status code for network error, got %d", uploadErr.StatusCode)
	}

	msg := err.Error()
	if strings.Contains(msg, "\n") {
		t.Errorf("expected a single-line message, got %q", msg)
	}
	if !strings.HasPrefix(msg, "network error: ") {
		t.Errorf("expected sentinel prefix, got %q", msg)
	}
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		t.Fatalf("expected the transport error to be reachable, got %v", err)
	}
	if n := strings.Count(msg, urlErr.Error()); n != 1 {
		t.Errorf("expected the cause once, found it %d times in %q", n, msg)
	}
}

func TestUploadError_Error(t *testing.T) {
	cause := errors.New("connection reset by peer")
	tests := []struct {
		name string
		err  *UploadError
		want string
	}{
		{"sentinel only", &UploadError{Err: ErrNoSessionURL}, "upload session url missing"},
		{"with message", &UploadError{Err: ErrInitiationFailed, Message: "quota exceeded"}, "upload initiation failed: quota exceeded"},
		{"message is cause", &UploadError{Err: ErrNetwork, Message: cause.Error(), Cause: cause}, "network error: connection reset by peer"},
		{"message and cause", &UploadError{Err: ErrInitiationFailed, Message: "encode metadata", Cause: cause}, "upload initiation failed: encode metadata: connection reset by peer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if tt.err.Cause != nil && !errors.Is(tt.err, cause) {
				t.Error("expected the cause to unwrap")
			}
			if !errors.Is(tt.err, tt.err.Err) {
				t.Error("expected the sentinel to unwrap")
			}
		})
	}
}

func TestUpload_EmptyToken(t *testing.T) {
	file := writeVideo(t, "clip.mp4", 10)
	_, err := NewResumableUploader(WithEndpoint("http://127.0.0.1:1/upload")).
		Upload(context.Background(), file, UploadMetadata{Title: "clip"}, "  ", nil)
	if !errors.Is(err, ErrInitiationFailed) {
		t.Fatalf("expected ErrInitiationFailed, got %v", err)
	}
}

func TestUploadPhase_String(t *testing.T) {
	tests := []struct {
		phase UploadPhase
		want  string
	}{
		{PhaseAwaitingSession, "awaiting-session"},
		{PhaseTransferring, "transferring"},
		{PhaseDone, "done"},
		{PhaseFailed, "failed"},
		{UploadPhase(9), "phase(9)"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("UploadPhase(%d).String() = %q, want %q", int(tt.phase), got, tt.want)
		}
	}
}
