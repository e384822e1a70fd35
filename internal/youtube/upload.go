package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/youtube/v3"

	"github.com/chaesoohoon/youtubeuploader/internal/media"
	"github.com/chaesoohoon/youtubeuploader/internal/models"
)

// DefaultUploadEndpoint is the YouTube Data API media upload endpoint
const DefaultUploadEndpoint = "https://www.googleapis.com/upload/youtube/v3/videos"

// UploadMetadata is the descriptive part of an upload
type UploadMetadata struct {
	Title       string
	Description string
	Tags        []string
	CategoryID  string
}

// MetadataFor composes upload metadata from a queue item
func MetadataFor(item *models.VideoItem) UploadMetadata {
	return UploadMetadata{
		Title:       item.UploadTitle(),
		Description: item.Metadata.OptimizedDescription,
		Tags:        append([]string(nil), item.Metadata.Tags...),
		CategoryID:  item.UploadCategory(),
	}
}

// ResumableUploader drives the two-phase resumable upload protocol: a
// metadata request that opens a session, then a single PUT of the file.
// It never retries or resumes; a failed transfer needs a fresh session.
type ResumableUploader struct {
	httpClient *http.Client
	endpoint   string
	logger     *slog.Logger
}

// Option customizes the uploader.
type Option func(*ResumableUploader)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(u *ResumableUploader) {
		if client != nil {
			u.httpClient = client
		}
	}
}

// WithEndpoint overrides the session initiation endpoint.
func WithEndpoint(endpoint string) Option {
	return func(u *ResumableUploader) {
		if endpoint != "" {
			u.endpoint = endpoint
		}
	}
}

// WithLogger sets the logger used for protocol diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(u *ResumableUploader) {
		if logger != nil {
			u.logger = logger
		}
	}
}

// NewResumableUploader creates an uploader. There is no request timeout;
// a large transfer may legitimately take hours.
func NewResumableUploader(opts ...Option) *ResumableUploader {
	u := &ResumableUploader{
		httpClient: &http.Client{},
		endpoint:   DefaultUploadEndpoint,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upload runs both phases and returns the YouTube video ID.
func (u *ResumableUploader) Upload(ctx context.Context, file media.File, meta UploadMetadata, token string, onProgress func(UploadProgress)) (string, error) {
	session, err := u.Initiate(ctx, file, meta, token)
	if err != nil {
		return "", err
	}
	return session.Transfer(ctx, onProgress)
}

// Initiate performs phase one and returns a session positioned at
// PhaseTransferring.
func (u *ResumableUploader) Initiate(ctx context.Context, file media.File, meta UploadMetadata, token string) (*UploadSession, error) {
	session := &UploadSession{uploader: u, file: file, phase: PhaseAwaitingSession}

	if strings.TrimSpace(token) == "" {
		return nil, session.fail(&UploadError{Phase: PhaseAwaitingSession, Message: "access token required", Err: ErrInitiationFailed})
	}

	body, err := json.Marshal(buildVideoResource(meta))
	if err != nil {
		return nil, session.fail(&UploadError{Phase: PhaseAwaitingSession, Message: "encode metadata", Err: ErrInitiationFailed, Cause: err})
	}

	endpoint, err := u.initiationURL()
	if err != nil {
		return nil, session.fail(&UploadError{Phase: PhaseAwaitingSession, Message: "build url", Err: ErrInitiationFailed, Cause: err})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, session.fail(&UploadError{Phase: PhaseAwaitingSession, Message: "new request", Err: ErrInitiationFailed, Cause: err})
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("X-Upload-Content-Length", strconv.FormatInt(file.Size, 10))
	req.Header.Set("X-Upload-Content-Type", file.ContentType)

	u.logger.Debug("initiating upload session", "file", file.Name, "size", file.Size, "content_type", file.ContentType)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, session.fail(&UploadError{Phase: PhaseAwaitingSession, Message: err.Error(), Err: ErrNetwork, Cause: err})
	}
	defer func() { _ = resp.Body.Close() }()

	if err := googleapi.CheckResponse(resp); err != nil {
		return nil, session.fail(&UploadError{
			Phase:      PhaseAwaitingSession,
			StatusCode: resp.StatusCode,
			Message:    serverMessage(err, resp),
			Err:        ErrInitiationFailed,
		})
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	location := strings.TrimSpace(resp.Header.Get("Location"))
	if location == "" {
		return nil, session.fail(&UploadError{Phase: PhaseAwaitingSession, StatusCode: resp.StatusCode, Err: ErrNoSessionURL})
	}

	session.URL = location
	session.phase = PhaseTransferring
	u.logger.Debug("upload session opened", "file", file.Name)
	return session, nil
}

func (u *ResumableUploader) initiationURL() (string, error) {
	parsed, err := url.Parse(u.endpoint)
	if err != nil {
		return "", err
	}
	q := parsed.Query()
	q.Set("uploadType", "resumable")
	q.Set("part", "snippet,status")
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}

// buildVideoResource creates the session metadata. Uploads are always
// unlisted and not made for kids.
func buildVideoResource(meta UploadMetadata) *youtube.Video {
	categoryID := meta.CategoryID
	if categoryID == "" {
		categoryID = DefaultCategoryID
	}

	return &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       meta.Title,
			Description: meta.Description,
			Tags:        meta.Tags,
			CategoryId:  categoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           string(PrivacyUnlisted),
			SelfDeclaredMadeForKids: false,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}
}

// serverMessage prefers the API's error message over the bare status.
func serverMessage(err error, resp *http.Response) string {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return strings.TrimSpace(apiErr.Message)
	}
	return resp.Status
}
