package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/chaesoohoon/youtubeuploader/internal/media"
)

// UploadPhase is the protocol position of a single upload call
type UploadPhase int

const (
	PhaseAwaitingSession UploadPhase = iota
	PhaseTransferring
	PhaseDone
	PhaseFailed
)

// String returns the phase name
func (p UploadPhase) String() string {
	switch p {
	case PhaseAwaitingSession:
		return "awaiting-session"
	case PhaseTransferring:
		return "transferring"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// UploadSession is an opened resumable upload. Transfer may run once.
type UploadSession struct {
	URL string

	uploader *ResumableUploader
	file     media.File
	phase    UploadPhase
	remoteID string
	err      error
}

// Phase returns the current protocol phase
func (s *UploadSession) Phase() UploadPhase {
	return s.phase
}

// RemoteID returns the video ID once the session is done
func (s *UploadSession) RemoteID() string {
	return s.remoteID
}

// Err returns the failure that ended the session, if any
func (s *UploadSession) Err() error {
	return s.err
}

func (s *UploadSession) fail(err error) error {
	s.phase = PhaseFailed
	s.err = err
	return err
}

type videoInsertResponse struct {
	ID string `json:"id"`
}

// Transfer streams the whole file to the session URL in one PUT.
func (s *UploadSession) Transfer(ctx context.Context, onProgress func(UploadProgress)) (string, error) {
	if s.phase != PhaseTransferring {
		return "", fmt.Errorf("%w: session is %s", ErrTransferFailed, s.phase)
	}

	reader, err := s.file.Open()
	if err != nil {
		return "", s.fail(&UploadError{Phase: PhaseTransferring, Message: err.Error(), Err: ErrTransferFailed, Cause: err})
	}
	defer func() { _ = reader.Close() }()

	progress := NewProgressReader(reader, s.file.Size, onProgress)

	var body io.Reader = progress
	if s.file.Size == 0 {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.URL, body)
	if err != nil {
		return "", s.fail(&UploadError{Phase: PhaseTransferring, Message: err.Error(), Err: ErrTransferFailed, Cause: err})
	}
	req.ContentLength = s.file.Size
	req.Header.Set("Content-Type", s.file.ContentType)

	log := s.uploader.logger.With("file", s.file.Name)
	log.Debug("transferring video", "size", s.file.Size)

	progress.Start()
	resp, err := s.uploader.httpClient.Do(req)
	if err != nil {
		log.Debug("transfer aborted", "sent", progress.BytesRead(), "error", err)
		return "", s.fail(&UploadError{Phase: PhaseTransferring, Message: err.Error(), Err: ErrNetwork, Cause: err})
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", s.fail(&UploadError{
			Phase:      PhaseTransferring,
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
			Err:        ErrTransferFailed,
		})
	}

	var parsed videoInsertResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", s.fail(&UploadError{
			Phase:      PhaseTransferring,
			StatusCode: resp.StatusCode,
			Message:    "decode response: " + err.Error(),
			Err:        ErrTransferFailed,
		})
	}
	parsed.ID = strings.TrimSpace(parsed.ID)
	if parsed.ID == "" {
		return "", s.fail(&UploadError{
			Phase:      PhaseTransferring,
			StatusCode: resp.StatusCode,
			Message:    "response missing video id",
			Err:        ErrTransferFailed,
		})
	}

	s.phase = PhaseDone
	s.remoteID = parsed.ID
	log.Info("video uploaded", "video_id", parsed.ID)
	return parsed.ID, nil
}
