package youtube

import (
	"errors"
	"fmt"
)

// Sentinel errors for the resumable upload protocol.
var (
	// ErrInitiationFailed indicates the upload session request was rejected.
	ErrInitiationFailed = errors.New("upload initiation failed")

	// ErrNoSessionURL indicates the session request succeeded without a Location header.
	ErrNoSessionURL = errors.New("upload session url missing")

	// ErrTransferFailed indicates the binary transfer got a non-2xx response.
	ErrTransferFailed = errors.New("upload transfer failed")

	// ErrNetwork indicates no response was received at all.
	ErrNetwork = errors.New("network error")

	// ErrNotAuthenticated indicates no stored OAuth token is available.
	ErrNotAuthenticated = errors.New("not authenticated with YouTube")
)

// UploadError describes where and how an upload failed.
type UploadError struct {
	// Phase is the protocol phase that failed
	Phase UploadPhase
	// StatusCode is the HTTP status code, zero when no response arrived
	StatusCode int
	// Message is the server-provided message or status text
	Message string
	// Err is one of the sentinel errors above
	Err error
	// Cause is the underlying transport or encoding error, if any
	Cause error
}

// Error returns a string representation of the upload error.
func (e *UploadError) Error() string {
	msg := e.Err.Error()
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Cause != nil && e.Cause.Error() != e.Message {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap exposes the sentinel and the cause for errors.Is and errors.As.
func (e *UploadError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}
