package queue

import "github.com/chaesoohoon/youtubeuploader/internal/models"

// EventKind identifies what happened to an item
type EventKind int

const (
	EventAdded EventKind = iota
	EventRemoved
	EventUpdated
	EventProgress
	EventOptimized
	EventOptimizationFailed
	EventUploaded
	EventUploadFailed
)

func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	case EventUpdated:
		return "updated"
	case EventProgress:
		return "progress"
	case EventOptimized:
		return "optimized"
	case EventOptimizationFailed:
		return "optimization-failed"
	case EventUploaded:
		return "uploaded"
	case EventUploadFailed:
		return "upload-failed"
	default:
		return "unknown"
	}
}

// Event is published after every change to an item. Item is a snapshot.
type Event struct {
	Kind EventKind
	Item models.VideoItem
	Err  error
}

// Notifier surfaces outcomes to the user outside the UI
type Notifier interface {
	UploadComplete(item models.VideoItem)
	UploadFailed(item models.VideoItem, err error)
	OptimizationFailed(item models.VideoItem, err error)
}

type nopNotifier struct{}

func (nopNotifier) UploadComplete(models.VideoItem)            {}
func (nopNotifier) UploadFailed(models.VideoItem, error)       {}
func (nopNotifier) OptimizationFailed(models.VideoItem, error) {}
