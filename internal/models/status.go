package models

import "strings"

// ItemStatus is the lifecycle state of a queued video.
type ItemStatus string

const (
	StatusIdle       ItemStatus = "idle"
	StatusOptimizing ItemStatus = "optimizing"
	StatusReady      ItemStatus = "ready"
	StatusUploading  ItemStatus = "uploading"
	StatusCompleted  ItemStatus = "completed"
	StatusError      ItemStatus = "error"
)

var allStatuses = []ItemStatus{
	StatusIdle,
	StatusOptimizing,
	StatusReady,
	StatusUploading,
	StatusCompleted,
	StatusError,
}

// transitions lists the allowed moves out of each state. completed has none.
var transitions = map[ItemStatus][]ItemStatus{
	StatusIdle:       {StatusOptimizing, StatusReady},
	StatusOptimizing: {StatusReady, StatusError},
	StatusReady:      {StatusUploading},
	StatusUploading:  {StatusCompleted, StatusReady},
	StatusError:      {StatusOptimizing, StatusReady},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []ItemStatus {
	cp := make([]ItemStatus, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known ItemStatus.
func ParseStatus(value string) (ItemStatus, bool) {
	normalized := ItemStatus(strings.ToLower(strings.TrimSpace(value)))
	for _, s := range allStatuses {
		if s == normalized {
			return s, true
		}
	}
	return "", false
}

// CanTransition reports whether an item may move from one status to another.
func CanTransition(from, to ItemStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsBusy reports whether the status has a network call in flight.
func (s ItemStatus) IsBusy() bool {
	return s == StatusOptimizing || s == StatusUploading
}

// IsTerminal reports whether no transition leaves the status.
func (s ItemStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Label returns a human-readable status for display
func (s ItemStatus) Label() string {
	switch s {
	case StatusIdle:
		return "Waiting"
	case StatusOptimizing:
		return "Generating metadata"
	case StatusReady:
		return "Ready to upload"
	case StatusUploading:
		return "Uploading"
	case StatusCompleted:
		return "Published"
	case StatusError:
		return "Generation failed"
	default:
		return string(s)
	}
}
