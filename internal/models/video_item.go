package models

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/chaesoohoon/youtubeuploader/internal/media"
)

// VideoItem is one tracked video in the upload queue
type VideoItem struct {
	ID       string         `json:"id"`
	File     media.File     `json:"file"`
	Preview  *media.Preview `json:"-"`
	Status   ItemStatus     `json:"status"`
	Progress int            `json:"progress"` // 0 to 100
	RemoteID string         `json:"remote_id,omitempty"`
	Metadata VideoMetadata  `json:"metadata"`
}

// NewVideoItem creates an idle item for a file
func NewVideoItem(file media.File, preview *media.Preview) *VideoItem {
	return &VideoItem{
		ID:       uuid.NewString(),
		File:     file,
		Preview:  preview,
		Status:   StatusIdle,
		Metadata: NewVideoMetadata(file.Name),
	}
}

// UploadTitle returns the title to publish, falling back to the original title
func (v *VideoItem) UploadTitle() string {
	if v.Metadata.OptimizedTitle != "" {
		return v.Metadata.OptimizedTitle
	}
	return v.Metadata.OriginalTitle
}

// UploadCategory returns the category to publish, falling back to the default
func (v *VideoItem) UploadCategory() string {
	if v.Metadata.Category != "" {
		return v.Metadata.Category
	}
	return DefaultCategoryID
}

// WatchURL returns the public URL of a completed upload
func (v *VideoItem) WatchURL() string {
	if v.RemoteID == "" {
		return ""
	}
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", v.RemoteID)
}

// IsPublished returns true if the video has been uploaded to YouTube
func (v *VideoItem) IsPublished() bool {
	return v.Status == StatusCompleted && v.RemoteID != ""
}

// Clone returns a copy that shares no mutable state with v except the
// preview handle, which is owned by the queue.
func (v *VideoItem) Clone() VideoItem {
	cp := *v
	cp.Metadata.Tags = append([]string{}, v.Metadata.Tags...)
	return cp
}
