package media

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MaxUploadSize is the largest file we are willing to hand to YouTube.
const MaxUploadSize = int64(128 * 1024 * 1024 * 1024) // 128GB

var validExtensions = map[string]bool{
	".mp4":  true,
	".m4v":  true,
	".mov":  true,
	".avi":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".mkv":  true,
	".3gp":  true,
	".mpg":  true,
	".mpeg": true,
}

// ValidateVideoFile checks if the file is suitable for a YouTube upload.
// Intake treats a failure as a warning; the queue accepts any file.
func ValidateVideoFile(f File) error {
	if f.Size > MaxUploadSize {
		return fmt.Errorf("video file is too large (max 128GB)")
	}

	if f.Size == 0 {
		return fmt.Errorf("video file is empty")
	}

	ext := strings.ToLower(filepath.Ext(f.Name))
	if !validExtensions[ext] {
		return fmt.Errorf("unsupported video format: %s", ext)
	}

	return nil
}
