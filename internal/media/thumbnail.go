package media

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Binaries used for preview extraction. Overridable for tests.
var (
	ffmpegBin  = "ffmpeg"
	ffprobeBin = "ffprobe"
)

// ThumbnailOptions configures thumbnail extraction
type ThumbnailOptions struct {
	Timestamp time.Duration // Specific timestamp to extract from
	Width     int           // Output width (0 = original)
	Height    int           // Output height (0 = original)
	Quality   int           // JPEG quality 1-100 (default 85)
}

// PreviewThumbnailOptions returns the options used for queue previews
func PreviewThumbnailOptions() ThumbnailOptions {
	return ThumbnailOptions{
		Timestamp: 10 * time.Second,
		Width:     320,
		Height:    180,
		Quality:   75,
	}
}

// GetVideoDuration returns the duration of a video file using ffprobe
func GetVideoDuration(videoPath string) (time.Duration, error) {
	cmd := exec.Command(ffprobeBin,
		"-v", "quiet",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	durationStr := strings.TrimSpace(string(output))
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return time.Duration(duration * float64(time.Second)), nil
}

// ExtractThumbnail extracts a single frame from the video at the specified timestamp
func ExtractThumbnail(videoPath string, opts ThumbnailOptions, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	cmd := exec.Command(ffmpegBin, thumbnailArgs(videoPath, opts, outputPath)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %w\nOutput: %s", err, string(output))
	}

	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		return fmt.Errorf("thumbnail was not created")
	}

	return nil
}

func thumbnailArgs(videoPath string, opts ThumbnailOptions, outputPath string) []string {
	quality := opts.Quality
	if quality <= 0 {
		quality = 85
	}

	args := []string{
		"-y",
		"-ss", formatDuration(opts.Timestamp),
		"-i", videoPath,
		"-vframes", "1",
		// ffmpeg uses 2-31, lower is better
		"-q:v", strconv.Itoa(max(1, min(31, 32-quality/3))),
	}

	if opts.Width > 0 || opts.Height > 0 {
		width := opts.Width
		height := opts.Height
		if width == 0 {
			width = -1 // Maintain aspect ratio
		}
		if height == 0 {
			height = -1
		}
		args = append(args, "-vf", fmt.Sprintf("scale=%d:%d", width, height))
	}

	return append(args, outputPath)
}

// thumbnailTimestamp picks a frame that exists: the preferred mark, or 75%
// into the video if shorter, or the middle/start for very short clips.
func thumbnailTimestamp(preferred, duration time.Duration) time.Duration {
	if duration >= preferred {
		return preferred
	}
	if duration > 4*time.Second {
		return duration * 3 / 4
	}
	if duration > time.Second {
		return duration / 2
	}
	return 0
}

// formatDuration formats a duration for ffmpeg (HH:MM:SS.mmm)
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := d.Seconds() - float64(hours*3600) - float64(minutes*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, seconds)
}
