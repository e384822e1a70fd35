package media

import (
	"errors"
	"image"
	"os"
	"strings"
	"testing"
	"time"
)

func TestPreview_Release(t *testing.T) {
	p, err := NewPreview(File{Path: "/tmp/whatever.mp4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(p.Dir()); err != nil {
		t.Fatalf("expected preview dir to exist: %v", err)
	}

	if err := p.Release(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Released() {
		t.Error("expected Released() to be true")
	}
	if _, err := os.Stat(p.Dir()); !os.IsNotExist(err) {
		t.Error("expected preview dir to be removed")
	}

	// Second release is a no-op
	if err := p.Release(); err != nil {
		t.Errorf("expected second release to succeed, got %v", err)
	}

	if _, err := p.Path(); !errors.Is(err, ErrPreviewReleased) {
		t.Errorf("expected ErrPreviewReleased, got %v", err)
	}
}

func TestPreview_PathFailureIsCached(t *testing.T) {
	oldFFmpeg, oldFFprobe := ffmpegBin, ffprobeBin
	ffmpegBin, ffprobeBin = "ytupload-no-such-binary", "ytupload-no-such-binary"
	defer func() { ffmpegBin, ffprobeBin = oldFFmpeg, oldFFprobe }()

	p, err := NewPreview(File{Path: "/tmp/whatever.mp4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Release()

	_, err1 := p.Path()
	_, err2 := p.Path()
	if err1 == nil || err2 == nil {
		t.Fatal("expected extraction to fail without ffmpeg")
	}
	if err1 != err2 {
		t.Error("expected the first failure to be cached")
	}
}

func TestThumbnailTimestamp(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected time.Duration
	}{
		{time.Minute, 10 * time.Second},
		{8 * time.Second, 6 * time.Second},
		{2 * time.Second, time.Second},
		{500 * time.Millisecond, 0},
	}

	for _, tt := range tests {
		if got := thumbnailTimestamp(10*time.Second, tt.duration); got != tt.expected {
			t.Errorf("thumbnailTimestamp(%v) = %v, expected %v", tt.duration, got, tt.expected)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(90*time.Minute + 5500*time.Millisecond); got != "01:30:05.500" {
		t.Errorf("expected 01:30:05.500, got %s", got)
	}
}

func TestThumbnailArgs(t *testing.T) {
	args := thumbnailArgs("in.mp4", ThumbnailOptions{Width: 320, Quality: 75}, "out.jpg")
	joined := strings.Join(args, " ")

	if !strings.Contains(joined, "-i in.mp4") {
		t.Errorf("expected input arg, got %s", joined)
	}
	if !strings.Contains(joined, "scale=320:-1") {
		t.Errorf("expected scale filter keeping aspect ratio, got %s", joined)
	}
	if args[len(args)-1] != "out.jpg" {
		t.Errorf("expected output path last, got %s", args[len(args)-1])
	}
}

func TestScaleImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 320, 180))

	scaled, heightCells := ScaleImage(img, 40)

	if scaled.Bounds().Dx() != 320 {
		t.Errorf("expected scaled width 320, got %d", scaled.Bounds().Dx())
	}
	if heightCells != 11 {
		t.Errorf("expected 11 rows, got %d", heightCells)
	}
}
