package youtube

import (
	"io"
	"math"
)

// UploadProgress reports upload progress
type UploadProgress struct {
	Loaded     int64
	Total      int64
	Percentage int
}

// Percentage computes round(loaded/total*100) clamped to 0..100.
func Percentage(loaded, total int64) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(float64(loaded) / float64(total) * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// ProgressReader wraps an io.Reader to report progress
type ProgressReader struct {
	reader       io.Reader
	total        int64
	read         int64
	lastPct      int
	progressFunc func(UploadProgress)
}

// NewProgressReader reports progress against total each time the rounded
// percentage changes. No ticks are emitted when total is unknown.
func NewProgressReader(r io.Reader, total int64, progressFunc func(UploadProgress)) *ProgressReader {
	return &ProgressReader{reader: r, total: total, lastPct: -1, progressFunc: progressFunc}
}

func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.read += int64(n)
	if n > 0 {
		pr.report()
	}
	return n, err
}

// Start emits the initial zero tick.
func (pr *ProgressReader) Start() {
	pr.report()
}

// BytesRead returns how many bytes have passed through the reader.
func (pr *ProgressReader) BytesRead() int64 {
	return pr.read
}

func (pr *ProgressReader) report() {
	if pr.progressFunc == nil || pr.total <= 0 {
		return
	}
	pct := Percentage(pr.read, pr.total)
	if pct == pr.lastPct {
		return
	}
	pr.lastPct = pct
	pr.progressFunc(UploadProgress{
		Loaded:     pr.read,
		Total:      pr.total,
		Percentage: pct,
	})
}
