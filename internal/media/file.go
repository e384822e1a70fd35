package media

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DefaultContentType is used when neither the extension nor the content
// identify the file.
const DefaultContentType = "application/octet-stream"

// videoContentTypes covers the containers YouTube accepts so detection does
// not depend on the host's mime database.
var videoContentTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".3gp":  "video/3gpp",
	".mpg":  "video/mpeg",
	".mpeg": "video/mpeg",
}

// File is an immutable handle to a local video: where it lives, how big it
// is and what it claims to be.
type File struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// OpenFile stats path and builds a File handle for it.
func OpenFile(path string) (File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return File{}, fmt.Errorf("cannot access video file: %w", err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", abs)
	}

	return File{
		Path:        abs,
		Name:        filepath.Base(abs),
		Size:        info.Size(),
		ContentType: DetectContentType(abs),
	}, nil
}

// Open returns a reader over the file's bytes. The caller closes it.
func (f File) Open() (io.ReadCloser, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video file: %w", err)
	}
	return file, nil
}

// Container returns the subtype of the content type ("mp4" for video/mp4).
func (f File) Container() string {
	ct := f.ContentType
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	if i := strings.Index(ct, "/"); i >= 0 {
		return strings.TrimPrefix(ct[i+1:], "x-")
	}
	return ct
}

// DetectContentType resolves a content type from the extension first and
// falls back to sniffing the first 512 bytes.
func DetectContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := videoContentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}

	file, err := os.Open(path)
	if err != nil {
		return DefaultContentType
	}
	defer func() { _ = file.Close() }()

	buf := make([]byte, 512)
	n, _ := io.ReadFull(file, buf)
	if n == 0 {
		return DefaultContentType
	}
	return http.DetectContentType(buf[:n])
}
