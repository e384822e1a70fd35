package notify

import (
	"errors"
	"os/exec"

	"github.com/chaesoohoon/youtubeuploader/internal/models"
)

const appName = "YouTube Uploader"

// Urgency levels for notifications
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyCritical Urgency = "critical"
)

// ErrUnavailable is returned when notify-send is not installed
var ErrUnavailable = errors.New("notify-send not found")

// Runner executes an external command
type Runner func(name string, args ...string) error

func execRunner(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// Desktop sends queue events as desktop notifications
type Desktop struct {
	run       Runner
	available bool
}

// NewDesktop creates a notifier backed by notify-send. When the binary is
// missing every call is a silent no-op.
func NewDesktop() *Desktop {
	_, err := exec.LookPath("notify-send")
	return &Desktop{run: execRunner, available: err == nil}
}

// NewDesktopWithRunner creates a notifier that always uses run
func NewDesktopWithRunner(run Runner) *Desktop {
	return &Desktop{run: run, available: run != nil}
}

// Send sends a desktop notification using notify-send
func (d *Desktop) Send(title, body string, urgency Urgency, icon string) error {
	if !d.available {
		return ErrUnavailable
	}

	args := []string{"--app-name=" + appName}
	if urgency != "" {
		args = append(args, "--urgency="+string(urgency))
	}
	if icon != "" {
		args = append(args, "--icon="+icon)
	}
	args = append(args, title, body)

	return d.run("notify-send", args...)
}

// UploadComplete announces a published video
func (d *Desktop) UploadComplete(item models.VideoItem) {
	_ = d.Send("Upload Complete", item.UploadTitle()+"\n"+item.WatchURL(), UrgencyNormal, "video-x-generic")
}

// UploadFailed announces an upload failure
func (d *Desktop) UploadFailed(item models.VideoItem, err error) {
	_ = d.Send("Upload Failed", item.File.Name+": "+err.Error(), UrgencyCritical, "dialog-error")
}

// OptimizationFailed announces a metadata generation failure
func (d *Desktop) OptimizationFailed(item models.VideoItem, err error) {
	_ = d.Send("Metadata Generation Failed", item.File.Name+": "+err.Error(), UrgencyLow, "dialog-warning")
}
