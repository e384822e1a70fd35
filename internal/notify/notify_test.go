package notify

import (
	"errors"
	"strings"
	"testing"

	"github.com/chaesoohoon/youtubeuploader/internal/media"
	"github.com/chaesoohoon/youtubeuploader/internal/models"
)

type call struct {
	name string
	args []string
}

func recorder(calls *[]call) Runner {
	return func(name string, args ...string) error {
		*calls = append(*calls, call{name: name, args: args})
		return nil
	}
}

func TestDesktop_UploadComplete(t *testing.T) {
	var calls []call
	d := NewDesktopWithRunner(recorder(&calls))

	item := models.NewVideoItem(media.File{Name: "vacation.mp4"}, nil)
	item.Status = models.StatusCompleted
	item.RemoteID = "yt_abc123"
	d.UploadComplete(item.Clone())

	if len(calls) != 1 {
		t.Fatalf("expected one notification, got %d", len(calls))
	}
	c := calls[0]
	if c.name != "notify-send" {
		t.Errorf("expected notify-send, got %s", c.name)
	}
	if c.args[len(c.args)-2] != "Upload Complete" {
		t.Errorf("expected title before body, got %v", c.args)
	}
	if !strings.Contains(c.args[len(c.args)-1], "watch?v=yt_abc123") {
		t.Errorf("expected watch URL in body, got %q", c.args[len(c.args)-1])
	}
	if !contains(c.args, "--urgency=normal") {
		t.Errorf("expected normal urgency, got %v", c.args)
	}
}

func TestDesktop_Failures(t *testing.T) {
	var calls []call
	d := NewDesktopWithRunner(recorder(&calls))
	item := models.NewVideoItem(media.File{Name: "clip.mp4"}, nil).Clone()

	d.UploadFailed(item, errors.New("quota exceeded"))
	d.OptimizationFailed(item, errors.New("blocked"))

	if len(calls) != 2 {
		t.Fatalf("expected two notifications, got %d", len(calls))
	}
	if !contains(calls[0].args, "--urgency=critical") {
		t.Errorf("expected critical urgency for upload failure, got %v", calls[0].args)
	}
	if !strings.Contains(calls[0].args[len(calls[0].args)-1], "quota exceeded") {
		t.Errorf("expected error text in body, got %v", calls[0].args)
	}
	if !contains(calls[1].args, "--urgency=low") {
		t.Errorf("expected low urgency for optimization failure, got %v", calls[1].args)
	}
}

func TestDesktop_Unavailable(t *testing.T) {
	d := NewDesktopWithRunner(nil)
	if err := d.Send("t", "b", UrgencyNormal, ""); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
