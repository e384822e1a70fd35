package media

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestSplitPaths(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"a.mp4", []string{"a.mp4"}},
		{"a.mp4  b.mov", []string{"a.mp4", "b.mov"}},
		{`"my video.mp4" b.mov`, []string{"my video.mp4", "b.mov"}},
		{`'it is.mkv'`, []string{"it is.mkv"}},
		{"\ta.mp4\n", []string{"a.mp4"}},
		{`my\ video.mp4 b.mov`, []string{"my video.mp4", "b.mov"}},
		{`~/clips/it\'s.mp4`, []string{"~/clips/it's.mp4"}},
	}

	for _, tt := range tests {
		got, err := SplitPaths(tt.input)
		if err != nil {
			t.Errorf("SplitPaths(%q) error: %v", tt.input, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitPaths(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSplitPaths_Invalid(t *testing.T) {
	for _, input := range []string{`"my video.mp4`, `a.mp4 & b.mp4`, `clip(1).mp4`} {
		if got, err := SplitPaths(input); err == nil {
			t.Errorf("SplitPaths(%q) = %q, expected an error", input, got)
		}
	}

	got, err := SplitPaths(`"rock & roll.mp4" clip\ \(1\).mp4`)
	if err != nil {
		t.Fatalf("quoted separators should parse: %v", err)
	}
	if want := []string{"rock & roll.mp4", "clip (1).mp4"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := ExpandPath("~/videos/a.mp4"); got != filepath.Join(home, "videos/a.mp4") {
		t.Errorf("unexpected expansion: %q", got)
	}
	if got := ExpandPath("/tmp/a.mp4"); got != "/tmp/a.mp4" {
		t.Errorf("absolute path should be unchanged, got %q", got)
	}
}

func TestIntake(t *testing.T) {
	dir := t.TempDir()
	for name, size := range map[string]int{"one.mp4": 10, "two.mp4": 20, "notes.txt": 5} {
		if err := os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, warnings, err := Intake([]string{
		filepath.Join(dir, "*.mp4"),
		filepath.Join(dir, "notes.txt"),
		filepath.Join(dir, "missing.mp4"),
	})

	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d", len(files))
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "unsupported video format") {
		t.Errorf("expected one unsupported format warning, got %v", warnings)
	}
	if err == nil || !strings.Contains(err.Error(), "missing.mp4") {
		t.Errorf("expected error naming missing.mp4, got %v", err)
	}
}

func TestIntake_NoGlobMatch(t *testing.T) {
	_, _, err := Intake([]string{filepath.Join(t.TempDir(), "*.mov")})
	if err == nil || !strings.Contains(err.Error(), "no files match") {
		t.Errorf("expected no match error, got %v", err)
	}
}
