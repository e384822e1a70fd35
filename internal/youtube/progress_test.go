package youtube

import (
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		loaded, total int64
		want          int
	}{
		{0, 100, 0},
		{50, 100, 50},
		{100, 100, 100},
		{1, 3, 33},
		{2, 3, 67},
		{150, 100, 100},
		{10, 0, 0},
		{-5, 100, 0},
	}
	for _, tt := range tests {
		if got := Percentage(tt.loaded, tt.total); got != tt.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tt.loaded, tt.total, got, tt.want)
		}
	}
}

func TestProgressReader(t *testing.T) {
	var ticks []UploadProgress
	src := iotest.OneByteReader(strings.NewReader("abcd"))
	pr := NewProgressReader(src, 4, func(p UploadProgress) { ticks = append(ticks, p) })

	pr.Start()
	if _, err := io.ReadAll(pr); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}

	want := []int{0, 25, 50, 75, 100}
	if len(ticks) != len(want) {
		t.Fatalf("expected %d ticks, got %d: %+v", len(want), len(ticks), ticks)
	}
	for i, w := range want {
		if ticks[i].Percentage != w {
			t.Errorf("tick %d: expected %d, got %d", i, w, ticks[i].Percentage)
		}
		if ticks[i].Total != 4 {
			t.Errorf("tick %d: expected total 4, got %d", i, ticks[i].Total)
		}
	}
	if pr.BytesRead() != 4 {
		t.Errorf("expected 4 bytes read, got %d", pr.BytesRead())
	}
}

func TestProgressReader_OnlyReportsChanges(t *testing.T) {
	var ticks []int
	src := iotest.OneByteReader(strings.NewReader(strings.Repeat("x", 1000)))
	pr := NewProgressReader(src, 1000, func(p UploadProgress) { ticks = append(ticks, p.Percentage) })

	pr.Start()
	if _, err := io.ReadAll(pr); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}

	if len(ticks) != 101 {
		t.Fatalf("expected one tick per percent (101), got %d", len(ticks))
	}
	for i, pct := range ticks {
		if pct != i {
			t.Fatalf("tick %d: expected %d, got %d", i, i, pct)
		}
	}
}

func TestProgressReader_UnknownTotal(t *testing.T) {
	called := false
	pr := NewProgressReader(strings.NewReader("abc"), 0, func(UploadProgress) { called = true })
	pr.Start()
	_, _ = io.ReadAll(pr)
	if called {
		t.Error("expected no ticks when total is unknown")
	}
}
