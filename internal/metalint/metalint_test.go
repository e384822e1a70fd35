package metalint

import (
	"strings"
	"testing"

	"github.com/chaesoohoon/youtubeuploader/internal/models"
)

func TestNew(t *testing.T) {
	l := New("qgis")
	if l.model == nil {
		t.Fatal("expected non-nil model")
	}
	if _, ok := l.known["qgis"]; !ok {
		t.Error("expected extra words to be known")
	}
}

func TestLint_CleanMetadata(t *testing.T) {
	l := New()
	meta := models.VideoMetadata{
		OriginalTitle:        "vacation",
		OptimizedTitle:       "Summer Trip Highlights",
		OptimizedDescription: "A beach day #travel #summer #vlog",
		Tags:                 []string{"travel", "summer trip"},
	}
	if issues := l.Lint(meta); len(issues) != 0 {
		t.Errorf("expected no issues, got:\n%s", FormatIssues(issues))
	}
}

func TestLint_Limits(t *testing.T) {
	l := New()

	tests := []struct {
		name  string
		meta  models.VideoMetadata
		field Field
	}{
		{
			name:  "long title",
			meta:  models.VideoMetadata{OptimizedTitle: strings.Repeat("가", MaxTitleRunes+1)},
			field: FieldTitle,
		},
		{
			name:  "angle brackets in title",
			meta:  models.VideoMetadata{OptimizedTitle: "<b>bold</b>"},
			field: FieldTitle,
		},
		{
			name:  "empty title",
			meta:  models.VideoMetadata{},
			field: FieldTitle,
		},
		{
			name:  "long description",
			meta:  models.VideoMetadata{OptimizedTitle: "ok", OptimizedDescription: strings.Repeat("a", MaxDescriptionBytes+1)},
			field: FieldDescription,
		},
		{
			name:  "too many tags",
			meta:  models.VideoMetadata{OptimizedTitle: "ok", Tags: []string{strings.Repeat("t", 300), strings.Repeat("u", 300)}},
			field: FieldTags,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := l.Lint(tt.meta)
			if !HasErrors(issues) {
				t.Fatalf("expected an error, got %v", issues)
			}
			found := false
			for _, issue := range issues {
				if issue.Field == tt.field && issue.Severity == SeverityError {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got:\n%s", tt.field, FormatIssues(issues))
			}
		})
	}
}

func TestLint_TitleFallback(t *testing.T) {
	l := New()
	issues := l.Lint(models.VideoMetadata{OriginalTitle: "clip"})
	for _, issue := range issues {
		if issue.Field == FieldTitle && issue.Severity == SeverityError {
			t.Errorf("expected original title to satisfy the title check, got %s", issue.Message)
		}
	}
}

func TestLint_DuplicateTags(t *testing.T) {
	l := New()
	issues := l.Lint(models.VideoMetadata{OptimizedTitle: "ok", Tags: []string{"Travel", "travel ", "vlog"}})
	if len(issues) != 1 || issues[0].Word != "travel " || issues[0].Severity != SeverityWarning {
		t.Errorf("expected one duplicate warning, got %+v", issues)
	}
}

func TestLint_Spelling(t *testing.T) {
	l := New()
	issues := l.Lint(models.VideoMetadata{OptimizedTitle: "Summer Vacatoin 여행 VLOG"})

	var spelling []Issue
	for _, issue := range issues {
		if issue.Message == "Possible spelling error" {
			spelling = append(spelling, issue)
		}
	}
	if len(spelling) != 1 {
		t.Fatalf("expected one spelling issue, got %+v", issues)
	}
	if spelling[0].Word != "Vacatoin" {
		t.Errorf("expected Vacatoin to be flagged, got %q", spelling[0].Word)
	}
	found := false
	for _, s := range spelling[0].Suggestions {
		if s == "vacation" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected suggestion vacation, got %v", spelling[0].Suggestions)
	}
}

func TestTagsLength(t *testing.T) {
	if got := TagsLength(nil); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	// "ab" + "," + "\"c d\""
	if got := TagsLength([]string{"ab", "c d"}); got != 8 {
		t.Errorf("expected 8, got %d", got)
	}
}

func TestFormatIssues(t *testing.T) {
	if FormatIssues(nil) != "" {
		t.Error("expected empty string for no issues")
	}
	out := FormatIssues([]Issue{{Field: FieldTitle, Word: "Vacatoin", Message: "Possible spelling error", Suggestions: []string{"vacation"}}})
	if !strings.Contains(out, "title: Vacatoin: Possible spelling error → vacation") {
		t.Errorf("unexpected format %q", out)
	}
}
