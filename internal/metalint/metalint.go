// Package metalint checks video metadata against YouTube's limits before
// an upload is attempted. Findings are advisory; the server stays the
// authority on what it accepts.
package metalint

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sajari/fuzzy"

	"github.com/chaesoohoon/youtubeuploader/internal/models"
)

const (
	MaxTitleRunes       = 100
	MaxDescriptionBytes = 5000
	MaxTagsLength       = 500
)

// Severity ranks an issue
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Field names the metadata field an issue refers to
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldTags        Field = "tags"
)

// Issue represents a problem found in the metadata
type Issue struct {
	Field       Field
	Severity    Severity
	Word        string   // Offending word or tag, if any
	Suggestions []string // Suggested corrections
	Message     string   // Human-readable message
}

// vocabulary seeds the spelling model with words common in video titles
var vocabulary = []string{
	"the", "and", "for", "with", "from", "your", "this", "that", "what", "when",
	"how", "why", "who", "best", "new", "first", "last", "day", "days", "week",
	"video", "videos", "vlog", "vlogs", "travel", "trip", "summer", "winter",
	"spring", "autumn", "holiday", "vacation", "beach", "mountain", "city", "food",
	"cooking", "recipe", "recipes", "review", "reviews", "unboxing", "tutorial",
	"guide", "tips", "tricks", "highlights", "highlight", "music", "cover", "live",
	"gaming", "game", "games", "gameplay", "walkthrough", "episode", "part", "series",
	"official", "trailer", "shorts", "challenge", "reaction", "family", "friends",
	"morning", "routine", "night", "home", "house", "diary", "story", "stories",
	"korea", "korean", "seoul", "japan", "tokyo", "europe", "america",
	"learn", "learning", "study", "studying", "english", "lesson", "lessons",
	"workout", "fitness", "exercise", "dance", "camping", "hiking", "fishing",
	"street", "market", "cafe", "coffee", "restaurant", "tour", "journey",
	"beautiful", "amazing", "ultimate", "complete", "easy", "quick", "simple",
	"subscribe", "channel", "comment", "comments", "like", "watch", "share",
	"behind", "scenes", "making", "full", "version", "edition", "special",
}

// Linter checks metadata for limit violations and likely typos
type Linter struct {
	model *fuzzy.Model
	known map[string]struct{}
}

// New creates a linter with the built-in vocabulary plus extra words
func New(extra ...string) *Linter {
	words := append(append([]string{}, vocabulary...), extra...)

	model := fuzzy.NewModel()
	model.SetThreshold(1)
	model.SetDepth(2)
	model.Train(words)

	known := make(map[string]struct{}, len(words))
	for _, w := range words {
		known[strings.ToLower(w)] = struct{}{}
	}
	return &Linter{model: model, known: known}
}

// Lint checks the metadata that would be sent for an upload. An empty
// optimized title is checked through its original title fallback.
func (l *Linter) Lint(meta models.VideoMetadata) []Issue {
	title := meta.OptimizedTitle
	if title == "" {
		title = meta.OriginalTitle
	}

	var issues []Issue
	issues = append(issues, checkTitle(title)...)
	issues = append(issues, checkDescription(meta.OptimizedDescription)...)
	issues = append(issues, checkTags(meta.Tags)...)
	issues = append(issues, l.checkSpelling(FieldTitle, title)...)
	return issues
}

func checkTitle(title string) []Issue {
	var issues []Issue
	if strings.TrimSpace(title) == "" {
		issues = append(issues, Issue{Field: FieldTitle, Severity: SeverityError, Message: "Title is empty"})
	}
	if n := utf8.RuneCountInString(title); n > MaxTitleRunes {
		issues = append(issues, Issue{
			Field:    FieldTitle,
			Severity: SeverityError,
			Message:  fmt.Sprintf("Title is %d characters, limit is %d", n, MaxTitleRunes),
		})
	}
	if strings.ContainsAny(title, "<>") {
		issues = append(issues, Issue{Field: FieldTitle, Severity: SeverityError, Message: "Title may not contain < or >"})
	}
	return issues
}

func checkDescription(desc string) []Issue {
	var issues []Issue
	if n := len(desc); n > MaxDescriptionBytes {
		issues = append(issues, Issue{
			Field:    FieldDescription,
			Severity: SeverityError,
			Message:  fmt.Sprintf("Description is %d bytes, limit is %d", n, MaxDescriptionBytes),
		})
	}
	if strings.ContainsAny(desc, "<>") {
		issues = append(issues, Issue{Field: FieldDescription, Severity: SeverityError, Message: "Description may not contain < or >"})
	}
	return issues
}

// TagsLength computes the length YouTube counts against the tag limit:
// separating commas plus quotes around tags that contain spaces.
func TagsLength(tags []string) int {
	total := 0
	for i, tag := range tags {
		if i > 0 {
			total++
		}
		total += utf8.RuneCountInString(tag)
		if strings.ContainsRune(tag, ' ') {
			total += 2
		}
	}
	return total
}

func checkTags(tags []string) []Issue {
	var issues []Issue
	if n := TagsLength(tags); n > MaxTagsLength {
		issues = append(issues, Issue{
			Field:    FieldTags,
			Severity: SeverityError,
			Message:  fmt.Sprintf("Tags total %d characters, limit is %d", n, MaxTagsLength),
		})
	}

	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		key := strings.ToLower(strings.TrimSpace(tag))
		if key == "" {
			continue
		}
		if seen[key] {
			issues = append(issues, Issue{Field: FieldTags, Severity: SeverityWarning, Word: tag, Message: "Duplicate tag"})
			continue
		}
		seen[key] = true
	}
	return issues
}

// checkSpelling only looks at ASCII words; the model has no dictionary for
// other scripts.
func (l *Linter) checkSpelling(field Field, text string) []Issue {
	var issues []Issue
	for _, word := range extractWords(text) {
		lower := strings.ToLower(word)
		if len(lower) < 4 || !isASCII(lower) || isLikelyAcronym(word) {
			continue
		}
		if _, ok := l.known[lower]; ok {
			continue
		}

		suggestions := l.model.Suggestions(lower, false)
		if len(suggestions) == 0 {
			continue
		}
		if len(suggestions) > 3 {
			suggestions = suggestions[:3]
		}
		issues = append(issues, Issue{
			Field:       field,
			Severity:    SeverityWarning,
			Word:        word,
			Suggestions: suggestions,
			Message:     "Possible spelling error",
		})
	}
	return issues
}

// HasErrors reports whether any issue is an error
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

func extractWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// isLikelyAcronym checks if a word is likely an acronym (all caps)
func isLikelyAcronym(s string) bool {
	if len(s) < 2 || len(s) > 6 {
		return false
	}
	for _, r := range s {
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// FormatIssues formats issues for display
func FormatIssues(issues []Issue) string {
	if len(issues) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, issue := range issues {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("• ")
		sb.WriteString(string(issue.Field))
		sb.WriteString(": ")
		if issue.Word != "" {
			sb.WriteString(issue.Word)
			sb.WriteString(": ")
		}
		sb.WriteString(issue.Message)
		if len(issue.Suggestions) > 0 {
			sb.WriteString(" → ")
			sb.WriteString(strings.Join(issue.Suggestions, ", "))
		}
	}
	return sb.String()
}
