package suggest

import (
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultLanguage is the language suggestions are written in
const DefaultLanguage = "Korean"

const (
	maxTitleRunes = 100
	tagCount      = 15
	hashtagCount  = 3
)

func systemInstruction(language string) string {
	return fmt.Sprintf(`You are a YouTube growth consultant for the %[1]s-speaking market.
Produce metadata that helps the uploaded video surface in YouTube search and recommendations:
1. An appealing title, not clickbait, at most %[2]d characters.
2. A detailed description that naturally includes high-volume search keywords and ends with %[3]d hashtags.
3. %[4]d highly relevant tags.
4. A short justification of why this metadata should perform well.
Write every field in %[1]s.`, language, maxTitleRunes, hashtagCount, tagCount)
}

func userPrompt(filename, notes, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Video file name: %q\n", filename)
	fmt.Fprintf(&b, "Additional notes from the uploader: %q\n", notes)
	fmt.Fprintf(&b, "Using the information above, generate metadata in %s that maximizes YouTube search exposure.", language)
	return b.String()
}

// responseSchema mirrors models.SEOSuggestion.
func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {
				Type:        genai.TypeString,
				Description: "Optimized YouTube title",
			},
			"description": {
				Type:        genai.TypeString,
				Description: "SEO description including hashtags",
			},
			"tags": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Search tags",
			},
			"justification": {
				Type:        genai.TypeString,
				Description: "Why this metadata works",
			},
		},
		PropertyOrdering: []string{"title", "description", "tags", "justification"},
		Required:         []string{"title", "description", "tags", "justification"},
	}
}
