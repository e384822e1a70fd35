package models

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultCategoryID is the YouTube category assigned to new items (People & Blogs)
const DefaultCategoryID = "22"

// VideoMetadata holds the descriptive fields sent to YouTube
type VideoMetadata struct {
	OriginalTitle        string   `json:"original_title"`
	OptimizedTitle       string   `json:"optimized_title"`
	OptimizedDescription string   `json:"optimized_description"`
	Tags                 []string `json:"tags"`
	Category             string   `json:"category"`
}

// MetadataPatch is a partial update. Nil fields are left untouched.
// OriginalTitle is deliberately absent: it is fixed at intake.
type MetadataPatch struct {
	OptimizedTitle       *string
	OptimizedDescription *string
	Tags                 []string
	Category             *string
}

// SEOSuggestion is the generated metadata for one video
type SEOSuggestion struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags"`
	Justification string   `json:"justification"`
}

// NewVideoMetadata derives the initial metadata for a file name
func NewVideoMetadata(filename string) VideoMetadata {
	return VideoMetadata{
		OriginalTitle: TitleFromFilename(filename),
		Tags:          []string{},
		Category:      DefaultCategoryID,
	}
}

// TitleFromFilename strips the directory and the last extension and
// normalises the result to NFC.
func TitleFromFilename(filename string) string {
	base := filepath.Base(filename)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return norm.NFC.String(base)
}

// Apply merges the non-nil fields of p into m
func (m *VideoMetadata) Apply(p MetadataPatch) {
	if p.OptimizedTitle != nil {
		m.OptimizedTitle = *p.OptimizedTitle
	}
	if p.OptimizedDescription != nil {
		m.OptimizedDescription = *p.OptimizedDescription
	}
	if p.Tags != nil {
		m.Tags = append([]string(nil), p.Tags...)
	}
	if p.Category != nil {
		m.Category = *p.Category
	}
}

// ApplySuggestion copies title, description and tags from a suggestion
func (m *VideoMetadata) ApplySuggestion(s SEOSuggestion) {
	m.OptimizedTitle = s.Title
	m.OptimizedDescription = s.Description
	m.Tags = append([]string{}, s.Tags...)
}

// IsEmpty reports whether the patch changes nothing
func (p MetadataPatch) IsEmpty() bool {
	return p.OptimizedTitle == nil && p.OptimizedDescription == nil && p.Tags == nil && p.Category == nil
}

// StringPtr is a helper for building patches
func StringPtr(s string) *string {
	return &s
}
