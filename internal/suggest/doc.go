// Package suggest asks a generative model for YouTube metadata.
//
// The Gemini client sends the file name and the user's notes to the
// generateContent endpoint with a JSON response schema and decodes the
// reply into a models.SEOSuggestion. Requests are never retried; a failure
// leaves the decision to try again with the user.
package suggest
