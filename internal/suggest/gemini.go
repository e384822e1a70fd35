package suggest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/chaesoohoon/youtubeuploader/internal/models"
)

const (
	// DefaultBaseURL is the Gemini REST API root
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	// DefaultModel is the model used when none is configured
	DefaultModel = "gemini-3-pro-preview"

	defaultHTTPTimeout = 60 * time.Second
)

// ErrOptimizationFailed wraps every failure to obtain a suggestion.
var ErrOptimizationFailed = errors.New("metadata optimization failed")

// Suggester produces SEO metadata for a video.
type Suggester interface {
	Suggest(ctx context.Context, filename, notes string) (models.SEOSuggestion, error)
}

// Config captures the runtime settings required to talk to Gemini.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Language       string
	TimeoutSeconds int
}

// GeminiClient asks Gemini for metadata through the genai SDK.
type GeminiClient struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*GeminiClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *GeminiClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *GeminiClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewGeminiClient constructs a client using the supplied configuration.
func NewGeminiClient(cfg Config, opts ...Option) *GeminiClient {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &GeminiClient{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Model:          strings.TrimSpace(cfg.Model),
			Language:       strings.TrimSpace(cfg.Language),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = DefaultBaseURL
	}
	if client.cfg.Model == "" {
		client.cfg.Model = DefaultModel
	}
	if client.cfg.Language == "" {
		client.cfg.Language = DefaultLanguage
	}
	return client
}

// Model returns the configured model name.
func (c *GeminiClient) Model() string {
	return c.cfg.Model
}

// suggestionPayload uses pointers so absent fields can be told apart
// from empty ones.
type suggestionPayload struct {
	Title         *string   `json:"title"`
	Description   *string   `json:"description"`
	Tags          *[]string `json:"tags"`
	Justification *string   `json:"justification"`
}

// Suggest asks the model for metadata for filename.
func (c *GeminiClient) Suggest(ctx context.Context, filename, notes string) (models.SEOSuggestion, error) {
	var empty models.SEOSuggestion
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return empty, fmt.Errorf("%w: file name required", ErrOptimizationFailed)
	}
	if c.cfg.APIKey == "" {
		return empty, fmt.Errorf("%w: gemini api key required", ErrOptimizationFailed)
	}

	prompt := userPrompt(filename, strings.TrimSpace(notes), c.cfg.Language)
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction(c.cfg.Language), genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    responseSchema(),
	}

	started := time.Now()
	text, err := c.generate(ctx, prompt, config)
	if err != nil {
		c.logger.Warn("metadata generation failed", "file", filename, "model", c.cfg.Model, "error", err)
		return empty, fmt.Errorf("%w: %w", ErrOptimizationFailed, err)
	}

	suggestion, err := parseSuggestion(text)
	if err != nil {
		c.logger.Warn("metadata response rejected", "file", filename, "error", err)
		return empty, fmt.Errorf("%w: %w", ErrOptimizationFailed, err)
	}

	c.logger.Debug("metadata generated",
		"file", filename,
		"model", c.cfg.Model,
		"tags", len(suggestion.Tags),
		"duration", time.Since(started).Round(time.Millisecond),
	)
	return suggestion, nil
}

func parseSuggestion(text string) (models.SEOSuggestion, error) {
	var parsed suggestionPayload
	if err := DecodeJSON(text, &parsed); err != nil {
		return models.SEOSuggestion{}, fmt.Errorf("parse payload: %w", err)
	}

	var missing []string
	if parsed.Title == nil {
		missing = append(missing, "title")
	}
	if parsed.Description == nil {
		missing = append(missing, "description")
	}
	if parsed.Tags == nil {
		missing = append(missing, "tags")
	}
	if parsed.Justification == nil {
		missing = append(missing, "justification")
	}
	if len(missing) > 0 {
		return models.SEOSuggestion{}, fmt.Errorf("response missing %s", strings.Join(missing, ", "))
	}

	tags := make([]string, 0, len(*parsed.Tags))
	for _, tag := range *parsed.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	return models.SEOSuggestion{
		Title:         strings.TrimSpace(*parsed.Title),
		Description:   strings.TrimSpace(*parsed.Description),
		Tags:          tags,
		Justification: strings.TrimSpace(*parsed.Justification),
	}, nil
}

func (c *GeminiClient) newClient(ctx context.Context) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      c.cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  c.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: c.cfg.BaseURL},
	})
}

func (c *GeminiClient) generate(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	client, err := c.newClient(ctx)
	if err != nil {
		return "", fmt.Errorf("gemini request: new client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &httpStatusError{StatusCode: apiErr.Code, Message: apiErr.Message}
		}
		return "", fmt.Errorf("gemini request: %w", err)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini request: prompt blocked (%s)", resp.PromptFeedback.BlockReason)
	}

	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		var text strings.Builder
		for _, p := range candidate.Content.Parts {
			if p == nil || p.Thought {
				continue
			}
			text.WriteString(p.Text)
		}
		if strings.TrimSpace(text.String()) != "" {
			return text.String(), nil
		}
	}

	finish := ""
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		finish = string(resp.Candidates[0].FinishReason)
	}
	return "", fmt.Errorf("gemini request: empty content (finish_reason=%q)", finish)
}
