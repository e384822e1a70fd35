package youtube

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/chaesoohoon/youtubeuploader/internal/models"
)

// PrivacyStatus represents YouTube video privacy settings
type PrivacyStatus string

const (
	PrivacyPublic   PrivacyStatus = "public"
	PrivacyUnlisted PrivacyStatus = "unlisted"
	PrivacyPrivate  PrivacyStatus = "private"
)

// DefaultCategoryID is the category used when an item has none
const DefaultCategoryID = models.DefaultCategoryID

// Token represents stored OAuth2 tokens
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	Expiry       string `json:"expiry"` // RFC3339 format
}

func tokenFromOAuth(t *oauth2.Token) *Token {
	stored := &Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
	}
	if !t.Expiry.IsZero() {
		stored.Expiry = t.Expiry.Format(time.RFC3339)
	}
	return stored
}

// OAuth converts the stored token for use with oauth2 token sources
func (t *Token) OAuth() *oauth2.Token {
	expiry, _ := time.Parse(time.RFC3339, t.Expiry)
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       expiry,
	}
}

// GetTokenPath returns the path to the token file
func GetTokenPath(configDir string) string {
	return filepath.Join(configDir, "youtube_token.json")
}

// LoadToken loads the OAuth token from disk
func LoadToken(configDir string) (*Token, error) {
	data, err := os.ReadFile(GetTokenPath(configDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, err
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, ErrNotAuthenticated
	}
	return &token, nil
}

// SaveToken saves the OAuth token to disk, readable by the owner only
func SaveToken(configDir string, token *Token) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(GetTokenPath(configDir), data, 0o600)
}

// DeleteToken removes the stored OAuth token
func DeleteToken(configDir string) error {
	err := os.Remove(GetTokenPath(configDir))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// HasToken returns true if a token file exists
func HasToken(configDir string) bool {
	_, err := os.Stat(GetTokenPath(configDir))
	return err == nil
}

// Category is a selectable YouTube video category
type Category struct {
	ID   string
	Name string
}

// Categories are the choices offered when editing an item, in display order
var Categories = []Category{
	{ID: "22", Name: "People & Blogs"},
	{ID: "20", Name: "Gaming"},
	{ID: "24", Name: "Entertainment"},
	{ID: "1", Name: "Film & Animation"},
	{ID: "27", Name: "Education"},
	{ID: "10", Name: "Music"},
}

// VideoCategories names every assignable category, including ones only
// reachable from the command line.
var VideoCategories = map[string]string{
	"1":  "Film & Animation",
	"2":  "Autos & Vehicles",
	"10": "Music",
	"15": "Pets & Animals",
	"17": "Sports",
	"19": "Travel & Events",
	"20": "Gaming",
	"22": "People & Blogs",
	"23": "Comedy",
	"24": "Entertainment",
	"25": "News & Politics",
	"26": "Howto & Style",
	"27": "Education",
	"28": "Science & Technology",
	"29": "Nonprofits & Activism",
}

// CategoryName returns the display name of a category ID, or the ID itself
func CategoryName(id string) string {
	if name, ok := VideoCategories[id]; ok {
		return name
	}
	return id
}

// IsKnownCategory reports whether id is an assignable category
func IsKnownCategory(id string) bool {
	_, ok := VideoCategories[id]
	return ok
}

// CategoryIndex returns the position of id in Categories, or 0
func CategoryIndex(id string) int {
	for i, c := range Categories {
		if c.ID == id {
			return i
		}
	}
	return 0
}

// ParseTags parses a comma-separated string of tags into a slice
func ParseTags(tagsStr string) []string {
	tags := []string{}
	for _, part := range strings.Split(tagsStr, ",") {
		tag := strings.TrimSpace(part)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// JoinTags is the inverse of ParseTags
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
