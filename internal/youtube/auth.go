package youtube

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// OAuth2 scopes: upload for publishing, readonly for the channel lookup
var oauthScopes = []string{
	youtube.YoutubeUploadScope,
	youtube.YoutubeReadonlyScope,
}

const (
	defaultRevokeURL = "https://oauth2.googleapis.com/revoke"
	authTimeout      = 5 * time.Minute
)

// Auth handles YouTube OAuth2 authentication and token persistence
type Auth struct {
	config      *oauth2.Config
	configDir   string
	revokeURL   string
	openBrowser func(string) error
	httpClient  *http.Client
	logger      *slog.Logger

	mu    sync.Mutex
	token *oauth2.Token
}

// AuthOption customizes an Auth.
type AuthOption func(*Auth)

// WithOAuthEndpoint overrides the Google OAuth endpoints.
func WithOAuthEndpoint(endpoint oauth2.Endpoint) AuthOption {
	return func(a *Auth) { a.config.Endpoint = endpoint }
}

// WithRevokeURL overrides the token revocation endpoint.
func WithRevokeURL(u string) AuthOption {
	return func(a *Auth) {
		if u != "" {
			a.revokeURL = u
		}
	}
}

// WithBrowserOpener replaces the platform browser launcher.
func WithBrowserOpener(fn func(string) error) AuthOption {
	return func(a *Auth) {
		if fn != nil {
			a.openBrowser = fn
		}
	}
}

// WithAuthHTTPClient sets the client used for token exchange and revocation.
func WithAuthHTTPClient(client *http.Client) AuthOption {
	return func(a *Auth) {
		if client != nil {
			a.httpClient = client
		}
	}
}

// WithAuthLogger sets the logger.
func WithAuthLogger(logger *slog.Logger) AuthOption {
	return func(a *Auth) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAuth creates a YouTube authenticator that keeps its token in configDir
func NewAuth(clientID, clientSecret, configDir string, opts ...AuthOption) *Auth {
	a := &Auth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes:       oauthScopes,
			Endpoint:     google.Endpoint,
			// RedirectURL is set when the loopback listener starts
		},
		configDir:   configDir,
		revokeURL:   defaultRevokeURL,
		openBrowser: openBrowser,
		httpClient:  http.DefaultClient,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Auth) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
}

// IsConfigured returns true if OAuth client credentials are set
func (a *Auth) IsConfigured() bool {
	return a.config.ClientID != "" && a.config.ClientSecret != ""
}

// IsAuthenticated returns true if a usable or refreshable token exists
func (a *Auth) IsAuthenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	token, err := a.currentToken()
	if err != nil {
		return false
	}
	return token.Valid() || token.RefreshToken != ""
}

// currentToken returns the cached token, loading it from disk on first use.
// Callers hold a.mu.
func (a *Auth) currentToken() (*oauth2.Token, error) {
	if a.token != nil {
		return a.token, nil
	}
	stored, err := LoadToken(a.configDir)
	if err != nil {
		return nil, err
	}
	a.token = stored.OAuth()
	return a.token, nil
}

// AccessToken returns a valid bearer token, refreshing and persisting it
// when it has expired.
func (a *Auth) AccessToken(ctx context.Context) (string, error) {
	source, err := a.tokenSource(ctx)
	if err != nil {
		return "", err
	}
	token, err := source.Token()
	if err != nil {
		return "", fmt.Errorf("failed to get valid token: %w", err)
	}
	return token.AccessToken, nil
}

func (a *Auth) tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	current, err := a.currentToken()
	if err != nil {
		return nil, err
	}

	// Refresh eagerly so the rotated token lands on disk once.
	fresh, err := a.config.TokenSource(a.oauthContext(ctx), current).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	if fresh.AccessToken != current.AccessToken {
		if fresh.RefreshToken == "" {
			fresh.RefreshToken = current.RefreshToken
		}
		a.token = fresh
		if err := SaveToken(a.configDir, tokenFromOAuth(fresh)); err != nil {
			a.logger.Warn("failed to save refreshed token", "error", err)
		}
	}
	return oauth2.StaticTokenSource(a.token), nil
}

// GetClient returns an HTTP client with valid OAuth2 credentials
func (a *Auth) GetClient(ctx context.Context) (*http.Client, error) {
	source, err := a.tokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(a.oauthContext(ctx), source), nil
}

// GetChannelName returns the authenticated channel name
func (a *Auth) GetChannelName(ctx context.Context, opts ...option.ClientOption) (string, error) {
	client, err := a.GetClient(ctx)
	if err != nil {
		return "", err
	}

	service, err := youtube.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)...)
	if err != nil {
		return "", err
	}

	response, err := service.Channels.List([]string{"snippet"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(response.Items) == 0 || response.Items[0].Snippet == nil {
		return "", errors.New("no channel found")
	}
	return response.Items[0].Snippet.Title, nil
}

// Authenticate starts the OAuth2 flow and returns when complete.
// onURL, when set, receives the consent URL so a UI can display it.
func (a *Auth) Authenticate(ctx context.Context, onURL func(string)) error {
	if !a.IsConfigured() {
		return errors.New("client ID and secret are required")
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}
	defer func() { _ = listener.Close() }()

	port := listener.Addr().(*net.TCPAddr).Port
	cfg := *a.config
	cfg.RedirectURL = fmt.Sprintf("http://127.0.0.1:%d/callback", port)

	codeVerifier, err := generateCodeVerifier()
	if err != nil {
		return fmt.Errorf("failed to generate code verifier: %w", err)
	}
	state, err := generateState()
	if err != nil {
		return fmt.Errorf("failed to generate state: %w", err)
	}

	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("code_challenge", generateCodeChallenge(codeVerifier)),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
	if onURL != nil {
		onURL(authURL)
	}

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	server := &http.Server{
		Handler:           callbackHandler(state, codeChan, errChan),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errChan <- err:
			default:
			}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := a.openBrowser(authURL); err != nil {
		a.logger.Warn("failed to open browser", "error", err, "url", authURL)
	}

	var code string
	select {
	case code = <-codeChan:
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(authTimeout):
		return errors.New("authorization timeout")
	}

	token, err := cfg.Exchange(a.oauthContext(ctx), code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return fmt.Errorf("failed to exchange code for token: %w", err)
	}

	a.mu.Lock()
	a.token = token
	a.mu.Unlock()

	if err := SaveToken(a.configDir, tokenFromOAuth(token)); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	a.logger.Info("youtube authorization complete")
	return nil
}

// callbackHandler serves the loopback redirect and hands the code over.
func callbackHandler(state string, codeChan chan<- string, errChan chan<- error) http.Handler {
	report := func(err error) {
		select {
		case errChan <- err:
		default:
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/callback" {
			http.NotFound(w, r)
			return
		}

		query := r.URL.Query()
		if query.Get("state") != state {
			report(errors.New("invalid state parameter"))
			http.Error(w, "Invalid state", http.StatusBadRequest)
			return
		}

		if errParam := query.Get("error"); errParam != "" {
			errDesc := query.Get("error_description")
			report(fmt.Errorf("authorization error: %s - %s", errParam, errDesc))
			writeCallbackPage(w, "Authorization Failed", html.EscapeString(errDesc))
			return
		}

		code := query.Get("code")
		if code == "" {
			report(errors.New("no authorization code received"))
			http.Error(w, "No code", http.StatusBadRequest)
			return
		}

		select {
		case codeChan <- code:
		default:
		}
		writeCallbackPage(w, "Authorization Successful", "You can close this window and return to the uploader.")
	})
}

func writeCallbackPage(w http.ResponseWriter, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprintf(w, `<!DOCTYPE html>
<html><head><title>%[1]s</title>
<style>body{font-family:sans-serif;text-align:center;padding:50px;background:#0f0f0f;color:#fff;}h1{color:#ff0033;}</style>
</head><body>
<h1>%[1]s</h1>
<p>%[2]s</p>
</body></html>`, title, body)
}

// Logout removes stored credentials
func (a *Auth) Logout() error {
	a.mu.Lock()
	a.token = nil
	a.mu.Unlock()
	return DeleteToken(a.configDir)
}

// RevokeToken revokes the stored token at Google and deletes it locally
func (a *Auth) RevokeToken(ctx context.Context) error {
	a.mu.Lock()
	token, err := a.currentToken()
	a.mu.Unlock()
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			return nil
		}
		return err
	}

	// Revoking the refresh token also invalidates its access tokens.
	value := token.RefreshToken
	if value == "" {
		value = token.AccessToken
	}

	form := url.Values{"token": {value}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	// Google answers 400 for tokens that are already invalid.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("revoke failed: %s", resp.Status)
	}
	return a.Logout()
}

// generateCodeVerifier generates a random code verifier for PKCE
func generateCodeVerifier() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// generateCodeChallenge generates a code challenge from the verifier
func generateCodeChallenge(verifier string) string {
	h := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(h[:])
}

// generateState generates a random state string for CSRF protection
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// openBrowser opens the default browser to the given URL
func openBrowser(urlStr string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", urlStr)
	case "darwin":
		cmd = exec.Command("open", urlStr)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", urlStr)
	default:
		return fmt.Errorf("unsupported platform")
	}

	return cmd.Start()
}

// ValidateCredentials checks the shape of OAuth client credentials
func ValidateCredentials(clientID, clientSecret string) error {
	if strings.TrimSpace(clientID) == "" || strings.TrimSpace(clientSecret) == "" {
		return errors.New("client ID and secret are required")
	}
	if !strings.HasSuffix(clientID, ".apps.googleusercontent.com") {
		return errors.New("client ID should end with .apps.googleusercontent.com")
	}
	return nil
}

// GetSetupInstructions returns instructions for setting up YouTube API credentials
func GetSetupInstructions() string {
	return `To upload videos to YouTube, you need OAuth credentials:

1. Open https://console.cloud.google.com/ and pick a project
2. Enable "YouTube Data API v3" under APIs & Services > Library
3. Under Credentials, create an "OAuth client ID" of type "Desktop app"
4. Configure the consent screen and add your account as a test user
5. Run: youtube-uploader config set-client <client-id> <client-secret>`
}

// AuthStatus represents the current authentication status
type AuthStatus int

const (
	AuthStatusNotConfigured AuthStatus = iota // No credentials configured
	AuthStatusConfigured                      // Credentials set but not authenticated
	AuthStatusAuthenticated                   // Token present and usable
	AuthStatusExpired                         // Token expired without refresh token
)

// Status returns the current authentication status
func (a *Auth) Status() AuthStatus {
	if !a.IsConfigured() {
		return AuthStatusNotConfigured
	}

	a.mu.Lock()
	token, err := a.currentToken()
	a.mu.Unlock()
	if err != nil {
		return AuthStatusConfigured
	}
	if !token.Valid() && token.RefreshToken == "" {
		return AuthStatusExpired
	}
	return AuthStatusAuthenticated
}

// String returns a human-readable status
func (s AuthStatus) String() string {
	switch s {
	case AuthStatusNotConfigured:
		return "Not Configured"
	case AuthStatusConfigured:
		return "Not Connected"
	case AuthStatusAuthenticated:
		return "Connected"
	case AuthStatusExpired:
		return "Expired"
	default:
		return "Unknown"
	}
}
