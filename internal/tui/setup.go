package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chaesoohoon/youtubeuploader/internal/config"
	"github.com/chaesoohoon/youtubeuploader/internal/youtube"
)

// SetupStep represents the current step in the account wizard
type SetupStep int

const (
	SetupStepInstructions SetupStep = iota
	SetupStepCredentials
	SetupStepAuthenticating
	SetupStepConnected
	SetupStepError
)

// authTimeout bounds how long we wait for the browser consent
const authTimeout = 5 * time.Minute

// authStartedMsg is sent once the consent URL is known
type authStartedMsg struct {
	authURL string
}

// authCompleteMsg is sent when the OAuth flow finishes
type authCompleteMsg struct {
	auth        *youtube.Auth
	channelName string
	err         error
}

// disconnectedMsg is sent after the stored token was revoked
type disconnectedMsg struct {
	err error
}

// AuthFactory builds an Auth for a pair of client credentials
type AuthFactory func(clientID, clientSecret string) *youtube.Auth

// SetupModel handles client credentials and sign-in
type SetupModel struct {
	width  int
	height int

	step         SetupStep
	clientID     textinput.Model
	clientSecret textinput.Model
	focusedInput int // 0 = client ID, 1 = client secret

	channelName  string
	errorMessage string
	authURL      string

	cfg       *config.Config
	configDir string
	newAuth   AuthFactory
	auth      *youtube.Auth

	urlChan    chan string
	resultChan chan authCompleteMsg
}

// NewSetupModel creates the account screen starting at the step that fits the current state
func NewSetupModel(cfg *config.Config, configDir string, auth *youtube.Auth, newAuth AuthFactory) *SetupModel {
	clientIDInput := textinput.New()
	clientIDInput.Placeholder = "xxxxx.apps.googleusercontent.com"
	clientIDInput.CharLimit = 200
	clientIDInput.Width = 50
	clientIDInput.SetValue(cfg.YouTube.ClientID)

	clientSecretInput := textinput.New()
	clientSecretInput.Placeholder = "GOCSPX-xxxxx"
	clientSecretInput.CharLimit = 100
	clientSecretInput.Width = 50
	clientSecretInput.EchoMode = textinput.EchoPassword
	clientSecretInput.SetValue(cfg.YouTube.ClientSecret)

	m := &SetupModel{
		clientID:     clientIDInput,
		clientSecret: clientSecretInput,
		cfg:          cfg,
		configDir:    configDir,
		newAuth:      newAuth,
		auth:         auth,
		channelName:  cfg.YouTube.ChannelName,
	}

	status := youtube.AuthStatusNotConfigured
	if auth != nil {
		status = auth.Status()
	}
	switch status {
	case youtube.AuthStatusAuthenticated:
		m.step = SetupStepConnected
	case youtube.AuthStatusConfigured, youtube.AuthStatusExpired:
		m.focusCredentials()
	default:
		m.step = SetupStepInstructions
	}

	return m
}

// Step returns the current wizard step
func (m *SetupModel) Step() SetupStep {
	return m.step
}

// Init initializes the setup model
func (m *SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *SetupModel) focusCredentials() {
	m.step = SetupStepCredentials
	m.focusedInput = 0
	m.clientID.Focus()
	m.clientSecret.Blur()
}

// Update handles messages
func (m *SetupModel) Update(msg tea.Msg) (*SetupModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case authStartedMsg:
		m.step = SetupStepAuthenticating
		m.authURL = msg.authURL
		return m, m.waitForAuthResult()

	case authCompleteMsg:
		if msg.err != nil {
			m.step = SetupStepError
			m.errorMessage = msg.err.Error()
			return m, nil
		}
		m.auth = msg.auth
		m.step = SetupStepConnected
		m.channelName = msg.channelName
		m.cfg.YouTube.ChannelName = msg.channelName
		if err := config.SaveTo(m.configDir, m.cfg); err != nil {
			m.errorMessage = "Failed to save config: " + err.Error()
		}
		return m, nil

	case disconnectedMsg:
		m.channelName = ""
		m.cfg.YouTube.ChannelName = ""
		_ = config.SaveTo(m.configDir, m.cfg)
		m.focusCredentials()
		if msg.err != nil {
			m.errorMessage = "Token removed locally; revoke failed: " + msg.err.Error()
		}
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	if m.step == SetupStepCredentials {
		if m.focusedInput == 0 {
			m.clientID, cmd = m.clientID.Update(msg)
		} else {
			m.clientSecret, cmd = m.clientSecret.Update(msg)
		}
	}
	return m, cmd
}

// handleKeyMsg handles keyboard input
func (m *SetupModel) handleKeyMsg(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.step == SetupStepAuthenticating {
			// Can't cancel during authentication
			return m, nil
		}
		return m, func() tea.Msg { return backToQueueMsg{} }
	}

	switch m.step {
	case SetupStepInstructions:
		switch msg.String() {
		case "enter", "c":
			m.focusCredentials()
			return m, textinput.Blink
		}

	case SetupStepCredentials:
		switch msg.String() {
		case "tab", "shift+tab":
			m.focusedInput = (m.focusedInput + 1) % 2
			if m.focusedInput == 0 {
				m.clientID.Focus()
				m.clientSecret.Blur()
			} else {
				m.clientID.Blur()
				m.clientSecret.Focus()
			}
			return m, textinput.Blink

		case "enter":
			return m.submitCredentials()

		default:
			var cmd tea.Cmd
			if m.focusedInput == 0 {
				m.clientID, cmd = m.clientID.Update(msg)
			} else {
				m.clientSecret, cmd = m.clientSecret.Update(msg)
			}
			return m, cmd
		}

	case SetupStepConnected:
		switch msg.String() {
		case "enter":
			return m, func() tea.Msg { return backToQueueMsg{} }
		case "d":
			return m, m.disconnect()
		}

	case SetupStepError:
		switch msg.String() {
		case "enter", "r":
			m.errorMessage = ""
			m.focusCredentials()
			return m, textinput.Blink
		}
	}

	return m, nil
}

// submitCredentials validates and saves the credentials, then starts sign-in
func (m *SetupModel) submitCredentials() (*SetupModel, tea.Cmd) {
	clientID := strings.TrimSpace(m.clientID.Value())
	clientSecret := strings.TrimSpace(m.clientSecret.Value())

	if err := youtube.ValidateCredentials(clientID, clientSecret); err != nil {
		m.errorMessage = err.Error()
		return m, nil
	}

	m.cfg.YouTube.ClientID = clientID
	m.cfg.YouTube.ClientSecret = clientSecret
	if err := config.SaveTo(m.configDir, m.cfg); err != nil {
		m.errorMessage = "Failed to save config: " + err.Error()
		return m, nil
	}
	m.errorMessage = ""

	return m, m.startAuth(m.newAuth(clientID, clientSecret))
}

// startAuth runs the OAuth flow in the background
func (m *SetupModel) startAuth(auth *youtube.Auth) tea.Cmd {
	urlChan := make(chan string, 1)
	resultChan := make(chan authCompleteMsg, 1)
	m.urlChan = urlChan
	m.resultChan = resultChan

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
		defer cancel()

		err := auth.Authenticate(ctx, func(url string) {
			select {
			case urlChan <- url:
			default:
			}
		})
		if err != nil {
			resultChan <- authCompleteMsg{err: err}
			return
		}

		channelName, err := auth.GetChannelName(ctx)
		if err != nil {
			channelName = "Unknown Channel"
		}
		resultChan <- authCompleteMsg{auth: auth, channelName: channelName}
	}()

	return func() tea.Msg {
		select {
		case url := <-urlChan:
			return authStartedMsg{authURL: url}
		case msg := <-resultChan:
			// Failed before a URL was produced
			return msg
		case <-time.After(5 * time.Second):
			return authStartedMsg{}
		}
	}
}

// waitForAuthResult returns a command that waits for auth to complete
func (m *SetupModel) waitForAuthResult() tea.Cmd {
	resultChan := m.resultChan
	return func() tea.Msg {
		if resultChan == nil {
			return authCompleteMsg{err: context.Canceled}
		}
		select {
		case msg := <-resultChan:
			return msg
		case <-time.After(authTimeout):
			return authCompleteMsg{err: context.DeadlineExceeded}
		}
	}
}

// disconnect revokes the token and deletes it locally
func (m *SetupModel) disconnect() tea.Cmd {
	auth := m.auth
	return func() tea.Msg {
		if auth == nil {
			return disconnectedMsg{err: youtube.DeleteToken(m.configDir)}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := auth.RevokeToken(ctx); err != nil {
			_ = auth.Logout()
			return disconnectedMsg{err: err}
		}
		return disconnectedMsg{}
	}
}

// View renders the setup screen
func (m *SetupModel) View() string {
	var content, help string

	switch m.step {
	case SetupStepInstructions:
		content = m.renderInstructions()
		help = "c/enter: enter credentials • esc: back"
	case SetupStepCredentials:
		content = m.renderCredentials()
		help = "tab: switch field • enter: connect • esc: cancel"
	case SetupStepAuthenticating:
		content = m.renderAuthenticating()
		help = "complete the sign-in in your browser"
	case SetupStepConnected:
		content = m.renderConnected()
		help = "enter: back to queue • d: disconnect"
	case SetupStepError:
		content = m.renderError()
		help = "r/enter: retry • esc: back"
	}

	header := RenderSimpleHeader("YouTube Account")
	footer := RenderHelpFooter(help, m.width)
	return LayoutWithHeaderFooter(header, content, footer, m.width, m.height)
}

func (m *SetupModel) renderInstructions() string {
	body := lipgloss.NewStyle().
		Foreground(ColorWhite).
		Render(youtube.GetSetupInstructions())

	note := lipgloss.NewStyle().
		Foreground(ColorGray).
		Italic(true).
		Render("While the consent screen is in testing mode, only test users can sign in.")

	return BoxStyle.Width(80).Render(lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render("Connect a YouTube channel"),
		"",
		body,
		"",
		note,
	))
}

func (m *SetupModel) renderCredentials() string {
	hintStyle := lipgloss.NewStyle().
		Foreground(ColorGray).
		Italic(true)

	var rows []string
	rows = append(rows, TitleStyle.Render("Enter your Google OAuth credentials:"), "")

	if m.focusedInput == 0 {
		rows = append(rows, ActiveStyle.Render("▶ Client ID:"))
	} else {
		rows = append(rows, LabelStyle.Render("  Client ID:"))
	}
	rows = append(rows, "  "+m.clientID.View())
	rows = append(rows, hintStyle.Render("  (ends with .apps.googleusercontent.com)"), "")

	if m.focusedInput == 1 {
		rows = append(rows, ActiveStyle.Render("▶ Client Secret:"))
	} else {
		rows = append(rows, LabelStyle.Render("  Client Secret:"))
	}
	rows = append(rows, "  "+m.clientSecret.View())
	rows = append(rows, hintStyle.Render("  (starts with GOCSPX-)"))

	if m.errorMessage != "" {
		rows = append(rows, "", ErrorStyle.Render("Error: "+m.errorMessage))
	}

	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *SetupModel) renderAuthenticating() string {
	rows := []string{
		TitleStyle.Render("Waiting for Google sign-in..."),
		"",
		ValueStyle.Render("A browser window should have opened."),
	}
	if m.authURL != "" {
		rows = append(rows,
			"",
			LabelStyle.Render("If it did not, open this URL:"),
			SubtitleStyle.Render(m.authURL),
		)
	}
	return BoxStyle.Width(90).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *SetupModel) renderConnected() string {
	channel := m.channelName
	if channel == "" {
		channel = "Unknown Channel"
	}
	rows := []string{
		SuccessStyle.Render("✓ Connected"),
		"",
		LabelStyle.Render("Channel: ") + ValueStyle.Render(channel),
	}
	if m.errorMessage != "" {
		rows = append(rows, "", ErrorStyle.Render(m.errorMessage))
	}
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *SetupModel) renderError() string {
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		ErrorStyle.Render("Sign-in failed"),
		"",
		ValueStyle.Render(m.errorMessage),
	))
}
