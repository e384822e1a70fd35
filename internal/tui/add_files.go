package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chaesoohoon/youtubeuploader/internal/media"
)

// filesChosenMsg carries the files picked on the add screen
type filesChosenMsg struct {
	files    []media.File
	warnings []string
}

// backToQueueMsg returns to the queue screen
type backToQueueMsg struct{}

// AddFilesModel asks for one or more video paths
type AddFilesModel struct {
	input  textinput.Model
	err    string
	width  int
	height int
}

// NewAddFilesModel creates the add files screen
func NewAddFilesModel() *AddFilesModel {
	input := textinput.New()
	input.Placeholder = "~/Videos/trip.mp4 \"~/Videos/day two.mov\" ~/Videos/*.mkv"
	input.CharLimit = 4096
	input.Width = 60
	input.Focus()
	return &AddFilesModel{input: input}
}

// Init initializes the add files screen
func (m *AddFilesModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m *AddFilesModel) Update(msg tea.Msg) (*AddFilesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = min(max(msg.Width-20, 30), 100)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			return m, func() tea.Msg { return backToQueueMsg{} }
		case "enter":
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *AddFilesModel) submit() (*AddFilesModel, tea.Cmd) {
	paths, err := media.SplitPaths(strings.TrimSpace(m.input.Value()))
	if err != nil {
		m.err = err.Error()
		return m, nil
	}
	if len(paths) == 0 {
		m.err = "Enter at least one path"
		return m, nil
	}

	files, warnings, err := media.Intake(paths)
	if err != nil {
		m.err = err.Error()
		if len(files) == 0 {
			return m, nil
		}
		warnings = append(warnings, strings.Split(err.Error(), "\n")...)
	}
	m.err = ""

	m.input.SetValue("")
	return m, func() tea.Msg {
		return filesChosenMsg{files: files, warnings: warnings}
	}
}

// View renders the add files screen
func (m *AddFilesModel) View() string {
	parts := []string{
		TitleStyle.Render("Add videos"),
		"",
		LabelStyle.Render("Paths (space separated, quotes and globs allowed):"),
		m.input.View(),
	}
	if m.err != "" {
		parts = append(parts, "", ErrorStyle.Render(m.err))
	}
	content := BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))

	header := RenderSimpleHeader("Add Files")
	footer := RenderHelpFooter("enter: add • esc: back", m.width)
	return LayoutWithHeaderFooter(header, content, footer, m.width, m.height)
}
