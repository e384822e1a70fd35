package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/chaesoohoon/youtubeuploader/internal/models"
)

// QueueAction is something the user asked to do from the queue screen
type QueueAction int

const (
	ActionAddFiles QueueAction = iota
	ActionEdit
	ActionOptimize
	ActionMarkReady
	ActionUpload
	ActionUploadAll
	ActionRemove
	ActionCopyURL
	ActionTogglePreview
	ActionAccount
)

// queueActionMsg is sent when a queue key is pressed
type queueActionMsg struct {
	action QueueAction
	id     string
}

// Key bindings for the queue screen
var (
	keyQuit      = key.NewBinding(key.WithKeys("ctrl+c", "q"))
	keyUp        = key.NewBinding(key.WithKeys("up", "k"))
	keyDown      = key.NewBinding(key.WithKeys("down", "j"))
	keyAdd       = key.NewBinding(key.WithKeys("a"))
	keyEdit      = key.NewBinding(key.WithKeys("enter", "e"))
	keyOptimize  = key.NewBinding(key.WithKeys("o"))
	keyReady     = key.NewBinding(key.WithKeys("r"))
	keyUpload    = key.NewBinding(key.WithKeys("u"))
	keyUploadAll = key.NewBinding(key.WithKeys("U"))
	keyRemove    = key.NewBinding(key.WithKeys("x", "delete"))
	keyCopyURL   = key.NewBinding(key.WithKeys("y"))
	keyPreview   = key.NewBinding(key.WithKeys("p"))
	keyAccount   = key.NewBinding(key.WithKeys("l"))
)

// QueueModel renders the upload queue and turns keys into actions
type QueueModel struct {
	items       []models.VideoItem
	selected    int
	errors      map[string]string
	previews    map[string]string
	showPreview bool
	progress    progress.Model
	width       int
	height      int
}

// NewQueueModel creates an empty queue screen
func NewQueueModel() *QueueModel {
	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 40
	prog.ShowPercentage = false
	return &QueueModel{
		errors:   make(map[string]string),
		previews: make(map[string]string),
		progress: prog,
	}
}

// SetItems replaces the snapshot, keeping the cursor on the same item if it still exists
func (m *QueueModel) SetItems(items []models.VideoItem) {
	current := m.SelectedID()
	m.items = items
	m.selected = 0
	for i, it := range items {
		if it.ID == current {
			m.selected = i
			break
		}
	}
	if m.selected >= len(items) {
		m.selected = len(items) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}

	live := make(map[string]bool, len(items))
	for _, it := range items {
		live[it.ID] = true
	}
	for id := range m.errors {
		if !live[id] {
			delete(m.errors, id)
		}
	}
	for id := range m.previews {
		if !live[id] {
			delete(m.previews, id)
		}
	}
}

// SetError records the last failure for an item; an empty message clears it
func (m *QueueModel) SetError(id, message string) {
	if message == "" {
		delete(m.errors, id)
		return
	}
	m.errors[id] = message
}

// SetPreview stores a rendered thumbnail for an item
func (m *QueueModel) SetPreview(id, rendered string) {
	m.previews[id] = rendered
}

// HasPreview reports whether a thumbnail (or its failure) is cached for id
func (m *QueueModel) HasPreview(id string) bool {
	_, ok := m.previews[id]
	return ok
}

// Selected returns the item under the cursor
func (m *QueueModel) Selected() (models.VideoItem, bool) {
	if m.selected < 0 || m.selected >= len(m.items) {
		return models.VideoItem{}, false
	}
	return m.items[m.selected], true
}

// SelectedID returns the id of the item under the cursor, or ""
func (m *QueueModel) SelectedID() string {
	item, ok := m.Selected()
	if !ok {
		return ""
	}
	return item.ID
}

// Init initializes the queue screen
func (m *QueueModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the queue screen
func (m *QueueModel) Update(msg tea.Msg) (*QueueModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width/3, 20), 60)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keyQuit):
			return m, tea.Quit

		case key.Matches(msg, keyUp):
			if len(m.items) > 0 {
				m.selected--
				if m.selected < 0 {
					m.selected = len(m.items) - 1
				}
			}
			return m, nil

		case key.Matches(msg, keyDown):
			if len(m.items) > 0 {
				m.selected++
				if m.selected >= len(m.items) {
					m.selected = 0
				}
			}
			return m, nil

		case key.Matches(msg, keyAdd):
			return m, m.action(ActionAddFiles, "")

		case key.Matches(msg, keyAccount):
			return m, m.action(ActionAccount, "")

		case key.Matches(msg, keyUploadAll):
			return m, m.action(ActionUploadAll, "")

		case key.Matches(msg, keyPreview):
			m.showPreview = !m.showPreview
			return m, m.action(ActionTogglePreview, m.SelectedID())
		}

		id := m.SelectedID()
		if id == "" {
			return m, nil
		}
		switch {
		case key.Matches(msg, keyEdit):
			return m, m.action(ActionEdit, id)
		case key.Matches(msg, keyOptimize):
			return m, m.action(ActionOptimize, id)
		case key.Matches(msg, keyReady):
			return m, m.action(ActionMarkReady, id)
		case key.Matches(msg, keyUpload):
			return m, m.action(ActionUpload, id)
		case key.Matches(msg, keyRemove):
			return m, m.action(ActionRemove, id)
		case key.Matches(msg, keyCopyURL):
			return m, m.action(ActionCopyURL, id)
		}
	}

	return m, nil
}

func (m *QueueModel) action(a QueueAction, id string) tea.Cmd {
	return func() tea.Msg {
		return queueActionMsg{action: a, id: id}
	}
}

// ShowPreview reports whether thumbnails are displayed
func (m *QueueModel) ShowPreview() bool {
	return m.showPreview
}

// View renders the queue body (header and footer are added by the app)
func (m *QueueModel) View() string {
	if len(m.items) == 0 {
		return lipgloss.JoinVertical(lipgloss.Center,
			InactiveStyle.Render("No videos queued."),
			"",
			LabelStyle.Render("Press a to add video files."),
		)
	}

	var rows []string
	for i, item := range m.items {
		rows = append(rows, m.renderItem(i, item))
	}
	list := lipgloss.JoinVertical(lipgloss.Left, rows...)

	if m.showPreview {
		if rendered, ok := m.previews[m.SelectedID()]; ok && rendered != "" {
			return lipgloss.JoinVertical(lipgloss.Left, list, "", rendered)
		}
	}
	return list
}

func (m *QueueModel) renderItem(i int, item models.VideoItem) string {
	nameStyle := lipgloss.NewStyle().Foreground(ColorBlue).Padding(0, 1)
	prefix := "  "
	if i == m.selected {
		prefix = "▶ "
		nameStyle = lipgloss.NewStyle().Foreground(ColorRed).Bold(true).Padding(0, 1)
	}

	info := LabelStyle.Render(fmt.Sprintf("%s · %s",
		humanize.Bytes(uint64(max(item.File.Size, 0))),
		strings.ToUpper(item.File.Container()),
	))
	line1 := prefix + nameStyle.Render(item.File.Name) + " " + info

	title := item.UploadTitle()
	line2 := "    " + RenderStatusBadge(item.Status) + "  " + ValueStyle.Render(truncate(title, 60))

	lines := []string{line1, line2}

	switch item.Status {
	case models.StatusUploading:
		lines = append(lines, "    "+m.progress.ViewAs(float64(item.Progress)/100)+
			fmt.Sprintf(" %3d%%", item.Progress))
	case models.StatusCompleted:
		lines = append(lines, "    "+SubtitleStyle.Render(item.WatchURL()))
	}

	if msg, ok := m.errors[item.ID]; ok {
		lines = append(lines, "    "+ErrorStyle.Render(truncate(msg, 80)))
	}

	lines = append(lines, "")
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// QueueHelp is the footer text for the queue screen
const QueueHelp = "a: add • enter: edit • o: generate • r: ready • u/U: upload one/all • x: remove • y: copy url • p: preview • l: account • q: quit"

// truncate shortens s to n runes, adding an ellipsis
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
