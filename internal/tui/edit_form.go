package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chaesoohoon/youtubeuploader/internal/metalint"
	"github.com/chaesoohoon/youtubeuploader/internal/models"
	"github.com/chaesoohoon/youtubeuploader/internal/youtube"
)

// Form fields in focus order
const (
	fieldTitle = iota
	fieldDescription
	fieldTags
	fieldCategory
	fieldNotes
	fieldCount
)

// editSavedMsg asks the app to apply the edited metadata
type editSavedMsg struct {
	id    string
	patch models.MetadataPatch
}

// editGenerateMsg asks the app to regenerate metadata with the given notes
type editGenerateMsg struct {
	id    string
	notes string
}

// EditModel edits the metadata of one queued item
type EditModel struct {
	item models.VideoItem

	title       textinput.Model
	description textarea.Model
	tags        textinput.Model
	notes       textinput.Model
	categories  []youtube.Category
	category    int
	focused     int

	linter *metalint.Linter
	issues []metalint.Issue
	notice string

	copyText func(string) error

	width  int
	height int
}

// NewEditModel creates the edit form prefilled from item
func NewEditModel(item models.VideoItem, linter *metalint.Linter) *EditModel {
	title := textinput.New()
	title.Placeholder = item.Metadata.OriginalTitle
	title.CharLimit = 200
	title.Width = 60
	title.SetValue(item.Metadata.OptimizedTitle)

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.CharLimit = 0
	desc.SetWidth(60)
	desc.SetHeight(6)
	desc.SetValue(item.Metadata.OptimizedDescription)

	tags := textinput.New()
	tags.Placeholder = "comma, separated, tags"
	tags.CharLimit = 1000
	tags.Width = 60
	tags.SetValue(youtube.JoinTags(item.Metadata.Tags))

	notes := textinput.New()
	notes.Placeholder = "Optional hints for generation (who, where, what)"
	notes.CharLimit = 500
	notes.Width = 60

	m := &EditModel{
		item:        item,
		title:       title,
		description: desc,
		tags:        tags,
		notes:       notes,
		linter:      linter,
		copyText:    clipboard.WriteAll,
	}
	m.categories, m.category = categoryChoices(item.UploadCategory())
	m.focus(fieldTitle)
	m.relint()
	return m
}

// categoryChoices returns the picker options with current selected. A
// category set outside the picker is kept as an extra option.
func categoryChoices(current string) ([]youtube.Category, int) {
	choices := append([]youtube.Category{}, youtube.Categories...)
	for i, c := range choices {
		if c.ID == current {
			return choices, i
		}
	}
	choices = append(choices, youtube.Category{ID: current, Name: youtube.CategoryName(current)})
	return choices, len(choices) - 1
}

// Init initializes the edit form
func (m *EditModel) Init() tea.Cmd {
	return textinput.Blink
}

// ItemID returns the id of the item being edited
func (m *EditModel) ItemID() string {
	return m.item.ID
}

// Patch builds the metadata patch from the current form values
func (m *EditModel) Patch() models.MetadataPatch {
	title := strings.TrimSpace(m.title.Value())
	desc := strings.TrimSpace(m.description.Value())
	category := m.categories[m.category].ID
	return models.MetadataPatch{
		OptimizedTitle:       &title,
		OptimizedDescription: &desc,
		Tags:                 youtube.ParseTags(m.tags.Value()),
		Category:             &category,
	}
}

// Issues returns the lint findings for the current form values
func (m *EditModel) Issues() []metalint.Issue {
	return m.issues
}

// Refresh reloads the form from an updated item, e.g. after generation
func (m *EditModel) Refresh(item models.VideoItem) {
	m.item = item
	m.title.SetValue(item.Metadata.OptimizedTitle)
	m.description.SetValue(item.Metadata.OptimizedDescription)
	m.tags.SetValue(youtube.JoinTags(item.Metadata.Tags))
	m.categories, m.category = categoryChoices(item.UploadCategory())
	m.relint()
}

// SetItemStatus keeps the status line current while the form is open
func (m *EditModel) SetItemStatus(item models.VideoItem) {
	m.item.Status = item.Status
	m.item.Progress = item.Progress
}

// SetNotice shows a one-line message under the form
func (m *EditModel) SetNotice(notice string) {
	m.notice = notice
}

func (m *EditModel) focus(field int) {
	m.focused = field
	m.title.Blur()
	m.description.Blur()
	m.tags.Blur()
	m.notes.Blur()
	switch field {
	case fieldTitle:
		m.title.Focus()
	case fieldDescription:
		m.description.Focus()
	case fieldTags:
		m.tags.Focus()
	case fieldNotes:
		m.notes.Focus()
	}
}

func (m *EditModel) relint() {
	if m.linter == nil {
		m.issues = nil
		return
	}
	meta := m.item.Metadata
	meta.Apply(m.Patch())
	m.issues = m.linter.Lint(meta)
}

func (m *EditModel) copy(label, text string) {
	if err := m.copyText(text); err != nil {
		m.notice = ErrorStyle.Render("Clipboard unavailable: " + err.Error())
		return
	}
	m.notice = SuccessStyle.Render(label + " copied to clipboard")
}

// Update handles messages
func (m *EditModel) Update(msg tea.Msg) (*EditModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w := min(max(msg.Width-24, 40), 100)
		m.title.Width = w
		m.tags.Width = w
		m.notes.Width = w
		m.description.SetWidth(w)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			return m, func() tea.Msg { return backToQueueMsg{} }
		case "tab":
			m.focus((m.focused + 1) % fieldCount)
			return m, textinput.Blink
		case "shift+tab":
			m.focus((m.focused + fieldCount - 1) % fieldCount)
			return m, textinput.Blink
		case "ctrl+s":
			id, patch := m.item.ID, m.Patch()
			return m, func() tea.Msg { return editSavedMsg{id: id, patch: patch} }
		case "ctrl+g":
			id, notes := m.item.ID, strings.TrimSpace(m.notes.Value())
			return m, func() tea.Msg { return editGenerateMsg{id: id, notes: notes} }
		case "ctrl+t":
			title := strings.TrimSpace(m.title.Value())
			if title == "" {
				title = m.item.Metadata.OriginalTitle
			}
			m.copy("Title", title)
			return m, nil
		case "ctrl+d":
			m.copy("Description", m.description.Value())
			return m, nil
		}

		if m.focused == fieldCategory {
			switch msg.String() {
			case "left", "h":
				m.category = (m.category + len(m.categories) - 1) % len(m.categories)
				m.relint()
			case "right", "l", " ":
				m.category = (m.category + 1) % len(m.categories)
				m.relint()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.focused {
	case fieldTitle:
		m.title, cmd = m.title.Update(msg)
	case fieldDescription:
		m.description, cmd = m.description.Update(msg)
	case fieldTags:
		m.tags, cmd = m.tags.Update(msg)
	case fieldNotes:
		m.notes, cmd = m.notes.Update(msg)
	}
	if _, ok := msg.(tea.KeyMsg); ok {
		m.relint()
	}
	return m, cmd
}

func (m *EditModel) label(field int, text string) string {
	if m.focused == field {
		return ActiveStyle.Render("▶ " + text)
	}
	return LabelStyle.Render("  " + text)
}

func (m *EditModel) renderCategory() string {
	var opts []string
	for i, c := range m.categories {
		name := c.Name
		if i == m.category {
			style := SubtitleStyle.Bold(true)
			if m.focused == fieldCategory {
				style = ActiveStyle
			}
			opts = append(opts, style.Render("["+name+"]"))
		} else {
			opts = append(opts, InactiveStyle.Render(name))
		}
	}
	return "  " + strings.Join(opts, "  ")
}

func (m *EditModel) renderIssues() string {
	if len(m.issues) == 0 {
		return SuccessStyle.Render("No metadata issues")
	}
	var lines []string
	for _, issue := range m.issues {
		style := WarningStyle
		if issue.Severity == metalint.SeverityError {
			style = ErrorStyle
		}
		line := fmt.Sprintf("%s: %s", issue.Field, issue.Message)
		if len(issue.Suggestions) > 0 {
			line += " (did you mean " + strings.Join(issue.Suggestions, ", ") + "?)"
		}
		lines = append(lines, style.Render("• "+line))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// View renders the edit form
func (m *EditModel) View() string {
	info := fmt.Sprintf("%s  %s  original title: %s",
		ValueStyle.Render(m.item.File.Name),
		RenderStatusBadge(m.item.Status),
		InactiveStyle.Render(m.item.Metadata.OriginalTitle),
	)

	form := lipgloss.JoinVertical(lipgloss.Left,
		info,
		"",
		m.label(fieldTitle, fmt.Sprintf("Title (%d/%d)", len([]rune(m.title.Value())), metalint.MaxTitleRunes)),
		"  "+m.title.View(),
		"",
		m.label(fieldDescription, fmt.Sprintf("Description (%d/%d bytes)", len(m.description.Value()), metalint.MaxDescriptionBytes)),
		m.description.View(),
		"",
		m.label(fieldTags, fmt.Sprintf("Tags (%d/%d)", metalint.TagsLength(youtube.ParseTags(m.tags.Value())), metalint.MaxTagsLength)),
		"  "+m.tags.View(),
		"",
		m.label(fieldCategory, "Category (←/→)"),
		m.renderCategory(),
		"",
		m.label(fieldNotes, "Generation notes"),
		"  "+m.notes.View(),
		"",
		m.renderIssues(),
	)
	if m.notice != "" {
		form = lipgloss.JoinVertical(lipgloss.Left, form, "", m.notice)
	}

	content := BoxStyle.Render(form)
	header := RenderSimpleHeader("Edit Metadata")
	footer := RenderHelpFooter("tab: next field • ctrl+s: save • ctrl+g: generate • ctrl+t/ctrl+d: copy title/description • esc: back", m.width)
	return LayoutWithHeaderFooter(header, content, footer, m.width, m.height)
}
