package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chaesoohoon/youtubeuploader/internal/config"
	"github.com/chaesoohoon/youtubeuploader/internal/logging"
	"github.com/chaesoohoon/youtubeuploader/internal/media"
	"github.com/chaesoohoon/youtubeuploader/internal/metalint"
	"github.com/chaesoohoon/youtubeuploader/internal/models"
	"github.com/chaesoohoon/youtubeuploader/internal/queue"
	"github.com/chaesoohoon/youtubeuploader/internal/suggest"
	"github.com/chaesoohoon/youtubeuploader/internal/youtube"
)

// Screen represents the current screen being displayed
type Screen int

const (
	ScreenQueue Screen = iota
	ScreenAddFiles
	ScreenEdit
	ScreenSetup
)

// previewWidth is the width in cells of the inline thumbnail
const previewWidth = 40

// queueEventMsg wraps a controller event
type queueEventMsg struct {
	event queue.Event
}

// operation names a background queue call
type operation string

const (
	opOptimize operation = "generate"
	opUpload   operation = "upload"
)

// operationDoneMsg reports the result of a background queue call
type operationDoneMsg struct {
	op   operation
	item models.VideoItem
	id   string
	err  error
}

// previewMsg carries a rendered thumbnail
type previewMsg struct {
	id       string
	rendered string
	err      error
}

// channelMsg carries the signed-in channel name
type channelMsg struct {
	name string
}

// clearStatusMsg hides a transient status line
type clearStatusMsg struct {
	seq int
}

// Options configures the application
type Options struct {
	Config    *config.Config
	ConfigDir string
	Logger    *slog.Logger
	Suggester suggest.Suggester
	Uploader  queue.Uploader
	Notifier  queue.Notifier
	Linter    *metalint.Linter
	Files     []media.File
	Warnings  []string
	NewAuth   AuthFactory
}

// AppModel is the main application model that coordinates screens
type AppModel struct {
	screen   Screen
	queue    *QueueModel
	addFiles *AddFilesModel
	edit     *EditModel
	setup    *SetupModel

	controller *queue.Controller
	events     <-chan queue.Event
	auth       *youtube.Auth
	newAuth    AuthFactory
	cfg        *config.Config
	configDir  string
	linter     *metalint.Linter
	logger     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	spinner     spinner.Model
	channelName string
	status      string
	statusSeq   int
	previewing  map[string]bool
	width       int
	height      int
}

// NewAppModel creates the application model around a controller. events
// delivers the controller's change notifications.
func NewAppModel(controller *queue.Controller, events <-chan queue.Event, opts Options) *AppModel {
	cfg := opts.Config
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}
	logger := logging.OrDiscard(opts.Logger)
	newAuth := opts.NewAuth
	if newAuth == nil {
		newAuth = func(clientID, clientSecret string) *youtube.Auth {
			return youtube.NewAuth(clientID, clientSecret, opts.ConfigDir, youtube.WithAuthLogger(logger))
		}
	}
	linter := opts.Linter
	if linter == nil {
		linter = metalint.New()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorOrange)

	ctx, cancel := context.WithCancel(context.Background())

	m := &AppModel{
		screen:      ScreenQueue,
		queue:       NewQueueModel(),
		controller:  controller,
		events:      events,
		newAuth:     newAuth,
		cfg:         cfg,
		configDir:   opts.ConfigDir,
		linter:      linter,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		spinner:     s,
		channelName: cfg.YouTube.ChannelName,
		previewing:  make(map[string]bool),
	}

	if cfg.YouTube.ClientID != "" {
		m.auth = newAuth(cfg.YouTube.ClientID, cfg.YouTube.ClientSecret)
	}

	if len(opts.Files) > 0 {
		m.enqueue(opts.Files)
	}
	m.queue.SetItems(controller.Items())
	if len(opts.Warnings) > 0 {
		m.status = WarningStyle.Render(strings.Join(opts.Warnings, "; "))
	}

	if cfg.NeedsSetup() {
		m.openSetup()
	}

	return m
}

// Screen returns the screen currently displayed
func (m *AppModel) Screen() Screen {
	return m.screen
}

// Close cancels background work started by the model
func (m *AppModel) Close() {
	m.cancel()
}

// Init initializes the application
func (m *AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.waitForEvent()}
	if m.auth != nil && m.auth.IsAuthenticated() && m.channelName == "" {
		cmds = append(cmds, m.fetchChannel())
	}
	return tea.Batch(cmds...)
}

// waitForEvent blocks until the controller reports a change
func (m *AppModel) waitForEvent() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return queueEventMsg{event: e}
	}
}

func (m *AppModel) fetchChannel() tea.Cmd {
	auth := m.auth
	ctx := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		name, err := auth.GetChannelName(ctx)
		if err != nil {
			return nil
		}
		return channelMsg{name: name}
	}
}

// Update handles messages
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.queue, _ = m.queue.Update(msg)
		if m.addFiles != nil {
			m.addFiles, _ = m.addFiles.Update(msg)
		}
		if m.edit != nil {
			m.edit, _ = m.edit.Update(msg)
		}
		if m.setup != nil {
			m.setup, _ = m.setup.Update(msg)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case queueEventMsg:
		m.refresh()
		if m.edit != nil && msg.event.Item.ID == m.edit.ItemID() {
			m.edit.SetItemStatus(msg.event.Item)
		}
		return m, m.waitForEvent()

	case queueActionMsg:
		return m, m.handleAction(msg)

	case operationDoneMsg:
		return m, m.handleOperationDone(msg)

	case filesChosenMsg:
		added := m.enqueue(msg.files)
		m.refresh()
		m.screen = ScreenQueue
		m.addFiles = nil
		text := SuccessStyle.Render(fmt.Sprintf("Added %d video(s)", len(added)))
		if len(msg.warnings) > 0 {
			text += "  " + WarningStyle.Render(strings.Join(msg.warnings, "; "))
		}
		return m, m.setStatus(text)

	case editSavedMsg:
		if _, err := m.controller.UpdateMetadata(msg.id, msg.patch); err != nil {
			if m.edit != nil {
				m.edit.SetNotice(ErrorStyle.Render("Not saved: " + describeError(err)))
			}
			return m, nil
		}
		m.refresh()
		m.screen = ScreenQueue
		m.edit = nil
		return m, m.setStatus(SuccessStyle.Render("Metadata saved"))

	case editGenerateMsg:
		m.screen = ScreenQueue
		m.edit = nil
		return m, m.optimize(msg.id, msg.notes)

	case backToQueueMsg:
		m.screen = ScreenQueue
		m.addFiles = nil
		m.edit = nil
		return m, nil

	case previewMsg:
		delete(m.previewing, msg.id)
		if msg.err != nil {
			m.queue.SetPreview(msg.id, InactiveStyle.Render("Preview unavailable: "+msg.err.Error()))
		} else {
			m.queue.SetPreview(msg.id, msg.rendered)
		}
		return m, nil

	case channelMsg:
		m.channelName = msg.name
		return m, nil

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil

	case authCompleteMsg:
		if msg.err == nil {
			m.auth = msg.auth
			m.channelName = msg.channelName
		}
		return m, m.forwardToSetup(msg)

	case disconnectedMsg:
		m.channelName = ""
		return m, m.forwardToSetup(msg)
	}

	return m.updateScreen(msg)
}

// updateScreen forwards a message to the active screen
func (m *AppModel) updateScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.screen {
	case ScreenQueue:
		m.queue, cmd = m.queue.Update(msg)
		if previewCmd := m.maybePreview(); previewCmd != nil {
			cmd = tea.Batch(cmd, previewCmd)
		}
	case ScreenAddFiles:
		if m.addFiles != nil {
			m.addFiles, cmd = m.addFiles.Update(msg)
		}
	case ScreenEdit:
		if m.edit != nil {
			m.edit, cmd = m.edit.Update(msg)
		}
	case ScreenSetup:
		if m.setup != nil {
			m.setup, cmd = m.setup.Update(msg)
		}
	}
	return m, cmd
}

// enqueue adds files and applies the configured default category
func (m *AppModel) enqueue(files []media.File) []models.VideoItem {
	added := m.controller.AddFiles(files)
	category := m.cfg.DefaultCategory()
	if category == models.DefaultCategoryID {
		return added
	}
	for _, item := range added {
		if _, err := m.controller.UpdateMetadata(item.ID, models.MetadataPatch{Category: &category}); err != nil {
			m.logger.Warn("failed to apply default category", "item", item.ID, "error", err)
		}
	}
	return added
}

func (m *AppModel) forwardToSetup(msg tea.Msg) tea.Cmd {
	if m.setup == nil {
		return nil
	}
	var cmd tea.Cmd
	m.setup, cmd = m.setup.Update(msg)
	return cmd
}

func (m *AppModel) refresh() {
	m.queue.SetItems(m.controller.Items())
}

func (m *AppModel) setStatus(text string) tea.Cmd {
	m.statusSeq++
	m.status = text
	seq := m.statusSeq
	return tea.Tick(6*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

func (m *AppModel) sizeMsg() tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: m.width, Height: m.height}
}

func (m *AppModel) openSetup() {
	m.setup = NewSetupModel(m.cfg, m.configDir, m.auth, m.newAuth)
	m.setup, _ = m.setup.Update(m.sizeMsg())
	m.screen = ScreenSetup
}

// handleAction runs a queue screen action
func (m *AppModel) handleAction(msg queueActionMsg) tea.Cmd {
	switch msg.action {
	case ActionAddFiles:
		m.addFiles = NewAddFilesModel()
		m.addFiles, _ = m.addFiles.Update(m.sizeMsg())
		m.screen = ScreenAddFiles
		return m.addFiles.Init()

	case ActionAccount:
		m.openSetup()
		return m.setup.Init()

	case ActionEdit:
		item, ok := m.controller.Get(msg.id)
		if !ok {
			return nil
		}
		m.edit = NewEditModel(item, m.linter)
		m.edit, _ = m.edit.Update(m.sizeMsg())
		m.screen = ScreenEdit
		return m.edit.Init()

	case ActionOptimize:
		return m.optimize(msg.id, "")

	case ActionMarkReady:
		if _, err := m.controller.MarkReady(msg.id); err != nil {
			return m.setStatus(ErrorStyle.Render(describeError(err)))
		}
		m.queue.SetError(msg.id, "")
		m.refresh()
		return nil

	case ActionUpload:
		return m.upload(msg.id)

	case ActionUploadAll:
		var cmds []tea.Cmd
		for _, item := range m.controller.Items() {
			if item.Status == models.StatusReady {
				cmds = append(cmds, m.upload(item.ID))
			}
		}
		if len(cmds) == 0 {
			return m.setStatus(InactiveStyle.Render("Nothing is ready to upload"))
		}
		return tea.Batch(cmds...)

	case ActionRemove:
		if err := m.controller.RemoveItem(msg.id); err != nil {
			return m.setStatus(ErrorStyle.Render(describeError(err)))
		}
		m.refresh()
		return nil

	case ActionCopyURL:
		item, ok := m.controller.Get(msg.id)
		if !ok || item.WatchURL() == "" {
			return m.setStatus(InactiveStyle.Render("Only published videos have a URL"))
		}
		if err := clipboard.WriteAll(item.WatchURL()); err != nil {
			return m.setStatus(ErrorStyle.Render("Clipboard unavailable: " + err.Error()))
		}
		return m.setStatus(SuccessStyle.Render("Copied " + item.WatchURL()))

	case ActionTogglePreview:
		return m.maybePreview()
	}
	return nil
}

// maybePreview renders the thumbnail of the selected item once
func (m *AppModel) maybePreview() tea.Cmd {
	if !m.queue.ShowPreview() {
		return nil
	}
	item, ok := m.queue.Selected()
	if !ok || item.Preview == nil || m.previewing[item.ID] {
		return nil
	}
	if m.queue.HasPreview(item.ID) {
		return nil
	}
	m.previewing[item.ID] = true
	return func() tea.Msg {
		rendered, err := media.RenderTerminal(item.Preview, previewWidth)
		return previewMsg{id: item.ID, rendered: rendered, err: err}
	}
}

// optimize starts metadata generation in the background
func (m *AppModel) optimize(id, notes string) tea.Cmd {
	controller := m.controller
	ctx := m.ctx
	m.queue.SetError(id, "")
	return func() tea.Msg {
		item, err := controller.BeginOptimization(ctx, id, notes)
		return operationDoneMsg{op: opOptimize, item: item, id: id, err: err}
	}
}

// upload fetches a fresh access token and starts the upload in the background
func (m *AppModel) upload(id string) tea.Cmd {
	controller := m.controller
	auth := m.auth
	ctx := m.ctx
	logger := m.logger
	m.queue.SetError(id, "")
	return func() tea.Msg {
		token := ""
		if auth != nil {
			t, err := auth.AccessToken(ctx)
			if err != nil {
				logger.Warn("no usable access token", "error", err)
			}
			token = t
		}
		item, err := controller.BeginUpload(ctx, id, token)
		return operationDoneMsg{op: opUpload, item: item, id: id, err: err}
	}
}

// handleOperationDone reports the outcome of a background call
func (m *AppModel) handleOperationDone(msg operationDoneMsg) tea.Cmd {
	m.refresh()

	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			return nil
		}
		text := describeError(msg.err)
		m.queue.SetError(msg.id, fmt.Sprintf("%s failed: %s", msg.op, text))
		if errors.Is(msg.err, queue.ErrAuthRequired) {
			m.openSetup()
			return tea.Batch(m.setup.Init(), m.setStatus(ErrorStyle.Render("Sign in to YouTube to upload")))
		}
		return m.setStatus(ErrorStyle.Render(fmt.Sprintf("%s failed: %s", msg.op, text)))
	}

	switch msg.op {
	case opOptimize:
		if m.edit != nil && m.edit.ItemID() == msg.id {
			m.edit.Refresh(msg.item)
		}
		return m.setStatus(SuccessStyle.Render("Metadata generated for " + msg.item.File.Name))
	case opUpload:
		return m.setStatus(SuccessStyle.Render("Published " + msg.item.WatchURL()))
	}
	return nil
}

// describeError turns queue errors into short user-facing text
func describeError(err error) string {
	switch {
	case errors.Is(err, queue.ErrItemBusy):
		return "the video is busy, wait for it to finish"
	case errors.Is(err, queue.ErrInvalidTransition):
		return "not possible in the video's current state"
	case errors.Is(err, queue.ErrItemNotFound):
		return "the video is no longer in the queue"
	case errors.Is(err, queue.ErrAuthRequired):
		return "not signed in"
	}
	var uerr *youtube.UploadError
	if errors.As(err, &uerr) && uerr.Message != "" {
		return uerr.Message
	}
	return err.Error()
}

// headerState collects the dynamic header data
func (m *AppModel) headerState() *HeaderState {
	counts := m.controller.Counts()
	return &HeaderState{
		ChannelName: m.channelName,
		Counts:      counts,
		Busy:        counts[models.StatusOptimizing]+counts[models.StatusUploading] > 0,
		SpinnerView: m.spinner.View(),
	}
}

// View renders the active screen
func (m *AppModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.screen {
	case ScreenAddFiles:
		if m.addFiles != nil {
			return m.addFiles.View()
		}
	case ScreenEdit:
		if m.edit != nil {
			return m.edit.View()
		}
	case ScreenSetup:
		if m.setup != nil {
			return m.setup.View()
		}
	}

	header := RenderHeader("Queue", m.headerState())
	content := m.queue.View()
	if m.status != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, "", m.status)
	}
	footer := RenderHelpFooter(QueueHelp, m.width)
	return LayoutWithHeaderFooter(header, content, footer, m.width, m.height)
}
