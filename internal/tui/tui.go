package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chaesoohoon/youtubeuploader/internal/queue"
)

// eventBuffer is how many controller events may wait for the UI. The UI
// re-reads the whole queue on every event, so dropping one under load only
// delays a redraw.
const eventBuffer = 256

// Run starts the TUI application and blocks until the user quits
func Run(opts Options) error {
	events := make(chan queue.Event, eventBuffer)

	controller := queue.NewController(
		queue.WithSuggester(opts.Suggester),
		queue.WithUploader(opts.Uploader),
		queue.WithNotifier(opts.Notifier),
		queue.WithLogger(opts.Logger),
		queue.WithEventHandler(func(e queue.Event) {
			select {
			case events <- e:
			default:
			}
		}),
	)
	defer controller.Close()

	model := NewAppModel(controller, events, opts)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
