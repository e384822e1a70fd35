package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/chaesoohoon/youtubeuploader/internal/media"
	"github.com/chaesoohoon/youtubeuploader/internal/metalint"
	"github.com/chaesoohoon/youtubeuploader/internal/models"
	"github.com/chaesoohoon/youtubeuploader/internal/queue"
	"github.com/chaesoohoon/youtubeuploader/internal/youtube"
)

var (
	uploadTitle       string
	uploadDescription string
	uploadTags        string
	uploadCategory    string
	uploadNotes       string
	uploadNoGenerate  bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload FILE...",
	Short: "Upload videos without the interactive queue",
	Long: `Queue the given files, generate metadata with Gemini unless
--no-generate is set, and upload each one as unlisted.

Flags override the generated fields for every file. Files whose metadata
cannot be generated are uploaded with their original title.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if uploadCategory != "" && !youtube.IsKnownCategory(uploadCategory) {
			return fmt.Errorf("unknown category %q; run 'youtube-uploader categories'", uploadCategory)
		}

		env, err := loadEnv()
		if err != nil {
			return err
		}
		defer func() { _ = env.Close() }()

		files, warnings, err := media.Intake(args)
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "%s %s\n", gray.Render("warning:"), w)
		}
		if err != nil {
			if len(files) == 0 {
				return err
			}
			fmt.Fprintf(os.Stderr, "%s %v\n", red.Render("skipped:"), err)
		}

		ctx := cmd.Context()
		auth := env.auth()
		if _, err := auth.AccessToken(ctx); err != nil {
			env.logger.Warn("no usable token", "error", err)
			return fmt.Errorf("%w; run 'youtube-uploader login'", queue.ErrAuthRequired)
		}

		printer := newProgressPrinter(os.Stdout)
		controller := queue.NewController(
			queue.WithSuggester(env.suggester()),
			queue.WithUploader(env.uploader()),
			queue.WithPreviewFactory(nil),
			queue.WithLogger(env.logger),
			queue.WithEventHandler(printer.handle),
		)
		defer controller.Close()

		items := controller.AddFiles(files)
		results := make([]uploadResult, 0, len(items))
		for _, item := range items {
			results = append(results, uploadOne(ctx, env, controller, item, auth))
		}

		fmt.Println()
		fmt.Println(renderResults(results))

		failed := 0
		for _, r := range results {
			if r.err != nil {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d uploads failed", failed, len(results))
		}
		return nil
	},
}

// tokenSource hands out a current access token. A batch can outlive a
// single token, so one is fetched per upload.
type tokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

type uploadResult struct {
	item models.VideoItem
	err  error
}

func uploadOne(ctx context.Context, env *appEnv, controller *queue.Controller, item models.VideoItem, tokens tokenSource) uploadResult {
	id := item.ID

	if def := env.cfg.DefaultCategory(); def != models.DefaultCategoryID {
		if _, err := controller.UpdateMetadata(id, models.MetadataPatch{Category: &def}); err != nil {
			return uploadResult{item: item, err: err}
		}
	}

	if !uploadNoGenerate && env.cfg.HasGemini() {
		fmt.Printf("%s %s\n", bold.Render("Generating metadata for"), item.File.Name)
		if _, err := controller.BeginOptimization(ctx, id, uploadNotes); err != nil {
			fmt.Printf("%s %v\n", red.Render("!"), err)
		}
	}

	patch := overridePatch()
	if _, err := controller.UpdateMetadata(id, patch); err != nil {
		return uploadResult{item: item, err: err}
	}
	current, err := controller.MarkReady(id)
	if err != nil {
		return uploadResult{item: item, err: err}
	}

	issues := metalint.New().Lint(current.Metadata)
	if len(issues) > 0 {
		fmt.Print(metalint.FormatIssues(issues))
		if metalint.HasErrors(issues) {
			return uploadResult{item: current, err: errors.New("metadata rejected by lint")}
		}
	}

	token, err := tokens.AccessToken(ctx)
	if err != nil {
		env.logger.Warn("token refresh failed", "item", id, "error", err)
		return uploadResult{item: current, err: fmt.Errorf("%w: %w", queue.ErrAuthRequired, err)}
	}

	fmt.Printf("%s %s (%s)\n", bold.Render("Uploading"), current.UploadTitle(), humanize.Bytes(uint64(current.File.Size)))
	done, err := controller.BeginUpload(ctx, id, token)
	if err != nil {
		return uploadResult{item: done, err: err}
	}
	return uploadResult{item: done}
}

// overridePatch turns the command flags into a metadata patch
func overridePatch() models.MetadataPatch {
	var patch models.MetadataPatch
	if uploadTitle != "" {
		patch.OptimizedTitle = &uploadTitle
	}
	if uploadDescription != "" {
		patch.OptimizedDescription = &uploadDescription
	}
	if uploadTags != "" {
		patch.Tags = youtube.ParseTags(uploadTags)
	}
	if uploadCategory != "" {
		patch.Category = &uploadCategory
	}
	return patch
}

func renderResults(results []uploadResult) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := green.Render("uploaded")
		link := r.item.WatchURL()
		if r.err != nil {
			status = red.Render("failed")
			link = r.err.Error()
		}
		rows = append(rows, []string{
			r.item.File.Name,
			humanize.Bytes(uint64(r.item.File.Size)),
			status,
			link,
		})
	}
	return renderTable(
		[]string{"File", "Size", "Status", "Video"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
	)
}

// progressPrinter writes upload progress. On a terminal it redraws one
// line, otherwise it prints every ten percent.
type progressPrinter struct {
	mu   sync.Mutex
	out  io.Writer
	tty  bool
	last map[string]int
}

func newProgressPrinter(out *os.File) *progressPrinter {
	return &progressPrinter{out: out, tty: isTerminal(out), last: make(map[string]int)}
}

func (p *progressPrinter) handle(ev queue.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch ev.Kind {
	case queue.EventProgress:
		pct := ev.Item.Progress
		if p.tty {
			fmt.Fprintf(p.out, "\r  %3d%%  %s", pct, ev.Item.File.Name)
			return
		}
		if pct/10 > p.last[ev.Item.ID]/10 {
			fmt.Fprintf(p.out, "  %d%% %s\n", pct, ev.Item.File.Name)
		}
		p.last[ev.Item.ID] = pct
	case queue.EventUploaded:
		if p.tty {
			fmt.Fprint(p.out, "\r\033[K")
		}
		fmt.Fprintf(p.out, "%s %s\n", green.Render("✓"), ev.Item.WatchURL())
	case queue.EventUploadFailed:
		if p.tty {
			fmt.Fprint(p.out, "\r\033[K")
		}
		fmt.Fprintf(p.out, "%s %s: %v\n", red.Render("✗"), ev.Item.File.Name, ev.Err)
	case queue.EventOptimized:
		fmt.Fprintf(p.out, "  %s %s\n", gray.Render("title:"), ev.Item.Metadata.OptimizedTitle)
	}
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadTitle, "title", "t", "", "Title for every file")
	uploadCmd.Flags().StringVarP(&uploadDescription, "description", "d", "", "Description for every file")
	uploadCmd.Flags().StringVar(&uploadTags, "tags", "", "Comma separated tags")
	uploadCmd.Flags().StringVarP(&uploadCategory, "category", "c", "", "Category ID (see 'categories')")
	uploadCmd.Flags().StringVarP(&uploadNotes, "notes", "n", "", "Notes passed to metadata generation")
	uploadCmd.Flags().BoolVar(&uploadNoGenerate, "no-generate", false, "Skip metadata generation")
}
