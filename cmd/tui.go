package cmd

import (
	"fmt"
	"os"

	"github.com/chaesoohoon/youtubeuploader/internal/media"
	"github.com/chaesoohoon/youtubeuploader/internal/tui"
)

func runTUIApp(paths []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()

	opts := tui.Options{
		Config:    env.cfg,
		ConfigDir: env.dir,
		Logger:    env.logger,
		Suggester: env.suggester(),
		Uploader:  env.uploader(),
		Notifier:  env.notifier(),
	}

	if len(paths) > 0 {
		files, warnings, err := media.Intake(paths)
		if err != nil {
			if len(files) == 0 {
				return err
			}
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		opts.Files = files
		opts.Warnings = warnings
	}

	env.logger.Info("starting interactive queue", "files", len(opts.Files))
	return tui.Run(opts)
}
