package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/chaesoohoon/youtubeuploader/internal/config"
	"github.com/chaesoohoon/youtubeuploader/internal/logging"
	"github.com/chaesoohoon/youtubeuploader/internal/notify"
	"github.com/chaesoohoon/youtubeuploader/internal/suggest"
	"github.com/chaesoohoon/youtubeuploader/internal/youtube"
)

// appEnv is the loaded configuration plus the logger every command shares
type appEnv struct {
	cfg    *config.Config
	dir    string
	logger *slog.Logger
	closer io.Closer
}

// loadEnv reads the config and opens the log file. The caller closes env.
func loadEnv() (*appEnv, error) {
	dir := configDir
	if dir == "" {
		dir = config.GetConfigDir()
	}

	cfg, err := config.LoadFrom(dir)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if debugMode {
		level = "debug"
	}
	logger, closer, err := logging.NewFile(dir, level, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	logger = logger.With("version", version)

	return &appEnv{cfg: cfg, dir: dir, logger: logger, closer: closer}, nil
}

func (e *appEnv) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

func (e *appEnv) save() error {
	return config.SaveTo(e.dir, e.cfg)
}

// auth builds the OAuth helper for the configured client
func (e *appEnv) auth() *youtube.Auth {
	return youtube.NewAuth(
		e.cfg.YouTube.ClientID,
		e.cfg.YouTube.ClientSecret,
		e.dir,
		youtube.WithAuthLogger(e.logger),
	)
}

// suggester returns the Gemini client, or nil when no API key is available
func (e *appEnv) suggester() suggest.Suggester {
	key := e.cfg.GeminiAPIKey()
	if key == "" {
		e.logger.Info("no Gemini API key; metadata generation disabled")
		return nil
	}
	return suggest.NewGeminiClient(suggest.Config{
		APIKey:         key,
		BaseURL:        e.cfg.Gemini.BaseURL,
		Model:          e.cfg.Gemini.Model,
		Language:       e.cfg.Gemini.Language,
		TimeoutSeconds: e.cfg.Gemini.TimeoutSeconds,
	}, suggest.WithLogger(e.logger))
}

func (e *appEnv) uploader() *youtube.ResumableUploader {
	return youtube.NewResumableUploader(youtube.WithLogger(e.logger))
}

// notifier returns desktop notifications when notify-send exists
func (e *appEnv) notifier() *notify.Desktop {
	return notify.NewDesktop()
}

// authTimeout bounds an interactive login
const authTimeout = 5 * time.Minute
