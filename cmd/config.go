package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chaesoohoon/youtubeuploader/internal/config"
	"github.com/chaesoohoon/youtubeuploader/internal/youtube"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv()
		if err != nil {
			return err
		}
		defer func() { _ = env.Close() }()
		cfg := env.cfg

		rows := [][]string{
			{"youtube.client_id", cfg.YouTube.ClientID},
			{"youtube.client_secret", mask(cfg.YouTube.ClientSecret)},
			{"youtube.default_category", fmt.Sprintf("%s (%s)", cfg.DefaultCategory(), youtube.CategoryName(cfg.DefaultCategory()))},
			{"youtube.channel_name", cfg.YouTube.ChannelName},
			{"gemini.api_key", mask(cfg.GeminiAPIKey())},
			{"gemini.model", cfg.Gemini.Model},
			{"gemini.language", cfg.Gemini.Language},
			{"log_level", cfg.LogLevel},
			{"log_format", cfg.LogFormat},
		}
		fmt.Println(renderTable([]string{"Setting", "Value"}, rows, nil))
		fmt.Printf("%s %s\n", gray.Render("File:"), config.Path(env.dir))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Run: func(cmd *cobra.Command, args []string) {
		dir := configDir
		if dir == "" {
			dir = config.GetConfigDir()
		}
		fmt.Println(config.Path(dir))
	},
}

var configSetClientCmd = &cobra.Command{
	Use:   "set-client CLIENT_ID CLIENT_SECRET",
	Short: "Store the OAuth client used to sign in",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, secret := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
		if err := youtube.ValidateCredentials(id, secret); err != nil {
			return err
		}
		return updateConfig(func(cfg *config.Config) {
			if cfg.YouTube.ClientID != id {
				cfg.YouTube.ChannelName = ""
			}
			cfg.YouTube.ClientID = id
			cfg.YouTube.ClientSecret = secret
		})
	},
}

var configSetGeminiKeyCmd = &cobra.Command{
	Use:   "set-gemini-key API_KEY",
	Short: "Store the Gemini API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.TrimSpace(args[0])
		if key == "" {
			return fmt.Errorf("API key is empty")
		}
		return updateConfig(func(cfg *config.Config) {
			cfg.Gemini.APIKey = key
		})
	},
}

var configSetCategoryCmd = &cobra.Command{
	Use:   "set-category ID",
	Short: "Set the category given to newly queued videos",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := strings.TrimSpace(args[0])
		if !youtube.IsKnownCategory(id) {
			return fmt.Errorf("unknown category %q; run 'youtube-uploader categories'", id)
		}
		return updateConfig(func(cfg *config.Config) {
			cfg.YouTube.DefaultCategory = id
		})
	},
}

func updateConfig(change func(cfg *config.Config)) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()

	change(env.cfg)
	if err := env.save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Printf("%s Saved to %s\n", green.Render("✓"), config.Path(env.dir))
	return nil
}

// mask hides all but the last four characters of a secret
func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", 8) + secret[len(secret)-4:]
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetClientCmd)
	configCmd.AddCommand(configSetGeminiKeyCmd)
	configCmd.AddCommand(configSetCategoryCmd)
}
