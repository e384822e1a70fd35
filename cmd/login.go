package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/chaesoohoon/youtubeuploader/internal/youtube"
)

var (
	green = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	red   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0033"))
	gray  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9A9EA0"))
	bold  = lipgloss.NewStyle().Bold(true)
)

var errNoClient = errors.New("no OAuth client configured; run 'youtube-uploader config set-client <client-id> <client-secret>'")

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to YouTube",
	Long:  `Open the Google consent page in a browser and store the resulting token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv()
		if err != nil {
			return err
		}
		defer func() { _ = env.Close() }()

		if env.cfg.NeedsSetup() {
			fmt.Println(youtube.GetSetupInstructions())
			return errNoClient
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), authTimeout)
		defer cancel()

		auth := env.auth()
		err = auth.Authenticate(ctx, func(url string) {
			fmt.Println("Opening your browser to sign in. If it does not open, visit:")
			fmt.Println()
			fmt.Println("  " + url)
			fmt.Println()
		})
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		name, err := auth.GetChannelName(ctx)
		if err != nil {
			env.logger.Warn("failed to look up channel", "error", err)
			name = ""
		}
		env.cfg.YouTube.ChannelName = name
		if err := env.save(); err != nil {
			return err
		}

		if name != "" {
			fmt.Printf("%s Signed in as %s\n", green.Render("✓"), bold.Render(name))
		} else {
			fmt.Printf("%s Signed in\n", green.Render("✓"))
		}
		return nil
	},
}

var logoutRevoke bool

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out of YouTube",
	Long:  `Delete the stored token. With --revoke the token is also revoked at Google.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv()
		if err != nil {
			return err
		}
		defer func() { _ = env.Close() }()

		auth := env.auth()
		if logoutRevoke {
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()
			if err := auth.RevokeToken(ctx); err != nil {
				fmt.Printf("%s revoke failed: %v\n", red.Render("!"), err)
				if err := auth.Logout(); err != nil {
					return err
				}
			}
		} else if err := auth.Logout(); err != nil {
			return err
		}

		env.cfg.YouTube.ChannelName = ""
		if err := env.save(); err != nil {
			return err
		}
		fmt.Printf("%s Signed out\n", green.Render("✓"))
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in channel",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv()
		if err != nil {
			return err
		}
		defer func() { _ = env.Close() }()

		auth := env.auth()
		status := auth.Status()
		fmt.Printf("%s %s\n", bold.Render("Status:"), status)
		if status != youtube.AuthStatusAuthenticated {
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()
		name, err := auth.GetChannelName(ctx)
		if err != nil {
			return fmt.Errorf("failed to look up channel: %w", err)
		}
		fmt.Printf("%s %s\n", bold.Render("Channel:"), name)

		if name != env.cfg.YouTube.ChannelName {
			env.cfg.YouTube.ChannelName = name
			if err := env.save(); err != nil {
				env.logger.Warn("failed to save channel name", "error", err)
			}
		}
		return nil
	},
}

func init() {
	logoutCmd.Flags().BoolVar(&logoutRevoke, "revoke", false, "Also revoke the token at Google")
}
