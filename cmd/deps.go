package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chaesoohoon/youtubeuploader/internal/deps"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Check for optional helper programs",
	Long: `Check which external programs are installed. Uploading needs none of
them; each one enables an extra feature such as previews or notifications.`,
	Run: func(cmd *cobra.Command, args []string) {
		results := deps.CheckAll()

		fmt.Println()
		fmt.Printf("%s %s\n\n", bold.Render("Session:"), deps.DetectSession())

		for _, r := range results {
			status := green.Render("✓")
			if !r.Available {
				status = gray.Render("○")
			}
			fmt.Printf("  %s %s\n", status, bold.Render(r.Dependency.Name))
			fmt.Printf("    %s\n", gray.Render(r.Dependency.Description))
			if r.Available {
				fmt.Printf("    Path: %s\n", r.Path)
			} else {
				fmt.Printf("    Disables: %s\n", r.Dependency.Feature)
			}
			fmt.Println()
		}

		if missing := deps.Missing(results); len(missing) == 0 {
			fmt.Println(green.Render("All helper programs are installed."))
		} else {
			fmt.Printf("%d helper program(s) missing. Uploads still work.\n", len(missing))
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(depsCmd)
}
