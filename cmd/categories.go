package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/chaesoohoon/youtubeuploader/internal/youtube"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List YouTube video categories",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(renderCategories())
	},
}

func renderCategories() string {
	ids := make([]string, 0, len(youtube.VideoCategories))
	for id := range youtube.VideoCategories {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.Atoi(ids[i])
		b, _ := strconv.Atoi(ids[j])
		return a < b
	})

	inPicker := make(map[string]bool, len(youtube.Categories))
	for _, c := range youtube.Categories {
		inPicker[c.ID] = true
	}

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		mark := ""
		if inPicker[id] {
			mark = "✓"
		}
		rows = append(rows, []string{id, youtube.VideoCategories[id], mark})
	}
	return renderTable(
		[]string{"ID", "Name", "Editor"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft},
	)
}
