package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bryan-buckman/headlines/internal/view"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the feed and print its headlines",
	Long: `Fetch the configured feed once and print the headlines, marking
favorites with a star.

Examples:
  headlines fetch                  # Print every headline
  headlines fetch --query storm    # Only titles containing "storm"
  headlines fetch --json           # Output as JSON`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringP("query", "q", "", "filter titles (case-insensitive substring)")
	fetchCmd.Flags().Bool("json", false, "output as JSON")
}

func runFetch(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	res := <-a.reader.Refresh(context.Background())
	if res.Err != nil {
		return fmt.Errorf("%s: %w", res.Notice, res.Err)
	}

	visible := view.Filter(a.reader.Articles(), query)
	w := cmd.OutOrStdout()

	if jsonOutput {
		details := make([]view.Detail, 0, len(visible))
		for _, art := range visible {
			fav, err := a.reader.IsFavorite(art.Title)
			if err != nil {
				return err
			}
			details = append(details, view.NewDetail(art, fav))
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(details)
	}

	for _, art := range visible {
		mark := " "
		if fav, err := a.reader.IsFavorite(art.Title); err != nil {
			return err
		} else if fav {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %s\n", mark, art.Title)
		fmt.Fprintf(w, "    %s\n", view.FormatDate(art.PublishedAt))
		if art.Link != "" {
			fmt.Fprintf(w, "    %s\n", art.Link)
		}
	}
	return nil
}
