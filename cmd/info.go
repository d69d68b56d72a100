package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe the configured feed",
	Long:  `Print the feed's channel metadata and the favorites backend in use.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ch, err := a.reader.Channel(context.Background())
		if err != nil {
			return err
		}
		favs, err := a.reader.Favorites()
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s\n", ch.Title)
		fmt.Fprintf(w, "  description: %s\n", ch.Description)
		fmt.Fprintf(w, "  link:        %s\n", ch.Link)
		if ch.Language != "" {
			fmt.Fprintf(w, "  language:    %s\n", ch.Language)
		}
		if ch.Updated != "" {
			fmt.Fprintf(w, "  updated:     %s\n", ch.Updated)
		}
		fmt.Fprintf(w, "  articles:    %d\n", ch.ItemCount)
		fmt.Fprintf(w, "  favorites:   %d (%s)\n", len(favs), a.store.DatabaseType())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
