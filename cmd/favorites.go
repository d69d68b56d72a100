package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bryan-buckman/headlines/internal/model"
	"github.com/bryan-buckman/headlines/internal/view"
)

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "Manage favorite articles",
	Long: `Manage the saved favorites. Favorites are keyed by article title.

Examples:
  headlines favorites list
  headlines favorites add "Storm batters east coast"
  headlines favorites remove "Storm batters east coast"
  headlines favorites export -o favorites.opml
  headlines favorites import favorites.opml`,
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorites",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		favs, err := a.reader.Favorites()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if jsonOutput {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(favs)
		}
		if len(favs) == 0 {
			fmt.Fprintln(w, "No favorites")
			return nil
		}
		for _, f := range favs {
			fmt.Fprintf(w, "%s\n    %s\n", f.Title, view.FormatDate(f.PublishedAt))
		}
		return nil
	},
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add TITLE",
	Short: "Save an article from the current feed",
	Long: `Fetch the feed and save the article with exactly this title. With
--link the article is saved as given, without fetching.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		link, _ := cmd.Flags().GetString("link")
		description, _ := cmd.Flags().GetString("description")
		date, _ := cmd.Flags().GetString("date")

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		art := model.Article{Title: args[0], Description: description, PublishedAt: date, Link: link}
		if link == "" {
			res := <-a.reader.Refresh(context.Background())
			if res.Err != nil {
				return fmt.Errorf("%s: %w", res.Notice, res.Err)
			}
			found := false
			for _, candidate := range res.Articles {
				if candidate.Title == args[0] {
					art, found = candidate, true
					break
				}
			}
			if !found {
				return fmt.Errorf("no article titled %q in the current feed", args[0])
			}
		}

		_, notice, err := a.reader.AddFavorite(art)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), notice)
		return nil
	},
}

var favoritesRemoveCmd = &cobra.Command{
	Use:   "remove TITLE",
	Short: "Remove a favorite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		notice, err := a.reader.RemoveFavorite(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), notice)
		return nil
	},
}

var favoritesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every favorite",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		notice, err := a.reader.ClearFavorites()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), notice)
		return nil
	},
}

var favoritesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write favorites as OPML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outFile, _ := cmd.Flags().GetString("output")
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		doc, err := a.reader.ExportFavorites()
		if err != nil {
			return err
		}
		if outFile == "" {
			_, err = cmd.OutOrStdout().Write(doc)
			return err
		}
		return os.WriteFile(outFile, doc, 0o644)
	},
}

var favoritesImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Add favorites from an OPML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		_, notice, err := a.reader.ImportFavorites(f)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), notice)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(favoritesCmd)
	favoritesCmd.AddCommand(favoritesListCmd, favoritesAddCmd, favoritesRemoveCmd,
		favoritesClearCmd, favoritesExportCmd, favoritesImportCmd)

	favoritesListCmd.Flags().Bool("json", false, "output as JSON")
	favoritesAddCmd.Flags().String("link", "", "article link (skips fetching)")
	favoritesAddCmd.Flags().String("description", "", "article description, with --link")
	favoritesAddCmd.Flags().String("date", "", "article pubDate, with --link")
	favoritesExportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
}
