package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bryan-buckman/headlines/internal/model"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change preferences",
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		snap := a.reader.Preferences().Snapshot()
		w := cmd.OutOrStdout()
		if jsonOutput {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}
		fmt.Fprintf(w, "%-16s %t\n", model.SettingDarkTheme, snap.DarkTheme)
		fmt.Fprintf(w, "%-16s %s\n", model.SettingAppLanguage, snap.Language)
		fmt.Fprintf(w, "%-16s %s\n", model.SettingLastViewedTitle, snap.LastViewedTitle)
		return nil
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change a preference",
	Long: `Change a preference. Keys:
  dark_theme     true or false
  app_language   en or fr`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		p := a.reader.Preferences()
		switch args[0] {
		case model.SettingDarkTheme:
			dark, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("invalid %s value %q: %w", args[0], args[1], err)
			}
			if err := p.SetDarkTheme(dark); err != nil {
				return err
			}
		case model.SettingAppLanguage:
			if err := p.SetLanguage(args[1]); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown preference %q", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(prefsCmd)
	prefsCmd.AddCommand(prefsShowCmd, prefsSetCmd)

	prefsShowCmd.Flags().Bool("json", false, "output as JSON")
}
