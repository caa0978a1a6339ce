/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/justhighlight/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the synced settings",
	Long: `Show or change the settings shared with the extension: target language,
UI language, theme and the auto/click translate toggles.

A running companion picks up changes made here on the next settings event.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := settings.NewStore(cfg.Settings.Path)
		s, err := store.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		return printSettings(store.Path(), s)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set key=value...",
	Short: "Change one or more settings",
	Example: `  jhi settings set language=ru
  jhi settings set theme=light clickTranslate=true`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch settings.Patch
		for _, arg := range args {
			key, value, ok := strings.Cut(arg, "=")
			if !ok {
				return fmt.Errorf("expected key=value, got %q", arg)
			}
			p, err := settings.ParsePatch(strings.TrimSpace(key), strings.TrimSpace(value))
			if err != nil {
				return err
			}
			patch = patch.Merge(p)
		}

		store := settings.NewStore(cfg.Settings.Path)
		s, changes, err := store.Update(cmd.Context(), patch)
		if err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		if !changes.Any {
			fmt.Println("Settings unchanged.")
		}
		return printSettings(store.Path(), s)
	},
}

func printSettings(path string, s settings.Settings) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", settings.KeyLanguage, s.Language)
	fmt.Fprintf(w, "%s\t%s\n", settings.KeyUILanguage, s.UI())
	fmt.Fprintf(w, "%s\t%s\n", settings.KeyTheme, s.Theme)
	fmt.Fprintf(w, "%s\t%t\n", settings.KeyAutoTranslate, s.AutoTranslate)
	fmt.Fprintf(w, "%s\t%t\n", settings.KeyClickTranslate, s.ClickTranslate)
	if err := w.Flush(); err != nil {
		return err
	}
	logger.Debug("settings file", "path", path)
	return nil
}

func init() {
	rootCmd.AddCommand(settingsCmd)

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}
