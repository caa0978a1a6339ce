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
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/valpere/justhighlight/internal/cache"
	"github.com/valpere/justhighlight/internal/i18n"
	"github.com/valpere/justhighlight/internal/wordform"
)

var (
	dictLang string
	dictJSON bool
)

var dictCmd = &cobra.Command{
	Use:     "dict",
	Aliases: []string{"dictionary"},
	Short:   "Manage the personal dictionary",
	Long:    `Add, list, delete and review the words saved for memorization.`,
}

var dictAddCmd = &cobra.Command{
	Use:   "add <word>",
	Short: "Translate a word and save it to the dictionary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.dict.Add(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if dictJSON {
			return printJSON(res)
		}
		if res.Added {
			color.Green("%s", res.Message)
			fmt.Printf("%s → %s\n", res.Word, res.Translation)
		} else {
			color.Yellow("%s", res.Message)
		}
		return nil
	},
}

var dictListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved words in insertion order",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.dict.List(cmd.Context())
		if err != nil {
			return err
		}

		if dictJSON {
			return printJSON(entries)
		}
		if len(entries) == 0 {
			prefs, err := a.settings.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}
			fmt.Println(a.catalog.T(prefs.UI(), i18n.DictionaryEmpty))
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tWORD\tADDED")
		for i, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, e.Word, e.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var dictDeleteCmd = &cobra.Command{
	Use:   "delete <word>",
	Short: "Remove a word and its cached translation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		if err := a.dict.Delete(ctx, args[0], dictLang); err != nil {
			return err
		}

		prefs, err := a.settings.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		fmt.Println(a.catalog.T(prefs.UI(), i18n.WordDeleted, wordform.Canonical(args[0])))
		return nil
	},
}

var dictReviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Show every saved word with its translation",
	Long: `Show the review table. Missing translations are fetched and cached;
words that could not be translated show as ` + cache.Unavailable + `.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		review, err := a.dict.Review(cmd.Context(), dictLang)
		if err != nil {
			return err
		}

		if dictJSON {
			return printJSON(review)
		}
		if review.Empty {
			fmt.Println(review.Message)
			return nil
		}

		// Only the last column is colored; escape codes would skew tabwriter's widths.
		missing := color.New(color.FgRed)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "%s\t%s\n", review.Columns.Word, review.Columns.Translation)
		for _, row := range review.Rows {
			translation := row.Translation
			if translation == cache.Unavailable {
				translation = missing.Sprint(translation)
			}
			fmt.Fprintf(w, "%s\t%s\n", row.Word, translation)
		}
		return w.Flush()
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(dictCmd)

	dictCmd.PersistentFlags().BoolVar(&dictJSON, "json", false, "Print JSON instead of a table")
	dictDeleteCmd.Flags().StringVar(&dictLang, "lang", "", "Language of the cached translation to drop (default: the language setting)")
	dictReviewCmd.Flags().StringVar(&dictLang, "lang", "", "Review language (default: the language setting)")

	dictCmd.AddCommand(dictAddCmd)
	dictCmd.AddCommand(dictListCmd)
	dictCmd.AddCommand(dictDeleteCmd)
	dictCmd.AddCommand(dictReviewCmd)
}
