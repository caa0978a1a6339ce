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

	"github.com/spf13/cobra"

	"github.com/valpere/justhighlight/internal/boundary"
	"github.com/valpere/justhighlight/internal/translator"
)

var (
	resolveText       string
	resolveOffset     int
	pointerX          float64
	pointerY          float64
	charWidth         float64
	lineHeight        float64
	resolveJSON       bool
	resolveTranslated bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Find the word under a pointer in a line of text",
	Long: `Resolve the word around a caret offset the way a click does.

The text is laid out as a single line on a monospace grid starting at (0,0),
so --x/--y are measured in the same units as --char-width and --line-height.
When no pointer is given it is placed at the middle of the rune at --offset.

Exits non-zero when there is no word under the pointer.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		layout := boundary.MonospaceLayout{CharWidth: charWidth, LineHeight: lineHeight}

		pointer := boundary.Point{X: pointerX, Y: pointerY}
		if !cmd.Flags().Changed("x") {
			pointer.X = (float64(resolveOffset) + 0.5) * charWidth
		}
		if !cmd.Flags().Changed("y") {
			pointer.Y = lineHeight / 2
		}

		m, ok := boundary.Resolve(resolveText, resolveOffset, pointer, layout)
		if !ok {
			return fmt.Errorf("no word at offset %d", resolveOffset)
		}

		if resolveJSON {
			return printJSON(m)
		}

		fmt.Printf("%s\t[%d:%d]\n", m.Word, m.Start, m.End)
		if !resolveTranslated {
			return nil
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		prefs, err := a.settings.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		translation, err := a.cache.Resolve(cmd.Context(), m.Word, translator.AutoSource, prefs.Language)
		if err != nil {
			return fmt.Errorf("failed to translate %q: %w", m.Word, err)
		}
		fmt.Println(translation)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVar(&resolveText, "text", "", "Text of the line (required)")
	resolveCmd.Flags().IntVar(&resolveOffset, "offset", 0, "Caret offset in runes")
	resolveCmd.Flags().Float64Var(&pointerX, "x", 0, "Pointer x coordinate")
	resolveCmd.Flags().Float64Var(&pointerY, "y", 0, "Pointer y coordinate")
	resolveCmd.Flags().Float64Var(&charWidth, "char-width", 8, "Width of one rune")
	resolveCmd.Flags().Float64Var(&lineHeight, "line-height", 16, "Height of the line")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "Print the match as JSON")
	resolveCmd.Flags().BoolVar(&resolveTranslated, "translate", false, "Also translate the resolved word")

	resolveCmd.MarkFlagRequired("text")
}
