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
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/justhighlight/internal/translator"
)

var (
	sourceLang string
	targetLang string
	noCache    bool
)

var translateCmd = &cobra.Command{
	Use:   "translate <text...>",
	Short: "Translate a word or phrase",
	Long: `Translate text the way the popup does: the translation cache is
consulted first and the remote endpoint is called on a miss.

The target language defaults to the "language" setting.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.TrimSpace(strings.Join(args, " "))
		if text == "" {
			return fmt.Errorf("nothing to translate")
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()

		target := targetLang
		if target == "" {
			prefs, err := a.settings.Load(ctx)
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}
			target = prefs.Language
		}

		if noCache {
			res, err := a.service.Translate(ctx, serviceConfig(cfg.Translator), translator.TranslateRequest{
				Text:       text,
				SourceLang: sourceLang,
				TargetLang: target,
			})
			if err != nil {
				return fmt.Errorf("failed to translate: %w", err)
			}
			logger.Debug("translated", "service", res.ServiceName, "latency", res.Latency)
			fmt.Println(res.TranslatedText)
			return nil
		}

		translation, err := a.cache.Resolve(ctx, text, sourceLang, target)
		if err != nil {
			return fmt.Errorf("failed to translate: %w", err)
		}
		fmt.Println(translation)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&sourceLang, "source", "s", translator.AutoSource, "Source language code")
	translateCmd.Flags().StringVarP(&targetLang, "target", "t", "", "Target language code (default: the language setting)")
	translateCmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the translation cache")
}
