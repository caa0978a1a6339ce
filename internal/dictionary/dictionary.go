// Package dictionary manages the words the user chose to memorize and the
// review table built from them.
package dictionary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/valpere/justhighlight/internal"
	"github.com/valpere/justhighlight/internal/i18n"
	"github.com/valpere/justhighlight/internal/settings"
	"github.com/valpere/justhighlight/internal/store"
	"github.com/valpere/justhighlight/internal/translator"
	"github.com/valpere/justhighlight/internal/wordform"
)

var (
	ErrEmptyWord         = errors.New("empty word")
	ErrNotFound          = store.ErrNotFound
	ErrTranslationFailed = errors.New("translation failed")
)

// Words is the dictionary part of the local store.
type Words interface {
	ListWords(ctx context.Context) ([]internal.DictionaryEntry, error)
	HasWord(ctx context.Context, word string) (bool, error)
	AddWord(ctx context.Context, word string) (bool, error)
	DeleteWord(ctx context.Context, word, lang string) error
}

// Translations is the part of the translation cache the dictionary uses.
type Translations interface {
	Resolve(ctx context.Context, word, sourceLang, targetLang string) (string, error)
	Store(ctx context.Context, word, lang, translation string) error
	BatchResolve(ctx context.Context, words []string, sourceLang, targetLang string) ([]string, error)
}

// SettingsSource provides the current sync settings.
type SettingsSource interface {
	Load(ctx context.Context) (settings.Settings, error)
}

type Service struct {
	words    Words
	cache    Translations
	settings SettingsSource
	catalog  *i18n.Catalog
	logger   *slog.Logger
}

func NewService(words Words, cache Translations, src SettingsSource, catalog *i18n.Catalog, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if catalog == nil {
		catalog = i18n.MustNew()
	}
	return &Service{
		words:    words,
		cache:    cache,
		settings: src,
		catalog:  catalog,
		logger:   logger,
	}
}

type AddResult struct {
	Word        string `json:"word"`
	Translation string `json:"translation,omitempty"`
	Lang        string `json:"lang"`
	Added       bool   `json:"added"`
	Message     string `json:"message"`
}

// Add saves raw in canonical form, translated into the current target
// language. A word already present is acknowledged, not re-added. When the
// translation fails nothing is saved.
func (s *Service) Add(ctx context.Context, raw string) (*AddResult, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyWord
	}

	cfg, err := s.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	word := wordform.Canonical(raw)
	result := &AddResult{Word: word, Lang: cfg.Language}

	present, err := s.words.HasWord(ctx, word)
	if err != nil {
		return nil, fmt.Errorf("failed to check dictionary: %w", err)
	}
	if present {
		result.Message = s.catalog.T(cfg.UI(), i18n.WordPresent, word)
		return result, nil
	}

	translation, err := s.cache.Resolve(ctx, word, translator.AutoSource, cfg.Language)
	if err != nil {
		return nil, fmt.Errorf("%w for %q: %w", ErrTranslationFailed, word, err)
	}
	translation = wordform.Canonical(translation)

	added, err := s.words.AddWord(ctx, word)
	if err != nil {
		return nil, fmt.Errorf("failed to add word: %w", err)
	}
	result.Translation = translation

	if !added {
		// Another writer got there between the check and the insert.
		result.Message = s.catalog.T(cfg.UI(), i18n.WordPresent, word)
		return result, nil
	}

	if err := s.cache.Store(ctx, word, cfg.Language, translation); err != nil {
		return nil, err
	}

	result.Added = true
	result.Message = s.catalog.T(cfg.UI(), i18n.WordAdded, word)
	s.logger.Info("word added", "word", word, "lang", cfg.Language)
	return result, nil
}

// Delete removes word and its cached translation for lang. An empty lang
// means the current target language.
func (s *Service) Delete(ctx context.Context, word, lang string) error {
	word = strings.TrimSpace(word)
	if word == "" {
		return ErrEmptyWord
	}

	if lang == "" {
		cfg, err := s.settings.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		lang = cfg.Language
	}

	if err := s.words.DeleteWord(ctx, wordform.Canonical(word), lang); err != nil {
		return fmt.Errorf("failed to delete word: %w", err)
	}
	s.logger.Info("word deleted", "word", word, "lang", lang)
	return nil
}

// List returns the saved words in insertion order.
func (s *Service) List(ctx context.Context) ([]internal.DictionaryEntry, error) {
	entries, err := s.words.ListWords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list dictionary: %w", err)
	}
	if entries == nil {
		entries = []internal.DictionaryEntry{}
	}
	return entries, nil
}

type Row struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
}

type Columns struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
}

type Review struct {
	Lang    string  `json:"lang"`
	Columns Columns `json:"columns"`
	Rows    []Row   `json:"rows"`
	Empty   bool    `json:"empty"`
	Message string  `json:"message,omitempty"`
}

// Review builds the review table for lang (the current target language when
// empty). Missing translations are fetched and cached; ones that cannot be
// fetched show as cache.Unavailable.
func (s *Service) Review(ctx context.Context, lang string) (*Review, error) {
	cfg, err := s.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if lang == "" {
		lang = cfg.Language
	}

	ui := cfg.UI()
	review := &Review{
		Lang: lang,
		Columns: Columns{
			Word:        s.catalog.T(ui, i18n.ColumnWord),
			Translation: s.catalog.T(ui, i18n.ColumnTranslation),
		},
		Rows: []Row{},
	}

	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		review.Empty = true
		review.Message = s.catalog.T(ui, i18n.DictionaryEmpty)
		return review, nil
	}

	words := make([]string, len(entries))
	for i, e := range entries {
		words[i] = e.Word
	}

	translations, err := s.cache.BatchResolve(ctx, words, translator.AutoSource, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve translations: %w", err)
	}

	for i, word := range words {
		review.Rows = append(review.Rows, Row{
			Word:        word,
			Translation: wordform.Capitalize(translations[i]),
		})
	}
	return review, nil
}
