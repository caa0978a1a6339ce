// Package cache memoizes remote translations in the local store.
//
// Entries are keyed by (word, target language) and never expire. The cache
// is auxiliary: the dictionary list decides which words are known, the
// cache only saves round trips to the remote endpoint.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/valpere/justhighlight/internal"
	"github.com/valpere/justhighlight/internal/translator"
	"github.com/valpere/justhighlight/internal/wordform"
)

// Unavailable is shown in place of a translation the remote endpoint could
// not provide. It is never written to the store.
const Unavailable = "—"

// Backend is the part of the local store the cache needs.
type Backend interface {
	GetTranslation(ctx context.Context, key internal.CacheKey) (string, bool, error)
	GetTranslations(ctx context.Context, lang string) (map[string]string, error)
	PutTranslations(ctx context.Context, entries []internal.CacheEntry) error
	DeleteTranslation(ctx context.Context, key internal.CacheKey) error
}

type Cache struct {
	backend Backend
	service translator.TranslationService
	cfg     translator.ServiceConfig
	logger  *slog.Logger
}

func New(backend Backend, service translator.TranslationService, cfg translator.ServiceConfig, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		backend: backend,
		service: service,
		cfg:     cfg,
		logger:  logger,
	}
}

// Lookup returns the cached translation of word into lang.
func (c *Cache) Lookup(ctx context.Context, word, lang string) (string, bool, error) {
	text, found, err := c.backend.GetTranslation(ctx, key(word, lang))
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache: %w", err)
	}
	return text, found, nil
}

// Store records translation for (word, lang), replacing any previous value.
func (c *Cache) Store(ctx context.Context, word, lang, translation string) error {
	entry := internal.CacheEntry{CacheKey: key(word, lang), Translation: translation}
	if err := c.backend.PutTranslations(ctx, []internal.CacheEntry{entry}); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

// Forget removes the cached translation of word into lang, if any.
func (c *Cache) Forget(ctx context.Context, word, lang string) error {
	if err := c.backend.DeleteTranslation(ctx, key(word, lang)); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Resolve returns the translation of word into targetLang, asking the remote
// service on a miss and caching its answer. Remote failures are returned.
func (c *Cache) Resolve(ctx context.Context, word, sourceLang, targetLang string) (string, error) {
	if text, found, err := c.Lookup(ctx, word, targetLang); err != nil {
		return "", err
	} else if found {
		c.logger.Debug("cache hit", "word", word, "lang", targetLang)
		return text, nil
	}

	text, err := c.fetch(ctx, word, sourceLang, targetLang)
	if err != nil {
		return "", err
	}

	if err := c.Store(ctx, word, targetLang, text); err != nil {
		return "", err
	}
	return text, nil
}

// BatchResolve translates words into targetLang and returns the results in
// input order. Cached pairs are served without a remote call. Each distinct
// missing word costs one remote call, made one at a time in input order; a
// failed word yields Unavailable and the batch goes on. Unavailable is never
// written to the store, so the word is fetched again on the next batch.
// Newly resolved translations are written back in a single store write at
// the end.
func (c *Cache) BatchResolve(ctx context.Context, words []string, sourceLang, targetLang string) ([]string, error) {
	results := make([]string, len(words))
	if len(words) == 0 {
		return results, nil
	}

	cached, err := c.backend.GetTranslations(ctx, targetLang)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	resolved := make(map[string]string)
	failed := make(map[string]bool)
	var fresh []internal.CacheEntry

	for i, word := range words {
		k := wordform.Key(word)
		if text, ok := cached[k]; ok {
			results[i] = text
			continue
		}
		if text, ok := resolved[k]; ok {
			results[i] = text
			continue
		}
		if failed[k] {
			results[i] = Unavailable
			continue
		}

		text, err := c.fetch(ctx, word, sourceLang, targetLang)
		if err != nil {
			c.logger.Warn("translation unavailable", "word", word, "lang", targetLang, "error", err)
			failed[k] = true
			results[i] = Unavailable
			continue
		}

		resolved[k] = text
		results[i] = text
		fresh = append(fresh, internal.CacheEntry{CacheKey: key(word, targetLang), Translation: text})
	}

	if len(fresh) > 0 {
		if err := c.backend.PutTranslations(ctx, fresh); err != nil {
			return nil, fmt.Errorf("failed to write cache: %w", err)
		}
		c.logger.Debug("cache write-back", "lang", targetLang, "entries", len(fresh))
	}

	return results, nil
}

func (c *Cache) fetch(ctx context.Context, word, sourceLang, targetLang string) (string, error) {
	result, err := c.service.Translate(ctx, c.cfg, translator.TranslateRequest{
		Text:       strings.TrimSpace(word),
		SourceLang: sourceLang,
		TargetLang: targetLang,
	})
	if err != nil {
		return "", fmt.Errorf("failed to translate %q: %w", word, err)
	}
	if result == nil || strings.TrimSpace(result.TranslatedText) == "" {
		return "", fmt.Errorf("failed to translate %q: empty translation", word)
	}
	return result.TranslatedText, nil
}

func key(word, lang string) internal.CacheKey {
	return internal.CacheKey{Word: wordform.Key(word), Lang: lang}
}
