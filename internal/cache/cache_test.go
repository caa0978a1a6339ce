package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/justhighlight/internal"
	"github.com/valpere/justhighlight/internal/store"
	"github.com/valpere/justhighlight/internal/translator"
	"github.com/valpere/justhighlight/internal/translator/translatortest"
)

func newTestCache(t *testing.T, fake *translatortest.Fake) (*Cache, *store.Store) {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(s, fake, translator.ServiceConfig{}, logger), s
}

func TestCache_StoreLookup(t *testing.T) {
	c, _ := newTestCache(t, &translatortest.Fake{})
	ctx := context.Background()

	_, found, err := c.Lookup(ctx, "Apple", "ru")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Store(ctx, "Apple", "ru", "Яблоко"))

	text, found, err := c.Lookup(ctx, "Apple", "ru")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Яблоко", text)

	// surrounding whitespace is not part of the key
	text, found, err = c.Lookup(ctx, "  Apple ", "ru")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Яблоко", text)
}

func TestCache_Store_LastWriteWins(t *testing.T) {
	c, _ := newTestCache(t, &translatortest.Fake{})
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, "Bank", "de", "Ufer"))
	require.NoError(t, c.Store(ctx, "Bank", "de", "Bank"))

	text, _, err := c.Lookup(ctx, "Bank", "de")
	require.NoError(t, err)
	assert.Equal(t, "Bank", text)
}

func TestCache_BatchResolve_CachedPairsSkipRemote(t *testing.T) {
	fake := &translatortest.Fake{Answers: map[string]string{"Pear": "Груша"}}
	c, _ := newTestCache(t, fake)
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, "Apple", "ru", "Яблоко"))
	require.NoError(t, c.Store(ctx, "Plum", "ru", "Слива"))

	got, err := c.BatchResolve(ctx, []string{"Apple", "Pear", "Plum"}, translator.AutoSource, "ru")
	require.NoError(t, err)
	assert.Equal(t, []string{"Яблоко", "Груша", "Слива"}, got)
	assert.Equal(t, []string{"Pear"}, fake.Texts())

	// second pass is fully cached
	got, err = c.BatchResolve(ctx, []string{"Apple", "Pear", "Plum"}, translator.AutoSource, "ru")
	require.NoError(t, err)
	assert.Equal(t, []string{"Яблоко", "Груша", "Слива"}, got)
	assert.Len(t, fake.Calls(), 1)
}

func TestCache_BatchResolve_ReviewScenario(t *testing.T) {
	fake := &translatortest.Fake{Answers: map[string]string{"Apple": "Яблоко"}}
	c, s := newTestCache(t, fake)
	ctx := context.Background()

	got, err := c.BatchResolve(ctx, []string{"Apple"}, translator.AutoSource, "ru")
	require.NoError(t, err)
	assert.Equal(t, []string{"Яблоко"}, got)

	text, found, err := s.GetTranslation(ctx, internal.CacheKey{Word: "Apple", Lang: "ru"})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Яблоко", text)

	call := fake.Calls()[0]
	assert.Equal(t, "auto", call.SourceLang)
	assert.Equal(t, "ru", call.TargetLang)
}

func TestCache_BatchResolve_FailureYieldsPlaceholder(t *testing.T) {
	fake := &translatortest.Fake{Answers: map[string]string{"One": "Один", "Three": "Три"}}
	c, s := newTestCache(t, fake)
	ctx := context.Background()

	got, err := c.BatchResolve(ctx, []string{"One", "Two", "Three", "Two"}, translator.AutoSource, "uk")
	require.NoError(t, err)
	assert.Equal(t, []string{"Один", Unavailable, "Три", Unavailable}, got)

	// sequential, in input order, one call per distinct word, no retries
	assert.Equal(t, []string{"One", "Two", "Three"}, fake.Texts())

	// placeholders are not persisted
	_, found, err := s.GetTranslation(ctx, internal.CacheKey{Word: "Two", Lang: "uk"})
	require.NoError(t, err)
	assert.False(t, found)

	entries, err := s.ListTranslations(ctx, "uk")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestCache_BatchResolve_EveryMissIsFetched(t *testing.T) {
	fake := &translatortest.Fake{}
	c, _ := newTestCache(t, fake)

	words := []string{"Aa", "Bb", "Cc", "Dd", "Ee", "Ff", "Gg", "Hh"}
	got, err := c.BatchResolve(context.Background(), words, translator.AutoSource, "de")
	require.NoError(t, err)

	for _, text := range got {
		assert.Equal(t, Unavailable, text)
	}
	// a run of failures does not short-circuit the rest of the batch
	assert.Equal(t, words, fake.Texts())
}

func TestCache_BatchResolve_DuplicateMissFetchedOnce(t *testing.T) {
	fake := &translatortest.Fake{Answers: map[string]string{"Apple": "Apfel"}}
	c, _ := newTestCache(t, fake)

	got, err := c.BatchResolve(context.Background(), []string{"Apple", "Apple "}, "en", "de")
	require.NoError(t, err)
	assert.Equal(t, []string{"Apfel", "Apfel"}, got)
	assert.Len(t, fake.Calls(), 1)
}

func TestCache_BatchResolve_Empty(t *testing.T) {
	fake := &translatortest.Fake{}
	c, _ := newTestCache(t, fake)

	got, err := c.BatchResolve(context.Background(), nil, translator.AutoSource, "ru")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, fake.Calls())
}

func TestCache_Resolve(t *testing.T) {
	fake := &translatortest.Fake{Answers: map[string]string{"Hello": "Hallo"}}
	c, _ := newTestCache(t, fake)
	ctx := context.Background()

	text, err := c.Resolve(ctx, "Hello", translator.AutoSource, "de")
	require.NoError(t, err)
	assert.Equal(t, "Hallo", text)

	text, err = c.Resolve(ctx, "Hello", translator.AutoSource, "de")
	require.NoError(t, err)
	assert.Equal(t, "Hallo", text)
	assert.Len(t, fake.Calls(), 1)
}

func TestCache_Resolve_Failure(t *testing.T) {
	boom := errors.New("boom")
	fake := &translatortest.Fake{
		TranslateFunc: func(ctx context.Context, req translator.TranslateRequest) (string, error) {
			return "", boom
		},
	}
	c, _ := newTestCache(t, fake)
	ctx := context.Background()

	_, err := c.Resolve(ctx, "Hello", translator.AutoSource, "de")
	assert.ErrorIs(t, err, boom)

	_, found, err := c.Lookup(ctx, "Hello", "de")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_Resolve_EmptyTranslationIsFailure(t *testing.T) {
	fake := &translatortest.Fake{Answers: map[string]string{"Hello": "   "}}
	c, _ := newTestCache(t, fake)

	_, err := c.Resolve(context.Background(), "Hello", translator.AutoSource, "de")
	assert.Error(t, err)
}

func TestCache_Forget(t *testing.T) {
	c, _ := newTestCache(t, &translatortest.Fake{})
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, "Apple", "ru", "Яблоко"))
	require.NoError(t, c.Store(ctx, "Apple", "de", "Apfel"))
	require.NoError(t, c.Forget(ctx, "Apple", "ru"))

	_, found, err := c.Lookup(ctx, "Apple", "ru")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = c.Lookup(ctx, "Apple", "de")
	require.NoError(t, err)
	assert.True(t, found)
}

type brokenBackend struct{ err error }

func (b brokenBackend) GetTranslation(context.Context, internal.CacheKey) (string, bool, error) {
	return "", false, b.err
}

func (b brokenBackend) GetTranslations(context.Context, string) (map[string]string, error) {
	return nil, b.err
}

func (b brokenBackend) PutTranslations(context.Context, []internal.CacheEntry) error {
	return b.err
}

func (b brokenBackend) DeleteTranslation(context.Context, internal.CacheKey) error {
	return b.err
}

func TestCache_StorageErrorsSurface(t *testing.T) {
	disk := errors.New("disk full")
	fake := &translatortest.Fake{Answers: map[string]string{"Apple": "Яблоко"}}
	c := New(brokenBackend{err: disk}, fake, translator.ServiceConfig{}, nil)
	ctx := context.Background()

	_, _, err := c.Lookup(ctx, "Apple", "ru")
	assert.ErrorIs(t, err, disk)

	assert.ErrorIs(t, c.Store(ctx, "Apple", "ru", "Яблоко"), disk)
	assert.ErrorIs(t, c.Forget(ctx, "Apple", "ru"), disk)

	_, err = c.BatchResolve(ctx, []string{"Apple"}, translator.AutoSource, "ru")
	assert.ErrorIs(t, err, disk)

	_, err = c.Resolve(ctx, "Apple", translator.AutoSource, "ru")
	assert.ErrorIs(t, err, disk)
	assert.Empty(t, fake.Calls())
}
