package translator_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/justhighlight/internal/translator"
	"github.com/valpere/justhighlight/internal/translator/translatortest"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBreaker_PassesThrough(t *testing.T) {
	fake := &translatortest.Fake{Answers: map[string]string{"Apple": "Яблоко"}}
	b := translator.NewBreaker(fake, 2, time.Minute, quietLogger())

	result, err := b.Translate(context.Background(), translator.ServiceConfig{}, translator.TranslateRequest{
		Text:       "Apple",
		TargetLang: "ru",
	})

	require.NoError(t, err)
	assert.Equal(t, "Яблоко", result.TranslatedText)
	assert.Equal(t, "fake", b.Name())
	assert.Equal(t, "closed", b.State())
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	fake := &translatortest.Fake{}
	b := translator.NewBreaker(fake, 2, time.Minute, quietLogger())
	req := translator.TranslateRequest{Text: "Apple", TargetLang: "ru"}

	for i := 0; i < 2; i++ {
		result, err := b.Translate(context.Background(), translator.ServiceConfig{}, req)
		assert.Error(t, err)
		require.NotNil(t, result)
		assert.NotEmpty(t, result.Error)
	}
	assert.Equal(t, "open", b.State())

	result, err := b.Translate(context.Background(), translator.ServiceConfig{}, req)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.Error)

	// the open breaker did not reach the service
	assert.Len(t, fake.Calls(), 2)
	assert.Error(t, b.IsAvailable(context.Background()))
}

func TestBreaker_CancellationDoesNotTrip(t *testing.T) {
	fake := &translatortest.Fake{
		TranslateFunc: func(ctx context.Context, req translator.TranslateRequest) (string, error) {
			return "", context.Canceled
		},
	}
	b := translator.NewBreaker(fake, 1, time.Minute, quietLogger())

	for i := 0; i < 3; i++ {
		_, err := b.Translate(context.Background(), translator.ServiceConfig{}, translator.TranslateRequest{Text: "x", TargetLang: "de"})
		assert.True(t, errors.Is(err, context.Canceled))
	}
	assert.Equal(t, "closed", b.State())
	assert.Len(t, fake.Calls(), 3)
}
