package translator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Breaker wraps a TranslationService in a circuit breaker. After
// maxFailures consecutive failures it fails fast for openTimeout instead of
// calling the remote endpoint. It never retries.
type Breaker struct {
	next TranslationService
	cb   *gobreaker.CircuitBreaker
}

func NewBreaker(next TranslationService, maxFailures uint32, openTimeout time.Duration, logger *slog.Logger) *Breaker {
	if logger == nil {
		logger = slog.Default()
	}
	if maxFailures == 0 {
		maxFailures = 5
	}

	settings := gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// A caller giving up is not the remote's fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("translation breaker state changed",
				"service", name, "from", from.String(), "to", to.String())
		},
	}

	return &Breaker{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *Breaker) Name() string {
	return b.next.Name()
}

func (b *Breaker) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	var result *ServiceResult
	_, err := b.cb.Execute(func() (interface{}, error) {
		r, err := b.next.Translate(ctx, cfg, req)
		result = r
		return r, err
	})

	if result == nil {
		result = &ServiceResult{ServiceName: b.Name()}
	}
	if err != nil && result.Error == "" {
		result.Error = err.Error()
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return result, fmt.Errorf("%s unavailable: %w", b.Name(), err)
	}
	return result, err
}

// State reports the breaker state ("closed", "half-open" or "open").
func (b *Breaker) State() string {
	return b.cb.State().String()
}

func (b *Breaker) IsAvailable(ctx context.Context) error {
	if b.cb.State() == gobreaker.StateOpen {
		return fmt.Errorf("%s unavailable: %w", b.Name(), gobreaker.ErrOpenState)
	}
	return b.next.IsAvailable(ctx)
}

func (b *Breaker) SupportedLanguages(ctx context.Context) ([]string, error) {
	return b.next.SupportedLanguages(ctx)
}
