// Package translatortest provides a scriptable TranslationService for tests.
package translatortest

import (
	"context"
	"fmt"
	"sync"

	"github.com/valpere/justhighlight/internal/translator"
)

// Fake answers from a map or from TranslateFunc and records every request.
type Fake struct {
	// Answers maps request text to its translation. Unknown texts fail.
	Answers map[string]string
	// TranslateFunc, when set, replaces the Answers lookup.
	TranslateFunc func(ctx context.Context, req translator.TranslateRequest) (string, error)

	mu    sync.Mutex
	calls []translator.TranslateRequest
}

func (f *Fake) Name() string {
	return "fake"
}

func (f *Fake) Translate(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	result := &translator.ServiceResult{ServiceName: f.Name()}

	var (
		text string
		err  error
	)
	if f.TranslateFunc != nil {
		text, err = f.TranslateFunc(ctx, req)
	} else if answer, ok := f.Answers[req.Text]; ok {
		text = answer
	} else {
		err = fmt.Errorf("no answer for %q", req.Text)
	}

	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	result.TranslatedText = text
	result.Confidence = 1.0
	return result, nil
}

func (f *Fake) IsAvailable(ctx context.Context) error {
	return nil
}

func (f *Fake) SupportedLanguages(ctx context.Context) ([]string, error) {
	return nil, nil
}

// Calls returns a copy of the recorded requests.
func (f *Fake) Calls() []translator.TranslateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]translator.TranslateRequest(nil), f.calls...)
}

// Texts returns the text of every recorded request in call order.
func (f *Fake) Texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Text)
	}
	return out
}
