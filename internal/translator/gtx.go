package translator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/text/language"
)

// DefaultGTXURL is the public web endpoint used by browser translate widgets.
const DefaultGTXURL = "https://translate.googleapis.com/translate_a/single"

// ErrUnexpectedShape is returned when the endpoint answers with something
// other than the nested segment array.
var ErrUnexpectedShape = errors.New("unexpected response shape")

// GTXService calls the keyless Google web endpoint (client=gtx). It has no
// SLA and no batch mode: one request per text.
type GTXService struct {
	baseURL string
	client  *resty.Client
}

// NewGTXService returns a client for baseURL (DefaultGTXURL when empty).
// A zero timeout leaves requests unbounded.
func NewGTXService(baseURL string, timeout time.Duration) *GTXService {
	if baseURL == "" {
		baseURL = DefaultGTXURL
	}
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &GTXService{baseURL: baseURL, client: client}
}

func (s *GTXService) Name() string {
	return "gtx"
}

func (s *GTXService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	if _, err := language.Parse(req.TargetLang); err != nil {
		result.Error = fmt.Sprintf("invalid target language: %v", err)
		return result, fmt.Errorf("invalid target language: %w", err)
	}

	sourceLang := req.SourceLang
	if sourceLang == "" {
		sourceLang = AutoSource
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client": "gtx",
			"sl":     sourceLang,
			"tl":     req.TargetLang,
			"dt":     "t",
			"q":      req.Text,
		}).
		Get(s.baseURL)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		result.Error = fmt.Sprintf("API returned status %d", resp.StatusCode())
		return result, fmt.Errorf("API returned status %d", resp.StatusCode())
	}

	text, err := ParseGTXResponse(resp.Body())
	if err != nil {
		result.Error = fmt.Sprintf("failed to decode response: %v", err)
		return result, fmt.Errorf("failed to decode response: %w", err)
	}

	result.TranslatedText = text
	result.Confidence = 1.0
	return result, nil
}

// ParseGTXResponse extracts the translation from a response body of the form
// [[["seg1","orig1",...],["seg2","orig2",...]],...]. Segment texts are
// concatenated in order.
func ParseGTXResponse(body []byte) (string, error) {
	var data []json.RawMessage
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	if len(data) == 0 {
		return "", ErrUnexpectedShape
	}

	var segments []json.RawMessage
	if err := json.Unmarshal(data[0], &segments); err != nil || len(segments) == 0 {
		return "", ErrUnexpectedShape
	}

	var b strings.Builder
	for _, raw := range segments {
		var seg []json.RawMessage
		if err := json.Unmarshal(raw, &seg); err != nil || len(seg) == 0 {
			continue
		}
		var fragment string
		if err := json.Unmarshal(seg[0], &fragment); err != nil {
			continue
		}
		b.WriteString(fragment)
	}

	if strings.TrimSpace(b.String()) == "" {
		return "", ErrUnexpectedShape
	}
	return b.String(), nil
}

func (s *GTXService) IsAvailable(ctx context.Context) error {
	return nil
}

func (s *GTXService) SupportedLanguages(ctx context.Context) ([]string, error) {
	return []string{
		"en", "ru", "kk", "es", "fr", "de", "ja", "uk", "it", "pt",
		"pl", "tr", "zh", "ko", "ar", "nl", "sv", "cs", "el", "he",
	}, nil
}
