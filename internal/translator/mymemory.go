package translator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultMyMemoryURL = "https://api.mymemory.translated.net/get"

// MyMemoryService is a keyless fallback. It cannot auto-detect, so an
// auto source is sent as English.
type MyMemoryService struct {
	email   string
	baseURL string
	client  *resty.Client
}

func NewMyMemoryService(email string) *MyMemoryService {
	return &MyMemoryService{
		email:   email,
		baseURL: DefaultMyMemoryURL,
		client:  resty.New().SetTimeout(30 * time.Second),
	}
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string  `json:"translatedText"`
		Match          float64 `json:"match"`
	} `json:"responseData"`
	ResponseStatus  int    `json:"responseStatus"`
	ResponseDetails string `json:"responseDetails"`
}

func (s *MyMemoryService) Name() string {
	return "mymemory"
}

func (s *MyMemoryService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	sourceLang := req.SourceLang
	if sourceLang == "" || sourceLang == AutoSource {
		sourceLang = "en"
	}

	params := map[string]string{
		"q":        req.Text,
		"langpair": fmt.Sprintf("%s|%s", sourceLang, req.TargetLang),
	}
	if s.email != "" {
		params["de"] = s.email
	}

	var body myMemoryResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&body).
		Get(s.baseURL)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		result.Error = fmt.Sprintf("API returned status %d", resp.StatusCode())
		return result, fmt.Errorf("API returned status %d", resp.StatusCode())
	}

	if body.ResponseStatus != http.StatusOK {
		result.Error = fmt.Sprintf("API error: %s (%d)", body.ResponseDetails, body.ResponseStatus)
		return result, fmt.Errorf("API error: %s", body.ResponseDetails)
	}

	result.TranslatedText = body.ResponseData.TranslatedText
	result.Confidence = body.ResponseData.Match

	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}

	return result, nil
}

func (s *MyMemoryService) IsAvailable(ctx context.Context) error {
	return nil
}

func (s *MyMemoryService) SupportedLanguages(ctx context.Context) ([]string, error) {
	return []string{
		"en", "es", "fr", "de", "it", "pt", "ru", "ja", "ko", "zh",
		"ar", "nl", "pl", "tr", "sv", "da", "no", "fi", "el", "he",
		"th", "vi", "id", "ms", "cs", "hu", "ro", "uk", "bg", "ca", "kk",
	}, nil
}
