package translator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMyMemoryTestService(t *testing.T, handler http.HandlerFunc) *MyMemoryService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc := NewMyMemoryService("test@example.com")
	svc.baseURL = server.URL
	return svc
}

func TestMyMemoryService_Translate(t *testing.T) {
	svc := newMyMemoryTestService(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "Hello", q.Get("q"))
		assert.Equal(t, "en|uk", q.Get("langpair"))
		assert.Equal(t, "test@example.com", q.Get("de"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"responseData":{"translatedText":"Привіт","match":1.4},"responseStatus":200}`))
	})

	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{
		Text:       "Hello",
		SourceLang: AutoSource,
		TargetLang: "uk",
	})

	require.NoError(t, err)
	assert.Equal(t, "Привіт", result.TranslatedText)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestMyMemoryService_Translate_APIError(t *testing.T) {
	svc := newMyMemoryTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"responseData":{"translatedText":""},"responseStatus":403,"responseDetails":"INVALID LANGUAGE PAIR"}`))
	})

	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{
		Text:       "Hello",
		SourceLang: "en",
		TargetLang: "xx",
	})

	assert.Error(t, err)
	require.NotNil(t, result)
	assert.Contains(t, result.Error, "INVALID LANGUAGE PAIR")
}

func TestMyMemoryService_Translate_HTTPStatus(t *testing.T) {
	svc := newMyMemoryTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{Text: "Hello", TargetLang: "de"})
	assert.Error(t, err)
}

func TestMyMemoryService_Name(t *testing.T) {
	svc := NewMyMemoryService("")

	assert.Equal(t, "mymemory", svc.Name())
	assert.NoError(t, svc.IsAvailable(context.Background()))

	langs, err := svc.SupportedLanguages(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, langs)
}
