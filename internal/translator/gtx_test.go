package translator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGTXResponse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{
			name: "single segment",
			body: `[[["Яблоко","Apple",null,null,10]],null,"en"]`,
			want: "Яблоко",
		},
		{
			name: "segments are concatenated",
			body: `[[["Hallo ","Hello ",null,null,3],["Welt","world",null,null,3]],null,"en"]`,
			want: "Hallo Welt",
		},
		{
			name: "non-string fragments skipped",
			body: `[[[null,"x"],["ok","ok"]]]`,
			want: "ok",
		},
		{name: "empty array", body: `[]`, wantErr: true},
		{name: "null head", body: `[null]`, wantErr: true},
		{name: "no segments", body: `[[]]`, wantErr: true},
		{name: "not json", body: `<html>`, wantErr: true},
		{name: "object", body: `{"error":"x"}`, wantErr: true},
		{name: "blank translation", body: `[[["  ","x"]]]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGTXResponse([]byte(tt.body))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnexpectedShape)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGTXService_Translate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "gtx", q.Get("client"))
		assert.Equal(t, "auto", q.Get("sl"))
		assert.Equal(t, "ru", q.Get("tl"))
		assert.Equal(t, "t", q.Get("dt"))
		assert.Equal(t, "Apple & pear", q.Get("q"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[[["Яблоко и груша","Apple & pear",null,null,10]],null,"en"]`))
	}))
	defer server.Close()

	svc := NewGTXService(server.URL, 0)
	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{
		Text:       "Apple & pear",
		TargetLang: "ru",
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "Яблоко и груша", result.TranslatedText)
	assert.Equal(t, "gtx", result.ServiceName)
	assert.Empty(t, result.Error)
}

func TestGTXService_Translate_NonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := NewGTXService(server.URL, 0)
	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{
		Text:       "Hello",
		SourceLang: "en",
		TargetLang: "de",
	})

	assert.Error(t, err)
	require.NotNil(t, result)
	assert.Contains(t, result.Error, "429")
}

func TestGTXService_Translate_Malformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected":true}`))
	}))
	defer server.Close()

	svc := NewGTXService(server.URL, 0)
	_, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{Text: "Hello", TargetLang: "de"})
	assert.ErrorIs(t, err, ErrUnexpectedShape)
}

func TestGTXService_Translate_InvalidTarget(t *testing.T) {
	svc := NewGTXService("http://127.0.0.1:1", 0)

	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{Text: "Hello", TargetLang: "not a tag!"})
	assert.Error(t, err)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.Error)
}

func TestGTXService_Translate_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	svc := NewGTXService(url, 0)
	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{Text: "Hello", TargetLang: "de"})
	assert.Error(t, err)
	require.NotNil(t, result)
	assert.Contains(t, result.Error, "request failed")
}

func TestGTXService_Name(t *testing.T) {
	svc := NewGTXService("", 0)

	assert.Equal(t, "gtx", svc.Name())
	assert.Equal(t, DefaultGTXURL, svc.baseURL)
	assert.NoError(t, svc.IsAvailable(context.Background()))

	langs, err := svc.SupportedLanguages(context.Background())
	require.NoError(t, err)
	assert.Contains(t, langs, "kk")
}
