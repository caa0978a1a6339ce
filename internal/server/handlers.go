package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/valpere/justhighlight/internal/boundary"
	"github.com/valpere/justhighlight/internal/dictionary"
	"github.com/valpere/justhighlight/internal/events"
	"github.com/valpere/justhighlight/internal/i18n"
	"github.com/valpere/justhighlight/internal/popup"
	"github.com/valpere/justhighlight/internal/session"
	"github.com/valpere/justhighlight/internal/settings"
	"github.com/valpere/justhighlight/internal/translator"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	resp := errorResponse{Error: msg}
	if err != nil {
		resp.Detail = err.Error()
		if status >= http.StatusInternalServerError {
			s.logger.Error(msg, "path", r.URL.Path, "error", err)
		}
	}
	writeJSON(w, status, resp)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type resolveRequest struct {
	Text    string               `json:"text"`
	Offset  int                  `json:"offset"`
	Pointer boundary.Point       `json:"pointer"`
	Glyphs  boundary.GlyphLayout `json:"glyphs"`
}

type resolveResponse struct {
	Word  string        `json:"word"`
	Start int           `json:"start"`
	End   int           `json:"end"`
	Rect  boundary.Rect `json:"rect"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	m, ok := boundary.Resolve(req.Text, req.Offset, req.Pointer, req.Glyphs)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, resolveResponse{Word: m.Word, Start: m.Start, End: m.End, Rect: m.Rect})
}

type translateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type translateResponse struct {
	Text        string `json:"text"`
	Translation string `json:"translation"`
	Lang        string `json:"lang"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		s.writeError(w, r, http.StatusBadRequest, "empty text", nil)
		return
	}

	cfg, err := s.settings.Load(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "failed to load settings", err)
		return
	}

	source := req.Source
	if source == "" {
		source = translator.AutoSource
	}
	target := req.Target
	if target == "" {
		target = cfg.Language
	}

	translation, err := s.cache.Resolve(r.Context(), text, source, target)
	if err != nil {
		s.logger.Warn("translation failed", "text", text, "lang", target, "error", err)
		s.writeError(w, r, http.StatusBadGateway, s.catalog.T(cfg.UI(), i18n.PopupError), err)
		return
	}

	writeJSON(w, http.StatusOK, translateResponse{Text: text, Translation: translation, Lang: target})
}

func (s *Server) handleDictionaryList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.dict.List(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "failed to list dictionary", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

type addRequest struct {
	Word string `json:"word"`
}

func (s *Server) handleDictionaryAdd(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	res, err := s.dict.Add(r.Context(), req.Word)
	switch {
	case errors.Is(err, dictionary.ErrEmptyWord):
		s.writeError(w, r, http.StatusBadRequest, "empty word", nil)
		return
	case errors.Is(err, dictionary.ErrTranslationFailed):
		s.writeError(w, r, http.StatusBadGateway, "failed to translate word", err)
		return
	case err != nil:
		s.writeError(w, r, http.StatusInternalServerError, "failed to add word", err)
		return
	}

	status := http.StatusOK
	if res.Added {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

func (s *Server) handleDictionaryDelete(w http.ResponseWriter, r *http.Request) {
	// chi matches on RawPath when the client escaped the path differently
	// from Go, in which case the parameter is still escaped.
	word, err := url.PathUnescape(chi.URLParam(r, "word"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid word", err)
		return
	}

	err = s.dict.Delete(r.Context(), word, r.URL.Query().Get("lang"))
	switch {
	case errors.Is(err, dictionary.ErrEmptyWord):
		s.writeError(w, r, http.StatusBadRequest, "empty word", nil)
	case errors.Is(err, dictionary.ErrNotFound):
		s.writeError(w, r, http.StatusNotFound, "word not found", nil)
	case err != nil:
		s.writeError(w, r, http.StatusInternalServerError, "failed to delete word", err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleDictionaryReview(w http.ResponseWriter, r *http.Request) {
	review, err := s.dict.Review(r.Context(), r.URL.Query().Get("lang"))
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "failed to build review", err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (s *Server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.settings.Load(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleSettingsPut(w http.ResponseWriter, r *http.Request) {
	var patch settings.Patch
	if err := decode(w, r, &patch); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	cfg, changes, err := s.settings.Update(r.Context(), patch)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "failed to save settings", err)
		return
	}

	s.announce(r.Context(), cfg, changes)
	writeJSON(w, http.StatusOK, cfg)
}

// announce tells every surface about a settings update.
func (s *Server) announce(ctx context.Context, cfg settings.Settings, changes settings.Changes) {
	if !changes.Any {
		return
	}
	if changes.Theme {
		s.emit(ctx, events.ThemeChanged, map[string]string{"theme": cfg.Theme})
	}
	if changes.Language {
		s.emit(ctx, events.LanguageChanged, map[string]string{"language": cfg.Language, "uiLanguage": cfg.UI()})
	}
	s.emit(ctx, events.SettingsChanged, cfg)
}

func (s *Server) emit(ctx context.Context, name events.Name, payload any) {
	if _, err := s.bus.Emit(ctx, name, payload); err != nil {
		s.logger.Warn("failed to publish event", "name", name, "error", err)
	}
}

type eventRequest struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	name, err := events.Parse(req.Name)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "unknown event", err)
		return
	}

	ev := events.NewRaw(name, req.Payload)
	s.bus.Publish(r.Context(), ev)

	writeJSON(w, http.StatusAccepted, map[string]string{"id": ev.ID})
}

func (s *Server) handlePopupCurrent(w http.ResponseWriter, r *http.Request) {
	v, ok := s.popups.Current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type selectionRequest struct {
	Text string        `json:"text"`
	Rect boundary.Rect `json:"rect"`
}

func (s *Server) handlePopupSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	v, opened, err := s.session.OnSelection(r.Context(), req.Text, req.Rect)
	s.writePopup(w, r, v, opened, err)
}

func (s *Server) handlePopupClick(w http.ResponseWriter, r *http.Request) {
	var click session.Click
	if err := decode(w, r, &click); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	v, opened, err := s.session.OnClick(r.Context(), click)
	s.writePopup(w, r, v, opened, err)
}

func (s *Server) writePopup(w http.ResponseWriter, r *http.Request, v popup.View, opened bool, err error) {
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "failed to open popup", err)
		return
	}
	if !opened {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusAccepted, v)
}

func (s *Server) handlePopupGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var (
		v   popup.View
		err error
	)
	if r.URL.Query().Get("wait") == "true" {
		v, err = s.popups.Await(r.Context(), id)
	} else {
		v, err = s.popups.Get(id)
	}

	switch {
	case errors.Is(err, popup.ErrUnknownPopup):
		s.writeError(w, r, http.StatusNotFound, "unknown popup", nil)
	case err != nil:
		s.writeError(w, r, http.StatusRequestTimeout, "popup not settled", err)
	default:
		writeJSON(w, http.StatusOK, v)
	}
}

func (s *Server) handlePopupRegion(w http.ResponseWriter, r *http.Request) {
	var region boundary.Rect
	if err := decode(w, r, &region); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := s.popups.SetRegion(chi.URLParam(r, "id"), region); err != nil {
		s.writeError(w, r, http.StatusNotFound, "unknown popup", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePopupClose(w http.ResponseWriter, r *http.Request) {
	s.popups.Close(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}
