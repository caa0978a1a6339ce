// Package popup runs the ad-hoc translation popup: one popup at a time,
// opened for a selection or a clicked word, showing either the translation
// or a short error text.
//
// A popup moves requesting -> displaying -> dismissed, or straight from
// requesting to dismissed when it is closed or replaced first. Requests are
// never cancelled and never time out; the answer to a popup that is no
// longer current is dropped.
package popup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/valpere/justhighlight/internal/boundary"
	"github.com/valpere/justhighlight/internal/i18n"
)

type State string

const (
	Idle       State = "idle"
	Requesting State = "requesting"
	Displaying State = "displaying"
	Dismissed  State = "dismissed"
)

var transitions = map[State][]State{
	Idle:       {Requesting},
	Requesting: {Displaying, Dismissed},
	Displaying: {Dismissed},
}

var (
	ErrEmptyText         = errors.New("empty text")
	ErrInvalidTransition = errors.New("invalid popup transition")
	ErrUnknownPopup      = errors.New("unknown popup")
)

func canTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Resolver fetches a translation, normally through the translation cache.
type Resolver interface {
	Resolve(ctx context.Context, word, sourceLang, targetLang string) (string, error)
}

// Request describes what to translate and where the popup is anchored.
type Request struct {
	Text       string
	Anchor     boundary.Rect
	SourceLang string
	TargetLang string
	UILang     string
}

// View is a snapshot of a popup for rendering.
type View struct {
	ID       string        `json:"id"`
	State    State         `json:"state"`
	Title    string        `json:"title"`
	Text     string        `json:"text"`
	Body     string        `json:"body,omitempty"`
	Failed   bool          `json:"failed,omitempty"`
	Anchor   boundary.Rect `json:"anchor"`
	Region   boundary.Rect `json:"region"`
	OpenedAt time.Time     `json:"opened_at"`
}

// maxRetained bounds how many popups stay addressable by ID.
const maxRetained = 32

type popup struct {
	view    View
	uiLang  string
	seq     uint64
	settled chan struct{}
}

func (p *popup) transition(to State) error {
	if !canTransition(p.view.State, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.view.State, to)
	}
	p.view.State = to
	if to == Displaying || to == Dismissed {
		select {
		case <-p.settled:
		default:
			close(p.settled)
		}
	}
	return nil
}

// Manager owns the single current popup. Safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	current  *popup
	byID     map[string]*popup
	resolver Resolver
	catalog  *i18n.Catalog
	logger   *slog.Logger
	inflight sync.WaitGroup
	seq      uint64
}

func NewManager(resolver Resolver, catalog *i18n.Catalog, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if catalog == nil {
		catalog = i18n.MustNew()
	}
	return &Manager{
		resolver: resolver,
		catalog:  catalog,
		logger:   logger,
		byID:     make(map[string]*popup),
	}
}

// Open dismisses the current popup, if any, and opens a new one for req.
// The translation is requested in the background; use Await to wait for it.
func (m *Manager) Open(ctx context.Context, req Request) (View, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return View{}, ErrEmptyText
	}

	p := &popup{
		view: View{
			ID:       uuid.NewString(),
			State:    Idle,
			Title:    m.catalog.T(req.UILang, i18n.PopupTitle),
			Text:     text,
			Anchor:   req.Anchor,
			Region:   req.Anchor,
			OpenedAt: time.Now(),
		},
		uiLang:  req.UILang,
		settled: make(chan struct{}),
	}

	m.mu.Lock()
	m.dismissLocked()
	m.seq++
	p.seq = m.seq
	if err := p.transition(Requesting); err != nil {
		m.mu.Unlock()
		return View{}, err
	}
	m.current = p
	m.byID[p.view.ID] = p
	view := p.view
	m.mu.Unlock()

	m.logger.Debug("popup opened", "id", view.ID, "text", text, "lang", req.TargetLang)

	// The request outlives the caller's context: replacing or closing the
	// popup does not cancel it.
	reqCtx := context.WithoutCancel(ctx)
	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		translation, err := m.resolver.Resolve(reqCtx, text, req.SourceLang, req.TargetLang)
		m.complete(p, translation, err)
	}()

	return view, nil
}

func (m *Manager) complete(p *popup, translation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != p || p.view.State != Requesting {
		m.logger.Debug("discarding late translation", "id", p.view.ID)
		return
	}

	if err != nil {
		m.logger.Warn("popup translation failed", "id", p.view.ID, "text", p.view.Text, "error", err)
		p.view.Body = m.catalog.T(p.uiLang, i18n.PopupError)
		p.view.Failed = true
	} else {
		p.view.Body = translation
	}
	_ = p.transition(Displaying)
}

// Current returns the open popup, if any.
func (m *Manager) Current() (View, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return View{}, false
	}
	return m.current.view, true
}

// State returns the state of the current popup, or Idle when none is open.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return Idle
	}
	return m.current.view.State
}

// Get returns the last known view of popup id, open or dismissed.
func (m *Manager) Get(id string) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.byID[id]
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrUnknownPopup, id)
	}
	return p.view, nil
}

// Await blocks until popup id is displaying or dismissed, or ctx ends.
func (m *Manager) Await(ctx context.Context, id string) (View, error) {
	m.mu.Lock()
	p, ok := m.byID[id]
	m.mu.Unlock()
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrUnknownPopup, id)
	}

	select {
	case <-p.settled:
	case <-ctx.Done():
		return View{}, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return p.view, nil
}

// SetRegion records where the popup was actually drawn, for ClickAt.
func (m *Manager) SetRegion(id string, region boundary.Rect) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil || m.current.view.ID != id {
		return fmt.Errorf("%w: %s", ErrUnknownPopup, id)
	}
	m.current.view.Region = region
	return nil
}

// Close dismisses the current popup when id is empty or matches it.
// Closing an already dismissed popup is a no-op.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil || (id != "" && m.current.view.ID != id) {
		return false
	}
	m.dismissLocked()
	return true
}

// ClickAt dismisses the current popup when pt falls outside its region.
func (m *Manager) ClickAt(pt boundary.Point) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil || m.current.view.Region.Contains(pt) {
		return false
	}
	m.dismissLocked()
	return true
}

// Wait blocks until every background request has returned.
func (m *Manager) Wait() {
	m.inflight.Wait()
}

func (m *Manager) dismissLocked() {
	if m.current == nil {
		return
	}
	p := m.current
	m.current = nil
	if err := p.transition(Dismissed); err != nil {
		m.logger.Debug("popup already settled", "id", p.view.ID, "error", err)
		return
	}
	m.logger.Debug("popup dismissed", "id", p.view.ID)

	m.pruneLocked()
}

// pruneLocked forgets the oldest dismissed popups once more than
// maxRetained are addressable.
func (m *Manager) pruneLocked() {
	excess := len(m.byID) - maxRetained
	if excess <= 0 {
		return
	}

	dismissed := make([]*popup, 0, len(m.byID))
	for _, p := range m.byID {
		if p.view.State == Dismissed {
			dismissed = append(dismissed, p)
		}
	}
	sort.Slice(dismissed, func(i, j int) bool {
		return dismissed[i].seq < dismissed[j].seq
	})

	for _, p := range dismissed[:min(excess, len(dismissed))] {
		delete(m.byID, p.view.ID)
	}
}
