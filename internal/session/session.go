// Package session holds the per-page state that reacts to user input: the
// current settings and the popup, driven by selections, clicks and bus
// events.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/valpere/justhighlight/internal/boundary"
	"github.com/valpere/justhighlight/internal/events"
	"github.com/valpere/justhighlight/internal/popup"
	"github.com/valpere/justhighlight/internal/settings"
	"github.com/valpere/justhighlight/internal/translator"
)

// SettingsSource provides the current sync settings.
type SettingsSource interface {
	Load(ctx context.Context) (settings.Settings, error)
}

// Popups is the popup manager as seen by the session.
type Popups interface {
	Open(ctx context.Context, req popup.Request) (popup.View, error)
	Close(id string) bool
	ClickAt(pt boundary.Point) bool
}

// Click is a click on page text as reported by the extension.
type Click struct {
	Text    string               `json:"text"`
	Offset  int                  `json:"offset"`
	Pointer boundary.Point       `json:"pointer"`
	Glyphs  boundary.GlyphLayout `json:"glyphs"`
}

type Controller struct {
	src    SettingsSource
	popups Popups
	logger *slog.Logger

	mu          sync.RWMutex
	settings    settings.Settings
	overlayOpen bool
}

// New loads the settings once and returns a ready controller.
func New(ctx context.Context, src SettingsSource, popups Popups, logger *slog.Logger) (*Controller, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{src: src, popups: popups, logger: logger}
	if err := c.reload(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Settings returns the settings the controller currently acts on.
func (c *Controller) Settings() settings.Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// OverlayOpen reports whether the dictionary overlay is shown.
func (c *Controller) OverlayOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.overlayOpen
}

// OnSelection opens a popup for a text selection when auto-translate is on.
// It reports whether a popup was opened.
func (c *Controller) OnSelection(ctx context.Context, text string, rect boundary.Rect) (popup.View, bool, error) {
	cfg := c.Settings()
	if !cfg.AutoTranslate {
		return popup.View{}, false, nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return popup.View{}, false, nil
	}
	return c.open(ctx, cfg, text, rect)
}

// OnClick resolves the clicked word and opens a popup for it when
// click-to-translate is on. A click that misses every word only dismisses
// the current popup if it fell outside it.
func (c *Controller) OnClick(ctx context.Context, click Click) (popup.View, bool, error) {
	c.popups.ClickAt(click.Pointer)

	cfg := c.Settings()
	if !cfg.ClickTranslate {
		return popup.View{}, false, nil
	}

	m, ok := boundary.Resolve(click.Text, click.Offset, click.Pointer, click.Glyphs)
	if !ok {
		return popup.View{}, false, nil
	}
	return c.open(ctx, cfg, m.Word, m.Rect)
}

func (c *Controller) open(ctx context.Context, cfg settings.Settings, text string, rect boundary.Rect) (popup.View, bool, error) {
	v, err := c.popups.Open(ctx, popup.Request{
		Text:       text,
		Anchor:     rect,
		SourceLang: translator.AutoSource,
		TargetLang: cfg.Language,
		UILang:     cfg.UI(),
	})
	if err != nil {
		return popup.View{}, false, fmt.Errorf("failed to open popup: %w", err)
	}
	return v, true, nil
}

// HandleEvent applies one bus event. Settings events re-read the sync store
// rather than trusting the payload, so duplicates and reordering converge on
// the stored state.
func (c *Controller) HandleEvent(ctx context.Context, ev events.Event) error {
	switch ev.Name {
	case events.SettingsChanged, events.ThemeChanged, events.LanguageChanged:
		return c.reload(ctx)
	case events.DictionaryPopupOpen:
		c.mu.Lock()
		c.overlayOpen = true
		c.mu.Unlock()
		c.popups.Close("")
	case events.DictionaryPopupClose:
		c.mu.Lock()
		c.overlayOpen = false
		c.mu.Unlock()
		c.popups.Close("")
	default:
		c.logger.Debug("ignoring event", "name", ev.Name, "id", ev.ID)
	}
	return nil
}

// Run applies events from sub until ctx ends or the subscription closes.
// A failing event is logged and does not stop the loop.
func (c *Controller) Run(ctx context.Context, sub *events.Subscription) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-sub.C():
			if !ok {
				return nil
			}
			if err := c.HandleEvent(ctx, ev); err != nil {
				c.logger.Warn("event handling failed", "name", ev.Name, "id", ev.ID, "error", err)
			}
		}
	}
}

func (c *Controller) reload(ctx context.Context) error {
	cfg, err := c.src.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	c.mu.Lock()
	prev := c.settings
	c.settings = cfg
	c.mu.Unlock()

	if prev != cfg {
		c.logger.Debug("session settings updated",
			"language", cfg.Language, "theme", cfg.Theme,
			"autoTranslate", cfg.AutoTranslate, "clickTranslate", cfg.ClickTranslate)
	}
	return nil
}
