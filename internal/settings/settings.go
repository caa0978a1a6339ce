// Package settings is the sync scope: the handful of user preferences that
// follow the user between browsers, kept in one YAML file.
package settings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

const (
	KeyLanguage       = "language"
	KeyUILanguage     = "uiLanguage"
	KeyTheme          = "theme"
	KeyAutoTranslate  = "autoTranslate"
	KeyClickTranslate = "clickTranslate"
)

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

const (
	DefaultLanguage = "en"
	DefaultTheme    = ThemeDark
)

// ErrUnknownKey is returned by ParsePatch for a key that is not a setting.
var ErrUnknownKey = errors.New("unknown setting")

type Settings struct {
	Language       string `mapstructure:"language" json:"language"`
	UILanguage     string `mapstructure:"uilanguage" json:"uiLanguage"`
	Theme          string `mapstructure:"theme" json:"theme"`
	AutoTranslate  bool   `mapstructure:"autotranslate" json:"autoTranslate"`
	ClickTranslate bool   `mapstructure:"clicktranslate" json:"clickTranslate"`
}

// Defaults returns the settings of a fresh install.
func Defaults() Settings {
	return Settings{Language: DefaultLanguage, Theme: DefaultTheme}
}

// Normalize replaces empty values with their defaults.
func (s Settings) Normalize() Settings {
	if strings.TrimSpace(s.Language) == "" {
		s.Language = DefaultLanguage
	}
	if strings.TrimSpace(s.Theme) == "" {
		s.Theme = DefaultTheme
	}
	return s
}

// UI returns the language for user-facing texts. It follows the target
// language unless set on its own.
func (s Settings) UI() string {
	if s.UILanguage != "" {
		return s.UILanguage
	}
	if s.Language != "" {
		return s.Language
	}
	return DefaultLanguage
}

// Patch is a partial update. Nil fields are left alone.
type Patch struct {
	Language       *string `json:"language,omitempty"`
	UILanguage     *string `json:"uiLanguage,omitempty"`
	Theme          *string `json:"theme,omitempty"`
	AutoTranslate  *bool   `json:"autoTranslate,omitempty"`
	ClickTranslate *bool   `json:"clickTranslate,omitempty"`
}

// Changes reports which groups of settings an update actually modified.
type Changes struct {
	Theme    bool
	Language bool
	Any      bool
}

// Store reads and writes the settings file. Every Load reads the file
// again, so edits made by another process are picked up.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the stored settings with defaults for anything unset. A
// missing file yields the defaults.
func (s *Store) Load(ctx context.Context) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (Settings, error) {
	v := s.viper()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("failed to read settings: %w", err)
		}
	}

	var out Settings
	if err := v.Unmarshal(&out); err != nil {
		return Settings{}, fmt.Errorf("invalid settings format: %w", err)
	}
	return out.Normalize(), nil
}

// Save writes all settings, replacing the file.
func (s *Store) Save(ctx context.Context, settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(settings)
}

func (s *Store) save(settings Settings) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set(KeyLanguage, settings.Language)
	v.Set(KeyUILanguage, settings.UILanguage)
	v.Set(KeyTheme, settings.Theme)
	v.Set(KeyAutoTranslate, settings.AutoTranslate)
	v.Set(KeyClickTranslate, settings.ClickTranslate)

	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// Update applies patch on top of the stored settings and saves the result.
func (s *Store) Update(ctx context.Context, patch Patch) (Settings, Changes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.load()
	if err != nil {
		return Settings{}, Changes{}, err
	}

	after := before
	if patch.Language != nil {
		after.Language = *patch.Language
	}
	if patch.UILanguage != nil {
		after.UILanguage = *patch.UILanguage
	}
	if patch.Theme != nil {
		after.Theme = *patch.Theme
	}
	if patch.AutoTranslate != nil {
		after.AutoTranslate = *patch.AutoTranslate
	}
	if patch.ClickTranslate != nil {
		after.ClickTranslate = *patch.ClickTranslate
	}
	after = after.Normalize()

	changes := Changes{
		Theme:    after.Theme != before.Theme,
		Language: after.Language != before.Language || after.UI() != before.UI(),
	}
	changes.Any = after != before

	if err := s.save(after); err != nil {
		return Settings{}, Changes{}, err
	}
	return after, changes, nil
}

// ParsePatch builds a Patch from a key and its textual value, as typed on
// the command line. Keys are matched case-insensitively.
func ParsePatch(key, value string) (Patch, error) {
	var p Patch
	switch strings.ToLower(key) {
	case strings.ToLower(KeyLanguage):
		p.Language = &value
	case strings.ToLower(KeyUILanguage):
		p.UILanguage = &value
	case strings.ToLower(KeyTheme):
		p.Theme = &value
	case strings.ToLower(KeyAutoTranslate), strings.ToLower(KeyClickTranslate):
		b, err := strconv.ParseBool(value)
		if err != nil {
			return Patch{}, fmt.Errorf("invalid value for %s: %w", key, err)
		}
		if strings.EqualFold(key, KeyAutoTranslate) {
			p.AutoTranslate = &b
		} else {
			p.ClickTranslate = &b
		}
	default:
		return Patch{}, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return p, nil
}

// Merge overlays the non-nil fields of other onto p.
func (p Patch) Merge(other Patch) Patch {
	if other.Language != nil {
		p.Language = other.Language
	}
	if other.UILanguage != nil {
		p.UILanguage = other.UILanguage
	}
	if other.Theme != nil {
		p.Theme = other.Theme
	}
	if other.AutoTranslate != nil {
		p.AutoTranslate = other.AutoTranslate
	}
	if other.ClickTranslate != nil {
		p.ClickTranslate = other.ClickTranslate
	}
	return p
}

func (s *Store) viper() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("yaml")
	v.SetDefault(KeyLanguage, DefaultLanguage)
	v.SetDefault(KeyUILanguage, "")
	v.SetDefault(KeyTheme, DefaultTheme)
	v.SetDefault(KeyAutoTranslate, false)
	v.SetDefault(KeyClickTranslate, false)
	return v
}
