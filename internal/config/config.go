package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const EnvPrefix = "JHI"

type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Settings   SettingsConfig   `mapstructure:"settings"`
	Translator TranslatorConfig `mapstructure:"translator"`
	Server     ServerConfig     `mapstructure:"server"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type SettingsConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type TranslatorConfig struct {
	Service     string        `mapstructure:"service" validate:"required,oneof=gtx google mymemory"`
	BaseURL     string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gte=0"`
	Credentials string        `mapstructure:"credentials" validate:"omitempty,file"`
	Email       string        `mapstructure:"email" validate:"omitempty,email"`
	Breaker     BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig guards the remote service with a circuit breaker. It is off
// by default: while open, every miss fails without a remote call, review
// batches included.
type BreakerConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxFailures uint32        `mapstructure:"max_failures" validate:"gte=1"`
	OpenTimeout time.Duration `mapstructure:"open_timeout" validate:"gt=0"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required,hostname_port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	EventBuffer     int           `mapstructure:"event_buffer" validate:"gte=1"`
}

// DataDir is where the database and the settings file live by default.
func DataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "jhi")
	}
	return ".jhi"
}

// Load reads configFile, or jhi.yaml from the working directory or the
// data directory when configFile is empty. A missing file is not an error.
// JHI_* environment variables override file values, e.g.
// JHI_TRANSLATOR_SERVICE=mymemory.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("jhi")
		v.AddConfigPath(".")
		v.AddConfigPath(DataDir())
	}

	dataDir := DataDir()
	v.SetDefault("database.path", filepath.Join(dataDir, "jhi.db"))
	v.SetDefault("settings.path", filepath.Join(dataDir, "settings.yaml"))
	v.SetDefault("translator.service", "gtx")
	v.SetDefault("translator.base_url", "")
	v.SetDefault("translator.timeout", time.Duration(0))
	v.SetDefault("translator.credentials", "")
	v.SetDefault("translator.email", "")
	v.SetDefault("translator.breaker.enabled", false)
	v.SetDefault("translator.breaker.max_failures", 5)
	v.SetDefault("translator.breaker.open_timeout", 30*time.Second)
	v.SetDefault("server.addr", "127.0.0.1:7428")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.event_buffer", 16)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Credentials also come from the variable the Google SDK already uses.
	if err := v.BindEnv("translator.credentials", "JHI_TRANSLATOR_CREDENTIALS", "GOOGLE_APPLICATION_CREDENTIALS"); err != nil {
		return nil, fmt.Errorf("failed to bind GOOGLE_APPLICATION_CREDENTIALS environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("configuration file found but could not be read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg and reports every problem in one error.
func Validate(cfg *Config) error {
	validate, trans, err := newValidator()
	if err != nil {
		return fmt.Errorf("failed to create new validator: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return fmt.Errorf("failed to validate configuration: %w", err)
		}
		msgs := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			msgs = append(msgs, e.Translate(trans))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	return nil
}
