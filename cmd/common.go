/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"

	"github.com/valpere/justhighlight/internal/cache"
	"github.com/valpere/justhighlight/internal/config"
	"github.com/valpere/justhighlight/internal/dictionary"
	"github.com/valpere/justhighlight/internal/i18n"
	"github.com/valpere/justhighlight/internal/settings"
	"github.com/valpere/justhighlight/internal/store"
	"github.com/valpere/justhighlight/internal/translator"
)

// app is the wiring shared by the commands. Close releases the store.
type app struct {
	db       *store.Store
	settings *settings.Store
	catalog  *i18n.Catalog
	service  translator.TranslationService
	cache    *cache.Cache
	dict     *dictionary.Service
}

func newApp(cfg *config.Config) (*app, error) {
	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	catalog, err := i18n.New()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load ui texts: %w", err)
	}

	service, err := buildService(cfg.Translator)
	if err != nil {
		db.Close()
		return nil, err
	}

	prefs := settings.NewStore(cfg.Settings.Path)
	c := cache.New(db, service, serviceConfig(cfg.Translator), logger)

	return &app{
		db:       db,
		settings: prefs,
		catalog:  catalog,
		service:  service,
		cache:    c,
		dict:     dictionary.NewService(db, c, prefs, catalog, logger),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// buildService constructs the configured remote translation service,
// wrapped in a circuit breaker unless disabled.
func buildService(tc config.TranslatorConfig) (translator.TranslationService, error) {
	var svc translator.TranslationService

	switch tc.Service {
	case "gtx", "":
		svc = translator.NewGTXService(tc.BaseURL, tc.Timeout)
	case "google":
		svc = translator.NewGoogleService(tc.Credentials)
	case "mymemory":
		svc = translator.NewMyMemoryService(tc.Email)
	default:
		return nil, fmt.Errorf("unknown translation service: %s", tc.Service)
	}

	if !tc.Breaker.Enabled {
		return svc, nil
	}
	return translator.NewBreaker(svc, tc.Breaker.MaxFailures, tc.Breaker.OpenTimeout, logger), nil
}

func serviceConfig(tc config.TranslatorConfig) translator.ServiceConfig {
	return translator.ServiceConfig{
		Credentials: tc.Credentials,
		BaseURL:     tc.BaseURL,
		Timeout:     tc.Timeout,
		Email:       tc.Email,
	}
}
