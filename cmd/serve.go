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
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/valpere/justhighlight/internal/events"
	"github.com/valpere/justhighlight/internal/popup"
	"github.com/valpere/justhighlight/internal/server"
	"github.com/valpere/justhighlight/internal/session"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the companion HTTP API for the browser extension",
	Long: `Run the companion the browser extension talks to. It listens on
localhost only (server.addr, default 127.0.0.1:7428) until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		bus := events.NewBus(cfg.Server.EventBuffer)
		defer bus.Close()

		popups := popup.NewManager(a.cache, a.catalog, logger)
		defer popups.Wait()

		sess, err := session.New(ctx, a.settings, popups, logger)
		if err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}

		srv := server.New(server.Deps{
			Dictionary: a.dict,
			Cache:      a.cache,
			Settings:   a.settings,
			Bus:        bus,
			Popups:     popups,
			Session:    sess,
			Catalog:    a.catalog,
			Logger:     logger,
		})

		logger.Info("starting companion",
			"addr", cfg.Server.Addr,
			"service", a.service.Name(),
			"database", cfg.Database.Path,
			"settings", a.settings.Path())

		g, gctx := errgroup.WithContext(ctx)
		sub := bus.Subscribe(gctx)

		g.Go(func() error {
			return srv.Run(gctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
		})
		g.Go(func() error {
			if err := sess.Run(gctx, sub); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})

		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from config)")
}
