// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package command provides the root and sub-commands for the realty
// web service. Commands are organized using the cobra library.
// The root command starts the web server itself, the "db init"
// sub-command creates the database schema, and the "config"
// sub-command prints the effective configuration settings.
//
//	./reweb [-c /path/of/config.yaml] [-l :8080]   # start web server
//	./reweb db init [-c /path/of/config.yaml]
//	./reweb config [-c /path/of/config.yaml]
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/momeni/realty/pkg/adapter/config"
	"github.com/momeni/realty/pkg/adapter/config/cfg1"
	"github.com/momeni/realty/pkg/adapter/restful/gin/routes"
	"github.com/momeni/realty/pkg/core/log"
	"github.com/spf13/cobra"
)

var (
	cfgPath    string
	listenAddr string
)

// shutdownTimeout bounds the graceful shutdown of the web server.
const shutdownTimeout = 15 * time.Second

var rootCmd = &cobra.Command{
	Use:   "reweb",
	Short: "A real-estate property listing and cash-flow web service",
	Long: `A real-estate property listing and cash-flow web service
which keeps property records in a PostgreSQL or SQLite database,
lists them with composable filters one cursor-based page at a time,
and computes the rental investment metrics (mortgage payment, net
operating income, cap rate, and cash-on-cash return) of a property.
The core use cases and models are kept independent of the adapters
(GORM, sqlx, Gin Gonic, ccache) which are wired by the config file.`,
	RunE: startWebServer,
	Args: cobra.NoArgs,
}

func startWebServer(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()
	c, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := c.ConnectionPool(ctx)
	if err != nil {
		return fmt.Errorf("creating DB pool: %w", err)
	}
	defer p.Close()
	if c.Database.Driver == cfg1.DriverSQLite {
		// an embedded database is owned by this process
		if err = c.Database.InitSchema(ctx, p); err != nil {
			return fmt.Errorf("initializing schema: %w", err)
		}
	}
	e := c.NewEngine()
	release, err := routes.Register(ctx, e, p, c.NewPropertiesRepo(), c)
	if err != nil {
		return fmt.Errorf("registering routes: %w", err)
	}
	defer release()
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", slog.String("addr", listenAddr))
		errs <- srv.ListenAndServe()
	}()
	select {
	case err = <-errs:
		return fmt.Errorf("running web server: %w", err)
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down web server: %w", err)
	}
	if err = <-errs; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("running web server: %w", err)
	}
	return nil
}

// loadConfig loads the cfgPath config file and installs its logger.
func loadConfig() (*cfg1.Config, error) {
	c, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	c.SetupLogger(os.Stderr)
	return c, nil
}

// Execute runs the rootCmd which in turn parses CLI arguments and
// flags and runs the most specific cobra command. The exit code is
// zero for success and one for failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(fixConfigPath, fixListenAddr)
	rootCmd.PersistentFlags().StringVarP(
		&cfgPath, "config", "c", "", "config file path",
	)
	rootCmd.Flags().StringVarP(
		&listenAddr, "listen", "l", "", "listen address, like :8080",
	)
}

// fixConfigPath ensures that cfgPath is set respectively by either the
// CLI args, the CONFIG_FILE environment variable, or its default value.
func fixConfigPath() {
	if cfgPath != "" {
		return
	}
	var found bool
	if cfgPath, found = os.LookupEnv("CONFIG_FILE"); !found {
		// the default path should usually be in the /etc directory
		cfgPath = "configs/sample-config.yaml"
	}
}

// fixListenAddr ensures that listenAddr is set respectively by either
// the CLI args, the PORT environment variable, or the :8080 address.
func fixListenAddr() {
	if listenAddr != "" {
		return
	}
	listenAddr = ":8080"
	if port, found := os.LookupEnv("PORT"); found && port != "" {
		listenAddr = ":" + port
	}
}
