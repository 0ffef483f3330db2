// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/momeni/realty/pkg/core/log"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management actions",
	Long: `Database management actions can be chosen by sub-commands.
For a fresh installation, the init action creates the properties table
and its indexes.`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the properties table and its indexes",
	Long: `Create the properties table and its indexes in the database
which is described by the config file, using the DDL of its driver.
Existing tables are kept intact, so running init again is harmless.
The config file itself is not modified.`,
	RunE: initDB,
	Args: cobra.NoArgs,
}

func initDB(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	c, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := c.ConnectionPool(ctx)
	if err != nil {
		return fmt.Errorf("creating DB pool: %w", err)
	}
	defer p.Close()
	if err = c.Database.InitSchema(ctx, p); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	log.Info(ctx, "schema is initialized",
		slog.String("driver", c.Database.Driver),
		slog.String("version", c.SchemaVersion().String()),
	)
	return nil
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(initCmd)
}
