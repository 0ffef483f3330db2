// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package dbcontainer starts a throwaway postgres:16 container for the
// integration tests, connects a *postgres.Pool to it, and creates the
// properties schema. Both podman and docker are supported through the
// DOCKER_HOST variable, e.g., for a rootless podman:
//
//	DOCKER_HOST=unix://$XDG_RUNTIME_DIR/podman/podman.sock
package dbcontainer

import (
	"context"
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"github.com/bitcomplete/sqltestutil"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/momeni/realty/pkg/adapter/db/postgres"
	"github.com/momeni/realty/pkg/core/repo"
	"github.com/stretchr/testify/require"
)

// DBMSVersion is the tag of the postgres container image.
const DBMSVersion = "16"

// retryDelay separates the connection attempts while the container
// is starting up.
const retryDelay = 250 * time.Millisecond

// New starts a container and returns a pool which is connected to its
// database, with the properties table in place. The container and the
// pool are released by t.Cleanup. The timeout bounds the start up,
// including the connection attempts.
//
// The test is skipped in the -short mode and when neither DOCKER_HOST
// nor /var/run/docker.sock is available. Other failures fail it.
func New(ctx context.Context, t *testing.T, timeout time.Duration) *postgres.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping the database container in short mode")
	}
	if os.Getenv("DOCKER_HOST") == "" {
		if _, err := os.Stat("/var/run/docker.sock"); err != nil {
			t.Skip("no container runtime: DOCKER_HOST is not set")
		}
	}
	startCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	pg, err := sqltestutil.StartPostgresContainer(startCtx, DBMSVersion)
	require.NoError(t, err, "failed to start the postgres container")
	t.Cleanup(func() {
		require.NoError(t, pg.Shutdown(ctx), "failed to remove container")
	})
	pool, err := connect(startCtx, pg.ConnectionString())
	require.NoError(t, err, "cannot connect to the test database")
	t.Cleanup(func() {
		require.NoError(t, pool.Close(), "failed to close the pool")
	})
	err = pool.Conn(startCtx, postgres.InitSchema)
	require.NoError(t, err, "failed to create the properties schema")
	return pool
}

// Truncate removes all properties, so each test starts with an empty
// table.
func Truncate(ctx context.Context, pool repo.Pool) error {
	return pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		_, err := c.Exec(ctx, "TRUNCATE properties")
		return err
	})
}

// connect retries postgres.NewPool while the container is starting up
// or until ctx expires.
func connect(ctx context.Context, url string) (*postgres.Pool, error) {
	for {
		pool, err := postgres.NewPool(ctx, url)
		if err == nil || !startingUp(err) {
			return pool, err
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(err, ctx.Err())
		case <-time.After(retryDelay):
		}
	}
}

func startingUp(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "57P03" // cannot_connect_now
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
