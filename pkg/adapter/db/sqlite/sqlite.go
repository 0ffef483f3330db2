// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package sqlite implements the repo.Pool, repo.Conn, and repo.Tx
// interfaces for an embedded SQLite database using sqlx over the pure
// Go modernc.org/sqlite driver. It serves single node deployments and
// tests which need a real SQL engine without a database container.
//
// Timestamps are stored as INTEGER microseconds since the Unix epoch,
// so they sort and compare exactly like their model.NormalizeTime form.
package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/momeni/realty/pkg/core/model"
	"github.com/momeni/realty/pkg/core/repo"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Version is the latest supported database schema semantic version.
// It follows the PostgreSQL schema version since both schemas hold
// the same tables and columns.
var Version = model.SemVer{1, 0, 0}

// DriverName is the database/sql driver name of modernc.org/sqlite.
const DriverName = "sqlite"

// MemoryPath asks for a private in-memory database.
const MemoryPath = ":memory:"

// Schema contains the DDL statements of the properties table and its
// indexes, mirroring the PostgreSQL schema.
const Schema = `
CREATE TABLE IF NOT EXISTS properties (
    id            TEXT PRIMARY KEY,
    created_at    INTEGER NOT NULL,
    updated_at    INTEGER NOT NULL,
    address       TEXT NOT NULL,
    location      TEXT NOT NULL,
    property_type TEXT NOT NULL,
    bedrooms      INTEGER,
    bathrooms     REAL,
    square_feet   INTEGER,
    description   TEXT,
    price         REAL NOT NULL CHECK (price >= 0),
    status        TEXT NOT NULL
        CHECK (status IN ('active', 'pending', 'sold', 'archived')),
    CHECK (updated_at >= created_at)
);
CREATE INDEX IF NOT EXISTS properties_status_idx
    ON properties (status, updated_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS properties_location_idx
    ON properties (location, price, id);
CREATE INDEX IF NOT EXISTS properties_created_idx
    ON properties (created_at, id);
CREATE UNIQUE INDEX IF NOT EXISTS properties_address_key
    ON properties (address);
`

// Pool is a pool of SQLite connections.
type Pool struct {
	*sqlx.DB
}

// NewPool opens the path database file (creating it if necessary) or
// a private in-memory database if path is MemoryPath. An in-memory
// database lives as long as its single connection, so the pool never
// opens a second one for it.
func NewPool(ctx context.Context, path string) (*Pool, error) {
	dsn := path
	if path != MemoryPath {
		dsn = dataSourceName(path)
	}
	db, err := sqlx.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlx.Open: %w", err)
	}
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Pool{DB: db}, nil
}

func dataSourceName(path string) string {
	pragmas := []string{
		"_pragma=busy_timeout(5000)",
		"_pragma=journal_mode(WAL)",
		"_pragma=foreign_keys(1)",
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return "file:" + path + sep + strings.Join(pragmas, "&")
}

// Conn acquires a dedicated connection, passes it to f, and releases
// it when f returns.
func (p *Pool) Conn(ctx context.Context, f repo.ConnHandler) error {
	c, err := p.DB.Connx(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer c.Close()
	return f(ctx, &Conn{Conn: c})
}

// InitSchema creates the properties table and its indexes (if they do
// not exist) using the c connection.
func InitSchema(ctx context.Context, c repo.Conn) error {
	if _, err := c.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("creating properties schema: %w", err)
	}
	return nil
}
