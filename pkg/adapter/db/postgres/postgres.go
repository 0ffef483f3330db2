// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package postgres implements the repo.Pool, repo.Conn, and repo.Tx
// interfaces for a PostgreSQL database using GORM over the pgx driver.
// The properties repository, which depends on this package, lives in
// the propertiesrp sub-package.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/momeni/realty/pkg/core/model"
	"github.com/momeni/realty/pkg/core/repo"
)

// These constants represent the major, minor, and patch components of
// the current database schema semantic version.
const (
	Major = 1
	Minor = 0
	Patch = 0
)

// Version is the latest supported database schema semantic version.
var Version = model.SemVer{Major, Minor, Patch}

// Schema contains the DDL statements of the properties table and its
// access paths. The status and location indexes back the status and
// location ordered listings, while the created index backs the
// unfiltered scan. Two properties may not share an address. All
// statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS properties (
    id            uuid PRIMARY KEY,
    created_at    timestamptz NOT NULL,
    updated_at    timestamptz NOT NULL,
    address       text NOT NULL,
    location      text NOT NULL,
    property_type text NOT NULL,
    bedrooms      integer,
    bathrooms     double precision,
    square_feet   integer,
    description   text,
    price         double precision NOT NULL CHECK (price >= 0),
    status        text NOT NULL
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

// InitSchema creates the properties table and its indexes (if they do
// not exist) using the c connection.
func InitSchema(ctx context.Context, c repo.Conn) error {
	if _, err := c.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("creating properties schema: %w", err)
	}
	return nil
}

// uniqueViolation is the SQLSTATE of a unique constraint violation.
const uniqueViolation = "23505"

// AddressKey is the unique index which keeps property addresses apart.
const AddressKey = "properties_address_key"

// UniqueViolation returns the error which err wraps if it was caused
// by a duplicate key, or nil otherwise. Its ConstraintName tells the
// violated unique index apart.
func UniqueViolation(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr
	}
	return nil
}
