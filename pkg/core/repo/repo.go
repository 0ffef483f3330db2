// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package repo contains the repository interfaces which are expected
// by the use cases layer. A Pool hands out connections (and through
// them, transactions) to a callback, so use cases decide about the
// transaction boundaries while repository packages only run queries
// on the given Conn or Tx instances.
//
// Three implementations exist: the gorm based PostgreSQL adapter, the
// sqlx based SQLite adapter, and the in-memory test double. Each one
// type-asserts the Conn and Tx values which its own Pool produced.
package repo

import "context"

// ConnHandler is called with a connection which is acquired from a
// Pool and is released as soon as the handler returns.
type ConnHandler func(context.Context, Conn) error

// TxHandler is called within a transaction. The transaction commits
// if the handler returns nil and rolls back otherwise (or on a panic).
type TxHandler func(context.Context, Tx) error

// Pool is a database connections pool. Close must be called once the
// process stops serving requests.
type Pool interface {
	Conn(ctx context.Context, handler ConnHandler) error
	Close() error
}

// Conn is a single database connection.
type Conn interface {
	Queryer
	Tx(ctx context.Context, handler TxHandler) error

	// IsConn keeps a Tx from passing as a Conn.
	IsConn()
}

// Tx is an ongoing transaction.
type Tx interface {
	Queryer

	// IsTx keeps a Conn from passing as a Tx.
	IsTx()
}

// Queryer runs raw SQL statements. Repository packages usually prefer
// their own query builders, so these methods mostly serve the schema
// creation and the tests.
type Queryer interface {
	// Exec runs a statement and returns the number of affected rows.
	Exec(ctx context.Context, sql string, args ...any) (count int64, err error)

	// Query runs a query. The returned Rows must be closed.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
}

// Rows iterates over the result set of a Query.
type Rows interface {
	Close()
	Err() error
	Next() bool
	Scan(dest ...any) error

	// Values returns the current row columns with their driver types.
	Values() ([]any, error)
}
