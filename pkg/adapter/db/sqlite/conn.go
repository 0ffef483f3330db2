// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/momeni/realty/pkg/core/repo"
)

// Ext is the common sqlx query interface of connections and
// transactions.
type Ext interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

// Queryer is the type set of connections and transactions, so the
// repository functions may be written once for both of them.
type Queryer interface {
	*Conn | *Tx
	repo.Queryer
	SQLX() Ext
}

// Conn represents one dedicated database connection.
type Conn struct {
	*sqlx.Conn
}

// Tx begins a transaction, passes it to f, and commits it if f returns
// nil. The transaction is rolled back if f fails or panics.
func (c *Conn) Tx(ctx context.Context, f repo.TxHandler) (err error) {
	tx, err := c.Conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			if err = tx.Rollback(); err != nil {
				err = fmt.Errorf("panicked: %v, rollback: %w", r, err)
				return
			}
			err = fmt.Errorf("panicked: %v", r)
			return
		}
		if err != nil {
			if err2 := tx.Rollback(); err2 != nil {
				err = fmt.Errorf("handler: %w, rollback: %w", err, err2)
				return
			}
			err = fmt.Errorf("handler: %w", err)
			return
		}
		if err = tx.Commit(); err != nil {
			err = fmt.Errorf("commit: %w", err)
		}
	}()
	return f(ctx, &Tx{Tx: tx})
}

// Exec runs the sql statements and returns the number of affected rows.
func (c *Conn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	return exec(ctx, c.SQLX(), sql, args...)
}

// Query runs the sql statement and returns its result set.
func (c *Conn) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	return query(ctx, c.SQLX(), sql, args...)
}

// IsConn method prevents a non-Conn object (such as a Tx) to
// mistakenly implement the Conn interface.
func (c *Conn) IsConn() {
}

// SQLX returns the embedded *sqlx.Conn as an Ext.
func (c *Conn) SQLX() Ext {
	return c.Conn
}

// Tx represents an ongoing transaction.
type Tx struct {
	*sqlx.Tx
}

func (tx *Tx) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	return exec(ctx, tx.SQLX(), sql, args...)
}

func (tx *Tx) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	return query(ctx, tx.SQLX(), sql, args...)
}

// IsTx method prevents a non-Tx object (such as a Conn) to
// mistakenly implement the Tx interface.
func (tx *Tx) IsTx() {
}

// SQLX returns the embedded *sqlx.Tx as an Ext.
func (tx *Tx) SQLX() Ext {
	return tx.Tx
}

func exec(ctx context.Context, e Ext, sql string, args ...any) (int64, error) {
	res, err := e.ExecContext(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func query(ctx context.Context, e Ext, sql string, args ...any) (repo.Rows, error) {
	rows, err := e.QueryxContext(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return rowsAdapter{rows}, nil
}

// rowsAdapter wraps *sqlx.Rows in order to implement repo.Rows.
type rowsAdapter struct {
	*sqlx.Rows
}

func (ra rowsAdapter) Close() {
	// returned error may be checked by calling the Err() method
	_ = ra.Rows.Close()
}

func (ra rowsAdapter) Values() ([]any, error) {
	return ra.SliceScan()
}
