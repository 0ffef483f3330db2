// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/momeni/realty/pkg/core/repo"
	"gorm.io/gorm"
)

// Conn is one dedicated connection which is acquired by Pool.Conn.
// It embeds the *gorm.DB, so repository packages may build queries on
// it directly (see the GORM method).
type Conn struct {
	*gorm.DB
}

// Tx is an ongoing READ COMMITTED transaction which is started by
// Conn.Tx. Like Conn, it may not be used concurrently.
type Tx struct {
	*gorm.DB
}

type TxHandler = repo.TxHandler

// Tx begins a transaction, passes it to f, and commits it if f returns
// nil. The transaction is rolled back if f fails or panics.
func (c *Conn) Tx(ctx context.Context, f TxHandler) (err error) {
	tx := c.DB.WithContext(ctx).Begin()
	if err = tx.Error; err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			err = tx.Rollback().Error
			if err == nil {
				err = fmt.Errorf("panicked: %v", r)
				return
			}
			err = fmt.Errorf("panicked: %v, rollback: %w", r, err)
			return
		}
		if err != nil {
			if err2 := tx.Rollback().Error; err2 != nil {
				err = fmt.Errorf("handler: %w, rollback: %w", err, err2)
				return
			}
			err = fmt.Errorf("handler: %w", err)
			return
		}
		err = tx.Commit().Error
		if err != nil {
			err = fmt.Errorf("commit: %w", err)
		}
	}()
	return f(ctx, &Tx{DB: tx})
}

// Exec runs the sql statements and returns the number of affected rows.
// Parameters may be numbered ($1) or use the ? and @name placeholders
// of GORM. Without args, sql may hold several statements, which is how
// InitSchema runs the DDL.
func (c *Conn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	return exec(c.GORM(ctx), sql, args...)
}

// Query runs one sql statement and returns its result set. The Rows
// must be closed before the next statement on the same connection.
func (c *Conn) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	return query(c.GORM(ctx), sql, args...)
}

func (c *Conn) IsConn() {
}

// GORM returns the embedded *gorm.DB in a session which uses ctx.
func (c *Conn) GORM(ctx context.Context) *gorm.DB {
	return c.DB.WithContext(ctx)
}

// Exec is the same as Conn.Exec, but runs within the transaction.
func (tx *Tx) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	return exec(tx.GORM(ctx), sql, args...)
}

// Query is the same as Conn.Query, but runs within the transaction.
func (tx *Tx) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	return query(tx.GORM(ctx), sql, args...)
}

func (tx *Tx) IsTx() {
}

// GORM returns the embedded *gorm.DB in a session which uses ctx.
func (tx *Tx) GORM(ctx context.Context) *gorm.DB {
	return tx.DB.WithContext(ctx)
}

func exec(gdb *gorm.DB, sql string, args ...any) (int64, error) {
	tt := gdb.Exec(sql, args...)
	if err := tt.Error; err != nil {
		return 0, err
	}
	return tt.RowsAffected, nil
}

func query(gdb *gorm.DB, sql string, args ...any) (repo.Rows, error) {
	rows, err := gdb.Raw(sql, args...).Rows()
	if err != nil {
		return nil, err
	}
	return rowsAdapter{rows}, nil
}

// rowsAdapter implements repo.Rows on top of *sql.Rows.
type rowsAdapter struct {
	*sql.Rows
}

// Close releases the rows. Its error is reported by Err.
func (ra rowsAdapter) Close() {
	_ = ra.Rows.Close()
}

func (ra rowsAdapter) Values() ([]any, error) {
	cols, err := ra.Columns()
	if err != nil {
		return nil, fmt.Errorf("listing columns: %w", err)
	}
	vals := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range vals {
		dest[i] = &vals[i]
	}
	if err = ra.Scan(dest...); err != nil {
		return nil, err
	}
	return vals, nil
}
