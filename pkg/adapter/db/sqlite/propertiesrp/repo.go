// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package propertiesrp implements the repo.Properties interface for
// an SQLite database, using sqlx on the pure Go modernc driver, and
// the properties table which is created by sqlite.InitSchema.
package propertiesrp

import (
	"context"
	"time"

	"github.com/momeni/realty/pkg/adapter/db/sqlite"
	"github.com/momeni/realty/pkg/core/model"
	"github.com/momeni/realty/pkg/core/repo"
)

// Repo is a stateless properties repository. Its Conn and Tx methods
// only accept the connections and transactions of a sqlite.Pool.
type Repo struct {
}

func New() *Repo {
	return &Repo{}
}

func (*Repo) Conn(c repo.Conn) repo.PropertiesConnQueryer {
	return queryer[*sqlite.Conn]{q: c.(*sqlite.Conn)}
}

func (*Repo) Tx(tx repo.Tx) repo.PropertiesTxQueryer {
	return txQueryer{queryer[*sqlite.Tx]{q: tx.(*sqlite.Tx)}}
}

// queryer binds the generic query functions to one Conn or Tx.
type queryer[Q sqlite.Queryer] struct {
	q Q
}

func (qq queryer[Q]) Create(ctx context.Context, p *model.Property) error {
	return Create(ctx, qq.q, p)
}

func (qq queryer[Q]) Get(ctx context.Context, id string) (*model.Property, error) {
	return Get(ctx, qq.q, id)
}

func (qq queryer[Q]) List(
	ctx context.Context, f model.PropertyFilter, pr model.PageRequest,
) (*model.Page, error) {
	return List(ctx, qq.q, f, pr)
}

func (qq queryer[Q]) Probe(ctx context.Context) error {
	return Probe(ctx, qq.q)
}

type txQueryer struct {
	queryer[*sqlite.Tx]
}

func (tq txQueryer) Update(
	ctx context.Context, id string, pp *model.PropertyPatch, now time.Time,
) (*model.Property, error) {
	return Update(ctx, tq.q, id, pp, now)
}
