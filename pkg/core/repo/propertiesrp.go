// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"
	"time"

	"github.com/momeni/realty/pkg/core/model"
)

// PropertiesConnQueryer interface indicates queries which may be
// executed on a properties repository using a database connection.
type PropertiesConnQueryer interface {
	PropertiesQueryer
}

// PropertiesTxQueryer interface indicates queries which may be
// executed on a properties repository within an ongoing transaction.
// The Update method is only offered here because it needs to read the
// current record and write back its patched version atomically.
type PropertiesTxQueryer interface {
	PropertiesQueryer

	// Update applies the pp patch on the id property, refreshing its
	// updatedAt timestamp to now (or createdAt if now is older), and
	// returns the updated record. A missing id is reported as a
	// cerr.NotFound error, and moving it to the address of another
	// property as a cerr.Conflict error.
	Update(
		ctx context.Context, id string, pp *model.PropertyPatch,
		now time.Time,
	) (*model.Property, error)
}

// PropertiesQueryer interface indicates queries which can be executed
// on a properties repository either with a connection or an ongoing
// transaction.
type PropertiesQueryer interface {
	// Create persists the p property which must have its ID and
	// timestamps assigned already. An existing ID or an address which
	// another property is located at is reported as a cerr.Conflict
	// error and nothing is overwritten.
	Create(ctx context.Context, p *model.Property) error

	// Get returns the id property or a cerr.NotFound error.
	Get(ctx context.Context, id string) (*model.Property, error)

	// List returns at most pr.Limit properties which pass the f filter
	// and follow pr.After in the f.Index() ordering. The Next cursor
	// of the returned page is nil if there are no more matching items.
	List(
		ctx context.Context, f model.PropertyFilter, pr model.PageRequest,
	) (*model.Page, error)

	// Probe runs the cheapest query which proves that the properties
	// store is reachable and its table exists.
	Probe(ctx context.Context) error
}

// Properties is the properties repository. It wraps a connection or a
// transaction (as created by a Pool) and returns a queryer which runs
// the properties related queries on them.
type Properties interface {
	Conn(Conn) PropertiesConnQueryer
	Tx(Tx) PropertiesTxQueryer
}
