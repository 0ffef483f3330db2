// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package memrp provides an in-memory implementation of the repo.Pool
// and repo.Properties interfaces for tests. It keeps the same ordering
// and pagination semantics as the database repositories, so use cases
// and REST resources may be tested without a database server.
//
// Raw SQL is not supported, so the Exec and Query methods fail with
// the ErrUnsupported error.
package memrp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/momeni/realty/pkg/core/cerr"
	"github.com/momeni/realty/pkg/core/model"
	"github.com/momeni/realty/pkg/core/repo"
)

// ErrUnsupported is returned for raw SQL statements.
var ErrUnsupported = errors.New("raw SQL is not supported in memory")

// Store keeps properties in memory and implements repo.Pool.
type Store struct {
	mu    sync.RWMutex
	props map[string]model.Property

	delay    time.Duration
	probeErr error
}

// New instantiates an empty Store.
func New() *Store {
	return &Store{props: make(map[string]model.Property)}
}

// SetDelay makes every repository call wait for d (or until its context
// is done), simulating a slow store.
func (s *Store) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// SetProbeErr makes the connectivity probes fail with err.
func (s *Store) SetProbeErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probeErr = err
}

// Len returns the number of stored properties.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.props)
}

// Conn calls handler with a connection to the s store.
func (s *Store) Conn(ctx context.Context, handler repo.ConnHandler) error {
	return handler(ctx, &Conn{store: s})
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func (s *Store) wait(ctx context.Context) error {
	s.mu.RLock()
	d := s.delay
	s.mu.RUnlock()
	if d == 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Conn is an in-memory connection which implements repo.Conn.
type Conn struct {
	store *Store
}

// Exec fails with ErrUnsupported.
func (c *Conn) Exec(context.Context, string, ...any) (int64, error) {
	return 0, ErrUnsupported
}

// Query fails with ErrUnsupported.
func (c *Conn) Query(context.Context, string, ...any) (repo.Rows, error) {
	return nil, ErrUnsupported
}

// Tx calls handler with a transaction on the c connection. Changes are
// applied immediately, so a failing handler does not roll them back.
// Property updates are atomic individually, which suffices for tests.
func (c *Conn) Tx(ctx context.Context, handler repo.TxHandler) error {
	return handler(ctx, &Tx{store: c.store})
}

// IsConn marks Conn as a repo.Conn.
func (c *Conn) IsConn() {
}

// Tx is an in-memory transaction which implements repo.Tx.
type Tx struct {
	store *Store
}

// Exec fails with ErrUnsupported.
func (tx *Tx) Exec(context.Context, string, ...any) (int64, error) {
	return 0, ErrUnsupported
}

// Query fails with ErrUnsupported.
func (tx *Tx) Query(context.Context, string, ...any) (repo.Rows, error) {
	return nil, ErrUnsupported
}

// IsTx marks Tx as a repo.Tx.
func (tx *Tx) IsTx() {
}

// Repo implements the repo.Properties interface on top of a Store.
type Repo struct {
}

// NewRepo instantiates a properties repository for Store connections.
func NewRepo() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*Store
}

// Conn takes a *memrp.Conn and returns a properties queryer.
func (r *Repo) Conn(c repo.Conn) repo.PropertiesConnQueryer {
	return connQueryer{Store: c.(*Conn).store}
}

type txQueryer struct {
	connQueryer
}

// Tx takes a *memrp.Tx and returns a properties queryer.
func (r *Repo) Tx(tx repo.Tx) repo.PropertiesTxQueryer {
	return txQueryer{connQueryer{Store: tx.(*Tx).store}}
}

func (q connQueryer) Create(ctx context.Context, p *model.Property) error {
	if err := q.wait(ctx); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, found := q.props[p.ID]; found {
		return cerr.Conflict(fmt.Errorf("property %q exists", p.ID))
	}
	if err := q.addressFree(p.Address, p.ID); err != nil {
		return err
	}
	q.props[p.ID] = clone(p)
	return nil
}

func (q connQueryer) Get(
	ctx context.Context, id string,
) (*model.Property, error) {
	if err := q.wait(ctx); err != nil {
		return nil, err
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	p, found := q.props[id]
	if !found {
		return nil, cerr.NotFound(fmt.Errorf("property %q", id))
	}
	p = clone(&p)
	return &p, nil
}

func (q connQueryer) List(
	ctx context.Context, f model.PropertyFilter, pr model.PageRequest,
) (*model.Page, error) {
	if err := q.wait(ctx); err != nil {
		return nil, err
	}
	idx := f.Index()
	q.mu.RLock()
	items := make([]model.Property, 0, len(q.props))
	for _, p := range q.props {
		if !f.Matches(&p) {
			continue
		}
		if pr.After != nil && !pr.After.Follows(&p) {
			continue
		}
		items = append(items, clone(&p))
	}
	q.mu.RUnlock()
	sort.Slice(items, func(i, j int) bool {
		return idx.Precedes(&items[i], &items[j])
	})
	if len(items) > pr.Limit+1 {
		items = items[:pr.Limit+1]
	}
	return model.NewPage(idx, items, pr.Limit), nil
}

func (q connQueryer) Probe(ctx context.Context) error {
	if err := q.wait(ctx); err != nil {
		return err
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.probeErr
}

func (q txQueryer) Update(
	ctx context.Context,
	id string,
	pp *model.PropertyPatch,
	now time.Time,
) (*model.Property, error) {
	if err := q.wait(ctx); err != nil {
		return nil, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	p, found := q.props[id]
	if !found {
		return nil, cerr.NotFound(fmt.Errorf("property %q", id))
	}
	if pp.Address != nil {
		if err := q.addressFree(*pp.Address, id); err != nil {
			return nil, err
		}
	}
	pp.Apply(&p, now)
	q.props[id] = p
	p = clone(&p)
	return &p, nil
}

// addressFree fails with a cerr.Conflict if a property other than id
// is located at addr. It must be called with the store lock held.
func (s *Store) addressFree(addr, id string) error {
	for _, p := range s.props {
		if p.Address == addr && p.ID != id {
			return cerr.Conflict(fmt.Errorf(
				"address %q is taken by property %q", addr, p.ID,
			))
		}
	}
	return nil
}

// clone deep copies p, so callers may not alias the stored pointers.
func clone(p *model.Property) model.Property {
	c := *p
	c.Bedrooms = dup(p.Bedrooms)
	c.Bathrooms = dup(p.Bathrooms)
	c.SquareFeet = dup(p.SquareFeet)
	c.Description = dup(p.Description)
	return c
}

func dup[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
