// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"strings"
	"time"
)

// PropertyIndex identifies one ordering of the properties collection.
// Every repository implementation must return items in the same order
// for each index, so pages and cursors stay interchangeable between
// the real stores and the in-memory test double.
type PropertyIndex string

// Supported property indexes.
const (
	// IndexCreated is the unfiltered scan, ordered by createdAt
	// ascending and then by id ascending.
	IndexCreated PropertyIndex = "created"

	// IndexStatus is the status-ordered path, ordered by updatedAt
	// descending and then by id descending.
	IndexStatus PropertyIndex = "status"

	// IndexLocation is the location-ordered path, ordered by price
	// ascending and then by id ascending.
	IndexLocation PropertyIndex = "location"
)

// PropertyFilter holds the composable listing filters. Nil fields
// impose no restriction. MinPrice and MaxPrice are both inclusive.
type PropertyFilter struct {
	Status   *PropertyStatus
	Location *string
	MinPrice *float64
	MaxPrice *float64
}

// Index returns the index which serves the f filter. A status filter
// takes precedence over a location filter, while other filters are
// applied on top of the chosen index.
func (f PropertyFilter) Index() PropertyIndex {
	switch {
	case f.Status != nil:
		return IndexStatus
	case f.Location != nil:
		return IndexLocation
	default:
		return IndexCreated
	}
}

// Matches reports if the p property passes all filters of f.
func (f PropertyFilter) Matches(p *Property) bool {
	switch {
	case f.Status != nil && p.Status != *f.Status:
		return false
	case f.Location != nil && p.Location != *f.Location:
		return false
	case f.MinPrice != nil && p.Price < *f.MinPrice:
		return false
	case f.MaxPrice != nil && p.Price > *f.MaxPrice:
		return false
	}
	return true
}

// Cursor is the last-seen sort position of a page. Only the sort key
// fields of its Index are meaningful: Time holds updatedAt for the
// status index and createdAt for the created index, and Price is used
// by the location index. The ID breaks ties in all indexes.
type Cursor struct {
	Index PropertyIndex
	Time  time.Time
	Price float64
	ID    string
}

// CursorAt returns the cursor which points at the p property in the
// idx index, so the next page starts right after p.
func CursorAt(idx PropertyIndex, p *Property) Cursor {
	c := Cursor{Index: idx, ID: p.ID}
	switch idx {
	case IndexStatus:
		c.Time = p.UpdatedAt
	case IndexLocation:
		c.Price = p.Price
	default:
		c.Time = p.CreatedAt
	}
	return c
}

// Precedes reports if a comes strictly before b in the idx ordering.
func (idx PropertyIndex) Precedes(a, b *Property) bool {
	return idx.compare(CursorAt(idx, a), CursorAt(idx, b)) < 0
}

// Follows reports if the p property comes strictly after the c cursor
// position in the c.Index ordering.
func (c Cursor) Follows(p *Property) bool {
	return c.Index.compare(c, CursorAt(c.Index, p)) < 0
}

func (idx PropertyIndex) compare(a, b Cursor) int {
	var k int
	switch idx {
	case IndexStatus:
		k = -a.Time.Compare(b.Time)
		if k == 0 {
			k = -strings.Compare(a.ID, b.ID)
		}
		return k
	case IndexLocation:
		switch {
		case a.Price < b.Price:
			k = -1
		case a.Price > b.Price:
			k = 1
		}
	default:
		k = a.Time.Compare(b.Time)
	}
	if k == 0 {
		k = strings.Compare(a.ID, b.ID)
	}
	return k
}

// PageRequest asks for at most Limit items which follow the After
// cursor (or the beginning of the index if After is nil).
type PageRequest struct {
	Limit int
	After *Cursor
}

// Page contains one page of properties. The Next cursor is nil when
// there are no more items after this page.
type Page struct {
	Items []Property
	Next  *Cursor
}

// NewPage builds a page from the items which were fetched in the idx
// order. Repositories fetch one item beyond the limit, so the presence
// of that extra item tells if a next page exists. The Next cursor
// points at the last returned item.
func NewPage(idx PropertyIndex, items []Property, limit int) *Page {
	pg := &Page{Items: items}
	if len(items) > limit {
		pg.Items = items[:limit]
		c := CursorAt(idx, &pg.Items[limit-1])
		pg.Next = &c
	}
	if pg.Items == nil {
		pg.Items = []Property{}
	}
	return pg
}
