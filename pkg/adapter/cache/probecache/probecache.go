// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package probecache implements the healthuc.Cache interface using an
// in-process ccache instance, so the repository connectivity probe
// results can be shared among concurrent health checks.
package probecache

import (
	"time"

	"github.com/karlseguin/ccache/v3"
	"github.com/momeni/realty/pkg/core/model"
)

// Cache keeps recent probe outcomes. It is safe for concurrent use.
type Cache struct {
	c *ccache.Cache[*model.DBHealth]
}

// New instantiates a Cache which holds at most maxSize entries.
func New(maxSize int64) *Cache {
	return &Cache{
		c: ccache.New(ccache.Configure[*model.DBHealth]().MaxSize(maxSize)),
	}
}

// Get returns the unexpired outcome which is cached for key, if any.
func (pc *Cache) Get(key string) (*model.DBHealth, bool) {
	item := pc.c.Get(key)
	if item == nil || item.Expired() {
		return nil, false
	}
	return item.Value(), true
}

// Set caches h for key, so it is returned by Get for ttl.
func (pc *Cache) Set(key string, h *model.DBHealth, ttl time.Duration) {
	pc.c.Set(key, h, ttl)
}

// Stop releases the background worker of the cache.
func (pc *Cache) Stop() {
	pc.c.Stop()
}
