// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package healthuc contains the health reporter UseCase. It reports
// the service as healthy unless the optional repository connectivity
// probe fails, in which case the service is degraded. The probe is
// bounded by a short timeout and runs in its own goroutine, so a hung
// store can never block the health response.
package healthuc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/momeni/realty/pkg/core/log"
	"github.com/momeni/realty/pkg/core/model"
	"github.com/momeni/realty/pkg/core/repo"
)

// DefaultProbeTimeout bounds the probe when WithProbeTimeout is not used.
const DefaultProbeTimeout = 2 * time.Second

const cacheKey = "db"

// Cache keeps the recent probe outcomes. It must be safe for concurrent
// use. Expired entries must not be returned by Get.
type Cache interface {
	Get(key string) (*model.DBHealth, bool)
	Set(key string, h *model.DBHealth, ttl time.Duration)
}

// UseCase represents a health reporter use case.
type UseCase struct {
	pool    repo.Pool
	propsrp repo.Properties

	probe        *bool
	probeTimeout time.Duration
	cache        Cache
	cacheTTL     time.Duration

	service, environment, region string
	now                          func() time.Time
}

// New instantiates a health use case. The probe is enabled by default.
func New(p repo.Pool, r repo.Properties, opts ...Option) (*UseCase, error) {
	uc := &UseCase{pool: p, propsrp: r}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.probe == nil {
		enabled := true
		uc.probe = &enabled
	}
	if uc.probeTimeout == 0 {
		uc.probeTimeout = DefaultProbeTimeout
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	return uc, nil
}

// Check reports the current health. It never fails; a failed probe is
// reflected in the returned report instead.
func (h *UseCase) Check(ctx context.Context) *model.Health {
	hr := &model.Health{
		Status:      model.HealthHealthy,
		Timestamp:   model.NormalizeTime(h.now()),
		Service:     h.service,
		Environment: h.environment,
		Region:      h.region,
	}
	if !*h.probe {
		hr.Database.Status = model.ProbeDisabled
		return hr
	}
	db, ok := h.cached()
	if !ok {
		db = h.runProbe(ctx)
		if h.cacheTTL > 0 {
			h.cache.Set(cacheKey, db, h.cacheTTL)
		}
	}
	hr.Database = *db
	if db.Status != model.ProbeHealthy {
		hr.Status = model.HealthDegraded
	}
	return hr
}

func (h *UseCase) cached() (*model.DBHealth, bool) {
	if h.cacheTTL == 0 {
		return nil, false
	}
	return h.cache.Get(cacheKey)
}

// runProbe pings the repository in a separate goroutine and waits for
// it at most for the probe timeout. The result channel is buffered, so
// a late probe can finish and exit without a receiver.
func (h *UseCase) runProbe(ctx context.Context) *model.DBHealth {
	ctx, cancel := context.WithTimeout(ctx, h.probeTimeout)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- h.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
			return h.propsrp.Conn(c).Probe(ctx)
		})
	}()
	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = fmt.Errorf("probe abandoned: %w", ctx.Err())
	}
	checkedAt := model.NormalizeTime(h.now())
	db := &model.DBHealth{Status: model.ProbeHealthy, CheckedAt: &checkedAt}
	if err != nil {
		db.Status = model.ProbeUnhealthy
		db.Error = "database unreachable"
		if errors.Is(err, context.DeadlineExceeded) {
			db.Error = "database probe timed out"
		}
		log.Warn(ctx, "repository probe failed",
			log.Err("err", err),
			slog.Duration("timeout", h.probeTimeout),
		)
	}
	return db
}
