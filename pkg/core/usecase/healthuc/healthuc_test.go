// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package healthuc_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/momeni/realty/internal/test/memrp"
	"github.com/momeni/realty/pkg/core/model"
	"github.com/momeni/realty/pkg/core/usecase/healthuc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapCache is a minimal healthuc.Cache which ignores the ttl values.
type mapCache struct {
	mu sync.Mutex
	m  map[string]*model.DBHealth
}

func (mc *mapCache) Get(key string) (*model.DBHealth, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	h, ok := mc.m[key]
	return h, ok
}

func (mc *mapCache) Set(key string, h *model.DBHealth, _ time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.m[key] = h
}

func TestHealthy(t *testing.T) {
	s := memrp.New()
	uc, err := healthuc.New(s, memrp.NewRepo(),
		healthuc.WithIdentity("realty", "test", "local"),
	)
	require.NoError(t, err)
	h := uc.Check(context.Background())
	assert.Equal(t, model.HealthHealthy, h.Status)
	assert.Equal(t, model.ProbeHealthy, h.Database.Status)
	assert.Equal(t, "realty", h.Service)
	assert.Equal(t, "test", h.Environment)
	assert.Equal(t, "local", h.Region)
	assert.False(t, h.Timestamp.IsZero())
}

func TestDegradedOnProbeFailure(t *testing.T) {
	s := memrp.New()
	s.SetProbeErr(errors.New("connection refused"))
	uc, err := healthuc.New(s, memrp.NewRepo())
	require.NoError(t, err)
	h := uc.Check(context.Background())
	assert.Equal(t, model.HealthDegraded, h.Status)
	assert.Equal(t, model.ProbeUnhealthy, h.Database.Status)
	assert.NotContains(t, h.Database.Error, "refused",
		"probe errors may not leak into the report")
}

func TestHungProbeIsBounded(t *testing.T) {
	s := memrp.New()
	s.SetDelay(time.Hour)
	uc, err := healthuc.New(s, memrp.NewRepo(),
		healthuc.WithProbeTimeout(50*time.Millisecond),
	)
	require.NoError(t, err)
	start := time.Now()
	h := uc.Check(context.Background())
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, model.HealthDegraded, h.Status)
	assert.Equal(t, "database probe timed out", h.Database.Error)
}

func TestDisabledProbe(t *testing.T) {
	s := memrp.New()
	s.SetProbeErr(errors.New("down"))
	uc, err := healthuc.New(s, memrp.NewRepo(), healthuc.WithProbe(false))
	require.NoError(t, err)
	h := uc.Check(context.Background())
	assert.Equal(t, model.HealthHealthy, h.Status)
	assert.Equal(t, model.ProbeDisabled, h.Database.Status)
}

func TestCachedProbe(t *testing.T) {
	s := memrp.New()
	c := &mapCache{m: map[string]*model.DBHealth{}}
	uc, err := healthuc.New(s, memrp.NewRepo(),
		healthuc.WithCache(c, time.Minute),
	)
	require.NoError(t, err)
	h := uc.Check(context.Background())
	require.Equal(t, model.HealthHealthy, h.Status)

	s.SetProbeErr(errors.New("down"))
	h = uc.Check(context.Background())
	assert.Equal(t, model.HealthHealthy, h.Status,
		"cached outcome must be reused")
}

func TestInvalidOptions(t *testing.T) {
	s := memrp.New()
	_, err := healthuc.New(s, memrp.NewRepo(), healthuc.WithProbeTimeout(0))
	assert.Error(t, err)
	_, err = healthuc.New(s, memrp.NewRepo(), healthuc.WithCache(nil, time.Second))
	assert.Error(t, err)
}
