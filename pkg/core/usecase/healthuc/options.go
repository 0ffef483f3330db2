// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package healthuc

import (
	"errors"
	"time"
)

// Option represents an optional setting for the health use case.
type Option func(uc *UseCase) error

// WithProbe enables or disables the repository connectivity probe.
// A disabled probe reports the database as disabled and the service
// as healthy.
func WithProbe(enabled bool) Option {
	return func(uc *UseCase) error {
		uc.probe = &enabled
		return nil
	}
}

// WithProbeTimeout bounds each repository probe by d.
func WithProbeTimeout(d time.Duration) Option {
	return func(uc *UseCase) error {
		if d <= 0 {
			return errors.New("probe timeout must be positive")
		}
		uc.probeTimeout = d
		return nil
	}
}

// WithCache keeps probe outcomes in c for ttl, so a burst of health
// checks hits the repository once. A zero ttl disables caching.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(uc *UseCase) error {
		if ttl < 0 {
			return errors.New("cache ttl may not be negative")
		}
		if c == nil && ttl > 0 {
			return errors.New("cache ttl requires a cache")
		}
		uc.cache, uc.cacheTTL = c, ttl
		return nil
	}
}

// WithIdentity sets the service, environment, and region names which
// are echoed in every health report.
func WithIdentity(service, environment, region string) Option {
	return func(uc *UseCase) error {
		uc.service = service
		uc.environment = environment
		uc.region = region
		return nil
	}
}

// WithClock replaces the wall clock, so tests may fix the timestamps.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		uc.now = now
		return nil
	}
}
