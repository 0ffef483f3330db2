// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package propertiesuc

import (
	"errors"
	"fmt"
	"time"
)

// Option is a functional option for the properties use case.
type Option func(uc *UseCase) error

// WithStoreTimeout option bounds each repository call by the given
// timeout. A call which exceeds it is cancelled and reported as a
// cerr.Timeout error. This option may be passed to the New() function.
func WithStoreTimeout(timeout time.Duration) Option {
	return func(uc *UseCase) error {
		if d := int64(timeout); d <= 0 {
			return fmt.Errorf("store timeout (%d) is not positive", d)
		}
		if uc.storeTimeout != 0 {
			return errors.New("store timeout is already configured")
		}
		uc.storeTimeout = timeout
		return nil
	}
}

// WithPageSizes option configures the page size which is used when a
// listing request does not specify a limit, and the hard cap which
// larger limits are clamped to.
func WithPageSizes(defaultSize, maxSize int) Option {
	return func(uc *UseCase) error {
		switch {
		case defaultSize <= 0:
			return fmt.Errorf("default page size (%d) is not positive", defaultSize)
		case maxSize < defaultSize:
			return fmt.Errorf(
				"max page size (%d) is less than default (%d)",
				maxSize, defaultSize,
			)
		case uc.defaultPageSize != 0:
			return errors.New("page sizes are already configured")
		}
		uc.defaultPageSize = defaultSize
		uc.maxPageSize = maxSize
		return nil
	}
}

// WithClock option replaces the wall clock which is used for the
// createdAt and updatedAt timestamps. It is useful for tests which
// need deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		if now == nil {
			return errors.New("nil clock")
		}
		uc.now = now
		return nil
	}
}
