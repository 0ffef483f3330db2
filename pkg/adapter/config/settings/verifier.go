// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settings

import (
	"cmp"
	"fmt"
)

// RangeError reports a setting which was outside of its [Min, Max]
// range. A nil Min or Max stands for an open boundary.
type RangeError[T cmp.Ordered] struct {
	Name     string
	Value    T
	Min, Max *T
}

// Error implements the error interface.
func (e *RangeError[T]) Error() string {
	bound := func(b *T, open string) string {
		if b == nil {
			return open
		}
		return fmt.Sprint(*b)
	}
	return fmt.Sprintf(
		"%s=%v is not in [%s, %s]",
		e.Name, e.Value, bound(e.Min, "-inf"), bound(e.Max, "+inf"),
	)
}

// VerifyRange checks that the `value` setting, named `name`, is either
// nil or falls in the [minb, maxb] range. Nil boundaries are open.
// On violation, a *RangeError is returned and `value` is left as is,
// so the caller may report it. Inverted boundaries are reported as an
// error too, since no value may satisfy them.
func VerifyRange[T cmp.Ordered](name string, value, minb, maxb *T) error {
	if minb != nil && maxb != nil && *minb > *maxb {
		return fmt.Errorf("%s: min %v is greater than max %v",
			name, *minb, *maxb,
		)
	}
	if value == nil {
		return nil
	}
	if (minb != nil && *value < *minb) || (maxb != nil && *value > *maxb) {
		return &RangeError[T]{Name: name, Value: *value, Min: minb, Max: maxb}
	}
	return nil
}
