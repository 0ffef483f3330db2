// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Duration is a time.Duration which is read from the config files in
// the time.ParseDuration format (e.g., 250ms or 10s) and written back
// in a shortened form of that format by its Marshal method.
type Duration time.Duration

// ErrNonPositive indicates that a duration setting was zero or less.
var ErrNonPositive = errors.New("duration is not positive")

// UnmarshalText implements the encoding.TextUnmarshaler interface.
// The `d` receiver is only updated if data can be parsed.
func (d *Duration) UnmarshalText(data []byte) error {
	dd, err := time.ParseDuration(string(data))
	if err != nil {
		return err
	}
	*d = Duration(dd)
	return nil
}

// Std returns `d` as a time.Duration. A nil `d` gives zero.
func (d *Duration) Std() time.Duration {
	if d == nil {
		return 0
	}
	return time.Duration(*d)
}

// Positive returns an error naming the `name` setting if `d` is not
// nil and is not greater than zero.
func (d *Duration) Positive(name string) error {
	if d != nil && *d <= 0 {
		return fmt.Errorf("%s: %w", name, ErrNonPositive)
	}
	return nil
}

// Marshal returns the string form of `d`, or nil if `d` is nil, so it
// can fill the pointer fields of a Marshalled config struct.
// Zero trailing units are dropped, so 10s is written instead of 0m10s
// and 2h instead of 2h0m0s. A zero duration is written as 0s.
func (d *Duration) Marshal() *string {
	if d == nil {
		return nil
	}
	s := time.Duration(*d).String()
	if strings.HasSuffix(s, "m0s") {
		s = s[:len(s)-2]
	}
	if strings.HasSuffix(s, "h0m") {
		s = s[:len(s)-2]
	}
	return &s
}

// MarshalText implements the encoding.TextMarshaler interface.
func (d *Duration) MarshalText() ([]byte, error) {
	if s := d.Marshal(); s != nil {
		return []byte(*s), nil
	}
	return nil, errors.New("nil duration")
}

// LogValue implements slog.LogValuer.
func (d *Duration) LogValue() slog.Value {
	if d == nil {
		return slog.StringValue("unset")
	}
	return slog.DurationValue(time.Duration(*d))
}
