// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package validation

import (
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/momeni/realty/pkg/core/cerr"
)

// reader converts the raw values of a field map into typed pointers.
// Absent and null fields are returned as nil without any error, so
// the presence rules may be checked by the validator afterwards.
// Values with a wrong type are recorded as field errors and returned
// as nil too.
type reader struct {
	raw  map[string]any
	errs map[string]cerr.FieldError
}

func newReader(raw map[string]any) *reader {
	return &reader{raw: raw, errs: make(map[string]cerr.FieldError)}
}

func (r *reader) fail(name, reason string) {
	if _, found := r.errs[name]; !found {
		r.errs[name] = cerr.FieldError{Field: name, Reason: reason}
	}
}

func (r *reader) str(name string) *string {
	v, found := r.raw[name]
	if !found || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		r.fail(name, cerr.ReasonInvalidType)
		return nil
	}
	return &s
}

func (r *reader) float(name string) *float64 {
	v, found := r.raw[name]
	if !found || v == nil {
		return nil
	}
	var f float64
	var err error
	switch n := v.(type) {
	case json.Number:
		f, err = n.Float64()
	case float64:
		f = n
	case int:
		f = float64(n)
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		r.fail(name, cerr.ReasonInvalidType)
		return nil
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		r.fail(name, cerr.ReasonInvalidNumber)
		return nil
	}
	return &f
}

func (r *reader) integer(name string) *int {
	return r.whole(name, false)
}

// saturated is like integer, but clamps values beyond the int32 range
// to its bounds instead of reporting them.
func (r *reader) saturated(name string) *int {
	return r.whole(name, true)
}

func (r *reader) whole(name string, saturate bool) *int {
	f := r.float(name)
	if f == nil {
		return nil
	}
	if *f != math.Trunc(*f) {
		r.fail(name, cerr.ReasonInvalidNumber)
		return nil
	}
	v := *f
	if math.Abs(v) > math.MaxInt32 {
		if !saturate {
			r.fail(name, cerr.ReasonOutOfRange)
			return nil
		}
		v = math.Copysign(math.MaxInt32, v)
	}
	i := int(v)
	return &i
}
