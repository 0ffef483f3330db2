// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package validation converts raw, untyped inputs (a mapping of field
// names to values, as decoded from a JSON body or a query string) into
// well-typed domain commands. Every offending field is reported, not
// just the first one, as a cerr.Validation error. Presence is checked
// before the types and types are checked before the ranges, so each
// field is reported with a single reason. Unknown fields are ignored.
//
// Numeric fields accept JSON numbers and numeric strings. The ranges
// and enums are declared as go-playground validator tags on the
// intermediate structs of this package.
package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/momeni/realty/pkg/core/cerr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check runs the validator tags of the s struct and returns all field
// errors of s, merged with the type errors which r has collected, or
// nil if there is no error at all.
func check(r *reader, s any) error {
	err := validate.Struct(s)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, ferr := range verrs {
			r.fail(ferr.Field(), reasonOf(ferr))
		}
	} else if err != nil {
		return cerr.Internal(err)
	}
	return r.err()
}

// err returns the collected errors sorted by the field names.
func (r *reader) err() error {
	if len(r.errs) == 0 {
		return nil
	}
	fields := make([]cerr.FieldError, 0, len(r.errs))
	for _, fe := range r.errs {
		fields = append(fields, fe)
	}
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].Field < fields[j].Field
	})
	return cerr.Validation(fields...)
}

func reasonOf(ferr validator.FieldError) string {
	switch ferr.Tag() {
	case "required", "required_without":
		return cerr.ReasonMissing
	case "oneof":
		return cerr.ReasonInvalidEnum
	case "excluded_with":
		return cerr.ReasonMutuallyExclusive
	case "min", "max", "len":
		if ferr.Kind() == reflect.String {
			return cerr.ReasonInvalidLength
		}
		return cerr.ReasonOutOfRange
	case "gt", "gte", "lt", "lte":
		return cerr.ReasonOutOfRange
	default:
		return cerr.ReasonInvalidFormat
	}
}
