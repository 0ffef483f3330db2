// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package settings provides the building blocks of the versioned
// configuration structs, such as the cfg1.Config. Optional settings
// are kept as pointers, so a missing YAML item can be told apart from
// a zero value, and the helpers of this package fill the defaults or
// verify the ranges of those pointers while a config is normalized.
package settings

// Default makes the (*t) pointer point to a newly allocated copy of
// the v value if it was nil. A non-nil (*t) is kept unchanged.
func Default[T any](t **T, v T) {
	if *t == nil {
		*t = &v
	}
}

// Nil2Zero is the same as Default with the zero value of T.
func Nil2Zero[T any](t **T) {
	var zero T
	Default(t, zero)
}
