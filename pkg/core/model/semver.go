// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SemVer is a major.minor.patch semantic version. It versions the
// config file format and the database schema of each store, so an
// operator is warned when a config file or a database was created by
// a newer and incompatible release.
type SemVer [3]uint

// ErrIncompatibleVersion indicates that a SemVer may not be handled by
// the running release.
var ErrIncompatibleVersion = errors.New("incompatible version")

// UnmarshalText parses one to three dot-separated non-negative numbers,
// so "1" and "1.2" are accepted as "1.0.0" and "1.2.0" respectively.
// The sv receiver is kept unchanged on errors.
func (sv *SemVer) UnmarshalText(text []byte) error {
	parts := strings.Split(string(text), ".")
	if len(parts) > 3 {
		return fmt.Errorf("version %q has more than three parts", text)
	}
	var v SemVer
	for i, s := range parts {
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return fmt.Errorf("version part %q is not a number", s)
		}
		v[i] = uint(n)
	}
	*sv = v
	return nil
}

// MarshalText implements the encoding.TextMarshaler interface.
func (sv *SemVer) MarshalText() ([]byte, error) {
	return []byte(sv.String()), nil
}

// Marshal returns the string form of sv for the Marshalled structs.
func (sv *SemVer) Marshal() string {
	return sv.String()
}

func (sv SemVer) String() string {
	return fmt.Sprintf("%d.%d.%d", sv[0], sv[1], sv[2])
}

// CompatibleWith returns nil if sv can be handled by a release which
// supports the `supported` version. The major versions must be equal
// and the sv minor version may not be newer. Patch versions have no
// visible effect and are ignored.
func (sv SemVer) CompatibleWith(supported SemVer) error {
	switch {
	case sv[0] != supported[0]:
		return fmt.Errorf("%w: major version %d, expecting %d",
			ErrIncompatibleVersion, sv[0], supported[0],
		)
	case sv[1] > supported[1]:
		return fmt.Errorf("%w: minor version %d is newer than %d",
			ErrIncompatibleVersion, sv[1], supported[1],
		)
	}
	return nil
}
