// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
)

// PropertyStatus specifies the listing status enum of a property.
// It drives the status-ordered secondary access path. Although the
// status may be compared as a plain string, only the constants which
// are defined below are valid.
type PropertyStatus string

// Valid values for the PropertyStatus enum.
const (
	StatusActive   PropertyStatus = "active"
	StatusPending  PropertyStatus = "pending"
	StatusSold     PropertyStatus = "sold"
	StatusArchived PropertyStatus = "archived"
)

// PropertyStatuses lists all valid statuses in their lifecycle order.
var PropertyStatuses = []PropertyStatus{
	StatusActive, StatusPending, StatusSold, StatusArchived,
}

// ErrUnknownPropertyStatus indicates that a given string may not be
// parsed as a valid property status. Like the other parse errors, it
// does not repeat the invalid string since the caller knows it already.
var ErrUnknownPropertyStatus = errors.New("unknown property status")

// PropertyStatusError indicates an invalid property status value which
// was found in an already constructed PropertyStatus variable.
type PropertyStatusError string

// Error implements the error interface.
func (e PropertyStatusError) Error() string {
	return fmt.Sprintf("invalid property status: %q", string(e))
}

// Validate returns nil if the PropertyStatus value is valid. For invalid
// values, an instance of the PropertyStatusError will be returned.
func (s PropertyStatus) Validate() error {
	switch s {
	case StatusActive, StatusPending, StatusSold, StatusArchived:
		return nil
	default:
		return PropertyStatusError(s)
	}
}

// ParsePropertyStatus parses the given string and returns a
// PropertyStatus, helping to deserialize it when reading a REST API
// request. For invalid strings, an empty status and the
// ErrUnknownPropertyStatus error will be returned.
func ParsePropertyStatus(s string) (PropertyStatus, error) {
	ps := PropertyStatus(s)
	if ps.Validate() != nil {
		return "", ErrUnknownPropertyStatus
	}
	return ps, nil
}
