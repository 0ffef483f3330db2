// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cerr contains the core layer errors. Each Error carries one
// Kind from a closed taxonomy and the HTTP status code which should be
// reported when the error reaches a REST adapter, so use cases may
// classify their failures without depending on any web framework.
package cerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error. Its string form is published to clients
// in the error envelope, so existing values may not be renamed.
type Kind string

// Supported error kinds.
const (
	KindValidation       Kind = "ValidationError"
	KindNotFound         Kind = "NotFound"
	KindConflict         Kind = "Conflict"
	KindMethodNotAllowed Kind = "MethodNotAllowed"
	KindInvalidInput     Kind = "InvalidInput"
	KindTimeout          Kind = "Timeout"
	KindInternal         Kind = "Internal"
)

// Reasons which may be reported for a FieldError.
const (
	ReasonMissing           = "Missing"
	ReasonInvalidType       = "InvalidType"
	ReasonInvalidNumber     = "InvalidNumber"
	ReasonOutOfRange        = "OutOfRange"
	ReasonInvalidEnum       = "InvalidEnum"
	ReasonInvalidLength     = "InvalidLength"
	ReasonInvalidFormat     = "InvalidFormat"
	ReasonInvalidCursor     = "InvalidCursor"
	ReasonMutuallyExclusive = "MutuallyExclusive"
)

// FieldError names one offending input field and the reason of its
// rejection.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type Error struct {
	Kind           Kind
	Err            error
	HTTPStatusCode int
	Fields         []FieldError
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s", e.HTTPStatusCode, e.Err.Error())
}

// Validation creates a ValidationError which lists every offending
// field. The fields slice is kept as it is, so callers should report
// fields in a stable order.
func Validation(fields ...FieldError) *Error {
	return &Error{
		Kind:           KindValidation,
		Err:            fmt.Errorf("%d invalid field(s)", len(fields)),
		HTTPStatusCode: http.StatusBadRequest,
		Fields:         fields,
	}
}

func BadRequest(err error) *Error {
	return &Error{
		Kind: KindValidation, Err: err,
		HTTPStatusCode: http.StatusBadRequest,
	}
}

func NotFound(err error) *Error {
	return &Error{
		Kind: KindNotFound, Err: err,
		HTTPStatusCode: http.StatusNotFound,
	}
}

func Conflict(err error) *Error {
	return &Error{
		Kind: KindConflict, Err: err,
		HTTPStatusCode: http.StatusConflict,
	}
}

func MethodNotAllowed(err error) *Error {
	return &Error{
		Kind: KindMethodNotAllowed, Err: err,
		HTTPStatusCode: http.StatusMethodNotAllowed,
	}
}

// InvalidInput reports a degenerate input which passed the field level
// validation but may not be used for a computation, e.g., a zero
// denominator in the cash-flow formulas.
func InvalidInput(err error) *Error {
	return &Error{
		Kind: KindInvalidInput, Err: err,
		HTTPStatusCode: http.StatusBadRequest,
	}
}

func Timeout(err error) *Error {
	return &Error{
		Kind: KindTimeout, Err: err,
		HTTPStatusCode: http.StatusGatewayTimeout,
	}
}

func Internal(err error) *Error {
	return &Error{
		Kind: KindInternal, Err: err,
		HTTPStatusCode: http.StatusInternalServerError,
	}
}

// KindOf returns the Kind of the first *Error in the err chain.
// Errors which carry no *Error are reported as KindInternal.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindInternal
}
