// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package serdser provides the serialization and deserialization
// helpers which are shared by all REST resources. Request bodies are
// decoded into raw field maps (keeping numbers as json.Number values)
// and handed to the validation package, while errors are serialized
// as a uniform envelope:
//
//	{"error": {"kind": "...", "message": "...", "fields": [...]}}
package serdser

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/momeni/realty/pkg/adapter/validation"
	"github.com/momeni/realty/pkg/core/cerr"
	"github.com/momeni/realty/pkg/core/log"
)

// MaxBodySize limits the request bodies which are decoded by Body.
const MaxBodySize = 1 << 20

// ErrorResp is the error envelope of all failed requests.
type ErrorResp struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one failure. The Fields slice is only filled
// for the ValidationError kind.
type ErrorDetail struct {
	Kind    cerr.Kind         `json:"kind"`
	Message string            `json:"message"`
	Fields  []cerr.FieldError `json:"fields,omitempty"`
}

// Body decodes the JSON object which is sent as the request body into
// a raw field map. A missing or malformed body is reported to the
// client and false is returned, so the caller should just return.
func Body(c *gin.Context) (map[string]any, bool) {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		SerErr(c, cerr.BadRequest(errors.New("missing JSON body")))
		return nil, false
	}
	d := json.NewDecoder(io.LimitReader(c.Request.Body, MaxBodySize))
	d.UseNumber()
	var raw map[string]any
	if err := d.Decode(&raw); err != nil {
		SerErr(c, cerr.BadRequest(fmt.Errorf("malformed JSON body: %w", err)))
		return nil, false
	}
	if raw == nil {
		SerErr(c, cerr.BadRequest(errors.New("JSON body must be an object")))
		return nil, false
	}
	return raw, true
}

// Query returns the first value of each query parameter as a raw field
// map.
func Query(c *gin.Context) map[string]any {
	return validation.QueryMap(c.Request.URL.Query())
}

// SerErr serializes the err error as an error envelope. The HTTP status
// code and kind are taken from the first *cerr.Error in the err chain
// and other errors are reported as Internal. Internal error messages
// are not leaked to the client. Every error is logged once here, with
// the request correlation id.
func SerErr(c *gin.Context, err error) {
	var ce *cerr.Error
	if !errors.As(err, &ce) {
		ce = cerr.Internal(err)
	}
	detail := ErrorDetail{Kind: ce.Kind, Fields: ce.Fields}
	switch ce.Kind {
	case cerr.KindInternal:
		detail.Message = "internal error"
		log.Error(c, "request failed",
			log.Kind(ce.Kind), log.Err("err", err),
			slogPath(c),
		)
	case cerr.KindTimeout:
		detail.Message = "store call timed out"
		log.Error(c, "request timed out",
			log.Kind(ce.Kind), log.Err("err", err),
			slogPath(c),
		)
	default:
		detail.Message = ce.Err.Error()
		log.Warn(c, "request rejected",
			log.Kind(ce.Kind), log.Err("err", err),
			slogPath(c),
		)
	}
	c.AbortWithStatusJSON(ce.HTTPStatusCode, ErrorResp{Error: detail})
}

func slogPath(c *gin.Context) slog.Attr {
	return slog.String("path", c.Request.URL.Path)
}
