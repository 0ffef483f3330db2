// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package gin wraps the gin-gonic engine and provides the middlewares
// which are shared by all REST resources, i.e., the request correlation
// id, the structured access log, the panic recovery, and CORS headers.
package gin

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/momeni/realty/pkg/core/log"
)

type HandlerFunc = gin.HandlerFunc
type Engine = gin.Engine

// RequestIDHeader carries the request correlation id.
const RequestIDHeader = "X-Request-ID"

// New instantiates an engine with the given middlewares. The request
// context is exposed through the gin.Context methods (so cancellation
// and the correlation id reach the use cases) and method mismatches are
// told apart from the unmatched routes. Paths with a trailing slash are
// not redirected, so they reach the JSON not found handler.
func New(middlewares ...HandlerFunc) *Engine {
	e := gin.New()
	e.ContextWithFallback = true
	e.RedirectTrailingSlash = false
	e.HandleMethodNotAllowed = true
	e.Use(RequestID())
	e.Use(middlewares...)
	return e
}

// RequestID takes the correlation id from the X-Request-ID (or the
// X-Amzn-Trace-Id) request header or generates a fresh one. The id is
// echoed as a response header and attached to the request context, so
// all log records of the request will carry it.
func RequestID() HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = c.GetHeader("X-Amzn-Trace-Id")
		}
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(
			log.WithRequestID(c.Request.Context(), id),
		)
		c.Next()
	}
}

// Logger emits one structured record per request.
func Logger() HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info(c, "request served",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.Int("size", c.Writer.Size()),
		)
	}
}

// Recovery converts panics of the handlers into 500 responses.
func Recovery() HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		log.Error(c, "handler panicked", slog.Any("panic", err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"kind":    "Internal",
				"message": "internal error",
			},
		})
	})
}

// CORS adds the cross-origin headers for the allowed origins and
// answers the OPTIONS preflight requests. The "*" origin allows all
// origins. An empty list disables the CORS headers.
func CORS(allowedOrigins []string) HandlerFunc {
	wildcard := slices.Contains(allowedOrigins, "*")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case origin == "" || len(allowedOrigins) == 0:
		case wildcard:
			c.Header("Access-Control-Allow-Origin", "*")
		case slices.Contains(allowedOrigins, origin):
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		default:
			c.Next()
			return
		}
		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", strings.Join([]string{
				http.MethodGet, http.MethodPost, http.MethodPatch,
				http.MethodOptions,
			}, ", "))
			c.Header(
				"Access-Control-Allow-Headers",
				"Content-Type, Authorization, "+RequestIDHeader,
			)
			c.Header("Access-Control-Max-Age", "600")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
