// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package log wraps the log/slog package for the use cases and the
// adapters. Its Debug, Info, Warn, and Error functions take a context
// and statically typed slog.Attr values (avoiding the interleaved key
// and value arguments of slog.Info and friends) and report the file
// and line of their caller. The default logger is used, so the process
// chooses its handler once (see NewHandler) at start-up.
package log

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

func Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelDebug, msg, attrs)
}

func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelInfo, msg, attrs)
}

func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelWarn, msg, attrs)
}

func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelError, msg, attrs)
}

// emit must be called directly by the exported functions above, since
// it skips exactly one frame of this package when finding the caller.
func emit(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	l := slog.Default()
	if !l.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:]) // Callers, emit, and Info (or others)
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.AddAttrs(attrs...)
	_ = l.Handler().Handle(ctx, r)
}

// Err returns an Attr holding the err message, or "no-error" for nil.
func Err(key string, err error) slog.Attr {
	if err == nil {
		return slog.String(key, "no-error")
	}
	return slog.String(key, err.Error())
}

// Kind returns the "kind" Attr of an error kind, such as cerr.Kind.
func Kind[K ~string](value K) slog.Attr {
	return slog.String("kind", string(value))
}
