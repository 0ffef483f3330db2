// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/goccy/go-json"
	"github.com/momeni/realty/pkg/core/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureDefault(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	buf := &bytes.Buffer{}
	h := slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: level, AddSource: true,
	})
	slog.SetDefault(slog.New(log.NewHandler(h)))
	return buf
}

func TestRecordsCarryRequestID(t *testing.T) {
	buf := captureDefault(t, slog.LevelInfo)
	ctx := log.WithRequestID(context.Background(), "req-42")
	log.Warn(ctx, "request rejected",
		log.Kind("NotFound"), log.Err("err", errors.New("missing")),
	)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "request rejected", rec["msg"])
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "req-42", rec[log.RequestIDKey])
	assert.Equal(t, "NotFound", rec["kind"])
	assert.Equal(t, "missing", rec["err"])
	src, ok := rec["source"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, src["file"], "log_test.go")
}

func TestSlogCallsCarryRequestID(t *testing.T) {
	buf := captureDefault(t, slog.LevelInfo)
	ctx := log.WithRequestID(context.Background(), "req-7")
	slog.With("component", "test").InfoContext(ctx, "plain")
	assert.Contains(t, buf.String(), `"request_id":"req-7"`)
	assert.Contains(t, buf.String(), `"component":"test"`)
}

func TestLevelFiltering(t *testing.T) {
	buf := captureDefault(t, slog.LevelWarn)
	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "hidden")
	assert.Zero(t, buf.Len())
	log.Error(context.Background(), "shown", log.Err("err", nil))
	assert.Contains(t, buf.String(), `"err":"no-error"`)
	assert.NotContains(t, buf.String(), log.RequestIDKey)
}
