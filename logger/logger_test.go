// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestKeyValuesReachCore(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := Logger
	Logger = zap.New(core).Sugar()
	defer func() { Logger = prev }()

	Info("vote recorded", "election_id", "e1", "voter_id", "v1")
	Warning("signal ignored", "reason", "below floor")
	Error("insert failed", "error", "boom")

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[1].Level != zapcore.WarnLevel || entries[2].Level != zapcore.ErrorLevel {
		t.Errorf("unexpected levels: %v %v %v", entries[0].Level, entries[1].Level, entries[2].Level)
	}
	fields := entries[0].ContextMap()
	if fields["election_id"] != "e1" || fields["voter_id"] != "v1" {
		t.Errorf("fields not carried: %v", fields)
	}
}

func TestInitFallsBackToInfo(t *testing.T) {
	prev := Logger
	defer func() { Logger = prev }()

	if err := Init("not-a-level", "json"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if !Logger.Desugar().Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be enabled")
	}
	if Logger.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug should be disabled for the fallback level")
	}
}
