// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package fraud

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/danielhkuo/voteguard/apperr"
	"github.com/danielhkuo/voteguard/models"
	"github.com/danielhkuo/voteguard/store"
	"github.com/danielhkuo/voteguard/testutil"
)

func setupAggregator(t *testing.T) (*Aggregator, *store.Store, string, string) {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	s := store.New(conn)
	electionID, _ := testutil.CreateTestElection(t, conn, testutil.GetTestConfig(), models.ElectionActive)
	voterID, _ := testutil.CreateTestVoter(t, conn, testutil.EligibleVoter())
	return NewAggregator(s, nil, 3, 0.5), s, voterID, electionID
}

func TestReport_BlocksAfterThreshold(t *testing.T) {
	a, _, voterID, electionID := setupAggregator(t)
	ctx := context.Background()

	wantLevels := []string{models.RiskLow, models.RiskLow, models.RiskMedium, models.RiskHigh, models.RiskHigh}
	for i, want := range wantLevels {
		r, err := a.Report(ctx, voterID, electionID, models.FraudSignalRequest{Type: models.SignalTabBlur})
		if err != nil {
			t.Fatalf("Report() #%d error = %v", i+1, err)
		}
		if r.Violations != i+1 {
			t.Errorf("violations = %d, want %d", r.Violations, i+1)
		}
		if r.Alert == nil || r.Alert.RiskLevel != want {
			t.Errorf("signal %d: alert = %+v, want level %s", i+1, r.Alert, want)
		}
		wantBlocked := i+1 > 3
		if r.Blocked != wantBlocked {
			t.Errorf("signal %d: blocked = %v, want %v", i+1, r.Blocked, wantBlocked)
		}

		blocked, err := a.Blocked(ctx, voterID, electionID)
		if err != nil || blocked != wantBlocked {
			t.Errorf("Blocked() after %d signals = %v, %v", i+1, blocked, err)
		}
	}
}

func TestReport_RiskScoreBelowFloorIgnored(t *testing.T) {
	a, s, voterID, electionID := setupAggregator(t)
	ctx := context.Background()

	r, err := a.Report(ctx, voterID, electionID, models.FraudSignalRequest{Type: models.SignalRiskScore, RiskScore: 0.2})
	if err != nil {
		t.Fatal(err)
	}
	if r.Violations != 0 || r.Alert != nil {
		t.Errorf("low risk score should not count: %+v", r)
	}

	r, err = a.Report(ctx, voterID, electionID, models.FraudSignalRequest{Type: models.SignalRiskScore, RiskScore: 0.9})
	if err != nil {
		t.Fatal(err)
	}
	if r.Violations != 1 || r.Alert == nil || r.Alert.RiskLevel != models.RiskHigh {
		t.Errorf("high risk score should count as HIGH: %+v", r)
	}
	if r.Blocked {
		t.Error("one violation must not block")
	}

	alerts, _ := s.ListFraudAlerts(ctx, electionID)
	if len(alerts) != 1 {
		t.Errorf("expected 1 alert, got %d", len(alerts))
	}
}

func TestReport_ZeroRiskFloorCountsEveryScore(t *testing.T) {
	_, s, voterID, electionID := setupAggregator(t)
	a := NewAggregator(s, nil, 3, 0)
	if a.RiskFloor != 0 {
		t.Fatalf("RiskFloor = %v, want 0", a.RiskFloor)
	}

	r, err := a.Report(context.Background(), voterID, electionID,
		models.FraudSignalRequest{Type: models.SignalRiskScore, RiskScore: 0})
	if err != nil {
		t.Fatal(err)
	}
	if r.Violations != 1 || r.Alert == nil {
		t.Errorf("zero floor should count a zero score: %+v", r)
	}

	if NewAggregator(s, nil, 3, -1).RiskFloor != DefaultRiskFloor {
		t.Error("a negative floor should fall back to the default")
	}
}

func TestReport_InvalidSignal(t *testing.T) {
	a, _, voterID, electionID := setupAggregator(t)

	tests := []models.FraudSignalRequest{
		{Type: "MOUSE_WIGGLE"},
		{Type: models.SignalRiskScore, RiskScore: 1.5},
	}
	for _, sig := range tests {
		if _, err := a.Report(context.Background(), voterID, electionID, sig); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("Report(%+v) expected ErrInvalidInput, got %v", sig, err)
		}
	}
}

func TestBlocked_NoSession(t *testing.T) {
	a, _, voterID, electionID := setupAggregator(t)
	blocked, err := a.Blocked(context.Background(), voterID, electionID)
	if err != nil || blocked {
		t.Errorf("Blocked() without session = %v, %v", blocked, err)
	}
}

func TestSession_GetOrCreate(t *testing.T) {
	a, _, voterID, electionID := setupAggregator(t)
	ctx := context.Background()

	first, err := a.Session(ctx, voterID, electionID)
	if err != nil || !first.IsNew {
		t.Fatalf("first Session() = %+v, %v", first, err)
	}
	if _, err := a.Report(ctx, voterID, electionID, models.FraudSignalRequest{Type: models.SignalFocusLoss}); err != nil {
		t.Fatal(err)
	}
	second, err := a.Session(ctx, voterID, electionID)
	if err != nil || second.IsNew || second.SessionID != first.SessionID || second.Violations != 1 {
		t.Errorf("second Session() = %+v, %v", second, err)
	}
}

func TestRedisCounter(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	c, err := NewRedisCounter(addr)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	c.Prefix = "voteguard:test:" + uuid.NewString() + ":"

	ctx := context.Background()
	n, err := c.Count(ctx, "s1")
	if err != nil || n != 0 {
		t.Fatalf("Count() on missing key = %d, %v", n, err)
	}
	for want := 1; want <= 3; want++ {
		n, err := c.Increment(ctx, "s1")
		if err != nil || n != want {
			t.Errorf("Increment() = %d, %v; want %d", n, err, want)
		}
	}
	n, _ = c.Count(ctx, "s1")
	if n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}
	c.Client.Del(ctx, c.key("s1"))
}
