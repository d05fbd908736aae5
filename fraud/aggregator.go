// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package fraud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/danielhkuo/voteguard/apperr"
	"github.com/danielhkuo/voteguard/logger"
	"github.com/danielhkuo/voteguard/models"
	"github.com/danielhkuo/voteguard/store"
)

// Policy defaults
const (
	DefaultThreshold = 3
	DefaultRiskFloor = 0.5
	// HighRisk marks a single RISK_SCORE signal as HIGH regardless of count.
	HighRisk = 0.8
)

// Aggregator records session signals and decides when a session is blocked.
// It never touches recorded votes; a block only gates later attempts.
type Aggregator struct {
	Store   *store.Store
	Counter Counter
	// Threshold is the number of violations tolerated; one more blocks.
	Threshold int
	// RiskFloor is the lowest RISK_SCORE that counts as a violation.
	RiskFloor float64
}

func NewAggregator(s *store.Store, counter Counter, threshold int, riskFloor float64) *Aggregator {
	if counter == nil {
		counter = SQLCounter{Store: s}
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if riskFloor < 0 {
		riskFloor = DefaultRiskFloor
	}
	return &Aggregator{Store: s, Counter: counter, Threshold: threshold, RiskFloor: riskFloor}
}

// Session returns the voter's session for the election, creating it on first use.
func (a *Aggregator) Session(ctx context.Context, voterID, electionID string) (models.SessionResponse, error) {
	sess, isNew, err := a.Store.GetOrCreateSession(ctx, voterID, electionID)
	if err != nil {
		return models.SessionResponse{}, err
	}
	n, err := a.Counter.Count(ctx, sess.ID)
	if err != nil {
		return models.SessionResponse{}, err
	}
	return models.SessionResponse{
		SessionID:  sess.ID,
		IsNew:      isNew,
		Violations: n,
		Blocked:    n > a.Threshold,
	}, nil
}

// Report records one signal. Violations are logged as alerts and never
// fail the caller's session by themselves.
func (a *Aggregator) Report(ctx context.Context, voterID, electionID string, sig models.FraudSignalRequest) (models.FraudReport, error) {
	if err := models.Validate(sig); err != nil {
		return models.FraudReport{}, err
	}

	sess, _, err := a.Store.GetOrCreateSession(ctx, voterID, electionID)
	if err != nil {
		return models.FraudReport{}, err
	}

	if sig.Type == models.SignalRiskScore && sig.RiskScore < a.RiskFloor {
		n, err := a.Counter.Count(ctx, sess.ID)
		if err != nil {
			return models.FraudReport{}, err
		}
		return models.FraudReport{SessionID: sess.ID, Violations: n, Blocked: n > a.Threshold}, nil
	}

	n, err := a.Counter.Increment(ctx, sess.ID)
	if err != nil {
		return models.FraudReport{}, err
	}
	blocked := n > a.Threshold

	alert := &models.FraudAlert{
		ID:         ulid.Make().String(),
		VoterID:    voterID,
		ElectionID: electionID,
		SessionID:  sess.ID,
		Reason:     sig.Type,
		RiskLevel:  a.level(n, sig),
		Details:    details(sig),
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := a.Store.AppendFraudAlert(ctx, alert); err != nil {
		return models.FraudReport{}, fmt.Errorf("record fraud alert: %w", err)
	}

	if n == a.Threshold+1 {
		logger.Warning("voting session blocked",
			"session_id", sess.ID,
			"voter_id", voterID,
			"election_id", electionID,
			"violations", n)
	} else {
		logger.Debug("fraud signal recorded", "session_id", sess.ID, "type", sig.Type, "violations", n)
	}

	return models.FraudReport{SessionID: sess.ID, Violations: n, Blocked: blocked, Alert: alert}, nil
}

// Blocked reports whether the voter's session for the election has exceeded
// the threshold. A voter with no session is not blocked.
func (a *Aggregator) Blocked(ctx context.Context, voterID, electionID string) (bool, error) {
	sess, err := a.Store.GetSession(ctx, voterID, electionID)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	n, err := a.Counter.Count(ctx, sess.ID)
	if err != nil {
		return false, err
	}
	return n > a.Threshold, nil
}

func (a *Aggregator) level(n int, sig models.FraudSignalRequest) string {
	switch {
	case n > a.Threshold:
		return models.RiskHigh
	case sig.Type == models.SignalRiskScore && sig.RiskScore >= HighRisk:
		return models.RiskHigh
	case n == a.Threshold:
		return models.RiskMedium
	}
	return models.RiskLow
}

func details(sig models.FraudSignalRequest) string {
	if sig.Type == models.SignalRiskScore {
		if sig.Details == "" {
			return fmt.Sprintf("risk score %.2f", sig.RiskScore)
		}
		return fmt.Sprintf("risk score %.2f: %s", sig.RiskScore, sig.Details)
	}
	return sig.Details
}
