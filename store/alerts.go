// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"github.com/danielhkuo/voteguard/models"
)

// AppendFraudAlert inserts a. Alerts are never updated or deleted.
func (s *Store) AppendFraudAlert(ctx context.Context, a *models.FraudAlert) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fraud_alert (id, voter_id, election_id, session_id, reason, risk_level, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, a.ID, a.VoterID, a.ElectionID, a.SessionID, a.Reason, a.RiskLevel, a.Details, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("append fraud alert: %w", err)
	}
	s.Feed.Publish(Change{Entity: EntityFraudAlert, Op: OpCreated, ID: a.ID, ElectionID: a.ElectionID, At: a.CreatedAt})
	return nil
}

// ListFraudAlerts returns alerts for an election oldest first. ULID ids sort
// by creation time.
func (s *Store) ListFraudAlerts(ctx context.Context, electionID string) ([]models.FraudAlert, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, voter_id, election_id, session_id, reason, risk_level, details, created_at
		FROM fraud_alert WHERE election_id = $1
		ORDER BY id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("list fraud alerts: %w", err)
	}
	defer rows.Close()

	alerts := []models.FraudAlert{}
	for rows.Next() {
		var a models.FraudAlert
		if err := rows.Scan(&a.ID, &a.VoterID, &a.ElectionID, &a.SessionID, &a.Reason, &a.RiskLevel, &a.Details, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan fraud alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
