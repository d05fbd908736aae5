// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/danielhkuo/voteguard/apperr"
	"github.com/danielhkuo/voteguard/models"
)

// GetOrCreateSession returns the voting session for (voter, election),
// creating it on first use. isNew reports whether this call created it.
func (s *Store) GetOrCreateSession(ctx context.Context, voterID, electionID string) (models.VotingSession, bool, error) {
	now := s.now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO voting_session (id, voter_id, election_id, violations, created_at, last_seen_at)
		VALUES ($1, $2, $3, 0, $4, $4)
		ON CONFLICT (voter_id, election_id) DO NOTHING
	`, uuid.NewString(), voterID, electionID, now)
	if err != nil {
		return models.VotingSession{}, false, fmt.Errorf("create session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.VotingSession{}, false, fmt.Errorf("create session: %w", err)
	}

	sess, err := s.GetSession(ctx, voterID, electionID)
	if err != nil {
		return models.VotingSession{}, false, err
	}
	if n == 1 {
		s.Feed.Publish(Change{Entity: EntitySession, Op: OpCreated, ID: sess.ID, ElectionID: electionID, At: now})
	}
	return sess, n == 1, nil
}

func (s *Store) GetSession(ctx context.Context, voterID, electionID string) (models.VotingSession, error) {
	var sess models.VotingSession
	err := s.db.QueryRowContext(ctx, `
		SELECT id, voter_id, election_id, violations, created_at, last_seen_at
		FROM voting_session WHERE voter_id = $1 AND election_id = $2
	`, voterID, electionID).Scan(&sess.ID, &sess.VoterID, &sess.ElectionID, &sess.Violations, &sess.CreatedAt, &sess.LastSeenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.VotingSession{}, fmt.Errorf("session: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return models.VotingSession{}, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// IncrementViolations atomically bumps the counter and returns the new value.
func (s *Store) IncrementViolations(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		UPDATE voting_session SET violations = violations + 1, last_seen_at = $1
		WHERE id = $2
		RETURNING violations
	`, s.now(), sessionID).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("session %s: %w", sessionID, apperr.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("increment violations: %w", err)
	}
	return n, nil
}

// SessionViolations returns the stored counter; a missing session counts zero.
func (s *Store) SessionViolations(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT violations FROM voting_session WHERE id = $1`, sessionID).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("session violations: %w", err)
	}
	return n, nil
}
