// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/voteguard/apperr"
	"github.com/danielhkuo/voteguard/db"
	"github.com/danielhkuo/voteguard/models"
)

// HasVoted is the fast-path duplicate check. RecordVote is authoritative.
func (s *Store) HasVoted(ctx context.Context, electionID, voterID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM vote_transaction WHERE election_id = $1 AND voter_id = $2
		)
	`, electionID, voterID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check existing vote: %w", err)
	}
	return exists, nil
}

// RecordVote inserts the transaction and increments the candidate counter as
// one unit. A second vote for the same (election, voter) returns
// apperr.ErrDuplicateVote and changes nothing.
func (s *Store) RecordVote(ctx context.Context, v *models.VoteTransaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin vote: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO vote_transaction (id, election_id, candidate_id, voter_id, integrity_token, nonce, risk_score, cast_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, v.ID, v.ElectionID, v.CandidateID, v.VoterID, v.IntegrityToken, v.Nonce, v.RiskScore, v.CastAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("record vote: %w", apperr.ErrDuplicateVote)
		}
		return fmt.Errorf("record vote: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE candidate SET vote_count = vote_count + 1
		WHERE id = $1 AND election_id = $2
	`, v.CandidateID, v.ElectionID)
	if err != nil {
		return fmt.Errorf("increment candidate: %w", err)
	}
	if err := expectOne(res, "candidate", v.CandidateID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("record vote: %w", apperr.ErrDuplicateVote)
		}
		return fmt.Errorf("commit vote: %w", err)
	}

	s.Feed.Publish(Change{Entity: EntityVote, Op: OpCreated, ID: v.ID, ElectionID: v.ElectionID, At: v.CastAt})
	return nil
}

func (s *Store) GetVoteTransaction(ctx context.Context, id string) (models.VoteTransaction, error) {
	var v models.VoteTransaction
	var risk sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, election_id, candidate_id, voter_id, integrity_token, nonce, risk_score, cast_at
		FROM vote_transaction WHERE id = $1
	`, id).Scan(&v.ID, &v.ElectionID, &v.CandidateID, &v.VoterID, &v.IntegrityToken, &v.Nonce, &risk, &v.CastAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.VoteTransaction{}, fmt.Errorf("vote %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return models.VoteTransaction{}, fmt.Errorf("get vote: %w", err)
	}
	if risk.Valid {
		v.RiskScore = &risk.Float64
	}
	return v, nil
}

func (s *Store) CountVotes(ctx context.Context, electionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM vote_transaction WHERE election_id = $1
	`, electionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}
	return n, nil
}
