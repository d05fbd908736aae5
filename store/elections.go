// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/voteguard/apperr"
	"github.com/danielhkuo/voteguard/models"
)

const electionColumns = `id, title, description, status, starts_at, ends_at, ended_at, created_at`

func (s *Store) CreateElection(ctx context.Context, e *models.Election) error {
	e.CreatedAt = s.now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO election (`+electionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.ID, e.Title, e.Description, e.Status, e.StartsAt, e.EndsAt, e.EndedAt, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("create election: %w", err)
	}
	s.Feed.Publish(Change{Entity: EntityElection, Op: OpCreated, ID: e.ID, ElectionID: e.ID, At: e.CreatedAt})
	return nil
}

func (s *Store) GetElection(ctx context.Context, id string) (models.Election, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+electionColumns+` FROM election WHERE id = $1`, id)
	e, err := scanElection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Election{}, fmt.Errorf("election %s: %w", id, apperr.ErrNotFound)
	}
	return e, err
}

func (s *Store) ListElections(ctx context.Context) ([]models.Election, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+electionColumns+` FROM election ORDER BY starts_at`)
	if err != nil {
		return nil, fmt.Errorf("list elections: %w", err)
	}
	defer rows.Close()

	elections := []models.Election{}
	for rows.Next() {
		e, err := scanElection(rows)
		if err != nil {
			return nil, err
		}
		elections = append(elections, e)
	}
	return elections, rows.Err()
}

// UpdateElectionStatus writes a time-derived status. Rows already ENDED are
// never touched, so a manual stop survives concurrent recomputation. It
// reports whether the row changed.
func (s *Store) UpdateElectionStatus(ctx context.Context, id, status string) (bool, error) {
	var endedAt *time.Time
	if status == models.ElectionEnded {
		t := s.now()
		endedAt = &t
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE election SET status = $1, ended_at = $2
		WHERE id = $3 AND status <> $4 AND status <> $1
	`, status, endedAt, id, models.ElectionEnded)
	if err != nil {
		return false, fmt.Errorf("update election status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update election status: %w", err)
	}
	if n > 0 {
		s.Feed.Publish(Change{Entity: EntityElection, Op: OpUpdated, ID: id, ElectionID: id})
	}
	return n > 0, nil
}

// EndElection marks the election ENDED. Repeated calls keep the first
// ended_at.
func (s *Store) EndElection(ctx context.Context, id string) (models.Election, error) {
	now := s.now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE election SET status = $1, ended_at = COALESCE(ended_at, $2)
		WHERE id = $3
	`, models.ElectionEnded, now, id)
	if err != nil {
		return models.Election{}, fmt.Errorf("end election: %w", err)
	}
	if err := expectOne(res, "election", id); err != nil {
		return models.Election{}, err
	}
	s.Feed.Publish(Change{Entity: EntityElection, Op: OpUpdated, ID: id, ElectionID: id, At: now})
	return s.GetElection(ctx, id)
}

func (s *Store) AddCandidate(ctx context.Context, c *models.Candidate) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO candidate (id, election_id, name, party, vote_count)
		VALUES ($1, $2, $3, $4, 0)
	`, c.ID, c.ElectionID, c.Name, c.Party)
	if err != nil {
		return fmt.Errorf("add candidate: %w", err)
	}
	s.Feed.Publish(Change{Entity: EntityCandidate, Op: OpCreated, ID: c.ID, ElectionID: c.ElectionID})
	return nil
}

func (s *Store) GetCandidate(ctx context.Context, electionID, candidateID string) (models.Candidate, error) {
	var c models.Candidate
	err := s.db.QueryRowContext(ctx, `
		SELECT id, election_id, name, party, vote_count
		FROM candidate WHERE id = $1 AND election_id = $2
	`, candidateID, electionID).Scan(&c.ID, &c.ElectionID, &c.Name, &c.Party, &c.VoteCount)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Candidate{}, fmt.Errorf("candidate %s: %w", candidateID, apperr.ErrNotFound)
	}
	if err != nil {
		return models.Candidate{}, fmt.Errorf("get candidate: %w", err)
	}
	return c, nil
}

func (s *Store) ListCandidates(ctx context.Context, electionID string) ([]models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, election_id, name, party, vote_count
		FROM candidate WHERE election_id = $1
		ORDER BY vote_count DESC, name
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.ElectionID, &c.Name, &c.Party, &c.VoteCount); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func scanElection(row scanner) (models.Election, error) {
	var e models.Election
	var endedAt sql.NullTime
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Status, &e.StartsAt, &e.EndsAt, &endedAt, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Election{}, err
		}
		return models.Election{}, fmt.Errorf("scan election: %w", err)
	}
	e.EndedAt = ptrTime(endedAt)
	return e, nil
}
