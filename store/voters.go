// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/voteguard/apperr"
	"github.com/danielhkuo/voteguard/db"
	"github.com/danielhkuo/voteguard/models"
)

const voterColumns = `
	id, first_name, last_name, father_name, date_of_birth, phone, email,
	state, district, city, aadhaar_number, epic_number, access_token,
	face_embedding, liveness_verified, document_type, document_fields,
	status, status_reason, electoral_roll_verified, matched_roll_record_id,
	manual_verify_requested, manual_requested_at, created_at, updated_at`

// CreateVoter inserts v. A national-ID collision returns apperr.ErrDuplicateID.
func (s *Store) CreateVoter(ctx context.Context, v *models.Voter) error {
	v.Claims.Normalize()
	embedding, err := json.Marshal(v.FaceEmbedding)
	if err != nil {
		return fmt.Errorf("encode embedding: %w", err)
	}
	fields, err := encodeFields(v.DocumentFields)
	if err != nil {
		return err
	}

	now := s.now()
	v.CreatedAt, v.UpdatedAt = now, now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO voter (
			id, first_name, last_name, father_name, date_of_birth, phone, email,
			state, district, city, aadhaar_number, epic_number, access_token,
			face_embedding, liveness_verified, document_type, document_fields,
			status, status_reason, electoral_roll_verified, matched_roll_record_id,
			manual_verify_requested, manual_requested_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	`, v.ID, v.Claims.FirstName, v.Claims.LastName, v.Claims.FatherName, v.Claims.DateOfBirth,
		v.Claims.Phone, v.Claims.Email, v.Claims.Address.State, v.Claims.Address.District,
		v.Claims.Address.City, nullString(v.Claims.AadhaarNumber), nullString(v.Claims.EPICNumber),
		v.AccessToken, string(embedding), v.LivenessVerified, v.DocumentType, fields,
		v.Status, v.StatusReason, v.ElectoralRollVerified, v.MatchedRollRecordID,
		v.ManualVerifyRequested, v.ManualRequestedAt, v.CreatedAt, v.UpdatedAt)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("create voter: %w", apperr.ErrDuplicateID)
		}
		return fmt.Errorf("create voter: %w", err)
	}

	s.Feed.Publish(Change{Entity: EntityVoter, Op: OpCreated, ID: v.ID, At: now})
	return nil
}

func (s *Store) GetVoter(ctx context.Context, id string) (models.Voter, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+voterColumns+` FROM voter WHERE id = $1`, id)
	v, err := scanVoter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Voter{}, fmt.Errorf("voter %s: %w", id, apperr.ErrNotFound)
	}
	return v, err
}

func (s *Store) GetVoterByToken(ctx context.Context, token string) (models.Voter, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+voterColumns+` FROM voter WHERE access_token = $1`, token)
	v, err := scanVoter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Voter{}, fmt.Errorf("voter token: %w", apperr.ErrNotFound)
	}
	return v, err
}

// ListVoters returns voters filtered by status; empty status lists all.
func (s *Store) ListVoters(ctx context.Context, status string, limit int) ([]models.Voter, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var rows *sql.Rows
	var err error
	if status == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT `+voterColumns+` FROM voter ORDER BY created_at LIMIT $1`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT `+voterColumns+` FROM voter WHERE status = $1 ORDER BY created_at LIMIT $2`, status, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list voters: %w", err)
	}
	defer rows.Close()

	voters := []models.Voter{}
	for rows.Next() {
		v, err := scanVoter(rows)
		if err != nil {
			return nil, err
		}
		voters = append(voters, v)
	}
	return voters, rows.Err()
}

// NationalIDTaken is an advisory pre-check; the unique constraints decide.
func (s *Store) NationalIDTaken(ctx context.Context, aadhaar, epic string) (bool, error) {
	aadhaar, epic = models.NormalizeIDNumber(aadhaar), models.NormalizeIDNumber(epic)
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM voter
			WHERE ($1 <> '' AND aadhaar_number = $1) OR ($2 <> '' AND epic_number = $2)
		)
	`, aadhaar, epic).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check national id: %w", err)
	}
	return exists, nil
}

// SetVoterStatus overwrites status unconditionally.
func (s *Store) SetVoterStatus(ctx context.Context, id, status, reason string) error {
	now := s.now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE voter SET status = $1, status_reason = $2, updated_at = $3 WHERE id = $4
	`, status, reason, now, id)
	if err != nil {
		return fmt.Errorf("set voter status: %w", err)
	}
	if err := expectOne(res, "voter", id); err != nil {
		return err
	}
	s.Feed.Publish(Change{Entity: EntityVoter, Op: OpUpdated, ID: id, At: now})
	return nil
}

// RequestManualVerification sets the manual flag only when the roll is not
// verified and no request is pending. It reports whether a row changed.
func (s *Store) RequestManualVerification(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE voter
		SET manual_verify_requested = $1, manual_requested_at = $2, updated_at = $2
		WHERE id = $3 AND electoral_roll_verified = $4 AND manual_verify_requested = $4
	`, true, at, id, false)
	if err != nil {
		return false, fmt.Errorf("request manual verification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("request manual verification: %w", err)
	}
	if n == 1 {
		s.Feed.Publish(Change{Entity: EntityVoter, Op: OpUpdated, ID: id, At: at})
	}
	return n == 1, nil
}

// MarkRollVerified records the matched roll record and clears any pending
// manual request. Status is left alone.
func (s *Store) MarkRollVerified(ctx context.Context, id, rollRecordID string) error {
	now := s.now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE voter
		SET electoral_roll_verified = $1, matched_roll_record_id = $2,
			manual_verify_requested = $3, manual_requested_at = NULL, updated_at = $4
		WHERE id = $5
	`, true, rollRecordID, false, now, id)
	if err != nil {
		return fmt.Errorf("mark roll verified: %w", err)
	}
	if err := expectOne(res, "voter", id); err != nil {
		return err
	}
	s.Feed.Publish(Change{Entity: EntityVoter, Op: OpUpdated, ID: id, At: now})
	return nil
}

// SaveVerification persists the outcome of a re-verification run.
func (s *Store) SaveVerification(ctx context.Context, v *models.Voter) error {
	embedding, err := json.Marshal(v.FaceEmbedding)
	if err != nil {
		return fmt.Errorf("encode embedding: %w", err)
	}
	fields, err := encodeFields(v.DocumentFields)
	if err != nil {
		return err
	}

	v.UpdatedAt = s.now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE voter
		SET face_embedding = $1, liveness_verified = $2, document_type = $3,
			document_fields = $4, status = $5, status_reason = $6,
			electoral_roll_verified = $7, matched_roll_record_id = $8,
			manual_verify_requested = $9, manual_requested_at = $10, updated_at = $11
		WHERE id = $12
	`, string(embedding), v.LivenessVerified, v.DocumentType, fields, v.Status, v.StatusReason,
		v.ElectoralRollVerified, v.MatchedRollRecordID, v.ManualVerifyRequested,
		v.ManualRequestedAt, v.UpdatedAt, v.ID)
	if err != nil {
		return fmt.Errorf("save verification: %w", err)
	}
	if err := expectOne(res, "voter", v.ID); err != nil {
		return err
	}
	s.Feed.Publish(Change{Entity: EntityVoter, Op: OpUpdated, ID: v.ID, At: v.UpdatedAt})
	return nil
}

func scanVoter(row scanner) (models.Voter, error) {
	var v models.Voter
	var aadhaar, epic, fields, matched sql.NullString
	var embedding string
	var manualAt sql.NullTime

	err := row.Scan(&v.ID, &v.Claims.FirstName, &v.Claims.LastName, &v.Claims.FatherName,
		&v.Claims.DateOfBirth, &v.Claims.Phone, &v.Claims.Email, &v.Claims.Address.State,
		&v.Claims.Address.District, &v.Claims.Address.City, &aadhaar, &epic, &v.AccessToken,
		&embedding, &v.LivenessVerified, &v.DocumentType, &fields, &v.Status, &v.StatusReason,
		&v.ElectoralRollVerified, &matched, &v.ManualVerifyRequested, &manualAt,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Voter{}, err
		}
		return models.Voter{}, fmt.Errorf("scan voter: %w", err)
	}

	v.Claims.AadhaarNumber = aadhaar.String
	v.Claims.EPICNumber = epic.String
	v.MatchedRollRecordID = ptrString(matched)
	v.ManualRequestedAt = ptrTime(manualAt)

	if embedding != "" {
		if err := json.Unmarshal([]byte(embedding), &v.FaceEmbedding); err != nil {
			return models.Voter{}, fmt.Errorf("decode embedding for voter %s: %w", v.ID, err)
		}
	}
	if fields.Valid && fields.String != "" {
		v.DocumentFields = &models.OCRFields{}
		if err := json.Unmarshal([]byte(fields.String), v.DocumentFields); err != nil {
			return models.Voter{}, fmt.Errorf("decode document fields for voter %s: %w", v.ID, err)
		}
	}
	return v, nil
}

func encodeFields(f *models.OCRFields) (sql.NullString, error) {
	if f == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode document fields: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func expectOne(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", entity, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, apperr.ErrNotFound)
	}
	return nil
}
