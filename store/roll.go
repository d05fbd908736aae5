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

const rollColumns = `
	id, full_name, father_name, date_of_birth, gender, state, district, city,
	aadhaar_number, epic_number, polling_location, created_at`

// InsertRollRecords writes records in one transaction. Records whose ID
// numbers are already on the roll are skipped, not failed.
func (s *Store) InsertRollRecords(ctx context.Context, records []models.RollRecord) (inserted, skipped int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin roll import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO roll_record (`+rollColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return 0, 0, fmt.Errorf("prepare roll insert: %w", err)
	}
	defer stmt.Close()

	now := s.now()
	ids := make([]string, 0, len(records))
	for i := range records {
		r := &records[i]
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		r.CreatedAt = now

		res, err := stmt.ExecContext(ctx, r.ID, r.FullName, r.FatherName, r.DateOfBirth, r.Gender,
			r.State, r.District, r.City, nullString(models.NormalizeIDNumber(r.AadhaarNumber)),
			nullString(models.NormalizeIDNumber(r.EPICNumber)), r.PollingLocation, r.CreatedAt)
		if err != nil {
			return 0, 0, fmt.Errorf("insert roll record %d: %w", i, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, 0, fmt.Errorf("insert roll record %d: %w", i, err)
		}
		if n == 0 {
			skipped++
			continue
		}
		inserted++
		ids = append(ids, r.ID)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit roll import: %w", err)
	}

	for _, id := range ids {
		s.Feed.Publish(Change{Entity: EntityRollRecord, Op: OpCreated, ID: id, At: now})
	}
	return inserted, skipped, nil
}

func (s *Store) GetRollRecord(ctx context.Context, id string) (models.RollRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+rollColumns+` FROM roll_record WHERE id = $1`, id)
	r, err := scanRoll(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RollRecord{}, fmt.Errorf("roll record %s: %w", id, apperr.ErrNotFound)
	}
	return r, err
}

// FindByIDNumber matches either national-ID column.
func (s *Store) FindByIDNumber(ctx context.Context, idNumber string) (models.RollRecord, error) {
	idNumber = models.NormalizeIDNumber(idNumber)
	if idNumber == "" {
		return models.RollRecord{}, fmt.Errorf("empty id number: %w", apperr.ErrNotFound)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+rollColumns+` FROM roll_record
		WHERE aadhaar_number = $1 OR epic_number = $1
		ORDER BY created_at
		LIMIT 1
	`, idNumber)
	r, err := scanRoll(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RollRecord{}, fmt.Errorf("roll record for id number: %w", apperr.ErrNotFound)
	}
	return r, err
}

func (s *Store) CountRollRecords(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM roll_record`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count roll records: %w", err)
	}
	return n, nil
}

func scanRoll(row scanner) (models.RollRecord, error) {
	var r models.RollRecord
	var aadhaar, epic sql.NullString
	err := row.Scan(&r.ID, &r.FullName, &r.FatherName, &r.DateOfBirth, &r.Gender, &r.State,
		&r.District, &r.City, &aadhaar, &epic, &r.PollingLocation, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RollRecord{}, err
		}
		return models.RollRecord{}, fmt.Errorf("scan roll record: %w", err)
	}
	r.AadhaarNumber = aadhaar.String
	r.EPICNumber = epic.String
	return r, nil
}
