// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"database/sql"
	"time"
)

// Store is the repository handle passed to every component that reads or
// writes persistent state. Writes publish to Feed.
type Store struct {
	db   *sql.DB
	Feed *Feed
	now  func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{db: db, Feed: NewFeed(), now: now}
}

// now drops the monotonic reading and sub-microsecond precision so stored
// times compare equal after a round trip through either backend.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Now returns the store's clock reading.
func (s *Store) Now() time.Time {
	return s.now()
}

// DB exposes the underlying handle for health checks and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

type scanner interface {
	Scan(dest ...any) error
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func ptrString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func ptrTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
