// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"pq unique", &pq.Error{Code: "23505"}, true},
		{"pq wrapped unique", fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), true},
		{"pq other", &pq.Error{Code: "23503"}, false},
		{"sqlite message", errors.New("constraint failed: UNIQUE constraint failed: voter.aadhaar_number (2067)"), true},
		{"plain", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err); got != tt.want {
				t.Errorf("IsUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSQLiteUniqueViolationDetected(t *testing.T) {
	conn, err := Open(TypeSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer conn.Close()

	if err := CreateSchema(conn); err != nil {
		t.Fatalf("CreateSchema failed: %v", err)
	}
	// Second call is a no-op.
	if err := CreateSchema(conn); err != nil {
		t.Fatalf("CreateSchema not idempotent: %v", err)
	}

	insert := `INSERT INTO roll_record (id, full_name, date_of_birth, aadhaar_number) VALUES ($1, $2, $3, $4)`
	if _, err := conn.Exec(insert, "r1", "A B", "1990-01-01", "111122223333"); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	_, err = conn.Exec(insert, "r2", "C D", "1991-01-01", "111122223333")
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}

	// NULL numbers never collide.
	nullInsert := `INSERT INTO roll_record (id, full_name, date_of_birth) VALUES ($1, $2, $3)`
	if _, err := conn.Exec(nullInsert, "r3", "E F", "1992-01-01"); err != nil {
		t.Fatalf("null insert failed: %v", err)
	}
	if _, err := conn.Exec(nullInsert, "r4", "G H", "1993-01-01"); err != nil {
		t.Fatalf("second null insert failed: %v", err)
	}
}

func TestOpenRejectsUnknownType(t *testing.T) {
	if _, err := Open("oracle", "x"); err == nil {
		t.Error("expected error for unknown database type")
	}
}
