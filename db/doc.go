// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles connections, schema creation, and constraint detection.

# Connections

Open selects the driver by database type (postgres via lib/pq, sqlite via
modernc.org/sqlite) and pings the server:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

SQLite connections are limited to one open connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL avoids backend-specific types so one schema serves both drivers.

# Tables

  - roll_record: Official electoral roll, unique aadhaar_number and epic_number
  - voter: Identity records with verification status and flags
  - election: Election window and status
  - candidate: Candidates with a vote counter
  - vote_transaction: One row per (election_id, voter_id)
  - voting_session: One row per (voter_id, election_id) with violation count
  - fraud_alert: Append-only audit trail

# Relationships

	election 1──* candidate
	election 1──* vote_transaction
	voter    1──* vote_transaction
	voter    1──* voting_session

# Uniqueness

Uniqueness is enforced by the store, never by read-then-insert:

  - voter.aadhaar_number, voter.epic_number (NULL when absent)
  - vote_transaction.(election_id, voter_id)
  - voting_session.(voter_id, election_id)

IsUniqueViolation recognizes the resulting errors from both drivers.
*/
package db
