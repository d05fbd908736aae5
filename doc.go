// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the voteguard API server.

voteguard registers voters against an official electoral roll using a live
face capture and an identity document, then admits eligible voters to cast
exactly one ballot per election while client-side fraud signals are tallied.

# Starting the Server

	DATABASE_URL=voteguard.db ADMIN_TOKEN=... ADMIN_KEY_SALT=... \
	INTEGRITY_SALT=... DEEPFACE_URL=http://localhost:5005 go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -deepface http://deepface:5005

A .env file in the working directory is loaded first when present.

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite path or PostgreSQL connection string
  - ADMIN_TOKEN (-admin-token): registry administrator token
  - ADMIN_KEY_SALT (-admin-salt): secret for per-election admin keys
  - INTEGRITY_SALT (-integrity-salt): secret for vote integrity tokens
  - DEEPFACE_URL (-deepface): face embedding service

Optional settings:

  - PORT (-p): server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - GEMINI_API_KEY: enables document OCR
  - COUNTER_BACKEND (-counter) and REDIS_ADDR (-redis): violation counter
  - ELECTION_SWEEP (-sweep): cron spec for election status recompute

# Architecture

  - handlers: HTTP request handlers (voters, roll, elections, voting, events)
  - router: service wiring and routes using Go 1.22+ routing
  - middleware: CORS, logging, auth and JSON helpers
  - verification: registration pipeline and voter state machine
  - biometric, identity, ocr: face matching, roll matching, document fields
  - ballot, fraud, election: vote casting, fraud signals, election lifecycle
  - store, db: persistence and schema
  - importer and cmd/rollimport: bulk electoral roll loading

See package documentation for each component.
*/
package main
