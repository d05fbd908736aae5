// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the voteguard API.

# Handler Types

Each handler is a struct holding the services it calls and the Config:

  - VoterHandler: registration, re-verification and admin review
  - RollHandler: electoral roll upload and lookup
  - ElectionHandler: election lifecycle, candidates and results
  - VotingHandler: sessions, fraud signals, ballots and receipts
  - EventsHandler: server-sent change events
  - HealthHandler: health check for load balancers

Handlers never check credentials themselves. The router wraps them with
middleware.RequireAdmin, RequireElectionAdmin or RequireVoter, and voter
handlers read the caller with middleware.VoterFromContext.

# Errors

Service errors are passed to middleware.AppError, which maps the wrapped
apperr kind to a status code and a machine-readable "kind" field:

	422 liveness_failed, identity_mismatch
	409 duplicate_id, duplicate_vote, election_closed
	403 not_eligible, session_blocked
	503 service_unavailable (with Retry-After)
*/
package handlers
