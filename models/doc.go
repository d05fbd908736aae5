// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON. Fields carry validate tags checked by
middleware.Validate:

  - RegisterVoterRequest: claims, document (base64), face_frames (base64)
  - ReverifyRequest: document, face_frames
  - UpdateVoterStatusRequest: status (VERIFIED or REJECTED), reason
  - CrossVerifyRequest: roll_record_id (empty means auto-match)
  - CreateElectionRequest: title, description, starts_at, ends_at
  - AddCandidateRequest: name, party
  - CastVoteRequest: candidate_id, optional risk_score
  - FraudSignalRequest: type, risk_score, details

# Response Types

  - VerificationOutcome: voter_id, voter_token, status, flags, comparison, biometric
  - ComparisonResult: per-field roll comparison
  - VoteReceipt: transaction_id, integrity_token, cast_at
  - SessionResponse, FraudReport: voting session violation state
  - ElectionResults: election with candidate tallies
  - ErrorResponse: error, message, kind

# Domain Types

  - Voter: identity record with verification status and flags
  - RollRecord: official electoral-roll entry
  - Election, Candidate: ballot definitions
  - VoteTransaction: one recorded vote, unique per (election, voter)
  - FraudAlert: append-only audit entry
  - VotingSession: per (voter, election) violation counter

# Constants

Verification status:

	StatusNotStarted = "NOT_STARTED"
	StatusPending    = "PENDING"
	StatusVerified   = "VERIFIED"
	StatusRejected   = "REJECTED"

Election status:

	ElectionUpcoming = "UPCOMING"
	ElectionActive   = "ACTIVE"
	ElectionEnded    = "ENDED"

Fraud signals and risk levels:

	SignalTabBlur, SignalVisibilityHidden, SignalFocusLoss, SignalRiskScore
	RiskLow, RiskMedium, RiskHigh
*/
package models
