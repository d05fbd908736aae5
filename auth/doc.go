// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides authentication and token generation utilities.

# Admin Token

Registry operations (voter status overrides, cross-verification, roll uploads,
fraud alert review) require the configured admin token in X-Admin-Token:

	err := auth.ValidateAdminToken(r.Header.Get("X-Admin-Token"), cfg.AdminToken)

An empty configured token never authorizes.

# Election Admin Keys

Election admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(electionID, salt)
	err := auth.ValidateAdminKey(electionID, adminKey, salt)

The key is URL-safe base64 encoded without padding, so it can be validated
without storing it.

# Voter Tokens

Voter tokens are random 24-byte (192-bit) secrets issued at registration:

	token, err := auth.GenerateVoterToken()

# Vote Integrity Tokens

Each recorded vote carries an HMAC-SHA3-256 over its election, voter,
candidate, nonce, and cast time:

	token := auth.IntegrityToken(electionID, voterID, candidateID, nonce, castAt, salt)
	ok := auth.VerifyIntegrityToken(token, electionID, voterID, candidateID, nonce, castAt, salt)

Fields are NUL-delimited and the time is normalized to UTC.

# ID Generation

Random hex IDs, used for vote nonces:

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

For privacy-preserving fraud alerts:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
