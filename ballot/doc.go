// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ballot casts votes.
//
// A ballot is admitted only when the voter is eligible, the election is
// ACTIVE, the candidate belongs to the election and the voter's session is not
// blocked. The write itself is a single transaction guarded by a uniqueness
// constraint on (election, voter), so concurrent submissions from several
// devices produce exactly one vote. Each vote carries an HMAC-SHA3-256
// integrity token that VerifyReceipt recomputes.
package ballot
