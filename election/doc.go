// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election manages election lifecycle and status recomputation.

Status follows the clock: UPCOMING before starts_at, ACTIVE until ends_at,
ENDED afterwards. A manual Stop sets ENDED immediately, and ENDED is never
recomputed back. The store update is conditional on the row not being
ENDED, so a sweep racing a stop cannot revive the election.

Reads (Get, List, Results) refresh the status before returning it. The
Sweeper runs Sync on a cron schedule so idle elections change status too.
*/
package election
