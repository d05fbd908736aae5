// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package fraud aggregates client-side integrity signals during a voting session.

Signals are TAB_BLUR, VISIBILITY_HIDDEN, FOCUS_LOSS and RISK_SCORE. Every
counted signal increments the session's violation counter and appends a
FraudAlert with a ULID id, so alerts list in the order they were raised.
RISK_SCORE signals below the risk floor are ignored.

Alert levels:

  - LOW while the count is below the threshold
  - MEDIUM when it reaches the threshold
  - HIGH once the session is blocked, or for a risk score of 0.8 or more

A session is blocked once its violations exceed the threshold (default 3).
The ballot guard consults Blocked before every vote attempt. Recorded votes
are never revisited.

The counter lives on the voting_session row (SQLCounter) or in Redis
(RedisCounter) when several API replicas must share it.
*/
package fraud
