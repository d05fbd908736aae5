// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package verification

import (
	"fmt"
	"strings"

	"github.com/danielhkuo/voteguard/apperr"
	"github.com/danielhkuo/voteguard/biometric"
	"github.com/danielhkuo/voteguard/models"
)

// BiometricOutcome is the face-versus-document comparison. DocumentAvailable
// is false when the document could not be compared (a PDF).
type BiometricOutcome struct {
	DocumentAvailable bool
	Match             biometric.Match
}

// Decision is the status and flags written for a verification attempt.
type Decision struct {
	Status                string
	ElectoralRollVerified bool
	ManualVerifyRequested bool
	Reason                string
}

// Decide applies the registration decision table. A biometric non-match is
// ErrIdentityMismatch whatever the roll says.
func Decide(cmp models.ComparisonResult, bio BiometricOutcome) (Decision, error) {
	if bio.DocumentAvailable && !bio.Match.Matched {
		return Decision{}, fmt.Errorf("face does not match document (distance %.2f): %w",
			bio.Match.Distance, apperr.ErrIdentityMismatch)
	}

	rollVerified := cmp.Found && cmp.Verified

	if !bio.DocumentAvailable {
		return Decision{
			Status:                models.StatusPending,
			ElectoralRollVerified: rollVerified,
			ManualVerifyRequested: true,
			Reason:                "document could not be compared to the live capture; manual review required",
		}, nil
	}

	switch {
	case rollVerified:
		return Decision{
			Status:                models.StatusVerified,
			ElectoralRollVerified: true,
		}, nil
	case cmp.Found:
		return Decision{
			Status:                models.StatusPending,
			ManualVerifyRequested: true,
			Reason:                "electoral roll fields disagree: " + strings.Join(cmp.Mismatches, ", "),
		}, nil
	default:
		return Decision{
			Status: models.StatusPending,
			Reason: "no electoral roll record found",
		}, nil
	}
}

// rollUnavailable is the decision when the roll could not be consulted.
func rollUnavailable(bio BiometricOutcome, cause error) (Decision, error) {
	if bio.DocumentAvailable && !bio.Match.Matched {
		return Decide(models.ComparisonResult{}, bio)
	}
	return Decision{
		Status:                models.StatusPending,
		ManualVerifyRequested: true,
		Reason:                "electoral roll could not be checked: " + cause.Error(),
	}, nil
}

// documentConflict downgrades d when the document's ID number matches
// neither claimed number.
func documentConflict(d Decision, fields *models.OCRFields, claims models.Claims) Decision {
	if fields == nil {
		return d
	}
	docID := models.NormalizeIDNumber(fields.IDNumber)
	if docID == "" {
		return d
	}
	if docID == models.NormalizeIDNumber(claims.AadhaarNumber) || docID == models.NormalizeIDNumber(claims.EPICNumber) {
		return d
	}

	if d.Status == models.StatusVerified {
		d.Status = models.StatusPending
	}
	d.ManualVerifyRequested = true
	reason := "document ID number differs from the claimed ID numbers"
	if d.Reason != "" {
		reason = d.Reason + "; " + reason
	}
	d.Reason = reason
	return d
}

// afterRejection keeps an administrator's rejection under review: a
// re-verification that would pass lands in PENDING with manual review.
func afterRejection(d Decision) Decision {
	if d.Status == models.StatusVerified {
		d.Status = models.StatusPending
	}
	d.ManualVerifyRequested = true
	reason := "previously rejected by an administrator; manual review required"
	if d.Reason != "" {
		reason = d.Reason + "; " + reason
	}
	d.Reason = reason
	return d
}

// Actions that move a voter between statuses.
const (
	ActionRegister      = "register"
	ActionAdminOverride = "admin_override"
	ActionReverify      = "reverify"
	ActionCrossVerify   = "cross_verify"
)

// CanTransition reports whether action may move a voter from one status to
// another.
func CanTransition(from, to, action string) bool {
	switch action {
	case ActionRegister:
		return from == models.StatusNotStarted &&
			(to == models.StatusPending || to == models.StatusVerified)
	case ActionAdminOverride:
		return to == models.StatusVerified || to == models.StatusRejected
	case ActionReverify:
		return from != models.StatusNotStarted && to == models.StatusPending
	case ActionCrossVerify:
		return from == to
	}
	return false
}

// Eligible reports whether v may cast a ballot. Status alone is not enough;
// the roll and liveness axes are checked independently.
func Eligible(v models.Voter) bool {
	return EligibilityError(v) == nil
}

// EligibilityError explains why v may not vote, or returns nil.
func EligibilityError(v models.Voter) error {
	switch {
	case v.Status != models.StatusVerified:
		return fmt.Errorf("verification status is %s: %w", v.Status, apperr.ErrNotEligible)
	case !v.ElectoralRollVerified:
		return fmt.Errorf("not verified against the electoral roll: %w", apperr.ErrNotEligible)
	case !v.LivenessVerified:
		return fmt.Errorf("liveness not verified: %w", apperr.ErrNotEligible)
	}
	return nil
}
