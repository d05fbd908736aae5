// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package verification

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/voteguard/apperr"
	"github.com/danielhkuo/voteguard/auth"
	"github.com/danielhkuo/voteguard/biometric"
	"github.com/danielhkuo/voteguard/identity"
	"github.com/danielhkuo/voteguard/logger"
	"github.com/danielhkuo/voteguard/models"
)

// Repository is the voter and roll storage the service reads and writes.
type Repository interface {
	NationalIDTaken(ctx context.Context, aadhaar, epic string) (bool, error)
	CreateVoter(ctx context.Context, v *models.Voter) error
	GetVoter(ctx context.Context, id string) (models.Voter, error)
	SetVoterStatus(ctx context.Context, id, status, reason string) error
	RequestManualVerification(ctx context.Context, id string, at time.Time) (bool, error)
	MarkRollVerified(ctx context.Context, id, rollRecordID string) error
	SaveVerification(ctx context.Context, v *models.Voter) error
	GetRollRecord(ctx context.Context, id string) (models.RollRecord, error)
}

// DocumentReader extracts printed fields from an identity document.
type DocumentReader interface {
	ExtractFields(ctx context.Context, image []byte, docType string) (models.OCRFields, error)
}

// Service runs registration and the later verification actions.
type Service struct {
	Repo      Repository
	Evaluator *identity.Evaluator
	Engine    biometric.Engine
	Liveness  biometric.LivenessGate
	Faces     biometric.Extractor
	// OCR is optional; registration proceeds without document hints.
	OCR DocumentReader

	ExtractTimeout time.Duration
	OCRTimeout     time.Duration
	RollTimeout    time.Duration

	now func() time.Time
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC().Truncate(time.Microsecond)
}

// liveCapture is the outcome of the liveness, face and document steps.
type liveCapture struct {
	live    []float64
	docType string
	bio     BiometricOutcome
	fields  *models.OCRFields
}

// RegisterVoter runs the full registration pipeline. Nothing is written
// unless every step before the final insert succeeds.
func (s *Service) RegisterVoter(ctx context.Context, req models.RegisterVoterRequest) (models.VerificationOutcome, error) {
	req.Claims.Normalize()
	if err := validateRegistration(req); err != nil {
		return models.VerificationOutcome{}, err
	}
	claims := req.Claims

	taken, err := s.Repo.NationalIDTaken(ctx, claims.AadhaarNumber, claims.EPICNumber)
	if err != nil {
		return models.VerificationOutcome{}, err
	}
	if taken {
		return models.VerificationOutcome{}, fmt.Errorf("register voter: %w", apperr.ErrDuplicateID)
	}

	lc, err := s.capture(ctx, req.Document, req.FaceFrames, nil)
	if err != nil {
		return models.VerificationOutcome{}, err
	}

	cmp, decision, err := s.evaluate(ctx, claims, lc)
	if err != nil {
		return models.VerificationOutcome{}, err
	}
	if !CanTransition(models.StatusNotStarted, decision.Status, ActionRegister) {
		return models.VerificationOutcome{}, fmt.Errorf("register voter: unexpected status %s", decision.Status)
	}

	token, err := auth.GenerateVoterToken()
	if err != nil {
		return models.VerificationOutcome{}, err
	}

	v := &models.Voter{
		ID:               uuid.NewString(),
		Claims:           claims,
		AccessToken:      token,
		FaceEmbedding:    lc.live,
		LivenessVerified: true,
		DocumentType:     lc.docType,
		DocumentFields:   lc.fields,
	}
	s.apply(v, decision, cmp)

	if err := s.Repo.CreateVoter(ctx, v); err != nil {
		return models.VerificationOutcome{}, err
	}

	logger.Info("voter registered",
		"voter_id", v.ID,
		"status", v.Status,
		"roll_verified", v.ElectoralRollVerified,
		"manual_review", v.ManualVerifyRequested,
		"distance", lc.bio.Match.Distance)

	out := outcome(v, cmp, lc.bio)
	out.VoterToken = token
	return out, nil
}

// Reverify re-runs liveness, face matching and roll evaluation for an
// existing voter. The new capture must match both the stored reference
// embedding and the document; on any failure the record is left untouched.
func (s *Service) Reverify(ctx context.Context, voterID string, req models.ReverifyRequest) (models.VerificationOutcome, error) {
	if err := models.Validate(req); err != nil {
		return models.VerificationOutcome{}, err
	}

	v, err := s.Repo.GetVoter(ctx, voterID)
	if err != nil {
		return models.VerificationOutcome{}, err
	}
	if !CanTransition(v.Status, models.StatusPending, ActionReverify) {
		return models.VerificationOutcome{}, fmt.Errorf("voter %s cannot re-verify from %s: %w", v.ID, v.Status, apperr.ErrInvalidInput)
	}

	lc, err := s.capture(ctx, req.Document, req.FaceFrames, v.FaceEmbedding)
	if err != nil {
		return models.VerificationOutcome{}, err
	}

	cmp, decision, err := s.evaluate(ctx, v.Claims, lc)
	if err != nil {
		return models.VerificationOutcome{}, err
	}

	if v.Status == models.StatusRejected {
		decision = afterRejection(decision)
	}

	// An earlier cross-verification stays authoritative.
	if v.ElectoralRollVerified && !decision.ElectoralRollVerified && !cmp.Found {
		decision.ElectoralRollVerified = true
		cmp.RollRecordID = deref(v.MatchedRollRecordID)
	}

	v.FaceEmbedding = lc.live
	v.LivenessVerified = true
	v.DocumentType = lc.docType
	v.DocumentFields = lc.fields
	s.apply(&v, decision, cmp)

	if err := s.Repo.SaveVerification(ctx, &v); err != nil {
		return models.VerificationOutcome{}, err
	}

	logger.Info("voter re-verified", "voter_id", v.ID, "status", v.Status, "roll_verified", v.ElectoralRollVerified)
	return outcome(&v, cmp, lc.bio), nil
}

// UpdateVoterStatus is the admin override. It is always permitted and
// repeating it is harmless.
func (s *Service) UpdateVoterStatus(ctx context.Context, voterID, status, reason string) (models.Voter, error) {
	if !CanTransition("", status, ActionAdminOverride) {
		return models.Voter{}, fmt.Errorf("status must be VERIFIED or REJECTED, got %q: %w", status, apperr.ErrInvalidInput)
	}
	if reason == "" {
		reason = "set by administrator"
	}
	if err := s.Repo.SetVoterStatus(ctx, voterID, status, reason); err != nil {
		return models.Voter{}, err
	}
	logger.Info("voter status overridden", "voter_id", voterID, "status", status)
	return s.Repo.GetVoter(ctx, voterID)
}

// RequestManualVerification flags the voter for manual review when the roll
// is unverified and nothing is pending. Status never changes.
func (s *Service) RequestManualVerification(ctx context.Context, voterID string) (models.ManualVerificationResponse, error) {
	v, err := s.Repo.GetVoter(ctx, voterID)
	if err != nil {
		return models.ManualVerificationResponse{}, err
	}
	if v.ElectoralRollVerified {
		return models.ManualVerificationResponse{Message: "Already verified against the electoral roll"}, nil
	}

	at := s.clock()
	changed, err := s.Repo.RequestManualVerification(ctx, voterID, at)
	if err != nil {
		return models.ManualVerificationResponse{}, err
	}
	if !changed {
		return models.ManualVerificationResponse{
			Requested:   true,
			RequestedAt: v.ManualRequestedAt,
			Message:     "A manual verification request is already pending",
		}, nil
	}

	logger.Info("manual verification requested", "voter_id", voterID)
	return models.ManualVerificationResponse{
		Requested:   true,
		RequestedAt: &at,
		Message:     "Manual verification requested",
	}, nil
}

// CrossVerifyElectoralRoll links the voter to a roll record. With an empty
// rollRecordID the roll is searched by the voter's ID numbers and only a
// fully agreeing record is accepted. Status is not changed.
func (s *Service) CrossVerifyElectoralRoll(ctx context.Context, voterID, rollRecordID string) (models.Voter, error) {
	v, err := s.Repo.GetVoter(ctx, voterID)
	if err != nil {
		return models.Voter{}, err
	}

	if rollRecordID == "" {
		rctx, cancel := withTimeout(ctx, s.RollTimeout)
		cmp, err := s.Evaluator.Evaluate(rctx, v.Claims)
		cancel()
		if err != nil {
			return models.Voter{}, unavailable("roll lookup", err)
		}
		if !cmp.Found {
			return models.Voter{}, fmt.Errorf("no roll record for voter %s: %w", voterID, apperr.ErrNotFound)
		}
		if !cmp.Verified {
			return models.Voter{}, fmt.Errorf("roll record fields disagree (%s): %w",
				strings.Join(cmp.Mismatches, ", "), apperr.ErrIdentityMismatch)
		}
		rollRecordID = cmp.RollRecordID
	} else if _, err := s.Repo.GetRollRecord(ctx, rollRecordID); err != nil {
		return models.Voter{}, err
	}

	if err := s.Repo.MarkRollVerified(ctx, voterID, rollRecordID); err != nil {
		return models.Voter{}, err
	}
	logger.Info("voter cross-verified", "voter_id", voterID, "roll_record_id", rollRecordID)
	return s.Repo.GetVoter(ctx, voterID)
}

// capture runs liveness, extracts the live embedding and compares it with the
// document. With a non-nil reference the live capture must also match it.
func (s *Service) capture(ctx context.Context, document []byte, frames [][]byte, reference []float64) (liveCapture, error) {
	live := s.Liveness.Check(frames)
	if !live.Passed {
		return liveCapture{}, fmt.Errorf("%s: %w", live.Reason, apperr.ErrLivenessFailed)
	}

	liveEmb, err := s.extract(ctx, frames[len(frames)/2])
	if err != nil {
		return liveCapture{}, fmt.Errorf("live capture: %w", err)
	}

	if reference != nil {
		m, err := s.Engine.Compare(liveEmb, reference)
		if err != nil {
			return liveCapture{}, fmt.Errorf("compare with reference: %w", err)
		}
		if !m.Matched {
			return liveCapture{}, fmt.Errorf("live capture does not match enrolled face (distance %.2f): %w",
				m.Distance, apperr.ErrIdentityMismatch)
		}
	}

	c := liveCapture{live: liveEmb, docType: http.DetectContentType(document)}
	switch {
	case strings.HasPrefix(c.docType, "image/"):
		docEmb, err := s.extract(ctx, document)
		if err != nil {
			return liveCapture{}, fmt.Errorf("document: %w", err)
		}
		m, err := s.Engine.Compare(liveEmb, docEmb)
		if err != nil {
			return liveCapture{}, fmt.Errorf("compare with document: %w", err)
		}
		c.bio = BiometricOutcome{DocumentAvailable: true, Match: m}
	case c.docType == "application/pdf":
		c.bio = BiometricOutcome{DocumentAvailable: false}
	default:
		return liveCapture{}, fmt.Errorf("unsupported document type %s: %w", c.docType, apperr.ErrInvalidInput)
	}

	if c.bio.DocumentAvailable && !c.bio.Match.Matched {
		_, err := Decide(models.ComparisonResult{}, c.bio)
		return liveCapture{}, err
	}

	c.fields = s.readDocument(ctx, document, c.docType)
	return c, nil
}

// evaluate consults the roll and applies the decision table.
func (s *Service) evaluate(ctx context.Context, claims models.Claims, c liveCapture) (models.ComparisonResult, Decision, error) {
	rctx, cancel := withTimeout(ctx, s.RollTimeout)
	cmp, err := s.Evaluator.Evaluate(rctx, claims)
	cancel()

	var decision Decision
	if err != nil {
		logger.Warning("roll lookup failed; routing to manual review", "error", err)
		cmp = models.ComparisonResult{Message: "Electoral roll could not be checked"}
		decision, err = rollUnavailable(c.bio, err)
	} else {
		decision, err = Decide(cmp, c.bio)
	}
	if err != nil {
		return models.ComparisonResult{}, Decision{}, err
	}
	return cmp, documentConflict(decision, c.fields, claims), nil
}

func (s *Service) apply(v *models.Voter, d Decision, cmp models.ComparisonResult) {
	v.Status = d.Status
	v.StatusReason = d.Reason
	v.ElectoralRollVerified = d.ElectoralRollVerified
	v.MatchedRollRecordID = nil
	if d.ElectoralRollVerified && cmp.RollRecordID != "" {
		id := cmp.RollRecordID
		v.MatchedRollRecordID = &id
	}
	v.ManualVerifyRequested = d.ManualVerifyRequested
	v.ManualRequestedAt = nil
	if d.ManualVerifyRequested {
		at := s.clock()
		v.ManualRequestedAt = &at
	}
}

func (s *Service) extract(ctx context.Context, image []byte) ([]float64, error) {
	ectx, cancel := withTimeout(ctx, s.ExtractTimeout)
	defer cancel()
	emb, err := s.Faces.Extract(ectx, image)
	if err != nil {
		return nil, unavailable("embedding extraction", err)
	}
	return emb, nil
}

// readDocument is best effort; failures are logged and yield nil.
func (s *Service) readDocument(ctx context.Context, document []byte, docType string) *models.OCRFields {
	if s.OCR == nil || !strings.HasPrefix(docType, "image/") {
		return nil
	}
	octx, cancel := withTimeout(ctx, s.OCRTimeout)
	defer cancel()
	fields, err := s.OCR.ExtractFields(octx, document, docType)
	if err != nil {
		logger.Warning("document OCR failed", "error", err)
		return nil
	}
	return &fields
}

func validateRegistration(req models.RegisterVoterRequest) error {
	if err := models.Validate(req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Claims.AadhaarNumber) == "" && strings.TrimSpace(req.Claims.EPICNumber) == "" {
		return fmt.Errorf("aadhaar_number or epic_number is required: %w", apperr.ErrInvalidInput)
	}
	if _, ok := identity.ParseDate(req.Claims.DateOfBirth); !ok {
		return fmt.Errorf("unrecognized date_of_birth %q: %w", req.Claims.DateOfBirth, apperr.ErrInvalidInput)
	}
	return nil
}

func outcome(v *models.Voter, cmp models.ComparisonResult, bio BiometricOutcome) models.VerificationOutcome {
	return models.VerificationOutcome{
		VoterID:               v.ID,
		Status:                v.Status,
		ElectoralRollVerified: v.ElectoralRollVerified,
		ManualVerifyRequested: v.ManualVerifyRequested,
		Comparison:            cmp,
		Biometric: models.BiometricResult{
			DocumentCompared: bio.DocumentAvailable,
			Distance:         bio.Match.Distance,
			Confidence:       bio.Match.Confidence,
			Matched:          bio.Match.Matched,
		},
		Reason: v.StatusReason,
	}
}

// unavailable maps deadline errors from a collaborator to
// ErrServiceUnavailable and passes typed errors through.
func unavailable(what string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, apperr.ErrServiceUnavailable) {
		return fmt.Errorf("%s timed out: %v: %w", what, err, apperr.ErrServiceUnavailable)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
