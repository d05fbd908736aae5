// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/danielhkuo/voteguard/apperr"
	"github.com/danielhkuo/voteguard/auth"
	"github.com/danielhkuo/voteguard/election"
	"github.com/danielhkuo/voteguard/fraud"
	"github.com/danielhkuo/voteguard/logger"
	"github.com/danielhkuo/voteguard/models"
	"github.com/danielhkuo/voteguard/store"
	"github.com/danielhkuo/voteguard/verification"
)

// Guard admits at most one ballot per voter per election.
type Guard struct {
	Store         *store.Store
	Elections     *election.Manager
	Fraud         *fraud.Aggregator
	IntegritySalt string
}

func NewGuard(s *store.Store, elections *election.Manager, agg *fraud.Aggregator, integritySalt string) *Guard {
	return &Guard{Store: s, Elections: elections, Fraud: agg, IntegritySalt: integritySalt}
}

// CastVote records the ballot and increments the candidate's counter as one
// unit. The uniqueness constraint on (election, voter) decides races; the
// HasVoted lookup only short-circuits the common case.
func (g *Guard) CastVote(ctx context.Context, electionID, candidateID, voterID string, riskScore *float64) (models.VoteReceipt, error) {
	voter, err := g.Store.GetVoter(ctx, voterID)
	if err != nil {
		return models.VoteReceipt{}, err
	}
	if err := verification.EligibilityError(voter); err != nil {
		return models.VoteReceipt{}, err
	}

	e, err := g.Elections.Get(ctx, electionID)
	if err != nil {
		return models.VoteReceipt{}, err
	}
	if e.Status != models.ElectionActive {
		return models.VoteReceipt{}, fmt.Errorf("election %s is %s: %w", electionID, e.Status, apperr.ErrElectionClosed)
	}

	if _, err := g.Store.GetCandidate(ctx, electionID, candidateID); err != nil {
		return models.VoteReceipt{}, err
	}

	if riskScore != nil && *riskScore >= g.Fraud.RiskFloor {
		if _, err := g.Fraud.Report(ctx, voterID, electionID, models.FraudSignalRequest{
			Type:      models.SignalRiskScore,
			RiskScore: *riskScore,
			Details:   "reported with ballot",
		}); err != nil {
			return models.VoteReceipt{}, err
		}
	}
	blocked, err := g.Fraud.Blocked(ctx, voterID, electionID)
	if err != nil {
		return models.VoteReceipt{}, err
	}
	if blocked {
		logger.Warning("vote refused for blocked session", "voter_id", voterID, "election_id", electionID)
		return models.VoteReceipt{}, fmt.Errorf("voting session blocked: %w", apperr.ErrSessionBlocked)
	}

	voted, err := g.Store.HasVoted(ctx, electionID, voterID)
	if err != nil {
		return models.VoteReceipt{}, err
	}
	if voted {
		return models.VoteReceipt{}, fmt.Errorf("voter already voted in %s: %w", electionID, apperr.ErrDuplicateVote)
	}

	nonce, err := auth.GenerateID(16)
	if err != nil {
		return models.VoteReceipt{}, err
	}
	castAt := g.Store.Now()
	tx := &models.VoteTransaction{
		ID:             uuid.NewString(),
		ElectionID:     electionID,
		CandidateID:    candidateID,
		VoterID:        voterID,
		Nonce:          nonce,
		RiskScore:      riskScore,
		CastAt:         castAt,
		IntegrityToken: auth.IntegrityToken(electionID, voterID, candidateID, nonce, castAt, g.IntegritySalt),
	}
	if err := g.Store.RecordVote(ctx, tx); err != nil {
		return models.VoteReceipt{}, err
	}

	logger.Info("vote recorded", "transaction_id", tx.ID, "election_id", electionID)

	return models.VoteReceipt{
		TransactionID:  tx.ID,
		ElectionID:     electionID,
		CandidateID:    candidateID,
		IntegrityToken: tx.IntegrityToken,
		CastAt:         castAt,
	}, nil
}

// VerifyReceipt recomputes the stored transaction's integrity token. Only the
// voter who cast it may check it.
func (g *Guard) VerifyReceipt(ctx context.Context, transactionID, voterID string) (models.ReceiptCheck, error) {
	tx, err := g.Store.GetVoteTransaction(ctx, transactionID)
	if err != nil {
		return models.ReceiptCheck{}, err
	}
	if tx.VoterID != voterID {
		return models.ReceiptCheck{}, fmt.Errorf("vote %s: %w", transactionID, apperr.ErrNotFound)
	}
	valid := auth.VerifyIntegrityToken(tx.IntegrityToken, tx.ElectionID, tx.VoterID, tx.CandidateID, tx.Nonce, tx.CastAt, g.IntegritySalt)
	if !valid {
		logger.Error("integrity token mismatch", "transaction_id", transactionID)
	}
	return models.ReceiptCheck{TransactionID: transactionID, Valid: valid}, nil
}
