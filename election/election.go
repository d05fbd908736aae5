// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/voteguard/apperr"
	"github.com/danielhkuo/voteguard/auth"
	"github.com/danielhkuo/voteguard/logger"
	"github.com/danielhkuo/voteguard/models"
	"github.com/danielhkuo/voteguard/store"
)

// Recompute derives an election's status from the clock. ENDED is sticky:
// once set, by the clock or by a manual stop, it is returned unchanged.
func Recompute(e models.Election, now time.Time) string {
	switch {
	case e.Status == models.ElectionEnded:
		return models.ElectionEnded
	case now.Before(e.StartsAt):
		return models.ElectionUpcoming
	case now.Before(e.EndsAt):
		return models.ElectionActive
	default:
		return models.ElectionEnded
	}
}

// Manager owns election and candidate lifecycle.
type Manager struct {
	Store        *store.Store
	AdminKeySalt string
	now          func() time.Time
}

func NewManager(s *store.Store, adminKeySalt string) *Manager {
	return &Manager{Store: s, AdminKeySalt: adminKeySalt, now: time.Now}
}

// Create inserts the election with its clock-derived status and returns the
// admin key for it. The key is derived, never stored.
func (m *Manager) Create(ctx context.Context, req models.CreateElectionRequest) (models.CreateElectionResponse, error) {
	if err := models.Validate(req); err != nil {
		return models.CreateElectionResponse{}, err
	}

	e := &models.Election{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartsAt:    req.StartsAt.UTC(),
		EndsAt:      req.EndsAt.UTC(),
	}
	e.Status = Recompute(*e, m.now())
	if e.Status == models.ElectionEnded {
		return models.CreateElectionResponse{}, fmt.Errorf("election would already be over: %w", apperr.ErrInvalidInput)
	}

	if err := m.Store.CreateElection(ctx, e); err != nil {
		return models.CreateElectionResponse{}, err
	}
	logger.Info("election created", "election_id", e.ID, "status", e.Status)

	return models.CreateElectionResponse{
		ElectionID: e.ID,
		AdminKey:   auth.GenerateAdminKey(e.ID, m.AdminKeySalt),
	}, nil
}

// Get returns the election with its status brought up to date.
func (m *Manager) Get(ctx context.Context, id string) (models.Election, error) {
	e, err := m.Store.GetElection(ctx, id)
	if err != nil {
		return models.Election{}, err
	}
	return m.refresh(ctx, e)
}

func (m *Manager) List(ctx context.Context) ([]models.Election, error) {
	elections, err := m.Store.ListElections(ctx)
	if err != nil {
		return nil, err
	}
	for i := range elections {
		if elections[i], err = m.refresh(ctx, elections[i]); err != nil {
			return nil, err
		}
	}
	return elections, nil
}

// Sync recomputes every election and reports how many rows changed.
func (m *Manager) Sync(ctx context.Context) (int, error) {
	elections, err := m.Store.ListElections(ctx)
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, e := range elections {
		status := Recompute(e, m.now())
		if status == e.Status {
			continue
		}
		ok, err := m.Store.UpdateElectionStatus(ctx, e.ID, status)
		if err != nil {
			return changed, err
		}
		if ok {
			changed++
			logger.Info("election status changed", "election_id", e.ID, "from", e.Status, "to", status)
		}
	}
	return changed, nil
}

// Stop ends the election now. Repeated calls are harmless.
func (m *Manager) Stop(ctx context.Context, id string) (models.Election, error) {
	e, err := m.Store.EndElection(ctx, id)
	if err != nil {
		return models.Election{}, err
	}
	logger.Info("election stopped", "election_id", id)
	return e, nil
}

// AddCandidate is allowed until the election ends.
func (m *Manager) AddCandidate(ctx context.Context, electionID string, req models.AddCandidateRequest) (models.AddCandidateResponse, error) {
	if err := models.Validate(req); err != nil {
		return models.AddCandidateResponse{}, err
	}
	e, err := m.Get(ctx, electionID)
	if err != nil {
		return models.AddCandidateResponse{}, err
	}
	if e.Status == models.ElectionEnded {
		return models.AddCandidateResponse{}, fmt.Errorf("election %s has ended: %w", electionID, apperr.ErrElectionClosed)
	}

	c := &models.Candidate{
		ID:         uuid.NewString(),
		ElectionID: electionID,
		Name:       strings.TrimSpace(req.Name),
		Party:      strings.TrimSpace(req.Party),
	}
	if err := m.Store.AddCandidate(ctx, c); err != nil {
		return models.AddCandidateResponse{}, err
	}
	return models.AddCandidateResponse{CandidateID: c.ID}, nil
}

// Results returns candidate tallies, highest first.
func (m *Manager) Results(ctx context.Context, electionID string) (models.ElectionResults, error) {
	e, err := m.Get(ctx, electionID)
	if err != nil {
		return models.ElectionResults{}, err
	}
	candidates, err := m.Store.ListCandidates(ctx, electionID)
	if err != nil {
		return models.ElectionResults{}, err
	}
	total := 0
	for _, c := range candidates {
		total += c.VoteCount
	}
	return models.ElectionResults{Election: e, Candidates: candidates, TotalVotes: total}, nil
}

// refresh persists a changed status. If the conditional update loses to a
// concurrent stop, the stored row wins.
func (m *Manager) refresh(ctx context.Context, e models.Election) (models.Election, error) {
	status := Recompute(e, m.now())
	if status == e.Status {
		return e, nil
	}
	ok, err := m.Store.UpdateElectionStatus(ctx, e.ID, status)
	if err != nil {
		return models.Election{}, err
	}
	if !ok {
		return m.Store.GetElection(ctx, e.ID)
	}
	e.Status = status
	if status == models.ElectionEnded {
		return m.Store.GetElection(ctx, e.ID)
	}
	return e, nil
}
