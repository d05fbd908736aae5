// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/voteguard/auth"
	"github.com/danielhkuo/voteguard/ballot"
	"github.com/danielhkuo/voteguard/cliparse"
	"github.com/danielhkuo/voteguard/fraud"
	"github.com/danielhkuo/voteguard/logger"
	"github.com/danielhkuo/voteguard/middleware"
	"github.com/danielhkuo/voteguard/models"
	"github.com/danielhkuo/voteguard/store"
)

type VotingHandler struct {
	guard *ballot.Guard
	fraud *fraud.Aggregator
	store *store.Store
	cfg   cliparse.Config
}

func NewVotingHandler(g *ballot.Guard, agg *fraud.Aggregator, s *store.Store, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{guard: g, fraud: agg, store: s, cfg: cfg}
}

// Session handles POST /elections/{id}/session
func (h *VotingHandler) Session(w http.ResponseWriter, r *http.Request) {
	v, _ := middleware.VoterFromContext(r.Context())
	electionID := r.PathValue("id")

	if _, err := h.store.GetElection(r.Context(), electionID); err != nil {
		middleware.AppError(w, err)
		return
	}

	resp, err := h.fraud.Session(r.Context(), v.ID, electionID)
	if err != nil {
		middleware.AppError(w, err)
		return
	}
	status := http.StatusOK
	if resp.IsNew {
		status = http.StatusCreated
	}
	middleware.JSONResponse(w, status, resp)
}

// ReportSignal handles POST /elections/{id}/signals. Signals never fail the
// session; the response says whether it is now blocked.
func (h *VotingHandler) ReportSignal(w http.ResponseWriter, r *http.Request) {
	v, _ := middleware.VoterFromContext(r.Context())
	electionID := r.PathValue("id")

	var req models.FraudSignalRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.AppError(w, err)
		return
	}
	if _, err := h.store.GetElection(r.Context(), electionID); err != nil {
		middleware.AppError(w, err)
		return
	}

	report, err := h.fraud.Report(r.Context(), v.ID, electionID, req)
	if err != nil {
		middleware.AppError(w, err)
		return
	}
	if report.Blocked {
		logger.Warning("signal from blocked session",
			"session_id", report.SessionID,
			"ip_hash", auth.HashIP(middleware.GetClientIP(r), h.cfg.IntegritySalt))
	}
	middleware.JSONResponse(w, http.StatusAccepted, report)
}

// CastVote handles POST /elections/{id}/votes
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	v, _ := middleware.VoterFromContext(r.Context())

	var req models.CastVoteRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.AppError(w, err)
		return
	}

	receipt, err := h.guard.CastVote(r.Context(), r.PathValue("id"), req.CandidateID, v.ID, req.RiskScore)
	if err != nil {
		middleware.AppError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, receipt)
}

// VerifyReceipt handles GET /votes/{id}/verify
func (h *VotingHandler) VerifyReceipt(w http.ResponseWriter, r *http.Request) {
	v, _ := middleware.VoterFromContext(r.Context())

	check, err := h.guard.VerifyReceipt(r.Context(), r.PathValue("id"), v.ID)
	if err != nil {
		middleware.AppError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, check)
}

// Alerts handles GET /elections/{id}/alerts (admin)
func (h *VotingHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.store.ListFraudAlerts(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.AppError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, alerts)
}
