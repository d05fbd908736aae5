// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/danielhkuo/voteguard/cliparse"
	"github.com/danielhkuo/voteguard/middleware"
	"github.com/danielhkuo/voteguard/models"
	"github.com/danielhkuo/voteguard/store"
	"github.com/danielhkuo/voteguard/verification"
)

type VoterHandler struct {
	svc   *verification.Service
	store *store.Store
	cfg   cliparse.Config
}

func NewVoterHandler(svc *verification.Service, s *store.Store, cfg cliparse.Config) *VoterHandler {
	return &VoterHandler{svc: svc, store: s, cfg: cfg}
}

// Register handles POST /voters/register
func (h *VoterHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterVoterRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.AppError(w, err)
		return
	}

	out, err := h.svc.RegisterVoter(r.Context(), req)
	if err != nil {
		middleware.AppError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, out)
}

// Me handles GET /voters/me
func (h *VoterHandler) Me(w http.ResponseWriter, r *http.Request) {
	v, _ := middleware.VoterFromContext(r.Context())
	middleware.JSONResponse(w, http.StatusOK, v)
}

// RequestManualVerification handles POST /voters/me/manual-verification
func (h *VoterHandler) RequestManualVerification(w http.ResponseWriter, r *http.Request) {
	v, _ := middleware.VoterFromContext(r.Context())

	resp, err := h.svc.RequestManualVerification(r.Context(), v.ID)
	if err != nil {
		middleware.AppError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Reverify handles POST /voters/me/reverify
func (h *VoterHandler) Reverify(w http.ResponseWriter, r *http.Request) {
	v, _ := middleware.VoterFromContext(r.Context())

	var req models.ReverifyRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.AppError(w, err)
		return
	}

	out, err := h.svc.Reverify(r.Context(), v.ID, req)
	if err != nil {
		middleware.AppError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, out)
}

// List handles GET /voters?status=PENDING&limit=50 (admin)
func (h *VoterHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	voters, err := h.store.ListVoters(r.Context(), status, limit)
	if err != nil {
		middleware.AppError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, voters)
}

// Get handles GET /voters/{id} (admin)
func (h *VoterHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.store.GetVoter(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.AppError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, v)
}

// UpdateStatus handles POST /voters/{id}/status (admin)
func (h *VoterHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateVoterStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.AppError(w, err)
		return
	}

	v, err := h.svc.UpdateVoterStatus(r.Context(), r.PathValue("id"), req.Status, req.Reason)
	if err != nil {
		middleware.AppError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, v)
}

// CrossVerify handles POST /voters/{id}/cross-verify (admin). An empty body
// searches the roll by the voter's ID numbers.
func (h *VoterHandler) CrossVerify(w http.ResponseWriter, r *http.Request) {
	var req models.CrossVerifyRequest
	if r.ContentLength != 0 {
		if err := middleware.DecodeAndValidate(r, &req); err != nil {
			middleware.AppError(w, err)
			return
		}
	}

	v, err := h.svc.CrossVerifyElectoralRoll(r.Context(), r.PathValue("id"), req.RollRecordID)
	if err != nil {
		middleware.AppError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, v)
}
