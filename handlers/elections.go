// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/voteguard/cliparse"
	"github.com/danielhkuo/voteguard/election"
	"github.com/danielhkuo/voteguard/middleware"
	"github.com/danielhkuo/voteguard/models"
)

type ElectionHandler struct {
	elections *election.Manager
	cfg       cliparse.Config
}

func NewElectionHandler(m *election.Manager, cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{elections: m, cfg: cfg}
}

// Create handles POST /elections (admin). The response carries the
// election's admin key; it is not retrievable later.
func (h *ElectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateElectionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.AppError(w, err)
		return
	}

	resp, err := h.elections.Create(r.Context(), req)
	if err != nil {
		middleware.AppError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// List handles GET /elections
func (h *ElectionHandler) List(w http.ResponseWriter, r *http.Request) {
	elections, err := h.elections.List(r.Context())
	if err != nil {
		middleware.AppError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, elections)
}

// Get handles GET /elections/{id}
func (h *ElectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.elections.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.AppError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, e)
}

// AddCandidate handles POST /elections/{id}/candidates (election admin)
func (h *ElectionHandler) AddCandidate(w http.ResponseWriter, r *http.Request) {
	var req models.AddCandidateRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.AppError(w, err)
		return
	}

	resp, err := h.elections.AddCandidate(r.Context(), r.PathValue("id"), req)
	if err != nil {
		middleware.AppError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// Stop handles POST /elections/{id}/stop (election admin)
func (h *ElectionHandler) Stop(w http.ResponseWriter, r *http.Request) {
	e, err := h.elections.Stop(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.AppError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, e)
}

// Results handles GET /elections/{id}/results
func (h *ElectionHandler) Results(w http.ResponseWriter, r *http.Request) {
	res, err := h.elections.Results(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.AppError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, res)
}
