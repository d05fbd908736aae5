// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielhkuo/voteguard/middleware"
	"github.com/danielhkuo/voteguard/store"
)

type HealthHandler struct {
	store *store.Store
}

func NewHealthHandler(s *store.Store) *HealthHandler {
	return &HealthHandler{store: s}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.DB().PingContext(ctx); err != nil {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"subscribers": h.store.Feed.Subscribers(),
	})
}
