// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs completion with status and duration_ms through the logger package.

# Authentication

Three credentials are recognised:

	X-Admin-Token   registry administrator (RequireAdmin)
	X-Admin-Key     administrator of one election (RequireElectionAdmin)
	X-Voter-Token   a registered voter (RequireVoter)

RequireVoter stores the resolved voter in the request context; handlers read
it with VoterFromContext.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.AppError(w, err) // status and kind from apperr

DecodeAndValidate parses a body and runs its validate tags, so handlers see a
single apperr.ErrInvalidInput for both malformed and invalid input:

	var req models.AddCandidateRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.AppError(w, err)
		return
	}

# Body Limits

MaxBytes rejects bodies larger than the configured upload limit.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Handles X-Forwarded-For and X-Real-IP. Only the salted hash is ever logged.
*/
package middleware
