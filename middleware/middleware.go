// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/voteguard/apperr"
	"github.com/danielhkuo/voteguard/auth"
	"github.com/danielhkuo/voteguard/logger"
	"github.com/danielhkuo/voteguard/models"
)

// Auth headers
const (
	HeaderAdminToken = "X-Admin-Token"
	HeaderAdminKey   = "X-Admin-Key"
	HeaderVoterToken = "X-Voter-Token"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush lets streaming handlers work through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// WithLogging wraps a handler with request logging
func WithLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		logger.Debug("request started",
			"method", r.Method,
			"path", r.URL.Path,
		)

		next(rec, r)

		logger.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// JSONResponse writes a JSON response
func JSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse writes a JSON error response
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	JSONResponse(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// AppError maps err to its status and kind. Internal errors are logged and
// their text is not sent to the client.
func AppError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		message = "internal error"
	}
	if apperr.Retryable(err) {
		w.Header().Set("Retry-After", "5")
	}
	JSONResponse(w, status, models.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Kind:    apperr.Kind(err),
	})
}

// ParseJSONBody parses the request body into the given struct
func ParseJSONBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}

// DecodeAndValidate parses the body and checks its validate tags. Every
// failure wraps apperr.ErrInvalidInput.
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := ParseJSONBody(r, v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("request body exceeds %s: %w", humanize.IBytes(uint64(tooLarge.Limit)), apperr.ErrInvalidInput)
		}
		return fmt.Errorf("invalid JSON: %w", apperr.ErrInvalidInput)
	}
	return models.Validate(v)
}

// MaxBytes caps request bodies at limit bytes.
func MaxBytes(limit int64, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > limit {
			ErrorResponse(w, http.StatusRequestEntityTooLarge,
				"request body exceeds "+humanize.IBytes(uint64(limit)))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin admits requests carrying the registry admin token.
func RequireAdmin(adminToken string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := auth.ValidateAdminToken(r.Header.Get(HeaderAdminToken), adminToken); err != nil {
			ErrorResponse(w, http.StatusUnauthorized, HeaderAdminToken+" header missing or invalid")
			return
		}
		next(w, r)
	}
}

// RequireElectionAdmin admits the registry admin or the holder of the admin
// key for the election named by the {id} path value.
func RequireElectionAdmin(adminToken, adminKeySalt string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.ValidateAdminToken(r.Header.Get(HeaderAdminToken), adminToken) == nil {
			next(w, r)
			return
		}
		key := r.Header.Get(HeaderAdminKey)
		if key == "" {
			ErrorResponse(w, http.StatusUnauthorized, HeaderAdminKey+" header required")
			return
		}
		if err := auth.ValidateAdminKey(r.PathValue("id"), key, adminKeySalt); err != nil {
			ErrorResponse(w, http.StatusForbidden, "Invalid admin key")
			return
		}
		next(w, r)
	}
}

// VoterLookup resolves a voter token.
type VoterLookup interface {
	GetVoterByToken(ctx context.Context, token string) (models.Voter, error)
}

type voterKey struct{}

// RequireVoter resolves X-Voter-Token and stores the voter in the request
// context.
func RequireVoter(voters VoterLookup, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(HeaderVoterToken)
		if token == "" {
			ErrorResponse(w, http.StatusUnauthorized, HeaderVoterToken+" header required")
			return
		}
		v, err := voters.GetVoterByToken(r.Context(), token)
		if errors.Is(err, apperr.ErrNotFound) {
			ErrorResponse(w, http.StatusUnauthorized, "Invalid voter token")
			return
		}
		if err != nil {
			AppError(w, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), voterKey{}, v)))
	}
}

// VoterFromContext returns the voter stored by RequireVoter.
func VoterFromContext(ctx context.Context) (models.Voter, bool) {
	v, ok := ctx.Value(voterKey{}).(models.Voter)
	return v, ok
}

// IsAdmin reports whether the request carries the registry admin token.
func IsAdmin(r *http.Request, adminToken string) bool {
	return auth.ValidateAdminToken(r.Header.Get(HeaderAdminToken), adminToken) == nil
}

// CORS middleware allows cross-origin requests from the frontend
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers",
			"Content-Type, Authorization, "+HeaderAdminToken+", "+HeaderAdminKey+", "+HeaderVoterToken)
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetClientIP extracts the client IP address
// Checks X-Forwarded-For, X-Real-IP, then falls back to RemoteAddr
func GetClientIP(r *http.Request) string {
	// Check X-Forwarded-For (load balancers)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take first IP in chain
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' || xff[i] == ' ' {
				return xff[:i]
			}
		}
		return xff
	}

	// Check X-Real-IP (nginx)
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Strip port if present
	addr := r.RemoteAddr
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}
