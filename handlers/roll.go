// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/danielhkuo/voteguard/apperr"
	"github.com/danielhkuo/voteguard/cliparse"
	"github.com/danielhkuo/voteguard/importer"
	"github.com/danielhkuo/voteguard/middleware"
	"github.com/danielhkuo/voteguard/models"
	"github.com/danielhkuo/voteguard/store"
)

// MaxRecordsPerRequest bounds a JSON roll upload.
const MaxRecordsPerRequest = 5000

type RollHandler struct {
	store *store.Store
	cfg   cliparse.Config
}

func NewRollHandler(s *store.Store, cfg cliparse.Config) *RollHandler {
	return &RollHandler{store: s, cfg: cfg}
}

// AddRecords handles POST /roll/records with a JSON array of records
func (h *RollHandler) AddRecords(w http.ResponseWriter, r *http.Request) {
	var records []models.RollRecord
	if err := middleware.ParseJSONBody(r, &records); err != nil {
		middleware.AppError(w, fmt.Errorf("invalid JSON: %w", apperr.ErrInvalidInput))
		return
	}
	if len(records) == 0 || len(records) > MaxRecordsPerRequest {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("between 1 and %d records required", MaxRecordsPerRequest))
		return
	}

	summary := models.ImportSummary{Rows: len(records)}
	valid := make([]models.RollRecord, 0, len(records))
	for i := range records {
		rec := records[i]
		rec.ID = ""
		if err := importer.ValidateRecord(&rec); err != nil {
			if len(summary.Errors) < importer.MaxReportedErrors {
				summary.Errors = append(summary.Errors, fmt.Sprintf("record %d: %v", i, err))
			}
			continue
		}
		valid = append(valid, rec)
	}

	if len(valid) > 0 {
		inserted, skipped, err := h.store.InsertRollRecords(r.Context(), valid)
		if err != nil {
			middleware.AppError(w, err)
			return
		}
		summary.Inserted, summary.Skipped = inserted, skipped
	}
	middleware.JSONResponse(w, http.StatusOK, summary)
}

// Import handles POST /roll/import with a CSV body. Query parameters:
// map=field=Header,... validate_only=true batch=N
func (h *RollHandler) Import(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	q := r.URL.Query()
	mapping, err := importer.ParseMapping(q.Get("map"))
	if err != nil {
		middleware.AppError(w, err)
		return
	}
	validateOnly, _ := strconv.ParseBool(q.Get("validate_only"))
	batch, _ := strconv.Atoi(q.Get("batch"))

	im := importer.New(h.store, importer.Config{
		Mapping:      mapping,
		BatchSize:    batch,
		ValidateOnly: validateOnly,
	})
	summary, err := im.Import(r.Context(), r.Body)
	if err != nil {
		middleware.AppError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, summary)
}

// GetRecord handles GET /roll/records/{id}
func (h *RollHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.GetRollRecord(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.AppError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, rec)
}
