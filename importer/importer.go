// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/danielhkuo/voteguard/apperr"
	"github.com/danielhkuo/voteguard/identity"
	"github.com/danielhkuo/voteguard/logger"
	"github.com/danielhkuo/voteguard/models"
	"github.com/danielhkuo/voteguard/store"
)

const (
	DefaultBatchSize = 500
	// MaxReportedErrors caps the per-row errors kept in a summary.
	MaxReportedErrors = 50
)

// Roll record fields a CSV column can map to.
const (
	FieldFullName        = "full_name"
	FieldFatherName      = "father_name"
	FieldDateOfBirth     = "date_of_birth"
	FieldGender          = "gender"
	FieldState           = "state"
	FieldDistrict        = "district"
	FieldCity            = "city"
	FieldAadhaarNumber   = "aadhaar_number"
	FieldEPICNumber      = "epic_number"
	FieldPollingLocation = "polling_location"
)

var allFields = []string{
	FieldFullName, FieldFatherName, FieldDateOfBirth, FieldGender, FieldState,
	FieldDistrict, FieldCity, FieldAadhaarNumber, FieldEPICNumber, FieldPollingLocation,
}

// Config controls an import. Mapping maps a roll field to the CSV header that
// carries it; unmapped fields use their own name as the header.
type Config struct {
	Mapping      map[string]string
	BatchSize    int
	ValidateOnly bool
}

// Importer loads official roll records from CSV.
type Importer struct {
	Store  *store.Store
	Config Config
}

func New(s *store.Store, cfg Config) *Importer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Importer{Store: s, Config: cfg}
}

// ParseMapping reads "field=Header,field=Header" into a mapping.
func ParseMapping(s string) (map[string]string, error) {
	m := make(map[string]string)
	if strings.TrimSpace(s) == "" {
		return m, nil
	}
	known := make(map[string]bool, len(allFields))
	for _, f := range allFields {
		known[f] = true
	}
	for _, pair := range strings.Split(s, ",") {
		field, header, ok := strings.Cut(pair, "=")
		field, header = strings.TrimSpace(field), strings.TrimSpace(header)
		if !ok || field == "" || header == "" {
			return nil, fmt.Errorf("bad mapping %q: %w", pair, apperr.ErrInvalidInput)
		}
		if !known[field] {
			return nil, fmt.Errorf("unknown roll field %q: %w", field, apperr.ErrInvalidInput)
		}
		m[field] = header
	}
	return m, nil
}

// Import reads the CSV and inserts valid rows in batches. Invalid rows are
// reported in the summary and never abort the import. Rows whose ID numbers
// are already on the roll count as skipped.
func (im *Importer) Import(ctx context.Context, r io.Reader) (models.ImportSummary, error) {
	var summary models.ImportSummary

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return summary, fmt.Errorf("empty CSV: %w", apperr.ErrInvalidInput)
	}
	if err != nil {
		return summary, fmt.Errorf("read headers: %w: %w", err, apperr.ErrInvalidInput)
	}
	index, err := im.columnIndex(headers)
	if err != nil {
		return summary, err
	}

	batch := make([]models.RollRecord, 0, im.Config.BatchSize)
	flush := func() error {
		if len(batch) == 0 || im.Config.ValidateOnly {
			batch = batch[:0]
			return nil
		}
		inserted, skipped, err := im.Store.InsertRollRecords(ctx, batch)
		if err != nil {
			return err
		}
		summary.Inserted += inserted
		summary.Skipped += skipped
		logger.Debug("roll batch imported", "inserted", inserted, "skipped", skipped)
		batch = batch[:0]
		return nil
	}

	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			summary.Rows++
			im.reportError(&summary, line, err)
			continue
		}
		summary.Rows++

		rec, err := buildRecord(row, index)
		if err != nil {
			im.reportError(&summary, line, err)
			continue
		}
		batch = append(batch, rec)
		if len(batch) >= im.Config.BatchSize {
			if err := flush(); err != nil {
				return summary, err
			}
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}
	}
	if err := flush(); err != nil {
		return summary, err
	}

	logger.Info("roll import finished",
		"rows", summary.Rows,
		"inserted", summary.Inserted,
		"skipped", summary.Skipped,
		"errors", len(summary.Errors),
		"validate_only", im.Config.ValidateOnly)
	return summary, nil
}

func (im *Importer) reportError(summary *models.ImportSummary, line int, err error) {
	if len(summary.Errors) < MaxReportedErrors {
		summary.Errors = append(summary.Errors, fmt.Sprintf("line %d: %v", line, err))
	}
}

// columnIndex resolves each field to its column. Headers match
// case-insensitively.
func (im *Importer) columnIndex(headers []string) (map[string]int, error) {
	byHeader := make(map[string]int, len(headers))
	for i, h := range headers {
		byHeader[strings.ToLower(strings.TrimSpace(h))] = i
	}

	index := make(map[string]int)
	for _, field := range allFields {
		header := field
		if mapped, ok := im.Config.Mapping[field]; ok {
			header = mapped
		}
		if i, ok := byHeader[strings.ToLower(header)]; ok {
			index[field] = i
		}
	}

	var missing []string
	for _, required := range []string{FieldFullName, FieldDateOfBirth} {
		if _, ok := index[required]; !ok {
			missing = append(missing, required)
		}
	}
	_, hasAadhaar := index[FieldAadhaarNumber]
	_, hasEPIC := index[FieldEPICNumber]
	if !hasAadhaar && !hasEPIC {
		missing = append(missing, FieldAadhaarNumber+" or "+FieldEPICNumber)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s: %w", strings.Join(missing, ", "), apperr.ErrInvalidInput)
	}
	return index, nil
}

func buildRecord(row []string, index map[string]int) (models.RollRecord, error) {
	get := func(field string) string {
		i, ok := index[field]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := models.RollRecord{
		FullName:        get(FieldFullName),
		FatherName:      get(FieldFatherName),
		DateOfBirth:     get(FieldDateOfBirth),
		Gender:          get(FieldGender),
		State:           get(FieldState),
		District:        get(FieldDistrict),
		City:            get(FieldCity),
		AadhaarNumber:   get(FieldAadhaarNumber),
		EPICNumber:      get(FieldEPICNumber),
		PollingLocation: get(FieldPollingLocation),
	}
	if err := ValidateRecord(&rec); err != nil {
		return models.RollRecord{}, err
	}
	return rec, nil
}

// ValidateRecord checks a roll record and rewrites its date of birth as
// YYYY-MM-DD.
func ValidateRecord(rec *models.RollRecord) error {
	if err := models.Validate(rec); err != nil {
		return err
	}
	dob, ok := identity.ParseDate(rec.DateOfBirth)
	if !ok {
		return fmt.Errorf("unparseable date of birth %q: %w", rec.DateOfBirth, apperr.ErrInvalidInput)
	}
	rec.DateOfBirth = dob.Format("2006-01-02")
	rec.AadhaarNumber = models.NormalizeIDNumber(rec.AadhaarNumber)
	rec.EPICNumber = models.NormalizeIDNumber(rec.EPICNumber)

	if rec.AadhaarNumber == "" && rec.EPICNumber == "" {
		return fmt.Errorf("record has neither aadhaar nor epic number: %w", apperr.ErrInvalidInput)
	}
	if rec.AadhaarNumber != "" && !isAadhaar(rec.AadhaarNumber) {
		return fmt.Errorf("aadhaar number must be 12 digits: %w", apperr.ErrInvalidInput)
	}
	return nil
}

func isAadhaar(s string) bool {
	if len(s) != 12 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
