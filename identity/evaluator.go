// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danielhkuo/voteguard/apperr"
	"github.com/danielhkuo/voteguard/models"
)

// Field names reported in Comparison.Mismatches.
const (
	FieldName       = "name"
	FieldDOB        = "dob"
	FieldFatherName = "father_name"
	FieldAddress    = "address"
)

// RollLookup finds official roll records. Implementations return an error
// wrapping apperr.ErrNotFound when no record carries the number.
type RollLookup interface {
	FindByIDNumber(ctx context.Context, idNumber string) (models.RollRecord, error)
}

// Evaluator compares claimed attributes with the roll record selected by
// national-ID lookup.
type Evaluator struct {
	Roll    RollLookup
	Name    Comparator
	DOB     Comparator
	Father  Comparator
	Address Comparator
}

func NewEvaluator(roll RollLookup) *Evaluator {
	return &Evaluator{
		Roll:    roll,
		Name:    NameComparator{},
		DOB:     DateComparator{},
		Father:  NameComparator{},
		Address: AddressComparator{},
	}
}

// Evaluate looks up the primary ID number first and falls back to the
// secondary one. A missing record is an outcome, not an error.
func (e *Evaluator) Evaluate(ctx context.Context, claims models.Claims) (models.ComparisonResult, error) {
	record, found, err := e.lookup(ctx, claims)
	if err != nil {
		return models.ComparisonResult{}, err
	}
	if !found {
		return models.ComparisonResult{
			Found:   false,
			Message: "No electoral roll record found for the supplied ID numbers",
		}, nil
	}
	return e.Compare(claims, record), nil
}

// Compare reports per-field agreement between claims and record.
func (e *Evaluator) Compare(claims models.Claims, record models.RollRecord) models.ComparisonResult {
	res := models.ComparisonResult{
		Found:           true,
		RollRecordID:    record.ID,
		NameMatch:       e.Name.Compare(FullName(claims), record.FullName),
		DOBMatch:        e.DOB.Compare(claims.DateOfBirth, record.DateOfBirth),
		FatherNameMatch: e.Father.Compare(claims.FatherName, record.FatherName),
		AddressMatch:    e.Address.Compare(claimedAddress(claims.Address), rollAddress(record)),
	}

	if !res.NameMatch {
		res.Mismatches = append(res.Mismatches, FieldName)
	}
	if !res.DOBMatch {
		res.Mismatches = append(res.Mismatches, FieldDOB)
	}
	if !res.FatherNameMatch {
		res.Mismatches = append(res.Mismatches, FieldFatherName)
	}
	if !res.AddressMatch {
		res.Mismatches = append(res.Mismatches, FieldAddress)
	}

	res.Verified = len(res.Mismatches) == 0
	if res.Verified {
		res.Message = "All fields match the electoral roll record"
	} else {
		res.Message = "Electoral roll record found; mismatched fields: " + strings.Join(res.Mismatches, ", ")
	}
	return res
}

func (e *Evaluator) lookup(ctx context.Context, claims models.Claims) (models.RollRecord, bool, error) {
	for _, id := range []string{claims.AadhaarNumber, claims.EPICNumber} {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		record, err := e.Roll.FindByIDNumber(ctx, id)
		if err == nil {
			return record, true, nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return models.RollRecord{}, false, fmt.Errorf("roll lookup: %w", err)
		}
	}
	return models.RollRecord{}, false, nil
}

// FullName joins the claimed first and last names.
func FullName(c models.Claims) string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func claimedAddress(a models.Address) string {
	return strings.Join([]string{a.City, a.District, a.State}, " ")
}

func rollAddress(r models.RollRecord) string {
	return strings.Join([]string{r.City, r.District, r.State}, " ")
}
