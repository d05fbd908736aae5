// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/danielhkuo/voteguard/apperr"
	"github.com/danielhkuo/voteguard/models"
)

type mapRoll struct {
	records map[string]models.RollRecord
	calls   []string
	err     error
}

func (m *mapRoll) FindByIDNumber(ctx context.Context, id string) (models.RollRecord, error) {
	m.calls = append(m.calls, id)
	if m.err != nil {
		return models.RollRecord{}, m.err
	}
	r, ok := m.records[id]
	if !ok {
		return models.RollRecord{}, fmt.Errorf("roll %s: %w", id, apperr.ErrNotFound)
	}
	return r, nil
}

func sampleClaims() models.Claims {
	return models.Claims{
		FirstName:     "Ravi",
		LastName:      "Sharma",
		FatherName:    "Mohan Sharma",
		DateOfBirth:   "1990-05-17",
		Address:       models.Address{State: "Maharashtra", District: "Pune", City: "Pune"},
		AadhaarNumber: "123412341234",
		EPICNumber:    "ABC1234567",
	}
}

func sampleRecord() models.RollRecord {
	return models.RollRecord{
		ID:            "roll-1",
		FullName:      "Ravi Prakash Sharma",
		FatherName:    "Mohan Sharma",
		DateOfBirth:   "17/05/1990",
		State:         "Maharashtra",
		District:      "Pune",
		City:          "Pune",
		AadhaarNumber: "123412341234",
		EPICNumber:    "ABC1234567",
	}
}

func TestEvaluateAllFieldsMatch(t *testing.T) {
	roll := &mapRoll{records: map[string]models.RollRecord{"123412341234": sampleRecord()}}
	res, err := NewEvaluator(roll).Evaluate(context.Background(), sampleClaims())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !res.Found || !res.Verified {
		t.Fatalf("expected found and verified, got %+v", res)
	}
	if res.RollRecordID != "roll-1" {
		t.Errorf("expected roll-1, got %q", res.RollRecordID)
	}
	if len(res.Mismatches) != 0 {
		t.Errorf("expected no mismatches, got %v", res.Mismatches)
	}
}

func TestEvaluateReportsDOBMismatch(t *testing.T) {
	rec := sampleRecord()
	rec.DateOfBirth = "1991-05-17"
	roll := &mapRoll{records: map[string]models.RollRecord{"123412341234": rec}}

	res, err := NewEvaluator(roll).Evaluate(context.Background(), sampleClaims())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !res.Found || res.Verified {
		t.Fatalf("expected found but not verified, got %+v", res)
	}
	if res.DOBMatch {
		t.Error("dobMatch should be false")
	}
	if !res.NameMatch || !res.FatherNameMatch || !res.AddressMatch {
		t.Errorf("other fields should match: %+v", res)
	}
	if !reflect.DeepEqual(res.Mismatches, []string{FieldDOB}) {
		t.Errorf("expected only dob mismatch, got %v", res.Mismatches)
	}
}

func TestEvaluateFallsBackToSecondaryID(t *testing.T) {
	roll := &mapRoll{records: map[string]models.RollRecord{"ABC1234567": sampleRecord()}}
	res, err := NewEvaluator(roll).Evaluate(context.Background(), sampleClaims())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !res.Found {
		t.Fatal("expected record via secondary ID")
	}
	if !reflect.DeepEqual(roll.calls, []string{"123412341234", "ABC1234567"}) {
		t.Errorf("lookup order wrong: %v", roll.calls)
	}
}

func TestEvaluateSkipsAbsentPrimary(t *testing.T) {
	claims := sampleClaims()
	claims.AadhaarNumber = ""
	roll := &mapRoll{records: map[string]models.RollRecord{"ABC1234567": sampleRecord()}}

	if _, err := NewEvaluator(roll).Evaluate(context.Background(), claims); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !reflect.DeepEqual(roll.calls, []string{"ABC1234567"}) {
		t.Errorf("expected only secondary lookup, got %v", roll.calls)
	}
}

func TestEvaluateNotFound(t *testing.T) {
	roll := &mapRoll{records: map[string]models.RollRecord{}}
	res, err := NewEvaluator(roll).Evaluate(context.Background(), sampleClaims())
	if err != nil {
		t.Fatalf("not found must not be an error: %v", err)
	}
	if res.Found || res.Verified {
		t.Errorf("expected not found, got %+v", res)
	}
	if res.Message == "" {
		t.Error("message should explain the outcome")
	}
}

func TestEvaluatePropagatesLookupFailure(t *testing.T) {
	roll := &mapRoll{err: fmt.Errorf("dial: %w", apperr.ErrServiceUnavailable)}
	_, err := NewEvaluator(roll).Evaluate(context.Background(), sampleClaims())
	if !errors.Is(err, apperr.ErrServiceUnavailable) {
		t.Fatalf("expected service unavailable, got %v", err)
	}
}

func TestEvaluatorComparatorsArePluggable(t *testing.T) {
	roll := &mapRoll{records: map[string]models.RollRecord{"123412341234": sampleRecord()}}
	e := NewEvaluator(roll)
	e.Name = ExactComparator{}

	res, err := e.Evaluate(context.Background(), sampleClaims())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.NameMatch {
		t.Error("exact comparator should reject omitted middle name")
	}
	if !reflect.DeepEqual(res.Mismatches, []string{FieldName}) {
		t.Errorf("expected name mismatch only, got %v", res.Mismatches)
	}
}
