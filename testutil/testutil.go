// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/voteguard/apperr"
	"github.com/danielhkuo/voteguard/auth"
	"github.com/danielhkuo/voteguard/cliparse"
	"github.com/danielhkuo/voteguard/db"
	"github.com/danielhkuo/voteguard/models"
)

// SetupTestDB creates a fresh SQLite database file with the full schema.
// The file is removed with the test's temp dir.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "voteguard.db")
	conn, err := db.Open(db.TypeSQLite, "file:"+path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               3318,
		DatabaseType:       db.TypeSQLite,
		AdminToken:         "test-admin-token",
		AdminKeySalt:       "test-admin-salt",
		IntegritySalt:      "test-integrity-salt",
		BiometricScale:     20,
		BiometricThreshold: 10,
		LivenessMinFrames:  3,
		FraudThreshold:     3,
		RiskFloor:          0.5,
		CounterBackend:     cliparse.CounterSQL,
		DeepFaceTimeout:    time.Second,
		OCRTimeout:         time.Second,
		RollLookupTimeout:  time.Second,
		MaxUploadBytes:     1 << 20,
		ElectionSweepSpec:  "@every 1s",
		LogLevel:           "debug",
		LogFormat:          "json",
	}
}

// CreateTestElection inserts an election with the given status and returns its
// ID and admin key. ACTIVE elections span now; UPCOMING ones start tomorrow;
// ENDED ones finished yesterday.
func CreateTestElection(t *testing.T, conn *sql.DB, cfg cliparse.Config, status string) (electionID, adminKey string) {
	t.Helper()

	electionID = uuid.NewString()
	adminKey = auth.GenerateAdminKey(electionID, cfg.AdminKeySalt)

	now := time.Now().UTC()
	startsAt, endsAt := now.Add(-time.Hour), now.Add(time.Hour)
	var endedAt *time.Time
	switch status {
	case models.ElectionUpcoming:
		startsAt, endsAt = now.Add(24*time.Hour), now.Add(48*time.Hour)
	case models.ElectionEnded:
		startsAt, endsAt = now.Add(-48*time.Hour), now.Add(-24*time.Hour)
		endedAt = &endsAt
	}

	_, err := conn.Exec(`
		INSERT INTO election (id, title, description, status, starts_at, ends_at, ended_at, created_at)
		VALUES ($1, 'Test Election', 'A test election', $2, $3, $4, $5, $6)
	`, electionID, status, startsAt, endsAt, endedAt, now)
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}

	return electionID, adminKey
}

// AddTestCandidate adds a candidate to an election and returns the candidate ID
func AddTestCandidate(t *testing.T, conn *sql.DB, electionID, name string) string {
	t.Helper()

	candidateID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO candidate (id, election_id, name, party, vote_count)
		VALUES ($1, $2, $3, 'Independent', 0)
	`, candidateID, electionID, name)
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	return candidateID
}

// TestVoter describes a voter fixture.
type TestVoter struct {
	Status       string
	RollVerified bool
	Liveness     bool
	Aadhaar      string
	Embedding    []float64
}

// EligibleVoter is a fixture that passes every eligibility check.
func EligibleVoter() TestVoter {
	return TestVoter{Status: models.StatusVerified, RollVerified: true, Liveness: true}
}

// CreateTestVoter inserts a voter and returns its ID and access token
func CreateTestVoter(t *testing.T, conn *sql.DB, tv TestVoter) (voterID, token string) {
	t.Helper()

	voterID = uuid.NewString()
	token, _ = auth.GenerateVoterToken()
	if tv.Status == "" {
		tv.Status = models.StatusPending
	}
	if tv.Embedding == nil {
		tv.Embedding = []float64{0.1, 0.2, 0.3}
	}
	embedding, _ := json.Marshal(tv.Embedding)

	var aadhaar *string
	if tv.Aadhaar != "" {
		aadhaar = &tv.Aadhaar
	}

	now := time.Now().UTC()
	_, err := conn.Exec(`
		INSERT INTO voter (
			id, first_name, last_name, father_name, date_of_birth, state, city,
			aadhaar_number, access_token, face_embedding, liveness_verified,
			document_type, status, electoral_roll_verified, manual_verify_requested,
			created_at, updated_at
		) VALUES ($1, 'Asha', 'Verma', 'Ramesh Verma', '1990-04-12', 'Delhi', 'New Delhi',
			$2, $3, $4, $5, 'image/jpeg', $6, $7, $8, $9, $9)
	`, voterID, aadhaar, token, string(embedding), tv.Liveness, tv.Status, tv.RollVerified, false, now)
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}

	return voterID, token
}

// SampleRollRecord returns a roll record matching the default test claims.
func SampleRollRecord() models.RollRecord {
	return models.RollRecord{
		FullName:      "Asha Verma",
		FatherName:    "Ramesh Verma",
		DateOfBirth:   "1990-04-12",
		Gender:        "F",
		State:         "Delhi",
		District:      "New Delhi",
		City:          "New Delhi",
		AadhaarNumber: "123456789012",
		EPICNumber:    "ABC1234567",
	}
}

// SampleClaims returns registration claims that agree with SampleRollRecord.
func SampleClaims() models.Claims {
	return models.Claims{
		FirstName:   "Asha",
		LastName:    "Verma",
		FatherName:  "Ramesh Verma",
		DateOfBirth: "1990-04-12",
		Phone:       "9876543210",
		Email:       "asha@example.com",
		Address: models.Address{
			State:    "Delhi",
			District: "New Delhi",
			City:     "New Delhi",
		},
		AadhaarNumber: "123456789012",
	}
}

// InsertTestRoll writes roll records and returns their IDs.
func InsertTestRoll(t *testing.T, conn *sql.DB, records ...models.RollRecord) []string {
	t.Helper()

	ids := make([]string, 0, len(records))
	for _, r := range records {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		var aadhaar, epic *string
		if r.AadhaarNumber != "" {
			aadhaar = &r.AadhaarNumber
		}
		if r.EPICNumber != "" {
			epic = &r.EPICNumber
		}
		_, err := conn.Exec(`
			INSERT INTO roll_record (id, full_name, father_name, date_of_birth, gender, state,
				district, city, aadhaar_number, epic_number, polling_location, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, r.ID, r.FullName, r.FatherName, r.DateOfBirth, r.Gender, r.State, r.District,
			r.City, aadhaar, epic, r.PollingLocation, time.Now().UTC())
		if err != nil {
			t.Fatalf("Failed to insert roll record: %v", err)
		}
		ids = append(ids, r.ID)
	}
	return ids
}

// FakeExtractor maps image bytes to fixed embeddings. Unknown images get an
// embedding derived from their hash so distinct frames stay distinct.
type FakeExtractor struct {
	mu         sync.Mutex
	Embeddings map[string][]float64
	Err        error
	Calls      int
}

func NewFakeExtractor() *FakeExtractor {
	return &FakeExtractor{Embeddings: make(map[string][]float64)}
}

// Set registers the embedding returned for image.
func (f *FakeExtractor) Set(image []byte, embedding []float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Embeddings[string(image)] = embedding
}

func (f *FakeExtractor) Extract(ctx context.Context, image []byte) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fake extractor: %v: %w", err, apperr.ErrServiceUnavailable)
	}
	if e, ok := f.Embeddings[string(image)]; ok {
		return append([]float64(nil), e...), nil
	}
	sum := sha256.Sum256(image)
	out := make([]float64, 8)
	for i := range out {
		out[i] = float64(sum[i]) // spreads unknown images far apart
	}
	return out, nil
}

// FakeOCR returns canned fields for every document.
type FakeOCR struct {
	Fields models.OCRFields
	Err    error
}

func (f *FakeOCR) ExtractFields(ctx context.Context, image []byte, docType string) (models.OCRFields, error) {
	if f.Err != nil {
		return models.OCRFields{}, f.Err
	}
	return f.Fields, nil
}

// FailingRoll is a roll lookup whose backend is down.
type FailingRoll struct{}

func (FailingRoll) FindByIDNumber(ctx context.Context, idNumber string) (models.RollRecord, error) {
	return models.RollRecord{}, fmt.Errorf("roll service: %w", apperr.ErrServiceUnavailable)
}

// Frames returns n distinct fake frames.
func Frames(n int) [][]byte {
	frames := make([][]byte, n)
	for i := range frames {
		frames[i] = []byte(fmt.Sprintf("frame-%d", i))
	}
	return frames
}

// JPEG returns bytes that sniff as image/jpeg, tagged so fakes can tell
// documents apart.
func JPEG(tag string) []byte {
	return append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, []byte(tag)...)
}

// PDF returns bytes that sniff as application/pdf.
func PDF() []byte {
	return []byte("%PDF-1.4\n%fake document\n")
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
