package models

import "time"

// Verification status constants
const (
	StatusNotStarted = "NOT_STARTED"
	StatusPending    = "PENDING"
	StatusVerified   = "VERIFIED"
	StatusRejected   = "REJECTED"
)

// Election status constants
const (
	ElectionUpcoming = "UPCOMING"
	ElectionActive   = "ACTIVE"
	ElectionEnded    = "ENDED"
)

// Fraud risk levels
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// Fraud signal types
const (
	SignalTabBlur          = "TAB_BLUR"
	SignalVisibilityHidden = "VISIBILITY_HIDDEN"
	SignalFocusLoss        = "FOCUS_LOSS"
	SignalRiskScore        = "RISK_SCORE"
)

// Request types

type Address struct {
	State    string `json:"state" validate:"required"`
	District string `json:"district"`
	City     string `json:"city" validate:"required"`
}

// Claims is the identity a registrant asserts about themselves.
type Claims struct {
	FirstName     string  `json:"first_name" validate:"required,max=100"`
	LastName      string  `json:"last_name" validate:"required,max=100"`
	FatherName    string  `json:"father_name" validate:"required,max=200"`
	DateOfBirth   string  `json:"date_of_birth" validate:"required"`
	Phone         string  `json:"phone" validate:"omitempty,max=20"`
	Email         string  `json:"email" validate:"omitempty,email"`
	Address       Address `json:"address"`
	AadhaarNumber string  `json:"aadhaar_number" validate:"omitempty,numeric,len=12"`
	EPICNumber    string  `json:"epic_number" validate:"omitempty,alphanum,min=6,max=16"`
}

// Document and frames are base64 in JSON.
type RegisterVoterRequest struct {
	Claims     Claims   `json:"claims"`
	Document   []byte   `json:"document" validate:"required"`
	FaceFrames [][]byte `json:"face_frames" validate:"required"`
}

type ReverifyRequest struct {
	Document   []byte   `json:"document" validate:"required"`
	FaceFrames [][]byte `json:"face_frames" validate:"required"`
}

type UpdateVoterStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=VERIFIED REJECTED"`
	Reason string `json:"reason" validate:"max=500"`
}

type CrossVerifyRequest struct {
	RollRecordID string `json:"roll_record_id"`
}

type CreateElectionRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
}

type AddCandidateRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Party string `json:"party" validate:"max=200"`
}

type CastVoteRequest struct {
	CandidateID string   `json:"candidate_id" validate:"required"`
	RiskScore   *float64 `json:"risk_score,omitempty" validate:"omitempty,gte=0,lte=1"`
}

type FraudSignalRequest struct {
	Type      string  `json:"type" validate:"required,oneof=TAB_BLUR VISIBILITY_HIDDEN FOCUS_LOSS RISK_SCORE"`
	RiskScore float64 `json:"risk_score" validate:"gte=0,lte=1"`
	Details   string  `json:"details" validate:"max=1000"`
}

// Response types

type ComparisonResult struct {
	Found           bool     `json:"found"`
	Verified        bool     `json:"verified"`
	NameMatch       bool     `json:"name_match"`
	DOBMatch        bool     `json:"dob_match"`
	FatherNameMatch bool     `json:"father_name_match"`
	AddressMatch    bool     `json:"address_match"`
	RollRecordID    string   `json:"roll_record_id,omitempty"`
	Mismatches      []string `json:"mismatches,omitempty"`
	Message         string   `json:"message"`
}

type BiometricResult struct {
	DocumentCompared bool    `json:"document_compared"`
	Distance         float64 `json:"distance"`
	Confidence       float64 `json:"confidence"`
	Matched          bool    `json:"matched"`
}

type VerificationOutcome struct {
	VoterID               string           `json:"voter_id"`
	VoterToken            string           `json:"voter_token,omitempty"`
	Status                string           `json:"status"`
	ElectoralRollVerified bool             `json:"electoral_roll_verified"`
	ManualVerifyRequested bool             `json:"manual_verify_requested"`
	Comparison            ComparisonResult `json:"comparison"`
	Biometric             BiometricResult  `json:"biometric"`
	Reason                string           `json:"reason,omitempty"`
}

type ManualVerificationResponse struct {
	Requested   bool       `json:"requested"`
	RequestedAt *time.Time `json:"requested_at,omitempty"`
	Message     string     `json:"message"`
}

type CreateElectionResponse struct {
	ElectionID string `json:"election_id"`
	AdminKey   string `json:"admin_key"`
}

type AddCandidateResponse struct {
	CandidateID string `json:"candidate_id"`
}

type VoteReceipt struct {
	TransactionID  string    `json:"transaction_id"`
	ElectionID     string    `json:"election_id"`
	CandidateID    string    `json:"candidate_id"`
	IntegrityToken string    `json:"integrity_token"`
	CastAt         time.Time `json:"cast_at"`
}

type ReceiptCheck struct {
	TransactionID string `json:"transaction_id"`
	Valid         bool   `json:"valid"`
}

type SessionResponse struct {
	SessionID  string `json:"session_id"`
	IsNew      bool   `json:"is_new"`
	Violations int    `json:"violations"`
	Blocked    bool   `json:"blocked"`
}

type FraudReport struct {
	SessionID  string      `json:"session_id"`
	Violations int         `json:"violations"`
	Blocked    bool        `json:"blocked"`
	Alert      *FraudAlert `json:"alert,omitempty"`
}

type ElectionResults struct {
	Election   Election    `json:"election"`
	Candidates []Candidate `json:"candidates"`
	TotalVotes int         `json:"total_votes"`
}

type ImportSummary struct {
	Rows     int      `json:"rows"`
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// Domain types

type Voter struct {
	ID                    string     `json:"id"`
	Claims                Claims     `json:"claims"`
	AccessToken           string     `json:"-"`
	FaceEmbedding         []float64  `json:"-"`
	LivenessVerified      bool       `json:"liveness_verified"`
	DocumentType          string     `json:"document_type"`
	DocumentFields        *OCRFields `json:"document_fields,omitempty"`
	Status                string     `json:"status"`
	StatusReason          string     `json:"status_reason,omitempty"`
	ElectoralRollVerified bool       `json:"electoral_roll_verified"`
	MatchedRollRecordID   *string    `json:"matched_roll_record_id,omitempty"`
	ManualVerifyRequested bool       `json:"manual_verify_requested"`
	ManualRequestedAt     *time.Time `json:"manual_requested_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// OCRFields is the best-effort document extraction.
type OCRFields struct {
	Name     string `json:"name,omitempty"`
	DOB      string `json:"dob,omitempty"`
	IDNumber string `json:"id_number,omitempty"`
	Address  string `json:"address,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type RollRecord struct {
	ID              string    `json:"id"`
	FullName        string    `json:"full_name" validate:"required"`
	FatherName      string    `json:"father_name"`
	DateOfBirth     string    `json:"date_of_birth" validate:"required"`
	Gender          string    `json:"gender"`
	State           string    `json:"state"`
	District        string    `json:"district"`
	City            string    `json:"city"`
	AadhaarNumber   string    `json:"aadhaar_number"`
	EPICNumber      string    `json:"epic_number"`
	PollingLocation string    `json:"polling_location"`
	CreatedAt       time.Time `json:"created_at"`
}

type Election struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      time.Time  `json:"ends_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Candidate struct {
	ID         string `json:"id"`
	ElectionID string `json:"election_id"`
	Name       string `json:"name"`
	Party      string `json:"party,omitempty"`
	VoteCount  int    `json:"vote_count"`
}

type VoteTransaction struct {
	ID             string    `json:"id"`
	ElectionID     string    `json:"election_id"`
	CandidateID    string    `json:"candidate_id"`
	VoterID        string    `json:"-"`
	IntegrityToken string    `json:"integrity_token"`
	Nonce          string    `json:"-"`
	RiskScore      *float64  `json:"risk_score,omitempty"`
	CastAt         time.Time `json:"cast_at"`
}

type FraudAlert struct {
	ID         string    `json:"id"`
	VoterID    string    `json:"voter_id"`
	ElectionID string    `json:"election_id"`
	SessionID  string    `json:"session_id"`
	Reason     string    `json:"reason"`
	RiskLevel  string    `json:"risk_level"`
	Details    string    `json:"details,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type VotingSession struct {
	ID         string    `json:"id"`
	VoterID    string    `json:"voter_id"`
	ElectionID string    `json:"election_id"`
	Violations int       `json:"violations"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Kind    string `json:"kind,omitempty"`
}
