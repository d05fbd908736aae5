// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/voteguard/ballot"
	"github.com/danielhkuo/voteguard/biometric"
	"github.com/danielhkuo/voteguard/cliparse"
	"github.com/danielhkuo/voteguard/election"
	"github.com/danielhkuo/voteguard/fraud"
	"github.com/danielhkuo/voteguard/handlers"
	"github.com/danielhkuo/voteguard/identity"
	"github.com/danielhkuo/voteguard/middleware"
	"github.com/danielhkuo/voteguard/store"
	"github.com/danielhkuo/voteguard/verification"
)

// Services are the components the routes call into.
type Services struct {
	Store        *store.Store
	Verification *verification.Service
	Elections    *election.Manager
	Ballots      *ballot.Guard
	Fraud        *fraud.Aggregator
}

// NewServices wires the components over one database handle. ocr may be nil;
// a nil counter counts violations in SQL.
func NewServices(db *sql.DB, cfg cliparse.Config, faces biometric.Extractor, ocr verification.DocumentReader, counter fraud.Counter) (Services, error) {
	engine, err := biometric.NewEngine(cfg.BiometricScale, cfg.BiometricThreshold)
	if err != nil {
		return Services{}, err
	}

	s := store.New(db)
	elections := election.NewManager(s, cfg.AdminKeySalt)
	agg := fraud.NewAggregator(s, counter, cfg.FraudThreshold, cfg.RiskFloor)

	return Services{
		Store: s,
		Verification: &verification.Service{
			Repo:           s,
			Evaluator:      identity.NewEvaluator(s),
			Engine:         engine,
			Liveness:       biometric.NewLivenessGate(cfg.LivenessMinFrames),
			Faces:          faces,
			OCR:            ocr,
			ExtractTimeout: cfg.DeepFaceTimeout,
			OCRTimeout:     cfg.OCRTimeout,
			RollTimeout:    cfg.RollLookupTimeout,
		},
		Elections: elections,
		Ballots:   ballot.NewGuard(s, elections, agg, cfg.IntegritySalt),
		Fraud:     agg,
	}, nil
}

func NewRouter(svc Services, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	voterHandler := handlers.NewVoterHandler(svc.Verification, svc.Store, cfg)
	rollHandler := handlers.NewRollHandler(svc.Store, cfg)
	electionHandler := handlers.NewElectionHandler(svc.Elections, cfg)
	votingHandler := handlers.NewVotingHandler(svc.Ballots, svc.Fraud, svc.Store, cfg)
	eventsHandler := handlers.NewEventsHandler(svc.Store.Feed, cfg)
	healthHandler := handlers.NewHealthHandler(svc.Store)

	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdmin(cfg.AdminToken, h))
	}
	electionAdmin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireElectionAdmin(cfg.AdminToken, cfg.AdminKeySalt, h))
	}
	voter := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireVoter(svc.Store, h))
	}

	// Health check
	mux.HandleFunc("GET /health", healthHandler.Health)

	// Registration and voter self-service
	mux.HandleFunc("POST /voters/register", middleware.WithLogging(voterHandler.Register))
	mux.HandleFunc("GET /voters/me", voter(voterHandler.Me))
	mux.HandleFunc("POST /voters/me/manual-verification", voter(voterHandler.RequestManualVerification))
	mux.HandleFunc("POST /voters/me/reverify", voter(voterHandler.Reverify))

	// Voter administration
	mux.HandleFunc("GET /voters", admin(voterHandler.List))
	mux.HandleFunc("GET /voters/{id}", admin(voterHandler.Get))
	mux.HandleFunc("POST /voters/{id}/status", admin(voterHandler.UpdateStatus))
	mux.HandleFunc("POST /voters/{id}/cross-verify", admin(voterHandler.CrossVerify))

	// Electoral roll
	mux.HandleFunc("POST /roll/records", admin(rollHandler.AddRecords))
	mux.HandleFunc("POST /roll/import", admin(rollHandler.Import))
	mux.HandleFunc("GET /roll/records/{id}", admin(rollHandler.GetRecord))

	// Elections
	mux.HandleFunc("POST /elections", admin(electionHandler.Create))
	mux.HandleFunc("GET /elections", middleware.WithLogging(electionHandler.List))
	mux.HandleFunc("GET /elections/{id}", middleware.WithLogging(electionHandler.Get))
	mux.HandleFunc("POST /elections/{id}/candidates", electionAdmin(electionHandler.AddCandidate))
	mux.HandleFunc("POST /elections/{id}/stop", electionAdmin(electionHandler.Stop))
	mux.HandleFunc("GET /elections/{id}/results", middleware.WithLogging(electionHandler.Results))
	mux.HandleFunc("GET /elections/{id}/alerts", admin(votingHandler.Alerts))

	// Voting
	mux.HandleFunc("POST /elections/{id}/session", voter(votingHandler.Session))
	mux.HandleFunc("POST /elections/{id}/signals", voter(votingHandler.ReportSignal))
	mux.HandleFunc("POST /elections/{id}/votes", voter(votingHandler.CastVote))
	mux.HandleFunc("GET /votes/{id}/verify", voter(votingHandler.VerifyReceipt))

	// Change feed
	mux.HandleFunc("GET /events", eventsHandler.Stream)

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("voteguard API v1"))
	})

	return mux
}
