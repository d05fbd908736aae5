// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/danielhkuo/voteguard/ballot"
	"github.com/danielhkuo/voteguard/biometric"
	"github.com/danielhkuo/voteguard/cliparse"
	"github.com/danielhkuo/voteguard/election"
	"github.com/danielhkuo/voteguard/fraud"
	"github.com/danielhkuo/voteguard/identity"
	"github.com/danielhkuo/voteguard/middleware"
	"github.com/danielhkuo/voteguard/models"
	"github.com/danielhkuo/voteguard/store"
	"github.com/danielhkuo/voteguard/testutil"
	"github.com/danielhkuo/voteguard/verification"
)

var (
	matchingDoc = testutil.JPEG("matching-document")
	strangerDoc = testutil.JPEG("stranger-document")
)

type testEnv struct {
	db        *sql.DB
	cfg       cliparse.Config
	store     *store.Store
	faces     *testutil.FakeExtractor
	voters    *VoterHandler
	roll      *RollHandler
	elections *ElectionHandler
	voting    *VotingHandler
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	s := store.New(db)

	faces := testutil.NewFakeExtractor()
	faces.Set(testutil.Frames(3)[1], []float64{0, 0, 0, 0})
	faces.Set(matchingDoc, []float64{1, 1, 1, 1})
	faces.Set(strangerDoc, []float64{10, 10, 10, 10})

	svc := &verification.Service{
		Repo:           s,
		Evaluator:      identity.NewEvaluator(s),
		Engine:         biometric.Engine{Scale: cfg.BiometricScale, Threshold: cfg.BiometricThreshold},
		Liveness:       biometric.NewLivenessGate(cfg.LivenessMinFrames),
		Faces:          faces,
		ExtractTimeout: time.Second,
		OCRTimeout:     time.Second,
		RollTimeout:    time.Second,
	}
	manager := election.NewManager(s, cfg.AdminKeySalt)
	agg := fraud.NewAggregator(s, nil, cfg.FraudThreshold, cfg.RiskFloor)
	guard := ballot.NewGuard(s, manager, agg, cfg.IntegritySalt)

	return testEnv{
		db:        db,
		cfg:       cfg,
		store:     s,
		faces:     faces,
		voters:    NewVoterHandler(svc, s, cfg),
		roll:      NewRollHandler(s, cfg),
		elections: NewElectionHandler(manager, cfg),
		voting:    NewVotingHandler(guard, agg, s, cfg),
	}
}

// asVoter resolves X-Voter-Token before calling h, as the router does.
func (e testEnv) asVoter(h http.HandlerFunc) http.HandlerFunc {
	return middleware.RequireVoter(e.store, h)
}

func registration(doc []byte) models.RegisterVoterRequest {
	return models.RegisterVoterRequest{
		Claims:     testutil.SampleClaims(),
		Document:   doc,
		FaceFrames: testutil.Frames(3),
	}
}
