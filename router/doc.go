// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the voteguard API.

# Route Registration

NewServices wires the store and domain components; NewRouter mounts them:

	svc, err := router.NewServices(db, cfg, deepface, ocr, counter)
	mux := router.NewRouter(svc, cfg)

# Endpoints

Health:

	GET /health

Registration and voter self-service (X-Voter-Token after registration):

	POST /voters/register                 - Register and verify
	GET  /voters/me                       - Own record
	POST /voters/me/manual-verification   - Ask for manual review
	POST /voters/me/reverify              - Re-run liveness and matching

Voter administration (X-Admin-Token):

	GET  /voters?status=PENDING
	GET  /voters/{id}
	POST /voters/{id}/status              - VERIFIED or REJECTED override
	POST /voters/{id}/cross-verify        - Link to a roll record

Electoral roll (X-Admin-Token):

	POST /roll/records                    - JSON array of records
	POST /roll/import                     - CSV body
	GET  /roll/records/{id}

Elections:

	POST /elections                       - Create (X-Admin-Token), returns admin key
	GET  /elections
	GET  /elections/{id}
	POST /elections/{id}/candidates       - X-Admin-Key
	POST /elections/{id}/stop             - X-Admin-Key
	GET  /elections/{id}/results
	GET  /elections/{id}/alerts           - X-Admin-Token

Voting (X-Voter-Token):

	POST /elections/{id}/session
	POST /elections/{id}/signals
	POST /elections/{id}/votes
	GET  /votes/{id}/verify

Change feed:

	GET /events                           - Server-Sent Events
*/
package router
