// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

ParseFlags returns a Config with every setting resolved:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Each flag falls back to an environment variable, then to a default. CLI
flags take precedence over environment variables.

# Required

	-d               DATABASE_URL     sqlite path or postgres URL
	-admin-token     ADMIN_TOKEN      registry admin token
	-admin-salt      ADMIN_KEY_SALT   election admin key salt
	-integrity-salt  INTEGRITY_SALT   vote integrity token salt
	-deepface        DEEPFACE_URL     face embedding service

# Tuning

	-bio-scale        BIOMETRIC_SCALE      20
	-bio-threshold    BIOMETRIC_THRESHOLD  10
	-liveness-frames  LIVENESS_MIN_FRAMES  3
	-fraud-threshold  FRAUD_THRESHOLD      3
	-risk-floor       RISK_FLOOR           0.5
	-counter          COUNTER_BACKEND      sql (or redis, which needs REDIS_ADDR)
	-sweep            ELECTION_SWEEP       @every 30s
	-max-upload       MAX_UPLOAD_BYTES     10 MiB

GEMINI_API_KEY is read from the environment only. Without it document OCR
is skipped.
*/
package cliparse
