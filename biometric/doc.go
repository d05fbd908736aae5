// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package biometric scores face captures.

# Liveness

LivenessGate rejects frame sequences that cannot come from a live capture:
fewer than three frames, or frames that are all byte-identical (compared by
SHA-256). It is a pure function over the frame bytes.

	res := biometric.NewLivenessGate(3).Check(frames)
	if !res.Passed { ... res.Reason ... }

# Embedding distance

Distance is Euclidean over equal-length vectors. Malformed input returns
ErrInvalidEmbedding, which wraps apperr.ErrInvalidInput so callers can tell
"could not compare" apart from "compared and did not match".

Engine maps a distance to a confidence with clamp(1 - d/Scale, 0, 1) and
matches when d < Threshold. Both knobs come from configuration; the defaults
(Scale 20, Threshold 10) are uncalibrated reference values.

# Extraction

Extractor is the embedding service contract. DeepFaceClient implements it
against a DeepFace /represent endpoint, retrying transient failures. Outages
surface as apperr.ErrServiceUnavailable; images without a face as ErrNoFace.
*/
package biometric
