// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package biometric

import (
	"errors"
	"fmt"
	"math"

	"github.com/danielhkuo/voteguard/apperr"
)

// Reference tuning values. Neither is calibrated against a labeled dataset.
const (
	DefaultScale     = 20.0
	DefaultThreshold = 10.0
)

var ErrInvalidEmbedding = fmt.Errorf("invalid embedding: %w", apperr.ErrInvalidInput)

// Engine scores two face embeddings.
type Engine struct {
	// Scale is the distance at which confidence reaches zero.
	Scale float64
	// Threshold is the exclusive upper bound on distance for a match.
	Threshold float64
}

// Match is the result of comparing two embeddings.
type Match struct {
	Distance   float64
	Confidence float64
	Matched    bool
}

func NewEngine(scale, threshold float64) (Engine, error) {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return Engine{}, errors.New("biometric scale must be positive")
	}
	if threshold <= 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return Engine{}, errors.New("biometric threshold must be positive")
	}
	return Engine{Scale: scale, Threshold: threshold}, nil
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b []float64) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, fmt.Errorf("%w: empty vector", ErrInvalidEmbedding)
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: length %d vs %d", ErrInvalidEmbedding, len(a), len(b))
	}

	var sum float64
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) || math.IsInf(a[i], 0) || math.IsInf(b[i], 0) {
			return 0, fmt.Errorf("%w: non-finite component at %d", ErrInvalidEmbedding, i)
		}
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum), nil
}

// Confidence maps a distance to [0,1] with a linear decay. It is a heuristic
// score, not a probability.
func (e Engine) Confidence(distance float64) float64 {
	c := 1 - distance/e.Scale
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func (e Engine) Compare(a, b []float64) (Match, error) {
	d, err := Distance(a, b)
	if err != nil {
		return Match{}, err
	}
	return Match{
		Distance:   d,
		Confidence: e.Confidence(d),
		Matched:    d < e.Threshold,
	}, nil
}
