// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package biometric

import (
	"crypto/sha256"
	"fmt"
)

const DefaultMinFrames = 3

// LivenessGate is the last anti-replay check on a captured frame sequence.
// Motion semantics (blink, head turn) are checked upstream.
type LivenessGate struct {
	MinFrames int
}

type LivenessResult struct {
	Passed bool
	Reason string
}

func NewLivenessGate(minFrames int) LivenessGate {
	if minFrames < DefaultMinFrames {
		minFrames = DefaultMinFrames
	}
	return LivenessGate{MinFrames: minFrames}
}

func (g LivenessGate) Check(frames [][]byte) LivenessResult {
	minFrames := g.MinFrames
	if minFrames < DefaultMinFrames {
		minFrames = DefaultMinFrames
	}

	if len(frames) < minFrames {
		return LivenessResult{Reason: fmt.Sprintf("captured %d frames, need at least %d", len(frames), minFrames)}
	}

	distinct := make(map[[sha256.Size]byte]struct{}, len(frames))
	for i, f := range frames {
		if len(f) == 0 {
			return LivenessResult{Reason: fmt.Sprintf("frame %d is empty", i)}
		}
		distinct[sha256.Sum256(f)] = struct{}{}
	}

	if len(distinct) < 2 {
		return LivenessResult{Reason: "all frames are identical; static image suspected"}
	}

	return LivenessResult{Passed: true, Reason: fmt.Sprintf("%d distinct frames", len(distinct))}
}
