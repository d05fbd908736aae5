// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package biometric

import "testing"

func TestLivenessGate(t *testing.T) {
	g := NewLivenessGate(3)

	a := []byte("frame-a")
	b := []byte("frame-b")
	c := []byte("frame-c")

	tests := []struct {
		name   string
		frames [][]byte
		want   bool
	}{
		{"no frames", nil, false},
		{"two distinct frames", [][]byte{a, b}, false},
		{"three identical frames", [][]byte{a, a, a}, false},
		{"identical content in separate slices", [][]byte{[]byte("x"), []byte("x"), []byte("x"), []byte("x")}, false},
		{"three frames two distinct", [][]byte{a, a, b}, true},
		{"three distinct frames", [][]byte{a, b, c}, true},
		{"empty frame", [][]byte{a, {}, b}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := g.Check(tt.frames)
			if res.Passed != tt.want {
				t.Errorf("Check() passed=%v, want %v (reason %q)", res.Passed, tt.want, res.Reason)
			}
			if res.Reason == "" {
				t.Error("reason should always be set")
			}
		})
	}
}

func TestLivenessGateNeverBelowThreeFrames(t *testing.T) {
	g := LivenessGate{MinFrames: 1}
	if g.Check([][]byte{[]byte("a"), []byte("b")}).Passed {
		t.Error("gate must reject fewer than three frames regardless of configuration")
	}

	g = NewLivenessGate(5)
	if g.Check([][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("d")}).Passed {
		t.Error("gate configured for five frames should reject four")
	}
}
