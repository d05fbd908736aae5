// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  Ravi   KUMAR ", "ravi kumar"},
		{"O'Brien-Smith", "o brien smith"},
		{"", ""},
		{"\tA.\nB.", "a b"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNameComparator(t *testing.T) {
	c := NameComparator{}
	tests := []struct {
		name              string
		claimed, official string
		want              bool
	}{
		{"exact", "Ravi Kumar", "Ravi Kumar", true},
		{"case and spacing", "  ravi   KUMAR", "Ravi Kumar", true},
		{"middle name omitted by claimant", "Ravi Sharma", "Ravi Prakash Sharma", true},
		{"middle name omitted by roll", "Ravi Prakash Sharma", "Ravi Sharma", true},
		{"middle initial", "Ravi P Sharma", "Ravi Prakash Sharma", true},
		{"first initial", "R Sharma", "Ravi Sharma", true},
		{"different last name", "Ravi Verma", "Ravi Sharma", false},
		{"different first name", "Amit Sharma", "Ravi Sharma", false},
		{"conflicting middle", "Ravi Anil Sharma", "Ravi Prakash Sharma", false},
		{"single token vs two", "Ravi", "Ravi Sharma", false},
		{"empty", "", "Ravi", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Compare(tt.claimed, tt.official); got != tt.want {
				t.Errorf("Compare(%q, %q) = %v, want %v", tt.claimed, tt.official, got, tt.want)
			}
		})
	}
}

func TestDateComparator(t *testing.T) {
	c := DateComparator{}
	tests := []struct {
		claimed, official string
		want              bool
	}{
		{"1990-05-17", "1990-05-17", true},
		{"17/05/1990", "1990-05-17", true},
		{"17-05-1990", "17 May 1990", true},
		{"1990-05-17", "1990-05-18", false},
		{"not a date", "not a date", true},
		{"not a date", "1990-05-17", false},
	}
	for _, tt := range tests {
		if got := c.Compare(tt.claimed, tt.official); got != tt.want {
			t.Errorf("Compare(%q, %q) = %v, want %v", tt.claimed, tt.official, got, tt.want)
		}
	}
}

func TestAddressComparator(t *testing.T) {
	c := AddressComparator{}
	tests := []struct {
		claimed, official string
		want              bool
	}{
		{"Pune  Maharashtra", "pune maharashtra", true},
		{"Pune Maharashtra", "Pune Haveli Maharashtra", true},
		{"Pune Haveli Maharashtra", "Pune Maharashtra", true},
		{"Nagpur Maharashtra", "Pune Maharashtra", false},
		{"", "Pune", false},
	}
	for _, tt := range tests {
		if got := c.Compare(tt.claimed, tt.official); got != tt.want {
			t.Errorf("Compare(%q, %q) = %v, want %v", tt.claimed, tt.official, got, tt.want)
		}
	}
}

func TestComparatorFunc(t *testing.T) {
	strict := ComparatorFunc(func(a, b string) bool { return a == b })
	if strict.Compare("a", "A") {
		t.Error("strict comparator should be case sensitive")
	}
}
