// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"strings"
	"time"
	"unicode"
)

// Comparator decides whether a claimed value agrees with an official one.
type Comparator interface {
	Compare(claimed, official string) bool
}

// ComparatorFunc adapts a function to Comparator.
type ComparatorFunc func(claimed, official string) bool

func (f ComparatorFunc) Compare(claimed, official string) bool { return f(claimed, official) }

// Normalize lowercases s, turns punctuation into spaces and collapses runs of
// whitespace.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// ExactComparator matches after normalization.
type ExactComparator struct{}

func (ExactComparator) Compare(claimed, official string) bool {
	c, o := Normalize(claimed), Normalize(official)
	return c != "" && c == o
}

// NameComparator requires the first and last tokens to agree and tolerates
// omitted middle names and single-letter initials.
type NameComparator struct{}

func (NameComparator) Compare(claimed, official string) bool {
	c := strings.Fields(Normalize(claimed))
	o := strings.Fields(Normalize(official))
	if len(c) == 0 || len(o) == 0 {
		return false
	}
	if !tokenEqual(c[0], o[0]) || !tokenEqual(c[len(c)-1], o[len(o)-1]) {
		return false
	}
	if len(c) == 1 || len(o) == 1 {
		return len(c) == len(o)
	}

	short, long := c[1:len(c)-1], o[1:len(o)-1]
	if len(short) > len(long) {
		short, long = long, short
	}
	return subsequence(short, long)
}

func tokenEqual(a, b string) bool {
	if a == b {
		return true
	}
	if len(a) == 1 && strings.HasPrefix(b, a) {
		return true
	}
	return len(b) == 1 && strings.HasPrefix(a, b)
}

func subsequence(short, long []string) bool {
	i := 0
	for _, t := range long {
		if i < len(short) && tokenEqual(short[i], t) {
			i++
		}
	}
	return i == len(short)
}

var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
	"02.01.2006",
	"2 January 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	time.RFC3339,
}

// ParseDate tries the date layouts seen on identity documents and rolls.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateComparator compares calendar dates written in any known layout.
type DateComparator struct{}

func (DateComparator) Compare(claimed, official string) bool {
	ct, cok := ParseDate(claimed)
	ot, ook := ParseDate(official)
	if cok && ook {
		cy, cm, cd := ct.Date()
		oy, om, od := ot.Date()
		return cy == oy && cm == om && cd == od
	}
	return ExactComparator{}.Compare(claimed, official)
}

// AddressComparator matches when the token set of one address contains the
// other's. Rolls often carry more locality detail than registrants type.
type AddressComparator struct{}

func (AddressComparator) Compare(claimed, official string) bool {
	c := tokenSet(claimed)
	o := tokenSet(official)
	if len(c) == 0 || len(o) == 0 {
		return false
	}
	return contains(o, c) || contains(c, o)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range strings.Fields(Normalize(s)) {
		set[t] = struct{}{}
	}
	return set
}

func contains(super, sub map[string]struct{}) bool {
	for t := range sub {
		if _, ok := super[t]; !ok {
			return false
		}
	}
	return true
}
