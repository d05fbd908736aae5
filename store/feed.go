// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"sync"
	"time"
)

// Entities published on the change feed
const (
	EntityVoter      = "voter"
	EntityRollRecord = "roll_record"
	EntityElection   = "election"
	EntityCandidate  = "candidate"
	EntityVote       = "vote"
	EntitySession    = "session"
	EntityFraudAlert = "fraud_alert"
)

// Operations
const (
	OpCreated = "created"
	OpUpdated = "updated"
)

// Change describes one committed write. It never carries personal data.
type Change struct {
	Entity     string    `json:"entity"`
	Op         string    `json:"op"`
	ID         string    `json:"id"`
	ElectionID string    `json:"election_id,omitempty"`
	At         time.Time `json:"at"`
}

// Feed fans committed changes out to subscribers. Slow subscribers miss
// changes rather than blocking writers.
type Feed struct {
	mu     sync.Mutex
	subs   map[int]chan Change
	nextID int
	closed bool
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[int]chan Change)}
}

// Subscribe returns a channel of changes and a cancel func that closes it.
// After Close the channel is returned already closed.
func (f *Feed) Subscribe(buffer int) (<-chan Change, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Change, buffer)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	id := f.nextID
	f.nextID++
	f.subs[id] = ch

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Close ends every subscription. Publish is a no-op afterwards.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
}

// Publish delivers c to every subscriber with room in its buffer.
func (f *Feed) Publish(c Change) {
	if c.At.IsZero() {
		c.At = time.Now()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
