// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/danielhkuo/voteguard/cliparse"
	"github.com/danielhkuo/voteguard/logger"
	"github.com/danielhkuo/voteguard/middleware"
	"github.com/danielhkuo/voteguard/store"
)

// Heartbeat is the interval between keep-alive comments on idle streams.
var Heartbeat = 15 * time.Second

// publicEntities are the changes anyone may watch.
var publicEntities = map[string]bool{
	store.EntityElection:  true,
	store.EntityCandidate: true,
	store.EntityVote:      true,
}

type EventsHandler struct {
	feed *store.Feed
	cfg  cliparse.Config
}

func NewEventsHandler(feed *store.Feed, cfg cliparse.Config) *EventsHandler {
	return &EventsHandler{feed: feed, cfg: cfg}
}

// Stream handles GET /events as Server-Sent Events. ?election=ID narrows the
// stream to one election. Without the admin token only election, candidate
// and vote changes are sent.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}
	admin := middleware.IsAdmin(r, h.cfg.AdminToken)
	electionID := r.URL.Query().Get("election")

	changes, cancel := h.feed.Subscribe(64)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(Heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case c, ok := <-changes:
			if !ok {
				return
			}
			if !admin && !publicEntities[c.Entity] {
				continue
			}
			if electionID != "" && c.ElectionID != electionID {
				continue
			}
			data, err := json.Marshal(c)
			if err != nil {
				logger.Error("failed to encode change", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", c.Entity, data)
			flusher.Flush()
		}
	}
}
