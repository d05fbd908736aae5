// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/danielhkuo/voteguard/logger"
)

// Sweeper periodically recomputes election statuses.
type Sweeper struct {
	cron    *cron.Cron
	manager *Manager
}

// NewSweeper schedules Manager.Sync on spec, e.g. "@every 30s".
func NewSweeper(m *Manager, spec string) (*Sweeper, error) {
	s := &Sweeper{cron: cron.New(), manager: m}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop waits for a running sweep to finish or ctx to expire.
func (s *Sweeper) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	n, err := s.manager.Sync(ctx)
	if err != nil {
		logger.Error("election sweep failed", "error", err)
		return
	}
	if n > 0 {
		logger.Info("election sweep complete", "changed", n)
	}
}
