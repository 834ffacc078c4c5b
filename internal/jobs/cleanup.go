// Package jobs holds periodic maintenance work that runs alongside the
// HTTP server.
package jobs

import (
	"context"
	"log/slog"
	"time"
)

// DefaultCleanupInterval is how often expired sessions get purged.
const DefaultCleanupInterval = time.Hour

// ExpiredDeleter is the slice of the session store the cleanup job needs.
type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// SessionCleanup periodically deletes expired sessions. The in-memory store
// sweeps itself; this job exists for the postgres store, where expired rows
// otherwise accumulate forever.
type SessionCleanup struct {
	store    ExpiredDeleter
	interval time.Duration
	logger   *slog.Logger
	stop     chan struct{}
}

// NewSessionCleanup creates a session cleanup job.
func NewSessionCleanup(store ExpiredDeleter, interval time.Duration, logger *slog.Logger) *SessionCleanup {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionCleanup{
		store:    store,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Start runs the cleanup loop until Stop is called. Call in a goroutine.
func (j *SessionCleanup) Start() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.runOnce()
		case <-j.stop:
			return
		}
	}
}

// Stop terminates the cleanup loop.
func (j *SessionCleanup) Stop() {
	close(j.stop)
}

func (j *SessionCleanup) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := j.store.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("session cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		j.logger.Info("expired sessions removed", "count", deleted)
	}
}
