// Package heartbeat periodically pings the established graph database
// connection and logs when it goes down or comes back. It never opens a
// connection itself.
package heartbeat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/cloudmap/cloudmap-backend/internal/graphdb"
)

const pingTimeout = 5 * time.Second

// Pinger is implemented by *graphdb.Manager.
type Pinger interface {
	Ping(ctx context.Context) error
}

type state int

const (
	stateUnknown state = iota
	stateIdle
	stateUp
	stateDown
)

type Scheduler struct {
	pinger Pinger
	logger *log.Logger
	cron   *cron.Cron

	mu   sync.Mutex
	last state
}

func NewScheduler(pinger Pinger, logger *log.Logger) *Scheduler {
	return &Scheduler{
		pinger: pinger,
		logger: logger,
	}
}

// Start registers the ping job with a cron spec such as "@every 1m" and starts it.
func (s *Scheduler) Start(spec string) error {
	c := cron.New()

	if _, err := c.AddFunc(spec, func() { s.Check(context.Background()) }); err != nil {
		return fmt.Errorf("schedule heartbeat %q: %w", spec, err)
	}

	s.cron = c
	c.Start()
	s.logger.Info("Heartbeat scheduler started", "schedule", spec)
	return nil
}

// Stop stops the scheduler and waits for a running check to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// Check pings once and logs on state changes only.
func (s *Scheduler) Check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	err := s.pinger.Ping(ctx)

	next := stateUp
	switch {
	case err == nil:
	case errors.Is(err, graphdb.ErrNotConnected), errors.Is(err, graphdb.ErrClosed):
		next = stateIdle
	default:
		next = stateDown
	}

	s.mu.Lock()
	prev := s.last
	s.last = next
	s.mu.Unlock()

	if prev == next {
		return
	}

	switch next {
	case stateUp:
		s.logger.Info("Neo4j heartbeat ok")
	case stateDown:
		s.logger.Warn("Neo4j heartbeat failed", "err", err)
	case stateIdle:
		s.logger.Debug("Neo4j heartbeat skipped", "reason", err)
	}
}
