package auth

import (
	"context"
	"sync"
	"time"

	"github.com/ahan30/mindsaidurai-tools/pkg/logger"
)

// Sweeper periodically deletes expired sessions. It implements
// system.Service so the application manager owns its lifecycle.
type Sweeper struct {
	store    SessionStore
	interval time.Duration
	log      *logger.Logger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewSweeper builds a sweeper over the session store.
func NewSweeper(store SessionStore, interval time.Duration, log *logger.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	if log == nil {
		log = logger.NewDefault("session-sweeper")
	}
	return &Sweeper{store: store, interval: interval, log: log}
}

// Name implements system.Service.
func (s *Sweeper) Name() string { return "session-sweeper" }

// Start launches the sweep loop.
func (s *Sweeper) Start(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return nil
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.run(s.stop, s.done)
	return nil
}

// Stop halts the sweep loop.
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sweeper) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.store.DeleteExpiredSessions(ctx, time.Now().UTC())
	if err != nil {
		s.log.WithError(err).Warn("session sweep failed")
		return
	}
	if n > 0 {
		s.log.WithField("deleted", n).Info("expired sessions removed")
	}
}
