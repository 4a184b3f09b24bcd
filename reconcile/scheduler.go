package reconcile

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/pdcgo/collection_service/session"
)

// Scheduler runs the engine on a fixed interval for the current session.
type Scheduler struct {
	engine   *Engine
	sessions session.Provider
	interval time.Duration
	timeout  time.Duration
}

func NewScheduler(engine *Engine, sessions session.Provider, interval time.Duration) *Scheduler {
	return &Scheduler{
		engine:   engine,
		sessions: sessions,
		interval: interval,
	}
}

func (s *Scheduler) WithTimeout(timeout time.Duration) *Scheduler {
	s.timeout = timeout
	return s
}

// RunOnce reconciles the current session. Failures are already logged and
// recorded by the engine.
func (s *Scheduler) RunOnce(ctx context.Context) (*Outcome, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	sess, err := s.sessions.Current(ctx)
	if err != nil {
		slog.Error(err.Error())
		return nil, err
	}

	return s.engine.Reconcile(ctx, sess)
}

// Run reconciles immediately and then on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	log.Println("reconcile scheduler started, interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.RunOnce(ctx)

		select {
		case <-ctx.Done():
			log.Println("reconcile scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}
