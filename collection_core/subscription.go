package collection_core

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrPollInterval = errors.New("poll interval must be positive")

// Subscription delivers full-state snapshots. Each value on C replaces the
// previous one entirely.
type Subscription[T any] struct {
	C <-chan T

	cancel context.CancelFunc
	done   chan struct{}
	mu     sync.Mutex
	err    error
}

type Producer[T any] func(ctx context.Context, emit func(T) bool) error

// NewSubscription runs produce in its own goroutine until it returns, the
// parent context is done, or Stop is called.
func NewSubscription[T any](parent context.Context, produce Producer[T]) *Subscription[T] {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan T, 1)

	sub := &Subscription[T]{
		C:      ch,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(sub.done)
		defer close(ch)

		emit := func(v T) bool {
			select {
			case <-ctx.Done():
				return false
			case ch <- v:
				return true
			}
		}

		err := produce(ctx, emit)
		if err != nil && ctx.Err() == nil {
			sub.setErr(err)
		}
	}()

	return sub
}

func (s *Subscription[T]) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Err returns the error that ended the subscription, nil after a normal Stop.
func (s *Subscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Stop cancels the subscription and waits for the producer to exit.
func (s *Subscription[T]) Stop() {
	s.cancel()
	<-s.done
}

// First waits for the first snapshot and stops the subscription.
func (s *Subscription[T]) First(ctx context.Context) (T, error) {
	var zero T
	defer s.Stop()

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case v, ok := <-s.C:
		if !ok {
			<-s.done
			err := s.Err()
			if err == nil {
				err = context.Canceled
			}
			return zero, err
		}
		return v, nil
	}
}

// Poll builds a Producer that re-reads the full state every interval and
// emits it when changed reports a difference from the previous snapshot.
func Poll[T any](interval time.Duration, read func(ctx context.Context) (T, error), changed func(prev, next T) bool) Producer[T] {
	return func(ctx context.Context, emit func(T) bool) error {
		if interval <= 0 {
			return ErrPollInterval
		}

		var prev T
		first := true

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			next, err := read(ctx)
			if err != nil {
				return err
			}

			if first || changed(prev, next) {
				if !emit(next) {
					return nil
				}
				prev = next
				first = false
			}

			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	}
}
