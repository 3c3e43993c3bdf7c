package channels

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

type subscriber[T any] struct {
	ch       chan<- T
	timeout  time.Duration // zero means non-blocking
	inactive atomic.Bool
	dropped  atomic.Int64
}

func (s *subscriber[T]) send(msg T) {
	if s.inactive.Load() {
		s.dropped.Add(1)
		return
	}

	var err error
	if s.timeout > 0 {
		err = SendWithTimeout(s.ch, msg, s.timeout)
	} else {
		err = SendNonBlock(s.ch, msg)
	}
	if err != nil {
		s.dropped.Add(1)
		// A closed subscriber never comes back.
		if errors.Is(err, ErrChannelClosed) {
			s.inactive.Store(true)
		}
	}
}

// BroadcasterOption customizes a Broadcaster.
type BroadcasterOption func(*config)

type config struct {
	buffer int
}

// WithBuffer sets the input channel capacity. The default is twice the
// number of subscribers.
func WithBuffer(n int) BroadcasterOption {
	return func(c *config) { c.buffer = n }
}

// Broadcaster copies every message from one input channel to each
// subscriber. Slow subscribers lose messages rather than stall the others:
// non-blocking subscribers drop when full, timeout subscribers drop when the
// send times out.
//
// Cancelling the context passed to Run closes the input; messages already
// queued are still delivered before Wait returns.
type Broadcaster[T any] struct {
	cfg         config
	subscribers []*subscriber[T]
	input       chan T
	started     atomic.Bool
	wg          sync.WaitGroup
}

// NewBroadcaster creates a Broadcaster with no subscribers.
func NewBroadcaster[T any](opts ...BroadcasterOption) *Broadcaster[T] {
	b := &Broadcaster[T]{}
	for _, opt := range opts {
		opt(&b.cfg)
	}
	return b
}

// Subscribe adds a non-blocking subscriber. Must be called before Run.
func (b *Broadcaster[T]) Subscribe(ch chan<- T) error {
	if ch == nil {
		return errors.New("subscriber channel cannot be nil")
	}
	b.subscribers = append(b.subscribers, &subscriber[T]{ch: ch})
	return nil
}

// SubscribeWithTimeout adds a subscriber that may block each send for up to
// timeout. Must be called before Run.
func (b *Broadcaster[T]) SubscribeWithTimeout(ch chan<- T, timeout time.Duration) error {
	if ch == nil {
		return errors.New("subscriber channel cannot be nil")
	}
	if timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", timeout)
	}
	b.subscribers = append(b.subscribers, &subscriber[T]{ch: ch, timeout: timeout})
	return nil
}

// Run starts delivery and returns the input channel, which the Broadcaster
// owns and closes when ctx is done.
func (b *Broadcaster[T]) Run(ctx context.Context) (chan<- T, error) {
	if len(b.subscribers) == 0 {
		return nil, errors.New("no subscribers available")
	}
	if !b.started.CompareAndSwap(false, true) {
		return nil, errors.New("broadcaster already started")
	}

	size := b.cfg.buffer
	if size <= 0 {
		size = len(b.subscribers) * 2
	}
	b.input = make(chan T, size)

	b.wg.Go(func() {
		for msg := range b.input {
			for _, sub := range b.subscribers {
				sub.send(msg)
			}
		}
	})

	go func() {
		<-ctx.Done()
		close(b.input)
	}()

	return b.input, nil
}

// Wait blocks until the input is closed and drained.
func (b *Broadcaster[T]) Wait() {
	b.wg.Wait()
}

// SubscriberStats reports delivery for one subscriber, in Subscribe order.
type SubscriberStats struct {
	Dropped  int64
	Inactive bool
}

// Stats returns per-subscriber delivery counters.
func (b *Broadcaster[T]) Stats() []SubscriberStats {
	stats := make([]SubscriberStats, 0, len(b.subscribers))
	for _, sub := range b.subscribers {
		stats = append(stats, SubscriberStats{
			Dropped:  sub.dropped.Load(),
			Inactive: sub.inactive.Load(),
		})
	}
	return stats
}
