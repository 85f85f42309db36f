package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultRetryDelay is how long Watch waits before reloading after a failed
// read when no change signal arrives first.
const DefaultRetryDelay = 2 * time.Second

// Subscription is a cancellable, live sequence of full collection snapshots.
type Subscription[T any] struct {
	out    chan []T
	cancel context.CancelFunc
	done   chan struct{}
	mu     sync.Mutex
}

// Producer runs for the lifetime of a subscription, handing snapshots to
// publish until ctx is cancelled.
type Producer[T any] func(ctx context.Context, publish func([]T))

// Start runs produce in its own goroutine and returns the subscription that
// delivers what it publishes. The subscription ends when ctx is cancelled,
// when Unsubscribe is called, or when produce returns.
func Start[T any](ctx context.Context, produce Producer[T]) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription[T]{
		out:    make(chan []T, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		defer close(s.out)
		defer cancel()
		produce(ctx, s.publish)
	}()

	return s
}

// publish hands snap to the consumer, replacing a snapshot that is still
// waiting to be read.
func (s *Subscription[T]) publish(snap []T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		select {
		case s.out <- snap:
			return
		default:
		}
		select {
		case <-s.out:
		default:
		}
	}
}

// Snapshots returns the channel of snapshots. It is closed when the
// subscription ends.
func (s *Subscription[T]) Snapshots() <-chan []T {
	return s.out
}

// Done is closed once the subscription has fully stopped.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

// Unsubscribe stops the subscription and waits for its goroutine to exit.
// It is safe to call more than once.
func (s *Subscription[T]) Unsubscribe() {
	s.cancel()
	<-s.done
}

// Loader reads the full current contents of a collection.
type Loader[T any] func(ctx context.Context) ([]T, error)

// Watch subscribes to the collection key of hub. The first snapshot is read
// immediately; afterwards load runs again after every change signal. Read
// errors are logged and retried after retryDelay (or on the next signal);
// they never reach the consumer.
func Watch[T any](ctx context.Context, hub *Hub, key string, load Loader[T], retryDelay time.Duration) *Subscription[T] {
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}

	// Listen before the first read so no change can slip in between.
	signal, stop := hub.Listen(key)

	return Start(ctx, func(ctx context.Context, publish func([]T)) {
		defer stop()

		for {
			var timer *time.Timer
			var retry <-chan time.Time

			snap, err := load(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Warn("Snapshot read failed", "collection", key, "error", err)
				timer = time.NewTimer(retryDelay)
				retry = timer.C
			} else {
				publish(snap)
			}

			select {
			case <-ctx.Done():
			case <-signal:
			case <-retry:
			}
			if timer != nil {
				timer.Stop()
			}
			if ctx.Err() != nil {
				return
			}
		}
	})
}
