package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/aurelioventura/healthscan-backend/pkg/logger"
	"github.com/aurelioventura/healthscan-backend/pkg/metrics"
)

// DefaultDebounceWindow coalesces change-event bursts into one refetch.
const DefaultDebounceWindow = time.Second

// DataUpdatedMessage is the user-visible notice emitted once per window.
const DataUpdatedMessage = "data updated"

// EventSource delivers product change events. The returned close func
// must stop the stream and release the subscription.
type EventSource interface {
	Subscribe(ctx context.Context) (<-chan struct{}, func() error, error)
}

// RefetchHandler reloads the search results and statistics views.
type RefetchHandler interface {
	Refetch(ctx context.Context) error
}

// RefetchFunc adapts functions to the RefetchHandler interface.
type RefetchFunc func(ctx context.Context) error

// Refetch calls the underlying function.
func (fn RefetchFunc) Refetch(ctx context.Context) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Notifier delivers non-fatal user-facing notices.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Adapter bridges push-style change notifications into debounced
// refetches. The debounce runs as a timer state machine: the first event
// of a burst opens a window, events inside the window coalesce, and the
// window firing triggers exactly one refetch and one notification.
type Adapter struct {
	source        EventSource
	handler       RefetchHandler
	notifier      Notifier
	window        time.Duration
	logg          *logger.Logger
	searchMetrics *metrics.SearchMetrics

	mu          sync.Mutex
	started     bool
	cancel      context.CancelFunc
	done        chan struct{}
	closeSource func() error
}

// NewAdapter constructs a sync adapter instance.
func NewAdapter(source EventSource, handler RefetchHandler, notifier Notifier, window time.Duration, logg *logger.Logger, searchMetrics *metrics.SearchMetrics) (*Adapter, error) {
	if source == nil {
		return nil, fmt.Errorf("event source required")
	}
	if handler == nil {
		return nil, fmt.Errorf("refetch handler required")
	}
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Adapter{
		source:        source,
		handler:       handler,
		notifier:      notifier,
		window:        window,
		logg:          logg,
		searchMetrics: searchMetrics,
	}, nil
}

// Start subscribes to the change stream and begins debouncing. A failed
// subscription is returned to the caller; this adapter does not retry it.
func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return errors.New("sync adapter already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	events, closeSource, err := a.source.Subscribe(runCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribing to product changes: %w", err)
	}

	a.started = true
	a.cancel = cancel
	a.closeSource = closeSource
	a.done = make(chan struct{})

	go a.run(runCtx, events)
	return nil
}

// Close tears the adapter down deterministically: the pending window is
// discarded, the event loop has exited, and the subscription is released
// before Close returns.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.started {
		return nil
	}
	a.started = false

	a.cancel()
	<-a.done

	var err error
	if a.closeSource != nil {
		err = multierr.Append(err, a.closeSource())
	}
	return err
}

func (a *Adapter) run(ctx context.Context, events <-chan struct{}) {
	defer close(a.done)

	var timer *time.Timer
	var windowEnd <-chan time.Time
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			windowEnd = nil
		}
	}
	defer stopTimer()

	for {
		select {
		case <-ctx.Done():
			return

		case _, ok := <-events:
			if !ok {
				return
			}
			// First event opens the window; later ones coalesce into it.
			if timer == nil {
				timer = time.NewTimer(a.window)
				windowEnd = timer.C
			}

		case <-windowEnd:
			timer = nil
			windowEnd = nil
			a.fire(ctx)
		}
	}
}

func (a *Adapter) fire(ctx context.Context) {
	if err := a.handler.Refetch(ctx); err != nil && a.logg != nil {
		a.logg.Warn(ctx, "debounced refetch failed")
	}
	if a.notifier != nil {
		a.notifier.Notify(ctx, DataUpdatedMessage)
	}
	if a.searchMetrics != nil {
		a.searchMetrics.IncRefetch()
	}
}
