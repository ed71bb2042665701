package sync

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeSource struct {
	events    chan struct{}
	closed    atomic.Bool
	subErr    error
	closeErr  error
	subCalls  int
	closeOnce sync.Once
}

func newFakeSource() *fakeSource {
	return &fakeSource{events: make(chan struct{}, 16)}
}

func (f *fakeSource) Subscribe(ctx context.Context) (<-chan struct{}, func() error, error) {
	f.subCalls++
	if f.subErr != nil {
		return nil, nil, f.subErr
	}
	return f.events, func() error {
		f.closeOnce.Do(func() { f.closed.Store(true) })
		return f.closeErr
	}, nil
}

type countingHandler struct {
	refetches atomic.Int64
	err       error
}

func (h *countingHandler) Refetch(ctx context.Context) error {
	h.refetches.Add(1)
	return h.err
}

type countingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *countingNotifier) Notify(ctx context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *countingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

func newTestAdapter(t *testing.T, source EventSource, handler RefetchHandler, notifier Notifier, window time.Duration) *Adapter {
	t.Helper()
	adapter, err := NewAdapter(source, handler, notifier, window, nil, nil)
	if err != nil {
		t.Fatalf("NewAdapter failed: %v", err)
	}
	return adapter
}

func TestBurstOfEventsCoalescesIntoOneRefetch(t *testing.T) {
	source := newFakeSource()
	handler := &countingHandler{}
	notifier := &countingNotifier{}
	adapter := newTestAdapter(t, source, handler, notifier, 50*time.Millisecond)

	if err := adapter.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer adapter.Close()

	for i := 0; i < 5; i++ {
		source.events <- struct{}{}
	}

	time.Sleep(150 * time.Millisecond)

	if got := handler.refetches.Load(); got != 1 {
		t.Fatalf("expected exactly 1 refetch for the burst, got %d", got)
	}
	if got := notifier.count(); got != 1 {
		t.Fatalf("expected exactly 1 notification for the burst, got %d", got)
	}
	if notifier.messages[0] != DataUpdatedMessage {
		t.Fatalf("unexpected notification %q", notifier.messages[0])
	}
}

func TestSeparatedEventsEachOpenAWindow(t *testing.T) {
	source := newFakeSource()
	handler := &countingHandler{}
	notifier := &countingNotifier{}
	adapter := newTestAdapter(t, source, handler, notifier, 20*time.Millisecond)

	if err := adapter.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer adapter.Close()

	source.events <- struct{}{}
	time.Sleep(60 * time.Millisecond)
	source.events <- struct{}{}
	time.Sleep(60 * time.Millisecond)

	if got := handler.refetches.Load(); got != 2 {
		t.Fatalf("expected 2 refetches for separated events, got %d", got)
	}
	if got := notifier.count(); got != 2 {
		t.Fatalf("expected 2 notifications, got %d", got)
	}
}

func TestCloseCancelsPendingWindow(t *testing.T) {
	source := newFakeSource()
	handler := &countingHandler{}
	notifier := &countingNotifier{}
	adapter := newTestAdapter(t, source, handler, notifier, 200*time.Millisecond)

	if err := adapter.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	source.events <- struct{}{}
	time.Sleep(10 * time.Millisecond)

	if err := adapter.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !source.closed.Load() {
		t.Fatal("close must release the subscription")
	}

	time.Sleep(250 * time.Millisecond)
	if got := handler.refetches.Load(); got != 0 {
		t.Fatalf("pending window must not fire after close, got %d refetches", got)
	}
}

func TestCloseIsIdempotentAndSurfacesSourceError(t *testing.T) {
	source := newFakeSource()
	source.closeErr = errors.New("already closed upstream")
	handler := &countingHandler{}
	adapter := newTestAdapter(t, source, handler, nil, 20*time.Millisecond)

	if err := adapter.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := adapter.Close(); err == nil {
		t.Fatal("expected close to surface the source error")
	}
	if err := adapter.Close(); err != nil {
		t.Fatalf("second close should be a no-op, got %v", err)
	}
}

func TestStartSurfacesSubscriptionFailureWithoutRetry(t *testing.T) {
	source := newFakeSource()
	source.subErr = errors.New("connection drop")
	adapter := newTestAdapter(t, source, &countingHandler{}, nil, 20*time.Millisecond)

	if err := adapter.Start(context.Background()); err == nil {
		t.Fatal("expected subscription error")
	}
	if source.subCalls != 1 {
		t.Fatalf("subscription must not be retried, got %d attempts", source.subCalls)
	}
}

func TestRefetchErrorStillNotifiesOncePerWindow(t *testing.T) {
	source := newFakeSource()
	handler := &countingHandler{err: errors.New("store down")}
	notifier := &countingNotifier{}
	adapter := newTestAdapter(t, source, handler, notifier, 20*time.Millisecond)

	if err := adapter.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer adapter.Close()

	source.events <- struct{}{}
	time.Sleep(60 * time.Millisecond)

	if got := notifier.count(); got != 1 {
		t.Fatalf("expected 1 notification despite refetch error, got %d", got)
	}
}
