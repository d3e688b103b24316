package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vigneshnair/bazaarly-backend/pkg/config"
	"github.com/vigneshnair/bazaarly-backend/pkg/logger"
	"github.com/vigneshnair/bazaarly-backend/pkg/metrics"
)

type stubSender struct {
	mu       sync.Mutex
	calls    int
	failures int
	done     chan struct{}
}

func (s *stubSender) Send(_ context.Context, to, body string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failures {
		return "", errors.New("provider unavailable")
	}
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	return "SM1", nil
}

func (s *stubSender) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func testDispatcher(t *testing.T, sender *stubSender) *Dispatcher {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test"})
	d, err := NewDispatcher(DispatcherParams{
		Sender: sender,
		Config: config.WhatsAppConfig{
			MaxAttempts:  3,
			RetryDelay:   time.Millisecond,
			DrainTimeout: 2 * time.Second,
		},
		Logger:  logg,
		Metrics: metrics.NewNotificationMetrics(nil),
		Workers: 1,
	})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestDispatcherDelivers(t *testing.T) {
	sender := &stubSender{done: make(chan struct{})}
	done := sender.done
	d := testDispatcher(t, sender)

	if !d.Enqueue(context.Background(), Message{Kind: KindOrderPlaced, To: "+1555", Body: "hi"}) {
		t.Fatalf("expected message accepted")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("message was not delivered")
	}
}

func TestDispatcherRetriesThenSucceeds(t *testing.T) {
	sender := &stubSender{failures: 2, done: make(chan struct{})}
	done := sender.done
	d := testDispatcher(t, sender)

	d.Enqueue(context.Background(), Message{Kind: KindOrderPlaced, To: "+1555", Body: "hi"})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("message was not delivered after retries")
	}
	if got := sender.callCount(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestDispatcherGivesUpAfterMaxAttempts(t *testing.T) {
	sender := &stubSender{failures: 100}
	d := testDispatcher(t, sender)

	d.Enqueue(context.Background(), Message{Kind: KindOrderPlaced, To: "+1555", Body: "hi"})
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := sender.callCount(); got != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", got)
	}
}

func TestDispatcherDropsBlankRecipient(t *testing.T) {
	sender := &stubSender{}
	d := testDispatcher(t, sender)

	if d.Enqueue(context.Background(), Message{Kind: KindOrderPlaced, Body: "hi"}) {
		t.Fatalf("blank recipient must not be accepted")
	}
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if sender.callCount() != 0 {
		t.Fatalf("no send should happen for blank recipient")
	}
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	sender := &stubSender{}
	d := testDispatcher(t, sender)
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if d.Enqueue(context.Background(), Message{Kind: KindOrderPlaced, To: "+1555", Body: "hi"}) {
		t.Fatalf("closed dispatcher must reject messages")
	}
}

func TestNoopNotifier(t *testing.T) {
	var n Notifier = Noop{}
	if n.Enqueue(context.Background(), Message{Kind: KindOrderPlaced, To: "+1555"}) {
		t.Fatalf("noop must report not delivered")
	}
}
