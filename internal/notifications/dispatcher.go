package notifications

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/vigneshnair/bazaarly-backend/pkg/config"
	"github.com/vigneshnair/bazaarly-backend/pkg/logger"
	"github.com/vigneshnair/bazaarly-backend/pkg/metrics"
	"github.com/vigneshnair/bazaarly-backend/pkg/whatsapp"
)

const defaultQueueSize = 256

// Dispatcher delivers messages on a background goroutine pool. Sends are
// fire-and-forget: a failed delivery is logged and counted but never
// surfaces to the caller beyond the informational Enqueue flag.
type Dispatcher struct {
	sender       whatsapp.Sender
	queue        chan Message
	wg           sync.WaitGroup
	logg         *logger.Logger
	metrics      *metrics.NotificationMetrics
	maxAttempts  uint64
	retryDelay   time.Duration
	drainTimeout time.Duration

	mu     sync.Mutex
	closed bool
}

// DispatcherParams bundles the dispatcher dependencies.
type DispatcherParams struct {
	Sender  whatsapp.Sender
	Config  config.WhatsAppConfig
	Logger  *logger.Logger
	Metrics *metrics.NotificationMetrics
	Workers int
}

// NewDispatcher builds the dispatcher and starts its worker pool.
func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Sender == nil {
		return nil, fmt.Errorf("message sender required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}

	workers := params.Workers
	if workers <= 0 {
		workers = 2
	}
	maxAttempts := params.Config.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	retryDelay := params.Config.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 5 * time.Second
	}
	drainTimeout := params.Config.DrainTimeout
	if drainTimeout <= 0 {
		drainTimeout = 15 * time.Second
	}

	d := &Dispatcher{
		sender:       params.Sender,
		queue:        make(chan Message, defaultQueueSize),
		logg:         params.Logger,
		metrics:      params.Metrics,
		maxAttempts:  uint64(maxAttempts),
		retryDelay:   retryDelay,
		drainTimeout: drainTimeout,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d, nil
}

// Enqueue schedules the message for delivery. Returns true when accepted.
// Messages with a blank recipient are silently dropped; a full queue
// drops the message rather than blocking the request path.
func (d *Dispatcher) Enqueue(ctx context.Context, msg Message) bool {
	if strings.TrimSpace(msg.To) == "" {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	select {
	case d.queue <- msg:
		return true
	default:
		d.logg.Warn(ctx, fmt.Sprintf("notification queue full, dropping %s", msg.Kind))
		d.metrics.IncFailed(string(msg.Kind))
		return false
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx := d.logg.WithFields(context.Background(), map[string]any{
		"kind": string(msg.Kind),
	})

	start := time.Now()
	attempt := 0
	backoff := retry.WithMaxRetries(d.maxAttempts-1, retry.NewConstant(d.retryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			d.metrics.IncRetry(string(msg.Kind))
		}
		if _, err := d.sender.Send(ctx, msg.To, msg.Body); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	d.metrics.ObserveDuration(string(msg.Kind), time.Since(start))

	if err != nil {
		d.metrics.IncFailed(string(msg.Kind))
		d.logg.Warn(ctx, fmt.Sprintf("notification dropped after %d attempts: %v", attempt, err))
		return
	}
	d.metrics.IncSent(string(msg.Kind))
	d.logg.Info(ctx, "notification delivered")
}

// Close stops accepting messages and waits up to the drain timeout for
// in-flight sends. Waiting is advisory; pending messages may be lost.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(d.drainTimeout):
		return fmt.Errorf("notification drain timed out after %s", d.drainTimeout)
	}
}

// Noop is a Notifier that drops everything. Used when the messaging
// provider is not configured.
type Noop struct{}

func (Noop) Enqueue(context.Context, Message) bool { return false }
