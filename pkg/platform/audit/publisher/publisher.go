// Package publisher emits audit events to an audit.Store.
//
// Emission is fire-and-report: a failed write is logged, counted and returned
// to the caller, who decides whether it matters. Calculation flows ignore the
// returned error so an unhealthy audit sink never fails a licence operation.
// A circuit breaker stops hammering the store while it is failing.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	id "fellinglicence/pkg/domain"
	audit "fellinglicence/pkg/platform/audit"
	"fellinglicence/pkg/platform/circuit"
)

var (
	ErrBufferFull  = errors.New("audit buffer full")
	ErrCircuitOpen = errors.New("audit circuit open")
	ErrClosed      = errors.New("audit publisher closed")
)

// Publisher writes audit events synchronously, or through a bounded buffer
// drained by a background goroutine when WithAsyncBuffer is set.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
	breaker *circuit.Breaker

	bufferSize int
	queue      chan queued
	done       chan struct{}

	mu     sync.RWMutex
	closed bool
}

type queued struct {
	ctx   context.Context
	event audit.Event
}

type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous emission with a buffer of size n.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		p.bufferSize = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(p *Publisher) {
		p.breaker = b
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.breaker == nil {
		p.breaker = circuit.New("audit")
	}
	if p.bufferSize > 0 {
		p.queue = make(chan queued, p.bufferSize)
		p.done = make(chan struct{})
		go p.drain()
	}
	return p
}

// Emit records an event. In async mode it only enqueues.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if p.queue == nil {
		return p.write(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	// Detach from request cancellation; the request is usually gone by the time
	// the drain goroutine writes.
	entry := queued{ctx: context.WithoutCancel(ctx), event: event}
	select {
	case p.queue <- entry:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.metrics.incDropped()
		p.logWarn(ctx, "audit buffer full, dropping event", event)
		return ErrBufferFull
	}
}

// List returns the events recorded for an application.
func (p *Publisher) List(ctx context.Context, applicationID id.ApplicationID) ([]audit.Event, error) {
	return p.store.ListByApplication(ctx, applicationID)
}

// Close stops accepting events and, in async mode, waits for the buffer to drain.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	if p.queue != nil {
		close(p.queue)
	}
	p.mu.Unlock()

	if p.done != nil {
		<-p.done
	}
	return nil
}

func (p *Publisher) drain() {
	defer close(p.done)
	for entry := range p.queue {
		_ = p.write(entry.ctx, entry.event)
	}
}

func (p *Publisher) write(ctx context.Context, event audit.Event) error {
	if !p.breaker.Allow() {
		p.metrics.incCircuitDropped()
		return ErrCircuitOpen
	}

	start := time.Now()
	if err := p.store.Append(ctx, event); err != nil {
		_, change := p.breaker.RecordFailure()
		p.metrics.incPersistFailures()
		if change.Opened {
			p.metrics.setCircuitOpen(true)
		}
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "audit persistence failed",
				"action", event.Action,
				"application_id", event.ApplicationID,
				"request_id", event.RequestID,
				"error", err,
			)
		}
		return err
	}

	if _, change := p.breaker.RecordSuccess(); change.Closed {
		p.metrics.setCircuitOpen(false)
	}
	p.metrics.observeEmitted(time.Since(start))
	return nil
}

func (p *Publisher) logWarn(ctx context.Context, msg string, event audit.Event) {
	if p.logger == nil {
		return
	}
	p.logger.WarnContext(ctx, msg,
		"action", event.Action,
		"application_id", event.ApplicationID,
	)
}
