// Package circuit provides a small consecutive-failure circuit breaker used to
// stop hammering an unhealthy dependency (the audit sink) while it recovers.
package circuit

import (
	"sync"
	"time"
)

type State string

const (
	StateClosed State = "closed"
	StateOpen   State = "open"
)

const (
	defaultFailureThreshold = 5
	defaultSuccessThreshold = 2
	defaultCooldown         = 30 * time.Second
)

// StateChange reports a transition caused by a Record call.
type StateChange struct {
	Opened bool
	Closed bool
}

// Breaker opens after failureThreshold consecutive failures and closes again
// after successThreshold consecutive successes. While open, Allow admits a
// probe once the cooldown has elapsed.
type Breaker struct {
	mu sync.Mutex

	name             string
	failureThreshold int
	successThreshold int
	cooldown         time.Duration
	now              func() time.Time

	state     State
	failures  int
	successes int
	openedAt  time.Time
}

type Option func(*Breaker)

func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

// WithClock overrides time.Now for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: defaultFailureThreshold,
		successThreshold: defaultSuccessThreshold,
		cooldown:         defaultCooldown,
		now:              time.Now,
		state:            StateClosed,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) Name() string { return b.name }

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) IsOpen() bool {
	return b.State() == StateOpen
}

// Allow reports whether the primary may be called: always when closed, and
// once the cooldown has elapsed when open.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateClosed {
		return true
	}
	return !b.now().Before(b.openedAt.Add(b.cooldown))
}

// RecordFailure registers a failed call. useFallback is true while the circuit is open.
func (b *Breaker) RecordFailure() (useFallback bool, change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		b.successes = 0
		b.openedAt = b.now()
		return true, StateChange{}
	}

	b.failures++
	if b.failures >= b.failureThreshold {
		b.state = StateOpen
		b.openedAt = b.now()
		b.successes = 0
		return true, StateChange{Opened: true}
	}
	return false, StateChange{}
}

// RecordSuccess registers a successful call. usePrimary is true once the circuit is closed.
func (b *Breaker) RecordSuccess() (usePrimary bool, change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateClosed {
		b.failures = 0
		return true, StateChange{}
	}

	b.successes++
	if b.successes >= b.successThreshold {
		b.state = StateClosed
		b.failures = 0
		b.successes = 0
		return true, StateChange{Closed: true}
	}
	return false, StateChange{}
}

// Reset forces the circuit closed and clears counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
}
