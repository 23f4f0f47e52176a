// Package circuit guards calls to a flaky dependency with a consecutive-failure
// circuit breaker.
package circuit

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by Allow while the circuit rejects calls.
var ErrOpen = errors.New("circuit open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// Transition is the state before and after a reported outcome.
type Transition struct {
	From State
	To   State
}

func (t Transition) Changed() bool { return t.From != t.To }

// Done reports the outcome of a call admitted by Allow. Only the first call
// counts.
type Done func(success bool) Transition

// Breaker opens after failureThreshold consecutive failures and rejects calls
// until cooldown has elapsed. It then admits at most probeLimit concurrent
// probes: a failed probe reopens it, successThreshold successful probes close it.
//
// Every state change starts a new generation. Outcomes of calls admitted in an
// earlier generation are ignored, so a slow call that started before the
// circuit opened cannot close it again.
type Breaker struct {
	name             string
	failureThreshold int
	successThreshold int
	probeLimit       int
	cooldown         time.Duration
	now              func() time.Time

	mu         sync.Mutex
	state      State
	generation uint64
	failures   int
	successes  int
	probes     int
	openedAt   time.Time
}

type Option func(*Breaker)

// WithFailureThreshold defaults to 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithSuccessThreshold defaults to 2.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

// WithProbeLimit caps concurrent half-open calls. Defaults to 1.
func WithProbeLimit(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.probeLimit = n
		}
	}
}

// WithCooldown defaults to 10s.
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

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
		failureThreshold: 5,
		successThreshold: 2,
		probeLimit:       1,
		cooldown:         10 * time.Second,
		now:              time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *Breaker) Name() string { return b.name }

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tick()
	return b.state
}

// Allow admits a call or returns ErrOpen. The caller must invoke the returned
// Done exactly once with the call's outcome.
func (b *Breaker) Allow() (Done, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tick()

	switch b.state {
	case StateOpen:
		return nil, ErrOpen
	case StateHalfOpen:
		if b.probes >= b.probeLimit {
			return nil, ErrOpen
		}
		b.probes++
	}

	gen := b.generation
	var once sync.Once
	return func(success bool) Transition {
		t := Transition{From: StateClosed, To: StateClosed}
		once.Do(func() { t = b.report(gen, success) })
		return t
	}, nil
}

func (b *Breaker) report(gen uint64, success bool) Transition {
	b.mu.Lock()
	defer b.mu.Unlock()
	from := b.state
	if gen != b.generation {
		return Transition{From: from, To: from}
	}

	switch b.state {
	case StateClosed:
		if success {
			b.failures = 0
		} else if b.failures++; b.failures >= b.failureThreshold {
			b.moveTo(StateOpen)
		}
	case StateHalfOpen:
		b.probes--
		if !success {
			b.moveTo(StateOpen)
		} else if b.successes++; b.successes >= b.successThreshold {
			b.moveTo(StateClosed)
		}
	}
	return Transition{From: from, To: b.state}
}

// Reset forces the circuit closed.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.moveTo(StateClosed)
}

// tick and moveTo require b.mu.
func (b *Breaker) tick() {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cooldown {
		b.moveTo(StateHalfOpen)
	}
}

func (b *Breaker) moveTo(s State) {
	b.state = s
	b.generation++
	b.failures, b.successes, b.probes = 0, 0, 0
	if s == StateOpen {
		b.openedAt = b.now()
	}
}
