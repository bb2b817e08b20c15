package infra

import (
	"errors"
	"sync"
	"time"
)

// BreakerState is the state of a Breaker.
type BreakerState int

const (
	BreakerCerrado BreakerState = iota
	BreakerAbierto
	BreakerSemiAbierto
)

func (s BreakerState) String() string {
	switch s {
	case BreakerCerrado:
		return "closed"
	case BreakerAbierto:
		return "open"
	case BreakerSemiAbierto:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrBreakerAbierto is returned by Do while the breaker is open.
var ErrBreakerAbierto = errors.New("circuit breaker is open")

// Breaker stops calling an unhealthy dependency (the SMTP relay) after
// maxFallos consecutive failures. After espera it lets one call through; a
// success closes it again, a failure reopens it.
type Breaker struct {
	mu        sync.Mutex
	state     BreakerState
	fallos    int
	abiertoEn time.Time
	maxFallos int
	espera    time.Duration
	now       func() time.Time
}

func NewBreaker(maxFallos int, espera time.Duration) *Breaker {
	if maxFallos <= 0 {
		maxFallos = 5
	}
	if espera <= 0 {
		espera = time.Minute
	}
	return &Breaker{maxFallos: maxFallos, espera: espera, now: time.Now}
}

// State reports the current state, moving open → half-open once espera has
// elapsed.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

func (b *Breaker) stateLocked() BreakerState {
	if b.state == BreakerAbierto && b.now().Sub(b.abiertoEn) >= b.espera {
		b.state = BreakerSemiAbierto
	}
	return b.state
}

// Do runs fn unless the breaker is open.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	if b.stateLocked() == BreakerAbierto {
		b.mu.Unlock()
		return ErrBreakerAbierto
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		b.state = BreakerCerrado
		b.fallos = 0
		return nil
	}
	b.fallos++
	if b.state == BreakerSemiAbierto || b.fallos >= b.maxFallos {
		b.state = BreakerAbierto
		b.abiertoEn = b.now()
		b.fallos = 0
	}
	return err
}
