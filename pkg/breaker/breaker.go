package breaker

import (
	"errors"
	"sync"
	"time"
)

type State uint8

const (
	Closed State = iota + 1
	Open
	HalfOpen
)

var ErrOpen = errors.New("circuit breaker is open")

type Breaker interface {
	Call(fn func() error) error
	Reset()
}

type breaker struct {
	mu sync.Mutex

	state State
	// sliding window of the last windowSize call outcomes, true = failed
	window []bool
	pos    int
	// share of failures in the window that trips the breaker
	failureRatio float64
	// how long the breaker stays open before probing
	cooldown time.Duration
	openedAt time.Time
	// consecutive successes needed in half-open to close again
	recoveryCalls int
	successCount  int
}

func New(windowSize int, cooldown time.Duration, failureRatio float64, recoveryCalls int) Breaker {
	return &breaker{
		state:         Closed,
		window:        make([]bool, windowSize),
		failureRatio:  failureRatio,
		cooldown:      cooldown,
		recoveryCalls: recoveryCalls,
	}
}

func (b *breaker) Call(fn func() error) error {
	b.mu.Lock()
	if b.state == Open {
		if time.Since(b.openedAt) <= b.cooldown {
			b.mu.Unlock()
			return ErrOpen
		}
		b.state = HalfOpen
		b.successCount = 0
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.window[b.pos] = err != nil
	b.pos = (b.pos + 1) % len(b.window)

	if b.state == HalfOpen {
		if err != nil {
			b.state = Open
			b.successCount = 0
			b.openedAt = time.Now()
		} else {
			b.successCount++
			if b.successCount > b.recoveryCalls {
				b.reset()
			}
		}
		return err
	}

	fails := 0
	for _, failed := range b.window {
		if failed {
			fails++
		}
	}
	if float64(fails)/float64(len(b.window)) >= b.failureRatio {
		b.state = Open
		b.successCount = 0
		b.openedAt = time.Now()
	}

	return err
}

func (b *breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reset()
}

func (b *breaker) reset() {
	for i := range b.window {
		b.window[i] = false
	}
	b.successCount = 0
	b.pos = 0
	b.state = Closed
}
