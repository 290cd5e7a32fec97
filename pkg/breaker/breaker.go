package breaker

import (
	"errors"
	"sync"
	"time"
)

type state uint8

const (
	closed state = iota + 1
	open
	halfOpen
)

var ErrOpen = errors.New("circuit breaker is open")

type Breaker interface {
	Call(fn func() error) error
	Reset()
}

type breaker struct {
	mu sync.Mutex

	state state
	// ring of outcomes for the last windowSize calls, true = failed
	window     []bool
	pos        int
	windowSize int
	// failure ratio over the window that opens the breaker
	threshold float64
	// how long to stay open before probing again
	cooldown time.Duration
	// consecutive successes in half-open needed to close
	recovery     int
	successCount int
	openedAt     time.Time
}

func New(windowSize int, cooldown time.Duration, threshold float64, recovery int) Breaker {
	return &breaker{
		state:      closed,
		window:     make([]bool, windowSize),
		windowSize: windowSize,
		threshold:  threshold,
		cooldown:   cooldown,
		recovery:   recovery,
	}
}

func (b *breaker) Call(fn func() error) error {
	b.mu.Lock()
	if b.state == open {
		if time.Since(b.openedAt) <= b.cooldown {
			b.mu.Unlock()
			return ErrOpen
		}
		b.state = halfOpen
		b.successCount = 0
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.window[b.pos] = err != nil
	b.pos = (b.pos + 1) % b.windowSize

	if b.state == halfOpen {
		if err != nil {
			b.state = open
			b.successCount = 0
			b.openedAt = time.Now()
		} else {
			b.successCount++
			if b.successCount > b.recovery {
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
	if float64(fails)/float64(b.windowSize) >= b.threshold {
		b.state = open
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
	b.pos = 0
	b.successCount = 0
	b.state = closed
}
