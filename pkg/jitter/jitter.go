// Package jitter считает задержки между повторами с добавлением случайности,
// чтобы воркеры после общего сбоя не стучались в зависимость одновременно.
package jitter

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// DefaultJitter — стандартный коэффициент джиттера (50%)
const DefaultJitter = 0.5

var (
	globalRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	randMutex  sync.Mutex
)

// Duration возвращает d с джиттером в диапазоне [d, d*(1+factor)].
func Duration(d time.Duration, factor float64) time.Duration {
	randMutex.Lock()
	defer randMutex.Unlock()
	return withRand(d, factor, globalRand)
}

func withRand(d time.Duration, factor float64, rng *rand.Rand) time.Duration {
	if d <= 0 || factor <= 0 {
		return d
	}
	return d + time.Duration(rng.Float64()*factor*float64(d))
}

// Backoff — экспоненциальная задержка: Base, 2*Base, 4*Base... не больше Max, плюс джиттер.
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Factor float64

	// rng задаётся в тестах для детерминированного результата.
	rng *rand.Rand
}

// NewBackoff создаёт Backoff с DefaultJitter.
func NewBackoff(base, max time.Duration) Backoff {
	return Backoff{Base: base, Max: max, Factor: DefaultJitter}
}

// WithRand возвращает копию с собственным генератором.
func (b Backoff) WithRand(rng *rand.Rand) Backoff {
	b.rng = rng
	return b
}

// Delay возвращает задержку перед попыткой attempt (нумерация с нуля).
func (b Backoff) Delay(attempt int) time.Duration {
	d := b.Base
	for i := 0; i < attempt && d < b.Max; i++ {
		d *= 2
	}
	if b.Max > 0 && d > b.Max {
		d = b.Max
	}

	if b.rng != nil {
		return withRand(d, b.Factor, b.rng)
	}
	return Duration(d, b.Factor)
}

// Wait спит Delay(attempt) или до отмены контекста; возвращает ctx.Err() при отмене.
func (b Backoff) Wait(ctx context.Context, attempt int) error {
	t := time.NewTimer(b.Delay(attempt))
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
