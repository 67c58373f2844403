package types

import (
	"math/rand/v2"
	"time"
)

// Logger defines the structured logging interface used by components that
// do not take a *slog.Logger directly.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	With(args ...any) Logger
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system time in UTC.
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return time.Time(c) }

// RandomSource yields floats in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// GlobalRand draws from the process-wide generator, which is safe for
// concurrent use.
type GlobalRand struct{}

// Float64 returns a pseudo-random number in [0, 1).
func (GlobalRand) Float64() float64 { return rand.Float64() }
