// Package ladder evaluates ordered threshold tables where the first matching
// rung wins.
package ladder

import "math"

// Rung pairs a predicate with the value produced when it matches.
type Rung[T any] struct {
	Match func(v float64) bool
	Value T
}

// Ladder is an ordered list of rungs with a fallback value.
type Ladder[T any] struct {
	Rungs    []Rung[T]
	Fallback T
}

// Eval returns the value of the first rung whose predicate holds for v, or
// the fallback. Values that are NaN, infinite or negative never match a rung.
func (l Ladder[T]) Eval(v float64) T {
	if !Usable(v) {
		return l.Fallback
	}
	for _, r := range l.Rungs {
		if r.Match(v) {
			return r.Value
		}
	}
	return l.Fallback
}

// Usable reports whether v is a finite, non-negative measurement.
func Usable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// AtLeast matches v >= lo.
func AtLeast(lo float64) func(float64) bool {
	return func(v float64) bool { return v >= lo }
}

// Below matches v < hi.
func Below(hi float64) func(float64) bool {
	return func(v float64) bool { return v < hi }
}

// Above matches v > lo.
func Above(lo float64) func(float64) bool {
	return func(v float64) bool { return v > lo }
}

// Closed matches lo <= v <= hi.
func Closed(lo, hi float64) func(float64) bool {
	return func(v float64) bool { return v >= lo && v <= hi }
}

// HalfOpen matches lo <= v < hi.
func HalfOpen(lo, hi float64) func(float64) bool {
	return func(v float64) bool { return v >= lo && v < hi }
}

// OpenClosed matches lo < v <= hi.
func OpenClosed(lo, hi float64) func(float64) bool {
	return func(v float64) bool { return v > lo && v <= hi }
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
