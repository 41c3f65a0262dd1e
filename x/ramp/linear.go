// Package ramp steps an integer level towards a target over time.
package ramp

import (
	"time"

	"audiocodec-go/x/mathx"
)

// Level is an integer control scale such as a 6-bit volume field.
type Level interface {
	~uint8 | ~uint16
}

// Tick waits for d and reports whether to continue (false => cancelled).
type Tick func(d time.Duration) bool

// Linear moves from cur to to (clamped to top) in up to steps increments,
// calling set for each new level. The caller drives timing through tick.
// steps==0 or duration==0 snaps to the target. A set error stops the ramp
// and is returned; cancellation returns nil with the level left mid-way.
func Linear[L Level](cur, to, top L, duration time.Duration, steps int, tick Tick, set func(L) error) error {
	to = mathx.Min(to, top)
	if steps <= 0 || duration <= 0 || cur == to {
		return set(to)
	}
	d := int32(to) - int32(cur)
	if span := int(mathx.Abs(d)); steps > span {
		steps = span
	}
	stepDur := duration / time.Duration(steps)
	if stepDur < time.Millisecond {
		stepDur = time.Millisecond
	}

	st := int32(steps)
	acc := int32(0)
	lvl := int32(cur)
	for i := 1; i < steps; i++ {
		if !tick(stepDur) {
			return nil
		}
		acc += d
		inc := acc / st
		if inc == 0 {
			continue
		}
		acc -= inc * st
		lvl = mathx.Clamp(lvl+inc, 0, int32(top))
		if err := set(L(lvl)); err != nil {
			return err
		}
	}
	if !tick(stepDur) {
		return nil
	}
	return set(to)
}
