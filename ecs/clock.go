package ecs

import "time"

// DefaultMaxTicksPerFrame bounds catch-up work after a long frame.
const DefaultMaxTicksPerFrame = 8

// FixedClock turns variable frame deltas into a whole number of fixed ticks.
// Leftover time carries into the next frame. Time is accumulated scaled by
// the tick rate so one tick costs exactly one second of scaled time, with no
// rounding of the tick length.
type FixedClock struct {
	rate     int64
	maxTicks int
	acc      time.Duration // frame time × rate
	ticks    uint64
}

// NewFixedClock creates a clock ticking rate times per second.
func NewFixedClock(rate int, maxTicks int) *FixedClock {
	if rate <= 0 {
		rate = 60
	}
	if maxTicks <= 0 {
		maxTicks = DefaultMaxTicksPerFrame
	}
	return &FixedClock{
		rate:     int64(rate),
		maxTicks: maxTicks,
	}
}

// Rate is the number of ticks per second.
func (c *FixedClock) Rate() int {
	return int(c.rate)
}

// Step is the fixed tick length, truncated to a nanosecond.
func (c *FixedClock) Step() time.Duration {
	return time.Second / time.Duration(c.rate)
}

// StepSeconds is the exact fixed tick length in seconds.
func (c *FixedClock) StepSeconds() float64 {
	return 1 / float64(c.rate)
}

// Ticks is the number of ticks run so far.
func (c *FixedClock) Ticks() uint64 {
	return c.ticks
}

// Advance adds a frame delta and returns how many ticks are due. Time beyond
// maxTicks is dropped.
func (c *FixedClock) Advance(frame time.Duration) int {
	if c == nil || frame <= 0 {
		return 0
	}
	// Keeps frame × rate from overflowing.
	if frame > time.Minute {
		frame = time.Minute
	}
	c.acc += frame * time.Duration(c.rate)
	n := int(c.acc / time.Second)
	if n > c.maxTicks {
		n = c.maxTicks
		c.acc = 0
	} else {
		c.acc -= time.Duration(n) * time.Second
	}
	c.ticks += uint64(n)
	return n
}

// Run advances by frame and calls tick once per due tick.
func (c *FixedClock) Run(frame time.Duration, tick func(dt float64)) int {
	n := c.Advance(frame)
	dt := c.StepSeconds()
	for i := 0; i < n; i++ {
		tick(dt)
	}
	return n
}
