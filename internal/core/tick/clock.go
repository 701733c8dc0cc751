// Package tick holds the time primitives the simulation runs on: a
// millisecond clock, an absolute-interval scheduler pumped by the game
// loop, and the random source injected into every chance roll.
package tick

import "time"

// Clock reports monotonically increasing wall time in milliseconds.
type Clock interface {
	NowMs() int64
}

// SystemClock reads the OS clock.
type SystemClock struct{}

func (SystemClock) NowMs() int64 { return time.Now().UnixMilli() }

// ManualClock is advanced by hand.
type ManualClock struct {
	ms int64
}

func NewManualClock(startMs int64) *ManualClock {
	return &ManualClock{ms: startMs}
}

func (c *ManualClock) NowMs() int64 { return c.ms }

func (c *ManualClock) Advance(ms int64) { c.ms += ms }

func (c *ManualClock) Set(ms int64) { c.ms = ms }
