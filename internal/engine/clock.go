package engine

import "sync/atomic"

// Clock is the monotonic logical clock used to stamp journal rows.
//
// Every recorded occurrence and violation carries a strictly increasing
// seq from this clock, so the journal replays in exactly the order the
// table saw things, independent of wall-clock jitter.
//
// Thread-safety: safe for concurrent use, though the game itself is
// single-threaded.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at a specific sequence number,
// used when appending to an existing journal.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
