package vcon

import "time"

// Clock limits the frame rate of a display loop.
type Clock struct {
	last  time.Time
	now   func() time.Time
	sleep func(time.Duration)
}

// NewClock returns a clock backed by the system time.
func NewClock() *Clock {
	return &Clock{now: time.Now, sleep: time.Sleep}
}

// Tick sleeps for whatever is left of the current frame at the given frame
// rate and returns the milliseconds since the previous Tick. The first call
// returns 0. A frame rate of zero or less means "do not wait".
func (c *Clock) Tick(fps int) int {
	now := c.now()
	if c.last.IsZero() {
		c.last = now
		return 0
	}
	if fps > 0 {
		frame := time.Second / time.Duration(fps)
		if spent := now.Sub(c.last); spent < frame {
			c.sleep(frame - spent)
			now = c.now()
		}
	}
	// the remainder below a millisecond is carried into the next tick
	ms := now.Sub(c.last) / time.Millisecond
	c.last = c.last.Add(ms * time.Millisecond)
	return int(ms)
}

// Reset forgets the previous tick.
func (c *Clock) Reset() {
	c.last = time.Time{}
}
