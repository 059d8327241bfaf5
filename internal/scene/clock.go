package scene

import "time"

// Clock supplies the elapsed time per tick, in seconds.
type Clock interface {
	Delta() float64
}

// WallClock measures real time between calls. The first call returns 0.
type WallClock struct {
	now  func() time.Time
	last time.Time
}

// NewWallClock returns a clock reading the monotonic system time.
func NewWallClock() *WallClock {
	return &WallClock{now: time.Now}
}

func (c *WallClock) Delta() float64 {
	t := c.now()
	if c.last.IsZero() {
		c.last = t
		return 0
	}
	d := t.Sub(c.last).Seconds()
	c.last = t
	return d
}

// FixedClock advances by the same step every call.
type FixedClock struct {
	Step float64
}

func (c FixedClock) Delta() float64 { return c.Step }

// ClockFunc adapts a function to Clock.
type ClockFunc func() float64

func (fn ClockFunc) Delta() float64 { return fn() }
