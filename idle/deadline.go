// Package idle provides cooperative-yield primitives for driving the fiber
// work loop: fixed-budget deadlines and a single-goroutine loop that hands
// out idle slices the way a browser's requestIdleCallback does.
package idle

import (
	"math"
	"time"
)

// Deadline is a fixed time budget that starts when it is created.
type Deadline struct {
	start    time.Time
	budget   time.Duration
	timedOut bool
	now      func() time.Time
}

func Budget(d time.Duration) *Deadline {
	return budgetAt(time.Now, d)
}

func budgetAt(now func() time.Time, d time.Duration) *Deadline {
	return &Deadline{start: now(), budget: d, now: now}
}

// Expired returns a deadline whose slice ran out before the callback ran.
func Expired() *Deadline {
	return &Deadline{timedOut: true, now: time.Now}
}

// Unlimited never runs out.
func Unlimited() *Deadline {
	return &Deadline{start: time.Now(), budget: math.MaxInt64, now: time.Now}
}

func (d *Deadline) TimeRemaining() time.Duration {
	if d.timedOut {
		return 0
	}
	if d.budget == math.MaxInt64 {
		return d.budget
	}
	rem := d.budget - d.now().Sub(d.start)
	if rem < 0 {
		return 0
	}
	return rem
}

func (d *Deadline) DidTimeout() bool {
	return d.timedOut
}

// Steps is a deterministic deadline that reports time left for exactly n
// checks. The work loop checks once per unit of work, so Steps(n) allows n
// units per slice.
type Steps struct {
	left int
}

func NewSteps(n int) *Steps {
	return &Steps{left: n}
}

func (s *Steps) TimeRemaining() time.Duration {
	if s.left <= 0 {
		return 0
	}
	s.left--
	return time.Millisecond
}

func (s *Steps) DidTimeout() bool {
	return false
}
