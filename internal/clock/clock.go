package clock

import "time"

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// System is the wall clock
type System struct{}

// Now returns time.Now()
func (System) Now() time.Time { return time.Now() }

// Fixed always returns the same instant. Tests move it with Set/Advance.
type Fixed struct {
	T time.Time
}

// Now returns the fixed instant
func (f *Fixed) Now() time.Time { return f.T }

// Set moves the clock to t
func (f *Fixed) Set(t time.Time) { f.T = t }

// Advance moves the clock forward by d
func (f *Fixed) Advance(d time.Duration) { f.T = f.T.Add(d) }
