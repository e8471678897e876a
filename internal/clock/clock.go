package clock

import "time"

// Clock supplies the current time to code that compares auction windows
// against wall-clock time. Injecting it keeps window checks and the
// settlement sweep deterministic under test.
type Clock interface {
	Now() time.Time
}

// Real reads the system clock.
type Real struct{}

// Now returns the current UTC time.
func (Real) Now() time.Time { return time.Now().UTC() }

// Fixed always returns the same instant. Tests advance it by replacing
// the value.
type Fixed struct {
	T time.Time
}

// Now returns the fixed instant.
func (f Fixed) Now() time.Time { return f.T }
