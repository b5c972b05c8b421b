package clock

import "time"

// Clock is the time source injected into anything that reasons about
// timestamps, so tests can pin and advance it
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// New returns a Clock backed by the system time
func New() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}
