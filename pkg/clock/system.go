package clock

import "time"

// TimeSource abstracts the wall clock for components that stamp expiries.
type TimeSource interface {
	Now() time.Time
}

// System reads the real wall clock.
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}
