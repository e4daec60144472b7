// Package clock provides the now-provider capability threaded through the
// booking service and calendar aggregator so that "today" detection and
// completion derivation are testable against a fixed time.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// System reads the real wall clock in UTC.
type System struct{}

func (System) Now() time.Time {
	return time.Now().UTC()
}
