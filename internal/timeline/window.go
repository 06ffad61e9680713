package timeline

import (
	"fmt"
	"time"
)

// Window is the open time interval bounding which events count toward a
// project. Both ends are exclusive: an event stamped exactly at Start or
// End falls outside the window.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a window, rejecting intervals that run backwards.
// A zero-width window (start == end) is valid and contains nothing.
func NewWindow(start, end time.Time) (Window, error) {
	if start.After(end) {
		return Window{}, fmt.Errorf("window start %s is after end %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Window{Start: start, End: end}, nil
}

// Contains reports whether t falls strictly inside the window.
func (w Window) Contains(t time.Time) bool {
	return w.Start.Before(t) && w.End.After(t)
}

// Midpoint returns the middle of the window at millisecond resolution,
// rounding down. Used by the range-splitting retrieval, not a general API.
func (w Window) Midpoint() time.Time {
	return time.UnixMilli(floorDiv(w.Start.UnixMilli()+w.End.UnixMilli(), 2)).UTC()
}

// IsPoint reports whether the window has zero width at millisecond
// resolution and therefore cannot be split any further.
func (w Window) IsPoint() bool {
	return w.Start.UnixMilli() == w.End.UnixMilli()
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
