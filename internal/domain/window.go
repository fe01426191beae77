package domain

import "time"

// DeliveryWindow bounds the tour optimization problem.
type DeliveryWindow struct {
	Start time.Time
	End   time.Time
}

// DeliveryWindowAt returns the seasonal window for the upcoming delivery night:
// Dec 23 15:00:00.000 UTC through Dec 24 14:59:59.999 UTC. From Dec 25 on,
// the window of the following year is used.
func DeliveryWindowAt(now time.Time) DeliveryWindow {
	now = now.UTC()
	year := now.Year()

	christmas := time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC)
	if !now.Before(christmas) {
		year++
	}

	return DeliveryWindow{
		Start: time.Date(year, time.December, 23, 15, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.December, 24, 14, 59, 59, int(999*time.Millisecond), time.UTC),
	}
}
