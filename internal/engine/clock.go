package engine

import (
	"time"

	"github.com/tartampluch/go-jyoti/internal/datecalc"
)

// Clock abstracts time.Now() so "today" can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// today is the local calendar date of c. A child born at 00:30 in Patna
// is born on that Indian date, whatever the UTC date was.
func today(c Clock) datecalc.Date {
	if c == nil {
		c = RealClock{}
	}
	return datecalc.FromTime(c.Now())
}
