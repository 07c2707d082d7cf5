package schedule

import (
	"fmt"
	"time"
)

// BusyInterval is a half-open time range [Start, End) already committed on
// the interviewer's calendar.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

func (b BusyInterval) String() string {
	return fmt.Sprintf("[%s, %s)", b.Start.Format(time.RFC3339), b.End.Format(time.RFC3339))
}

// overlaps reports whether two half-open intervals intersect. Touching
// boundaries do not overlap.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
