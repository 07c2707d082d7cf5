// Package schedule implements conflict-free interview slot allocation. The
// allocator walks the working-hours grid greedily in ranking order: the
// highest-ranked candidate gets the earliest free slot. This favors
// higher-ranked candidates over overall schedule density; it is interval
// scheduling, not optimal bipartite matching.
package schedule

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Constraints bound one allocation run. Supplied per run; immutable.
type Constraints struct {
	// Location is the fixed IANA timezone all intervals are expressed in.
	Location *time.Location
	// From anchors the horizon; allocation starts on this day.
	From time.Time
	// DayStart and DayEnd delimit the working-hours window as offsets
	// from midnight.
	DayStart time.Duration
	DayEnd   time.Duration
	// SlotDuration is the interview length; Buffer is the gap kept
	// between consecutive slots.
	SlotDuration time.Duration
	Buffer       time.Duration
	// HorizonDays is how many days ahead slots may be proposed.
	HorizonDays int
	// MaxPerDay caps interviews per day; zero means no cap.
	MaxPerDay int
	// SkipWeekends drops Saturdays and Sundays from the horizon.
	SkipWeekends bool
	// Unavailable lists candidate-specific blocked intervals.
	Unavailable map[string][]BusyInterval
}

// InvalidConstraintsError reports constraints under which no slot could ever
// exist. It aborts the whole allocation before any candidate is considered.
type InvalidConstraintsError struct {
	Reason string
}

func (e *InvalidConstraintsError) Error() string {
	return fmt.Sprintf("invalid scheduling constraints: %s", e.Reason)
}

// Allocator proposes interview slots against a snapshot of busy intervals.
type Allocator struct {
	logger *zap.Logger
}

func NewAllocator(logger *zap.Logger) *Allocator {
	return &Allocator{logger: logger}
}

// Allocate assigns one proposal per candidate, in the given (ranking) order.
// Candidates with no conflict-free slot in the horizon get a Rejected
// proposal with ReasonNoAvailability; their failure never blocks the rest.
// The busy set is a read-only snapshot taken by the caller.
func (a *Allocator) Allocate(candidateIDs []string, busy []BusyInterval, c Constraints) ([]*Proposal, error) {
	grid, err := buildGrid(c)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("slot grid built",
		zap.Int("slots", len(grid)),
		zap.Int("busy_intervals", len(busy)),
		zap.Int("candidates", len(candidateIDs)),
	)

	used := make([]bool, len(grid))
	perDay := make(map[string]int)

	proposals := make([]*Proposal, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		idx := a.earliestFree(grid, used, perDay, busy, c, id)
		if idx < 0 {
			a.logger.Info("no availability for candidate", zap.String("candidate_id", id))
			proposals = append(proposals, newRejected(id, ReasonNoAvailability))
			continue
		}

		used[idx] = true
		day := grid[idx].start.Format("2006-01-02")
		perDay[day]++

		proposals = append(proposals, newProposed(id, grid[idx].start, grid[idx].end))
		a.logger.Debug("slot assigned",
			zap.String("candidate_id", id),
			zap.Time("start", grid[idx].start),
			zap.Time("end", grid[idx].end),
		)
	}

	return proposals, nil
}

type slot struct {
	start time.Time
	end   time.Time
}

// buildGrid enumerates candidate slot start times: per usable day in the
// horizon, the working-hours window in increments of slot duration plus
// buffer.
func buildGrid(c Constraints) ([]slot, error) {
	if c.SlotDuration <= 0 {
		return nil, &InvalidConstraintsError{Reason: "slot duration must be positive"}
	}
	if c.Buffer < 0 {
		return nil, &InvalidConstraintsError{Reason: "buffer must not be negative"}
	}
	if c.HorizonDays <= 0 {
		return nil, &InvalidConstraintsError{Reason: "horizon must cover at least one day"}
	}
	if c.DayEnd-c.DayStart < c.SlotDuration {
		return nil, &InvalidConstraintsError{Reason: "working-hours window is shorter than one slot"}
	}

	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}

	anchor := c.From.In(loc)
	midnight := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, loc)

	var grid []slot
	for day := 0; day < c.HorizonDays; day++ {
		dayStart := midnight.AddDate(0, 0, day)
		if c.SkipWeekends {
			if wd := dayStart.Weekday(); wd == time.Saturday || wd == time.Sunday {
				continue
			}
		}
		windowStart := dayStart.Add(c.DayStart)
		windowEnd := dayStart.Add(c.DayEnd)

		for t := windowStart; !t.Add(c.SlotDuration).After(windowEnd); t = t.Add(c.SlotDuration + c.Buffer) {
			grid = append(grid, slot{start: t, end: t.Add(c.SlotDuration)})
		}
	}

	if len(grid) == 0 {
		return nil, &InvalidConstraintsError{Reason: "no usable days in the horizon"}
	}

	return grid, nil
}

// earliestFree scans the grid chronologically for the first slot that is
// unassigned, within the per-day cap and free of conflicts with the busy
// snapshot and the candidate's own unavailability.
func (a *Allocator) earliestFree(grid []slot, used []bool, perDay map[string]int, busy []BusyInterval, c Constraints, candidateID string) int {
	for i, s := range grid {
		if used[i] {
			continue
		}
		if c.MaxPerDay > 0 && perDay[s.start.Format("2006-01-02")] >= c.MaxPerDay {
			continue
		}
		if conflicts(s, busy) {
			continue
		}
		if conflicts(s, c.Unavailable[candidateID]) {
			continue
		}
		return i
	}
	return -1
}

func conflicts(s slot, intervals []BusyInterval) bool {
	for _, b := range intervals {
		if overlaps(s.start, s.end, b.Start, b.End) {
			return true
		}
	}
	return false
}
