package schedule

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func workingDay(t *testing.T) Constraints {
	t.Helper()
	return Constraints{
		Location:     time.UTC,
		From:         time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), // a Monday
		DayStart:     9 * time.Hour,
		DayEnd:       12 * time.Hour,
		SlotDuration: 30 * time.Minute,
		HorizonDays:  1,
	}
}

func TestAllocateEarliestSlotsInRankingOrder(t *testing.T) {
	c := workingDay(t)
	busy := []BusyInterval{{
		Start: time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.March, 2, 10, 30, 0, 0, time.UTC),
	}}

	proposals, err := NewAllocator(zap.NewNop()).Allocate([]string{"a", "b", "c"}, busy, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proposals) != 3 {
		t.Fatalf("expected 3 proposals, got %d", len(proposals))
	}

	wantStarts := []time.Time{
		time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC),
		time.Date(2026, time.March, 2, 10, 30, 0, 0, time.UTC), // 10:00 is busy
	}
	for i, p := range proposals {
		if p.Status() != StatusProposed {
			t.Fatalf("proposal %d: expected proposed, got %s", i, p.Status())
		}
		if !p.Start.Equal(wantStarts[i]) {
			t.Fatalf("proposal %d: expected start %v, got %v", i, wantStarts[i], p.Start)
		}
		if !p.End.Equal(p.Start.Add(30 * time.Minute)) {
			t.Fatalf("proposal %d: unexpected end %v", i, p.End)
		}
	}
}

func TestAllocateProposalsNeverOverlap(t *testing.T) {
	c := workingDay(t)
	c.Buffer = 15 * time.Minute

	ids := []string{"a", "b", "c", "d"}
	proposals, err := NewAllocator(zap.NewNop()).Allocate(ids, nil, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, p := range proposals {
		for j, q := range proposals {
			if i == j || p.Status() != StatusProposed || q.Status() != StatusProposed {
				continue
			}
			if overlaps(p.Start, p.End, q.Start, q.End) {
				t.Fatalf("proposals %d and %d overlap: %v-%v vs %v-%v", i, j, p.Start, p.End, q.Start, q.End)
			}
		}
	}
}

func TestAllocateRejectsLowestRankedWhenSlotsRunOut(t *testing.T) {
	c := workingDay(t)
	c.DayEnd = 10 * time.Hour // only two slots

	proposals, err := NewAllocator(zap.NewNop()).Allocate([]string{"first", "second", "third"}, nil, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if proposals[0].Status() != StatusProposed || proposals[1].Status() != StatusProposed {
		t.Fatalf("expected the two highest-ranked candidates to get slots: %s, %s",
			proposals[0].Status(), proposals[1].Status())
	}
	last := proposals[2]
	if last.Status() != StatusRejected {
		t.Fatalf("expected the lowest-ranked candidate rejected, got %s", last.Status())
	}
	if last.Reason() != ReasonNoAvailability {
		t.Fatalf("expected reason %s, got %s", ReasonNoAvailability, last.Reason())
	}
}

func TestAllocateFullyBusyGridIsNotFatal(t *testing.T) {
	c := workingDay(t)
	busy := []BusyInterval{{
		Start: time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC),
	}}

	proposals, err := NewAllocator(zap.NewNop()).Allocate([]string{"only"}, busy, c)
	if err != nil {
		t.Fatalf("expected no error for a fully busy grid, got %v", err)
	}
	if len(proposals) != 1 || proposals[0].Status() != StatusRejected {
		t.Fatalf("expected one rejected proposal, got %+v", proposals)
	}
}

func TestAllocateMaxPerDay(t *testing.T) {
	c := workingDay(t)
	c.HorizonDays = 2
	c.MaxPerDay = 1

	proposals, err := NewAllocator(zap.NewNop()).Allocate([]string{"a", "b"}, nil, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if proposals[0].Start.Day() == proposals[1].Start.Day() {
		t.Fatalf("expected proposals on different days, got %v and %v", proposals[0].Start, proposals[1].Start)
	}
}

func TestAllocateSkipWeekends(t *testing.T) {
	c := workingDay(t)
	c.From = time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC) // a Saturday
	c.HorizonDays = 3
	c.SkipWeekends = true

	proposals, err := NewAllocator(zap.NewNop()).Allocate([]string{"a"}, nil, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if wd := proposals[0].Start.Weekday(); wd != time.Monday {
		t.Fatalf("expected the slot on Monday, got %s", wd)
	}
}

func TestAllocateCandidateUnavailability(t *testing.T) {
	c := workingDay(t)
	c.Unavailable = map[string][]BusyInterval{
		"picky": {{
			Start: time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC),
			End:   time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC),
		}},
	}

	proposals, err := NewAllocator(zap.NewNop()).Allocate([]string{"picky", "easy"}, nil, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	if !proposals[0].Start.Equal(want) {
		t.Fatalf("expected the unavailable window skipped, got %v", proposals[0].Start)
	}
	if !proposals[1].Start.Equal(time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected the next candidate to take the freed slot, got %v", proposals[1].Start)
	}
}

func TestAllocateInvalidConstraints(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Constraints)
	}{
		{"zero slot duration", func(c *Constraints) { c.SlotDuration = 0 }},
		{"negative buffer", func(c *Constraints) { c.Buffer = -time.Minute }},
		{"zero horizon", func(c *Constraints) { c.HorizonDays = 0 }},
		{"window shorter than slot", func(c *Constraints) {
			c.DayStart = 9 * time.Hour
			c.DayEnd = 9*time.Hour + 10*time.Minute
		}},
		{"weekend-only horizon", func(c *Constraints) {
			c.From = time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC)
			c.HorizonDays = 2
			c.SkipWeekends = true
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := workingDay(t)
			tc.mutate(&c)

			_, err := NewAllocator(zap.NewNop()).Allocate([]string{"a"}, nil, c)
			if err == nil {
				t.Fatal("expected an error")
			}

			var invalid *InvalidConstraintsError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidConstraintsError, got %T", err)
			}
		})
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	base := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	// back-to-back intervals share a boundary but do not overlap
	if overlaps(base, base.Add(30*time.Minute), base.Add(30*time.Minute), base.Add(time.Hour)) {
		t.Fatal("expected adjacent intervals not to overlap")
	}
	if !overlaps(base, base.Add(time.Hour), base.Add(30*time.Minute), base.Add(90*time.Minute)) {
		t.Fatal("expected overlapping intervals to be detected")
	}
}
