// Package calendarstate is the read-only calendar-state boundary: it answers
// which intervals of a resource are already committed.
package calendarstate

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/Devanath2003/HR-Agent/internal/schedule"
)

// BusySource returns the busy intervals of a resource for a date range. The
// result is a snapshot; the allocator never re-reads it mid-run.
type BusySource interface {
	Busy(ctx context.Context, resource string, from, to time.Time) ([]schedule.BusyInterval, error)
}

// GoogleBusySource queries the Google Calendar FreeBusy endpoint. The service
// is injected already authenticated; this package never touches credentials.
type GoogleBusySource struct {
	service *calendar.Service
}

func NewGoogleBusySource(service *calendar.Service) *GoogleBusySource {
	return &GoogleBusySource{service: service}
}

func (g *GoogleBusySource) Busy(ctx context.Context, resource string, from, to time.Time) ([]schedule.BusyInterval, error) {
	req := &calendar.FreeBusyRequest{
		TimeMin: from.Format(time.RFC3339),
		TimeMax: to.Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: resource}},
	}

	resp, err := g.service.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("freebusy query for %q: %w", resource, err)
	}

	cal, ok := resp.Calendars[resource]
	if !ok {
		return nil, fmt.Errorf("freebusy response has no calendar %q", resource)
	}

	intervals := make([]schedule.BusyInterval, 0, len(cal.Busy))
	for _, period := range cal.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			return nil, fmt.Errorf("parse busy start %q: %w", period.Start, err)
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			return nil, fmt.Errorf("parse busy end %q: %w", period.End, err)
		}
		intervals = append(intervals, schedule.BusyInterval{Start: start, End: end})
	}

	return intervals, nil
}
