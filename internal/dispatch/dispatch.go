// Package dispatch defines the notification dispatcher boundary. The core
// hands finalized (candidate, slot) pairs across it and observes only
// acknowledgement or typed failure; provider error codes stay behind the
// implementation.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/Devanath2003/HR-Agent/internal/candidate"
	"github.com/Devanath2003/HR-Agent/internal/schedule"
)

// Reason classifies a dispatch failure. The core treats every reason as an
// opaque terminal outcome for the affected proposal.
type Reason string

const (
	ReasonAddressInvalid   Reason = "AddressInvalid"
	ReasonQuotaExceeded    Reason = "QuotaExceeded"
	ReasonTransientNetwork Reason = "TransientNetworkError"
	ReasonPermanent        Reason = "PermanentRejection"
)

// Error is a dispatch failure with its classification.
type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("dispatch failed (%s): %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ReasonOf extracts the failure classification, defaulting to permanent for
// unclassified errors.
func ReasonOf(err error) Reason {
	var de *Error
	if errors.As(err, &de) {
		return de.Reason
	}
	return ReasonPermanent
}

// Ack reports a successful dispatch: the created calendar event and, when
// available, its links.
type Ack struct {
	EventRef  string
	EventLink string
	MeetLink  string
}

// Dispatcher creates the calendar event and delivers the invitation email
// for one proposal. Cancel is the compensating action for a confirmed
// proposal whose run was cancelled afterwards: it deletes the created event.
type Dispatcher interface {
	Dispatch(ctx context.Context, rec *candidate.Record, p *schedule.Proposal, job *candidate.JobDescription) (*Ack, error)
	Cancel(ctx context.Context, eventRef string) error
}
