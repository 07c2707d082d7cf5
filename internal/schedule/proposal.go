package schedule

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a slot proposal.
type Status string

const (
	// StatusProposed is the initial state assigned by the allocator.
	StatusProposed Status = "proposed"
	// StatusConfirmed means the dispatcher reported a created calendar
	// event. Terminal.
	StatusConfirmed Status = "confirmed"
	// StatusRejected means allocation was impossible or dispatch failed
	// irrecoverably. Terminal; always carries a reason.
	StatusRejected Status = "rejected"
)

// ReasonNoAvailability marks a candidate for whom no conflict-free slot
// existed within the horizon.
const ReasonNoAvailability = "NoAvailability"

// Proposal is one interview slot assigned to a candidate. The allocator owns
// proposals; the dispatcher only reports outcomes, which the owner applies
// through Confirm and Reject. A proposal never silently disappears.
type Proposal struct {
	CandidateID string
	Start       time.Time
	End         time.Time

	status   Status
	reason   string
	eventRef string
}

func newProposed(candidateID string, start, end time.Time) *Proposal {
	return &Proposal{CandidateID: candidateID, Start: start, End: end, status: StatusProposed}
}

func newRejected(candidateID, reason string) *Proposal {
	return &Proposal{CandidateID: candidateID, status: StatusRejected, reason: reason}
}

func (p *Proposal) Status() Status { return p.status }

// Reason explains a rejection; empty for other states.
func (p *Proposal) Reason() string { return p.reason }

// EventRef is the dispatcher's created-event reference after confirmation.
func (p *Proposal) EventRef() string { return p.eventRef }

// Confirm moves Proposed to Confirmed, recording the created-event
// reference. Confirmed and Rejected are terminal.
func (p *Proposal) Confirm(eventRef string) error {
	if p.status != StatusProposed {
		return fmt.Errorf("cannot confirm proposal for %q in state %s", p.CandidateID, p.status)
	}
	p.status = StatusConfirmed
	p.eventRef = eventRef
	return nil
}

// Reject moves Proposed to Rejected with a reason.
func (p *Proposal) Reject(reason string) error {
	if p.status != StatusProposed {
		return fmt.Errorf("cannot reject proposal for %q in state %s", p.CandidateID, p.status)
	}
	if reason == "" {
		return fmt.Errorf("rejection of proposal for %q requires a reason", p.CandidateID)
	}
	p.status = StatusRejected
	p.reason = reason
	return nil
}
