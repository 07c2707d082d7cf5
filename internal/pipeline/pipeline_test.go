package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Devanath2003/HR-Agent/internal/ai"
	"github.com/Devanath2003/HR-Agent/internal/candidate"
	"github.com/Devanath2003/HR-Agent/internal/dispatch"
	"github.com/Devanath2003/HR-Agent/internal/extract"
	"github.com/Devanath2003/HR-Agent/internal/ingest"
	"github.com/Devanath2003/HR-Agent/internal/schedule"
	"github.com/Devanath2003/HR-Agent/internal/scoring"
)

// fakeBackend scores by a fixed per-candidate-name score and can fail for
// chosen candidates.
type fakeBackend struct {
	mu     sync.Mutex
	scores map[string]float64
	fail   map[string]error
	calls  int
}

func (f *fakeBackend) Score(_ context.Context, text, _ string) (*ai.Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	for name, err := range f.fail {
		if containsLine(text, name) {
			return nil, err
		}
	}
	for name, score := range f.scores {
		if containsLine(text, name) {
			return &ai.Assessment{Score: score}, nil
		}
	}
	return &ai.Assessment{Score: 0.5}, nil
}

func containsLine(text, name string) bool {
	return len(text) >= len(name) && text[:len(name)] == name
}

type fakeBusySource struct {
	busy []schedule.BusyInterval
	err  error
}

func (f *fakeBusySource) Busy(context.Context, string, time.Time, time.Time) ([]schedule.BusyInterval, error) {
	return f.busy, f.err
}

type fakeDispatcher struct {
	mu          sync.Mutex
	dispatchErr map[string]error
	dispatched  []string
	cancelled   []string
	cancelErr   error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, rec *candidate.Record, _ *schedule.Proposal, _ *candidate.JobDescription) (*dispatch.Ack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.dispatchErr[rec.ID]; ok {
		return nil, err
	}
	f.dispatched = append(f.dispatched, rec.ID)
	return &dispatch.Ack{EventRef: "event-" + rec.ID}, nil
}

func (f *fakeDispatcher) Cancel(_ context.Context, eventRef string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled = append(f.cancelled, eventRef)
	return nil
}

func resume(name, skills string) string {
	return fmt.Sprintf("%s\n%s@example.com\n\nSkills: %s\n", name, "mail", skills)
}

func docs(names ...string) []ingest.Document {
	out := make([]ingest.Document, len(names))
	for i, n := range names {
		out[i] = ingest.Document{
			SourceID: fmt.Sprintf("id-%d", i),
			FileName: n + ".pdf",
			Text:     resume(n, "Python, SQL"),
		}
	}
	return out
}

func newTestRunner(t *testing.T, backend ai.Backend, busy *fakeBusySource, disp dispatch.Dispatcher, opts ...Option) *Runner {
	t.Helper()

	scorer, err := scoring.New(backend, scoring.Weights{Semantic: 1.0}, zap.NewNop())
	if err != nil {
		t.Fatalf("building scorer: %v", err)
	}

	return NewRunner(
		extract.New(zap.NewNop(), extract.WithReferenceYear(2026)),
		scorer,
		schedule.NewAllocator(zap.NewNop()),
		busy,
		disp,
		zap.NewNop(),
		opts...,
	)
}

func testConstraints() schedule.Constraints {
	return schedule.Constraints{
		Location:     time.UTC,
		From:         time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		DayStart:     9 * time.Hour,
		DayEnd:       12 * time.Hour,
		SlotDuration: 30 * time.Minute,
		HorizonDays:  1,
	}
}

func TestSubmitRanksBatch(t *testing.T) {
	backend := &fakeBackend{scores: map[string]float64{
		"Alice Harper": 0.9,
		"Bob Miller":   0.4,
		"Cara Young":   0.7,
	}}
	runner := newTestRunner(t, backend, &fakeBusySource{}, &fakeDispatcher{})

	job := &candidate.JobDescription{Text: "backend developer"}
	result, err := runner.Submit(context.Background(), job, docs("Alice Harper", "Bob Miller", "Cara Young"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Batch.Len() != 3 {
		t.Fatalf("expected 3 ranked candidates, got %d", result.Batch.Len())
	}

	entries := result.Batch.Entries()
	if entries[0].Record.Name != "Alice Harper" || entries[2].Record.Name != "Bob Miller" {
		t.Fatalf("unexpected ranking order: %s, %s, %s",
			entries[0].Record.Name, entries[1].Record.Name, entries[2].Record.Name)
	}
}

func TestSubmitPartialExtractionFailure(t *testing.T) {
	runner := newTestRunner(t, &fakeBackend{}, &fakeBusySource{}, &fakeDispatcher{})

	documents := docs("Alice Harper")
	documents = append(documents, ingest.Document{SourceID: "id-bad", FileName: "bad.pdf", Text: "   "})

	result, err := runner.Submit(context.Background(), &candidate.JobDescription{Text: "any"}, documents)
	if err != nil {
		t.Fatalf("expected partial success, got %v", err)
	}

	if result.Batch.Len() != 1 {
		t.Fatalf("expected 1 ranked candidate, got %d", result.Batch.Len())
	}
	if len(result.ExtractionFailures) != 1 || result.ExtractionFailures[0].SourceID != "id-bad" {
		t.Fatalf("unexpected extraction failures: %+v", result.ExtractionFailures)
	}
}

func TestSubmitUnscoredAfterRetries(t *testing.T) {
	backend := &fakeBackend{fail: map[string]error{
		"Bob Miller": errors.New("backend down"),
	}}
	runner := newTestRunner(t, backend, &fakeBusySource{}, &fakeDispatcher{}, WithMaxRetries(1))

	result, err := runner.Submit(context.Background(), &candidate.JobDescription{Text: "any"}, docs("Alice Harper", "Bob Miller"))
	if err != nil {
		t.Fatalf("expected partial success, got %v", err)
	}

	if result.Batch.Len() != 1 {
		t.Fatalf("expected 1 ranked candidate, got %d", result.Batch.Len())
	}
	if len(result.Unscored) != 1 || result.Unscored[0].Record.Name != "Bob Miller" {
		t.Fatalf("unexpected unscored list: %+v", result.Unscored)
	}
}

func TestSubmitRetriesBackendFailures(t *testing.T) {
	calls := 0
	backend := &flakyBackend{failures: 1, calls: &calls}
	runner := newTestRunner(t, backend, &fakeBusySource{}, &fakeDispatcher{}, WithMaxRetries(3))

	result, err := runner.Submit(context.Background(), &candidate.JobDescription{Text: "any"}, docs("Alice Harper"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Batch.Len() != 1 {
		t.Fatalf("expected the candidate scored after a retry, got %d ranked", result.Batch.Len())
	}
	if calls < 2 {
		t.Fatalf("expected at least 2 backend calls, got %d", calls)
	}
}

type flakyBackend struct {
	mu       sync.Mutex
	failures int
	calls    *int
}

func (f *flakyBackend) Score(context.Context, string, string) (*ai.Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	*f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("transient")
	}
	return &ai.Assessment{Score: 0.5}, nil
}

func TestSelectAndSchedule(t *testing.T) {
	backend := &fakeBackend{scores: map[string]float64{
		"Alice Harper": 0.9,
		"Bob Miller":   0.4,
	}}
	runner := newTestRunner(t, backend, &fakeBusySource{}, &fakeDispatcher{})

	job := &candidate.JobDescription{Text: "any"}
	result, err := runner.Submit(context.Background(), job, docs("Alice Harper", "Bob Miller"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	proposals, err := runner.SelectAndSchedule(context.Background(), result.Batch, 2, "primary", testConstraints())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(proposals) != 2 {
		t.Fatalf("expected 2 proposals, got %d", len(proposals))
	}
	// highest ranked gets the earliest slot
	if !proposals[0].Start.Before(proposals[1].Start) {
		t.Fatalf("expected ranking order preserved: %v vs %v", proposals[0].Start, proposals[1].Start)
	}
}

func TestSelectAndScheduleBusySourceFailure(t *testing.T) {
	runner := newTestRunner(t, &fakeBackend{}, &fakeBusySource{err: errors.New("calendar unreachable")}, &fakeDispatcher{})

	result, err := runner.Submit(context.Background(), &candidate.JobDescription{Text: "any"}, docs("Alice Harper"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := runner.SelectAndSchedule(context.Background(), result.Batch, 1, "primary", testConstraints()); err == nil {
		t.Fatal("expected an error when the busy snapshot fails")
	}
}

func TestConfirmSuccess(t *testing.T) {
	disp := &fakeDispatcher{}
	runner := newTestRunner(t, &fakeBackend{}, &fakeBusySource{}, disp)

	rec := &candidate.Record{ID: "a", Contact: candidate.Contact{Email: "a@example.com"}}
	proposals, err := schedule.NewAllocator(zap.NewNop()).Allocate([]string{"a"}, nil, testConstraints())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := proposals[0]

	if err := runner.Confirm(context.Background(), rec, p, &candidate.JobDescription{Text: "any"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Status() != schedule.StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", p.Status())
	}
	if p.EventRef() != "event-a" {
		t.Fatalf("unexpected event ref %q", p.EventRef())
	}
}

func TestConfirmDispatchFailureRejectsProposal(t *testing.T) {
	disp := &fakeDispatcher{dispatchErr: map[string]error{
		"a": &dispatch.Error{Reason: dispatch.ReasonAddressInvalid, Err: errors.New("bad address")},
	}}
	runner := newTestRunner(t, &fakeBackend{}, &fakeBusySource{}, disp)

	rec := &candidate.Record{ID: "a"}
	proposals, err := schedule.NewAllocator(zap.NewNop()).Allocate([]string{"a"}, nil, testConstraints())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := proposals[0]

	if err := runner.Confirm(context.Background(), rec, p, &candidate.JobDescription{Text: "any"}); err == nil {
		t.Fatal("expected the dispatch error surfaced")
	}

	if p.Status() != schedule.StatusRejected {
		t.Fatalf("expected rejected, got %s", p.Status())
	}
	if p.Reason() != string(dispatch.ReasonAddressInvalid) {
		t.Fatalf("expected reason %s, got %q", dispatch.ReasonAddressInvalid, p.Reason())
	}
}

func TestConfirmRequiresProposedState(t *testing.T) {
	runner := newTestRunner(t, &fakeBackend{}, &fakeBusySource{}, &fakeDispatcher{})

	proposals, err := schedule.NewAllocator(zap.NewNop()).Allocate([]string{"a"}, nil, testConstraints())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := proposals[0]
	if err := p.Confirm("event-x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := runner.Confirm(context.Background(), &candidate.Record{ID: "a"}, p, &candidate.JobDescription{Text: "any"}); err == nil {
		t.Fatal("expected an error confirming a non-proposed proposal")
	}
}

func TestCompensateCancelsConfirmedProposals(t *testing.T) {
	disp := &fakeDispatcher{}
	runner := newTestRunner(t, &fakeBackend{}, &fakeBusySource{}, disp)

	proposals, err := schedule.NewAllocator(zap.NewNop()).Allocate([]string{"a", "b", "c"}, nil, testConstraints())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := proposals[0].Confirm("event-a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := proposals[1].Reject("AddressInvalid"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// proposals[2] stays proposed

	if err := runner.Compensate(context.Background(), proposals); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(disp.cancelled) != 1 || disp.cancelled[0] != "event-a" {
		t.Fatalf("expected only the confirmed event cancelled, got %v", disp.cancelled)
	}
}

func TestCompensateReportsFirstError(t *testing.T) {
	disp := &fakeDispatcher{cancelErr: errors.New("event gone")}
	runner := newTestRunner(t, &fakeBackend{}, &fakeBusySource{}, disp)

	proposals, err := schedule.NewAllocator(zap.NewNop()).Allocate([]string{"a"}, nil, testConstraints())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := proposals[0].Confirm("event-a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := runner.Compensate(context.Background(), proposals); err == nil {
		t.Fatal("expected the cancellation error surfaced")
	}
}
