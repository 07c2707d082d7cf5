// Package pipeline exposes the run-level API: submit a batch of resumes for
// ranking, select and schedule the top candidates, and confirm proposals
// through the notification dispatcher. Partial success is a first-class
// outcome: per-document and per-candidate failures travel alongside results.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"go.uber.org/zap"

	"github.com/Devanath2003/HR-Agent/internal/calendarstate"
	"github.com/Devanath2003/HR-Agent/internal/candidate"
	"github.com/Devanath2003/HR-Agent/internal/dispatch"
	"github.com/Devanath2003/HR-Agent/internal/extract"
	"github.com/Devanath2003/HR-Agent/internal/ingest"
	"github.com/Devanath2003/HR-Agent/internal/ranking"
	"github.com/Devanath2003/HR-Agent/internal/schedule"
	"github.com/Devanath2003/HR-Agent/internal/scoring"
)

const (
	defaultConcurrency = 3
	defaultMaxRetries  = 3
)

// Runner owns one end-to-end execution. All collaborators arrive injected
// and already authenticated; the runner holds no credentials.
type Runner struct {
	extractor  *extract.Extractor
	scorer     *scoring.Scorer
	allocator  *schedule.Allocator
	busySource calendarstate.BusySource
	dispatcher dispatch.Dispatcher
	logger     *zap.Logger

	concurrency int
	maxRetries  uint
}

type Option func(*Runner)

// WithConcurrency bounds how many scoring backend calls run in parallel.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithMaxRetries sets the retry budget for scoring backend calls. Retry is
// the pipeline's policy, not the scorer's.
func WithMaxRetries(n uint) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxRetries = n
		}
	}
}

func NewRunner(
	extractor *extract.Extractor,
	scorer *scoring.Scorer,
	allocator *schedule.Allocator,
	busySource calendarstate.BusySource,
	dispatcher dispatch.Dispatcher,
	logger *zap.Logger,
	opts ...Option,
) *Runner {
	r := &Runner{
		extractor:   extractor,
		scorer:      scorer,
		allocator:   allocator,
		busySource:  busySource,
		dispatcher:  dispatcher,
		logger:      logger,
		concurrency: defaultConcurrency,
		maxRetries:  defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ExtractionFailure flags a document excluded from the batch.
type ExtractionFailure struct {
	SourceID string
	FileName string
	Err      error
}

// SubmitResult is the ranking half of a run. The batch holds every
// successfully scored candidate; failures and unscored candidates are
// reported, never silently dropped.
type SubmitResult struct {
	Batch              *ranking.Batch
	ExtractionFailures []ExtractionFailure
	Unscored           []ranking.Unscored
}

// Submit extracts and scores a batch of resume documents against the job
// description, returning the deterministic ranking. Scoring backend calls
// run concurrently since candidates are independent; results are gathered
// before the batch is built.
func (r *Runner) Submit(ctx context.Context, job *candidate.JobDescription, docs []ingest.Document) (*SubmitResult, error) {
	result := &SubmitResult{}

	records := make([]*candidate.Record, 0, len(docs))
	for _, doc := range docs {
		rec, err := r.extractor.Extract(ctx, doc.SourceID, doc.Text)
		if err != nil {
			r.logger.Warn("document excluded from batch",
				zap.String("source_id", doc.SourceID),
				zap.Error(err),
			)
			result.ExtractionFailures = append(result.ExtractionFailures, ExtractionFailure{
				SourceID: doc.SourceID,
				FileName: doc.FileName,
				Err:      err,
			})
			continue
		}
		records = append(records, rec)
	}

	scored, unscored := r.scoreAll(ctx, job, records)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result.Unscored = unscored

	batch, err := ranking.NewBatch(scored)
	if err != nil {
		return nil, err
	}
	result.Batch = batch

	r.logger.Info("batch ranked",
		zap.Int("ranked", batch.Len()),
		zap.Int("unscored", len(unscored)),
		zap.Int("extraction_failures", len(result.ExtractionFailures)),
	)

	return result, nil
}

// scoreAll fans candidate scoring out over a bounded worker set and gathers
// results in input order.
func (r *Runner) scoreAll(ctx context.Context, job *candidate.JobDescription, records []*candidate.Record) ([]ranking.ScoredCandidate, []ranking.Unscored) {
	type outcome struct {
		scored *ranking.ScoredCandidate
		err    error
	}

	outcomes := make([]outcome, len(records))
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for i, rec := range records {
		wg.Add(1)
		go func(i int, rec *candidate.Record) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			sc, err := r.scoreWithRetry(ctx, rec, job)
			outcomes[i] = outcome{scored: sc, err: err}
		}(i, rec)
	}
	wg.Wait()

	var scored []ranking.ScoredCandidate
	var unscored []ranking.Unscored
	for i, rec := range records {
		if outcomes[i].err != nil {
			r.logger.Warn("candidate left unscored after retries",
				zap.String("candidate_id", rec.ID),
				zap.Error(outcomes[i].err),
			)
			unscored = append(unscored, ranking.Unscored{Record: rec, Reason: outcomes[i].err.Error()})
			continue
		}
		scored = append(scored, *outcomes[i].scored)
	}

	return scored, unscored
}

func (r *Runner) scoreWithRetry(ctx context.Context, rec *candidate.Record, job *candidate.JobDescription) (*ranking.ScoredCandidate, error) {
	var scored *ranking.ScoredCandidate

	err := retry.Do(
		func() error {
			sc, err := r.scorer.Score(ctx, rec, job)
			if err != nil {
				return err
			}
			scored = sc
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(r.maxRetries),
		retry.Delay(time.Second),
		retry.MaxDelay(30*time.Second),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Debug("retrying scoring backend call",
				zap.String("candidate_id", rec.ID),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		return nil, err
	}

	return scored, nil
}

// SelectAndSchedule snapshots the interviewer's busy intervals and allocates
// slots for the top n candidates of the batch, in ranking order.
func (r *Runner) SelectAndSchedule(ctx context.Context, batch *ranking.Batch, n int, resource string, cons schedule.Constraints) ([]*schedule.Proposal, error) {
	selected := batch.TopN(n)
	ids := make([]string, len(selected))
	for i, sc := range selected {
		ids[i] = sc.Record.ID
	}

	horizonEnd := cons.From.AddDate(0, 0, cons.HorizonDays)
	busy, err := r.busySource.Busy(ctx, resource, cons.From, horizonEnd)
	if err != nil {
		return nil, fmt.Errorf("snapshot busy intervals: %w", err)
	}

	proposals, err := r.allocator.Allocate(ids, busy, cons)
	if err != nil {
		return nil, err
	}

	return proposals, nil
}

// Confirm dispatches one proposed slot. Success confirms the proposal with
// the created-event reference; failure rejects it with the classified reason
// and surfaces the error for follow-up.
func (r *Runner) Confirm(ctx context.Context, rec *candidate.Record, p *schedule.Proposal, job *candidate.JobDescription) error {
	if p.Status() != schedule.StatusProposed {
		return fmt.Errorf("proposal for %q is %s, not confirmable", p.CandidateID, p.Status())
	}

	ack, err := r.dispatcher.Dispatch(ctx, rec, p, job)
	if err != nil {
		reason := string(dispatch.ReasonOf(err))
		if rejErr := p.Reject(reason); rejErr != nil {
			r.logger.Error("recording dispatch rejection failed", zap.Error(rejErr))
		}
		return err
	}

	return p.Confirm(ack.EventRef)
}

// Compensate deletes the calendar events behind already-confirmed proposals.
// It is the explicit counterpart to cancelling a run after acknowledgements
// were received; nothing is abandoned silently.
func (r *Runner) Compensate(ctx context.Context, proposals []*schedule.Proposal) error {
	var firstErr error
	for _, p := range proposals {
		if p.Status() != schedule.StatusConfirmed || p.EventRef() == "" {
			continue
		}
		if err := r.dispatcher.Cancel(ctx, p.EventRef()); err != nil {
			r.logger.Error("compensating cancellation failed",
				zap.String("candidate_id", p.CandidateID),
				zap.String("event_ref", p.EventRef()),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		r.logger.Info("confirmed proposal compensated",
			zap.String("candidate_id", p.CandidateID),
			zap.String("event_ref", p.EventRef()),
		)
	}
	return firstErr
}
