package scoring

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Devanath2003/HR-Agent/internal/ai"
	"github.com/Devanath2003/HR-Agent/internal/candidate"
)

type stubBackend struct {
	score float64
	err   error
}

func (s *stubBackend) Score(_ context.Context, _, _ string) (*ai.Assessment, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ai.Assessment{Score: s.score, Rationale: "stub"}, nil
}

func TestScoreSkillsOnly(t *testing.T) {
	scorer, err := New(&stubBackend{}, Weights{Skills: 1.0, PartialCredit: 0.5}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	job := &candidate.JobDescription{
		Text:           "Backend developer working with python and sql pipelines",
		RequiredSkills: []string{"python", "sql"},
	}

	a := &candidate.Record{ID: "a", Skills: []string{"Python", "SQL"}}
	b := &candidate.Record{ID: "b", Skills: []string{"Excel"}}

	scoredA, err := scorer.Score(context.Background(), a, job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scoredB, err := scorer.Score(context.Background(), b, job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if scoredA.Score != 1.0 {
		t.Fatalf("expected full score for exact matches, got %v", scoredA.Score)
	}
	if scoredB.Score != 0 {
		t.Fatalf("expected zero score for no matches, got %v", scoredB.Score)
	}
	if scoredA.Score <= scoredB.Score {
		t.Fatalf("expected a (%v) to outrank b (%v)", scoredA.Score, scoredB.Score)
	}
}

func TestScorePartialCredit(t *testing.T) {
	scorer, err := New(&stubBackend{}, Weights{Skills: 1.0, PartialCredit: 0.5}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	job := &candidate.JobDescription{
		Text:           "Data engineer",
		RequiredSkills: []string{"PostgreSQL"},
	}
	rec := &candidate.Record{ID: "c", Skills: []string{"SQL"}}

	scored, err := scorer.Score(context.Background(), rec, job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scored.Score != 0.5 {
		t.Fatalf("expected partial credit 0.5, got %v", scored.Score)
	}
}

func TestScoreExperienceRelevance(t *testing.T) {
	scorer, err := New(&stubBackend{}, Weights{Experience: 1.0}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	job := &candidate.JobDescription{Text: "We need a backend engineer"}
	rec := &candidate.Record{
		ID: "d",
		Experience: []candidate.Experience{
			{Role: "Backend Engineer", Months: 60},
		},
	}

	scored, err := scorer.Score(context.Background(), rec, job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scored.Score != 1.0 {
		t.Fatalf("expected saturated experience score, got %v", scored.Score)
	}

	junior := &candidate.Record{
		ID: "e",
		Experience: []candidate.Experience{
			{Role: "Backend Engineer", Months: 30},
		},
	}
	scoredJunior, err := scorer.Score(context.Background(), junior, job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scoredJunior.Score >= scored.Score {
		t.Fatalf("expected shorter tenure to score lower: %v vs %v", scoredJunior.Score, scored.Score)
	}
}

func TestScoreSemanticContribution(t *testing.T) {
	scorer, err := New(&stubBackend{score: 0.8}, Weights{Semantic: 1.0}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := &candidate.Record{ID: "f", Skills: []string{"Go"}}
	job := &candidate.JobDescription{Text: "Any role"}

	scored, err := scorer.Score(context.Background(), rec, job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scored.Score != 0.8 {
		t.Fatalf("expected the backend score to pass through, got %v", scored.Score)
	}
}

func TestScoreBackendError(t *testing.T) {
	backendErr := errors.New("quota exhausted")
	scorer, err := New(&stubBackend{err: backendErr}, DefaultWeights(), zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := &candidate.Record{ID: "g"}
	job := &candidate.JobDescription{Text: "Any role"}

	_, err = scorer.Score(context.Background(), rec, job)
	if err == nil {
		t.Fatal("expected an error from the failing backend")
	}

	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected BackendError, got %T", err)
	}
	if be.CandidateID != "g" {
		t.Fatalf("expected candidate id g, got %q", be.CandidateID)
	}
	if !errors.Is(err, backendErr) {
		t.Fatal("expected the backend error to be wrapped")
	}
}

func TestWeightsValidate(t *testing.T) {
	cases := []struct {
		name    string
		weights Weights
		wantErr bool
	}{
		{"defaults", DefaultWeights(), false},
		{"skills only", Weights{Skills: 1.0}, false},
		{"sum below one", Weights{Skills: 0.5}, true},
		{"sum above one", Weights{Skills: 0.8, Experience: 0.8}, true},
		{"negative weight", Weights{Skills: 1.5, Experience: -0.5}, true},
		{"partial credit out of range", Weights{Skills: 1.0, PartialCredit: 1.5}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.weights.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected an error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewRejectsInvalidInput(t *testing.T) {
	if _, err := New(nil, DefaultWeights(), zap.NewNop()); err == nil {
		t.Fatal("expected an error for a nil backend")
	}
	if _, err := New(&stubBackend{}, Weights{Skills: 2.0}, zap.NewNop()); err == nil {
		t.Fatal("expected an error for invalid weights")
	}
}
