// Package scoring implements the relevance scorer: a fixed weighted
// combination of skill overlap, experience relevance and a semantic
// similarity contribution from a pluggable backend.
package scoring

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/Devanath2003/HR-Agent/internal/ai"
	"github.com/Devanath2003/HR-Agent/internal/candidate"
	"github.com/Devanath2003/HR-Agent/internal/ranking"
)

// relevantMonthsCap normalizes the experience contribution: this many fully
// relevant months saturate the component at 1.0.
const relevantMonthsCap = 60

// Weights control the score combination. They come from configuration and
// must sum to 1.0.
type Weights struct {
	Skills     float64 `mapstructure:"skills"`
	Experience float64 `mapstructure:"experience"`
	Semantic   float64 `mapstructure:"semantic"`

	// PartialCredit is the fraction awarded for a substring or token match
	// on a required skill instead of an exact one.
	PartialCredit float64 `mapstructure:"partial-credit"`
}

// DefaultWeights mirror the configuration defaults.
func DefaultWeights() Weights {
	return Weights{Skills: 0.4, Experience: 0.3, Semantic: 0.3, PartialCredit: 0.5}
}

// Validate checks the weights form a convex combination.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"skills":     w.Skills,
		"experience": w.Experience,
		"semantic":   w.Semantic,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s must not be negative, got %v", name, v)
		}
	}
	if sum := w.Skills + w.Experience + w.Semantic; math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("scoring weights must sum to 1.0, got %v", sum)
	}
	if w.PartialCredit < 0 || w.PartialCredit > 1 {
		return fmt.Errorf("partial credit must be in [0, 1], got %v", w.PartialCredit)
	}
	return nil
}

// BackendError wraps a scoring backend failure. Callers decide whether to
// retry; after retries are exhausted the candidate is reported as unscored.
type BackendError struct {
	CandidateID string
	Err         error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("scoring backend failed for candidate %q: %v", e.CandidateID, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Scorer compares candidate records against a job description. It never
// mutates its inputs.
type Scorer struct {
	backend ai.Backend
	weights Weights
	logger  *zap.Logger
}

func New(backend ai.Backend, weights Weights, logger *zap.Logger) (*Scorer, error) {
	if backend == nil {
		return nil, fmt.Errorf("scoring backend is required")
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{backend: backend, weights: weights, logger: logger}, nil
}

// Score produces a scored candidate. The result is a pure function of the
// record and job description, up to the backend's own determinism.
func (s *Scorer) Score(ctx context.Context, rec *candidate.Record, job *candidate.JobDescription) (*ranking.ScoredCandidate, error) {
	skillScore, skillNote := s.skillOverlap(rec, job)
	expScore, expNote := experienceRelevance(rec, job)

	assessment, err := s.backend.Score(ctx, summarize(rec), job.Text)
	if err != nil {
		return nil, &BackendError{CandidateID: rec.ID, Err: err}
	}

	total := s.weights.Skills*skillScore +
		s.weights.Experience*expScore +
		s.weights.Semantic*assessment.Score
	total = clamp01(total)

	rationale := []string{skillNote, expNote}
	if assessment.Rationale != "" {
		rationale = append(rationale, fmt.Sprintf("semantic: %s", assessment.Rationale))
	}

	s.logger.Debug("candidate scored",
		zap.String("candidate_id", rec.ID),
		zap.Float64("skills", skillScore),
		zap.Float64("experience", expScore),
		zap.Float64("semantic", assessment.Score),
		zap.Float64("total", total),
	)

	return &ranking.ScoredCandidate{Record: rec, Score: total, Rationale: rationale}, nil
}

// skillOverlap credits exact matches fully and substring/token matches at
// the configured partial rate. Without a structured skill list the candidate
// skills are matched against the free-text description instead.
func (s *Scorer) skillOverlap(rec *candidate.Record, job *candidate.JobDescription) (float64, string) {
	if len(job.RequiredSkills) > 0 {
		var credit float64
		var matched []string
		for _, required := range job.RequiredSkills {
			switch {
			case rec.HasSkill(required):
				credit += 1.0
				matched = append(matched, required)
			case partialSkillMatch(rec.Skills, required):
				credit += s.weights.PartialCredit
				matched = append(matched, required+"~")
			}
		}
		score := credit / float64(len(job.RequiredSkills))
		note := fmt.Sprintf("skills: matched %d of %d required", len(matched), len(job.RequiredSkills))
		if len(matched) > 0 {
			note += " (" + strings.Join(matched, ", ") + ")"
		}
		return clamp01(score), note
	}

	if len(rec.Skills) == 0 {
		return 0, "skills: none listed"
	}

	jobTerms := termSet(job.Text)
	hits := 0
	for _, skill := range rec.Skills {
		if termsContainAll(jobTerms, skill) {
			hits++
		}
	}
	return float64(hits) / float64(len(rec.Skills)),
		fmt.Sprintf("skills: %d of %d mentioned in the job text", hits, len(rec.Skills))
}

// experienceRelevance weights each entry's duration by how much its role
// text overlaps the job description's terms.
func experienceRelevance(rec *candidate.Record, job *candidate.JobDescription) (float64, string) {
	if len(rec.Experience) == 0 {
		return 0, "experience: none listed"
	}

	jobTerms := termSet(job.Text)
	var relevantMonths float64
	for _, entry := range rec.Experience {
		text := entry.Role
		if entry.Organization != "" {
			text += " " + entry.Organization
		}
		overlap := termOverlap(jobTerms, text)
		relevantMonths += overlap * float64(entry.Months)
	}

	score := clamp01(relevantMonths / relevantMonthsCap)
	return score, fmt.Sprintf("experience: %.0f relevant months across %d roles", relevantMonths, len(rec.Experience))
}

// summarize flattens a record into the text snippet handed to the semantic
// backend.
func summarize(rec *candidate.Record) string {
	var sb strings.Builder
	if rec.Name != "" {
		sb.WriteString(rec.Name)
		sb.WriteString("\n")
	}
	if len(rec.Skills) > 0 {
		sb.WriteString("Skills: ")
		sb.WriteString(strings.Join(rec.Skills, ", "))
		sb.WriteString("\n")
	}
	if exp := rec.ExperienceText(); exp != "" {
		sb.WriteString("Experience:\n")
		sb.WriteString(exp)
		sb.WriteString("\n")
	}
	if len(rec.Education) > 0 {
		sb.WriteString("Education: ")
		sb.WriteString(strings.Join(rec.Education, "; "))
		sb.WriteString("\n")
	}
	if len(rec.Achievements) > 0 {
		sb.WriteString("Achievements: ")
		sb.WriteString(strings.Join(rec.Achievements, "; "))
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

var termRE = regexp.MustCompile(`[a-z0-9+#.]+`)

func termSet(text string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, t := range termRE.FindAllString(strings.ToLower(text), -1) {
		if len(t) > 2 {
			terms[t] = struct{}{}
		}
	}
	return terms
}

// termsContainAll reports whether every term of the phrase appears in the set.
func termsContainAll(set map[string]struct{}, phrase string) bool {
	terms := termRE.FindAllString(strings.ToLower(phrase), -1)
	if len(terms) == 0 {
		return false
	}
	for _, t := range terms {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}

// termOverlap is the fraction of the text's terms present in the set.
func termOverlap(set map[string]struct{}, text string) float64 {
	terms := termRE.FindAllString(strings.ToLower(text), -1)
	if len(terms) == 0 {
		return 0
	}
	hits := 0
	for _, t := range terms {
		if _, ok := set[t]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}

// partialSkillMatch checks substring containment in either direction.
func partialSkillMatch(skills []string, required string) bool {
	req := strings.ToLower(required)
	for _, s := range skills {
		low := strings.ToLower(s)
		if strings.Contains(low, req) || strings.Contains(req, low) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
