package extract

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Devanath2003/HR-Agent/internal/candidate"
)

// FieldExtractor is the LLM fallback capability. It returns the items of a
// single section from raw resume text. Implementations live outside this
// package; a nil fallback disables the third pass.
type FieldExtractor interface {
	ExtractField(ctx context.Context, resumeText, section string) ([]string, error)
}

// Extractor turns raw resume text into a structured candidate record. It
// tries inline parsing, then block parsing, then the optional LLM fallback
// for each section. Extraction is idempotent and mutates no shared state.
type Extractor struct {
	logger   *zap.Logger
	fallback FieldExtractor
	nowYear  int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithFallback installs the LLM field extractor used when manual parsing
// finds nothing for a section.
func WithFallback(f FieldExtractor) Option {
	return func(e *Extractor) { e.fallback = f }
}

// WithReferenceYear pins the year used to close open-ended experience ranges.
// Defaults to the current year at construction time.
func WithReferenceYear(year int) Option {
	return func(e *Extractor) { e.nowYear = year }
}

func New(logger *zap.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		logger:  logger,
		nowYear: time.Now().Year(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract produces a candidate record from resume text. The sourceID becomes
// the record identifier and must be unique within the batch. Missing sections
// stay explicitly empty; text that is empty after normalization fails with an
// ExtractionError.
func (e *Extractor) Extract(ctx context.Context, sourceID, text string) (*candidate.Record, error) {
	normalized := normalize(text)
	if normalized == "" {
		return nil, &ExtractionError{SourceID: sourceID, Reason: "no text content after normalization"}
	}

	record := &candidate.Record{
		ID:      sourceID,
		Name:    extractName(normalized),
		Contact: candidate.Contact{Email: extractEmail(normalized), Phone: extractPhone(normalized)},
	}

	record.Skills = candidate.DedupeSkills(e.section(ctx, sourceID, normalized, SectionSkills))
	record.Experience = parseExperience(e.section(ctx, sourceID, normalized, SectionExperience), e.nowYear)
	record.Education = e.section(ctx, sourceID, normalized, SectionEducation)
	record.Achievements = e.section(ctx, sourceID, normalized, SectionAchievements)

	e.logger.Debug("extracted candidate record",
		zap.String("source_id", sourceID),
		zap.String("name", record.Name),
		zap.Int("skills", len(record.Skills)),
		zap.Int("experience_entries", len(record.Experience)),
	)

	return record, nil
}

// section runs the inline -> block -> fallback cascade for one section.
func (e *Extractor) section(ctx context.Context, sourceID, text, name string) []string {
	variants := fieldHeadings[name]

	if raw := findInline(text, variants); raw != "" {
		if parsed := cleanList(parseInlineList(raw)); len(parsed) > 0 {
			return parsed
		}
	}

	if raw := findBlock(text, variants); raw != "" {
		if parsed := cleanList(parseBlockList(raw)); len(parsed) > 0 {
			return parsed
		}
	}

	if e.fallback == nil {
		return nil
	}

	items, err := e.fallback.ExtractField(ctx, text, name)
	if err != nil {
		e.logger.Warn("llm field fallback failed",
			zap.String("source_id", sourceID),
			zap.String("section", name),
			zap.Error(err),
		)
		return nil
	}

	e.logger.Debug("section resolved by llm fallback",
		zap.String("source_id", sourceID),
		zap.String("section", name),
		zap.Int("items", len(items)),
	)

	return cleanList(items)
}

// SectionHeadings exposes the known variants for a section, mainly for the
// fallback prompt builder.
func SectionHeadings(section string) []string {
	variants := fieldHeadings[section]
	out := make([]string, len(variants))
	copy(out, variants)
	return out
}

// Sections lists the extractable sections in a stable order.
func Sections() []string {
	return []string{SectionSkills, SectionExperience, SectionEducation, SectionAchievements}
}
