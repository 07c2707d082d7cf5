package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Devanath2003/HR-Agent/internal/ai"
	"github.com/Devanath2003/HR-Agent/internal/ai/gemini"
	"github.com/Devanath2003/HR-Agent/internal/ai/rule"
	"github.com/Devanath2003/HR-Agent/internal/candidate"
	"github.com/Devanath2003/HR-Agent/internal/extract"
	"github.com/Devanath2003/HR-Agent/internal/logger"
	"github.com/Devanath2003/HR-Agent/internal/schedule"
	"github.com/Devanath2003/HR-Agent/internal/scoring"
	"github.com/Devanath2003/HR-Agent/internal/secrets"
)

// loadJob builds the immutable job description for the run.
func loadJob(config *Config) (*candidate.JobDescription, error) {
	if config.Job == nil {
		return nil, fmt.Errorf("job section is required in the configuration")
	}

	text := strings.TrimSpace(config.Job.Description)
	if text == "" && config.Job.DescriptionFile != "" {
		raw, err := os.ReadFile(config.Job.DescriptionFile)
		if err != nil {
			return nil, fmt.Errorf("reading job description file: %w", err)
		}
		text = strings.TrimSpace(string(raw))
	}
	if text == "" {
		return nil, fmt.Errorf("a job description is required under job.description or job.description-file")
	}

	return &candidate.JobDescription{
		Text:           text,
		RequiredSkills: config.Job.RequiredSkills,
	}, nil
}

// buildGenerator creates the Gemini generator when an API key is configured.
func buildGenerator(ctx context.Context, config *Config, log *zap.Logger) (*gemini.Generator, error) {
	if config.AI == nil || config.AI.Gemini == nil {
		return nil, fmt.Errorf("ai.gemini configuration is required")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.AI.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, config.AI.Gemini.Model)
	if err != nil {
		return nil, err
	}

	log.Debug("gemini generator ready", logger.CommonFields("gemini", generator.Model())...)
	return generator, nil
}

// buildBackend selects the scoring backend: "gemini" (default) or the
// deterministic "rule" backend for offline runs.
func buildBackend(ctx context.Context, config *Config, log *zap.Logger) (ai.Backend, *gemini.Generator, error) {
	name := "gemini"
	if config.Scoring != nil && config.Scoring.Backend != "" {
		name = strings.ToLower(strings.TrimSpace(config.Scoring.Backend))
	}

	switch name {
	case "rule":
		return rule.New(), nil, nil
	case "gemini":
		generator, err := buildGenerator(ctx, config, log)
		if err != nil {
			return nil, nil, err
		}
		maxLogLen := 0
		if config.AI != nil && config.AI.Gemini != nil {
			maxLogLen = config.AI.Gemini.MaxLogLength
		}
		backendLogger := logger.WithCommonFields(log, "gemini", generator.Model())
		return gemini.NewBackend(generator, backendLogger, maxLogLen), generator, nil
	default:
		return nil, nil, fmt.Errorf("unsupported scoring backend: %s", name)
	}
}

// buildExtractor wires the record extractor, with the LLM field fallback
// when a generator is available.
func buildExtractor(generator *gemini.Generator, log *zap.Logger) *extract.Extractor {
	opts := []extract.Option{}
	if generator != nil {
		opts = append(opts, extract.WithFallback(gemini.NewFieldExtractor(generator, log)))
	}
	return extract.New(log, opts...)
}

// buildScorer validates and applies the configured weights.
func buildScorer(backend ai.Backend, config *Config, log *zap.Logger) (*scoring.Scorer, error) {
	weights := scoring.DefaultWeights()
	if config.Scoring != nil && config.Scoring.Weights != (scoring.Weights{}) {
		weights = config.Scoring.Weights
	}
	return scoring.New(backend, weights, log)
}

// buildConstraints converts the schedule configuration into allocator
// constraints. The horizon starts tomorrow unless start-date overrides it.
func buildConstraints(config *ScheduleConfig) (schedule.Constraints, error) {
	if config == nil {
		return schedule.Constraints{}, fmt.Errorf("schedule section is required in the configuration")
	}

	tz := config.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return schedule.Constraints{}, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	dayStart, err := parseClock(valueOr(config.DayStart, "09:00"))
	if err != nil {
		return schedule.Constraints{}, err
	}
	dayEnd, err := parseClock(valueOr(config.DayEnd, "17:00"))
	if err != nil {
		return schedule.Constraints{}, err
	}

	from := time.Now().In(loc).AddDate(0, 0, 1)
	if config.StartDate != "" {
		from, err = time.ParseInLocation("2006-01-02", config.StartDate, loc)
		if err != nil {
			return schedule.Constraints{}, fmt.Errorf("invalid start-date %q (want YYYY-MM-DD): %w", config.StartDate, err)
		}
	}

	slotDuration := config.SlotDuration
	if slotDuration == 0 {
		slotDuration = 30 * time.Minute
	}
	horizon := config.HorizonDays
	if horizon == 0 {
		horizon = 5
	}

	return schedule.Constraints{
		Location:     loc,
		From:         from,
		DayStart:     dayStart,
		DayEnd:       dayEnd,
		SlotDuration: slotDuration,
		Buffer:       config.Buffer,
		HorizonDays:  horizon,
		MaxPerDay:    config.MaxPerDay,
		SkipWeekends: config.SkipWeekends,
	}, nil
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
