package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Devanath2003/HR-Agent/internal/ai"
	"github.com/Devanath2003/HR-Agent/internal/logger"
)

// contentGenerator is satisfied by *Generator and by test stubs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Backend implements ai.Backend on top of Gemini. The model is asked for a
// 0-100 match score plus a short rationale; the score is normalized to [0,1].
type Backend struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

const defaultMaxLogLength = 200

func NewBackend(generator contentGenerator, log *zap.Logger, maxLogLength int) *Backend {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Backend{generator: generator, logger: log, maxLogLen: maxLogLength}
}

func (b *Backend) Score(ctx context.Context, text, reference string) (*ai.Assessment, error) {
	prompt := buildScorePrompt(text, reference)

	b.logger.Debug("gemini score request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, b.maxLogLen)),
	)

	raw, err := b.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("gemini score response",
		zap.String("response_preview", logger.TruncateForLog(raw, b.maxLogLen)),
	)

	assessment, err := parseScoreResponse(raw)
	if err != nil {
		return nil, err
	}

	assessment.Raw = raw
	return assessment, nil
}

func buildScorePrompt(text, reference string) string {
	var sb strings.Builder
	sb.WriteString("You are an assistant helping an HR team rank candidates.\n")
	sb.WriteString("Compare the candidate summary with the job description and rate the match.\n\n")
	sb.WriteString("Job Description:\n-----\n")
	sb.WriteString(reference)
	sb.WriteString("\n-----\n\nCandidate Summary:\n-----\n")
	sb.WriteString(text)
	sb.WriteString("\n-----\n\n")
	sb.WriteString("Return ONLY a JSON object in this format:\n")
	sb.WriteString(`{"score": <integer between 0 and 100>, "rationale": "<one short sentence>"}`)
	sb.WriteString("\n")
	return sb.String()
}

func parseScoreResponse(raw string) (*ai.Assessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	score, ok := coerceFloat(data["score"])
	if !ok {
		return nil, fmt.Errorf("gemini response is missing a numeric score")
	}

	// The prompt asks for 0-100, so a whole number is on that scale.
	// Only a fractional reply within [0,1] is taken as already normalized.
	if score == math.Trunc(score) || score > 1 {
		score /= 100
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return &ai.Assessment{
		Score:     score,
		Rationale: coerceString(data["rationale"]),
	}, nil
}

// extractJSON strips markdown code fences the model sometimes wraps around
// its output.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(strings.Trim(raw, "`"))
}

func coerceFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	default:
		if v == nil {
			return ""
		}
		return fmt.Sprintf("%v", v)
	}
}
