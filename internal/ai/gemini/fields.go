package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// maxFallbackRunes bounds how much resume text is sent to the model per
// fallback call.
const maxFallbackRunes = 4000

// FieldExtractor asks Gemini to pull a single resume section when the manual
// parsers come up empty. It satisfies the extract package's fallback
// capability.
type FieldExtractor struct {
	generator contentGenerator
	logger    *zap.Logger
}

func NewFieldExtractor(generator contentGenerator, log *zap.Logger) *FieldExtractor {
	return &FieldExtractor{generator: generator, logger: log}
}

func (f *FieldExtractor) ExtractField(ctx context.Context, resumeText, section string) ([]string, error) {
	runes := []rune(resumeText)
	if len(runes) > maxFallbackRunes {
		resumeText = string(runes[:maxFallbackRunes])
	}

	prompt := buildFieldPrompt(resumeText, section)

	raw, err := f.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("llm field extraction for %q: %w", section, err)
	}

	cleaned := extractJSON(raw)

	var items []string
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, fmt.Errorf("parse llm field response for %q: %w", section, err)
	}

	f.logger.Debug("llm field extraction",
		zap.String("section", section),
		zap.Int("items", len(items)),
	)

	return items, nil
}

func buildFieldPrompt(resumeText, section string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From the resume text below, extract the %q entries and return the result ONLY as a JSON array of strings.\n", section))
	sb.WriteString("Do not include any explanations or introductory text. If nothing is found, return an empty array [].\n\n")
	sb.WriteString("Resume Text:\n---\n")
	sb.WriteString(resumeText)
	sb.WriteString("\n---\n\n")
	sb.WriteString(`Example for "skills": ["Python", "Data Analysis", "Project Management"]` + "\n")
	sb.WriteString(`Example for "experience": ["Software Engineer at Google (2020-2023)", "Intern at Microsoft (Summer 2019)"]` + "\n\n")
	sb.WriteString("JSON Array Output:\n")
	return sb.String()
}
