// Package ai declares the pluggable scoring capability the relevance scorer
// depends on. Production wiring injects the Gemini-backed implementation;
// tests and offline runs use the deterministic rule backend.
package ai

import "context"

// Assessment is the result of one semantic comparison.
type Assessment struct {
	// Score is the similarity in [0, 1].
	Score float64
	// Rationale is an optional short explanation of the score.
	Rationale string
	// Raw keeps the unparsed backend response for debugging.
	Raw string
}

// Backend scores how well a text matches a reference text. Implementations
// must not retry internally; retry policy belongs to the caller.
type Backend interface {
	Score(ctx context.Context, text, reference string) (*Assessment, error)
}
