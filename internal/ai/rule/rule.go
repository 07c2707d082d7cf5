// Package rule provides a deterministic scoring backend. It stands in for
// the Gemini backend in tests and offline runs: same inputs always produce
// the same score.
package rule

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Devanath2003/HR-Agent/internal/ai"
)

var tokenRE = regexp.MustCompile(`[a-z0-9+#.]+`)

// stopwords are ignored when tokenizing; they carry no domain signal.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"for": {}, "in": {}, "is": {}, "of": {}, "on": {}, "or": {}, "the": {},
	"to": {}, "we": {}, "with": {},
}

// Backend scores by token overlap: the fraction of reference tokens that
// also appear in the candidate text.
type Backend struct{}

func New() *Backend { return &Backend{} }

func (b *Backend) Score(ctx context.Context, text, reference string) (*ai.Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	refTokens := tokenize(reference)
	if len(refTokens) == 0 {
		return &ai.Assessment{Score: 0, Rationale: "reference text has no usable tokens"}, nil
	}

	textTokens := make(map[string]struct{})
	for _, t := range tokenize(text) {
		textTokens[t] = struct{}{}
	}

	var matched []string
	seen := make(map[string]struct{})
	for _, t := range refTokens {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := textTokens[t]; ok {
			matched = append(matched, t)
		}
	}

	score := float64(len(matched)) / float64(len(seen))

	rationale := "no overlapping terms"
	if len(matched) > 0 {
		preview := matched
		if len(preview) > 5 {
			preview = preview[:5]
		}
		rationale = fmt.Sprintf("overlapping terms: %s", strings.Join(preview, ", "))
	}

	return &ai.Assessment{Score: score, Rationale: rationale}, nil
}

func tokenize(s string) []string {
	raw := tokenRE.FindAllString(strings.ToLower(s), -1)
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if _, skip := stopwords[t]; skip {
			continue
		}
		out = append(out, t)
	}
	return out
}
