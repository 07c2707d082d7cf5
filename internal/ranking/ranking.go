// Package ranking orders scored candidates deterministically and exposes
// top-N selection. It is pure: no I/O, no shared state.
package ranking

import (
	"fmt"
	"sort"

	"github.com/Devanath2003/HR-Agent/internal/candidate"
)

// ScoredCandidate pairs a candidate record with its relevance score in
// [0, 1] and the rationale snippets explaining the score contributions.
type ScoredCandidate struct {
	Record    *candidate.Record
	Score     float64
	Rationale []string
}

// Unscored marks a candidate whose scoring backend calls were exhausted. It
// is reported alongside the batch instead of being given a default score.
type Unscored struct {
	Record *candidate.Record
	Reason string
}

// InvalidBatchError reports malformed aggregator input, such as duplicate
// candidate identifiers. It is fatal for the whole run.
type InvalidBatchError struct {
	Reason string
}

func (e *InvalidBatchError) Error() string {
	return fmt.Sprintf("invalid batch: %s", e.Reason)
}

// Batch is an immutable ordered ranking: score descending, identifier
// ascending on ties. A new ranking request produces a new Batch; existing
// ones are never mutated.
type Batch struct {
	entries []ScoredCandidate
}

// NewBatch sorts the scored candidates into a total order. Input order is
// arbitrary; duplicate identifiers are rejected.
func NewBatch(scored []ScoredCandidate) (*Batch, error) {
	seen := make(map[string]struct{}, len(scored))
	for _, sc := range scored {
		if sc.Record == nil {
			return nil, &InvalidBatchError{Reason: "scored candidate without a record"}
		}
		if _, dup := seen[sc.Record.ID]; dup {
			return nil, &InvalidBatchError{Reason: fmt.Sprintf("duplicate candidate identifier %q", sc.Record.ID)}
		}
		seen[sc.Record.ID] = struct{}{}
	}

	entries := make([]ScoredCandidate, len(scored))
	copy(entries, scored)

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Record.ID < entries[j].Record.ID
	})

	return &Batch{entries: entries}, nil
}

// Len returns the number of ranked candidates.
func (b *Batch) Len() int {
	return len(b.entries)
}

// Entries returns the full ranking as a copy.
func (b *Batch) Entries() []ScoredCandidate {
	out := make([]ScoredCandidate, len(b.entries))
	copy(out, b.entries)
	return out
}

// TopN returns the first n entries. Asking for more than the batch holds
// returns all entries; it is not an error.
func (b *Batch) TopN(n int) []ScoredCandidate {
	if n < 0 {
		n = 0
	}
	if n > len(b.entries) {
		n = len(b.entries)
	}
	out := make([]ScoredCandidate, n)
	copy(out, b.entries[:n])
	return out
}
