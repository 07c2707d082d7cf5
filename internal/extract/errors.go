package extract

import "fmt"

// ExtractionError reports that a document yielded no usable structure. The
// batch continues without the document; the error carries enough context for
// the caller to flag it.
type ExtractionError struct {
	SourceID string
	Reason   string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %q: %s", e.SourceID, e.Reason)
}
