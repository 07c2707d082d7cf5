// Package ingest implements the resume ingestion boundary: it walks a
// directory of PDF resumes and hands raw text per document to the pipeline.
// Failures are reported per document and never retried here.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// Document is one ingested resume: a stable source identifier, the original
// file name and the extracted raw text.
type Document struct {
	SourceID string
	FileName string
	Text     string
}

// Failure records a document that could not be ingested.
type Failure struct {
	FileName string
	Err      error
}

// Reader loads resume documents from a directory.
type Reader struct {
	dir    string
	logger *zap.Logger
}

func NewReader(dir string, logger *zap.Logger) *Reader {
	return &Reader{dir: dir, logger: logger}
}

// Load reads every PDF in the directory. Per-document failures are collected
// alongside successes; only a missing or unreadable directory is fatal.
func (r *Reader) Load() ([]Document, []Failure, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading resume directory %q: %w", r.dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	docs := make([]Document, 0, len(names))
	var failures []Failure

	for _, name := range names {
		text, err := extractText(filepath.Join(r.dir, name))
		if err != nil {
			r.logger.Warn("resume ingestion failed",
				zap.String("file", name),
				zap.Error(err),
			)
			failures = append(failures, Failure{FileName: name, Err: err})
			continue
		}

		docs = append(docs, Document{
			SourceID: SourceID(name),
			FileName: name,
			Text:     text,
		})
	}

	r.logger.Info("resumes ingested",
		zap.String("dir", r.dir),
		zap.Int("loaded", len(docs)),
		zap.Int("failed", len(failures)),
	)

	return docs, failures, nil
}

// SourceID derives a batch-unique identifier for a resume file. The file name
// keeps results readable; the uuid suffix guards against name collisions
// across directories.
func SourceID(fileName string) string {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return fmt.Sprintf("%s-%s", base, uuid.NewSHA1(uuid.NameSpaceURL, []byte(fileName)).String()[:8])
}

// extractText pulls the plain text out of a PDF, page by page. Pages that
// fail to decode are skipped; a document with no text at all is an error.
func extractText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for page := 1; page <= reader.NumPage(); page++ {
		p := reader.Page(page)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("no text content found in pdf")
	}
	return text, nil
}
