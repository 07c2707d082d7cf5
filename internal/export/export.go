// Package export writes a ranked batch to an Excel workbook: one sheet for
// the ranking, one for unscored candidates and excluded documents.
package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Devanath2003/HR-Agent/internal/pipeline"
)

const (
	rankedSheet   = "Ranked Candidates"
	excludedSheet = "Unscored & Excluded"
)

// WriteReport saves the submit result as an .xlsx workbook.
func WriteReport(result *pipeline.SubmitResult, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath += ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	f.SetSheetName("Sheet1", rankedSheet)
	if _, err := f.NewSheet(excludedSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	if err := writeRanked(f, result); err != nil {
		return fmt.Errorf("write ranked sheet: %w", err)
	}
	if err := writeExcluded(f, result); err != nil {
		return fmt.Errorf("write excluded sheet: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func writeRanked(f *excelize.File, result *pipeline.SubmitResult) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	headers := []string{"Rank", "Candidate", "Email", "Score", "Rationale"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(rankedSheet, cell, h); err != nil {
			return err
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, 1)
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(rankedSheet, first, last, headerStyle); err != nil {
		return err
	}

	if err := f.SetColWidth(rankedSheet, "B", "C", 30); err != nil {
		return err
	}
	if err := f.SetColWidth(rankedSheet, "E", "E", 80); err != nil {
		return err
	}

	for i, sc := range result.Batch.Entries() {
		row := i + 2
		name := sc.Record.Name
		if name == "" {
			name = sc.Record.ID
		}
		values := []any{
			i + 1,
			name,
			sc.Record.Contact.Email,
			fmt.Sprintf("%.3f", sc.Score),
			strings.Join(sc.Rationale, "; "),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(rankedSheet, cell, v); err != nil {
				return err
			}
		}
	}

	return nil
}

func writeExcluded(f *excelize.File, result *pipeline.SubmitResult) error {
	if err := f.SetCellValue(excludedSheet, "A1", "Kind"); err != nil {
		return err
	}
	if err := f.SetCellValue(excludedSheet, "B1", "Source"); err != nil {
		return err
	}
	if err := f.SetCellValue(excludedSheet, "C1", "Reason"); err != nil {
		return err
	}
	if err := f.SetColWidth(excludedSheet, "B", "C", 50); err != nil {
		return err
	}

	row := 2
	for _, u := range result.Unscored {
		if err := setRow(f, row, "unscored", u.Record.ID, u.Reason); err != nil {
			return err
		}
		row++
	}
	for _, ef := range result.ExtractionFailures {
		if err := setRow(f, row, "extraction failure", ef.FileName, ef.Err.Error()); err != nil {
			return err
		}
		row++
	}

	if err := f.SetCellValue(excludedSheet, fmt.Sprintf("A%d", row+1), "Generated:"); err != nil {
		return err
	}
	return f.SetCellValue(excludedSheet, fmt.Sprintf("B%d", row+1), time.Now().Format("2006-01-02 15:04:05"))
}

func setRow(f *excelize.File, row int, kind, source, reason string) error {
	for i, v := range []string{kind, source, reason} {
		if err := f.SetCellValue(excludedSheet, fmt.Sprintf("%c%d", 'A'+i, row), v); err != nil {
			return err
		}
	}
	return nil
}
