// Package excel provides Excel report generation for statuswatch runs.
// The report gives operators an offline record of what each check observed:
// one summary sheet of run results and one findings sheet across all checks.
package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"statuswatch/internal/model"
)

const (
	sheetSummary  = "Summary"
	sheetFindings = "Findings"

	// Default sheet to remove
	defaultSheet = "Sheet1"

	// Colors for severity formatting (RGB without #)
	colorWarningBg  = "FFEB9C"
	colorWarningFg  = "9C6500"
	colorHighBg     = "FCD5B4"
	colorHighFg     = "974706"
	colorCriticalBg = "FFC7CE"
	colorCriticalFg = "9C0006"
	colorHeaderBg   = "4472C4"
	colorHeaderFg   = "FFFFFF"
	colorOKBg       = "C6EFCE"
	colorOKFg       = "006100"
)

// Writer generates .xlsx run reports.
type Writer struct {
	timezone *time.Location
}

// NewWriter creates an Excel report writer. A nil timezone defaults to UTC.
func NewWriter(timezone *time.Location) *Writer {
	if timezone == nil {
		timezone = time.UTC
	}
	return &Writer{timezone: timezone}
}

// Write generates an Excel report covering the given run results.
func (w *Writer) Write(results []*model.RunResult, outputPath string) error {
	if len(results) == 0 {
		return fmt.Errorf("no run results to report")
	}

	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := w.createSummarySheet(f, results); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := w.createFindingsSheet(f, results); err != nil {
		return fmt.Errorf("failed to create findings sheet: %w", err)
	}

	if err := f.DeleteSheet(defaultSheet); err != nil {
		return fmt.Errorf("failed to delete default sheet: %w", err)
	}

	idx, _ := f.GetSheetIndex(sheetSummary)
	f.SetActiveSheet(idx)

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}

	return nil
}

// createSummarySheet writes one row per check run.
func (w *Writer) createSummarySheet(f *excelize.File, results []*model.RunResult) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return err
	}

	headers := []string{"Check", "Level", "Critical", "High", "Warning", "Analyzed", "Summary", "Timestamp"}
	if err := w.writeHeader(f, sheetSummary, headers); err != nil {
		return err
	}

	for i, result := range results {
		row := i + 2
		counts := result.Counts()
		cells := []interface{}{
			result.Check,
			result.Level.String(),
			counts.Critical,
			counts.High,
			counts.Warning,
			result.Analyzed,
			result.Summary,
			result.Timestamp.In(w.timezone).Format("2006-01-02 15:04:05"),
		}
		if err := w.writeRow(f, sheetSummary, row, cells); err != nil {
			return err
		}
		if err := w.styleSeverityCell(f, sheetSummary, fmt.Sprintf("B%d", row), result.Level); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(sheetSummary, "A", "F", 12)
	_ = f.SetColWidth(sheetSummary, "G", "G", 60)
	_ = f.SetColWidth(sheetSummary, "H", "H", 20)
	return nil
}

// createFindingsSheet writes one row per finding across all checks, in
// bucket order (CRITICAL, HIGH, WARNING) per check.
func (w *Writer) createFindingsSheet(f *excelize.File, results []*model.RunResult) error {
	if _, err := f.NewSheet(sheetFindings); err != nil {
		return err
	}

	headers := []string{"Check", "Severity", "Category", "Observation", "Reason"}
	if err := w.writeHeader(f, sheetFindings, headers); err != nil {
		return err
	}

	row := 2
	for _, result := range results {
		for _, sev := range []model.Severity{model.SeverityCritical, model.SeverityHigh, model.SeverityWarning} {
			for _, finding := range result.BySeverity(sev) {
				cells := []interface{}{
					result.Check,
					finding.Severity.String(),
					finding.Category,
					finding.ObservationID,
					finding.Reason,
				}
				if err := w.writeRow(f, sheetFindings, row, cells); err != nil {
					return err
				}
				if err := w.styleSeverityCell(f, sheetFindings, fmt.Sprintf("B%d", row), finding.Severity); err != nil {
					return err
				}
				row++
			}
		}
	}

	_ = f.SetColWidth(sheetFindings, "A", "D", 15)
	_ = f.SetColWidth(sheetFindings, "E", "E", 70)
	return nil
}

// writeHeader writes a styled header row.
func (w *Writer) writeHeader(f *excelize.File, sheet string, headers []string) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: colorHeaderFg},
		Fill: excelize.Fill{Type: "pattern", Color: []string{colorHeaderBg}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

// writeRow writes one data row starting at column A.
func (w *Writer) writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	for i, v := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// styleSeverityCell colors a severity cell by level.
func (w *Writer) styleSeverityCell(f *excelize.File, sheet, cell string, sev model.Severity) error {
	var bg, fg string
	switch sev {
	case model.SeverityCritical:
		bg, fg = colorCriticalBg, colorCriticalFg
	case model.SeverityHigh:
		bg, fg = colorHighBg, colorHighFg
	case model.SeverityWarning:
		bg, fg = colorWarningBg, colorWarningFg
	default:
		bg, fg = colorOKBg, colorOKFg
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: fg},
		Fill: excelize.Fill{Type: "pattern", Color: []string{bg}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell, cell, style)
}
