package excel

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"statuswatch/internal/model"
)

func createTestResults() []*model.RunResult {
	ts := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	return []*model.RunResult{
		{
			Check:     "jobs",
			Level:     model.SeverityCritical,
			Analyzed:  12,
			Summary:   "CRITICAL: job \"processing-1\" in failed state \"run failed\"",
			Timestamp: ts,
			Findings: []model.Finding{
				{ObservationID: "processing-1", Category: "job", Severity: model.SeverityCritical, Reason: "failed state"},
				{ObservationID: "review-2", Category: "review", Severity: model.SeverityWarning, Reason: "error rate 6.0%"},
			},
		},
		{
			Check:     "agents",
			Level:     model.SeverityOK,
			Analyzed:  8,
			Summary:   "8 items analyzed, all healthy",
			Timestamp: ts,
		},
	}
}

func TestNewWriter(t *testing.T) {
	if w := NewWriter(nil); w.timezone != time.UTC {
		t.Errorf("expected UTC default, got %v", w.timezone)
	}

	chicago, _ := time.LoadLocation("America/Chicago")
	if w := NewWriter(chicago); w.timezone != chicago {
		t.Errorf("expected custom timezone, got %v", w.timezone)
	}
}

func TestWriterWriteEmptyResults(t *testing.T) {
	w := NewWriter(nil)
	if err := w.Write(nil, "test.xlsx"); err == nil {
		t.Error("expected error for empty results")
	}
}

func TestWriterWrite(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "report.xlsx")

	w := NewWriter(nil)
	if err := w.Write(createTestResults(), outputPath); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := os.Stat(outputPath); err != nil {
		t.Fatalf("output file missing: %v", err)
	}

	f, err := excelize.OpenFile(outputPath)
	if err != nil {
		t.Fatalf("open generated file: %v", err)
	}
	defer f.Close()

	// Default sheet removed, both report sheets present
	sheets := f.GetSheetList()
	hasSummary, hasFindings := false, false
	for _, name := range sheets {
		switch name {
		case sheetSummary:
			hasSummary = true
		case sheetFindings:
			hasFindings = true
		case defaultSheet:
			t.Error("default sheet should be removed")
		}
	}
	if !hasSummary || !hasFindings {
		t.Fatalf("missing report sheets, got %v", sheets)
	}

	// Summary rows, one per check
	check, _ := f.GetCellValue(sheetSummary, "A2")
	if check != "jobs" {
		t.Errorf("unexpected first summary row: %q", check)
	}
	level, _ := f.GetCellValue(sheetSummary, "B2")
	if level != "CRITICAL" {
		t.Errorf("unexpected level cell: %q", level)
	}
	level2, _ := f.GetCellValue(sheetSummary, "B3")
	if level2 != "OK" {
		t.Errorf("unexpected second level cell: %q", level2)
	}

	// Findings ordered worst first
	sev1, _ := f.GetCellValue(sheetFindings, "B2")
	if sev1 != "CRITICAL" {
		t.Errorf("unexpected first finding severity: %q", sev1)
	}
	sev2, _ := f.GetCellValue(sheetFindings, "B3")
	if sev2 != "WARNING" {
		t.Errorf("unexpected second finding severity: %q", sev2)
	}
}

func TestWriterWriteAppendsExtension(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(nil)
	if err := w.Write(createTestResults(), filepath.Join(dir, "report")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "report.xlsx")); err != nil {
		t.Errorf("expected .xlsx suffix appended: %v", err)
	}
}
