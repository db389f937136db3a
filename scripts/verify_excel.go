//go:build ignore
// +build ignore

// This script generates a sample Excel report for manual verification.
// Run with: go run scripts/verify_excel.go
package main

import (
	"fmt"
	"os"
	"time"

	"statuswatch/internal/model"
	"statuswatch/internal/report/excel"
)

func main() {
	ts := time.Now()
	results := []*model.RunResult{
		{
			Check:     "jobs",
			Level:     model.SeverityCritical,
			Analyzed:  14,
			Summary:   `CRITICAL: job "processing-1024" in failed state "run failed"; stuck in running state: imaging-88 for 9.2h`,
			Timestamp: ts,
			Findings: []model.Finding{
				{ObservationID: "processing-1024", Category: "job", Severity: model.SeverityCritical, Reason: `job "processing-1024" in failed state "run failed"`},
				{ObservationID: "imaging-88", Category: "job", Severity: model.SeverityHigh, Reason: "stuck in running state: imaging-88 for 9.2h"},
				{ObservationID: "review-301", Category: "review", Severity: model.SeverityWarning, Reason: "error rate 6.5% on review-301"},
			},
		},
		{
			Check:     "agents",
			Level:     model.SeverityWarning,
			Analyzed:  22,
			Summary:   "WARNING: unhealthy agents: 1 on agent-fleet",
			Timestamp: ts,
			Findings: []model.Finding{
				{ObservationID: "agent-fleet", Category: "agent-fleet", Severity: model.SeverityWarning, Reason: "unhealthy agents: 1 on agent-fleet"},
			},
		},
		{
			Check:     "audit",
			Level:     model.SeverityOK,
			Analyzed:  120,
			Summary:   "120 items analyzed, all healthy",
			Timestamp: ts,
		},
		{
			Check:     "api",
			Level:     model.SeverityOK,
			Analyzed:  1,
			Summary:   "1 items analyzed, all healthy",
			Timestamp: ts,
		},
	}

	w := excel.NewWriter(nil)
	path := "sample_statuswatch_report.xlsx"
	if err := w.Write(results, path); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	fmt.Println("✅ wrote", path)
}
