package model

import (
	"testing"
	"time"
)

func TestCompanyRecordResolved(t *testing.T) {
	count := 500
	record := &CompanyRecord{
		Name:              "Slack",
		Domain:            "slack.com",
		EmployeeCount:     &count,
		BusinessModel:     "B2B",
		Industry:          "Software",
		ExternalAccountID: "acct-123",
		EnrichmentSource:  SourceVendorAPI,
	}

	if !record.Resolved() {
		t.Error("Expected vendor_api record to be resolved")
	}
	if record.Name != "Slack" || record.Domain != "slack.com" {
		t.Errorf("Expected inputs to be echoed, got name=%q domain=%q", record.Name, record.Domain)
	}
}

func TestCompanyRecordUnresolved(t *testing.T) {
	record := &CompanyRecord{
		Name:             "Unknown Co",
		Domain:           "nonexistent-domain-xyz.test",
		EnrichmentSource: SourceUnresolved,
	}

	if record.Resolved() {
		t.Error("Expected unresolved record to not be resolved")
	}
	if record.EmployeeCount != nil {
		t.Error("Expected no employee count on unresolved record")
	}
}

func TestCheckReportFailures(t *testing.T) {
	report := &CheckReport{
		ID: "run-1",
		Checks: []CheckResult{
			{Name: "workspace_credentials", Status: CheckPassed},
			{Name: "database_schema", Status: CheckFailed, Error: "401"},
			{Name: "enrich_spot_checks", Status: CheckSkipped},
		},
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
	}

	failed := report.Failures()
	if len(failed) != 1 {
		t.Fatalf("Expected 1 failure, got %d", len(failed))
	}
	if failed[0] != "database_schema" {
		t.Errorf("Expected 'database_schema', got '%s'", failed[0])
	}
}
