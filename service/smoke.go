package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chungty/companylens/config"
	"github.com/chungty/companylens/model"
	"github.com/chungty/companylens/pkg/logger"
	"github.com/google/uuid"
)

// CheckRunner runs the smoke-test suite against both vendor APIs: verify
// the workspace credentials, dump the configured database schema, then
// spot-check enrichment for the configured companies. Failures are captured
// per check and the run continues; this is the one place broad error
// handling is acceptable, since the whole point is a diagnostic report.
type CheckRunner struct {
	enrich     *EnrichmentClient
	workspace  *WorkspaceClient
	smoke      *config.SmokeConfig
	databaseID string
}

func NewCheckRunner(enrich *EnrichmentClient, workspace *WorkspaceClient, cfg *config.Config) *CheckRunner {
	return &CheckRunner{
		enrich:     enrich,
		workspace:  workspace,
		smoke:      &cfg.Smoke,
		databaseID: cfg.Workspace.DatabaseID,
	}
}

// Run executes every check and returns the collected report.
func (r *CheckRunner) Run(ctx context.Context) *model.CheckReport {
	report := &model.CheckReport{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
	}

	report.Checks = append(report.Checks, r.checkCredentials(ctx))
	report.Checks = append(report.Checks, r.checkSchema(ctx))
	for _, spot := range r.smoke.SpotChecks {
		report.Checks = append(report.Checks, r.checkEnrichment(ctx, spot))
	}

	report.FinishedAt = time.Now()
	report.Passed = len(report.Failures()) == 0

	logger.Info(ctx, "smoke run finished",
		"run_id", report.ID,
		"checks", len(report.Checks),
		"passed", report.Passed,
	)
	return report
}

func (r *CheckRunner) checkCredentials(ctx context.Context) model.CheckResult {
	start := time.Now()

	identity, err := r.workspace.VerifyCredentials(ctx)
	if err != nil {
		return failed("workspace_credentials", start, err)
	}

	return passed("workspace_credentials", start,
		fmt.Sprintf("authenticated as %s (%s)", identity.Name, identity.Type))
}

func (r *CheckRunner) checkSchema(ctx context.Context) model.CheckResult {
	start := time.Now()

	schema, err := r.workspace.GetDatabaseSchema(ctx, r.databaseID)
	if err != nil {
		return failed("database_schema", start, err)
	}

	detail := fmt.Sprintf("%d properties", len(schema.Properties))
	for propType, count := range schema.TypeCounts() {
		detail += fmt.Sprintf(", %s=%d", propType, count)
	}
	return passed("database_schema", start, detail)
}

func (r *CheckRunner) checkEnrichment(ctx context.Context, spot config.SpotCheck) model.CheckResult {
	name := "enrich:" + spot.Domain
	start := time.Now()

	record, err := r.enrich.EnrichCompany(ctx, spot.Name, spot.Domain)
	if err != nil {
		var mockErr *MockDataError
		if errors.As(err, &mockErr) {
			// A mock rejection means the filter works; for a domain we do not
			// expect to resolve that is the correct outcome.
			if !spot.ExpectResolved {
				return passed(name, start, "mock data correctly rejected")
			}
		}
		if !spot.ExpectResolved {
			var upstreamErr *UpstreamError
			if errors.As(err, &upstreamErr) {
				return passed(name, start, "upstream has no data, as expected")
			}
		}
		return failed(name, start, err)
	}

	if !spot.ExpectResolved {
		if record.Resolved() {
			return failed(name, start, fmt.Errorf("expected unresolved, got a %s record", record.EnrichmentSource))
		}
		return passed(name, start, "unresolved, as expected")
	}

	if !record.Resolved() {
		return failed(name, start, fmt.Errorf("expected a real match, got %s", record.EnrichmentSource))
	}
	if record.EmployeeCount == nil || *record.EmployeeCount <= 0 {
		return failed(name, start, fmt.Errorf("expected a positive employee count"))
	}
	if record.Industry == "" {
		return failed(name, start, fmt.Errorf("expected a non-empty industry"))
	}

	return passed(name, start,
		fmt.Sprintf("%d employees, %s, %s", *record.EmployeeCount, record.Industry, record.BusinessModel))
}

func passed(name string, start time.Time, detail string) model.CheckResult {
	return model.CheckResult{
		Name:     name,
		Status:   model.CheckPassed,
		Detail:   detail,
		Duration: time.Since(start).Milliseconds(),
	}
}

func failed(name string, start time.Time, err error) model.CheckResult {
	return model.CheckResult{
		Name:     name,
		Status:   model.CheckFailed,
		Error:    err.Error(),
		Duration: time.Since(start).Milliseconds(),
	}
}
