package model

import (
	"time"
)

// CheckStatus constants
const (
	CheckPassed  = "passed"
	CheckFailed  = "failed"
	CheckSkipped = "skipped"
)

// CheckResult is the outcome of one smoke check within a run.
type CheckResult struct {
	Name     string `json:"name"`
	Status   string `json:"status"` // passed, failed, skipped
	Detail   string `json:"detail,omitempty"`
	Error    string `json:"error,omitempty"`
	Duration int64  `json:"duration_ms"`
}

// CheckReport collects the results of one smoke-test run.
type CheckReport struct {
	ID         string        `json:"id"`
	Checks     []CheckResult `json:"checks"`
	Passed     bool          `json:"passed"`
	ArchiveURL string        `json:"archive_url,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Failures returns the names of all failed checks.
func (r *CheckReport) Failures() []string {
	var failed []string
	for _, c := range r.Checks {
		if c.Status == CheckFailed {
			failed = append(failed, c.Name)
		}
	}
	return failed
}
