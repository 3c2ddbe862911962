package service

import (
	"fmt"
)

// UpstreamError reports a failed vendor call: either a transport failure
// (Status 0) or a non-2xx response. It is never retried here; callers decide
// what to do with it.
type UpstreamError struct {
	Endpoint string
	Status   int
	Message  string
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("upstream %s returned %d: %s", e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("upstream %s unreachable: %v", e.Endpoint, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// MockDataError is an explicit refusal to pass on placeholder data. The
// vendor flagged the response as sample/synthetic and returning it as a real
// record would mislead callers.
type MockDataError struct {
	Domain string
	Reason string
}

func (e *MockDataError) Error() string {
	return fmt.Sprintf("rejected mock data for %s: %s", e.Domain, e.Reason)
}
