package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/chungty/companylens/config"
	"github.com/chungty/companylens/model"
	"github.com/chungty/companylens/pkg/logger"
)

// Stat counter names reported by Stats.
const (
	StatAttempts       = "attempts"
	StatSuccesses      = "successes"
	StatFailures       = "failures"
	StatMockRejections = "mock_rejections"
	StatUnresolved     = "unresolved"
)

// EnrichmentClient resolves company metadata from the enrichment vendor.
// One lookup per call, no retries, no caching. Safe for concurrent use.
type EnrichmentClient struct {
	config     *config.EnrichConfig
	httpClient *http.Client

	mu    sync.Mutex
	stats map[string]int
}

// vendorCompany is the company object inside the vendor's enrich response.
type vendorCompany struct {
	Name          string `json:"name"`
	Domain        string `json:"domain"`
	EmployeeCount *int   `json:"employee_count"`
	BusinessModel string `json:"business_model"`
	Industry      string `json:"industry"`
	AccountID     string `json:"account_id"`
	RecordQuality string `json:"record_quality"`
}

// vendorEnrichResponse is the enrich endpoint's response envelope.
type vendorEnrichResponse struct {
	Matched bool           `json:"matched"`
	Sample  bool           `json:"sample"`
	Company *vendorCompany `json:"company,omitempty"`
}

func NewEnrichmentClient(cfg *config.EnrichConfig) *EnrichmentClient {
	return &EnrichmentClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
		stats: make(map[string]int),
	}
}

// EnrichCompany looks up a company by domain and maps the vendor response
// into a CompanyRecord. Name and Domain on the returned record always echo
// the inputs. When the vendor has no data for the domain the record comes
// back with EnrichmentSource set to unresolved and no business fields; data
// the vendor flags as sample/placeholder is rejected with a MockDataError
// instead of being returned.
func (c *EnrichmentClient) EnrichCompany(ctx context.Context, name, domain string) (*model.CompanyRecord, error) {
	if name == "" {
		return nil, fmt.Errorf("company name is required")
	}
	if domain == "" {
		return nil, fmt.Errorf("company domain is required")
	}
	if strings.Contains(domain, "://") || strings.Contains(domain, "/") {
		return nil, fmt.Errorf("domain must be a bare hostname, got %q", domain)
	}

	c.count(StatAttempts)

	resp, err := c.lookup(ctx, domain)
	if err != nil {
		c.count(StatFailures)
		return nil, err
	}

	if resp.Sample || (resp.Company != nil && resp.Company.RecordQuality == "placeholder") {
		c.count(StatFailures)
		c.count(StatMockRejections)
		reason := "vendor flagged response as sample data"
		if !resp.Sample {
			reason = "vendor record quality is placeholder"
		}
		logger.Warn(ctx, "rejected mock enrichment data", "domain", domain, "reason", reason)
		return nil, &MockDataError{Domain: domain, Reason: reason}
	}

	record := &model.CompanyRecord{
		Name:   name,
		Domain: domain,
	}

	if !resp.Matched || resp.Company == nil {
		record.EnrichmentSource = model.SourceUnresolved
		c.count(StatSuccesses)
		c.count(StatUnresolved)
		logger.Debug(ctx, "no upstream match for domain", "domain", domain)
		return record, nil
	}

	record.EnrichmentSource = model.SourceVendorAPI
	record.BusinessModel = resp.Company.BusinessModel
	record.Industry = resp.Company.Industry
	record.ExternalAccountID = resp.Company.AccountID
	if resp.Company.EmployeeCount != nil && *resp.Company.EmployeeCount >= 0 {
		count := *resp.Company.EmployeeCount
		record.EmployeeCount = &count
	}

	c.count(StatSuccesses)
	return record, nil
}

// lookup issues the single authenticated GET to the vendor.
func (c *EnrichmentClient) lookup(ctx context.Context, domain string) (*vendorEnrichResponse, error) {
	endpoint := c.config.APIURL + "/v2/companies/enrich?domain=" + url.QueryEscape(domain)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Endpoint: "enrich", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Endpoint: "enrich", Err: err}
	}

	// The vendor answers 404 for domains it has never seen. That is a
	// legitimate no-match, not an outage.
	if resp.StatusCode == http.StatusNotFound {
		return &vendorEnrichResponse{Matched: false}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{
			Endpoint: "enrich",
			Status:   resp.StatusCode,
			Message:  strings.TrimSpace(string(body)),
		}
	}

	var result vendorEnrichResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w, body: %s", err, string(body))
	}

	return &result, nil
}

// Stats returns a snapshot of the call counters.
func (c *EnrichmentClient) Stats() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make(map[string]int, len(c.stats))
	for k, v := range c.stats {
		snapshot[k] = v
	}
	return snapshot
}

func (c *EnrichmentClient) count(name string) {
	c.mu.Lock()
	c.stats[name]++
	c.mu.Unlock()
}
