package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/chungty/companylens/config"
)

// WorkspaceClient talks to the workspace/database vendor API. It is only
// used by the debug surface: credential verification and schema dumps.
type WorkspaceClient struct {
	config     *config.WorkspaceConfig
	httpClient *http.Client
}

// PropertyDescriptor describes one field of a workspace database.
type PropertyDescriptor struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// DatabaseSchema is the schema document of a workspace database.
type DatabaseSchema struct {
	Object     string                        `json:"object"`
	ID         string                        `json:"id"`
	Title      string                        `json:"title"`
	Properties map[string]PropertyDescriptor `json:"properties"`
}

// Identity is the authenticated principal behind the workspace token.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"` // bot, person
}

func NewWorkspaceClient(cfg *config.WorkspaceConfig) *WorkspaceClient {
	return &WorkspaceClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

// VerifyCredentials checks that the configured token is accepted by the
// vendor and returns the identity it belongs to.
func (c *WorkspaceClient) VerifyCredentials(ctx context.Context) (*Identity, error) {
	body, err := c.get(ctx, "/v1/users/me")
	if err != nil {
		return nil, err
	}

	var identity Identity
	if err := json.Unmarshal(body, &identity); err != nil {
		return nil, fmt.Errorf("failed to parse identity response: %w", err)
	}

	return &identity, nil
}

// GetDatabaseSchema fetches the schema document of the given database: its
// properties map of field name to field-type descriptor.
func (c *WorkspaceClient) GetDatabaseSchema(ctx context.Context, databaseID string) (*DatabaseSchema, error) {
	if databaseID == "" {
		return nil, fmt.Errorf("database id is required")
	}

	body, err := c.get(ctx, "/v1/databases/"+databaseID)
	if err != nil {
		return nil, err
	}

	var schema DatabaseSchema
	if err := json.Unmarshal(body, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse schema response: %w", err)
	}

	return &schema, nil
}

func (c *WorkspaceClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.APIURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.APIToken)
	req.Header.Set("X-API-Version", c.config.APIVersion)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Endpoint: "workspace", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Endpoint: "workspace", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{
			Endpoint: "workspace",
			Status:   resp.StatusCode,
			Message:  strings.TrimSpace(string(body)),
		}
	}

	return body, nil
}

// TypeCounts summarizes the schema as a field-type histogram, the form the
// smoke report prints.
func (s *DatabaseSchema) TypeCounts() map[string]int {
	counts := make(map[string]int)
	for _, prop := range s.Properties {
		counts[prop.Type]++
	}
	return counts
}
