package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chungty/companylens/config"
	"github.com/chungty/companylens/model"
	"github.com/chungty/companylens/service"
	"github.com/gin-gonic/gin"
)

// fakeEnrichVendor returns an EnrichmentClient pointed at a stub vendor.
func fakeEnrichVendor(t *testing.T, handlerFunc http.HandlerFunc) *service.EnrichmentClient {
	t.Helper()

	server := httptest.NewServer(handlerFunc)
	t.Cleanup(server.Close)

	return service.NewEnrichmentClient(&config.EnrichConfig{
		APIURL:         server.URL,
		APIKey:         "key",
		TimeoutSeconds: 5,
	})
}

func enrichRouter(client *service.EnrichmentClient) *gin.Engine {
	h := NewEnrichHandler(client)
	router := gin.New()
	router.POST("/api/enrich", h.Enrich)
	router.GET("/api/enrich/stats", h.Stats)
	return router
}

func postEnrich(router *gin.Engine, name, domain string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(EnrichRequest{Name: name, Domain: domain})
	req := httptest.NewRequest("POST", "/api/enrich", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestEnrichEndpoint(t *testing.T) {
	client := fakeEnrichVendor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"matched":true,"company":{"employee_count":2500,"business_model":"B2B","industry":"Software","account_id":"acct-1"}}`))
	})

	w := postEnrich(enrichRouter(client), "Slack", "slack.com")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var record model.CompanyRecord
	if err := json.Unmarshal(w.Body.Bytes(), &record); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if record.Name != "Slack" || record.Domain != "slack.com" {
		t.Errorf("Expected inputs echoed, got %+v", record)
	}
	if record.EnrichmentSource != model.SourceVendorAPI {
		t.Errorf("Expected vendor_api source, got %s", record.EnrichmentSource)
	}
}

func TestEnrichEndpointUpstreamDown(t *testing.T) {
	client := fakeEnrichVendor(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	w := postEnrich(enrichRouter(client), "Slack", "slack.com")

	if w.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", w.Code)
	}
}

func TestEnrichEndpointMockRejected(t *testing.T) {
	client := fakeEnrichVendor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"matched":true,"sample":true,"company":{"industry":"Sample"}}`))
	})

	w := postEnrich(enrichRouter(client), "Fake Co", "fake.test")

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d: %s", w.Code, w.Body.String())
	}
}

func TestEnrichEndpointBadRequest(t *testing.T) {
	client := fakeEnrichVendor(t, func(w http.ResponseWriter, r *http.Request) {})
	router := enrichRouter(client)

	req := httptest.NewRequest("POST", "/api/enrich", bytes.NewReader([]byte(`{"name":"Slack"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestEnrichStatsEndpoint(t *testing.T) {
	client := fakeEnrichVendor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"matched":false}`))
	})
	router := enrichRouter(client)

	postEnrich(router, "A", "a.example")
	postEnrich(router, "B", "b.example")

	req := httptest.NewRequest("GET", "/api/enrich/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var stats map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Failed to parse stats: %v", err)
	}
	if stats[service.StatAttempts] != 2 {
		t.Errorf("Expected 2 attempts, got %d", stats[service.StatAttempts])
	}
	if stats[service.StatSuccesses] != 2 {
		t.Errorf("Expected 2 successes, got %d", stats[service.StatSuccesses])
	}
}
