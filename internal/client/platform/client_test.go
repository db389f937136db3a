package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"statuswatch/internal/config"
)

func testClient(serverURL string) *Client {
	cfg := &config.PlatformConfig{
		Host:         serverURL,
		AuthMethod:   "bearer",
		ClientID:     "statuswatch",
		ClientSecret: "secret",
		Timeout:      5 * time.Second,
	}
	retry := &config.RetryConfig{MaxRetries: 0, BaseDelay: 10 * time.Millisecond}
	return NewClient(cfg, retry, zerolog.Nop())
}

// tokenHandler serves the client-credentials token endpoint.
func tokenHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse token form: %v", err)
		}
		if got := r.Form.Get("grant_type"); got != "client_credentials" {
			t.Errorf("unexpected grant_type %q", got)
		}
		if got := r.Form.Get("client_id"); got != "statuswatch" {
			t.Errorf("unexpected client_id %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}
}

func TestQueryObjects(t *testing.T) {
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		tokenHandler(t)(w, r)
	})
	mux.HandleFunc(objectQueryPath, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected authorization header %q", got)
		}

		var payload objectQueryRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode query payload: %v", err)
		}
		if payload.Request.ObjectType.ArtifactTypeID != 1000017 {
			t.Errorf("unexpected artifact type %d", payload.Request.ObjectType.ArtifactTypeID)
		}
		if payload.Length != 50 {
			t.Errorf("unexpected page length %d", payload.Length)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"TotalCount": 1,
			"Objects": []map[string]interface{}{{
				"ArtifactID": 1024,
				"FieldValues": []map[string]interface{}{
					{"Field": map[string]string{"Name": "Name"}, "Value": "Nightly import"},
					{"Field": map[string]string{"Name": "Status"}, "Value": map[string]interface{}{"Name": "Processing"}},
					{"Field": map[string]string{"Name": "Doc Count"}, "Value": 1500.0},
				},
			}},
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := testClient(server.URL)

	records, err := client.QueryObjects(context.Background(), ObjectQuery{
		ArtifactTypeID: 1000017,
		Fields:         []string{"Name", "Status", "Doc Count"},
		Length:         50,
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.ArtifactID != 1024 {
		t.Errorf("unexpected artifact id %d", rec.ArtifactID)
	}
	if got := rec.String("Name"); got != "Nightly import" {
		t.Errorf("unexpected name %q", got)
	}
	// Choice fields unwrap to their display name
	if got := rec.String("Status"); got != "Processing" {
		t.Errorf("unexpected status %q", got)
	}
	if got := rec.Float("Doc Count"); got != 1500 {
		t.Errorf("unexpected doc count %v", got)
	}
	if tokenCalls != 1 {
		t.Errorf("expected 1 token call, got %d", tokenCalls)
	}
}

func TestQueryObjectsTokenCached(t *testing.T) {
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		tokenHandler(t)(w, r)
	})
	mux.HandleFunc(objectQueryPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(objectQueryResponse{})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := testClient(server.URL)
	for i := 0; i < 3; i++ {
		if _, err := client.QueryObjects(context.Background(), ObjectQuery{ArtifactTypeID: 1}); err != nil {
			t.Fatalf("query %d: %v", i, err)
		}
	}
	if tokenCalls != 1 {
		t.Errorf("expected token fetched once, got %d calls", tokenCalls)
	}
}

func TestQueryObjectsNon200(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, tokenHandler(t))
	mux.HandleFunc(objectQueryPath, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad condition", http.StatusBadRequest)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := testClient(server.URL)
	if _, err := client.QueryObjects(context.Background(), ObjectQuery{ArtifactTypeID: 1}); err == nil {
		t.Error("expected error for 400 response")
	}
}

func TestGetAgentsBasicAuth(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(agentsPath, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "svc-monitor" || pass != "hunter2" {
			t.Errorf("unexpected basic auth %q/%q", user, pass)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]Agent{
			{ArtifactID: 1, Name: "Case Manager", Enabled: true, Status: "Running", LastActivity: "2025-03-12T11:55:00Z"},
			{ArtifactID: 2, Name: "Branding Manager", Enabled: false, Status: "Disabled"},
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := &config.PlatformConfig{
		Host:       server.URL,
		AuthMethod: "basic",
		Username:   "svc-monitor",
		Password:   "hunter2",
	}
	client := NewClient(cfg, nil, zerolog.Nop())

	agents, err := client.GetAgents(context.Background())
	if err != nil {
		t.Fatalf("get agents: %v", err)
	}
	if len(agents) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(agents))
	}
	if agents[0].Name != "Case Manager" || !agents[0].Enabled {
		t.Errorf("unexpected first agent: %+v", agents[0])
	}
}

func TestProbeHealth(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, tokenHandler(t))
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := testClient(server.URL)
	latency, err := client.ProbeHealth(context.Background(), "/api/health")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if latency <= 0 {
		t.Errorf("expected positive latency, got %v", latency)
	}
}

func TestProbeHealthNon2xx(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, tokenHandler(t))
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := testClient(server.URL)
	if _, err := client.ProbeHealth(context.Background(), "/api/health"); err == nil {
		t.Error("expected error for 503 response")
	}
}
