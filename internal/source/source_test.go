package source

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"statuswatch/internal/client/platform"
	"statuswatch/internal/config"
)

const (
	testTokenPath  = "/Relativity/Identity/connect/token"
	testQueryPath  = "/Relativity.REST/api/Relativity.Objects/workspace/-1/object/query"
	testAgentsPath = "/Relativity.REST/api/relativity-environment/v1/agents"
)

// objectsByType maps an artifact type ID to the objects the fake platform
// returns for it.
type objectsByType map[int][]map[string]interface{}

func fieldValue(name string, value interface{}) map[string]interface{} {
	return map[string]interface{}{
		"Field": map[string]string{"Name": name},
		"Value": value,
	}
}

// newFakePlatform starts a platform API stub and returns a client for it.
func newFakePlatform(t *testing.T, objects objectsByType, agents []platform.Agent) *platform.Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc(testTokenPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-token",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc(testQueryPath, func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Request struct {
				ObjectType struct {
					ArtifactTypeID int `json:"ArtifactTypeID"`
				} `json:"objectType"`
			} `json:"request"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode query: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"Objects": objects[payload.Request.ObjectType.ArtifactTypeID],
		})
	})
	mux.HandleFunc(testAgentsPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(agents)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg := &config.PlatformConfig{
		Host:         server.URL,
		AuthMethod:   "bearer",
		ClientID:     "statuswatch",
		ClientSecret: "secret",
		Timeout:      5 * time.Second,
	}
	retry := &config.RetryConfig{MaxRetries: 0, BaseDelay: 10 * time.Millisecond}
	return platform.NewClient(cfg, retry, zerolog.Nop())
}
