// Package platform provides a client for the monitored platform's REST API.
package platform

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"statuswatch/internal/config"
)

const (
	tokenPath       = "/Relativity/Identity/connect/token"
	objectQueryPath = "/Relativity.REST/api/Relativity.Objects/workspace/-1/object/query"
	agentsPath      = "/Relativity.REST/api/relativity-environment/v1/agents"

	defaultQueryLength = 100
)

// Client is a client for the platform REST API. It handles token acquisition
// and the object-manager query surface the checks observe.
type Client struct {
	cfg        config.PlatformConfig
	httpClient *resty.Client
	logger     zerolog.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a platform API client.
func NewClient(cfg *config.PlatformConfig, retryCfg *config.RetryConfig, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	retry := config.RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
	}
	if retryCfg != nil {
		retry = *retryCfg
	}

	httpClient := resty.New().
		SetBaseURL(cfg.Host).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-CSRF-Header", "-").
		SetRetryCount(retry.MaxRetries).
		SetRetryWaitTime(retry.BaseDelay).
		SetRetryMaxWaitTime(retry.BaseDelay * 8).
		AddRetryCondition(retryCondition)

	return &Client{
		cfg:        *cfg,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "platform-client").Logger(),
	}
}

// retryCondition determines whether a request should be retried.
// Only retry on timeout, 5xx errors, or connection failures.
// Do not retry on 4xx errors.
func retryCondition(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp != nil && resp.StatusCode() >= 500 {
		return true
	}
	return false
}

// bearerToken returns a cached bearer token, fetching a fresh one via the
// client-credentials flow when the cache is empty or near expiry.
func (c *Client) bearerToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Until(c.tokenExpiry) > 30*time.Second {
		return c.token, nil
	}

	var result tokenResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"grant_type":    "client_credentials",
			"scope":         "SystemUserInfo",
			"client_id":     c.cfg.ClientID,
			"client_secret": c.cfg.ClientSecret,
		}).
		SetResult(&result).
		Post(tokenPath)
	if err != nil {
		return "", fmt.Errorf("failed to fetch bearer token: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned empty access token")
	}

	c.token = result.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn) * time.Second)
	c.logger.Debug().Msg("bearer token refreshed")
	return c.token, nil
}

// authorize attaches credentials to a request according to the configured
// auth method.
func (c *Client) authorize(ctx context.Context, req *resty.Request) error {
	if c.cfg.AuthMethod == "basic" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
		return nil
	}

	token, err := c.bearerToken(ctx)
	if err != nil {
		return err
	}
	req.SetAuthToken(token)
	return nil
}

// QueryObjects runs an object-manager query and returns the decoded records.
func (c *Client) QueryObjects(ctx context.Context, query ObjectQuery) ([]Record, error) {
	length := query.Length
	if length <= 0 {
		length = defaultQueryLength
	}

	fields := make([]fieldRef, 0, len(query.Fields))
	for _, name := range query.Fields {
		fields = append(fields, fieldRef{Name: name})
	}

	payload := objectQueryRequest{
		Request: objectQueryInner{
			ObjectType: objectType{ArtifactTypeID: query.ArtifactTypeID},
			Fields:     fields,
			Condition:  query.Condition,
		},
		Start:  0,
		Length: length,
	}
	if query.SortField != "" {
		payload.Request.Sorts = []fieldSort{{
			FieldIdentifier: fieldRef{Name: query.SortField},
			Direction:       "Descending",
		}}
	}

	var result objectQueryResponse
	req := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&result)
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := req.Post(objectQueryPath)
	if err != nil {
		c.logger.Error().Err(err).Int("artifact_type", query.ArtifactTypeID).Msg("object query failed")
		return nil, fmt.Errorf("object query failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		c.logger.Error().
			Int("status_code", resp.StatusCode()).
			Int("artifact_type", query.ArtifactTypeID).
			Str("body", string(resp.Body())).
			Msg("object query returned non-200 status")
		return nil, fmt.Errorf("object query returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	records := make([]Record, 0, len(result.Objects))
	for _, obj := range result.Objects {
		records = append(records, obj.toRecord())
	}

	c.logger.Debug().
		Int("artifact_type", query.ArtifactTypeID).
		Int("count", len(records)).
		Msg("object query completed")
	return records, nil
}

// GetAgents retrieves all environment agents.
func (c *Client) GetAgents(ctx context.Context) ([]Agent, error) {
	var agents []Agent
	req := c.httpClient.R().
		SetContext(ctx).
		SetResult(&agents)
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := req.Get(agentsPath)
	if err != nil {
		c.logger.Error().Err(err).Msg("agents query failed")
		return nil, fmt.Errorf("agents query failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		c.logger.Error().
			Int("status_code", resp.StatusCode()).
			Str("body", string(resp.Body())).
			Msg("agents API returned non-200 status")
		return nil, fmt.Errorf("agents API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	c.logger.Debug().Int("count", len(agents)).Msg("agents query completed")
	return agents, nil
}

// ProbeHealth calls an API health endpoint and returns the observed latency.
// Non-2xx responses are reported through the error.
func (c *Client) ProbeHealth(ctx context.Context, path string) (time.Duration, error) {
	req := c.httpClient.R().SetContext(ctx)
	if err := c.authorize(ctx, req); err != nil {
		return 0, err
	}

	start := time.Now()
	resp, err := req.Get(path)
	latency := time.Since(start)
	if err != nil {
		return latency, fmt.Errorf("health probe failed: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return latency, fmt.Errorf("health endpoint returned status %d", resp.StatusCode())
	}

	c.logger.Debug().Dur("latency", latency).Str("path", path).Msg("health probe completed")
	return latency, nil
}
