// Package cli holds the client side of the botctl commands: a small HTTP
// client for a running `botctl serve` and the formatting of its answers.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"botctl/internal/config"
	"botctl/internal/orchestrator"
	"botctl/internal/tool"
)

// Client talks to the HTTP API of a running server.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// DetectEndpoint builds the API base URL from the layered configuration.
func DetectEndpoint() string {
	cfg, err := config.LoadConfig()
	if err != nil {
		// Use default if config cannot be loaded
		cfg = config.GetDefaultConfig()
	}
	host := cfg.Server.Host
	if host == "" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, fmt.Sprintf("%d", cfg.Server.Port))
}

// NewClient creates a client for the auto-detected endpoint.
func NewClient() *Client {
	return NewClientWithEndpoint(DetectEndpoint())
}

// NewClientWithEndpoint creates a client for a specific base URL.
func NewClientWithEndpoint(endpoint string) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Endpoint returns the base URL in use.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// RunScript posts a control request and returns the decoded answer and its
// HTTP status.
func (c *Client) RunScript(ctx context.Context, action, command string) (orchestrator.Result, int, error) {
	payload, err := json.Marshal(map[string]string{"action": action, "command": command})
	if err != nil {
		return orchestrator.Result{}, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/runScript", bytes.NewReader(payload))
	if err != nil {
		return orchestrator.Result{}, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	var result orchestrator.Result
	code, err := c.do(req, &result)
	return result, code, err
}

// Status returns the state of every tool kind.
func (c *Client) Status(ctx context.Context) ([]orchestrator.ToolStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/api/runScript/status", nil)
	if err != nil {
		return nil, err
	}
	var statuses []orchestrator.ToolStatus
	if _, err := c.do(req, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

// Output returns the captured stdout of the current or last run of kind.
func (c *Client) Output(ctx context.Context, kind tool.Kind) (orchestrator.Result, int, error) {
	u := c.endpoint + "/api/runScript/output?" + url.Values{"kind": {string(kind)}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return orchestrator.Result{}, 0, err
	}
	var result orchestrator.Result
	code, err := c.do(req, &result)
	return result, code, err
}

func (c *Client) do(req *http.Request, into interface{}) (int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("botctl server not reachable at %s (is 'botctl serve' running?): %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return resp.StatusCode, fmt.Errorf("decoding %s response (HTTP %d): %w", req.URL.Path, resp.StatusCode, err)
	}
	return resp.StatusCode, nil
}
