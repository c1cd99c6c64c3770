// Package sdk is a small client for the learnhub HTTP API: documents,
// storage and accounts. Every call takes a context and is bounded by the
// client's request timeout.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/localnerve/jam-build-learnhub/internal/config"
)

// APIVersion is sent with every request
const APIVersion = "1.0.0"

// Client talks to one project on a learnhub endpoint
type Client struct {
	endpoint  string
	projectID string
	http      *http.Client

	mu    sync.RWMutex
	token string
}

// New creates a client from the client configuration
func New(cfg *config.ClientConfig) *Client {
	return NewClient(cfg.Endpoint, cfg.ProjectID, cfg.Timeout)
}

// NewClient creates a client for endpoint (the API root, e.g. https://host/api).
// A zero timeout leaves requests bounded only by their context.
func NewClient(endpoint, projectID string, timeout time.Duration) *Client {
	return &Client{
		endpoint:  strings.TrimRight(endpoint, "/"),
		projectID: projectID,
		http:      &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the API root
func (c *Client) Endpoint() string {
	return c.endpoint
}

// ProjectID returns the project the client is bound to
func (c *Client) ProjectID() string {
	return c.projectID
}

// SetSession sets the bearer token sent with subsequent requests; "" clears it
func (c *Client) SetSession(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Session returns the current bearer token
func (c *Client) Session() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// HealthURL is the unauthenticated reachability endpoint
func (c *Client) HealthURL() string {
	return c.endpoint + "/health"
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	target := c.endpoint + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Project-Id", c.projectID)
	req.Header.Set("X-Api-Version", APIVersion)
	req.Header.Set("Accept", "application/json")
	if token := c.Session(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// send performs req and returns the response when it is 2xx. Any other status
// is decoded into an *Error and the body is closed.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	return nil, decodeError(resp)
}

// call sends in as JSON (when not nil) and decodes the response into out (when not nil)
func (c *Client) call(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return decodeJSON(resp, out)
}

func decodeJSON(resp *http.Response, out interface{}) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", resp.Request.Method, resp.Request.URL.Path, err)
	}
	return nil
}

func pathJoin(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}
