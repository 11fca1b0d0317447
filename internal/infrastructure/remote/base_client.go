package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// HTTPDoer is the http.Client subset the client needs
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// StatusError is returned for a non-2xx response. Its message is the one
// displayed to users, e.g. "Erreur 404".
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Erreur %d", e.Code)
}

// envelope is the response body shape of the billed JSON API
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// BaseClient resolves paths against a base URL and decodes JSON bodies
type BaseClient struct {
	baseURL string
	client  HTTPDoer
}

// NewBaseClient builds a client for baseURL
func NewBaseClient(baseURL string, client HTTPDoer) *BaseClient {
	return &BaseClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// NewDefaultHTTPClient returns an *http.Client with timeout
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func (c *BaseClient) buildURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// ResolveURL turns a root-relative reference returned by the instance into
// an absolute URL. Absolute and empty references are returned unchanged.
func (c *BaseClient) ResolveURL(ref string) string {
	if !strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "//") {
		return ref
	}
	return c.baseURL + ref
}

// RelativeURL is the inverse of ResolveURL for references on this instance
func (c *BaseClient) RelativeURL(ref string) string {
	if rest := strings.TrimPrefix(ref, c.baseURL); rest != ref && strings.HasPrefix(rest, "/") {
		return rest
	}
	return ref
}

// DoJSON sends in as a JSON body (when non-nil) and decodes the data of a 2xx response into out
func (c *BaseClient) DoJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}
	return c.Do(ctx, method, path, body, "application/json", out)
}

// Do executes the request and decodes the data of a 2xx response into out
func (c *BaseClient) Do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode}
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		return fmt.Errorf("store error: %s", env.Error)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}
