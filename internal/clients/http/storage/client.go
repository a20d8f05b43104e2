// Package storage talks to the object storage gateway that serves product
// images. Keys stored on products resolve to public URLs here.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client wraps the storage gateway HTTP API.
type Client struct {
	baseURL    string
	publicURL  string
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithPublicURL sets a separate base for browser-facing URLs, for example a
// CDN in front of the bucket.
func WithPublicURL(publicURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(publicURL), "/"); trimmed != "" {
			c.publicURL = trimmed
		}
	}
}

// NewClient instantiates the storage client with sane defaults.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("storage base URL is required")
	}
	client := &Client{
		baseURL:    baseURL,
		publicURL:  baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// ResolveURL maps a stored object key to its public URL.
func (c *Client) ResolveURL(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	return c.publicURL + "/" + url.PathEscape(key)
}

// Exists reports whether the gateway holds an object for the key.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	if c == nil || c.httpClient == nil {
		return false, errors.New("storage client not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return false, errors.New("object key is required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.objectURL(key), nil)
	if err != nil {
		return false, fmt.Errorf("build storage request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("call storage gateway: %w", err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("storage gateway unexpected status: %s", resp.Status)
	}
}

// Delete removes an object. Missing keys are treated as already deleted.
func (c *Client) Delete(ctx context.Context, key string) error {
	if c == nil || c.httpClient == nil {
		return errors.New("storage client not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("object key is required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.objectURL(key), nil)
	if err != nil {
		return fmt.Errorf("build storage request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call storage gateway: %w", err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusOK, resp.StatusCode == http.StatusNoContent, resp.StatusCode == http.StatusNotFound:
		return nil
	default:
		return fmt.Errorf("storage gateway unexpected status: %s", resp.Status)
	}
}

func (c *Client) objectURL(key string) string {
	return c.baseURL + "/objects/" + url.PathEscape(key)
}
