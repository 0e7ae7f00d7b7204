package imagegen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"imagerelay/internal/infra/credentials"
)

const (
	// HeaderServerAPIKey carries the server-facing secret to the backend.
	HeaderServerAPIKey = "SERVER-API-Key"

	maxErrorBody = 4 << 10
)

// ErrInvalidBaseURL is returned when the configured backend address cannot be
// turned into a request URL.
var ErrInvalidBaseURL = errors.New("imagegen: invalid base url")

type Options struct {
	BaseURL     string
	Credentials credentials.Provider
	HTTPClient  *http.Client
	// Timeout bounds a single backend call. Zero leaves the call unbounded
	// apart from the caller's context.
	Timeout time.Duration
}

// Client calls the external generation backend with GET ?prompt=.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	credentials credentials.Provider
}

func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		httpClient:  client,
		baseURL:     strings.TrimSpace(opts.BaseURL),
		credentials: opts.Credentials,
	}
}

// Generate requests an image for prompt and returns the full response body.
func (c *Client) Generate(ctx context.Context, prompt string) (*Image, error) {
	if c == nil {
		return nil, errors.New("imagegen: client not configured")
	}
	endpoint, err := c.requestURL(prompt)
	if err != nil {
		return nil, err
	}
	var key string
	if c.credentials != nil {
		if key, err = c.credentials.ServerKey(ctx); err != nil {
			return nil, fmt.Errorf("imagegen: resolve server key: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(HeaderServerAPIKey, key)
	req.Header.Set("Accept", DefaultContentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imagegen: request backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("imagegen: read backend body: %w", err)
	}
	return &Image{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}

func (c *Client) requestURL(prompt string) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidBaseURL)
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.baseURL)
	}
	q := u.Query()
	q.Set("prompt", prompt)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

var _ Generator = (*Client)(nil)
