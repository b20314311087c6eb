package neynar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"zoundz/internal/metrics"
	"zoundz/internal/models/frame"
)

const (
	DefaultURL     = "https://api.neynar.com/v2/farcaster/frame/validate"
	DefaultTimeout = 10 * time.Second

	upstreamName = "neynar"
	maxBodySize  = 1 << 20
)

// ErrUnavailable wraps every failure to obtain a verdict: transport errors,
// non-2xx statuses and undecodable responses.
var ErrUnavailable = errors.New("frame validation unavailable")

type Client struct {
	url     string
	apiKey  string
	client  *http.Client
	metrics *metrics.Metrics
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func New(url, apiKey string, opts ...Option) *Client {
	c := &Client{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate forwards the raw frame action body and returns the service verdict.
func (c *Client) Validate(ctx context.Context, body []byte) (v frame.Validation, err error) {
	const op = "validation.neynar.Validate"

	start := time.Now()
	defer func() { c.metrics.ObserveUpstream(upstreamName, start, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return frame.Validation{}, fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api_key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return frame.Validation{}, fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return frame.Validation{}, fmt.Errorf("%s: %w: reading response: %w", op, ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return frame.Validation{}, fmt.Errorf("%s: %w: status %d: %s", op, ErrUnavailable, resp.StatusCode, payload)
	}

	if err := json.Unmarshal(payload, &v); err != nil {
		return frame.Validation{}, fmt.Errorf("%s: %w: decoding response: %w", op, ErrUnavailable, err)
	}
	return v, nil
}
