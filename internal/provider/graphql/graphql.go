// Package graphql reads auction snapshots from the subgraph indexer behind
// The Graph gateway.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"zoundz/internal/metrics"
	"zoundz/internal/models/auction"
)

const (
	DefaultGatewayURL = "https://gateway.thegraph.com/api"
	DefaultSubgraphId = "S9ihna8D733WTEShJ4k2HBt6URf9MdkF5FYPrZzRF8gZ"
	DefaultTimeout    = 10 * time.Second

	upstreamName = "subgraph"
	maxBodySize  = 8 << 20
)

const auctionFields = `
    id
    tokenId
    title
    description
    artist
    coverImage
    audioUrl
    startTime
    endTime
    highestBid
    highestBidder
    status
    bids(orderBy: timestamp, orderDirection: desc) {
      id
      amount
      bidder
      timestamp
      comment
    }`

const auctionQuery = `query GetAuction($id: ID!) {
  auctions(where: { id: $id }) {` + auctionFields + `
  }
}`

const auctionsQuery = `query GetAuctions($first: Int!, $skip: Int!) {
  auctions(first: $first, skip: $skip, orderBy: id) {` + auctionFields + `
  }
}`

// MaxPageSize is the largest page the gateway serves for one query.
const MaxPageSize = 1000

type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
	metrics  *metrics.Metrics
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

// Endpoint builds the gateway query URL for a subgraph.
func Endpoint(gatewayURL, apiKey, subgraphId string) string {
	return fmt.Sprintf("%s/%s/subgraphs/id/%s", strings.TrimRight(gatewayURL, "/"), apiKey, subgraphId)
}

func New(endpoint, apiKey string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

type gqlError struct {
	Message string `json:"message"`
}

// Auction returns the current snapshot of one auction, or auction.ErrNotFound.
func (c *Client) Auction(ctx context.Context, id string) (auction.Auction, error) {
	const op = "provider.graphql.Auction"

	var data struct {
		Auctions []auction.Record `json:"auctions"`
	}
	err := c.query(ctx, request{Query: auctionQuery, Variables: map[string]any{"id": id}}, &data)
	if err != nil {
		return auction.Auction{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(data.Auctions) == 0 {
		return auction.Auction{}, fmt.Errorf("%s: %s: %w", op, id, auction.ErrNotFound)
	}

	a, err := data.Auctions[0].Auction()
	if err != nil {
		return auction.Auction{}, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// Auctions returns one page of auctions ordered by id.
func (c *Client) Auctions(ctx context.Context, first, skip int) ([]auction.Auction, error) {
	const op = "provider.graphql.Auctions"

	if first <= 0 || first > MaxPageSize {
		first = MaxPageSize
	}

	var data struct {
		Auctions []auction.Record `json:"auctions"`
	}
	err := c.query(ctx, request{Query: auctionsQuery, Variables: map[string]any{"first": first, "skip": skip}}, &data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]auction.Auction, 0, len(data.Auctions))
	for _, r := range data.Auctions {
		a, err := r.Auction()
		if err != nil {
			return nil, fmt.Errorf("%s: auction %s: %w", op, r.Id, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// Forward posts a client-built GraphQL body to the subgraph and returns the
// upstream status and payload untouched.
func (c *Client) Forward(ctx context.Context, body []byte) (status int, payload []byte, err error) {
	const op = "provider.graphql.Forward"

	start := time.Now()
	defer func() { c.metrics.ObserveUpstream(upstreamName, start, err) }()

	resp, err := c.post(ctx, body)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	payload, err = io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, fmt.Errorf("%s: reading response: %w", op, err)
	}
	return resp.StatusCode, payload, nil
}

func (c *Client) query(ctx context.Context, req request, out any) (err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveUpstream(upstreamName, start, err) }()

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding query: %w", err)
	}

	resp, err := c.post(ctx, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("subgraph status %d: %s", resp.StatusCode, payload)
	}

	var res response
	if err := json.Unmarshal(payload, &res); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if len(res.Errors) > 0 {
		msgs := make([]string, 0, len(res.Errors))
		for _, e := range res.Errors {
			msgs = append(msgs, e.Message)
		}
		return errors.New("subgraph errors: " + strings.Join(msgs, "; "))
	}
	if len(res.Data) == 0 || string(res.Data) == "null" {
		return errors.New("subgraph returned no data")
	}

	if err := json.Unmarshal(res.Data, out); err != nil {
		return fmt.Errorf("decoding data: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return c.client.Do(req)
}
