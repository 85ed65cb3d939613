// Package upstream fetches and normalizes ReliefWeb collections.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/reliefboard/internal/model"
	"github.com/ppiankov/reliefboard/internal/worker"
)

const maxResponseBytes = 32 << 20

// Client queries the ReliefWeb API
type Client struct {
	httpClient *http.Client
	baseURL    string
	appName    string
	pageLimit  int
	limiter    *worker.Limiter
	logger     *zap.Logger
}

// NewClient creates a ReliefWeb client. limiter may be nil.
func NewClient(cfg model.UpstreamConfig, httpClient *http.Client, limiter *worker.Limiter, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	pageLimit := cfg.PageLimit
	if pageLimit <= 0 {
		pageLimit = 1000
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		appName:    cfg.AppName,
		pageLimit:  pageLimit,
		limiter:    limiter,
		logger:     logger,
	}
}

// Item is one record of a response; Fields is decoded by the caller
type Item struct {
	ID     json.RawMessage `json:"id"`
	Fields json.RawMessage `json:"fields"`
}

// FacetBucket is one value of a facet
type FacetBucket struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Facet is a facet result
type Facet struct {
	Type string        `json:"type"`
	Data []FacetBucket `json:"data"`
}

// Response is the envelope of every ReliefWeb reply
type Response struct {
	Count      int             `json:"count"`
	TotalCount int             `json:"totalCount"`
	Data       []Item          `json:"data"`
	Embedded   *Embedded       `json:"embedded,omitempty"`
	Error      json.RawMessage `json:"error,omitempty"`
}

// Embedded carries facets
type Embedded struct {
	Facets map[string]Facet `json:"facets"`
}

// Facet returns the named facet, or an empty one
func (r *Response) Facet(name string) Facet {
	if r.Embedded == nil {
		return Facet{}
	}
	return r.Embedded.Facets[name]
}

// Query sends a single query against a resource
func (c *Client) Query(ctx context.Context, resource string, q Query) (*Response, error) {
	endpoint := c.baseURL + "/" + resource + "?" + url.Values{"appname": {c.appName}}.Encode()

	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, endpoint); err != nil {
			return nil, c.unavailable(resource, 0, err.Error(), err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("upstream query", zap.String("resource", resource), zap.ByteString("body", body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.unavailable(resource, 0, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, c.unavailable(resource, resp.StatusCode, "read body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.unavailable(resource, resp.StatusCode, truncate(string(raw), 200), nil)
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, c.unavailable(resource, resp.StatusCode, "malformed response", err)
	}
	if len(out.Data) == 0 && len(out.Error) > 0 && string(out.Error) != "null" {
		return nil, c.unavailable(resource, resp.StatusCode, string(out.Error), nil)
	}

	return &out, nil
}

// QueryAll pages through a resource and fails when it yields nothing.
// An empty collection is treated as an outage: reconciling against it would
// archive every card.
func (c *Client) QueryAll(ctx context.Context, resource string, q Query) ([]Item, error) {
	items, err := c.QueryPages(ctx, resource, q)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, c.unavailable(resource, 0, "empty collection", nil)
	}

	c.logger.Info("fetched upstream collection", zap.String("resource", resource), zap.Int("count", len(items)))
	return items, nil
}

// QueryPages pages through a resource until a short page. An empty result is
// not an error.
func (c *Client) QueryPages(ctx context.Context, resource string, q Query) ([]Item, error) {
	var items []Item
	q.Limit = c.pageLimit
	q.Offset = 0

	for {
		resp, err := c.Query(ctx, resource, q)
		if err != nil {
			return nil, err
		}
		items = append(items, resp.Data...)

		if len(resp.Data) < q.Limit || (resp.TotalCount > 0 && len(items) >= resp.TotalCount) {
			break
		}
		q.Offset += len(resp.Data)
	}
	return items, nil
}

func (c *Client) unavailable(resource string, status int, msg string, err error) error {
	if err == nil {
		err = model.ErrUpstreamUnavailable
	} else {
		err = fmt.Errorf("%w: %w", model.ErrUpstreamUnavailable, err)
	}
	return &model.APIError{
		Service:    "reliefweb",
		Method:     http.MethodPost,
		Endpoint:   resource,
		StatusCode: status,
		Message:    msg,
		Err:        err,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
