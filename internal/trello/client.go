// Package trello is a narrow client for the Trello REST API: one board
// snapshot read and the card, label, list and checklist writes reconciliation
// needs.
package trello

import (
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

// Client calls the Trello API with a static key and token
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	apiToken   string
	limiter    *worker.Limiter
	logger     *zap.Logger
}

// NewClient creates a Trello client. limiter may be nil.
func NewClient(cfg model.BoardConfig, httpClient *http.Client, limiter *worker.Limiter, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.Key,
		apiToken:   cfg.Token,
		limiter:    limiter,
		logger:     logger,
	}
}

// do sends one request. Credentials always travel as query parameters; other
// parameters go in the query for reads and as a form body for writes.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, out any) error {
	query := url.Values{}
	query.Set("key", c.apiKey)
	query.Set("token", c.apiToken)

	var body io.Reader
	if method == http.MethodGet || method == http.MethodDelete {
		for k, vs := range params {
			for _, v := range vs {
				query.Add(k, v)
			}
		}
	} else if len(params) > 0 {
		body = strings.NewReader(params.Encode())
	}

	endpoint := c.baseURL + path + "?" + query.Encode()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, endpoint); err != nil {
			return c.apiError(method, path, 0, err.Error(), err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.apiError(method, path, 0, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return c.apiError(method, path, resp.StatusCode, strings.TrimSpace(string(bodyBytes)), nil)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.apiError(method, path, resp.StatusCode, "failed to decode response", err)
	}
	return nil
}

func (c *Client) apiError(method, path string, status int, msg string, err error) error {
	return &model.APIError{
		Service:    "trello",
		Method:     method,
		Endpoint:   path,
		StatusCode: status,
		Message:    msg,
		Err:        err,
	}
}
