// Package client talks to a layoutmetrics HTTP server.
//
//	c := client.New("http://localhost:8080", nil)
//	res, err := c.Analyze(ctx, d, client.AnalyzeOptions{Crossings: true})
//
// Network failures and 5xx responses are retried with backoff. API errors
// come back as *errors.Error values carrying the server's error code, so
// callers can use the same code checks as for local analysis.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/layoutmetrics/pkg/cache"
	"github.com/matzehuels/layoutmetrics/pkg/diagram"
	apperrors "github.com/matzehuels/layoutmetrics/pkg/errors"
	"github.com/matzehuels/layoutmetrics/pkg/pipeline"
	"github.com/matzehuels/layoutmetrics/pkg/store"
)

const httpTimeout = 2 * time.Minute

// Client is an API client. It is safe for concurrent use.
type Client struct {
	base    string
	http    *http.Client
	headers map[string]string
}

// New creates a client for the server at baseURL. Headers are sent with
// every request; nil is fine.
func New(baseURL string, headers map[string]string) *Client {
	return &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: httpTimeout},
		headers: headers,
	}
}

// AnalyzeOptions maps to the query parameters of POST /v1/metrics.
type AnalyzeOptions struct {
	Crossings bool
	// NoSave skips persisting the report on the server.
	NoSave bool
}

// Analyze sends d to the server and returns the computed result.
func (c *Client) Analyze(ctx context.Context, d *diagram.Diagram, opts AnalyzeOptions) (*pipeline.Result, error) {
	body, err := json.Marshal(diagram.ToFile(d))
	if err != nil {
		return nil, fmt.Errorf("encode diagram: %w", err)
	}
	q := url.Values{}
	if opts.Crossings {
		q.Set("crossings", "true")
	}
	if opts.NoSave {
		q.Set("save", "false")
	}

	var res pipeline.Result
	if err := c.do(ctx, http.MethodPost, "/v1/metrics", q, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Report fetches a stored report.
func (c *Client) Report(ctx context.Context, id string) (*store.Record, error) {
	var rec store.Record
	if err := c.do(ctx, http.MethodGet, "/v1/reports/"+url.PathEscape(id), nil, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Reports lists up to limit stored reports, newest first. A limit of zero
// uses the server default.
func (c *Client) Reports(ctx context.Context, limit int) ([]store.Record, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Reports []store.Record `json:"reports"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/reports", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Reports, nil
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body []byte, v any) error {
	target := c.base + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	return cache.RetryWithBackoff(ctx, func() error {
		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, rd)
		if err != nil {
			return err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, val := range c.headers {
			req.Header.Set(k, val)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return statusError(resp)
		}
		if v == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
}

// statusError converts a non-200 response into an error. The server's JSON
// error body supplies the code and message when present.
func statusError(resp *http.Response) error {
	var body struct {
		Error string         `json:"error"`
		Code  apperrors.Code `json:"code"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body)
	if body.Error == "" {
		body.Error = http.StatusText(resp.StatusCode)
	}
	if body.Code == "" {
		body.Code = codeForStatus(resp.StatusCode)
	}

	err := apperrors.New(body.Code, "%s", body.Error)
	if resp.StatusCode >= 500 && resp.StatusCode != http.StatusNotImplemented && resp.StatusCode != http.StatusGatewayTimeout {
		return cache.Retryable(err)
	}
	return err
}

func codeForStatus(status int) apperrors.Code {
	switch status {
	case http.StatusBadRequest:
		return apperrors.ErrCodeInvalidInput
	case http.StatusNotFound:
		return apperrors.ErrCodeNotFound
	case http.StatusGatewayTimeout:
		return apperrors.ErrCodeTimeout
	case http.StatusNotImplemented:
		return apperrors.ErrCodeUnsupported
	default:
		return apperrors.ErrCodeInternal
	}
}
