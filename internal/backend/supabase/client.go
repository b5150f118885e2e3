// Package supabase talks to a hosted Supabase project: GoTrue for auth,
// PostgREST for rows and the storage API for objects.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/craftfolio/craftfolio/internal/backend"
)

var _ backend.Backend = (*Client)(nil)

type Client struct {
	baseURL    string
	anonKey    string
	bucket     string
	httpClient *http.Client
}

type Config struct {
	URL     string
	AnonKey string
	Bucket  string
	Timeout time.Duration
}

func New(cfg Config) *Client {
	slog.Info("initializing supabase backend", "url", cfg.URL, "bucket", cfg.Bucket)
	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		anonKey: cfg.AnonKey,
		bucket:  cfg.Bucket,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// request describes one call against the project.
type request struct {
	method  string
	path    string
	query   url.Values
	token   string // user access token; anon key when empty
	header  http.Header
	body    io.Reader
	jsonIn  any
	jsonOut any
}

func (c *Client) do(ctx context.Context, req request) error {
	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	body := req.body
	if req.jsonIn != nil {
		b, err := json.Marshal(req.jsonIn)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	bearer := req.token
	if bearer == "" {
		bearer = c.anonKey
	}
	httpReq.Header.Set("apikey", c.anonKey)
	httpReq.Header.Set("Authorization", "Bearer "+bearer)
	httpReq.Header.Set("Accept", "application/json")
	if req.jsonIn != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range req.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", backend.ErrUnavailable, req.method, req.path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if req.jsonOut == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(req.jsonOut)
	if err != nil {
		return fmt.Errorf("%w: decode %s response: %w", backend.ErrUnavailable, req.path, err)
	}
	return nil
}

// errorBody covers the GoTrue, PostgREST and storage error shapes.
type errorBody struct {
	Msg              string          `json:"msg"`
	Message          string          `json:"message"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	ErrorCode        string          `json:"error_code"`
	Code             json.RawMessage `json:"code"`
}

func decodeError(resp *http.Response) error {
	apiErr := &backend.APIError{Status: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil {
		apiErr.Message = firstNonEmpty(eb.Msg, eb.Message, eb.ErrorDescription, eb.Error)
		apiErr.Code = eb.ErrorCode
		if apiErr.Code == "" && len(eb.Code) > 0 {
			apiErr.Code = strings.Trim(string(eb.Code), `"`)
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	// PostgREST reports unique violations as 409 with code 23505; some
	// versions answer 400, normalize those to a conflict.
	if apiErr.Code == "23505" {
		apiErr.Status = http.StatusConflict
	}

	return apiErr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
