// Package api is the client for the Mom's Kitchen backend. Every call goes through
// Client.Do, which attaches credentials and recovers from expired access tokens.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	"momskitchen/internal/logging"
	"momskitchen/internal/security"
)

const (
	headerUserRole  = "x-user-role"
	headerRequestID = "X-Request-ID"
	headerIdemKey   = "Idempotency-Key"
)

// TokenStore is the part of the session store the client needs
type TokenStore interface {
	oauth2.TokenSource
	AccessToken() string
	RefreshToken() string
	SetAccessToken(ctx context.Context, accessToken string)
	Logout(ctx context.Context)
}

// Config holds client configuration
type Config struct {
	BaseURL    string
	UserRole   string
	HTTPClient *http.Client
	Tokens     TokenStore
	Logger     logrus.FieldLogger
}

// Client sends requests to the backend
type Client struct {
	baseURL    string
	role       string
	httpClient *http.Client
	tokens     TokenStore
	refresher  *refresher
	log        logrus.FieldLogger
}

// New creates a client
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("token store is required")
	}

	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		role:       cfg.UserRole,
		httpClient: httpClient,
		tokens:     cfg.Tokens,
		log:        log.WithField("component", "api"),
	}
	c.refresher = newRefresher(c.refreshAccessToken, c.tokens.AccessToken)
	return c, nil
}

// Request describes one backend call
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
}

// Response is a successful backend response
type Response struct {
	StatusCode int
	Body       []byte
}

// Get extracts a value from the JSON body by gjson path
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

// Decode unmarshals the value at path into v. An empty path decodes the whole body.
// A missing value leaves v untouched.
func (r *Response) Decode(path string, v any) error {
	raw := r.Body
	if path != "" {
		res := r.Get(path)
		if !res.Exists() || res.Type == gjson.Null {
			return nil
		}
		raw = []byte(res.Raw)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Do sends req with the current credentials. A 401 triggers one token refresh
// (shared with any other request that hit 401 meanwhile) and one replay of req.
// Non-2xx responses are returned as *APIError.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	resp, sentToken, err := c.send(ctx, req, true)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp, err = c.recoverUnauthorized(ctx, req, resp, sentToken)
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp)
	}
	return resp, nil
}

// recoverUnauthorized handles a 401 on a request that has not been retried yet
func (c *Client) recoverUnauthorized(ctx context.Context, req Request, resp *Response, sentToken string) (*Response, error) {
	if c.tokens.RefreshToken() == "" {
		c.log.Info("Access rejected and no refresh token available, logging out")
		c.tokens.Logout(ctx)
		return nil, newAPIError(resp)
	}

	if err := c.refresher.Do(ctx, sentToken); err != nil {
		return nil, err
	}

	replayed, _, err := c.send(ctx, req, true)
	if err != nil {
		return nil, err
	}
	return replayed, nil
}

func (c *Client) send(ctx context.Context, req Request, authenticate bool) (*Response, string, error) {
	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, "", err
	}

	var sentToken string
	if authenticate {
		if tok, err := c.tokens.Token(); err == nil {
			tok.SetAuthHeader(httpReq)
			sentToken = tok.AccessToken
		}
	}

	start := time.Now()
	resp, err := c.do(httpReq)
	if err != nil {
		return nil, sentToken, err
	}

	c.log.WithFields(logrus.Fields{
		"method":      req.Method,
		"path":        req.Path,
		"status":      resp.StatusCode,
		"request_id":  httpReq.Header.Get(headerRequestID),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Backend request")

	return resp, sentToken, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	reqURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		reqURL += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq, req)
	return httpReq, nil
}

func (c *Client) setHeaders(httpReq *http.Request, req Request) {
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.role != "" {
		httpReq.Header.Set(headerUserRole, c.role)
	}
	httpReq.Header.Set(headerRequestID, security.GenerateRequestID())
}

func (c *Client) do(req *http.Request) (*Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
