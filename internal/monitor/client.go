package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// API defines the request/response surface of the USB monitor service.
// This interface is implemented by *Client and can be used for testing.
type API interface {
	FetchDevices(ctx context.Context) ([]Device, error)
	FetchHistory(ctx context.Context, limit int) ([]HistoryEntry, error)
	FetchStatus(ctx context.Context) (*Status, error)
	FetchStats(ctx context.Context) (*Stats, error)
	TriggerRescan(ctx context.Context) error
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Client talks to the USB monitor service HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultServerURL = "http://127.0.0.1:3001"
	defaultUserAgent = "usbwatch/0.1"
	requestTimeout   = 5 * time.Second
)

// NewClient builds a Client for the given server base URL. An empty value
// falls back to the default local service address.
func NewClient(serverURL string) (*Client, error) {
	base, err := parseBaseURL(serverURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// WebSocketURL derives the push-channel endpoint from the client's base URL.
func (c *Client) WebSocketURL() string {
	ws := *c.baseURL
	switch ws.Scheme {
	case "https":
		ws.Scheme = "wss"
	default:
		ws.Scheme = "ws"
	}
	ws.Path = "/ws"
	return ws.String()
}

// FetchDevices retrieves the current device set.
func (c *Client) FetchDevices(ctx context.Context) ([]Device, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload struct {
		Data []Device `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/devices", &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// FetchHistory retrieves the most recent connection history entries.
func (c *Client) FetchHistory(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	rel := &url.URL{Path: "/api/history", RawQuery: values.Encode()}
	var payload struct {
		Data []HistoryEntry `json:"data"`
	}
	if err := c.doURL(ctx, http.MethodGet, rel, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// FetchStatus retrieves the service status record.
func (c *Client) FetchStatus(ctx context.Context) (*Status, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload struct {
		Data *Status `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/status", &payload); err != nil {
		return nil, err
	}
	if payload.Data == nil {
		return nil, fmt.Errorf("status response missing data")
	}
	return payload.Data, nil
}

// FetchStats retrieves the aggregate statistics record.
func (c *Client) FetchStats(ctx context.Context) (*Stats, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload struct {
		Data *Stats `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/stats", &payload); err != nil {
		return nil, err
	}
	if payload.Data == nil {
		return nil, fmt.Errorf("stats response missing data")
	}
	return payload.Data, nil
}

// TriggerRescan asks the service to re-enumerate devices over the request
// path. It acknowledges only; callers pick up the result via a fresh load.
func (c *Client) TriggerRescan(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, http.MethodPost, "/api/devices/refresh", nil)
}

func (c *Client) do(ctx context.Context, method, path string, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(serverURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(serverURL)
	if trimmed == "" {
		trimmed = defaultServerURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server url %q: %w", serverURL, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
