// Package businesscentral is a small OData v4 client for Business Central web services.
package businesscentral

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	apphttp "xpilot-copilot/internal/common/http"
)

const userAgent = "XPilotCopilot/1.0"

type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

type Client struct {
	baseURL  string
	username string
	password string
	http     *apphttp.Client
}

// StatusError is a non-2xx OData response. Body is for logs only.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("odata %s %s returned status %d", e.Method, e.Path, e.StatusCode)
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return NewClientWith(cfg, apphttp.NewClient(timeout))
}

// NewClientWith uses an existing transport, mainly for tests.
func NewClientWith(cfg Config, hc *apphttp.Client) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		http:     hc,
	}
}

// KeyPath addresses one record, e.g. CustomerOdata(Customer_ID='55').
func KeyPath(entitySet, keyField, id string) string {
	escaped := url.PathEscape(strings.ReplaceAll(id, "'", "''"))
	return fmt.Sprintf("%s(%s='%s')", entitySet, keyField, escaped)
}

func (c *Client) headers() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("User-Agent", userAgent)
	creds := base64.StdEncoding.EncodeToString([]byte(c.username + ":" + c.password))
	h.Set("Authorization", "Basic "+creds)
	return h
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}, extra http.Header) (*apphttp.Response, error) {
	var body []byte
	headers := c.headers()
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		headers.Set("Content-Type", "application/json")
	}
	for k, v := range extra {
		headers[k] = v
	}

	resp, err := c.http.Send(ctx, method, c.baseURL+"/"+path, body, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	if !resp.OK() {
		return nil, &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	return resp, nil
}

// Create posts payload to the entity set and decodes the created record into out when the
// service returns one.
func (c *Client) Create(ctx context.Context, entitySet string, payload, out interface{}) error {
	resp, err := c.do(ctx, http.MethodPost, entitySet, payload, nil)
	if err != nil {
		return err
	}
	if out != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return fmt.Errorf("failed to decode created record: %w", err)
		}
	}
	return nil
}

// Get reads one record and returns its ETag from the response header or @odata.etag.
func (c *Client) Get(ctx context.Context, path string, out interface{}) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return "", err
	}

	var meta struct {
		ETag string `json:"@odata.etag"`
	}
	_ = json.Unmarshal(resp.Body, &meta)

	if out != nil {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return "", fmt.Errorf("failed to decode record: %w", err)
		}
	}

	if etag := resp.Header.Get("ETag"); etag != "" {
		return etag, nil
	}
	return meta.ETag, nil
}

// List reads an entity set; out must point to a slice.
func (c *Client) List(ctx context.Context, entitySet string, out interface{}) error {
	resp, err := c.do(ctx, http.MethodGet, entitySet, nil, nil)
	if err != nil {
		return err
	}

	envelope := struct {
		Value json.RawMessage `json:"value"`
	}{}
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return fmt.Errorf("failed to decode collection: %w", err)
	}
	if len(envelope.Value) == 0 {
		envelope.Value = json.RawMessage("[]")
	}
	if err := json.Unmarshal(envelope.Value, out); err != nil {
		return fmt.Errorf("failed to decode collection values: %w", err)
	}
	return nil
}

// Patch updates a record with If-Match; a blank etag matches any version.
func (c *Client) Patch(ctx context.Context, path, etag string, payload interface{}) error {
	if etag == "" {
		etag = "*"
	}
	_, err := c.do(ctx, http.MethodPatch, path, payload, http.Header{"If-Match": []string{etag}})
	return err
}

func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}
