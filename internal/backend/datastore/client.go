// Package datastore implements the service.Service interface over an HTTP
// key-value document store (DHIS2 dataStore style).
package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"notifier/internal/config"
	"notifier/internal/logging"
	"notifier/internal/service"
)

const (
	// APITimeout is the default timeout for API calls.
	APITimeout = config.DefaultTimeout

	// maxBodyBytes bounds how much of a response body is read.
	maxBodyBytes = 8 << 20
)

// Client implements service.Service against a remote data store.
type Client struct {
	http      *http.Client
	base      *url.URL
	namespace string
	timeout   time.Duration
	logger    *log.Logger
}

// New creates a client from the remote settings in cfg.
// Token auth wins over basic auth when both are configured.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rc := cfg.Remote

	var httpClient *http.Client
	switch {
	case rc.Token != "":
		tokenType := rc.TokenType
		if tokenType == "" {
			tokenType = config.DefaultTokenType
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: rc.Token, TokenType: tokenType})
		httpClient = oauth2.NewClient(ctx, ts)
	case rc.Username != "":
		httpClient = &http.Client{Transport: &basicAuthTransport{
			username: rc.Username,
			password: rc.Password,
			base:     http.DefaultTransport,
		}}
	default:
		httpClient = &http.Client{}
	}

	c, err := NewWithHTTPClient(httpClient, rc.URL, rc.Namespace)
	if err != nil {
		return nil, err
	}
	c.timeout = rc.Timeout
	if logger != nil {
		c.logger = logger
	}
	return c, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(httpClient *http.Client, baseURL, namespace string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid store url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid store url: %s", baseURL)
	}
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return nil, errors.New("namespace required")
	}
	return &Client{
		http:      httpClient,
		base:      u,
		namespace: namespace,
		timeout:   APITimeout,
		logger:    logging.Discard(),
	}, nil
}

// Namespace returns the namespace the client reads and writes.
func (c *Client) Namespace() string {
	return c.namespace
}

// Endpoint returns the namespace URL without credentials.
func (c *Client) Endpoint() string {
	return c.namespaceURL().String()
}

// listResponse is the body of a namespace listing.
type listResponse struct {
	Entries []rawEntry `json:"entries"`
}

// rawEntry tolerates both {"key","value"} and {"id","."} shapes.
type rawEntry struct {
	Key   string          `json:"key"`
	ID    string          `json:"id"`
	Value json.RawMessage `json:"value"`
	Dot   json.RawMessage `json:"."`
}

// ListEntries returns every entry in the namespace.
func (c *Client) ListEntries(ctx context.Context) ([]service.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.namespaceURL()
	q := u.Query()
	q.Set("fields", ".")
	q.Set("paging", "false")
	u.RawQuery = q.Encode()

	body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			// Namespace is created on first write.
			return []service.Entry{}, nil
		}
		return nil, err
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}

	result := make([]service.Entry, 0, len(resp.Entries))
	for _, raw := range resp.Entries {
		value := raw.Value
		if len(value) == 0 {
			value = raw.Dot
		}
		var item service.Item
		if err := json.Unmarshal(value, &item); err != nil {
			c.logger.Warn("skipping undecodable entry", "key", firstNonEmpty(raw.Key, raw.ID), "err", err)
			continue
		}
		key := firstNonEmpty(raw.Key, raw.ID, item.ID)
		if key == "" {
			c.logger.Warn("skipping entry without key", "title", item.Title)
			continue
		}
		result = append(result, service.Entry{Key: key, Value: item})
	}
	return result, nil
}

// ListNamespaces returns the namespaces of the store, sorted.
func (c *Client) ListNamespaces(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := c.do(ctx, http.MethodGet, c.base.JoinPath(), nil)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(body, &names); err != nil {
		return nil, fmt.Errorf("decode namespaces: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

// GetEntry fetches a single entry value.
func (c *Client) GetEntry(ctx context.Context, key string) (service.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := c.do(ctx, http.MethodGet, c.entryURL(key), nil)
	if err != nil {
		return service.Entry{}, err
	}
	var item service.Item
	if err := json.Unmarshal(body, &item); err != nil {
		return service.Entry{}, fmt.Errorf("decode entry %s: %w", key, err)
	}
	return service.Entry{Key: key, Value: item}, nil
}

// CreateEntry stores a new entry.
func (c *Client) CreateEntry(ctx context.Context, key string, item service.Item) error {
	return c.write(ctx, http.MethodPost, key, item)
}

// UpdateEntry replaces an entry value.
func (c *Client) UpdateEntry(ctx context.Context, key string, item service.Item) error {
	return c.write(ctx, http.MethodPut, key, item)
}

// DeleteEntry removes an entry.
func (c *Client) DeleteEntry(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.do(ctx, http.MethodDelete, c.entryURL(key), nil)
	return err
}

func (c *Client) write(ctx context.Context, method, key string, item service.Item) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode entry %s: %w", key, err)
	}
	_, err = c.do(ctx, method, c.entryURL(key), payload)
	return err
}

func (c *Client) namespaceURL() *url.URL {
	return c.base.JoinPath(url.PathEscape(c.namespace))
}

func (c *Client) entryURL(key string) *url.URL {
	return c.base.JoinPath(url.PathEscape(c.namespace), url.PathEscape(key))
}

// do sends one request and returns the response body of a 2xx answer.
func (c *Client) do(ctx context.Context, method string, u *url.URL, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", u.Path, "err", err)
		return nil, wrapError(err)
	}
	defer resp.Body.Close()
	c.logger.Debug("request", "method", method, "path", u.Path, "status", resp.StatusCode, "took", time.Since(start).Round(time.Millisecond))

	if err := googleapi.CheckResponse(resp); err != nil {
		return nil, wrapError(err)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, wrapError(err)
	}
	return data, nil
}

// wrapError maps transport and HTTP errors onto the service sentinels.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", service.ErrTimeout, err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w (HTTP %d)", service.ErrUnauthorized, apiErr.Code)
		case http.StatusNotFound:
			return fmt.Errorf("%w (HTTP %d)", service.ErrNotFound, apiErr.Code)
		case http.StatusConflict:
			return fmt.Errorf("%w (HTTP %d)", service.ErrConflict, apiErr.Code)
		}
		return fmt.Errorf("store returned HTTP %d: %s", apiErr.Code, summarize(apiErr))
	}

	return err
}

// summarize extracts a short message from a store error body.
func summarize(apiErr *googleapi.Error) string {
	if apiErr.Message != "" {
		return apiErr.Message
	}
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal([]byte(apiErr.Body), &body) == nil && body.Message != "" {
		return body.Message
	}
	if s := strings.TrimSpace(apiErr.Body); s != "" && len(s) <= 200 {
		return s
	}
	return http.StatusText(apiErr.Code)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// basicAuthTransport adds HTTP basic credentials to every request.
type basicAuthTransport struct {
	username string
	password string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.SetBasicAuth(t.username, t.password)
	return t.base.RoundTrip(r)
}
