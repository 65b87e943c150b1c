// Package kv is a narrow client for the Cloudflare Workers KV REST API, the
// edge cache the redirect path reads from.
//
// Every method is best effort. Network failures and non-2xx responses are
// logged and reported as "not stored" or "absent", never as errors. Without
// credentials the client is unconfigured: writes do nothing and reads miss.
package kv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
	"github.com/wadjakorntonsri/linkvault/pkg/ports"
)

const (
	DefaultBaseURL   = "https://api.cloudflare.com/client/v4"
	DefaultTimeout   = 3 * time.Second
	DefaultBatchSize = 10000
	bulkTimeoutScale = 3
)

type Config struct {
	AccountID   string
	NamespaceID string
	APIToken    string
	BaseURL     string
	Timeout     time.Duration
	BatchSize   int
	HTTPClient  *http.Client
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger.With("component", "kv")}
}

// IsConfigured reports whether account, namespace and token are all set.
func (c *Client) IsConfigured() bool {
	return c.cfg.AccountID != "" && c.cfg.NamespaceID != "" && c.cfg.APIToken != ""
}

// Put writes one value. It reports whether the cache acknowledged the write.
func (c *Client) Put(ctx context.Context, key, value string) bool {
	if !c.IsConfigured() {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.do(ctx, http.MethodPut, c.valueURL(key), "text/plain", []byte(value))
	if err != nil {
		c.logger.Warn("kv put failed", "key", key, "error", err)
		return false
	}
	defer drain(resp)
	if resp.StatusCode/100 != 2 {
		c.logger.Warn("kv put rejected", "key", key, "status", resp.StatusCode)
		return false
	}
	return true
}

// Get reads one value. Missing keys and unreachable caches both report false.
func (c *Client) Get(ctx context.Context, key string) (string, bool) {
	if !c.IsConfigured() {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.do(ctx, http.MethodGet, c.valueURL(key), "", nil)
	if err != nil {
		c.logger.Warn("kv get failed", "key", key, "error", err)
		return "", false
	}
	defer drain(resp)
	if resp.StatusCode == http.StatusNotFound {
		return "", false
	}
	if resp.StatusCode/100 != 2 {
		c.logger.Warn("kv get rejected", "key", key, "status", resp.StatusCode)
		return "", false
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("kv get read failed", "key", key, "error", err)
		return "", false
	}
	return string(body), true
}

func (c *Client) Delete(ctx context.Context, key string) bool {
	if !c.IsConfigured() {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.do(ctx, http.MethodDelete, c.valueURL(key), "", nil)
	if err != nil {
		c.logger.Warn("kv delete failed", "key", key, "error", err)
		return false
	}
	defer drain(resp)
	if resp.StatusCode/100 != 2 && resp.StatusCode != http.StatusNotFound {
		c.logger.Warn("kv delete rejected", "key", key, "status", resp.StatusCode)
		return false
	}
	return true
}

// BulkPut writes entries in chunks of the configured batch size, one request
// per chunk, in order. A chunk that fails as a whole counts all its entries
// as failed; keys the API lists as unsuccessful are counted individually.
func (c *Client) BulkPut(ctx context.Context, entries []domain.KVEntry) domain.BulkResult {
	var res domain.BulkResult
	if !c.IsConfigured() || len(entries) == 0 {
		return res
	}

	for start := 0; start < len(entries); start += c.cfg.BatchSize {
		end := min(start+c.cfg.BatchSize, len(entries))
		ok, failed := c.putChunk(ctx, entries[start:end])
		res.Success += ok
		res.Failed += failed
	}
	return res
}

type bulkResponse struct {
	Success bool `json:"success"`
	Errors  []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
	Result *struct {
		SuccessfulKeyCount *int     `json:"successful_key_count"`
		UnsuccessfulKeys   []string `json:"unsuccessful_keys"`
	} `json:"result"`
}

func (c *Client) putChunk(ctx context.Context, chunk []domain.KVEntry) (succeeded, failed int) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout*bulkTimeoutScale)
	defer cancel()

	body, err := json.Marshal(chunk)
	if err != nil {
		c.logger.Error("kv bulk encode failed", "entries", len(chunk), "error", err)
		return 0, len(chunk)
	}

	resp, err := c.do(ctx, http.MethodPut, c.namespaceURL()+"/bulk", "application/json", body)
	if err != nil {
		c.logger.Warn("kv bulk put failed", "entries", len(chunk), "error", err)
		return 0, len(chunk)
	}
	defer drain(resp)
	if resp.StatusCode/100 != 2 {
		c.logger.Warn("kv bulk put rejected", "entries", len(chunk), "status", resp.StatusCode)
		return 0, len(chunk)
	}

	var br bulkResponse
	if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
		// A 2xx without a readable envelope is taken as a full success.
		return len(chunk), 0
	}
	if !br.Success {
		c.logger.Warn("kv bulk put unsuccessful", "entries", len(chunk), "errors", br.Errors)
		return 0, len(chunk)
	}
	if br.Result != nil && len(br.Result.UnsuccessfulKeys) > 0 {
		failed = min(len(br.Result.UnsuccessfulKeys), len(chunk))
		c.logger.Warn("kv bulk put partially failed", "entries", len(chunk), "failed", failed)
		return len(chunk) - failed, failed
	}
	return len(chunk), 0
}

// PutLink stores the redirect projection of a link under its slug.
func (c *Client) PutLink(ctx context.Context, slug string, link domain.CachedLink) bool {
	data, err := json.Marshal(link)
	if err != nil {
		c.logger.Error("kv encode link failed", "slug", slug, "error", err)
		return false
	}
	return c.Put(ctx, slug, string(data))
}

// GetLink reads the redirect projection for slug. Undecodable values miss.
func (c *Client) GetLink(ctx context.Context, slug string) (domain.CachedLink, bool) {
	var link domain.CachedLink
	raw, ok := c.Get(ctx, slug)
	if !ok {
		return link, false
	}
	if err := json.Unmarshal([]byte(raw), &link); err != nil {
		c.logger.Warn("kv decode link failed", "slug", slug, "error", err)
		return link, false
	}
	return link, true
}

func (c *Client) DeleteLink(ctx context.Context, slug string) bool {
	return c.Delete(ctx, slug)
}

func (c *Client) namespaceURL() string {
	return fmt.Sprintf("%s/accounts/%s/storage/kv/namespaces/%s",
		c.cfg.BaseURL, url.PathEscape(c.cfg.AccountID), url.PathEscape(c.cfg.NamespaceID))
}

func (c *Client) valueURL(key string) string {
	return c.namespaceURL() + "/values/" + url.PathEscape(key)
}

func (c *Client) do(ctx context.Context, method, target, contentType string, body []byte) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.http.Do(req)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

var _ ports.CacheClient = (*Client)(nil)
