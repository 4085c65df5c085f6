// Package backend holds the immutable dev/qa/prod origin table and the
// header allow-list, and implements the HTTP client operations the executor
// and HTTP handler delegate to: sub-request GET dispatch, pass-through POST,
// and best-effort cache purge. Grounded on original_source/src/backend.rs's
// Backend abstraction (a small, fixed URL table plus send/purge methods).
package backend

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// Env identifies one of the three origin environments selectable by the
// X-Backend-Env header.
type Env string

const (
	Dev  Env = "dev"
	QA   Env = "qa"
	Prod Env = "prod"
)

// Table maps each Env to its fixed origin base URL (scheme + host, no
// trailing slash). It is built once at process start and never mutated.
type Table map[Env]string

// DefaultTable returns the standard dev/qa/prod origin table. Hostnames are
// placeholders for the real origin deployment; operators override them via
// internal/config.
func DefaultTable() Table {
	return Table{
		Dev:  "https://dev.origin.internal",
		QA:   "https://qa.origin.internal",
		Prod: "https://prod.origin.internal",
	}
}

// Resolve returns the base URL for env, falling back to qa when env is
// empty or not present in the table, matching §6: "default qa when absent
// or unrecognized".
func (t Table) Resolve(env Env) string {
	if url, ok := t[env]; ok {
		return url
	}
	return t[QA]
}

// hopByHopHeaders are stripped from any forwarded request regardless of the
// allow-list, per RFC 7230 §6.1.
var hopByHopHeaders = map[string]bool{
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Te":                  true,
	"Trailer":             true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
}

// HeaderAllowList is the set of ingress header names forwarded to the
// origin, case-insensitive.
type HeaderAllowList map[string]bool

// DefaultHeaderAllowList ports original_source/src/main.rs's PASS_HEADERS
// constant.
func DefaultHeaderAllowList() HeaderAllowList {
	names := []string{
		"Cookie",
		"Cache-Control",
		"X-Test-Identifier",
		"X-Backend-Env",
		"Authorization",
		"Access-Control-Request-Method",
		"Access-Control-Request-Headers",
		"Origin",
		"Content-Type",
		"Accept",
	}
	allow := make(HeaderAllowList, len(names))
	for _, n := range names {
		allow[strings.ToLower(n)] = true
	}
	return allow
}

// Filter returns a copy of headers containing only allow-listed,
// non-hop-by-hop entries.
func (a HeaderAllowList) Filter(headers http.Header) http.Header {
	out := make(http.Header)
	for name, values := range headers {
		if hopByHopHeaders[http.CanonicalHeaderKey(name)] {
			continue
		}
		if !a[strings.ToLower(name)] {
			continue
		}
		out[name] = values
	}
	return out
}

// Client issues sub-requests and pass-through requests against a resolved
// origin base URL.
type Client struct {
	HTTPClient *http.Client
}

// NewClient returns a Client using http.DefaultClient's transport settings
// with no client-level timeout; callers are expected to bound requests via
// context, per §5.
func NewClient() *Client {
	return &Client{HTTPClient: &http.Client{}}
}

// Get issues a GET to baseURL+"/graphql" with the given query parameters
// and allow-listed headers, returning the raw response body and status
// code.
func (c *Client) Get(ctx context.Context, baseURL string, query map[string]string, headers http.Header) (status int, body []byte, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/graphql", nil)
	if err != nil {
		return 0, nil, err
	}
	q := req.URL.Query()
	for k, v := range query {
		q.Set(k, v)
	}
	req.URL.RawQuery = q.Encode()
	req.Header = headers

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// SendPassThrough forwards body verbatim as a POST to baseURL+"/graphql"
// with allow-listed headers, returning the origin's response unchanged, per
// spec §4.2's pass-through contract.
func (c *Client) SendPassThrough(ctx context.Context, baseURL string, body []byte, headers http.Header) (status int, respBody []byte, contentType string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/graphql", strings.NewReader(string(body)))
	if err != nil {
		return 0, nil, "", err
	}
	req.Header = headers

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, "", err
	}
	defer resp.Body.Close()

	respBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, "", err
	}
	return resp.StatusCode, respBody, resp.Header.Get("Content-Type"), nil
}

// PurgeCache asks the origin's edge CDN to evict the cache entry for url.
// Ported from original_source/src/worker.rs's purge-on-error behavior: a
// sub-response carrying GraphQL errors should never be served from cache
// again. Best-effort — failures are returned for logging but never fail the
// overall request.
func (c *Client) PurgeCache(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, "PURGE", url, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return nil
}
