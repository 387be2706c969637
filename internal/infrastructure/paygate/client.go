// Package paygate implements the HTTP resource providers for the remote
// payments backend. Providers are pure request/response mappers; the
// only control flow beyond shape mapping is the CSRF refresh-and-replay
// policy in do().
package paygate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/flowpayhq/flowpay/internal/core/domain"
)

const csrfHeader = "X-Csrf-Token"

// Client is a cookie-based session to one backend surface. The zero
// value is not usable; construct with NewClient.
type Client struct {
	baseURL  string
	apiPath  string
	csrfPath string
	client   *http.Client

	mu        sync.RWMutex
	csrfToken string
}

// NewClient builds a client for the backend at baseURL. apiPath
// prefixes every resource path and csrfPath is the endpoint that issues
// the CSRF cookie and echoes the token in the X-Csrf-Token header.
func NewClient(baseURL, apiPath, csrfPath string, timeout time.Duration) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiPath:  apiPath,
		csrfPath: csrfPath,
		client:   &http.Client{Timeout: timeout, Jar: jar},
	}, nil
}

// RefreshCSRF fetches a fresh CSRF cookie and remembers the echoed
// token for subsequent mutating requests.
func (c *Client) RefreshCSRF(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.csrfPath, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("get csrf cookie: %w", err)
	}
	defer resp.Body.Close()
	// nolint:all
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d fetching csrf cookie", resp.StatusCode)
	}

	token := resp.Header.Get(csrfHeader)
	if token == "" {
		return fmt.Errorf("csrf cookie response carries no %s header", csrfHeader)
	}

	c.mu.Lock()
	c.csrfToken = token
	c.mu.Unlock()
	return nil
}

// do performs one API call. The request body is marshalled once and
// kept so that a 403 can be replayed byte for byte after a CSRF
// refresh. Exactly one replay is attempted; a second 403 propagates.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
	}

	resp, err := c.attempt(ctx, method, path, query, payload)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusForbidden {
		// nolint:all
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if err := c.RefreshCSRF(ctx); err != nil {
			return fmt.Errorf("csrf refresh after 403: %w", err)
		}
		resp, err = c.attempt(ctx, method, path, query, payload)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// nolint:all
		io.Copy(io.Discard, resp.Body)
		return domain.ErrUnauthenticated
	case resp.StatusCode >= 400:
		return decodeAPIError(resp)
	}

	if out == nil {
		// nolint:all
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

func (c *Client) attempt(ctx context.Context, method, path string, query url.Values, payload []byte) (*http.Response, error) {
	u := c.baseURL + c.apiPath + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	token := c.csrfToken
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set(csrfHeader, token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func decodeAPIError(resp *http.Response) error {
	b, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	apiErr := &domain.APIError{HTTPCode: resp.StatusCode}
	if err := json.Unmarshal(b, apiErr); err != nil || apiErr.Message == "" {
		return &domain.APIError{
			HTTPCode: resp.StatusCode,
			Message:  fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(b))),
		}
	}
	return apiErr
}

// resultsEnvelope unwraps the {results: [...]} shape used by
// non-paginated list endpoints.
type resultsEnvelope[T any] struct {
	Results []T `json:"results"`
}
