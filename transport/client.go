package transport

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

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-appstore/core"
	"github.com/goliatone/go-appstore/ratelimit"
)

const defaultClientTimeout = 30 * time.Second
const defaultResponseBodyLimit int64 = 10 << 20 // 10 MiB

// Client issues authenticated JSON requests against the API base, follows
// cursor pagination, and retries throttled or transient failures under a
// bounded policy. It keeps no state across calls; the token cache lives in
// the TokenSource.
type Client struct {
	BaseURL              string
	HTTPClient           core.HTTPDoer
	Tokens               core.TokenSource
	Policy               *ratelimit.Policy
	Logger               core.Logger
	MaxResponseBodyBytes int64
	Now                  func() time.Time
	Sleep                func(ctx context.Context, d time.Duration) error
}

func NewClient(baseURL string, tokens core.TokenSource) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = core.DefaultBaseURL
	}
	_, logger := core.ResolveLogger("appstore.transport", nil, nil)
	return &Client{
		BaseURL:              baseURL,
		HTTPClient:           &http.Client{Timeout: defaultClientTimeout},
		Tokens:               tokens,
		Policy:               ratelimit.NewPolicy(),
		Logger:               logger,
		MaxResponseBodyBytes: defaultResponseBodyLimit,
		Now:                  func() time.Time { return time.Now().UTC() },
		Sleep:                sleepContext,
	}
}

// Request performs one API call, retrying under the rate-limit policy.
// Non-idempotent methods are replayed only when the round trip failed before
// any response was received, or after a 429 refusal.
func (c *Client) Request(ctx context.Context, method string, path string, query url.Values, body any) (core.Document, error) {
	if c == nil || c.HTTPClient == nil {
		return core.Document{}, core.NewInternalError("transport: client requires an http client")
	}
	if c.Tokens == nil {
		return core.Document{}, core.NewAuthError("transport: client requires a token source")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	method = strings.TrimSpace(strings.ToUpper(method))
	if method == "" {
		method = http.MethodGet
	}
	target, err := c.resolveURL(path, query)
	if err != nil {
		return core.Document{}, err
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return core.Document{}, transportWrapError(
				err,
				goerrors.CategoryBadInput,
				"transport: encode request body",
				http.StatusBadRequest,
				core.AppStoreErrorBadInput,
				map[string]any{"method": method, "url": target},
			)
		}
	}

	requestID := uuid.NewString()
	metadata := map[string]any{"method": method, "url": target, "request_id": requestID}

	rateAttempts := 0
	transientAttempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return core.Document{}, core.NewCancelledError(err)
		}

		status, headers, doc, received, err := c.attempt(ctx, method, target, payload)
		if err != nil {
			if core.IsCancelled(err) || ctx.Err() != nil {
				return core.Document{}, core.NewCancelledError(err)
			}
			if core.IsAuthError(err) {
				return core.Document{}, err
			}
			// A response arrived but reading or decoding it failed. The
			// server may have applied the request, so only methods that
			// cannot create duplicate state are replayed.
			if received && !isIdempotent(method) {
				return core.Document{}, err
			}
			transientAttempts++
			if transientAttempts > c.policy().AttemptsTransient() {
				return core.Document{}, transportWrapError(
					err,
					goerrors.CategoryExternal,
					"transport: request failed after retries",
					http.StatusBadGateway,
					core.AppStoreErrorTransport,
					metadata,
				)
			}
			if err := c.backoff(ctx, c.policy().Backoff(transientAttempts), metadata); err != nil {
				return core.Document{}, err
			}
			continue
		}

		switch {
		case status >= 200 && status < 300:
			return doc, nil
		case status == http.StatusTooManyRequests:
			rateAttempts++
			if rateAttempts > c.policy().AttemptsRateLimit() {
				return core.Document{}, classifyResponse(status, doc, metadata)
			}
			delay := c.policy().Delay(rateAttempts, headers, c.now())
			if err := c.backoff(ctx, delay, metadata); err != nil {
				return core.Document{}, err
			}
		case status >= 500:
			// A response arrived; replay only methods that cannot create
			// duplicate resources. retry_attempts lets callers tell a
			// never-retried write failure apart from an exhausted budget.
			if !isIdempotent(method) {
				metadata["retry_attempts"] = 0
				return core.Document{}, classifyResponse(status, doc, metadata)
			}
			transientAttempts++
			if transientAttempts > c.policy().AttemptsTransient() {
				metadata["retry_attempts"] = transientAttempts - 1
				return core.Document{}, classifyResponse(status, doc, metadata)
			}
			if err := c.backoff(ctx, c.policy().Backoff(transientAttempts), metadata); err != nil {
				return core.Document{}, err
			}
		default:
			return core.Document{}, classifyResponse(status, doc, metadata)
		}
	}
}

// Paginate returns a pager over a list endpoint. Items arrive flattened in
// exact server order; the sequence restarts only by calling Paginate again.
func (c *Client) Paginate(method string, path string, query url.Values) *Pager {
	return &Pager{client: c, method: method, next: path, query: query}
}

// FetchAll drains a paginated endpoint into a single slice.
func (c *Client) FetchAll(ctx context.Context, path string, query url.Values) ([]core.Resource, error) {
	pager := c.Paginate(http.MethodGet, path, query)
	items := []core.Resource{}
	for pager.More() {
		page, err := pager.Page(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)
	}
	return items, nil
}

// attempt performs one HTTP round trip. The received flag reports whether a
// response arrived before the failure; callers must not replay
// non-idempotent methods once it is set.
func (c *Client) attempt(ctx context.Context, method string, target string, payload []byte) (int, map[string]string, core.Document, bool, error) {
	bearer, err := c.Tokens.Bearer(ctx)
	if err != nil {
		return 0, nil, core.Document{}, false, err
	}

	var body io.Reader
	if len(payload) > 0 {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, nil, core.Document{}, false, transportWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: create http request",
			http.StatusBadRequest,
			core.AppStoreErrorBadInput,
			map[string]any{"method": method, "url": target},
		)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if len(payload) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, core.Document{}, false, transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: execute http request",
			http.StatusBadGateway,
			core.AppStoreErrorTransport,
			map[string]any{"method": method, "url": target},
		)
	}
	defer res.Body.Close()

	limit := c.MaxResponseBodyBytes
	if limit <= 0 {
		limit = defaultResponseBodyLimit
	}
	raw, err := io.ReadAll(io.LimitReader(res.Body, limit+1))
	if err != nil {
		return 0, nil, core.Document{}, true, transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: read response body",
			http.StatusBadGateway,
			core.AppStoreErrorTransport,
			map[string]any{"method": method, "url": target, "status_code": res.StatusCode},
		)
	}
	if int64(len(raw)) > limit {
		return 0, nil, core.Document{}, true, transportError(
			fmt.Sprintf("transport: response body exceeds limit of %d bytes", limit),
			goerrors.CategoryExternal,
			http.StatusBadGateway,
			core.AppStoreErrorTransport,
			map[string]any{"method": method, "url": target, "status_code": res.StatusCode},
		)
	}

	doc := core.Document{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil && res.StatusCode < 300 {
			return 0, nil, core.Document{}, true, transportWrapError(
				err,
				goerrors.CategoryExternal,
				"transport: decode response body",
				http.StatusBadGateway,
				core.AppStoreErrorTransport,
				map[string]any{"method": method, "url": target, "status_code": res.StatusCode},
			)
		}
	}
	return res.StatusCode, flattenHeaders(res.Header), doc, true, nil
}

func (c *Client) backoff(ctx context.Context, delay time.Duration, metadata map[string]any) error {
	if c.Logger != nil {
		c.Logger.Warn("transport retrying request",
			"request_id", metadata["request_id"],
			"method", metadata["method"],
			"delay_ms", delay.Milliseconds(),
		)
	}
	if err := ctx.Err(); err != nil {
		return core.NewCancelledError(err)
	}
	sleep := c.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return sleep(ctx, delay)
}

func (c *Client) resolveURL(path string, query url.Values) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", transportError(
			"transport: request path is required",
			goerrors.CategoryBadInput,
			http.StatusBadRequest,
			core.AppStoreErrorBadInput,
			nil,
		)
	}

	var raw string
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		raw = path
	} else {
		raw = c.BaseURL + "/" + strings.TrimLeft(path, "/")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", transportWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: invalid request url",
			http.StatusBadRequest,
			core.AppStoreErrorBadInput,
			map[string]any{"url": raw},
		)
	}

	merged := parsed.Query()
	for key, values := range query {
		if strings.TrimSpace(key) == "" {
			continue
		}
		for _, value := range values {
			merged.Add(key, value)
		}
	}
	parsed.RawQuery = merged.Encode()
	return parsed.String(), nil
}

func (c *Client) policy() *ratelimit.Policy {
	if c != nil && c.Policy != nil {
		return c.Policy
	}
	return ratelimit.NewPolicy()
}

func (c *Client) now() time.Time {
	if c != nil && c.Now != nil {
		return c.Now().UTC()
	}
	return time.Now().UTC()
}

func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodDelete, http.MethodPut:
		return true
	default:
		return false
	}
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return core.NewCancelledError(ctx.Err())
	case <-timer.C:
		return nil
	}
}

func flattenHeaders(headers http.Header) map[string]string {
	if len(headers) == 0 {
		return map[string]string{}
	}
	flat := make(map[string]string, len(headers))
	for key, values := range headers {
		if len(values) == 0 {
			flat[key] = ""
			continue
		}
		flat[key] = strings.Join(values, ",")
	}
	return flat
}
