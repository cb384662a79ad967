// internal/adapters/hbnbapi/client.go
package hbnbapi

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hbnb_web/internal/adapters/observability"
	"hbnb_web/internal/domain"
)

var (
	ErrNotFound     = domain.ErrNotFound
	ErrUnauthorized = domain.ErrUnauthorized
	ErrForbidden    = domain.ErrForbidden
	ErrUnreachable  = domain.ErrUnreachable
)

type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.hc.Timeout = d
		}
	}
}

func WithRateLimit(rps int) Option {
	return func(c *Client) {
		if rps > 0 {
			c.rl = rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}

func New(base string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(20), 20),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// RequestOption adjusts a single outbound request.
type RequestOption func(*http.Request)

// WithToken attaches the session token as a bearer credential. An empty token
// leaves the request unauthenticated.
func WithToken(token string) RequestOption {
	return func(r *http.Request) {
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

func WithHeader(k, v string) RequestOption {
	return func(r *http.Request) { r.Header.Set(k, v) }
}

// Multipart is a request body sent as multipart/form-data with a single file part.
type Multipart struct {
	Field       string
	Filename    string
	ContentType string
	Body        io.Reader
}

// APIError is a non-2xx response from the API.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

func (e *APIError) ServerMessage() string { return e.Message }

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusUnprocessableEntity:
		// flask-jwt-extended answers 422 for malformed tokens
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// ---- Verbs ----

func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodGet, path, nil, out, opts)
}

func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPost, path, body, out, opts)
}

func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPut, path, body, out, opts)
}

func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodDelete, path, nil, out, opts)
}

// ---- Internals ----

// do sends one request and decodes a 2xx JSON body into out.
// Only GET is retried (429 and transient 5xx, honoring Retry-After); a retried
// POST could create a second place.
func (c *Client) do(ctx context.Context, method, path string, body, out any, opts []RequestOption) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	payload, ctype, err := encodeBody(body)
	if err != nil {
		return fmt.Errorf("%s %s: encode body: %w", method, path, err)
	}

	attempts := 1
	if method == http.MethodGet {
		attempts = 4
	}
	endpoint := routeLabel(path)

	var lastErr error
	for i := 0; i < attempts; i++ {
		// build a fresh request each attempt
		var rdr io.Reader
		if payload != nil {
			rdr = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "hbnb-web/1.0")
		if ctype != "" {
			req.Header.Set("Content-Type", ctype)
		}
		for _, o := range opts {
			o(req)
		}

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(method, endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %s %s: %v", ErrUnreachable, method, path, err)
			if i < attempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal(method, endpoint, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			err := decodeBody(resp, out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("%s %s: decode: %w", method, path, err)
			}
			return nil

		case retryable(resp.StatusCode) && i < attempts-1:
			wait := retryAfter(resp)
			io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = &APIError{Method: method, Path: path, Status: resp.StatusCode}
			if sleepCtx(ctx, wait) {
				continue
			}
			return ctx.Err()

		default:
			apiErr := readAPIError(method, path, resp)
			resp.Body.Close()
			return apiErr
		}
	}
	return lastErr
}

func encodeBody(body any) ([]byte, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *Multipart:
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		field := b.Field
		if field == "" {
			field = "file"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, b.Filename))
		ct := b.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if b.Body != nil {
			if _, err := io.Copy(part, b.Body); err != nil {
				return nil, "", err
			}
		}
		if err := mw.Close(); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), mw.FormDataContentType(), nil
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}
		return raw, "application/json", nil
	}
}

func decodeBody(resp *http.Response, out any) error {
	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// readAPIError keeps the server's message when the body carries one.
func readAPIError(method, path string, resp *http.Response) *APIError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	e := &APIError{Method: method, Path: path, Status: resp.StatusCode}
	var payload struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(b, &payload) == nil {
		switch {
		case payload.Message != "":
			e.Message = payload.Message
		case payload.Msg != "":
			e.Message = payload.Msg
		case payload.Error != "":
			e.Message = payload.Error
		}
	}
	return e
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// routeLabel collapses numeric path segments so metrics stay low-cardinality.
func routeLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if _, err := strconv.ParseInt(p, 10, 64); err == nil {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns 100ms, 200ms, 400ms... with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 100 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}

// IsAuthError reports whether err means the session is missing or rejected.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, domain.ErrNoSession)
}
