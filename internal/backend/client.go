package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/papertriage/papertriage/internal/candidate"
	"github.com/papertriage/papertriage/internal/version"
)

// MaxPageSize is the largest page the candidates endpoint will serve.
const MaxPageSize = 100

// DefaultRetryMaxElapsed bounds how long a listing keeps retrying transient
// connection failures.
const DefaultRetryMaxElapsed = 2 * time.Second

var (
	// ErrTransport marks every failure to get a usable answer from the
	// backend: unreachable host, non-2xx status or malformed body.
	ErrTransport = errors.New("backend unavailable")

	ErrNotFound = errors.New("not found")
)

// StatusError is a non-2xx response. It matches ErrTransport with errors.Is.
type StatusError struct {
	Code   int
	Status string
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("HTTP %d: %s", e.Code, e.Detail)
	}
	if e.Status != "" {
		return "HTTP " + e.Status
	}
	return fmt.Sprintf("HTTP %d", e.Code)
}

func (e *StatusError) Unwrap() error { return ErrTransport }

// ListResult is one page of candidates. Total counts every candidate
// matching the filter, not just this page.
type ListResult struct {
	Items    []candidate.Candidate `json:"items"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page,omitempty"`
	PageSize int                   `json:"page_size,omitempty"`
}

// LibraryPage is one page of accepted papers.
type LibraryPage struct {
	Items    []candidate.LibraryItem `json:"items"`
	Total    int                     `json:"total"`
	Page     int                     `json:"page,omitempty"`
	PageSize int                     `json:"page_size,omitempty"`
}

// Lister is the read side the session needs.
type Lister interface {
	ListCandidates(ctx context.Context, status candidate.Status, page, pageSize int) (ListResult, error)
}

// Client provides an interface for interacting with the triage backend.
// This abstraction allows for easy mocking in tests.
type Client interface {
	Lister

	// GetCandidate fetches a single candidate by paper id
	GetCandidate(ctx context.Context, paperID string) (*candidate.Candidate, error)

	// SubmitFeedback records an accept/reject decision. Failures are
	// reported in the result, never as a separate error.
	SubmitFeedback(ctx context.Context, req candidate.FeedbackRequest) candidate.FeedbackResult

	// TriggerRefresh runs a retrieval round on the backend
	TriggerRefresh(ctx context.Context, req candidate.RefreshRequest) (candidate.RefreshResult, error)

	// ListFeedback returns recorded decisions, optionally since an ISO8601 time
	ListFeedback(ctx context.Context, since string) ([]candidate.FeedbackEvent, error)

	// ListLibrary returns a page of accepted papers
	ListLibrary(ctx context.Context, page, pageSize int) (LibraryPage, error)
}

// HTTPClient is the default HTTP-based implementation of Client
type HTTPClient struct {
	addr            string
	httpClient      *http.Client
	refreshClient   *http.Client
	retryMaxElapsed time.Duration
	newKey          func() string
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout sets the per-request timeout for everything except refresh,
// whose deadline is owned by the caller.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.httpClient.Timeout = d }
}

// WithRetryMaxElapsed bounds retries of transient listing failures. Zero
// disables retrying.
func WithRetryMaxElapsed(d time.Duration) Option {
	return func(c *HTTPClient) { c.retryMaxElapsed = d }
}

// WithIdempotencyKeys overrides how feedback idempotency keys are generated.
func WithIdempotencyKeys(fn func() string) Option {
	return func(c *HTTPClient) { c.newKey = fn }
}

// NewHTTPClient creates a client for the backend at addr, e.g.
// "http://127.0.0.1:8000".
func NewHTTPClient(addr string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		addr:            strings.TrimRight(addr, "/"),
		httpClient:      &http.Client{Timeout: 10 * time.Second},
		refreshClient:   &http.Client{},
		retryMaxElapsed: DefaultRetryMaxElapsed,
		newKey:          uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Addr returns the backend base address.
func (c *HTTPClient) Addr() string {
	return c.addr
}

func (c *HTTPClient) ListCandidates(ctx context.Context, status candidate.Status, page, pageSize int) (ListResult, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))
	if status != candidate.StatusAll {
		params.Set("status", string(status))
	}

	var result ListResult
	err := c.withRetry(ctx, func() error {
		result = ListResult{}
		return c.getJSON(ctx, c.httpClient, "/api/candidates?"+params.Encode(), &result)
	})
	if err != nil {
		return ListResult{Items: []candidate.Candidate{}}, fmt.Errorf("list candidates: %w", err)
	}
	if result.Items == nil {
		result.Items = []candidate.Candidate{}
	}
	return result, nil
}

// ListAll collects every candidate matching status by walking pages of
// MaxPageSize until the server-reported total is reached.
func ListAll(ctx context.Context, l Lister, status candidate.Status) ([]candidate.Candidate, error) {
	all := []candidate.Candidate{}
	for page := 1; ; page++ {
		res, err := l.ListCandidates(ctx, status, page, MaxPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Items...)
		if len(res.Items) == 0 || len(all) >= res.Total {
			return all, nil
		}
	}
}

func (c *HTTPClient) GetCandidate(ctx context.Context, paperID string) (*candidate.Candidate, error) {
	var cand candidate.Candidate
	err := c.getJSON(ctx, c.httpClient, "/api/candidates/"+url.PathEscape(paperID), &cand)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
		return nil, fmt.Errorf("candidate %s: %w", paperID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get candidate %s: %w", paperID, err)
	}
	return &cand, nil
}

func (c *HTTPClient) SubmitFeedback(ctx context.Context, req candidate.FeedbackRequest) candidate.FeedbackResult {
	if req.ReasonTags == nil {
		req.ReasonTags = []string{}
	}
	headers := map[string]string{"Idempotency-Key": c.newKey()}

	var result candidate.FeedbackResult
	if err := c.postJSON(ctx, c.httpClient, "/api/feedback", req, &result, headers); err != nil {
		return candidate.FeedbackResult{Success: false, Message: err.Error()}
	}
	return result
}

func (c *HTTPClient) TriggerRefresh(ctx context.Context, req candidate.RefreshRequest) (candidate.RefreshResult, error) {
	var result candidate.RefreshResult
	if err := c.postJSON(ctx, c.refreshClient, "/api/candidates/refresh", req, &result, nil); err != nil {
		return candidate.RefreshResult{}, fmt.Errorf("refresh: %w", err)
	}
	return result, nil
}

func (c *HTTPClient) ListFeedback(ctx context.Context, since string) ([]candidate.FeedbackEvent, error) {
	path := "/api/feedback"
	if since != "" {
		path += "?" + url.Values{"since": {since}}.Encode()
	}
	var result struct {
		Items []candidate.FeedbackEvent `json:"items"`
		Total int                       `json:"total"`
	}
	if err := c.getJSON(ctx, c.httpClient, path, &result); err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return result.Items, nil
}

func (c *HTTPClient) ListLibrary(ctx context.Context, page, pageSize int) (LibraryPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))
	var result LibraryPage
	if err := c.getJSON(ctx, c.httpClient, "/api/library?"+params.Encode(), &result); err != nil {
		return LibraryPage{}, fmt.Errorf("list library: %w", err)
	}
	return result, nil
}

// getJSON performs a GET request and decodes the JSON response into out.
func (c *HTTPClient) getJSON(ctx context.Context, hc *http.Client, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.addr+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(hc, req, out)
}

// postJSON performs a POST request with a JSON body and decodes the response
// into out.
func (c *HTTPClient) postJSON(ctx context.Context, hc *http.Client, path string, in, out any, headers map[string]string) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.addr+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.do(hc, req, out)
}

func (c *HTTPClient) do(hc *http.Client, req *http.Request, out any) error {
	req.Header.Set("User-Agent", version.UserAgent())
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readStatusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrTransport, err)
	}
	return nil
}

// readStatusError builds a StatusError, lifting the "detail" field that the
// backend puts in error bodies.
func readStatusError(resp *http.Response) error {
	serr := &StatusError{Code: resp.StatusCode, Status: resp.Status}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		var detail string
		if json.Unmarshal(payload.Detail, &detail) == nil && detail != "" {
			serr.Detail = detail
		} else if len(payload.Detail) > 0 && string(payload.Detail) != "null" {
			serr.Detail = string(payload.Detail)
		} else {
			serr.Detail = payload.Message
		}
	}
	return serr
}

func (c *HTTPClient) withRetry(ctx context.Context, op func() error) error {
	if c.retryMaxElapsed <= 0 {
		return op()
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxElapsedTime = c.retryMaxElapsed
	return backoff.Retry(func() error {
		err := op()
		if err != nil && !isRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(bo, ctx))
}

// isRetryable reports whether err is a transient connection failure or a
// gateway status worth retrying. Decode failures and client errors are not.
func isRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Code {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
