package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chain-risk-lab/internal/domain"
	"chain-risk-lab/internal/observability"
)

// Default configuration values.
const (
	DefaultBaseURL     = "https://api.covalenthq.com/v1"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
	DefaultMaxPages    = 10
)

// HTTPClient implements Client against a GoldRush-style REST API.
type HTTPClient struct {
	baseURL     string
	apiKey      string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	maxPages    int
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithBaseURL overrides the API base URL.
func WithBaseURL(base string) ClientOption {
	return func(c *HTTPClient) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithMaxDelay sets maximum retry delay.
func WithMaxDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.maxDelay = d
	}
}

// WithMaxPages limits how many history pages are followed.
func WithMaxPages(n int) ClientOption {
	return func(c *HTTPClient) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a new provider HTTP client.
func NewHTTPClient(apiKey string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL:     DefaultBaseURL,
		apiKey:      apiKey,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
		maxPages:    DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Client = (*HTTPClient)(nil)

// GetTransactionsForAddress follows history pages until the provider reports
// no next page or the page limit is reached.
func (c *HTTPClient) GetTransactionsForAddress(ctx context.Context, chain, address string) (*Response, error) {
	start := time.Now()
	resp, err := c.transactionsForAddress(ctx, chain, address)
	observability.RecordProviderCall("transactions_for_address", time.Since(start).Seconds(), err)
	return resp, err
}

func (c *HTTPClient) transactionsForAddress(ctx context.Context, chain, address string) (*Response, error) {
	out := &Response{}
	for page := 0; page < c.maxPages; page++ {
		path := fmt.Sprintf("/%s/address/%s/transactions_v3/page/%d/",
			url.PathEscape(chain), url.PathEscape(address), page)

		env, err := c.get(ctx, path, url.Values{"no-logs": {"false"}})
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}

		if env.Data == nil || env.Data.Items == nil {
			if page == 0 {
				// Item list missing entirely.
				return &Response{}, nil
			}
			break
		}

		if out.Items == nil {
			out.Items = make([]domain.RawTransaction, 0, len(env.Data.Items))
		}
		out.Items = append(out.Items, env.Data.Items...)

		if env.Data.Links == nil || env.Data.Links.Next == nil || *env.Data.Links.Next == "" {
			break
		}
	}
	return out, nil
}

// GetTransaction fetches one transaction with decoded logs.
func (c *HTTPClient) GetTransaction(ctx context.Context, chain, hash string) (*Response, error) {
	start := time.Now()
	path := fmt.Sprintf("/%s/transaction_v2/%s/", url.PathEscape(chain), url.PathEscape(hash))

	env, err := c.get(ctx, path, nil)
	observability.RecordProviderCall("transaction", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}
	if env.Data == nil {
		return &Response{}, nil
	}
	return &Response{Items: env.Data.Items}, nil
}

// get performs a GET with retries and exponential backoff.
// Transport errors, 429 and 5xx are retried; error envelopes are not.
func (c *HTTPClient) get(ctx context.Context, path string, query url.Values) (*envelope, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		// Handle rate limiting
		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
			continue
		}
		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}

		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			if resp.StatusCode != http.StatusOK {
				return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
			}
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}

		if env.Error || resp.StatusCode != http.StatusOK {
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				Code:       env.ErrorCode,
				Message:    env.ErrorMessage,
			}
		}

		return &env, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
