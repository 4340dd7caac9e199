package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const (
	// DefaultBaseURL is the base URL for the Notion API
	DefaultBaseURL = "https://api.notion.com/v1"
	// DefaultNotionVersion is sent in the Notion-Version header
	DefaultNotionVersion = "2022-06-28"
	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second
	// MaxRetries for rate limit errors
	MaxRetries = 3
	// InitialBackoff for rate limit retries
	InitialBackoff = time.Second
	// PageSize is the page size used for paginated endpoints
	PageSize = 100
)

// Error types for specific API errors
type (
	// AuthenticationError indicates an authentication failure
	AuthenticationError struct{ Message string }
	// RateLimitError indicates rate limit exceeded
	RateLimitError struct {
		Message    string
		RetryAfter time.Duration
	}
	// NotFoundError indicates a resource was not found
	NotFoundError struct{ Message string }
	// ValidationError indicates invalid input
	ValidationError struct{ Message string }
	// ServerError indicates a 5xx response
	ServerError struct {
		Status  int
		Message string
	}
)

func (e AuthenticationError) Error() string { return e.Message }
func (e RateLimitError) Error() string      { return e.Message }
func (e NotFoundError) Error() string       { return e.Message }
func (e ValidationError) Error() string     { return e.Message }
func (e ServerError) Error() string         { return e.Message }

// Client represents a Notion API client
type Client struct {
	baseURL        string
	apiToken       string
	notionVersion  string
	httpClient     *http.Client
	log            zerolog.Logger
	initialBackoff time.Duration
}

// ClientOption is a function that configures a Client
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL for the client
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithTimeout sets a custom timeout for the HTTP client
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithNotionVersion overrides the Notion-Version header
func WithNotionVersion(version string) ClientOption {
	return func(c *Client) {
		if version != "" {
			c.notionVersion = version
		}
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// WithInitialBackoff sets the first rate limit backoff; it doubles per retry
func WithInitialBackoff(d time.Duration) ClientOption {
	return func(c *Client) {
		c.initialBackoff = d
	}
}

// NewClient creates a new Notion API client
func NewClient(apiToken string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:        DefaultBaseURL,
		apiToken:       apiToken,
		notionVersion:  DefaultNotionVersion,
		httpClient:     &http.Client{Timeout: DefaultTimeout},
		log:            zerolog.Nop(),
		initialBackoff: InitialBackoff,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// call makes a single API call
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Notion-Version", c.notionVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("notion request")

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return respBody, nil
	}

	message := gjson.GetBytes(respBody, "message").String()
	if message == "" {
		message = string(respBody)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, AuthenticationError{Message: "invalid API token"}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, RateLimitError{
			Message:    fmt.Sprintf("rate limit exceeded: %s", message),
			RetryAfter: retryAfter(resp.Header.Get("Retry-After")),
		}
	case resp.StatusCode == http.StatusNotFound:
		return nil, NotFoundError{Message: fmt.Sprintf("not found: %s", message)}
	case resp.StatusCode == http.StatusBadRequest:
		return nil, ValidationError{Message: fmt.Sprintf("invalid request: %s", message)}
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, ServerError{Status: resp.StatusCode, Message: fmt.Sprintf("server error (status %d): %s", resp.StatusCode, message)}
	default:
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, message)
	}
}

func retryAfter(header string) time.Duration {
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// callWithRetry calls the API with retry logic for rate limits
func (c *Client) callWithRetry(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	backoff := c.initialBackoff

	for attempt := 0; attempt <= MaxRetries; attempt++ {
		resp, err := c.call(ctx, method, path, query, body)
		if err == nil {
			return resp, nil
		}

		// Only retry on rate limit errors
		rateErr, ok := err.(RateLimitError)
		if !ok {
			return nil, err
		}

		if attempt < MaxRetries {
			wait := backoff
			if rateErr.RetryAfter > wait {
				wait = rateErr.RetryAfter
			}
			c.log.Debug().Dur("wait", wait).Int("attempt", attempt+1).Msg("rate limited, backing off")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			backoff *= 2
		}
	}

	return nil, RateLimitError{Message: "rate limit exceeded after retries"}
}

// paginate follows next_cursor until has_more is false and returns every
// item of every page's results. GET endpoints take the cursor as a query
// parameter, POST endpoints in the body.
func (c *Client) paginate(ctx context.Context, method, path string, body map[string]interface{}) ([]json.RawMessage, error) {
	var items []json.RawMessage
	cursor := ""

	for {
		query := url.Values{}
		var reqBody interface{}
		if method == http.MethodGet {
			query.Set("page_size", strconv.Itoa(PageSize))
			if cursor != "" {
				query.Set("start_cursor", cursor)
			}
		} else {
			payload := map[string]interface{}{"page_size": PageSize}
			for k, v := range body {
				payload[k] = v
			}
			if cursor != "" {
				payload["start_cursor"] = cursor
			}
			reqBody = payload
		}

		resp, err := c.callWithRetry(ctx, method, path, query, reqBody)
		if err != nil {
			return nil, err
		}

		page := gjson.ParseBytes(resp)
		page.Get("results").ForEach(func(_, item gjson.Result) bool {
			items = append(items, json.RawMessage(item.Raw))
			return true
		})

		if !page.Get("has_more").Bool() {
			return items, nil
		}
		cursor = page.Get("next_cursor").String()
		if cursor == "" {
			return items, nil
		}
	}
}
