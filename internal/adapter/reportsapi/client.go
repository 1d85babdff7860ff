package reportsapi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/covid-report-etl/internal/domain"
)

// Exponential backoff between attempts: start at 300ms, double each retry,
// cap at 5s. Keeps transient upstream hiccups cheap without hammering the API.
const (
	initialBackoff = 300 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// retryableStatuses are the upstream responses worth another attempt.
// Anything else is treated as a hard failure for the country.
var retryableStatuses = map[int]bool{
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusGatewayTimeout:      true,
}

// Client fetches per-country report tables from the COVID reports API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	logger     *slog.Logger
}

// NewClient creates a reports API client. rpm caps the request rate on the
// client side; maxRetries counts attempts, so 1 disables retrying.
func NewClient(baseURL string, timeout time.Duration, maxRetries, rpm int, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// FetchCountryReports GETs /reports for one country and date and decodes the
// payload's "data" array into a column-ordered table. A payload with no rows
// is not an error: the country simply had nothing to report, which the caller
// handles as a degraded success.
func (c *Client) FetchCountryReports(ctx context.Context, iso, date string) (domain.Table, error) {
	params := url.Values{
		"iso":  {iso},
		"date": {date},
	}
	fullURL := c.baseURL + "/reports?" + params.Encode()

	body, err := c.doRequest(ctx, fullURL, iso)
	if err != nil {
		return domain.Table{}, err
	}

	table, err := ParseReportPayload(body)
	if err != nil {
		return domain.Table{}, fmt.Errorf("parse reports payload for %s: %w", iso, err)
	}
	if table.IsEmpty() {
		c.logger.Warn("no report data", "country", iso, "date", date)
	}
	return table, nil
}

// doRequest performs the GET with retries. Transport errors and the
// retryable status codes back off and try again; any other non-200 fails
// immediately.
func (c *Client) doRequest(ctx context.Context, fullURL, iso string) ([]byte, error) {
	backoff := initialBackoff

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		body, retryable, err := c.attempt(ctx, fullURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			return nil, lastErr
		}

		if attempt < c.maxRetries {
			c.logger.Warn("reports API request failed, retrying",
				"country", iso, "attempt", attempt, "backoff", backoff, "error", err)
			if !sleepWithContext(ctx, backoff) {
				return nil, ctx.Err()
			}
			backoff = nextBackoff(backoff, maxBackoff)
		}
	}
	return nil, fmt.Errorf("reports API request failed after %d attempts: %w", c.maxRetries, lastErr)
}

// attempt performs a single GET. The second return reports whether the
// failure is worth retrying.
func (c *Client) attempt(ctx context.Context, fullURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("reports API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, retryableStatuses[resp.StatusCode],
			fmt.Errorf("reports API error: status %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response body: %w", err)
	}
	return body, false, nil
}

func nextBackoff(current, ceiling time.Duration) time.Duration {
	next := current * 2
	if next > ceiling {
		return ceiling
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
