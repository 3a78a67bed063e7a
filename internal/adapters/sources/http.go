package sources

import (
	"context"
	"errors"
	"flight-market-service/internal/domain"
	"flight-market-service/internal/logging"
	"flight-market-service/internal/ports"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultLimit applies when a caller passes a non-positive limit.
const DefaultLimit = 100

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// httpClient issues single, unretried requests on behalf of a source.
type httpClient struct {
	session   *http.Client
	userAgent string
	accept    string
}

func newHTTPClient(timeout time.Duration, userAgent, accept string) *httpClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpClient{
		session:   &http.Client{Timeout: timeout},
		userAgent: userAgent,
		accept:    accept,
	}
}

func (c *httpClient) newRequest(ctx context.Context, method string, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.accept != "" {
		req.Header.Set("Accept", c.accept)
	}

	return req, nil
}

// do returns an *httpStatusError for any response other than 200.
func (c *httpClient) do(req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// emptyOutcome logs the failure and returns the explicit empty outcome for it.
func emptyOutcome(
	ctx context.Context,
	source domain.Provenance,
	start time.Time,
	status int,
	reason string,
) ports.FetchOutcome {
	latency := time.Since(start)

	logging.Ctx(ctx).Warn().
		Str("source", string(source)).
		Int("status", status).
		Int64("dur_ms", latency.Milliseconds()).
		Str("reason", reason).
		Msg("source returned no flights")

	return ports.FetchOutcome{
		Source:     source,
		Reason:     reason,
		StatusCode: status,
		Latency:    latency,
	}
}

func statusCodeOf(err error) int {
	var he *httpStatusError
	if errors.As(err, &he) {
		return he.Code
	}
	return 0
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
