package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"present-delivery-service/internal/platform/metrics"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// StatusError is returned for HTTP responses with status >= 400.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// Client performs outbound calls for one external service under a CallPolicy.
// It is safe for sequential reuse across invocations.
type Client struct {
	service string
	session *http.Client
	policy  CallPolicy
	limiter *rate.Limiter
}

// New returns a client. A nil hc uses a fresh http.Client; the policy timeout
// always applies to the whole exchange.
func New(service string, policy CallPolicy, hc *http.Client) *Client {
	session := &http.Client{}
	if hc != nil {
		cp := *hc
		session = &cp
	}
	session.Timeout = policy.Timeout

	c := &Client{
		service: service,
		session: session,
		policy:  policy,
	}
	if policy.RatePerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(policy.RatePerSecond), 1)
	}
	return c
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.session.Do(req)
	if err != nil {
		metrics.ExternalCallDuration.WithLabelValues(c.service, "error").Observe(time.Since(start).Seconds())
		return nil, redact(err)
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		metrics.ExternalCallDuration.WithLabelValues(c.service, "error").Observe(time.Since(start).Seconds())
		return nil, &StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	metrics.ExternalCallDuration.WithLabelValues(c.service, "ok").Observe(time.Since(start).Seconds())
	return resp, nil
}

// Do sends the request built by makeReq. Transient failures (network errors,
// 429 and 5xx responses) are retried with exponential backoff up to the
// policy's attempt budget. makeReq is called once per attempt.
func (c *Client) Do(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	maxAttempts := c.policy.attempts()
	backoff := c.policy.backoff()

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("%s rate limit: %w", c.service, err)
			}
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

// redact drops the query string from transport errors; some services take
// their key as a query parameter.
func redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		if i := strings.IndexByte(ue.URL, '?'); i >= 0 {
			ue.URL = ue.URL[:i]
		}
	}
	return err
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests, 500, 502, 503, 504:
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
