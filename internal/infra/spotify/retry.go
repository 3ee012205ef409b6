package spotify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	// maxAttempts bounds retries of a single request.
	maxAttempts = 5

	// baseBackoff is the first retry delay for server errors.
	baseBackoff = time.Second

	// maxBackoff caps the exponential backoff and any Retry-After hint.
	maxBackoff = 60 * time.Second
)

// doWithRetry resolves a token and executes the request, retrying on rate
// limiting and transient server errors. A 429 honors the Retry-After
// header; 5xx responses back off exponentially. A 401 forces one token
// refresh before the retry.
func (c *Client) doWithRetry(ctx context.Context, attempt func(token string) (*resty.Response, error)) error {
	backoff := baseBackoff

	for i := 0; i < maxAttempts; i++ {
		token, err := c.token(ctx)
		if err != nil {
			return err
		}

		resp, err := attempt(token)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}

		switch {
		case !resp.IsError():
			return nil

		case resp.StatusCode() == http.StatusUnauthorized:
			c.invalidateToken()
			log.Debug().Msg("Access token rejected, forcing refresh")
			continue

		case resp.StatusCode() == http.StatusTooManyRequests:
			wait := retryAfter(resp, backoff)
			log.Warn().
				Dur("wait", wait).
				Int("attempt", i+1).
				Msg("Rate limited, backing off")
			if err := sleep(ctx, wait); err != nil {
				return err
			}

		case resp.StatusCode() >= http.StatusInternalServerError:
			log.Warn().
				Int("status", resp.StatusCode()).
				Dur("wait", backoff).
				Int("attempt", i+1).
				Msg("Server error, retrying")
			if err := sleep(ctx, backoff); err != nil {
				return err
			}
			backoff = min(backoff*2, maxBackoff)

		default:
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), resp.String())
		}
	}

	return fmt.Errorf("request failed after %d attempts", maxAttempts)
}

// invalidateToken drops the cached access token.
func (c *Client) invalidateToken() {
	c.tokenMu.Lock()
	c.accessToken = ""
	c.tokenMu.Unlock()
}

// retryAfter returns the server-requested wait, falling back to the
// current backoff when the header is absent or malformed.
func retryAfter(resp *resty.Response, fallback time.Duration) time.Duration {
	header := resp.Header().Get("Retry-After")
	if header == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return fallback
	}
	return min(time.Duration(seconds)*time.Second, maxBackoff)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
