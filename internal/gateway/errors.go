package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// NotFoundError means the queried subject (an identity, or a repository
// during a commit fetch) does not resolve on the platform.
type NotFoundError struct {
	Platform Platform
	Subject  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q not found", e.Platform, e.Subject)
}

// RateLimitError means the platform signalled quota exhaustion.
type RateLimitError struct {
	Platform  Platform
	Remaining int
	ResetTime time.Time
}

func (e *RateLimitError) Error() string {
	if e.ResetTime.IsZero() {
		return fmt.Sprintf("%s: API rate limit exceeded", e.Platform)
	}
	return fmt.Sprintf("%s: API rate limit exceeded (%d remaining, resets at %s)",
		e.Platform, e.Remaining, e.ResetTime.UTC().Format(time.RFC3339))
}

// ProviderError covers any other platform failure: unexpected status codes,
// transport errors, timeouts, undecodable responses.
type ProviderError struct {
	Platform   Platform
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Platform, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Platform, msg)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsRateLimited reports whether err is a RateLimitError.
func IsRateLimited(err error) bool {
	var target *RateLimitError
	return errors.As(err, &target)
}

// classifyStatus converts a non-2xx response into the typed error taxonomy:
// 404 is NotFound, 403 and 429 are RateLimited, everything else is a
// ProviderError carrying the status.
func classifyStatus(platform Platform, subject string, resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusNotFound:
		return &NotFoundError{Platform: platform, Subject: subject}
	case http.StatusForbidden, http.StatusTooManyRequests:
		return rateLimitFromHeaders(platform, resp)
	}
	return &ProviderError{Platform: platform, StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
}

// rateLimitFromHeaders builds a RateLimitError with whatever quota detail
// the platform exposes. Header names vary: GitHub and Bitbucket use the
// X-RateLimit-* family, GitLab uses RateLimit-*, and Retry-After is the
// common fallback.
func rateLimitFromHeaders(platform Platform, resp *http.Response) error {
	rl := &RateLimitError{Platform: platform}
	for _, name := range []string{"X-RateLimit-Remaining", "RateLimit-Remaining"} {
		if v := resp.Header.Get(name); v != "" {
			rl.Remaining, _ = strconv.Atoi(v)
			break
		}
	}
	for _, name := range []string{"X-RateLimit-Reset", "RateLimit-Reset"} {
		if v := resp.Header.Get(name); v != "" {
			if unix, err := strconv.ParseInt(v, 10, 64); err == nil {
				rl.ResetTime = time.Unix(unix, 0)
			}
			break
		}
	}
	if rl.ResetTime.IsZero() {
		if v := resp.Header.Get("Retry-After"); v != "" {
			if seconds, err := strconv.ParseInt(v, 10, 64); err == nil {
				rl.ResetTime = time.Now().Add(time.Duration(seconds) * time.Second)
			}
		}
	}
	return rl
}
