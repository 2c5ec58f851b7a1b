package utils

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai"
)

var (
	leadingFence  = regexp.MustCompile("(?i)^```(?:html)?\\s*")
	trailingFence = regexp.MustCompile("\\s*```$")
)

// StripFences removes a leading ```html or ``` fence and a trailing ```
// fence, then trims whitespace.
func StripFences(raw string) string {
	out := strings.TrimSpace(raw)
	out = leadingFence.ReplaceAllString(out, "")
	out = trailingFence.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// IsTransient reports whether err looks like a temporary upstream failure
// (rate limit, 5xx, timeout, reset connection). Used to label logs and
// metrics; nothing is retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode >= 500 || apiErr.HTTPStatusCode == 429
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode >= 500 || reqErr.HTTPStatusCode == 429
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"rate limit", "timeout", "connection reset by peer", "503 service unavailable", "502 bad gateway"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// ErrorClass returns a short label for metrics.
func ErrorClass(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case IsTransient(err):
		return "transient"
	default:
		return "permanent"
	}
}
