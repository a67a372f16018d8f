package search

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/fathomsearch/fathom/modules/result"
)

// classifyTransportError maps an error from the HTTP round trip to the
// engine error taxonomy.
func classifyTransportError(err error) result.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return result.ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return result.ErrNetwork
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return result.ErrTimeout
	}

	return result.ErrNetwork
}

// classifyStatus maps a non-2xx HTTP status to the taxonomy. 2xx returns
// "" meaning the body should be handed to the parser.
func classifyStatus(status int) result.ErrorKind {
	switch {
	case status >= 200 && status < 300:
		return ""
	case status == http.StatusTooManyRequests:
		return result.ErrTooManyRequests
	case status == http.StatusForbidden:
		return result.ErrAccessDenied
	case status >= 500:
		return result.ErrServer
	default:
		return result.ErrHTTP
	}
}

// classifyParseError distinguishes a bot challenge from a plain parse
// failure by the recognized marker in the error text.
func classifyParseError(err error) result.ErrorKind {
	if strings.Contains(err.Error(), "CAPTCHA") {
		return result.ErrCaptcha
	}
	return result.ErrParse
}

// suspendable reports whether an error kind should count against an
// engine's circuit breaker.
func suspendable(kind result.ErrorKind) bool {
	switch kind {
	case result.ErrNetwork, result.ErrHTTP, result.ErrServer,
		result.ErrCaptcha, result.ErrTooManyRequests, result.ErrAccessDenied:
		return true
	default:
		return false
	}
}
