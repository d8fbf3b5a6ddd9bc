package listings

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Kind classifies why a page request failed.
type Kind int

const (
	KindTransport Kind = iota
	KindTimeout
	KindNetwork
	KindCORS
	KindNotFound
	KindServer
	KindClient
	KindDecode
	KindPageLimit
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	case KindCORS:
		return "cors"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	case KindClient:
		return "client"
	case KindDecode:
		return "decode"
	case KindPageLimit:
		return "page_limit"
	default:
		return "transport"
	}
}

// FetchError is returned for every failed page request. Error() yields a
// message suitable for showing to an end user; the cause stays reachable
// through Unwrap.
type FetchError struct {
	Kind       Kind
	StatusCode int
	URL        string
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindTimeout:
		return "request timeout - please check your internet connection"
	case KindNetwork:
		return "network error - please check your internet connection or try again later"
	case KindCORS:
		return "CORS error - unable to connect to the server"
	case KindNotFound:
		return "API endpoint not found"
	case KindServer:
		if e.StatusCode == 500 {
			return "server error - please try again later"
		}
		return fmt.Sprintf("server error (%d) - please try again later", e.StatusCode)
	case KindClient:
		return fmt.Sprintf("client error (%d) - please check your request", e.StatusCode)
	case KindDecode:
		return fmt.Sprintf("invalid response body: %v", e.Err)
	case KindPageLimit:
		return fmt.Sprintf("listing reports too many pages: %v", e.Err)
	default:
		if e.Err != nil {
			return fmt.Sprintf("request failed: %v", e.Err)
		}
		return "request failed"
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Retryable reports whether another attempt may succeed. Only failures that
// happened before a response arrived are retried.
func (e *FetchError) Retryable() bool {
	switch e.Kind {
	case KindTransport, KindTimeout, KindNetwork, KindCORS:
		return true
	}
	return false
}

// IsKind reports whether err is a FetchError of the given kind.
func IsKind(err error, kind Kind) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == kind
}

// IsRetryable is the predicate plugged into utils.RetryConfig.
func IsRetryable(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Retryable()
	}
	return false
}

// statusError maps a non-2xx status to a FetchError. Informational and
// redirect statuses that reach here were not followed and count as client errors.
func statusError(status int, rawURL string) *FetchError {
	fe := &FetchError{StatusCode: status, URL: rawURL}
	switch {
	case status == 404:
		fe.Kind = KindNotFound
	case status < 500:
		fe.Kind = KindClient
	default:
		fe.Kind = KindServer
	}
	return fe
}

// classifyTransportError wraps a failure that occurred before any response.
func classifyTransportError(err error, rawURL string) *FetchError {
	fe := &FetchError{Kind: KindTransport, URL: rawURL, Err: err}

	var netErr net.Error
	var urlErr *url.Error
	var opErr *net.OpError
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout(),
		strings.Contains(strings.ToLower(err.Error()), "timeout"):
		fe.Kind = KindTimeout
	case strings.Contains(err.Error(), "CORS"):
		fe.Kind = KindCORS
	case errors.As(err, &opErr), strings.Contains(err.Error(), "Failed to fetch"):
		fe.Kind = KindNetwork
	case errors.As(err, &urlErr):
		fe.Kind = KindNetwork
	}
	return fe
}
