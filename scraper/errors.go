package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// FetchError reports a failed page fetch. The pipeline skips the entry
// and keeps going; a fetch failure is never fatal to the run.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Type returns the failure class of the wrapped error as a metrics
// label.
func (e *FetchError) Type() string {
	return errorTypeLabel(e.Err)
}

// ErrTimeout indicates a timeout while issuing a request.
type ErrTimeout struct {
	Err error
}

func (e ErrTimeout) Error() string { return "timeout: " + e.Err.Error() }
func (e ErrTimeout) Unwrap() error { return e.Err }

// ErrConnection indicates a network connectivity failure.
type ErrConnection struct {
	Err error
}

func (e ErrConnection) Error() string { return "connection: " + e.Err.Error() }
func (e ErrConnection) Unwrap() error { return e.Err }

// ErrForbidden indicates a forbidden response (HTTP 403).
type ErrForbidden struct {
	Err error
}

func (e ErrForbidden) Error() string { return "forbidden: " + e.Err.Error() }
func (e ErrForbidden) Unwrap() error { return e.Err }

// ErrNotFound indicates a missing resource (HTTP 404).
type ErrNotFound struct {
	Err error
}

func (e ErrNotFound) Error() string { return "not_found: " + e.Err.Error() }
func (e ErrNotFound) Unwrap() error { return e.Err }

// ErrRateLimited indicates the target rate-limited the request.
type ErrRateLimited struct {
	Err error
}

func (e ErrRateLimited) Error() string { return "rate_limited: " + e.Err.Error() }
func (e ErrRateLimited) Unwrap() error { return e.Err }

// classifyError wraps err in its failure class. Network-level signals
// outrank the HTTP status: a timeout stays a timeout whatever the
// status code says.
func classifyError(err error, statusCode int) error {
	if err == nil && statusCode == 0 {
		return nil
	}

	var netErr net.Error
	var opErr *net.OpError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout{Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return ErrTimeout{Err: err}
	case errors.As(err, &opErr):
		return ErrConnection{Err: err}
	}

	if statusCode != 0 {
		wrapped := err
		if wrapped == nil {
			wrapped = fmt.Errorf("http status %d", statusCode)
		}
		switch statusCode {
		case http.StatusForbidden:
			return ErrForbidden{Err: wrapped}
		case http.StatusNotFound:
			return ErrNotFound{Err: wrapped}
		case http.StatusTooManyRequests:
			return ErrRateLimited{Err: wrapped}
		}
	}

	return err
}

func errorTypeLabel(err error) string {
	var (
		timeout     ErrTimeout
		connection  ErrConnection
		forbidden   ErrForbidden
		notFound    ErrNotFound
		rateLimited ErrRateLimited
	)
	switch {
	case err == nil:
		return "unknown"
	case errors.As(err, &timeout):
		return "timeout"
	case errors.As(err, &connection):
		return "connection"
	case errors.As(err, &forbidden):
		return "forbidden"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &rateLimited):
		return "rate_limited"
	default:
		return "other"
	}
}
