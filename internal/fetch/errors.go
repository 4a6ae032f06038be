package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrUnsupportedScheme      = errors.New("unsupported URL scheme")
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrTooManyRedirects       = errors.New("too many redirects")
)

// Kind classifies a fetch failure. Its string form is what batch output
// reports in "ERROR: content_not_found (Kind)".
type Kind string

const (
	KindHTTP                   Kind = "HTTPError"
	KindTimeout                Kind = "Timeout"
	KindConnection             Kind = "ConnectionError"
	KindTooManyRedirects       Kind = "TooManyRedirects"
	KindInvalidURL             Kind = "InvalidURL"
	KindUnsupportedContentType Kind = "UnsupportedContentType"
	KindRead                   Kind = "ReadError"
)

// DefaultKindName is reported for errors that are not *Error.
const DefaultKindName = "FetchError"

// Error is the typed failure returned by Client.Get.
type Error struct {
	Kind   Kind
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s: status %d", e.Kind, e.URL, e.Status)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindName returns the kind of err, or DefaultKindName.
func KindName(err error) string {
	var fe *Error
	if errors.As(err, &fe) && fe.Kind != "" {
		return string(fe.Kind)
	}
	return DefaultKindName
}

// classify maps a transport error from http.Client.Do onto a Kind.
func classify(err error) Kind {
	var ne net.Error
	switch {
	case errors.Is(err, ErrTooManyRedirects):
		return KindTooManyRedirects
	case errors.Is(err, ErrUnsupportedScheme):
		return KindInvalidURL
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.As(err, &ne) && ne.Timeout():
		return KindTimeout
	}
	return KindConnection
}

// retryable reports whether a failed attempt may be repeated.
func retryable(fe *Error) bool {
	switch fe.Kind {
	case KindTimeout, KindConnection:
		return true
	case KindHTTP:
		return retryStatus(fe.Status)
	}
	return false
}

func retryStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}
