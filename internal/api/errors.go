package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies every error the client returns.
type Kind int

const (
	// KindAPI is an uncategorized non-2xx response.
	KindAPI Kind = iota
	// KindMaintenance means the service is down for maintenance.
	KindMaintenance
	// KindNetwork is a connectivity failure; no response was received.
	KindNetwork
	// KindAuth means the credentials were rejected.
	KindAuth
	// KindTwoFactor means the request needs a one-time code. Login treats it
	// as a prompt, not a failure.
	KindTwoFactor
	// KindRateLimit is a 429.
	KindRateLimit
	// KindQuota is a server-side quota denial.
	KindQuota
)

func (k Kind) String() string {
	switch k {
	case KindMaintenance:
		return "maintenance"
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindTwoFactor:
		return "two_factor"
	case KindRateLimit:
		return "rate_limit"
	case KindQuota:
		return "quota"
	default:
		return "api"
	}
}

// Error is the typed error returned for classified failures.
type Error struct {
	Kind Kind
	// Status is the HTTP status, zero for network errors.
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String() + " error"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err and whether err came from the client.
func KindOf(err error) (Kind, bool) {
	if e, ok := AsError(err); ok {
		return e.Kind, true
	}
	return KindAPI, false
}

// IsKind reports whether err is a client error of kind k.
func IsKind(err error, k Kind) bool {
	got, ok := KindOf(err)
	return ok && got == k
}

// errorBody is the error envelope the service returns.
type errorBody struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Maintenance   bool   `json:"maintenance"`
	Requires2FA   bool   `json:"requires2FA"`
	QuotaExceeded bool   `json:"quotaExceeded"`
}

func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

// classify maps a non-2xx response to an *Error. The order of the checks
// matters: a 503 is only maintenance when flagged, a 401 only needs a second
// factor when flagged.
func classify(status int, body errorBody) *Error {
	msg := body.text()
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch {
	case status == http.StatusServiceUnavailable && body.Maintenance:
		return &Error{Kind: KindMaintenance, Status: status, Message: msg}
	case status == http.StatusServiceUnavailable:
		return &Error{Kind: KindAPI, Status: status, Message: msg}
	case status == http.StatusUnauthorized && body.Requires2FA:
		return &Error{Kind: KindTwoFactor, Status: status, Message: msg}
	case status == http.StatusUnauthorized:
		return &Error{Kind: KindAuth, Status: status, Message: msg}
	case status == http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimit, Status: status, Message: msg}
	case body.QuotaExceeded:
		return &Error{Kind: KindQuota, Status: status, Message: msg}
	default:
		return &Error{Kind: KindAPI, Status: status, Message: msg}
	}
}
