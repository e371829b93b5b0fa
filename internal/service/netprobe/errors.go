package netprobe

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// Connection failure codes, named after their errno counterparts.
const (
	CodeNotFound    = "ENOTFOUND"
	CodeRefused     = "ECONNREFUSED"
	CodeTimeout     = "ETIMEDOUT"
	CodeHostUnreach = "EHOSTUNREACH"
	CodeNetUnreach  = "ENETUNREACH"
	CodeReset       = "ECONNRESET"
	CodeUnknown     = "EUNKNOWN"
	defaultMessage  = "Failed to connect to server"
	messageNotFound = "Host not found"
	messageRefused  = "Connection refused"
	messageTimeout  = "Connection timeout"
)

// Error is a classified network failure.
type Error struct {
	Code    string
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Details == "" {
		return e.Message
	}
	return e.Message + ": " + e.Details
}

func (e *Error) Unwrap() error { return e.Err }

// Classify maps a dial or handshake error to a coded Error. An error that
// is already classified is returned as is.
func Classify(err error) *Error {
	var ne *Error
	if errors.As(err, &ne) {
		return ne
	}

	switch Code(err) {
	case CodeNotFound:
		return &Error{Code: CodeNotFound, Message: messageNotFound, Details: "The hostname could not be resolved", Err: err}
	case CodeRefused:
		return &Error{Code: CodeRefused, Message: messageRefused, Details: "The server refused the connection", Err: err}
	case CodeTimeout:
		return &Error{Code: CodeTimeout, Message: messageTimeout, Details: "The connection attempt timed out", Err: err}
	default:
		return &Error{Code: Code(err), Message: defaultMessage, Details: err.Error(), Err: err}
	}
}

// Code returns the errno-style code for err.
func Code(err error) string {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return CodeNotFound
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return CodeRefused
	case errors.Is(err, syscall.EHOSTUNREACH):
		return CodeHostUnreach
	case errors.Is(err, syscall.ENETUNREACH):
		return CodeNetUnreach
	case errors.Is(err, syscall.ECONNRESET):
		return CodeReset
	case errors.Is(err, syscall.ETIMEDOUT), errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CodeTimeout
	}
	return CodeUnknown
}

func timeoutError(err error) *Error {
	return &Error{Code: CodeTimeout, Message: messageTimeout, Err: err}
}
