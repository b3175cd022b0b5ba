// Package apperror provides the error taxonomy shared by the Analytics
// Engine and the Gateway. Every failure the dispatcher or RPC layer can
// produce maps to one of a small set of ErrorCode values, and an *Error
// converts cleanly to a gRPC status for transport-level failures.
package apperror

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorCode is the exhaustive set of error kinds at the core boundary.
type ErrorCode string

const (
	// CodeValidation means the input violates a documented invariant
	// (bad percentile, NaN in data, count out of range).
	CodeValidation ErrorCode = "VALIDATION"
	// CodeEmptyData means a statistic requires data but data is empty.
	CodeEmptyData ErrorCode = "EMPTY_DATA"
	// CodeNotImplemented means the algorithm is unknown, or no
	// candidate implementation matches the request's options mask.
	CodeNotImplemented ErrorCode = "NOT_IMPLEMENTED"
	// CodeTimeout means the effective deadline was exceeded.
	CodeTimeout ErrorCode = "TIMEOUT"
	// CodeAlternateFailure means the alternate-language bridge returned
	// an error.
	CodeAlternateFailure ErrorCode = "ALTERNATE_FAILURE"
	// CodeNativeFailure means a native kernel returned an error.
	CodeNativeFailure ErrorCode = "NATIVE_FAILURE"
	// CodeTransport means the Engine was unreachable or a stream broke.
	CodeTransport ErrorCode = "TRANSPORT"
)

// Error is the typed error kernels, the dispatcher, and the RPC layers
// exchange. It implements error, Unwrap, and GRPCStatus so it can be
// returned directly from a gRPC handler when a transport-level status is
// warranted.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates an *Error with no underlying cause.
func New(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error that records cause as its Unwrap target.
func Wrap(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any, for errors.Is/As.
func (e *Error) Unwrap() error { return e.Cause }

// GRPCStatus converts the application error to a gRPC status. Algorithm
// errors are still returned in the wire envelope as success=false; this
// is used only where the call site has decided the failure is transport
// level (e.g. the Engine RPC client could not reach the Engine at all).
func (e *Error) GRPCStatus() *status.Status {
	return status.New(e.grpcCode(), e.Message)
}

func (e *Error) grpcCode() codes.Code {
	switch e.Code {
	case CodeValidation, CodeEmptyData:
		return codes.InvalidArgument
	case CodeNotImplemented:
		return codes.Unimplemented
	case CodeTimeout:
		return codes.DeadlineExceeded
	case CodeTransport:
		return codes.Unavailable
	case CodeAlternateFailure, CodeNativeFailure:
		return codes.Internal
	default:
		return codes.Unknown
	}
}

// As reports whether err (or one of the errors it wraps) is an *Error,
// returning the matched value for convenience at call sites.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// CodeOf returns the ErrorCode carried by err, or CodeNativeFailure if
// err is not an *Error — every call site that reaches the wire envelope
// must still report something rather than panic.
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.Code
	}
	return CodeNativeFailure
}
