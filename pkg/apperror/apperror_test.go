package apperror

import (
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "bad percentile %d", 150)

	if err.Code != CodeValidation {
		t.Errorf("Code = %v, want %v", err.Code, CodeValidation)
	}
	want := "bad percentile 150"
	if err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
	if err.Cause != nil {
		t.Error("Cause should be nil")
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("bridge timed out")
	err := Wrap(CodeAlternateFailure, cause, "goja kernel failed")

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should unwrap to cause")
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "no cause",
			err:  New(CodeEmptyData, "data is empty"),
			want: "EMPTY_DATA: data is empty",
		},
		{
			name: "with cause",
			err:  Wrap(CodeTransport, errors.New("connection refused"), "engine unreachable"),
			want: "TRANSPORT: engine unreachable: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_GRPCStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want codes.Code
	}{
		{CodeValidation, codes.InvalidArgument},
		{CodeEmptyData, codes.InvalidArgument},
		{CodeNotImplemented, codes.Unimplemented},
		{CodeTimeout, codes.DeadlineExceeded},
		{CodeTransport, codes.Unavailable},
		{CodeAlternateFailure, codes.Internal},
		{CodeNativeFailure, codes.Internal},
		{ErrorCode("unknown"), codes.Unknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			st := New(tt.code, "msg").GRPCStatus()
			if st.Code() != tt.want {
				t.Errorf("GRPCStatus().Code() = %v, want %v", st.Code(), tt.want)
			}
		})
	}
}

func TestAs(t *testing.T) {
	err := New(CodeTimeout, "deadline exceeded")

	got, ok := As(err)
	if !ok {
		t.Fatal("As() should match an *Error")
	}
	if got.Code != CodeTimeout {
		t.Errorf("Code = %v, want %v", got.Code, CodeTimeout)
	}

	if _, ok := As(errors.New("plain error")); ok {
		t.Error("As() should not match a plain error")
	}
}

func TestCodeOf(t *testing.T) {
	err := New(CodeNativeFailure, "kernel panic")
	if got := CodeOf(err); got != CodeNativeFailure {
		t.Errorf("CodeOf() = %v, want %v", got, CodeNativeFailure)
	}

	if got := CodeOf(errors.New("plain error")); got != CodeNativeFailure {
		t.Errorf("CodeOf() for plain error = %v, want %v", got, CodeNativeFailure)
	}
}
