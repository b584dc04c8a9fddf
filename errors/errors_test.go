package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeEngineClosed, "closed")
	if err.Code != ErrCodeEngineClosed {
		t.Errorf("expected code %s, got %s", ErrCodeEngineClosed, err.Code)
	}
	if err.Message != "closed" {
		t.Errorf("expected message 'closed', got %q", err.Message)
	}
	if err.Retryable {
		t.Error("ENGINE_CLOSED should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeProducerFault, "boom")
	if !err.Retryable {
		t.Error("PRODUCER_FAULT should be retryable")
	}
}

func TestAppError_Configuration_Field(t *testing.T) {
	err := Configuration("prefetch_depth", "must be at least 2")
	if err.Code != ErrCodeConfiguration {
		t.Errorf("expected CONFIGURATION_ERROR, got %s", err.Code)
	}
	if err.Details["field"] != "prefetch_depth" {
		t.Errorf("expected field=prefetch_depth, got %v", err.Details["field"])
	}
	if !strings.Contains(err.Message, "at least 2") {
		t.Errorf("expected reason in message, got %q", err.Message)
	}
}

func TestAppError_Configuration_NoField(t *testing.T) {
	err := Configuration("", "bad")
	if err.Details != nil {
		t.Errorf("expected no details without a field, got %v", err.Details)
	}
}

func TestAppError_ProducerFault_Position(t *testing.T) {
	cause := fmt.Errorf("disk read failed")
	err := ProducerFault(7, cause)
	if err.Details["position"] != int64(7) {
		t.Errorf("expected position=7, got %v", err.Details["position"])
	}
	if err.Cause != cause {
		t.Error("expected cause to be set")
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected stderrors.Is to find the cause")
	}
	if !strings.Contains(err.Error(), "disk read failed") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
}

func TestAppError_WithDetails_Merge(t *testing.T) {
	err := EngineClosed("e1").WithDetails(map[string]any{
		"extra": "info",
	})
	if err.Details["extra"] != "info" {
		t.Errorf("expected extra=info in details")
	}
	if err.Details["engine"] != "e1" {
		t.Error("expected original details to be preserved")
	}
}

func TestAppError_WithDetails_Nil(t *testing.T) {
	err := Internal(nil).WithDetails(nil)
	if err.Details == nil {
		t.Fatal("expected Details map to be initialized even with nil input")
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{}
	err.WithDetail("key", "value")
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value, got %v", err.Details["key"])
	}
}

func TestAppError_Unwrap_Success(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := Internal(cause)
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
	if Exhausted("x").Unwrap() != nil {
		t.Error("Unwrap should return nil when no cause")
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		retryable bool
	}{
		{"Configuration", Configuration("f", "r"), ErrCodeConfiguration, false},
		{"Validation", Validation("bad"), ErrCodeConfiguration, false},
		{"ProducerFault", ProducerFault(0, nil), ErrCodeProducerFault, true},
		{"ReplayInconsistency", ReplayInconsistency(2), ErrCodeReplayInconsistency, false},
		{"EngineClosed", EngineClosed("e"), ErrCodeEngineClosed, false},
		{"Exhausted", Exhausted("s"), ErrCodeExhausted, false},
		{"RestartUnsupported", RestartUnsupported("s"), ErrCodeRestartUnsupported, false},
		{"ConcurrentAccess", ConcurrentAccess("s"), ErrCodeConcurrentAccess, false},
		{"EpochAborted", EpochAborted("e", nil), ErrCodeEpochAborted, false},
		{"ShutdownTimeout", ShutdownTimeout("e", "1s"), ErrCodeShutdownTimeout, false},
		{"Internal", Internal(nil), ErrCodeInternal, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, tc.err.Retryable)
			}
		})
	}
}

func TestIs_MatchesCodeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ReplayInconsistency(1))
	if !Is(wrapped, ErrCodeReplayInconsistency) {
		t.Error("expected Is to match wrapped code")
	}
	if Is(wrapped, ErrCodeProducerFault) {
		t.Error("expected Is not to match a different code")
	}
	if Is(fmt.Errorf("plain"), ErrCodeInternal) {
		t.Error("expected Is to be false for a plain error")
	}
}

func TestIs_MatchesAppErrorNestedAsCause(t *testing.T) {
	fault := ProducerFault(4, ReplayInconsistency(2))
	wrapped := fmt.Errorf("engine: %w", fault)

	tests := []struct {
		name string
		code ErrorCode
		want bool
	}{
		{"outer code", ErrCodeProducerFault, true},
		{"nested code", ErrCodeReplayInconsistency, true},
		{"absent code", ErrCodeEngineClosed, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Is(fault, tc.code); got != tc.want {
				t.Errorf("Is(fault, %s) = %v, want %v", tc.code, got, tc.want)
			}
			if got := Is(wrapped, tc.code); got != tc.want {
				t.Errorf("Is(wrapped, %s) = %v, want %v", tc.code, got, tc.want)
			}
		})
	}
}

func TestAppError_StdErrorsIs_ByCode(t *testing.T) {
	err := fmt.Errorf("wrap: %w", EngineClosed("a"))
	if !stderrors.Is(err, New(ErrCodeEngineClosed, "")) {
		t.Error("expected stderrors.Is to compare by code")
	}
	if stderrors.Is(err, New(ErrCodeExhausted, "")) {
		t.Error("expected stderrors.Is to reject another code")
	}
}

func TestAppError_AsAppError_Success(t *testing.T) {
	wrapped := fmt.Errorf("wrap: %w", Internal(nil))

	got, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed for wrapped AppError")
	}
	if got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}
	if _, ok := AsAppError(fmt.Errorf("not an app error")); ok {
		t.Error("expected AsAppError to return false for non-AppError")
	}
	if IsAppError(fmt.Errorf("plain")) {
		t.Error("expected IsAppError to return false for plain error")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}
	orig := Exhausted("seq")
	if Wrap(fmt.Errorf("outer: %w", orig)) != orig {
		t.Error("Wrap should return the AppError from the chain")
	}
	plain := fmt.Errorf("something broke")
	got := Wrap(plain)
	if got.Code != ErrCodeInternal || got.Cause != plain {
		t.Errorf("expected internal error wrapping the plain error, got %v", got)
	}
}
