package costwatch

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMatching(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"malformed", &MalformedError{Bucket: 0, Group: 1, Reason: "blank service key"}, ErrMalformedRecord},
		{"store", &StoreError{Op: "replace days", Err: errors.New("conn refused")}, ErrStoreUnavailable},
		{"aggregation", &AggregationError{Err: errors.New("read month failed")}, ErrAggregationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("%v should match %v", tt.err, tt.sentinel)
			}
			if errors.Is(tt.err, ErrNotFound) {
				t.Errorf("%v should not match ErrNotFound", tt.err)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("i/o timeout")
	err := &StoreError{Op: "ping", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("StoreError should unwrap to its cause")
	}

	wrapped := fmt.Errorf("cycle failed: %w", err)
	if !IsStoreUnavailable(wrapped) {
		t.Error("matching should survive further wrapping")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"store unavailable", &StoreError{Op: "list", Err: errors.New("down")}, true},
		{"aggregation", &AggregationError{Err: errors.New("lag")}, true},
		{"provider fetch", fmt.Errorf("%w: throttled", ErrProviderFetch), true},
		{"malformed", &MalformedError{Reason: "negative cost amount"}, false},
		{"invalid input", ErrInvalidInput, false},
		{"not found", ErrNotFound, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestMalformedErrorMessage(t *testing.T) {
	err := &MalformedError{Bucket: 2, Group: 0, Reason: "invalid cost amount", Err: errors.New("bad syntax")}

	msg := err.Error()
	if msg != "costwatch: malformed record (bucket 2, group 0): invalid cost amount: bad syntax" {
		t.Errorf("unexpected message: %s", msg)
	}
}
