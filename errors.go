package costwatch

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound     = errors.New("costwatch: not found")
	ErrInvalidInput = errors.New("costwatch: invalid input")

	// Normalization errors
	ErrMalformedRecord = errors.New("costwatch: malformed record")

	// Store errors
	ErrStoreUnavailable = errors.New("costwatch: store unavailable")
	ErrStoreClosed      = errors.New("costwatch: store is closed")
	ErrMigrationFailed  = errors.New("costwatch: migration failed")

	// Aggregation errors
	ErrAggregationFailed = errors.New("costwatch: budget aggregation failed")

	// Provider errors
	ErrProviderFetch         = errors.New("costwatch: provider fetch failed")
	ErrProviderNotConfigured = errors.New("costwatch: provider not configured")
)

// MalformedError describes a record that failed normalization. The whole
// batch is rejected when any record is malformed; Bucket and Group locate
// the offending entry in the provider response.
type MalformedError struct {
	Bucket int
	Group  int
	Reason string
	Err    error
}

func (e *MalformedError) Error() string {
	msg := fmt.Sprintf("costwatch: malformed record (bucket %d, group %d): %s", e.Bucket, e.Group, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *MalformedError) Unwrap() error { return e.Err }

// Is reports a match against ErrMalformedRecord.
func (e *MalformedError) Is(target error) bool { return target == ErrMalformedRecord }

// StoreError wraps a failure from the ledger store with the operation that
// produced it. It matches ErrStoreUnavailable under errors.Is.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("costwatch: store %s: %v", e.Op, e.Err)
}

// Unwrap returns the driver error.
func (e *StoreError) Unwrap() error { return e.Err }

// Is reports a match against ErrStoreUnavailable.
func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

// AggregationError wraps a budget recomputation failure. The cost-record
// merge it followed has already been committed; the next cycle's
// recomputation self-heals. It matches ErrAggregationFailed under errors.Is.
type AggregationError struct {
	Err error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("costwatch: budget aggregation: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *AggregationError) Unwrap() error { return e.Err }

// Is reports a match against ErrAggregationFailed.
func (e *AggregationError) Is(target error) bool { return target == ErrAggregationFailed }

// IsMalformed returns true if the error is a normalization failure.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedRecord)
}

// IsStoreUnavailable returns true if the error is a ledger store failure.
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// IsAggregationFailure returns true if the error is a budget recomputation
// failure. Such errors are non-fatal to the cycle's cost-record merge.
func IsAggregationFailure(err error) bool {
	return errors.Is(err, ErrAggregationFailed)
}

// IsRetryable returns true if the error is temporary and the operation can
// be retried on the next scheduled cycle. Retry scheduling is the caller's
// concern; the engine performs no internal retries.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrAggregationFailed) ||
		errors.Is(err, ErrProviderFetch)
}
