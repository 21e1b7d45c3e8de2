package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a record that must be unique already exists.
	ErrConflict = errors.New("record already exists")
	// ErrPermissionDenied is returned when the caller lacks the required
	// booster or staff standing for an operation.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidTarget is returned for operations aimed at an unusable
	// target, such as sharing a role with yourself.
	ErrInvalidTarget = errors.New("invalid target")
)

// ValidationError reports user input that failed a local check.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// BlacklistedNameError reports a role name rejected by the guild filter.
type BlacklistedNameError struct {
	Word string
}

func (e *BlacklistedNameError) Error() string {
	return fmt.Sprintf("name contains filtered word %q", e.Word)
}

// RateLimitedError reports an operation attempted before its cooldown
// elapsed. Remaining is how long the caller still has to wait.
type RateLimitedError struct {
	Remaining time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.Remaining.Round(time.Second))
}

// LimitExceededError reports a configured guild quota that is already full.
type LimitExceededError struct {
	Kind  string
	Limit int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("%s limit of %d reached", e.Kind, e.Limit)
}

// ExternalError wraps a failed Discord API mutation.
type ExternalError struct {
	Op  string
	Err error
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("discord %s failed: %v", e.Op, e.Err)
}

func (e *ExternalError) Unwrap() error {
	return e.Err
}
