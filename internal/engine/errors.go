package engine

import (
	"errors"
	"fmt"
)

// ErrorKind identifies a specific failure condition in the pipeline
type ErrorKind string

const (
	KindInvalidPrompt   ErrorKind = "InvalidPromptError"
	KindResolutionEmpty ErrorKind = "ResolutionEmptyError"
	KindQuotaExceeded   ErrorKind = "QuotaExceededError"
	KindNavigation      ErrorKind = "NavigationError"
	KindCaptchaBlocked  ErrorKind = "CaptchaBlockedError"
	KindExtractionEmpty ErrorKind = "ExtractionEmptyError"
	KindPolicyDenied    ErrorKind = "PolicyDeniedError"
)

// ScrapeError wraps failures with their kind and retry policy
type ScrapeError struct {
	Kind       ErrorKind
	Message    string
	Underlying error
	Retry      bool
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Underlying
}

// Is matches ScrapeErrors by kind
func (e *ScrapeError) Is(target error) bool {
	if t, ok := target.(*ScrapeError); ok {
		return e.Kind == t.Kind
	}
	return errors.Is(e.Underlying, target)
}

// NewError creates a non-retryable ScrapeError
func NewError(kind ErrorKind, message string, err error) *ScrapeError {
	return &ScrapeError{
		Kind:       kind,
		Message:    message,
		Underlying: err,
	}
}

// WithRetry marks the error as retryable
func (e *ScrapeError) WithRetry() *ScrapeError {
	e.Retry = true
	return e
}

// KindOf classifies any error for per-target failure reports.
// Unknown errors are reported as navigation failures, the broadest
// retryable class.
func KindOf(err error) ErrorKind {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindNavigation
}

// IsRetryable reports whether the orchestrator may attempt the target
// again. Errors outside the taxonomy (raw chromedp/network failures)
// default to retryable.
func IsRetryable(err error) bool {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Retry
	}
	return true
}
