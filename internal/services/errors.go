package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"acadrun/internal/history"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later status classification. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a run error to the history status recorded for it.
func FailureStatus(err error) history.Status {
	switch {
	case errors.Is(err, context.Canceled):
		return history.StatusCanceled
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return history.StatusTimedOut
	default:
		return history.StatusFailed
	}
}

// RunStatus decides the recorded status of a finished invocation. A result
// that arrived counts as completed even when the wait bound elapsed first.
func RunStatus(err error, timedOut, hasResult bool) history.Status {
	switch {
	case err != nil:
		return FailureStatus(err)
	case hasResult:
		return history.StatusCompleted
	case timedOut:
		return history.StatusTimedOut
	default:
		return history.StatusNoResult
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
