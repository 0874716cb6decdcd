package services

import (
	"errors"
	"strings"

	"confab/internal/queue"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

type serviceError struct {
	marker  error
	detail  string
	message string
	cause   error
}

func (e *serviceError) Error() string {
	var b strings.Builder
	b.WriteString(e.marker.Error())
	b.WriteString(": ")
	b.WriteString(e.detail)
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

func (e *serviceError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.marker, e.cause}
	}
	return []error{e.marker}
}

// Wrap builds an error that carries stage context and an operator-facing
// message while tagging it with the provided marker for later status
// classification. The marker should be one of the exported sentinel errors
// above.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	return &serviceError{
		marker:  marker,
		detail:  buildDetail(stage, operation, message),
		message: strings.TrimSpace(message),
		cause:   err,
	}
}

// FailureStatus maps a stage error to the queue status the workflow manager
// should persist after the stage fails.
func FailureStatus(err error) queue.Status {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration), errors.Is(err, ErrNotFound):
		return queue.StatusReview
	default:
		return queue.StatusFailed
	}
}

// UserMessage extracts the operator-facing message from the outermost wrapped
// service error. Errors built elsewhere fall back to their full text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var svcErr *serviceError
	if errors.As(err, &svcErr) {
		if svcErr.message != "" {
			return svcErr.message
		}
		return svcErr.detail
	}
	return strings.TrimSpace(err.Error())
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
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
