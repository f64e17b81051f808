package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransient marks a generative-service failure that was retried up to
	// its bound and may still be recoverable at a higher level.
	ErrTransient = errors.New("transient failure")
	// ErrValidation marks a structural pre-compile validation failure.
	ErrValidation = errors.New("validation error")
	// ErrExternalTool marks a compiler process failure or crash.
	ErrExternalTool = errors.New("external tool error")
	// ErrTimeout marks a compiler invocation that exceeded its wall-clock budget.
	ErrTimeout = errors.New("timeout")
	// ErrConfiguration marks unusable configuration (missing key, bad path).
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
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

// IsRetryable reports whether an error should feed the fix loop rather than
// terminate the run. Validation and compiler failures are repairable;
// transient-service and configuration failures are not.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrExternalTool) || errors.Is(err, ErrTimeout)
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
