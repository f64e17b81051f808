package services_test

import (
	"errors"
	"strings"
	"testing"

	"tailor/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "validator", "check braces", "unbalanced delimiter", nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "unbalanced delimiter") {
		t.Fatalf("expected message in error, got %q", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("exit status 1")
	err := services.Wrap(services.ErrExternalTool, "compiler", "pdflatex", "", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected generic detail, got %q", err.Error())
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		marker error
		want   bool
	}{
		{services.ErrValidation, true},
		{services.ErrExternalTool, true},
		{services.ErrTimeout, true},
		{services.ErrTransient, false},
		{services.ErrConfiguration, false},
	}
	for _, tc := range cases {
		err := services.Wrap(tc.marker, "x", "y", "z", nil)
		if got := services.IsRetryable(err); got != tc.want {
			t.Fatalf("IsRetryable(%v) = %v, want %v", tc.marker, got, tc.want)
		}
	}
}
