package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestDescribeStripsCodePrefix(t *testing.T) {
	inner := New(CodeInvalidArgument, "initial supply (2000000) exceeds max supply (1000000)")
	outer := Wrap(CodeInvalidArgument, inner, "create fungible token")

	if got := outer.Error(); got != "[INVALID_ARGUMENT] create fungible token: initial supply (2000000) exceeds max supply (1000000)" {
		t.Fatalf("unexpected error string: %s", got)
	}
	if got := Describe(outer); got != "create fungible token: initial supply (2000000) exceeds max supply (1000000)" {
		t.Fatalf("unexpected description: %s", got)
	}
	if got := Describe(fmt.Errorf("plain")); got != "plain" {
		t.Fatalf("unexpected plain description: %s", got)
	}
}

func TestCodeOfThroughWrapping(t *testing.T) {
	err := fmt.Errorf("normalise: %w", New(CodeResolution, "no operator"))
	if CodeOf(err) != CodeResolution {
		t.Fatalf("expected resolution code, got %s", CodeOf(err))
	}
	if !stdErrors.Is(err, New(CodeResolution, "")) {
		t.Fatalf("expected errors.Is to match on code")
	}
	if CodeOf(stdErrors.New("x")) != CodeUnknown {
		t.Fatalf("expected unknown code for foreign errors")
	}
}

func TestAttributesDefaults(t *testing.T) {
	if !RetryableError(New(CodeMirrorFailure, "")) {
		t.Fatalf("mirror failures should be retryable")
	}
	if RetryableError(New(CodeMirrorFailure, "", WithRetryable(false))) {
		t.Fatalf("override should win")
	}
	if SeverityOf(New(CodeConfiguration, "")) != SeverityCritical {
		t.Fatalf("configuration errors should be critical")
	}
	if New(CodeNotFound, "").Message() != "resource not found" {
		t.Fatalf("expected default message")
	}
	if ShouldAlert(New(CodeInvalidArgument, "")) {
		t.Fatalf("validation errors must not alert")
	}
}
