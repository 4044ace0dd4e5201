package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestHowtoError_Error(t *testing.T) {
	err := &HowtoError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "saved tutorial not found",
	}

	expected := "NOT_FOUND: saved tutorial not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("Missing search query")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "Missing search query" {
		t.Errorf("Message = %q, want %q", err.Message, "Missing search query")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("01HXYZ")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["identifier"] != "01HXYZ" {
		t.Errorf("Details[identifier] = %v, want %q", err.Details["identifier"], "01HXYZ")
	}
}

func TestNewFileNotFound(t *testing.T) {
	err := NewFileNotFound("/tmp/x.jsonl")

	if err.Code != ErrFileNotFound || err.Status != 404 {
		t.Errorf("got %s/%d, want FILE_NOT_FOUND/404", err.Code, err.Status)
	}
	if Is(err, ErrNotFound) {
		t.Error("file errors must not match NOT_FOUND")
	}
}

func TestNewRateLimited(t *testing.T) {
	err := NewRateLimited()

	if err.Code != ErrRateLimited {
		t.Errorf("Code = %q, want %q", err.Code, ErrRateLimited)
	}
	if err.Status != 429 {
		t.Errorf("Status = %d, want 429", err.Status)
	}
}

func TestNewMissingCredential(t *testing.T) {
	err := NewMissingCredential("OPENAI_API_KEY")

	if err.Code != ErrConfiguration {
		t.Errorf("Code = %q, want %q", err.Code, ErrConfiguration)
	}
	if err.Status != 500 {
		t.Errorf("Status = %d, want 500", err.Status)
	}
	if err.Message != "OPENAI_API_KEY not configured" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Details["credential"] != "OPENAI_API_KEY" {
		t.Errorf("Details[credential] = %v", err.Details["credential"])
	}
}

func TestNewUpstream(t *testing.T) {
	cause := fmt.Errorf("quota exceeded")
	err := NewUpstream("openai", cause)

	if err.Code != ErrUpstream {
		t.Errorf("Code = %q, want %q", err.Code, ErrUpstream)
	}
	if err.Status != 500 {
		t.Errorf("Status = %d, want 500", err.Status)
	}
	if err.Message != "openai: quota exceeded" {
		t.Errorf("Message = %q", err.Message)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
}

func TestNewUpstream_NilCause(t *testing.T) {
	err := NewUpstream("gemini", nil)

	if err.Message != "gemini request failed" {
		t.Errorf("Message = %q, want %q", err.Message, "gemini request failed")
	}
}

func TestNewStorage(t *testing.T) {
	err := NewStorage(fmt.Errorf("disk full"))

	if err.Code != ErrStorage {
		t.Errorf("Code = %q, want %q", err.Code, ErrStorage)
	}
	if err.Message != "disk full" {
		t.Errorf("Message = %q, want %q", err.Message, "disk full")
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(fmt.Errorf("boom"))
	if err.Code != ErrInternal || err.Status != 500 || err.Message != "boom" {
		t.Errorf("unexpected error: %+v", err)
	}

	err = NewInternal(nil)
	if err.Message != "internal error" {
		t.Errorf("Message = %q, want %q", err.Message, "internal error")
	}
}

func TestIs(t *testing.T) {
	err := NewInvalidRequest("bad")
	if !Is(err, ErrInvalidRequest) {
		t.Error("Is should match INVALID_REQUEST")
	}
	if Is(err, ErrUpstream) {
		t.Error("Is should not match UPSTREAM")
	}

	wrapped := fmt.Errorf("search: %w", NewUpstream("openai", nil))
	if !Is(wrapped, ErrUpstream) {
		t.Error("Is should see through fmt.Errorf wrapping")
	}

	if Is(fmt.Errorf("plain"), ErrInternal) {
		t.Error("Is should be false for non-HowtoError")
	}
}

func TestAs(t *testing.T) {
	if _, ok := As(nil); ok {
		t.Error("As(nil) should be false")
	}
	hErr, ok := As(fmt.Errorf("wrap: %w", NewNotFound("x")))
	if !ok {
		t.Fatal("As should find wrapped HowtoError")
	}
	if hErr.Status != 404 {
		t.Errorf("Status = %d, want 404", hErr.Status)
	}
}
