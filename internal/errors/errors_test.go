package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSiteError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *SiteError
		expected string
	}{
		{
			name:     "message only",
			err:      &SiteError{Code: ErrCodeInvalidDefinition, Message: "domain is required"},
			expected: "domain is required",
		},
		{
			name:     "with name",
			err:      &SiteError{Code: ErrCodeNotFound, Message: "site not found", Name: "example_com"},
			expected: "site example_com: site not found",
		},
		{
			name:     "with underlying error",
			err:      &SiteError{Code: ErrCodeConfig, Message: "failed to load", Err: fmt.Errorf("file not found")},
			expected: "failed to load: file not found",
		},
		{
			name: "with name and underlying error",
			err: &SiteError{
				Code:    ErrCodeStoreIO,
				Message: "activate failed",
				Name:    "app_example_com",
				Err:     fmt.Errorf("permission denied"),
			},
			expected: "site app_example_com: activate failed: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.err.Error(); result != tt.expected {
				t.Errorf("Error() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestSiteError_Is(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		target   error
		expected bool
	}{
		{"syntax matches sentinel", Syntax("a", "emerg", nil), ErrSyntax, true},
		{"not found matches sentinel", NotFound("a"), ErrNotFound, true},
		{"store io does not match syntax", StoreIO("a", "rename", fmt.Errorf("x")), ErrSyntax, false},
		{"wrapped with fmt", fmt.Errorf("create: %w", InvalidDefinition("bad")), ErrInvalidDefinition, true},
		{"regular error target", NotFound("a"), fmt.Errorf("regular error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if errors.Is(tt.err, tt.target) != tt.expected {
				t.Errorf("Is() = %v, want %v", !tt.expected, tt.expected)
			}
		})
	}
}

func TestSiteError_Unwrap(t *testing.T) {
	underlying := fmt.Errorf("underlying error")
	err := StoreIO("x", "wrapped", underlying)
	if !errors.Is(err, underlying) {
		t.Error("expected underlying error in chain")
	}
}

func TestDetailOf(t *testing.T) {
	err := fmt.Errorf("deploy: %w", Syntax("x", "nginx: [emerg] unknown directive", nil))
	if got := DetailOf(err); got != "nginx: [emerg] unknown directive" {
		t.Errorf("DetailOf() = %q", got)
	}
	if got := DetailOf(fmt.Errorf("plain")); got != "" {
		t.Errorf("expected empty detail, got %q", got)
	}
}

func TestAs(t *testing.T) {
	err := fmt.Errorf("outer: %w", WrapName(ErrCodeTLS, "x", "certbot failed", fmt.Errorf("exit 1")))
	var se *SiteError
	if !As(err, &se) {
		t.Fatal("expected As to find SiteError")
	}
	if se.Code != ErrCodeTLS || se.Name != "x" {
		t.Errorf("unexpected error %+v", se)
	}
}
