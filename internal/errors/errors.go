// Package errors provides standardized error types for sitectl.
//
// SiteError carries a Code that callers switch on, the site (config file)
// name involved, and, for syntax failures, the verbatim output of the web
// server's syntax checker in Detail.
//
// # Taxonomy
//
//   - INVALID_DEFINITION: bad input, nothing was touched
//   - SYNTAX: the server rejected the configuration, the change was rolled back
//   - RELOAD: reload failed after a successful syntax check (a warning)
//   - STORE_IO: a filesystem operation failed; the pipeline halted without
//     rollback and the store may need manual attention
//   - NOT_FOUND, WORKSPACE, TLS, CONFIG, PERMISSION, INTERNAL
//
// # Error Checking
//
//	if errors.Is(err, errors.ErrSyntax) {
//	    var siteErr *errors.SiteError
//	    errors.As(err, &siteErr)
//	    fmt.Println(siteErr.Detail)
//	}
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes errors for programmatic handling.
type ErrorCode string

// Error codes for different error categories.
const (
	ErrCodeInvalidDefinition ErrorCode = "INVALID_DEFINITION" // Site definition rejected before any side effect
	ErrCodeSyntax            ErrorCode = "SYNTAX"             // Server syntax check failed
	ErrCodeReload            ErrorCode = "RELOAD"             // Server reload failed
	ErrCodeStoreIO           ErrorCode = "STORE_IO"           // Config store filesystem failure
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"          // Site not found
	ErrCodeWorkspace         ErrorCode = "WORKSPACE"          // Document root preparation failed
	ErrCodeTLS               ErrorCode = "TLS"                // Certificate issuance failed
	ErrCodeConfig            ErrorCode = "CONFIG"             // Application configuration error
	ErrCodePermission        ErrorCode = "PERMISSION"         // Permission denied
	ErrCodeInternal          ErrorCode = "INTERNAL"           // Internal/unexpected error
)

// SiteError represents a structured error with context about the operation.
type SiteError struct {
	Code    ErrorCode // Error category
	Message string    // Human-readable message
	Name    string    // Site config name (if applicable)
	Detail  string    // Captured command output (syntax check)
	Err     error     // Underlying error (if any)
}

// Error implements the error interface.
func (e *SiteError) Error() string {
	msg := e.Message
	if e.Name != "" {
		msg = fmt.Sprintf("site %s: %s", e.Name, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for error chain traversal.
func (e *SiteError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error.
// Comparison is based on error code.
func (e *SiteError) Is(target error) bool {
	t, ok := target.(*SiteError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors for use with errors.Is.
var (
	ErrInvalidDefinition = &SiteError{Code: ErrCodeInvalidDefinition, Message: "invalid site definition"}
	ErrSyntax            = &SiteError{Code: ErrCodeSyntax, Message: "configuration syntax error"}
	ErrReload            = &SiteError{Code: ErrCodeReload, Message: "reload failed"}
	ErrStoreIO           = &SiteError{Code: ErrCodeStoreIO, Message: "config store failure"}
	ErrNotFound          = &SiteError{Code: ErrCodeNotFound, Message: "site not found"}
	ErrWorkspace         = &SiteError{Code: ErrCodeWorkspace, Message: "workspace preparation failed"}
	ErrTLS               = &SiteError{Code: ErrCodeTLS, Message: "certificate issuance failed"}
	ErrConfigInvalid     = &SiteError{Code: ErrCodeConfig, Message: "invalid configuration"}
	ErrPermissionDenied  = &SiteError{Code: ErrCodePermission, Message: "permission denied"}

	// ErrRootRequired indicates root privileges are required.
	ErrRootRequired = &SiteError{Code: ErrCodePermission, Message: "this operation requires root privileges, run with sudo"}
)

// InvalidDefinition creates a validation error with a custom message.
func InvalidDefinition(msg string) error {
	return &SiteError{Code: ErrCodeInvalidDefinition, Message: msg}
}

// Syntax creates a syntax-check failure carrying the checker output.
func Syntax(name, output string, err error) error {
	return &SiteError{
		Code:    ErrCodeSyntax,
		Message: "configuration rejected by syntax check",
		Name:    name,
		Detail:  output,
		Err:     err,
	}
}

// NotFound creates an error for a site that doesn't exist.
func NotFound(name string) error {
	return &SiteError{Code: ErrCodeNotFound, Message: "site not found", Name: name}
}

// StoreIO wraps a filesystem failure for a site.
func StoreIO(name, msg string, err error) error {
	return &SiteError{Code: ErrCodeStoreIO, Message: msg, Name: name, Err: err}
}

// Wrap creates an error with the specified code, message, and underlying error.
func Wrap(code ErrorCode, msg string, err error) error {
	return &SiteError{Code: code, Message: msg, Err: err}
}

// WrapName creates an error with site context and underlying error.
func WrapName(code ErrorCode, name, msg string, err error) error {
	return &SiteError{Code: code, Message: msg, Name: name, Err: err}
}

// DetailOf returns the captured command output of a SiteError in err's
// chain, or "".
func DetailOf(err error) string {
	var se *SiteError
	if errors.As(err, &se) {
		return se.Detail
	}
	return ""
}

// Is reports whether any error in err's chain matches target.
// This is a re-export of errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// This is a re-export of errors.As for convenience.
var As = errors.As

// New is a re-export of errors.New.
var New = errors.New
