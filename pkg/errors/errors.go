package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode represents a unique error code for categorizing errors
type ErrorCode string

const (
	// Configuration errors (1xxx)
	ErrCodeConfigRead    ErrorCode = "DWHE1001"
	ErrCodeConfigInvalid ErrorCode = "DWHE1002"
	ErrCodeConfigMissing ErrorCode = "DWHE1003"
	ErrCodeCredentials   ErrorCode = "DWHE1004"

	// Connection errors (2xxx)
	ErrCodeConnectionFailed     ErrorCode = "DWHE2001"
	ErrCodeCursorFailed         ErrorCode = "DWHE2002"
	ErrCodeNotConnected         ErrorCode = "DWHE2003"
	ErrCodeAuthenticationFailed ErrorCode = "DWHE2004"

	// Statement execution errors (3xxx)
	ErrCodeStatementFailed  ErrorCode = "DWHE3001"
	ErrCodeSQLTransaction   ErrorCode = "DWHE3002"
	ErrCodeSQLPermission    ErrorCode = "DWHE3003"
	ErrCodeSQLObjectMissing ErrorCode = "DWHE3004"

	// Source storage errors (4xxx)
	ErrCodePreflightFailed ErrorCode = "DWHE4001"
	ErrCodeInvalidLocation ErrorCode = "DWHE4002"

	// System errors (9xxx)
	ErrCodeInternal ErrorCode = "DWHE9001"
	ErrCodeAborted  ErrorCode = "DWHE9002"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "CRITICAL"
	SeverityError    ErrorSeverity = "ERROR"
	SeverityWarning  ErrorSeverity = "WARNING"
	SeverityInfo     ErrorSeverity = "INFO"
)

// AppError represents a structured application error with context
type AppError struct {
	Code        ErrorCode
	Message     string
	Severity    ErrorSeverity
	Context     map[string]interface{}
	Cause       error
	Stack       string
	Timestamp   time.Time
	Suggestions []string
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s: %s", e.Code, e.Severity, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\nCaused by: %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return b.String()
}

// Unwrap returns the cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another AppError carrying the same code
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Severity:  SeverityError,
		Context:   make(map[string]interface{}),
		Stack:     captureStack(),
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error with AppError
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	appErr := New(code, message)
	appErr.Cause = err

	var ae *AppError
	if errors.As(err, &ae) {
		for k, v := range ae.Context {
			appErr.Context[k] = v
		}
	}

	return appErr
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSeverity sets the error severity
func (e *AppError) WithSeverity(severity ErrorSeverity) *AppError {
	e.Severity = severity
	return e
}

// WithSuggestions adds recovery suggestions
func (e *AppError) WithSuggestions(suggestions ...string) *AppError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			b.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	return b.String()
}

// ConfigReadError reports a configuration file that could not be read or parsed
func ConfigReadError(path string, cause error) *AppError {
	return wrapOrNew(cause, ErrCodeConfigRead, fmt.Sprintf("Failed to read configuration file %s", path)).
		WithContext("path", path).
		WithSuggestions(
			"Run the command from the directory holding dwh.cfg",
			"Pass --config with the path to the configuration file",
		)
}

// ConfigError creates a configuration-related error
func ConfigError(message string, field string) *AppError {
	return New(ErrCodeConfigInvalid, message).
		WithContext("field", field).
		WithSuggestions(
			fmt.Sprintf("Check the '%s' configuration value", field),
			"Refer to dwh.cfg.example for the expected layout",
		)
}

// ConnectionError creates a connection-related error
func ConnectionError(message string, cause error) *AppError {
	err := wrapOrNew(cause, ErrCodeConnectionFailed, message).
		WithSuggestions(
			"Check that the cluster endpoint is reachable from this host",
			"Verify the cluster security group allows the client address",
		)

	if cause != nil && strings.Contains(strings.ToLower(cause.Error()), "password authentication failed") {
		err.Code = ErrCodeAuthenticationFailed
		err.Suggestions = []string{"Verify DB_USER and DB_PASSWORD in [CLUSTER]"}
	}

	return err
}

// CursorError reports a failure to acquire the dedicated session
func CursorError(cause error) *AppError {
	return wrapOrNew(cause, ErrCodeCursorFailed, "Failed to acquire a warehouse session")
}

// StatementError creates an SQL execution error
func StatementError(name string, query string, cause error) *AppError {
	err := wrapOrNew(cause, ErrCodeStatementFailed, fmt.Sprintf("Failed to execute statement %s", name)).
		WithContext("statement", name).
		WithContext("query", truncateString(strings.TrimSpace(query), 200))

	if cause == nil {
		return err
	}

	msg := strings.ToLower(cause.Error())
	switch {
	case strings.Contains(msg, "permission denied"), strings.Contains(msg, "not authorized"):
		err.Code = ErrCodeSQLPermission
		_ = err.WithSuggestions(
			"Check the database user has privileges on the target schema",
			"Verify the IAM role can read the S3 sources",
		)
	case strings.Contains(msg, "does not exist"):
		err.Code = ErrCodeSQLObjectMissing
		_ = err.WithSuggestions("Run create-tables before etl")
	case strings.Contains(msg, "stl_load_errors"):
		_ = err.WithSuggestions("Inspect stl_load_errors for the rejected rows")
	}

	return err
}

// PreflightError reports a missing bulk-load source
func PreflightError(location string, cause error) *AppError {
	if cause == nil {
		return New(ErrCodePreflightFailed, fmt.Sprintf("No objects found at %s", location)).
			WithContext("location", location)
	}
	return Wrap(cause, ErrCodePreflightFailed, fmt.Sprintf("Failed to inspect %s", location)).
		WithContext("location", location)
}

// AbortedError reports a run interrupted between statements
func AbortedError(cause error) *AppError {
	return wrapOrNew(cause, ErrCodeAborted, "Run aborted").WithSeverity(SeverityWarning)
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether any AppError in err's chain carries code
func HasCode(err error, code ErrorCode) bool {
	return errors.Is(err, &AppError{Code: code})
}

// wrapOrNew is Wrap that still builds the error when there is no cause
func wrapOrNew(cause error, code ErrorCode, message string) *AppError {
	if cause == nil {
		return New(code, message)
	}
	return Wrap(cause, code, message)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
