package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Content pack errors (PACK-001 to PACK-099)
	ErrCodePackInvalid          ErrorCode = "PACK-001"
	ErrCodePackDuplicateID      ErrorCode = "PACK-002"
	ErrCodePackMissingDep       ErrorCode = "PACK-003"
	ErrCodePackCyclicDep        ErrorCode = "PACK-004"
	ErrCodePackOverrideTarget   ErrorCode = "PACK-005"
	ErrCodePackActiveNotFound   ErrorCode = "PACK-006"
	ErrCodePackDirectoryMissing ErrorCode = "PACK-007"

	// Equipment errors (EQUIP-001 to EQUIP-099)
	ErrCodeEquipmentInvalid ErrorCode = "EQUIP-001"

	// Save errors (SAVE-001 to SAVE-099)
	ErrCodeSaveUnavailable ErrorCode = "SAVE-001"
	ErrCodeSaveCorrupt     ErrorCode = "SAVE-002"
	ErrCodeSaveVersion     ErrorCode = "SAVE-003"

	// Task errors (TASK-001 to TASK-099)
	ErrCodeTaskUnknown ErrorCode = "TASK-001"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"
	ErrCodeConfigEnv     ErrorCode = "CONFIG-002"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
	ErrCodeFileUnmarshal   ErrorCode = "IO-005"
	ErrCodeFileMarshal     ErrorCode = "IO-006"
)

// ForgeError is an error with a code, suggestions and an optional docs link
type ForgeError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *ForgeError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *ForgeError) Unwrap() error {
	return e.Cause
}

// New creates a new ForgeError
func New(code ErrorCode, message string) *ForgeError {
	return &ForgeError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new ForgeError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *ForgeError {
	return &ForgeError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *ForgeError) WithSuggestion(suggestion string) *ForgeError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *ForgeError) WithSuggestions(suggestions ...string) *ForgeError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *ForgeError) WithDocs(url string) *ForgeError {
	e.DocsURL = url
	return e
}

// CodeOf returns the code of the first ForgeError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var fe *ForgeError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// Category returns the code family, e.g. "PACK" for "PACK-002".
func (c ErrorCode) Category() string {
	prefix, _, _ := strings.Cut(string(c), "-")
	return prefix
}

// NewPackDirectoryNotFoundError creates a missing packs directory error
func NewPackDirectoryNotFoundError(dir string) *ForgeError {
	return New(ErrCodePackDirectoryMissing, fmt.Sprintf("content packs directory not found: %s", dir)).
		WithSuggestion("Pass --packs to point at a directory containing one sub-directory per pack").
		WithSuggestion("Set packs_dir in the config file or IDLEFORGE_PACKS_DIR")
}

// NewEquipmentInvalidError creates an equipment schema error listing every problem
func NewEquipmentInvalidError(problems []string) *ForgeError {
	var b strings.Builder
	b.WriteString("Invalid equipment definitions:")
	for _, p := range problems {
		b.WriteString("\n- ")
		b.WriteString(p)
	}
	return New(ErrCodeEquipmentInvalid, b.String()).
		WithSuggestion("Fix every listed entry; invalid files are rejected as a whole")
}

// NewTaskUnknownError creates an unknown task selection error
func NewTaskUnknownError(taskID string) *ForgeError {
	return New(ErrCodeTaskUnknown, fmt.Sprintf("unknown task: %s", taskID)).
		WithSuggestion("Run 'idleforge status' to list the available task ids")
}

// NewConfigInvalidError creates a configuration validation error
func NewConfigInvalidError(details string) *ForgeError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details)).
		WithSuggestion("Check the config file (default $HOME/.idleforge/config.yaml)").
		WithSuggestion("Check IDLEFORGE_* environment variables")
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *ForgeError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *ForgeError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}
