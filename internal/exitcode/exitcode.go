package exitcode

import (
	"context"
	"errors"
	"os"
	"strings"

	forgeerrors "github.com/felixgeelhaar/idleforge/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// ValidationFailed indicates invalid content: pack metadata or equipment schema
	ValidationFailed = 3

	// MergeFailed indicates content packs could not be merged
	MergeFailed = 4

	// ConfigError indicates an invalid configuration file or environment
	ConfigError = 5

	// Interrupted indicates the command was stopped by a signal
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	code := DetermineExitCode(err)
	Exit(code)
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if errors.Is(err, context.Canceled) {
		return Interrupted
	}

	switch code := forgeerrors.CodeOf(err); code {
	case forgeerrors.ErrCodePackInvalid,
		forgeerrors.ErrCodePackDirectoryMissing,
		forgeerrors.ErrCodeEquipmentInvalid,
		forgeerrors.ErrCodeFileUnmarshal:
		return ValidationFailed
	case forgeerrors.ErrCodePackDuplicateID,
		forgeerrors.ErrCodePackMissingDep,
		forgeerrors.ErrCodePackCyclicDep,
		forgeerrors.ErrCodePackOverrideTarget,
		forgeerrors.ErrCodePackActiveNotFound:
		return MergeFailed
	case forgeerrors.ErrCodeTaskUnknown:
		return UsageError
	default:
		if code.Category() == "CONFIG" {
			return ConfigError
		}
	}

	errMsg := strings.ToLower(err.Error())

	// Usage errors reported by cobra
	if strings.Contains(errMsg, "invalid flag") || strings.Contains(errMsg, "invalid argument") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "unknown flag") || strings.Contains(errMsg, "unknown shorthand flag") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || (strings.Contains(errMsg, "accepts") && strings.Contains(errMsg, "arg(s)")) {
		return UsageError
	}

	// Default to general error
	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case ValidationFailed:
		return "Content validation failed"
	case MergeFailed:
		return "Content merge failed"
	case ConfigError:
		return "Configuration error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
