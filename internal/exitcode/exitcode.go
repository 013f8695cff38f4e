package exitcode

import (
	"os"
	"strings"

	"github.com/felixgeelhaar/dialectic/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// RecipeError indicates a recipe, anchor or planning contract violation
	RecipeError = 3

	// PathError indicates a path that cannot be constructed or classified
	PathError = 4

	// IOError indicates a file could not be read, parsed or written
	IOError = 5

	// ConfigError indicates an invalid configuration value
	ConfigError = 6

	// Interrupted indicates the user cancelled the operation
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

// DetermineExitCode maps an error to an exit code. Coded errors are mapped
// by their namespace; other errors by message.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if code := errors.CodeOf(err); code != "" {
		return fromCode(code)
	}

	errMsg := strings.ToLower(err.Error())

	// Usage errors
	if strings.Contains(errMsg, "invalid flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "missing argument") {
		return UsageError
	}
	if strings.Contains(errMsg, "accepts") && strings.Contains(errMsg, "arg(s)") {
		return UsageError
	}
	if strings.Contains(errMsg, "unknown format") {
		return UsageError
	}

	// File errors
	if strings.Contains(errMsg, "no such file") || strings.Contains(errMsg, "permission denied") {
		return IOError
	}

	// Default to general error
	return GeneralError
}

func fromCode(code errors.ErrorCode) int {
	prefix, _, _ := strings.Cut(string(code), "-")
	switch prefix {
	case "RECIPE", "ANCHOR", "PLAN":
		return RecipeError
	case "PATH":
		return PathError
	case "IO":
		return IOError
	case "CONFIG":
		return ConfigError
	default:
		return GeneralError
	}
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
	case RecipeError:
		return "Recipe or planning error"
	case PathError:
		return "Path construction error"
	case IOError:
		return "File I/O error"
	case ConfigError:
		return "Configuration error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
