package ux

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/dialectic/internal/errors"
)

// hint maps an error message pattern onto a code and a recovery suggestion
type hint struct {
	match      func(msg string) bool
	code       errors.ErrorCode
	summary    string
	suggestion func(msg string) string
}

func contains(subs ...string) func(string) bool {
	return func(msg string) bool {
		for _, s := range subs {
			if strings.Contains(msg, s) {
				return true
			}
		}
		return false
	}
}

func fixed(s string) func(string) string {
	return func(string) string { return s }
}

var hints = []hint{
	{
		match:   contains("no such file or directory", "file not found"),
		code:    errors.ErrCodeFileNotFound,
		summary: "file not found",
		suggestion: func(msg string) string {
			switch {
			case strings.Contains(msg, "recipe"):
				return "Pass the path of a stage recipe, e.g. 'dialectic recipe validate recipes/synthesis.yaml'"
			case strings.Contains(msg, "request"):
				return "Write a request file with parent_job, source_documents and step, then run 'dialectic plan --request <file>'"
			default:
				return "Check the path and try again"
			}
		},
	},
	{
		match:      contains("permission denied"),
		code:       errors.ErrCodeFileReadFailed,
		summary:    "permission denied",
		suggestion: fixed("Check file permissions and ensure you have access to the required files/directories"),
	},
	{
		match:      contains("yaml:", "invalid character"),
		code:       errors.ErrCodeFileUnmarshal,
		summary:    "invalid input",
		suggestion: fixed("The input is not valid YAML or JSON; check indentation and quoting"),
	},
}

// EnhanceError attaches a recovery suggestion to err. Coded errors are
// returned unchanged. Uncoded errors the hints recognize are wrapped in a
// coded error so the exit code reflects the failure class.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	var de *errors.DialecticError
	if stderrors.As(err, &de) {
		return err
	}

	msg := err.Error()
	for _, h := range hints {
		if h.match(msg) {
			return errors.Wrap(h.code, h.summary, err).WithSuggestion(h.suggestion(msg))
		}
	}
	return err
}

// FormatError provides consistent error formatting with context
func FormatError(err error, context string) error {
	if err == nil {
		return nil
	}

	enhanced := EnhanceError(err)
	if context != "" {
		return fmt.Errorf("%s: %w", context, enhanced)
	}
	return enhanced
}
