package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Path codec errors (PATH-001 to PATH-099)
	ErrCodePathUnrecognized   ErrorCode = "PATH-001"
	ErrCodePathMissingField   ErrorCode = "PATH-002"
	ErrCodePathUnknownKind    ErrorCode = "PATH-003"
	ErrCodePathInvalidContext ErrorCode = "PATH-004"

	// Recipe errors (RECIPE-001 to RECIPE-099)
	ErrCodeRecipeMalformed       ErrorCode = "RECIPE-001"
	ErrCodeRecipeStepNotFound    ErrorCode = "RECIPE-002"
	ErrCodeRecipeOutputsRequired ErrorCode = "RECIPE-003"
	ErrCodeRecipeInvalid         ErrorCode = "RECIPE-004"
	ErrCodeRecipeNoRelevance     ErrorCode = "RECIPE-005"

	// Anchor selection errors (ANCHOR-001 to ANCHOR-099)
	ErrCodeAnchorMissingRelevance ErrorCode = "ANCHOR-001"
	ErrCodeAnchorAmbiguous        ErrorCode = "ANCHOR-002"
	ErrCodeAnchorNoInputs         ErrorCode = "ANCHOR-003"

	// Planner errors (PLAN-001 to PLAN-099)
	ErrCodePlanInvalidParent     ErrorCode = "PLAN-001"
	ErrCodePlanLineageIncomplete ErrorCode = "PLAN-002"
	ErrCodePlanNoPrimaryType     ErrorCode = "PLAN-003"
	ErrCodePlanUnknownStrategy   ErrorCode = "PLAN-004"
	ErrCodePlanDanglingLineage   ErrorCode = "PLAN-005"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
	ErrCodeFileUnmarshal   ErrorCode = "IO-005"
	ErrCodeFileMarshal     ErrorCode = "IO-006"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"
)

// DialecticError represents an enhanced error with code, suggestions, and documentation
type DialecticError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *DialecticError) Error() string {
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
func (e *DialecticError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DialecticError with the same code.
func (e *DialecticError) Is(target error) bool {
	t, ok := target.(*DialecticError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates a new DialecticError
func New(code ErrorCode, message string) *DialecticError {
	return &DialecticError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new DialecticError with a formatted message
func Newf(code ErrorCode, format string, args ...any) *DialecticError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new DialecticError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *DialecticError {
	return &DialecticError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *DialecticError) WithSuggestion(suggestion string) *DialecticError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *DialecticError) WithSuggestions(suggestions ...string) *DialecticError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *DialecticError) WithDocs(url string) *DialecticError {
	e.DocsURL = url
	return e
}

// CodeOf returns the code of the first DialecticError in err's chain, or ""
func CodeOf(err error) ErrorCode {
	var de *DialecticError
	if stderrors.As(err, &de) {
		return de.Code
	}
	return ""
}

// HasCode reports whether err's chain contains a DialecticError with the given code
func HasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// Common error constructors for contract violations

// NewMalformedRecipeError creates an error for a recipe step that cannot be planned
func NewMalformedRecipeError(stepID string, details string) *DialecticError {
	return Newf(ErrCodeRecipeMalformed, "Malformed recipe step %q: %s", stepID, details).
		WithSuggestion("Run 'dialectic recipe validate <file>' to check the recipe").
		WithSuggestion("Every EXECUTE step needs a document or header_context input unless it produces a header_context")
}

// NewMissingRelevanceError creates an error for a required document input without a relevance score
func NewMissingRelevanceError(stepID string, slug string, documentKey string) *DialecticError {
	return Newf(ErrCodeAnchorMissingRelevance,
		"Missing relevance score for required document input (stage=%s, document_key=%s) in step %q",
		slug, documentKey, stepID).
		WithSuggestion("Add an inputs_relevance entry for every required document input")
}

// NewNoRelevanceError creates an error for a step whose document inputs carry no relevance metadata at all
func NewNoRelevanceError(stepID string) *DialecticError {
	return Newf(ErrCodeRecipeNoRelevance,
		"Recipe step %q declares document inputs but no inputs_relevance metadata", stepID).
		WithSuggestion("Add inputs_relevance so the planner can choose an anchor document")
}

// NewAmbiguousAnchorError creates an error for tied highest relevance scores
func NewAmbiguousAnchorError(stepID string, relevance float64, keys []string) *DialecticError {
	return Newf(ErrCodeAnchorAmbiguous,
		"Ambiguous anchor selection in step %q: document inputs %s share the highest relevance %.2f",
		stepID, strings.Join(keys, ", "), relevance).
		WithSuggestion("Give exactly one document input the highest relevance score")
}

// NewOutputsRequiredError creates an error for missing or malformed outputs_required fields
func NewOutputsRequiredError(stepID string, field string) *DialecticError {
	return Newf(ErrCodeRecipeOutputsRequired,
		"Recipe step %q is missing required outputs_required field %s", stepID, field).
		WithSuggestion("Check the step's outputs_required block against its job_type")
}

// NewLineageIncompleteError creates an error for a lineage group lacking a required input
func NewLineageIncompleteError(stepID string, group string, rule string) *DialecticError {
	return Newf(ErrCodePlanLineageIncomplete,
		"Lineage group %s cannot satisfy required input %s for step %q", group, rule, stepID).
		WithSuggestion("Ensure every lineage has produced its required documents before planning this step")
}

// NewPathMissingFieldError creates an error for a path context lacking a field its kind requires
// NewDanglingLineageError reports a source_group that names no visible document
func NewDanglingLineageError(stepID string, docID string, group string) *DialecticError {
	return Newf(ErrCodePlanDanglingLineage,
		"Document %s points at source group %s, which is not among the documents given to step %q", docID, group, stepID).
		WithSuggestion("Include the lineage root in the source documents, or clear the stale source_group")
}

func NewPathMissingFieldError(kind string, field string) *DialecticError {
	return Newf(ErrCodePathMissingField, "%s is required to construct a %s path", field, kind)
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *DialecticError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *DialecticError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}
