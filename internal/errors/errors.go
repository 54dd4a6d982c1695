package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes surfaced to callers
type ErrorCode string

const (
	// UnsupportedLanguage indicates the requested language tag is not in the closed set
	UnsupportedLanguage ErrorCode = "UNSUPPORTED_LANGUAGE"
	// InvalidRequest indicates a malformed analysis request (missing target, bad repo)
	InvalidRequest ErrorCode = "INVALID_REQUEST"
	// ListingFailed indicates the repository file listing could not be obtained
	ListingFailed ErrorCode = "LISTING_FAILED"
	// ContentUnavailable indicates a single file's content could not be fetched
	ContentUnavailable ErrorCode = "CONTENT_UNAVAILABLE"
	// CacheFailure indicates the listing cache could not be read or written
	CacheFailure ErrorCode = "CACHE_FAILURE"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	RunCommand FixActionType = "run-command"
	SetEnv     FixActionType = "set-env"
	OpenDocs   FixActionType = "open-docs"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Variable    string        `json:"variable,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// AnalysisError is the single terminal error an analysis run can return.
type AnalysisError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error
}

// New creates an AnalysisError carrying the default fixes for its code.
func New(code ErrorCode, message string, cause error) *AnalysisError {
	return &AnalysisError{
		Code:           code,
		Message:        message,
		SuggestedFixes: GetSuggestedFixes(code),
		cause:          cause,
	}
}

// Errorf is New with a formatted message and no cause.
func Errorf(code ErrorCode, format string, args ...interface{}) *AnalysisError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AnalysisError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *AnalysisError) WithDetails(details interface{}) *AnalysisError {
	e.Details = details
	return e
}

// WithFixes replaces the default suggested fixes
func (e *AnalysisError) WithFixes(fixes []FixAction) *AnalysisError {
	e.SuggestedFixes = fixes
	return e
}

// CodeOf returns the code of the first AnalysisError in err's chain, or
// InternalError when there is none.
func CodeOf(err error) ErrorCode {
	var ae *AnalysisError
	if stderrors.As(err, &ae) {
		return ae.Code
	}
	return InternalError
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	UnsupportedLanguage: {
		{
			Type:        OpenDocs,
			Description: "Use one of: javascript, typescript, python, jsx, tsx",
		},
	},
	ListingFailed: {
		{
			Type:        SetEnv,
			Variable:    "GITHUB_TOKEN",
			Description: "Private repositories and high request volumes need an API token",
		},
		{
			Type:        RunCommand,
			Command:     "depchain cache purge",
			Description: "Drop cached listings and retry",
		},
	},
	CacheFailure: {
		{
			Type:        RunCommand,
			Command:     "depchain cache purge",
			Description: "Reset the listing cache",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
