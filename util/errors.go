// Package util provides utility functions for Package URLs (PURLs), version
// comparison for vulnerability checking, CVSS scoring, and environment handling.
//
//revive:disable-next-line:var-naming
package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorCategory classifies failures from external sources and input handling.
type ErrorCategory string

// Error categories, from transport failures up to unclassified errors.
const (
	ErrorNetwork    ErrorCategory = "Network"
	ErrorParsing    ErrorCategory = "Parsing"
	ErrorValidation ErrorCategory = "Validation"
	ErrorAPI        ErrorCategory = "ApiError"
	ErrorUnknown    ErrorCategory = "Unknown"
)

// APIError represents a non-2xx response from an external source.
type APIError struct {
	StatusCode int
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d from %s", e.StatusCode, e.URL)
}

// IsNotFound reports whether the upstream answered 404.
func (e *APIError) IsNotFound() bool { return e.StatusCode == http.StatusNotFound }

// IsRateLimited reports whether the upstream answered 429.
func (e *APIError) IsRateLimited() bool { return e.StatusCode == http.StatusTooManyRequests }

// IsServerError reports whether the upstream answered 5xx.
func (e *APIError) IsServerError() bool { return e.StatusCode >= http.StatusInternalServerError }

// ValidationError marks semantically invalid input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Reason
}

// Classify maps an error onto the error taxonomy.
func Classify(err error) ErrorCategory {
	if err == nil {
		return ErrorUnknown
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return ErrorAPI
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return ErrorValidation
	}

	var jsonSyntax *json.SyntaxError
	var jsonType *json.UnmarshalTypeError
	if errors.As(err, &jsonSyntax) || errors.As(err, &jsonType) {
		return ErrorParsing
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorNetwork
	}

	return ErrorUnknown
}

// UserMessage is the short title/message/action triple surfaced by the API layer.
type UserMessage struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Action  string `json:"action"`
}

// DescribeError derives a user-facing message triple from an error category.
func DescribeError(err error) UserMessage {
	switch Classify(err) {
	case ErrorNetwork:
		return UserMessage{
			Title:   "Network error",
			Message: "An external data source could not be reached.",
			Action:  "Check connectivity and retry.",
		}
	case ErrorParsing:
		return UserMessage{
			Title:   "Malformed data",
			Message: "A document or response could not be parsed.",
			Action:  "Verify the input file is valid CycloneDX JSON.",
		}
	case ErrorValidation:
		return UserMessage{
			Title:   "Invalid input",
			Message: err.Error(),
			Action:  "Correct the request and retry.",
		}
	case ErrorAPI:
		var apiErr *APIError
		errors.As(err, &apiErr)
		switch {
		case apiErr.IsNotFound():
			return UserMessage{
				Title:   "Not found",
				Message: "An external source has no record for this package.",
				Action:  "No action needed; fields fall back to NA.",
			}
		case apiErr.IsRateLimited():
			return UserMessage{
				Title:   "Rate limited",
				Message: "An external source is throttling requests.",
				Action:  "Wait and retry; cached results are unaffected.",
			}
		default:
			return UserMessage{
				Title:   "Upstream error",
				Message: fmt.Sprintf("An external source answered with status %d.", apiErr.StatusCode),
				Action:  "Retry later.",
			}
		}
	default:
		return UserMessage{
			Title:   "Unexpected error",
			Message: "An unclassified error occurred during enrichment.",
			Action:  "Retry; if the problem persists, clear the cache.",
		}
	}
}
