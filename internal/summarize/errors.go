package summarize

import "fmt"

// APICallError represents a failure calling the hosted model.
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("summarize API call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("summarize API call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError represents an unparseable model response.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to parse model response: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to parse model response: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// InferenceFailedError reports that an async invocation ended with a failure
// artifact instead of an output.
type InferenceFailedError struct {
	ArticleID string
	Message   string
}

func (e *InferenceFailedError) Error() string {
	return fmt.Sprintf("async inference for %s failed: %s", e.ArticleID, e.Message)
}
