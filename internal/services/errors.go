package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies analysis failures.
type ErrorKind string

const (
	KindConfiguration     ErrorKind = "configuration"
	KindTransport         ErrorKind = "transport"
	KindQuotaExceeded     ErrorKind = "quota_exceeded"
	KindRateLimited       ErrorKind = "rate_limited"
	KindInvalidCredential ErrorKind = "invalid_credential"
	KindModelUnavailable  ErrorKind = "model_unavailable"
	KindParse             ErrorKind = "parse"
)

// AnalysisError is returned by the analyzer for any failed analysis.
type AnalysisError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	return e.Message
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// IsAnalysisErrorKind reports whether err wraps an AnalysisError of the given kind.
func IsAnalysisErrorKind(err error, kind ErrorKind) bool {
	var ae *AnalysisError
	return errors.As(err, &ae) && ae.Kind == kind
}

// ParseError describes a model reply that violates the output contract.
type ParseError struct {
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("failed to parse model response: %s", e.Reason)
	}
	return fmt.Sprintf("failed to parse model response: %s: %s", e.Field, e.Reason)
}

// BatchError is returned when every candidate of a batch failed.
type BatchError struct {
	Failed int
	Total  int
	First  error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("Failed to analyze all CVs. First error: %v", e.First)
}

func (e *BatchError) Unwrap() error {
	return e.First
}

// UnsupportedFormatError is returned for file extensions the extractor does not handle.
type UnsupportedFormatError struct {
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Extension == "" {
		return "unsupported file type: no extension"
	}
	return fmt.Sprintf("unsupported file type: %s", e.Extension)
}

// ExtractionError is returned when a supported document cannot be read.
type ExtractionError struct {
	Format string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from %s: %v", e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ValidationError reports a request that does not have the required shape.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
