// Package apperr defines the error kinds shared by the service layer and all
// three front-ends. Each kind maps to a distinct caller-visible failure mode;
// front-ends translate kinds into HTTP status codes, CLI exit messages or MCP
// error payloads instead of inspecting error strings.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping.
type Kind string

const (
	KindConfiguration Kind = "configuration_error"
	KindValidation    Kind = "validation_error"
	KindEmbedding     Kind = "embedding_error"
	KindNotFound      Kind = "not_found"
	KindStorage       Kind = "storage_error"
)

// Error is the concrete error carried across layer boundaries.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Configuration reports missing or unusable configuration (e.g. no API key).
// Fatal for the operation, never retried.
func Configuration(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

// Validation reports bad caller input, rejected before any side effect.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Embedding reports a remote embedding failure that survived the batch and
// individual fallbacks.
func Embedding(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindEmbedding, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// NotFound reports an unknown collection or file.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Storage reports an insert/delete failure at the vector store.
func Storage(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindStorage, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IsKind reports whether err (or anything it wraps) is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

// PartialOverwriteError is surfaced when an overwrite ingestion deleted the
// previous vectors but failed before the replacements were committed. The
// caller recovers by re-running the ingestion; the state is not silently
// healed.
type PartialOverwriteError struct {
	Deleted int
	Cause   error
}

func (e *PartialOverwriteError) Error() string {
	return fmt.Sprintf("overwrite incomplete: %d vectors deleted but replacements not inserted: %v", e.Deleted, e.Cause)
}

func (e *PartialOverwriteError) Unwrap() error { return e.Cause }
