// Package rerrors defines the process-wide error taxonomy: a small set of
// sentinel errors distinguishing failure kinds (not type names) so callers
// can branch with errors.Is instead of string matching, the same idiom the
// rest of this codebase uses for config and service errors.
package rerrors

import "errors"

var (
	// ErrInputValidation covers an empty query, an unsafe sandbox path, or
	// an unknown session referenced by resume/delete/load.
	ErrInputValidation = errors.New("input validation failed")

	// ErrAdmissionRejected means no admission permit was free on the
	// synchronous try-acquire path. Transient: retry after jitter.
	ErrAdmissionRejected = errors.New("admission rejected: no free permit")

	// ErrStorageError covers a persistence failure during save/get/delete.
	ErrStorageError = errors.New("session storage error")

	// ErrRetrievalError covers a retrieval backend failure: unavailable,
	// dimension mismatch, or serialization failure.
	ErrRetrievalError = errors.New("retrieval error")

	// ErrSandboxError covers a sandbox spawn or pipe failure; callers
	// within a task must contain this and degrade rather than propagate.
	ErrSandboxError = errors.New("sandbox error")

	// ErrGraphExecution wraps a task's Error(msg) outcome; the session is
	// terminated as failed with the wrapped message.
	ErrGraphExecution = errors.New("graph execution error")

	// ErrConfig covers a missing required configuration reference,
	// produced at process boot only.
	ErrConfig = errors.New("configuration error")

	// ErrNotFound means the referenced session does not exist.
	ErrNotFound = errors.New("session not found")
)
