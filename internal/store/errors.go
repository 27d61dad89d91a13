// ABOUTME: Error taxonomy for prompt store operations
// ABOUTME: Validation, embedding, index-not-found, and external service errors
package store

import "fmt"

// ValidationError reports missing or blank required input. No external calls
// are made before it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// EmbeddingError wraps a failed or unparseable embedding call. The embedding
// layer has already exhausted its retries by the time this surfaces.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// IndexNotFoundError means the user has no index, i.e. has never saved
// anything. Update paths return it instead of provisioning an index.
type IndexNotFoundError struct {
	UserID string
}

func (e *IndexNotFoundError) Error() string {
	return fmt.Sprintf("index does not exist for user %q", e.UserID)
}

// ExternalServiceError wraps any other failure from the vector index service
// (permissions, throttling, network). It is propagated unmodified.
type ExternalServiceError struct {
	Op  string
	Err error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("vector service %s failed: %v", e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }
