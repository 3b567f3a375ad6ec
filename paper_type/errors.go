package paper_type

import (
	"errors"
	"fmt"
)

// ErrPaperNotFound is returned for any lookup with an unknown paper id.
var ErrPaperNotFound = errors.New("paper not found")

// ErrIngestionInProgress is returned when ingestion is requested for a
// paper that is already being processed.
var ErrIngestionInProgress = errors.New("ingestion already in progress for this paper")

// NotReadyError is returned by feature operations when the paper has not
// reached the processed status yet (or never will, if it failed).
type NotReadyError struct {
	Status PaperStatus
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("paper is not ready for this operation (status: %s)", e.Status)
}

// ParseError means the source document could not be turned into text:
// corrupt bytes, an encrypted PDF, or a file with no extractable content.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parse failed: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// EmbeddingError means the embedding capability failed after retries were
// exhausted.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// IndexError means the passage index could not persist the chunk set.
type IndexError struct {
	Err error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("indexing failed: %v", e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

// GenerationFormatError means the model answered, but not in the requested
// shape. The response is rejected rather than coerced.
type GenerationFormatError struct {
	Reason string
}

func (e *GenerationFormatError) Error() string {
	return fmt.Sprintf("generation output rejected: %s", e.Reason)
}

// GenerationCapabilityError means the model call itself failed (timeout,
// transport, quota). Retrying is left to the caller.
type GenerationCapabilityError struct {
	Err error
}

func (e *GenerationCapabilityError) Error() string {
	return fmt.Sprintf("generation call failed: %v", e.Err)
}

func (e *GenerationCapabilityError) Unwrap() error { return e.Err }
