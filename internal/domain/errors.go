package domain

import "errors"

var (
	// ErrInvalidQuery signals a malformed search query (empty text, bad top_k, negative price).
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidArguments signals tool arguments that fail schema validation.
	ErrInvalidArguments = errors.New("invalid arguments")
	// ErrToolNotFound signals a tools/call against an unknown tool name.
	ErrToolNotFound = errors.New("tool not found")
	// ErrModelUnavailable signals that the embedding backend failed or is unreachable.
	ErrModelUnavailable = errors.New("embedding model unavailable")
	// ErrStoreUnavailable signals that the catalog store is unreachable or timed out.
	ErrStoreUnavailable = errors.New("catalog store unavailable")
	// ErrSchemaMismatch signals an embedding dimension that disagrees with the catalog schema.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrProductNotFound signals a missing product record.
	ErrProductNotFound = errors.New("product not found")
)
