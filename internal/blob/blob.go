// Package blob provides content storage for uploaded résumé files behind a
// narrow contract, keyed by an opaque storage key.
package blob

import "context"

// Store is the contract the pipeline consumes for file bytes.
type Store interface {
	// Put stores data under key, overwriting any previous content.
	Put(ctx context.Context, key string, data []byte) error
	// Get returns the content stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
}
