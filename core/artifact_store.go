package core

import "context"

// ArtifactStore defines the interface for durable binary artifacts addressed
// by a location string. Implementations must be thread-safe. Put returns the
// canonical location (which may differ from the key passed in, e.g. a full
// s3:// URI); Get accepts either form.
type ArtifactStore interface {
	Put(ctx context.Context, location string, data []byte) (string, error)
	Get(ctx context.Context, location string) ([]byte, error)
	// Namespace is the prefix under which Put places artifacts (e.g. s3://bucket).
	Namespace() string
}
