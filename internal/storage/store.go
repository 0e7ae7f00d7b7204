package storage

import "context"

// ObjectStore persists blobs and hands back a publicly resolvable URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
