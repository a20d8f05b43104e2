package ports

import "context"

// ImageStore is the outbound seam to the blob storage collaborator. Upload
// and deletion mechanics live with that service; the catalog only resolves
// and verifies keys it was handed.
type ImageStore interface {
	// ResolveURL turns a storage key into a publicly servable URL.
	ResolveURL(key string) string
	// Exists reports whether a key resolves to a stored object.
	Exists(ctx context.Context, key string) (bool, error)
}

// NoopImageStore is a safe default when no storage service is configured:
// keys pass through as URLs and always verify.
var NoopImageStore ImageStore = noopImageStore{}

type noopImageStore struct{}

func (noopImageStore) ResolveURL(key string) string                  { return key }
func (noopImageStore) Exists(_ context.Context, _ string) (bool, error) { return true, nil }
