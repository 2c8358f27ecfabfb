package fragment

import "context"

// Store is the external KV-store collaborator of §6.1: ACID per key,
// atomic put, durable on success. Two concrete implementations live in
// the sibling store package (in-memory and file-backed); this module
// only depends on the interface.
type Store interface {
	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Get returns the value stored under key, or ok=false if absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Put writes value under key. A successful return is durable;
	// readers never observe a partial value.
	Put(ctx context.Context, key string, value []byte) error
}
