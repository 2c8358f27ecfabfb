package fragment

import (
	"context"
	"fmt"
)

// Layer is the fragment layer of §4.1: content-addressed indirection
// over a Store, with an in-process read cache. One Layer is created
// per store handle (never a package-level singleton, per §9).
type Layer struct {
	kv     Store
	cache  *Cache
	hasher Hasher
	decode Decoder
}

// NewLayer wires a KV store, a hasher, a cache of the given capacity,
// and the fragment decoder for the tree that owns this layer.
func NewLayer(kv Store, hasher Hasher, cacheCapacity int64, decode Decoder) (*Layer, error) {
	cache, err := NewCache(cacheCapacity)
	if err != nil {
		return nil, err
	}
	if hasher == nil {
		hasher = SHA256Hasher{}
	}
	return &Layer{kv: kv, cache: cache, hasher: hasher, decode: decode}, nil
}

// Close releases the layer's cache resources.
func (l *Layer) Close() {
	l.cache.Close()
}

// CreateRef persists f under its content-derived FID if it is not
// already present in the cache or the durable store, and returns a
// reference to it. Persisting the same content twice is idempotent
// (§3 invariant) and causes at most one durable write (§8).
func (l *Layer) CreateRef(ctx context.Context, f Fragment) (Ref, error) {
	payload, err := encodeTagged(f)
	if err != nil {
		return Ref{}, err
	}
	fid := l.hasher.Hash(payload)

	if _, hit := l.cache.Get(fid); hit {
		return NewRef(fid), nil
	}

	exists, err := l.kv.Exists(ctx, fid.String())
	if err != nil {
		return Ref{}, fmt.Errorf("%w: exists %s: %v", ErrStoreUnavailable, fid, err)
	}
	if !exists {
		if err := l.kv.Put(ctx, fid.String(), payload); err != nil {
			return Ref{}, fmt.Errorf("%w: put %s: %v", ErrStoreUnavailable, fid, err)
		}
	}
	l.cache.Set(fid, f)
	return NewRef(fid), nil
}

// LoadRef resolves a reference to its fragment, consulting the cache
// first and falling back to the durable store on a miss. A reference
// with no backing fragment is a store-inconsistency failure: the
// index is corrupt.
func (l *Layer) LoadRef(ctx context.Context, ref Ref) (Fragment, error) {
	fid := ref.FID()
	if f, hit := l.cache.Get(fid); hit {
		return f, nil
	}

	data, ok, err := l.kv.Get(ctx, fid.String())
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", ErrStoreUnavailable, fid, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: reference %s has no backing fragment", ErrStoreInconsistent, fid)
	}

	f, err := decodeTagged(l.decode, data)
	if err != nil {
		return nil, err
	}
	l.cache.Set(fid, f)
	return f, nil
}

// Cache exposes the layer's cache for diagnostics.
func (l *Layer) Cache() *Cache {
	return l.cache
}

// Store exposes the layer's underlying KV store. No tree operation
// publishes a root itself; callers do that through PublishRoot.
func (l *Layer) Store() Store {
	return l.kv
}

// PublishRoot writes ref's FID under a user-chosen stable key (§6.3).
// The stable key holds the reference, not the fragment itself.
func (l *Layer) PublishRoot(ctx context.Context, key string, ref Ref) error {
	if err := l.kv.Put(ctx, key, []byte(ref.FID().String())); err != nil {
		return fmt.Errorf("%w: publish root %s: %v", ErrStoreUnavailable, key, err)
	}
	return nil
}

// LoadRootRef reads back a reference published under a stable key.
// ok is false if the key has never been published.
func (l *Layer) LoadRootRef(ctx context.Context, key string) (Ref, bool, error) {
	data, ok, err := l.kv.Get(ctx, key)
	if err != nil {
		return Ref{}, false, fmt.Errorf("%w: load root %s: %v", ErrStoreUnavailable, key, err)
	}
	if !ok {
		return Ref{}, false, nil
	}
	fid, err := ParseFID(string(data))
	if err != nil {
		return Ref{}, false, fmt.Errorf("%w: root %s has malformed FID: %v", ErrStoreInconsistent, key, err)
	}
	return NewRef(fid), true, nil
}
