package fragment

import "fmt"

// Kind tags a fragment's shape so a loaded byte blob can be decoded
// without external context. A Layer is constructed with a single
// Decoder that switches on Kind; the red-black tree registers one
// kind, the B-tree registers two (data node, index node).
type Kind byte

// Fragment is implemented by every on-disk node shape: the red-black
// tree's node, and the B-tree's data and index nodes.
type Fragment interface {
	Kind() Kind
	Encode() ([]byte, error)
}

// Decoder reconstructs a Fragment from its tagged wire bytes (kind
// byte plus payload), as read back from the KV store.
type Decoder func(kind Kind, payload []byte) (Fragment, error)

// encodeTagged prefixes a fragment's encoding with its kind byte, the
// wire format written under every FID key.
func encodeTagged(f Fragment) ([]byte, error) {
	payload, err := f.Encode()
	if err != nil {
		return nil, fmt.Errorf("fragment: encode %T: %w", f, err)
	}
	out := make([]byte, 1+len(payload))
	out[0] = byte(f.Kind())
	copy(out[1:], payload)
	return out, nil
}

// decodeTagged reverses encodeTagged using the layer's Decoder.
func decodeTagged(decode Decoder, data []byte) (Fragment, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("%w: empty fragment payload", ErrStoreInconsistent)
	}
	f, err := decode(Kind(data[0]), data[1:])
	if err != nil {
		return nil, fmt.Errorf("%w: decode kind %d: %v", ErrStoreInconsistent, data[0], err)
	}
	return f, nil
}
