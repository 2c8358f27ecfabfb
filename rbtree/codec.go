package rbtree

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"ixtree/fragment"
)

// KeyCodec binds a key type to the total order and wire encoding the
// tree needs: Compare for BST descent and balancing, Encode/Decode so
// a node fragment can round-trip through the store. §4.3.8's note
// about mixing numeric widths applies to the B-tree; here any total
// order the caller supplies is conformant (§3's invariants only
// require comparability).
type KeyCodec[K any] struct {
	Compare func(a, b K) int
	Encode  func(K) []byte
	Decode  func([]byte) (K, error)
}

// Int64Keys is the KeyCodec used by the boundary-scenario tests: plain
// big-endian int64 keys in their natural numeric order.
var Int64Keys = KeyCodec[int64]{
	Compare: func(a, b int64) int {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	},
	Encode: func(k int64) []byte {
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(k))
		return buf
	},
	Decode: func(b []byte) (int64, error) {
		if len(b) != 8 {
			return 0, fmt.Errorf("rbtree: int64 key must be 8 bytes, got %d", len(b))
		}
		return int64(binary.BigEndian.Uint64(b)), nil
	},
}

func writeLenPrefixed(buf *bytes.Buffer, b []byte) {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(b)))
	buf.Write(lenBuf[:n])
	buf.Write(b)
}

func readLenPrefixed(r *bytes.Reader) ([]byte, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if _, err := r.Read(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Encode serializes n, recursively encoding inline children. A ref
// child is written as its 32-byte FID; an inline child recurses.
func (n *node[K]) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(byte(n.color))
	writeLenPrefixed(&buf, n.codec.Encode(n.key))
	if err := encodeChild(&buf, n.left); err != nil {
		return nil, err
	}
	if err := encodeChild(&buf, n.right); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeChild[K any](buf *bytes.Buffer, c child[K]) error {
	switch c.kind {
	case childNil:
		buf.WriteByte(0)
	case childRef:
		buf.WriteByte(2)
		fid := c.ref.FID()
		buf.Write(fid[:])
	case childInline:
		buf.WriteByte(1)
		sub, err := c.node.Encode()
		if err != nil {
			return err
		}
		writeLenPrefixed(buf, sub)
	}
	return nil
}

func decodeChild[K any](r *bytes.Reader, codec *KeyCodec[K]) (child[K], error) {
	tag, err := r.ReadByte()
	if err != nil {
		return child[K]{}, err
	}
	switch tag {
	case 0:
		return nilChild[K](), nil
	case 1:
		sub, err := readLenPrefixed(r)
		if err != nil {
			return child[K]{}, err
		}
		n, err := decodeNode(sub, codec)
		if err != nil {
			return child[K]{}, err
		}
		return inlineChild(n), nil
	case 2:
		var fid fragment.FID
		if _, err := r.Read(fid[:]); err != nil {
			return child[K]{}, err
		}
		return refChild[K](fragment.NewRef(fid)), nil
	default:
		return child[K]{}, fmt.Errorf("rbtree: unknown child tag %d", tag)
	}
}

func decodeNode[K any](payload []byte, codec *KeyCodec[K]) (*node[K], error) {
	r := bytes.NewReader(payload)
	colorByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	keyBytes, err := readLenPrefixed(r)
	if err != nil {
		return nil, err
	}
	key, err := codec.Decode(keyBytes)
	if err != nil {
		return nil, err
	}
	left, err := decodeChild(r, codec)
	if err != nil {
		return nil, err
	}
	right, err := decodeChild(r, codec)
	if err != nil {
		return nil, err
	}
	return &node[K]{color: color(colorByte), left: left, key: key, right: right, codec: codec}, nil
}

// decoderFor builds the fragment.Decoder a Tree[K] passes to its
// fragment.Layer at construction time.
func decoderFor[K any](codec *KeyCodec[K]) fragment.Decoder {
	return func(kind fragment.Kind, payload []byte) (fragment.Fragment, error) {
		if kind != kindNode {
			return nil, fmt.Errorf("rbtree: unexpected fragment kind %d", kind)
		}
		return decodeNode(payload, codec)
	}
}
