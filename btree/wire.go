package btree

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"ixtree/fragment"
)

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func writeLenPrefixed(buf *bytes.Buffer, b []byte) {
	writeUvarint(buf, uint64(len(b)))
	buf.Write(b)
}

func readLenPrefixed(r *bytes.Reader) ([]byte, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if n > 0 {
		if _, err := r.Read(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeConfig(buf *bytes.Buffer, cfg Config) {
	writeUvarint(buf, uint64(cfg.IndexB))
	writeUvarint(buf, uint64(cfg.DataB))
	writeUvarint(buf, uint64(cfg.OpBufSize))
}

func readConfig(r *bytes.Reader) (Config, error) {
	indexB, err := binary.ReadUvarint(r)
	if err != nil {
		return Config{}, err
	}
	dataB, err := binary.ReadUvarint(r)
	if err != nil {
		return Config{}, err
	}
	opBufSize, err := binary.ReadUvarint(r)
	if err != nil {
		return Config{}, err
	}
	return Config{IndexB: int(indexB), DataB: int(dataB), OpBufSize: int(opBufSize)}, nil
}

// Encode serializes n per its shape. Data nodes write their sorted
// entries; index nodes write their children and the opaque op buffer,
// carried verbatim per §9.
func (n *bnode[K, V]) Encode() ([]byte, error) {
	var buf bytes.Buffer
	writeConfig(&buf, n.cfg)
	if n.isIndex {
		writeLenPrefixed(&buf, n.opBuf)
		writeUvarint(&buf, uint64(len(n.children)))
		for _, c := range n.children {
			if err := encodeChild(&buf, c); err != nil {
				return nil, err
			}
		}
		return buf.Bytes(), nil
	}
	writeUvarint(&buf, uint64(len(n.entries)))
	for _, e := range n.entries {
		writeLenPrefixed(&buf, n.keyCodec.Encode(e.key))
		writeLenPrefixed(&buf, n.valCodec.Encode(e.val))
	}
	return buf.Bytes(), nil
}

func encodeChild[K any, V any](buf *bytes.Buffer, c child[K, V]) error {
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

func decodeChild[K any, V any](r *bytes.Reader, isIndex bool, kc *KeyCodec[K], vc *ValueCodec[V]) (child[K, V], error) {
	tag, err := r.ReadByte()
	if err != nil {
		return child[K, V]{}, err
	}
	switch tag {
	case 0:
		return child[K, V]{kind: childNil}, nil
	case 1:
		sub, err := readLenPrefixed(r)
		if err != nil {
			return child[K, V]{}, err
		}
		n, err := decodeNode(sub, isIndex, kc, vc)
		if err != nil {
			return child[K, V]{}, err
		}
		return inlineChild(n), nil
	case 2:
		var fid fragment.FID
		if _, err := r.Read(fid[:]); err != nil {
			return child[K, V]{}, err
		}
		return refChild[K, V](fragment.NewRef(fid)), nil
	default:
		return child[K, V]{}, fmt.Errorf("btree: unknown child tag %d", tag)
	}
}

func decodeNode[K any, V any](payload []byte, isIndex bool, kc *KeyCodec[K], vc *ValueCodec[V]) (*bnode[K, V], error) {
	r := bytes.NewReader(payload)
	cfg, err := readConfig(r)
	if err != nil {
		return nil, err
	}
	if isIndex {
		opBuf, err := readLenPrefixed(r)
		if err != nil {
			return nil, err
		}
		count, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, err
		}
		children := make([]child[K, V], 0, count)
		for i := uint64(0); i < count; i++ {
			c, err := decodeChild(r, true, kc, vc)
			if err != nil {
				return nil, err
			}
			children = append(children, c)
		}
		return newIndexNode(cfg, children, opBuf, kc, vc), nil
	}
	count, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	entries := make([]entry[K, V], 0, count)
	for i := uint64(0); i < count; i++ {
		kb, err := readLenPrefixed(r)
		if err != nil {
			return nil, err
		}
		key, err := kc.Decode(kb)
		if err != nil {
			return nil, err
		}
		vb, err := readLenPrefixed(r)
		if err != nil {
			return nil, err
		}
		val, err := vc.Decode(vb)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry[K, V]{key: key, val: val})
	}
	return newDataNode(cfg, entries, kc, vc), nil
}

// decoderFor builds the fragment.Decoder a Tree[K,V] passes to its
// fragment.Layer: the kind byte alone distinguishes data from index
// nodes, so no separate registration per shape is needed.
func decoderFor[K any, V any](kc *KeyCodec[K], vc *ValueCodec[V]) fragment.Decoder {
	return func(kind fragment.Kind, payload []byte) (fragment.Fragment, error) {
		switch kind {
		case kindData:
			return decodeNode(payload, false, kc, vc)
		case kindIndex:
			return decodeNode(payload, true, kc, vc)
		default:
			return nil, fmt.Errorf("btree: unexpected fragment kind %d", kind)
		}
	}
}
