package btree

import (
	"encoding/binary"
	"fmt"
	"math"
)

// KeyCodec binds a key type to its total order and wire encoding.
type KeyCodec[K any] struct {
	Compare func(a, b K) int
	Encode  func(K) []byte
	Decode  func([]byte) (K, error)
}

// ValueCodec binds a value type to its wire encoding. Values are
// opaque to the tree's ordering; only keys are compared.
type ValueCodec[V any] struct {
	Encode func(V) []byte
	Decode func([]byte) (V, error)
}

// Int64Keys orders int64 keys numerically, the codec used by the
// simple boundary-scenario tests (§8's bulk-insert scenario).
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
			return 0, fmt.Errorf("btree: int64 key must be 8 bytes, got %d", len(b))
		}
		return int64(binary.BigEndian.Uint64(b)), nil
	},
}

// Int64Values is the identity value codec for int64 values.
var Int64Values = ValueCodec[int64]{
	Encode: func(v int64) []byte {
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(v))
		return buf
	},
	Decode: func(b []byte) (int64, error) {
		if len(b) != 8 {
			return 0, fmt.Errorf("btree: int64 value must be 8 bytes, got %d", len(b))
		}
		return int64(binary.BigEndian.Uint64(b)), nil
	},
}

// numKind tags which arm of Num holds a value.
type numKind uint8

const (
	numInt numKind = iota
	numFloat
)

// Num is the numeric-mixing key of §4.3.8: integer and floating-point
// keys compare by numeric value, resolving the spec's open question
// about mixed-width numeric comparison by normalizing through
// float64. Values outside float64's exact integer range (|v| beyond
// 2^53) may compare approximately rather than exactly; the spec left
// the precise mixed-width semantics to the implementer.
type Num struct {
	kind numKind
	i    int64
	f    float64
}

// NumInt builds an integer-valued Num key.
func NumInt(v int64) Num { return Num{kind: numInt, i: v} }

// NumFloat builds a floating-point-valued Num key.
func NumFloat(v float64) Num { return Num{kind: numFloat, f: v} }

func (n Num) asFloat() float64 {
	if n.kind == numFloat {
		return n.f
	}
	return float64(n.i)
}

func compareNum(a, b Num) int {
	if a.kind == numInt && b.kind == numInt {
		switch {
		case a.i < b.i:
			return -1
		case a.i > b.i:
			return 1
		default:
			return 0
		}
	}
	af, bf := a.asFloat(), b.asFloat()
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	default:
		return 0
	}
}

// NumKeys is the default comparator-mixing KeyCodec of §4.3.8.
var NumKeys = KeyCodec[Num]{
	Compare: compareNum,
	Encode: func(k Num) []byte {
		buf := make([]byte, 9)
		if k.kind == numInt {
			buf[0] = byte(numInt)
			binary.BigEndian.PutUint64(buf[1:], uint64(k.i))
		} else {
			buf[0] = byte(numFloat)
			binary.BigEndian.PutUint64(buf[1:], math.Float64bits(k.f))
		}
		return buf
	},
	Decode: func(b []byte) (Num, error) {
		if len(b) != 9 {
			return Num{}, fmt.Errorf("btree: Num key must be 9 bytes, got %d", len(b))
		}
		bits := binary.BigEndian.Uint64(b[1:])
		switch numKind(b[0]) {
		case numInt:
			return Num{kind: numInt, i: int64(bits)}, nil
		case numFloat:
			return Num{kind: numFloat, f: math.Float64frombits(bits)}, nil
		default:
			return Num{}, fmt.Errorf("btree: unknown Num tag %d", b[0])
		}
	},
}
