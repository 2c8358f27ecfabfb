// Package btree implements the persistent B-tree of §4.3: an ordered
// map tuned for wide fan-out and forward iteration, paged through the
// fragment layer exactly like rbtree, but never importing it — the two
// tree packages share only the fragment layer's vocabulary.
package btree

import "ixtree/fragment"

const (
	kindData  fragment.Kind = 1
	kindIndex fragment.Kind = 2
)

// Config is carried inside every node so a loaded node knows its own
// fan-out bounds without external context (§3).
type Config struct {
	IndexB    int
	DataB     int
	OpBufSize int
}

type childKind uint8

const (
	childNil childKind = iota
	childInline
	childRef
)

// child is an index node's entry: either an inlined subtree not yet
// persisted, or a reference to an already-persisted one. Mutations
// always persist before splicing a child into a parent (§4.3.6,
// §4.3.7), so childInline only appears transiently within one call.
type child[K any, V any] struct {
	kind childKind
	node *bnode[K, V]
	ref  fragment.Ref
}

func refChild[K any, V any](r fragment.Ref) child[K, V] {
	return child[K, V]{kind: childRef, ref: r}
}

func inlineChild[K any, V any](n *bnode[K, V]) child[K, V] {
	return child[K, V]{kind: childInline, node: n}
}

// entry is one key/value pair of a data node.
type entry[K any, V any] struct {
	key K
	val V
}

// bnode is the node contract of §4.3.1 realized as a single tagged
// type: isIndex selects between the data-node and index-node shapes.
// A data node holds entries; an index node holds children plus the
// opaque operation buffer of §9.
type bnode[K any, V any] struct {
	cfg      Config
	isIndex  bool
	entries  []entry[K, V]
	children []child[K, V]
	opBuf    []byte

	keyCodec *KeyCodec[K]
	valCodec *ValueCodec[V]
}

func (n *bnode[K, V]) Kind() fragment.Kind {
	if n.isIndex {
		return kindIndex
	}
	return kindData
}

func (n *bnode[K, V]) entryCount() int {
	if n.isIndex {
		return len(n.children)
	}
	return len(n.entries)
}

func (n *bnode[K, V]) bound() int {
	if n.isIndex {
		return n.cfg.IndexB
	}
	return n.cfg.DataB
}

func (n *bnode[K, V]) overflow() bool {
	return n.entryCount() >= 2*n.bound()
}

func (n *bnode[K, V]) underflow() bool {
	return n.entryCount() < n.bound()
}

func newDataNode[K any, V any](cfg Config, entries []entry[K, V], kc *KeyCodec[K], vc *ValueCodec[V]) *bnode[K, V] {
	return &bnode[K, V]{cfg: cfg, entries: entries, keyCodec: kc, valCodec: vc}
}

func newIndexNode[K any, V any](cfg Config, children []child[K, V], opBuf []byte, kc *KeyCodec[K], vc *ValueCodec[V]) *bnode[K, V] {
	return &bnode[K, V]{cfg: cfg, isIndex: true, children: children, opBuf: opBuf, keyCodec: kc, valCodec: vc}
}
