// Package rbtree implements the persistent red-black tree of §4.2: a
// balanced ordered set of comparable keys, paged through the fragment
// layer, whose mutations never touch a fragment in place.
package rbtree

import "ixtree/fragment"

type color uint8

const (
	red color = iota
	black
)

// kindNode is the only fragment shape this package produces.
const kindNode fragment.Kind = 1

type childKind uint8

const (
	childNil childKind = iota
	childInline
	childRef
)

// child is the tagged sum of §9's design note: a parent holds either
// no subtree, an inlined subtree not yet persisted, or a reference to
// an already-persisted one.
type child[K any] struct {
	kind childKind
	node *node[K]
	ref  fragment.Ref
}

func nilChild[K any]() child[K] {
	return child[K]{kind: childNil}
}

func inlineChild[K any](n *node[K]) child[K] {
	if n == nil {
		return nilChild[K]()
	}
	return child[K]{kind: childInline, node: n}
}

func refChild[K any](r fragment.Ref) child[K] {
	return child[K]{kind: childRef, ref: r}
}

func rootChild[K any](root fragment.Ref) child[K] {
	if root.FID().IsZero() {
		return nilChild[K]()
	}
	return refChild[K](root)
}

// node is the red-black fragment shape of §3: (color, left, key, right).
// codec is never persisted; it is attached at construction/decode time
// so Encode can serialize the key without the Fragment interface
// having to carry extra parameters.
type node[K any] struct {
	color color
	left  child[K]
	key   K
	right child[K]
	codec *KeyCodec[K]
}

func (n *node[K]) Kind() fragment.Kind {
	return kindNode
}
