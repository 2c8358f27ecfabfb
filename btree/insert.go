package btree

import (
	"context"

	"ixtree/fragment"
)

func upsertEntry[K any, V any](n *bnode[K, V], key K, val V) *bnode[K, V] {
	i := lookupEntryIndex(n, key)
	entries := make([]entry[K, V], 0, len(n.entries)+1)
	entries = append(entries, n.entries[:i]...)
	if i < len(n.entries) && n.keyCodec.Compare(n.entries[i].key, key) == 0 {
		entries = append(entries, entry[K, V]{key: key, val: val})
		entries = append(entries, n.entries[i+1:]...)
	} else {
		entries = append(entries, entry[K, V]{key: key, val: val})
		entries = append(entries, n.entries[i:]...)
	}
	return newDataNode(n.cfg, entries, n.keyCodec, n.valCodec)
}

// Insert implements §4.3.6: descend to the terminal data node, upsert
// the key, then bubble upward splitting any node that overflows and
// splicing the resulting halves into the parent. A root-level overflow
// grows the tree by one level.
func (t *Tree[K, V]) Insert(ctx context.Context, root fragment.Ref, key K, val V) (fragment.Ref, error) {
	rootNode, err := t.resolveRoot(ctx, root)
	if err != nil {
		return fragment.Ref{}, err
	}
	path, err := t.lookupPath(ctx, rootNode, key)
	if err != nil {
		return fragment.Ref{}, err
	}

	cur := upsertEntry(path.leaf, key, val)

	for i := len(path.steps) - 1; i >= 0; i-- {
		step := path.steps[i]
		replacement, err := t.persistOrSplit(ctx, cur)
		if err != nil {
			return fragment.Ref{}, err
		}
		cur = replaceChildSlot(step.node, step.idx, replacement)
	}

	if cur.overflow() {
		left, right := splitNode(cur)
		lref, err := t.layer.CreateRef(ctx, left)
		if err != nil {
			return fragment.Ref{}, err
		}
		rref, err := t.layer.CreateRef(ctx, right)
		if err != nil {
			return fragment.Ref{}, err
		}
		newRoot := newIndexNode[K, V](cur.cfg, []child[K, V]{refChild[K, V](lref), refChild[K, V](rref)}, nil, t.keyCodec, t.valCodec)
		return t.layer.CreateRef(ctx, newRoot)
	}
	return t.layer.CreateRef(ctx, cur)
}

// persistOrSplit persists n as-is, or splits it and persists both
// halves, returning the one or two children that should replace its
// slot in the parent.
func (t *Tree[K, V]) persistOrSplit(ctx context.Context, n *bnode[K, V]) ([]child[K, V], error) {
	if !n.overflow() {
		ref, err := t.layer.CreateRef(ctx, n)
		if err != nil {
			return nil, err
		}
		return []child[K, V]{refChild[K, V](ref)}, nil
	}
	left, right := splitNode(n)
	lref, err := t.layer.CreateRef(ctx, left)
	if err != nil {
		return nil, err
	}
	rref, err := t.layer.CreateRef(ctx, right)
	if err != nil {
		return nil, err
	}
	return []child[K, V]{refChild[K, V](lref), refChild[K, V](rref)}, nil
}
