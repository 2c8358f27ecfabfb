package btree

import (
	"context"
	"fmt"

	"ixtree/fragment"
)

func removeEntry[K any, V any](n *bnode[K, V], key K) *bnode[K, V] {
	i := lookupEntryIndex(n, key)
	if i >= len(n.entries) || n.keyCodec.Compare(n.entries[i].key, key) != 0 {
		return n
	}
	entries := make([]entry[K, V], 0, len(n.entries)-1)
	entries = append(entries, n.entries[:i]...)
	entries = append(entries, n.entries[i+1:]...)
	return newDataNode(n.cfg, entries, n.keyCodec, n.valCodec)
}

// chooseSibling implements §4.3.7's larger-neighboring-sibling rule:
// prefer the right sibling if it holds strictly more entries, else
// the left; at either boundary only one side exists.
func (t *Tree[K, V]) chooseSibling(ctx context.Context, parent *bnode[K, V], idx int) (siblingIdx int, right bool, err error) {
	hasLeft := idx > 0
	hasRight := idx < len(parent.children)-1
	switch {
	case hasLeft && hasRight:
		leftNode, err := t.resolveChild(ctx, parent.children[idx-1])
		if err != nil {
			return 0, false, err
		}
		rightNode, err := t.resolveChild(ctx, parent.children[idx+1])
		if err != nil {
			return 0, false, err
		}
		if rightNode.entryCount() > leftNode.entryCount() {
			return idx + 1, true, nil
		}
		return idx - 1, false, nil
	case hasRight:
		return idx + 1, true, nil
	case hasLeft:
		return idx - 1, false, nil
	default:
		return 0, false, fmt.Errorf("%w: underflowing node has no sibling", fragment.ErrInvariantViolation)
	}
}

// Delete implements §4.3.7: remove key from the terminal data node,
// then bubble upward, merging any underflowing node with its larger
// sibling and re-splitting if the merge itself overflows. If the root
// collapses to a single child, tree height decreases.
func (t *Tree[K, V]) Delete(ctx context.Context, root fragment.Ref, key K) (fragment.Ref, error) {
	rootNode, err := t.resolveRoot(ctx, root)
	if err != nil {
		return fragment.Ref{}, err
	}
	path, err := t.lookupPath(ctx, rootNode, key)
	if err != nil {
		return fragment.Ref{}, err
	}

	cur := removeEntry(path.leaf, key)

	for i := len(path.steps) - 1; i >= 0; i-- {
		step := path.steps[i]
		parent := step.node

		if !cur.underflow() {
			ref, err := t.layer.CreateRef(ctx, cur)
			if err != nil {
				return fragment.Ref{}, err
			}
			cur = replaceChildSlot(parent, step.idx, []child[K, V]{refChild[K, V](ref)})
			continue
		}

		siblingIdx, isRight, err := t.chooseSibling(ctx, parent, step.idx)
		if err != nil {
			return fragment.Ref{}, err
		}
		sibling, err := t.resolveChild(ctx, parent.children[siblingIdx])
		if err != nil {
			return fragment.Ref{}, err
		}

		var merged *bnode[K, V]
		if isRight {
			merged = mergeNodes(cur, sibling)
		} else {
			merged = mergeNodes(sibling, cur)
		}

		lo, hi := step.idx, siblingIdx
		if lo > hi {
			lo, hi = hi, lo
		}

		if merged.overflow() {
			left, right := splitNode(merged)
			lref, err := t.layer.CreateRef(ctx, left)
			if err != nil {
				return fragment.Ref{}, err
			}
			rref, err := t.layer.CreateRef(ctx, right)
			if err != nil {
				return fragment.Ref{}, err
			}
			cur = replaceChildRange(parent, lo, hi, []child[K, V]{refChild[K, V](lref), refChild[K, V](rref)})
		} else {
			ref, err := t.layer.CreateRef(ctx, merged)
			if err != nil {
				return fragment.Ref{}, err
			}
			cur = replaceChildRange(parent, lo, hi, []child[K, V]{refChild[K, V](ref)})
		}
	}

	if cur.isIndex && len(cur.children) == 1 {
		if cur.children[0].kind == childRef {
			return cur.children[0].ref, nil
		}
		return t.layer.CreateRef(ctx, cur.children[0].node)
	}
	return t.layer.CreateRef(ctx, cur)
}
