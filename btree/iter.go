package btree

import (
	"context"

	"ixtree/fragment"
)

// Iter is the lazy ascending sequence of §4.3.5. It holds only the
// current path, never materializing the rest of the tree.
type Iter[K any, V any] struct {
	t     *Tree[K, V]
	steps []pathStep[K, V]
	leaf  *bnode[K, V]
	pos   int
}

// ForwardIter implements §4.3.5: an iterator starting from the first
// entry with key >= from.
func (t *Tree[K, V]) ForwardIter(ctx context.Context, root fragment.Ref, from K) (*Iter[K, V], error) {
	rootNode, err := t.resolveRoot(ctx, root)
	if err != nil {
		return nil, err
	}
	path, err := t.lookupPath(ctx, rootNode, from)
	if err != nil {
		return nil, err
	}
	pos := lookupEntryIndex(path.leaf, from)
	return &Iter[K, V]{t: t, steps: path.steps, leaf: path.leaf, pos: pos}, nil
}

// Next returns the next (key, value) pair in ascending order, or
// ok=false once the sequence is exhausted.
func (it *Iter[K, V]) Next(ctx context.Context) (key K, val V, ok bool, err error) {
	for it.pos >= len(it.leaf.entries) {
		advanced, err := it.advance(ctx)
		if err != nil {
			var zk K
			var zv V
			return zk, zv, false, err
		}
		if !advanced {
			var zk K
			var zv V
			return zk, zv, false, nil
		}
	}
	e := it.leaf.entries[it.pos]
	it.pos++
	return e.key, e.val, true, nil
}

// advance implements §4.3.5's right-successor: ascend to the first
// ancestor with an unused child to its right, then descend leftmost
// to the next data node.
func (it *Iter[K, V]) advance(ctx context.Context) (bool, error) {
	for len(it.steps) > 0 {
		last := len(it.steps) - 1
		step := it.steps[last]
		if step.idx+1 >= len(step.node.children) {
			it.steps = it.steps[:last]
			continue
		}
		nextIdx := step.idx + 1
		it.steps[last] = pathStep[K, V]{node: step.node, idx: nextIdx}
		it.steps = it.steps[:last+1]

		cur, err := it.t.resolveChild(ctx, step.node.children[nextIdx])
		if err != nil {
			return false, err
		}
		for cur.isIndex {
			it.steps = append(it.steps, pathStep[K, V]{node: cur, idx: 0})
			next, err := it.t.resolveChild(ctx, cur.children[0])
			if err != nil {
				return false, err
			}
			cur = next
		}
		it.leaf = cur
		it.pos = 0
		return true, nil
	}
	return false, nil
}
