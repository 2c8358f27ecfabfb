package rbtree

import (
	"context"

	"ixtree/fragment"
)

// Find implements §4.2.6: plain BST descent, no rebalancing.
func (t *Tree[K]) Find(ctx context.Context, root fragment.Ref, x K) (K, bool, error) {
	h := rootChild[K](root)
	for h.kind != childNil {
		n, err := t.resolveOne(ctx, h)
		if err != nil {
			var zero K
			return zero, false, err
		}
		switch c := t.codec.Compare(x, n.key); {
		case c < 0:
			h = n.left
		case c > 0:
			h = n.right
		default:
			return n.key, true, nil
		}
	}
	var zero K
	return zero, false, nil
}

// Range implements §4.2.6's range query: all keys k with lo < k < hi,
// in ascending order. Subtrees entirely outside the bound are never
// resolved.
func (t *Tree[K]) Range(ctx context.Context, root fragment.Ref, lo, hi K) ([]K, error) {
	var out []K
	if err := t.rangeCollect(ctx, rootChild[K](root), lo, hi, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Tree[K]) rangeCollect(ctx context.Context, h child[K], lo, hi K, out *[]K) error {
	if h.kind == childNil {
		return nil
	}
	n, err := t.resolveOne(ctx, h)
	if err != nil {
		return err
	}
	aboveLo := t.codec.Compare(n.key, lo) > 0
	belowHi := t.codec.Compare(n.key, hi) < 0
	if aboveLo {
		if err := t.rangeCollect(ctx, n.left, lo, hi, out); err != nil {
			return err
		}
	}
	if aboveLo && belowHi {
		*out = append(*out, n.key)
	}
	if belowHi {
		if err := t.rangeCollect(ctx, n.right, lo, hi, out); err != nil {
			return err
		}
	}
	return nil
}
