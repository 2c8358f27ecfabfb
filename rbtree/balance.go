package rbtree

import "context"

// flushEvery is the depth-modulated flush-to-store policy of §4.2.4:
// every third level, inline children are persisted to the fragment
// layer rather than carried further up as unbounded in-memory structure.
const flushEvery = 3

func (t *Tree[K]) reconstruct(ctx context.Context, c color, left child[K], key K, right child[K], depth int) (child[K], error) {
	n := &node[K]{color: c, left: left, key: key, right: right, codec: t.codec}
	return t.maybeFlush(ctx, n, depth)
}

func (t *Tree[K]) maybeFlush(ctx context.Context, n *node[K], depth int) (child[K], error) {
	if depth%flushEvery != 0 {
		return inlineChild(n), nil
	}
	left, err := t.flushChild(ctx, n.left)
	if err != nil {
		return child[K]{}, err
	}
	right, err := t.flushChild(ctx, n.right)
	if err != nil {
		return child[K]{}, err
	}
	return inlineChild(&node[K]{color: n.color, left: left, key: n.key, right: right, codec: n.codec}), nil
}

func (t *Tree[K]) flushChild(ctx context.Context, h child[K]) (child[K], error) {
	if h.kind != childInline {
		return h, nil
	}
	ref, err := t.layer.CreateRef(ctx, h.node)
	if err != nil {
		return child[K]{}, err
	}
	return refChild[K](ref), nil
}

// splitRed builds red(black(x1,k1,x2), k2, black(x3,k3,x4)), the
// common right-hand side of all four Okasaki rebalance patterns.
func (t *Tree[K]) splitRed(ctx context.Context, x1 child[K], k1 K, x2 child[K], k2 K, x3 child[K], k3 K, x4 child[K], depth int) (child[K], error) {
	leftNode := &node[K]{color: black, left: x1, key: k1, right: x2, codec: t.codec}
	rightNode := &node[K]{color: black, left: x3, key: k3, right: x4, codec: t.codec}
	lc, err := t.maybeFlush(ctx, leftNode, depth+1)
	if err != nil {
		return child[K]{}, err
	}
	rc, err := t.maybeFlush(ctx, rightNode, depth+1)
	if err != nil {
		return child[K]{}, err
	}
	top := &node[K]{color: red, left: lc, key: k2, right: rc, codec: t.codec}
	return t.maybeFlush(ctx, top, depth)
}

// balance implements §4.2.3's rb-balance: a black node with a
// red-red violation along exactly one of its two subtrees (the one
// just modified by insertAt) is restructured into the single
// red-rooted, black-child shape that restores the invariant without
// changing the node's own black height.
func (t *Tree[K]) balance(ctx context.Context, c color, left child[K], key K, right child[K], depth int) (child[K], error) {
	if c != black {
		return t.reconstruct(ctx, c, left, key, right, depth)
	}

	ml, err := t.loadTreeFragment(ctx, left, 2)
	if err != nil {
		return child[K]{}, err
	}
	if ml.kind == childInline && ml.node.color == red {
		L := ml.node
		if L.left.kind == childInline && L.left.node.color == red {
			inner := L.left.node
			return t.splitRed(ctx, inner.left, inner.key, inner.right, L.key, L.right, key, right, depth)
		}
		if L.right.kind == childInline && L.right.node.color == red {
			inner := L.right.node
			return t.splitRed(ctx, L.left, L.key, inner.left, inner.key, inner.right, key, right, depth)
		}
	}

	mr, err := t.loadTreeFragment(ctx, right, 2)
	if err != nil {
		return child[K]{}, err
	}
	if mr.kind == childInline && mr.node.color == red {
		R := mr.node
		if R.left.kind == childInline && R.left.node.color == red {
			inner := R.left.node
			return t.splitRed(ctx, left, key, inner.left, inner.key, inner.right, R.key, R.right, depth)
		}
		if R.right.kind == childInline && R.right.node.color == red {
			inner := R.right.node
			return t.splitRed(ctx, left, key, R.left, R.key, inner.left, inner.key, inner.right, depth)
		}
	}

	return t.reconstruct(ctx, black, left, key, right, depth)
}
