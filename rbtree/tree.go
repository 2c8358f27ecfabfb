package rbtree

import (
	"context"
	"fmt"

	"ixtree/fragment"
)

// DefaultCacheCapacity matches §3's stated default for the LRU cache.
const DefaultCacheCapacity = 1024

// Tree is a handle to the persistent red-black tree operations of
// §4.2. It is stateless between calls (§4.2.5): the root fragment.Ref
// passed into each call alone identifies the tree's contents.
type Tree[K any] struct {
	layer *fragment.Layer
	codec *KeyCodec[K]
}

// New wires a KV store and key codec into a red-black tree handle. A
// zero fragment.Ref denotes the empty tree.
func New[K any](kv fragment.Store, codec KeyCodec[K], hasher fragment.Hasher, cacheCapacity int64) (*Tree[K], error) {
	c := codec
	layer, err := fragment.NewLayer(kv, hasher, cacheCapacity, decoderFor(&c))
	if err != nil {
		return nil, err
	}
	return &Tree[K]{layer: layer, codec: &c}, nil
}

// Close releases the tree's cache resources.
func (t *Tree[K]) Close() {
	t.layer.Close()
}

// Layer exposes the underlying fragment layer, e.g. for root
// publication under a stable key (§6.3).
func (t *Tree[K]) Layer() *fragment.Layer {
	return t.layer
}

func (t *Tree[K]) resolveOne(ctx context.Context, h child[K]) (*node[K], error) {
	switch h.kind {
	case childInline:
		return h.node, nil
	case childRef:
		f, err := t.layer.LoadRef(ctx, h.ref)
		if err != nil {
			return nil, err
		}
		n, ok := f.(*node[K])
		if !ok {
			return nil, fmt.Errorf("%w: ref %s is not a red-black node", fragment.ErrStoreInconsistent, h.ref)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("rbtree: resolveOne called on an empty child")
	}
}

// loadTreeFragment implements §4.1's load-tree-fragment: depth<=0
// returns h unchanged; depth==1 resolves h itself only; depth>=2
// additionally resolves depth-1 further levels of children.
func (t *Tree[K]) loadTreeFragment(ctx context.Context, h child[K], depth int) (child[K], error) {
	if h.kind == childNil || depth <= 0 {
		return h, nil
	}
	n, err := t.resolveOne(ctx, h)
	if err != nil {
		return child[K]{}, err
	}
	if depth == 1 {
		return inlineChild(n), nil
	}
	left, err := t.loadTreeFragment(ctx, n.left, depth-1)
	if err != nil {
		return child[K]{}, err
	}
	right, err := t.loadTreeFragment(ctx, n.right, depth-1)
	if err != nil {
		return child[K]{}, err
	}
	return inlineChild(&node[K]{color: n.color, left: left, key: n.key, right: right, codec: n.codec}), nil
}

// Insert implements rb-insert. It descends to the insertion point,
// rebalances on the way back up, and paints the final root black
// before persisting it and returning the new root reference.
func (t *Tree[K]) Insert(ctx context.Context, root fragment.Ref, x K) (fragment.Ref, error) {
	newRoot, err := t.insertAt(ctx, rootChild[K](root), x, 0)
	if err != nil {
		return fragment.Ref{}, err
	}
	n, err := t.resolveOne(ctx, newRoot)
	if err != nil {
		return fragment.Ref{}, err
	}
	blackRoot := &node[K]{color: black, left: n.left, key: n.key, right: n.right, codec: t.codec}
	return t.layer.CreateRef(ctx, blackRoot)
}

func (t *Tree[K]) insertAt(ctx context.Context, h child[K], x K, depth int) (child[K], error) {
	if h.kind == childNil {
		return inlineChild(&node[K]{color: red, left: nilChild[K](), key: x, right: nilChild[K](), codec: t.codec}), nil
	}
	n, err := t.resolveOne(ctx, h)
	if err != nil {
		return child[K]{}, err
	}
	switch c := t.codec.Compare(x, n.key); {
	case c < 0:
		newLeft, err := t.insertAt(ctx, n.left, x, depth+1)
		if err != nil {
			return child[K]{}, err
		}
		return t.balance(ctx, n.color, newLeft, n.key, n.right, depth)
	case c > 0:
		newRight, err := t.insertAt(ctx, n.right, x, depth+1)
		if err != nil {
			return child[K]{}, err
		}
		return t.balance(ctx, n.color, n.left, n.key, newRight, depth)
	default:
		return inlineChild(n), nil
	}
}
