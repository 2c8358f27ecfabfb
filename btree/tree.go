package btree

import (
	"context"
	"fmt"

	"ixtree/fragment"
)

// Tree is a handle to the persistent B-tree operations of §4.3. Like
// rbtree.Tree, it is stateless between calls: the root reference
// passed to each call alone identifies the tree's contents.
type Tree[K any, V any] struct {
	layer    *fragment.Layer
	keyCodec *KeyCodec[K]
	valCodec *ValueCodec[V]
}

// New wires a KV store and codecs into a B-tree handle, and persists a
// fresh empty root data node (§8's boundary scenario 1: an
// empty-tree lookup must work without a prior insert).
func New[K any, V any](ctx context.Context, kv fragment.Store, cfg Config, keyCodec KeyCodec[K], valCodec ValueCodec[V], hasher fragment.Hasher, cacheCapacity int64) (*Tree[K, V], fragment.Ref, error) {
	kc, vc := keyCodec, valCodec
	layer, err := fragment.NewLayer(kv, hasher, cacheCapacity, decoderFor(&kc, &vc))
	if err != nil {
		return nil, fragment.Ref{}, err
	}
	t := &Tree[K, V]{layer: layer, keyCodec: &kc, valCodec: &vc}
	root := newDataNode[K, V](cfg, nil, t.keyCodec, t.valCodec)
	ref, err := t.layer.CreateRef(ctx, root)
	if err != nil {
		return nil, fragment.Ref{}, err
	}
	return t, ref, nil
}

// Close releases the tree's cache resources.
func (t *Tree[K, V]) Close() {
	t.layer.Close()
}

// Layer exposes the underlying fragment layer.
func (t *Tree[K, V]) Layer() *fragment.Layer {
	return t.layer
}

func (t *Tree[K, V]) resolveChild(ctx context.Context, c child[K, V]) (*bnode[K, V], error) {
	switch c.kind {
	case childInline:
		return c.node, nil
	case childRef:
		f, err := t.layer.LoadRef(ctx, c.ref)
		if err != nil {
			return nil, err
		}
		n, ok := f.(*bnode[K, V])
		if !ok {
			return nil, fmt.Errorf("%w: ref %s is not a B-tree node", fragment.ErrStoreInconsistent, c.ref)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("%w: resolveChild called on a nil child", fragment.ErrStoreInconsistent)
	}
}

func (t *Tree[K, V]) resolveRoot(ctx context.Context, root fragment.Ref) (*bnode[K, V], error) {
	return t.resolveChild(ctx, refChild[K, V](root))
}

// lastKey implements §4.3.1's last-key: for a data node, the greatest
// entry key; for an index node, the last key of its rightmost child,
// resolved recursively down the right spine only.
func (t *Tree[K, V]) lastKey(ctx context.Context, c child[K, V]) (K, error) {
	n, err := t.resolveChild(ctx, c)
	if err != nil {
		var zero K
		return zero, err
	}
	if !n.isIndex {
		if len(n.entries) == 0 {
			var zero K
			return zero, fmt.Errorf("%w: last-key of empty data node", fragment.ErrInvariantViolation)
		}
		return n.entries[len(n.entries)-1].key, nil
	}
	if len(n.children) == 0 {
		var zero K
		return zero, fmt.Errorf("%w: last-key of empty index node", fragment.ErrInvariantViolation)
	}
	return t.lastKey(ctx, n.children[len(n.children)-1])
}

// lookupChildIndex implements §4.3.1's lookup over an index node: the
// smallest i such that key <= last-key(children[i]), via binary search
// over the derived last-keys.
func (t *Tree[K, V]) lookupChildIndex(ctx context.Context, n *bnode[K, V], key K) (int, error) {
	lo, hi := 0, len(n.children)-1
	for lo < hi {
		mid := (lo + hi) / 2
		lk, err := t.lastKey(ctx, n.children[mid])
		if err != nil {
			return 0, err
		}
		if t.keyCodec.Compare(key, lk) <= 0 {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo, nil
}

func lookupEntryIndex[K any, V any](n *bnode[K, V], key K) int {
	lo, hi := 0, len(n.entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if n.keyCodec.Compare(n.entries[mid].key, key) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// pathStep records one index level visited during a descent: the
// resolved node and the chosen child index within it (§4.3.2).
type pathStep[K any, V any] struct {
	node *bnode[K, V]
	idx  int
}

// Path is the alternating root/index/leaf sequence of §4.3.2.
type Path[K any, V any] struct {
	steps []pathStep[K, V]
	leaf  *bnode[K, V]
}

// lookupPath implements §4.3.3: descend from root while the current
// node has children, recording the chosen index at each level, until
// reaching a data node.
func (t *Tree[K, V]) lookupPath(ctx context.Context, root *bnode[K, V], key K) (*Path[K, V], error) {
	cur := root
	var steps []pathStep[K, V]
	for cur.isIndex {
		i, err := t.lookupChildIndex(ctx, cur, key)
		if err != nil {
			return nil, err
		}
		if i >= len(cur.children) {
			i = len(cur.children) - 1
		}
		steps = append(steps, pathStep[K, V]{node: cur, idx: i})
		next, err := t.resolveChild(ctx, cur.children[i])
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return &Path[K, V]{steps: steps, leaf: cur}, nil
}

// Lookup implements §4.3.4: descend to a data node and return the
// value for key, or notFound if the key is absent.
func (t *Tree[K, V]) Lookup(ctx context.Context, root fragment.Ref, key K, notFound V) (V, error) {
	rootNode, err := t.resolveRoot(ctx, root)
	if err != nil {
		return notFound, err
	}
	path, err := t.lookupPath(ctx, rootNode, key)
	if err != nil {
		return notFound, err
	}
	i := lookupEntryIndex(path.leaf, key)
	if i < len(path.leaf.entries) && t.keyCodec.Compare(path.leaf.entries[i].key, key) == 0 {
		return path.leaf.entries[i].val, nil
	}
	return notFound, nil
}

func splitEntries[K any, V any](n *bnode[K, V]) (*bnode[K, V], *bnode[K, V]) {
	b := n.bound()
	left := newDataNode(n.cfg, append([]entry[K, V]{}, n.entries[:b]...), n.keyCodec, n.valCodec)
	right := newDataNode(n.cfg, append([]entry[K, V]{}, n.entries[b:]...), n.keyCodec, n.valCodec)
	return left, right
}

func splitChildren[K any, V any](n *bnode[K, V]) (*bnode[K, V], *bnode[K, V]) {
	b := n.bound()
	mid := len(n.opBuf) / 2
	left := newIndexNode(n.cfg, append([]child[K, V]{}, n.children[:b]...), append([]byte{}, n.opBuf[:mid]...), n.keyCodec, n.valCodec)
	right := newIndexNode(n.cfg, append([]child[K, V]{}, n.children[b:]...), append([]byte{}, n.opBuf[mid:]...), n.keyCodec, n.valCodec)
	return left, right
}

// splitNode implements §4.3.1's split: two halves at position b. The
// median separator is never stored; it is recovered as last-key(left).
func splitNode[K any, V any](n *bnode[K, V]) (*bnode[K, V], *bnode[K, V]) {
	if n.isIndex {
		return splitChildren(n)
	}
	return splitEntries(n)
}

// mergeNodes implements §4.3.1's merge: caller guarantees left and
// right are adjacent siblings; ascending order is preserved.
func mergeNodes[K any, V any](left, right *bnode[K, V]) *bnode[K, V] {
	if left.isIndex {
		children := append(append([]child[K, V]{}, left.children...), right.children...)
		opBuf := append(append([]byte{}, left.opBuf...), right.opBuf...)
		return newIndexNode(left.cfg, children, opBuf, left.keyCodec, left.valCodec)
	}
	entries := append(append([]entry[K, V]{}, left.entries...), right.entries...)
	return newDataNode(left.cfg, entries, left.keyCodec, left.valCodec)
}

// replaceChildSlot builds a new index node with parent.children[idx]
// spliced out and replacement spliced in its place (one slot becomes
// one or two, per §4.3.6/§4.3.7).
func replaceChildSlot[K any, V any](parent *bnode[K, V], idx int, replacement []child[K, V]) *bnode[K, V] {
	return replaceChildRange(parent, idx, idx, replacement)
}

// replaceChildRange splices replacement into parent.children over the
// inclusive index range [lo, hi].
func replaceChildRange[K any, V any](parent *bnode[K, V], lo, hi int, replacement []child[K, V]) *bnode[K, V] {
	children := make([]child[K, V], 0, len(parent.children)-(hi-lo+1)+len(replacement))
	children = append(children, parent.children[:lo]...)
	children = append(children, replacement...)
	children = append(children, parent.children[hi+1:]...)
	return newIndexNode(parent.cfg, children, parent.opBuf, parent.keyCodec, parent.valCodec)
}
