package rbtree

import (
	"context"
	"math/rand"
	"sort"
	"testing"

	"ixtree/fragment"
	"ixtree/store"
)

func newTestTree(t *testing.T) *Tree[int64] {
	t.Helper()
	tr, err := New(store.NewMem(), Int64Keys, fragment.SHA256Hasher{}, DefaultCacheCapacity)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(tr.Close)
	return tr
}

func TestInsertFind(t *testing.T) {
	ctx := context.Background()
	tr := newTestTree(t)

	var root fragment.Ref
	values := []int64{5, 3, 8, 1, 4, 7, 9, 2, 6, 0}
	for _, v := range values {
		var err error
		root, err = tr.Insert(ctx, root, v)
		if err != nil {
			t.Fatalf("Insert(%d): %v", v, err)
		}
	}

	for _, v := range values {
		got, ok, err := tr.Find(ctx, root, v)
		if err != nil {
			t.Fatalf("Find(%d): %v", v, err)
		}
		if !ok || got != v {
			t.Fatalf("Find(%d) = %d, %v; want %d, true", v, got, ok, v)
		}
	}

	if _, ok, err := tr.Find(ctx, root, 42); err != nil {
		t.Fatalf("Find(42): %v", err)
	} else if ok {
		t.Fatalf("Find(42) = true, want false")
	}
}

func TestInsertIdempotent(t *testing.T) {
	ctx := context.Background()
	tr := newTestTree(t)

	var root fragment.Ref
	for _, v := range []int64{1, 1, 1, 2, 2} {
		var err error
		root, err = tr.Insert(ctx, root, v)
		if err != nil {
			t.Fatalf("Insert(%d): %v", v, err)
		}
	}
	got, err := tr.Range(ctx, root, -1, 10)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	want := []int64{1, 2}
	if !equalSlices(got, want) {
		t.Fatalf("Range = %v, want %v", got, want)
	}
}

func TestRangeExclusiveBounds(t *testing.T) {
	ctx := context.Background()
	tr := newTestTree(t)

	var root fragment.Ref
	for _, v := range []int64{10, 20, 30, 40, 50} {
		var err error
		root, err = tr.Insert(ctx, root, v)
		if err != nil {
			t.Fatalf("Insert(%d): %v", v, err)
		}
	}

	got, err := tr.Range(ctx, root, 10, 50)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	want := []int64{20, 30, 40}
	if !equalSlices(got, want) {
		t.Fatalf("Range(10,50) = %v, want %v (bounds must be exclusive)", got, want)
	}
}

func TestBulkInsertOrderedAndRangeCoversAll(t *testing.T) {
	ctx := context.Background()
	tr := newTestTree(t)

	const n = 2000
	var root fragment.Ref
	for i := int64(0); i < n; i++ {
		var err error
		root, err = tr.Insert(ctx, root, i)
		if err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}

	got, err := tr.Range(ctx, root, -1, n)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if len(got) != n {
		t.Fatalf("Range returned %d keys, want %d", len(got), n)
	}
	for i, v := range got {
		if v != int64(i) {
			t.Fatalf("Range[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestBulkInsertShuffled(t *testing.T) {
	ctx := context.Background()
	tr := newTestTree(t)

	const n = 2000
	values := make([]int64, n)
	for i := range values {
		values[i] = int64(i)
	}
	rng := rand.New(rand.NewSource(1))
	rng.Shuffle(n, func(i, j int) { values[i], values[j] = values[j], values[i] })

	var root fragment.Ref
	for _, v := range values {
		var err error
		root, err = tr.Insert(ctx, root, v)
		if err != nil {
			t.Fatalf("Insert(%d): %v", v, err)
		}
	}

	got, err := tr.Range(ctx, root, -1, n)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	sorted := append([]int64{}, values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	if !equalSlices(got, sorted) {
		t.Fatalf("Range after shuffled insert did not return sorted keys")
	}
}

// TestRedBlackInvariants walks the persisted tree and checks the laws
// of §3: the root is black, no red node has a red child, and every
// path from a given node to a nil leaf crosses the same number of
// black nodes.
func TestRedBlackInvariants(t *testing.T) {
	ctx := context.Background()
	tr := newTestTree(t)

	var root fragment.Ref
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 500; i++ {
		var err error
		root, err = tr.Insert(ctx, root, rng.Int63n(1000))
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	rootH, err := tr.loadTreeFragment(ctx, rootChild[int64](root), 1)
	if err != nil {
		t.Fatalf("loadTreeFragment: %v", err)
	}
	if rootH.kind == childInline && rootH.node.color != black {
		t.Fatalf("root is not black")
	}

	if _, err := checkInvariants(ctx, tr, rootChild[int64](root)); err != nil {
		t.Fatalf("invariant violation: %v", err)
	}
}

func checkInvariants(ctx context.Context, tr *Tree[int64], h child[int64]) (int, error) {
	if h.kind == childNil {
		return 0, nil
	}
	n, err := tr.resolveOne(ctx, h)
	if err != nil {
		return 0, err
	}
	if n.color == red {
		if isRed(ctx, tr, n.left) || isRed(ctx, tr, n.right) {
			return 0, fragment.ErrInvariantViolation
		}
	}
	lh, err := checkInvariants(ctx, tr, n.left)
	if err != nil {
		return 0, err
	}
	rh, err := checkInvariants(ctx, tr, n.right)
	if err != nil {
		return 0, err
	}
	if lh != rh {
		return 0, fragment.ErrInvariantViolation
	}
	if n.color == black {
		lh++
	}
	return lh, nil
}

func isRed(ctx context.Context, tr *Tree[int64], h child[int64]) bool {
	if h.kind == childNil {
		return false
	}
	n, err := tr.resolveOne(ctx, h)
	if err != nil {
		return false
	}
	return n.color == red
}

func equalSlices(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
