package btree

import (
	"context"
	"math/rand"
	"testing"

	"ixtree/fragment"
	"ixtree/store"
)

const missing = int64(-1)

func newTestTree(t *testing.T, cfg Config) (*Tree[int64, int64], fragment.Ref) {
	t.Helper()
	tr, root, err := New[int64, int64](context.Background(), store.NewMem(), cfg, Int64Keys, Int64Values, fragment.SHA256Hasher{}, 1024)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(tr.Close)
	return tr, root
}

// Boundary scenario 1: empty-tree lookup.
func TestEmptyTreeLookup(t *testing.T) {
	ctx := context.Background()
	tr, root := newTestTree(t, Config{IndexB: 3, DataB: 3, OpBufSize: 2})

	got, err := tr.Lookup(ctx, root, 42, missing)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != missing {
		t.Fatalf("Lookup(42) = %d, want %d", got, missing)
	}
}

// Boundary scenario 2: two-leaf B-tree, given layout.
func buildTwoLeafTree(t *testing.T) (*Tree[int64, int64], fragment.Ref) {
	t.Helper()
	ctx := context.Background()
	kc, vc := Int64Keys, Int64Values
	cfg := Config{IndexB: 3, DataB: 3, OpBufSize: 2}

	tr, _, err := New[int64, int64](ctx, store.NewMem(), cfg, kc, vc, fragment.SHA256Hasher{}, 1024)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(tr.Close)

	entries1 := make([]entry[int64, int64], 5)
	entries2 := make([]entry[int64, int64], 5)
	for i := int64(1); i <= 5; i++ {
		entries1[i-1] = entry[int64, int64]{key: i, val: i}
		entries2[i-1] = entry[int64, int64]{key: i + 5, val: i + 5}
	}
	data1 := newDataNode(cfg, entries1, tr.keyCodec, tr.valCodec)
	data2 := newDataNode(cfg, entries2, tr.keyCodec, tr.valCodec)

	ref1, err := tr.layer.CreateRef(ctx, data1)
	if err != nil {
		t.Fatalf("CreateRef data1: %v", err)
	}
	ref2, err := tr.layer.CreateRef(ctx, data2)
	if err != nil {
		t.Fatalf("CreateRef data2: %v", err)
	}

	root := newIndexNode[int64, int64](cfg, []child[int64, int64]{refChild[int64, int64](ref1), refChild[int64, int64](ref2)}, nil, tr.keyCodec, tr.valCodec)
	rootRef, err := tr.layer.CreateRef(ctx, root)
	if err != nil {
		t.Fatalf("CreateRef root: %v", err)
	}
	return tr, rootRef
}

func TestTwoLeafLookup(t *testing.T) {
	ctx := context.Background()
	tr, root := buildTwoLeafTree(t)

	for i := int64(1); i <= 10; i++ {
		got, err := tr.Lookup(ctx, root, i, missing)
		if err != nil {
			t.Fatalf("Lookup(%d): %v", i, err)
		}
		if got != i {
			t.Fatalf("Lookup(%d) = %d, want %d", i, got, i)
		}
	}
	if got, err := tr.Lookup(ctx, root, -10, missing); err != nil {
		t.Fatalf("Lookup(-10): %v", err)
	} else if got != missing {
		t.Fatalf("Lookup(-10) = %d, want missing", got)
	}
	if got, err := tr.Lookup(ctx, root, 100, missing); err != nil {
		t.Fatalf("Lookup(100): %v", err)
	} else if got != missing {
		t.Fatalf("Lookup(100) = %d, want missing", got)
	}
}

// Boundary scenario 3: forward iteration, given layout.
func TestTwoLeafForwardIteration(t *testing.T) {
	ctx := context.Background()
	tr, root := buildTwoLeafTree(t)

	assertForward(t, ctx, tr, root, 4, []int64{4, 5, 6, 7, 8, 9, 10})
	assertForward(t, ctx, tr, root, 0, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
}

func assertForward(t *testing.T, ctx context.Context, tr *Tree[int64, int64], root fragment.Ref, from int64, want []int64) {
	t.Helper()
	it, err := tr.ForwardIter(ctx, root, from)
	if err != nil {
		t.Fatalf("ForwardIter(%d): %v", from, err)
	}
	var got []int64
	for {
		k, _, ok, err := it.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, k)
	}
	if len(got) != len(want) {
		t.Fatalf("forward(%d) = %v, want %v", from, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("forward(%d) = %v, want %v", from, got, want)
		}
	}
}

// Boundary scenario 5: bulk insert.
func TestBulkInsertLookupAndForward(t *testing.T) {
	ctx := context.Background()
	tr, root := newTestTree(t, Config{IndexB: 500, DataB: 500, OpBufSize: 5})

	const n = 50000
	for i := int64(0); i < n; i++ {
		var err error
		root, err = tr.Insert(ctx, root, i, i)
		if err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}

	for _, i := range []int64{0, 1, 2500, 25000, 49999} {
		got, err := tr.Lookup(ctx, root, i, missing)
		if err != nil {
			t.Fatalf("Lookup(%d): %v", i, err)
		}
		if got != i {
			t.Fatalf("Lookup(%d) = %d, want %d", i, got, i)
		}
	}

	it, err := tr.ForwardIter(ctx, root, 450)
	if err != nil {
		t.Fatalf("ForwardIter(450): %v", err)
	}
	for want := int64(450); want < 460; want++ {
		k, _, ok, err := it.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok || k != want {
			t.Fatalf("forward(450)[%d] = %d, %v; want %d", want-450, k, ok, want)
		}
	}
}

// Boundary scenario 6: delete-root collapse.
func TestDeleteRootCollapse(t *testing.T) {
	ctx := context.Background()
	tr, root := newTestTree(t, Config{IndexB: 2, DataB: 2, OpBufSize: 1})

	var err error
	for _, v := range []int64{1, 2, 3, 4, 5, 6} {
		root, err = tr.Insert(ctx, root, v, v)
		if err != nil {
			t.Fatalf("Insert(%d): %v", v, err)
		}
	}

	rootNode, err := tr.resolveRoot(ctx, root)
	if err != nil {
		t.Fatalf("resolveRoot: %v", err)
	}
	if !rootNode.isIndex {
		t.Fatalf("expected an index root before deletion, got a data node")
	}

	for _, v := range []int64{2, 3, 4, 5} {
		root, err = tr.Delete(ctx, root, v)
		if err != nil {
			t.Fatalf("Delete(%d): %v", v, err)
		}
	}

	rootNode, err = tr.resolveRoot(ctx, root)
	if err != nil {
		t.Fatalf("resolveRoot after deletes: %v", err)
	}
	if rootNode.isIndex {
		t.Fatalf("expected root to collapse to a data node, still an index node with %d children", len(rootNode.children))
	}

	for _, v := range []int64{1, 6} {
		got, err := tr.Lookup(ctx, root, v, missing)
		if err != nil {
			t.Fatalf("Lookup(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("Lookup(%d) = %d, want %d", v, got, v)
		}
	}
	for _, v := range []int64{2, 3, 4, 5} {
		got, err := tr.Lookup(ctx, root, v, missing)
		if err != nil {
			t.Fatalf("Lookup(%d): %v", v, err)
		}
		if got != missing {
			t.Fatalf("Lookup(%d) = %d, want missing (deleted)", v, got)
		}
	}
}

func TestInsertDeleteRoundTrip(t *testing.T) {
	ctx := context.Background()
	tr, root := newTestTree(t, Config{IndexB: 4, DataB: 4, OpBufSize: 2})

	rng := rand.New(rand.NewSource(3))
	var err error
	for i := int64(0); i < 300; i++ {
		root, err = tr.Insert(ctx, root, rng.Int63n(1000), i)
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	root, err = tr.Insert(ctx, root, 777, 777)
	if err != nil {
		t.Fatalf("Insert(777): %v", err)
	}
	if got, err := tr.Lookup(ctx, root, 777, missing); err != nil || got != 777 {
		t.Fatalf("Lookup(777) = %d, %v; want 777, nil", got, err)
	}

	root, err = tr.Delete(ctx, root, 777)
	if err != nil {
		t.Fatalf("Delete(777): %v", err)
	}
	if got, err := tr.Lookup(ctx, root, 777, missing); err != nil || got != missing {
		t.Fatalf("Lookup(777) after delete = %d, %v; want missing, nil", got, err)
	}
}

func TestNumKeysMixedComparison(t *testing.T) {
	if compareNum(NumInt(3), NumFloat(3.5)) >= 0 {
		t.Fatalf("NumInt(3) should compare less than NumFloat(3.5)")
	}
	if compareNum(NumFloat(3.0), NumInt(3)) != 0 {
		t.Fatalf("NumFloat(3.0) should compare equal to NumInt(3)")
	}
	if compareNum(NumInt(5), NumInt(4)) <= 0 {
		t.Fatalf("NumInt(5) should compare greater than NumInt(4)")
	}
}
