// Demo program: builds a red-black set and a B-tree map over a
// file-backed fragment store, publishes their roots, and runs a
// handful of queries against each.
// Run: go run ./cmd/demo [data-dir]
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"ixtree/btree"
	"ixtree/fragment"
	"ixtree/rbtree"
	"ixtree/store"
)

const (
	rbtreeRootKey = "roots/rbtree"
	btreeRootKey  = "roots/btree"
)

func main() {
	dir := "databases/ixtree-demo"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("mkdir %s: %v", dir, err)
	}

	ctx := context.Background()
	kv, err := store.NewFile(dir)
	if err != nil {
		log.Fatalf("open file store: %v", err)
	}

	fmt.Println("--- red-black set ---")
	runRBTree(ctx, kv)

	fmt.Println("\n--- B-tree map ---")
	runBTree(ctx, kv)

	count, totalBytes, err := kv.Stats()
	if err != nil {
		log.Fatalf("stats: %v", err)
	}
	fmt.Printf("\nstore %s: %d fragments, %d bytes\n", dir, count, totalBytes)
}

func runRBTree(ctx context.Context, kv *store.File) {
	tr, err := rbtree.New(kv, rbtree.Int64Keys, fragment.SHA256Hasher{}, rbtree.DefaultCacheCapacity)
	if err != nil {
		log.Fatalf("rbtree.New: %v", err)
	}
	defer tr.Close()

	var root fragment.Ref
	if existing, ok, err := tr.Layer().LoadRootRef(ctx, rbtreeRootKey); err != nil {
		log.Fatalf("load rbtree root: %v", err)
	} else if ok {
		root = existing
	}

	for _, v := range []int64{42, 7, 19, 3, 88, 15, 56, 1, 99, 23} {
		root, err = tr.Insert(ctx, root, v)
		if err != nil {
			log.Fatalf("rbtree.Insert(%d): %v", v, err)
		}
	}
	if err := tr.Layer().PublishRoot(ctx, rbtreeRootKey, root); err != nil {
		log.Fatalf("publish rbtree root: %v", err)
	}

	keys, err := tr.Range(ctx, root, -1, 100)
	if err != nil {
		log.Fatalf("rbtree.Range: %v", err)
	}
	fmt.Printf("range(-1, 100) = %v\n", keys)

	for _, v := range []int64{19, 1000} {
		_, ok, err := tr.Find(ctx, root, v)
		if err != nil {
			log.Fatalf("rbtree.Find(%d): %v", v, err)
		}
		fmt.Printf("find(%d) found = %v\n", v, ok)
	}
}

func runBTree(ctx context.Context, kv *store.File) {
	cfg := btree.Config{IndexB: 16, DataB: 16, OpBufSize: 4}

	tr, root, err := btree.New[int64, int64](ctx, kv, cfg, btree.Int64Keys, btree.Int64Values, fragment.SHA256Hasher{}, 1024)
	if err != nil {
		log.Fatalf("btree.New: %v", err)
	}
	defer tr.Close()

	for i := int64(0); i < 200; i++ {
		root, err = tr.Insert(ctx, root, i, i*i)
		if err != nil {
			log.Fatalf("btree.Insert(%d): %v", i, err)
		}
	}
	if err := tr.Layer().PublishRoot(ctx, btreeRootKey, root); err != nil {
		log.Fatalf("publish btree root: %v", err)
	}

	for _, k := range []int64{0, 42, 199, 1000} {
		v, err := tr.Lookup(ctx, root, k, -1)
		if err != nil {
			log.Fatalf("btree.Lookup(%d): %v", k, err)
		}
		fmt.Printf("lookup(%d) = %d\n", k, v)
	}

	it, err := tr.ForwardIter(ctx, root, 190)
	if err != nil {
		log.Fatalf("btree.ForwardIter: %v", err)
	}
	fmt.Print("forward(190) = [")
	for i := 0; ; i++ {
		k, v, ok, err := it.Next(ctx)
		if err != nil {
			log.Fatalf("iter.Next: %v", err)
		}
		if !ok {
			break
		}
		if i > 0 {
			fmt.Print(", ")
		}
		fmt.Printf("%d:%d", k, v)
	}
	fmt.Println("]")
}
