// Inspect a fragment store directory: with no tree name, reports
// fragment count and total size; with "rbtree" or "btree", loads that
// tree's published root and prints a BFS structural dump.
// Usage: go run ./cmd/inspect <store-dir> [rbtree|btree]
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

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
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <store-dir> [rbtree|btree]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Example: %s databases/ixtree-demo rbtree\n", os.Args[0])
		os.Exit(1)
	}
	dir := os.Args[1]

	kv, err := store.NewFile(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: open %s: %v\n", dir, err)
		os.Exit(1)
	}

	if len(os.Args) >= 3 {
		if err := dumpTree(kv, os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	count, totalBytes, err := kv.Stats()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: stats: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s\n", dir)
	fmt.Printf("  fragments: %s\n", humanize.Comma(int64(count)))
	fmt.Printf("  size:      %s (%s bytes)\n", humanize.Bytes(uint64(totalBytes)), humanize.Comma(totalBytes))
}

func dumpTree(kv *store.File, which string) error {
	ctx := context.Background()

	switch which {
	case "rbtree":
		tr, err := rbtree.New(kv, rbtree.Int64Keys, fragment.SHA256Hasher{}, rbtree.DefaultCacheCapacity)
		if err != nil {
			return err
		}
		defer tr.Close()
		root, ok, err := tr.Layer().LoadRootRef(ctx, rbtreeRootKey)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no rbtree root published under %q", rbtreeRootKey)
		}
		return tr.Dump(ctx, root, os.Stdout)

	case "btree":
		cfg := btree.Config{IndexB: 16, DataB: 16, OpBufSize: 4}
		tr, _, err := btree.New[int64, int64](ctx, kv, cfg, btree.Int64Keys, btree.Int64Values, fragment.SHA256Hasher{}, 1024)
		if err != nil {
			return err
		}
		defer tr.Close()
		root, ok, err := tr.Layer().LoadRootRef(ctx, btreeRootKey)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no btree root published under %q", btreeRootKey)
		}
		return tr.Dump(ctx, root, os.Stdout)

	default:
		return fmt.Errorf("unknown tree %q, want %q or %q", which, "rbtree", "btree")
	}
}
