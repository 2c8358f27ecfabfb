package btree

import (
	"context"
	"fmt"
	"io"

	"ixtree/fragment"
)

// Dump writes a level-by-level (BFS) structural dump of the tree
// rooted at root to w, mirroring the teacher's page-inspection dumps:
// index nodes show their child count and op-buffer length, data nodes
// show their key/value entries.
func (t *Tree[K, V]) Dump(ctx context.Context, root fragment.Ref, w io.Writer) error {
	rootNode, err := t.resolveRoot(ctx, root)
	if err != nil {
		return err
	}

	queue := []*bnode[K, V]{rootNode}
	for level := 0; len(queue) > 0; level++ {
		fmt.Fprintf(w, "level %d:\n", level)
		var next []*bnode[K, V]
		for _, n := range queue {
			if n.isIndex {
				fmt.Fprintf(w, "  INDEX children=%d opBufLen=%d\n", len(n.children), len(n.opBuf))
				for _, c := range n.children {
					child, err := t.resolveChild(ctx, c)
					if err != nil {
						return err
					}
					next = append(next, child)
				}
				continue
			}
			fmt.Fprintf(w, "  DATA entries=%d\n", len(n.entries))
			for _, e := range n.entries {
				fmt.Fprintf(w, "    %v -> %v\n", e.key, e.val)
			}
		}
		queue = next
	}
	return nil
}
