package rbtree

import (
	"context"
	"fmt"
	"io"

	"ixtree/fragment"
)

// Dump writes a level-by-level (BFS) structural dump of the tree
// rooted at root to w, mirroring the teacher's page-inspection dumps:
// one section per level, one line per node.
func (t *Tree[K]) Dump(ctx context.Context, root fragment.Ref, w io.Writer) error {
	if root.FID().IsZero() {
		fmt.Fprintln(w, "(empty tree)")
		return nil
	}

	queue := []child[K]{rootChild[K](root)}
	for level := 0; len(queue) > 0; level++ {
		fmt.Fprintf(w, "level %d:\n", level)
		var next []child[K]
		for _, h := range queue {
			n, err := t.resolveOne(ctx, h)
			if err != nil {
				return err
			}
			colorName := "black"
			if n.color == red {
				colorName = "red"
			}
			fmt.Fprintf(w, "  %s key=%v\n", colorName, n.key)
			if n.left.kind != childNil {
				next = append(next, n.left)
			}
			if n.right.kind != childNil {
				next = append(next, n.right)
			}
		}
		queue = next
	}
	return nil
}
