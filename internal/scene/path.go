package scene

import "strings"

// Find resolves a slash-delimited path against root, acting as if it were
// called from a (possibly non-existent) parent of root: the path may start
// with root's own name. "Root" yields root, "Root/A/B" yields the B child of A.
//
// Each segment matches the first child with exactly that name. With duplicate
// sibling names the result is whichever duplicate comes first; such
// hierarchies are not supported.
func Find(root *Node, path string) (*Node, bool) {
	if root == nil {
		return nil, false
	}
	if path == root.Name {
		return root, true
	}
	path = strings.TrimPrefix(path, root.Name+"/")
	return FindRelative(root, path)
}

// FindRelative resolves path segment by segment below n. An empty path
// yields n.
func FindRelative(n *Node, path string) (*Node, bool) {
	if path == "" {
		return n, true
	}
	cur := n
	for _, seg := range strings.Split(path, "/") {
		next := childNamed(cur, seg)
		if next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func childNamed(n *Node, name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}
