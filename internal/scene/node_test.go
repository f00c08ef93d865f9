package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTree returns Root{A{C}, B}.
func buildTree() (root, a, b, c *Node) {
	root = NewNode("Root")
	a = root.NewChild("A")
	b = root.NewChild("B")
	c = a.NewChild("C")
	return root, a, b, c
}

func TestNode_PathFrom(t *testing.T) {
	root, a, _, c := buildTree()

	assert.Equal(t, "Root/A/C", c.Path())
	assert.Equal(t, "A/C", c.PathFrom(root))
	assert.Equal(t, "C", c.PathFrom(a))
	assert.Equal(t, "Root", root.Path())
	assert.Equal(t, "", root.PathFrom(root))
}

func TestNode_PathFromNonAncestorIsFullPath(t *testing.T) {
	_, _, b, c := buildTree()
	assert.Equal(t, "Root/A/C", c.PathFrom(b))
}

func TestNode_IsDescendantOf(t *testing.T) {
	root, a, b, c := buildTree()

	assert.True(t, c.IsDescendantOf(root))
	assert.True(t, c.IsDescendantOf(a))
	assert.True(t, a.IsDescendantOf(a), "a node counts as inside its own subtree")
	assert.False(t, c.IsDescendantOf(b))
	assert.False(t, root.IsDescendantOf(a))
}

func TestNode_WalkPreOrder(t *testing.T) {
	root, _, _, _ := buildTree()

	var names []string
	root.Walk(func(n *Node) bool {
		names = append(names, n.Name)
		return true
	})
	assert.Equal(t, []string{"Root", "A", "C", "B"}, names)

	names = nil
	root.Walk(func(n *Node) bool {
		names = append(names, n.Name)
		return n.Name != "A"
	})
	assert.Equal(t, []string{"Root", "A", "B"}, names)
}

func TestComponent_SetFieldUpserts(t *testing.T) {
	n := NewNode("N")
	c := n.AddComponent("Health")
	c.SetField("max", KindValue, int64(10))
	c.SetField("max", KindValue, int64(20))
	c.SetField("target", KindReference, n)

	require.Len(t, c.Fields, 2)
	assert.Equal(t, int64(20), c.Field("max").Value)
	assert.Same(t, n, c.Field("target").Value)
	assert.Nil(t, c.Field("missing"))
	assert.Same(t, c, n.Component("Health"))
	assert.Nil(t, n.Component("Mesh"))
}

func TestOwnerOf(t *testing.T) {
	n := NewNode("N")
	c := n.AddComponent("Light")

	assert.Same(t, n, OwnerOf(n))
	assert.Same(t, n, OwnerOf(c))
	assert.Nil(t, OwnerOf(ExternalRef{GUID: "g", ID: 3}))
	assert.Nil(t, OwnerOf(nil))
	assert.Nil(t, OwnerOf("string"))
}

func TestFind(t *testing.T) {
	root, a, b, c := buildTree()

	tests := []struct {
		path string
		want *Node
		ok   bool
	}{
		{"Root", root, true},
		{"Root/A", a, true},
		{"Root/A/C", c, true},
		{"Root/B", b, true},
		{"A/C", c, true},
		{"Root/C", nil, false},
		{"Root/A/Missing", nil, false},
		{"Other", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := Find(root, tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Same(t, tt.want, got)
		})
	}
}

func TestFind_RoundTripsPathFrom(t *testing.T) {
	root, _, _, _ := buildTree()
	root.Walk(func(n *Node) bool {
		got, ok := Find(root, n.PathFrom(root.Parent))
		require.True(t, ok, n.Path())
		assert.Same(t, n, got)
		return true
	})
}

func TestFind_DuplicateNamesPickFirst(t *testing.T) {
	root := NewNode("Root")
	first := root.NewChild("Dup")
	root.NewChild("Dup")

	got, ok := Find(root, "Root/Dup")
	require.True(t, ok)
	assert.Same(t, first, got)
}

func TestFind_NilRoot(t *testing.T) {
	_, ok := Find(nil, "Root")
	assert.False(t, ok)
}
