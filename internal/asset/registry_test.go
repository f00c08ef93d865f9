package asset

import (
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/prefablink/internal/scene"
	"github.com/agentic-research/prefablink/internal/testutil"
)

const socketYAML = `version: "1"
guid: socket-guid
root:
  id: 1
  name: Socket
  components:
    - id: 2
      type: Mount
      fields:
        - name: depth
          value: 1
`

func newTestRegistry(t *testing.T) (*Registry, *Catalog) {
	t.Helper()
	s := newTestStore(t, map[string]string{
		"props/socket.prefab": socketYAML,
		"props/lamp.prefab":   lampYAML,
	})
	c := openTestCatalog(t)
	require.NoError(t, c.Put(Entry{GUID: "socket-guid", Path: "props/socket.prefab", Root: "Socket", IndexedAt: time.Now()}, nil))
	return NewRegistry(c, s, testutil.NewLogger(t)), c
}

func TestRegistryNearestTemplate(t *testing.T) {
	r, _ := newTestRegistry(t)

	root := scene.NewNode("Lamp")
	socket := root.NewChild("Socket")
	socket.Link = &scene.Link{GUID: "socket-guid", Overrides: []scene.Override{{Property: "tag", Value: "X"}}}
	pin := socket.NewChild("Pin")

	assert.False(t, r.IsNestedTemplateRoot(root))
	assert.True(t, r.IsNestedTemplateRoot(socket))
	assert.False(t, r.IsNestedTemplateRoot(pin))

	path, err := r.NearestTemplateAssetPath(pin)
	require.NoError(t, err)
	assert.Equal(t, "props/socket.prefab", path)

	assert.Equal(t, []scene.Override{{Property: "tag", Value: "X"}}, r.Overrides(pin))
	assert.Nil(t, r.Overrides(root))

	_, err = r.NearestTemplateAssetPath(root)
	assert.ErrorContains(t, err, "not part of a template instance")

	socket.Link.GUID = "unknown"
	_, err = r.NearestTemplateAssetPath(pin)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryResolveCaches(t *testing.T) {
	r, _ := newTestRegistry(t)

	a, err := r.ResolveTemplateAsset("props/socket.prefab")
	require.NoError(t, err)
	b, err := r.ResolveTemplateAsset("props/socket.prefab")
	require.NoError(t, err)
	assert.Same(t, a, b)

	r.Invalidate("props/socket.prefab")
	c, err := r.ResolveTemplateAsset("props/socket.prefab")
	require.NoError(t, err)
	assert.NotSame(t, a, c)

	_, err = r.ResolveTemplateAsset("props/missing.prefab")
	assert.Error(t, err)
}

func TestRegistryResetReloads(t *testing.T) {
	r, _ := newTestRegistry(t)

	a, err := r.ResolveTemplateAsset("props/socket.prefab")
	require.NoError(t, err)
	require.NoError(t, util.WriteFile(r.store.Filesystem(), "props/socket.prefab",
		[]byte(strings.Replace(socketYAML, "type: Mount", "type: Clamp", 1)), 0o644))

	b, err := r.ResolveTemplateAsset("props/socket.prefab")
	require.NoError(t, err)
	assert.Same(t, a, b, "cached until reset")

	r.Reset()
	c, err := r.ResolveTemplateAsset("props/socket.prefab")
	require.NoError(t, err)
	assert.NotNil(t, c.Root.Component("Clamp"))
	assert.Nil(t, c.Root.Component("Mount"))
}

func TestRegistrySetOverrides(t *testing.T) {
	r, _ := newTestRegistry(t)
	tmpl, err := r.ResolveTemplateAsset("props/socket.prefab")
	require.NoError(t, err)

	inst := scene.Cloner{}.Instantiate(tmpl, nil)
	overrides := []scene.Override{
		{Component: "Mount", Property: "depth", Value: 0.5},
		{Target: "Gone", Component: "Mount", Property: "depth", Value: 2.0},
	}
	require.NoError(t, r.SetOverrides(inst, overrides))

	assert.Equal(t, 0.5, inst.Component("Mount").Field("depth").Value)
	assert.Equal(t, overrides, inst.Link.Overrides, "unapplied overrides stay recorded")
	assert.Equal(t, int64(1), tmpl.Root.Component("Mount").Field("depth").Value, "template untouched")

	overrides[0].Value = 9.0
	assert.Equal(t, 0.5, inst.Link.Overrides[0].Value, "record is a copy")

	assert.Error(t, r.SetOverrides(scene.NewNode("Plain"), overrides))
}
