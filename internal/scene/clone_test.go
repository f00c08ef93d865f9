package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prefabFixture() *Prefab {
	root := NewNode("Turret")
	root.Tag = "Enemy"
	root.Layer = 8
	barrel := root.NewChild("Barrel")
	muzzle := barrel.NewChild("Muzzle")
	nested := root.NewChild("Light")
	nested.Link = &Link{GUID: "light-guid", Overrides: []Override{{Property: "intensity", Value: 2.0}}}

	gun := root.AddComponent("Gun")
	gun.SetField("rate", KindValue, 4.5)
	gun.SetField("muzzle", KindReference, muzzle)
	gun.SetField("spares", KindReferenceList, []any{barrel, nil, ExternalRef{GUID: "ammo", ID: 7}})
	gun.SetField("tuning", KindValue, map[string]any{"spread": []any{1.0, 2.0}})
	barrel.AddComponent("Mesh").SetField("owner", KindReference, gun)

	return &Prefab{GUID: "turret-guid", Path: "Turret.prefab", Root: root}
}

func TestCloner_InstantiateCopiesAndLinks(t *testing.T) {
	p := prefabFixture()
	parent := NewNode("Scene")

	inst := Cloner{}.Instantiate(p, parent)

	require.NotSame(t, p.Root, inst)
	assert.Same(t, parent, inst.Parent)
	assert.Equal(t, []*Node{inst}, parent.Children)
	assert.Equal(t, "Turret", inst.Name)
	assert.Equal(t, "Enemy", inst.Tag)
	assert.Equal(t, 8, inst.Layer)
	require.NotNil(t, inst.Link)
	assert.Equal(t, "turret-guid", inst.Link.GUID)

	light, ok := Find(inst, "Turret/Light")
	require.True(t, ok)
	require.NotNil(t, light.Link, "nested links survive instantiation")
	assert.Equal(t, "light-guid", light.Link.GUID)
	assert.NotSame(t, p.Root.Children[1].Link, light.Link)
}

func TestCloner_RemapsInternalReferences(t *testing.T) {
	p := prefabFixture()
	inst := Cloner{}.Instantiate(p, nil)

	muzzle, _ := Find(inst, "Turret/Barrel/Muzzle")
	barrel, _ := Find(inst, "Turret/Barrel")
	gun := inst.Component("Gun")

	assert.Same(t, muzzle, gun.Field("muzzle").Value)
	spares := gun.Field("spares").Value.([]any)
	assert.Same(t, barrel, spares[0])
	assert.Nil(t, spares[1])
	assert.Equal(t, ExternalRef{GUID: "ammo", ID: 7}, spares[2])
	assert.Same(t, gun, barrel.Component("Mesh").Field("owner").Value)
	assert.Same(t, barrel, barrel.Component("Mesh").Owner)
}

func TestCloner_KeepsOutsideReferences(t *testing.T) {
	p := prefabFixture()
	outside := NewNode("Camera")
	p.Root.Component("Gun").SetField("camera", KindReference, outside)

	inst := Cloner{}.Instantiate(p, nil)
	assert.Same(t, outside, inst.Component("Gun").Field("camera").Value)
}

func TestCloner_DuplicateDropsLinks(t *testing.T) {
	p := prefabFixture()
	p.Root.Link = &Link{GUID: "base"}

	dup := Cloner{}.Duplicate(p.Root, nil)

	assert.Nil(t, dup.Parent)
	dup.Walk(func(n *Node) bool {
		assert.Nil(t, n.Link, n.Path())
		return true
	})
}

func TestCloner_DeepCopiesValues(t *testing.T) {
	p := prefabFixture()
	dup := Cloner{}.Duplicate(p.Root, nil)

	tuning := dup.Component("Gun").Field("tuning").Value.(map[string]any)
	tuning["spread"].([]any)[0] = 99.0

	orig := p.Root.Component("Gun").Field("tuning").Value.(map[string]any)
	assert.Equal(t, 1.0, orig["spread"].([]any)[0])
}

func TestEqual(t *testing.T) {
	a := NewNode("A")
	b := NewNode("A")

	assert.True(t, Equal(a, a))
	assert.False(t, Equal(a, b), "references compare by identity")
	assert.False(t, Equal(a, nil))
	assert.False(t, Equal("A", a))
	assert.True(t, Equal(int64(3), int64(3)))
	assert.False(t, Equal(int64(3), 3.0))
	assert.True(t, Equal([]any{a, "x"}, []any{a, "x"}))
	assert.False(t, Equal([]any{a}, []any{b}))
	assert.True(t, Equal(map[string]any{"k": []any{1.0}}, map[string]any{"k": []any{1.0}}))
	assert.False(t, Equal(map[string]any{"k": 1.0}, map[string]any{"j": 1.0}))
	assert.True(t, Equal(ExternalRef{GUID: "g", ID: 1}, ExternalRef{GUID: "g", ID: 1}))
	assert.True(t, Equal(nil, nil))
}

func TestLink_CloneNil(t *testing.T) {
	var l *Link
	assert.Nil(t, l.Clone())
	assert.Nil(t, CloneOverrides(nil))
}
