package lights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/forwardlight/rt/core"
)

func maskedLight(kind core.LightKind, mask core.RenderGroupMask) *core.Light {
	l := core.NewLight(kind)
	l.CullingMask = mask
	return l
}

func fill(g *LightGroup, lights ...*core.Light) {
	for _, l := range lights {
		g.PrepareLight(l)
	}
	g.AllocateCollectionsPerGroupOfCullingMask()
	for _, l := range lights {
		g.AddLight(l)
	}
}

func TestLightGroupSubCollections(t *testing.T) {
	a := maskedLight(core.LightKindPoint, core.RenderGroup0.Mask())
	b := maskedLight(core.LightKindPoint, core.RenderGroup0.Mask()|core.RenderGroup2.Mask())
	c := maskedLight(core.LightKindPoint, core.RenderGroup2.Mask())

	g := NewLightGroup(core.LightKindPoint)
	fill(g, a, b, c)

	assert.Equal(t, 3, g.Count())
	assert.Equal(t, []*core.Light{a, b}, g.FindLightCollectionByGroup(core.RenderGroup0).Lights())
	assert.Equal(t, []*core.Light{b, c}, g.FindLightCollectionByGroup(core.RenderGroup2).Lights())

	empty := g.FindLightCollectionByGroup(core.RenderGroup1)
	require.NotNil(t, empty)
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 0, g.FindLightCollectionByGroup(200).Len())
}

func TestLightGroupClearKeepsStorage(t *testing.T) {
	lights := []*core.Light{
		maskedLight(core.LightKindSpot, core.RenderGroupMaskAll),
		maskedLight(core.LightKindSpot, core.RenderGroup1.Mask()),
	}
	g := NewLightGroup(core.LightKindSpot)
	fill(g, lights...)
	first := g.FindLightCollectionByGroup(core.RenderGroup1)
	require.Equal(t, 2, first.Len())
	arena := len(g.collections)

	g.Clear()
	assert.Equal(t, 0, g.Count())
	assert.Equal(t, core.RenderGroupMaskNone, g.Mask())
	assert.Equal(t, 0, g.FindLightCollectionByGroup(core.RenderGroup1).Len())

	fill(g, lights...)
	assert.Equal(t, arena, len(g.collections), "second frame reuses the arena")
	assert.Same(t, first, g.FindLightCollectionByGroup(core.RenderGroup1))
}

func TestViewDataClassify(t *testing.T) {
	d := NewViewData()
	p1 := core.NewLight(core.LightKindPoint)
	s1 := core.NewLight(core.LightKindSpot)
	p2 := core.NewLight(core.LightKindPoint)
	d.VisibleLights = append(d.VisibleLights, p1, s1, p2)
	d.Classify()

	groups := d.LightGroups()
	require.Len(t, groups, 2)
	assert.Equal(t, core.LightKindPoint, groups[0].Kind)
	assert.Equal(t, []*core.Light{p1, p2}, groups[0].Lights())
	assert.Equal(t, []*core.Light{s1}, d.LightGroup(core.LightKindSpot).Lights())

	_, ok := d.FindLightGroup(core.LightKindDirectional)
	assert.False(t, ok)

	d.ClearClassification()
	d.ClearVisible()
	assert.Empty(t, d.VisibleLights)
	assert.Len(t, d.LightGroups(), 2, "groups survive clearing")
	assert.Equal(t, 0, d.LightGroup(core.LightKindPoint).Count())
}

func TestShaderPermutationEntryReset(t *testing.T) {
	e := NewShaderPermutationEntry()
	g := newDirectShaderGroup(core.LightKindPoint, false, 4)
	e.AddDirectLightGroup(g)
	e.AddEnvironmentLightGroup(&environmentShaderGroup{kind: core.LightKindAmbient})
	e.DirectLightShaders.Add(g.ShaderSource())
	assert.Len(t, e.Groups(), 2)

	e.Reset()
	assert.Empty(t, e.DirectLightGroups)
	assert.Empty(t, e.EnvironmentLights)
	assert.Empty(t, e.PermutationLightGroups)
	assert.Equal(t, 0, e.DirectLightShaders.Len())
	assert.Equal(t, 1, cap(e.DirectLightGroups))
}
