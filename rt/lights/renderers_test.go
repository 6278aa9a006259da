package lights

import (
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/forwardlight/rt/core"
	"github.com/gekko3d/forwardlight/rt/effect"
)

func TestLightCountBucket(t *testing.T) {
	tests := []struct {
		n, max, want int
	}{
		{0, 8, 1},
		{1, 8, 1},
		{2, 8, 2},
		{3, 8, 4},
		{5, 8, 8},
		{9, 8, 8},
		{3, 2, 2},
	}
	for _, tt := range tests {
		if got := LightCountBucket(tt.n, tt.max); got != tt.want {
			t.Errorf("LightCountBucket(%d, %d) = %d, want %d", tt.n, tt.max, got, tt.want)
		}
	}
}

type uploadLog struct {
	names []string
	sizes []int
}

func (u *uploadLog) Upload(name string, viewIndex int, data []float32) {
	u.names = append(u.names, name)
	u.sizes = append(u.sizes, len(data))
}

func processAll(r GroupRenderer, ctx *Context, viewIndex int, kind core.LightKind, shadows map[*core.Light]*ShadowMapTexture, lights ...*core.Light) {
	var c LightCollection
	for _, l := range lights {
		c.Add(l)
	}
	r.ProcessLights(&ProcessLightsParameters{
		Context:           ctx,
		ViewIndex:         viewIndex,
		Lights:            &c,
		Kind:              kind,
		LightStart:        0,
		LightEnd:          c.Len(),
		ShadowMapTextures: shadows,
	})
}

func paramsFor(keys []effect.ParameterKey) *effect.ParameterCollection {
	layout := effect.NewResourceGroupLayout(effect.EffectStateNormal)
	group := layout.AddLogicalGroup("Lighting", keys...)
	pl := effect.NewParameterCollectionLayout()
	pl.ProcessLogicalGroup(layout, group)
	p := effect.NewParameterCollection()
	p.UpdateLayout(pl)
	return p
}

func TestDirectGroupRenderer(t *testing.T) {
	ctx := &Context{}
	r := NewDirectGroupRenderer("direct", true, core.LightKindPoint, core.LightKindSpot)
	r.Initialize(ctx)
	r.Reset()
	r.SetViews([]*core.View{{}, {}})

	near := core.NewLight(core.LightKindPoint)
	near.Position = mgl32.Vec3{1, 0, 0}
	far := core.NewLight(core.LightKindPoint)
	far.Position = mgl32.Vec3{100, 0, 0}
	far.Color = mgl32.Vec3{1, 0, 0}
	far.Intensity = 2
	shadowed := core.NewLight(core.LightKindPoint)
	tex := &ShadowMapTexture{Light: shadowed, Rect: mgl32.Vec4{0.5, 0, 0.5, 0.5}}

	processAll(r, ctx, 0, core.LightKindPoint, map[*core.Light]*ShadowMapTexture{shadowed: tex}, near, far, shadowed)
	processAll(r, ctx, 1, core.LightKindPoint, nil, near)
	r.PrepareResources(ctx)

	e := NewShaderPermutationEntry()
	r.UpdateShaderPermutationEntry(e)
	require.Len(t, e.DirectLightGroups, 2, "plain and shadowed point groups, no spot group")
	assert.Equal(t, "LightDirectGroup<point,2>", e.DirectLightGroups[0].ShaderSource().Key())
	assert.Equal(t, "LightShadowedGroup<point,1>", e.DirectLightGroups[1].ShaderSource().Key())

	plain := e.DirectLightGroups[0]
	plain.UpdateLayout("directLightGroups[0]")
	params := paramsFor(DirectGroupViewKeys("directLightGroups[0]", 2, false))
	plain.ApplyViewParameters(ctx, 0, params)
	assert.Equal(t, []float32{2}, params.Get("DirectLightGroup.LightCount.directLightGroups[0]"))
	colors := params.Get("DirectLightGroup.Colors.directLightGroups[0]")
	assert.Equal(t, []float32{2, 0, 0, 0}, colors[4:8])

	plain.ApplyViewParameters(ctx, 1, params)
	assert.Equal(t, []float32{1}, params.Get("DirectLightGroup.LightCount.directLightGroups[0]"))

	draw := paramsFor(DirectGroupDrawKeys("directLightGroups[0]"))
	box := core.AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	plain.ApplyDrawParameters(ctx, 0, draw, box)
	assert.Equal(t, []float32{1}, draw.Get("DirectLightGroup.LightsInRange.directLightGroups[0]"))

	sh := e.DirectLightGroups[1]
	sh.UpdateLayout("directLightGroups[1]")
	shParams := paramsFor(DirectGroupViewKeys("directLightGroups[1]", 1, true))
	sh.ApplyViewParameters(ctx, 0, shParams)
	assert.Equal(t, []float32{0.5, 0, 0.5, 0.5}, shParams.Get("DirectLightGroup.ShadowRects.directLightGroups[1]"))

	uploads := &uploadLog{}
	plain.UpdateViewResources(&Context{Uploader: uploads}, 0)
	assert.Equal(t, []string{"directLightGroups[0]"}, uploads.names)
	assert.Equal(t, []int{16}, uploads.sizes)

	// Next frame without lights: nothing is active.
	r.Reset()
	r.PrepareResources(ctx)
	e.Reset()
	r.UpdateShaderPermutationEntry(e)
	assert.Empty(t, e.DirectLightGroups)
}

func TestDirectGroupRendererSplitsLargeViews(t *testing.T) {
	ctx := &Context{}
	r := NewDirectGroupRenderer("direct", false, core.LightKindPoint)
	r.MaxLightsPerGroup = 4
	r.Initialize(ctx)
	r.Reset()
	r.SetViews([]*core.View{{}, {}})

	many := make([]*core.Light, 10)
	for i := range many {
		many[i] = core.NewLight(core.LightKindPoint)
		many[i].Position = mgl32.Vec3{float32(i), 0, 0}
	}
	processAll(r, ctx, 0, core.LightKindPoint, nil, many...)
	processAll(r, ctx, 1, core.LightKindPoint, nil, many[:3]...)
	r.PrepareResources(ctx)

	e := NewShaderPermutationEntry()
	r.UpdateShaderPermutationEntry(e)
	require.Len(t, e.DirectLightGroups, 3)
	assert.Equal(t, "LightDirectGroup<point,4>", e.DirectLightGroups[0].ShaderSource().Key())
	assert.Equal(t, "LightDirectGroup<point,4>", e.DirectLightGroups[1].ShaderSource().Key())
	assert.Equal(t, "LightDirectGroup<point,2>", e.DirectLightGroups[2].ShaderSource().Key())

	countName := func(comp string) string {
		return effect.ParameterKey{Name: DirectLightCount}.ComposeWith(comp).Name
	}
	var view0, view1 []float32
	var xs []float32
	for i, g := range e.DirectLightGroups {
		comp := fmt.Sprintf("directLightGroups[%d]", i)
		g.UpdateLayout(comp)
		params := paramsFor(DirectGroupViewKeys(comp, 4, false))
		g.ApplyViewParameters(ctx, 0, params)
		n := params.Get(countName(comp))[0]
		view0 = append(view0, n)
		pos := params.Get(effect.ParameterKey{Name: DirectLightPositions}.ComposeWith(comp).Name)
		for j := 0; j < int(n); j++ {
			xs = append(xs, pos[j*4])
		}
		g.ApplyViewParameters(ctx, 1, params)
		view1 = append(view1, params.Get(countName(comp))[0])
	}
	assert.Equal(t, []float32{4, 4, 2}, view0)
	assert.Equal(t, []float32{3, 0, 0}, view1)
	assert.Equal(t, []float32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, xs, "every light is shaded once")

	uploads := &uploadLog{}
	for _, g := range e.DirectLightGroups {
		g.UpdateViewResources(&Context{Uploader: uploads}, 0)
	}
	assert.Equal(t, []string{"directLightGroups[0]", "directLightGroups[1]", "directLightGroups[2]"}, uploads.names)
	assert.Equal(t, []int{32, 32, 16}, uploads.sizes)

	// Fewer lights next frame: the extra groups go idle.
	r.Reset()
	r.SetViews([]*core.View{{}})
	processAll(r, ctx, 0, core.LightKindPoint, nil, many[:2]...)
	r.PrepareResources(ctx)
	e.Reset()
	r.UpdateShaderPermutationEntry(e)
	require.Len(t, e.DirectLightGroups, 1)
	assert.Equal(t, "LightDirectGroup<point,2>", e.DirectLightGroups[0].ShaderSource().Key())
}

func TestDirectGroupRendererWithoutShadowSupport(t *testing.T) {
	ctx := &Context{}
	r := NewDirectGroupRenderer("direct", false, core.LightKindPoint)
	r.Initialize(ctx)
	r.SetViews([]*core.View{{}})
	l := core.NewLight(core.LightKindPoint)
	processAll(r, ctx, 0, core.LightKindPoint, map[*core.Light]*ShadowMapTexture{l: {Light: l}}, l)
	r.PrepareResources(ctx)

	e := NewShaderPermutationEntry()
	r.UpdateShaderPermutationEntry(e)
	require.Len(t, e.DirectLightGroups, 1)
	assert.Equal(t, "LightDirectGroup<point,1>", e.DirectLightGroups[0].ShaderSource().Key())
}

func TestEnvironmentGroupRenderer(t *testing.T) {
	ctx := &Context{}
	r := NewEnvironmentGroupRenderer("environment")
	assert.Equal(t, []core.LightKind{core.LightKindAmbient, core.LightKindSkybox}, r.LightKinds())
	r.Initialize(ctx)
	r.Reset()
	r.SetViews([]*core.View{{}})

	a1 := core.NewLight(core.LightKindAmbient)
	a1.Color = mgl32.Vec3{0.25, 0.25, 0.25}
	a2 := core.NewLight(core.LightKindAmbient)
	a2.Color = mgl32.Vec3{0.5, 0, 0}
	processAll(r, ctx, 0, core.LightKindAmbient, nil, a1, a2)

	e := NewShaderPermutationEntry()
	r.UpdateShaderPermutationEntry(e)
	require.Len(t, e.EnvironmentLights, 1)
	g := e.EnvironmentLights[0]
	assert.False(t, g.HasEffectPermutations())
	assert.Equal(t, "EnvironmentLight<ambient>", g.ShaderSource().Key())

	g.UpdateLayout("environmentLights[0]")
	params := paramsFor(EnvironmentGroupViewKeys("environmentLights[0]"))
	g.ApplyViewParameters(ctx, 0, params)
	assert.Equal(t, []float32{0.75, 0.25, 0.25, 0}, params.Get("EnvironmentLight.Color.environmentLights[0]"))

	sky := core.NewLight(core.LightKindSkybox)
	processAll(r, ctx, 0, core.LightKindSkybox, nil, sky)
	e.Reset()
	r.UpdateShaderPermutationEntry(e)
	require.Len(t, e.EnvironmentLights, 2)
	skyGroup := e.EnvironmentLights[1]
	assert.True(t, skyGroup.HasEffectPermutations())

	var fx effect.RenderEffect
	skyGroup.ApplyEffectPermutations(&fx)
	v, ok := fx.Validator.Value(SkyboxEnabledKey)
	assert.True(t, ok)
	assert.Equal(t, true, v)

	r.SetPermuting(core.LightKindSkybox, false)
	assert.False(t, skyGroup.HasEffectPermutations())
}
