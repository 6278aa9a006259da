package lights

import (
	"math/bits"
	"strconv"

	"github.com/gekko3d/forwardlight/rt/core"
	"github.com/gekko3d/forwardlight/rt/effect"
)

// DefaultMaxLightsPerGroup caps the light count of one direct shader group.
// Lights of a kind beyond it spill into further groups.
const DefaultMaxLightsPerGroup = 8

// Direct group parameter names, before composition.
const (
	DirectLightCount       = "DirectLightGroup.LightCount"
	DirectLightPositions   = "DirectLightGroup.Positions"
	DirectLightDirections  = "DirectLightGroup.Directions"
	DirectLightColors      = "DirectLightGroup.Colors"
	DirectLightRanges      = "DirectLightGroup.Ranges"
	DirectLightShadowRects = "DirectLightGroup.ShadowRects"
	DirectLightsInRange    = "DirectLightGroup.LightsInRange"
)

// DirectGroupViewKeys returns the per-view keys a direct group with the
// given capacity binds under composition.
func DirectGroupViewKeys(composition string, capacity int, shadowed bool) []effect.ParameterKey {
	keys := []effect.ParameterKey{
		effect.NewParameterKey(DirectLightCount, effect.ParamInt, 1),
		effect.NewParameterKey(DirectLightPositions, effect.ParamVec3, capacity),
		effect.NewParameterKey(DirectLightDirections, effect.ParamVec3, capacity),
		effect.NewParameterKey(DirectLightColors, effect.ParamVec3, capacity),
		effect.NewParameterKey(DirectLightRanges, effect.ParamFloat, capacity),
	}
	if shadowed {
		keys = append(keys, effect.NewParameterKey(DirectLightShadowRects, effect.ParamVec4, capacity))
	}
	for i := range keys {
		keys[i] = keys[i].ComposeWith(composition)
	}
	return keys
}

// DirectGroupDrawKeys returns the per-draw keys of a direct group.
func DirectGroupDrawKeys(composition string) []effect.ParameterKey {
	return []effect.ParameterKey{
		effect.NewParameterKey(DirectLightsInRange, effect.ParamInt, 1).ComposeWith(composition),
	}
}

// LightCountBucket rounds n up to a power of two in [1, max].
func LightCountBucket(n, max int) int {
	if n <= 1 {
		return 1
	}
	b := 1 << bits.Len(uint(n-1))
	if b > max {
		b = max
	}
	return b
}

type directLight struct {
	light  *core.Light
	shadow *ShadowMapTexture
}

// directShaderGroup holds up to maxLight lights per view of one direct kind,
// with or without shadows, across all views of the frame.
type directShaderGroup struct {
	kind     core.LightKind
	shadowed bool
	maxLight int

	perView  [][]directLight
	capacity int

	// Composed parameter names, set by UpdateLayout.
	composition    string
	countName      string
	positionsName  string
	directionsName string
	colorsName     string
	rangesName     string
	rectsName      string
	inRangeName    string

	upload []float32
}

func newDirectShaderGroup(kind core.LightKind, shadowed bool, maxLights int) *directShaderGroup {
	g := &directShaderGroup{kind: kind, shadowed: shadowed, maxLight: maxLights, capacity: 1}
	g.UpdateLayout("")
	return g
}

func (g *directShaderGroup) reset() {
	for i := range g.perView {
		clear(g.perView[i])
		g.perView[i] = g.perView[i][:0]
	}
}

func (g *directShaderGroup) setViews(n int) {
	for len(g.perView) < n {
		g.perView = append(g.perView, nil)
	}
}

func (g *directShaderGroup) add(viewIndex int, l *core.Light, shadow *ShadowMapTexture) {
	g.setViews(viewIndex + 1)
	g.perView[viewIndex] = append(g.perView[viewIndex], directLight{light: l, shadow: shadow})
}

func (g *directShaderGroup) maxCount() int {
	n := 0
	for _, v := range g.perView {
		n = max(n, len(v))
	}
	return n
}

func (g *directShaderGroup) lights(viewIndex int) []directLight {
	if viewIndex < 0 || viewIndex >= len(g.perView) {
		return nil
	}
	return g.perView[viewIndex]
}

func (g *directShaderGroup) ShaderSource() effect.ShaderSource {
	class := "LightDirectGroup"
	if g.shadowed {
		class = "LightShadowedGroup"
	}
	return effect.NewShaderClassSource(class, g.kind.String(), strconv.Itoa(g.capacity))
}

func (g *directShaderGroup) HasEffectPermutations() bool { return false }

func (g *directShaderGroup) UpdateLayout(compositionName string) {
	compose := func(name string) string {
		return effect.ParameterKey{Name: name}.ComposeWith(compositionName).Name
	}
	g.composition = compositionName
	g.countName = compose(DirectLightCount)
	g.positionsName = compose(DirectLightPositions)
	g.directionsName = compose(DirectLightDirections)
	g.colorsName = compose(DirectLightColors)
	g.rangesName = compose(DirectLightRanges)
	g.rectsName = compose(DirectLightShadowRects)
	g.inRangeName = compose(DirectLightsInRange)
}

func (g *directShaderGroup) ApplyViewParameters(ctx *Context, viewIndex int, params *effect.ParameterCollection) {
	lights := g.lights(viewIndex)
	params.SetInt(g.countName, len(lights))
	for i, dl := range lights {
		l := dl.light
		params.SetVec3At(g.positionsName, i, l.Position)
		params.SetVec3At(g.directionsName, i, l.Direction)
		params.SetVec3At(g.colorsName, i, l.Radiance())
		params.SetFloatAt(g.rangesName, i, l.Range)
		if g.shadowed && dl.shadow != nil {
			params.SetVec4At(g.rectsName, i, dl.shadow.Rect)
		}
	}
}

func (g *directShaderGroup) ApplyDrawParameters(ctx *Context, viewIndex int, params *effect.ParameterCollection, box core.AABB) {
	n := 0
	for _, dl := range g.lights(viewIndex) {
		if dl.light.Influences(box) {
			n++
		}
	}
	params.SetInt(g.inRangeName, n)
}

// UpdateViewResources uploads the view's lights under the group's
// composition name as a packed buffer of position+range and radiance+shadow
// flag, 8 floats per light.
func (g *directShaderGroup) UpdateViewResources(ctx *Context, viewIndex int) {
	lights := g.lights(viewIndex)
	g.upload = g.upload[:0]
	for _, dl := range lights {
		l := dl.light
		c := l.Radiance()
		var shadow float32
		if dl.shadow != nil {
			shadow = 1
		}
		g.upload = append(g.upload,
			l.Position[0], l.Position[1], l.Position[2], l.Range,
			c[0], c[1], c[2], shadow)
	}
	ctx.Upload(g.composition, viewIndex, g.upload)
}

func (g *directShaderGroup) ApplyEffectPermutations(e *effect.RenderEffect) {}

// directChain spreads the lights of one kind and shadow flavor over as many
// groups as needed so that no group holds more than maxLights per view.
type directChain struct {
	kind      core.LightKind
	shadowed  bool
	maxLights int

	groups []*directShaderGroup
	counts []int
}

func (c *directChain) reset() {
	for _, g := range c.groups {
		g.reset()
	}
	clear(c.counts)
}

func (c *directChain) setViews(n int) {
	for _, g := range c.groups {
		g.setViews(n)
	}
}

func (c *directChain) add(viewIndex int, l *core.Light, shadow *ShadowMapTexture) {
	for len(c.counts) <= viewIndex {
		c.counts = append(c.counts, 0)
	}
	chunk := c.counts[viewIndex] / c.maxLights
	c.counts[viewIndex]++
	for len(c.groups) <= chunk {
		c.groups = append(c.groups, newDirectShaderGroup(c.kind, c.shadowed, c.maxLights))
	}
	c.groups[chunk].add(viewIndex, l, shadow)
}

type directKindGroups struct {
	kind     core.LightKind
	plain    *directChain
	shadowed *directChain
}

// DirectGroupRenderer renders direct light kinds. Each kind gets plain
// groups and, when shadows are supported, shadowed groups for lights that
// received a shadow map. A view with more than MaxLightsPerGroup lights of
// one kind fills several groups.
type DirectGroupRenderer struct {
	name              string
	kinds             []core.LightKind
	shadows           bool
	MaxLightsPerGroup int

	groups []directKindGroups
	views  []*core.View
}

func NewDirectGroupRenderer(name string, shadows bool, kinds ...core.LightKind) *DirectGroupRenderer {
	return &DirectGroupRenderer{
		name:              name,
		kinds:             append([]core.LightKind(nil), kinds...),
		shadows:           shadows,
		MaxLightsPerGroup: DefaultMaxLightsPerGroup,
	}
}

func (r *DirectGroupRenderer) Name() string { return r.name }

func (r *DirectGroupRenderer) LightKinds() []core.LightKind { return r.kinds }

func (r *DirectGroupRenderer) Initialize(ctx *Context) {
	maxLights := max(1, r.MaxLightsPerGroup)
	r.groups = r.groups[:0]
	for _, k := range r.kinds {
		kg := directKindGroups{kind: k, plain: &directChain{kind: k, maxLights: maxLights}}
		if r.shadows {
			kg.shadowed = &directChain{kind: k, shadowed: true, maxLights: maxLights}
		}
		r.groups = append(r.groups, kg)
	}
}

func (r *DirectGroupRenderer) Unload() {
	r.groups = nil
	r.views = nil
}

func (r *DirectGroupRenderer) eachChain(fn func(c *directChain)) {
	for _, kg := range r.groups {
		fn(kg.plain)
		if kg.shadowed != nil {
			fn(kg.shadowed)
		}
	}
}

func (r *DirectGroupRenderer) each(fn func(g *directShaderGroup)) {
	r.eachChain(func(c *directChain) {
		for _, g := range c.groups {
			fn(g)
		}
	})
}

func (r *DirectGroupRenderer) Reset() {
	r.eachChain((*directChain).reset)
}

func (r *DirectGroupRenderer) SetViews(views []*core.View) {
	r.views = views
	r.eachChain(func(c *directChain) { c.setViews(len(views)) })
}

func (r *DirectGroupRenderer) kindGroups(kind core.LightKind) *directKindGroups {
	for i := range r.groups {
		if r.groups[i].kind == kind {
			return &r.groups[i]
		}
	}
	return nil
}

func (r *DirectGroupRenderer) ProcessLights(p *ProcessLightsParameters) {
	kg := r.kindGroups(p.Kind)
	if kg == nil {
		return
	}
	for i := p.LightStart; i < p.LightEnd; i++ {
		l := p.Lights.At(i)
		if kg.shadowed != nil {
			if tex := p.ShadowMapTextures[l]; tex != nil {
				kg.shadowed.add(p.ViewIndex, l, tex)
				continue
			}
		}
		kg.plain.add(p.ViewIndex, l, nil)
	}
}

// PrepareResources sizes every group to the largest view it serves.
func (r *DirectGroupRenderer) PrepareResources(ctx *Context) {
	r.each(func(g *directShaderGroup) {
		g.capacity = LightCountBucket(g.maxCount(), g.maxLight)
	})
}

// UpdateShaderPermutationEntry adds the groups holding lights, per kind the
// plain groups first, then the shadowed ones.
func (r *DirectGroupRenderer) UpdateShaderPermutationEntry(e *ShaderPermutationEntry) {
	r.each(func(g *directShaderGroup) {
		if g.maxCount() > 0 {
			e.AddDirectLightGroup(g)
		}
	})
}
