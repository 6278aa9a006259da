package lights

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/forwardlight/rt/core"
	"github.com/gekko3d/forwardlight/rt/effect"
)

const (
	EnvironmentLightColor = "EnvironmentLight.Color"
	// SkyboxEnabledKey is the effect permutation parameter set by skybox groups.
	SkyboxEnabledKey = "Lighting.SkyboxEnabled"
)

// EnvironmentGroupViewKeys returns the per-view keys of an environment group.
func EnvironmentGroupViewKeys(composition string) []effect.ParameterKey {
	return []effect.ParameterKey{
		effect.NewParameterKey(EnvironmentLightColor, effect.ParamVec3, 1).ComposeWith(composition),
	}
}

type environmentShaderGroup struct {
	kind     core.LightKind
	permutes bool

	perView   []mgl32.Vec3
	active    []bool
	colorName string
}

func (g *environmentShaderGroup) reset() {
	clear(g.perView)
	clear(g.active)
}

func (g *environmentShaderGroup) setViews(n int) {
	for len(g.perView) < n {
		g.perView = append(g.perView, mgl32.Vec3{})
		g.active = append(g.active, false)
	}
}

func (g *environmentShaderGroup) anyActive() bool {
	for _, a := range g.active {
		if a {
			return true
		}
	}
	return false
}

func (g *environmentShaderGroup) ShaderSource() effect.ShaderSource {
	return effect.NewShaderClassSource("EnvironmentLight", g.kind.String())
}

func (g *environmentShaderGroup) HasEffectPermutations() bool { return g.permutes }

func (g *environmentShaderGroup) UpdateLayout(compositionName string) {
	g.colorName = effect.ParameterKey{Name: EnvironmentLightColor}.ComposeWith(compositionName).Name
}

func (g *environmentShaderGroup) ApplyViewParameters(ctx *Context, viewIndex int, params *effect.ParameterCollection) {
	if viewIndex < 0 || viewIndex >= len(g.perView) {
		return
	}
	params.SetVec3At(g.colorName, 0, g.perView[viewIndex])
}

func (g *environmentShaderGroup) ApplyDrawParameters(ctx *Context, viewIndex int, params *effect.ParameterCollection, box core.AABB) {
}

func (g *environmentShaderGroup) UpdateViewResources(ctx *Context, viewIndex int) {}

func (g *environmentShaderGroup) ApplyEffectPermutations(e *effect.RenderEffect) {
	if g.permutes {
		e.Validator.ValidateParameter(SkyboxEnabledKey, true)
	}
}

// EnvironmentGroupRenderer renders ambient style lights. Every light of a
// kind adds its radiance to one color per view. Kinds listed as permuting
// (skybox by default) also switch an effect permutation on.
type EnvironmentGroupRenderer struct {
	name      string
	kinds     []core.LightKind
	permuting map[core.LightKind]bool

	groups []*environmentShaderGroup
}

func NewEnvironmentGroupRenderer(name string, kinds ...core.LightKind) *EnvironmentGroupRenderer {
	if len(kinds) == 0 {
		kinds = []core.LightKind{core.LightKindAmbient, core.LightKindSkybox}
	}
	return &EnvironmentGroupRenderer{
		name:      name,
		kinds:     append([]core.LightKind(nil), kinds...),
		permuting: map[core.LightKind]bool{core.LightKindSkybox: true},
	}
}

// SetPermuting marks whether lights of kind add an effect permutation.
func (r *EnvironmentGroupRenderer) SetPermuting(kind core.LightKind, on bool) {
	r.permuting[kind] = on
	for _, g := range r.groups {
		if g.kind == kind {
			g.permutes = on
		}
	}
}

func (r *EnvironmentGroupRenderer) Name() string { return r.name }

func (r *EnvironmentGroupRenderer) LightKinds() []core.LightKind { return r.kinds }

func (r *EnvironmentGroupRenderer) Initialize(ctx *Context) {
	r.groups = r.groups[:0]
	for _, k := range r.kinds {
		g := &environmentShaderGroup{kind: k, permutes: r.permuting[k]}
		g.UpdateLayout("")
		r.groups = append(r.groups, g)
	}
}

func (r *EnvironmentGroupRenderer) Unload() {
	r.groups = nil
}

func (r *EnvironmentGroupRenderer) Reset() {
	for _, g := range r.groups {
		g.reset()
	}
}

func (r *EnvironmentGroupRenderer) SetViews(views []*core.View) {
	for _, g := range r.groups {
		g.setViews(len(views))
	}
}

func (r *EnvironmentGroupRenderer) ProcessLights(p *ProcessLightsParameters) {
	var g *environmentShaderGroup
	for _, c := range r.groups {
		if c.kind == p.Kind {
			g = c
			break
		}
	}
	if g == nil {
		return
	}
	g.setViews(p.ViewIndex + 1)
	for i := p.LightStart; i < p.LightEnd; i++ {
		g.perView[p.ViewIndex] = g.perView[p.ViewIndex].Add(p.Lights.At(i).Radiance())
		g.active[p.ViewIndex] = true
	}
}

func (r *EnvironmentGroupRenderer) PrepareResources(ctx *Context) {}

func (r *EnvironmentGroupRenderer) UpdateShaderPermutationEntry(e *ShaderPermutationEntry) {
	for _, g := range r.groups {
		if g.anyActive() {
			e.AddEnvironmentLightGroup(g)
		}
	}
}
