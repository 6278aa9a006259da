package lights

import (
	"github.com/gekko3d/forwardlight/rt/core"
	"github.com/gekko3d/forwardlight/rt/effect"
)

// ShaderGroup is one shader fragment produced by a renderer, e.g. "up to 4
// point lights with shadows". It owns the parameters it writes.
type ShaderGroup interface {
	ShaderSource() effect.ShaderSource
	// HasEffectPermutations reports whether ApplyEffectPermutations must run
	// for every effect using this group.
	HasEffectPermutations() bool
	// UpdateLayout binds the group to its composition slot name, such as
	// "directLightGroups[2]".
	UpdateLayout(compositionName string)
	ApplyViewParameters(ctx *Context, viewIndex int, params *effect.ParameterCollection)
	// ApplyDrawParameters may run concurrently for different draws.
	ApplyDrawParameters(ctx *Context, viewIndex int, params *effect.ParameterCollection, box core.AABB)
	UpdateViewResources(ctx *Context, viewIndex int)
	ApplyEffectPermutations(e *effect.RenderEffect)
}

// ShaderPermutationEntry is the frame's shader permutation: the direct and
// environment groups in renderer order, and the source lists built from them.
type ShaderPermutationEntry struct {
	DirectLightGroups []ShaderGroup
	EnvironmentLights []ShaderGroup

	DirectLightShaders      *effect.ShaderSourceCollection
	EnvironmentLightShaders *effect.ShaderSourceCollection

	// PermutationLightGroups are the groups with HasEffectPermutations set.
	PermutationLightGroups []ShaderGroup
}

func NewShaderPermutationEntry() *ShaderPermutationEntry {
	return &ShaderPermutationEntry{
		DirectLightShaders:      effect.NewShaderSourceCollection(),
		EnvironmentLightShaders: effect.NewShaderSourceCollection(),
	}
}

// Reset empties the entry, keeping capacity.
func (e *ShaderPermutationEntry) Reset() {
	clear(e.DirectLightGroups)
	e.DirectLightGroups = e.DirectLightGroups[:0]
	clear(e.EnvironmentLights)
	e.EnvironmentLights = e.EnvironmentLights[:0]
	clear(e.PermutationLightGroups)
	e.PermutationLightGroups = e.PermutationLightGroups[:0]
	e.DirectLightShaders.Clear()
	e.EnvironmentLightShaders.Clear()
}

// AddDirectLightGroup appends a direct group.
func (e *ShaderPermutationEntry) AddDirectLightGroup(g ShaderGroup) {
	e.DirectLightGroups = append(e.DirectLightGroups, g)
}

// AddEnvironmentLightGroup appends an environment group.
func (e *ShaderPermutationEntry) AddEnvironmentLightGroup(g ShaderGroup) {
	e.EnvironmentLights = append(e.EnvironmentLights, g)
}

// Groups returns direct groups followed by environment groups.
func (e *ShaderPermutationEntry) Groups() []ShaderGroup {
	out := make([]ShaderGroup, 0, len(e.DirectLightGroups)+len(e.EnvironmentLights))
	out = append(out, e.DirectLightGroups...)
	return append(out, e.EnvironmentLights...)
}

// ProcessLightsParameters is what a renderer receives for one contiguous run
// of lights of one kind in one view.
type ProcessLightsParameters struct {
	Context   *Context
	ViewIndex int
	View      *core.View
	Views     []*core.View

	Lights     *LightCollection
	Kind       core.LightKind
	LightStart int
	LightEnd   int

	ShadowMapRenderer ShadowMapRenderer
	// ShadowMapTextures maps lights to their assigned shadow map this frame.
	ShadowMapTextures map[*core.Light]*ShadowMapTexture
}

// GroupRenderer turns lights of the kinds it claims into shader groups.
type GroupRenderer interface {
	// Name identifies the renderer in the registry.
	Name() string
	LightKinds() []core.LightKind

	Initialize(ctx *Context)
	Unload()

	// Reset runs once per frame before any view is processed.
	Reset()
	SetViews(views []*core.View)
	ProcessLights(p *ProcessLightsParameters)
	PrepareResources(ctx *Context)
	UpdateShaderPermutationEntry(e *ShaderPermutationEntry)
}

