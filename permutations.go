package forwardlight

import (
	"fmt"

	"github.com/gekko3d/forwardlight/rt/core"
	"github.com/gekko3d/forwardlight/rt/dispatch"
	"github.com/gekko3d/forwardlight/rt/effect"
	"github.com/gekko3d/forwardlight/rt/lights"
)

// PrepareEffectPermutations builds this frame's shader permutation and
// pushes it to the effects of every light dependent render object.
//
// Groups are contributed in renderer registration order, so the result only
// depends on which kinds are active and never on light discovery order.
// It fails with ErrLightGroupCapacity when there are more direct or
// environment groups than composition slots; the permutation is then left
// empty for the frame.
func (f *ForwardLighting) PrepareEffectPermutations() error {
	defer f.profiler.Scope(PhasePermutations)()

	clear(f.renderViews)
	f.renderViews = f.renderViews[:0]
	for _, view := range f.system.Views {
		if !view.IsStandard() {
			continue
		}
		data, ok := f.frameViews[view]
		if !ok {
			continue
		}
		data.ViewIndex = len(f.renderViews)
		f.renderViews = append(f.renderViews, view)
	}

	renderers := f.registry.All()
	for _, r := range renderers {
		r.Reset()
		r.SetViews(f.renderViews)
	}
	f.permutation.Reset()

	for _, view := range f.renderViews {
		f.prepareLightGroups(view, f.frameViews[view], core.RenderGroup0)
	}

	for _, r := range renderers {
		r.PrepareResources(f.ctx)
		r.UpdateShaderPermutationEntry(f.permutation)
	}

	p := f.permutation
	if len(p.DirectLightGroups) > len(f.directNames) || len(p.EnvironmentLights) > len(f.environmentNames) {
		err := fmt.Errorf("%w: %d direct and %d environment groups, %d slots each",
			ErrLightGroupCapacity, len(p.DirectLightGroups), len(p.EnvironmentLights), f.cfg.MaxLightGroups)
		f.logger.Warnf("%v", err)
		p.Reset()
		f.directShaders = f.shaderCache.Get(p.DirectLightShaders)
		f.environmentShaders = f.shaderCache.Get(p.EnvironmentLightShaders)
		f.countGroups()
		return err
	}

	for i, g := range p.DirectLightGroups {
		g.UpdateLayout(f.directNames[i])
		p.DirectLightShaders.Add(g.ShaderSource())
		if g.HasEffectPermutations() {
			p.PermutationLightGroups = append(p.PermutationLightGroups, g)
		}
	}
	for i, g := range p.EnvironmentLights {
		g.UpdateLayout(f.environmentNames[i])
		p.EnvironmentLightShaders.Add(g.ShaderSource())
		if g.HasEffectPermutations() {
			p.PermutationLightGroups = append(p.PermutationLightGroups, g)
		}
	}
	f.countGroups()

	// The entry's collections are rebuilt next frame; effects keep the
	// cached immutable copies.
	f.directShaders = f.shaderCache.Get(p.DirectLightShaders)
	f.environmentShaders = f.shaderCache.Get(p.EnvironmentLightShaders)
	f.validateEffects()
	return nil
}

func (f *ForwardLighting) countGroups() {
	f.profiler.SetCount(CountDirectGroups, len(f.permutation.DirectLightGroups))
	f.profiler.SetCount(CountEnvironmentGroups, len(f.permutation.EnvironmentLights))
}

// prepareLightGroups hands every active renderer of a view the lights of one
// render group.
func (f *ForwardLighting) prepareLightGroups(view *core.View, data *lights.ViewData, group core.RenderGroup) {
	for _, active := range data.ActiveRenderers {
		c := active.Group.FindLightCollectionByGroup(group)
		active.Renderer.ProcessLights(&lights.ProcessLightsParameters{
			Context:           f.ctx,
			ViewIndex:         data.ViewIndex,
			View:              view,
			Views:             f.renderViews,
			Lights:            c,
			Kind:              active.Group.Kind,
			LightStart:        0,
			LightEnd:          c.Len(),
			ShadowMapRenderer: f.shadowRenderer,
			ShadowMapTextures: data.LightsWithShadows,
		})
	}
}

// validateEffects runs in parallel over render objects. Every object only
// touches its own effects; the shader lists and groups are read only here.
func (f *ForwardLighting) validateEffects() {
	slots := f.root.EffectPermutationSlotCount()
	frame := f.system.Frame
	direct, env := f.directShaders, f.environmentShaders
	permuting := f.permutation.PermutationLightGroups

	dispatch.ForEach(f.dispatcher, f.root.RenderObjects(), func(o *effect.RenderObject) {
		if o.Material == nil || !o.Material.LightDependent {
			return
		}
		for slot := 0; slot < slots; slot++ {
			if f.ignored[slot] {
				continue
			}
			e := f.root.RenderEffectAt(o.StaticObjectNode, slot)
			if e == nil || !e.IsUsedDuringThisFrame(frame) {
				continue
			}
			e.Validator.ValidateParameter(DirectLightGroupsKey, direct)
			e.Validator.ValidateParameter(EnvironmentLightsKey, env)
			for _, g := range permuting {
				g.ApplyEffectPermutations(e)
			}
		}
	})
}
