package forwardlight

import (
	"github.com/gekko3d/forwardlight/rt/core"
	"github.com/gekko3d/forwardlight/rt/dispatch"
	"github.com/gekko3d/forwardlight/rt/effect"
	"github.com/gekko3d/forwardlight/rt/lights"
)

// Prepare fills the lighting parameters of every view, then of every render
// node of the view. It must run after PrepareEffectPermutations.
func (f *ForwardLighting) Prepare() {
	defer f.profiler.Scope(PhasePrepare)()
	f.profiler.SetCount(CountDrawNodes, 0)
	for _, view := range f.system.Views {
		data, ok := f.frameViews[view]
		if !ok {
			continue
		}
		vf := f.root.ViewFeature(view.Index)
		if len(vf.Layouts) == 0 {
			continue
		}
		f.prepareView(view, data, vf)
	}
}

func (f *ForwardLighting) prepareView(view *core.View, data *lights.ViewData, vf *effect.ViewFeature) {
	var first *effect.ViewResourceGroupLayout
	for _, l := range vf.Layouts {
		if l.State != effect.EffectStateNormal {
			continue
		}
		if !l.GetLogicalGroup(f.viewKey).Hash.IsEmpty() {
			first = l
			break
		}
	}
	if first == nil {
		f.logger.Debugf("View %q (%s) has no compiled effect using %s", view.Name, view.ID, f.cfg.LightingGroup)
		return
	}

	firstGroup := first.GetLogicalGroup(f.viewKey)
	if firstGroup.Hash != data.ViewLayoutHash {
		data.ViewLayoutHash = firstGroup.Hash
		data.ViewParameterLayout = effect.NewParameterCollectionLayout()
		data.ViewParameterLayout.ProcessLogicalGroup(first.ResourceGroupLayout, firstGroup)
		data.ViewParameters.UpdateLayout(data.ViewParameterLayout)
	}

	params := data.ViewParameters
	for _, g := range f.permutation.DirectLightGroups {
		g.ApplyViewParameters(f.ctx, data.ViewIndex, params)
	}
	for _, g := range f.permutation.EnvironmentLights {
		g.ApplyViewParameters(f.ctx, data.ViewIndex, params)
	}

	for _, l := range vf.Layouts {
		if l.State != effect.EffectStateNormal {
			continue
		}
		group := l.GetLogicalGroup(f.viewKey)
		if group.Hash.IsEmpty() {
			continue
		}
		f.invariant(group.Hash == firstGroup.Hash,
			"per-view lighting layout differs between effects of view %q: %s vs %s", view.Name, group.Hash, firstGroup.Hash)
		f.invariant(data.ViewParameterLayout.Matches(group),
			"per-view lighting layout %s of view %q has a different structure than its hash suggests", group.Hash, view.Name)
		l.Entry(view.Index).Resources.UpdateLogicalGroup(group, params)
	}

	f.prepareDraws(data, vf)
}

// prepareDraws writes per-draw parameters for every render node of a view.
// Each worker rebuilds its own parameter layout when the node's lighting
// hash differs from the last one it saw.
func (f *ForwardLighting) prepareDraws(data *lights.ViewData, vf *effect.ViewFeature) {
	for _, s := range f.drawLocals.All() {
		s.nodes = 0
	}
	direct, env := f.permutation.DirectLightGroups, f.permutation.EnvironmentLights
	viewIndex := data.ViewIndex

	dispatch.ForEachLocal(f.dispatcher, vf.RenderNodes, f.drawLocals, func(node *effect.RenderNode, s *drawScratch) {
		e := node.Effect
		if e == nil || e.State != effect.EffectStateNormal || e.Reflection == nil {
			return
		}
		drawLayout := e.Reflection.PerDrawLayout
		if drawLayout == nil {
			return
		}
		group := drawLayout.GetLogicalGroup(f.drawKey)
		if group.Hash.IsEmpty() {
			return
		}

		if group.Hash != s.hash {
			s.hash = group.Hash
			s.layout = effect.NewParameterCollectionLayout()
			s.layout.ProcessLogicalGroup(drawLayout, group)
			s.params.UpdateLayout(s.layout)
		}
		f.invariant(s.layout.Matches(group),
			"per-draw lighting layout %s of %q has a different structure than its hash suggests", group.Hash, node.Object.Name)

		box := node.Object.BoundingBox
		for _, g := range direct {
			g.ApplyDrawParameters(f.ctx, viewIndex, s.params, box)
		}
		for _, g := range env {
			g.ApplyDrawParameters(f.ctx, viewIndex, s.params, box)
		}

		if node.Resources == nil {
			node.Resources = effect.NewResourceGroup(drawLayout)
		}
		node.Resources.UpdateLogicalGroup(group, s.params)
		s.nodes++
	})

	for _, s := range f.drawLocals.All() {
		f.profiler.AddCount(CountDrawNodes, s.nodes)
	}
}

// Draw uploads the view level light data on the first draw of a view. Later
// draws of the same view until Flush do nothing.
func (f *ForwardLighting) Draw(view *core.View, stage string) {
	if f.currentView == view {
		return
	}
	data, ok := f.frameViews[view]
	if !ok || len(f.root.ViewFeature(view.Index).Layouts) == 0 {
		return
	}
	defer f.profiler.Scope(PhaseDraw)()
	f.logger.Debugf("Uploading lighting of view %q for stage %s", view.Name, stage)

	for _, g := range f.permutation.DirectLightGroups {
		g.UpdateViewResources(f.ctx, data.ViewIndex)
	}
	for _, g := range f.permutation.EnvironmentLights {
		g.UpdateViewResources(f.ctx, data.ViewIndex)
	}
	f.currentView = view
}

// Flush ends the feature's frame: shadow maps are released and the current
// view is forgotten. The frame counter is advanced by RenderSystem.RenderFrame.
func (f *ForwardLighting) Flush() {
	defer f.profiler.Scope(PhaseFlush)()
	if f.shadowRenderer != nil {
		f.shadowRenderer.Flush(f.ctx)
	}
	f.currentView = nil
}

// ShaderSources returns the cached direct and environment shader lists of
// the last PrepareEffectPermutations.
func (f *ForwardLighting) ShaderSources() (direct, environment *effect.ShaderSourceCollection) {
	return f.directShaders, f.environmentShaders
}
