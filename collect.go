package forwardlight

import (
	"github.com/gekko3d/forwardlight/rt/lights"
)

// Collect gathers this frame's visible lights, selects the renderers that
// handle them and lets the shadow map renderer assign shadow maps.
func (f *ForwardLighting) Collect() {
	defer f.profiler.Scope(PhaseCollect)()
	f.ctx.Frame = f.system.Frame

	f.CollectVisibleLights()
	f.CollectActiveLightRenderers()
	if f.shadowRenderer != nil {
		f.shadowRenderer.Collect(f.ctx, f.frameViews)
	}

	visible, shadowed, active := 0, 0, 0
	for _, d := range f.frameViews {
		visible += len(d.VisibleLights)
		shadowed += len(d.VisibleLightsWithShadows)
		active += len(d.ActiveRenderers)
	}
	f.profiler.SetCount(CountVisibleLights, visible)
	f.profiler.SetCount(CountShadowLights, shadowed)
	f.profiler.SetCount(CountActiveRenderers, active)
	f.logger.Debugf("Frame %d: %d views, %d visible lights, %d with shadows", f.system.Frame, len(f.frameViews), visible, shadowed)
}

// CollectVisibleLights culls the scene lights of every standard view and
// classifies the survivors by kind and render group.
func (f *ForwardLighting) CollectVisibleLights() {
	clear(f.frameViews)
	for _, view := range f.system.Views {
		if !view.IsStandard() {
			continue
		}
		data, ok := f.viewData[view]
		if !ok {
			data = lights.NewViewData()
			f.viewData[view] = data
		} else {
			data.ClearClassification()
		}
		data.ClearVisible()
		f.frameViews[view] = data

		all, ok := view.Lights()
		if !ok {
			f.logger.Debugf("View %q (%s) has no light source", view.Name, view.ID)
			continue
		}

		for _, l := range all {
			if l.Kind.IsDirect() && l.Kind.HasBoundingBox() && !view.Frustum.ContainsAABB(l.Bounds) {
				continue
			}
			data.VisibleLights = append(data.VisibleLights, l)
			if l.CastsShadows() && f.shadowRenderer != nil {
				data.VisibleLightsWithShadows = append(data.VisibleLightsWithShadows, l)
			}
		}
		data.Classify()
	}
}

// CollectActiveLightRenderers pairs renderers with the non-empty groups they
// handle, in registration order then declared kind order.
func (f *ForwardLighting) CollectActiveLightRenderers() {
	renderers := f.registry.All()
	for _, data := range f.frameViews {
		data.ClearActiveRenderers()
		for _, r := range renderers {
			for _, kind := range r.LightKinds() {
				g, ok := data.FindLightGroup(kind)
				if !ok || g.Count() == 0 {
					continue
				}
				data.ActiveRenderers = append(data.ActiveRenderers, lights.ActiveRenderer{Renderer: r, Group: g})
			}
		}
	}
}
