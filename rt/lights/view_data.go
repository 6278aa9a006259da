package lights

import (
	"cogentcore.org/core/base/keylist"

	"github.com/gekko3d/forwardlight/rt/core"
	"github.com/gekko3d/forwardlight/rt/effect"
)

// ActiveRenderer pairs a renderer with the light group it handles in a view.
type ActiveRenderer struct {
	Renderer GroupRenderer
	Group    *LightGroup
}

// ViewData is the lighting state of one view. It lives across frames so its
// groups and slices are reused.
type ViewData struct {
	// groups keeps light groups in first-seen kind order, which is the
	// order renderers see them.
	groups keylist.List[core.LightKind, *LightGroup]

	ActiveRenderers []ActiveRenderer

	VisibleLights            []*core.Light
	VisibleLightsWithShadows []*core.Light

	// LightsWithShadows is filled by the shadow map renderer.
	LightsWithShadows map[*core.Light]*ShadowMapTexture

	// ViewIndex is the view's index among the standard views this frame.
	ViewIndex int

	ViewLayoutHash      effect.ObjectID
	ViewParameterLayout *effect.ParameterCollectionLayout
	ViewParameters      *effect.ParameterCollection
}

func NewViewData() *ViewData {
	return &ViewData{
		LightsWithShadows: make(map[*core.Light]*ShadowMapTexture),
		ViewParameters:    effect.NewParameterCollection(),
		ViewIndex:         -1,
	}
}

// LightGroup returns the group of a kind, creating it on first use.
func (d *ViewData) LightGroup(kind core.LightKind) *LightGroup {
	if g, ok := d.groups.AtTry(kind); ok {
		return g
	}
	g := NewLightGroup(kind)
	d.groups.Add(kind, g)
	return g
}

// FindLightGroup returns the group of a kind without creating it.
func (d *ViewData) FindLightGroup(kind core.LightKind) (*LightGroup, bool) {
	return d.groups.AtTry(kind)
}

// LightGroups returns every group ever created for this view, including
// groups that are empty this frame.
func (d *ViewData) LightGroups() []*LightGroup {
	return d.groups.Values
}

// ClearClassification empties every light group, keeping them and their
// storage for reuse.
func (d *ViewData) ClearClassification() {
	for _, g := range d.groups.Values {
		g.Clear()
	}
}

// ClearVisible empties the visible light lists and shadow assignments.
func (d *ViewData) ClearVisible() {
	clear(d.VisibleLights)
	d.VisibleLights = d.VisibleLights[:0]
	clear(d.VisibleLightsWithShadows)
	d.VisibleLightsWithShadows = d.VisibleLightsWithShadows[:0]
	clear(d.LightsWithShadows)
}

// ClearActiveRenderers drops last frame's renderer assignment.
func (d *ViewData) ClearActiveRenderers() {
	clear(d.ActiveRenderers)
	d.ActiveRenderers = d.ActiveRenderers[:0]
}

// Classify runs the two-pass group fill for the visible lights: prepare
// every light, allocate sub-collections, then add every light.
func (d *ViewData) Classify() {
	for _, l := range d.VisibleLights {
		d.LightGroup(l.Kind).PrepareLight(l)
	}
	for _, g := range d.groups.Values {
		g.AllocateCollectionsPerGroupOfCullingMask()
	}
	for _, l := range d.VisibleLights {
		d.LightGroup(l.Kind).AddLight(l)
	}
}
