package effect

// RootFeature owns render objects, their compiled effects per effect slot and
// the per-view feature data. Sub features such as forward lighting read from
// it.
type RootFeature struct {
	stages       []string
	objects      []*RenderObject
	effects      []*RenderEffect
	viewGroups   []string
	drawGroups   []string
	viewFeatures []*ViewFeature
}

// NewRootFeature creates a root feature with one effect slot per stage name.
func NewRootFeature(stages ...string) *RootFeature {
	if len(stages) == 0 {
		stages = []string{"Main"}
	}
	return &RootFeature{stages: append([]string(nil), stages...)}
}

func (r *RootFeature) EffectPermutationSlotCount() int {
	return len(r.stages)
}

// GetEffectPermutationSlot maps a render stage to its effect slot.
func (r *RootFeature) GetEffectPermutationSlot(stage string) (int, bool) {
	for i, s := range r.stages {
		if s == stage {
			return i, true
		}
	}
	return -1, false
}

// AddRenderObject registers o and assigns its static node index.
func (r *RootFeature) AddRenderObject(o *RenderObject) {
	o.StaticObjectNode = len(r.objects)
	r.objects = append(r.objects, o)
	for range r.stages {
		r.effects = append(r.effects, nil)
	}
}

func (r *RootFeature) RenderObjects() []*RenderObject {
	return r.objects
}

func (r *RootFeature) SetRenderEffect(o *RenderObject, slot int, e *RenderEffect) {
	r.effects[o.StaticObjectNode*len(r.stages)+slot] = e
}

// RenderEffectAt returns the effect of a static object node for a slot, or nil.
func (r *RootFeature) RenderEffectAt(staticObjectNode, slot int) *RenderEffect {
	i := staticObjectNode*len(r.stages) + slot
	if i < 0 || i >= len(r.effects) {
		return nil
	}
	return r.effects[i]
}

func (r *RootFeature) CreateViewLogicalGroup(name string) LogicalGroupKey {
	r.viewGroups = append(r.viewGroups, name)
	return LogicalGroupKey{Name: name, Index: len(r.viewGroups) - 1}
}

func (r *RootFeature) CreateDrawLogicalGroup(name string) LogicalGroupKey {
	r.drawGroups = append(r.drawGroups, name)
	return LogicalGroupKey{Name: name, Index: len(r.drawGroups) - 1, Draw: true}
}

// ViewFeature returns the feature data of a view index, allocating it on first use.
func (r *RootFeature) ViewFeature(viewIndex int) *ViewFeature {
	for len(r.viewFeatures) <= viewIndex {
		r.viewFeatures = append(r.viewFeatures, &ViewFeature{})
	}
	return r.viewFeatures[viewIndex]
}
