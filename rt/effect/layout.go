package effect

// EffectState tells whether an effect compiled normally or is a placeholder.
type EffectState int

const (
	EffectStateNormal EffectState = iota
	// EffectStateFallback is used while the real permutation is still compiling.
	EffectStateFallback
	EffectStateError
)

// LogicalGroupKey addresses a named logical group of a resource layout,
// either per view or per draw.
type LogicalGroupKey struct {
	Name  string
	Index int
	Draw  bool
}

// LayoutEntry is a parameter at an absolute offset in a constant buffer.
type LayoutEntry struct {
	Key    ParameterKey
	Offset int
}

// LogicalGroup is a contiguous named range of a resource group layout.
// Hash covers the entries and their relative offsets, so two layouts that
// place the same group at different offsets still hash equal.
type LogicalGroup struct {
	Name    string
	Hash    ObjectID
	Offset  int
	Size    int
	Entries []LayoutEntry
}

// ResourceGroupLayout is the reflected layout of one resource group (per
// view or per draw) of a compiled effect.
type ResourceGroupLayout struct {
	State              EffectState
	ConstantBufferSize int

	groups map[string]LogicalGroup
}

func NewResourceGroupLayout(state EffectState) *ResourceGroupLayout {
	return &ResourceGroupLayout{State: state, groups: make(map[string]LogicalGroup)}
}

// AddLogicalGroup appends a logical group made of keys at the end of the
// constant buffer and returns it.
func (l *ResourceGroupLayout) AddLogicalGroup(name string, keys ...ParameterKey) LogicalGroup {
	g := LogicalGroup{Name: name, Offset: l.ConstantBufferSize}
	off := g.Offset
	hb := newHashBuilder()
	for _, k := range keys {
		g.Entries = append(g.Entries, LayoutEntry{Key: k, Offset: off})
		hb.writeString(k.Name)
		hb.writeInt(int(k.Type))
		hb.writeInt(k.Count)
		hb.writeInt(off - g.Offset)
		off += k.Slots()
	}
	g.Size = off - g.Offset
	if len(keys) > 0 {
		g.Hash = hb.sum()
	}
	l.ConstantBufferSize = off
	l.groups[name] = g
	return g
}

// GetLogicalGroup returns the group for key, or a zero group with an empty
// hash when the effect does not use it.
func (l *ResourceGroupLayout) GetLogicalGroup(key LogicalGroupKey) LogicalGroup {
	if l == nil {
		return LogicalGroup{}
	}
	return l.groups[key.Name]
}

// ResourceGroup is the CPU mirror of a bound constant buffer.
type ResourceGroup struct {
	ConstantBuffer []float32
	// Version increases on every write so consumers can detect uploads.
	Version uint64
}

func NewResourceGroup(layout *ResourceGroupLayout) *ResourceGroup {
	return &ResourceGroup{ConstantBuffer: make([]float32, layout.ConstantBufferSize)}
}

// UpdateLogicalGroup copies params into the range of group. params must have
// been laid out from a group with the same hash.
func (r *ResourceGroup) UpdateLogicalGroup(group LogicalGroup, params *ParameterCollection) {
	if group.Size == 0 {
		return
	}
	if need := group.Offset + group.Size; len(r.ConstantBuffer) < need {
		grown := make([]float32, need)
		copy(grown, r.ConstantBuffer)
		r.ConstantBuffer = grown
	}
	copy(r.ConstantBuffer[group.Offset:group.Offset+group.Size], params.Data())
	r.Version++
}

// ViewResourceEntry holds the per-view resources of a view layout.
type ViewResourceEntry struct {
	Resources *ResourceGroup
}

// ViewResourceGroupLayout is a per-view layout shared by all effects of a
// view that reflect the same per-view structure. Entries is indexed by the
// view's index in the render system.
type ViewResourceGroupLayout struct {
	*ResourceGroupLayout
	Entries []ViewResourceEntry
}

func NewViewResourceGroupLayout(layout *ResourceGroupLayout) *ViewResourceGroupLayout {
	return &ViewResourceGroupLayout{ResourceGroupLayout: layout}
}

// Entry returns the entry for a view index, allocating it on first use.
func (v *ViewResourceGroupLayout) Entry(viewIndex int) *ViewResourceEntry {
	for len(v.Entries) <= viewIndex {
		v.Entries = append(v.Entries, ViewResourceEntry{})
	}
	e := &v.Entries[viewIndex]
	if e.Resources == nil {
		e.Resources = NewResourceGroup(v.ResourceGroupLayout)
	}
	return e
}
