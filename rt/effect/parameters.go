package effect

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ParamType is the shader type of a parameter.
type ParamType int

const (
	ParamFloat ParamType = iota
	ParamInt
	ParamVec3
	ParamVec4
	ParamMat4
)

// Slots is the number of float32 slots one element occupies. Vec3 is padded
// to 4 like std140 arrays.
func (t ParamType) Slots() int {
	switch t {
	case ParamVec3, ParamVec4:
		return 4
	case ParamMat4:
		return 16
	default:
		return 1
	}
}

func (t ParamType) String() string {
	switch t {
	case ParamFloat:
		return "float"
	case ParamInt:
		return "int"
	case ParamVec3:
		return "float3"
	case ParamVec4:
		return "float4"
	case ParamMat4:
		return "float4x4"
	}
	return fmt.Sprintf("ParamType(%d)", int(t))
}

// ParameterKey names a shader parameter. Count > 1 declares an array.
type ParameterKey struct {
	Name  string
	Type  ParamType
	Count int
}

func NewParameterKey(name string, t ParamType, count int) ParameterKey {
	if count < 1 {
		count = 1
	}
	return ParameterKey{Name: name, Type: t, Count: count}
}

func (k ParameterKey) Slots() int {
	n := k.Count
	if n < 1 {
		n = 1
	}
	return k.Type.Slots() * n
}

// ComposeWith returns the key as seen through a shader composition, e.g.
// "PointLights.Count" composed with "directLightGroups[0]".
func (k ParameterKey) ComposeWith(composition string) ParameterKey {
	if composition == "" {
		return k
	}
	k.Name = k.Name + "." + composition
	return k
}

type layoutSlot struct {
	Key    ParameterKey
	Offset int
}

// ParameterCollectionLayout maps parameter names to offsets inside a
// ParameterCollection's data block.
type ParameterCollectionLayout struct {
	slots []layoutSlot
	index map[string]int
	size  int
}

func NewParameterCollectionLayout() *ParameterCollectionLayout {
	return &ParameterCollectionLayout{index: make(map[string]int)}
}

// ProcessLogicalGroup appends the entries of group, keeping their offsets
// relative to the start of the group.
func (l *ParameterCollectionLayout) ProcessLogicalGroup(layout *ResourceGroupLayout, group LogicalGroup) {
	base := l.size
	for _, e := range group.Entries {
		if _, dup := l.index[e.Key.Name]; dup {
			continue
		}
		off := base + e.Offset - group.Offset
		l.index[e.Key.Name] = len(l.slots)
		l.slots = append(l.slots, layoutSlot{Key: e.Key, Offset: off})
		if end := off + e.Key.Slots(); end > l.size {
			l.size = end
		}
	}
	if end := base + group.Size; end > l.size {
		l.size = end
	}
}

func (l *ParameterCollectionLayout) Size() int {
	return l.size
}

// Matches reports whether the layout has exactly the structure of group.
func (l *ParameterCollectionLayout) Matches(group LogicalGroup) bool {
	if l.size != group.Size || len(l.slots) != len(group.Entries) {
		return false
	}
	for i, e := range group.Entries {
		s := l.slots[i]
		if s.Key != e.Key || s.Offset != e.Offset-group.Offset {
			return false
		}
	}
	return true
}

func (l *ParameterCollectionLayout) lookup(name string) (layoutSlot, bool) {
	i, ok := l.index[name]
	if !ok {
		return layoutSlot{}, false
	}
	return l.slots[i], true
}

// ParameterCollection is a CPU side block of parameter values laid out by a
// ParameterCollectionLayout. Setters on keys missing from the layout are
// no-ops and report false.
type ParameterCollection struct {
	layout *ParameterCollectionLayout
	data   []float32
}

func NewParameterCollection() *ParameterCollection {
	return &ParameterCollection{}
}

// UpdateLayout switches to a new layout, carrying over values of keys that
// exist in both.
func (p *ParameterCollection) UpdateLayout(layout *ParameterCollectionLayout) {
	if p.layout == layout {
		return
	}
	data := make([]float32, layout.Size())
	if p.layout != nil {
		for _, s := range layout.slots {
			old, ok := p.layout.lookup(s.Key.Name)
			if !ok || old.Key != s.Key {
				continue
			}
			copy(data[s.Offset:s.Offset+s.Key.Slots()], p.data[old.Offset:old.Offset+old.Key.Slots()])
		}
	}
	p.layout = layout
	p.data = data
}

func (p *ParameterCollection) Layout() *ParameterCollectionLayout {
	return p.layout
}

// Data is the raw value block in layout order.
func (p *ParameterCollection) Data() []float32 {
	return p.data
}

func (p *ParameterCollection) Has(name string) bool {
	if p.layout == nil {
		return false
	}
	_, ok := p.layout.lookup(name)
	return ok
}

// Get returns the slots of a parameter, or nil when absent.
func (p *ParameterCollection) Get(name string) []float32 {
	if p.layout == nil {
		return nil
	}
	s, ok := p.layout.lookup(name)
	if !ok {
		return nil
	}
	return p.data[s.Offset : s.Offset+s.Key.Slots()]
}

func (p *ParameterCollection) element(name string, index int) []float32 {
	if p.layout == nil {
		return nil
	}
	s, ok := p.layout.lookup(name)
	if !ok || index < 0 || index >= s.Key.Count {
		return nil
	}
	n := s.Key.Type.Slots()
	off := s.Offset + index*n
	return p.data[off : off+n]
}

func (p *ParameterCollection) SetFloat(name string, v float32) bool {
	return p.SetFloatAt(name, 0, v)
}

func (p *ParameterCollection) SetFloatAt(name string, index int, v float32) bool {
	dst := p.element(name, index)
	if dst == nil {
		return false
	}
	dst[0] = v
	return true
}

// SetInt stores an integer in a float slot; the shader side reads it back as int.
func (p *ParameterCollection) SetInt(name string, v int) bool {
	return p.SetFloatAt(name, 0, float32(v))
}

func (p *ParameterCollection) SetVec3At(name string, index int, v mgl32.Vec3) bool {
	dst := p.element(name, index)
	if dst == nil {
		return false
	}
	copy(dst, v[:])
	return true
}

func (p *ParameterCollection) SetVec4At(name string, index int, v mgl32.Vec4) bool {
	dst := p.element(name, index)
	if dst == nil {
		return false
	}
	copy(dst, v[:])
	return true
}

