package effect

import (
	"github.com/gekko3d/forwardlight/rt/core"
)

// EffectReflection is the part of a compiled effect's reflection the lighting
// feature reads.
type EffectReflection struct {
	PerDrawLayout *ResourceGroupLayout
}

// EffectValidator collects the permutation parameters an effect needs. When
// a value differs from the previous frame the effect must be recompiled.
// Values must be comparable; shader source lists are shared through
// ShaderSourceCache so identity comparison is enough.
type EffectValidator struct {
	values  map[string]any
	changed bool
}

// BeginEffectValidation starts a new frame of validation.
func (v *EffectValidator) BeginEffectValidation() {
	v.changed = false
}

func (v *EffectValidator) ValidateParameter(key string, value any) {
	if v.values == nil {
		v.values = make(map[string]any)
	}
	if old, ok := v.values[key]; ok && old == value {
		return
	}
	v.values[key] = value
	v.changed = true
}

func (v *EffectValidator) Value(key string) (any, bool) {
	val, ok := v.values[key]
	return val, ok
}

// Changed reports whether any parameter changed since BeginEffectValidation.
func (v *EffectValidator) Changed() bool {
	return v.changed
}

// RenderEffect is one compiled effect permutation of a render object for one
// effect slot.
type RenderEffect struct {
	Name          string
	State         EffectState
	Reflection    *EffectReflection
	LastFrameUsed int64
	Validator     EffectValidator
}

func (e *RenderEffect) MarkUsed(frame int64) {
	e.LastFrameUsed = frame
}

func (e *RenderEffect) IsUsedDuringThisFrame(frame int64) bool {
	return e.LastFrameUsed == frame
}

// Material carries the flags the lighting feature cares about.
type Material struct {
	Name           string
	LightDependent bool
}

// RenderObject is a drawable known to the root render feature.
type RenderObject struct {
	Name             string
	BoundingBox      core.AABB
	Material         *Material
	StaticObjectNode int
}

// RenderNode is a render object drawn in a specific view with a specific effect.
type RenderNode struct {
	Object    *RenderObject
	Effect    *RenderEffect
	Resources *ResourceGroup
}

// ViewFeature is the root feature's data for one view.
type ViewFeature struct {
	Layouts     []*ViewResourceGroupLayout
	RenderNodes []*RenderNode
}
