package core

import (
	"math/bits"
	"reflect"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// RenderGroup is one of 32 render groups an object or light can belong to.
type RenderGroup uint8

const (
	RenderGroup0 RenderGroup = iota
	RenderGroup1
	RenderGroup2
	RenderGroup3
)

// MaxRenderGroups is the number of groups addressable by a RenderGroupMask.
const MaxRenderGroups = 32

// RenderGroupMask is a bit set of render groups.
type RenderGroupMask uint32

const (
	RenderGroupMaskNone RenderGroupMask = 0
	RenderGroupMaskAll  RenderGroupMask = ^RenderGroupMask(0)
)

func (g RenderGroup) Mask() RenderGroupMask {
	return RenderGroupMask(1) << g
}

func (m RenderGroupMask) Contains(g RenderGroup) bool {
	return m&g.Mask() != 0
}

// Groups returns the groups set in m in ascending order.
func (m RenderGroupMask) Groups() []RenderGroup {
	out := make([]RenderGroup, 0, bits.OnesCount32(uint32(m)))
	for v := uint32(m); v != 0; v &= v - 1 {
		out = append(out, RenderGroup(bits.TrailingZeros32(v)))
	}
	return out
}

// ViewKind separates camera views from auxiliary views (shadow casters,
// reflection captures) which do not receive light classification.
type ViewKind int

const (
	ViewKindStandard ViewKind = iota
	ViewKindShadow
	ViewKindAuxiliary
)

// View is a camera frustum plus its slot in the render system's view list.
type View struct {
	ID    uuid.UUID
	Name  string
	Kind  ViewKind
	Index int

	View           mgl32.Mat4
	Projection     mgl32.Mat4
	ViewProjection mgl32.Mat4
	Frustum        Frustum
	CullingMask    RenderGroupMask

	// Scene supplies the lights visible to this view. Nil, or a nil
	// pointer behind the interface, means no lights.
	Scene LightSource
}

// NewView creates a standard view from view and projection matrices.
func NewView(name string, view, projection mgl32.Mat4, scene LightSource) *View {
	v := &View{
		ID:          uuid.New(),
		Name:        name,
		Kind:        ViewKindStandard,
		CullingMask: RenderGroupMaskAll,
		Scene:       scene,
	}
	v.SetMatrices(view, projection)
	return v
}

// SetMatrices updates the matrices and the culling frustum.
func (v *View) SetMatrices(view, projection mgl32.Mat4) {
	v.View = view
	v.Projection = projection
	v.ViewProjection = projection.Mul4(view)
	v.Frustum = ExtractFrustum(v.ViewProjection)
}

func (v *View) IsStandard() bool {
	return v.Kind == ViewKindStandard
}

// Lights returns the lights of the view's scene. ok is false when the view
// has no light source.
func (v *View) Lights() ([]*Light, bool) {
	if v.Scene == nil {
		return nil, false
	}
	if rv := reflect.ValueOf(v.Scene); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, false
	}
	return v.Scene.Lights(), true
}
