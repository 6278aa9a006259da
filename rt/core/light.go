package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// ShadowSettings configures shadow casting for a direct light.
type ShadowSettings struct {
	Enabled bool
	// Size is a relative importance used when tiles are handed out in a shadow atlas.
	Size float32
	Bias float32
}

// Light is a scene light as seen by the lighting feature. Lights are owned by
// the scene; the feature only reads them.
type Light struct {
	ID        uuid.UUID
	Kind      LightKind
	Color     mgl32.Vec3
	Intensity float32
	Position  mgl32.Vec3
	Direction mgl32.Vec3
	Range     float32
	// ConeAngle is the full spot cone angle in degrees.
	ConeAngle   float32
	Shadow      *ShadowSettings
	CullingMask RenderGroupMask

	// Bounds is the world bounding box, refreshed by UpdateBounds.
	Bounds AABB
}

// NewLight creates a light with defaults similar to the engine's light component.
func NewLight(kind LightKind) *Light {
	l := &Light{
		ID:          uuid.New(),
		Kind:        kind,
		Color:       mgl32.Vec3{1, 1, 1},
		Intensity:   1.0,
		Direction:   mgl32.Vec3{0, -1, 0},
		Range:       10.0,
		ConeAngle:   45.0,
		CullingMask: RenderGroupMaskAll,
	}
	l.UpdateBounds()
	return l
}

// CastsShadows reports whether the light is a direct light with shadows turned on.
func (l *Light) CastsShadows() bool {
	return l.Kind.IsDirect() && l.Shadow != nil && l.Shadow.Enabled
}

// Radiance is color scaled by intensity, the value the shaders consume.
func (l *Light) Radiance() mgl32.Vec3 {
	return l.Color.Mul(l.Intensity)
}

// UpdateBounds recomputes the world box for bounded kinds. Point lights use
// their range sphere; spot lights use the sphere around the cone's far cap.
func (l *Light) UpdateBounds() {
	if !l.Kind.HasBoundingBox() {
		l.Bounds = AABB{}
		return
	}
	switch l.Kind {
	case LightKindSpot:
		dir := l.Direction
		if dir.Len() == 0 {
			dir = mgl32.Vec3{0, -1, 0}
		}
		dir = dir.Normalize()
		half := float64(mgl32.DegToRad(l.ConeAngle)) / 2
		capRadius := l.Range * float32(math.Tan(half))
		capCenter := l.Position.Add(dir.Mul(l.Range))
		l.Bounds = NewAABBFromSphere(capCenter, capRadius).Union(AABB{Min: l.Position, Max: l.Position})
	default:
		l.Bounds = NewAABBFromSphere(l.Position, l.Range)
	}
}

// Influences reports whether the light may reach anything inside box.
// Unbounded lights reach everything.
func (l *Light) Influences(box AABB) bool {
	if !l.Kind.HasBoundingBox() {
		return true
	}
	return box.IntersectsSphere(l.Position, l.Range)
}

// LightSource enumerates the lights of a scene.
type LightSource interface {
	Lights() []*Light
}

// LightList is the simplest LightSource.
type LightList []*Light

func (l LightList) Lights() []*Light { return l }
