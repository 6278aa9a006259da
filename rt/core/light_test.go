package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLightKindInfo(t *testing.T) {
	assert.True(t, LightKindPoint.IsDirect())
	assert.True(t, LightKindPoint.HasBoundingBox())
	assert.True(t, LightKindDirectional.IsDirect())
	assert.False(t, LightKindDirectional.HasBoundingBox())
	assert.True(t, LightKindAmbient.IsEnvironment())
	assert.False(t, LightKindAmbient.IsDirect())
	assert.False(t, LightKindInvalid.IsDirect())
	assert.Equal(t, "spot", LightKindSpot.String())
	assert.Equal(t, "kind(9999)", LightKind(9999).String())
}

func TestRegisterLightKind(t *testing.T) {
	area := RegisterLightKind("test-area", LightClassDirect, true)
	require.NotEqual(t, LightKindInvalid, area)
	assert.Equal(t, area, RegisterLightKind("test-area", LightClassDirect, true), "same name keeps its tag")
	assert.True(t, area.IsDirect())
	assert.True(t, area.HasBoundingBox())
	assert.Equal(t, "test-area", area.String())
}

func TestLightBounds(t *testing.T) {
	l := NewLight(LightKindPoint)
	l.Position = mgl32.Vec3{5, 0, 0}
	l.Range = 2
	l.UpdateBounds()
	assert.Equal(t, mgl32.Vec3{3, -2, -2}, l.Bounds.Min)
	assert.Equal(t, mgl32.Vec3{7, 2, 2}, l.Bounds.Max)

	spot := NewLight(LightKindSpot)
	spot.Direction = mgl32.Vec3{0, 0, -1}
	spot.Range = 10
	spot.ConeAngle = 90
	spot.UpdateBounds()
	assert.InDelta(t, -20, spot.Bounds.Min.Z(), 1e-4)
	assert.InDelta(t, 0, spot.Bounds.Max.Z(), 1e-4)
	assert.InDelta(t, 10, spot.Bounds.Max.X(), 1e-3)

	dir := NewLight(LightKindDirectional)
	assert.Equal(t, AABB{}, dir.Bounds)
	assert.True(t, dir.Influences(AABB{mgl32.Vec3{100, 100, 100}, mgl32.Vec3{101, 101, 101}}))
}

func TestLightCastsShadows(t *testing.T) {
	l := NewLight(LightKindPoint)
	assert.False(t, l.CastsShadows())
	l.Shadow = &ShadowSettings{Enabled: true}
	assert.True(t, l.CastsShadows())

	amb := NewLight(LightKindAmbient)
	amb.Shadow = &ShadowSettings{Enabled: true}
	assert.False(t, amb.CastsShadows(), "environment lights never cast shadows")
}

func TestRenderGroupMask(t *testing.T) {
	m := RenderGroup0.Mask() | RenderGroup3.Mask()
	assert.True(t, m.Contains(RenderGroup0))
	assert.False(t, m.Contains(RenderGroup1))
	assert.Equal(t, []RenderGroup{RenderGroup0, RenderGroup3}, m.Groups())
	assert.Len(t, RenderGroupMaskAll.Groups(), MaxRenderGroups)
}
