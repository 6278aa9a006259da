package lights

import (
	"bytes"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/forwardlight/rt/core"
)

func shadowLight() *core.Light {
	l := core.NewLight(core.LightKindPoint)
	l.Shadow = &core.ShadowSettings{Enabled: true}
	return l
}

func TestAtlasShadowMapRendererAllocation(t *testing.T) {
	r := NewAtlasShadowMapRenderer(1024, 512)
	require.Equal(t, 4, r.Capacity())

	lights := make([]*core.Light, 5)
	for i := range lights {
		lights[i] = shadowLight()
	}
	view := core.NewView("main", mgl32.Ident4(), mgl32.Ident4(), nil)
	data := NewViewData()
	data.VisibleLightsWithShadows = append(data.VisibleLightsWithShadows, lights...)

	r.Collect(&Context{}, map[*core.View]*ViewData{view: data})
	assert.Equal(t, 4, r.Allocated())
	assert.Len(t, data.LightsWithShadows, 4)

	// The light with the largest ID is the one left out.
	sorted := slices.Clone(lights)
	slices.SortFunc(sorted, func(a, b *core.Light) int { return bytes.Compare(a.ID[:], b.ID[:]) })
	assert.NotContains(t, data.LightsWithShadows, sorted[4])
	first := data.LightsWithShadows[sorted[0]]
	require.NotNil(t, first)
	assert.Equal(t, float32(0), first.Rect[0])
	assert.Equal(t, float32(0.5), first.Rect[2])
	assert.Equal(t, 512, first.Size)

	r.Flush(&Context{})
	assert.Equal(t, 0, r.Allocated())
}

func TestAtlasShadowMapRendererSharesAcrossViews(t *testing.T) {
	r := NewAtlasShadowMapRenderer(0, 0)
	assert.Equal(t, DefaultShadowAtlasSize, r.AtlasSize)
	assert.Equal(t, DefaultShadowTileSize, r.TileSize)

	l := shadowLight()
	v1 := core.NewView("left", mgl32.Ident4(), mgl32.Ident4(), nil)
	v2 := core.NewView("right", mgl32.Ident4(), mgl32.Ident4(), nil)
	d1, d2 := NewViewData(), NewViewData()
	d1.VisibleLightsWithShadows = append(d1.VisibleLightsWithShadows, l)
	d2.VisibleLightsWithShadows = append(d2.VisibleLightsWithShadows, l)

	r.Collect(&Context{}, map[*core.View]*ViewData{v1: d1, v2: d2})
	assert.Equal(t, 1, r.Allocated())
	assert.Same(t, d1.LightsWithShadows[l], d2.LightsWithShadows[l])
}
