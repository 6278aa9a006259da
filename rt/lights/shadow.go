package lights

import (
	"bytes"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/forwardlight/rt/core"
)

// ShadowMapTexture is the shadow map region assigned to a light this frame.
type ShadowMapTexture struct {
	Light *core.Light
	Atlas int
	// Rect is the tile in normalized atlas coordinates: x, y, width, height.
	Rect mgl32.Vec4
	// Size is the tile edge in texels.
	Size int
}

// ShadowMapRenderer assigns shadow maps to the shadow casting lights of the
// collected views.
type ShadowMapRenderer interface {
	// Collect runs after visible lights are classified and fills
	// ViewData.LightsWithShadows for every view.
	Collect(ctx *Context, views map[*core.View]*ViewData)
	// Flush runs at the end of the frame.
	Flush(ctx *Context)
}

const (
	DefaultShadowAtlasSize = 2048
	DefaultShadowTileSize  = 512
)

// AtlasShadowMapRenderer packs one square tile per shadow casting light into
// a single atlas. Tiles are handed out in light ID order so a given set of
// lights always gets the same layout. Lights that do not fit get no texture
// and are shaded without shadows.
type AtlasShadowMapRenderer struct {
	AtlasSize int
	TileSize  int

	pool     []*ShadowMapTexture
	used     int
	assigned map[*core.Light]*ShadowMapTexture
	scratch  []*core.Light
}

func NewAtlasShadowMapRenderer(atlasSize, tileSize int) *AtlasShadowMapRenderer {
	if atlasSize <= 0 {
		atlasSize = DefaultShadowAtlasSize
	}
	if tileSize <= 0 || tileSize > atlasSize {
		tileSize = min(DefaultShadowTileSize, atlasSize)
	}
	return &AtlasShadowMapRenderer{
		AtlasSize: atlasSize,
		TileSize:  tileSize,
		assigned:  make(map[*core.Light]*ShadowMapTexture),
	}
}

// Capacity is the number of tiles in the atlas.
func (r *AtlasShadowMapRenderer) Capacity() int {
	n := r.AtlasSize / r.TileSize
	return n * n
}

// Allocated is the number of tiles handed out since the last Flush.
func (r *AtlasShadowMapRenderer) Allocated() int {
	return r.used
}

func (r *AtlasShadowMapRenderer) Collect(ctx *Context, views map[*core.View]*ViewData) {
	// Gather every shadow caster once, across views.
	r.scratch = r.scratch[:0]
	for _, data := range views {
		for _, l := range data.VisibleLightsWithShadows {
			if _, ok := r.assigned[l]; ok {
				continue
			}
			r.assigned[l] = nil
			r.scratch = append(r.scratch, l)
		}
	}
	slices.SortFunc(r.scratch, func(a, b *core.Light) int {
		return bytes.Compare(a.ID[:], b.ID[:])
	})
	for _, l := range r.scratch {
		r.assigned[l] = r.allocate(l)
	}

	for _, data := range views {
		for _, l := range data.VisibleLightsWithShadows {
			if tex := r.assigned[l]; tex != nil {
				data.LightsWithShadows[l] = tex
			}
		}
	}
}

func (r *AtlasShadowMapRenderer) allocate(l *core.Light) *ShadowMapTexture {
	if r.used >= r.Capacity() {
		return nil
	}
	perRow := r.AtlasSize / r.TileSize
	x, y := r.used%perRow, r.used/perRow
	if r.used == len(r.pool) {
		r.pool = append(r.pool, &ShadowMapTexture{})
	}
	tex := r.pool[r.used]
	r.used++

	s := float32(r.TileSize) / float32(r.AtlasSize)
	*tex = ShadowMapTexture{
		Light: l,
		Rect:  mgl32.Vec4{float32(x) * s, float32(y) * s, s, s},
		Size:  r.TileSize,
	}
	return tex
}

// Flush releases every tile for the next frame.
func (r *AtlasShadowMapRenderer) Flush(ctx *Context) {
	for _, tex := range r.pool[:r.used] {
		tex.Light = nil
	}
	r.used = 0
	clear(r.assigned)
}
