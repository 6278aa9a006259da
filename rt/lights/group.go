package lights

import (
	"math/bits"

	"github.com/gekko3d/forwardlight/rt/core"
)

// LightCollection is an ordered list of lights. Clear keeps the storage so
// collections can be reused frame after frame.
type LightCollection struct {
	lights []*core.Light
}

func (c *LightCollection) Add(l *core.Light) {
	c.lights = append(c.lights, l)
}

func (c *LightCollection) Clear() {
	clear(c.lights)
	c.lights = c.lights[:0]
}

func (c *LightCollection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.lights)
}

func (c *LightCollection) At(i int) *core.Light {
	return c.lights[i]
}

func (c *LightCollection) Lights() []*core.Light {
	if c == nil {
		return nil
	}
	return c.lights
}

// LightGroup holds the visible lights of one kind for one view, further
// split into one sub-collection per render group present in the lights'
// culling masks.
//
// Filling a group is two-pass: PrepareLight for every light, then
// AllocateCollectionsPerGroupOfCullingMask, then AddLight for every light.
type LightGroup struct {
	Kind core.LightKind

	lights  []*core.Light
	allMask core.RenderGroupMask

	// collections is an arena reused across frames; byGroup stores index+1.
	collections []*LightCollection
	byGroup     [core.MaxRenderGroups]int
	used        int
	empty       LightCollection
}

func NewLightGroup(kind core.LightKind) *LightGroup {
	return &LightGroup{Kind: kind}
}

// PrepareLight records a light and its culling mask.
func (g *LightGroup) PrepareLight(l *core.Light) {
	g.lights = append(g.lights, l)
	g.allMask |= l.CullingMask
}

// AllocateCollectionsPerGroupOfCullingMask assigns a sub-collection to every
// render group seen by PrepareLight.
func (g *LightGroup) AllocateCollectionsPerGroupOfCullingMask() {
	g.byGroup = [core.MaxRenderGroups]int{}
	g.used = 0
	for _, rg := range g.allMask.Groups() {
		if g.used == len(g.collections) {
			g.collections = append(g.collections, &LightCollection{})
		}
		c := g.collections[g.used]
		c.Clear()
		g.used++
		g.byGroup[rg] = g.used
	}
}

// AddLight places a prepared light in the sub-collection of every render
// group of its culling mask.
func (g *LightGroup) AddLight(l *core.Light) {
	for v := uint32(l.CullingMask & g.allMask); v != 0; v &= v - 1 {
		rg := core.RenderGroup(bits.TrailingZeros32(v))
		if idx := g.byGroup[rg]; idx > 0 {
			g.collections[idx-1].Add(l)
		}
	}
}

// FindLightCollectionByGroup returns the lights that affect a render group.
// A group with no lights yields an empty collection, never nil.
func (g *LightGroup) FindLightCollectionByGroup(rg core.RenderGroup) *LightCollection {
	if int(rg) >= core.MaxRenderGroups {
		return &g.empty
	}
	if idx := g.byGroup[rg]; idx > 0 {
		return g.collections[idx-1]
	}
	return &g.empty
}

// Count is the number of lights prepared this frame.
func (g *LightGroup) Count() int {
	return len(g.lights)
}

func (g *LightGroup) Lights() []*core.Light {
	return g.lights
}

// Mask is the union of the culling masks of the prepared lights.
func (g *LightGroup) Mask() core.RenderGroupMask {
	return g.allMask
}

// Clear forgets this frame's lights without releasing any storage.
func (g *LightGroup) Clear() {
	clear(g.lights)
	g.lights = g.lights[:0]
	g.allMask = core.RenderGroupMaskNone
	for _, c := range g.collections[:g.used] {
		c.Clear()
	}
	g.byGroup = [core.MaxRenderGroups]int{}
	g.used = 0
}
