// Package forwardlight is the CPU side of forward lighting: it collects the
// visible lights of every view, turns the active light groups into a shader
// permutation and fills the per-view and per-draw lighting parameters.
//
// A frame runs Collect, PrepareEffectPermutations, Prepare, then Draw for
// each view batch and finally Flush. RenderSystem.RenderFrame drives these
// phases for every installed feature.
package forwardlight

import (
	"errors"
	"fmt"

	"github.com/gekko3d/forwardlight/rt/core"
	"github.com/gekko3d/forwardlight/rt/dispatch"
	"github.com/gekko3d/forwardlight/rt/effect"
	"github.com/gekko3d/forwardlight/rt/lights"
)

// ErrLightGroupCapacity is returned when a frame has more direct or
// environment light groups than there are composition slots.
var ErrLightGroupCapacity = errors.New("too many active light groups")

// Effect validation keys holding the frame's shader source lists.
const (
	DirectLightGroupsKey = "Lighting.DirectLightGroups"
	EnvironmentLightsKey = "Lighting.EnvironmentLights"
)

// drawScratch is per-worker state for the per-draw pass.
type drawScratch struct {
	hash   effect.ObjectID
	layout *effect.ParameterCollectionLayout
	params *effect.ParameterCollection
	nodes  int
}

// ForwardLighting is the forward lighting render feature.
type ForwardLighting struct {
	cfg      Config
	logger   Logger
	profiler *FrameProfiler

	renderers      []lights.GroupRenderer
	registry       *lights.Registry
	shadowRenderer lights.ShadowMapRenderer
	dispatcher     *dispatch.Dispatcher

	system   *RenderSystem
	root     *effect.RootFeature
	ctx      *lights.Context
	viewKey  effect.LogicalGroupKey
	drawKey  effect.LogicalGroupKey
	ignored  []bool
	attached bool

	viewData    map[*core.View]*lights.ViewData
	frameViews  map[*core.View]*lights.ViewData
	renderViews []*core.View

	permutation        *lights.ShaderPermutationEntry
	shaderCache        *effect.ShaderSourceCache
	directShaders      *effect.ShaderSourceCollection
	environmentShaders *effect.ShaderSourceCollection
	directNames        []string
	environmentNames   []string

	drawLocals  *dispatch.WorkerLocals[*drawScratch]
	currentView *core.View
}

// New builds the feature. Without WithRenderers it registers a direct
// renderer for directional, point and spot lights and an environment
// renderer for ambient and skybox lights.
func New(opts ...Option) (*ForwardLighting, error) {
	f := &ForwardLighting{
		cfg:    DefaultConfig(),
		logger: NewNopLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if err := f.cfg.Validate(); err != nil {
		return nil, err
	}

	if f.renderers == nil {
		shadows := f.cfg.Shadows.Enabled || f.shadowRenderer != nil
		direct := lights.NewDirectGroupRenderer("direct", shadows,
			core.LightKindDirectional, core.LightKindPoint, core.LightKindSpot)
		direct.MaxLightsPerGroup = f.cfg.MaxLightsPerGroup
		f.renderers = []lights.GroupRenderer{direct, lights.NewEnvironmentGroupRenderer("environment")}
	}
	reg, err := lights.NewRegistry(f.renderers...)
	if err != nil {
		return nil, fmt.Errorf("forward lighting renderers: %w", err)
	}
	f.registry = reg

	if f.shadowRenderer == nil && f.cfg.Shadows.Enabled {
		f.shadowRenderer = lights.NewAtlasShadowMapRenderer(f.cfg.Shadows.AtlasSize, f.cfg.Shadows.TileSize)
	}

	f.profiler = NewFrameProfiler()
	f.dispatcher = dispatch.New(f.cfg.Workers, f.cfg.MinBatchSize)
	f.viewData = make(map[*core.View]*lights.ViewData)
	f.frameViews = make(map[*core.View]*lights.ViewData)
	f.permutation = lights.NewShaderPermutationEntry()
	f.shaderCache = effect.NewShaderSourceCache()
	f.directNames = compositionNames("directLightGroups", f.cfg.MaxLightGroups)
	f.environmentNames = compositionNames("environmentLights", f.cfg.MaxLightGroups)
	f.drawLocals = dispatch.NewWorkerLocals(func() *drawScratch {
		return &drawScratch{params: effect.NewParameterCollection()}
	})
	return f, nil
}

func compositionNames(prefix string, n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("%s[%d]", prefix, i)
	}
	return names
}

// Initialize binds the feature to a render system and a root feature, and
// initializes every registered renderer.
func (f *ForwardLighting) Initialize(system *RenderSystem, root *effect.RootFeature) {
	if f.attached {
		panic("forwardlight: Initialize called twice")
	}
	f.system = system
	f.root = root
	f.viewKey = root.CreateViewLogicalGroup(f.cfg.LightingGroup)
	f.drawKey = root.CreateDrawLogicalGroup(f.cfg.LightingGroup)

	f.ignored = make([]bool, root.EffectPermutationSlotCount())
	for _, stage := range f.cfg.StagesToIgnore {
		if slot, ok := root.GetEffectPermutationSlot(stage); ok {
			f.ignored[slot] = true
		} else {
			f.logger.Debugf("Ignored stage %q has no effect slot", stage)
		}
	}

	f.ctx = &lights.Context{Frame: system.Frame, Uploader: system.Uploader}
	f.registry.Attach(f.ctx)
	f.attached = true
	system.addFeature(f)
	for _, r := range f.registry.All() {
		f.logger.Infof("Light group renderer %q initialized for kinds %v", r.Name(), r.LightKinds())
	}
}

// Unload releases every renderer. The feature can be initialized again.
func (f *ForwardLighting) Unload() {
	if !f.attached {
		return
	}
	f.registry.Detach()
	f.system.removeFeature(f)
	f.attached = false
	f.currentView = nil
	f.logger.Infof("Forward lighting unloaded")
}

// AddRenderer registers a renderer at the end of the list.
func (f *ForwardLighting) AddRenderer(r lights.GroupRenderer) error {
	return f.InsertRenderer(f.registry.Len(), r)
}

func (f *ForwardLighting) InsertRenderer(index int, r lights.GroupRenderer) error {
	if err := f.registry.Insert(index, r); err != nil {
		return err
	}
	f.logger.Infof("Light group renderer %q registered at %d", r.Name(), index)
	return nil
}

func (f *ForwardLighting) RemoveRenderer(name string) error {
	if _, err := f.registry.Remove(name); err != nil {
		return err
	}
	f.logger.Infof("Light group renderer %q removed", name)
	return nil
}

func (f *ForwardLighting) MoveRenderer(name string, index int) error {
	return f.registry.Move(name, index)
}

// Renderers returns the registered renderers in order.
func (f *ForwardLighting) Renderers() []lights.GroupRenderer {
	return f.registry.All()
}

// ViewData returns the light data of a view, if the view was ever collected.
func (f *ForwardLighting) ViewData(view *core.View) (*lights.ViewData, bool) {
	d, ok := f.viewData[view]
	return d, ok
}

// ShaderPermutation returns this frame's permutation entry.
func (f *ForwardLighting) ShaderPermutation() *lights.ShaderPermutationEntry {
	return f.permutation
}

func (f *ForwardLighting) Profiler() *FrameProfiler {
	return f.profiler
}

func (f *ForwardLighting) Config() Config {
	return f.cfg
}

// invariant reports a broken layout assumption. Debug builds fail fast,
// release builds keep going with last writer wins.
func (f *ForwardLighting) invariant(ok bool, format string, args ...any) {
	if ok || !f.cfg.Debug {
		return
	}
	msg := fmt.Sprintf(format, args...)
	f.logger.Errorf("%s", msg)
	panic(msg)
}
