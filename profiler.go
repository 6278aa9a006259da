package forwardlight

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Profiler phase names.
const (
	PhaseCollect      = "collect"
	PhasePermutations = "permutations"
	PhasePrepare      = "prepare"
	PhaseDraw         = "draw"
	PhaseFlush        = "flush"
)

// Profiler counter names.
const (
	CountVisibleLights     = "visible_lights"
	CountShadowLights      = "shadow_lights"
	CountActiveRenderers   = "active_renderers"
	CountDirectGroups      = "direct_groups"
	CountEnvironmentGroups = "environment_groups"
	CountDrawNodes         = "draw_nodes"
)

// FrameProfiler keeps the CPU time of the last run of every phase and a set
// of counters. Phases are reported in the order they were first seen. It is
// only touched from the orchestrating goroutine.
type FrameProfiler struct {
	durations map[string]time.Duration
	started   map[string]time.Time
	counts    map[string]int
	order     []string
}

func NewFrameProfiler() *FrameProfiler {
	return &FrameProfiler{
		durations: make(map[string]time.Duration),
		started:   make(map[string]time.Time),
		counts:    make(map[string]int),
	}
}

func (p *FrameProfiler) Begin(name string) {
	p.started[name] = time.Now()
	if !slices.Contains(p.order, name) {
		p.order = append(p.order, name)
	}
}

func (p *FrameProfiler) End(name string) {
	if start, ok := p.started[name]; ok {
		p.durations[name] = time.Since(start)
		delete(p.started, name)
	}
}

// Scope begins name and returns the matching End, for use with defer.
func (p *FrameProfiler) Scope(name string) func() {
	p.Begin(name)
	return func() { p.End(name) }
}

func (p *FrameProfiler) SetCount(name string, n int) {
	p.counts[name] = n
}

func (p *FrameProfiler) AddCount(name string, n int) {
	p.counts[name] += n
}

func (p *FrameProfiler) Count(name string) int {
	return p.counts[name]
}

func (p *FrameProfiler) Duration(name string) time.Duration {
	return p.durations[name]
}

// Phases returns the phase names in first-seen order.
func (p *FrameProfiler) Phases() []string {
	return p.order
}

// Reset zeroes timings and counters, keeping the phase order.
func (p *FrameProfiler) Reset() {
	clear(p.durations)
	clear(p.started)
	clear(p.counts)
}

func (p *FrameProfiler) Stats() string {
	var sb strings.Builder
	sb.WriteString("Lighting (CPU):\n")
	for _, name := range p.order {
		ms := float64(p.durations[name].Microseconds()) / 1000.0
		fmt.Fprintf(&sb, "  %-18s: %.2f ms\n", name, ms)
	}

	sb.WriteString("\nCounts:\n")
	keys := make([]string, 0, len(p.counts))
	for k := range p.counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %-18s: %d\n", k, p.counts[k])
	}
	return sb.String()
}
