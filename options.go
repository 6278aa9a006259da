package forwardlight

import (
	"github.com/gekko3d/forwardlight/rt/lights"
)

type Option func(*ForwardLighting)

func WithLogger(l Logger) Option {
	return func(f *ForwardLighting) {
		if l != nil {
			f.logger = l
		}
	}
}

func WithConfig(cfg Config) Option {
	return func(f *ForwardLighting) {
		f.cfg = cfg
	}
}

// WithShadowMapRenderer installs a shadow map renderer. Without one no light
// is treated as shadow casting.
func WithShadowMapRenderer(r lights.ShadowMapRenderer) Option {
	return func(f *ForwardLighting) {
		f.shadowRenderer = r
	}
}

// WithRenderers replaces the default light group renderers. Order matters:
// it is the order of the generated shader groups.
func WithRenderers(renderers ...lights.GroupRenderer) Option {
	return func(f *ForwardLighting) {
		f.renderers = append([]lights.GroupRenderer{}, renderers...)
	}
}
