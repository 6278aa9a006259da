package forwardlight

import (
	"errors"
	"slices"

	"github.com/gekko3d/forwardlight/rt/core"
	"github.com/gekko3d/forwardlight/rt/lights"
)

// RenderFeature is a participant of RenderSystem.RenderFrame.
type RenderFeature interface {
	Collect()
	PrepareEffectPermutations() error
	Prepare()
	Draw(view *core.View, stage string)
	Flush()
}

// RenderSystem is the frame state shared by render features: the views to
// render, the frame counter and the sink for view level GPU data.
type RenderSystem struct {
	Views    []*core.View
	Frame    int64
	Uploader lights.ResourceUploader

	features []RenderFeature
}

func NewRenderSystem(views ...*core.View) *RenderSystem {
	s := &RenderSystem{}
	for _, v := range views {
		s.AddView(v)
	}
	return s
}

// AddView appends v and sets its index in the view list.
func (s *RenderSystem) AddView(v *core.View) {
	v.Index = len(s.Views)
	s.Views = append(s.Views, v)
}

func (s *RenderSystem) addFeature(f RenderFeature) {
	if !slices.Contains(s.features, f) {
		s.features = append(s.features, f)
	}
}

func (s *RenderSystem) removeFeature(f RenderFeature) {
	s.features = slices.DeleteFunc(s.features, func(x RenderFeature) bool { return x == f })
}

// Features returns the installed features in installation order.
func (s *RenderSystem) Features() []RenderFeature {
	return s.features
}

// RenderFrame runs one frame. Each phase completes for every feature before
// the next one starts. Every view is drawn once per stage. Permutation errors
// do not stop the frame; they are returned joined at the end.
func (s *RenderSystem) RenderFrame(stages ...string) error {
	for _, f := range s.features {
		f.Collect()
	}
	var errs []error
	for _, f := range s.features {
		if err := f.PrepareEffectPermutations(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, f := range s.features {
		f.Prepare()
	}
	for _, v := range s.Views {
		for _, stage := range stages {
			for _, f := range s.features {
				f.Draw(v, stage)
			}
		}
	}
	for _, f := range s.features {
		f.Flush()
	}
	s.Frame++
	return errors.Join(errs...)
}
