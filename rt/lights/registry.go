package lights

import (
	"errors"
	"fmt"

	"cogentcore.org/core/base/keylist"
)

var (
	ErrRendererRegistered = errors.New("light group renderer already registered")
	ErrRendererNotFound   = errors.New("light group renderer not found")
)

// Registry is the ordered set of light group renderers. Registration order is
// the order renderers contribute shader groups, so it decides the shader
// permutation layout.
//
// Once attached to a context, mutations initialize added renderers and
// unload removed ones before returning.
type Registry struct {
	list keylist.List[string, GroupRenderer]
	ctx  *Context
}

func NewRegistry(renderers ...GroupRenderer) (*Registry, error) {
	r := &Registry{}
	for _, gr := range renderers {
		if err := r.Add(gr); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add appends a renderer.
func (r *Registry) Add(gr GroupRenderer) error {
	return r.Insert(r.list.Len(), gr)
}

// Insert places a renderer at index, clamped to the list bounds.
func (r *Registry) Insert(index int, gr GroupRenderer) error {
	name := gr.Name()
	if r.list.IndexByKey(name) >= 0 {
		return fmt.Errorf("add %q: %w", name, ErrRendererRegistered)
	}
	index = max(0, min(index, r.list.Len()))
	r.list.Insert(index, name, gr)
	if r.ctx != nil {
		gr.Initialize(r.ctx)
	}
	return nil
}

// Remove unregisters a renderer by name and returns it.
func (r *Registry) Remove(name string) (GroupRenderer, error) {
	gr, ok := r.list.AtTry(name)
	if !ok {
		return nil, fmt.Errorf("remove %q: %w", name, ErrRendererNotFound)
	}
	r.list.DeleteByKey(name)
	if r.ctx != nil {
		gr.Unload()
	}
	return gr, nil
}

// Move changes the position of a registered renderer. Its lifecycle state
// is untouched.
func (r *Registry) Move(name string, index int) error {
	gr, ok := r.list.AtTry(name)
	if !ok {
		return fmt.Errorf("move %q: %w", name, ErrRendererNotFound)
	}
	r.list.DeleteByKey(name)
	index = max(0, min(index, r.list.Len()))
	r.list.Insert(index, name, gr)
	return nil
}

// Get looks a renderer up by name.
func (r *Registry) Get(name string) (GroupRenderer, bool) {
	return r.list.AtTry(name)
}

// All returns the renderers in registration order. The slice must not be
// modified.
func (r *Registry) All() []GroupRenderer {
	return r.list.Values
}

func (r *Registry) Len() int {
	return r.list.Len()
}

// Attach initializes every renderer against ctx. Later additions are
// initialized as they come.
func (r *Registry) Attach(ctx *Context) {
	if r.ctx != nil {
		return
	}
	if ctx == nil {
		ctx = &Context{}
	}
	r.ctx = ctx
	for _, gr := range r.list.Values {
		gr.Initialize(ctx)
	}
}

// Detach unloads every renderer. The registrations are kept.
func (r *Registry) Detach() {
	if r.ctx == nil {
		return
	}
	for _, gr := range r.list.Values {
		gr.Unload()
	}
	r.ctx = nil
}

func (r *Registry) Attached() bool {
	return r.ctx != nil
}
