package effect

import (
	"strings"
	"sync"
)

// ShaderSource is a node of a shader mixin tree. Key must be equal for two
// sources exactly when they generate the same code.
type ShaderSource interface {
	Key() string
}

// ShaderClassSource references a shader class with optional generic arguments.
type ShaderClassSource struct {
	Class    string
	Generics []string
}

func NewShaderClassSource(class string, generics ...string) ShaderClassSource {
	return ShaderClassSource{Class: class, Generics: generics}
}

func (s ShaderClassSource) Key() string {
	if len(s.Generics) == 0 {
		return s.Class
	}
	return s.Class + "<" + strings.Join(s.Generics, ",") + ">"
}

// ShaderSourceCollection is an ordered list of shader sources.
type ShaderSourceCollection struct {
	sources []ShaderSource
}

func NewShaderSourceCollection(sources ...ShaderSource) *ShaderSourceCollection {
	return &ShaderSourceCollection{sources: append([]ShaderSource(nil), sources...)}
}

func (c *ShaderSourceCollection) Add(s ShaderSource) {
	c.sources = append(c.sources, s)
}

// Clear empties the collection but keeps its storage.
func (c *ShaderSourceCollection) Clear() {
	clear(c.sources)
	c.sources = c.sources[:0]
}

func (c *ShaderSourceCollection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.sources)
}

func (c *ShaderSourceCollection) At(i int) ShaderSource {
	return c.sources[i]
}

// Keys returns the source keys in order.
func (c *ShaderSourceCollection) Keys() []string {
	keys := make([]string, c.Len())
	for i, s := range c.sources {
		keys[i] = s.Key()
	}
	return keys
}

// Key is the content key of the whole collection.
func (c *ShaderSourceCollection) Key() string {
	return strings.Join(c.Keys(), ";")
}

func (c *ShaderSourceCollection) Equal(o *ShaderSourceCollection) bool {
	if c.Len() != o.Len() {
		return false
	}
	for i := range c.sources {
		if c.sources[i].Key() != o.sources[i].Key() {
			return false
		}
	}
	return true
}

// ShaderSourceCache hands out one immutable collection per distinct content
// so that effects can compare shader lists by identity across frames.
type ShaderSourceCache struct {
	mu    sync.RWMutex
	byKey map[string]*ShaderSourceCollection
}

func NewShaderSourceCache() *ShaderSourceCache {
	return &ShaderSourceCache{byKey: make(map[string]*ShaderSourceCollection)}
}

// Get returns the cached copy of sources, creating it on first sight. The
// argument may be mutated afterwards without affecting the returned value.
func (c *ShaderSourceCache) Get(sources *ShaderSourceCollection) *ShaderSourceCollection {
	key := sources.Key()

	c.mu.RLock()
	cached, ok := c.byKey[key]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.byKey[key]; ok {
		return cached
	}
	cached = NewShaderSourceCollection(sources.sources...)
	c.byKey[key] = cached
	return cached
}

func (c *ShaderSourceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byKey)
}
