package core

import (
	"fmt"
	"sync"
)

// LightKind is a stable integer tag for a concrete light type. Kinds are
// handed out by a registry so the same kind always keys the same light group
// and shader variant across frames.
type LightKind uint32

const (
	LightKindInvalid LightKind = iota
	LightKindDirectional
	LightKindPoint
	LightKindSpot
	LightKindAmbient
	LightKindSkybox
)

// LightClass separates lights evaluated per pixel from image based/ambient ones.
type LightClass int

const (
	LightClassDirect LightClass = iota
	LightClassEnvironment
)

// KindInfo describes a registered light kind.
type KindInfo struct {
	Name  string
	Class LightClass
	// Bounded kinds carry a finite world bounding box and can be frustum culled.
	Bounded bool
}

var (
	kindsMu sync.RWMutex
	kinds   = []KindInfo{
		LightKindInvalid:     {Name: "invalid"},
		LightKindDirectional: {Name: "directional", Class: LightClassDirect},
		LightKindPoint:       {Name: "point", Class: LightClassDirect, Bounded: true},
		LightKindSpot:        {Name: "spot", Class: LightClassDirect, Bounded: true},
		LightKindAmbient:     {Name: "ambient", Class: LightClassEnvironment},
		LightKindSkybox:      {Name: "skybox", Class: LightClassEnvironment},
	}
)

// RegisterLightKind adds a custom light kind and returns its tag.
// Registering an existing name returns the previously assigned tag.
func RegisterLightKind(name string, class LightClass, bounded bool) LightKind {
	kindsMu.Lock()
	defer kindsMu.Unlock()
	for i, k := range kinds {
		if k.Name == name {
			return LightKind(i)
		}
	}
	kinds = append(kinds, KindInfo{Name: name, Class: class, Bounded: bounded})
	return LightKind(len(kinds) - 1)
}

// Info returns the registry entry for k. Unknown kinds report the invalid entry.
func (k LightKind) Info() KindInfo {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	if int(k) >= len(kinds) {
		return kinds[LightKindInvalid]
	}
	return kinds[k]
}

func (k LightKind) IsDirect() bool {
	return k != LightKindInvalid && k.Info().Class == LightClassDirect
}

func (k LightKind) IsEnvironment() bool {
	return k != LightKindInvalid && k.Info().Class == LightClassEnvironment
}

func (k LightKind) HasBoundingBox() bool {
	return k.Info().Bounded
}

func (k LightKind) String() string {
	info := k.Info()
	if k != LightKindInvalid && info.Name == "invalid" {
		return fmt.Sprintf("kind(%d)", uint32(k))
	}
	return info.Name
}
