package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

type pointerSource struct {
	lights []*Light
}

func (s *pointerSource) Lights() []*Light { return s.lights }

func TestViewLights(t *testing.T) {
	l := NewLight(LightKindPoint)
	var missing *pointerSource

	tests := []struct {
		name   string
		scene  LightSource
		want   []*Light
		wantOK bool
	}{
		{"no scene", nil, nil, false},
		{"nil pointer scene", missing, nil, false},
		{"empty list", LightList(nil), nil, true},
		{"list", LightList{l}, []*Light{l}, true},
		{"pointer scene", &pointerSource{lights: []*Light{l}}, []*Light{l}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewView("v", mgl32.Ident4(), mgl32.Ident4(), tt.scene)
			got, ok := v.Lights()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
