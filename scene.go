package splatview

import (
	"image/color"
	"log"
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/muesli/gamut"
)

// Scene holds decoded point data as parallel flat arrays: 3*Count position
// components and 3*Count color components in [0, 1]. Scenes are immutable
// once produced; the cache and the renderer share them without copying.
type Scene struct {
	Positions []float32
	Colors    []float32
	Count     int
}

// BoundingRadius returns the radius of the smallest origin-centered sphere
// containing every point. Camera presets are scaled by this.
func (s *Scene) BoundingRadius() float32 {
	var max float32
	for i := 0; i < s.Count; i++ {
		x := s.Positions[i*3]
		y := s.Positions[i*3+1]
		z := s.Positions[i*3+2]
		d := math32.Sqrt(x*x + y*y + z*z)
		if d > max {
			max = d
		}
	}
	return max
}

// RenderObject is the opaque renderable handle the rendering layer builds out
// of a decoded scene. The pipeline only moves it through the cache.
type RenderObject any

// RenderObjectBuilder is implemented by the rendering layer. resetCamera
// tells the builder whether to apply the scene's camera preset or preserve
// the user's current framing.
type RenderObjectBuilder interface {
	Build(scene *Scene, preset CameraPreset, resetCamera bool) (RenderObject, error)
}

const placeholderPoints = 8192

// Placeholder builds a synthetic stand-in scene so a failed load never
// leaves the canvas blank: a uniform pseudo-random cluster colored from a
// generated pastel palette.
func Placeholder(n int) *Scene {
	if n <= 0 {
		n = placeholderPoints
	}

	palette, err := gamut.Generate(8, gamut.PastelGenerator{})
	if err != nil {
		log.Printf("[scene] failed to generate placeholder palette: %v", err)
		palette = []color.Color{color.White}
	}

	rng := rand.New(rand.NewSource(int64(n)))
	s := &Scene{
		Positions: make([]float32, 3*n),
		Colors:    make([]float32, 3*n),
		Count:     n,
	}

	for i := 0; i < n; i++ {
		s.Positions[i*3] = rng.Float32()*10 - 5
		s.Positions[i*3+1] = rng.Float32()*10 - 5
		s.Positions[i*3+2] = rng.Float32()*10 - 5

		r, g, b, _ := palette[i%len(palette)].RGBA()
		s.Colors[i*3] = float32(r) / 0xffff
		s.Colors[i*3+1] = float32(g) / 0xffff
		s.Colors[i*3+2] = float32(b) / 0xffff
	}

	return s
}
