package splatview

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// CameraPreset is a per-scene camera offset. The renderer multiplies it by
// the scene's bounding-sphere radius and looks at the origin.
type CameraPreset struct {
	X float32
	Y float32
	Z float32
}

// Position returns the preset scaled by a bounding-sphere radius.
func (p CameraPreset) Position(radius float32) (float32, float32, float32) {
	return p.X * radius, p.Y * radius, p.Z * radius
}

// DefaultPreset applies when a scene block omits camera_offset.
var DefaultPreset = CameraPreset{X: 0, Y: 0.3, Z: 1.6}

// ConfigError reports an invalid or inconsistent scene registry. Unknown
// scene ids are a hard error rather than a silent fallback to another
// scene's preset.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s", e.Reason)
}

type Config struct {
	Concurrency  int                 `hcl:"concurrency,optional"`
	PreloadOrder []string            `hcl:"preload_order,optional"`
	Scenes       []*SceneConfigBlock `hcl:"scene,block"`
}

type SceneConfigBlock struct {
	ID           string    `hcl:"id,label"`
	URL          string    `hcl:"url"`
	CameraOffset []float64 `hcl:"camera_offset,optional"`
	Source       string    `hcl:"source,optional"`
	Preview      string    `hcl:"preview,optional"`
}

// Preset returns the block's camera preset, or DefaultPreset when the block
// omits camera_offset.
func (s *SceneConfigBlock) Preset() CameraPreset {
	if len(s.CameraOffset) != 3 {
		return DefaultPreset
	}
	return CameraPreset{
		X: float32(s.CameraOffset[0]),
		Y: float32(s.CameraOffset[1]),
		Z: float32(s.CameraOffset[2]),
	}
}

func newHCLEvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{},
		Functions: map[string]function.Function{},
	}
}

func LoadConfig(path string) (*Config, error) {
	var cfg Config
	evalCtx := newHCLEvalContext()
	err := hclsimple.DecodeFile(path, evalCtx, &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the registry once at startup so lookups never have to
// guess at defaults later.
func (c *Config) Validate() error {
	seen := map[string]struct{}{}
	for _, scene := range c.Scenes {
		if _, dup := seen[scene.ID]; dup {
			return &ConfigError{Reason: fmt.Sprintf("duplicate scene %q", scene.ID)}
		}
		seen[scene.ID] = struct{}{}

		if scene.URL == "" {
			return &ConfigError{Reason: fmt.Sprintf("scene %q has no url", scene.ID)}
		}
		if len(scene.CameraOffset) != 0 && len(scene.CameraOffset) != 3 {
			return &ConfigError{Reason: fmt.Sprintf("scene %q camera_offset needs 3 components, got %d", scene.ID, len(scene.CameraOffset))}
		}
	}

	for _, id := range c.PreloadOrder {
		if _, ok := seen[id]; !ok {
			return &ConfigError{Reason: fmt.Sprintf("preload_order references unknown scene %q", id)}
		}
	}

	return nil
}

// Scene looks up a registry entry by id.
func (c *Config) Scene(id string) (*SceneConfigBlock, bool) {
	for _, scene := range c.Scenes {
		if scene.ID == id {
			return scene, true
		}
	}
	return nil, false
}

// PreloadQueue returns the configured preload order, or every registered
// scene in registry order when none is configured.
func (c *Config) PreloadQueue() []string {
	if len(c.PreloadOrder) > 0 {
		return c.PreloadOrder
	}
	ids := make([]string, 0, len(c.Scenes))
	for _, scene := range c.Scenes {
		ids = append(ids, scene.ID)
	}
	return ids
}
