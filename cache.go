package splatview

import "sync"

// CacheTier identifies which tier satisfied a cache lookup.
type CacheTier int

const (
	CacheMiss CacheTier = iota
	CacheRaw
	CacheRender
)

// SceneCache is the two-tier scene cache: decoded point buffers and fully
// built render objects, both keyed by scene id. A render object is
// authoritative when present since it needs no rebuild work. Puts are
// idempotent overwrites and nothing is ever evicted; the registry of known
// scenes is small and fixed.
type SceneCache struct {
	sync.Mutex

	raw    map[string]*Scene
	render map[string]RenderObject
}

func NewSceneCache() *SceneCache {
	return &SceneCache{
		raw:    make(map[string]*Scene),
		render: make(map[string]RenderObject),
	}
}

// Get checks the render-object tier first, then the raw tier.
func (c *SceneCache) Get(id string) (RenderObject, *Scene, CacheTier) {
	c.Lock()
	defer c.Unlock()

	if obj, ok := c.render[id]; ok {
		return obj, nil, CacheRender
	}
	if scene, ok := c.raw[id]; ok {
		return nil, scene, CacheRaw
	}
	return nil, nil, CacheMiss
}

// Has reports whether either tier holds the scene.
func (c *SceneCache) Has(id string) bool {
	c.Lock()
	defer c.Unlock()

	_, inRender := c.render[id]
	_, inRaw := c.raw[id]
	return inRender || inRaw
}

func (c *SceneCache) Put(id string, scene *Scene) {
	c.Lock()
	defer c.Unlock()
	c.raw[id] = scene
}

func (c *SceneCache) PutRenderObject(id string, obj RenderObject) {
	c.Lock()
	defer c.Unlock()
	c.render[id] = obj
}
