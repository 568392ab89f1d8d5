package splatview

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/bronya/splatview/dl"
)

// LoadSource says how a load was satisfied.
type LoadSource int

const (
	SourceFetched LoadSource = iota
	SourceRawCache
	SourceRenderCache
	SourcePlaceholder
)

// ErrSuperseded marks a load cancelled because a newer one took over. It is
// not a failure: callers drop the result and show nothing for it.
var ErrSuperseded = errors.New("load superseded by a newer request")

// Result is handed to the rendering layer when a load finishes.
type Result struct {
	SceneID      string
	Scene        *Scene       // set unless the render-object cache hit
	RenderObject RenderObject // set when the render-object cache hit
	Source       LoadSource
	ResetCamera  bool
	Preset       CameraPreset
}

type loadSession struct {
	gen    uint64
	cancel context.CancelFunc
}

// Loader runs the foreground load pipeline. At most one session is in
// flight; starting a new load cancels the previous one unconditionally, and
// a cancelled session's results are never applied to the cache or returned.
type Loader struct {
	mu sync.Mutex

	config   *Config
	cache    *SceneCache
	decoder  Decoder
	progress dl.Progress

	session    *loadSession
	gen        uint64
	interacted bool

	idle chan struct{}
}

func NewLoader(config *Config, cache *SceneCache, decoder Decoder, progress dl.Progress) *Loader {
	return &Loader{
		config:   config,
		cache:    cache,
		decoder:  decoder,
		progress: progress,
		idle:     make(chan struct{}, 1),
	}
}

// MarkInteraction records a camera-affecting interaction (drag, zoom). A
// load that completes afterwards keeps the user's framing instead of
// resetting the camera. The flag clears at the start of every load.
func (l *Loader) MarkInteraction() {
	l.mu.Lock()
	l.interacted = true
	l.mu.Unlock()
}

// Loading reports whether a foreground load is in flight.
func (l *Loader) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.session != nil
}

// Load resolves sceneID to a renderable result: cancel any previous load,
// consult both cache tiers, otherwise stream the file, decode it once in
// full, and cache the scene. A superseded load returns ErrSuperseded; any
// other failure degrades to a placeholder scene rather than an error, so
// the caller always has something to show.
func (l *Loader) Load(ctx context.Context, sceneID string) (*Result, error) {
	cfg, ok := l.config.Scene(sceneID)
	if !ok {
		return nil, &ConfigError{Reason: fmt.Sprintf("unknown scene %q", sceneID)}
	}

	l.mu.Lock()
	if l.session != nil {
		l.session.cancel()
		l.session = nil
	}
	l.interacted = false
	l.gen++
	gen := l.gen

	// cache fast paths need no session and no network
	if obj, scene, tier := l.cache.Get(sceneID); tier != CacheMiss {
		l.mu.Unlock()
		res := &Result{
			SceneID:     sceneID,
			Preset:      cfg.Preset(),
			ResetCamera: true,
		}
		if tier == CacheRender {
			res.RenderObject = obj
			res.Source = SourceRenderCache
		} else {
			res.Scene = scene
			res.Source = SourceRawCache
		}
		return res, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	l.session = &loadSession{gen: gen, cancel: cancel}
	l.mu.Unlock()

	return l.fetch(ctx, cancel, gen, cfg)
}

func (l *Loader) fetch(ctx context.Context, cancel context.CancelFunc, gen uint64, cfg *SceneConfigBlock) (*Result, error) {
	defer cancel()

	buf, err := dl.Fetch(ctx, cfg.URL, l.progress)

	var scene *Scene
	if err == nil {
		scene, err = l.decoder.DecodeScene(ctx, buf)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			// supersession is authoritative: terminate silently
			l.finish(gen, "", nil)
			return nil, ErrSuperseded
		}

		log.Printf("[loader] %s: %v; falling back to placeholder", cfg.ID, err)
		placeholder := Placeholder(0)
		reset, ok := l.finish(gen, "", nil)
		if !ok {
			return nil, ErrSuperseded
		}
		return &Result{
			SceneID:     cfg.ID,
			Scene:       placeholder,
			Source:      SourcePlaceholder,
			ResetCamera: reset,
			Preset:      cfg.Preset(),
		}, nil
	}

	reset, ok := l.finish(gen, cfg.ID, scene)
	if !ok {
		return nil, ErrSuperseded
	}
	return &Result{
		SceneID:     cfg.ID,
		Scene:       scene,
		Source:      SourceFetched,
		ResetCamera: reset,
		Preset:      cfg.Preset(),
	}, nil
}

// finish closes the session if gen still names the current one, applying the
// decoded scene to the raw cache when given. ok is false when a newer load
// superseded this one; nothing is applied in that case.
func (l *Loader) finish(gen uint64, sceneID string, scene *Scene) (reset bool, ok bool) {
	l.mu.Lock()
	if l.session == nil || l.session.gen != gen {
		l.mu.Unlock()
		return false, false
	}
	if scene != nil {
		l.cache.Put(sceneID, scene)
	}
	reset = !l.interacted
	l.session = nil
	l.mu.Unlock()

	l.signalIdle()
	return reset, true
}

// prefetch downloads and decodes a scene straight into the raw cache,
// without touching the foreground session state. Used by the preloader.
func (l *Loader) prefetch(ctx context.Context, sceneID string) error {
	cfg, ok := l.config.Scene(sceneID)
	if !ok {
		return &ConfigError{Reason: fmt.Sprintf("unknown scene %q", sceneID)}
	}

	buf, err := dl.Fetch(ctx, cfg.URL, nil)
	if err != nil {
		return err
	}

	scene, err := l.decoder.DecodeScene(ctx, buf)
	if err != nil {
		return err
	}

	l.cache.Put(sceneID, scene)
	return nil
}

func (l *Loader) cancelActive() {
	l.mu.Lock()
	if l.session != nil {
		l.session.cancel()
		l.session = nil
	}
	l.mu.Unlock()
}

func (l *Loader) idleNotify() <-chan struct{} {
	return l.idle
}

func (l *Loader) signalIdle() {
	select {
	case l.idle <- struct{}{}:
	default:
	}
}
