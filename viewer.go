package splatview

import (
	"context"
	"sync"

	"github.com/bronya/splatview/dl"
)

// Viewer owns the whole pipeline for one display surface: the scene
// registry, both cache tiers, the decode strategy and the single foreground
// load session. All pipeline state hangs off this one object.
type Viewer struct {
	config  *Config
	cache   *SceneCache
	decoder Decoder
	loader  *Loader
	preload *Preloader

	preloadOnce sync.Once
	preloadStop context.CancelFunc
}

func NewViewer(config *Config, progress dl.Progress) (*Viewer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	decoder := NewDecoder(config.Concurrency)
	cache := NewSceneCache()
	loader := NewLoader(config, cache, decoder, progress)

	return &Viewer{
		config:  config,
		cache:   cache,
		decoder: decoder,
		loader:  loader,
		preload: NewPreloader(loader, config.PreloadQueue()),
	}, nil
}

// Load runs the foreground pipeline for sceneID. The first completed load
// also kicks off the background preloader for the remaining scenes.
func (v *Viewer) Load(ctx context.Context, sceneID string) (*Result, error) {
	res, err := v.loader.Load(ctx, sceneID)
	if err == nil {
		v.preloadOnce.Do(func() {
			pctx, cancel := context.WithCancel(context.Background())
			v.preloadStop = cancel
			v.preload.Start(pctx)
		})
	}
	return res, err
}

// MarkInteraction forwards a camera-affecting interaction to the loader.
func (v *Viewer) MarkInteraction() {
	v.loader.MarkInteraction()
}

// Cache exposes the scene cache so the rendering layer can insert built
// render objects.
func (v *Viewer) Cache() *SceneCache {
	return v.cache
}

// Close cancels any in-flight load and stops the preloader and decoder.
func (v *Viewer) Close() {
	if v.preloadStop != nil {
		v.preloadStop()
	}
	v.loader.cancelActive()
	v.decoder.Close()
}
