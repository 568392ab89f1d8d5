package splatview

import (
	"context"
	"log"
	"time"
)

const (
	defaultIdleWait = 2 * time.Second
	defaultStepWait = 200 * time.Millisecond
)

// Preloader opportunistically decodes not-yet-viewed scenes into the raw
// cache, in a fixed priority order. It never contends with foreground work:
// each step yields first, then waits for the loader to go idle before
// touching the network.
type Preloader struct {
	loader *Loader
	queue  []string

	idleWait time.Duration
	stepWait time.Duration
}

func NewPreloader(loader *Loader, queue []string) *Preloader {
	return &Preloader{
		loader:   loader,
		queue:    queue,
		idleWait: defaultIdleWait,
		stepWait: defaultStepWait,
	}
}

// Start begins one background pass over the queue and returns immediately.
// Cancel ctx to stop early. Scenes already cached are skipped; failed
// scenes are logged and skipped, never retried.
func (p *Preloader) Start(ctx context.Context) {
	go p.run(ctx)
}

func (p *Preloader) run(ctx context.Context) {
	for _, id := range p.queue {
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.stepWait):
		}

		if !p.waitIdle(ctx) {
			return
		}

		if p.loader.cache.Has(id) {
			continue
		}

		if err := p.loader.prefetch(ctx, id); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[preload] %s: %v", id, err)
		}
	}
}

// waitIdle blocks until no foreground load is in flight. It waits on the
// loader's idle signal with a bounded timeout so a missed signal can only
// delay a step, never wedge the queue.
func (p *Preloader) waitIdle(ctx context.Context) bool {
	for {
		if !p.loader.Loading() {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-p.loader.idleNotify():
		case <-time.After(p.idleWait):
		}
	}
}
