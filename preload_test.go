package splatview

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastPreloader(loader *Loader, queue []string) *Preloader {
	p := NewPreloader(loader, queue)
	p.stepWait = time.Millisecond
	p.idleWait = 5 * time.Millisecond
	return p
}

func TestPreloaderNeverContendsWithForeground(t *testing.T) {
	fgStarted := make(chan struct{})
	fgRelease := make(chan struct{})
	var preloadHits atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/fg.splat", func(w http.ResponseWriter, r *http.Request) {
		close(fgStarted)
		<-fgRelease
		w.Write(validSplat())
	})
	mux.HandleFunc("/bg.splat", func(w http.ResponseWriter, r *http.Request) {
		preloadHits.Add(1)
		w.Write(validSplat())
	})

	loader, _ := testLoader(t, mux, "fg", "bg")

	go loader.Load(context.Background(), "fg")
	<-fgStarted

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fastPreloader(loader, []string{"bg"}).Start(ctx)

	// foreground is in flight: the preloader must stay off the network
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), preloadHits.Load())

	close(fgRelease)
	assert.Eventually(t, func() bool {
		return loader.cache.Has("bg")
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), preloadHits.Load())
}

func TestPreloaderSkipsCachedAndSurvivesFailure(t *testing.T) {
	var cachedHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/cached.splat", func(w http.ResponseWriter, r *http.Request) {
		cachedHits.Add(1)
		w.Write(validSplat())
	})
	mux.HandleFunc("/bad.splat", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/good.splat", func(w http.ResponseWriter, r *http.Request) {
		w.Write(validSplat())
	})

	loader, _ := testLoader(t, mux, "cached", "bad", "good")
	loader.cache.Put("cached", &Scene{Count: 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fastPreloader(loader, []string{"cached", "bad", "good"}).Start(ctx)

	// a failed preload is skipped silently and the queue keeps moving
	assert.Eventually(t, func() bool {
		return loader.cache.Has("good")
	}, 3*time.Second, 10*time.Millisecond)

	assert.False(t, loader.cache.Has("bad"))
	assert.Equal(t, int32(0), cachedHits.Load())
}

func TestPreloaderStopsOnCancel(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/a.splat", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(validSplat())
	})

	loader, _ := testLoader(t, mux, "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fastPreloader(loader, []string{"a"}).Start(ctx)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), hits.Load())
}
