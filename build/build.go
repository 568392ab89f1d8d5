// Package build implements the config-driven asset pipeline: convert every
// registered PLY source into a splat file, copy preview images, and emit the
// scene registry the frontend consumes.
package build

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/bronya/splatview"
	"github.com/bronya/splatview/ply"
	"github.com/bronya/splatview/web"
	"golang.org/x/sync/errgroup"
)

type Opts struct {
	ForceClean  bool    // ignore the previous run's manifest
	SampleRatio float64 // fraction of points kept, 0 means the default
	Bundle      bool    // also pack the splat files into assets.zip
}

const (
	defaultSampleRatio = 0.6
	normalizedExtent   = 10
)

// Meta is the incremental-build manifest: source modification times from the
// previous run, so unchanged scenes are skipped.
type Meta struct {
	SourceModTimes map[string]int64 `json:"source_mod_times"`
}

func ensureDirectory(path string) error {
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		err = os.Mkdir(path, os.ModePerm)
		if err != nil {
			return err
		}
	} else {
		return err
	}
	return nil
}

// Build converts every scene in the config that declares a source file,
// writing <out>/assets/<id>.splat, <out>/samples/<id>.<ext> previews,
// <out>/scenes.json, and the incremental manifest <out>/build.json.
// Individual scene failures are logged and skipped.
func Build(config *splatview.Config, outputPath string, opts Opts) error {
	for _, dir := range []string{outputPath, filepath.Join(outputPath, "assets"), filepath.Join(outputPath, "samples")} {
		if err := ensureDirectory(dir); err != nil {
			return err
		}
	}

	ratio := opts.SampleRatio
	if ratio <= 0 {
		ratio = defaultSampleRatio
	}

	metaPath := filepath.Join(outputPath, "build.json")
	var prev Meta
	if !opts.ForceClean {
		if data, err := os.ReadFile(metaPath); err == nil {
			if err := json.Unmarshal(data, &prev); err != nil {
				return fmt.Errorf("reading %s: %v", metaPath, err)
			}
		}
	}

	next := Meta{SourceModTimes: map[string]int64{}}
	var metaMu sync.Mutex

	concurrency := config.Concurrency
	if concurrency == 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(concurrency)

	for _, scene := range config.Scenes {
		if scene.Source == "" {
			continue
		}
		scene := scene

		g.Go(func() error {
			modTime, err := convertScene(scene, outputPath, ratio, prev.SourceModTimes[scene.ID])
			if err != nil {
				log.Printf("[build] failed to convert %s: %v", scene.ID, err)
				return nil
			}

			metaMu.Lock()
			next.SourceModTimes[scene.ID] = modTime
			metaMu.Unlock()
			return nil
		})
	}
	g.Wait()

	data, err := json.Marshal(next)
	if err != nil {
		return err
	}
	if err := os.WriteFile(metaPath, data, os.ModePerm); err != nil {
		return err
	}

	if err := writeRegistry(config, outputPath); err != nil {
		return err
	}

	if opts.Bundle {
		return writeBundle(outputPath)
	}
	return nil
}

func convertScene(scene *splatview.SceneConfigBlock, outputPath string, ratio float64, prevModTime int64) (int64, error) {
	st, err := os.Stat(scene.Source)
	if err != nil {
		return 0, err
	}
	modTime := st.ModTime().Unix()

	splatPath := filepath.Join(outputPath, "assets", scene.ID+".splat")
	if modTime == prevModTime {
		if _, err := os.Stat(splatPath); err == nil {
			return modTime, nil
		}
	}

	fd, err := os.Open(scene.Source)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	cloud, err := ply.Decode(fd)
	fd.Close()
	if err != nil {
		return 0, err
	}

	cloud = downsample(cloud, ratio)
	normalize(cloud.Positions)

	buf, err := splatview.Encode(cloud.Positions, cloud.Colors)
	if err != nil {
		return 0, err
	}

	if err := os.WriteFile(splatPath, buf, os.ModePerm); err != nil {
		return 0, err
	}

	if scene.Preview != "" {
		if err := copyPreview(scene, outputPath); err != nil {
			log.Printf("[build] failed to copy preview for %s: %v", scene.ID, err)
		}
	}

	log.Printf("[build] converted %s in %dms (%d points, %d bytes)", scene.ID, time.Since(start).Milliseconds(), cloud.Count, len(buf))
	return modTime, nil
}

func copyPreview(scene *splatview.SceneConfigBlock, outputPath string) error {
	src, err := os.Open(scene.Preview)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(outputPath, "samples", scene.ID+filepath.Ext(scene.Preview)))
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

func writeRegistry(config *splatview.Config, outputPath string) error {
	data, err := json.Marshal(web.FromConfig(config))
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outputPath, "scenes.json"), data, os.ModePerm)
}

// writeBundle packs the converted splat files into assets.zip so the serve
// command can host a single artifact.
func writeBundle(outputPath string) error {
	fd, err := os.Create(filepath.Join(outputPath, "assets.zip"))
	if err != nil {
		return err
	}
	defer fd.Close()

	zw := zip.NewWriter(fd)
	assetsDir := filepath.Join(outputPath, "assets")

	entries, err := os.ReadDir(assetsDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		w, err := zw.Create(entry.Name())
		if err != nil {
			return err
		}

		src, err := os.Open(filepath.Join(assetsDir, entry.Name()))
		if err != nil {
			return err
		}
		_, err = io.Copy(w, src)
		src.Close()
		if err != nil {
			return err
		}
	}

	return zw.Close()
}
