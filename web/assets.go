package web

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// AssetLoader resolves scene payloads by name, either from a directory or
// from a zip bundle produced by the build pipeline.
type AssetLoader struct {
	dir    string
	files  map[string]*zip.File
	reader *zip.ReadCloser
}

func NewAssetLoaderFromDir(dir string) *AssetLoader {
	return &AssetLoader{dir: dir}
}

func NewAssetLoaderFromBundle(bundlePath string) (*AssetLoader, error) {
	r, err := zip.OpenReader(bundlePath)
	if err != nil {
		return nil, err
	}

	files := make(map[string]*zip.File)
	for _, f := range r.File {
		files[f.Name] = f
	}

	return &AssetLoader{
		files:  files,
		reader: r,
	}, nil
}

// Open returns a reader for the named asset plus its uncompressed size.
func (a *AssetLoader) Open(name string) (io.ReadCloser, int64, error) {
	if !validAssetName(name) {
		return nil, 0, fmt.Errorf("invalid asset name %q", name)
	}

	if a.reader != nil {
		file, ok := a.files[name]
		if !ok {
			return nil, 0, fmt.Errorf("asset %s does not exist", name)
		}
		fd, err := file.Open()
		if err != nil {
			return nil, 0, err
		}
		return fd, int64(file.UncompressedSize64), nil
	}

	fd, err := os.Open(filepath.Join(a.dir, filepath.FromSlash(name)))
	if err != nil {
		return nil, 0, err
	}
	st, err := fd.Stat()
	if err != nil {
		fd.Close()
		return nil, 0, err
	}
	return fd, st.Size(), nil
}

func (a *AssetLoader) Close() {
	if a.reader != nil {
		a.reader.Close()
	}
}

func validAssetName(name string) bool {
	if name == "" || strings.HasPrefix(name, "/") {
		return false
	}
	clean := path.Clean(name)
	return clean == name && !strings.HasPrefix(clean, "..")
}
