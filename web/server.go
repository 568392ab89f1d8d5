package web

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
)

// Handler serves the scene registry at /scenes.json and splat payloads under
// /assets/. Content-Length is always set on asset responses; the client's
// progress indicator depends on it.
func Handler(data FrontendData, assets *AssetLoader) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/scenes.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[web] failed to encode scene registry: %v", err)
		}
	})

	mux.HandleFunc("/assets/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/assets/")

		rc, size, err := assets.Open(name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		if _, err := io.Copy(w, rc); err != nil {
			log.Printf("[web] failed to send %s: %v", name, err)
		}
	})

	return mux
}
