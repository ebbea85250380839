// Package server exposes a pipeline output directory over HTTP.
package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/woozymasta/meshraster/internal/config"
)

const etagCap = 64

// HandleMeshes serves the GeoJSON footprint index of generated rasters.
func (s *ServerContext) HandleMeshes(w http.ResponseWriter, r *http.Request) {
	if !s.serveFile(w, r, filepath.Join(s.Dir, config.IndexFile), "application/geo+json") {
		http.NotFound(w, r)
	}
}

// HandleRaster serves a raster, world file or preview from the output directory.
func (s *ServerContext) HandleRaster(w http.ResponseWriter, r *http.Request) {
	// Path: /rasters/{file}
	name := strings.TrimPrefix(r.URL.Path, "/rasters/")

	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		http.NotFound(w, r)
		return
	}

	contentType, ok := servedExt[strings.ToLower(filepath.Ext(name))]
	if !ok {
		http.NotFound(w, r)
		return
	}

	if !s.serveFile(w, r, filepath.Join(s.Dir, name), contentType) {
		http.NotFound(w, r)
	}
}

// serveFile tries to serve a file from disk with ETag generation.
// It returns true if the file was found and served (or 304).
func (s *ServerContext) serveFile(w http.ResponseWriter, r *http.Request, path string, contentType string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return false
	}

	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendInt(buf, info.Size(), 16)
	buf = append(buf, '-')
	buf = strconv.AppendInt(buf, info.ModTime().UnixNano(), 16)
	buf = append(buf, '"')
	etag := string(buf)

	// check If-None-Match (client sent ETag)
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	http.ServeFile(w, r, path)
	return true
}
