package server

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	// Dir is the pipeline output directory being served.
	Dir string
}

// servedExt lists file types exposed under /rasters/.
var servedExt = map[string]string{
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".tfw":  "text/plain; charset=utf-8",
	".webp": "image/webp",
}

// NewServerContext initializes the context for an output directory.
// A missing directory is not fatal; it may be populated later.
func NewServerContext(dir string) *ServerContext {
	log.Info().Str("dir", dir).Msg("Initializing server context")

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("Output directory not readable yet")
		return &ServerContext{Dir: dir}
	}

	rasters := 0
	for _, e := range entries {
		if !e.IsDir() && servedExt[strings.ToLower(filepath.Ext(e.Name()))] == "image/tiff" {
			rasters++
		}
	}

	log.Info().
		Int("rasters", rasters).
		Msg("Server context initialized successfully")

	return &ServerContext{Dir: dir}
}
