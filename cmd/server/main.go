package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/woozymasta/meshraster/internal/logger"
	"github.com/woozymasta/meshraster/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Dir  string `short:"d" long:"dir"  env:"OUTPUT_DIR"     description:"Directory with generated rasters" default:"./output_tiffs"`
	Addr string `short:"a" long:"addr" env:"LISTEN_ADDRESS" description:"Address to listen on"             default:"0.0.0.0"`
	Port int    `short:"p" long:"port" env:"LISTEN_PORT"    description:"Port to listen on"                default:"8080"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Setup Logging
	opts.Logger.Setup()

	srvCtx := server.NewServerContext(opts.Dir)

	// Routes
	mux := http.NewServeMux()
	mux.HandleFunc("/api/meshes", srvCtx.HandleMeshes)
	mux.HandleFunc("/rasters/", srvCtx.HandleRaster)

	handler := server.RequestLogger(mux)

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	log.Info().
		Str("addr", listenAddr).
		Str("dir", opts.Dir).
		Msg("Web server started")

	if err := http.ListenAndServe(listenAddr, handler); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
