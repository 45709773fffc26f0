package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nhdewitt/http-server/internal/config"
	"github.com/nhdewitt/http-server/internal/router"
	"github.com/nhdewitt/http-server/internal/server"
)

func main() {
	cfg, err := config.Load(os.Args[0], os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[0], err)
		os.Exit(2)
	}
	logger := cfg.NewLogger(os.Stderr)

	rt := router.New(cfg.Directory)
	srv, err := server.Serve(server.Options{
		Addr:      cfg.Addr(),
		ReusePort: cfg.ReusePort,
		Logger:    logger,
	}, rt.Handle)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.Addr()).Msg("error starting server")
	}
	logger.Info().
		Str("addr", srv.Addr().String()).
		Str("directory", cfg.Directory).
		Msg("server started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	if err := srv.Close(); err != nil {
		logger.Error().Err(err).Msg("error closing listener")
	}
	logger.Info().Stringer("signal", sig).Msg("server gracefully stopped")
}
