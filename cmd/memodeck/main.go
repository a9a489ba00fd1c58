// Command memodeck runs the spaced-repetition engine: it loads the
// deck from SQLite, optionally imports cards from configured sources,
// and serves the JSON API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/finbarsheehy/memodeck/internal/config"
	"github.com/finbarsheehy/memodeck/internal/engine"
	"github.com/finbarsheehy/memodeck/internal/mdsource"
	"github.com/finbarsheehy/memodeck/internal/storage"
	"github.com/finbarsheehy/memodeck/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	flags := config.Flags()
	configPath := flags.String("config", "", "path to YAML config file")
	importOnly := flags.Bool("import", false, "import sources and exit")
	dev := flags.Bool("dev", false, "development logging")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		return err
	}

	logger, err := newLogger(*dev)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("database opened", zap.String("path", cfg.DBPath))

	eng, err := engine.New(ctx, store, cfg.Params(), logger)
	if err != nil {
		return err
	}

	for _, source := range cfg.Sources {
		res, err := mdsource.ImportSource(ctx, eng, source, cfg.ReposDir, logger)
		if err != nil {
			logger.Warn("source import failed", zap.String("source", source), zap.Error(err))
			continue
		}
		for _, impErr := range res.Errors {
			logger.Warn("import error", zap.String("source", source), zap.Error(impErr))
		}
	}
	if *importOnly {
		return nil
	}

	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: web.NewServer(eng, cfg.Session.MaxSize, logger),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Listen))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
