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

	"gigmaster/audiofilestore"
	"gigmaster/journal"
	"gigmaster/library"
	"gigmaster/metadata"
	"gigmaster/model"
	"gigmaster/realtime"
	"gigmaster/watcher"

	"github.com/cdfmlr/crud/log"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

var logger = log.ZoneLogger("gigmaster")

func main() {
	cfg, fs, err := LoadConfig(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if printConfig, _ := fs.GetBool("print-config"); printConfig {
		if err := cfg.Write(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg); err != nil {
		logger.WithError(err).Fatal("gigmaster stopped")
	}
}

func setLogLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.WithField("logLevel", level).Warn("unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	log.Logger.SetLevel(lvl)
}

func run(cfg *GigmasterConfig) error {
	setLogLevel(cfg.LogLevel)

	layout, err := model.NewLayout(cfg.Library.Root)
	if err != nil {
		return fmt.Errorf("library root: %w", err)
	}
	if err := layout.Ensure(); err != nil {
		return fmt.Errorf("library root: %w", err)
	}

	hub := realtime.NewHub()
	audio := audiofilestore.NewAudioFileStore(layout.AudioDir(), cfg.Library.BaseUrl)

	options := []library.Option{
		library.WithBroadcaster(hub),
		library.WithBackingTracks(audio),
	}

	var jrnl *journal.Journal
	if cfg.Journal.DB != "" {
		jrnl, err = journal.Open(cfg.Journal.DB)
		if err != nil {
			return err
		}
		options = append(options, library.WithRecorder(jrnl))
	}

	lib := library.New(metadata.NewStore(layout), options...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New(
		[]string{layout.LyricsDir(), layout.MetadataDir(), layout.SetlistsDir()},
		cfg.Library.Debounce,
		func() { _, _ = lib.Scan(library.TriggerWatcher) },
	)
	if err != nil {
		return err
	}
	defer w.Close()
	go w.Run(ctx)

	r := MakeRouter(&App{
		Library:  lib,
		Audio:    audio,
		Hub:      hub,
		Journal:  jrnl,
		Frontend: cfg.Frontend.Dist,
	})

	srv := &http.Server{
		Addr:    cfg.HttpListenAddr,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.HttpListenAddr).
			WithField("root", layout.Root).
			Info("gigmaster listening")
		errCh <- srv.ListenAndServe()
	}()

	// first scan once the server is up, like a watcher-driven one
	if _, err := lib.Scan(library.TriggerStartup); err != nil {
		logger.WithError(err).Error("startup scan failed")
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
