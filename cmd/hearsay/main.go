package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/dkress/hearsay/internal/config"
	"github.com/dkress/hearsay/internal/gdrive"
	"github.com/dkress/hearsay/internal/noise"
	"github.com/dkress/hearsay/internal/server"
	"github.com/dkress/hearsay/internal/speech"
	"github.com/dkress/hearsay/internal/storage"
	"github.com/dkress/hearsay/internal/trainer"
)

func main() {
	configPath := flag.String("config", "hearsay.yaml", "path to YAML config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()

	log.Info().Msg("hearsay: starting")

	cfg, warnings, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	for _, w := range warnings {
		log.Warn().Msg(w)
	}

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("storage init failed")
	}
	defer func() { _ = store.Close() }()

	var player trainer.SpeechPlayer
	if speech.Available(cfg.SpeechCommand) {
		player = speech.NewCommandPlayer(cfg.SpeechCommand, cfg.SpeechVoice, cfg.ParsedWordGap(), log)
	} else {
		log.Warn().Str("command", cfg.SpeechCommand).Msg("TTS command not found, playback is silent")
		player = speech.NewSilentPlayer(cfg.ParsedWordGap())
	}

	hub := server.NewHub(log)
	ctrl := trainer.NewController(player, noise.NewGenerator(log), store, hub, trainer.Options{
		AudioSetup: noise.BackendSetup{},
		History:    store,
		Logger:     &log,
		Rate:       cfg.SpeechRate,
		Noise:      cfg.NoiseLevel,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	httpServer := &http.Server{Addr: cfg.ListenAddr, Handler: server.Handler(hub, ctrl, store)}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server error")
		}
	}()

	if cfg.GDriveFolderID != "" {
		syncer, syncErr := gdrive.NewSyncer(ctx, cfg.GoogleCredentialsFile, cfg.GDriveFolderID)
		if syncErr != nil {
			log.Warn().Err(syncErr).Msg("gdrive sync disabled")
		} else {
			go func() {
				ticker := time.NewTicker(cfg.ParsedSyncInterval())
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						if err := syncer.Sync(cfg.DBPath); err != nil {
							log.Warn().Err(err).Msg("gdrive sync error")
						}
					}
				}
			}()
		}
	}

	log.Info().Str("addr", cfg.ListenAddr).Msg("hearsay: API listening")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("hearsay: shutting down")
	cancel()
	ctrl.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown failed")
	}
}
