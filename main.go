package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hurdle/internal/chain"
	"github.com/robalobadob/hurdle/internal/config"
	"github.com/robalobadob/hurdle/internal/httpserver"
	"github.com/robalobadob/hurdle/internal/store"
	"github.com/robalobadob/hurdle/internal/words"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	list, err := words.LoadList(cfg.AnswersFile, cfg.AllowedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}
	answers, allowed := list.Stats()
	log.Info().Int("answers", answers).Int("allowed", allowed).Msg("word lists loaded")

	// The remote dictionary, when configured, is the primary provider; the local
	// list backs it up in the selection chain.
	var provider words.Provider = list
	if cfg.DictionaryURL != "" {
		dict, err := words.NewDictionary(words.DictionaryConfig{
			BaseURL:   cfg.DictionaryURL,
			Timeout:   cfg.DictionaryTimeout,
			RPS:       cfg.DictionaryRPS,
			CacheSize: cfg.DictionaryCacheSize,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("dictionary client")
		}
		provider = dict
		log.Info().Str("url", cfg.DictionaryURL).Msg("using remote dictionary")
	}

	db, err := store.OpenSQLite(ctx, cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	defer db.Close()

	sessions := store.NewSessions()
	go pruneSessions(ctx, sessions, cfg.SessionIdleTTL)

	srv := httpserver.New(httpserver.Options{
		Sessions: sessions,
		Records:  db,
		NewOrchestrator: func() *chain.Orchestrator {
			sel := words.NewSelector(
				words.NewProviderStrategy(provider, cfg.ProviderAttempts),
				words.NewListStrategy(list),
				words.NewEmergencyStrategy(),
			)
			return chain.NewOrchestrator(provider, sel, db)
		},
		Defaults: chain.Options{MaxAttempts: cfg.MaxAttempts, HardMode: cfg.HardMode},
		Tokens: httpserver.TokenConfig{
			Secret: cfg.JWTSecret,
			TTL:    cfg.TokenTTL,
			Secure: cfg.CookieSecure,
		},
		ClientOrigin: cfg.ClientOrigin,
		Words:        list,
	})

	log.Info().Str("port", cfg.Port).Msg("starting hurdle server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Error().Err(err).Msg("server exited")
		return
	}
	log.Info().Msg("server stopped")
}

func setupLogging(cfg config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func pruneSessions(ctx context.Context, sessions *store.Sessions, idle time.Duration) {
	if idle <= 0 {
		return
	}
	t := time.NewTicker(idle / 4)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := sessions.Prune(idle); n > 0 {
				log.Debug().Int("pruned", n).Int("live", sessions.Len()).Msg("idle sessions pruned")
			}
		}
	}
}
