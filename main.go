package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cinemuse/api"
	"cinemuse/config"
	"cinemuse/handlers"
	"cinemuse/internal/logging"
	"cinemuse/internal/session"
	"cinemuse/internal/upstream"
	"cinemuse/services/metadata"
	"cinemuse/services/recommend"
	"cinemuse/services/suggest"
	"cinemuse/utils"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[main] .env not loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] %v", err)
	}

	closer := logging.Setup(logging.Options{
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	defer closer.Close()

	if !cfg.LLMConfigured() {
		log.Printf("[main] warning: language model api key not set; recommendation endpoints will answer 500")
	}
	if !cfg.MetadataConfigured() {
		log.Printf("[main] warning: tmdb api key not set; /api/recommendations will answer 500")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	suggester, err := newSuggestClient(ctx, cfg)
	if err != nil {
		log.Fatalf("[main] %v", err)
	}
	resolver := metadata.NewClient(metadata.Config{
		APIKey:        cfg.TMDB.APIKey,
		BaseURL:       cfg.TMDB.BaseURL,
		ImageBaseURL:  cfg.TMDB.ImageBaseURL,
		MinInterval:   cfg.TMDB.MinInterval,
		CacheDir:      cfg.Cache.Dir,
		CacheTTLHours: cfg.Cache.TTLHours,
	}, &http.Client{Timeout: cfg.TMDB.Timeout}, metadata.Options{
		Breaker: upstream.NewBreaker("tmdb", upstream.Settings{Timeout: cfg.TMDB.Timeout}),
	})
	service := recommend.NewService(suggester, resolver)

	store := session.NewStore(service, session.StoreOptions{IdleTTL: cfg.Session.IdleTTL})
	go store.Run(ctx, cfg.Session.SweepInterval)

	var limiter *api.IPRateLimiter
	if cfg.Server.RateLimitPerMinute > 0 {
		limiter = api.PerMinute(cfg.Server.RateLimitPerMinute, cfg.Server.RateLimitBurst)
		defer limiter.Stop()
	}

	router := utils.NewRouter(utils.OriginPolicy{Extra: cfg.Server.CORSOrigins})
	handlers.Register(router, handlers.NewRecommendationsHandler(service), handlers.NewSessionsHandler(store), limiter)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[main] cinemuse %s listening on %s (llm transport=%s output=%s)",
			handlers.GetVersion(), cfg.Server.Addr, cfg.Gemini.Transport, suggester.Mode())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server error: %v", err)
		}
	case <-ctx.Done():
		log.Printf("[main] shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] graceful shutdown failed: %v", err)
	}
}

// newSuggestClient builds the title suggestion client on the configured transport.
func newSuggestClient(ctx context.Context, cfg *config.Config) (*suggest.Client, error) {
	mode, err := suggest.ParseMode(cfg.Gemini.Output)
	if err != nil {
		return nil, err
	}
	httpc := &http.Client{Timeout: cfg.Gemini.Timeout + 5*time.Second}

	var gen suggest.Generator
	switch cfg.Gemini.Transport {
	case "sdk":
		gen, err = suggest.NewSDKGenerator(ctx, suggest.SDKConfig{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			BaseURL: cfg.Gemini.BaseURL,
		}, httpc)
		if err != nil {
			return nil, err
		}
	default:
		gen = suggest.NewRESTGenerator(suggest.RESTConfig{
			APIKey:      cfg.Gemini.APIKey,
			Model:       cfg.Gemini.Model,
			BaseURL:     cfg.Gemini.BaseURL,
			Auth:        suggest.AuthStyle(cfg.Gemini.Auth),
			MinInterval: cfg.Gemini.MinInterval,
		}, httpc)
	}

	return suggest.NewClient(gen, suggest.Options{
		Mode:        mode,
		Temperature: cfg.Gemini.Temperature,
		Breaker:     upstream.NewBreaker("gemini", upstream.Settings{Timeout: cfg.Gemini.Timeout}),
	}), nil
}
