// Command agrimind serves the agricultural advisory API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	superagent "github.com/agrimind/agrimind"
	"github.com/agrimind/agrimind/src/agents"
	"github.com/agrimind/agrimind/src/api"
	"github.com/agrimind/agrimind/src/catalog"
	"github.com/agrimind/agrimind/src/config"
	"github.com/agrimind/agrimind/src/models"
	"github.com/agrimind/agrimind/src/tools"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	listenAddr := flag.String("listen", "", "listen address, overrides config")
	flag.Parse()

	if err := run(*configPath, *listenAddr); err != nil {
		fmt.Fprintln(os.Stderr, "agrimind:", err)
		os.Exit(1)
	}
}

func run(configPath, listenAddr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := newLogger(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	model, err := buildModel(ctx, cfg)
	if err != nil {
		return err
	}

	cat := catalog.Default()
	provider := tools.Default()
	registry := agents.NewRegistry(model)

	agent := superagent.New(cat, registry, provider, superagent.Options{
		Model:        model,
		LowLLM:       cfg.LowLLMMode,
		AgentTimeout: cfg.AgentTimeout(),
		MaxAgents:    cfg.MaxSelectedAgents,
		Locale:       cfg.DefaultLocale,
		Logger:       log,
	})

	server := api.NewServer(agent, cfg.MaxConcurrentQueries, log)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.ListenAddr, "provider", cfg.Provider, "model", cfg.Model)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

func buildModel(ctx context.Context, cfg *config.Settings) (models.Model, error) {
	params := models.GenParams{
		Temperature:     cfg.Temperature,
		TopP:            cfg.TopP,
		TopK:            cfg.TopK,
		MaxOutputTokens: cfg.MaxOutputTokens,
		RequestTimeout:  cfg.RequestTimeout(),
	}
	model, err := models.NewProvider(ctx, models.ProviderOptions{
		Provider:  cfg.Provider,
		APIKey:    cfg.APIKey,
		ModelName: cfg.Model,
		Fallbacks: cfg.ModelFallbacks,
		Host:      cfg.OllamaHost,
		Params:    params,
	})
	if err != nil {
		return nil, err
	}
	if cfg.CacheSize > 0 {
		fingerprint := cfg.Provider + "/" + cfg.Model + "|" + params.Fingerprint()
		model = models.NewCachedModel(model, cfg.CacheSize, cfg.CacheTTL(), fingerprint, cfg.CachePath)
	}
	return model, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
