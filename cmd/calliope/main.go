// Calliope is the stream backend: it voices a scripted AI livestream,
// reacts to viewer interrupts by rewriting the script, and serves audio
// chunks and chat over HTTP.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/streamforge/calliope/pkg/api"
	"github.com/streamforge/calliope/pkg/boson"
	"github.com/streamforge/calliope/pkg/catalog"
	"github.com/streamforge/calliope/pkg/config"
	"github.com/streamforge/calliope/pkg/processor"
	"github.com/streamforge/calliope/pkg/scriptgen"
	"github.com/streamforge/calliope/pkg/services"
	"github.com/streamforge/calliope/pkg/store"
	"github.com/streamforge/calliope/pkg/tts"
	"github.com/streamforge/calliope/pkg/version"
)

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	// Load .env from the working directory; absence is normal outside dev.
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	// 1. Resolve configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.SetLogLoggerLevel(parseLogLevel(cfg.Server.LogLevel))

	slog.Info("Starting calliope",
		"version", version.Full(),
		"http_port", cfg.Server.HTTPPort,
		"persona", cfg.Stream.DefaultPersona,
		"loop_interval", cfg.Stream.LoopInterval)

	ctx := context.Background()

	// 2. Connect to Redis
	redisClient, err := store.NewClient(ctx, cfg.Redis.URL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "url", cfg.Redis.URL, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Error("Error closing Redis client", "error", err)
		}
	}()
	slog.Info("Connected to Redis")

	// 3. Load the persona catalog
	personas, err := catalog.Load(cfg.Audio.ReferenceDir, cfg.Stream.DefaultPersona)
	if err != nil {
		slog.Error("Failed to load persona catalog", "dir", cfg.Audio.ReferenceDir, "error", err)
		os.Exit(1)
	}

	// 4. Build the Boson client pool
	pool, err := boson.NewPool(cfg.Boson.BaseURL, cfg.Boson.APIKeys)
	if err != nil {
		slog.Error("Failed to build Boson client pool", "error", err)
		os.Exit(1)
	}
	slog.Info("Boson client pool ready", "keys", pool.Size(), "base_url", cfg.Boson.BaseURL)

	// 5. Stores and generators
	scriptQueue := store.NewScriptQueue(redisClient)
	audioQueue := store.NewAudioQueue(redisClient)
	historyLog := store.NewHistoryLog(redisClient)
	interruptStore := store.NewInterruptStore(redisClient)
	messageList := store.NewMessageList(redisClient)

	synth := tts.NewGenerator(pool, personas, tts.Options{
		Model:         cfg.Boson.TTSModel,
		STTModel:      cfg.Boson.STTModel,
		BestOf:        cfg.Audio.BestOf,
		ValidSampling: cfg.Audio.ValidSampling,
		SaveWAV:       cfg.Audio.SaveWAV,
		BestsDir:      cfg.Audio.BestsDir,
		OutputDir:     cfg.Audio.OutputDir,
	})
	rewriter := scriptgen.NewGenerator(pool, personas, cfg.Boson.LLMModel, cfg.Stream.DefaultPersona)

	// 6. Stream processor and state priming
	proc := processor.NewStreamProcessor(scriptQueue, audioQueue, historyLog, interruptStore, synth, rewriter, processor.Options{
		DefaultPersona: cfg.Stream.DefaultPersona,
		DefaultScript:  config.DefaultScript,
		GiftPrompt:     cfg.Stream.GiftPrompt,
	})
	if cfg.Stream.ResetOnBoot {
		if err := proc.ResetState(ctx); err != nil {
			slog.Error("Failed to reset stream state", "error", err)
			os.Exit(1)
		}
		slog.Info("Stream state reset")
	} else {
		if err := proc.EnsureSeeded(ctx); err != nil {
			slog.Error("Failed to seed stream state", "error", err)
			os.Exit(1)
		}
	}

	// 7. Domain services
	audioService := services.NewAudioService(audioQueue)
	interruptService := services.NewInterruptService(interruptStore)
	messageService := services.NewMessageService(messageList, pool, cfg.Boson.LLMModel)
	if err := messageService.SeedIfEmpty(ctx); err != nil {
		slog.Warn("Failed to seed chat messages", "error", err)
	}

	// 8. Start the stream worker (before the HTTP server)
	worker := processor.NewWorker(proc, cfg.Stream.LoopInterval)
	worker.Start(ctx)

	// 9. Start the HTTP server (non-blocking)
	httpServer := api.NewServer(audioService, interruptService, messageService)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Server.HTTPPort
		slog.Info("HTTP server listening", "addr", addr)
		if err := httpServer.Start(addr); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	slog.Info("Calliope started successfully")

	// 10. Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	// 11. Graceful shutdown: stream worker first so the current tick
	// finishes, then the HTTP server with its own timeout budget.
	worker.Stop()
	slog.Info("Stream worker stopped gracefully")

	httpShutdownCtx, httpCancel := context.WithTimeout(ctx, 5*time.Second)
	defer httpCancel()
	if err := httpServer.Shutdown(httpShutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
