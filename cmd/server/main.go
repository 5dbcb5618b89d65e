package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voicejournal/internal/ai"
	"voicejournal/internal/api"
	"voicejournal/internal/auth"
	"voicejournal/internal/config"
	"voicejournal/internal/core"
	"voicejournal/internal/logging"
	"voicejournal/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	// Initialize database store
	dbStore, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer dbStore.Close()

	// The OpenAI client always backs transcription and image generation;
	// conversation and mood follow the configured provider.
	openaiClient := ai.NewOpenAIClient(ai.OpenAIConfig{
		APIKey:          cfg.AI.OpenAIAPIKey,
		BaseURL:         cfg.AI.OpenAIBaseURL,
		ChatModel:       cfg.AI.ChatModel,
		TranscribeModel: cfg.AI.TranscribeModel,
		ImageModel:      cfg.AI.ImageModel,
		Timeout:         cfg.AI.RequestTimeout,
	})

	var chat ai.ChatProvider = openaiClient
	if cfg.AI.Provider == config.ProviderGemini {
		geminiClient, err := ai.NewGeminiClient(context.Background(), cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize gemini client")
		}
		defer geminiClient.Close()
		chat = geminiClient
	}
	log.Info().Str("provider", cfg.AI.Provider).Msg("chat provider initialized")

	// Initialize services
	tokens := auth.NewManager(cfg.JWTSecret, 24*time.Hour)
	accounts := core.NewAccountService(dbStore, tokens)
	journalService := core.NewJournalService(dbStore, chat, openaiClient, openaiClient,
		core.Options{MoodFallbackOnError: cfg.MoodFallbackOnError}, log)
	insightsService := core.NewInsightsService(dbStore)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(accounts, journalService, insightsService, log)
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,  // Audio uploads can be large
		WriteTimeout: 120 * time.Second, // A pipeline run spans several AI calls
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Info().Str("addr", serverAddr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Str("addr", serverAddr).Msg("server failed")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	// Give active connections time to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exiting gracefully")
}
