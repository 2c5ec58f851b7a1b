package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"vibe_demo_server/api"
	"vibe_demo_server/config"
	"vibe_demo_server/internal/ai"
	"vibe_demo_server/internal/ai/prompts"
	handlers "vibe_demo_server/internal/api"
	"vibe_demo_server/internal/cron"
	"vibe_demo_server/internal/demo"
	"vibe_demo_server/internal/images"
	"vibe_demo_server/internal/logger"
	"vibe_demo_server/internal/promptstore"
	"vibe_demo_server/internal/ratelimit"
	"vibe_demo_server/internal/session"
	"vibe_demo_server/internal/store"
	"vibe_demo_server/internal/tutorial"
)

func main() {
	// --- Load .env file ---
	// Must happen before viper reads the environment. A missing file is normal
	// in production.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("error loading .env file")
	}

	// --- Configuration Loading ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logg, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot build logger")
	}
	if err := cfg.Validate(); err != nil {
		logg.Fatal().Err(err).Msg("invalid config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Dependency Initialization ---

	// Postgres
	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logg.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()
	if err := store.Migrate(ctx, db); err != nil {
		logg.Fatal().Err(err).Msg("database migration failed")
	}

	demoRepo := store.NewDemoRepository(db)
	promptRepo := store.NewPromptRepository(db)
	emailRepo := store.NewEmailRepository(db)
	pushRepo := store.NewPushRepository(db)

	// Prompt versions, seeded with the built-in prompt on first start
	promptStore := promptstore.New(promptRepo, cfg.PromptCacheTTL, logg)
	if err := promptStore.SeedIfEmpty(ctx, prompts.DefaultSystemPrompt); err != nil {
		logg.Warn().Err(err).Msg("failed to seed prompt versions")
	}

	// Image search
	pixabay := images.NewPixabay(cfg.PixabayKey, "", cfg.ImageSearchTimeout, logg)
	defer pixabay.Close()
	resolver := images.NewResolver(pixabay, cfg.ImageBatchSize, logg)

	// AI client
	generator := ai.NewGenerator(
		ai.NewOpenAIClient(cfg.OpenAIKey, ""),
		promptStore,
		resolver,
		ai.Options{
			Model:       cfg.OpenAIModel,
			MaxTokens:   cfg.OpenAIMaxTokens,
			Temperature: cfg.OpenAITemperature,
		},
		logg,
	)

	limiter := ratelimit.New(
		ratelimit.WithMax(cfg.RateLimitMax),
		ratelimit.WithWindow(cfg.RateLimitWindow),
	)

	demoService := demo.NewService(demoRepo, generator, limiter, demo.Options{
		TTL:             cfg.DemoTTL,
		MaxTweaks:       cfg.MaxTweaks,
		RateLimitTweaks: cfg.RateLimitTweaks,
		PublicBaseURL:   cfg.PublicBaseURL,
	}, logg)

	outline, err := tutorial.Load()
	if err != nil {
		logg.Fatal().Err(err).Msg("cannot load tutorial outline")
	}

	apiHandler := handlers.NewAPIHandler(handlers.Deps{
		Demos:      demoService,
		Prompts:    promptStore,
		Emails:     emailRepo,
		Pushes:     pushRepo,
		Sessions:   session.NewManager(cfg.SessionSecret, cfg.SessionTTL, cfg.SessionMaxIDs, cfg.CookieSecure),
		Tutorial:   outline,
		Log:        logg,
		CronSecret: cfg.CronSecret,
		AdminToken: cfg.AdminToken,
	})

	// --- Start Services ---

	// In-process expiry sweep
	sweeper := cron.NewCrontab(demoService, cfg.CleanupSchedule, logg)
	cronDone := make(chan struct{})
	go func() {
		defer close(cronDone)
		if err := sweeper.Run(ctx); err != nil {
			logg.Error().Err(err).Msg("expiry sweep stopped")
		}
	}()

	// API server
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	if err := handlers.TrustProxies(router, cfg.TrustedProxies); err != nil {
		logg.Fatal().Err(err).Msg("invalid TRUSTED_PROXIES")
	}
	router.Use(
		handlers.RequestID(),
		handlers.Logging(logg),
		handlers.Metrics(),
		gin.Recovery(),
	)
	api.RegisterRoutes(router, apiHandler)

	server := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: router,
		// Generation can take a while; the write timeout leaves room for it.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logg.Info().Str("addr", cfg.ServerAddress).Msg("starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal().Err(err).Msg("API server listen error")
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logg.Info().Str("signal", sig.String()).Msg("shutting down")

	shutdownCtx, serverCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer serverCancel()

	cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error().Err(err).Msg("API server forced shutdown")
	} else {
		logg.Info().Msg("API server gracefully stopped")
	}
	<-cronDone

	logg.Info().Msg("application exiting")
}
