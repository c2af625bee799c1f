package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Psianturi/flexifit/internal/api"
	"github.com/Psianturi/flexifit/internal/coach"
	"github.com/Psianturi/flexifit/internal/config"
	"github.com/Psianturi/flexifit/internal/gateway"
	"github.com/Psianturi/flexifit/internal/trace"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if cfg.APIKey() == "" {
		log.Fatalf("no API key configured for provider %s (set GOOGLE_API_KEY, OPENAI_API_KEY, or ANTHROPIC_API_KEY)", cfg.Provider)
	}

	llm, err := gateway.New(context.Background(), gateway.Config{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey(),
		BaseURL:  cfg.BaseURL(),
		System:   coach.SystemInstruction,
	})
	if err != nil {
		log.Fatalf("init completion gateway: %v", err)
	}
	logger.Info("completion gateway ready", "provider", cfg.Provider, "model", cfg.Model)

	svc := coach.NewService(llm, coach.Options{
		RetryEnabled:   cfg.RetryOnLowEmpathy,
		RetryThreshold: cfg.RetryEmpathyThreshold,
		PromptVersion:  cfg.PromptVersion,
	}, logger, trace.Slog{Logger: logger})

	handler := api.NewHandler(svc, api.HealthInfo{
		Provider:       cfg.Provider,
		Model:          cfg.Model,
		RetryEnabled:   cfg.RetryOnLowEmpathy,
		RetryThreshold: cfg.RetryEmpathyThreshold,
	}, logger)

	router := gin.Default()
	router.Use(api.CORS(cfg.CORSOrigins))
	handler.RegisterRoutes(router)

	if err := router.Run(cfg.ServerAddress); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
