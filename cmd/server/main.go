package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vpepe/twentyq/internal/agent"
	"github.com/vpepe/twentyq/internal/api"
	"github.com/vpepe/twentyq/internal/config"
	"github.com/vpepe/twentyq/internal/llm"
	"github.com/vpepe/twentyq/internal/oracle"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	if err := config.Load(); err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	provider := config.LLMProvider()
	client, err := llm.NewClient(provider, config.LLMAPIKey(), config.LLMModel())
	if err != nil {
		logger.Fatal("failed to initialize LLM client", zap.String("provider", provider), zap.Error(err))
	}
	sampler, err := llm.NewClient(provider, config.LLMAPIKey(), config.SamplingModel())
	if err != nil {
		logger.Fatal("failed to initialize sampling client", zap.String("provider", provider), zap.Error(err))
	}
	client = llm.NewRateLimited(client, config.LLMRPS(), config.RateLimitBurst())
	sampler = llm.NewRateLimited(sampler, config.LLMRPS(), config.RateLimitBurst())
	logger.Info("LLM clients initialized",
		zap.String("provider", provider),
		zap.String("model", config.LLMModel()),
		zap.String("sampling_model", config.SamplingModel()))

	agentCfg := agent.Config{
		Kind:         config.AgentType(),
		Mode:         agent.Mode(config.BeliefMode()),
		Epsilon:      config.Epsilon(),
		BatchSize:    config.QuestionBatch(),
		MaxWorkers:   config.MaxWorkers(),
		MaxQuestions: config.MaxQuestions(),
	}
	newAgent := func() *agent.Agent {
		o := oracle.NewLLMOracle(client, sampler, config.MaxRetries(), logger)
		return agent.New(o, agentCfg, logger)
	}

	app := api.NewApp(newAgent, logger)

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:    addr,
		Handler: app.Router,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
