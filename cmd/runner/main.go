package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/vpepe/twentyq/internal/agent"
	"github.com/vpepe/twentyq/internal/config"
	"github.com/vpepe/twentyq/internal/game"
	"github.com/vpepe/twentyq/internal/llm"
	"github.com/vpepe/twentyq/internal/oracle"
	"github.com/vpepe/twentyq/internal/runner"
	"github.com/vpepe/twentyq/internal/store"
)

func main() {
	planPath := flag.String("plan", "experiments.yaml", "path to the experiment plan")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	if err := config.Load(); err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	plan, err := runner.LoadPlan(*planPath)
	if err != nil {
		logger.Fatal("failed to load experiment plan", zap.Error(err))
	}
	if plan.GamemasterModel == "" {
		plan.GamemasterModel = config.GamemasterModel()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var sink runner.ResultSink = &runner.LogSink{Logger: logger}
	if dbURL := config.DatabaseURL(); dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		runs := store.NewGameRunStore(pool)
		if err := runs.EnsureSchema(ctx); err != nil {
			logger.Fatal("failed to ensure schema", zap.Error(err))
		}
		logger.Info("recording results to database")
		sink = runs
	}

	provider := config.LLMProvider()
	gm, err := llm.NewClient(provider, config.LLMAPIKey(), plan.GamemasterModel)
	if err != nil {
		logger.Fatal("failed to initialize gamemaster client", zap.Error(err))
	}
	gm = llm.NewRateLimited(gm, config.LLMRPS(), config.RateLimitBurst())

	setup := func(model, agentType string) (*agent.Agent, game.Environment, error) {
		client, err := llm.NewClient(provider, config.LLMAPIKey(), model)
		if err != nil {
			return nil, nil, err
		}
		sampler, err := llm.NewClient(provider, config.LLMAPIKey(), config.SamplingModel())
		if err != nil {
			return nil, nil, err
		}
		client = llm.NewRateLimited(client, config.LLMRPS(), config.RateLimitBurst())
		sampler = llm.NewRateLimited(sampler, config.LLMRPS(), config.RateLimitBurst())

		o := oracle.NewLLMOracle(client, sampler, config.MaxRetries(), logger)
		a := agent.New(o, agent.Config{
			Kind:         agentType,
			Mode:         agent.Mode(config.BeliefMode()),
			Epsilon:      config.Epsilon(),
			BatchSize:    config.QuestionBatch(),
			MaxWorkers:   config.MaxWorkers(),
			MaxQuestions: config.MaxQuestions(),
		}, logger)

		env := game.NewGamemasterEnv(gm, plan.Theme, "", config.MaxQuestions(), logger)
		return a, env, nil
	}

	results := runner.New(plan, setup, sink, logger).RunAll(ctx)

	won := 0
	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		} else if r.Won {
			won++
		}
	}
	logger.Info("experiment batch finished",
		zap.Int("games", len(results)),
		zap.Int("won", won),
		zap.Int("failed", failed))

	if failed == len(results) && len(results) > 0 {
		os.Exit(1)
	}
}
