package runner

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/vpepe/twentyq/internal/agent"
	"github.com/vpepe/twentyq/internal/domain"
	"github.com/vpepe/twentyq/internal/game"
)

// Plan describes one experiment batch: every model × agent type combination
// is played GamesPerModel times, each game independent of the others.
type Plan struct {
	Models          []string `yaml:"models"`
	AgentTypes      []string `yaml:"agent_types"`
	GamesPerModel   int      `yaml:"games_per_model"`
	MaxWorkers      int      `yaml:"max_workers"`
	GamemasterModel string   `yaml:"gamemaster_model"`
	Theme           string   `yaml:"theme"`
}

// LoadPlan reads an experiment plan from a YAML file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if len(p.Models) == 0 {
		return nil, fmt.Errorf("plan lists no models")
	}
	if len(p.AgentTypes) == 0 {
		p.AgentTypes = []string{agent.KindEIG}
	}
	if p.GamesPerModel < 1 {
		p.GamesPerModel = 1
	}
	if p.MaxWorkers < 1 {
		p.MaxWorkers = 4
	}
	return &p, nil
}

// ResultSink receives each finished game. The Postgres store satisfies this;
// a log-only sink is used when no database is configured.
type ResultSink interface {
	Create(ctx context.Context, r *domain.GameResult) error
}

// LogSink records results through the logger only.
type LogSink struct {
	Logger *zap.Logger
}

func (s *LogSink) Create(ctx context.Context, r *domain.GameResult) error {
	s.Logger.Info("game finished",
		zap.String("id", r.ID.String()),
		zap.String("model", r.Model),
		zap.String("agent_type", r.AgentType),
		zap.Bool("won", r.Won),
		zap.Int("turns", r.Turns),
		zap.Duration("duration", r.Duration),
		zap.String("error", r.Error))
	return nil
}

// GameSetup builds the agent and environment for one game. Injected so tests
// can run the loop against scripted collaborators.
type GameSetup func(model, agentType string) (*agent.Agent, game.Environment, error)

// Runner fans independent games out over a bounded worker pool. Each game
// owns its own agent and environment; nothing is shared across games.
type Runner struct {
	plan   *Plan
	setup  GameSetup
	sink   ResultSink
	logger *zap.Logger
}

func New(plan *Plan, setup GameSetup, sink ResultSink, logger *zap.Logger) *Runner {
	return &Runner{plan: plan, setup: setup, sink: sink, logger: logger}
}

type gameSpec struct {
	model     string
	agentType string
	run       int
}

// RunAll plays every game in the plan and returns the collected results.
// A failed game is recorded with its error and does not stop the batch.
func (r *Runner) RunAll(ctx context.Context) []domain.GameResult {
	var specs []gameSpec
	for _, model := range r.plan.Models {
		for _, at := range r.plan.AgentTypes {
			for run := 1; run <= r.plan.GamesPerModel; run++ {
				specs = append(specs, gameSpec{model: model, agentType: at, run: run})
			}
		}
	}
	r.logger.Info("starting experiment batch",
		zap.Int("games", len(specs)),
		zap.Int("workers", r.plan.MaxWorkers))

	results := make([]domain.GameResult, len(specs))
	sem := make(chan struct{}, r.plan.MaxWorkers)
	var wg sync.WaitGroup
	for i, spec := range specs {
		wg.Add(1)
		go func(i int, spec gameSpec) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result := r.runGame(ctx, spec)
			if err := r.sink.Create(ctx, &result); err != nil {
				r.logger.Error("failed to record game result",
					zap.String("id", result.ID.String()), zap.Error(err))
			}
			results[i] = result
		}(i, spec)
	}
	wg.Wait()
	return results
}

func (r *Runner) runGame(ctx context.Context, spec gameSpec) domain.GameResult {
	result := domain.GameResult{
		ID:              uuid.New(),
		Model:           spec.model,
		GamemasterModel: r.plan.GamemasterModel,
		AgentType:       spec.agentType,
	}

	start := time.Now()
	outcome, turns, err := r.playOne(ctx, spec)
	result.Duration = time.Since(start)
	result.Turns = turns
	if err != nil {
		result.Error = err.Error()
		r.logger.Warn("game failed",
			zap.String("model", spec.model),
			zap.String("agent_type", spec.agentType),
			zap.Int("run", spec.run),
			zap.Error(err))
		return result
	}

	result.Won = outcome.Won
	result.SecretWord = outcome.SecretWord
	return result
}

func (r *Runner) playOne(ctx context.Context, spec gameSpec) (game.Outcome, int, error) {
	a, env, err := r.setup(spec.model, spec.agentType)
	if err != nil {
		return game.Outcome{}, 0, fmt.Errorf("set up game: %w", err)
	}
	if err := env.Reset(ctx); err != nil {
		return game.Outcome{}, 0, fmt.Errorf("reset environment: %w", err)
	}

	turns := 0
	for {
		if err := ctx.Err(); err != nil {
			return game.Outcome{}, turns, err
		}
		action, err := a.Act(ctx, env.History())
		if err != nil {
			return game.Outcome{}, turns, fmt.Errorf("turn %d: %w", turns+1, err)
		}
		turns++
		done, err := env.Step(ctx, action)
		if err != nil {
			return game.Outcome{}, turns, fmt.Errorf("turn %d: %w", turns, err)
		}
		if done {
			return env.Outcome(), turns, nil
		}
	}
}
