package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/vpepe/twentyq/internal/agent"
	"github.com/vpepe/twentyq/internal/domain"
	"github.com/vpepe/twentyq/internal/game"
)

// guessOracle always guesses its word immediately.
type guessOracle struct {
	word string
}

func (o *guessOracle) Decide(ctx context.Context, tc domain.TurnContext) (domain.Decision, error) {
	return domain.DecisionGuess, nil
}

func (o *guessOracle) SampleCandidates(ctx context.Context, tc domain.TurnContext) ([]string, error) {
	return []string{o.word}, nil
}

func (o *guessOracle) GenerateQuestions(ctx context.Context, tc domain.TurnContext, k int) ([]string, error) {
	return []string{"Is it alive?"}, nil
}

func (o *guessOracle) ClassifyConsistency(ctx context.Context, tc domain.TurnContext, question string, candidates []string) (domain.ConsistencyMap, error) {
	return domain.ConsistencyMap{}, nil
}

func (o *guessOracle) ProposeMove(ctx context.Context, tc domain.TurnContext) (string, error) {
	return o.word, nil
}

// collectSink gathers results for assertions.
type collectSink struct {
	mu      sync.Mutex
	results []domain.GameResult
}

func (s *collectSink) Create(ctx context.Context, r *domain.GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, *r)
	return nil
}

func TestLoadPlan(t *testing.T) {
	t.Run("reads a full plan", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plan.yaml")
		content := `models:
  - gpt-4o-mini
  - gpt-4o
agent_types:
  - eig
games_per_model: 5
max_workers: 8
gamemaster_model: gpt-4o
theme: household objects
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		p, err := LoadPlan(path)
		if err != nil {
			t.Fatalf("LoadPlan() error = %v", err)
		}
		if len(p.Models) != 2 || p.GamesPerModel != 5 || p.MaxWorkers != 8 {
			t.Errorf("LoadPlan() = %+v, want the values from the file", p)
		}
		if p.Theme != "household objects" {
			t.Errorf("Theme = %q, want %q", p.Theme, "household objects")
		}
	})

	t.Run("applies defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plan.yaml")
		if err := os.WriteFile(path, []byte("models:\n  - gpt-4o-mini\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		p, err := LoadPlan(path)
		if err != nil {
			t.Fatalf("LoadPlan() error = %v", err)
		}
		if len(p.AgentTypes) != 1 || p.AgentTypes[0] != agent.KindEIG {
			t.Errorf("AgentTypes = %v, want default [eig]", p.AgentTypes)
		}
		if p.GamesPerModel != 1 || p.MaxWorkers != 4 {
			t.Errorf("defaults = (%d, %d), want (1, 4)", p.GamesPerModel, p.MaxWorkers)
		}
	})

	t.Run("empty model list is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plan.yaml")
		if err := os.WriteFile(path, []byte("theme: animals\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadPlan(path); err == nil {
			t.Error("LoadPlan() error = nil, want error for empty models")
		}
	})
}

func TestRunAll(t *testing.T) {
	ctx := context.Background()

	newGuessAgent := func(word string) *agent.Agent {
		return agent.New(&guessOracle{word: word}, agent.Config{
			Kind:         agent.KindLLM,
			Epsilon:      0.1,
			MaxQuestions: 20,
		}, zap.NewNop())
	}

	t.Run("plays every model and run combination", func(t *testing.T) {
		plan := &Plan{
			Models:        []string{"m1", "m2"},
			AgentTypes:    []string{agent.KindLLM},
			GamesPerModel: 2,
			MaxWorkers:    2,
			Theme:         "animals",
		}
		setup := func(model, agentType string) (*agent.Agent, game.Environment, error) {
			return newGuessAgent("pencil"), &game.ScriptedEnv{SecretWord: "pencil", Theme: plan.Theme}, nil
		}
		sink := &collectSink{}
		results := New(plan, setup, sink, zap.NewNop()).RunAll(ctx)

		if len(results) != 4 {
			t.Fatalf("len(results) = %d, want 4", len(results))
		}
		if len(sink.results) != 4 {
			t.Errorf("sink received %d results, want 4", len(sink.results))
		}
		perModel := map[string]int{}
		for _, r := range results {
			perModel[r.Model]++
			if !r.Won {
				t.Errorf("result %s not won: %+v", r.ID, r)
			}
			if r.Turns != 1 {
				t.Errorf("Turns = %d, want 1 for an immediate guess", r.Turns)
			}
		}
		if perModel["m1"] != 2 || perModel["m2"] != 2 {
			t.Errorf("games per model = %v, want 2 each", perModel)
		}
	})

	t.Run("a failing game is recorded and does not stop the batch", func(t *testing.T) {
		plan := &Plan{
			Models:        []string{"good", "bad"},
			AgentTypes:    []string{agent.KindLLM},
			GamesPerModel: 1,
			MaxWorkers:    1,
		}
		setup := func(model, agentType string) (*agent.Agent, game.Environment, error) {
			if model == "bad" {
				return nil, nil, errors.New("no such model")
			}
			return newGuessAgent("pencil"), &game.ScriptedEnv{SecretWord: "pencil"}, nil
		}
		sink := &collectSink{}
		results := New(plan, setup, sink, zap.NewNop()).RunAll(ctx)

		if len(results) != 2 {
			t.Fatalf("len(results) = %d, want 2", len(results))
		}
		var won, failed int
		for _, r := range results {
			if r.Won {
				won++
			}
			if r.Error != "" {
				failed++
			}
		}
		if won != 1 || failed != 1 {
			t.Errorf("(won, failed) = (%d, %d), want (1, 1)", won, failed)
		}
	})

	t.Run("a lost game is recorded without an error", func(t *testing.T) {
		plan := &Plan{
			Models:        []string{"m1"},
			AgentTypes:    []string{agent.KindLLM},
			GamesPerModel: 1,
			MaxWorkers:    1,
		}
		setup := func(model, agentType string) (*agent.Agent, game.Environment, error) {
			return newGuessAgent("giraffe"), &game.ScriptedEnv{SecretWord: "pencil"}, nil
		}
		sink := &collectSink{}
		results := New(plan, setup, sink, zap.NewNop()).RunAll(ctx)

		if len(results) != 1 {
			t.Fatalf("len(results) = %d, want 1", len(results))
		}
		if results[0].Won {
			t.Error("Won = true, want false for a wrong guess")
		}
		if results[0].Error != "" {
			t.Errorf("Error = %q, want empty for a cleanly lost game", results[0].Error)
		}
		if results[0].SecretWord != "pencil" {
			t.Errorf("SecretWord = %q, want %q", results[0].SecretWord, "pencil")
		}
	})
}
