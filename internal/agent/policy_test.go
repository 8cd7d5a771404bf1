package agent

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/vpepe/twentyq/internal/domain"
)

func llmAgent(o domain.Oracle) *Agent {
	return New(o, Config{
		Kind:         KindLLM,
		Epsilon:      0.1,
		BatchSize:    3,
		MaxWorkers:   8,
		MaxQuestions: 20,
	}, zap.NewNop())
}

func TestAgentForcedGuess(t *testing.T) {
	ctx := context.Background()
	o := &mockOracle{
		decideFn: func(tc domain.TurnContext) (domain.Decision, error) {
			return domain.DecisionQuestion, nil
		},
		moveFn: func(tc domain.TurnContext) (string, error) {
			return "elephant", nil
		},
	}
	a := llmAgent(o)

	// 20 player turns already taken: the budget is gone.
	var history []domain.HistoryEntry
	history = append(history, domain.HistoryEntry{Speaker: domain.SpeakerGame, Message: "Welcome."})
	for i := 0; i < 20; i++ {
		history = append(history,
			domain.HistoryEntry{Speaker: domain.SpeakerPlayer, Message: "Is it alive?"},
			domain.HistoryEntry{Speaker: domain.SpeakerGame, Message: "No."})
	}

	action, err := a.Act(ctx, history)
	if err != nil {
		t.Fatalf("Act() error = %v", err)
	}
	if action != "[elephant]" {
		t.Errorf("Act() = %q, want forced guess %q", action, "[elephant]")
	}
	if o.decideCalls != 0 {
		t.Errorf("decide calls = %d, want 0 at exhausted budget", o.decideCalls)
	}
}

func TestAgentGuessBrackets(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		move string
		want string
	}{
		{"bare move gets brackets", "elephant", "[elephant]"},
		{"bracketed move kept as is", "[elephant]", "[elephant]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &mockOracle{
				decideFn: func(tc domain.TurnContext) (domain.Decision, error) {
					return domain.DecisionGuess, nil
				},
				moveFn: func(tc domain.TurnContext) (string, error) {
					return tt.move, nil
				},
			}
			action, err := llmAgent(o).Act(ctx, nil)
			if err != nil {
				t.Fatalf("Act() error = %v", err)
			}
			if action != tt.want {
				t.Errorf("Act() = %q, want %q", action, tt.want)
			}
		})
	}
}

func TestAgentQuestionTurn(t *testing.T) {
	ctx := context.Background()
	o := &mockOracle{
		questionsFn: func(tc domain.TurnContext, k int) ([]string, error) {
			if k != 1 {
				t.Errorf("GenerateQuestions k = %d, want 1 for llm agent", k)
			}
			return []string{"Is it bigger than a car?"}, nil
		},
	}
	action, err := llmAgent(o).Act(ctx, nil)
	if err != nil {
		t.Fatalf("Act() error = %v", err)
	}
	if action != "Is it bigger than a car?" {
		t.Errorf("Act() = %q, want the generated question", action)
	}
	if o.moveCalls != 0 {
		t.Errorf("move calls = %d, want 0 on a question turn", o.moveCalls)
	}
}

func TestAgentEIGQuestionTurn(t *testing.T) {
	ctx := context.Background()
	o := &mockOracle{
		questionsFn: func(tc domain.TurnContext, k int) ([]string, error) {
			return []string{"q1", "q2"}, nil
		},
		classifyFn: splitConsistency(map[string]domain.ConsistencyMap{
			"q1": {"apple": "yes", "car": "yes"},
			"q2": {"apple": "yes", "car": "no"},
		}),
	}
	a := New(o, Config{
		Kind:         KindEIG,
		Mode:         ModeEphemeral,
		Epsilon:      0.1,
		BatchSize:    2,
		MaxWorkers:   8,
		MaxQuestions: 20,
	}, zap.NewNop())

	action, err := a.Act(ctx, nil)
	if err != nil {
		t.Fatalf("Act() error = %v", err)
	}
	if action != "q2" {
		t.Errorf("Act() = %q, want the highest-EIG question %q", action, "q2")
	}
}

func TestAgentPersistentBeliefLifecycle(t *testing.T) {
	ctx := context.Background()
	o := &mockOracle{
		samplesFn: func(tc domain.TurnContext) ([]string, error) {
			return []string{"apple", "car"}, nil
		},
		questionsFn: func(tc domain.TurnContext, k int) ([]string, error) {
			return []string{"Is it alive?"}, nil
		},
		classifyFn: func(tc domain.TurnContext, question string, candidates []string) (domain.ConsistencyMap, error) {
			return domain.ConsistencyMap{"apple": "yes", "car": "no"}, nil
		},
	}
	a := New(o, Config{
		Kind:         KindEIG,
		Mode:         ModePersistent,
		Epsilon:      0.1,
		BatchSize:    1,
		MaxWorkers:   8,
		MaxQuestions: 20,
	}, zap.NewNop())

	history := []domain.HistoryEntry{{Speaker: domain.SpeakerGame, Message: "Welcome."}}
	question, err := a.Act(ctx, history)
	if err != nil {
		t.Fatalf("first Act() error = %v", err)
	}
	if question != "Is it alive?" {
		t.Fatalf("first Act() = %q, want the selected question", question)
	}
	if o.samplesCalls != 1 {
		t.Errorf("sample calls after first turn = %d, want 1 (initialize only)", o.samplesCalls)
	}

	// The environment answers "yes": apple matches, car does not.
	history = append(history,
		domain.HistoryEntry{Speaker: domain.SpeakerPlayer, Message: question},
		domain.HistoryEntry{Speaker: domain.SpeakerGame, Message: "Yes."})

	if _, err := a.Act(ctx, history); err != nil {
		t.Fatalf("second Act() error = %v", err)
	}

	state := a.beliefs.State()
	if got := state["apple"]; !closeTo(got, 0.9) {
		t.Errorf("state[\"apple\"] = %v, want 0.9 after matching answer", got)
	}
	if got := state["car"]; !closeTo(got, 0.1) {
		t.Errorf("state[\"car\"] = %v, want 0.1 after mismatch", got)
	}
}

func TestLatestGameAnswer(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want string
	}{
		{"plain yes", "Yes.", "yes"},
		{"yes with elaboration", "Yes, it is.", "yes"},
		{"plain no", "No.", "no"},
		{"no with elaboration", "No, it is not a living thing.", "no"},
		{"not an answer", "Correct! You win.", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := []domain.HistoryEntry{
				{Speaker: domain.SpeakerPlayer, Message: "Is it alive?"},
				{Speaker: domain.SpeakerGame, Message: tt.msg},
			}
			if got := latestGameAnswer(history); got != tt.want {
				t.Errorf("latestGameAnswer(%q) = %q, want %q", tt.msg, got, tt.want)
			}
		})
	}
}
