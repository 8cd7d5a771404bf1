package agent

import (
	"context"
	"sync"

	"github.com/vpepe/twentyq/internal/domain"
)

// mockOracle implements domain.Oracle for testing. Set the function fields to
// control behavior; unset fields return benign defaults.
type mockOracle struct {
	mu sync.Mutex

	decideFn    func(tc domain.TurnContext) (domain.Decision, error)
	samplesFn   func(tc domain.TurnContext) ([]string, error)
	questionsFn func(tc domain.TurnContext, k int) ([]string, error)
	classifyFn  func(tc domain.TurnContext, question string, candidates []string) (domain.ConsistencyMap, error)
	moveFn      func(tc domain.TurnContext) (string, error)

	// Call tracking for assertions
	decideCalls   int
	samplesCalls  int
	questionCalls []int
	classifyCalls []string
	moveCalls     int
}

func (m *mockOracle) Decide(ctx context.Context, tc domain.TurnContext) (domain.Decision, error) {
	m.mu.Lock()
	m.decideCalls++
	m.mu.Unlock()
	if m.decideFn != nil {
		return m.decideFn(tc)
	}
	return domain.DecisionQuestion, nil
}

func (m *mockOracle) SampleCandidates(ctx context.Context, tc domain.TurnContext) ([]string, error) {
	m.mu.Lock()
	m.samplesCalls++
	m.mu.Unlock()
	if m.samplesFn != nil {
		return m.samplesFn(tc)
	}
	return []string{"apple", "car"}, nil
}

func (m *mockOracle) GenerateQuestions(ctx context.Context, tc domain.TurnContext, k int) ([]string, error) {
	m.mu.Lock()
	m.questionCalls = append(m.questionCalls, k)
	m.mu.Unlock()
	if m.questionsFn != nil {
		return m.questionsFn(tc, k)
	}
	return []string{"Is it alive?"}, nil
}

func (m *mockOracle) ClassifyConsistency(ctx context.Context, tc domain.TurnContext, question string, candidates []string) (domain.ConsistencyMap, error) {
	m.mu.Lock()
	m.classifyCalls = append(m.classifyCalls, question)
	m.mu.Unlock()
	if m.classifyFn != nil {
		return m.classifyFn(tc, question, candidates)
	}
	cm := make(domain.ConsistencyMap, len(candidates))
	for _, c := range candidates {
		cm[c] = domain.AnswerYes
	}
	return cm, nil
}

func (m *mockOracle) ProposeMove(ctx context.Context, tc domain.TurnContext) (string, error) {
	m.mu.Lock()
	m.moveCalls++
	m.mu.Unlock()
	if m.moveFn != nil {
		return m.moveFn(tc)
	}
	return "elephant", nil
}
