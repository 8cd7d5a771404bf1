package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vpepe/twentyq/internal/domain"
)

// Mode selects the belief-state lifecycle.
type Mode string

const (
	// ModeEphemeral draws a fresh uniform candidate pool from the oracle at
	// the start of every scoring cycle and discards it afterwards.
	ModeEphemeral Mode = "ephemeral"
	// ModePersistent keeps one weighted pool per game, mutated turn by turn
	// and replenished when weights collapse.
	ModePersistent Mode = "persistent"
)

// BeliefManager owns the persistent candidate pool. It is the only component
// that mutates weights; mutation runs strictly between turns, never
// concurrently with selector workers.
type BeliefManager struct {
	oracle  domain.Oracle
	logger  *zap.Logger
	epsilon float64

	state domain.BeliefState
}

func NewBeliefManager(o domain.Oracle, epsilon float64, logger *zap.Logger) *BeliefManager {
	return &BeliefManager{
		oracle:  o,
		logger:  logger,
		epsilon: epsilon,
	}
}

// State exposes the pool for read-only scoring.
func (m *BeliefManager) State() domain.BeliefState {
	return m.state
}

// Initialize seeds the pool with weight-1 candidates consistent with the
// history so far. A pool with zero candidates leaves the game unplayable.
func (m *BeliefManager) Initialize(ctx context.Context, tc domain.TurnContext) error {
	samples, err := m.oracle.SampleCandidates(ctx, tc)
	if err != nil {
		return fmt.Errorf("initialize belief state: %w", err)
	}
	state := domain.NewBeliefState(samples)
	if len(state) == 0 {
		return fmt.Errorf("initialize belief state: oracle returned zero candidates")
	}
	m.state = state
	m.logger.Debug("belief state initialized", zap.Int("candidates", len(state)))
	return nil
}

// Depleted reports whether any candidate's weight has fallen strictly below
// epsilon. It is the regeneration trigger, not a removal trigger by itself.
func (m *BeliefManager) Depleted() bool {
	for _, w := range m.state {
		if w < m.epsilon {
			return true
		}
	}
	return false
}

// Regenerate prunes candidates below epsilon, merges replacement candidates
// from the oracle, and resets every surviving weight to 1. The full reset
// trades accumulated weight information for a clean restart.
//
// If the oracle cannot produce replacements, the existing pool is kept
// untouched for this turn; it may still be usable.
func (m *BeliefManager) Regenerate(ctx context.Context, tc domain.TurnContext) error {
	fresh, err := m.oracle.SampleCandidates(ctx, tc)
	if err != nil {
		m.logger.Warn("candidate replenishment failed, keeping existing pool", zap.Error(err))
		return nil
	}

	next := make(domain.BeliefState, len(m.state)+len(fresh))
	for cand, w := range m.state {
		if w >= m.epsilon {
			next[cand] = 1
		}
	}
	for _, cand := range fresh {
		next[cand] = 1
	}

	m.logger.Debug("belief state regenerated",
		zap.Int("before", len(m.state)),
		zap.Int("after", len(next)))
	m.state = next
	return nil
}

// ApplyAnswer performs the noisy-channel update once the environment has
// answered the asked question: weights of candidates whose classification
// matches the real answer are multiplied by 1-epsilon, mismatches by epsilon.
// Nothing is ever driven to exactly zero, so one noisy answer cannot
// irrecoverably eliminate a candidate.
func (m *BeliefManager) ApplyAnswer(ctx context.Context, tc domain.TurnContext, question, trueAnswer string) error {
	cm, err := m.oracle.ClassifyConsistency(ctx, tc, question, m.state.Candidates())
	if err != nil {
		return fmt.Errorf("apply answer: %w", err)
	}

	for cand, w := range m.state {
		answer, ok := cm[cand]
		if !ok {
			continue
		}
		if answer == trueAnswer {
			m.state[cand] = w * (1 - m.epsilon)
		} else {
			m.state[cand] = w * m.epsilon
		}
	}
	return nil
}
