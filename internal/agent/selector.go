package agent

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/vpepe/twentyq/internal/domain"
)

const (
	// minScoringWorkers is the pool floor even for tiny batches.
	minScoringWorkers = 4
	// maxSelectionCycles bounds how often an ephemeral scoring cycle is
	// re-run when the oracle's responses are empty or unparsable.
	maxSelectionCycles = 5
)

// Selector generates a batch of candidate questions, scores each by expected
// information gain against the candidate pool, and picks the best one.
type Selector struct {
	oracle     domain.Oracle
	logger     *zap.Logger
	epsilon    float64
	batchSize  int
	maxWorkers int
}

func NewSelector(o domain.Oracle, epsilon float64, batchSize, maxWorkers int, logger *zap.Logger) *Selector {
	if maxWorkers < 1 {
		maxWorkers = minScoringWorkers
	}
	return &Selector{
		oracle:     o,
		logger:     logger,
		epsilon:    epsilon,
		batchSize:  batchSize,
		maxWorkers: maxWorkers,
	}
}

// SelectEphemeral runs the full cycle: sample a fresh uniform pool, request a
// question batch, score and pick. Empty or unparsable oracle output retries
// the whole cycle from scratch, discarding the rejected batch entirely.
func (s *Selector) SelectEphemeral(ctx context.Context, tc domain.TurnContext) (string, error) {
	for cycle := 0; cycle < maxSelectionCycles; cycle++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		samples, err := s.oracle.SampleCandidates(ctx, tc)
		if err != nil || len(samples) == 0 {
			s.logger.Warn("candidate sampling produced nothing, retrying cycle",
				zap.Int("cycle", cycle), zap.Error(err))
			continue
		}
		state := domain.NewBeliefState(samples)

		questions, err := s.oracle.GenerateQuestions(ctx, tc, s.batchSize)
		if err != nil || len(questions) == 0 {
			s.logger.Warn("question batch produced nothing, retrying cycle",
				zap.Int("cycle", cycle), zap.Error(err))
			continue
		}

		return s.pick(ctx, tc, state, questions)
	}
	return "", fmt.Errorf("question selection failed after %d cycles", maxSelectionCycles)
}

// SelectPersistent scores against the long-lived weighted pool. Questions are
// generated one at a time up to the batch size, without refreshing candidates
// per question.
func (s *Selector) SelectPersistent(ctx context.Context, tc domain.TurnContext, state domain.BeliefState) (string, error) {
	var questions []string
	for i := 0; i < s.batchSize; i++ {
		qs, err := s.oracle.GenerateQuestions(ctx, tc, 1)
		if err != nil {
			if len(questions) == 0 {
				return "", err
			}
			s.logger.Warn("question generation failed mid-batch, scoring partial batch",
				zap.Int("have", len(questions)), zap.Error(err))
			break
		}
		questions = append(questions, qs...)
	}

	return s.pick(ctx, tc, state, questions)
}

// pick scores every question concurrently, joins, and returns the first
// question with the strictly maximal finite score.
func (s *Selector) pick(ctx context.Context, tc domain.TurnContext, state domain.BeliefState, questions []string) (string, error) {
	if len(questions) == 0 {
		return "", fmt.Errorf("no questions to score")
	}
	scores, err := s.scoreAll(ctx, tc, state, questions)
	if err != nil {
		return "", err
	}

	s.logger.Debug("question scores",
		zap.Strings("questions", questions),
		zap.Float64s("eig", scores))

	best := -1
	for i, sc := range scores {
		if math.IsNaN(sc) {
			continue
		}
		if best == -1 || sc > scores[best] {
			best = i
		}
	}
	if best == -1 {
		// Every score was a protocol violation; the turn still needs an action.
		s.logger.Warn("all question scores were NaN, falling back to first question")
		return questions[0], nil
	}
	return questions[best], nil
}

// scoreAll fans the per-question evaluations out over a bounded worker pool.
// Workers only read the fixed pool and write their own slot; the wait is the
// join-all barrier before ranking.
func (s *Selector) scoreAll(ctx context.Context, tc domain.TurnContext, state domain.BeliefState, questions []string) ([]float64, error) {
	workers := len(questions)
	if workers < minScoringWorkers {
		workers = minScoringWorkers
	}
	if workers > s.maxWorkers {
		workers = s.maxWorkers
	}

	candidates := state.Candidates()
	scores := make([]float64, len(questions))
	errs := make([]error, len(questions))

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, q := range questions {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			cm, err := s.oracle.ClassifyConsistency(ctx, tc, q, candidates)
			if err != nil {
				errs[i] = err
				return
			}
			scores[i] = ExpectedInformationGain(state, cm, s.epsilon)
		}(i, q)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("score question %q: %w", questions[i], err)
		}
	}
	return scores, nil
}
