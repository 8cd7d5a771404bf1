package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vpepe/twentyq/internal/domain"
)

// ErrRetriesExhausted means the responder kept producing replies that failed
// both the strict and the fallback parse. The call site cannot safely proceed.
var ErrRetriesExhausted = errors.New("retries exhausted")

// LLMOracle answers all oracle requests by prompting chat models. Decisions,
// questions and moves go through the primary client; candidate sampling and
// consistency classification go through a dedicated sampling client, which may
// be a stronger model.
type LLMOracle struct {
	client     domain.LLMClient
	sampler    domain.LLMClient
	logger     *zap.Logger
	maxRetries int
}

func NewLLMOracle(client, sampler domain.LLMClient, maxRetries int, logger *zap.Logger) *LLMOracle {
	if sampler == nil {
		sampler = client
	}
	return &LLMOracle{
		client:     client,
		sampler:    sampler,
		logger:     logger,
		maxRetries: maxRetries,
	}
}

// withRetries issues the identical prompt until accept succeeds or the retry
// budget runs out. Rejected replies are discarded entirely; there is no
// contextual carry-over between attempts.
func (o *LLMOracle) withRetries(ctx context.Context, client domain.LLMClient, prompt, what string, accept func(content string) error) error {
	var lastErr error
	for attempt := 0; attempt < o.maxRetries; attempt++ {
		resp, err := client.Complete(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			o.logger.Warn("oracle call failed",
				zap.String("what", what),
				zap.Int("attempt", attempt),
				zap.Error(err))
			lastErr = err
			continue
		}

		content, ok := extractAnswer(resp)
		if !ok {
			o.logger.Warn("no answer region in oracle reply",
				zap.String("what", what),
				zap.Int("attempt", attempt))
			lastErr = fmt.Errorf("no <answer> region in reply")
			continue
		}

		if err := accept(content); err != nil {
			o.logger.Warn("failed to parse oracle reply",
				zap.String("what", what),
				zap.Int("attempt", attempt),
				zap.Error(err))
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("%s after %d attempts: %w (last error: %v)", what, o.maxRetries, ErrRetriesExhausted, lastErr)
}

func (o *LLMOracle) Decide(ctx context.Context, tc domain.TurnContext) (domain.Decision, error) {
	prompt := fmt.Sprintf(decisionPrompt, fmt.Sprintf(basePrompt, tc.History), tc.RemainingQuestions)

	var decision domain.Decision
	err := o.withRetries(ctx, o.client, prompt, "decide", func(content string) error {
		switch domain.Canonical(content) {
		case string(domain.DecisionQuestion):
			decision = domain.DecisionQuestion
		case string(domain.DecisionGuess):
			decision = domain.DecisionGuess
		default:
			return fmt.Errorf("unexpected decision %q", content)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return decision, nil
}

func (o *LLMOracle) SampleCandidates(ctx context.Context, tc domain.TurnContext) ([]string, error) {
	prompt := fmt.Sprintf(samplesPrompt, fmt.Sprintf(basePrompt, tc.History))

	var candidates []string
	err := o.withRetries(ctx, o.sampler, prompt, "sample candidates", func(content string) error {
		values, err := parseStringList(content)
		if err != nil {
			return err
		}
		candidates = candidates[:0]
		for _, v := range values {
			if c := domain.Canonical(v); c != "" {
				candidates = append(candidates, c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	o.logger.Debug("sampled candidates", zap.Int("count", len(candidates)))
	return candidates, nil
}

func (o *LLMOracle) GenerateQuestions(ctx context.Context, tc domain.TurnContext, k int) ([]string, error) {
	if k == 1 {
		return o.generateSingleQuestion(ctx, tc)
	}

	prompt := fmt.Sprintf(batchQuestionPrompt, fmt.Sprintf(basePrompt, tc.History), k, tc.RemainingQuestions)

	var questions []string
	err := o.withRetries(ctx, o.client, prompt, "generate questions", func(content string) error {
		values, err := parseStringList(content)
		if err != nil {
			return err
		}
		questions = questions[:0]
		for _, v := range values {
			if q := strings.TrimSpace(v); q != "" {
				questions = append(questions, q)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	o.logger.Debug("generated question batch", zap.Int("count", len(questions)))
	return questions, nil
}

func (o *LLMOracle) generateSingleQuestion(ctx context.Context, tc domain.TurnContext) ([]string, error) {
	prompt := fmt.Sprintf(questionPrompt, fmt.Sprintf(basePrompt, tc.History), tc.RemainingQuestions)

	var question string
	err := o.withRetries(ctx, o.client, prompt, "generate question", func(content string) error {
		if content == "" {
			return fmt.Errorf("empty question")
		}
		question = content
		return nil
	})
	if err != nil {
		return nil, err
	}
	return []string{question}, nil
}

func (o *LLMOracle) ClassifyConsistency(ctx context.Context, tc domain.TurnContext, question string, candidates []string) (domain.ConsistencyMap, error) {
	quoted := make([]string, len(candidates))
	for i, c := range candidates {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	objects := "[" + strings.Join(quoted, ", ") + "]"
	prompt := fmt.Sprintf(consistencyPrompt, fmt.Sprintf(basePrompt, tc.History), question, objects)

	var cm domain.ConsistencyMap
	err := o.withRetries(ctx, o.sampler, prompt, "classify consistency", func(content string) error {
		raw, err := parseStringMap(content)
		if err != nil {
			return err
		}
		cm = make(domain.ConsistencyMap, len(raw))
		for k, v := range raw {
			cm[domain.Canonical(k)] = strings.TrimSpace(v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cm, nil
}

func (o *LLMOracle) ProposeMove(ctx context.Context, tc domain.TurnContext) (string, error) {
	prompt := fmt.Sprintf(movePrompt, fmt.Sprintf(basePrompt, tc.History))

	var move string
	err := o.withRetries(ctx, o.client, prompt, "propose move", func(content string) error {
		if content == "" {
			return fmt.Errorf("empty move")
		}
		move = content
		return nil
	})
	if err != nil {
		return "", err
	}
	return move, nil
}
