package domain

import "context"

// LLMClient is a minimal completion interface over a chat model. Implementations
// live in internal/llm.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Oracle is the external responder the agent consults every turn. It holds no
// state; every method is pure request/response and may fail, in which case the
// caller decides whether the turn can proceed.
type Oracle interface {
	// Decide asks whether to keep questioning or commit to a final guess.
	Decide(ctx context.Context, tc TurnContext) (Decision, error)

	// SampleCandidates proposes answer candidates consistent with every
	// question/answer pair already in the history.
	SampleCandidates(ctx context.Context, tc TurnContext) ([]string, error)

	// GenerateQuestions proposes up to k yes/no questions in one batch.
	GenerateQuestions(ctx context.Context, tc TurnContext, k int) ([]string, error)

	// ClassifyConsistency maps each candidate to the answer ("yes"/"no") the
	// given question would receive if that candidate were the secret word.
	ClassifyConsistency(ctx context.Context, tc TurnContext, question string, candidates []string) (ConsistencyMap, error)

	// ProposeMove renders the final guess, free-form.
	ProposeMove(ctx context.Context, tc TurnContext) (string, error)
}
