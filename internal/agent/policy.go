package agent

import (
	"context"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/vpepe/twentyq/internal/domain"
)

// Kind selects how the agent comes up with its question each turn.
const (
	// KindLLM asks the oracle for a single question directly.
	KindLLM = "llm"
	// KindEIG scores a batch of candidate questions by expected information
	// gain and asks the best one.
	KindEIG = "eig"
)

// turnState is the per-turn phase of the decision policy.
type turnState int

const (
	stateDeciding turnState = iota
	stateQuestioning
	stateGuessing
	stateDone
)

// Config assembles one agent instance.
type Config struct {
	Kind         string  // llm or eig
	Mode         Mode    // ephemeral or persistent (eig only)
	Epsilon      float64 // answer-channel noise, in (0, 0.5)
	BatchSize    int     // candidate questions scored per turn
	MaxWorkers   int     // concurrent scoring calls
	MaxQuestions int     // the agent's own turn budget
}

// Agent is the per-game turn decision policy. It owns the turn loop and is
// the only component that asks the oracle for decisions and moves. Apart from
// the persistent belief pool (owned by the BeliefManager) it holds no state
// the environment-provided history does not encode.
type Agent struct {
	oracle   domain.Oracle
	selector *Selector
	beliefs  *BeliefManager
	logger   *zap.Logger
	cfg      Config

	state           turnState
	initialized     bool
	pendingQuestion string
}

func New(o domain.Oracle, cfg Config, logger *zap.Logger) *Agent {
	a := &Agent{
		oracle: o,
		logger: logger,
		cfg:    cfg,
		state:  stateDeciding,
	}
	if cfg.Kind == KindEIG {
		a.selector = NewSelector(o, cfg.Epsilon, cfg.BatchSize, cfg.MaxWorkers, logger)
		if cfg.Mode == ModePersistent {
			a.beliefs = NewBeliefManager(o, cfg.Epsilon, logger)
		}
	}
	return a
}

// Act produces the agent's action for the current turn: either a bare yes/no
// question or a final guess wrapped in brackets.
func (a *Agent) Act(ctx context.Context, history []domain.HistoryEntry) (string, error) {
	asked := domain.CountPlayerTurns(history)
	remaining := a.cfg.MaxQuestions - asked
	if remaining < 0 {
		remaining = 0
	}
	tc := domain.TurnContext{
		History:            domain.FormatHistory(history),
		RemainingQuestions: remaining,
	}

	if a.beliefs != nil {
		if err := a.maintainBeliefs(ctx, tc, history); err != nil {
			return "", err
		}
	}

	a.state = stateDeciding
	decision := domain.DecisionGuess
	if remaining > 0 {
		d, err := a.oracle.Decide(ctx, tc)
		if err != nil {
			return "", err
		}
		decision = d
	}

	// Budget exhaustion is authoritative: at zero remaining questions the
	// oracle is never consulted and the only legal move is a guess.
	if decision == domain.DecisionGuess || remaining == 0 {
		a.state = stateGuessing
		move, err := a.oracle.ProposeMove(ctx, tc)
		if err != nil {
			return "", err
		}
		a.state = stateDone
		return bracketGuess(move), nil
	}

	a.state = stateQuestioning
	question, err := a.nextQuestion(ctx, tc)
	if err != nil {
		return "", err
	}
	a.pendingQuestion = question
	a.state = stateDeciding
	return question, nil
}

// maintainBeliefs runs the persistent-pool upkeep strictly between scoring
// cycles: seed on the first turn, fold in the answer to the previously asked
// question, regenerate when depleted.
func (a *Agent) maintainBeliefs(ctx context.Context, tc domain.TurnContext, history []domain.HistoryEntry) error {
	if !a.initialized {
		if err := a.beliefs.Initialize(ctx, tc); err != nil {
			return err
		}
		a.initialized = true
		return nil
	}

	if a.pendingQuestion == "" {
		return nil
	}
	question := a.pendingQuestion
	a.pendingQuestion = ""

	answer := latestGameAnswer(history)
	if answer == "" {
		a.logger.Warn("no yes/no answer found for asked question, skipping update",
			zap.String("question", question))
		return nil
	}
	if err := a.beliefs.ApplyAnswer(ctx, tc, question, answer); err != nil {
		return err
	}
	if a.beliefs.Depleted() {
		return a.beliefs.Regenerate(ctx, tc)
	}
	return nil
}

func (a *Agent) nextQuestion(ctx context.Context, tc domain.TurnContext) (string, error) {
	if a.cfg.Kind == KindLLM {
		qs, err := a.oracle.GenerateQuestions(ctx, tc, 1)
		if err != nil {
			return "", err
		}
		return qs[0], nil
	}
	if a.beliefs != nil {
		return a.selector.SelectPersistent(ctx, tc, a.beliefs.State())
	}
	return a.selector.SelectEphemeral(ctx, tc)
}

// bracketGuess wraps a final guess in the single pair of enclosing brackets
// the environment's action format requires, unless the oracle already did.
func bracketGuess(move string) string {
	if strings.HasPrefix(move, "[") && strings.HasSuffix(move, "]") {
		return move
	}
	return "[" + move + "]"
}

// latestGameAnswer extracts the yes/no verdict from the most recent game
// message, e.g. "Yes." or "No, it is not.".
func latestGameAnswer(history []domain.HistoryEntry) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Speaker != domain.SpeakerGame {
			continue
		}
		fields := strings.FieldsFunc(domain.Canonical(history[i].Message), func(r rune) bool {
			return !unicode.IsLetter(r)
		})
		if len(fields) == 0 {
			return ""
		}
		switch fields[0] {
		case domain.AnswerYes:
			return domain.AnswerYes
		case domain.AnswerNo:
			return domain.AnswerNo
		}
		return ""
	}
	return ""
}
