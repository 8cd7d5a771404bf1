package game

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/vpepe/twentyq/internal/domain"
)

const pickWordPrompt = `You are the gamemaster of a game of 20 Questions. Choose a secret word for the player to guess. The word must fit the theme "%s" and be one or two words long. Respond with only the word, wrapped in <answer></answer> tags, e.g. <answer>lighthouse</answer>.`

const answerQuestionPrompt = `You are the gamemaster of a game of 20 Questions. The secret word is "%s". The player asks:

%s

Answer truthfully for the secret word. Respond with only "yes" or "no", wrapped in <answer></answer> tags, e.g. <answer>yes</answer>.`

const answerRetries = 3

var answerRegex = regexp.MustCompile(`(?is)<answer>(.*?)</answer>`)

// GamemasterEnv runs a complete game with an LLM as the answerer. It enforces
// the question cap and judges guesses by canonical string match against the
// secret word.
type GamemasterEnv struct {
	gamemaster domain.LLMClient
	logger     *zap.Logger

	theme        string
	secretWord   string
	maxQuestions int

	history   []domain.HistoryEntry
	questions int
	turns     int
	done      bool
	won       bool
}

// NewGamemasterEnv creates an environment for one game. If secretWord is
// empty, the gamemaster model picks one for the theme at Reset.
func NewGamemasterEnv(gm domain.LLMClient, theme, secretWord string, maxQuestions int, logger *zap.Logger) *GamemasterEnv {
	return &GamemasterEnv{
		gamemaster:   gm,
		logger:       logger,
		theme:        theme,
		secretWord:   secretWord,
		maxQuestions: maxQuestions,
	}
}

func (e *GamemasterEnv) Reset(ctx context.Context) error {
	if e.secretWord == "" {
		word, err := e.ask(ctx, fmt.Sprintf(pickWordPrompt, e.theme))
		if err != nil {
			return fmt.Errorf("pick secret word: %w", err)
		}
		e.secretWord = domain.Canonical(word)
	}
	if e.secretWord == "" {
		return fmt.Errorf("gamemaster produced an empty secret word")
	}

	e.history = []domain.HistoryEntry{{
		Speaker: domain.SpeakerGame,
		Message: fmt.Sprintf("You are playing 20 Questions. The theme is %q. Ask up to %d yes/no questions, then guess the secret word by wrapping it in brackets, e.g. [elephant].", e.theme, e.maxQuestions),
	}}
	e.questions = 0
	e.turns = 0
	e.done = false
	e.won = false
	return nil
}

func (e *GamemasterEnv) History() []domain.HistoryEntry {
	return e.history
}

func (e *GamemasterEnv) Outcome() Outcome {
	return Outcome{Won: e.won, SecretWord: e.secretWord, Turns: e.turns}
}

func (e *GamemasterEnv) Step(ctx context.Context, action string) (bool, error) {
	if e.done {
		return true, fmt.Errorf("game is already over")
	}
	e.turns++
	e.history = append(e.history, domain.HistoryEntry{Speaker: domain.SpeakerPlayer, Message: action})

	if guess, ok := extractGuess(action); ok {
		e.done = true
		e.won = domain.Canonical(guess) == e.secretWord
		verdict := fmt.Sprintf("Wrong guess. The secret word was %q. You lose.", e.secretWord)
		if e.won {
			verdict = fmt.Sprintf("Correct! The secret word was %q. You win.", e.secretWord)
		}
		e.history = append(e.history, domain.HistoryEntry{Speaker: domain.SpeakerGame, Message: verdict})
		return true, nil
	}

	// Anything unbracketed counts as a question against the cap.
	if e.questions >= e.maxQuestions {
		e.done = true
		e.history = append(e.history, domain.HistoryEntry{
			Speaker: domain.SpeakerGame,
			Message: fmt.Sprintf("You were out of questions and did not guess. The secret word was %q. You lose.", e.secretWord),
		})
		return true, nil
	}
	e.questions++

	answer, err := e.answerQuestion(ctx, action)
	if err != nil {
		return false, err
	}
	msg := "No."
	if answer == domain.AnswerYes {
		msg = "Yes."
	}
	if e.questions == e.maxQuestions {
		msg += " You have no questions left; you must now guess the secret word."
	}
	e.history = append(e.history, domain.HistoryEntry{Speaker: domain.SpeakerGame, Message: msg})
	return false, nil
}

// answerQuestion asks the gamemaster model for a yes/no verdict, retrying a
// few times when the reply cannot be read as either.
func (e *GamemasterEnv) answerQuestion(ctx context.Context, question string) (string, error) {
	prompt := fmt.Sprintf(answerQuestionPrompt, e.secretWord, question)
	for attempt := 0; attempt < answerRetries; attempt++ {
		raw, err := e.ask(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return "", err
			}
			e.logger.Warn("gamemaster answer failed", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}
		switch domain.Canonical(raw) {
		case domain.AnswerYes:
			return domain.AnswerYes, nil
		case domain.AnswerNo:
			return domain.AnswerNo, nil
		}
		e.logger.Warn("gamemaster gave a non-boolean answer",
			zap.Int("attempt", attempt), zap.String("answer", raw))
	}
	return "", fmt.Errorf("gamemaster did not produce a yes/no answer after %d attempts", answerRetries)
}

func (e *GamemasterEnv) ask(ctx context.Context, prompt string) (string, error) {
	resp, err := e.gamemaster.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	if m := answerRegex.FindStringSubmatch(resp); m != nil {
		return strings.TrimSpace(m[1]), nil
	}
	return "", fmt.Errorf("no <answer> region in gamemaster reply")
}

// extractGuess reports whether the action is a final guess and returns the
// guessed word without its enclosing brackets.
func extractGuess(action string) (string, bool) {
	a := strings.TrimSpace(action)
	if strings.HasPrefix(a, "[") && strings.HasSuffix(a, "]") && len(a) >= 2 {
		return strings.TrimSpace(a[1 : len(a)-1]), true
	}
	return "", false
}
