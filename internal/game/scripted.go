package game

import (
	"context"
	"fmt"

	"github.com/vpepe/twentyq/internal/domain"
)

// ScriptedEnv is a deterministic environment for tests: answers come from a
// caller-supplied function instead of a gamemaster model.
type ScriptedEnv struct {
	SecretWord   string
	Theme        string
	MaxQuestions int
	// Answer maps a question to "yes" or "no". Defaults to "no" when nil.
	Answer func(question string) string

	history   []domain.HistoryEntry
	questions int
	turns     int
	done      bool
	won       bool
}

func (e *ScriptedEnv) Reset(ctx context.Context) error {
	if e.MaxQuestions == 0 {
		e.MaxQuestions = 20
	}
	e.history = []domain.HistoryEntry{{
		Speaker: domain.SpeakerGame,
		Message: fmt.Sprintf("You are playing 20 Questions. The theme is %q.", e.Theme),
	}}
	e.questions = 0
	e.turns = 0
	e.done = false
	e.won = false
	return nil
}

func (e *ScriptedEnv) History() []domain.HistoryEntry {
	return e.history
}

func (e *ScriptedEnv) Outcome() Outcome {
	return Outcome{Won: e.won, SecretWord: e.SecretWord, Turns: e.turns}
}

func (e *ScriptedEnv) Step(ctx context.Context, action string) (bool, error) {
	if e.done {
		return true, fmt.Errorf("game is already over")
	}
	e.turns++
	e.history = append(e.history, domain.HistoryEntry{Speaker: domain.SpeakerPlayer, Message: action})

	if guess, ok := extractGuess(action); ok {
		e.done = true
		e.won = domain.Canonical(guess) == domain.Canonical(e.SecretWord)
		e.history = append(e.history, domain.HistoryEntry{Speaker: domain.SpeakerGame, Message: "Game over."})
		return true, nil
	}

	if e.questions >= e.MaxQuestions {
		e.done = true
		return true, nil
	}
	e.questions++

	answer := domain.AnswerNo
	if e.Answer != nil {
		answer = e.Answer(action)
	}
	msg := "No."
	if answer == domain.AnswerYes {
		msg = "Yes."
	}
	e.history = append(e.history, domain.HistoryEntry{Speaker: domain.SpeakerGame, Message: msg})
	return false, nil
}
