package game

import (
	"context"

	"github.com/vpepe/twentyq/internal/domain"
)

// Outcome is the terminal result of one game.
type Outcome struct {
	Won        bool
	SecretWord string
	Turns      int
}

// Environment is the collaborator that owns the rules: it produces the
// transcript the agent observes and judges each action. The agent core never
// sees anything beyond this interface.
type Environment interface {
	// Reset prepares a new game and seeds the opening transcript.
	Reset(ctx context.Context) error
	// History returns the full ordered transcript so far.
	History() []domain.HistoryEntry
	// Step applies the player's action (a question, or a bracketed guess)
	// and reports whether the game ended.
	Step(ctx context.Context, action string) (bool, error)
	// Outcome is valid once Step has reported the game done.
	Outcome() Outcome
}
