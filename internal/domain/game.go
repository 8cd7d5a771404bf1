package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Speaker identifies who produced a history entry. The numeric values match
// the wire encoding used by the game environment.
type Speaker int

const (
	SpeakerGame   Speaker = -1
	SpeakerPlayer Speaker = 0
)

// Label returns the tag used when serializing history into prompts.
func (s Speaker) Label() string {
	switch s {
	case SpeakerGame:
		return "GAME"
	case SpeakerPlayer:
		return "PLAYER"
	default:
		return "UNKNOWN"
	}
}

// HistoryEntry is one observation in the ordered game transcript.
type HistoryEntry struct {
	Speaker Speaker `json:"speaker"`
	Message string  `json:"message"`
}

// BlankHistoryPlaceholder is substituted when no turns have happened yet.
const BlankHistoryPlaceholder = "(no history yet)"

// FormatHistory serializes a transcript into the text form handed to every
// oracle prompt: one line per entry, prefixed by the speaker's label.
func FormatHistory(entries []HistoryEntry) string {
	if len(entries) == 0 {
		return BlankHistoryPlaceholder
	}
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString("[")
		sb.WriteString(e.Speaker.Label())
		sb.WriteString("] ")
		sb.WriteString(e.Message)
		sb.WriteString("\n")
	}
	return sb.String()
}

// CountPlayerTurns returns the number of actions the player has taken so far.
func CountPlayerTurns(entries []HistoryEntry) int {
	n := 0
	for _, e := range entries {
		if e.Speaker == SpeakerPlayer {
			n++
		}
	}
	return n
}

// Decision is the per-turn control signal: keep questioning or commit to a
// final guess.
type Decision string

const (
	DecisionQuestion Decision = "question"
	DecisionGuess    Decision = "guess"
)

// TurnContext carries everything an oracle call needs about the current turn.
type TurnContext struct {
	History            string
	RemainingQuestions int
}

// GameResult is the record persisted for one completed (or failed) game run.
type GameResult struct {
	ID              uuid.UUID     `json:"id"`
	Model           string        `json:"model"`
	GamemasterModel string        `json:"gamemaster_model"`
	AgentType       string        `json:"agent_type"`
	SecretWord      string        `json:"secret_word"`
	Won             bool          `json:"won"`
	Turns           int           `json:"turns"`
	Duration        time.Duration `json:"duration"`
	Error           string        `json:"error,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}
