package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by TWENTYQ_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("TWENTYQ_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return Validate()
}

// Validate checks the numeric surface for values that would make the scoring
// math meaningless.
func Validate() error {
	eps := Epsilon()
	if eps <= 0 || eps >= 0.5 {
		return fmt.Errorf("EPSILON must lie in (0, 0.5), got %v", eps)
	}
	if MaxRetries() < 1 {
		return fmt.Errorf("MAX_RETRIES must be at least 1")
	}
	if QuestionBatch() < 1 {
		return fmt.Errorf("QUESTION_BATCH must be at least 1")
	}
	return nil
}

// Epsilon returns the noise parameter of the answer channel: the assumed
// probability that the real answerer disagrees with the idealized yes/no
// classification. Defaults to 0.1.
func Epsilon() float64 {
	eps, err := strconv.ParseFloat(os.Getenv("EPSILON"), 64)
	if err != nil {
		return 0.1
	}
	return eps
}

// MaxRetries returns how many times a malformed oracle reply is re-requested
// before the call site gives up. Defaults to 10.
func MaxRetries() int {
	n, err := strconv.Atoi(os.Getenv("MAX_RETRIES"))
	if err != nil || n < 1 {
		return 10
	}
	return n
}

// QuestionBatch returns k, the number of candidate questions scored per turn.
// Defaults to 10.
func QuestionBatch() int {
	k, err := strconv.Atoi(os.Getenv("QUESTION_BATCH"))
	if err != nil || k < 1 {
		return 10
	}
	return k
}

// MaxQuestions returns the turn budget the agent defends against on its own,
// independent of any cap the environment enforces. Defaults to 20.
func MaxQuestions() int {
	n, err := strconv.Atoi(os.Getenv("MAX_QUESTIONS"))
	if err != nil || n < 1 {
		return 20
	}
	return n
}

// MaxWorkers bounds concurrent per-question scoring calls. Defaults to 16.
func MaxWorkers() int {
	n, err := strconv.Atoi(os.Getenv("MAX_WORKERS"))
	if err != nil || n < 1 {
		return 16
	}
	return n
}

// BeliefMode returns "ephemeral" (fresh candidate pool per scoring cycle) or
// "persistent" (one weighted pool mutated across the game).
func BeliefMode() string {
	m := os.Getenv("BELIEF_MODE")
	if m == "" {
		return "ephemeral"
	}
	return m
}

// AgentType returns "eig" (EIG-driven question selection) or "llm" (direct
// single-question prompting). Defaults to "eig".
func AgentType() string {
	t := os.Getenv("AGENT_TYPE")
	if t == "" {
		return "eig"
	}
	return t
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

func OpenRouterAPIKey() string {
	return os.Getenv("OPENROUTER_API_KEY")
}

// LLMProvider returns the configured LLM provider.
// Defaults to "openai" if not set.
// Valid values: openai, openrouter, anthropic, mock
func LLMProvider() string {
	p := os.Getenv("LLM_PROVIDER")
	if p == "" {
		return "openai"
	}
	return p
}

// LLMAPIKey returns the API key for the configured LLM provider.
func LLMAPIKey() string {
	switch LLMProvider() {
	case "anthropic":
		return AnthropicAPIKey()
	case "openrouter":
		return OpenRouterAPIKey()
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// LLMModel returns the model used for decisions, questions and moves.
func LLMModel() string {
	m := os.Getenv("LLM_MODEL")
	if m == "" {
		return "gpt-4o-mini"
	}
	return m
}

// SamplingModel returns the model used for candidate sampling and consistency
// classification. The original experiments dedicate a stronger model to this.
func SamplingModel() string {
	m := os.Getenv("SAMPLING_MODEL")
	if m == "" {
		return LLMModel()
	}
	return m
}

// GamemasterModel returns the model that answers questions in runner games.
func GamemasterModel() string {
	m := os.Getenv("GAMEMASTER_MODEL")
	if m == "" {
		return "gpt-4o"
	}
	return m
}

// LLMRPS returns the outbound requests-per-second budget for LLM calls.
// Zero disables outbound rate limiting.
func LLMRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("LLM_RPS"), 64)
	if err != nil || rps < 0 {
		return 0
	}
	return rps
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// RateLimitRPS returns requests per second limit for the HTTP API.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for HTTP rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
