package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vpepe/twentyq/internal/domain"
)

var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS game_runs (
	id               UUID PRIMARY KEY,
	model            TEXT NOT NULL,
	gamemaster_model TEXT NOT NULL,
	agent_type       TEXT NOT NULL,
	secret_word      TEXT NOT NULL DEFAULT '',
	won              BOOLEAN NOT NULL DEFAULT FALSE,
	turns            INTEGER NOT NULL DEFAULT 0,
	duration_ms      BIGINT NOT NULL DEFAULT 0,
	error            TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_game_runs_model ON game_runs (model, agent_type);
`

// GameRunStore persists experiment results to Postgres.
type GameRunStore struct {
	db *pgxpool.Pool
}

func NewGameRunStore(db *pgxpool.Pool) *GameRunStore {
	return &GameRunStore{db: db}
}

// EnsureSchema creates the game_runs table when it does not exist yet.
func (s *GameRunStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schema)
	return err
}

func (s *GameRunStore) Create(ctx context.Context, r *domain.GameResult) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO game_runs (id, model, gamemaster_model, agent_type, secret_word, won, turns, duration_ms, error)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		r.ID, r.Model, r.GamemasterModel, r.AgentType, r.SecretWord, r.Won, r.Turns, r.Duration.Milliseconds(), r.Error,
	).Scan(&r.CreatedAt)
}

func (s *GameRunStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.GameResult, error) {
	r := &domain.GameResult{}
	var durationMS int64
	err := s.db.QueryRow(ctx,
		`SELECT id, model, gamemaster_model, agent_type, secret_word, won, turns, duration_ms, error, created_at
		 FROM game_runs WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.Model, &r.GamemasterModel, &r.AgentType, &r.SecretWord, &r.Won, &r.Turns, &durationMS, &r.Error, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	r.Duration = time.Duration(durationMS) * time.Millisecond
	return r, nil
}

func (s *GameRunStore) ListRecent(ctx context.Context, limit int) ([]domain.GameResult, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, model, gamemaster_model, agent_type, secret_word, won, turns, duration_ms, error, created_at
		 FROM game_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.GameResult
	for rows.Next() {
		var r domain.GameResult
		var durationMS int64
		if err := rows.Scan(&r.ID, &r.Model, &r.GamemasterModel, &r.AgentType, &r.SecretWord, &r.Won, &r.Turns, &durationMS, &r.Error, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		results = append(results, r)
	}
	return results, rows.Err()
}
