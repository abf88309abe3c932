package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/llmpulse/radar/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection.
var preparedStatements = map[string]string{
	"load_usage": `SELECT prompt_tokens, completion_tokens, total_tokens FROM usage_totals WHERE id = 1`,
	"save_usage": `INSERT INTO usage_totals (id, prompt_tokens, completion_tokens, total_tokens, updated_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			prompt_tokens = EXCLUDED.prompt_tokens,
			completion_tokens = EXCLUDED.completion_tokens,
			total_tokens = EXCLUDED.total_tokens,
			updated_at = EXCLUDED.updated_at`,
	"get_practice": `SELECT id, date, main_practice, alt_practices, provider_id, generation_status, created_at
		FROM daily_practices WHERE date = $1`,
	"insert_practice": `INSERT INTO daily_practices (id, date, main_practice, alt_practices, provider_id, generation_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS usage_totals (
	id                INTEGER PRIMARY KEY CHECK (id = 1),
	prompt_tokens     BIGINT NOT NULL DEFAULT 0,
	completion_tokens BIGINT NOT NULL DEFAULT 0,
	total_tokens      BIGINT NOT NULL DEFAULT 0,
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS daily_practices (
	id                TEXT PRIMARY KEY,
	date              TEXT NOT NULL UNIQUE,
	main_practice     JSONB NOT NULL,
	alt_practices     JSONB NOT NULL,
	provider_id       TEXT NOT NULL,
	generation_status TEXT NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_daily_practices_date ON daily_practices(date);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) LoadUsage(ctx context.Context) (*model.TokenUsage, error) {
	var u model.TokenUsage
	err := s.pool.QueryRow(ctx, "load_usage").Scan(&u.PromptTokens, &u.CompletionTokens, &u.TotalTokens)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load usage")
	}
	return &u, nil
}

func (s *PostgresStore) SaveUsage(ctx context.Context, u model.TokenUsage) error {
	_, err := s.pool.Exec(ctx, "save_usage",
		u.PromptTokens, u.CompletionTokens, u.TotalTokens, time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: save usage")
}

func (s *PostgresStore) GetPractice(ctx context.Context, date string) (*model.DailyPracticeRecord, error) {
	row := s.pool.QueryRow(ctx, "get_practice", date)
	rec, err := scanPostgresPractice(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get practice %s", date)
	}
	return rec, nil
}

func (s *PostgresStore) InsertPractice(ctx context.Context, rec model.DailyPracticeRecord) (*model.DailyPracticeRecord, error) {
	mainJSON, altJSON, err := marshalPractices(rec)
	if err != nil {
		return nil, err
	}

	_, err = s.pool.Exec(ctx, "insert_practice",
		rec.ID, rec.Date, mainJSON, altJSON, rec.ProviderID, string(rec.GenerationStatus), rec.CreatedAt.UTC(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, eris.Wrapf(ErrDuplicateDate, "postgres: insert practice %s", rec.Date)
		}
		return nil, eris.Wrapf(err, "postgres: insert practice %s", rec.Date)
	}
	return &rec, nil
}

func (s *PostgresStore) ListPractices(ctx context.Context, limit int) ([]model.DailyPracticeRecord, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, date, main_practice, alt_practices, provider_id, generation_status, created_at
		 FROM daily_practices ORDER BY date DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list practices")
	}
	defer rows.Close()

	var out []model.DailyPracticeRecord
	for rows.Next() {
		rec, err := scanPostgresPractice(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan practice")
		}
		out = append(out, *rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate practices")
}

func scanPostgresPractice(scan func(dest ...any) error) (*model.DailyPracticeRecord, error) {
	var rec model.DailyPracticeRecord
	var mainJSON, altJSON []byte
	var status string

	if err := scan(&rec.ID, &rec.Date, &mainJSON, &altJSON, &rec.ProviderID, &status, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(mainJSON, &rec.MainPractice); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal main practice")
	}
	if err := json.Unmarshal(altJSON, &rec.AltPractices); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal alt practices")
	}
	rec.GenerationStatus = model.GenerationStatus(status)
	return &rec, nil
}
