package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/llmpulse/radar/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS usage_totals (
	id                INTEGER PRIMARY KEY CHECK (id = 1),
	prompt_tokens     INTEGER NOT NULL DEFAULT 0,
	completion_tokens INTEGER NOT NULL DEFAULT 0,
	total_tokens      INTEGER NOT NULL DEFAULT 0,
	updated_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS daily_practices (
	id                TEXT PRIMARY KEY,
	date              TEXT NOT NULL UNIQUE,
	main_practice     TEXT NOT NULL,
	alt_practices     TEXT NOT NULL,
	provider_id       TEXT NOT NULL,
	generation_status TEXT NOT NULL,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_daily_practices_date ON daily_practices(date);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LoadUsage(ctx context.Context) (*model.TokenUsage, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT prompt_tokens, completion_tokens, total_tokens FROM usage_totals WHERE id = 1`,
	)
	var u model.TokenUsage
	err := row.Scan(&u.PromptTokens, &u.CompletionTokens, &u.TotalTokens)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load usage")
	}
	return &u, nil
}

func (s *SQLiteStore) SaveUsage(ctx context.Context, u model.TokenUsage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_totals (id, prompt_tokens, completion_tokens, total_tokens, updated_at)
		 VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		 	prompt_tokens = excluded.prompt_tokens,
		 	completion_tokens = excluded.completion_tokens,
		 	total_tokens = excluded.total_tokens,
		 	updated_at = excluded.updated_at`,
		u.PromptTokens, u.CompletionTokens, u.TotalTokens, time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: save usage")
}

func (s *SQLiteStore) GetPractice(ctx context.Context, date string) (*model.DailyPracticeRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, date, main_practice, alt_practices, provider_id, generation_status, created_at
		 FROM daily_practices WHERE date = ?`,
		date,
	)
	rec, err := scanPractice(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get practice %s", date)
	}
	return rec, nil
}

func (s *SQLiteStore) InsertPractice(ctx context.Context, rec model.DailyPracticeRecord) (*model.DailyPracticeRecord, error) {
	mainJSON, altJSON, err := marshalPractices(rec)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO daily_practices (id, date, main_practice, alt_practices, provider_id, generation_status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Date, mainJSON, altJSON, rec.ProviderID, string(rec.GenerationStatus), rec.CreatedAt.UTC(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, eris.Wrapf(ErrDuplicateDate, "sqlite: insert practice %s", rec.Date)
		}
		return nil, eris.Wrapf(err, "sqlite: insert practice %s", rec.Date)
	}
	return &rec, nil
}

func (s *SQLiteStore) ListPractices(ctx context.Context, limit int) ([]model.DailyPracticeRecord, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, main_practice, alt_practices, provider_id, generation_status, created_at
		 FROM daily_practices ORDER BY date DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list practices")
	}
	defer rows.Close()

	var out []model.DailyPracticeRecord
	for rows.Next() {
		rec, err := scanPractice(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan practice")
		}
		out = append(out, *rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate practices")
}

func marshalPractices(rec model.DailyPracticeRecord) (string, string, error) {
	mainJSON, err := json.Marshal(rec.MainPractice)
	if err != nil {
		return "", "", eris.Wrap(err, "store: marshal main practice")
	}
	alts := rec.AltPractices
	if alts == nil {
		alts = []model.DailyPractice{}
	}
	altJSON, err := json.Marshal(alts)
	if err != nil {
		return "", "", eris.Wrap(err, "store: marshal alt practices")
	}
	return string(mainJSON), string(altJSON), nil
}

func scanPractice(scan func(dest ...any) error) (*model.DailyPracticeRecord, error) {
	var rec model.DailyPracticeRecord
	var mainJSON, altJSON, status string

	if err := scan(&rec.ID, &rec.Date, &mainJSON, &altJSON, &rec.ProviderID, &status, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(mainJSON), &rec.MainPractice); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal main practice")
	}
	if err := json.Unmarshal([]byte(altJSON), &rec.AltPractices); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal alt practices")
	}
	rec.GenerationStatus = model.GenerationStatus(status)
	return &rec, nil
}
