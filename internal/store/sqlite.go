package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/leadscope/lead-cli/internal/model"
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
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	username    TEXT NOT NULL,
	business_id TEXT NOT NULL,
	tier        TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'queued',
	result      TEXT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS businesses (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	one_liner    TEXT NOT NULL DEFAULT '',
	context_pack TEXT,
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS credit_ledger (
	id          TEXT PRIMARY KEY,
	business_id TEXT NOT NULL,
	run_id      TEXT NOT NULL,
	tier        TEXT NOT NULL,
	credits     INTEGER NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_business ON runs(business_id);
CREATE INDEX IF NOT EXISTS idx_ledger_business ON credit_ledger(business_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, username, businessID string, tier model.Tier) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, username, business_id, tier, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, username, businessID, string(tier), string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:         id,
		Username:   username,
		BusinessID: businessID,
		Tier:       tier,
		Status:     model.RunStatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	return eris.Wrap(err, "sqlite: update run status")
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, result *model.OrchestrationResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal result")
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE runs SET result = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(resultJSON), string(runStatusFor(result)), time.Now().UTC(), runID,
	)
	return eris.Wrap(err, "sqlite: complete run")
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, business_id, tier, status, result, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, username, business_id, tier, status, result, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.BusinessID != "" {
		query += ` AND business_id = ?`
		args = append(args, filter.BusinessID)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		// SQLite rejects OFFSET without LIMIT; -1 means no limit.
		query += ` LIMIT -1`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs")
}

func (s *SQLiteStore) UpsertBusiness(ctx context.Context, b model.Business) error {
	var packJSON any
	if b.ContextPack != nil {
		data, err := json.Marshal(b.ContextPack)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal context pack")
		}
		packJSON = string(data)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO businesses (id, name, one_liner, context_pack, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, one_liner = excluded.one_liner, context_pack = excluded.context_pack, updated_at = excluded.updated_at`,
		b.ID, b.Name, b.OneLiner, packJSON, time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: upsert business")
}

func (s *SQLiteStore) GetBusiness(ctx context.Context, id string) (*model.Business, error) {
	var b model.Business
	var packJSON sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, one_liner, context_pack FROM businesses WHERE id = ?`,
		id,
	).Scan(&b.ID, &b.Name, &b.OneLiner, &packJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Errorf("sqlite: business %s not found", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get business")
	}

	if packJSON.Valid && packJSON.String != "" {
		var pack model.ContextPack
		if err := json.Unmarshal([]byte(packJSON.String), &pack); err != nil {
			return nil, eris.Wrap(err, "sqlite: parse context pack")
		}
		b.ContextPack = &pack
	}
	return &b, nil
}

func (s *SQLiteStore) SaveBusinessContext(ctx context.Context, id, oneLiner string, pack *model.ContextPack) error {
	packData, err := json.Marshal(pack)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal context pack")
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE businesses SET one_liner = ?, context_pack = ?, updated_at = ? WHERE id = ?`,
		oneLiner, string(packData), time.Now().UTC(), id,
	)
	return eris.Wrap(err, "sqlite: save business context")
}

func (s *SQLiteStore) DeductCredits(ctx context.Context, entry model.LedgerEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO credit_ledger (id, business_id, run_id, tier, credits, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.BusinessID, entry.RunID, string(entry.Tier), entry.Credits, entry.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert ledger entry")
}

func (s *SQLiteStore) CreditsSpent(ctx context.Context, businessID string) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(credits), 0) FROM credit_ledger WHERE business_id = ?`,
		businessID,
	).Scan(&total)
	return total, eris.Wrap(err, "sqlite: sum credits")
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*model.Run, error) {
	var run model.Run
	var tier, status string
	var resultJSON sql.NullString

	err := row.Scan(&run.ID, &run.Username, &run.BusinessID, &tier, &status, &resultJSON, &run.CreatedAt, &run.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.New("sqlite: run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	run.Tier = model.Tier(tier)
	run.Status = model.RunStatus(status)

	if resultJSON.Valid && resultJSON.String != "" {
		var result model.OrchestrationResult
		if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
			return nil, eris.Wrap(err, "sqlite: parse run result")
		}
		run.Result = &result
	}
	return &run, nil
}
