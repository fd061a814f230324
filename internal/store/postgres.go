package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/leadscope/lead-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

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

// NewPostgresWithPool wraps an existing pool. Used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id          UUID PRIMARY KEY,
	username    TEXT NOT NULL,
	business_id TEXT NOT NULL,
	tier        TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'queued',
	result      JSONB,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS businesses (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	one_liner    TEXT NOT NULL DEFAULT '',
	context_pack JSONB,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS credit_ledger (
	id          UUID PRIMARY KEY,
	business_id TEXT NOT NULL,
	run_id      UUID NOT NULL,
	tier        TEXT NOT NULL,
	credits     INTEGER NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_business ON runs(business_id);
CREATE INDEX IF NOT EXISTS idx_ledger_business ON credit_ledger(business_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, username, businessID string, tier model.Tier) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, username, business_id, tier, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, username, businessID, string(tier), string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
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

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), runID,
	)
	return eris.Wrap(err, "postgres: update run status")
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, result *model.OrchestrationResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	_, err = s.pool.Exec(ctx,
		`UPDATE runs SET result = $1, status = $2, updated_at = $3 WHERE id = $4`,
		string(resultJSON), string(runStatusFor(result)), time.Now().UTC(), runID,
	)
	return eris.Wrap(err, "postgres: complete run")
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, username, business_id, tier, status, result, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	)
	return scanPgRun(row)
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, username, business_id, tier, status, result, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $1`
	}
	if filter.BusinessID != "" {
		args = append(args, filter.BusinessID)
		query += ` AND business_id = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanPgRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs")
}

func (s *PostgresStore) UpsertBusiness(ctx context.Context, b model.Business) error {
	var packJSON any
	if b.ContextPack != nil {
		data, err := json.Marshal(b.ContextPack)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal context pack")
		}
		packJSON = string(data)
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO businesses (id, name, one_liner, context_pack, updated_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, one_liner = EXCLUDED.one_liner, context_pack = EXCLUDED.context_pack, updated_at = EXCLUDED.updated_at`,
		b.ID, b.Name, b.OneLiner, packJSON, time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: upsert business")
}

func (s *PostgresStore) GetBusiness(ctx context.Context, id string) (*model.Business, error) {
	var b model.Business
	var packJSON *string

	err := s.pool.QueryRow(ctx,
		`SELECT id, name, one_liner, context_pack FROM businesses WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.Name, &b.OneLiner, &packJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("postgres: business %s not found", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get business")
	}

	if packJSON != nil && *packJSON != "" {
		var pack model.ContextPack
		if err := json.Unmarshal([]byte(*packJSON), &pack); err != nil {
			return nil, eris.Wrap(err, "postgres: parse context pack")
		}
		b.ContextPack = &pack
	}
	return &b, nil
}

func (s *PostgresStore) SaveBusinessContext(ctx context.Context, id, oneLiner string, pack *model.ContextPack) error {
	packData, err := json.Marshal(pack)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal context pack")
	}

	_, err = s.pool.Exec(ctx,
		`UPDATE businesses SET one_liner = $1, context_pack = $2, updated_at = $3 WHERE id = $4`,
		oneLiner, string(packData), time.Now().UTC(), id,
	)
	return eris.Wrap(err, "postgres: save business context")
}

func (s *PostgresStore) DeductCredits(ctx context.Context, entry model.LedgerEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO credit_ledger (id, business_id, run_id, tier, credits, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.BusinessID, entry.RunID, string(entry.Tier), entry.Credits, entry.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert ledger entry")
}

func (s *PostgresStore) CreditsSpent(ctx context.Context, businessID string) (int, error) {
	var total int
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(credits), 0) FROM credit_ledger WHERE business_id = $1`,
		businessID,
	).Scan(&total)
	return total, eris.Wrap(err, "postgres: sum credits")
}

func scanPgRun(row pgx.Row) (*model.Run, error) {
	var run model.Run
	var tier, status string
	var resultJSON *string

	err := row.Scan(&run.ID, &run.Username, &run.BusinessID, &tier, &status, &resultJSON, &run.CreatedAt, &run.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.New("postgres: run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan run")
	}

	run.Tier = model.Tier(tier)
	run.Status = model.RunStatus(status)

	if resultJSON != nil && *resultJSON != "" {
		var result model.OrchestrationResult
		if err := json.Unmarshal([]byte(*resultJSON), &result); err != nil {
			return nil, eris.Wrap(err, "postgres: parse run result")
		}
		run.Result = &result
	}
	return &run, nil
}

