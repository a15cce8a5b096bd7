package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/risk-cli/internal/model"
)

// pgPool is the subset of pgxpool.Pool the ledger uses. Narrowed so tests
// can substitute a mock pool.
type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresLedger implements Ledger on a PostgreSQL pool.
type PostgresLedger struct {
	pool pgPool

	// Serializes sequence allocation (count+1) with the insert.
	mu sync.Mutex
}

// NewPostgres connects to PostgreSQL using the given connection string and
// verifies the connection with a ping.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresLedger, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresLedger{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests.
func NewPostgresFromPool(pool pgPool) *PostgresLedger {
	return &PostgresLedger{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS decisions (
	id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	seq           INTEGER NOT NULL UNIQUE,
	decision_id   TEXT NOT NULL UNIQUE,
	case_id       TEXT NOT NULL,
	customer_name TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	input         JSONB NOT NULL,
	ai_decision   JSONB NOT NULL,
	review_status TEXT NOT NULL DEFAULT 'pending_review'
);

CREATE INDEX IF NOT EXISTS idx_decisions_case_id ON decisions(case_id);
CREATE INDEX IF NOT EXISTS idx_decisions_seq ON decisions(seq);
`

func (l *PostgresLedger) Migrate(ctx context.Context) error {
	_, err := l.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (l *PostgresLedger) Close() error {
	l.pool.Close()
	return nil
}

const postgresSelectColumns = `decision_id, case_id, customer_name, created_at, input, ai_decision, review_status`

func (l *PostgresLedger) StoreDecision(ctx context.Context, c *model.Case, result *model.Classification) (*model.Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var count int
	if err := l.pool.QueryRow(ctx, `SELECT COUNT(*) FROM decisions`).Scan(&count); err != nil {
		return nil, eris.Wrap(err, "postgres: count decisions")
	}

	rec := newDecision(count+1, c, result)

	inputJSON, err := json.Marshal(rec.Input)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal input snapshot")
	}
	decisionJSON, err := json.Marshal(rec.AIDecision)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal ai decision")
	}

	_, err = l.pool.Exec(ctx,
		`INSERT INTO decisions (seq, decision_id, case_id, customer_name, created_at, input, ai_decision, review_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		count+1, rec.DecisionID, rec.CaseID, rec.CustomerName,
		rec.Timestamp, inputJSON, decisionJSON, rec.ReviewStatus,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert decision %s", rec.DecisionID)
	}

	return &rec, nil
}

func (l *PostgresLedger) GetAll(ctx context.Context) ([]model.Decision, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT `+postgresSelectColumns+` FROM decisions ORDER BY seq`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list decisions")
	}
	return collectPgxDecisions(rows)
}

func (l *PostgresLedger) GetByCase(ctx context.Context, caseID string) ([]model.Decision, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT `+postgresSelectColumns+` FROM decisions WHERE case_id = $1 ORDER BY seq`,
		caseID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list decisions for case %s", caseID)
	}
	return collectPgxDecisions(rows)
}

func (l *PostgresLedger) GetLatestByCase(ctx context.Context, caseID string) (*model.Decision, error) {
	row := l.pool.QueryRow(ctx,
		`SELECT `+postgresSelectColumns+` FROM decisions WHERE case_id = $1 ORDER BY seq DESC LIMIT 1`,
		caseID,
	)
	d, err := scanDecision(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: latest decision for case %s", caseID)
	}
	return d, nil
}

func (l *PostgresLedger) GetByRiskLevel(ctx context.Context, level string) ([]model.Decision, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT `+postgresSelectColumns+` FROM decisions
		 WHERE ai_decision->>'risk_level' = $1 ORDER BY seq`,
		level,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list decisions with risk %s", level)
	}
	return collectPgxDecisions(rows)
}

func (l *PostgresLedger) Statistics(ctx context.Context) (*model.Statistics, error) {
	decisions, err := l.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return computeStatistics(decisions), nil
}

func (l *PostgresLedger) ClearAll(ctx context.Context) error {
	_, err := l.pool.Exec(ctx, `DELETE FROM decisions`)
	return eris.Wrap(err, "postgres: clear decisions")
}

func collectPgxDecisions(rows pgx.Rows) ([]model.Decision, error) {
	defer rows.Close()

	var out []model.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan decision")
		}
		out = append(out, *d)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate decisions")
}
