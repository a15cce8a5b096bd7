package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/risk-cli/internal/model"
)

// SQLiteLedger implements Ledger using modernc.org/sqlite.
type SQLiteLedger struct {
	db *sql.DB

	// Serializes sequence allocation (count+1) with the insert.
	mu sync.Mutex
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteLedger, error) {
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
	return &SQLiteLedger{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS decisions (
	id            TEXT PRIMARY KEY,
	seq           INTEGER NOT NULL UNIQUE,
	decision_id   TEXT NOT NULL UNIQUE,
	case_id       TEXT NOT NULL,
	customer_name TEXT NOT NULL,
	created_at    DATETIME NOT NULL,
	input         TEXT NOT NULL,
	ai_decision   TEXT NOT NULL,
	review_status TEXT NOT NULL DEFAULT 'pending_review'
);

CREATE INDEX IF NOT EXISTS idx_decisions_case_id ON decisions(case_id);
CREATE INDEX IF NOT EXISTS idx_decisions_seq ON decisions(seq);
`

func (l *SQLiteLedger) Migrate(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

const sqliteSelectColumns = `decision_id, case_id, customer_name, created_at, input, ai_decision, review_status`

func (l *SQLiteLedger) StoreDecision(ctx context.Context, c *model.Case, result *model.Classification) (*model.Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var count int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM decisions`).Scan(&count); err != nil {
		return nil, eris.Wrap(err, "sqlite: count decisions")
	}

	rec := newDecision(count+1, c, result)

	inputJSON, err := json.Marshal(rec.Input)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal input snapshot")
	}
	decisionJSON, err := json.Marshal(rec.AIDecision)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal ai decision")
	}

	_, err = l.db.ExecContext(ctx,
		`INSERT INTO decisions (id, seq, decision_id, case_id, customer_name, created_at, input, ai_decision, review_status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), count+1, rec.DecisionID, rec.CaseID, rec.CustomerName,
		rec.Timestamp, string(inputJSON), string(decisionJSON), rec.ReviewStatus,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert decision %s", rec.DecisionID)
	}

	return &rec, nil
}

func (l *SQLiteLedger) GetAll(ctx context.Context) ([]model.Decision, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT `+sqliteSelectColumns+` FROM decisions ORDER BY seq`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list decisions")
	}
	return collectDecisions(rows, "sqlite")
}

func (l *SQLiteLedger) GetByCase(ctx context.Context, caseID string) ([]model.Decision, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT `+sqliteSelectColumns+` FROM decisions WHERE case_id = ? ORDER BY seq`,
		caseID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list decisions for case %s", caseID)
	}
	return collectDecisions(rows, "sqlite")
}

func (l *SQLiteLedger) GetLatestByCase(ctx context.Context, caseID string) (*model.Decision, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT `+sqliteSelectColumns+` FROM decisions WHERE case_id = ? ORDER BY seq DESC LIMIT 1`,
		caseID,
	)
	d, err := scanDecision(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: latest decision for case %s", caseID)
	}
	return d, nil
}

func (l *SQLiteLedger) GetByRiskLevel(ctx context.Context, level string) ([]model.Decision, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT `+sqliteSelectColumns+` FROM decisions
		 WHERE json_extract(ai_decision, '$.risk_level') = ? ORDER BY seq`,
		level,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list decisions with risk %s", level)
	}
	return collectDecisions(rows, "sqlite")
}

func (l *SQLiteLedger) Statistics(ctx context.Context) (*model.Statistics, error) {
	decisions, err := l.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return computeStatistics(decisions), nil
}

func (l *SQLiteLedger) ClearAll(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, `DELETE FROM decisions`)
	return eris.Wrap(err, "sqlite: clear decisions")
}

// scanning helpers shared by the SQL drivers

type scannable interface {
	Scan(dest ...any) error
}

func scanDecision(row scannable) (*model.Decision, error) {
	var d model.Decision
	var createdAt time.Time
	var inputJSON, decisionJSON []byte

	err := row.Scan(&d.DecisionID, &d.CaseID, &d.CustomerName, &createdAt,
		&inputJSON, &decisionJSON, &d.ReviewStatus)
	if err != nil {
		return nil, err
	}

	d.Timestamp = createdAt.UTC()
	if err := json.Unmarshal(inputJSON, &d.Input); err != nil {
		return nil, eris.Wrap(err, "unmarshal input snapshot")
	}
	if err := json.Unmarshal(decisionJSON, &d.AIDecision); err != nil {
		return nil, eris.Wrap(err, "unmarshal ai decision")
	}
	return &d, nil
}

func collectDecisions(rows *sql.Rows, driver string) ([]model.Decision, error) {
	defer rows.Close()

	var out []model.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, eris.Wrapf(err, "%s: scan decision", driver)
		}
		out = append(out, *d)
	}
	return out, eris.Wrapf(rows.Err(), "%s: iterate decisions", driver)
}
