package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockPostgresLedger creates a PostgresLedger backed by pgxmock for unit testing.
func newMockPostgresLedger(t *testing.T) (*PostgresLedger, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresFromPool(mock), mock
}

func decisionRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"decision_id", "case_id", "customer_name", "created_at",
		"input", "ai_decision", "review_status",
	})
}

const (
	testInputJSON    = `{"amount":600000,"days_overdue":150,"past_attempts":9,"customer_type":"Business","loan_type":"Business Loan"}`
	testDecisionJSON = `{"risk_level":"HIGH","confidence":0.85,"reason":"Large overdue business loan","recommended_action":"Escalate"}`
)

func TestPostgresLedger_Migrate(t *testing.T) {
	l, mock := newMockPostgresLedger(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS decisions`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, l.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedger_StoreDecision(t *testing.T) {
	l, mock := newMockPostgresLedger(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM decisions`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec(`INSERT INTO decisions`).
		WithArgs(3, "DEC00003", "CASE003", "ABC Enterprises",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "pending_review").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	d, err := l.StoreDecision(context.Background(), testCase(), testClassification())
	require.NoError(t, err)
	assert.Equal(t, "DEC00003", d.DecisionID)
	assert.Equal(t, "pending_review", d.ReviewStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedger_StoreDecision_CountFails(t *testing.T) {
	l, mock := newMockPostgresLedger(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM decisions`).
		WillReturnError(assert.AnError)

	_, err := l.StoreDecision(context.Background(), testCase(), testClassification())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count decisions")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedger_GetAll(t *testing.T) {
	l, mock := newMockPostgresLedger(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT decision_id, case_id, customer_name, created_at, input, ai_decision, review_status FROM decisions ORDER BY seq`).
		WillReturnRows(decisionRows().
			AddRow("DEC00001", "CASE003", "ABC Enterprises", now,
				[]byte(testInputJSON), []byte(testDecisionJSON), "pending_review"))

	all, err := l.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "DEC00001", all[0].DecisionID)
	assert.Equal(t, 600000.0, all[0].Input.Amount)
	assert.Equal(t, "HIGH", all[0].AIDecision.RiskLevel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedger_GetLatestByCase_NotFound(t *testing.T) {
	l, mock := newMockPostgresLedger(t)

	mock.ExpectQuery(`WHERE case_id = \$1 ORDER BY seq DESC LIMIT 1`).
		WithArgs("CASE999").
		WillReturnRows(decisionRows())

	d, err := l.GetLatestByCase(context.Background(), "CASE999")
	require.NoError(t, err)
	assert.Nil(t, d)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedger_GetLatestByCase(t *testing.T) {
	l, mock := newMockPostgresLedger(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`WHERE case_id = \$1 ORDER BY seq DESC LIMIT 1`).
		WithArgs("CASE003").
		WillReturnRows(decisionRows().
			AddRow("DEC00002", "CASE003", "ABC Enterprises", now,
				[]byte(testInputJSON), []byte(testDecisionJSON), "pending_review"))

	d, err := l.GetLatestByCase(context.Background(), "CASE003")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "DEC00002", d.DecisionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedger_GetByRiskLevel(t *testing.T) {
	l, mock := newMockPostgresLedger(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`WHERE ai_decision->>'risk_level' = \$1 ORDER BY seq`).
		WithArgs("HIGH").
		WillReturnRows(decisionRows().
			AddRow("DEC00001", "CASE003", "ABC Enterprises", now,
				[]byte(testInputJSON), []byte(testDecisionJSON), "pending_review"))

	got, err := l.GetByRiskLevel(context.Background(), "HIGH")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "HIGH", got[0].AIDecision.RiskLevel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedger_ClearAll(t *testing.T) {
	l, mock := newMockPostgresLedger(t)

	mock.ExpectExec(`DELETE FROM decisions`).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	require.NoError(t, l.ClearAll(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
