package ledger

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/risk-cli/internal/model"
)

func newTestJSONFileLedger(t *testing.T) (*JSONFileLedger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "decisions.json")
	l, err := NewJSONFile(path)
	require.NoError(t, err)
	require.NoError(t, l.Migrate(context.Background()))
	return l, path
}

func TestJSONFileLedger_MigrateCreatesFile(t *testing.T) {
	_, path := newTestJSONFileLedger(t)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestJSONFileLedger_StoreDecision_SequentialIDs(t *testing.T) {
	l, _ := newTestJSONFileLedger(t)
	ctx := context.Background()

	first, err := l.StoreDecision(ctx, testCase(), testClassification())
	require.NoError(t, err)
	second, err := l.StoreDecision(ctx, testCase(), testClassification())
	require.NoError(t, err)

	assert.Equal(t, "DEC00001", first.DecisionID)
	assert.Equal(t, "DEC00002", second.DecisionID)

	all, err := l.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "DEC00001", all[0].DecisionID)
}

func TestJSONFileLedger_PersistsAcrossReopen(t *testing.T) {
	l, path := newTestJSONFileLedger(t)
	ctx := context.Background()

	_, err := l.StoreDecision(ctx, testCase(), testClassification())
	require.NoError(t, err)

	reopened, err := NewJSONFile(path)
	require.NoError(t, err)

	all, err := reopened.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "DEC00001", all[0].DecisionID)
	assert.Equal(t, "HIGH", all[0].AIDecision.RiskLevel)

	// The next append continues the sequence from the recovered count.
	next, err := reopened.StoreDecision(ctx, testCase(), testClassification())
	require.NoError(t, err)
	assert.Equal(t, "DEC00002", next.DecisionID)
}

func TestJSONFileLedger_CorruptFileDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))

	l, err := NewJSONFile(path)
	require.NoError(t, err)

	all, err := l.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestJSONFileLedger_GetByCase(t *testing.T) {
	l, _ := newTestJSONFileLedger(t)
	ctx := context.Background()

	other := testCase()
	other.CaseID = "CASE001"

	_, err := l.StoreDecision(ctx, testCase(), testClassification())
	require.NoError(t, err)
	_, err = l.StoreDecision(ctx, other, testClassification())
	require.NoError(t, err)
	_, err = l.StoreDecision(ctx, testCase(), testClassification())
	require.NoError(t, err)

	got, err := l.GetByCase(ctx, "CASE003")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "DEC00001", got[0].DecisionID)
	assert.Equal(t, "DEC00003", got[1].DecisionID)

	none, err := l.GetByCase(ctx, "CASE999")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestJSONFileLedger_GetLatestByCase(t *testing.T) {
	l, _ := newTestJSONFileLedger(t)
	ctx := context.Background()

	latest, err := l.GetLatestByCase(ctx, "CASE003")
	require.NoError(t, err)
	assert.Nil(t, latest)

	_, err = l.StoreDecision(ctx, testCase(), testClassification())
	require.NoError(t, err)
	_, err = l.StoreDecision(ctx, testCase(), testClassification())
	require.NoError(t, err)

	latest, err = l.GetLatestByCase(ctx, "CASE003")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "DEC00002", latest.DecisionID)
}

func TestJSONFileLedger_GetByRiskLevel(t *testing.T) {
	l, _ := newTestJSONFileLedger(t)
	ctx := context.Background()

	low := testClassification()
	low.RiskLevel = "LOW"

	_, err := l.StoreDecision(ctx, testCase(), testClassification())
	require.NoError(t, err)
	_, err = l.StoreDecision(ctx, testCase(), low)
	require.NoError(t, err)

	high, err := l.GetByRiskLevel(ctx, "HIGH")
	require.NoError(t, err)
	require.Len(t, high, 1)
	assert.Equal(t, "DEC00001", high[0].DecisionID)
}

func TestJSONFileLedger_Statistics(t *testing.T) {
	l, _ := newTestJSONFileLedger(t)
	ctx := context.Background()

	stats, err := l.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Nil(t, stats.HighPercentage)

	low := testClassification()
	low.RiskLevel = "LOW"
	_, err = l.StoreDecision(ctx, testCase(), testClassification())
	require.NoError(t, err)
	_, err = l.StoreDecision(ctx, testCase(), low)
	require.NoError(t, err)

	stats, err = l.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.High)
	assert.Equal(t, 1, stats.Low)
	require.NotNil(t, stats.HighPercentage)
	assert.Equal(t, 50.0, *stats.HighPercentage)
}

func TestJSONFileLedger_ClearAll(t *testing.T) {
	l, path := newTestJSONFileLedger(t)
	ctx := context.Background()

	_, err := l.StoreDecision(ctx, testCase(), testClassification())
	require.NoError(t, err)
	require.NoError(t, l.ClearAll(ctx))

	all, err := l.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	// Disk document is emptied too, not just memory.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))

	// Sequence restarts after a clear.
	next, err := l.StoreDecision(ctx, testCase(), testClassification())
	require.NoError(t, err)
	assert.Equal(t, "DEC00001", next.DecisionID)
}

func TestJSONFileLedger_DocumentShape(t *testing.T) {
	l, path := newTestJSONFileLedger(t)
	ctx := context.Background()

	_, err := l.StoreDecision(ctx, testCase(), testClassification())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc []map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc, 1)
	assert.Equal(t, "DEC00001", doc[0]["decision_id"])
	assert.Equal(t, "pending_review", doc[0]["status"])
	assert.Contains(t, doc[0], "input_data")
	assert.Contains(t, doc[0], "ai_decision")
}

func TestJSONFileLedger_GetAllReturnsCopy(t *testing.T) {
	l, _ := newTestJSONFileLedger(t)
	ctx := context.Background()

	_, err := l.StoreDecision(ctx, testCase(), testClassification())
	require.NoError(t, err)

	all, err := l.GetAll(ctx)
	require.NoError(t, err)
	all[0].AIDecision = model.DecisionSummary{RiskLevel: "TAMPERED"}

	again, err := l.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "HIGH", again[0].AIDecision.RiskLevel)
}
