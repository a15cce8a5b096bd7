package ledger

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/risk-cli/internal/model"
)

// JSONFileLedger persists decisions as one ordered JSON document, rewritten
// in full on every append. This is the default driver and matches the
// on-disk audit format the governance tooling consumes.
type JSONFileLedger struct {
	path string

	mu        sync.Mutex
	decisions []model.Decision
}

// NewJSONFile opens (or creates) the ledger document at path. An unreadable
// or corrupt document degrades to an empty in-memory ledger with a logged
// warning: the session keeps working, at the cost of prior durability.
func NewJSONFile(path string) (*JSONFileLedger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, eris.Wrapf(err, "ledger: create directory %s", dir)
		}
	}

	l := &JSONFileLedger{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		zap.L().Warn("ledger: read failed, starting with empty ledger",
			zap.String("path", path),
			zap.Error(err),
		)
		return l, nil
	}
	if err := json.Unmarshal(data, &l.decisions); err != nil {
		zap.L().Warn("ledger: invalid JSON, starting with empty ledger",
			zap.String("path", path),
			zap.Error(err),
		)
		l.decisions = nil
	}

	return l, nil
}

// Migrate ensures the backing document exists.
func (l *JSONFileLedger) Migrate(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		return l.persistLocked()
	}
	return nil
}

func (l *JSONFileLedger) Close() error {
	return nil
}

// persistLocked rewrites the full document. Callers must hold l.mu.
func (l *JSONFileLedger) persistLocked() error {
	decisions := l.decisions
	if decisions == nil {
		decisions = []model.Decision{}
	}
	data, err := json.MarshalIndent(decisions, "", "  ")
	if err != nil {
		return eris.Wrap(err, "ledger: marshal decisions")
	}
	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return eris.Wrapf(err, "ledger: write %s", l.path)
	}
	return nil
}

func (l *JSONFileLedger) StoreDecision(ctx context.Context, c *model.Case, result *model.Classification) (*model.Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec := newDecision(len(l.decisions)+1, c, result)
	l.decisions = append(l.decisions, rec)

	if err := l.persistLocked(); err != nil {
		// Drop the in-memory append so memory and disk stay consistent.
		l.decisions = l.decisions[:len(l.decisions)-1]
		return nil, err
	}

	return &rec, nil
}

func (l *JSONFileLedger) GetAll(ctx context.Context) ([]model.Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.Decision, len(l.decisions))
	copy(out, l.decisions)
	return out, nil
}

func (l *JSONFileLedger) GetByCase(ctx context.Context, caseID string) ([]model.Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []model.Decision
	for _, d := range l.decisions {
		if d.CaseID == caseID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (l *JSONFileLedger) GetLatestByCase(ctx context.Context, caseID string) (*model.Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := len(l.decisions) - 1; i >= 0; i-- {
		if l.decisions[i].CaseID == caseID {
			d := l.decisions[i]
			return &d, nil
		}
	}
	return nil, nil
}

func (l *JSONFileLedger) GetByRiskLevel(ctx context.Context, level string) ([]model.Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []model.Decision
	for _, d := range l.decisions {
		if d.AIDecision.RiskLevel == level {
			out = append(out, d)
		}
	}
	return out, nil
}

func (l *JSONFileLedger) Statistics(ctx context.Context) (*model.Statistics, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return computeStatistics(l.decisions), nil
}

func (l *JSONFileLedger) ClearAll(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev := l.decisions
	l.decisions = nil
	if err := l.persistLocked(); err != nil {
		l.decisions = prev
		return err
	}
	return nil
}
