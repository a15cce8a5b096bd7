// Package casesource loads the read-only directory of overdue-debt cases.
// The backing file is read once at construction and treated as authoritative
// for the process lifetime; there is no write-back and no reload.
package casesource

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/sells-group/risk-cli/internal/model"
)

// Source is an in-memory, read-only view of the case directory.
type Source struct {
	cases []model.Case
	byID  map[string]int
}

// Load reads the case file at path. Missing or corrupt files degrade to an
// empty source with a logged warning rather than failing: an operator with a
// bad path still gets a working (if useless) process.
func Load(path string) *Source {
	s := &Source{byID: make(map[string]int)}

	data, err := os.ReadFile(path)
	if err != nil {
		zap.L().Warn("casesource: read failed, starting with empty case directory",
			zap.String("path", path),
			zap.Error(err),
		)
		return s
	}

	var cases []model.Case
	if err := json.Unmarshal(data, &cases); err != nil {
		zap.L().Warn("casesource: invalid JSON, starting with empty case directory",
			zap.String("path", path),
			zap.Error(err),
		)
		return s
	}

	s.cases = cases
	for i, c := range cases {
		s.byID[c.CaseID] = i
	}

	zap.L().Info("casesource: loaded", zap.String("path", path), zap.Int("cases", len(cases)))
	return s
}

// All returns every case, in file order.
func (s *Source) All() []model.Case {
	out := make([]model.Case, len(s.cases))
	copy(out, s.cases)
	return out
}

// Get returns the case with the given ID, or false when absent.
func (s *Source) Get(caseID string) (*model.Case, bool) {
	i, ok := s.byID[caseID]
	if !ok {
		return nil, false
	}
	c := s.cases[i]
	return &c, true
}

// IDs returns every case ID, in file order.
func (s *Source) IDs() []string {
	ids := make([]string, len(s.cases))
	for i, c := range s.cases {
		ids[i] = c.CaseID
	}
	return ids
}

var summaryPrinter = message.NewPrinter(language.English)

// Summary returns a one-line display string for a case.
func (s *Source) Summary(caseID string) string {
	c, ok := s.Get(caseID)
	if !ok {
		return "Case not found"
	}
	amount := summaryPrinter.Sprint(number.Decimal(c.Amount, number.MaxFractionDigits(0)))
	return fmt.Sprintf("%s - %s (₹%s)", c.CaseID, c.CustomerName, amount)
}
