// Package ledgertest provides fixtures for building chains in tests.
package ledgertest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/verigraph/verigraph/cell"
	"github.com/verigraph/verigraph/ledger"
)

// GenesisTime is the fixed bootstrap timestamp for test chains, well in the
// past so tests can append at explicit later times.
var GenesisTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// NewChain builds a chain for graph "Acme" rooted at "acme".
func NewChain(t *testing.T) *ledger.Chain {
	t.Helper()
	g, err := cell.CreateGenesisAt("Acme", "acme", "test@acme", GenesisTime)
	require.NoError(t, err)
	ch, err := ledger.FromGenesis(g, nil)
	require.NoError(t, err)
	return ch
}

// FactSpec describes a cell to append. Zero values get sensible defaults:
// type fact, quality verified, confidence 1.0, namespace = chain root,
// system_time = one second after the current head, predecessor = head.
type FactSpec struct {
	Type       cell.Type
	Namespace  string
	Subject    string
	Predicate  string
	Object     string
	Quality    cell.SourceQuality
	Confidence float64
	ValidFrom  *time.Time
	ValidTo    *time.Time
	SystemTime time.Time
	RuleID     string
	RuleLogic  string
	Evidence   []string
	Proof      *cell.Proof
}

// Build constructs a cell chained onto ch without appending it.
func Build(t *testing.T, ch *ledger.Chain, s FactSpec) *cell.Cell {
	t.Helper()

	if s.Type == "" {
		s.Type = cell.TypeFact
	}
	if s.Namespace == "" {
		s.Namespace = ch.RootNamespace()
	}
	if s.Subject == "" {
		s.Subject = "entity:test"
	}
	if s.Predicate == "" {
		s.Predicate = "has_attribute"
	}
	if s.Quality == "" {
		s.Quality = cell.QualityVerified
	}
	if s.Confidence == 0 {
		s.Confidence = 1.0
	}
	if s.SystemTime.IsZero() {
		s.SystemTime = ch.Head().Header.SystemTime.Add(time.Second)
	}
	if s.RuleID == "" {
		s.RuleID = "test.rule"
	}
	if s.RuleLogic == "" {
		s.RuleLogic = "test rule logic"
	}

	c, err := cell.New(
		cell.Header{
			Version:      cell.SchemaVersion,
			GraphID:      ch.GraphID(),
			CellType:     s.Type,
			SystemTime:   s.SystemTime,
			PrevCellHash: ch.Head().ID,
		},
		cell.Fact{
			Namespace:     s.Namespace,
			Subject:       s.Subject,
			Predicate:     s.Predicate,
			Object:        s.Object,
			SourceQuality: s.Quality,
			Confidence:    s.Confidence,
			ValidFrom:     s.ValidFrom,
			ValidTo:       s.ValidTo,
		},
		cell.LogicAnchor{
			RuleID:        s.RuleID,
			RuleLogicHash: cell.HashRuleLogic(s.RuleLogic),
		},
		s.Evidence,
		s.Proof,
	)
	require.NoError(t, err)
	return c
}

// Append builds a cell from s and commits it through the gate.
func Append(t *testing.T, ch *ledger.Chain, s FactSpec) *cell.Cell {
	t.Helper()
	c := Build(t, ch, s)
	require.NoError(t, ch.Append(c))
	return c
}

// Ptr returns a pointer to v, for optional timestamp fields.
func Ptr(v time.Time) *time.Time {
	return &v
}
