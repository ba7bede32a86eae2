package scholar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verigraph/verigraph/cell"
	"github.com/verigraph/verigraph/internal/ledgertest"
	"github.com/verigraph/verigraph/scholar"
)

// conflictQuery appends the given specs for one (namespace, subject,
// predicate) key and resolves them.
func conflictQuery(t *testing.T, specs []ledgertest.FactSpec) ([]*cell.Cell, *scholar.QueryResult) {
	t.Helper()
	ch := ledgertest.NewChain(t)
	grantHolding(t, ch, "user:hr_admin", "acme.hr")

	appended := make([]*cell.Cell, 0, len(specs))
	for _, s := range specs {
		s.Namespace = "acme.hr"
		s.Subject = "employee:jane"
		s.Predicate = "has_role"
		appended = append(appended, ledgertest.Append(t, ch, s))
	}

	result, err := scholar.BuildIndex(ch, nil, nil).Query(scholar.Params{
		Namespace: "acme.hr",
		Subject:   "employee:jane",
		Predicate: "has_role",
		Requester: "user:hr_admin",
	})
	require.NoError(t, err)
	require.Len(t, result.WinningFacts, 1)
	return appended, result
}

func TestResolveQualityBeatsEverything(t *testing.T) {
	appended, result := conflictQuery(t, []ledgertest.FactSpec{
		{Object: "Engineer", Quality: cell.QualityInferred, Confidence: 0.99},
		{Object: "Manager", Quality: cell.QualityVerified, Confidence: 0.6},
		{Object: "Director", Quality: cell.QualitySelfReported, Confidence: 0.99},
	})

	assert.Equal(t, appended[1].ID, result.WinningFacts[0].ID,
		"verified must beat higher-confidence unverified candidates")
	require.Len(t, result.ResolutionEvents, 2)
	for _, ev := range result.ResolutionEvents {
		assert.Equal(t, scholar.RuleSourceQuality, ev.Rule)
		assert.Equal(t, appended[1].ID, ev.WinnerID)
	}
}

func TestResolveConfidenceBreaksQualityTie(t *testing.T) {
	appended, result := conflictQuery(t, []ledgertest.FactSpec{
		{Object: "Engineer", Quality: cell.QualitySelfReported, Confidence: 0.7},
		{Object: "Manager", Quality: cell.QualitySelfReported, Confidence: 0.9},
	})

	assert.Equal(t, appended[1].ID, result.WinningFacts[0].ID)
	require.Len(t, result.ResolutionEvents, 1)
	assert.Equal(t, scholar.RuleConfidence, result.ResolutionEvents[0].Rule)
	assert.Equal(t, appended[0].ID, result.ResolutionEvents[0].CompetitorID)
}

func TestResolveRecencyBreaksConfidenceTie(t *testing.T) {
	base := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	appended, result := conflictQuery(t, []ledgertest.FactSpec{
		{Object: "Engineer", Quality: cell.QualitySelfReported, Confidence: 0.8, SystemTime: base},
		{Object: "Manager", Quality: cell.QualitySelfReported, Confidence: 0.8, SystemTime: base.Add(time.Hour)},
	})

	assert.Equal(t, appended[1].ID, result.WinningFacts[0].ID,
		"most recently recorded wins on a full quality/confidence tie")
	require.Len(t, result.ResolutionEvents, 1)
	assert.Equal(t, scholar.RuleRecency, result.ResolutionEvents[0].Rule)
}

func TestResolveCellIDFinalTiebreak(t *testing.T) {
	base := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	appended, result := conflictQuery(t, []ledgertest.FactSpec{
		{Object: "Engineer", Quality: cell.QualitySelfReported, Confidence: 0.8, SystemTime: base},
		{Object: "Manager", Quality: cell.QualitySelfReported, Confidence: 0.8, SystemTime: base},
	})

	// Everything ties except the content hash; the lexicographically
	// smaller id wins, whichever cell that happens to be.
	expected := appended[0]
	if appended[1].ID < appended[0].ID {
		expected = appended[1]
	}
	assert.Equal(t, expected.ID, result.WinningFacts[0].ID)
	require.Len(t, result.ResolutionEvents, 1)
	assert.Equal(t, scholar.RuleCellID, result.ResolutionEvents[0].Rule)
}

func TestResolveEventsExplainEveryDefeat(t *testing.T) {
	_, result := conflictQuery(t, []ledgertest.FactSpec{
		{Object: "A", Quality: cell.QualityInferred, Confidence: 0.5},
		{Object: "B", Quality: cell.QualitySelfReported, Confidence: 0.5},
		{Object: "C", Quality: cell.QualitySelfReported, Confidence: 0.9},
		{Object: "D", Quality: cell.QualityVerified, Confidence: 0.9},
	})

	// One event per defeated candidate, each naming exactly one of the four
	// ordered criteria
	require.Len(t, result.ResolutionEvents, 3)
	known := map[string]bool{
		scholar.RuleSourceQuality: true,
		scholar.RuleConfidence:    true,
		scholar.RuleRecency:       true,
		scholar.RuleCellID:        true,
	}
	for _, ev := range result.ResolutionEvents {
		assert.True(t, known[ev.Rule], "unknown resolution rule %q", ev.Rule)
		assert.NotEmpty(t, ev.Detail)
	}
}
