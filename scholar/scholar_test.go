package scholar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verigraph/verigraph/cell"
	"github.com/verigraph/verigraph/errors"
	"github.com/verigraph/verigraph/internal/ledgertest"
	"github.com/verigraph/verigraph/ledger"
	"github.com/verigraph/verigraph/namespace"
	"github.com/verigraph/verigraph/scholar"
)

func grantHolding(t *testing.T, ch *ledger.Chain, principal, ns string) {
	t.Helper()
	ledgertest.Append(t, ch, ledgertest.FactSpec{
		Type:      cell.TypeAccessRule,
		Subject:   principal,
		Predicate: namespace.PredicateHolds,
		Object:    ns,
	})
}

func TestEndToEndSameNamespaceQuery(t *testing.T) {
	ch := ledgertest.NewChain(t)
	grantHolding(t, ch, "user:hr_admin", "acme.hr")
	appended := ledgertest.Append(t, ch, ledgertest.FactSpec{
		Namespace: "acme.hr",
		Subject:   "employee:jane",
		Predicate: "has_role",
		Object:    "Engineer",
	})

	s := scholar.BuildIndex(ch, nil, nil)
	result, err := s.Query(scholar.Params{
		Namespace: "acme.hr",
		Subject:   "employee:jane",
		Predicate: "has_role",
		Requester: "user:hr_admin",
	})
	require.NoError(t, err)

	require.Len(t, result.WinningFacts, 1)
	assert.Equal(t, appended.ID, result.WinningFacts[0].ID)
	assert.Empty(t, result.ResolutionEvents, "a single candidate needs no tie-break")
	assert.Empty(t, result.BridgesUsed)
	assert.Equal(t, namespace.BasisSameNamespace, result.Authorization.Kind)
	assert.False(t, result.Truncated)
}

func TestQueryWidening(t *testing.T) {
	ch := ledgertest.NewChain(t)
	grantHolding(t, ch, "user:hr_admin", "acme.hr")
	ledgertest.Append(t, ch, ledgertest.FactSpec{
		Namespace: "acme.hr", Subject: "employee:jane", Predicate: "has_role", Object: "Engineer"})
	ledgertest.Append(t, ch, ledgertest.FactSpec{
		Namespace: "acme.hr", Subject: "employee:jane", Predicate: "has_salary", Object: "120000"})
	ledgertest.Append(t, ch, ledgertest.FactSpec{
		Namespace: "acme.hr", Subject: "employee:omar", Predicate: "has_role", Object: "Analyst"})

	s := scholar.BuildIndex(ch, nil, nil)

	// Subject without predicate widens to every predicate of that subject
	bySubject, err := s.Query(scholar.Params{
		Namespace: "acme.hr", Subject: "employee:jane", Requester: "user:hr_admin"})
	require.NoError(t, err)
	assert.Len(t, bySubject.WinningFacts, 2)

	// Namespace alone widens to every subject
	byNamespace, err := s.Query(scholar.Params{
		Namespace: "acme.hr", Requester: "user:hr_admin"})
	require.NoError(t, err)
	assert.Len(t, byNamespace.WinningFacts, 3)

	// Predicate without subject still constrains to that predicate
	byPredicate, err := s.Query(scholar.Params{
		Namespace: "acme.hr", Predicate: "has_role", Requester: "user:hr_admin"})
	require.NoError(t, err)
	require.Len(t, byPredicate.WinningFacts, 2)
	for _, c := range byPredicate.WinningFacts {
		assert.Equal(t, "has_role", c.Fact.Predicate)
	}
}

func TestQueryDeterminism(t *testing.T) {
	ch := ledgertest.NewChain(t)
	grantHolding(t, ch, "user:hr_admin", "acme.hr")
	for _, obj := range []string{"Engineer", "Manager", "Director"} {
		ledgertest.Append(t, ch, ledgertest.FactSpec{
			Namespace: "acme.hr", Subject: "employee:jane", Predicate: "has_role",
			Object: obj, Quality: cell.QualitySelfReported, Confidence: 0.8})
	}

	s := scholar.BuildIndex(ch, nil, nil)
	p := scholar.Params{
		Namespace: "acme.hr", Subject: "employee:jane", Predicate: "has_role",
		Requester: "user:hr_admin"}

	first, err := s.Query(p)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := s.Query(p)
		require.NoError(t, err)
		assert.Equal(t, first.WinningFacts[0].ID, again.WinningFacts[0].ID)
		assert.Equal(t, first.ResolutionEvents, again.ResolutionEvents)
	}
}

func TestBitemporalFutureFactInvisible(t *testing.T) {
	ch := ledgertest.NewChain(t)
	grantHolding(t, ch, "user:hr_admin", "acme.hr")
	ledgertest.Append(t, ch, ledgertest.FactSpec{
		Namespace: "acme.hr",
		Subject:   "employee:jane",
		Predicate: "has_salary",
		Object:    "200000",
		ValidFrom: ledgertest.Ptr(time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)),
	})

	s := scholar.BuildIndex(ch, nil, nil)
	asOf := time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC)
	result, err := s.Query(scholar.Params{
		Namespace:  "acme.hr",
		Subject:    "employee:jane",
		Predicate:  "has_salary",
		ValidTime:  &asOf,
		SystemTime: &asOf,
		Requester:  "user:hr_admin",
	})
	require.NoError(t, err)
	assert.Empty(t, result.WinningFacts, "a future-dated fact must be invisible to a present-day view")
	assert.Empty(t, result.Candidates)
}

func TestBitemporalValidWindow(t *testing.T) {
	ch := ledgertest.NewChain(t)
	grantHolding(t, ch, "user:hr_admin", "acme.hr")
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ledgertest.Append(t, ch, ledgertest.FactSpec{
		Namespace: "acme.hr", Subject: "employee:jane", Predicate: "has_role",
		Object: "Contractor", ValidFrom: &from, ValidTo: &to})

	s := scholar.BuildIndex(ch, nil, nil)
	query := func(at time.Time) *scholar.QueryResult {
		r, err := s.Query(scholar.Params{
			Namespace: "acme.hr", Subject: "employee:jane", Predicate: "has_role",
			ValidTime: &at, Requester: "user:hr_admin"})
		require.NoError(t, err)
		return r
	}

	assert.Empty(t, query(from.Add(-time.Hour)).WinningFacts, "before valid_from")
	assert.Len(t, query(from).WinningFacts, 1, "valid_from is inclusive")
	assert.Len(t, query(to.Add(-time.Hour)).WinningFacts, 1, "inside the window")
	assert.Empty(t, query(to).WinningFacts, "valid_to is exclusive")
}

func TestSystemTimeKnowledgeCut(t *testing.T) {
	ch := ledgertest.NewChain(t)
	grantHolding(t, ch, "user:hr_admin", "acme.hr")
	early := ledgertest.Append(t, ch, ledgertest.FactSpec{
		Namespace: "acme.hr", Subject: "employee:jane", Predicate: "has_role",
		Object: "Engineer", Quality: cell.QualitySelfReported, Confidence: 0.8})
	late := ledgertest.Append(t, ch, ledgertest.FactSpec{
		Namespace: "acme.hr", Subject: "employee:jane", Predicate: "has_role",
		Object: "Manager", Quality: cell.QualitySelfReported, Confidence: 0.8,
		SystemTime: early.Header.SystemTime.Add(time.Hour)})

	s := scholar.BuildIndex(ch, nil, nil)

	// A cut between the two records sees only the early one
	cut := early.Header.SystemTime.Add(time.Minute)
	result, err := s.Query(scholar.Params{
		Namespace: "acme.hr", Subject: "employee:jane", Predicate: "has_role",
		SystemTime: &cut, Requester: "user:hr_admin"})
	require.NoError(t, err)
	require.Len(t, result.WinningFacts, 1)
	assert.Equal(t, early.ID, result.WinningFacts[0].ID)

	// Without a cut, recency favors the later record
	result, err = s.Query(scholar.Params{
		Namespace: "acme.hr", Subject: "employee:jane", Predicate: "has_role",
		Requester: "user:hr_admin"})
	require.NoError(t, err)
	require.Len(t, result.WinningFacts, 1)
	assert.Equal(t, late.ID, result.WinningFacts[0].ID)
}

func TestQueryAuthorizationEnforced(t *testing.T) {
	ch := ledgertest.NewChain(t)
	grantHolding(t, ch, "user:finance", "acme.finance")
	ledgertest.Append(t, ch, ledgertest.FactSpec{
		Namespace: "acme.hr", Subject: "employee:jane", Predicate: "has_salary", Object: "120000"})

	s := scholar.BuildIndex(ch, nil, nil)

	_, err := s.Query(scholar.Params{
		Namespace: "acme.hr", Subject: "employee:jane", Requester: "user:finance"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBridgeRequired))

	_, err = s.Query(scholar.Params{
		Namespace: "acme.hr", Subject: "employee:jane", Requester: "user:nobody"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrAccessDenied))
}

func TestQueryAcrossBridgeRecordsProof(t *testing.T) {
	ch := ledgertest.NewChain(t)
	grantHolding(t, ch, "user:finance", "acme.finance")
	bridge := ledgertest.Append(t, ch, ledgertest.FactSpec{
		Type:      cell.TypeBridgeRule,
		Subject:   "acme.finance",
		Predicate: namespace.PredicateBridges,
		Object:    "acme.hr",
		Proof: &cell.Proof{
			Signature:          []byte("sig-a"),
			SignerKeyID:        "did:key:zHR",
			CounterSignature:   []byte("sig-b"),
			CounterSignerKeyID: "did:key:zFinance",
		},
	})
	ledgertest.Append(t, ch, ledgertest.FactSpec{
		Namespace: "acme.hr", Subject: "employee:jane", Predicate: "has_salary", Object: "120000"})

	s := scholar.BuildIndex(ch, nil, nil)
	result, err := s.Query(scholar.Params{
		Namespace: "acme.hr", Subject: "employee:jane", Predicate: "has_salary",
		Requester: "user:finance"})
	require.NoError(t, err)

	assert.Equal(t, namespace.BasisBridge, result.Authorization.Kind)
	require.Len(t, result.BridgesUsed, 1)
	assert.Equal(t, bridge.ID, result.BridgesUsed[0].CellID)
	assert.Len(t, result.WinningFacts, 1)
}

func TestCandidateTruncation(t *testing.T) {
	ch := ledgertest.NewChain(t)
	grantHolding(t, ch, "user:hr_admin", "acme.hr")
	for i := 0; i < 10; i++ {
		ledgertest.Append(t, ch, ledgertest.FactSpec{
			Namespace: "acme.hr", Subject: "employee:jane", Predicate: "has_role",
			Object: "Engineer", Quality: cell.QualitySelfReported, Confidence: 0.5,
			SystemTime: ch.Head().Header.SystemTime.Add(time.Duration(i+1) * time.Second)})
	}

	s := scholar.BuildIndex(ch, &scholar.Config{CandidateLimit: 3}, nil)
	result, err := s.Query(scholar.Params{
		Namespace: "acme.hr", Subject: "employee:jane", Predicate: "has_role",
		Requester: "user:hr_admin"})
	require.NoError(t, err)

	assert.True(t, result.Truncated)
	assert.Len(t, result.Candidates, 3)

	// A per-query override widens the cap
	result, err = s.Query(scholar.Params{
		Namespace: "acme.hr", Subject: "employee:jane", Predicate: "has_role",
		Requester: "user:hr_admin", Limit: 100})
	require.NoError(t, err)
	assert.False(t, result.Truncated)
	assert.Len(t, result.Candidates, 10)
}

func TestVisibility(t *testing.T) {
	ch := ledgertest.NewChain(t)
	grantHolding(t, ch, "user:alice", "acme.hr")
	ledgertest.Append(t, ch, ledgertest.FactSpec{
		Namespace: "acme.hr.compensation", Subject: "employee:jane", Predicate: "has_salary"})

	s := scholar.BuildIndex(ch, nil, nil)
	visible := s.Visibility("user:alice")
	assert.Contains(t, visible, "acme.hr")
	assert.Contains(t, visible, "acme.hr.compensation")
	assert.NotContains(t, visible, "acme")
}

func TestFindRuleMismatches(t *testing.T) {
	ch := ledgertest.NewChain(t)
	ledgertest.Append(t, ch, ledgertest.FactSpec{
		Subject: "employee:jane", RuleID: "hr.salary", RuleLogic: "salary rule v1"})
	ledgertest.Append(t, ch, ledgertest.FactSpec{
		Subject: "employee:omar", RuleID: "hr.salary", RuleLogic: "salary rule v2"})
	ledgertest.Append(t, ch, ledgertest.FactSpec{
		Subject: "employee:omar", RuleID: "hr.role", RuleLogic: "role rule"})

	s := scholar.BuildIndex(ch, nil, nil)
	mismatches := s.FindRuleMismatches()

	require.Len(t, mismatches, 1)
	assert.Equal(t, "hr.salary", mismatches[0].RuleID)
	assert.Len(t, mismatches[0].Cells, 2)
}
