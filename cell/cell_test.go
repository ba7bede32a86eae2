package cell

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verigraph/verigraph/errors"
)

func validHeader() Header {
	return Header{
		Version:      SchemaVersion,
		GraphID:      "4b36a9fa-9f25-4b37-8d51-1c2a3f4b5c6d",
		CellType:     TypeFact,
		SystemTime:   time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC),
		PrevCellHash: NullHash,
	}
}

func validFact() Fact {
	return Fact{
		Namespace:     "acme.hr",
		Subject:       "employee:jane",
		Predicate:     "has_role",
		Object:        "Engineer",
		SourceQuality: QualityVerified,
		Confidence:    1.0,
	}
}

func validAnchor() LogicAnchor {
	return LogicAnchor{
		RuleID:        "hr.role_assignment",
		RuleLogicHash: HashRuleLogic("role comes from the HR system of record"),
	}
}

func TestNewComputesStableID(t *testing.T) {
	a, err := New(validHeader(), validFact(), validAnchor(), nil, nil)
	require.NoError(t, err)

	b, err := New(validHeader(), validFact(), validAnchor(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID, "identical field values must produce identical cell IDs")
	assert.Len(t, string(a.ID), 64)
	assert.NoError(t, a.VerifyIntegrity())
}

func TestNewFieldPerturbationChangesID(t *testing.T) {
	base, err := New(validHeader(), validFact(), validAnchor(), nil, nil)
	require.NoError(t, err)

	testCases := []struct {
		name   string
		header func(*Header)
		fact   func(*Fact)
		anchor func(*LogicAnchor)
	}{
		{name: "graph_id", header: func(h *Header) { h.GraphID = "5c47ba0b-0f36-5c48-9e62-2d3b4f5c6d7e" }},
		{name: "cell_type", header: func(h *Header) { h.CellType = TypeOverride }},
		{name: "system_time", header: func(h *Header) { h.SystemTime = h.SystemTime.Add(time.Millisecond) }},
		{name: "subject", fact: func(f *Fact) { f.Subject = "employee:joan" }},
		{name: "predicate", fact: func(f *Fact) { f.Predicate = "has_title" }},
		{name: "object", fact: func(f *Fact) { f.Object = "Manager" }},
		{name: "namespace", fact: func(f *Fact) { f.Namespace = "acme.finance" }},
		{name: "confidence", fact: func(f *Fact) { f.Confidence = 0.9 }},
		{name: "source_quality", fact: func(f *Fact) { f.Confidence = 0.9; f.SourceQuality = QualityInferred }},
		{name: "valid_from", fact: func(f *Fact) {
			vf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
			f.ValidFrom = &vf
		}},
		{name: "rule_id", anchor: func(a *LogicAnchor) { a.RuleID = "hr.role_assignment.v2" }},
		{name: "rule_logic_hash", anchor: func(a *LogicAnchor) { a.RuleLogicHash = HashRuleLogic("different rule") }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h, f, a := validHeader(), validFact(), validAnchor()
			if tc.header != nil {
				tc.header(&h)
			}
			if tc.fact != nil {
				tc.fact(&f)
			}
			if tc.anchor != nil {
				tc.anchor(&a)
			}
			perturbed, err := New(h, f, a, nil, nil)
			require.NoError(t, err)
			assert.NotEqual(t, base.ID, perturbed.ID, "perturbing %s must change the cell ID", tc.name)
		})
	}
}

func TestNewValidation(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(*Header, *Fact, *LogicAnchor)
		contains string
	}{
		{
			name:     "empty graph_id",
			mutate:   func(h *Header, _ *Fact, _ *LogicAnchor) { h.GraphID = "" },
			contains: "graph_id",
		},
		{
			name:     "unknown cell_type",
			mutate:   func(h *Header, _ *Fact, _ *LogicAnchor) { h.CellType = "banana" },
			contains: "cell_type",
		},
		{
			name:     "zero system_time",
			mutate:   func(h *Header, _ *Fact, _ *LogicAnchor) { h.SystemTime = time.Time{} },
			contains: "system_time",
		},
		{
			name:     "malformed prev hash",
			mutate:   func(h *Header, _ *Fact, _ *LogicAnchor) { h.PrevCellHash = "abc" },
			contains: "prev_cell_hash",
		},
		{
			name:     "uppercase namespace",
			mutate:   func(_ *Header, f *Fact, _ *LogicAnchor) { f.Namespace = "Acme.HR" },
			contains: "namespace",
		},
		{
			name:     "empty subject",
			mutate:   func(_ *Header, f *Fact, _ *LogicAnchor) { f.Subject = "" },
			contains: "subject",
		},
		{
			name:     "confidence above one",
			mutate:   func(_ *Header, f *Fact, _ *LogicAnchor) { f.Confidence = 1.2 },
			contains: "out of range",
		},
		{
			name:     "negative confidence",
			mutate:   func(_ *Header, f *Fact, _ *LogicAnchor) { f.Confidence = -0.1 },
			contains: "out of range",
		},
		{
			name:     "NaN confidence",
			mutate:   func(_ *Header, f *Fact, _ *LogicAnchor) { f.Confidence = math.NaN() },
			contains: "out of range",
		},
		{
			name: "full confidence without verified quality",
			mutate: func(_ *Header, f *Fact, _ *LogicAnchor) {
				f.SourceQuality = QualitySelfReported
			},
			contains: "verified",
		},
		{
			name: "inverted validity window",
			mutate: func(_ *Header, f *Fact, _ *LogicAnchor) {
				from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
				to := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
				f.ValidFrom, f.ValidTo = &from, &to
			},
			contains: "valid_from",
		},
		{
			name:     "empty rule_id",
			mutate:   func(_ *Header, _ *Fact, a *LogicAnchor) { a.RuleID = "" },
			contains: "rule_id",
		},
		{
			name:     "short rule_logic_hash",
			mutate:   func(_ *Header, _ *Fact, a *LogicAnchor) { a.RuleLogicHash = "deadbeef" },
			contains: "rule_logic_hash",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h, f, a := validHeader(), validFact(), validAnchor()
			tc.mutate(&h, &f, &a)
			_, err := New(h, f, a, nil, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrValidation), "want ErrValidation, got %v", err)
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestValidateNamespace(t *testing.T) {
	testCases := []struct {
		name  string
		path  string
		valid bool
	}{
		{name: "single segment", path: "acme", valid: true},
		{name: "nested", path: "acme.hr.compensation", valid: true},
		{name: "underscores and digits", path: "org_2.team_9", valid: true},
		{name: "empty", path: "", valid: false},
		{name: "uppercase", path: "Acme", valid: false},
		{name: "empty segment", path: "acme..hr", valid: false},
		{name: "trailing dot", path: "acme.", valid: false},
		{name: "hyphen", path: "acme-corp", valid: false},
		{name: "segment too long", path: "acme." + strings.Repeat("a", 65), valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateNamespace(tc.path)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestVerifyIntegrityDetectsTampering(t *testing.T) {
	c, err := New(validHeader(), validFact(), validAnchor(), nil, nil)
	require.NoError(t, err)

	tampered := *c
	tampered.Fact.Object = "Director"

	err = tampered.VerifyIntegrity()
	require.Error(t, err)
	assert.True(t, errors.IsIntegrityError(err))
	// The error must carry both hashes for the auditor
	assert.Contains(t, err.Error(), string(c.ID))
}

func TestParseID(t *testing.T) {
	id, err := ParseID(string(NullHash))
	require.NoError(t, err)
	assert.True(t, id.IsNull())

	_, err = ParseID("not-a-digest")
	assert.Error(t, err)

	_, err = ParseID("zz" + string(NullHash)[2:])
	assert.Error(t, err)
}

func TestHashRuleLogicNormalizesWhitespace(t *testing.T) {
	a := HashRuleLogic("salary  comes\nfrom   payroll")
	b := HashRuleLogic(" salary comes from payroll ")
	assert.Equal(t, a, b, "formatting must never change provenance")

	c := HashRuleLogic("salary comes from hr")
	assert.NotEqual(t, a, c)
}
