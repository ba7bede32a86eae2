// Package cell implements the immutable, content-addressed record at the
// heart of the ledger. A cell is hashed at construction time; its ID doubles
// as lookup key and integrity proof. Construction validates every
// sub-structure synchronously; no partially-built cell is ever observable.
package cell

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/verigraph/verigraph/errors"
)

// Namespace grammar: lowercase dotted segments, each 1-64 chars of
// [a-z0-9_], at least one segment.
var namespaceSegment = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)

// ValidateNamespace checks path against the namespace grammar.
func ValidateNamespace(path string) error {
	if path == "" {
		return errors.NewValidationError("namespace is empty")
	}
	for _, seg := range strings.Split(path, ".") {
		if !namespaceSegment.MatchString(seg) {
			return errors.NewValidationError(
				"namespace %q has invalid segment %q (want lowercase [a-z0-9_], 1-64 chars)", path, seg)
		}
	}
	return nil
}

// New constructs a cell, validating each sub-structure and computing the
// content hash. Fails with a field-specific error on the first violated
// check; on success the returned cell is final and must not be mutated.
func New(header Header, fact Fact, anchor LogicAnchor, evidence []string, proof *Proof) (*Cell, error) {
	if err := validateHeader(header); err != nil {
		return nil, err
	}
	if err := validateFact(fact); err != nil {
		return nil, err
	}
	if err := validateAnchor(anchor); err != nil {
		return nil, err
	}

	id, err := computeID(header, fact, anchor)
	if err != nil {
		return nil, err
	}

	return &Cell{
		ID:          id,
		Header:      header,
		Fact:        fact,
		LogicAnchor: anchor,
		Evidence:    evidence,
		Proof:       proof,
	}, nil
}

func validateHeader(h Header) error {
	if h.Version == "" {
		return errors.NewValidationError("header version is empty")
	}
	if h.GraphID == "" {
		return errors.NewValidationError("header graph_id is empty")
	}
	if !h.CellType.Valid() {
		return errors.NewValidationError("unknown cell_type %q", h.CellType)
	}
	if h.SystemTime.IsZero() {
		return errors.NewValidationError("header system_time is zero")
	}
	if _, err := ParseID(string(h.PrevCellHash)); err != nil {
		return errors.Wrap(err, "header prev_cell_hash")
	}
	return nil
}

func validateFact(f Fact) error {
	if err := ValidateNamespace(f.Namespace); err != nil {
		return err
	}
	if f.Subject == "" {
		return errors.NewValidationError("fact subject is empty")
	}
	if f.Predicate == "" {
		return errors.NewValidationError("fact predicate is empty")
	}
	if !f.SourceQuality.Valid() {
		return errors.NewValidationError("unknown source_quality %q", f.SourceQuality)
	}
	if math.IsNaN(f.Confidence) || f.Confidence < 0 || f.Confidence > 1 {
		return errors.NewValidationError("confidence %v out of range [0,1]", f.Confidence)
	}
	// Full certainty is reserved for verified sources.
	if f.Confidence == 1.0 && f.SourceQuality != QualityVerified {
		return errors.NewValidationError(
			"confidence 1.0 requires source_quality %q, got %q", QualityVerified, f.SourceQuality)
	}
	if f.ValidFrom != nil && f.ValidTo != nil && !f.ValidFrom.Before(*f.ValidTo) {
		return errors.NewValidationError(
			"valid_from %s is not before valid_to %s",
			f.ValidFrom.Format(time.RFC3339), f.ValidTo.Format(time.RFC3339))
	}
	return nil
}

func validateAnchor(a LogicAnchor) error {
	if a.RuleID == "" {
		return errors.NewValidationError("logic_anchor rule_id is empty")
	}
	if len(a.RuleLogicHash) != digestHexLen {
		return errors.NewValidationError(
			"logic_anchor rule_logic_hash %q has length %d, want %d hex chars",
			a.RuleLogicHash, len(a.RuleLogicHash), digestHexLen)
	}
	return nil
}

// VerifyIntegrity recomputes the content hash and compares it against the
// stored ID. Any mismatch means tampering or a bug; the error carries both
// values so an auditor can see exactly what diverged.
func (c *Cell) VerifyIntegrity() error {
	computed, err := computeID(c.Header, c.Fact, c.LogicAnchor)
	if err != nil {
		return err
	}
	if computed != c.ID {
		return errors.NewIntegrityError(
			"cell %s failed integrity check: computed hash %s != stored hash %s",
			c.ID.Short(), computed, c.ID)
	}
	return nil
}

// IsGenesis reports whether this is a bootstrap cell.
func (c *Cell) IsGenesis() bool {
	return c.Header.CellType == TypeGenesis
}

// Key returns the (namespace, subject, predicate) identity this cell's fact
// answers for. Cells sharing a key compete during conflict resolution.
func (c *Cell) Key() (namespace, subject, predicate string) {
	return c.Fact.Namespace, c.Fact.Subject, c.Fact.Predicate
}
