package cell

import (
	"time"
)

// SchemaVersion is the cell header version written by this code.
// Bump only on a breaking change to the canonical seal field set.
const SchemaVersion = "1.0"

// Type enumerates the closed set of cell kinds. Adding a kind is a
// source-level change here, never a free-form string at a call site.
type Type string

const (
	TypeGenesis          Type = "genesis"
	TypeFact             Type = "fact"
	TypeRule             Type = "rule"
	TypeDecision         Type = "decision"
	TypeEvidence         Type = "evidence"
	TypeOverride         Type = "override"
	TypeAccessRule       Type = "access_rule"
	TypeBridgeRule       Type = "bridge_rule"
	TypeBridgeRevocation Type = "bridge_revocation"
	TypeNamespaceDef     Type = "namespace_def"
	TypePolicyHead       Type = "policy_head"
)

// Valid reports whether t is one of the known cell kinds.
func (t Type) Valid() bool {
	switch t {
	case TypeGenesis, TypeFact, TypeRule, TypeDecision, TypeEvidence,
		TypeOverride, TypeAccessRule, TypeBridgeRule, TypeBridgeRevocation,
		TypeNamespaceDef, TypePolicyHead:
		return true
	}
	return false
}

// FactBearing reports whether cells of this kind carry queryable facts.
// Structural kinds (access rules, bridges, namespace definitions) shape
// visibility but never compete as query candidates.
func (t Type) FactBearing() bool {
	switch t {
	case TypeFact, TypeOverride, TypeDecision, TypeEvidence:
		return true
	}
	return false
}

// SourceQuality is the ordered quality enumeration for facts.
// The order is total and fixed: verified > self_reported > inferred.
type SourceQuality string

const (
	QualityVerified     SourceQuality = "verified"
	QualitySelfReported SourceQuality = "self_reported"
	QualityInferred     SourceQuality = "inferred"
)

// Rank returns the position of q in the quality total order.
// Higher rank wins during conflict resolution; unknown values rank 0.
func (q SourceQuality) Rank() int {
	switch q {
	case QualityVerified:
		return 3
	case QualitySelfReported:
		return 2
	case QualityInferred:
		return 1
	}
	return 0
}

// Valid reports whether q is one of the known quality levels.
func (q SourceQuality) Valid() bool {
	return q.Rank() > 0
}

// Header carries the chain-structural fields of a cell.
type Header struct {
	Version      string    `json:"version"`
	GraphID      string    `json:"graph_id"`
	CellType     Type      `json:"cell_type"`
	SystemTime   time.Time `json:"system_time"`
	PrevCellHash ID        `json:"prev_cell_hash"`
}

// Fact is a subject-predicate-object assertion with temporal and quality
// metadata. ValidFrom/ValidTo bound when the fact is true in reality;
// an absent ValidTo means open-ended.
type Fact struct {
	Namespace     string        `json:"namespace"`
	Subject       string        `json:"subject"`
	Predicate     string        `json:"predicate"`
	Object        string        `json:"object"`
	SourceQuality SourceQuality `json:"source_quality"`
	Confidence    float64       `json:"confidence"`
	ValidFrom     *time.Time    `json:"valid_from,omitempty"`
	ValidTo       *time.Time    `json:"valid_to,omitempty"`
}

// LogicAnchor ties a fact to the rule that produced it. RuleLogicHash is
// computed over whitespace-normalized rule text so formatting never changes
// provenance.
type LogicAnchor struct {
	RuleID        string `json:"rule_id"`
	RuleLogicHash string `json:"rule_logic_hash"`
	Interpreter   string `json:"interpreter,omitempty"`
}

// Proof holds the signature material attached to a cell. Proof fields are
// outside the hashed seal, so signatures can be added after construction
// without changing the cell's identity.
//
// Bridge cells are dual-signed: Signature/SignerKeyID belong to the granting
// namespace owner, CounterSignature/CounterSignerKeyID to the receiving one.
type Proof struct {
	EvidenceCellIDs    []string `json:"evidence_cell_ids,omitempty"`
	Signature          []byte   `json:"signature,omitempty"`
	SignerKeyID        string   `json:"signer_key_id,omitempty"`
	CounterSignature   []byte   `json:"counter_signature,omitempty"`
	CounterSignerKeyID string   `json:"counter_signer_key_id,omitempty"`
}

// Cell is the immutable, content-addressed unit of truth. ID is the sha256
// digest of the canonical seal over every identity-bearing field; changing
// any of those fields changes the ID by construction.
//
// Cells are never mutated after New returns. Correction is expressed only by
// appending a new cell (an override or revocation) that later queries
// interpret.
type Cell struct {
	ID          ID          `json:"cell_id"`
	Header      Header      `json:"header"`
	Fact        Fact        `json:"fact"`
	LogicAnchor LogicAnchor `json:"logic_anchor"`
	Evidence    []string    `json:"evidence,omitempty"`
	Proof       *Proof      `json:"proof,omitempty"`
}
