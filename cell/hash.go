package cell

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/verigraph/verigraph/errors"
)

// ID is a content-addressed cell identity: the lowercase hex sha256 digest of
// the cell's canonical seal. IDs come only from hashing (computeID) or from
// ParseID, which validates the digest shape. Never hand-construct one from
// arbitrary bytes.
type ID string

// NullHash is the reserved predecessor value for genesis cells.
const NullHash ID = "0000000000000000000000000000000000000000000000000000000000000000"

const digestHexLen = 64

// ParseID validates that s has the shape of a sha256 hex digest and returns
// it as an ID. The null hash is accepted.
func ParseID(s string) (ID, error) {
	if len(s) != digestHexLen {
		return "", errors.NewValidationError("cell id %q has length %d, want %d hex chars", s, len(s), digestHexLen)
	}
	if _, err := hex.DecodeString(s); err != nil {
		return "", errors.NewValidationError("cell id %q is not valid hex: %v", s, err)
	}
	return ID(strings.ToLower(s)), nil
}

// IsNull reports whether id is the reserved genesis predecessor value.
func (id ID) IsNull() bool {
	return id == NullHash
}

func (id ID) String() string {
	return string(id)
}

// Short returns a truncated form for logs and CLI output.
func (id ID) Short() string {
	if len(id) >= 12 {
		return string(id[:12])
	}
	return string(id)
}

// seal is the canonical serialization the cell ID is computed over. The field
// set and declaration order are fixed by contract: reordering, renaming, or
// adding a field here is a breaking format change.
//
// json.Marshal emits struct fields in declaration order per the Go spec, so
// this is deterministic. SystemTime participates as UnixMilli UTC so that
// equivalent timestamps in different zones hash identically.
type seal struct {
	Version       string  `json:"version"`
	GraphID       string  `json:"graph_id"`
	CellType      Type    `json:"cell_type"`
	SystemTime    int64   `json:"system_time"`
	PrevCellHash  ID      `json:"prev_cell_hash"`
	Namespace     string  `json:"namespace"`
	Subject       string  `json:"subject"`
	Predicate     string  `json:"predicate"`
	Object        string  `json:"object"`
	RuleID        string  `json:"rule_id"`
	RuleLogicHash string  `json:"rule_logic_hash"`
	Confidence    float64 `json:"confidence"`
	SourceQuality string  `json:"source_quality"`
	ValidFrom     int64   `json:"valid_from"` // UnixMilli, 0 when absent
	ValidTo       int64   `json:"valid_to"`   // UnixMilli, 0 when absent
}

// CanonicalBytes returns the canonical seal serialization of the cell's
// identity-bearing fields. The same bytes feed both the content hash and the
// external signing collaborator.
func CanonicalBytes(h Header, f Fact, a LogicAnchor) ([]byte, error) {
	s := seal{
		Version:       h.Version,
		GraphID:       h.GraphID,
		CellType:      h.CellType,
		SystemTime:    h.SystemTime.UnixMilli(),
		PrevCellHash:  h.PrevCellHash,
		Namespace:     f.Namespace,
		Subject:       f.Subject,
		Predicate:     f.Predicate,
		Object:        f.Object,
		RuleID:        a.RuleID,
		RuleLogicHash: a.RuleLogicHash,
		Confidence:    f.Confidence,
		SourceQuality: string(f.SourceQuality),
	}
	if f.ValidFrom != nil {
		s.ValidFrom = f.ValidFrom.UnixMilli()
	}
	if f.ValidTo != nil {
		s.ValidTo = f.ValidTo.UnixMilli()
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal canonical seal")
	}
	return b, nil
}

// computeID hashes the canonical seal. The sole constructor of non-null IDs.
func computeID(h Header, f Fact, a LogicAnchor) (ID, error) {
	b, err := CanonicalBytes(h, f, a)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return ID(hex.EncodeToString(sum[:])), nil
}

// NormalizeRuleLogic collapses all whitespace runs in rule text to single
// spaces and trims the ends, so formatting changes never alter provenance.
func NormalizeRuleLogic(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// HashRuleLogic returns the hex sha256 digest of the normalized rule text.
func HashRuleLogic(text string) string {
	sum := sha256.Sum256([]byte(NormalizeRuleLogic(text)))
	return hex.EncodeToString(sum[:])
}
