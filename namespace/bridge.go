package namespace

import (
	"time"

	"github.com/verigraph/verigraph/cell"
)

// PredicateBridges is the predicate carried by bridge_rule cells:
// subject = granting namespace, object = namespace made visible.
const PredicateBridges = "bridges_to"

// PredicateRevokes is the predicate carried by bridge_revocation cells:
// object = cell_id of the bridge being revoked.
const PredicateRevokes = "revokes"

// Bridge is the parsed form of a bridge_rule cell: it authorizes holders of
// From to see To (and To's descendants). Visibility is not transitive:
// bridged namespaces do not re-export their own bridges.
type Bridge struct {
	CellID cell.ID
	From   string
	To     string

	// Validity window, half-open [ValidFrom, ValidTo). Nil bounds are open.
	ValidFrom *time.Time
	ValidTo   *time.Time

	// Dual signatures: grantor is the owner of To (who gives visibility),
	// grantee the owner of From (who receives it). Both are required.
	GrantorKeyID  string
	GrantorSigned bool
	GranteeKeyID  string
	GranteeSigned bool

	// RevokedBy is the id of the bridge_revocation cell, if any, and
	// RevokedAt its system_time. Revocation takes effect from that instant,
	// so an as-of evaluation before it still sees the bridge as live.
	RevokedBy cell.ID
	RevokedAt time.Time
}

// Revoked reports whether a later revocation cell references this bridge.
func (b *Bridge) Revoked() bool {
	return b.RevokedBy != ""
}

// RevokedAsOf reports whether the revocation had taken effect at the given
// time.
func (b *Bridge) RevokedAsOf(at time.Time) bool {
	return b.RevokedBy != "" && !at.Before(b.RevokedAt)
}

// InWindow reports whether at falls inside the bridge's validity window.
func (b *Bridge) InWindow(at time.Time) bool {
	if b.ValidFrom != nil && at.Before(*b.ValidFrom) {
		return false
	}
	if b.ValidTo != nil && !at.Before(*b.ValidTo) {
		return false
	}
	return true
}

// Defect returns the reason this bridge cannot authorize access at the given
// time, or "" if the bridge is fully valid. Checked in a fixed order so the
// reported defect is deterministic.
func (b *Bridge) Defect(at time.Time) string {
	if b.RevokedAsOf(at) {
		return "revoked by cell " + b.RevokedBy.Short()
	}
	if b.ValidFrom != nil && at.Before(*b.ValidFrom) {
		return "not yet valid (window opens " + b.ValidFrom.Format(time.RFC3339) + ")"
	}
	if b.ValidTo != nil && !at.Before(*b.ValidTo) {
		return "expired (window closed " + b.ValidTo.Format(time.RFC3339) + ")"
	}
	if !b.GrantorSigned {
		return "missing grantor signature"
	}
	if !b.GranteeSigned {
		return "missing grantee signature"
	}
	return ""
}
