package namespace

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/verigraph/verigraph/cell"
	"github.com/verigraph/verigraph/errors"
	"github.com/verigraph/verigraph/ledger"
)

// PredicateHolds is the predicate carried by access_rule cells:
// subject = principal id, object = namespace the principal holds.
const PredicateHolds = "holds"

// BasisKind classifies how a principal was authorized for a namespace.
type BasisKind string

const (
	// BasisSameNamespace: the principal holds the queried namespace itself.
	BasisSameNamespace BasisKind = "same_namespace"
	// BasisAncestor: the principal holds an ancestor of the queried
	// namespace; descendant visibility is implicit and cannot be overridden
	// by descendant access rules.
	BasisAncestor BasisKind = "ancestor"
	// BasisBridge: access was granted by a valid cross-namespace bridge.
	BasisBridge BasisKind = "bridge"
)

// Basis records why a principal was allowed to see a namespace. It is part
// of the auditable query proof.
type Basis struct {
	Principal     string    `json:"principal"`
	Namespace     string    `json:"namespace"`
	Kind          BasisKind `json:"kind"`
	HeldNamespace string    `json:"held_namespace"`
	Bridge        *Bridge   `json:"bridge,omitempty"`
}

// Registry is the namespace authorization state derived from one chain
// scan. It is never stored: rebuild it from a fresh chain snapshot whenever
// the chain grows.
type Registry struct {
	root       string
	holdings   map[string][]string
	bridges    []*Bridge
	bridgeByID map[cell.ID]*Bridge
	namespaces map[string]bool
	defined    map[string]bool
	logger     *zap.SugaredLogger
}

// BuildRegistry scans every cell once and derives holdings, bridges,
// revocations, and the set of observed namespaces.
func BuildRegistry(ch *ledger.Chain, logger *zap.SugaredLogger) *Registry {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	r := &Registry{
		root:       ch.RootNamespace(),
		holdings:   make(map[string][]string),
		bridgeByID: make(map[cell.ID]*Bridge),
		namespaces: make(map[string]bool),
		defined:    make(map[string]bool),
		logger:     logger.Named("namespace"),
	}

	for _, c := range ch.Cells() {
		r.namespaces[c.Fact.Namespace] = true

		switch c.Header.CellType {
		case cell.TypeAccessRule:
			if c.Fact.Predicate != PredicateHolds {
				continue
			}
			if err := Validate(c.Fact.Object); err != nil {
				r.logger.Warnw("Skipping access_rule with invalid namespace",
					"cell", c.ID.Short(), "object", c.Fact.Object)
				continue
			}
			r.holdings[c.Fact.Subject] = append(r.holdings[c.Fact.Subject], c.Fact.Object)
			r.namespaces[c.Fact.Object] = true

		case cell.TypeBridgeRule:
			if c.Fact.Predicate != PredicateBridges {
				continue
			}
			b := &Bridge{
				CellID:    c.ID,
				From:      c.Fact.Subject,
				To:        c.Fact.Object,
				ValidFrom: c.Fact.ValidFrom,
				ValidTo:   c.Fact.ValidTo,
			}
			if c.Proof != nil {
				b.GrantorSigned = len(c.Proof.Signature) > 0
				b.GrantorKeyID = c.Proof.SignerKeyID
				b.GranteeSigned = len(c.Proof.CounterSignature) > 0
				b.GranteeKeyID = c.Proof.CounterSignerKeyID
			}
			r.bridges = append(r.bridges, b)
			r.bridgeByID[c.ID] = b
			r.namespaces[b.To] = true

		case cell.TypeBridgeRevocation:
			if c.Fact.Predicate != PredicateRevokes {
				continue
			}
			target, err := cell.ParseID(c.Fact.Object)
			if err != nil {
				r.logger.Warnw("Skipping bridge_revocation with malformed target",
					"cell", c.ID.Short(), "object", c.Fact.Object)
				continue
			}
			// Chain order guarantees the revocation is later than the bridge
			// it references, if that bridge exists at all.
			if b, ok := r.bridgeByID[target]; ok {
				b.RevokedBy = c.ID
				b.RevokedAt = c.Header.SystemTime
			} else {
				r.logger.Warnw("Revocation references unknown bridge",
					"cell", c.ID.Short(), "target", target.Short())
			}

		case cell.TypeNamespaceDef:
			r.defined[c.Fact.Namespace] = true
		}
	}

	return r
}

// Holdings returns the namespaces a principal holds directly.
func (r *Registry) Holdings(principal string) []string {
	out := make([]string, len(r.holdings[principal]))
	copy(out, r.holdings[principal])
	return out
}

// heldVia returns the held namespace that covers target (the target itself
// or an ancestor of it), if any.
func (r *Registry) heldVia(principal, target string) (string, bool) {
	for _, h := range r.holdings[principal] {
		if IsPrefix(h, target) {
			return h, true
		}
	}
	return "", false
}

// Authorize decides whether principal may see target at the given time and
// returns the auditable basis for the decision. Error kinds:
//
//   - ErrAccessDenied: the principal holds no namespace at all
//   - ErrBridgeRequired: cross-namespace access with no bridge in place
//   - ErrBridgeInvalid: a bridge exists but is revoked, outside its
//     validity window, or missing a required signature
func (r *Registry) Authorize(principal, target string, at time.Time) (*Basis, error) {
	if err := Validate(target); err != nil {
		return nil, err
	}

	if held, ok := r.heldVia(principal, target); ok {
		kind := BasisAncestor
		if held == target {
			kind = BasisSameNamespace
		}
		return &Basis{
			Principal:     principal,
			Namespace:     target,
			Kind:          kind,
			HeldNamespace: held,
		}, nil
	}

	if len(r.holdings[principal]) == 0 {
		return nil, errors.Wrapf(errors.ErrAccessDenied,
			"principal %q holds no namespace in this ledger", principal)
	}

	// Cross-namespace: look for a direct bridge from a held namespace (or a
	// descendant of one) into the target's subtree. Bridges never chain:
	// each hop must be explicit.
	var defects []string
	for _, b := range r.bridges {
		if !IsPrefix(b.To, target) {
			continue
		}
		if _, ok := r.heldVia(principal, b.From); !ok {
			continue
		}
		if d := b.Defect(at); d != "" {
			defects = append(defects, "bridge "+b.CellID.Short()+": "+d)
			continue
		}
		return &Basis{
			Principal:     principal,
			Namespace:     target,
			Kind:          BasisBridge,
			HeldNamespace: b.From,
			Bridge:        b,
		}, nil
	}

	if len(defects) > 0 {
		return nil, errors.Wrapf(errors.ErrBridgeInvalid,
			"principal %q has no usable bridge into %q: %v", principal, target, defects)
	}
	return nil, errors.Wrapf(errors.ErrBridgeRequired,
		"principal %q has no bridge into %q", principal, target)
}

// Visible returns every observed namespace the principal can currently
// reach, sorted. Intended for UI and audit; enforcement happens per query
// through Authorize.
func (r *Registry) Visible(principal string, at time.Time) []string {
	var out []string
	for ns := range r.namespaces {
		if _, err := r.Authorize(principal, ns, at); err == nil {
			out = append(out, ns)
		}
	}
	sort.Strings(out)
	return out
}

// Bridges returns all bridges parsed from the chain, including revoked and
// defective ones.
func (r *Registry) Bridges() []*Bridge {
	out := make([]*Bridge, len(r.bridges))
	copy(out, r.bridges)
	return out
}

// Orphans returns defined namespaces whose parent is neither defined nor the
// ledger root. Parent auto-registration is intentionally not performed;
// orphans are surfaced for audit instead of being rejected.
func (r *Registry) Orphans() []string {
	var out []string
	for ns := range r.defined {
		p := Parent(ns)
		if p == "" || p == r.root || r.defined[p] {
			continue
		}
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}
