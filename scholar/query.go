package scholar

import (
	"sort"
	"time"

	"github.com/verigraph/verigraph/cell"
	"github.com/verigraph/verigraph/errors"
	"github.com/verigraph/verigraph/namespace"
)

// Params describes one query. Namespace and Requester are required; Subject
// and Predicate progressively widen the lookup when omitted. A Predicate
// without a Subject still constrains the result: candidates for other
// predicates are dropped before filtering. ValidTime asks
// "when was this true in reality", SystemTime "what did the ledger know as
// of then"; each axis filters independently when set.
type Params struct {
	Namespace  string
	Subject    string
	Predicate  string
	ValidTime  *time.Time
	SystemTime *time.Time
	Requester  string
	// Limit overrides the scholar's candidate cap for this query; <= 0
	// keeps the configured cap.
	Limit int
}

// ResolutionEvent records one tie-break decision: which rule separated the
// winner from a competing candidate.
type ResolutionEvent struct {
	Rule         string  `json:"rule"` // source_quality | confidence | recency | cell_id
	WinnerID     cell.ID `json:"winner_id"`
	CompetitorID cell.ID `json:"competitor_id"`
	Detail       string  `json:"detail"`
}

// QueryResult is the full auditable proof bundle for one query.
type QueryResult struct {
	WinningFacts     []*cell.Cell        `json:"winning_facts"`
	Candidates       []*cell.Cell        `json:"candidates"`
	BridgesUsed      []*namespace.Bridge `json:"bridges_used,omitempty"`
	ResolutionEvents []ResolutionEvent   `json:"resolution_events,omitempty"`
	Authorization    *namespace.Basis    `json:"authorization"`
	// Truncated is set when the candidate set hit the cap before filtering;
	// the result is then a bounded view, not the complete candidate space.
	Truncated bool `json:"truncated,omitempty"`
}

// Query resolves facts for the given parameters: candidate lookup,
// authorization, bitemporal filtering, then deterministic conflict
// resolution per surviving (subject, predicate) group.
func (s *Scholar) Query(p Params) (*QueryResult, error) {
	if p.Requester == "" {
		return nil, errors.NewValidationError("requester is required")
	}
	if err := namespace.Validate(p.Namespace); err != nil {
		return nil, err
	}

	// Authorization happens before any candidate materialization so a denied
	// requester learns nothing about the namespace's contents. The bridge
	// window is checked against the knowledge cut when one is given,
	// otherwise against the present.
	authAt := time.Now()
	if p.SystemTime != nil {
		authAt = *p.SystemTime
	}
	basis, err := s.registry.Authorize(p.Requester, p.Namespace, authAt)
	if err != nil {
		return nil, err
	}

	ids := s.lookup(p)

	limit := s.candidateLimit
	if p.Limit > 0 {
		limit = p.Limit
	}
	truncated := false
	if len(ids) > limit {
		ids = ids[:limit]
		truncated = true
		s.logger.Warnw("Candidate set truncated",
			"namespace", p.Namespace,
			"limit", limit,
		)
	}

	candidates := make([]*cell.Cell, 0, len(ids))
	for _, id := range ids {
		c := s.byID[id]
		// The namespace-wide index cannot narrow by predicate, so a
		// predicate-only query filters here.
		if p.Predicate != "" && c.Fact.Predicate != p.Predicate {
			continue
		}
		if s.admit(c, p.ValidTime, p.SystemTime) {
			candidates = append(candidates, c)
		}
	}

	winners, events := resolveGroups(candidates)

	result := &QueryResult{
		WinningFacts:     winners,
		Candidates:       candidates,
		ResolutionEvents: events,
		Authorization:    basis,
		Truncated:        truncated,
	}
	if basis.Bridge != nil {
		result.BridgesUsed = []*namespace.Bridge{basis.Bridge}
	}
	return result, nil
}

// lookup picks the narrowest index the parameters allow.
func (s *Scholar) lookup(p Params) []cell.ID {
	switch {
	case p.Subject != "" && p.Predicate != "":
		return s.byKey[key{p.Namespace, p.Subject, p.Predicate}]
	case p.Subject != "":
		return s.byNSSubject[nsSubject{p.Namespace, p.Subject}]
	default:
		return s.byNamespace[p.Namespace]
	}
}

// admit applies the bitemporal filter. A candidate survives iff it was true
// at validTime (when set) and already recorded at systemTime (when set).
// A fact whose validity begins after the knowledge cut is excluded even
// without a validTime: we cannot know in the past about a fact that did not
// yet exist.
func (s *Scholar) admit(c *cell.Cell, validTime, systemTime *time.Time) bool {
	if validTime != nil {
		if c.Fact.ValidFrom != nil && validTime.Before(*c.Fact.ValidFrom) {
			return false
		}
		if c.Fact.ValidTo != nil && !validTime.Before(*c.Fact.ValidTo) {
			return false
		}
	}
	if systemTime != nil {
		if c.Header.SystemTime.After(*systemTime) {
			return false
		}
		if c.Fact.ValidFrom != nil && c.Fact.ValidFrom.After(*systemTime) {
			return false
		}
	}
	return true
}

// resolveGroups partitions candidates by (subject, predicate), resolves each
// conflict set to a single winner, and returns winners in a deterministic
// order with the tie-break audit trail.
func resolveGroups(candidates []*cell.Cell) ([]*cell.Cell, []ResolutionEvent) {
	if len(candidates) == 0 {
		return nil, nil
	}

	type groupKey struct{ subject, predicate string }
	groups := make(map[groupKey][]*cell.Cell)
	var order []groupKey
	for _, c := range candidates {
		gk := groupKey{c.Fact.Subject, c.Fact.Predicate}
		if _, seen := groups[gk]; !seen {
			order = append(order, gk)
		}
		groups[gk] = append(groups[gk], c)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].subject != order[j].subject {
			return order[i].subject < order[j].subject
		}
		return order[i].predicate < order[j].predicate
	})

	var winners []*cell.Cell
	var events []ResolutionEvent
	for _, gk := range order {
		winner, groupEvents := resolveConflict(groups[gk])
		winners = append(winners, winner)
		events = append(events, groupEvents...)
	}
	return winners, events
}
