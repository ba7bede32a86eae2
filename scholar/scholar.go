// Package scholar implements the bitemporal query engine. A Scholar is built
// once from a point-in-time chain snapshot, indexes every cell, and then
// serves queries as a pure function of (index, parameters): namespace-aware
// authorization, two-axis temporal filtering, and deterministic conflict
// resolution with an auditable proof of every decision.
//
// Correctness over speed is the explicit tradeoff: the index is a full
// rebuild, never an incremental structure. When the chain grows, build a new
// Scholar; never mutate a chain out from under an active one.
package scholar

import (
	"time"

	"go.uber.org/zap"

	"github.com/verigraph/verigraph/cell"
	"github.com/verigraph/verigraph/ledger"
	"github.com/verigraph/verigraph/namespace"
)

// DefaultCandidateLimit bounds how many candidates a single query may
// materialize before the result is truncated.
const DefaultCandidateLimit = 10000

// Config tunes scholar construction. A nil Config means defaults.
type Config struct {
	// CandidateLimit caps the candidate set per query; <= 0 means
	// DefaultCandidateLimit.
	CandidateLimit int
}

type key struct {
	namespace string
	subject   string
	predicate string
}

type nsSubject struct {
	namespace string
	subject   string
}

// Scholar holds the ephemeral query indices for one chain snapshot. It has
// no mutable state of its own after construction.
type Scholar struct {
	graphID        string
	registry       *namespace.Registry
	byID           map[cell.ID]*cell.Cell
	byNamespace    map[string][]cell.ID
	byKey          map[key][]cell.ID
	byNSSubject    map[nsSubject][]cell.ID
	candidateLimit int
	logger         *zap.SugaredLogger
}

// BuildIndex scans every cell of the chain once and populates the query
// indices. Candidate lists preserve append order, so downstream resolution
// is deterministic for a fixed chain.
func BuildIndex(ch *ledger.Chain, cfg *Config, logger *zap.SugaredLogger) *Scholar {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	limit := DefaultCandidateLimit
	if cfg != nil && cfg.CandidateLimit > 0 {
		limit = cfg.CandidateLimit
	}

	s := &Scholar{
		graphID:        ch.GraphID(),
		registry:       namespace.BuildRegistry(ch, logger),
		byID:           make(map[cell.ID]*cell.Cell),
		byNamespace:    make(map[string][]cell.ID),
		byKey:          make(map[key][]cell.ID),
		byNSSubject:    make(map[nsSubject][]cell.ID),
		candidateLimit: limit,
		logger:         logger.Named("scholar"),
	}

	for _, c := range ch.Cells() {
		s.byID[c.ID] = c
		if !c.Header.CellType.FactBearing() {
			continue
		}
		ns, subj, pred := c.Key()
		s.byNamespace[ns] = append(s.byNamespace[ns], c.ID)
		s.byNSSubject[nsSubject{ns, subj}] = append(s.byNSSubject[nsSubject{ns, subj}], c.ID)
		s.byKey[key{ns, subj, pred}] = append(s.byKey[key{ns, subj, pred}], c.ID)
	}

	s.logger.Debugw("Index built",
		"graph_id", s.graphID,
		"cells", len(s.byID),
		"namespaces", len(s.byNamespace),
		"keys", len(s.byKey),
	)
	return s
}

// Registry exposes the namespace authorization state derived during
// construction.
func (s *Scholar) Registry() *namespace.Registry {
	return s.registry
}

// Visibility returns every namespace the requester can currently reach.
// For UI and audit; enforcement happens per query.
func (s *Scholar) Visibility(requester string) []string {
	return s.registry.Visible(requester, time.Now())
}
