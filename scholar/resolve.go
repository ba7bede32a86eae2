package scholar

import (
	"fmt"
	"sort"

	"github.com/verigraph/verigraph/cell"
)

// Resolution rule names, in the order they are consulted.
const (
	RuleSourceQuality = "source_quality"
	RuleConfidence    = "confidence"
	RuleRecency       = "recency"
	RuleCellID        = "cell_id"
)

// precedes is the single total order over conflicting candidates:
// source_quality descending, then confidence descending, then system_time
// descending (most recently recorded wins), then cell_id ascending as the
// final deterministic tiebreak. Exactly one ordering, never three sorts
// reconciled after the fact.
func precedes(a, b *cell.Cell) bool {
	if ra, rb := a.Fact.SourceQuality.Rank(), b.Fact.SourceQuality.Rank(); ra != rb {
		return ra > rb
	}
	if a.Fact.Confidence != b.Fact.Confidence {
		return a.Fact.Confidence > b.Fact.Confidence
	}
	if !a.Header.SystemTime.Equal(b.Header.SystemTime) {
		return a.Header.SystemTime.After(b.Header.SystemTime)
	}
	return a.ID < b.ID
}

// decidingRule names the first criterion that separates the winner from a
// defeated competitor. cell_id is unreachable as anything but the last
// resort because the order above consults it only when all else ties.
func decidingRule(winner, loser *cell.Cell) (rule, detail string) {
	if rw, rl := winner.Fact.SourceQuality.Rank(), loser.Fact.SourceQuality.Rank(); rw != rl {
		return RuleSourceQuality, fmt.Sprintf("%s beats %s", winner.Fact.SourceQuality, loser.Fact.SourceQuality)
	}
	if winner.Fact.Confidence != loser.Fact.Confidence {
		return RuleConfidence, fmt.Sprintf("%.4f beats %.4f", winner.Fact.Confidence, loser.Fact.Confidence)
	}
	if !winner.Header.SystemTime.Equal(loser.Header.SystemTime) {
		return RuleRecency, fmt.Sprintf("recorded %s beats %s",
			winner.Header.SystemTime.Format(timeFormat),
			loser.Header.SystemTime.Format(timeFormat))
	}
	return RuleCellID, fmt.Sprintf("%s precedes %s lexicographically", winner.ID.Short(), loser.ID.Short())
}

// resolveConflict picks the single winner from a conflict set and records
// one ResolutionEvent per defeated candidate, naming the rule that actually
// broke the tie. A singleton set resolves with zero events.
func resolveConflict(group []*cell.Cell) (*cell.Cell, []ResolutionEvent) {
	if len(group) == 1 {
		return group[0], nil
	}

	ordered := make([]*cell.Cell, len(group))
	copy(ordered, group)
	sort.SliceStable(ordered, func(i, j int) bool {
		return precedes(ordered[i], ordered[j])
	})

	winner := ordered[0]
	events := make([]ResolutionEvent, 0, len(ordered)-1)
	for _, loser := range ordered[1:] {
		rule, detail := decidingRule(winner, loser)
		events = append(events, ResolutionEvent{
			Rule:         rule,
			WinnerID:     winner.ID,
			CompetitorID: loser.ID,
			Detail:       detail,
		})
	}
	return winner, events
}

const timeFormat = "2006-01-02T15:04:05.000Z07:00"
