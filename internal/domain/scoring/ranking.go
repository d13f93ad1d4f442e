package scoring

import "time"

// ScorerRanking is one append-only version of a player's scoring-prominence
// tier. A version is active for effectiveFrom <= t < effectiveTo; a nil
// effectiveTo means still open. Rankings are always read as of the event's
// start time so later edits never rewrite already-evaluated history.
type ScorerRanking struct {
	ID            string
	PlayerID      string
	Tier          int
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
}

// ActiveAt reports whether this version covers instant t. The lower bound is
// inclusive, the upper bound exclusive.
func (r ScorerRanking) ActiveAt(t time.Time) bool {
	if t.Before(r.EffectiveFrom) {
		return false
	}
	return r.EffectiveTo == nil || t.Before(*r.EffectiveTo)
}

// TierAsOf resolves a player's tier at instant t from a version list. The
// second result is false when no version is active, which callers treat as
// "unranked" rather than an error.
func TierAsOf(rankings []ScorerRanking, playerID string, t time.Time) (int, bool) {
	for _, r := range rankings {
		if r.PlayerID == playerID && r.ActiveAt(t) {
			return r.Tier, true
		}
	}
	return 0, false
}

// TiersAsOf resolves every ranked player's tier at instant t.
func TiersAsOf(rankings []ScorerRanking, t time.Time) map[string]int {
	tiers := make(map[string]int, len(rankings))
	for _, r := range rankings {
		if _, seen := tiers[r.PlayerID]; seen {
			continue
		}
		if r.ActiveAt(t) {
			tiers[r.PlayerID] = r.Tier
		}
	}
	return tiers
}
