package view

import "context"

// Kind names a cached read view that a mutation makes stale.
type Kind string

const (
	KindMatches     Kind = "matches"
	KindSeries      Kind = "series"
	KindSpecials    Kind = "specials"
	KindQuestions   Kind = "questions"
	KindLeaderboard Kind = "leaderboard"
)

// Change identifies one stale view of one league. It is published exactly
// once per successful mutating operation.
type Change struct {
	LeagueID string
	Kind     Kind
}

// Invalidator is the downstream cache's notification port. Implementations
// must tolerate changes for views they never cached.
type Invalidator interface {
	Invalidate(ctx context.Context, change Change)
}
