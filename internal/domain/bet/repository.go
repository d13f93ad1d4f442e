package bet

import "context"

// MatchBetRepository persists match predictions. At most one non-deleted row
// exists per (membership, match); Upsert either creates that row with zero
// points or overwrites its prediction fields, never its points. The boolean
// result of Upsert reports whether a new row was created.
//
// UpdateTotalPoints is reserved for the evaluation path. PointsByLeague sums
// evaluated points per membership across the league's matches.
type MatchBetRepository interface {
	GetByMembershipAndMatch(ctx context.Context, membershipID, matchID string) (MatchBet, bool, error)
	ListByMatch(ctx context.Context, matchID string) ([]MatchBet, error)
	ListByMembership(ctx context.Context, membershipID string) ([]MatchBet, error)
	Upsert(ctx context.Context, b MatchBet) (MatchBet, bool, error)
	UpdateTotalPoints(ctx context.Context, betID string, points int) error
	PointsByLeague(ctx context.Context, leagueID string) (map[string]int, error)
}

type SeriesBetRepository interface {
	GetByMembershipAndSeries(ctx context.Context, membershipID, seriesID string) (SeriesBet, bool, error)
	ListBySeries(ctx context.Context, seriesID string) ([]SeriesBet, error)
	ListByMembership(ctx context.Context, membershipID string) ([]SeriesBet, error)
	Upsert(ctx context.Context, b SeriesBet) (SeriesBet, bool, error)
	UpdateTotalPoints(ctx context.Context, betID string, points int) error
	PointsByLeague(ctx context.Context, leagueID string) (map[string]int, error)
}

type SpecialBetRepository interface {
	GetByMembershipAndSpecial(ctx context.Context, membershipID, specialID string) (SpecialBet, bool, error)
	ListBySpecial(ctx context.Context, specialID string) ([]SpecialBet, error)
	ListByMembership(ctx context.Context, membershipID string) ([]SpecialBet, error)
	Upsert(ctx context.Context, b SpecialBet) (SpecialBet, bool, error)
	UpdateTotalPoints(ctx context.Context, betID string, points int) error
	PointsByLeague(ctx context.Context, leagueID string) (map[string]int, error)
}

type QuestionBetRepository interface {
	GetByMembershipAndQuestion(ctx context.Context, membershipID, questionID string) (QuestionBet, bool, error)
	ListByQuestion(ctx context.Context, questionID string) ([]QuestionBet, error)
	ListByMembership(ctx context.Context, membershipID string) ([]QuestionBet, error)
	Upsert(ctx context.Context, b QuestionBet) (QuestionBet, bool, error)
	UpdateTotalPoints(ctx context.Context, betID string, points int) error
	PointsByLeague(ctx context.Context, leagueID string) (map[string]int, error)
}
