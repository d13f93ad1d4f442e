package bet

import "time"

// MatchBet is one membership's score prediction for one match. ScorerID and
// NoScorer are mutually exclusive; both empty means the member skipped the
// scorer part of the bet. TotalPoints is written exclusively by evaluation.
type MatchBet struct {
	ID           string
	MembershipID string
	MatchID      string
	HomeScore    int
	AwayScore    int
	ScorerID     *string
	NoScorer     bool
	TotalPoints  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// SeriesBet predicts the final wins count of a best-of-N series.
type SeriesBet struct {
	ID           string
	MembershipID string
	SeriesID     string
	HomeWins     int
	AwayWins     int
	TotalPoints  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// SpecialBet carries whichever pick field the special's sub-kind uses.
type SpecialBet struct {
	ID           string
	MembershipID string
	SpecialID    string
	TeamID       *string
	PlayerID     *string
	Value        *int
	TotalPoints  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// QuestionBet is a yes/no answer.
type QuestionBet struct {
	ID           string
	MembershipID string
	QuestionID   string
	Answer       bool
	TotalPoints  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}
