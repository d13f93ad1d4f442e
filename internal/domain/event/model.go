package event

import "time"

// Kind discriminates the four predictable event shapes.
type Kind string

const (
	KindMatch    Kind = "match"
	KindSeries   Kind = "series"
	KindSpecial  Kind = "special"
	KindQuestion Kind = "question"
)

// State is the derived lifecycle position of an event. Scheduled versus
// Locked is a pure time predicate over LockTime and is never stored.
type State string

const (
	StateScheduled State = "scheduled"
	StateLocked    State = "locked"
	StateResulted  State = "resulted"
	StateEvaluated State = "evaluated"
)

func stateOf(lockTime time.Time, hasResult, isEvaluated bool, now time.Time) State {
	switch {
	case isEvaluated:
		return StateEvaluated
	case hasResult:
		return StateResulted
	case now.Before(lockTime):
		return StateScheduled
	default:
		return StateLocked
	}
}

// locked reports whether the betting deadline has passed. The boundary
// instant itself counts as locked.
func locked(lockTime, now time.Time) bool {
	return !now.Before(lockTime)
}

// MatchResult is the authoritative outcome of a match. A nil result on the
// match means no outcome has been recorded yet. A 0-0 result with an empty
// scorer list is the explicit scoreless outcome.
type MatchResult struct {
	HomeScore int
	AwayScore int
	Overtime  bool
	Shootout  bool
	ScorerIDs []string
}

// Scoreless reports whether no goal was scored at all.
func (r MatchResult) Scoreless() bool {
	return r.HomeScore == 0 && r.AwayScore == 0 && len(r.ScorerIDs) == 0
}

// Match is a single fixture between two teams.
type Match struct {
	ID           string
	LeagueID     string
	HomeTeamID   string
	AwayTeamID   string
	StartsAt     time.Time
	LockTime     time.Time
	DoublePoints bool
	IsEvaluated  bool
	Result       *MatchResult
	DeletedAt    *time.Time
}

func (m Match) Locked(now time.Time) bool { return locked(m.LockTime, now) }

func (m Match) State(now time.Time) State {
	return stateOf(m.LockTime, m.Result != nil, m.IsEvaluated, now)
}

// SeriesResult is the final wins count of a best-of-N series.
type SeriesResult struct {
	HomeWins int
	AwayWins int
}

// Series is a best-of-N playoff pairing.
type Series struct {
	ID          string
	LeagueID    string
	HomeTeamID  string
	AwayTeamID  string
	BestOf      int
	LockTime    time.Time
	IsEvaluated bool
	Result      *SeriesResult
	DeletedAt   *time.Time
}

func (s Series) Locked(now time.Time) bool { return locked(s.LockTime, now) }

func (s Series) State(now time.Time) State {
	return stateOf(s.LockTime, s.Result != nil, s.IsEvaluated, now)
}

// SpecialKind narrows what a special bet's pick and outcome look like.
type SpecialKind string

const (
	SpecialTeam   SpecialKind = "team"
	SpecialPlayer SpecialKind = "player"
	SpecialValue  SpecialKind = "value"
)

// SpecialResult carries whichever outcome fields the sub-kind uses. Team
// specials may additionally record the teams that advanced from the group,
// which the group-stage evaluator pays a consolation amount for.
type SpecialResult struct {
	TeamID          *string
	PlayerID        *string
	Value           *int
	AdvancedTeamIDs []string
}

// Special is a one-off bet such as "tournament top scorer" or "total goals
// in the group stage".
type Special struct {
	ID          string
	LeagueID    string
	Name        string
	Kind        SpecialKind
	LockTime    time.Time
	IsEvaluated bool
	Result      *SpecialResult
	DeletedAt   *time.Time
}

func (s Special) Locked(now time.Time) bool { return locked(s.LockTime, now) }

func (s Special) State(now time.Time) State {
	return stateOf(s.LockTime, s.Result != nil, s.IsEvaluated, now)
}

// Question is a yes/no proposition.
type Question struct {
	ID          string
	LeagueID    string
	Text        string
	LockTime    time.Time
	IsEvaluated bool
	Result      *bool
	DeletedAt   *time.Time
}

func (q Question) Locked(now time.Time) bool { return locked(q.LockTime, now) }

func (q Question) State(now time.Time) State {
	return stateOf(q.LockTime, q.Result != nil, q.IsEvaluated, now)
}
