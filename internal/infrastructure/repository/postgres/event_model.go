package postgres

import (
	"time"

	"github.com/lib/pq"

	"github.com/jvasek/tipliga/internal/domain/event"
)

// matchTableModel stores the outcome inline. HomeScore non-null marks a
// recorded result; a 0-0 row with an empty scorer array is the explicit
// scoreless outcome.
type matchTableModel struct {
	ID           string         `db:"id"`
	LeagueID     string         `db:"league_id"`
	HomeTeamID   string         `db:"home_team_id"`
	AwayTeamID   string         `db:"away_team_id"`
	StartsAt     time.Time      `db:"starts_at"`
	LockTime     time.Time      `db:"lock_time"`
	DoublePoints bool           `db:"double_points"`
	IsEvaluated  bool           `db:"is_evaluated"`
	HomeScore    *int           `db:"home_score"`
	AwayScore    *int           `db:"away_score"`
	Overtime     bool           `db:"overtime"`
	Shootout     bool           `db:"shootout"`
	ScorerIDs    pq.StringArray `db:"scorer_ids"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	DeletedAt    *time.Time     `db:"deleted_at"`
}

func matchFromRow(row matchTableModel) event.Match {
	m := event.Match{
		ID:           row.ID,
		LeagueID:     row.LeagueID,
		HomeTeamID:   row.HomeTeamID,
		AwayTeamID:   row.AwayTeamID,
		StartsAt:     row.StartsAt,
		LockTime:     row.LockTime,
		DoublePoints: row.DoublePoints,
		IsEvaluated:  row.IsEvaluated,
		DeletedAt:    row.DeletedAt,
	}
	if row.HomeScore != nil && row.AwayScore != nil {
		m.Result = &event.MatchResult{
			HomeScore: *row.HomeScore,
			AwayScore: *row.AwayScore,
			Overtime:  row.Overtime,
			Shootout:  row.Shootout,
			ScorerIDs: append([]string(nil), row.ScorerIDs...),
		}
	}
	return m
}

type seriesTableModel struct {
	ID          string     `db:"id"`
	LeagueID    string     `db:"league_id"`
	HomeTeamID  string     `db:"home_team_id"`
	AwayTeamID  string     `db:"away_team_id"`
	BestOf      int        `db:"best_of"`
	LockTime    time.Time  `db:"lock_time"`
	IsEvaluated bool       `db:"is_evaluated"`
	HomeWins    *int       `db:"home_wins"`
	AwayWins    *int       `db:"away_wins"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

func seriesFromRow(row seriesTableModel) event.Series {
	s := event.Series{
		ID:          row.ID,
		LeagueID:    row.LeagueID,
		HomeTeamID:  row.HomeTeamID,
		AwayTeamID:  row.AwayTeamID,
		BestOf:      row.BestOf,
		LockTime:    row.LockTime,
		IsEvaluated: row.IsEvaluated,
		DeletedAt:   row.DeletedAt,
	}
	if row.HomeWins != nil && row.AwayWins != nil {
		s.Result = &event.SeriesResult{
			HomeWins: *row.HomeWins,
			AwayWins: *row.AwayWins,
		}
	}
	return s
}

// specialTableModel needs an explicit recorded marker because a team-kind
// outcome may consist of the advanced list alone.
type specialTableModel struct {
	ID               string         `db:"id"`
	LeagueID         string         `db:"league_id"`
	Name             string         `db:"name"`
	Kind             string         `db:"kind"`
	LockTime         time.Time      `db:"lock_time"`
	IsEvaluated      bool           `db:"is_evaluated"`
	ResultRecordedAt *time.Time     `db:"result_recorded_at"`
	ResultTeamID     *string        `db:"result_team_id"`
	ResultPlayerID   *string        `db:"result_player_id"`
	ResultValue      *int           `db:"result_value"`
	AdvancedTeamIDs  pq.StringArray `db:"advanced_team_ids"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
	DeletedAt        *time.Time     `db:"deleted_at"`
}

func specialFromRow(row specialTableModel) event.Special {
	s := event.Special{
		ID:          row.ID,
		LeagueID:    row.LeagueID,
		Name:        row.Name,
		Kind:        event.SpecialKind(row.Kind),
		LockTime:    row.LockTime,
		IsEvaluated: row.IsEvaluated,
		DeletedAt:   row.DeletedAt,
	}
	if row.ResultRecordedAt != nil {
		s.Result = &event.SpecialResult{
			TeamID:          row.ResultTeamID,
			PlayerID:        row.ResultPlayerID,
			Value:           row.ResultValue,
			AdvancedTeamIDs: append([]string(nil), row.AdvancedTeamIDs...),
		}
	}
	return s
}

type questionTableModel struct {
	ID          string     `db:"id"`
	LeagueID    string     `db:"league_id"`
	Text        string     `db:"text"`
	LockTime    time.Time  `db:"lock_time"`
	IsEvaluated bool       `db:"is_evaluated"`
	Answer      *bool      `db:"answer"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

func questionFromRow(row questionTableModel) event.Question {
	q := event.Question{
		ID:          row.ID,
		LeagueID:    row.LeagueID,
		Text:        row.Text,
		LockTime:    row.LockTime,
		IsEvaluated: row.IsEvaluated,
		DeletedAt:   row.DeletedAt,
	}
	if row.Answer != nil {
		answer := *row.Answer
		q.Result = &answer
	}
	return q
}
