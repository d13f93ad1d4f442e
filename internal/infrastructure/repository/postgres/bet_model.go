package postgres

import (
	"time"

	"github.com/jvasek/tipliga/internal/domain/bet"
)

type matchBetTableModel struct {
	ID           string     `db:"id"`
	MembershipID string     `db:"membership_id"`
	MatchID      string     `db:"match_id"`
	HomeScore    int        `db:"home_score"`
	AwayScore    int        `db:"away_score"`
	ScorerID     *string    `db:"scorer_id"`
	NoScorer     bool       `db:"no_scorer"`
	TotalPoints  int        `db:"total_points"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

func matchBetFromRow(row matchBetTableModel) bet.MatchBet {
	return bet.MatchBet{
		ID:           row.ID,
		MembershipID: row.MembershipID,
		MatchID:      row.MatchID,
		HomeScore:    row.HomeScore,
		AwayScore:    row.AwayScore,
		ScorerID:     row.ScorerID,
		NoScorer:     row.NoScorer,
		TotalPoints:  row.TotalPoints,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		DeletedAt:    row.DeletedAt,
	}
}

type seriesBetTableModel struct {
	ID           string     `db:"id"`
	MembershipID string     `db:"membership_id"`
	SeriesID     string     `db:"series_id"`
	HomeWins     int        `db:"home_wins"`
	AwayWins     int        `db:"away_wins"`
	TotalPoints  int        `db:"total_points"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

func seriesBetFromRow(row seriesBetTableModel) bet.SeriesBet {
	return bet.SeriesBet{
		ID:           row.ID,
		MembershipID: row.MembershipID,
		SeriesID:     row.SeriesID,
		HomeWins:     row.HomeWins,
		AwayWins:     row.AwayWins,
		TotalPoints:  row.TotalPoints,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		DeletedAt:    row.DeletedAt,
	}
}

type specialBetTableModel struct {
	ID           string     `db:"id"`
	MembershipID string     `db:"membership_id"`
	SpecialID    string     `db:"special_id"`
	TeamID       *string    `db:"team_id"`
	PlayerID     *string    `db:"player_id"`
	Value        *int       `db:"value"`
	TotalPoints  int        `db:"total_points"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

func specialBetFromRow(row specialBetTableModel) bet.SpecialBet {
	return bet.SpecialBet{
		ID:           row.ID,
		MembershipID: row.MembershipID,
		SpecialID:    row.SpecialID,
		TeamID:       row.TeamID,
		PlayerID:     row.PlayerID,
		Value:        row.Value,
		TotalPoints:  row.TotalPoints,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		DeletedAt:    row.DeletedAt,
	}
}

type questionBetTableModel struct {
	ID           string     `db:"id"`
	MembershipID string     `db:"membership_id"`
	QuestionID   string     `db:"question_id"`
	Answer       bool       `db:"answer"`
	TotalPoints  int        `db:"total_points"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

func questionBetFromRow(row questionBetTableModel) bet.QuestionBet {
	return bet.QuestionBet{
		ID:           row.ID,
		MembershipID: row.MembershipID,
		QuestionID:   row.QuestionID,
		Answer:       row.Answer,
		TotalPoints:  row.TotalPoints,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		DeletedAt:    row.DeletedAt,
	}
}

type pointsSumRow struct {
	MembershipID string `db:"membership_id"`
	Points       int    `db:"points"`
}
