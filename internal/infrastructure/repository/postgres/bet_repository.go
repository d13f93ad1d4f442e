package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jvasek/tipliga/internal/domain/bet"
	qb "github.com/jvasek/tipliga/internal/platform/querybuilder"
)

// Bet tables carry a partial unique index on (membership_id, <event>_id)
// WHERE deleted_at IS NULL, so the upserts below target exactly one live row
// per member and event. The DO UPDATE branch rewrites the prediction columns
// only; total_points stays whatever the last evaluation wrote.

type MatchBetRepository struct {
	db sqlx.ExtContext
}

func NewMatchBetRepository(db sqlx.ExtContext) *MatchBetRepository {
	return &MatchBetRepository{db: db}
}

func (r *MatchBetRepository) GetByMembershipAndMatch(ctx context.Context, membershipID, matchID string) (bet.MatchBet, bool, error) {
	query, args, err := qb.Select("*").From("match_bets").
		Where(
			qb.Eq("membership_id", membershipID),
			qb.Eq("match_id", matchID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return bet.MatchBet{}, false, fmt.Errorf("build get match bet query: %w", err)
	}

	var row matchBetTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return bet.MatchBet{}, false, nil
		}
		return bet.MatchBet{}, false, fmt.Errorf("get match bet: %w", err)
	}

	return matchBetFromRow(row), true, nil
}

func (r *MatchBetRepository) ListByMatch(ctx context.Context, matchID string) ([]bet.MatchBet, error) {
	query, args, err := qb.Select("*").From("match_bets").
		Where(
			qb.Eq("match_id", matchID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("membership_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list match bets query: %w", err)
	}

	var rows []matchBetTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list match bets: %w", err)
	}

	out := make([]bet.MatchBet, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchBetFromRow(row))
	}
	return out, nil
}

func (r *MatchBetRepository) ListByMembership(ctx context.Context, membershipID string) ([]bet.MatchBet, error) {
	query, args, err := qb.Select("*").From("match_bets").
		Where(
			qb.Eq("membership_id", membershipID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list match bets by membership query: %w", err)
	}

	var rows []matchBetTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list match bets by membership: %w", err)
	}

	out := make([]bet.MatchBet, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchBetFromRow(row))
	}
	return out, nil
}

func (r *MatchBetRepository) Upsert(ctx context.Context, b bet.MatchBet) (bet.MatchBet, bool, error) {
	now := time.Now()
	query, args, err := qb.InsertInto("match_bets").
		Columns("id", "membership_id", "match_id", "home_score", "away_score", "scorer_id", "no_scorer", "total_points", "created_at", "updated_at").
		Values(b.ID, b.MembershipID, b.MatchID, b.HomeScore, b.AwayScore, b.ScorerID, b.NoScorer, 0, now, now).
		Suffix(`ON CONFLICT (membership_id, match_id) WHERE deleted_at IS NULL DO UPDATE SET
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			scorer_id = EXCLUDED.scorer_id,
			no_scorer = EXCLUDED.no_scorer,
			updated_at = EXCLUDED.updated_at
		RETURNING *`).
		ToSQL()
	if err != nil {
		return bet.MatchBet{}, false, fmt.Errorf("build upsert match bet query: %w", err)
	}

	var row matchBetTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		return bet.MatchBet{}, false, fmt.Errorf("upsert match bet: %w", err)
	}

	return matchBetFromRow(row), row.CreatedAt.Equal(row.UpdatedAt), nil
}

func (r *MatchBetRepository) UpdateTotalPoints(ctx context.Context, betID string, points int) error {
	return updateBetPoints(ctx, r.db, "match_bets", betID, points)
}

func (r *MatchBetRepository) PointsByLeague(ctx context.Context, leagueID string) (map[string]int, error) {
	return sumBetPoints(ctx, r.db, "match_bets", "match_id", "matches", leagueID)
}

type SeriesBetRepository struct {
	db sqlx.ExtContext
}

func NewSeriesBetRepository(db sqlx.ExtContext) *SeriesBetRepository {
	return &SeriesBetRepository{db: db}
}

func (r *SeriesBetRepository) GetByMembershipAndSeries(ctx context.Context, membershipID, seriesID string) (bet.SeriesBet, bool, error) {
	query, args, err := qb.Select("*").From("series_bets").
		Where(
			qb.Eq("membership_id", membershipID),
			qb.Eq("series_id", seriesID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return bet.SeriesBet{}, false, fmt.Errorf("build get series bet query: %w", err)
	}

	var row seriesBetTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return bet.SeriesBet{}, false, nil
		}
		return bet.SeriesBet{}, false, fmt.Errorf("get series bet: %w", err)
	}

	return seriesBetFromRow(row), true, nil
}

func (r *SeriesBetRepository) ListBySeries(ctx context.Context, seriesID string) ([]bet.SeriesBet, error) {
	query, args, err := qb.Select("*").From("series_bets").
		Where(
			qb.Eq("series_id", seriesID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("membership_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list series bets query: %w", err)
	}

	var rows []seriesBetTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list series bets: %w", err)
	}

	out := make([]bet.SeriesBet, 0, len(rows))
	for _, row := range rows {
		out = append(out, seriesBetFromRow(row))
	}
	return out, nil
}

func (r *SeriesBetRepository) ListByMembership(ctx context.Context, membershipID string) ([]bet.SeriesBet, error) {
	query, args, err := qb.Select("*").From("series_bets").
		Where(
			qb.Eq("membership_id", membershipID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list series bets by membership query: %w", err)
	}

	var rows []seriesBetTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list series bets by membership: %w", err)
	}

	out := make([]bet.SeriesBet, 0, len(rows))
	for _, row := range rows {
		out = append(out, seriesBetFromRow(row))
	}
	return out, nil
}

func (r *SeriesBetRepository) Upsert(ctx context.Context, b bet.SeriesBet) (bet.SeriesBet, bool, error) {
	now := time.Now()
	query, args, err := qb.InsertInto("series_bets").
		Columns("id", "membership_id", "series_id", "home_wins", "away_wins", "total_points", "created_at", "updated_at").
		Values(b.ID, b.MembershipID, b.SeriesID, b.HomeWins, b.AwayWins, 0, now, now).
		Suffix(`ON CONFLICT (membership_id, series_id) WHERE deleted_at IS NULL DO UPDATE SET
			home_wins = EXCLUDED.home_wins,
			away_wins = EXCLUDED.away_wins,
			updated_at = EXCLUDED.updated_at
		RETURNING *`).
		ToSQL()
	if err != nil {
		return bet.SeriesBet{}, false, fmt.Errorf("build upsert series bet query: %w", err)
	}

	var row seriesBetTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		return bet.SeriesBet{}, false, fmt.Errorf("upsert series bet: %w", err)
	}

	return seriesBetFromRow(row), row.CreatedAt.Equal(row.UpdatedAt), nil
}

func (r *SeriesBetRepository) UpdateTotalPoints(ctx context.Context, betID string, points int) error {
	return updateBetPoints(ctx, r.db, "series_bets", betID, points)
}

func (r *SeriesBetRepository) PointsByLeague(ctx context.Context, leagueID string) (map[string]int, error) {
	return sumBetPoints(ctx, r.db, "series_bets", "series_id", "series", leagueID)
}

type SpecialBetRepository struct {
	db sqlx.ExtContext
}

func NewSpecialBetRepository(db sqlx.ExtContext) *SpecialBetRepository {
	return &SpecialBetRepository{db: db}
}

func (r *SpecialBetRepository) GetByMembershipAndSpecial(ctx context.Context, membershipID, specialID string) (bet.SpecialBet, bool, error) {
	query, args, err := qb.Select("*").From("special_bets").
		Where(
			qb.Eq("membership_id", membershipID),
			qb.Eq("special_id", specialID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return bet.SpecialBet{}, false, fmt.Errorf("build get special bet query: %w", err)
	}

	var row specialBetTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return bet.SpecialBet{}, false, nil
		}
		return bet.SpecialBet{}, false, fmt.Errorf("get special bet: %w", err)
	}

	return specialBetFromRow(row), true, nil
}

func (r *SpecialBetRepository) ListBySpecial(ctx context.Context, specialID string) ([]bet.SpecialBet, error) {
	query, args, err := qb.Select("*").From("special_bets").
		Where(
			qb.Eq("special_id", specialID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("membership_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list special bets query: %w", err)
	}

	var rows []specialBetTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list special bets: %w", err)
	}

	out := make([]bet.SpecialBet, 0, len(rows))
	for _, row := range rows {
		out = append(out, specialBetFromRow(row))
	}
	return out, nil
}

func (r *SpecialBetRepository) ListByMembership(ctx context.Context, membershipID string) ([]bet.SpecialBet, error) {
	query, args, err := qb.Select("*").From("special_bets").
		Where(
			qb.Eq("membership_id", membershipID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list special bets by membership query: %w", err)
	}

	var rows []specialBetTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list special bets by membership: %w", err)
	}

	out := make([]bet.SpecialBet, 0, len(rows))
	for _, row := range rows {
		out = append(out, specialBetFromRow(row))
	}
	return out, nil
}

func (r *SpecialBetRepository) Upsert(ctx context.Context, b bet.SpecialBet) (bet.SpecialBet, bool, error) {
	now := time.Now()
	query, args, err := qb.InsertInto("special_bets").
		Columns("id", "membership_id", "special_id", "team_id", "player_id", "value", "total_points", "created_at", "updated_at").
		Values(b.ID, b.MembershipID, b.SpecialID, b.TeamID, b.PlayerID, b.Value, 0, now, now).
		Suffix(`ON CONFLICT (membership_id, special_id) WHERE deleted_at IS NULL DO UPDATE SET
			team_id = EXCLUDED.team_id,
			player_id = EXCLUDED.player_id,
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
		RETURNING *`).
		ToSQL()
	if err != nil {
		return bet.SpecialBet{}, false, fmt.Errorf("build upsert special bet query: %w", err)
	}

	var row specialBetTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		return bet.SpecialBet{}, false, fmt.Errorf("upsert special bet: %w", err)
	}

	return specialBetFromRow(row), row.CreatedAt.Equal(row.UpdatedAt), nil
}

func (r *SpecialBetRepository) UpdateTotalPoints(ctx context.Context, betID string, points int) error {
	return updateBetPoints(ctx, r.db, "special_bets", betID, points)
}

func (r *SpecialBetRepository) PointsByLeague(ctx context.Context, leagueID string) (map[string]int, error) {
	return sumBetPoints(ctx, r.db, "special_bets", "special_id", "specials", leagueID)
}

type QuestionBetRepository struct {
	db sqlx.ExtContext
}

func NewQuestionBetRepository(db sqlx.ExtContext) *QuestionBetRepository {
	return &QuestionBetRepository{db: db}
}

func (r *QuestionBetRepository) GetByMembershipAndQuestion(ctx context.Context, membershipID, questionID string) (bet.QuestionBet, bool, error) {
	query, args, err := qb.Select("*").From("question_bets").
		Where(
			qb.Eq("membership_id", membershipID),
			qb.Eq("question_id", questionID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return bet.QuestionBet{}, false, fmt.Errorf("build get question bet query: %w", err)
	}

	var row questionBetTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return bet.QuestionBet{}, false, nil
		}
		return bet.QuestionBet{}, false, fmt.Errorf("get question bet: %w", err)
	}

	return questionBetFromRow(row), true, nil
}

func (r *QuestionBetRepository) ListByQuestion(ctx context.Context, questionID string) ([]bet.QuestionBet, error) {
	query, args, err := qb.Select("*").From("question_bets").
		Where(
			qb.Eq("question_id", questionID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("membership_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list question bets query: %w", err)
	}

	var rows []questionBetTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list question bets: %w", err)
	}

	out := make([]bet.QuestionBet, 0, len(rows))
	for _, row := range rows {
		out = append(out, questionBetFromRow(row))
	}
	return out, nil
}

func (r *QuestionBetRepository) ListByMembership(ctx context.Context, membershipID string) ([]bet.QuestionBet, error) {
	query, args, err := qb.Select("*").From("question_bets").
		Where(
			qb.Eq("membership_id", membershipID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list question bets by membership query: %w", err)
	}

	var rows []questionBetTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list question bets by membership: %w", err)
	}

	out := make([]bet.QuestionBet, 0, len(rows))
	for _, row := range rows {
		out = append(out, questionBetFromRow(row))
	}
	return out, nil
}

func (r *QuestionBetRepository) Upsert(ctx context.Context, b bet.QuestionBet) (bet.QuestionBet, bool, error) {
	now := time.Now()
	query, args, err := qb.InsertInto("question_bets").
		Columns("id", "membership_id", "question_id", "answer", "total_points", "created_at", "updated_at").
		Values(b.ID, b.MembershipID, b.QuestionID, b.Answer, 0, now, now).
		Suffix(`ON CONFLICT (membership_id, question_id) WHERE deleted_at IS NULL DO UPDATE SET
			answer = EXCLUDED.answer,
			updated_at = EXCLUDED.updated_at
		RETURNING *`).
		ToSQL()
	if err != nil {
		return bet.QuestionBet{}, false, fmt.Errorf("build upsert question bet query: %w", err)
	}

	var row questionBetTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		return bet.QuestionBet{}, false, fmt.Errorf("upsert question bet: %w", err)
	}

	return questionBetFromRow(row), row.CreatedAt.Equal(row.UpdatedAt), nil
}

func (r *QuestionBetRepository) UpdateTotalPoints(ctx context.Context, betID string, points int) error {
	return updateBetPoints(ctx, r.db, "question_bets", betID, points)
}

func (r *QuestionBetRepository) PointsByLeague(ctx context.Context, leagueID string) (map[string]int, error) {
	return sumBetPoints(ctx, r.db, "question_bets", "question_id", "questions", leagueID)
}

func updateBetPoints(ctx context.Context, db sqlx.ExtContext, table, betID string, points int) error {
	query, args, err := qb.Update(table).
		Set("total_points", points).
		Where(
			qb.Eq("id", betID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update bet points query: %w", err)
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update %s points: %w", table, err)
	}
	return nil
}

func sumBetPoints(ctx context.Context, db sqlx.ExtContext, betTable, eventColumn, eventTable, leagueID string) (map[string]int, error) {
	query, args, err := qb.Select("b.membership_id AS membership_id", "COALESCE(SUM(b.total_points), 0) AS points").
		From(fmt.Sprintf("%s b JOIN %s e ON e.id = b.%s", betTable, eventTable, eventColumn)).
		Where(
			qb.Eq("e.league_id", leagueID),
			qb.IsNull("b.deleted_at"),
			qb.IsNull("e.deleted_at"),
		).
		GroupBy("b.membership_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build sum bet points query: %w", err)
	}

	var rows []pointsSumRow
	if err := sqlx.SelectContext(ctx, db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sum %s points: %w", betTable, err)
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.MembershipID] = row.Points
	}
	return out, nil
}
