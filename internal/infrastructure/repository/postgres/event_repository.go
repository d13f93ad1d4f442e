package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jvasek/tipliga/internal/domain/event"
	qb "github.com/jvasek/tipliga/internal/platform/querybuilder"
)

type MatchRepository struct {
	db sqlx.ExtContext
}

func NewMatchRepository(db sqlx.ExtContext) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (event.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("id", matchID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return event.Match{}, false, fmt.Errorf("build get match by id query: %w", err)
	}

	var row matchTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return event.Match{}, false, nil
		}
		return event.Match{}, false, fmt.Errorf("get match by id: %w", err)
	}

	return matchFromRow(row), true, nil
}

func (r *MatchRepository) ListPendingEvaluation(ctx context.Context, leagueID string) ([]event.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("is_evaluated", false),
			qb.Expr("home_score IS NOT NULL"),
			qb.IsNull("deleted_at"),
		).
		OrderBy("starts_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list pending matches query: %w", err)
	}

	var rows []matchTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list pending matches: %w", err)
	}

	out := make([]event.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

func (r *MatchRepository) UpdateResult(ctx context.Context, matchID string, result event.MatchResult) error {
	query, args, err := qb.Update("matches").
		Set("home_score", result.HomeScore).
		Set("away_score", result.AwayScore).
		Set("overtime", result.Overtime).
		Set("shootout", result.Shootout).
		Set("scorer_ids", pq.StringArray(result.ScorerIDs)).
		Set("is_evaluated", false).
		Set("updated_at", time.Now()).
		Where(
			qb.Eq("id", matchID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match result query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update match result: %w", err)
	}
	return nil
}

func (r *MatchRepository) SetEvaluated(ctx context.Context, matchID string, evaluated bool) error {
	return setEvaluated(ctx, r.db, "matches", matchID, evaluated)
}

type SeriesRepository struct {
	db sqlx.ExtContext
}

func NewSeriesRepository(db sqlx.ExtContext) *SeriesRepository {
	return &SeriesRepository{db: db}
}

func (r *SeriesRepository) GetByID(ctx context.Context, seriesID string) (event.Series, bool, error) {
	query, args, err := qb.Select("*").From("series").
		Where(
			qb.Eq("id", seriesID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return event.Series{}, false, fmt.Errorf("build get series by id query: %w", err)
	}

	var row seriesTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return event.Series{}, false, nil
		}
		return event.Series{}, false, fmt.Errorf("get series by id: %w", err)
	}

	return seriesFromRow(row), true, nil
}

func (r *SeriesRepository) ListPendingEvaluation(ctx context.Context, leagueID string) ([]event.Series, error) {
	query, args, err := qb.Select("*").From("series").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("is_evaluated", false),
			qb.Expr("home_wins IS NOT NULL"),
			qb.IsNull("deleted_at"),
		).
		OrderBy("lock_time").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list pending series query: %w", err)
	}

	var rows []seriesTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list pending series: %w", err)
	}

	out := make([]event.Series, 0, len(rows))
	for _, row := range rows {
		out = append(out, seriesFromRow(row))
	}
	return out, nil
}

func (r *SeriesRepository) UpdateResult(ctx context.Context, seriesID string, result event.SeriesResult) error {
	query, args, err := qb.Update("series").
		Set("home_wins", result.HomeWins).
		Set("away_wins", result.AwayWins).
		Set("is_evaluated", false).
		Set("updated_at", time.Now()).
		Where(
			qb.Eq("id", seriesID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update series result query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update series result: %w", err)
	}
	return nil
}

func (r *SeriesRepository) SetEvaluated(ctx context.Context, seriesID string, evaluated bool) error {
	return setEvaluated(ctx, r.db, "series", seriesID, evaluated)
}

type SpecialRepository struct {
	db sqlx.ExtContext
}

func NewSpecialRepository(db sqlx.ExtContext) *SpecialRepository {
	return &SpecialRepository{db: db}
}

func (r *SpecialRepository) GetByID(ctx context.Context, specialID string) (event.Special, bool, error) {
	query, args, err := qb.Select("*").From("specials").
		Where(
			qb.Eq("id", specialID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return event.Special{}, false, fmt.Errorf("build get special by id query: %w", err)
	}

	var row specialTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return event.Special{}, false, nil
		}
		return event.Special{}, false, fmt.Errorf("get special by id: %w", err)
	}

	return specialFromRow(row), true, nil
}

func (r *SpecialRepository) ListPendingEvaluation(ctx context.Context, leagueID string) ([]event.Special, error) {
	query, args, err := qb.Select("*").From("specials").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("is_evaluated", false),
			qb.Expr("result_recorded_at IS NOT NULL"),
			qb.IsNull("deleted_at"),
		).
		OrderBy("lock_time").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list pending specials query: %w", err)
	}

	var rows []specialTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list pending specials: %w", err)
	}

	out := make([]event.Special, 0, len(rows))
	for _, row := range rows {
		out = append(out, specialFromRow(row))
	}
	return out, nil
}

func (r *SpecialRepository) UpdateResult(ctx context.Context, specialID string, result event.SpecialResult) error {
	query, args, err := qb.Update("specials").
		Set("result_recorded_at", time.Now()).
		Set("result_team_id", result.TeamID).
		Set("result_player_id", result.PlayerID).
		Set("result_value", result.Value).
		Set("advanced_team_ids", pq.StringArray(result.AdvancedTeamIDs)).
		Set("is_evaluated", false).
		Set("updated_at", time.Now()).
		Where(
			qb.Eq("id", specialID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update special result query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update special result: %w", err)
	}
	return nil
}

func (r *SpecialRepository) SetEvaluated(ctx context.Context, specialID string, evaluated bool) error {
	return setEvaluated(ctx, r.db, "specials", specialID, evaluated)
}

type QuestionRepository struct {
	db sqlx.ExtContext
}

func NewQuestionRepository(db sqlx.ExtContext) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func (r *QuestionRepository) GetByID(ctx context.Context, questionID string) (event.Question, bool, error) {
	query, args, err := qb.Select("*").From("questions").
		Where(
			qb.Eq("id", questionID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return event.Question{}, false, fmt.Errorf("build get question by id query: %w", err)
	}

	var row questionTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return event.Question{}, false, nil
		}
		return event.Question{}, false, fmt.Errorf("get question by id: %w", err)
	}

	return questionFromRow(row), true, nil
}

func (r *QuestionRepository) ListPendingEvaluation(ctx context.Context, leagueID string) ([]event.Question, error) {
	query, args, err := qb.Select("*").From("questions").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("is_evaluated", false),
			qb.Expr("answer IS NOT NULL"),
			qb.IsNull("deleted_at"),
		).
		OrderBy("lock_time").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list pending questions query: %w", err)
	}

	var rows []questionTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list pending questions: %w", err)
	}

	out := make([]event.Question, 0, len(rows))
	for _, row := range rows {
		out = append(out, questionFromRow(row))
	}
	return out, nil
}

func (r *QuestionRepository) UpdateResult(ctx context.Context, questionID string, answer bool) error {
	query, args, err := qb.Update("questions").
		Set("answer", answer).
		Set("is_evaluated", false).
		Set("updated_at", time.Now()).
		Where(
			qb.Eq("id", questionID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update question result query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update question result: %w", err)
	}
	return nil
}

func (r *QuestionRepository) SetEvaluated(ctx context.Context, questionID string, evaluated bool) error {
	return setEvaluated(ctx, r.db, "questions", questionID, evaluated)
}

func setEvaluated(ctx context.Context, db sqlx.ExtContext, table, eventID string, evaluated bool) error {
	query, args, err := qb.Update(table).
		Set("is_evaluated", evaluated).
		Set("updated_at", time.Now()).
		Where(
			qb.Eq("id", eventID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set evaluated query: %w", err)
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set %s evaluated: %w", table, err)
	}
	return nil
}
