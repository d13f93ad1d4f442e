package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jvasek/tipliga/internal/domain/event"
	"github.com/jvasek/tipliga/internal/domain/scoring"
	qb "github.com/jvasek/tipliga/internal/platform/querybuilder"
)

type EvaluatorRepository struct {
	db sqlx.ExtContext
}

func NewEvaluatorRepository(db sqlx.ExtContext) *EvaluatorRepository {
	return &EvaluatorRepository{db: db}
}

func (r *EvaluatorRepository) ListActive(ctx context.Context, leagueID string, entityKind event.Kind) ([]scoring.Evaluator, error) {
	query, args, err := qb.Select("*").From("evaluators").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("entity_kind", string(entityKind)),
			qb.Eq("is_active", true),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list evaluators query: %w", err)
	}

	var rows []evaluatorTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list evaluators: %w", err)
	}

	out := make([]scoring.Evaluator, 0, len(rows))
	for _, row := range rows {
		ev, err := evaluatorFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

type ScorerRankingRepository struct {
	db sqlx.ExtContext
}

func NewScorerRankingRepository(db sqlx.ExtContext) *ScorerRankingRepository {
	return &ScorerRankingRepository{db: db}
}

// ListActiveAt returns the ranking versions covering the given instant. The
// lower bound is inclusive and the upper bound exclusive, matching
// scoring.ScorerRanking.ActiveAt.
func (r *ScorerRankingRepository) ListActiveAt(ctx context.Context, at time.Time) ([]scoring.ScorerRanking, error) {
	query, args, err := qb.Select("*").From("scorer_rankings").
		Where(
			qb.Lte("effective_from", at),
			qb.Expr("(effective_to IS NULL OR effective_to > ?)", at),
		).
		OrderBy("player_id", "effective_from DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list scorer rankings query: %w", err)
	}

	var rows []scorerRankingTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list scorer rankings: %w", err)
	}

	out := make([]scoring.ScorerRanking, 0, len(rows))
	for _, row := range rows {
		out = append(out, scorerRankingFromRow(row))
	}
	return out, nil
}
