package usecase

import (
	"context"

	"github.com/jvasek/tipliga/internal/domain/bet"
	"github.com/jvasek/tipliga/internal/domain/event"
	"github.com/jvasek/tipliga/internal/domain/league"
	"github.com/jvasek/tipliga/internal/domain/player"
	"github.com/jvasek/tipliga/internal/domain/scoring"
)

// Repositories bundles every repository bound to one transaction. The
// postgres implementation hands out sqlx.Tx-backed instances; the in-memory
// implementation reuses its map-backed ones.
type Repositories struct {
	Leagues      league.Repository
	Memberships  league.MembershipRepository
	Matches      event.MatchRepository
	Series       event.SeriesRepository
	Specials     event.SpecialRepository
	Questions    event.QuestionRepository
	MatchBets    bet.MatchBetRepository
	SeriesBets   bet.SeriesBetRepository
	SpecialBets  bet.SpecialBetRepository
	QuestionBets bet.QuestionBetRepository
	Evaluators   scoring.EvaluatorRepository
	Rankings     scoring.ScorerRankingRepository
	Players      player.Repository
}

// UnitOfWork runs fn inside one serializable transaction and commits iff fn
// returns nil. A serialization failure surfaces as ErrConflict, which the
// caller may retry; the transaction leaves no partial writes either way.
type UnitOfWork interface {
	Serializable(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
