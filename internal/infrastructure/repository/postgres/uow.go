package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jvasek/tipliga/internal/usecase"
)

// UnitOfWork runs closures inside a serializable postgres transaction.
// Serialization failures and deadlocks surface as usecase.ErrConflict so the
// caller can retry without inspecting driver errors.
type UnitOfWork struct {
	db *sqlx.DB
}

func NewUnitOfWork(db *sqlx.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) Serializable(ctx context.Context, fn func(ctx context.Context, repos usecase.Repositories) error) error {
	tx, err := u.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin serializable tx: %w", err)
	}

	if err := fn(ctx, NewRepositories(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("rollback tx after %v: %w", err, rbErr)
		}
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: %v", usecase.ErrConflict, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: %v", usecase.ErrConflict, err)
		}
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// NewRepositories binds every repository to the given executor, which may be
// the root *sqlx.DB or an open transaction.
func NewRepositories(db sqlx.ExtContext) usecase.Repositories {
	return usecase.Repositories{
		Leagues:      NewLeagueRepository(db),
		Memberships:  NewMembershipRepository(db),
		Matches:      NewMatchRepository(db),
		Series:       NewSeriesRepository(db),
		Specials:     NewSpecialRepository(db),
		Questions:    NewQuestionRepository(db),
		MatchBets:    NewMatchBetRepository(db),
		SeriesBets:   NewSeriesBetRepository(db),
		SpecialBets:  NewSpecialBetRepository(db),
		QuestionBets: NewQuestionBetRepository(db),
		Evaluators:   NewEvaluatorRepository(db),
		Rankings:     NewScorerRankingRepository(db),
		Players:      NewPlayerRepository(db),
	}
}
