package memory

import (
	"context"
	"sync"

	"github.com/jvasek/tipliga/internal/usecase"
)

// Fixture bundles every in-memory repository so tests can seed state and
// hand the same set to services as both the ambient and transactional view.
type Fixture struct {
	Leagues      *LeagueRepository
	Memberships  *MembershipRepository
	Matches      *MatchRepository
	Series       *SeriesRepository
	Specials     *SpecialRepository
	Questions    *QuestionRepository
	MatchBets    *MatchBetRepository
	SeriesBets   *SeriesBetRepository
	SpecialBets  *SpecialBetRepository
	QuestionBets *QuestionBetRepository
	Evaluators   *EvaluatorRepository
	Rankings     *ScorerRankingRepository
	Players      *PlayerRepository
}

func NewFixture() *Fixture {
	matches := NewMatchRepository()
	series := NewSeriesRepository()
	specials := NewSpecialRepository()
	questions := NewQuestionRepository()

	return &Fixture{
		Leagues:      NewLeagueRepository(),
		Memberships:  NewMembershipRepository(),
		Matches:      matches,
		Series:       series,
		Specials:     specials,
		Questions:    questions,
		MatchBets:    NewMatchBetRepository(matches),
		SeriesBets:   NewSeriesBetRepository(series),
		SpecialBets:  NewSpecialBetRepository(specials),
		QuestionBets: NewQuestionBetRepository(questions),
		Evaluators:   NewEvaluatorRepository(),
		Rankings:     NewScorerRankingRepository(),
		Players:      NewPlayerRepository(),
	}
}

func (f *Fixture) Repositories() usecase.Repositories {
	return usecase.Repositories{
		Leagues:      f.Leagues,
		Memberships:  f.Memberships,
		Matches:      f.Matches,
		Series:       f.Series,
		Specials:     f.Specials,
		Questions:    f.Questions,
		MatchBets:    f.MatchBets,
		SeriesBets:   f.SeriesBets,
		SpecialBets:  f.SpecialBets,
		QuestionBets: f.QuestionBets,
		Evaluators:   f.Evaluators,
		Rankings:     f.Rankings,
		Players:      f.Players,
	}
}

// UnitOfWork serializes transactions with one mutex. There is no rollback;
// callers are expected to write only after all reads and checks succeed,
// which is how the services behave.
type UnitOfWork struct {
	mu    sync.Mutex
	repos usecase.Repositories
}

func NewUnitOfWork(f *Fixture) *UnitOfWork {
	return &UnitOfWork{repos: f.Repositories()}
}

func (u *UnitOfWork) Serializable(ctx context.Context, fn func(ctx context.Context, repos usecase.Repositories) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	return fn(ctx, u.repos)
}
