package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	. "github.com/jvasek/tipliga/internal/usecase"

	"github.com/jvasek/tipliga/internal/domain/bet"
	"github.com/jvasek/tipliga/internal/domain/event"
	"github.com/jvasek/tipliga/internal/domain/scoring"
	"github.com/jvasek/tipliga/internal/domain/view"
)

func seedMatchEvaluators(h *harness) {
	h.fixture.Evaluators.Put(scoring.Evaluator{ID: "ev-exact", LeagueID: testLeagueID, Name: "exact score", EntityKind: event.KindMatch, Kind: scoring.KindExactScore, Points: 5, IsActive: true})
	h.fixture.Evaluators.Put(scoring.Evaluator{ID: "ev-winner", LeagueID: testLeagueID, Name: "winner", EntityKind: event.KindMatch, Kind: scoring.KindWinner, Points: 2, IsActive: true})
	h.fixture.Evaluators.Put(scoring.Evaluator{ID: "ev-diff", LeagueID: testLeagueID, Name: "goal difference", EntityKind: event.KindMatch, Kind: scoring.KindGoalDifference, Points: 3, IsActive: true})
	h.fixture.Evaluators.Put(scoring.Evaluator{ID: "ev-total", LeagueID: testLeagueID, Name: "total goals", EntityKind: event.KindMatch, Kind: scoring.KindTotalGoals, Points: 1, IsActive: true})
}

// resultedMatch seeds a locked match with a 3-1 outcome and two member bets:
// an exact hit for the first member and a winner-only hit for the second.
func resultedMatch(h *harness, matchID string) event.Match {
	m := event.Match{
		ID: matchID, LeagueID: testLeagueID,
		HomeTeamID: testHomeTeamID, AwayTeamID: testAwayTeamID,
		StartsAt: baseTime.Add(-3 * time.Hour), LockTime: baseTime.Add(-3 * time.Hour),
		Result:   &event.MatchResult{HomeScore: 3, AwayScore: 1, ScorerIDs: []string{testHomePlayerID}},
	}
	h.fixture.Matches.Put(m)
	mustUpsertMatchBet(h, bet.MatchBet{ID: "bet-1", MembershipID: testMemberID, MatchID: matchID, HomeScore: 3, AwayScore: 1})
	mustUpsertMatchBet(h, bet.MatchBet{ID: "bet-2", MembershipID: testMember2ID, MatchID: matchID, HomeScore: 2, AwayScore: 1})
	return m
}

func mustUpsertMatchBet(h *harness, b bet.MatchBet) {
	if _, _, err := h.fixture.MatchBets.Upsert(context.Background(), b); err != nil {
		panic(err)
	}
}

func matchBetPoints(t *testing.T, h *harness, membershipID, matchID string) int {
	t.Helper()
	b, ok, err := h.repos.MatchBets.GetByMembershipAndMatch(context.Background(), membershipID, matchID)
	require.NoError(t, err)
	require.True(t, ok)
	return b.TotalPoints
}

func TestEvaluationService_EvaluateMatch(t *testing.T) {
	t.Parallel()

	h := newHarness()
	seedMatchEvaluators(h)
	m := resultedMatch(h, "match-1")
	svc := h.evaluationService(baseTime, 2)
	ctx := context.Background()

	report, err := svc.EvaluateMatch(ctx, EvaluateInput{ActorUserID: testAdminUserID, EventID: m.ID})
	require.NoError(t, err)
	require.Equal(t, 2, report.TotalUsersEvaluated)
	require.Equal(t, 13, report.TotalPoints)
	require.Equal(t, event.KindMatch, report.EntityKind)

	require.Equal(t, 11, matchBetPoints(t, h, testMemberID, m.ID))
	require.Equal(t, 2, matchBetPoints(t, h, testMember2ID, m.ID))

	current, ok, err := h.repos.Matches.GetByID(ctx, m.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, current.IsEvaluated)
	require.Equal(t, event.StateEvaluated, current.State(baseTime))

	require.True(t, h.invalidator.saw(view.Change{LeagueID: testLeagueID, Kind: view.KindLeaderboard}))
}

func TestEvaluationService_EvaluateMatch_Idempotent(t *testing.T) {
	t.Parallel()

	h := newHarness()
	seedMatchEvaluators(h)
	m := resultedMatch(h, "match-1")
	svc := h.evaluationService(baseTime, 2)
	ctx := context.Background()

	input := EvaluateInput{ActorUserID: testAdminUserID, EventID: m.ID}
	first, err := svc.EvaluateMatch(ctx, input)
	require.NoError(t, err)
	second, err := svc.EvaluateMatch(ctx, input)
	require.NoError(t, err)

	require.Equal(t, first.TotalPoints, second.TotalPoints)
	require.Equal(t, 11, matchBetPoints(t, h, testMemberID, m.ID), "totals are overwritten, never incremented")
}

func TestEvaluationService_EvaluateMatch_DoublePoints(t *testing.T) {
	t.Parallel()

	h := newHarness()
	seedMatchEvaluators(h)
	m := resultedMatch(h, "match-1")
	m.DoublePoints = true
	h.fixture.Matches.Put(m)
	svc := h.evaluationService(baseTime, 2)

	_, err := svc.EvaluateMatch(context.Background(), EvaluateInput{ActorUserID: testAdminUserID, EventID: m.ID})
	require.NoError(t, err)
	require.Equal(t, 22, matchBetPoints(t, h, testMemberID, m.ID))
}

func TestEvaluationService_EvaluateMatch_NoOutcome(t *testing.T) {
	t.Parallel()

	h := newHarness()
	seedMatchEvaluators(h)
	h.lockedMatch("match-open")
	svc := h.evaluationService(baseTime, 2)

	_, err := svc.EvaluateMatch(context.Background(), EvaluateInput{ActorUserID: testAdminUserID, EventID: "match-open"})
	require.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestEvaluationService_EvaluateMatch_AdminOnly(t *testing.T) {
	t.Parallel()

	h := newHarness()
	seedMatchEvaluators(h)
	m := resultedMatch(h, "match-1")
	svc := h.evaluationService(baseTime, 2)
	ctx := context.Background()

	_, err := svc.EvaluateMatch(ctx, EvaluateInput{ActorUserID: testMemberUserID, EventID: m.ID})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.EvaluateMatch(ctx, EvaluateInput{ActorUserID: "user-stranger", EventID: m.ID})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestEvaluationService_EvaluateMatch_ScopedRun(t *testing.T) {
	t.Parallel()

	h := newHarness()
	seedMatchEvaluators(h)
	m := resultedMatch(h, "match-1")
	svc := h.evaluationService(baseTime, 2)
	ctx := context.Background()

	report, err := svc.EvaluateMatch(ctx, EvaluateInput{ActorUserID: testAdminUserID, EventID: m.ID, MembershipID: testMemberID})
	require.NoError(t, err)
	require.Equal(t, 1, report.TotalUsersEvaluated)

	require.Equal(t, 11, matchBetPoints(t, h, testMemberID, m.ID))
	require.Zero(t, matchBetPoints(t, h, testMember2ID, m.ID), "a scoped run touches only the named member")

	current, _, err := h.repos.Matches.GetByID(ctx, m.ID)
	require.NoError(t, err)
	require.False(t, current.IsEvaluated, "a scoped run never flips the evaluated flag")

	_, err = svc.EvaluateMatch(ctx, EvaluateInput{ActorUserID: testAdminUserID, EventID: m.ID, MembershipID: "mem-ghost"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEvaluationService_EvaluateMatch_BadConfigWritesNothing(t *testing.T) {
	t.Parallel()

	h := newHarness()
	seedMatchEvaluators(h)
	// Stored without its required tier table; scoring must refuse outright.
	h.fixture.Evaluators.Put(scoring.Evaluator{
		ID: "ev-ranked", LeagueID: testLeagueID, Name: "ranked scorer", EntityKind: event.KindMatch,
		Kind: scoring.KindScorerRanked, Points: 2, IsActive: true,
	})
	m := resultedMatch(h, "match-1")
	svc := h.evaluationService(baseTime, 2)

	_, err := svc.EvaluateMatch(context.Background(), EvaluateInput{ActorUserID: testAdminUserID, EventID: m.ID})
	require.ErrorIs(t, err, ErrPreconditionFailed)

	require.Zero(t, matchBetPoints(t, h, testMemberID, m.ID), "a failed run must not award anyone")
	require.Zero(t, matchBetPoints(t, h, testMember2ID, m.ID))

	current, _, err := h.repos.Matches.GetByID(context.Background(), m.ID)
	require.NoError(t, err)
	require.False(t, current.IsEvaluated)
}

func TestEvaluationService_EvaluateMatch_RankedScorerAsOfStart(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.fixture.Evaluators.Put(scoring.Evaluator{
		ID: "ev-ranked", LeagueID: testLeagueID, Name: "ranked scorer", EntityKind: event.KindMatch,
		Kind: scoring.KindScorerRanked, Points: 2, IsActive: true,
		Config: &scoring.RankedScorerConfig{TierPoints: []int{1, 2, 4}, UnrankedPoints: 6},
	})
	m := resultedMatch(h, "match-1")
	mustUpsertMatchBet(h, bet.MatchBet{ID: "bet-1", MembershipID: testMemberID, MatchID: m.ID, ScorerID: strPtr(testHomePlayerID)})

	// Tier 3 at the match start; demoted to tier 1 afterwards. The run must
	// use the tier in force when the match started.
	demotion := m.StartsAt.Add(time.Hour)
	h.fixture.Rankings.Put(scoring.ScorerRanking{ID: "rk-1", PlayerID: testHomePlayerID, Tier: 3, EffectiveFrom: m.StartsAt.Add(-24 * time.Hour), EffectiveTo: &demotion})
	h.fixture.Rankings.Put(scoring.ScorerRanking{ID: "rk-2", PlayerID: testHomePlayerID, Tier: 1, EffectiveFrom: demotion})

	svc := h.evaluationService(baseTime, 2)
	_, err := svc.EvaluateMatch(context.Background(), EvaluateInput{ActorUserID: testAdminUserID, EventID: m.ID})
	require.NoError(t, err)
	require.Equal(t, 4, matchBetPoints(t, h, testMemberID, m.ID))
}

func TestEvaluationService_EvaluateQuestion(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.fixture.Evaluators.Put(scoring.Evaluator{
		ID: "ev-question", LeagueID: testLeagueID, Name: "question", EntityKind: event.KindQuestion,
		Kind: scoring.KindQuestion, Points: 6, IsActive: true,
		Config: &scoring.QuestionConfig{IncorrectPoints: -3},
	})
	yes := true
	h.fixture.Questions.Put(event.Question{ID: "question-1", LeagueID: testLeagueID, Text: "Overtime in the final?", LockTime: baseTime.Add(-time.Hour), Result: &yes})

	ctx := context.Background()
	_, _, err := h.fixture.QuestionBets.Upsert(ctx, bet.QuestionBet{ID: "qb-1", MembershipID: testMemberID, QuestionID: "question-1", Answer: true})
	require.NoError(t, err)
	_, _, err = h.fixture.QuestionBets.Upsert(ctx, bet.QuestionBet{ID: "qb-2", MembershipID: testMember2ID, QuestionID: "question-1", Answer: false})
	require.NoError(t, err)

	svc := h.evaluationService(baseTime, 2)
	report, err := svc.EvaluateQuestion(ctx, EvaluateInput{ActorUserID: testAdminUserID, EventID: "question-1"})
	require.NoError(t, err)
	require.Equal(t, 2, report.TotalUsersEvaluated)
	require.Equal(t, 3, report.TotalPoints, "a correct 6 and a wrong -3 net to 3")
}

func TestEvaluationService_EvaluateLeague(t *testing.T) {
	t.Parallel()

	h := newHarness()
	seedMatchEvaluators(h)
	resultedMatch(h, "match-1")

	yes := true
	h.fixture.Evaluators.Put(scoring.Evaluator{
		ID: "ev-question", LeagueID: testLeagueID, Name: "question", EntityKind: event.KindQuestion,
		Kind: scoring.KindQuestion, Points: 6, IsActive: true,
	})
	h.fixture.Questions.Put(event.Question{ID: "question-1", LeagueID: testLeagueID, Text: "Overtime?", LockTime: baseTime.Add(-time.Hour), Result: &yes})

	// A value rule over a special whose team-shaped result never carried a
	// number. This event must fail without dragging the others down.
	h.fixture.Evaluators.Put(scoring.Evaluator{
		ID: "ev-closest", LeagueID: testLeagueID, Name: "closest value", EntityKind: event.KindSpecial,
		Kind: scoring.KindClosestValue, Points: 10, IsActive: true,
	})
	h.fixture.Specials.Put(event.Special{
		ID: "special-broken", LeagueID: testLeagueID, Name: "Group A winner", Kind: event.SpecialTeam,
		LockTime: baseTime.Add(-time.Hour),
		Result:   &event.SpecialResult{TeamID: strPtr(testHomeTeamID)},
	})
	ctx := context.Background()
	_, _, err := h.fixture.SpecialBets.Upsert(ctx, bet.SpecialBet{ID: "sb-1", MembershipID: testMemberID, SpecialID: "special-broken", TeamID: strPtr(testHomeTeamID)})
	require.NoError(t, err)

	svc := h.evaluationService(baseTime, 2)
	report, err := svc.EvaluateLeague(ctx, testAdminUserID, testLeagueID)
	require.NoError(t, err)
	require.Equal(t, 2, report.Evaluated)
	require.Equal(t, 1, report.Failed)
	require.Len(t, report.Outcomes, 3)

	for _, outcome := range report.Outcomes {
		if outcome.EventID == "special-broken" {
			require.ErrorIs(t, outcome.Err, ErrPreconditionFailed)
			continue
		}
		require.NoError(t, outcome.Err)
	}

	current, _, err := h.repos.Matches.GetByID(ctx, "match-1")
	require.NoError(t, err)
	require.True(t, current.IsEvaluated)

	sp, _, err := h.repos.Specials.GetByID(ctx, "special-broken")
	require.NoError(t, err)
	require.False(t, sp.IsEvaluated, "the failed event stays pending")

	// Nothing pending anymore except the broken special.
	again, err := svc.EvaluateLeague(ctx, testAdminUserID, testLeagueID)
	require.NoError(t, err)
	require.Len(t, again.Outcomes, 1)
	require.Equal(t, 1, again.Failed)
}

func TestEvaluationService_EvaluateLeague_AdminOnly(t *testing.T) {
	t.Parallel()

	h := newHarness()
	svc := h.evaluationService(baseTime, 2)

	_, err := svc.EvaluateLeague(context.Background(), testMemberUserID, testLeagueID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestEvaluationService_EvaluateSeries(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.fixture.Evaluators.Put(scoring.Evaluator{ID: "ev-serie", LeagueID: testLeagueID, Name: "serie result", EntityKind: event.KindSeries, Kind: scoring.KindSerieResult, Points: 4, IsActive: true})
	h.fixture.Evaluators.Put(scoring.Evaluator{ID: "ev-serie-winner", LeagueID: testLeagueID, Name: "serie winner", EntityKind: event.KindSeries, Kind: scoring.KindSerieWinner, Points: 2, IsActive: true})
	h.fixture.Series.Put(event.Series{
		ID: "series-1", LeagueID: testLeagueID, HomeTeamID: testHomeTeamID, AwayTeamID: testAwayTeamID,
		BestOf: 7, LockTime: baseTime.Add(-time.Hour),
		Result: &event.SeriesResult{HomeWins: 4, AwayWins: 2},
	})
	ctx := context.Background()
	_, _, err := h.fixture.SeriesBets.Upsert(ctx, bet.SeriesBet{ID: "srb-1", MembershipID: testMemberID, SeriesID: "series-1", HomeWins: 4, AwayWins: 2})
	require.NoError(t, err)

	svc := h.evaluationService(baseTime, 2)
	report, err := svc.EvaluateSeries(ctx, EvaluateInput{ActorUserID: testAdminUserID, EventID: "series-1"})
	require.NoError(t, err)
	require.Equal(t, 6, report.TotalPoints)

	b, ok, err := h.repos.SeriesBets.GetByMembershipAndSeries(ctx, testMemberID, "series-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 6, b.TotalPoints)
}
