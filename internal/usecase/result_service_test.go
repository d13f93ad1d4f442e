package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	. "github.com/jvasek/tipliga/internal/usecase"

	"github.com/jvasek/tipliga/internal/domain/audit"
	"github.com/jvasek/tipliga/internal/domain/event"
	"github.com/jvasek/tipliga/internal/domain/league"
	"github.com/jvasek/tipliga/internal/domain/view"
)

func TestResultService_RecordMatchResult(t *testing.T) {
	t.Parallel()

	h := newHarness()
	m := h.lockedMatch("match-1")
	svc := h.resultService(baseTime)
	ctx := context.Background()

	err := svc.RecordMatchResult(ctx, RecordMatchResultInput{
		ActorUserID: testAdminUserID,
		MatchID:     m.ID,
		Result:      event.MatchResult{HomeScore: 2, AwayScore: 1, ScorerIDs: []string{testHomePlayerID, testAwayPlayerID}},
	})
	require.NoError(t, err)

	current, ok, err := h.repos.Matches.GetByID(ctx, m.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, current.Result)
	require.Equal(t, 2, current.Result.HomeScore)
	require.Equal(t, event.StateResulted, current.State(baseTime))

	require.Len(t, h.auditor.byAction(audit.ActionResultRecorded), 1)
	require.True(t, h.invalidator.saw(view.Change{LeagueID: testLeagueID, Kind: view.KindMatches}))
}

func TestResultService_RecordMatchResult_StillOpen(t *testing.T) {
	t.Parallel()

	h := newHarness()
	m := h.openMatch("match-open")
	svc := h.resultService(baseTime)

	err := svc.RecordMatchResult(context.Background(), RecordMatchResultInput{
		ActorUserID: testAdminUserID,
		MatchID:     m.ID,
		Result:      event.MatchResult{HomeScore: 1, AwayScore: 0, ScorerIDs: []string{testHomePlayerID}},
	})
	require.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestResultService_RecordMatchResult_ClearsEvaluatedFlag(t *testing.T) {
	t.Parallel()

	h := newHarness()
	m := h.lockedMatch("match-1")
	m.IsEvaluated = true
	m.Result = &event.MatchResult{HomeScore: 1, AwayScore: 0, ScorerIDs: []string{testHomePlayerID}}
	h.fixture.Matches.Put(m)
	svc := h.resultService(baseTime)
	ctx := context.Background()

	err := svc.RecordMatchResult(ctx, RecordMatchResultInput{
		ActorUserID: testAdminUserID,
		MatchID:     m.ID,
		Result:      event.MatchResult{HomeScore: 2, AwayScore: 0, ScorerIDs: []string{testHomePlayerID}},
	})
	require.NoError(t, err)

	current, _, err := h.repos.Matches.GetByID(ctx, m.ID)
	require.NoError(t, err)
	require.False(t, current.IsEvaluated, "a corrected result must force a fresh evaluation")
	require.Equal(t, 2, current.Result.HomeScore)
}

func TestResultService_RecordMatchResult_ScorelessPerSport(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.fixture.Leagues.Put(league.League{ID: "nhl-2026", Name: "Hokejka", Season: "2026", Sport: league.SportIceHockey, IsActive: true})
	h.fixture.Memberships.Put(league.Membership{ID: "mem-admin-nhl", LeagueID: "nhl-2026", UserID: testAdminUserID, Role: league.RoleAdmin, IsActive: true})
	h.fixture.Matches.Put(event.Match{
		ID: "match-nhl", LeagueID: "nhl-2026",
		HomeTeamID: testHomeTeamID, AwayTeamID: testAwayTeamID,
		StartsAt: baseTime.Add(-2 * time.Hour), LockTime: baseTime.Add(-2 * time.Hour),
	})
	m := h.lockedMatch("match-soccer")
	svc := h.resultService(baseTime)
	ctx := context.Background()

	err := svc.RecordMatchResult(ctx, RecordMatchResultInput{
		ActorUserID: testAdminUserID,
		MatchID:     "match-nhl",
		Result:      event.MatchResult{},
	})
	require.ErrorIs(t, err, ErrInvalidInput, "hockey has no scoreless outcome")

	err = svc.RecordMatchResult(ctx, RecordMatchResultInput{
		ActorUserID: testAdminUserID,
		MatchID:     m.ID,
		Result:      event.MatchResult{},
	})
	require.NoError(t, err, "a soccer match may end scoreless")
}

func TestResultService_RecordMatchResult_ScorerValidation(t *testing.T) {
	t.Parallel()

	h := newHarness()
	m := h.lockedMatch("match-1")
	svc := h.resultService(baseTime)
	ctx := context.Background()

	tests := []struct {
		name   string
		result event.MatchResult
	}{
		{name: "negative score", result: event.MatchResult{HomeScore: -1, AwayScore: 0}},
		{name: "goals without scorers", result: event.MatchResult{HomeScore: 2, AwayScore: 1}},
		{name: "unknown scorer", result: event.MatchResult{HomeScore: 1, AwayScore: 0, ScorerIDs: []string{"player-ghost"}}},
		{name: "scorer from neither team", result: event.MatchResult{HomeScore: 1, AwayScore: 0, ScorerIDs: []string{testOutsidePlayer}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.RecordMatchResult(ctx, RecordMatchResultInput{
				ActorUserID: testAdminUserID,
				MatchID:     m.ID,
				Result:      tt.result,
			})
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	current, _, err := h.repos.Matches.GetByID(ctx, m.ID)
	require.NoError(t, err)
	require.Nil(t, current.Result, "a rejected result must leave the match unresulted")
}

func TestResultService_RecordMatchResult_Authorization(t *testing.T) {
	t.Parallel()

	h := newHarness()
	m := h.lockedMatch("match-1")
	svc := h.resultService(baseTime)
	ctx := context.Background()

	result := event.MatchResult{HomeScore: 1, AwayScore: 0, ScorerIDs: []string{testHomePlayerID}}

	err := svc.RecordMatchResult(ctx, RecordMatchResultInput{ActorUserID: testMemberUserID, MatchID: m.ID, Result: result})
	require.ErrorIs(t, err, ErrForbidden, "plain members cannot record results")

	err = svc.RecordMatchResult(ctx, RecordMatchResultInput{ActorUserID: "user-stranger", MatchID: m.ID, Result: result})
	require.ErrorIs(t, err, ErrForbidden)

	err = svc.RecordMatchResult(ctx, RecordMatchResultInput{ActorUserID: testAdminUserID, MatchID: "match-ghost", Result: result})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResultService_RecordSeriesResult(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.fixture.Series.Put(event.Series{
		ID: "series-1", LeagueID: testLeagueID,
		HomeTeamID: testHomeTeamID, AwayTeamID: testAwayTeamID,
		BestOf: 7, LockTime: baseTime.Add(-time.Hour),
	})
	svc := h.resultService(baseTime)
	ctx := context.Background()

	err := svc.RecordSeriesResult(ctx, RecordSeriesResultInput{
		ActorUserID: testAdminUserID, SeriesID: "series-1",
		Result: event.SeriesResult{HomeWins: 4, AwayWins: 4},
	})
	require.ErrorIs(t, err, ErrInvalidInput, "both sides cannot reach the winning count")

	err = svc.RecordSeriesResult(ctx, RecordSeriesResultInput{
		ActorUserID: testAdminUserID, SeriesID: "series-1",
		Result: event.SeriesResult{HomeWins: 3, AwayWins: 2},
	})
	require.ErrorIs(t, err, ErrInvalidInput, "a finished best-of-7 needs four wins")

	err = svc.RecordSeriesResult(ctx, RecordSeriesResultInput{
		ActorUserID: testAdminUserID, SeriesID: "series-1",
		Result: event.SeriesResult{HomeWins: 4, AwayWins: 2},
	})
	require.NoError(t, err)

	current, ok, err := h.repos.Series.GetByID(ctx, "series-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, &event.SeriesResult{HomeWins: 4, AwayWins: 2}, current.Result)
}

func TestResultService_RecordSpecialResult_KindShape(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.fixture.Specials.Put(event.Special{
		ID: "special-team", LeagueID: testLeagueID, Name: "Group A winner",
		Kind: event.SpecialTeam, LockTime: baseTime.Add(-time.Hour),
	})
	h.fixture.Specials.Put(event.Special{
		ID: "special-value", LeagueID: testLeagueID, Name: "Total goals",
		Kind: event.SpecialValue, LockTime: baseTime.Add(-time.Hour),
	})
	svc := h.resultService(baseTime)
	ctx := context.Background()

	err := svc.RecordSpecialResult(ctx, RecordSpecialResultInput{
		ActorUserID: testAdminUserID, SpecialID: "special-team",
		Result: event.SpecialResult{Value: intPtr(7)},
	})
	require.ErrorIs(t, err, ErrInvalidInput, "a team special takes no numeric outcome")

	err = svc.RecordSpecialResult(ctx, RecordSpecialResultInput{
		ActorUserID: testAdminUserID, SpecialID: "special-team",
		Result: event.SpecialResult{TeamID: strPtr(testHomeTeamID), AdvancedTeamIDs: []string{testHomeTeamID, testAwayTeamID}},
	})
	require.NoError(t, err)

	err = svc.RecordSpecialResult(ctx, RecordSpecialResultInput{
		ActorUserID: testAdminUserID, SpecialID: "special-value",
		Result: event.SpecialResult{TeamID: strPtr(testHomeTeamID)},
	})
	require.ErrorIs(t, err, ErrInvalidInput, "a value special takes only a numeric outcome")

	err = svc.RecordSpecialResult(ctx, RecordSpecialResultInput{
		ActorUserID: testAdminUserID, SpecialID: "special-value",
		Result: event.SpecialResult{Value: intPtr(164)},
	})
	require.NoError(t, err)

	current, ok, err := h.repos.Specials.GetByID(ctx, "special-value")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, current.Result)
	require.Equal(t, 164, *current.Result.Value)
}

func TestResultService_RecordQuestionResult(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.fixture.Questions.Put(event.Question{
		ID: "question-1", LeagueID: testLeagueID, Text: "Overtime in the final?",
		LockTime: baseTime.Add(time.Hour),
	})
	svc := h.resultService(baseTime)
	ctx := context.Background()

	err := svc.RecordQuestionResult(ctx, RecordQuestionResultInput{
		ActorUserID: testAdminUserID, QuestionID: "question-1", Answer: true,
	})
	require.ErrorIs(t, err, ErrPreconditionFailed, "the deadline must pass before the answer is recorded")

	late := h.resultService(baseTime.Add(2 * time.Hour))
	err = late.RecordQuestionResult(ctx, RecordQuestionResultInput{
		ActorUserID: testAdminUserID, QuestionID: "question-1", Answer: true,
	})
	require.NoError(t, err)

	current, ok, err := h.repos.Questions.GetByID(ctx, "question-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, current.Result)
	require.True(t, *current.Result)
}
