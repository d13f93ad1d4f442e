package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	. "github.com/jvasek/tipliga/internal/usecase"

	"github.com/jvasek/tipliga/internal/domain/audit"
	"github.com/jvasek/tipliga/internal/domain/event"
	"github.com/jvasek/tipliga/internal/domain/league"
	"github.com/jvasek/tipliga/internal/domain/scoring"
	"github.com/jvasek/tipliga/internal/domain/view"
)

func TestBetService_SubmitMatchBet_CreateThenUpdate(t *testing.T) {
	t.Parallel()

	h := newHarness()
	m := h.openMatch("match-1")
	svc := h.betService(baseTime)
	ctx := context.Background()

	saved, created, err := svc.SubmitMatchBet(ctx, SubmitMatchBetInput{
		UserID: testMemberUserID, MatchID: m.ID, HomeScore: 2, AwayScore: 1, ScorerID: strPtr(testHomePlayerID),
	})
	require.NoError(t, err)
	require.True(t, created)
	require.NotEmpty(t, saved.ID)
	require.Equal(t, testMemberID, saved.MembershipID)
	require.Equal(t, 2, saved.HomeScore)

	updated, createdAgain, err := svc.SubmitMatchBet(ctx, SubmitMatchBetInput{
		UserID: testMemberUserID, MatchID: m.ID, HomeScore: 0, AwayScore: 3,
	})
	require.NoError(t, err)
	require.False(t, createdAgain, "resubmission must amend, not duplicate")
	require.Equal(t, saved.ID, updated.ID)
	require.Equal(t, 0, updated.HomeScore)
	require.Equal(t, 3, updated.AwayScore)
	require.Nil(t, updated.ScorerID)
	require.Zero(t, updated.TotalPoints)

	bets, err := h.repos.MatchBets.ListByMembership(ctx, testMemberID)
	require.NoError(t, err)
	require.Len(t, bets, 1)

	require.Len(t, h.auditor.byAction(audit.ActionBetCreated), 1)
	require.Len(t, h.auditor.byAction(audit.ActionBetUpdated), 1)
	require.True(t, h.invalidator.saw(view.Change{LeagueID: testLeagueID, Kind: view.KindMatches}))
}

func TestBetService_SubmitMatchBet_ConcurrentSubmissionsSettleToOneRow(t *testing.T) {
	t.Parallel()

	h := newHarness()
	m := h.openMatch("match-1")
	svc := h.betService(baseTime)
	ctx := context.Background()

	const submitters = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		creates int
		errs    []error
	)
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func(homeScore int) {
			defer wg.Done()
			_, created, err := svc.SubmitMatchBet(ctx, SubmitMatchBetInput{
				UserID: testMemberUserID, MatchID: m.ID, HomeScore: homeScore, AwayScore: 1,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
			}
			if created {
				creates++
			}
		}(i)
	}
	wg.Wait()

	require.Empty(t, errs)
	require.Equal(t, 1, creates, "exactly one submission may create the row")

	rows, err := h.repos.MatchBets.ListByMatch(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1, "racing submissions must settle to a single live row")
	require.Equal(t, testMemberID, rows[0].MembershipID)
	require.Equal(t, 1, rows[0].AwayScore)
	require.GreaterOrEqual(t, rows[0].HomeScore, 0)
	require.Less(t, rows[0].HomeScore, submitters)

	require.Len(t, h.auditor.byAction(audit.ActionBetCreated), 1)
	require.Len(t, h.auditor.byAction(audit.ActionBetUpdated), submitters-1)
}

func TestBetService_SubmitMatchBet_DeadlineBoundary(t *testing.T) {
	t.Parallel()

	h := newHarness()
	m := h.openMatch("match-1")
	ctx := context.Background()

	// One instant before the deadline still lands.
	svc := h.betService(m.LockTime.Add(-time.Nanosecond))
	_, _, err := svc.SubmitMatchBet(ctx, SubmitMatchBetInput{UserID: testMemberUserID, MatchID: m.ID, HomeScore: 1, AwayScore: 0})
	require.NoError(t, err)

	// The deadline instant itself is closed.
	svc = h.betService(m.LockTime)
	_, _, err = svc.SubmitMatchBet(ctx, SubmitMatchBetInput{UserID: testMemberUserID, MatchID: m.ID, HomeScore: 2, AwayScore: 0})
	require.ErrorIs(t, err, ErrBettingClosed)

	// The rejected amendment must leave the earlier bet untouched.
	saved, ok, err := h.repos.MatchBets.GetByMembershipAndMatch(ctx, testMemberID, m.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, saved.HomeScore)
}

func TestBetService_SubmitMatchBet_Membership(t *testing.T) {
	t.Parallel()

	h := newHarness()
	m := h.openMatch("match-1")
	svc := h.betService(baseTime)
	ctx := context.Background()

	_, _, err := svc.SubmitMatchBet(ctx, SubmitMatchBetInput{UserID: "user-stranger", MatchID: m.ID, HomeScore: 1, AwayScore: 0})
	require.ErrorIs(t, err, ErrForbidden)

	_, _, err = svc.SubmitMatchBet(ctx, SubmitMatchBetInput{UserID: testInactiveUserID, MatchID: m.ID, HomeScore: 1, AwayScore: 0})
	require.ErrorIs(t, err, ErrForbidden)

	_, _, err = svc.SubmitMatchBet(ctx, SubmitMatchBetInput{UserID: testMemberUserID, MatchID: "match-ghost", HomeScore: 1, AwayScore: 0})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBetService_SubmitMatchBet_PayloadValidation(t *testing.T) {
	t.Parallel()

	h := newHarness()
	m := h.openMatch("match-1")
	svc := h.betService(baseTime)
	ctx := context.Background()

	tests := []struct {
		name  string
		input SubmitMatchBetInput
	}{
		{
			name:  "negative score",
			input: SubmitMatchBetInput{UserID: testMemberUserID, MatchID: m.ID, HomeScore: -1},
		},
		{
			name:  "scorer and no-scorer together",
			input: SubmitMatchBetInput{UserID: testMemberUserID, MatchID: m.ID, ScorerID: strPtr(testHomePlayerID), NoScorer: true},
		},
		{
			name:  "no-scorer with predicted goals",
			input: SubmitMatchBetInput{UserID: testMemberUserID, MatchID: m.ID, HomeScore: 2, AwayScore: 1, NoScorer: true},
		},
		{
			name:  "unknown scorer",
			input: SubmitMatchBetInput{UserID: testMemberUserID, MatchID: m.ID, ScorerID: strPtr("player-ghost")},
		},
		{
			name:  "scorer from neither competing team",
			input: SubmitMatchBetInput{UserID: testMemberUserID, MatchID: m.ID, ScorerID: strPtr(testOutsidePlayer)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.SubmitMatchBet(ctx, tt.input)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	// A failed validation must not leave a bet behind.
	_, ok, err := h.repos.MatchBets.GetByMembershipAndMatch(ctx, testMemberID, m.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBetService_SubmitMatchBet_NoScorerPerSport(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.fixture.Leagues.Put(league.League{ID: "nhl-2026", Name: "Hokej", Season: "2026", Sport: league.SportIceHockey, IsActive: true})
	h.fixture.Memberships.Put(league.Membership{ID: "mem-hockey", LeagueID: "nhl-2026", UserID: testMemberUserID, Role: league.RoleMember, IsActive: true})
	h.fixture.Matches.Put(event.Match{
		ID: "match-hockey", LeagueID: "nhl-2026",
		HomeTeamID: testHomeTeamID, AwayTeamID: testAwayTeamID,
		StartsAt: baseTime.Add(time.Hour), LockTime: baseTime.Add(time.Hour),
	})
	soccer := h.openMatch("match-soccer")

	svc := h.betService(baseTime)
	ctx := context.Background()

	_, _, err := svc.SubmitMatchBet(ctx, SubmitMatchBetInput{UserID: testMemberUserID, MatchID: "match-hockey", NoScorer: true})
	require.ErrorIs(t, err, ErrInvalidInput, "an ice hockey match always has a scorer")

	_, created, err := svc.SubmitMatchBet(ctx, SubmitMatchBetInput{UserID: testMemberUserID, MatchID: soccer.ID, NoScorer: true})
	require.NoError(t, err)
	require.True(t, created)
}

func TestBetService_SubmitSeriesBet(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.fixture.Series.Put(event.Series{
		ID: "series-1", LeagueID: testLeagueID,
		HomeTeamID: testHomeTeamID, AwayTeamID: testAwayTeamID,
		BestOf: 7, LockTime: baseTime.Add(time.Hour),
	})
	svc := h.betService(baseTime)
	ctx := context.Background()

	saved, created, err := svc.SubmitSeriesBet(ctx, SubmitSeriesBetInput{UserID: testMemberUserID, SeriesID: "series-1", HomeWins: 4, AwayWins: 2})
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, 4, saved.HomeWins)

	for _, tt := range []struct {
		name     string
		home, aw int
	}{
		{name: "nobody reaches four wins", home: 3, aw: 2},
		{name: "both reach four wins", home: 4, aw: 4},
		{name: "winner overshoots", home: 5, aw: 1},
		{name: "negative wins", home: -1, aw: 4},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.SubmitSeriesBet(ctx, SubmitSeriesBetInput{UserID: testMemberUserID, SeriesID: "series-1", HomeWins: tt.home, AwayWins: tt.aw})
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	locked := h.betService(baseTime.Add(2 * time.Hour))
	_, _, err = locked.SubmitSeriesBet(ctx, SubmitSeriesBetInput{UserID: testMemberUserID, SeriesID: "series-1", HomeWins: 4, AwayWins: 1})
	require.ErrorIs(t, err, ErrBettingClosed)
}

func TestBetService_SubmitSpecialBet_KindShape(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.fixture.Specials.Put(event.Special{ID: "special-team", LeagueID: testLeagueID, Name: "Group A winner", Kind: event.SpecialTeam, LockTime: baseTime.Add(time.Hour)})
	h.fixture.Specials.Put(event.Special{ID: "special-value", LeagueID: testLeagueID, Name: "Total goals", Kind: event.SpecialValue, LockTime: baseTime.Add(time.Hour)})
	svc := h.betService(baseTime)
	ctx := context.Background()

	_, created, err := svc.SubmitSpecialBet(ctx, SubmitSpecialBetInput{UserID: testMemberUserID, SpecialID: "special-team", TeamID: strPtr(testHomeTeamID)})
	require.NoError(t, err)
	require.True(t, created)

	_, _, err = svc.SubmitSpecialBet(ctx, SubmitSpecialBetInput{UserID: testMemberUserID, SpecialID: "special-team", Value: intPtr(3)})
	require.ErrorIs(t, err, ErrInvalidInput, "a team special takes exactly a team pick")

	_, _, err = svc.SubmitSpecialBet(ctx, SubmitSpecialBetInput{UserID: testMemberUserID, SpecialID: "special-value", TeamID: strPtr(testHomeTeamID), Value: intPtr(3)})
	require.ErrorIs(t, err, ErrInvalidInput, "a value special takes exactly a value")

	_, created, err = svc.SubmitSpecialBet(ctx, SubmitSpecialBetInput{UserID: testMemberUserID, SpecialID: "special-value", Value: intPtr(164)})
	require.NoError(t, err)
	require.True(t, created)
}

func TestBetService_SubmitSpecialBet_PositionRestriction(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.fixture.Specials.Put(event.Special{ID: "special-scorer", LeagueID: testLeagueID, Name: "Top scorer", Kind: event.SpecialPlayer, LockTime: baseTime.Add(time.Hour)})
	h.fixture.Evaluators.Put(scoring.Evaluator{
		ID: "ev-player", LeagueID: testLeagueID, Name: "top scorer", EntityKind: event.KindSpecial,
		Kind: scoring.KindExactPlayer, Points: 8, IsActive: true,
		Config: &scoring.ExactPlayerConfig{AllowedPositions: []string{"forward"}},
	})
	svc := h.betService(baseTime)
	ctx := context.Background()

	_, _, err := svc.SubmitSpecialBet(ctx, SubmitSpecialBetInput{UserID: testMemberUserID, SpecialID: "special-scorer", PlayerID: strPtr(testOutsidePlayer)})
	require.ErrorIs(t, err, ErrInvalidInput, "a defender is not an eligible top-scorer pick")

	_, created, err := svc.SubmitSpecialBet(ctx, SubmitSpecialBetInput{UserID: testMemberUserID, SpecialID: "special-scorer", PlayerID: strPtr(testHomePlayerID)})
	require.NoError(t, err)
	require.True(t, created)
}

func TestBetService_SubmitQuestionBet(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.fixture.Questions.Put(event.Question{ID: "question-1", LeagueID: testLeagueID, Text: "Hat trick in the final?", LockTime: baseTime.Add(time.Hour)})
	svc := h.betService(baseTime)
	ctx := context.Background()

	saved, created, err := svc.SubmitQuestionBet(ctx, SubmitQuestionBetInput{UserID: testMemberUserID, QuestionID: "question-1", Answer: true})
	require.NoError(t, err)
	require.True(t, created)
	require.True(t, saved.Answer)

	updated, created, err := svc.SubmitQuestionBet(ctx, SubmitQuestionBetInput{UserID: testMemberUserID, QuestionID: "question-1", Answer: false})
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, saved.ID, updated.ID)
	require.False(t, updated.Answer)

	locked := h.betService(baseTime.Add(2 * time.Hour))
	_, _, err = locked.SubmitQuestionBet(ctx, SubmitQuestionBetInput{UserID: testMemberUserID, QuestionID: "question-1", Answer: true})
	require.ErrorIs(t, err, ErrBettingClosed)
}

func TestBetService_ListMemberBets(t *testing.T) {
	t.Parallel()

	h := newHarness()
	m := h.openMatch("match-1")
	h.fixture.Questions.Put(event.Question{ID: "question-1", LeagueID: testLeagueID, Text: "Overtime in the opener?", LockTime: baseTime.Add(time.Hour)})
	svc := h.betService(baseTime)
	ctx := context.Background()

	_, _, err := svc.SubmitMatchBet(ctx, SubmitMatchBetInput{UserID: testMemberUserID, MatchID: m.ID, HomeScore: 2, AwayScore: 1})
	require.NoError(t, err)
	_, _, err = svc.SubmitQuestionBet(ctx, SubmitQuestionBetInput{UserID: testMemberUserID, QuestionID: "question-1", Answer: true})
	require.NoError(t, err)
	_, _, err = svc.SubmitMatchBet(ctx, SubmitMatchBetInput{UserID: testMember2UserID, MatchID: m.ID, HomeScore: 0, AwayScore: 0})
	require.NoError(t, err)

	got, err := svc.ListMemberBets(ctx, testMemberUserID, testLeagueID)
	require.NoError(t, err)
	require.Equal(t, testMemberID, got.MembershipID)
	require.Len(t, got.MatchBets, 1)
	require.Len(t, got.QuestionBets, 1)
	require.Empty(t, got.SeriesBets)
	require.Empty(t, got.SpecialBets)

	_, err = svc.ListMemberBets(ctx, "user-stranger", testLeagueID)
	require.ErrorIs(t, err, ErrForbidden)
}
