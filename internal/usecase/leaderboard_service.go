package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jvasek/tipliga/internal/platform/cache"
)

// StandingRow is one member's position on the league leaderboard. Members
// with equal points share a rank and the next rank is skipped.
type StandingRow struct {
	Rank         int
	MembershipID string
	UserID       string
	TotalPoints  int
}

// LeaderboardService sums evaluated points across every prediction kind.
// Standings are cached per league; evaluation invalidates the entry through
// the leaderboard view change.
type LeaderboardService struct {
	repos Repositories
	store *cache.Store
}

func NewLeaderboardService(repos Repositories, store *cache.Store) *LeaderboardService {
	return &LeaderboardService{
		repos: repos,
		store: store,
	}
}

// LeaderboardCacheKey is the cache key prefix the invalidation adapter
// purges for view.KindLeaderboard changes.
func LeaderboardCacheKey(leagueID string) string {
	return "leaderboard:" + leagueID
}

func (s *LeaderboardService) Standings(ctx context.Context, leagueID string) ([]StandingRow, error) {
	ctx, span := startUsecaseSpan(ctx, "LeaderboardService.Standings")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league_id is required", ErrInvalidInput)
	}

	if s.store == nil {
		return s.computeStandings(ctx, leagueID)
	}

	value, err := s.store.GetOrLoad(ctx, LeaderboardCacheKey(leagueID), func(ctx context.Context) (any, error) {
		return s.computeStandings(ctx, leagueID)
	})
	if err != nil {
		return nil, err
	}
	rows, ok := value.([]StandingRow)
	if !ok {
		return nil, fmt.Errorf("unexpected leaderboard cache payload %T", value)
	}

	return rows, nil
}

func (s *LeaderboardService) computeStandings(ctx context.Context, leagueID string) ([]StandingRow, error) {
	_, ok, err := s.repos.Leagues.GetByID(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("get league: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: league %s", ErrNotFound, leagueID)
	}

	members, err := s.repos.Memberships.ListActiveByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}

	totals := make(map[string]int, len(members))
	for _, source := range []func(context.Context, string) (map[string]int, error){
		s.repos.MatchBets.PointsByLeague,
		s.repos.SeriesBets.PointsByLeague,
		s.repos.SpecialBets.PointsByLeague,
		s.repos.QuestionBets.PointsByLeague,
	} {
		points, err := source(ctx, leagueID)
		if err != nil {
			return nil, fmt.Errorf("sum bet points: %w", err)
		}
		for membershipID, p := range points {
			totals[membershipID] += p
		}
	}

	rows := make([]StandingRow, 0, len(members))
	for _, m := range members {
		rows = append(rows, StandingRow{
			MembershipID: m.ID,
			UserID:       m.UserID,
			TotalPoints:  totals[m.ID],
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalPoints != rows[j].TotalPoints {
			return rows[i].TotalPoints > rows[j].TotalPoints
		}
		return rows[i].MembershipID < rows[j].MembershipID
	})

	for i := range rows {
		if i > 0 && rows[i].TotalPoints == rows[i-1].TotalPoints {
			rows[i].Rank = rows[i-1].Rank
			continue
		}
		rows[i].Rank = i + 1
	}

	return rows, nil
}
