package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jvasek/tipliga/internal/domain/bet"
)

func errBetNotFound(betID string) error {
	return fmt.Errorf("bet %s not found", betID)
}

// leagueResolver maps an event id to its league, for the per-league point
// sums. The event repositories implement it.
type leagueResolver interface {
	leagueOf(eventID string) (string, bool)
}

func (r *MatchRepository) leagueOf(matchID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[matchID]
	if !ok || item.DeletedAt != nil {
		return "", false
	}
	return item.LeagueID, true
}

func (r *SeriesRepository) leagueOf(seriesID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[seriesID]
	if !ok || item.DeletedAt != nil {
		return "", false
	}
	return item.LeagueID, true
}

func (r *SpecialRepository) leagueOf(specialID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[specialID]
	if !ok || item.DeletedAt != nil {
		return "", false
	}
	return item.LeagueID, true
}

func (r *QuestionRepository) leagueOf(questionID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[questionID]
	if !ok || item.DeletedAt != nil {
		return "", false
	}
	return item.LeagueID, true
}

type MatchBetRepository struct {
	mu      sync.RWMutex
	items   map[string]bet.MatchBet
	matches leagueResolver
}

func NewMatchBetRepository(matches *MatchRepository) *MatchBetRepository {
	return &MatchBetRepository{items: make(map[string]bet.MatchBet), matches: matches}
}

func (r *MatchBetRepository) GetByMembershipAndMatch(_ context.Context, membershipID, matchID string) (bet.MatchBet, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.MembershipID == membershipID && item.MatchID == matchID && item.DeletedAt == nil {
			return cloneMatchBet(item), true, nil
		}
	}
	return bet.MatchBet{}, false, nil
}

func (r *MatchBetRepository) ListByMatch(_ context.Context, matchID string) ([]bet.MatchBet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []bet.MatchBet
	for _, item := range r.items {
		if item.MatchID == matchID && item.DeletedAt == nil {
			out = append(out, cloneMatchBet(item))
		}
	}
	return out, nil
}

func (r *MatchBetRepository) ListByMembership(_ context.Context, membershipID string) ([]bet.MatchBet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []bet.MatchBet
	for _, item := range r.items {
		if item.MembershipID == membershipID && item.DeletedAt == nil {
			out = append(out, cloneMatchBet(item))
		}
	}
	return out, nil
}

func (r *MatchBetRepository) Upsert(_ context.Context, b bet.MatchBet) (bet.MatchBet, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for id, item := range r.items {
		if item.MembershipID == b.MembershipID && item.MatchID == b.MatchID && item.DeletedAt == nil {
			item.HomeScore = b.HomeScore
			item.AwayScore = b.AwayScore
			item.ScorerID = cloneStringPtr(b.ScorerID)
			item.NoScorer = b.NoScorer
			item.UpdatedAt = now
			r.items[id] = item
			return cloneMatchBet(item), false, nil
		}
	}

	created := cloneMatchBet(b)
	created.TotalPoints = 0
	created.CreatedAt = now
	created.UpdatedAt = now
	r.items[created.ID] = created
	return cloneMatchBet(created), true, nil
}

func (r *MatchBetRepository) UpdateTotalPoints(_ context.Context, betID string, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[betID]
	if !ok || item.DeletedAt != nil {
		return errBetNotFound(betID)
	}
	item.TotalPoints = points
	r.items[betID] = item
	return nil
}

func (r *MatchBetRepository) PointsByLeague(_ context.Context, leagueID string) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int)
	for _, item := range r.items {
		if item.DeletedAt != nil {
			continue
		}
		if lg, ok := r.matches.leagueOf(item.MatchID); ok && lg == leagueID {
			out[item.MembershipID] += item.TotalPoints
		}
	}
	return out, nil
}

func cloneMatchBet(item bet.MatchBet) bet.MatchBet {
	copied := item
	copied.ScorerID = cloneStringPtr(item.ScorerID)
	if item.DeletedAt != nil {
		t := *item.DeletedAt
		copied.DeletedAt = &t
	}
	return copied
}

type SeriesBetRepository struct {
	mu     sync.RWMutex
	items  map[string]bet.SeriesBet
	series leagueResolver
}

func NewSeriesBetRepository(series *SeriesRepository) *SeriesBetRepository {
	return &SeriesBetRepository{items: make(map[string]bet.SeriesBet), series: series}
}

func (r *SeriesBetRepository) GetByMembershipAndSeries(_ context.Context, membershipID, seriesID string) (bet.SeriesBet, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.MembershipID == membershipID && item.SeriesID == seriesID && item.DeletedAt == nil {
			return item, true, nil
		}
	}
	return bet.SeriesBet{}, false, nil
}

func (r *SeriesBetRepository) ListBySeries(_ context.Context, seriesID string) ([]bet.SeriesBet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []bet.SeriesBet
	for _, item := range r.items {
		if item.SeriesID == seriesID && item.DeletedAt == nil {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *SeriesBetRepository) ListByMembership(_ context.Context, membershipID string) ([]bet.SeriesBet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []bet.SeriesBet
	for _, item := range r.items {
		if item.MembershipID == membershipID && item.DeletedAt == nil {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *SeriesBetRepository) Upsert(_ context.Context, b bet.SeriesBet) (bet.SeriesBet, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for id, item := range r.items {
		if item.MembershipID == b.MembershipID && item.SeriesID == b.SeriesID && item.DeletedAt == nil {
			item.HomeWins = b.HomeWins
			item.AwayWins = b.AwayWins
			item.UpdatedAt = now
			r.items[id] = item
			return item, false, nil
		}
	}

	created := b
	created.TotalPoints = 0
	created.CreatedAt = now
	created.UpdatedAt = now
	r.items[created.ID] = created
	return created, true, nil
}

func (r *SeriesBetRepository) UpdateTotalPoints(_ context.Context, betID string, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[betID]
	if !ok || item.DeletedAt != nil {
		return errBetNotFound(betID)
	}
	item.TotalPoints = points
	r.items[betID] = item
	return nil
}

func (r *SeriesBetRepository) PointsByLeague(_ context.Context, leagueID string) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int)
	for _, item := range r.items {
		if item.DeletedAt != nil {
			continue
		}
		if lg, ok := r.series.leagueOf(item.SeriesID); ok && lg == leagueID {
			out[item.MembershipID] += item.TotalPoints
		}
	}
	return out, nil
}

type SpecialBetRepository struct {
	mu       sync.RWMutex
	items    map[string]bet.SpecialBet
	specials leagueResolver
}

func NewSpecialBetRepository(specials *SpecialRepository) *SpecialBetRepository {
	return &SpecialBetRepository{items: make(map[string]bet.SpecialBet), specials: specials}
}

func (r *SpecialBetRepository) GetByMembershipAndSpecial(_ context.Context, membershipID, specialID string) (bet.SpecialBet, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.MembershipID == membershipID && item.SpecialID == specialID && item.DeletedAt == nil {
			return cloneSpecialBet(item), true, nil
		}
	}
	return bet.SpecialBet{}, false, nil
}

func (r *SpecialBetRepository) ListBySpecial(_ context.Context, specialID string) ([]bet.SpecialBet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []bet.SpecialBet
	for _, item := range r.items {
		if item.SpecialID == specialID && item.DeletedAt == nil {
			out = append(out, cloneSpecialBet(item))
		}
	}
	return out, nil
}

func (r *SpecialBetRepository) ListByMembership(_ context.Context, membershipID string) ([]bet.SpecialBet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []bet.SpecialBet
	for _, item := range r.items {
		if item.MembershipID == membershipID && item.DeletedAt == nil {
			out = append(out, cloneSpecialBet(item))
		}
	}
	return out, nil
}

func (r *SpecialBetRepository) Upsert(_ context.Context, b bet.SpecialBet) (bet.SpecialBet, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for id, item := range r.items {
		if item.MembershipID == b.MembershipID && item.SpecialID == b.SpecialID && item.DeletedAt == nil {
			item.TeamID = cloneStringPtr(b.TeamID)
			item.PlayerID = cloneStringPtr(b.PlayerID)
			item.Value = cloneIntPtr(b.Value)
			item.UpdatedAt = now
			r.items[id] = item
			return cloneSpecialBet(item), false, nil
		}
	}

	created := cloneSpecialBet(b)
	created.TotalPoints = 0
	created.CreatedAt = now
	created.UpdatedAt = now
	r.items[created.ID] = created
	return cloneSpecialBet(created), true, nil
}

func (r *SpecialBetRepository) UpdateTotalPoints(_ context.Context, betID string, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[betID]
	if !ok || item.DeletedAt != nil {
		return errBetNotFound(betID)
	}
	item.TotalPoints = points
	r.items[betID] = item
	return nil
}

func (r *SpecialBetRepository) PointsByLeague(_ context.Context, leagueID string) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int)
	for _, item := range r.items {
		if item.DeletedAt != nil {
			continue
		}
		if lg, ok := r.specials.leagueOf(item.SpecialID); ok && lg == leagueID {
			out[item.MembershipID] += item.TotalPoints
		}
	}
	return out, nil
}

func cloneSpecialBet(item bet.SpecialBet) bet.SpecialBet {
	copied := item
	copied.TeamID = cloneStringPtr(item.TeamID)
	copied.PlayerID = cloneStringPtr(item.PlayerID)
	copied.Value = cloneIntPtr(item.Value)
	if item.DeletedAt != nil {
		t := *item.DeletedAt
		copied.DeletedAt = &t
	}
	return copied
}

type QuestionBetRepository struct {
	mu        sync.RWMutex
	items     map[string]bet.QuestionBet
	questions leagueResolver
}

func NewQuestionBetRepository(questions *QuestionRepository) *QuestionBetRepository {
	return &QuestionBetRepository{items: make(map[string]bet.QuestionBet), questions: questions}
}

func (r *QuestionBetRepository) GetByMembershipAndQuestion(_ context.Context, membershipID, questionID string) (bet.QuestionBet, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.MembershipID == membershipID && item.QuestionID == questionID && item.DeletedAt == nil {
			return item, true, nil
		}
	}
	return bet.QuestionBet{}, false, nil
}

func (r *QuestionBetRepository) ListByQuestion(_ context.Context, questionID string) ([]bet.QuestionBet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []bet.QuestionBet
	for _, item := range r.items {
		if item.QuestionID == questionID && item.DeletedAt == nil {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *QuestionBetRepository) ListByMembership(_ context.Context, membershipID string) ([]bet.QuestionBet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []bet.QuestionBet
	for _, item := range r.items {
		if item.MembershipID == membershipID && item.DeletedAt == nil {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *QuestionBetRepository) Upsert(_ context.Context, b bet.QuestionBet) (bet.QuestionBet, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for id, item := range r.items {
		if item.MembershipID == b.MembershipID && item.QuestionID == b.QuestionID && item.DeletedAt == nil {
			item.Answer = b.Answer
			item.UpdatedAt = now
			r.items[id] = item
			return item, false, nil
		}
	}

	created := b
	created.TotalPoints = 0
	created.CreatedAt = now
	created.UpdatedAt = now
	r.items[created.ID] = created
	return created, true, nil
}

func (r *QuestionBetRepository) UpdateTotalPoints(_ context.Context, betID string, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[betID]
	if !ok || item.DeletedAt != nil {
		return errBetNotFound(betID)
	}
	item.TotalPoints = points
	r.items[betID] = item
	return nil
}

func (r *QuestionBetRepository) PointsByLeague(_ context.Context, leagueID string) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int)
	for _, item := range r.items {
		if item.DeletedAt != nil {
			continue
		}
		if lg, ok := r.questions.leagueOf(item.QuestionID); ok && lg == leagueID {
			out[item.MembershipID] += item.TotalPoints
		}
	}
	return out, nil
}

func cloneStringPtr(v *string) *string {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}

func cloneIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}
