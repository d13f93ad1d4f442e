package memory

import (
	"context"
	"sync"

	"github.com/jvasek/tipliga/internal/domain/league"
)

type LeagueRepository struct {
	mu    sync.RWMutex
	items map[string]league.League
}

func NewLeagueRepository() *LeagueRepository {
	return &LeagueRepository{items: make(map[string]league.League)}
}

func (r *LeagueRepository) Put(item league.League) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	return out, nil
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[leagueID]
	if !ok {
		return league.League{}, false, nil
	}
	return item, true, nil
}

type MembershipRepository struct {
	mu    sync.RWMutex
	items map[string]league.Membership
}

func NewMembershipRepository() *MembershipRepository {
	return &MembershipRepository{items: make(map[string]league.Membership)}
}

func (r *MembershipRepository) Put(item league.Membership) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = cloneMembership(item)
}

func (r *MembershipRepository) GetByID(_ context.Context, membershipID string) (league.Membership, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[membershipID]
	if !ok || item.DeletedAt != nil {
		return league.Membership{}, false, nil
	}
	return cloneMembership(item), true, nil
}

func (r *MembershipRepository) GetByUserAndLeague(_ context.Context, userID, leagueID string) (league.Membership, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.UserID == userID && item.LeagueID == leagueID && item.DeletedAt == nil {
			return cloneMembership(item), true, nil
		}
	}
	return league.Membership{}, false, nil
}

func (r *MembershipRepository) ListActiveByLeague(_ context.Context, leagueID string) ([]league.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []league.Membership
	for _, item := range r.items {
		if item.LeagueID == leagueID && item.DeletedAt == nil && item.IsActive {
			out = append(out, cloneMembership(item))
		}
	}
	return out, nil
}

func cloneMembership(item league.Membership) league.Membership {
	copied := item
	if item.DeletedAt != nil {
		t := *item.DeletedAt
		copied.DeletedAt = &t
	}
	return copied
}
