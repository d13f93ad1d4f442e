package cache

import (
	"context"

	"github.com/jvasek/tipliga/internal/domain/event"
	"github.com/jvasek/tipliga/internal/domain/league"
	"github.com/jvasek/tipliga/internal/domain/player"
	"github.com/jvasek/tipliga/internal/domain/scoring"
	basecache "github.com/jvasek/tipliga/internal/platform/cache"
)

// Read-through decorators for the reference data every request touches.
// Leagues, players and evaluator rule sets change rarely and are authored
// outside the request path, so a short TTL is the only freshness mechanism
// they need. Bets and events are never cached; they are read inside
// transactions.

type LeagueRepository struct {
	next  league.Repository
	cache *basecache.Store
}

func NewLeagueRepository(next league.Repository, cache *basecache.Store) *LeagueRepository {
	return &LeagueRepository{next: next, cache: cache}
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	v, err := r.cache.GetOrLoad(ctx, "league:list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]league.League(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]league.League)
	return append([]league.League(nil), items...), nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	key := "league:id:" + leagueID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return cachedLeagueByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return league.League{}, false, err
	}

	cached, _ := v.(cachedLeagueByID)
	return cached.value, cached.exists, nil
}

type cachedLeagueByID struct {
	value  league.League
	exists bool
}

type PlayerRepository struct {
	next  player.Repository
	cache *basecache.Store
}

func NewPlayerRepository(next player.Repository, cache *basecache.Store) *PlayerRepository {
	return &PlayerRepository{next: next, cache: cache}
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	key := "player:id:" + playerID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, playerID)
		if err != nil {
			return nil, err
		}
		return cachedPlayerByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return player.Player{}, false, err
	}

	cached, _ := v.(cachedPlayerByID)
	return cached.value, cached.exists, nil
}

type cachedPlayerByID struct {
	value  player.Player
	exists bool
}

type EvaluatorRepository struct {
	next  scoring.EvaluatorRepository
	cache *basecache.Store
}

func NewEvaluatorRepository(next scoring.EvaluatorRepository, cache *basecache.Store) *EvaluatorRepository {
	return &EvaluatorRepository{next: next, cache: cache}
}

func (r *EvaluatorRepository) ListActive(ctx context.Context, leagueID string, entityKind event.Kind) ([]scoring.Evaluator, error) {
	key := "evaluator:list:" + leagueID + ":" + string(entityKind)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListActive(ctx, leagueID, entityKind)
		if err != nil {
			return nil, err
		}
		return append([]scoring.Evaluator(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]scoring.Evaluator)
	return append([]scoring.Evaluator(nil), items...), nil
}
