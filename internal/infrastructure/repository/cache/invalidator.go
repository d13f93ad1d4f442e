package cache

import (
	"context"

	"github.com/jvasek/tipliga/internal/domain/view"
	basecache "github.com/jvasek/tipliga/internal/platform/cache"
	"github.com/jvasek/tipliga/internal/usecase"
)

// ViewKeyPrefix is the cache key prefix for one league's cached read view.
// Handlers that cache event listings store them under this prefix so a
// single DeletePrefix call covers every variant.
func ViewKeyPrefix(leagueID string, kind view.Kind) string {
	return "view:" + leagueID + ":" + string(kind) + ":"
}

// Invalidator drops the cached views a mutation made stale.
type Invalidator struct {
	cache *basecache.Store
}

func NewInvalidator(cache *basecache.Store) *Invalidator {
	return &Invalidator{cache: cache}
}

func (i *Invalidator) Invalidate(ctx context.Context, change view.Change) {
	if change.Kind == view.KindLeaderboard {
		i.cache.Delete(ctx, usecase.LeaderboardCacheKey(change.LeagueID))
		return
	}
	i.cache.DeletePrefix(ctx, ViewKeyPrefix(change.LeagueID, change.Kind))
}
