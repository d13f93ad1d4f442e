package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jvasek/tipliga/internal/domain/event"
	"github.com/jvasek/tipliga/internal/domain/scoring"
)

type EvaluatorRepository struct {
	mu    sync.RWMutex
	items map[string]scoring.Evaluator
}

func NewEvaluatorRepository() *EvaluatorRepository {
	return &EvaluatorRepository{items: make(map[string]scoring.Evaluator)}
}

func (r *EvaluatorRepository) Put(item scoring.Evaluator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item
}

func (r *EvaluatorRepository) ListActive(_ context.Context, leagueID string, entityKind event.Kind) ([]scoring.Evaluator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []scoring.Evaluator
	for _, item := range r.items {
		if item.LeagueID == leagueID && item.EntityKind == entityKind && item.IsActive {
			out = append(out, item)
		}
	}
	return out, nil
}

type ScorerRankingRepository struct {
	mu    sync.RWMutex
	items []scoring.ScorerRanking
}

func NewScorerRankingRepository() *ScorerRankingRepository {
	return &ScorerRankingRepository{}
}

func (r *ScorerRankingRepository) Put(item scoring.ScorerRanking) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, cloneRanking(item))
}

func (r *ScorerRankingRepository) ListActiveAt(_ context.Context, at time.Time) ([]scoring.ScorerRanking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []scoring.ScorerRanking
	for _, item := range r.items {
		if item.ActiveAt(at) {
			out = append(out, cloneRanking(item))
		}
	}
	return out, nil
}

func cloneRanking(item scoring.ScorerRanking) scoring.ScorerRanking {
	copied := item
	if item.EffectiveTo != nil {
		t := *item.EffectiveTo
		copied.EffectiveTo = &t
	}
	return copied
}
