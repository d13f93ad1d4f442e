package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jvasek/tipliga/internal/domain/event"
)

type MatchRepository struct {
	mu    sync.RWMutex
	items map[string]event.Match
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{items: make(map[string]event.Match)}
}

func (r *MatchRepository) Put(item event.Match) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = cloneMatch(item)
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (event.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[matchID]
	if !ok || item.DeletedAt != nil {
		return event.Match{}, false, nil
	}
	return cloneMatch(item), true, nil
}

func (r *MatchRepository) ListPendingEvaluation(_ context.Context, leagueID string) ([]event.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []event.Match
	for _, item := range r.items {
		if item.LeagueID == leagueID && item.DeletedAt == nil && item.Result != nil && !item.IsEvaluated {
			out = append(out, cloneMatch(item))
		}
	}
	return out, nil
}

func (r *MatchRepository) UpdateResult(_ context.Context, matchID string, result event.MatchResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[matchID]
	if !ok || item.DeletedAt != nil {
		return fmt.Errorf("match %s not found", matchID)
	}
	res := result
	res.ScorerIDs = append([]string(nil), result.ScorerIDs...)
	item.Result = &res
	item.IsEvaluated = false
	r.items[matchID] = item
	return nil
}

func (r *MatchRepository) SetEvaluated(_ context.Context, matchID string, evaluated bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[matchID]
	if !ok || item.DeletedAt != nil {
		return fmt.Errorf("match %s not found", matchID)
	}
	item.IsEvaluated = evaluated
	r.items[matchID] = item
	return nil
}

func cloneMatch(item event.Match) event.Match {
	copied := item
	if item.Result != nil {
		res := *item.Result
		res.ScorerIDs = append([]string(nil), item.Result.ScorerIDs...)
		copied.Result = &res
	}
	if item.DeletedAt != nil {
		t := *item.DeletedAt
		copied.DeletedAt = &t
	}
	return copied
}

type SeriesRepository struct {
	mu    sync.RWMutex
	items map[string]event.Series
}

func NewSeriesRepository() *SeriesRepository {
	return &SeriesRepository{items: make(map[string]event.Series)}
}

func (r *SeriesRepository) Put(item event.Series) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = cloneSeries(item)
}

func (r *SeriesRepository) GetByID(_ context.Context, seriesID string) (event.Series, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[seriesID]
	if !ok || item.DeletedAt != nil {
		return event.Series{}, false, nil
	}
	return cloneSeries(item), true, nil
}

func (r *SeriesRepository) ListPendingEvaluation(_ context.Context, leagueID string) ([]event.Series, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []event.Series
	for _, item := range r.items {
		if item.LeagueID == leagueID && item.DeletedAt == nil && item.Result != nil && !item.IsEvaluated {
			out = append(out, cloneSeries(item))
		}
	}
	return out, nil
}

func (r *SeriesRepository) UpdateResult(_ context.Context, seriesID string, result event.SeriesResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[seriesID]
	if !ok || item.DeletedAt != nil {
		return fmt.Errorf("series %s not found", seriesID)
	}
	res := result
	item.Result = &res
	item.IsEvaluated = false
	r.items[seriesID] = item
	return nil
}

func (r *SeriesRepository) SetEvaluated(_ context.Context, seriesID string, evaluated bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[seriesID]
	if !ok || item.DeletedAt != nil {
		return fmt.Errorf("series %s not found", seriesID)
	}
	item.IsEvaluated = evaluated
	r.items[seriesID] = item
	return nil
}

func cloneSeries(item event.Series) event.Series {
	copied := item
	if item.Result != nil {
		res := *item.Result
		copied.Result = &res
	}
	if item.DeletedAt != nil {
		t := *item.DeletedAt
		copied.DeletedAt = &t
	}
	return copied
}

type SpecialRepository struct {
	mu    sync.RWMutex
	items map[string]event.Special
}

func NewSpecialRepository() *SpecialRepository {
	return &SpecialRepository{items: make(map[string]event.Special)}
}

func (r *SpecialRepository) Put(item event.Special) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = cloneSpecial(item)
}

func (r *SpecialRepository) GetByID(_ context.Context, specialID string) (event.Special, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[specialID]
	if !ok || item.DeletedAt != nil {
		return event.Special{}, false, nil
	}
	return cloneSpecial(item), true, nil
}

func (r *SpecialRepository) ListPendingEvaluation(_ context.Context, leagueID string) ([]event.Special, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []event.Special
	for _, item := range r.items {
		if item.LeagueID == leagueID && item.DeletedAt == nil && item.Result != nil && !item.IsEvaluated {
			out = append(out, cloneSpecial(item))
		}
	}
	return out, nil
}

func (r *SpecialRepository) UpdateResult(_ context.Context, specialID string, result event.SpecialResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[specialID]
	if !ok || item.DeletedAt != nil {
		return fmt.Errorf("special %s not found", specialID)
	}
	res := cloneSpecialResult(result)
	item.Result = &res
	item.IsEvaluated = false
	r.items[specialID] = item
	return nil
}

func (r *SpecialRepository) SetEvaluated(_ context.Context, specialID string, evaluated bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[specialID]
	if !ok || item.DeletedAt != nil {
		return fmt.Errorf("special %s not found", specialID)
	}
	item.IsEvaluated = evaluated
	r.items[specialID] = item
	return nil
}

func cloneSpecial(item event.Special) event.Special {
	copied := item
	if item.Result != nil {
		res := cloneSpecialResult(*item.Result)
		copied.Result = &res
	}
	if item.DeletedAt != nil {
		t := *item.DeletedAt
		copied.DeletedAt = &t
	}
	return copied
}

func cloneSpecialResult(res event.SpecialResult) event.SpecialResult {
	copied := res
	if res.TeamID != nil {
		v := *res.TeamID
		copied.TeamID = &v
	}
	if res.PlayerID != nil {
		v := *res.PlayerID
		copied.PlayerID = &v
	}
	if res.Value != nil {
		v := *res.Value
		copied.Value = &v
	}
	copied.AdvancedTeamIDs = append([]string(nil), res.AdvancedTeamIDs...)
	return copied
}

type QuestionRepository struct {
	mu    sync.RWMutex
	items map[string]event.Question
}

func NewQuestionRepository() *QuestionRepository {
	return &QuestionRepository{items: make(map[string]event.Question)}
}

func (r *QuestionRepository) Put(item event.Question) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = cloneQuestion(item)
}

func (r *QuestionRepository) GetByID(_ context.Context, questionID string) (event.Question, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[questionID]
	if !ok || item.DeletedAt != nil {
		return event.Question{}, false, nil
	}
	return cloneQuestion(item), true, nil
}

func (r *QuestionRepository) ListPendingEvaluation(_ context.Context, leagueID string) ([]event.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []event.Question
	for _, item := range r.items {
		if item.LeagueID == leagueID && item.DeletedAt == nil && item.Result != nil && !item.IsEvaluated {
			out = append(out, cloneQuestion(item))
		}
	}
	return out, nil
}

func (r *QuestionRepository) UpdateResult(_ context.Context, questionID string, answer bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[questionID]
	if !ok || item.DeletedAt != nil {
		return fmt.Errorf("question %s not found", questionID)
	}
	item.Result = &answer
	item.IsEvaluated = false
	r.items[questionID] = item
	return nil
}

func (r *QuestionRepository) SetEvaluated(_ context.Context, questionID string, evaluated bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[questionID]
	if !ok || item.DeletedAt != nil {
		return fmt.Errorf("question %s not found", questionID)
	}
	item.IsEvaluated = evaluated
	r.items[questionID] = item
	return nil
}

func cloneQuestion(item event.Question) event.Question {
	copied := item
	if item.Result != nil {
		v := *item.Result
		copied.Result = &v
	}
	if item.DeletedAt != nil {
		t := *item.DeletedAt
		copied.DeletedAt = &t
	}
	return copied
}
