package scoring

import (
	"context"
	"time"

	"github.com/jvasek/tipliga/internal/domain/event"
)

// EvaluatorRepository reads the active rule set. Rules are authored outside
// this service; evaluation only ever consumes them.
type EvaluatorRepository interface {
	ListActive(ctx context.Context, leagueID string, entityKind event.Kind) ([]Evaluator, error)
}

// ScorerRankingRepository reads ranking versions active at a given instant.
type ScorerRankingRepository interface {
	ListActiveAt(ctx context.Context, at time.Time) ([]ScorerRanking, error)
}
