package postgres

import (
	"fmt"
	"time"

	"github.com/jvasek/tipliga/internal/domain/event"
	"github.com/jvasek/tipliga/internal/domain/scoring"
)

type evaluatorTableModel struct {
	ID         string     `db:"id"`
	LeagueID   string     `db:"league_id"`
	Name       string     `db:"name"`
	EntityKind string     `db:"entity_kind"`
	Kind       string     `db:"kind"`
	Points     int        `db:"points"`
	Config     []byte     `db:"config"`
	IsActive   bool       `db:"is_active"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
	DeletedAt  *time.Time `db:"deleted_at"`
}

// evaluatorFromRow decodes the jsonb config payload eagerly so a broken rule
// fails the read instead of producing a silent zero score downstream.
func evaluatorFromRow(row evaluatorTableModel) (scoring.Evaluator, error) {
	cfg, err := scoring.DecodeConfig(scoring.Kind(row.Kind), row.Config)
	if err != nil {
		return scoring.Evaluator{}, fmt.Errorf("evaluator %s: %w", row.ID, err)
	}

	return scoring.Evaluator{
		ID:         row.ID,
		LeagueID:   row.LeagueID,
		Name:       row.Name,
		EntityKind: event.Kind(row.EntityKind),
		Kind:       scoring.Kind(row.Kind),
		Points:     row.Points,
		Config:     cfg,
		IsActive:   row.IsActive,
	}, nil
}

type scorerRankingTableModel struct {
	ID            string     `db:"id"`
	PlayerID      string     `db:"player_id"`
	Tier          int        `db:"tier"`
	EffectiveFrom time.Time  `db:"effective_from"`
	EffectiveTo   *time.Time `db:"effective_to"`
	CreatedAt     time.Time  `db:"created_at"`
}

func scorerRankingFromRow(row scorerRankingTableModel) scoring.ScorerRanking {
	return scoring.ScorerRanking{
		ID:            row.ID,
		PlayerID:      row.PlayerID,
		Tier:          row.Tier,
		EffectiveFrom: row.EffectiveFrom,
		EffectiveTo:   row.EffectiveTo,
	}
}
