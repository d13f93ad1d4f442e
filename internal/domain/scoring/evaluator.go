package scoring

import (
	"errors"
	"fmt"

	sonic "github.com/bytedance/sonic"

	"github.com/jvasek/tipliga/internal/domain/event"
)

var (
	// ErrConfigMissing indicates an evaluator kind that requires a config
	// payload was stored without one.
	ErrConfigMissing = errors.New("evaluator config missing")
	// ErrConfigInvalid indicates a config payload that does not decode or
	// does not satisfy the kind's constraints.
	ErrConfigInvalid = errors.New("evaluator config invalid")
	// ErrNotApplicable indicates an evaluator kind paired with an entity
	// kind it cannot score.
	ErrNotApplicable = errors.New("evaluator not applicable")
)

// Kind is the scoring rule family an evaluator implements.
type Kind string

const (
	KindExactScore     Kind = "exact_score"
	KindWinner         Kind = "winner"
	KindGoalDifference Kind = "goal_difference"
	KindTotalGoals     Kind = "total_goals"
	KindScorer         Kind = "scorer"
	KindScorerRanked   Kind = "scorer_ranked"
	KindSerieResult    Kind = "serie_result"
	KindSerieWinner    Kind = "serie_winner"
	KindGroupStageTeam Kind = "group_stage_team"
	KindExactPlayer    Kind = "exact_player"
	KindClosestValue   Kind = "closest_value"
	KindQuestion       Kind = "question"
)

// kindEntity maps every known evaluator kind to the event kind it scores.
var kindEntity = map[Kind]event.Kind{
	KindExactScore:     event.KindMatch,
	KindWinner:         event.KindMatch,
	KindGoalDifference: event.KindMatch,
	KindTotalGoals:     event.KindMatch,
	KindScorer:         event.KindMatch,
	KindScorerRanked:   event.KindMatch,
	KindSerieResult:    event.KindSeries,
	KindSerieWinner:    event.KindSeries,
	KindGroupStageTeam: event.KindSpecial,
	KindExactPlayer:    event.KindSpecial,
	KindClosestValue:   event.KindSpecial,
	KindQuestion:       event.KindQuestion,
}

// Evaluator is one configured scoring rule. Multiple evaluators apply
// additively to the same event; ordering never matters because the result is
// a plain sum.
type Evaluator struct {
	ID         string
	LeagueID   string
	Name       string
	EntityKind event.Kind
	Kind       Kind
	Points     int
	Config     Config
	IsActive   bool
}

func (e Evaluator) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("evaluator name is required")
	}
	entity, ok := kindEntity[e.Kind]
	if !ok {
		return fmt.Errorf("%w: unknown kind %q", ErrConfigInvalid, e.Kind)
	}
	if entity != e.EntityKind {
		return fmt.Errorf("%w: kind %q scores %s events, not %s", ErrNotApplicable, e.Kind, entity, e.EntityKind)
	}
	if e.Config != nil {
		if err := e.Config.Validate(); err != nil {
			return fmt.Errorf("evaluator %q: %w", e.Name, err)
		}
	}
	if kindRequiresConfig(e.Kind) && e.Config == nil {
		return fmt.Errorf("%w: kind %q", ErrConfigMissing, e.Kind)
	}

	return nil
}

func kindRequiresConfig(k Kind) bool {
	return k == KindScorerRanked || k == KindGroupStageTeam
}

// Config is the closed set of per-kind parameter payloads. Each variant
// belongs to exactly one evaluator kind; DecodeConfig rejects payloads on
// kinds that take none.
type Config interface {
	Validate() error
	configFor() Kind
}

// RankedScorerConfig maps a scorer's ranking tier to a payout. TierPoints is
// indexed by tier starting at 1; a matched scorer with no active ranking at
// the event time pays UnrankedPoints.
type RankedScorerConfig struct {
	TierPoints     []int `json:"tierPoints"`
	UnrankedPoints int   `json:"unrankedPoints"`
}

func (c *RankedScorerConfig) configFor() Kind { return KindScorerRanked }

func (c *RankedScorerConfig) Validate() error {
	if len(c.TierPoints) == 0 {
		return fmt.Errorf("%w: tierPoints must not be empty", ErrConfigInvalid)
	}
	return nil
}

// PointsForTier resolves the payout for a ranking tier, falling back to the
// unranked amount for tiers outside the table.
func (c *RankedScorerConfig) PointsForTier(tier int) int {
	if tier < 1 || tier > len(c.TierPoints) {
		return c.UnrankedPoints
	}
	return c.TierPoints[tier-1]
}

// GroupStageTeamConfig pays WinnerPoints for picking the group winner and
// AdvancedPoints for a pick that at least advanced.
type GroupStageTeamConfig struct {
	WinnerPoints   int `json:"winnerPoints"`
	AdvancedPoints int `json:"advancedPoints"`
}

func (c *GroupStageTeamConfig) configFor() Kind { return KindGroupStageTeam }

func (c *GroupStageTeamConfig) Validate() error {
	if c.WinnerPoints == 0 && c.AdvancedPoints == 0 {
		return fmt.Errorf("%w: winnerPoints and advancedPoints are both zero", ErrConfigInvalid)
	}
	return nil
}

// ExactPlayerConfig restricts which roster positions are a legal pick.
// Empty means any position.
type ExactPlayerConfig struct {
	AllowedPositions []string `json:"allowedPositions"`
}

func (c *ExactPlayerConfig) configFor() Kind { return KindExactPlayer }

func (c *ExactPlayerConfig) Validate() error {
	for _, p := range c.AllowedPositions {
		if p == "" {
			return fmt.Errorf("%w: empty position in allowedPositions", ErrConfigInvalid)
		}
	}
	return nil
}

// PositionAllowed reports whether the given roster position may be picked.
func (c *ExactPlayerConfig) PositionAllowed(position string) bool {
	if len(c.AllowedPositions) == 0 {
		return true
	}
	for _, p := range c.AllowedPositions {
		if p == position {
			return true
		}
	}
	return false
}

const (
	TiePolicyShare = "share"
	TiePolicyNone  = "none"
)

// ClosestValueConfig controls what happens when several members are
// equidistant from the actual value. The default (empty) policy shares the
// full award between all tied members.
type ClosestValueConfig struct {
	OnTie string `json:"onTie"`
}

func (c *ClosestValueConfig) configFor() Kind { return KindClosestValue }

func (c *ClosestValueConfig) Validate() error {
	switch c.OnTie {
	case "", TiePolicyShare, TiePolicyNone:
		return nil
	default:
		return fmt.Errorf("%w: onTie must be %q or %q", ErrConfigInvalid, TiePolicyShare, TiePolicyNone)
	}
}

func (c *ClosestValueConfig) AwardOnTie() bool {
	return c == nil || c.OnTie != TiePolicyNone
}

// QuestionConfig optionally penalizes a wrong answer. IncorrectPoints is
// usually negative.
type QuestionConfig struct {
	IncorrectPoints int `json:"incorrectPoints"`
}

func (c *QuestionConfig) configFor() Kind { return KindQuestion }

func (c *QuestionConfig) Validate() error { return nil }

// DecodeConfig turns a stored JSON payload into the typed config for the
// given kind. Kinds without parameters reject a non-empty payload; kinds
// with required parameters reject an empty one. A mis-configured rule must
// surface here, not as a silent zero score later.
func DecodeConfig(kind Kind, raw []byte) (Config, error) {
	if _, ok := kindEntity[kind]; !ok {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrConfigInvalid, kind)
	}

	empty := len(raw) == 0
	var cfg Config
	switch kind {
	case KindScorerRanked:
		if empty {
			return nil, fmt.Errorf("%w: kind %q", ErrConfigMissing, kind)
		}
		cfg = &RankedScorerConfig{}
	case KindGroupStageTeam:
		if empty {
			return nil, fmt.Errorf("%w: kind %q", ErrConfigMissing, kind)
		}
		cfg = &GroupStageTeamConfig{}
	case KindExactPlayer:
		if empty {
			return nil, nil
		}
		cfg = &ExactPlayerConfig{}
	case KindClosestValue:
		if empty {
			return nil, nil
		}
		cfg = &ClosestValueConfig{}
	case KindQuestion:
		if empty {
			return nil, nil
		}
		cfg = &QuestionConfig{}
	default:
		if !empty {
			return nil, fmt.Errorf("%w: kind %q takes no config", ErrConfigInvalid, kind)
		}
		return nil, nil
	}

	if err := sonic.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("%w: decode %q config: %v", ErrConfigInvalid, kind, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
