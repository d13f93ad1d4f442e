package scoring

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jvasek/tipliga/internal/domain/bet"
	"github.com/jvasek/tipliga/internal/domain/event"
)

// ErrOutcomeIncomplete indicates the recorded outcome lacks a field that an
// active evaluator needs, e.g. a closest-value rule over a special whose
// numeric result was never filled in.
var ErrOutcomeIncomplete = errors.New("outcome incomplete")

// Award is one evaluator that fired for one prediction.
type Award struct {
	EvaluatorID string
	Name        string
	Kind        Kind
	Points      int
}

// Breakdown is the full scoring result for one prediction. Total already
// includes the event-level multiplier; Awards carry the raw per-evaluator
// amounts. A rule that fired is listed even when it is configured to pay
// zero, so the report shows every hit.
type Breakdown struct {
	Awards []Award
	Total  int
}

func (b *Breakdown) add(e Evaluator, points int) {
	b.Awards = append(b.Awards, Award{EvaluatorID: e.ID, Name: e.Name, Kind: e.Kind, Points: points})
	b.Total += points
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

// ScoreMatchBet scores one match prediction against the recorded outcome.
// tiers maps player id to ranking tier as of the match start; unranked
// players are simply absent. The double-points multiplier scales the summed
// total once, never the individual awards.
//
// The winner and goal_difference rules both fire on a correct non-draw
// difference on purpose; they are independent rules and each pays out.
func ScoreMatchBet(b bet.MatchBet, res event.MatchResult, evaluators []Evaluator, tiers map[string]int, doublePoints bool) (Breakdown, error) {
	var out Breakdown
	for _, e := range evaluators {
		if !e.IsActive {
			continue
		}

		switch e.Kind {
		case KindExactScore:
			if b.HomeScore == res.HomeScore && b.AwayScore == res.AwayScore {
				out.add(e, e.Points)
			}
		case KindWinner:
			if sign(b.HomeScore-b.AwayScore) == sign(res.HomeScore-res.AwayScore) {
				out.add(e, e.Points)
			}
		case KindGoalDifference:
			if b.HomeScore-b.AwayScore == res.HomeScore-res.AwayScore {
				out.add(e, e.Points)
			}
		case KindTotalGoals:
			if b.HomeScore+b.AwayScore == res.HomeScore+res.AwayScore {
				out.add(e, e.Points)
			}
		case KindScorer:
			if scorerHit(b, res) {
				out.add(e, e.Points)
			}
		case KindScorerRanked:
			cfg, ok := e.Config.(*RankedScorerConfig)
			if !ok || cfg == nil {
				return Breakdown{}, fmt.Errorf("%w: evaluator %q", ErrConfigMissing, e.Name)
			}
			if !scorerHit(b, res) {
				continue
			}
			if b.NoScorer {
				// A correct no-scorer call has no tier to look up.
				out.add(e, e.Points)
				continue
			}
			if tier, ranked := tiers[*b.ScorerID]; ranked {
				out.add(e, cfg.PointsForTier(tier))
			} else {
				out.add(e, cfg.UnrankedPoints)
			}
		default:
			return Breakdown{}, fmt.Errorf("%w: evaluator %q kind %q on a match bet", ErrNotApplicable, e.Name, e.Kind)
		}
	}

	if doublePoints {
		out.Total *= 2
	}

	return out, nil
}

func scorerHit(b bet.MatchBet, res event.MatchResult) bool {
	if b.NoScorer {
		return res.Scoreless()
	}
	return b.ScorerID != nil && slices.Contains(res.ScorerIDs, *b.ScorerID)
}

// ScoreSeriesBet scores one series prediction.
func ScoreSeriesBet(b bet.SeriesBet, res event.SeriesResult, evaluators []Evaluator) (Breakdown, error) {
	var out Breakdown
	for _, e := range evaluators {
		if !e.IsActive {
			continue
		}

		switch e.Kind {
		case KindSerieResult:
			if b.HomeWins == res.HomeWins && b.AwayWins == res.AwayWins {
				out.add(e, e.Points)
			}
		case KindSerieWinner:
			if sign(b.HomeWins-b.AwayWins) == sign(res.HomeWins-res.AwayWins) {
				out.add(e, e.Points)
			}
		default:
			return Breakdown{}, fmt.Errorf("%w: evaluator %q kind %q on a series bet", ErrNotApplicable, e.Name, e.Kind)
		}
	}

	return out, nil
}

// ScoreSpecialBet scores one special-bet pick. competing must hold every
// non-deleted pick on the same special, including b itself, because the
// closest-value rule ranks all of them by distance to the actual value.
func ScoreSpecialBet(b bet.SpecialBet, res event.SpecialResult, evaluators []Evaluator, competing []bet.SpecialBet) (Breakdown, error) {
	var out Breakdown
	for _, e := range evaluators {
		if !e.IsActive {
			continue
		}

		switch e.Kind {
		case KindGroupStageTeam:
			cfg, ok := e.Config.(*GroupStageTeamConfig)
			if !ok || cfg == nil {
				return Breakdown{}, fmt.Errorf("%w: evaluator %q", ErrConfigMissing, e.Name)
			}
			if res.TeamID == nil && len(res.AdvancedTeamIDs) == 0 {
				return Breakdown{}, fmt.Errorf("%w: evaluator %q needs a team outcome", ErrOutcomeIncomplete, e.Name)
			}
			if b.TeamID == nil {
				continue
			}
			switch {
			case res.TeamID != nil && *b.TeamID == *res.TeamID:
				out.add(e, cfg.WinnerPoints)
			case slices.Contains(res.AdvancedTeamIDs, *b.TeamID):
				out.add(e, cfg.AdvancedPoints)
			}
		case KindExactPlayer:
			if res.PlayerID == nil {
				return Breakdown{}, fmt.Errorf("%w: evaluator %q needs a player outcome", ErrOutcomeIncomplete, e.Name)
			}
			if b.PlayerID != nil && *b.PlayerID == *res.PlayerID {
				out.add(e, e.Points)
			}
		case KindClosestValue:
			if res.Value == nil {
				return Breakdown{}, fmt.Errorf("%w: evaluator %q needs a numeric outcome", ErrOutcomeIncomplete, e.Name)
			}
			points, hit, err := closestValuePoints(e, b, *res.Value, competing)
			if err != nil {
				return Breakdown{}, err
			}
			if hit {
				out.add(e, points)
			}
		default:
			return Breakdown{}, fmt.Errorf("%w: evaluator %q kind %q on a special bet", ErrNotApplicable, e.Name, e.Kind)
		}
	}

	return out, nil
}

// closestValuePoints awards only the pick(s) with the minimal absolute
// distance to the actual value. Under the default tie policy every tied
// member receives the full award; the "none" policy voids the award when
// more than one member is closest. The bool reports whether the rule fired
// for this pick at all.
func closestValuePoints(e Evaluator, b bet.SpecialBet, actual int, competing []bet.SpecialBet) (int, bool, error) {
	cfg, _ := e.Config.(*ClosestValueConfig)
	if e.Config != nil && cfg == nil {
		return 0, false, fmt.Errorf("%w: evaluator %q", ErrConfigInvalid, e.Name)
	}
	if b.Value == nil {
		return 0, false, nil
	}

	best := -1
	tied := 0
	for _, c := range competing {
		if c.Value == nil {
			continue
		}
		d := abs(*c.Value - actual)
		switch {
		case best < 0 || d < best:
			best = d
			tied = 1
		case d == best:
			tied++
		}
	}
	if best < 0 || abs(*b.Value-actual) != best {
		return 0, false, nil
	}
	if tied > 1 && !cfg.AwardOnTie() {
		return 0, false, nil
	}

	return e.Points, true, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// ScoreQuestionBet scores one yes/no answer. A wrong answer pays the
// configured penalty, which is usually negative, or nothing without config.
func ScoreQuestionBet(b bet.QuestionBet, actual bool, evaluators []Evaluator) (Breakdown, error) {
	var out Breakdown
	for _, e := range evaluators {
		if !e.IsActive {
			continue
		}

		switch e.Kind {
		case KindQuestion:
			if b.Answer == actual {
				out.add(e, e.Points)
				continue
			}
			if cfg, ok := e.Config.(*QuestionConfig); ok && cfg != nil {
				out.add(e, cfg.IncorrectPoints)
			}
		default:
			return Breakdown{}, fmt.Errorf("%w: evaluator %q kind %q on a question bet", ErrNotApplicable, e.Name, e.Kind)
		}
	}

	return out, nil
}
