package scoring

import (
	"errors"
	"testing"

	"github.com/jvasek/tipliga/internal/domain/event"
)

func TestEvaluatorValidate(t *testing.T) {
	tests := []struct {
		name      string
		evaluator Evaluator
		targetErr error
	}{
		{
			name:      "valid match rule",
			evaluator: Evaluator{Name: "exact score", EntityKind: event.KindMatch, Kind: KindExactScore, Points: 5},
		},
		{
			name:      "unknown kind",
			evaluator: Evaluator{Name: "mystery", EntityKind: event.KindMatch, Kind: Kind("mystery")},
			targetErr: ErrConfigInvalid,
		},
		{
			name:      "kind on the wrong entity",
			evaluator: Evaluator{Name: "exact score", EntityKind: event.KindSeries, Kind: KindExactScore},
			targetErr: ErrNotApplicable,
		},
		{
			name:      "ranked scorer without config",
			evaluator: Evaluator{Name: "ranked", EntityKind: event.KindMatch, Kind: KindScorerRanked},
			targetErr: ErrConfigMissing,
		},
		{
			name: "ranked scorer with empty tier table",
			evaluator: Evaluator{
				Name: "ranked", EntityKind: event.KindMatch, Kind: KindScorerRanked,
				Config: &RankedScorerConfig{},
			},
			targetErr: ErrConfigInvalid,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.evaluator.Validate()
			if tt.targetErr == nil {
				if err != nil {
					t.Fatalf("validate: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.targetErr) {
				t.Fatalf("expected %v, got %v", tt.targetErr, err)
			}
		})
	}
}

func TestDecodeConfig(t *testing.T) {
	tests := []struct {
		name      string
		kind      Kind
		raw       string
		targetErr error
		wantNil   bool
	}{
		{name: "unknown kind", kind: Kind("mystery"), targetErr: ErrConfigInvalid},
		{name: "payload on a parameterless kind", kind: KindExactScore, raw: `{"x":1}`, targetErr: ErrConfigInvalid},
		{name: "parameterless kind without payload", kind: KindWinner, wantNil: true},
		{name: "ranked scorer without payload", kind: KindScorerRanked, targetErr: ErrConfigMissing},
		{name: "ranked scorer malformed json", kind: KindScorerRanked, raw: `{"tierPoints":`, targetErr: ErrConfigInvalid},
		{name: "ranked scorer empty tier table", kind: KindScorerRanked, raw: `{"tierPoints":[]}`, targetErr: ErrConfigInvalid},
		{name: "ranked scorer valid", kind: KindScorerRanked, raw: `{"tierPoints":[1,2,4],"unrankedPoints":6}`},
		{name: "group stage without payload", kind: KindGroupStageTeam, targetErr: ErrConfigMissing},
		{name: "group stage all zero", kind: KindGroupStageTeam, raw: `{}`, targetErr: ErrConfigInvalid},
		{name: "group stage valid", kind: KindGroupStageTeam, raw: `{"winnerPoints":5,"advancedPoints":2}`},
		{name: "closest value bad tie policy", kind: KindClosestValue, raw: `{"onTie":"split"}`, targetErr: ErrConfigInvalid},
		{name: "closest value valid", kind: KindClosestValue, raw: `{"onTie":"none"}`},
		{name: "closest value optional", kind: KindClosestValue, wantNil: true},
		{name: "question penalty", kind: KindQuestion, raw: `{"incorrectPoints":-3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := DecodeConfig(tt.kind, []byte(tt.raw))
			if tt.targetErr != nil {
				if !errors.Is(err, tt.targetErr) {
					t.Fatalf("expected %v, got %v", tt.targetErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode config: %v", err)
			}
			if tt.wantNil && cfg != nil {
				t.Fatalf("expected nil config, got %#v", cfg)
			}
			if !tt.wantNil && cfg == nil {
				t.Fatal("expected a decoded config, got nil")
			}
		})
	}
}

func TestRankedScorerConfig_PointsForTier(t *testing.T) {
	cfg := &RankedScorerConfig{TierPoints: []int{1, 2, 4}, UnrankedPoints: 6}

	tests := []struct {
		tier int
		want int
	}{
		{tier: 1, want: 1},
		{tier: 3, want: 4},
		{tier: 0, want: 6},
		{tier: 4, want: 6},
	}
	for _, tt := range tests {
		if got := cfg.PointsForTier(tt.tier); got != tt.want {
			t.Fatalf("tier %d: got=%d want=%d", tt.tier, got, tt.want)
		}
	}
}

func TestExactPlayerConfig_PositionAllowed(t *testing.T) {
	open := &ExactPlayerConfig{}
	if !open.PositionAllowed("defender") {
		t.Fatal("empty restriction must allow any position")
	}

	forwardsOnly := &ExactPlayerConfig{AllowedPositions: []string{"forward"}}
	if !forwardsOnly.PositionAllowed("forward") {
		t.Fatal("listed position must be allowed")
	}
	if forwardsOnly.PositionAllowed("goalkeeper") {
		t.Fatal("unlisted position must be rejected")
	}
}
