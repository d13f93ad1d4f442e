package event

import (
	"testing"
	"time"
)

func TestMatchState(t *testing.T) {
	lock := time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		match Match
		now   time.Time
		want  State
	}{
		{
			name:  "before lock",
			match: Match{LockTime: lock},
			now:   lock.Add(-time.Minute),
			want:  StateScheduled,
		},
		{
			name:  "the lock instant itself is locked",
			match: Match{LockTime: lock},
			now:   lock,
			want:  StateLocked,
		},
		{
			name:  "after lock",
			match: Match{LockTime: lock},
			now:   lock.Add(time.Hour),
			want:  StateLocked,
		},
		{
			name:  "result recorded",
			match: Match{LockTime: lock, Result: &MatchResult{HomeScore: 2, AwayScore: 1}},
			now:   lock.Add(3 * time.Hour),
			want:  StateResulted,
		},
		{
			name:  "evaluated wins over resulted",
			match: Match{LockTime: lock, Result: &MatchResult{}, IsEvaluated: true},
			now:   lock.Add(3 * time.Hour),
			want:  StateEvaluated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.match.State(tt.now); got != tt.want {
				t.Fatalf("unexpected state: got=%s want=%s", got, tt.want)
			}
		})
	}
}

func TestLockedBoundary(t *testing.T) {
	lock := time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC)

	m := Match{LockTime: lock}
	if m.Locked(lock.Add(-time.Nanosecond)) {
		t.Fatal("an instant before the deadline must still be open")
	}
	if !m.Locked(lock) {
		t.Fatal("the deadline instant must count as locked")
	}

	s := Series{LockTime: lock}
	if !s.Locked(lock) {
		t.Fatal("series deadline instant must count as locked")
	}
	sp := Special{LockTime: lock}
	if !sp.Locked(lock) {
		t.Fatal("special deadline instant must count as locked")
	}
	q := Question{LockTime: lock}
	if !q.Locked(lock) {
		t.Fatal("question deadline instant must count as locked")
	}
}

func TestMatchResultScoreless(t *testing.T) {
	if !(MatchResult{}).Scoreless() {
		t.Fatal("0-0 with no scorers is the scoreless outcome")
	}
	if (MatchResult{HomeScore: 1, AwayScore: 0, ScorerIDs: []string{"p1"}}).Scoreless() {
		t.Fatal("a scored match is not scoreless")
	}
	if (MatchResult{ScorerIDs: []string{"p1"}}).Scoreless() {
		t.Fatal("own-goal style scorer list still counts as scored")
	}
}
