package audit

import (
	"context"
	"time"
)

// Action names the operation an entry records.
type Action string

const (
	ActionBetCreated     Action = "bet_created"
	ActionBetUpdated     Action = "bet_updated"
	ActionEventEvaluated Action = "event_evaluated"
	ActionResultRecorded Action = "result_recorded"
)

// Entry is one audit record. LeagueID may be empty for actions outside a
// league scope.
type Entry struct {
	ActorID  string
	LeagueID string
	EntityID string
	Action   Action
	Metadata map[string]any
	Duration time.Duration
}

// Recorder delivers entries to the audit collaborator. Callers treat
// delivery as best effort: a returned error is logged at the call site and
// never fails the operation being audited.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}
