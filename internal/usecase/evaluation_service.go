package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/jvasek/tipliga/internal/domain/audit"
	"github.com/jvasek/tipliga/internal/domain/bet"
	"github.com/jvasek/tipliga/internal/domain/event"
	"github.com/jvasek/tipliga/internal/domain/scoring"
	"github.com/jvasek/tipliga/internal/domain/view"
	"github.com/jvasek/tipliga/internal/platform/logging"
)

const defaultEvaluationWorkers = 4

type EvaluateInput struct {
	ActorUserID string
	EventID     string
	// MembershipID scopes the run to a single member's re-evaluation. A
	// scoped run never flips the event's evaluated flag.
	MembershipID string
}

// MemberScore is one member's outcome of an evaluation run.
type MemberScore struct {
	MembershipID string
	BetID        string
	TotalPoints  int
	Awards       []scoring.Award
}

// EvaluationReport is the full result of evaluating one event.
type EvaluationReport struct {
	EventID             string
	EntityKind          event.Kind
	Members             []MemberScore
	TotalUsersEvaluated int
	TotalPoints         int
	Elapsed             time.Duration
}

// LeagueEvaluationOutcome is one event's result within a bulk league run.
type LeagueEvaluationOutcome struct {
	EventID    string
	EntityKind event.Kind
	Report     EvaluationReport
	Err        error
}

// LeagueEvaluationReport summarizes a bulk run over every resulted,
// unevaluated event of a league. Per-event failures are reported, they do
// not abort sibling events.
type LeagueEvaluationReport struct {
	LeagueID  string
	Outcomes  []LeagueEvaluationOutcome
	Evaluated int
	Failed    int
	Elapsed   time.Duration
}

// EvaluationService recomputes point totals from scratch inside one
// serializable transaction per event. Re-running an evaluation is therefore
// always safe: totals are overwritten, never incremented.
//
// Scoring happens in two phases inside the transaction: every prediction is
// scored first and only then are totals written, so a malformed rule or
// prediction aborts before any member's points change.
type EvaluationService struct {
	repos       Repositories
	uow         UnitOfWork
	auditor     audit.Recorder
	invalidator view.Invalidator
	logger      *logging.Logger
	workers     int
	now         func() time.Time
}

func NewEvaluationService(
	repos Repositories,
	uow UnitOfWork,
	auditor audit.Recorder,
	invalidator view.Invalidator,
	workers int,
	logger *logging.Logger,
) *EvaluationService {
	if workers <= 0 {
		workers = defaultEvaluationWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &EvaluationService{
		repos:       repos,
		uow:         uow,
		auditor:     auditor,
		invalidator: invalidator,
		logger:      logger,
		workers:     workers,
		now:         time.Now,
	}
}

func (s *EvaluationService) EvaluateMatch(ctx context.Context, input EvaluateInput) (EvaluationReport, error) {
	ctx, span := startUsecaseSpan(ctx, "EvaluationService.EvaluateMatch")
	defer span.End()

	input, err := normalizeEvaluateInput(input)
	if err != nil {
		return EvaluationReport{}, err
	}

	m, ok, err := s.repos.Matches.GetByID(ctx, input.EventID)
	if err != nil {
		return EvaluationReport{}, fmt.Errorf("get match: %w", err)
	}
	if !ok || m.DeletedAt != nil {
		return EvaluationReport{}, fmt.Errorf("%w: match %s", ErrNotFound, input.EventID)
	}
	if err := s.requireAdmin(ctx, input.ActorUserID, m.LeagueID); err != nil {
		return EvaluationReport{}, err
	}

	started := s.now()
	report := EvaluationReport{EventID: m.ID, EntityKind: event.KindMatch}

	err = s.uow.Serializable(ctx, func(ctx context.Context, repos Repositories) error {
		current, ok, err := repos.Matches.GetByID(ctx, m.ID)
		if err != nil {
			return fmt.Errorf("reload match: %w", err)
		}
		if !ok || current.DeletedAt != nil {
			return fmt.Errorf("%w: match %s", ErrNotFound, m.ID)
		}
		if current.Result == nil {
			return fmt.Errorf("%w: match %s has no recorded outcome", ErrPreconditionFailed, m.ID)
		}

		evaluators, err := repos.Evaluators.ListActive(ctx, current.LeagueID, event.KindMatch)
		if err != nil {
			return fmt.Errorf("list evaluators: %w", err)
		}

		bets, err := repos.MatchBets.ListByMatch(ctx, current.ID)
		if err != nil {
			return fmt.Errorf("list match bets: %w", err)
		}
		bets, err = scopeMatchBets(bets, input.MembershipID)
		if err != nil {
			return err
		}

		tiers := map[string]int{}
		if needsRankings(evaluators) {
			rankings, err := repos.Rankings.ListActiveAt(ctx, current.StartsAt)
			if err != nil {
				return fmt.Errorf("list scorer rankings: %w", err)
			}
			tiers = scoring.TiersAsOf(rankings, current.StartsAt)
		}

		scores := make([]MemberScore, 0, len(bets))
		for _, b := range bets {
			breakdown, err := scoring.ScoreMatchBet(b, *current.Result, evaluators, tiers, current.DoublePoints)
			if err != nil {
				return wrapScoringError(err)
			}
			scores = append(scores, MemberScore{
				MembershipID: b.MembershipID,
				BetID:        b.ID,
				TotalPoints:  breakdown.Total,
				Awards:       breakdown.Awards,
			})
		}

		for _, sc := range scores {
			if err := repos.MatchBets.UpdateTotalPoints(ctx, sc.BetID, sc.TotalPoints); err != nil {
				return fmt.Errorf("persist total points: %w", err)
			}
		}
		if input.MembershipID == "" {
			if err := repos.Matches.SetEvaluated(ctx, current.ID, true); err != nil {
				return fmt.Errorf("mark match evaluated: %w", err)
			}
		}

		report.Members = scores
		return nil
	})
	if err != nil {
		return EvaluationReport{}, err
	}

	s.finishReport(ctx, &report, m.LeagueID, input.ActorUserID, started, view.KindMatches)
	return report, nil
}

func (s *EvaluationService) EvaluateSeries(ctx context.Context, input EvaluateInput) (EvaluationReport, error) {
	ctx, span := startUsecaseSpan(ctx, "EvaluationService.EvaluateSeries")
	defer span.End()

	input, err := normalizeEvaluateInput(input)
	if err != nil {
		return EvaluationReport{}, err
	}

	sr, ok, err := s.repos.Series.GetByID(ctx, input.EventID)
	if err != nil {
		return EvaluationReport{}, fmt.Errorf("get series: %w", err)
	}
	if !ok || sr.DeletedAt != nil {
		return EvaluationReport{}, fmt.Errorf("%w: series %s", ErrNotFound, input.EventID)
	}
	if err := s.requireAdmin(ctx, input.ActorUserID, sr.LeagueID); err != nil {
		return EvaluationReport{}, err
	}

	started := s.now()
	report := EvaluationReport{EventID: sr.ID, EntityKind: event.KindSeries}

	err = s.uow.Serializable(ctx, func(ctx context.Context, repos Repositories) error {
		current, ok, err := repos.Series.GetByID(ctx, sr.ID)
		if err != nil {
			return fmt.Errorf("reload series: %w", err)
		}
		if !ok || current.DeletedAt != nil {
			return fmt.Errorf("%w: series %s", ErrNotFound, sr.ID)
		}
		if current.Result == nil {
			return fmt.Errorf("%w: series %s has no recorded outcome", ErrPreconditionFailed, sr.ID)
		}

		evaluators, err := repos.Evaluators.ListActive(ctx, current.LeagueID, event.KindSeries)
		if err != nil {
			return fmt.Errorf("list evaluators: %w", err)
		}

		bets, err := repos.SeriesBets.ListBySeries(ctx, current.ID)
		if err != nil {
			return fmt.Errorf("list series bets: %w", err)
		}
		bets, err = scopeSeriesBets(bets, input.MembershipID)
		if err != nil {
			return err
		}

		scores := make([]MemberScore, 0, len(bets))
		for _, b := range bets {
			breakdown, err := scoring.ScoreSeriesBet(b, *current.Result, evaluators)
			if err != nil {
				return wrapScoringError(err)
			}
			scores = append(scores, MemberScore{
				MembershipID: b.MembershipID,
				BetID:        b.ID,
				TotalPoints:  breakdown.Total,
				Awards:       breakdown.Awards,
			})
		}

		for _, sc := range scores {
			if err := repos.SeriesBets.UpdateTotalPoints(ctx, sc.BetID, sc.TotalPoints); err != nil {
				return fmt.Errorf("persist total points: %w", err)
			}
		}
		if input.MembershipID == "" {
			if err := repos.Series.SetEvaluated(ctx, current.ID, true); err != nil {
				return fmt.Errorf("mark series evaluated: %w", err)
			}
		}

		report.Members = scores
		return nil
	})
	if err != nil {
		return EvaluationReport{}, err
	}

	s.finishReport(ctx, &report, sr.LeagueID, input.ActorUserID, started, view.KindSeries)
	return report, nil
}

func (s *EvaluationService) EvaluateSpecial(ctx context.Context, input EvaluateInput) (EvaluationReport, error) {
	ctx, span := startUsecaseSpan(ctx, "EvaluationService.EvaluateSpecial")
	defer span.End()

	input, err := normalizeEvaluateInput(input)
	if err != nil {
		return EvaluationReport{}, err
	}

	sp, ok, err := s.repos.Specials.GetByID(ctx, input.EventID)
	if err != nil {
		return EvaluationReport{}, fmt.Errorf("get special: %w", err)
	}
	if !ok || sp.DeletedAt != nil {
		return EvaluationReport{}, fmt.Errorf("%w: special %s", ErrNotFound, input.EventID)
	}
	if err := s.requireAdmin(ctx, input.ActorUserID, sp.LeagueID); err != nil {
		return EvaluationReport{}, err
	}

	started := s.now()
	report := EvaluationReport{EventID: sp.ID, EntityKind: event.KindSpecial}

	err = s.uow.Serializable(ctx, func(ctx context.Context, repos Repositories) error {
		current, ok, err := repos.Specials.GetByID(ctx, sp.ID)
		if err != nil {
			return fmt.Errorf("reload special: %w", err)
		}
		if !ok || current.DeletedAt != nil {
			return fmt.Errorf("%w: special %s", ErrNotFound, sp.ID)
		}
		if current.Result == nil {
			return fmt.Errorf("%w: special %s has no recorded outcome", ErrPreconditionFailed, sp.ID)
		}

		evaluators, err := repos.Evaluators.ListActive(ctx, current.LeagueID, event.KindSpecial)
		if err != nil {
			return fmt.Errorf("list evaluators: %w", err)
		}

		// The closest-value rule ranks every competing pick, so the full
		// list is loaded even for a member-scoped run.
		all, err := repos.SpecialBets.ListBySpecial(ctx, current.ID)
		if err != nil {
			return fmt.Errorf("list special bets: %w", err)
		}
		targets, err := scopeSpecialBets(all, input.MembershipID)
		if err != nil {
			return err
		}

		scores := make([]MemberScore, 0, len(targets))
		for _, b := range targets {
			breakdown, err := scoring.ScoreSpecialBet(b, *current.Result, evaluators, all)
			if err != nil {
				return wrapScoringError(err)
			}
			scores = append(scores, MemberScore{
				MembershipID: b.MembershipID,
				BetID:        b.ID,
				TotalPoints:  breakdown.Total,
				Awards:       breakdown.Awards,
			})
		}

		for _, sc := range scores {
			if err := repos.SpecialBets.UpdateTotalPoints(ctx, sc.BetID, sc.TotalPoints); err != nil {
				return fmt.Errorf("persist total points: %w", err)
			}
		}
		if input.MembershipID == "" {
			if err := repos.Specials.SetEvaluated(ctx, current.ID, true); err != nil {
				return fmt.Errorf("mark special evaluated: %w", err)
			}
		}

		report.Members = scores
		return nil
	})
	if err != nil {
		return EvaluationReport{}, err
	}

	s.finishReport(ctx, &report, sp.LeagueID, input.ActorUserID, started, view.KindSpecials)
	return report, nil
}

func (s *EvaluationService) EvaluateQuestion(ctx context.Context, input EvaluateInput) (EvaluationReport, error) {
	ctx, span := startUsecaseSpan(ctx, "EvaluationService.EvaluateQuestion")
	defer span.End()

	input, err := normalizeEvaluateInput(input)
	if err != nil {
		return EvaluationReport{}, err
	}

	q, ok, err := s.repos.Questions.GetByID(ctx, input.EventID)
	if err != nil {
		return EvaluationReport{}, fmt.Errorf("get question: %w", err)
	}
	if !ok || q.DeletedAt != nil {
		return EvaluationReport{}, fmt.Errorf("%w: question %s", ErrNotFound, input.EventID)
	}
	if err := s.requireAdmin(ctx, input.ActorUserID, q.LeagueID); err != nil {
		return EvaluationReport{}, err
	}

	started := s.now()
	report := EvaluationReport{EventID: q.ID, EntityKind: event.KindQuestion}

	err = s.uow.Serializable(ctx, func(ctx context.Context, repos Repositories) error {
		current, ok, err := repos.Questions.GetByID(ctx, q.ID)
		if err != nil {
			return fmt.Errorf("reload question: %w", err)
		}
		if !ok || current.DeletedAt != nil {
			return fmt.Errorf("%w: question %s", ErrNotFound, q.ID)
		}
		if current.Result == nil {
			return fmt.Errorf("%w: question %s has no recorded outcome", ErrPreconditionFailed, q.ID)
		}

		evaluators, err := repos.Evaluators.ListActive(ctx, current.LeagueID, event.KindQuestion)
		if err != nil {
			return fmt.Errorf("list evaluators: %w", err)
		}

		bets, err := repos.QuestionBets.ListByQuestion(ctx, current.ID)
		if err != nil {
			return fmt.Errorf("list question bets: %w", err)
		}
		bets, err = scopeQuestionBets(bets, input.MembershipID)
		if err != nil {
			return err
		}

		scores := make([]MemberScore, 0, len(bets))
		for _, b := range bets {
			breakdown, err := scoring.ScoreQuestionBet(b, *current.Result, evaluators)
			if err != nil {
				return wrapScoringError(err)
			}
			scores = append(scores, MemberScore{
				MembershipID: b.MembershipID,
				BetID:        b.ID,
				TotalPoints:  breakdown.Total,
				Awards:       breakdown.Awards,
			})
		}

		for _, sc := range scores {
			if err := repos.QuestionBets.UpdateTotalPoints(ctx, sc.BetID, sc.TotalPoints); err != nil {
				return fmt.Errorf("persist total points: %w", err)
			}
		}
		if input.MembershipID == "" {
			if err := repos.Questions.SetEvaluated(ctx, current.ID, true); err != nil {
				return fmt.Errorf("mark question evaluated: %w", err)
			}
		}

		report.Members = scores
		return nil
	})
	if err != nil {
		return EvaluationReport{}, err
	}

	s.finishReport(ctx, &report, q.LeagueID, input.ActorUserID, started, view.KindQuestions)
	return report, nil
}

// EvaluateLeague runs every resulted, unevaluated event of the league
// through a bounded worker pool. Each event evaluates in its own
// transaction, so one bad event cannot poison the rest.
func (s *EvaluationService) EvaluateLeague(ctx context.Context, actorUserID, leagueID string) (LeagueEvaluationReport, error) {
	ctx, span := startUsecaseSpan(ctx, "EvaluationService.EvaluateLeague")
	defer span.End()

	actorUserID = strings.TrimSpace(actorUserID)
	leagueID = strings.TrimSpace(leagueID)
	if actorUserID == "" || leagueID == "" {
		return LeagueEvaluationReport{}, fmt.Errorf("%w: actor_user_id and league_id are required", ErrInvalidInput)
	}
	if err := s.requireAdmin(ctx, actorUserID, leagueID); err != nil {
		return LeagueEvaluationReport{}, err
	}

	started := s.now()

	type pending struct {
		id   string
		kind event.Kind
	}
	var targets []pending

	matches, err := s.repos.Matches.ListPendingEvaluation(ctx, leagueID)
	if err != nil {
		return LeagueEvaluationReport{}, fmt.Errorf("list pending matches: %w", err)
	}
	for _, m := range matches {
		targets = append(targets, pending{id: m.ID, kind: event.KindMatch})
	}
	series, err := s.repos.Series.ListPendingEvaluation(ctx, leagueID)
	if err != nil {
		return LeagueEvaluationReport{}, fmt.Errorf("list pending series: %w", err)
	}
	for _, sr := range series {
		targets = append(targets, pending{id: sr.ID, kind: event.KindSeries})
	}
	specials, err := s.repos.Specials.ListPendingEvaluation(ctx, leagueID)
	if err != nil {
		return LeagueEvaluationReport{}, fmt.Errorf("list pending specials: %w", err)
	}
	for _, sp := range specials {
		targets = append(targets, pending{id: sp.ID, kind: event.KindSpecial})
	}
	questions, err := s.repos.Questions.ListPendingEvaluation(ctx, leagueID)
	if err != nil {
		return LeagueEvaluationReport{}, fmt.Errorf("list pending questions: %w", err)
	}
	for _, q := range questions {
		targets = append(targets, pending{id: q.ID, kind: event.KindQuestion})
	}

	report := LeagueEvaluationReport{LeagueID: leagueID}
	if len(targets) == 0 {
		report.Elapsed = s.now().Sub(started)
		return report, nil
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return LeagueEvaluationReport{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		workers sync.WaitGroup
	)
	for _, target := range targets {
		target := target
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			input := EvaluateInput{ActorUserID: actorUserID, EventID: target.id}
			var (
				rep    EvaluationReport
				runErr error
			)
			switch target.kind {
			case event.KindMatch:
				rep, runErr = s.EvaluateMatch(ctx, input)
			case event.KindSeries:
				rep, runErr = s.EvaluateSeries(ctx, input)
			case event.KindSpecial:
				rep, runErr = s.EvaluateSpecial(ctx, input)
			case event.KindQuestion:
				rep, runErr = s.EvaluateQuestion(ctx, input)
			}
			if runErr != nil {
				s.logger.WarnContext(ctx, "league evaluation event failed",
					"league_id", leagueID, "event_id", target.id, "kind", string(target.kind), "error", runErr)
			}

			mu.Lock()
			report.Outcomes = append(report.Outcomes, LeagueEvaluationOutcome{
				EventID:    target.id,
				EntityKind: target.kind,
				Report:     rep,
				Err:        runErr,
			})
			if runErr != nil {
				report.Failed++
			} else {
				report.Evaluated++
			}
			mu.Unlock()
		}); err != nil {
			workers.Done()
			workers.Wait()
			return LeagueEvaluationReport{}, fmt.Errorf("submit evaluation task: %w", err)
		}
	}
	workers.Wait()

	report.Elapsed = s.now().Sub(started)
	return report, nil
}

func normalizeEvaluateInput(input EvaluateInput) (EvaluateInput, error) {
	input.ActorUserID = strings.TrimSpace(input.ActorUserID)
	input.EventID = strings.TrimSpace(input.EventID)
	input.MembershipID = strings.TrimSpace(input.MembershipID)
	if input.ActorUserID == "" || input.EventID == "" {
		return EvaluateInput{}, fmt.Errorf("%w: actor_user_id and event_id are required", ErrInvalidInput)
	}
	return input, nil
}

func (s *EvaluationService) requireAdmin(ctx context.Context, userID, leagueID string) error {
	member, ok, err := s.repos.Memberships.GetByUserAndLeague(ctx, userID, leagueID)
	if err != nil {
		return fmt.Errorf("get membership: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: not a member of league %s", ErrForbidden, leagueID)
	}
	if !member.IsAdmin() {
		return fmt.Errorf("%w: league admin required", ErrForbidden)
	}

	return nil
}

// wrapScoringError keeps config and outcome defects in the precondition
// family so callers see a 412-class failure rather than an internal error.
func wrapScoringError(err error) error {
	if errors.Is(err, scoring.ErrConfigMissing) ||
		errors.Is(err, scoring.ErrConfigInvalid) ||
		errors.Is(err, scoring.ErrNotApplicable) ||
		errors.Is(err, scoring.ErrOutcomeIncomplete) {
		return fmt.Errorf("%w: %v", ErrPreconditionFailed, err)
	}
	return err
}

func needsRankings(evaluators []scoring.Evaluator) bool {
	for _, e := range evaluators {
		if e.IsActive && e.Kind == scoring.KindScorerRanked {
			return true
		}
	}
	return false
}

func scopeMatchBets(bets []bet.MatchBet, membershipID string) ([]bet.MatchBet, error) {
	if membershipID == "" {
		return bets, nil
	}
	for _, b := range bets {
		if b.MembershipID == membershipID {
			return []bet.MatchBet{b}, nil
		}
	}
	return nil, fmt.Errorf("%w: membership %s has no bet on this event", ErrNotFound, membershipID)
}

func scopeSeriesBets(bets []bet.SeriesBet, membershipID string) ([]bet.SeriesBet, error) {
	if membershipID == "" {
		return bets, nil
	}
	for _, b := range bets {
		if b.MembershipID == membershipID {
			return []bet.SeriesBet{b}, nil
		}
	}
	return nil, fmt.Errorf("%w: membership %s has no bet on this event", ErrNotFound, membershipID)
}

func scopeSpecialBets(bets []bet.SpecialBet, membershipID string) ([]bet.SpecialBet, error) {
	if membershipID == "" {
		return bets, nil
	}
	for _, b := range bets {
		if b.MembershipID == membershipID {
			return []bet.SpecialBet{b}, nil
		}
	}
	return nil, fmt.Errorf("%w: membership %s has no bet on this event", ErrNotFound, membershipID)
}

func scopeQuestionBets(bets []bet.QuestionBet, membershipID string) ([]bet.QuestionBet, error) {
	if membershipID == "" {
		return bets, nil
	}
	for _, b := range bets {
		if b.MembershipID == membershipID {
			return []bet.QuestionBet{b}, nil
		}
	}
	return nil, fmt.Errorf("%w: membership %s has no bet on this event", ErrNotFound, membershipID)
}

// finishReport fills the aggregate fields and emits the audit entry plus the
// staleness signals for the event view and the leaderboard.
func (s *EvaluationService) finishReport(
	ctx context.Context,
	report *EvaluationReport,
	leagueID, actorUserID string,
	started time.Time,
	kind view.Kind,
) {
	report.TotalUsersEvaluated = len(report.Members)
	total := 0
	for _, m := range report.Members {
		total += m.TotalPoints
	}
	report.TotalPoints = total
	report.Elapsed = s.now().Sub(started)

	if s.auditor != nil {
		entry := audit.Entry{
			ActorID:  actorUserID,
			LeagueID: leagueID,
			EntityID: report.EventID,
			Action:   audit.ActionEventEvaluated,
			Metadata: map[string]any{
				"entity_kind":           string(report.EntityKind),
				"total_users_evaluated": report.TotalUsersEvaluated,
				"total_points":          report.TotalPoints,
			},
			Duration: report.Elapsed,
		}
		if err := s.auditor.Record(ctx, entry); err != nil {
			s.logger.WarnContext(ctx, "audit record failed", "action", string(audit.ActionEventEvaluated), "event_id", report.EventID, "error", err)
		}
	}
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, view.Change{LeagueID: leagueID, Kind: kind})
		s.invalidator.Invalidate(ctx, view.Change{LeagueID: leagueID, Kind: view.KindLeaderboard})
	}
}
