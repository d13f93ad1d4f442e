package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jvasek/tipliga/internal/domain/audit"
	"github.com/jvasek/tipliga/internal/domain/bet"
	"github.com/jvasek/tipliga/internal/domain/event"
	"github.com/jvasek/tipliga/internal/domain/league"
	"github.com/jvasek/tipliga/internal/domain/scoring"
	"github.com/jvasek/tipliga/internal/domain/view"
	"github.com/jvasek/tipliga/internal/platform/id"
	"github.com/jvasek/tipliga/internal/platform/logging"
)

type SubmitMatchBetInput struct {
	UserID    string
	MatchID   string
	HomeScore int
	AwayScore int
	ScorerID  *string
	NoScorer  bool
}

type SubmitSeriesBetInput struct {
	UserID   string
	SeriesID string
	HomeWins int
	AwayWins int
}

type SubmitSpecialBetInput struct {
	UserID    string
	SpecialID string
	TeamID    *string
	PlayerID  *string
	Value     *int
}

type SubmitQuestionBetInput struct {
	UserID     string
	QuestionID string
	Answer     bool
}

// MemberBets groups everything one member has submitted in one league.
type MemberBets struct {
	MembershipID string
	MatchBets    []bet.MatchBet
	SeriesBets   []bet.SeriesBet
	SpecialBets  []bet.SpecialBet
	QuestionBets []bet.QuestionBet
}

// BetService implements the deadline-aware submission protocol. Every submit
// re-checks the lock inside the serializable transaction so a submission
// racing the deadline either fully lands or fully fails.
type BetService struct {
	repos       Repositories
	uow         UnitOfWork
	auditor     audit.Recorder
	invalidator view.Invalidator
	ids         id.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewBetService(
	repos Repositories,
	uow UnitOfWork,
	auditor audit.Recorder,
	invalidator view.Invalidator,
	ids id.Generator,
	logger *logging.Logger,
) *BetService {
	if logger == nil {
		logger = logging.Default()
	}
	return &BetService{
		repos:       repos,
		uow:         uow,
		auditor:     auditor,
		invalidator: invalidator,
		ids:         ids,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *BetService) SubmitMatchBet(ctx context.Context, input SubmitMatchBetInput) (bet.MatchBet, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "BetService.SubmitMatchBet")
	defer span.End()
	started := s.now()

	input.UserID = strings.TrimSpace(input.UserID)
	input.MatchID = strings.TrimSpace(input.MatchID)
	if input.UserID == "" || input.MatchID == "" {
		return bet.MatchBet{}, false, fmt.Errorf("%w: user_id and match_id are required", ErrInvalidInput)
	}

	m, ok, err := s.repos.Matches.GetByID(ctx, input.MatchID)
	if err != nil {
		return bet.MatchBet{}, false, fmt.Errorf("get match: %w", err)
	}
	if !ok || m.DeletedAt != nil {
		return bet.MatchBet{}, false, fmt.Errorf("%w: match %s", ErrNotFound, input.MatchID)
	}

	member, err := s.activeMembership(ctx, input.UserID, m.LeagueID)
	if err != nil {
		return bet.MatchBet{}, false, err
	}

	if m.Locked(s.now()) {
		return bet.MatchBet{}, false, fmt.Errorf("%w: match %s locked at %s", ErrBettingClosed, m.ID, m.LockTime.Format(time.RFC3339))
	}

	if err := s.validateMatchBetPayload(ctx, m, input); err != nil {
		return bet.MatchBet{}, false, err
	}

	var (
		saved   bet.MatchBet
		created bool
	)
	err = s.uow.Serializable(ctx, func(ctx context.Context, repos Repositories) error {
		current, ok, err := repos.Matches.GetByID(ctx, m.ID)
		if err != nil {
			return fmt.Errorf("reload match: %w", err)
		}
		if !ok || current.DeletedAt != nil {
			return fmt.Errorf("%w: match %s", ErrNotFound, m.ID)
		}
		if current.Locked(s.now()) {
			return fmt.Errorf("%w: match %s locked at %s", ErrBettingClosed, current.ID, current.LockTime.Format(time.RFC3339))
		}

		existing, exists, err := repos.MatchBets.GetByMembershipAndMatch(ctx, member.ID, m.ID)
		if err != nil {
			return fmt.Errorf("get match bet: %w", err)
		}

		next := existing
		if !exists {
			newID, err := s.ids.NewID()
			if err != nil {
				return fmt.Errorf("generate bet id: %w", err)
			}
			next = bet.MatchBet{
				ID:           newID,
				MembershipID: member.ID,
				MatchID:      m.ID,
			}
		}
		next.HomeScore = input.HomeScore
		next.AwayScore = input.AwayScore
		next.ScorerID = input.ScorerID
		next.NoScorer = input.NoScorer

		saved, created, err = repos.MatchBets.Upsert(ctx, next)
		if err != nil {
			return fmt.Errorf("upsert match bet: %w", err)
		}

		return nil
	})
	if err != nil {
		return bet.MatchBet{}, false, err
	}

	s.afterSubmit(ctx, member, m.LeagueID, m.ID, view.KindMatches, created, started, map[string]any{
		"match_id":   m.ID,
		"home_score": input.HomeScore,
		"away_score": input.AwayScore,
	})

	return saved, created, nil
}

func (s *BetService) validateMatchBetPayload(ctx context.Context, m event.Match, input SubmitMatchBetInput) error {
	if input.HomeScore < 0 || input.AwayScore < 0 {
		return fmt.Errorf("%w: scores must be non-negative", ErrInvalidInput)
	}
	if input.NoScorer && input.ScorerID != nil {
		return fmt.Errorf("%w: no_scorer and scorer_id are mutually exclusive", ErrInvalidInput)
	}
	if input.NoScorer && input.HomeScore+input.AwayScore > 0 {
		return fmt.Errorf("%w: no_scorer contradicts a prediction with goals", ErrInvalidInput)
	}

	if input.NoScorer {
		lg, ok, err := s.repos.Leagues.GetByID(ctx, m.LeagueID)
		if err != nil {
			return fmt.Errorf("get league: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: league %s", ErrNotFound, m.LeagueID)
		}
		if !lg.Sport.AllowsScorelessMatch() {
			return fmt.Errorf("%w: %s matches always have a scorer", ErrInvalidInput, lg.Sport)
		}
	}

	if input.ScorerID != nil {
		scorerID := strings.TrimSpace(*input.ScorerID)
		if scorerID == "" {
			return fmt.Errorf("%w: scorer_id must not be blank", ErrInvalidInput)
		}
		p, ok, err := s.repos.Players.GetByID(ctx, scorerID)
		if err != nil {
			return fmt.Errorf("get player: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: unknown player %s", ErrInvalidInput, scorerID)
		}
		if !p.PlaysFor(m.HomeTeamID, m.AwayTeamID) {
			return fmt.Errorf("%w: player %s plays for neither competing team", ErrInvalidInput, scorerID)
		}
	}

	return nil
}

func (s *BetService) SubmitSeriesBet(ctx context.Context, input SubmitSeriesBetInput) (bet.SeriesBet, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "BetService.SubmitSeriesBet")
	defer span.End()
	started := s.now()

	input.UserID = strings.TrimSpace(input.UserID)
	input.SeriesID = strings.TrimSpace(input.SeriesID)
	if input.UserID == "" || input.SeriesID == "" {
		return bet.SeriesBet{}, false, fmt.Errorf("%w: user_id and series_id are required", ErrInvalidInput)
	}

	sr, ok, err := s.repos.Series.GetByID(ctx, input.SeriesID)
	if err != nil {
		return bet.SeriesBet{}, false, fmt.Errorf("get series: %w", err)
	}
	if !ok || sr.DeletedAt != nil {
		return bet.SeriesBet{}, false, fmt.Errorf("%w: series %s", ErrNotFound, input.SeriesID)
	}

	member, err := s.activeMembership(ctx, input.UserID, sr.LeagueID)
	if err != nil {
		return bet.SeriesBet{}, false, err
	}

	if sr.Locked(s.now()) {
		return bet.SeriesBet{}, false, fmt.Errorf("%w: series %s locked at %s", ErrBettingClosed, sr.ID, sr.LockTime.Format(time.RFC3339))
	}

	if err := validateSeriesWins(input.HomeWins, input.AwayWins, sr.BestOf); err != nil {
		return bet.SeriesBet{}, false, err
	}

	var (
		saved   bet.SeriesBet
		created bool
	)
	err = s.uow.Serializable(ctx, func(ctx context.Context, repos Repositories) error {
		current, ok, err := repos.Series.GetByID(ctx, sr.ID)
		if err != nil {
			return fmt.Errorf("reload series: %w", err)
		}
		if !ok || current.DeletedAt != nil {
			return fmt.Errorf("%w: series %s", ErrNotFound, sr.ID)
		}
		if current.Locked(s.now()) {
			return fmt.Errorf("%w: series %s locked at %s", ErrBettingClosed, current.ID, current.LockTime.Format(time.RFC3339))
		}

		existing, exists, err := repos.SeriesBets.GetByMembershipAndSeries(ctx, member.ID, sr.ID)
		if err != nil {
			return fmt.Errorf("get series bet: %w", err)
		}

		next := existing
		if !exists {
			newID, err := s.ids.NewID()
			if err != nil {
				return fmt.Errorf("generate bet id: %w", err)
			}
			next = bet.SeriesBet{
				ID:           newID,
				MembershipID: member.ID,
				SeriesID:     sr.ID,
			}
		}
		next.HomeWins = input.HomeWins
		next.AwayWins = input.AwayWins

		saved, created, err = repos.SeriesBets.Upsert(ctx, next)
		if err != nil {
			return fmt.Errorf("upsert series bet: %w", err)
		}

		return nil
	})
	if err != nil {
		return bet.SeriesBet{}, false, err
	}

	s.afterSubmit(ctx, member, sr.LeagueID, sr.ID, view.KindSeries, created, started, map[string]any{
		"series_id": sr.ID,
		"home_wins": input.HomeWins,
		"away_wins": input.AwayWins,
	})

	return saved, created, nil
}

func validateSeriesWins(homeWins, awayWins, bestOf int) error {
	if homeWins < 0 || awayWins < 0 {
		return fmt.Errorf("%w: series wins must be non-negative", ErrInvalidInput)
	}
	needed := bestOf/2 + 1
	winner, loser := homeWins, awayWins
	if awayWins > homeWins {
		winner, loser = awayWins, homeWins
	}
	if winner != needed || loser >= needed {
		return fmt.Errorf("%w: best-of-%d series ends %d to at most %d", ErrInvalidInput, bestOf, needed, needed-1)
	}

	return nil
}

func (s *BetService) SubmitSpecialBet(ctx context.Context, input SubmitSpecialBetInput) (bet.SpecialBet, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "BetService.SubmitSpecialBet")
	defer span.End()
	started := s.now()

	input.UserID = strings.TrimSpace(input.UserID)
	input.SpecialID = strings.TrimSpace(input.SpecialID)
	if input.UserID == "" || input.SpecialID == "" {
		return bet.SpecialBet{}, false, fmt.Errorf("%w: user_id and special_id are required", ErrInvalidInput)
	}

	sp, ok, err := s.repos.Specials.GetByID(ctx, input.SpecialID)
	if err != nil {
		return bet.SpecialBet{}, false, fmt.Errorf("get special: %w", err)
	}
	if !ok || sp.DeletedAt != nil {
		return bet.SpecialBet{}, false, fmt.Errorf("%w: special %s", ErrNotFound, input.SpecialID)
	}

	member, err := s.activeMembership(ctx, input.UserID, sp.LeagueID)
	if err != nil {
		return bet.SpecialBet{}, false, err
	}

	if sp.Locked(s.now()) {
		return bet.SpecialBet{}, false, fmt.Errorf("%w: special %s locked at %s", ErrBettingClosed, sp.ID, sp.LockTime.Format(time.RFC3339))
	}

	if err := s.validateSpecialBetPayload(ctx, sp, input); err != nil {
		return bet.SpecialBet{}, false, err
	}

	var (
		saved   bet.SpecialBet
		created bool
	)
	err = s.uow.Serializable(ctx, func(ctx context.Context, repos Repositories) error {
		current, ok, err := repos.Specials.GetByID(ctx, sp.ID)
		if err != nil {
			return fmt.Errorf("reload special: %w", err)
		}
		if !ok || current.DeletedAt != nil {
			return fmt.Errorf("%w: special %s", ErrNotFound, sp.ID)
		}
		if current.Locked(s.now()) {
			return fmt.Errorf("%w: special %s locked at %s", ErrBettingClosed, current.ID, current.LockTime.Format(time.RFC3339))
		}

		existing, exists, err := repos.SpecialBets.GetByMembershipAndSpecial(ctx, member.ID, sp.ID)
		if err != nil {
			return fmt.Errorf("get special bet: %w", err)
		}

		next := existing
		if !exists {
			newID, err := s.ids.NewID()
			if err != nil {
				return fmt.Errorf("generate bet id: %w", err)
			}
			next = bet.SpecialBet{
				ID:           newID,
				MembershipID: member.ID,
				SpecialID:    sp.ID,
			}
		}
		next.TeamID = input.TeamID
		next.PlayerID = input.PlayerID
		next.Value = input.Value

		saved, created, err = repos.SpecialBets.Upsert(ctx, next)
		if err != nil {
			return fmt.Errorf("upsert special bet: %w", err)
		}

		return nil
	})
	if err != nil {
		return bet.SpecialBet{}, false, err
	}

	s.afterSubmit(ctx, member, sp.LeagueID, sp.ID, view.KindSpecials, created, started, map[string]any{
		"special_id": sp.ID,
		"kind":       string(sp.Kind),
	})

	return saved, created, nil
}

func (s *BetService) validateSpecialBetPayload(ctx context.Context, sp event.Special, input SubmitSpecialBetInput) error {
	switch sp.Kind {
	case event.SpecialTeam:
		if input.TeamID == nil || strings.TrimSpace(*input.TeamID) == "" || input.PlayerID != nil || input.Value != nil {
			return fmt.Errorf("%w: special %s takes exactly a team_id", ErrInvalidInput, sp.ID)
		}
	case event.SpecialPlayer:
		if input.PlayerID == nil || strings.TrimSpace(*input.PlayerID) == "" || input.TeamID != nil || input.Value != nil {
			return fmt.Errorf("%w: special %s takes exactly a player_id", ErrInvalidInput, sp.ID)
		}
		return s.validatePlayerPick(ctx, sp, strings.TrimSpace(*input.PlayerID))
	case event.SpecialValue:
		if input.Value == nil || input.TeamID != nil || input.PlayerID != nil {
			return fmt.Errorf("%w: special %s takes exactly a value", ErrInvalidInput, sp.ID)
		}
	default:
		return fmt.Errorf("special %s has unknown kind %q", sp.ID, sp.Kind)
	}

	return nil
}

// validatePlayerPick applies the position restriction from any active
// exact-player rule so an illegal pick bounces at submission instead of
// scoring zero months later.
func (s *BetService) validatePlayerPick(ctx context.Context, sp event.Special, playerID string) error {
	p, ok, err := s.repos.Players.GetByID(ctx, playerID)
	if err != nil {
		return fmt.Errorf("get player: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: unknown player %s", ErrInvalidInput, playerID)
	}

	evaluators, err := s.repos.Evaluators.ListActive(ctx, sp.LeagueID, event.KindSpecial)
	if err != nil {
		return fmt.Errorf("list evaluators: %w", err)
	}
	for _, e := range evaluators {
		cfg, ok := e.Config.(*scoring.ExactPlayerConfig)
		if !ok || cfg == nil {
			continue
		}
		if !cfg.PositionAllowed(p.Position) {
			return fmt.Errorf("%w: position %q is not eligible for %q", ErrInvalidInput, p.Position, sp.Name)
		}
	}

	return nil
}

func (s *BetService) SubmitQuestionBet(ctx context.Context, input SubmitQuestionBetInput) (bet.QuestionBet, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "BetService.SubmitQuestionBet")
	defer span.End()
	started := s.now()

	input.UserID = strings.TrimSpace(input.UserID)
	input.QuestionID = strings.TrimSpace(input.QuestionID)
	if input.UserID == "" || input.QuestionID == "" {
		return bet.QuestionBet{}, false, fmt.Errorf("%w: user_id and question_id are required", ErrInvalidInput)
	}

	q, ok, err := s.repos.Questions.GetByID(ctx, input.QuestionID)
	if err != nil {
		return bet.QuestionBet{}, false, fmt.Errorf("get question: %w", err)
	}
	if !ok || q.DeletedAt != nil {
		return bet.QuestionBet{}, false, fmt.Errorf("%w: question %s", ErrNotFound, input.QuestionID)
	}

	member, err := s.activeMembership(ctx, input.UserID, q.LeagueID)
	if err != nil {
		return bet.QuestionBet{}, false, err
	}

	if q.Locked(s.now()) {
		return bet.QuestionBet{}, false, fmt.Errorf("%w: question %s locked at %s", ErrBettingClosed, q.ID, q.LockTime.Format(time.RFC3339))
	}

	var (
		saved   bet.QuestionBet
		created bool
	)
	err = s.uow.Serializable(ctx, func(ctx context.Context, repos Repositories) error {
		current, ok, err := repos.Questions.GetByID(ctx, q.ID)
		if err != nil {
			return fmt.Errorf("reload question: %w", err)
		}
		if !ok || current.DeletedAt != nil {
			return fmt.Errorf("%w: question %s", ErrNotFound, q.ID)
		}
		if current.Locked(s.now()) {
			return fmt.Errorf("%w: question %s locked at %s", ErrBettingClosed, current.ID, current.LockTime.Format(time.RFC3339))
		}

		existing, exists, err := repos.QuestionBets.GetByMembershipAndQuestion(ctx, member.ID, q.ID)
		if err != nil {
			return fmt.Errorf("get question bet: %w", err)
		}

		next := existing
		if !exists {
			newID, err := s.ids.NewID()
			if err != nil {
				return fmt.Errorf("generate bet id: %w", err)
			}
			next = bet.QuestionBet{
				ID:           newID,
				MembershipID: member.ID,
				QuestionID:   q.ID,
			}
		}
		next.Answer = input.Answer

		saved, created, err = repos.QuestionBets.Upsert(ctx, next)
		if err != nil {
			return fmt.Errorf("upsert question bet: %w", err)
		}

		return nil
	})
	if err != nil {
		return bet.QuestionBet{}, false, err
	}

	s.afterSubmit(ctx, member, q.LeagueID, q.ID, view.KindQuestions, created, started, map[string]any{
		"question_id": q.ID,
		"answer":      input.Answer,
	})

	return saved, created, nil
}

// ListMemberBets returns everything the caller has submitted in one league.
func (s *BetService) ListMemberBets(ctx context.Context, userID, leagueID string) (MemberBets, error) {
	ctx, span := startUsecaseSpan(ctx, "BetService.ListMemberBets")
	defer span.End()

	userID = strings.TrimSpace(userID)
	leagueID = strings.TrimSpace(leagueID)
	if userID == "" || leagueID == "" {
		return MemberBets{}, fmt.Errorf("%w: user_id and league_id are required", ErrInvalidInput)
	}

	member, err := s.activeMembership(ctx, userID, leagueID)
	if err != nil {
		return MemberBets{}, err
	}

	out := MemberBets{MembershipID: member.ID}
	if out.MatchBets, err = s.repos.MatchBets.ListByMembership(ctx, member.ID); err != nil {
		return MemberBets{}, fmt.Errorf("list match bets: %w", err)
	}
	if out.SeriesBets, err = s.repos.SeriesBets.ListByMembership(ctx, member.ID); err != nil {
		return MemberBets{}, fmt.Errorf("list series bets: %w", err)
	}
	if out.SpecialBets, err = s.repos.SpecialBets.ListByMembership(ctx, member.ID); err != nil {
		return MemberBets{}, fmt.Errorf("list special bets: %w", err)
	}
	if out.QuestionBets, err = s.repos.QuestionBets.ListByMembership(ctx, member.ID); err != nil {
		return MemberBets{}, fmt.Errorf("list question bets: %w", err)
	}

	return out, nil
}

func (s *BetService) activeMembership(ctx context.Context, userID, leagueID string) (league.Membership, error) {
	member, ok, err := s.repos.Memberships.GetByUserAndLeague(ctx, userID, leagueID)
	if err != nil {
		return league.Membership{}, fmt.Errorf("get membership: %w", err)
	}
	if !ok {
		return league.Membership{}, fmt.Errorf("%w: not a member of league %s", ErrForbidden, leagueID)
	}
	if !member.CanBet() {
		return league.Membership{}, fmt.Errorf("%w: membership is inactive", ErrForbidden)
	}

	return member, nil
}

// afterSubmit emits the audit entry and the staleness signal for a committed
// submission. Neither may fail the submission.
func (s *BetService) afterSubmit(
	ctx context.Context,
	member league.Membership,
	leagueID, entityID string,
	kind view.Kind,
	created bool,
	started time.Time,
	metadata map[string]any,
) {
	action := audit.ActionBetUpdated
	if created {
		action = audit.ActionBetCreated
	}
	if s.auditor != nil {
		entry := audit.Entry{
			ActorID:  member.UserID,
			LeagueID: leagueID,
			EntityID: entityID,
			Action:   action,
			Metadata: metadata,
			Duration: s.now().Sub(started),
		}
		if err := s.auditor.Record(ctx, entry); err != nil {
			s.logger.WarnContext(ctx, "audit record failed", "action", string(action), "entity_id", entityID, "error", err)
		}
	}
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, view.Change{LeagueID: leagueID, Kind: kind})
	}
}
