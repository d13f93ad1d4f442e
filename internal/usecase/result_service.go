package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jvasek/tipliga/internal/domain/audit"
	"github.com/jvasek/tipliga/internal/domain/event"
	"github.com/jvasek/tipliga/internal/domain/view"
	"github.com/jvasek/tipliga/internal/platform/logging"
)

type RecordMatchResultInput struct {
	ActorUserID string
	MatchID     string
	Result      event.MatchResult
}

type RecordSeriesResultInput struct {
	ActorUserID string
	SeriesID    string
	Result      event.SeriesResult
}

type RecordSpecialResultInput struct {
	ActorUserID string
	SpecialID   string
	Result      event.SpecialResult
}

type RecordQuestionResultInput struct {
	ActorUserID string
	QuestionID  string
	Answer      bool
}

// ResultService is the administrative outcome-recording path. Recording a
// result always clears the evaluated flag, so correcting an already
// evaluated event re-opens it and forces a fresh evaluation before its
// totals are trusted again.
type ResultService struct {
	repos       Repositories
	uow         UnitOfWork
	auditor     audit.Recorder
	invalidator view.Invalidator
	logger      *logging.Logger
	now         func() time.Time
}

func NewResultService(
	repos Repositories,
	uow UnitOfWork,
	auditor audit.Recorder,
	invalidator view.Invalidator,
	logger *logging.Logger,
) *ResultService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ResultService{
		repos:       repos,
		uow:         uow,
		auditor:     auditor,
		invalidator: invalidator,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *ResultService) RecordMatchResult(ctx context.Context, input RecordMatchResultInput) error {
	ctx, span := startUsecaseSpan(ctx, "ResultService.RecordMatchResult")
	defer span.End()
	started := s.now()

	input.ActorUserID = strings.TrimSpace(input.ActorUserID)
	input.MatchID = strings.TrimSpace(input.MatchID)
	if input.ActorUserID == "" || input.MatchID == "" {
		return fmt.Errorf("%w: actor_user_id and match_id are required", ErrInvalidInput)
	}

	m, ok, err := s.repos.Matches.GetByID(ctx, input.MatchID)
	if err != nil {
		return fmt.Errorf("get match: %w", err)
	}
	if !ok || m.DeletedAt != nil {
		return fmt.Errorf("%w: match %s", ErrNotFound, input.MatchID)
	}
	if err := s.requireAdmin(ctx, input.ActorUserID, m.LeagueID); err != nil {
		return err
	}
	if !m.Locked(s.now()) {
		return fmt.Errorf("%w: match %s is still open for betting", ErrPreconditionFailed, m.ID)
	}
	if err := s.validateMatchResult(ctx, m, input.Result); err != nil {
		return err
	}

	err = s.uow.Serializable(ctx, func(ctx context.Context, repos Repositories) error {
		current, ok, err := repos.Matches.GetByID(ctx, m.ID)
		if err != nil {
			return fmt.Errorf("reload match: %w", err)
		}
		if !ok || current.DeletedAt != nil {
			return fmt.Errorf("%w: match %s", ErrNotFound, m.ID)
		}
		if err := repos.Matches.UpdateResult(ctx, current.ID, input.Result); err != nil {
			return fmt.Errorf("update match result: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.afterRecord(ctx, input.ActorUserID, m.LeagueID, m.ID, view.KindMatches, started, map[string]any{
		"home_score": input.Result.HomeScore,
		"away_score": input.Result.AwayScore,
	})
	return nil
}

func (s *ResultService) validateMatchResult(ctx context.Context, m event.Match, res event.MatchResult) error {
	if res.HomeScore < 0 || res.AwayScore < 0 {
		return fmt.Errorf("%w: scores must be non-negative", ErrInvalidInput)
	}

	if res.Scoreless() {
		lg, ok, err := s.repos.Leagues.GetByID(ctx, m.LeagueID)
		if err != nil {
			return fmt.Errorf("get league: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: league %s", ErrNotFound, m.LeagueID)
		}
		if !lg.Sport.AllowsScorelessMatch() {
			return fmt.Errorf("%w: a %s match cannot end scoreless", ErrInvalidInput, lg.Sport)
		}
		return nil
	}

	if res.HomeScore+res.AwayScore > 0 && len(res.ScorerIDs) == 0 {
		return fmt.Errorf("%w: scorer list is required when goals were scored", ErrInvalidInput)
	}
	for _, scorerID := range res.ScorerIDs {
		p, ok, err := s.repos.Players.GetByID(ctx, scorerID)
		if err != nil {
			return fmt.Errorf("get player: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: unknown scorer %s", ErrInvalidInput, scorerID)
		}
		if !p.PlaysFor(m.HomeTeamID, m.AwayTeamID) {
			return fmt.Errorf("%w: scorer %s plays for neither competing team", ErrInvalidInput, scorerID)
		}
	}

	return nil
}

func (s *ResultService) RecordSeriesResult(ctx context.Context, input RecordSeriesResultInput) error {
	ctx, span := startUsecaseSpan(ctx, "ResultService.RecordSeriesResult")
	defer span.End()
	started := s.now()

	input.ActorUserID = strings.TrimSpace(input.ActorUserID)
	input.SeriesID = strings.TrimSpace(input.SeriesID)
	if input.ActorUserID == "" || input.SeriesID == "" {
		return fmt.Errorf("%w: actor_user_id and series_id are required", ErrInvalidInput)
	}

	sr, ok, err := s.repos.Series.GetByID(ctx, input.SeriesID)
	if err != nil {
		return fmt.Errorf("get series: %w", err)
	}
	if !ok || sr.DeletedAt != nil {
		return fmt.Errorf("%w: series %s", ErrNotFound, input.SeriesID)
	}
	if err := s.requireAdmin(ctx, input.ActorUserID, sr.LeagueID); err != nil {
		return err
	}
	if !sr.Locked(s.now()) {
		return fmt.Errorf("%w: series %s is still open for betting", ErrPreconditionFailed, sr.ID)
	}
	if err := validateSeriesWins(input.Result.HomeWins, input.Result.AwayWins, sr.BestOf); err != nil {
		return err
	}

	err = s.uow.Serializable(ctx, func(ctx context.Context, repos Repositories) error {
		current, ok, err := repos.Series.GetByID(ctx, sr.ID)
		if err != nil {
			return fmt.Errorf("reload series: %w", err)
		}
		if !ok || current.DeletedAt != nil {
			return fmt.Errorf("%w: series %s", ErrNotFound, sr.ID)
		}
		if err := repos.Series.UpdateResult(ctx, current.ID, input.Result); err != nil {
			return fmt.Errorf("update series result: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.afterRecord(ctx, input.ActorUserID, sr.LeagueID, sr.ID, view.KindSeries, started, map[string]any{
		"home_wins": input.Result.HomeWins,
		"away_wins": input.Result.AwayWins,
	})
	return nil
}

func (s *ResultService) RecordSpecialResult(ctx context.Context, input RecordSpecialResultInput) error {
	ctx, span := startUsecaseSpan(ctx, "ResultService.RecordSpecialResult")
	defer span.End()
	started := s.now()

	input.ActorUserID = strings.TrimSpace(input.ActorUserID)
	input.SpecialID = strings.TrimSpace(input.SpecialID)
	if input.ActorUserID == "" || input.SpecialID == "" {
		return fmt.Errorf("%w: actor_user_id and special_id are required", ErrInvalidInput)
	}

	sp, ok, err := s.repos.Specials.GetByID(ctx, input.SpecialID)
	if err != nil {
		return fmt.Errorf("get special: %w", err)
	}
	if !ok || sp.DeletedAt != nil {
		return fmt.Errorf("%w: special %s", ErrNotFound, input.SpecialID)
	}
	if err := s.requireAdmin(ctx, input.ActorUserID, sp.LeagueID); err != nil {
		return err
	}
	if !sp.Locked(s.now()) {
		return fmt.Errorf("%w: special %s is still open for betting", ErrPreconditionFailed, sp.ID)
	}
	if err := validateSpecialResult(sp, input.Result); err != nil {
		return err
	}

	err = s.uow.Serializable(ctx, func(ctx context.Context, repos Repositories) error {
		current, ok, err := repos.Specials.GetByID(ctx, sp.ID)
		if err != nil {
			return fmt.Errorf("reload special: %w", err)
		}
		if !ok || current.DeletedAt != nil {
			return fmt.Errorf("%w: special %s", ErrNotFound, sp.ID)
		}
		if err := repos.Specials.UpdateResult(ctx, current.ID, input.Result); err != nil {
			return fmt.Errorf("update special result: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.afterRecord(ctx, input.ActorUserID, sp.LeagueID, sp.ID, view.KindSpecials, started, map[string]any{
		"kind": string(sp.Kind),
	})
	return nil
}

func validateSpecialResult(sp event.Special, res event.SpecialResult) error {
	switch sp.Kind {
	case event.SpecialTeam:
		if res.TeamID == nil && len(res.AdvancedTeamIDs) == 0 {
			return fmt.Errorf("%w: special %s needs a team outcome", ErrInvalidInput, sp.ID)
		}
		if res.PlayerID != nil || res.Value != nil {
			return fmt.Errorf("%w: special %s takes only team outcomes", ErrInvalidInput, sp.ID)
		}
	case event.SpecialPlayer:
		if res.PlayerID == nil || res.TeamID != nil || res.Value != nil || len(res.AdvancedTeamIDs) != 0 {
			return fmt.Errorf("%w: special %s takes exactly a player outcome", ErrInvalidInput, sp.ID)
		}
	case event.SpecialValue:
		if res.Value == nil || res.TeamID != nil || res.PlayerID != nil || len(res.AdvancedTeamIDs) != 0 {
			return fmt.Errorf("%w: special %s takes exactly a numeric outcome", ErrInvalidInput, sp.ID)
		}
	default:
		return fmt.Errorf("special %s has unknown kind %q", sp.ID, sp.Kind)
	}
	return nil
}

func (s *ResultService) RecordQuestionResult(ctx context.Context, input RecordQuestionResultInput) error {
	ctx, span := startUsecaseSpan(ctx, "ResultService.RecordQuestionResult")
	defer span.End()
	started := s.now()

	input.ActorUserID = strings.TrimSpace(input.ActorUserID)
	input.QuestionID = strings.TrimSpace(input.QuestionID)
	if input.ActorUserID == "" || input.QuestionID == "" {
		return fmt.Errorf("%w: actor_user_id and question_id are required", ErrInvalidInput)
	}

	q, ok, err := s.repos.Questions.GetByID(ctx, input.QuestionID)
	if err != nil {
		return fmt.Errorf("get question: %w", err)
	}
	if !ok || q.DeletedAt != nil {
		return fmt.Errorf("%w: question %s", ErrNotFound, input.QuestionID)
	}
	if err := s.requireAdmin(ctx, input.ActorUserID, q.LeagueID); err != nil {
		return err
	}
	if !q.Locked(s.now()) {
		return fmt.Errorf("%w: question %s is still open for betting", ErrPreconditionFailed, q.ID)
	}

	err = s.uow.Serializable(ctx, func(ctx context.Context, repos Repositories) error {
		current, ok, err := repos.Questions.GetByID(ctx, q.ID)
		if err != nil {
			return fmt.Errorf("reload question: %w", err)
		}
		if !ok || current.DeletedAt != nil {
			return fmt.Errorf("%w: question %s", ErrNotFound, q.ID)
		}
		if err := repos.Questions.UpdateResult(ctx, current.ID, input.Answer); err != nil {
			return fmt.Errorf("update question result: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.afterRecord(ctx, input.ActorUserID, q.LeagueID, q.ID, view.KindQuestions, started, map[string]any{
		"answer": input.Answer,
	})
	return nil
}

func (s *ResultService) requireAdmin(ctx context.Context, userID, leagueID string) error {
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

func (s *ResultService) afterRecord(
	ctx context.Context,
	actorUserID, leagueID, entityID string,
	kind view.Kind,
	started time.Time,
	metadata map[string]any,
) {
	if s.auditor != nil {
		entry := audit.Entry{
			ActorID:  actorUserID,
			LeagueID: leagueID,
			EntityID: entityID,
			Action:   audit.ActionResultRecorded,
			Metadata: metadata,
			Duration: s.now().Sub(started),
		}
		if err := s.auditor.Record(ctx, entry); err != nil {
			s.logger.WarnContext(ctx, "audit record failed", "action", string(audit.ActionResultRecorded), "entity_id", entityID, "error", err)
		}
	}
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, view.Change{LeagueID: leagueID, Kind: kind})
	}
}
