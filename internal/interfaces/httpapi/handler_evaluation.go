package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jvasek/tipliga/internal/usecase"
)

type evaluateRequest struct {
	// MembershipID narrows the run to one member without flipping the
	// event's evaluated flag. Empty means a full run.
	MembershipID string `json:"membership_id" validate:"omitempty,min=1"`
}

type evaluateLeagueJobRequest struct {
	LeagueID    string `json:"league_id" validate:"required"`
	ActorUserID string `json:"actor_user_id" validate:"required"`
}

type awardDTO struct {
	EvaluatorID string `json:"evaluator_id"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Points      int    `json:"points"`
}

type memberScoreDTO struct {
	MembershipID string     `json:"membership_id"`
	BetID        string     `json:"bet_id"`
	TotalPoints  int        `json:"total_points"`
	Awards       []awardDTO `json:"awards"`
}

type evaluationReportDTO struct {
	EventID             string           `json:"event_id"`
	EntityKind          string           `json:"entity_kind"`
	Members             []memberScoreDTO `json:"members"`
	TotalUsersEvaluated int              `json:"total_users_evaluated"`
	TotalPoints         int              `json:"total_points"`
	ElapsedMS           int64            `json:"elapsed_ms"`
}

type leagueEvaluationOutcomeDTO struct {
	EventID    string               `json:"event_id"`
	EntityKind string               `json:"entity_kind"`
	Report     *evaluationReportDTO `json:"report,omitempty"`
	Error      string               `json:"error,omitempty"`
}

type leagueEvaluationReportDTO struct {
	LeagueID  string                       `json:"league_id"`
	Outcomes  []leagueEvaluationOutcomeDTO `json:"outcomes"`
	Evaluated int                          `json:"evaluated"`
	Failed    int                          `json:"failed"`
	ElapsedMS int64                        `json:"elapsed_ms"`
}

func evaluationReportToDTO(report usecase.EvaluationReport) evaluationReportDTO {
	members := make([]memberScoreDTO, 0, len(report.Members))
	for _, m := range report.Members {
		awards := make([]awardDTO, 0, len(m.Awards))
		for _, a := range m.Awards {
			awards = append(awards, awardDTO{
				EvaluatorID: a.EvaluatorID,
				Name:        a.Name,
				Kind:        string(a.Kind),
				Points:      a.Points,
			})
		}
		members = append(members, memberScoreDTO{
			MembershipID: m.MembershipID,
			BetID:        m.BetID,
			TotalPoints:  m.TotalPoints,
			Awards:       awards,
		})
	}

	return evaluationReportDTO{
		EventID:             report.EventID,
		EntityKind:          string(report.EntityKind),
		Members:             members,
		TotalUsersEvaluated: report.TotalUsersEvaluated,
		TotalPoints:         report.TotalPoints,
		ElapsedMS:           report.Elapsed.Milliseconds(),
	}
}

func leagueEvaluationReportToDTO(report usecase.LeagueEvaluationReport) leagueEvaluationReportDTO {
	outcomes := make([]leagueEvaluationOutcomeDTO, 0, len(report.Outcomes))
	for _, outcome := range report.Outcomes {
		dto := leagueEvaluationOutcomeDTO{
			EventID:    outcome.EventID,
			EntityKind: string(outcome.EntityKind),
		}
		if outcome.Err != nil {
			dto.Error = outcome.Err.Error()
		} else {
			reportDTO := evaluationReportToDTO(outcome.Report)
			dto.Report = &reportDTO
		}
		outcomes = append(outcomes, dto)
	}

	return leagueEvaluationReportDTO{
		LeagueID:  report.LeagueID,
		Outcomes:  outcomes,
		Evaluated: report.Evaluated,
		Failed:    report.Failed,
		ElapsedMS: report.Elapsed.Milliseconds(),
	}
}

func (h *Handler) EvaluateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EvaluateMatch")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req evaluateRequest
	if err := decodeOptionalJSON(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	report, err := h.evaluationService.EvaluateMatch(ctx, usecase.EvaluateInput{
		ActorUserID:  principal.UserID,
		EventID:      matchID,
		MembershipID: strings.TrimSpace(req.MembershipID),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "evaluate match failed", "user_id", principal.UserID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, evaluationReportToDTO(report))
}

func (h *Handler) EvaluateSeries(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EvaluateSeries")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req evaluateRequest
	if err := decodeOptionalJSON(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	seriesID := strings.TrimSpace(r.PathValue("seriesID"))
	report, err := h.evaluationService.EvaluateSeries(ctx, usecase.EvaluateInput{
		ActorUserID:  principal.UserID,
		EventID:      seriesID,
		MembershipID: strings.TrimSpace(req.MembershipID),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "evaluate series failed", "user_id", principal.UserID, "series_id", seriesID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, evaluationReportToDTO(report))
}

func (h *Handler) EvaluateSpecial(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EvaluateSpecial")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req evaluateRequest
	if err := decodeOptionalJSON(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	specialID := strings.TrimSpace(r.PathValue("specialID"))
	report, err := h.evaluationService.EvaluateSpecial(ctx, usecase.EvaluateInput{
		ActorUserID:  principal.UserID,
		EventID:      specialID,
		MembershipID: strings.TrimSpace(req.MembershipID),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "evaluate special failed", "user_id", principal.UserID, "special_id", specialID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, evaluationReportToDTO(report))
}

func (h *Handler) EvaluateQuestion(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EvaluateQuestion")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req evaluateRequest
	if err := decodeOptionalJSON(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	questionID := strings.TrimSpace(r.PathValue("questionID"))
	report, err := h.evaluationService.EvaluateQuestion(ctx, usecase.EvaluateInput{
		ActorUserID:  principal.UserID,
		EventID:      questionID,
		MembershipID: strings.TrimSpace(req.MembershipID),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "evaluate question failed", "user_id", principal.UserID, "question_id", questionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, evaluationReportToDTO(report))
}

func (h *Handler) EvaluateLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EvaluateLeague")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	report, err := h.evaluationService.EvaluateLeague(ctx, principal.UserID, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "evaluate league failed", "user_id", principal.UserID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueEvaluationReportToDTO(report))
}

// RunEvaluateLeagueJob is the scheduler entrypoint for bulk evaluation. The
// acting admin comes from the payload because there is no bearer token on
// this path, only the internal job token.
func (h *Handler) RunEvaluateLeagueJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunEvaluateLeagueJob")
	defer span.End()

	var req evaluateLeagueJobRequest
	if err := decodeStrictJSON(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.evaluationService.EvaluateLeague(ctx, req.ActorUserID, req.LeagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "evaluate league job failed", "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueEvaluationReportToDTO(report))
}
