package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jvasek/tipliga/internal/domain/event"
	"github.com/jvasek/tipliga/internal/usecase"
)

type matchResultRequest struct {
	HomeScore *int     `json:"home_score" validate:"required,min=0"`
	AwayScore *int     `json:"away_score" validate:"required,min=0"`
	Overtime  bool     `json:"overtime"`
	Shootout  bool     `json:"shootout"`
	ScorerIDs []string `json:"scorer_ids" validate:"omitempty,dive,required"`
}

type seriesResultRequest struct {
	HomeWins *int `json:"home_wins" validate:"required,min=0"`
	AwayWins *int `json:"away_wins" validate:"required,min=0"`
}

type specialResultRequest struct {
	TeamID          *string  `json:"team_id" validate:"omitempty,min=1"`
	PlayerID        *string  `json:"player_id" validate:"omitempty,min=1"`
	Value           *int     `json:"value"`
	AdvancedTeamIDs []string `json:"advanced_team_ids" validate:"omitempty,dive,required"`
}

type questionResultRequest struct {
	Answer *bool `json:"answer" validate:"required"`
}

func (h *Handler) RecordMatchResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordMatchResult")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req matchResultRequest
	if err := decodeStrictJSON(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	err := h.resultService.RecordMatchResult(ctx, usecase.RecordMatchResultInput{
		ActorUserID: principal.UserID,
		MatchID:     matchID,
		Result: event.MatchResult{
			HomeScore: *req.HomeScore,
			AwayScore: *req.AwayScore,
			Overtime:  req.Overtime,
			Shootout:  req.Shootout,
			ScorerIDs: req.ScorerIDs,
		},
	})
	if err != nil {
		h.logger.WarnContext(ctx, "record match result failed", "user_id", principal.UserID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"match_id": matchID, "status": "resulted"})
}

func (h *Handler) RecordSeriesResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordSeriesResult")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req seriesResultRequest
	if err := decodeStrictJSON(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	seriesID := strings.TrimSpace(r.PathValue("seriesID"))
	err := h.resultService.RecordSeriesResult(ctx, usecase.RecordSeriesResultInput{
		ActorUserID: principal.UserID,
		SeriesID:    seriesID,
		Result: event.SeriesResult{
			HomeWins: *req.HomeWins,
			AwayWins: *req.AwayWins,
		},
	})
	if err != nil {
		h.logger.WarnContext(ctx, "record series result failed", "user_id", principal.UserID, "series_id", seriesID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"series_id": seriesID, "status": "resulted"})
}

func (h *Handler) RecordSpecialResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordSpecialResult")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req specialResultRequest
	if err := decodeStrictJSON(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	specialID := strings.TrimSpace(r.PathValue("specialID"))
	err := h.resultService.RecordSpecialResult(ctx, usecase.RecordSpecialResultInput{
		ActorUserID: principal.UserID,
		SpecialID:   specialID,
		Result: event.SpecialResult{
			TeamID:          req.TeamID,
			PlayerID:        req.PlayerID,
			Value:           req.Value,
			AdvancedTeamIDs: req.AdvancedTeamIDs,
		},
	})
	if err != nil {
		h.logger.WarnContext(ctx, "record special result failed", "user_id", principal.UserID, "special_id", specialID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"special_id": specialID, "status": "resulted"})
}

func (h *Handler) RecordQuestionResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordQuestionResult")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req questionResultRequest
	if err := decodeStrictJSON(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	questionID := strings.TrimSpace(r.PathValue("questionID"))
	err := h.resultService.RecordQuestionResult(ctx, usecase.RecordQuestionResultInput{
		ActorUserID: principal.UserID,
		QuestionID:  questionID,
		Answer:      *req.Answer,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "record question result failed", "user_id", principal.UserID, "question_id", questionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"question_id": questionID, "status": "resulted"})
}
