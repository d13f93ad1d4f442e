package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jvasek/tipliga/internal/domain/bet"
	"github.com/jvasek/tipliga/internal/usecase"
)

type matchBetRequest struct {
	HomeScore *int    `json:"home_score" validate:"required,min=0"`
	AwayScore *int    `json:"away_score" validate:"required,min=0"`
	ScorerID  *string `json:"scorer_id" validate:"omitempty,min=1"`
	NoScorer  bool    `json:"no_scorer"`
}

type seriesBetRequest struct {
	HomeWins *int `json:"home_wins" validate:"required,min=0"`
	AwayWins *int `json:"away_wins" validate:"required,min=0"`
}

type specialBetRequest struct {
	TeamID   *string `json:"team_id" validate:"omitempty,min=1"`
	PlayerID *string `json:"player_id" validate:"omitempty,min=1"`
	Value    *int    `json:"value"`
}

type questionBetRequest struct {
	Answer *bool `json:"answer" validate:"required"`
}

type matchBetDTO struct {
	ID          string    `json:"id"`
	MatchID     string    `json:"match_id"`
	HomeScore   int       `json:"home_score"`
	AwayScore   int       `json:"away_score"`
	ScorerID    *string   `json:"scorer_id,omitempty"`
	NoScorer    bool      `json:"no_scorer"`
	TotalPoints int       `json:"total_points"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type seriesBetDTO struct {
	ID          string    `json:"id"`
	SeriesID    string    `json:"series_id"`
	HomeWins    int       `json:"home_wins"`
	AwayWins    int       `json:"away_wins"`
	TotalPoints int       `json:"total_points"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type specialBetDTO struct {
	ID          string    `json:"id"`
	SpecialID   string    `json:"special_id"`
	TeamID      *string   `json:"team_id,omitempty"`
	PlayerID    *string   `json:"player_id,omitempty"`
	Value       *int      `json:"value,omitempty"`
	TotalPoints int       `json:"total_points"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type questionBetDTO struct {
	ID          string    `json:"id"`
	QuestionID  string    `json:"question_id"`
	Answer      bool      `json:"answer"`
	TotalPoints int       `json:"total_points"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type memberBetsDTO struct {
	MembershipID string           `json:"membership_id"`
	MatchBets    []matchBetDTO    `json:"match_bets"`
	SeriesBets   []seriesBetDTO   `json:"series_bets"`
	SpecialBets  []specialBetDTO  `json:"special_bets"`
	QuestionBets []questionBetDTO `json:"question_bets"`
}

func matchBetToDTO(b bet.MatchBet) matchBetDTO {
	return matchBetDTO{
		ID:          b.ID,
		MatchID:     b.MatchID,
		HomeScore:   b.HomeScore,
		AwayScore:   b.AwayScore,
		ScorerID:    b.ScorerID,
		NoScorer:    b.NoScorer,
		TotalPoints: b.TotalPoints,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func seriesBetToDTO(b bet.SeriesBet) seriesBetDTO {
	return seriesBetDTO{
		ID:          b.ID,
		SeriesID:    b.SeriesID,
		HomeWins:    b.HomeWins,
		AwayWins:    b.AwayWins,
		TotalPoints: b.TotalPoints,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func specialBetToDTO(b bet.SpecialBet) specialBetDTO {
	return specialBetDTO{
		ID:          b.ID,
		SpecialID:   b.SpecialID,
		TeamID:      b.TeamID,
		PlayerID:    b.PlayerID,
		Value:       b.Value,
		TotalPoints: b.TotalPoints,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func questionBetToDTO(b bet.QuestionBet) questionBetDTO {
	return questionBetDTO{
		ID:          b.ID,
		QuestionID:  b.QuestionID,
		Answer:      b.Answer,
		TotalPoints: b.TotalPoints,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func upsertStatus(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusOK
}

func (h *Handler) SubmitMatchBet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitMatchBet")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req matchBetRequest
	if err := decodeStrictJSON(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	placed, created, err := h.betService.SubmitMatchBet(ctx, usecase.SubmitMatchBetInput{
		UserID:    principal.UserID,
		MatchID:   matchID,
		HomeScore: *req.HomeScore,
		AwayScore: *req.AwayScore,
		ScorerID:  req.ScorerID,
		NoScorer:  req.NoScorer,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit match bet failed", "user_id", principal.UserID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, upsertStatus(created), matchBetToDTO(placed))
}

func (h *Handler) SubmitSeriesBet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitSeriesBet")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req seriesBetRequest
	if err := decodeStrictJSON(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	seriesID := strings.TrimSpace(r.PathValue("seriesID"))
	placed, created, err := h.betService.SubmitSeriesBet(ctx, usecase.SubmitSeriesBetInput{
		UserID:   principal.UserID,
		SeriesID: seriesID,
		HomeWins: *req.HomeWins,
		AwayWins: *req.AwayWins,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit series bet failed", "user_id", principal.UserID, "series_id", seriesID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, upsertStatus(created), seriesBetToDTO(placed))
}

func (h *Handler) SubmitSpecialBet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitSpecialBet")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req specialBetRequest
	if err := decodeStrictJSON(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	specialID := strings.TrimSpace(r.PathValue("specialID"))
	placed, created, err := h.betService.SubmitSpecialBet(ctx, usecase.SubmitSpecialBetInput{
		UserID:    principal.UserID,
		SpecialID: specialID,
		TeamID:    req.TeamID,
		PlayerID:  req.PlayerID,
		Value:     req.Value,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit special bet failed", "user_id", principal.UserID, "special_id", specialID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, upsertStatus(created), specialBetToDTO(placed))
}

func (h *Handler) SubmitQuestionBet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitQuestionBet")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req questionBetRequest
	if err := decodeStrictJSON(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	questionID := strings.TrimSpace(r.PathValue("questionID"))
	placed, created, err := h.betService.SubmitQuestionBet(ctx, usecase.SubmitQuestionBetInput{
		UserID:     principal.UserID,
		QuestionID: questionID,
		Answer:     *req.Answer,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit question bet failed", "user_id", principal.UserID, "question_id", questionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, upsertStatus(created), questionBetToDTO(placed))
}

func (h *Handler) ListMyBets(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyBets")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	bets, err := h.betService.ListMemberBets(ctx, principal.UserID, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list member bets failed", "user_id", principal.UserID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	dto := memberBetsDTO{
		MembershipID: bets.MembershipID,
		MatchBets:    make([]matchBetDTO, 0, len(bets.MatchBets)),
		SeriesBets:   make([]seriesBetDTO, 0, len(bets.SeriesBets)),
		SpecialBets:  make([]specialBetDTO, 0, len(bets.SpecialBets)),
		QuestionBets: make([]questionBetDTO, 0, len(bets.QuestionBets)),
	}
	for _, b := range bets.MatchBets {
		dto.MatchBets = append(dto.MatchBets, matchBetToDTO(b))
	}
	for _, b := range bets.SeriesBets {
		dto.SeriesBets = append(dto.SeriesBets, seriesBetToDTO(b))
	}
	for _, b := range bets.SpecialBets {
		dto.SpecialBets = append(dto.SpecialBets, specialBetToDTO(b))
	}
	for _, b := range bets.QuestionBets {
		dto.QuestionBets = append(dto.QuestionBets, questionBetToDTO(b))
	}

	writeSuccess(ctx, w, http.StatusOK, dto)
}
