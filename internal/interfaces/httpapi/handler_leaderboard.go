package httpapi

import (
	"net/http"
	"strings"

	"github.com/jvasek/tipliga/internal/domain/league"
)

type leagueDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Season   string `json:"season"`
	Sport    string `json:"sport"`
	IsActive bool   `json:"is_active"`
}

type standingRowDTO struct {
	Rank         int    `json:"rank"`
	MembershipID string `json:"membership_id"`
	UserID       string `json:"user_id"`
	TotalPoints  int    `json:"total_points"`
}

func leagueToDTO(l league.League) leagueDTO {
	return leagueDTO{
		ID:       l.ID,
		Name:     l.Name,
		Season:   l.Season,
		Sport:    string(l.Sport),
		IsActive: l.IsActive,
	}
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	leagues, err := h.leagueService.ListLeagues(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list leagues failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueDTO, 0, len(leagues))
	for _, l := range leagues {
		items = append(items, leagueToDTO(l))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeague")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	lg, err := h.leagueService.GetLeague(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get league failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(lg))
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	standings, err := h.leaderboardService.Standings(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboard failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]standingRowDTO, 0, len(standings))
	for _, row := range standings {
		items = append(items, standingRowDTO{
			Rank:         row.Rank,
			MembershipID: row.MembershipID,
			UserID:       row.UserID,
			TotalPoints:  row.TotalPoints,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
