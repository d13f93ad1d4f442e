package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/leagues/{leagueID}", handler.GetLeague)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/leaderboard", handler.GetLeaderboard)
}

func registerMemberRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/matches/{matchID}/bets", RequireAuth(verifier, http.HandlerFunc(handler.SubmitMatchBet)))
	mux.Handle("POST /v1/series/{seriesID}/bets", RequireAuth(verifier, http.HandlerFunc(handler.SubmitSeriesBet)))
	mux.Handle("POST /v1/specials/{specialID}/bets", RequireAuth(verifier, http.HandlerFunc(handler.SubmitSpecialBet)))
	mux.Handle("POST /v1/questions/{questionID}/bets", RequireAuth(verifier, http.HandlerFunc(handler.SubmitQuestionBet)))
	mux.Handle("GET /v1/leagues/{leagueID}/bets/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyBets)))
}

// Admin routes authenticate like member routes; the league-admin check
// itself lives in the services so it also covers the internal job path.
func registerAdminRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("PUT /v1/matches/{matchID}/result", RequireAuth(verifier, http.HandlerFunc(handler.RecordMatchResult)))
	mux.Handle("PUT /v1/series/{seriesID}/result", RequireAuth(verifier, http.HandlerFunc(handler.RecordSeriesResult)))
	mux.Handle("PUT /v1/specials/{specialID}/result", RequireAuth(verifier, http.HandlerFunc(handler.RecordSpecialResult)))
	mux.Handle("PUT /v1/questions/{questionID}/result", RequireAuth(verifier, http.HandlerFunc(handler.RecordQuestionResult)))

	mux.Handle("POST /v1/matches/{matchID}/evaluate", RequireAuth(verifier, http.HandlerFunc(handler.EvaluateMatch)))
	mux.Handle("POST /v1/series/{seriesID}/evaluate", RequireAuth(verifier, http.HandlerFunc(handler.EvaluateSeries)))
	mux.Handle("POST /v1/specials/{specialID}/evaluate", RequireAuth(verifier, http.HandlerFunc(handler.EvaluateSpecial)))
	mux.Handle("POST /v1/questions/{questionID}/evaluate", RequireAuth(verifier, http.HandlerFunc(handler.EvaluateQuestion)))
	mux.Handle("POST /v1/leagues/{leagueID}/evaluate", RequireAuth(verifier, http.HandlerFunc(handler.EvaluateLeague)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/evaluate-league", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunEvaluateLeagueJob)))
}
