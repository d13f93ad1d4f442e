package event

import "context"

// MatchRepository persists matches. Reads skip soft-deleted rows.
// UpdateResult replaces the stored outcome and clears the evaluated flag so
// corrected results force a re-evaluation before totals are trusted.
type MatchRepository interface {
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	ListPendingEvaluation(ctx context.Context, leagueID string) ([]Match, error)
	UpdateResult(ctx context.Context, matchID string, result MatchResult) error
	SetEvaluated(ctx context.Context, matchID string, evaluated bool) error
}

type SeriesRepository interface {
	GetByID(ctx context.Context, seriesID string) (Series, bool, error)
	ListPendingEvaluation(ctx context.Context, leagueID string) ([]Series, error)
	UpdateResult(ctx context.Context, seriesID string, result SeriesResult) error
	SetEvaluated(ctx context.Context, seriesID string, evaluated bool) error
}

type SpecialRepository interface {
	GetByID(ctx context.Context, specialID string) (Special, bool, error)
	ListPendingEvaluation(ctx context.Context, leagueID string) ([]Special, error)
	UpdateResult(ctx context.Context, specialID string, result SpecialResult) error
	SetEvaluated(ctx context.Context, specialID string, evaluated bool) error
}

type QuestionRepository interface {
	GetByID(ctx context.Context, questionID string) (Question, bool, error)
	ListPendingEvaluation(ctx context.Context, leagueID string) ([]Question, error)
	UpdateResult(ctx context.Context, questionID string, answer bool) error
	SetEvaluated(ctx context.Context, questionID string, evaluated bool) error
}
