package player

import "context"

// Repository describes roster lookups needed by bet validation.
type Repository interface {
	GetByID(ctx context.Context, playerID string) (Player, bool, error)
}
