package league

import "context"

// Repository describes league persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]League, error)
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
}

// MembershipRepository resolves and lists league memberships. Lookups never
// return soft-deleted rows.
type MembershipRepository interface {
	GetByID(ctx context.Context, membershipID string) (Membership, bool, error)
	GetByUserAndLeague(ctx context.Context, userID, leagueID string) (Membership, bool, error)
	ListActiveByLeague(ctx context.Context, leagueID string) ([]Membership, error)
}
