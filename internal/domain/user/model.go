package user

// Principal identifies the authenticated caller as resolved by the account
// service. It carries no league-scoped authority; membership checks happen
// per league.
type Principal struct {
	UserID string
	Email  string
}
