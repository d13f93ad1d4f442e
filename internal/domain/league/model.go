package league

import (
	"fmt"
	"time"
)

// Sport identifies the sport a league runs on. Scoring rules differ per
// sport, e.g. a soccer match may legitimately end without a scorer while an
// ice hockey match cannot.
type Sport string

const (
	SportSoccer    Sport = "soccer"
	SportIceHockey Sport = "ice_hockey"
)

func (s Sport) Valid() bool {
	return s == SportSoccer || s == SportIceHockey
}

// AllowsScorelessMatch reports whether a match in this sport can end with no
// goal scored at all.
func (s Sport) AllowsScorelessMatch() bool {
	return s == SportSoccer
}

// League is a season-scoped prediction competition. Its evaluator rule set
// and events are owned by the league.
type League struct {
	ID       string
	Name     string
	Season   string
	Sport    Sport
	IsActive bool
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if l.Season == "" {
		return fmt.Errorf("league season is required")
	}
	if !l.Sport.Valid() {
		return fmt.Errorf("league sport %q is not supported", l.Sport)
	}

	return nil
}

// Role is the member's role inside one league.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Membership joins a user to a league. Every prediction is owned by a
// membership, not by the raw user, so one user's history stays independent
// across leagues. Memberships are soft-deleted only; historical totals keep
// pointing at the tombstoned row.
type Membership struct {
	ID        string
	LeagueID  string
	UserID    string
	Role      Role
	HasPaid   bool
	IsActive  bool
	CreatedAt time.Time
	DeletedAt *time.Time
}

// CanBet reports whether the membership may submit or amend predictions.
func (m Membership) CanBet() bool {
	return m.IsActive && m.DeletedAt == nil
}

func (m Membership) IsAdmin() bool {
	return m.Role == RoleAdmin && m.CanBet()
}
