package player

// Player is the minimal roster record the betting core needs: enough to
// check that a predicted scorer actually plays for one of the competing
// teams and to apply position-restricted pick rules.
type Player struct {
	ID       string
	TeamID   string
	Name     string
	Position string
}

// PlaysFor reports whether the player belongs to any of the given teams.
func (p Player) PlaysFor(teamIDs ...string) bool {
	for _, id := range teamIDs {
		if p.TeamID == id {
			return true
		}
	}
	return false
}
