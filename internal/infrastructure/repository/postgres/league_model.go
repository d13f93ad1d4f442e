package postgres

import "time"

type leagueTableModel struct {
	ID        string     `db:"id"`
	Name      string     `db:"name"`
	Season    string     `db:"season"`
	Sport     string     `db:"sport"`
	IsActive  bool       `db:"is_active"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type membershipTableModel struct {
	ID        string     `db:"id"`
	LeagueID  string     `db:"league_id"`
	UserID    string     `db:"user_id"`
	Role      string     `db:"role"`
	HasPaid   bool       `db:"has_paid"`
	IsActive  bool       `db:"is_active"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}
