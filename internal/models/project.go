package models

import "time"

const (
	StatusAllowed = "allowed"
	StatusBlocked = "blocked"
)

// Project is a registered project and its run permission.
type Project struct {
	ID        int64     `db:"id" json:"id"`
	ProjectID string    `db:"project_id" json:"project_id"`
	Name      string    `db:"name" json:"name"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func ValidStatus(status string) bool {
	return status == StatusAllowed || status == StatusBlocked
}

// Allowed reports whether the project may run.
func (p *Project) Allowed() bool {
	return p.Status == StatusAllowed
}
