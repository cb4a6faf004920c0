package entity

import "time"

// CrewRole es el conjunto cerrado de roles dentro de un equipo de buceo.
type CrewRole string

const (
	CrewRoleSupervisor   CrewRole = "supervisor"
	CrewRoleLeadDiver    CrewRole = "lead-diver"
	CrewRoleSupportDiver CrewRole = "support-diver"
)

// CrewMember integrante de un equipo. El orden de Members en Crew es significativo.
type CrewMember struct {
	PersonID string   `json:"person_id"`
	Name     string   `json:"name"`
	Role     CrewRole `json:"role"`
}

// Crew equipo de buceo de una empresa.
type Crew struct {
	ID        string
	CompanyID string
	Name      string
	Members   []CrewMember
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasMember indica si la persona pertenece al equipo.
func (c *Crew) HasMember(personID string) bool {
	for _, m := range c.Members {
		if m.PersonID == personID {
			return true
		}
	}
	return false
}

// CrewFilter filtros para listar equipos.
type CrewFilter struct {
	ActiveOnly   bool
	Role         CrewRole // vacío = cualquiera
	EligibleOnly bool
	Search       string
	Limit        int
	Offset       int
}

// Estados de una asignación equipo-inmersión.
const (
	AssignmentActive    = "active"
	AssignmentCancelled = "cancelled"
)

// CrewAssignment vincula un equipo a una inmersión en una fecha. Nunca se borra: se cancela.
type CrewAssignment struct {
	ID          string
	CrewID      string
	ImmersionID string
	Date        time.Time // día calendario en UTC
	Status      string
	CreatedAt   time.Time
	CancelledAt *time.Time
}

// DateOnly normaliza un instante al día calendario UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
