package dto

import "time"

// CrewMemberRequest integrante en la entrada; Role acepta etiquetas históricas.
type CrewMemberRequest struct {
	PersonID string `json:"person_id" validate:"required"`
	Name     string `json:"name"`
	Role     string `json:"role" validate:"required"`
}

// CreateCrewRequest entrada para crear un equipo.
type CreateCrewRequest struct {
	Name    string              `json:"name" validate:"required,min=1,max=200"`
	Members []CrewMemberRequest `json:"members"`
}

// CrewMemberResponse integrante con rol canónico.
type CrewMemberResponse struct {
	PersonID string `json:"person_id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// CrewResponse salida de un equipo.
type CrewResponse struct {
	ID        string               `json:"id"`
	CompanyID string               `json:"company_id"`
	Name      string               `json:"name"`
	Members   []CrewMemberResponse `json:"members"`
	Active    bool                 `json:"active"`
	Eligible  bool                 `json:"eligible"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// CrewListResponse lista paginada de equipos.
type CrewListResponse struct {
	Items []CrewResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// CrewListFilter filtros de listado (query string).
type CrewListFilter struct {
	ActiveOnly   bool   `query:"active"`
	Role         string `query:"role"`
	EligibleOnly bool   `query:"eligible"`
	Search       string `query:"q"`
	PageRequest
}

// AvailabilityRequest entrada de checkCrewAvailability.
type AvailabilityRequest struct {
	CrewID             string `json:"crew_id" validate:"required"`
	Date               string `json:"date" validate:"required"`
	ExcludeImmersionID string `json:"exclude_immersion_id"`
}

// AvailabilityResponse resultado de disponibilidad.
type AvailabilityResponse struct {
	Available              bool   `json:"available"`
	ConflictingImmersionID string `json:"conflicting_immersion_id,omitempty"`
	IntegrityWarning       bool   `json:"integrity_warning,omitempty"`
}

// AssignCrewRequest entrada de assignCrew / unassignCrew.
type AssignCrewRequest struct {
	CrewID      string `json:"crew_id" validate:"required"`
	ImmersionID string `json:"immersion_id" validate:"required"`
	Date        string `json:"date"`
}

// AssignmentResponse estado autoritativo de la asignación tras la mutación.
type AssignmentResponse struct {
	ID          string `json:"id,omitempty"`
	CrewID      string `json:"crew_id"`
	ImmersionID string `json:"immersion_id"`
	Date        string `json:"date,omitempty"`
	Status      string `json:"status"`
}
