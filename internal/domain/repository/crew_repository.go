package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Buceo-api/internal/domain/entity"
)

// CrewRepository puerto de persistencia del directorio de equipos.
type CrewRepository interface {
	Create(ctx context.Context, crew *entity.Crew) error
	GetByID(ctx context.Context, id string) (*entity.Crew, error)
	// List filtra por empresa; EligibleOnly lo resuelve el caso de uso.
	List(ctx context.Context, companyID string, f entity.CrewFilter) ([]*entity.Crew, error)
	// AddMember falla con domain.ErrDuplicateMember si la persona ya está (restricción única).
	AddMember(ctx context.Context, crewID string, m entity.CrewMember) error
	RemoveMember(ctx context.Context, crewID, personID string) error
	SetActive(ctx context.Context, crewID string, active bool) error
}

// AssignmentRepository puerto de persistencia de asignaciones equipo-inmersión.
type AssignmentRepository interface {
	ListActiveByCrewDate(ctx context.Context, crewID string, date time.Time) ([]*entity.CrewAssignment, error)
	GetActiveByImmersion(ctx context.Context, immersionID string) (*entity.CrewAssignment, error)
	// Assign verifica y escribe como una unidad atómica respaldada por la restricción
	// única (crew_id, date, status=active). Un conflicto devuelve domain.ScheduleConflict(...).
	// Cancela la asignación activa previa de la inmersión si era de otro equipo y actualiza Immersion.CrewID.
	Assign(ctx context.Context, a *entity.CrewAssignment) error
	// Cancel marca cancelada la asignación activa; devuelve false si no había ninguna.
	Cancel(ctx context.Context, crewID, immersionID string, at time.Time) (bool, error)
}
