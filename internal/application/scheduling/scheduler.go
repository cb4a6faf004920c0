// Package scheduling detecta conflictos de fecha al asignar equipos a inmersiones.
// La verificación previa es informativa; la garantía la da la restricción única de la persistencia.
package scheduling

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Buceo-api/internal/application/ports"
	"github.com/jhoicas/Buceo-api/internal/domain"
	"github.com/jhoicas/Buceo-api/internal/domain/crew"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
	"github.com/jhoicas/Buceo-api/internal/domain/repository"
)

// Availability resultado de CheckAvailability.
type Availability struct {
	Available              bool
	ConflictingImmersionID string
	// IntegrityWarning indica más de una asignación activa en el día (dato anómalo heredado).
	IntegrityWarning bool
}

// Scheduler asignación de equipos a inmersiones.
type Scheduler struct {
	assignments repository.AssignmentRepository
	crews       repository.CrewRepository
	immersions  repository.ImmersionRepository
	notifier    ports.Notifier
	log         zerolog.Logger
	now         func() time.Time
}

// New construye el scheduler.
func New(assignments repository.AssignmentRepository, crews repository.CrewRepository, immersions repository.ImmersionRepository, notifier ports.Notifier, log zerolog.Logger) *Scheduler {
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	return &Scheduler{
		assignments: assignments,
		crews:       crews,
		immersions:  immersions,
		notifier:    notifier,
		log:         log,
		now:         time.Now,
	}
}

// CheckAvailability disponible si no hay asignación activa del equipo en el día fuera de excludeImmersionID.
func (s *Scheduler) CheckAvailability(ctx context.Context, crewID string, date time.Time, excludeImmersionID string) (Availability, error) {
	if crewID == "" || date.IsZero() {
		return Availability{}, domain.ErrInvalidInput
	}
	active, err := s.assignments.ListActiveByCrewDate(ctx, crewID, entity.DateOnly(date))
	if err != nil {
		return Availability{}, err
	}
	var conflicts []*entity.CrewAssignment
	for _, a := range active {
		if excludeImmersionID != "" && a.ImmersionID == excludeImmersionID {
			continue
		}
		conflicts = append(conflicts, a)
	}
	// Dos o más activas en el mismo día solo pueden venir de datos previos a la restricción.
	warn := len(active) > 1
	if len(conflicts) == 0 {
		return Availability{Available: true, IntegrityWarning: warn}, nil
	}
	if warn {
		s.log.Warn().
			Str("crew_id", crewID).
			Str("date", date.Format("2006-01-02")).
			Int("active", len(active)).
			Msg("equipo con más de una asignación activa en el día")
	}
	return Availability{
		Available:              false,
		ConflictingImmersionID: conflicts[0].ImmersionID,
		IntegrityWarning:       warn,
	}, nil
}

// Assign asigna el equipo a la inmersión en la fecha (vacía = fecha de la inmersión).
// Con companyID no vacío, equipo e inmersión deben pertenecer a esa empresa.
func (s *Scheduler) Assign(ctx context.Context, companyID, crewID, immersionID string, date time.Time) (*entity.CrewAssignment, error) {
	if crewID == "" || immersionID == "" {
		return nil, domain.ErrInvalidInput
	}
	c, err := s.crews.GetByID(ctx, crewID)
	if err != nil {
		return nil, err
	}
	if c == nil || (companyID != "" && c.CompanyID != companyID) {
		return nil, domain.ErrNotFound
	}
	im, err := s.immersions.GetByID(ctx, immersionID)
	if err != nil {
		return nil, err
	}
	if im == nil || (companyID != "" && im.CompanyID != companyID) {
		return nil, domain.ErrNotFound
	}
	if !c.Active {
		return nil, domain.Deny(domain.ReasonTeamRequired, "el equipo %s está inactivo", c.Name)
	}
	if !crew.IsEligible(c.Members) {
		return nil, domain.Deny(domain.ReasonTeamRequired, "el equipo %s requiere al menos un supervisor y un buzo principal", c.Name)
	}
	if date.IsZero() {
		date = im.Date
	}
	day := entity.DateOnly(date)

	avail, err := s.CheckAvailability(ctx, crewID, day, immersionID)
	if err != nil {
		return nil, err
	}
	if !avail.Available {
		denied := domain.ScheduleConflict(avail.ConflictingImmersionID)
		denied.IntegrityWarning = avail.IntegrityWarning
		return nil, denied
	}

	a := &entity.CrewAssignment{
		CrewID:      crewID,
		ImmersionID: immersionID,
		Date:        day,
		CreatedAt:   s.now(),
	}
	// La escritura vuelve a verificar contra el índice único; un perdedor concurrente recibe ScheduleConflict.
	if err := s.assignments.Assign(ctx, a); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("crew_id", crewID).
		Str("immersion_id", immersionID).
		Str("date", day.Format("2006-01-02")).
		Msg("equipo asignado")
	s.notifier.Notify(ports.Event{
		Type:       ports.EventCrewAssigned,
		CompanyID:  im.CompanyID,
		ResourceID: immersionID,
		Data:       map[string]string{"crew_id": crewID, "date": day.Format("2006-01-02")},
	})
	return a, nil
}

// Unassign cancela la asignación activa del par. Sin asignación activa es un no-op y devuelve false.
func (s *Scheduler) Unassign(ctx context.Context, companyID, crewID, immersionID string) (bool, error) {
	if crewID == "" || immersionID == "" {
		return false, domain.ErrInvalidInput
	}
	im, err := s.immersions.GetByID(ctx, immersionID)
	if err != nil {
		return false, err
	}
	if im == nil || (companyID != "" && im.CompanyID != companyID) {
		return false, domain.ErrNotFound
	}
	cancelled, err := s.assignments.Cancel(ctx, crewID, immersionID, s.now())
	if err != nil {
		return false, err
	}
	if !cancelled {
		return false, nil
	}
	s.log.Info().Str("crew_id", crewID).Str("immersion_id", immersionID).Msg("asignación cancelada")
	s.notifier.Notify(ports.Event{
		Type:       ports.EventCrewUnassigned,
		CompanyID:  im.CompanyID,
		ResourceID: immersionID,
		Data:       map[string]string{"crew_id": crewID},
	})
	return true, nil
}

// ActiveCrew equipo con asignación activa en la inmersión; nil si no hay.
func (s *Scheduler) ActiveCrew(ctx context.Context, immersionID string) (*entity.Crew, error) {
	a, err := s.assignments.GetActiveByImmersion(ctx, immersionID)
	if err != nil || a == nil {
		return nil, err
	}
	return s.crews.GetByID(ctx, a.CrewID)
}
