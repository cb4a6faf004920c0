package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Buceo-api/internal/application/ports"
	"github.com/jhoicas/Buceo-api/internal/domain"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
	"github.com/jhoicas/Buceo-api/internal/domain/modules"
	"github.com/jhoicas/Buceo-api/internal/domain/repository"
)

// ModuleService verifica y modifica qué módulos tiene activos una empresa.
// Es el único punto de la aplicación que conoce la lógica de activación de módulos;
// la resolución es una función pura sobre (catálogo, agregado de la empresa).
type ModuleService struct {
	repo     repository.ModuleRepository
	catalog  modules.Catalog
	notifier ports.Notifier
	log      zerolog.Logger
	now      func() time.Time
}

// NewModuleService construye el servicio de módulos.
func NewModuleService(repo repository.ModuleRepository, catalog modules.Catalog, notifier ports.Notifier, log zerolog.Logger) *ModuleService {
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	return &ModuleService{repo: repo, catalog: catalog, notifier: notifier, log: log, now: time.Now}
}

// Catalog devuelve el catálogo con que opera el servicio.
func (s *ModuleService) Catalog() modules.Catalog {
	return s.catalog
}

// Access resuelve el mapa módulo→activo de la empresa.
func (s *ModuleService) Access(ctx context.Context, companyID string) (map[string]bool, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	rec, err := s.repo.GetActivation(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return modules.Resolve(s.catalog, rec, s.now()), nil
}

// HasActiveModule informa si la empresa tiene el módulo activo.
// Devuelve false (sin error) si el módulo no está activo o no existe en el catálogo.
// Devuelve error solo ante fallos de infraestructura (DB caída, timeout, etc.).
func (s *ModuleService) HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error) {
	if companyID == "" || moduleName == "" {
		return false, domain.ErrInvalidInput
	}
	access, err := s.Access(ctx, companyID)
	if err != nil {
		return false, err
	}
	return access[moduleName], nil
}

// Activate activa un módulo opcional si todas sus dependencias resuelven activas.
// Devuelve el mapa resultante. Activar un módulo core es un no-op exitoso.
func (s *ModuleService) Activate(ctx context.Context, companyID, moduleName, actorID string) (map[string]bool, error) {
	return s.setModule(ctx, companyID, moduleName, actorID, true)
}

// Deactivate desactiva un módulo opcional. Los módulos core fallan con CoreModuleProtected.
func (s *ModuleService) Deactivate(ctx context.Context, companyID, moduleName, actorID string) (map[string]bool, error) {
	return s.setModule(ctx, companyID, moduleName, actorID, false)
}

func (s *ModuleService) setModule(ctx context.Context, companyID, moduleName, actorID string, active bool) (map[string]bool, error) {
	if companyID == "" || moduleName == "" || actorID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := s.now()
	rec, err := s.repo.GetActivation(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if rec.Records == nil {
		rec.Records = map[string]entity.CompanyModule{}
	}

	if active {
		err = modules.CheckActivation(s.catalog, rec, moduleName, now)
	} else {
		err = modules.CheckDeactivation(s.catalog, rec, moduleName, now)
	}
	if err != nil {
		return nil, err
	}
	if active && s.catalog[moduleName].Core {
		return modules.Resolve(s.catalog, rec, now), nil
	}

	row := rec.Records[moduleName]
	row.CompanyID = companyID
	row.ModuleName = moduleName
	row.IsActive = active
	row.UpdatedAt = now
	action := entity.ModuleActionDeactivate
	if active {
		action = entity.ModuleActionActivate
		row.ActivatedAt = now
		row.ExpiresAt = nil
	}
	entry := &entity.ModuleActivationLog{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		ModuleName: moduleName,
		Action:     action,
		ActorID:    actorID,
		CreatedAt:  now,
	}
	if err := s.repo.SaveActivation(ctx, row, entry); err != nil {
		return nil, err
	}
	rec.Records[moduleName] = row

	s.log.Info().
		Str("company_id", companyID).
		Str("module", moduleName).
		Str("action", action).
		Str("actor_id", actorID).
		Msg("módulo actualizado")

	evtType := ports.EventModuleDeactivated
	if active {
		evtType = ports.EventModuleActivated
	}
	s.notifier.Notify(ports.Event{
		Type:       evtType,
		CompanyID:  companyID,
		ResourceID: moduleName,
		Data:       map[string]string{"actor_id": actorID},
	})
	return modules.Resolve(s.catalog, rec, now), nil
}

// ActivationLog bitácora de activaciones de la empresa, más reciente primero.
func (s *ModuleService) ActivationLog(ctx context.Context, companyID string, limit, offset int) ([]*entity.ModuleActivationLog, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.repo.ListActivationLog(ctx, companyID, limit, offset)
}
