// Package readiness responde, para una acción solicitada, si puede proceder y por qué no.
// Las denegaciones de negocio vuelven en el resultado; solo las fallas de infraestructura vuelven como error.
package readiness

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Buceo-api/internal/application/documents"
	"github.com/jhoicas/Buceo-api/internal/application/dto"
	"github.com/jhoicas/Buceo-api/internal/application/scheduling"
	"github.com/jhoicas/Buceo-api/internal/domain"
	"github.com/jhoicas/Buceo-api/internal/domain/crew"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
	"github.com/jhoicas/Buceo-api/internal/domain/repository"
)

// Tipos de acción validables.
const (
	ActionCreateHPT           = "create_hpt"
	ActionCreateAnexoBravo    = "create_anexo_bravo"
	ActionCreateImmersion     = "create_immersion"
	ActionCreateSupervisorLog = "create_supervisor_log"
	ActionCreateDiverLog      = "create_diver_log"
	ActionAssignCrew          = "assign_crew"
)

// Códigos de advertencia.
const (
	WarnCrewBelowRecommended = "CREW_BELOW_RECOMMENDED_SIZE"
	WarnNoSupportDivers      = "CREW_WITHOUT_SUPPORT_DIVERS"
	WarnScheduleIntegrity    = "SCHEDULE_DATA_INTEGRITY"
	WarnDocumentExists       = "DOCUMENT_ALREADY_EXISTS"
)

var actionModules = map[string]string{
	ActionCreateHPT:           entity.ModulePlanningOperations,
	ActionCreateAnexoBravo:    entity.ModulePlanningOperations,
	ActionCreateImmersion:     entity.ModuleImmersions,
	ActionCreateSupervisorLog: entity.ModuleBitacoras,
	ActionCreateDiverLog:      entity.ModuleBitacoras,
	ActionAssignCrew:          entity.ModuleCrews,
}

// ModuleAccess resolución de módulos (ModuleService).
type ModuleAccess interface {
	HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error)
}

// AvailabilityChecker verificación de disponibilidad (Scheduler).
type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, crewID string, date time.Time, excludeImmersionID string) (scheduling.Availability, error)
}

// DocumentGate prerrequisitos documentales (documents.Gate).
type DocumentGate interface {
	OperationTeam(ctx context.Context, op *entity.Operation) (documents.Team, error)
	ImmersionTeam(ctx context.Context, immersionID string) (documents.Team, error)
	PlanningState(ctx context.Context, operationID string, kind entity.DocKind) (entity.DocState, error)
	CanCreateDiverLog(ctx context.Context, immersionID, diverID string) (documents.DiverLogCheck, error)
}

// Request acción a validar.
type Request struct {
	ActionType  string
	CompanyID   string
	OperationID string
	ImmersionID string
	CrewID      string
	DiverID     string
	Date        time.Time
}

// Validator orquesta módulos, equipo, agenda y flujo documental.
type Validator struct {
	modules         ModuleAccess
	scheduler       AvailabilityChecker
	gate            DocumentGate
	operations      repository.OperationRepository
	immersions      repository.ImmersionRepository
	crews           repository.CrewRepository
	recommendedSize int
	log             zerolog.Logger
}

// NewValidator construye el validador. recommendedSize <= 0 desactiva la advertencia de dotación.
func NewValidator(modules ModuleAccess, scheduler AvailabilityChecker, gate DocumentGate, operations repository.OperationRepository, immersions repository.ImmersionRepository, crews repository.CrewRepository, recommendedSize int, log zerolog.Logger) *Validator {
	return &Validator{
		modules:         modules,
		scheduler:       scheduler,
		gate:            gate,
		operations:      operations,
		immersions:      immersions,
		crews:           crews,
		recommendedSize: recommendedSize,
		log:             log,
	}
}

type result struct {
	*dto.ValidateActionResponse
}

func newResult(actionType string) result {
	return result{&dto.ValidateActionResponse{
		CanProceed: true,
		Errors:     []dto.ValidationIssue{},
		Warnings:   []dto.ValidationIssue{},
		Context:    map[string]any{"action_type": actionType},
	}}
}

func (r result) deny(d *domain.ValidationDenied) *dto.ValidateActionResponse {
	r.CanProceed = false
	r.Reason = string(d.Reason)
	r.Errors = append(r.Errors, dto.ValidationIssue{Code: string(d.Reason), Message: d.Message})
	if d.ConflictingImmersionID != "" {
		r.Context["conflicting_immersion_id"] = d.ConflictingImmersionID
	}
	return r.ValidateActionResponse
}

func (r result) warn(code, msg string) {
	r.Warnings = append(r.Warnings, dto.ValidationIssue{Code: code, Message: msg})
}

// Validate evalúa los pasos en orden y se detiene en la primera denegación.
func (v *Validator) Validate(ctx context.Context, req Request) (*dto.ValidateActionResponse, error) {
	module, ok := actionModules[req.ActionType]
	if !ok || req.CompanyID == "" {
		return nil, domain.ErrInvalidInput
	}
	res := newResult(req.ActionType)
	res.Context["module"] = module

	active, err := v.modules.HasActiveModule(ctx, req.CompanyID, module)
	if err != nil {
		return nil, err
	}
	if !active {
		return res.deny(domain.Deny(domain.ReasonModuleInactive, "el módulo %s no está activo para la empresa", module)), nil
	}

	var out *dto.ValidateActionResponse
	switch req.ActionType {
	case ActionCreateHPT, ActionCreateAnexoBravo:
		out, err = v.planning(ctx, req, res)
	case ActionCreateSupervisorLog:
		out, err = v.supervisorLog(ctx, req, res)
	case ActionCreateDiverLog:
		out, err = v.diverLog(ctx, req, res)
	case ActionAssignCrew:
		out, err = v.assignCrew(ctx, req, res)
	default:
		out = res.ValidateActionResponse
	}
	if err != nil {
		return nil, err
	}
	v.log.Debug().
		Str("action_type", req.ActionType).
		Str("company_id", req.CompanyID).
		Bool("can_proceed", out.CanProceed).
		Str("reason", out.Reason).
		Msg("acción validada")
	return out, nil
}

func (v *Validator) planning(ctx context.Context, req Request, res result) (*dto.ValidateActionResponse, error) {
	if req.OperationID == "" {
		return nil, domain.ErrInvalidInput
	}
	op, err := v.operations.GetByID(ctx, req.OperationID)
	if err != nil {
		return nil, err
	}
	if op == nil || op.CompanyID != req.CompanyID {
		return nil, domain.ErrNotFound
	}
	res.Context["operation_id"] = op.ID
	team, err := v.gate.OperationTeam(ctx, op)
	if err != nil {
		return nil, err
	}
	if d := team.Denial(); d != nil {
		return res.deny(d), nil
	}
	res.Context["crew_id"] = team.Crew.ID

	kind := entity.DocKindHPT
	if req.ActionType == ActionCreateAnexoBravo {
		kind = entity.DocKindAnexoBravo
	}
	state, err := v.gate.PlanningState(ctx, op.ID, kind)
	if err != nil {
		return nil, err
	}
	res.Context["document_state"] = string(state)
	if state != entity.DocStateAbsent {
		res.warn(WarnDocumentExists, "la faena ya tiene este documento")
	}
	v.crewWarnings(res, team.Crew)
	return res.ValidateActionResponse, nil
}

func (v *Validator) supervisorLog(ctx context.Context, req Request, res result) (*dto.ValidateActionResponse, error) {
	if _, err := v.immersion(ctx, req); err != nil {
		return nil, err
	}
	res.Context["immersion_id"] = req.ImmersionID
	team, err := v.gate.ImmersionTeam(ctx, req.ImmersionID)
	if err != nil {
		return nil, err
	}
	if d := team.Denial(); d != nil {
		return res.deny(d), nil
	}
	res.Context["crew_id"] = team.Crew.ID
	v.crewWarnings(res, team.Crew)
	return res.ValidateActionResponse, nil
}

func (v *Validator) diverLog(ctx context.Context, req Request, res result) (*dto.ValidateActionResponse, error) {
	if req.DiverID == "" {
		return nil, domain.ErrInvalidInput
	}
	if _, err := v.immersion(ctx, req); err != nil {
		return nil, err
	}
	res.Context["immersion_id"] = req.ImmersionID
	res.Context["diver_id"] = req.DiverID
	check, err := v.gate.CanCreateDiverLog(ctx, req.ImmersionID, req.DiverID)
	if err != nil {
		return nil, err
	}
	if !check.Allowed {
		res.Context["diver_log_exists"] = check.Exists
		return res.deny(domain.Deny(domain.ReasonDiverLogNotEligible, "%s", check.Reason)), nil
	}
	return res.ValidateActionResponse, nil
}

func (v *Validator) assignCrew(ctx context.Context, req Request, res result) (*dto.ValidateActionResponse, error) {
	if req.CrewID == "" {
		return nil, domain.ErrInvalidInput
	}
	c, err := v.crews.GetByID(ctx, req.CrewID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.CompanyID != req.CompanyID {
		return nil, domain.ErrNotFound
	}
	res.Context["crew_id"] = c.ID
	team := documents.TeamOf(c)
	if d := team.Denial(); d != nil {
		return res.deny(d), nil
	}

	date := req.Date
	if req.ImmersionID != "" {
		im, err := v.immersion(ctx, req)
		if err != nil {
			return nil, err
		}
		res.Context["immersion_id"] = im.ID
		if date.IsZero() {
			date = im.Date
		}
	}
	if !date.IsZero() {
		res.Context["date"] = dto.FormatDate(date)
		avail, err := v.scheduler.CheckAvailability(ctx, c.ID, date, req.ImmersionID)
		if err != nil {
			return nil, err
		}
		if avail.IntegrityWarning {
			res.warn(WarnScheduleIntegrity, "el equipo registra más de una asignación activa en la fecha")
		}
		if !avail.Available {
			return res.deny(domain.ScheduleConflict(avail.ConflictingImmersionID)), nil
		}
	}
	v.crewWarnings(res, c)
	return res.ValidateActionResponse, nil
}

func (v *Validator) immersion(ctx context.Context, req Request) (*entity.Immersion, error) {
	if req.ImmersionID == "" {
		return nil, domain.ErrInvalidInput
	}
	im, err := v.immersions.GetByID(ctx, req.ImmersionID)
	if err != nil {
		return nil, err
	}
	if im == nil || im.CompanyID != req.CompanyID {
		return nil, domain.ErrNotFound
	}
	return im, nil
}

func (v *Validator) crewWarnings(res result, c *entity.Crew) {
	comp := crew.Compose(c.Members)
	res.Context["crew_size"] = comp.Total()
	if v.recommendedSize > 0 && comp.Total() < v.recommendedSize {
		res.warn(WarnCrewBelowRecommended, "el equipo tiene menos integrantes que la dotación recomendada")
	}
	if comp.SupportDivers == 0 {
		res.warn(WarnNoSupportDivers, "el equipo no tiene buzos asistentes")
	}
}
