package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrDuplicate      = errors.New("recurso duplicado")
	ErrUnauthorized   = errors.New("no autorizado")
	ErrForbidden      = errors.New("acceso denegado")
	ErrConflict       = errors.New("conflicto con el estado actual")
	ErrUnknownModule  = errors.New("módulo desconocido")
	ErrInfrastructure = errors.New("falla de infraestructura")
)

// Reason identifica una regla de negocio que deniega la acción solicitada.
type Reason string

const (
	ReasonModuleInactive      Reason = "MODULE_INACTIVE"
	ReasonTeamRequired        Reason = "TEAM_REQUIRED"
	ReasonScheduleConflict    Reason = "SCHEDULE_CONFLICT"
	ReasonDiverLogNotEligible Reason = "DIVER_LOG_NOT_ELIGIBLE"
	ReasonAlreadySigned       Reason = "ALREADY_SIGNED"
	ReasonDependencyUnmet     Reason = "DEPENDENCY_UNMET"
	ReasonCoreModuleProtected Reason = "CORE_MODULE_PROTECTED"
	ReasonDuplicateMember     Reason = "DUPLICATE_MEMBER"
)

// Sentinelas por razón: permiten errors.Is(err, domain.ErrScheduleConflict) sobre un *ValidationDenied.
var (
	ErrModuleInactive      = &ValidationDenied{Reason: ReasonModuleInactive, Message: "el módulo requerido no está activo"}
	ErrTeamRequired        = &ValidationDenied{Reason: ReasonTeamRequired, Message: "se requiere un equipo de buceo asignado y habilitado"}
	ErrScheduleConflict    = &ValidationDenied{Reason: ReasonScheduleConflict, Message: "el equipo ya tiene una inmersión asignada en esa fecha"}
	ErrDiverLogNotEligible = &ValidationDenied{Reason: ReasonDiverLogNotEligible, Message: "el buzo no puede crear bitácora para esta inmersión"}
	ErrAlreadySigned       = &ValidationDenied{Reason: ReasonAlreadySigned, Message: "el documento ya está firmado"}
	ErrDependencyUnmet     = &ValidationDenied{Reason: ReasonDependencyUnmet, Message: "dependencias del módulo no satisfechas"}
	ErrCoreModuleProtected = &ValidationDenied{Reason: ReasonCoreModuleProtected, Message: "los módulos core no se pueden desactivar"}
	ErrDuplicateMember     = &ValidationDenied{Reason: ReasonDuplicateMember, Message: "la persona ya es miembro del equipo"}
)

// ValidationDenied es una denegación de regla de negocio: estructurada y mostrable al usuario.
// Nunca representa una falla de infraestructura.
type ValidationDenied struct {
	Reason                 Reason
	Message                string
	ConflictingImmersionID string
	IntegrityWarning       bool
}

func (e *ValidationDenied) Error() string {
	if e.ConflictingImmersionID != "" {
		return fmt.Sprintf("%s: %s (inmersión %s)", e.Reason, e.Message, e.ConflictingImmersionID)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// Is compara por razón, de modo que cualquier denegación con la misma razón coincide con su sentinela.
func (e *ValidationDenied) Is(target error) bool {
	t, ok := target.(*ValidationDenied)
	if !ok {
		return false
	}
	return t.Reason == e.Reason
}

// Deny construye una denegación con mensaje específico.
func Deny(reason Reason, format string, args ...any) *ValidationDenied {
	return &ValidationDenied{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// ScheduleConflict construye la denegación con la inmersión en conflicto.
func ScheduleConflict(conflictingImmersionID string) *ValidationDenied {
	return &ValidationDenied{
		Reason:                 ReasonScheduleConflict,
		Message:                ErrScheduleConflict.Message,
		ConflictingImmersionID: conflictingImmersionID,
	}
}

// AsDenied extrae la denegación si err la contiene.
func AsDenied(err error) (*ValidationDenied, bool) {
	var d *ValidationDenied
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// Infra envuelve una falla de persistencia/red para que la capa HTTP la distinga de las reglas de negocio.
func Infra(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrInfrastructure, err)
}

// IsInfrastructure indica si err no es un error de negocio conocido.
func IsInfrastructure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInfrastructure) {
		return true
	}
	if _, ok := AsDenied(err); ok {
		return false
	}
	for _, known := range []error{ErrNotFound, ErrInvalidInput, ErrDuplicate, ErrUnauthorized, ErrForbidden, ErrConflict, ErrUnknownModule} {
		if errors.Is(err, known) {
			return false
		}
	}
	return true
}
