// Package documents controla la creación y firma de documentos de seguridad:
// HPT y Anexo Bravo por faena, bitácora de supervisor y bitácoras de buzo por inmersión.
package documents

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Buceo-api/internal/application/ports"
	"github.com/jhoicas/Buceo-api/internal/domain"
	"github.com/jhoicas/Buceo-api/internal/domain/crew"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
	"github.com/jhoicas/Buceo-api/internal/domain/repository"
)

// Repositories puertos que consume el Gate.
type Repositories struct {
	Operations     repository.OperationRepository
	Immersions     repository.ImmersionRepository
	Crews          repository.CrewRepository
	Assignments    repository.AssignmentRepository
	Planning       repository.PlanningDocumentRepository
	SupervisorLogs repository.SupervisorLogRepository
	DiverLogs      repository.DiverLogRepository
	Audits         repository.AuditRepository
}

// Gate máquina de estados documental con sus prerrequisitos.
type Gate struct {
	repos    Repositories
	notifier ports.Notifier
	log      zerolog.Logger
	now      func() time.Time
}

// NewGate construye el Gate.
func NewGate(repos Repositories, notifier ports.Notifier, log zerolog.Logger) *Gate {
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	return &Gate{repos: repos, notifier: notifier, log: log, now: time.Now}
}

// Team equipo asignado y si cumple el requisito (activo, ≥1 supervisor y ≥1 buzo principal).
type Team struct {
	Crew     *entity.Crew
	Eligible bool
}

// Assigned indica si hay equipo asignado.
func (t Team) Assigned() bool { return t.Crew != nil }

func teamOf(c *entity.Crew) Team {
	if c == nil {
		return Team{}
	}
	return Team{Crew: c, Eligible: c.Active && crew.IsEligible(c.Members)}
}

// OperationTeam equipo asignado a la faena.
func (g *Gate) OperationTeam(ctx context.Context, op *entity.Operation) (Team, error) {
	if op == nil || op.CrewID == nil {
		return Team{}, nil
	}
	c, err := g.repos.Crews.GetByID(ctx, *op.CrewID)
	if err != nil {
		return Team{}, err
	}
	return teamOf(c), nil
}

// ImmersionTeam equipo con asignación activa en la inmersión.
func (g *Gate) ImmersionTeam(ctx context.Context, immersionID string) (Team, error) {
	a, err := g.repos.Assignments.GetActiveByImmersion(ctx, immersionID)
	if err != nil || a == nil {
		return Team{}, err
	}
	c, err := g.repos.Crews.GetByID(ctx, a.CrewID)
	if err != nil {
		return Team{}, err
	}
	return teamOf(c), nil
}

// Denial motivo por el que el equipo no satisface el requisito; nil si lo satisface.
func (t Team) Denial() *domain.ValidationDenied {
	switch {
	case !t.Assigned():
		return domain.Deny(domain.ReasonTeamRequired, "no hay equipo de buceo asignado")
	case !t.Crew.Active:
		return domain.Deny(domain.ReasonTeamRequired, "el equipo %s está inactivo", t.Crew.Name)
	case !t.Eligible:
		return domain.Deny(domain.ReasonTeamRequired, "el equipo %s requiere al menos un supervisor y un buzo principal", t.Crew.Name)
	}
	return nil
}

// TeamOf evalúa un equipo ya cargado.
func TeamOf(c *entity.Crew) Team {
	return teamOf(c)
}

func teamRequired(t Team) error {
	if d := t.Denial(); d != nil {
		return d
	}
	return nil
}

func (g *Gate) operation(ctx context.Context, companyID, id string) (*entity.Operation, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	op, err := g.repos.Operations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if op == nil || op.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return op, nil
}

func (g *Gate) immersion(ctx context.Context, companyID, id string) (*entity.Immersion, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	im, err := g.repos.Immersions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if im == nil || im.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return im, nil
}

func canAuthor(actor entity.Actor) bool {
	return actor.Role == entity.UserRoleSupervisor || actor.Role == entity.UserRoleAdmin
}

// authorizeSlot decide si el actor puede firmar la casilla.
// La casilla de supervisor de la mandante es la única que admite un actor de otra empresa.
func authorizeSlot(actor entity.Actor, doc *entity.Document, slot entity.SignerRole, diverID string) error {
	switch slot {
	case entity.SignerPrincipalSupervisor:
		if actor.CanOverride() && actor.CompanyID == doc.CompanyID {
			return nil
		}
		if actor.Role == entity.UserRoleSupervisor && actor.CompanyType == entity.CompanyTypePrincipal {
			return nil
		}
		return domain.ErrForbidden
	}
	if actor.CompanyID != doc.CompanyID {
		return domain.ErrForbidden
	}
	if actor.CanOverride() {
		return nil
	}
	switch slot {
	case entity.SignerServiceSupervisor, entity.SignerSupervisor:
		if actor.Role == entity.UserRoleSupervisor {
			return nil
		}
	case entity.SignerDiver:
		if actor.ID == diverID {
			return nil
		}
	}
	return domain.ErrForbidden
}

// canRead: la empresa dueña, o la mandante sobre el Anexo Bravo que debe contrafirmar.
func canRead(actor entity.Actor, doc *entity.Document) bool {
	if actor.CompanyID == doc.CompanyID {
		return true
	}
	return doc.Kind == entity.DocKindAnexoBravo && actor.CompanyType == entity.CompanyTypePrincipal
}

func emptyObject(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(`{}`)
	}
	return raw
}

func newDocument(id, companyID, actorID string, kind entity.DocKind, content json.RawMessage, now time.Time) entity.Document {
	return entity.Document{
		ID:        id,
		CompanyID: companyID,
		Kind:      kind,
		State:     entity.DocStateDraft,
		Content:   emptyObject(content),
		Version:   1,
		CreatedBy: actorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
