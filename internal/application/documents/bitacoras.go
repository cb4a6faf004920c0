package documents

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/jhoicas/Buceo-api/internal/application/dto"
	"github.com/jhoicas/Buceo-api/internal/domain"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
	"github.com/jhoicas/Buceo-api/internal/domain/workflow"
)

// CreateSupervisorLog crea el borrador de la bitácora de supervisor; requiere equipo habilitado asignado a la inmersión.
func (g *Gate) CreateSupervisorLog(ctx context.Context, actor entity.Actor, immersionID string, content json.RawMessage) (*dto.DocumentResponse, error) {
	if !canAuthor(actor) {
		return nil, domain.ErrForbidden
	}
	im, err := g.immersion(ctx, actor.CompanyID, immersionID)
	if err != nil {
		return nil, err
	}
	team, err := g.ImmersionTeam(ctx, im.ID)
	if err != nil {
		return nil, err
	}
	if err := teamRequired(team); err != nil {
		return nil, err
	}
	sl := &entity.SupervisorLog{
		Document:    newDocument(uuid.New().String(), im.CompanyID, actor.ID, entity.DocKindSupervisorLog, content, g.now()),
		ImmersionID: im.ID,
		CrewID:      team.Crew.ID,
	}
	if err := g.repos.SupervisorLogs.Create(ctx, sl); err != nil {
		return nil, err
	}
	g.log.Info().Str("immersion_id", im.ID).Str("document_id", sl.ID).Msg("bitácora de supervisor creada")
	return toDocumentResponse(supervisorRecord(g, sl)), nil
}

// DiverLogCheck resultado de CanCreateDiverLog.
type DiverLogCheck struct {
	Allowed bool
	Reason  string
	Exists  bool
}

// CanCreateDiverLog se deriva solo del estado persistido: bitácora de supervisor firmada,
// buzo en su snapshot y sin bitácora previa para el par.
func (g *Gate) CanCreateDiverLog(ctx context.Context, immersionID, diverID string) (DiverLogCheck, error) {
	if immersionID == "" || diverID == "" {
		return DiverLogCheck{}, domain.ErrInvalidInput
	}
	sl, err := g.repos.SupervisorLogs.GetByImmersion(ctx, immersionID)
	if err != nil {
		return DiverLogCheck{}, err
	}
	rule := workflow.CanCreateDiverLog(sl, diverID)
	if !rule.Eligible {
		return DiverLogCheck{Reason: rule.Reason}, nil
	}
	existing, err := g.repos.DiverLogs.Get(ctx, immersionID, diverID)
	if err != nil {
		return DiverLogCheck{}, err
	}
	if existing != nil {
		return DiverLogCheck{Reason: "ya existe la bitácora del buzo para esta inmersión", Exists: true}, nil
	}
	return DiverLogCheck{Allowed: true}, nil
}

// DiverLogEligibility CanCreateDiverLog para una inmersión de la empresa.
func (g *Gate) DiverLogEligibility(ctx context.Context, companyID, immersionID, diverID string) (DiverLogCheck, error) {
	im, err := g.immersion(ctx, companyID, immersionID)
	if err != nil {
		return DiverLogCheck{}, err
	}
	return g.CanCreateDiverLog(ctx, im.ID, diverID)
}

// CreateDiverLog crea la bitácora del buzo en draft. La unicidad (inmersión, buzo) la garantiza la persistencia.
func (g *Gate) CreateDiverLog(ctx context.Context, actor entity.Actor, immersionID, diverID string, payload json.RawMessage) (*dto.DocumentResponse, error) {
	if diverID == "" {
		return nil, domain.ErrInvalidInput
	}
	if actor.ID != diverID && !canAuthor(actor) {
		return nil, domain.ErrForbidden
	}
	im, err := g.immersion(ctx, actor.CompanyID, immersionID)
	if err != nil {
		return nil, err
	}
	sl, err := g.repos.SupervisorLogs.GetByImmersion(ctx, im.ID)
	if err != nil {
		return nil, err
	}
	if rule := workflow.CanCreateDiverLog(sl, diverID); !rule.Eligible {
		return nil, domain.Deny(domain.ReasonDiverLogNotEligible, "%s", rule.Reason)
	}
	dl := &entity.DiverLog{
		Document:    newDocument(uuid.New().String(), im.CompanyID, actor.ID, entity.DocKindDiverLog, payload, g.now()),
		ImmersionID: im.ID,
		DiverID:     diverID,
	}
	if err := g.repos.DiverLogs.Create(ctx, dl); err != nil {
		return nil, err
	}
	g.log.Info().Str("immersion_id", im.ID).Str("diver_id", diverID).Msg("bitácora de buzo creada")
	return toDocumentResponse(diverRecord(g, dl)), nil
}

// Completion métrica de completitud de bitácoras de la inmersión.
func (g *Gate) Completion(ctx context.Context, companyID, immersionID string) (*dto.CompletionResponse, error) {
	im, err := g.immersion(ctx, companyID, immersionID)
	if err != nil {
		return nil, err
	}
	sl, err := g.repos.SupervisorLogs.GetByImmersion(ctx, im.ID)
	if err != nil {
		return nil, err
	}
	logs, err := g.repos.DiverLogs.ListByImmersion(ctx, im.ID)
	if err != nil {
		return nil, err
	}
	p := workflow.Completion(sl, logs)
	return &dto.CompletionResponse{
		ImmersionID:      im.ID,
		SupervisorSigned: p.SupervisorSigned,
		Expected:         p.Expected,
		Completed:        p.Completed,
		Pending:          p.Pending,
		Status:           p.Status,
	}, nil
}

// EligibleDivers recalcula, desde el estado persistido, los buzos que pueden crear bitácora.
// Es la superficie de reconciliación cuando una notificación supervisorLogSigned no llegó.
func (g *Gate) EligibleDivers(ctx context.Context, companyID, immersionID string) (*dto.EligibleDiversResponse, error) {
	im, err := g.immersion(ctx, companyID, immersionID)
	if err != nil {
		return nil, err
	}
	sl, err := g.repos.SupervisorLogs.GetByImmersion(ctx, im.ID)
	if err != nil {
		return nil, err
	}
	logs, err := g.repos.DiverLogs.ListByImmersion(ctx, im.ID)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(logs))
	for _, dl := range logs {
		done[dl.DiverID] = true
	}
	var pending []entity.CrewMember
	for _, m := range workflow.EligibleDivers(sl) {
		if !done[m.PersonID] {
			pending = append(pending, m)
		}
	}
	return &dto.EligibleDiversResponse{ImmersionID: im.ID, Divers: memberResponses(pending)}, nil
}
