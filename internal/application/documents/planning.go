package documents

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/jhoicas/Buceo-api/internal/application/dto"
	"github.com/jhoicas/Buceo-api/internal/domain"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
)

// CreatePlanningDocument crea el borrador de HPT o Anexo Bravo de una faena.
// Requiere un equipo asignado a la faena, activo y habilitado; uno por (faena, tipo).
func (g *Gate) CreatePlanningDocument(ctx context.Context, actor entity.Actor, kind entity.DocKind, operationID string, content json.RawMessage) (*dto.DocumentResponse, error) {
	if !kind.IsPlanning() {
		return nil, domain.ErrInvalidInput
	}
	if !canAuthor(actor) {
		return nil, domain.ErrForbidden
	}
	op, err := g.operation(ctx, actor.CompanyID, operationID)
	if err != nil {
		return nil, err
	}
	team, err := g.OperationTeam(ctx, op)
	if err != nil {
		return nil, err
	}
	if err := teamRequired(team); err != nil {
		return nil, err
	}

	d := &entity.PlanningDocument{
		Document:    newDocument(uuid.New().String(), op.CompanyID, actor.ID, kind, content, g.now()),
		OperationID: op.ID,
		CrewID:      team.Crew.ID,
	}
	if err := g.repos.Planning.Create(ctx, d); err != nil {
		return nil, err
	}
	g.log.Info().
		Str("kind", string(kind)).
		Str("operation_id", op.ID).
		Str("document_id", d.ID).
		Msg("documento de planificación creado")
	return toDocumentResponse(&record{doc: &d.Document, operationID: d.OperationID, crewID: d.CrewID}), nil
}

// PlanningState estado del documento de planificación de la faena; absent si no existe.
func (g *Gate) PlanningState(ctx context.Context, operationID string, kind entity.DocKind) (entity.DocState, error) {
	d, err := g.repos.Planning.GetByOperation(ctx, operationID, kind)
	if err != nil {
		return "", err
	}
	if d == nil {
		return entity.DocStateAbsent, nil
	}
	return d.State, nil
}
