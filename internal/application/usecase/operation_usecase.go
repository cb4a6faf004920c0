package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Buceo-api/internal/application/dto"
	"github.com/jhoicas/Buceo-api/internal/domain"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
	"github.com/jhoicas/Buceo-api/internal/domain/repository"
)

// OperationUseCase faenas e inmersiones. La asignación de equipos a inmersiones vive en el scheduler.
type OperationUseCase struct {
	ops        repository.OperationRepository
	immersions repository.ImmersionRepository
	crews      repository.CrewRepository
}

// NewOperationUseCase construye el caso de uso.
func NewOperationUseCase(ops repository.OperationRepository, immersions repository.ImmersionRepository, crews repository.CrewRepository) *OperationUseCase {
	return &OperationUseCase{ops: ops, immersions: immersions, crews: crews}
}

// CreateOperation registra una faena sin equipo.
func (uc *OperationUseCase) CreateOperation(ctx context.Context, companyID string, in dto.CreateOperationRequest) (*dto.OperationResponse, error) {
	if companyID == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	op := &entity.Operation{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      strings.TrimSpace(in.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.ops.Create(ctx, op); err != nil {
		return nil, err
	}
	return toOperationResponse(op), nil
}

// GetOperation obtiene una faena de la empresa; nil si no existe.
func (uc *OperationUseCase) GetOperation(ctx context.Context, companyID, id string) (*dto.OperationResponse, error) {
	op, err := uc.ops.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if op == nil || op.CompanyID != companyID {
		return nil, nil
	}
	return toOperationResponse(op), nil
}

// SetOperationCrew fija el equipo de la faena; crew_id vacío lo libera.
// El equipo debe existir, pertenecer a la empresa y estar activo; la habilitación se exige al crear documentos.
func (uc *OperationUseCase) SetOperationCrew(ctx context.Context, companyID, operationID string, in dto.SetOperationCrewRequest) (*dto.OperationResponse, error) {
	op, err := uc.ops.GetByID(ctx, operationID)
	if err != nil {
		return nil, err
	}
	if op == nil || op.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	var crewID *string
	if id := strings.TrimSpace(in.CrewID); id != "" {
		c, err := uc.crews.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if c == nil || c.CompanyID != companyID {
			return nil, domain.ErrNotFound
		}
		if !c.Active {
			return nil, domain.Deny(domain.ReasonTeamRequired, "el equipo %s está inactivo", c.Name)
		}
		crewID = &id
	}
	if err := uc.ops.SetCrew(ctx, operationID, crewID); err != nil {
		return nil, err
	}
	return uc.GetOperation(ctx, companyID, operationID)
}

// CreateImmersion registra una inmersión, opcionalmente dentro de una faena de la misma empresa.
func (uc *OperationUseCase) CreateImmersion(ctx context.Context, companyID string, in dto.CreateImmersionRequest) (*dto.ImmersionResponse, error) {
	if companyID == "" || strings.TrimSpace(in.Code) == "" {
		return nil, domain.ErrInvalidInput
	}
	date, err := dto.ParseDate(in.Date)
	if err != nil || date.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	if in.DepthMeters.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	var opID *string
	if id := strings.TrimSpace(in.OperationID); id != "" {
		op, err := uc.ops.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if op == nil || op.CompanyID != companyID {
			return nil, domain.ErrNotFound
		}
		opID = &id
	}
	now := time.Now()
	im := &entity.Immersion{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		OperationID: opID,
		Code:        strings.TrimSpace(in.Code),
		Date:        entity.DateOnly(date),
		DepthMeters: in.DepthMeters,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.immersions.Create(ctx, im); err != nil {
		return nil, err
	}
	return ToImmersionResponse(im), nil
}

// GetImmersion obtiene una inmersión de la empresa; nil si no existe.
func (uc *OperationUseCase) GetImmersion(ctx context.Context, companyID, id string) (*dto.ImmersionResponse, error) {
	im, err := uc.immersions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if im == nil || im.CompanyID != companyID {
		return nil, nil
	}
	return ToImmersionResponse(im), nil
}

// ListImmersions inmersiones de una faena ordenadas por fecha.
func (uc *OperationUseCase) ListImmersions(ctx context.Context, companyID, operationID string) ([]dto.ImmersionResponse, error) {
	op, err := uc.ops.GetByID(ctx, operationID)
	if err != nil {
		return nil, err
	}
	if op == nil || op.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	list, err := uc.immersions.ListByOperation(ctx, operationID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ImmersionResponse, 0, len(list))
	for _, im := range list {
		out = append(out, *ToImmersionResponse(im))
	}
	return out, nil
}

func toOperationResponse(op *entity.Operation) *dto.OperationResponse {
	out := &dto.OperationResponse{
		ID:        op.ID,
		CompanyID: op.CompanyID,
		Name:      op.Name,
		CreatedAt: op.CreatedAt,
		UpdatedAt: op.UpdatedAt,
	}
	if op.CrewID != nil {
		out.CrewID = *op.CrewID
	}
	return out
}

// ToImmersionResponse convierte una inmersión a su salida HTTP.
func ToImmersionResponse(im *entity.Immersion) *dto.ImmersionResponse {
	out := &dto.ImmersionResponse{
		ID:          im.ID,
		CompanyID:   im.CompanyID,
		Code:        im.Code,
		Date:        dto.FormatDate(im.Date),
		DepthMeters: im.DepthMeters,
		CreatedAt:   im.CreatedAt,
	}
	if im.OperationID != nil {
		out.OperationID = *im.OperationID
	}
	if im.CrewID != nil {
		out.CrewID = *im.CrewID
	}
	return out
}
