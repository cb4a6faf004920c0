package repository

import (
	"context"

	"github.com/jhoicas/Buceo-api/internal/domain/entity"
)

// OperationRepository puerto de persistencia de faenas.
type OperationRepository interface {
	Create(ctx context.Context, op *entity.Operation) error
	GetByID(ctx context.Context, id string) (*entity.Operation, error)
	SetCrew(ctx context.Context, operationID string, crewID *string) error
}

// ImmersionRepository puerto de persistencia de inmersiones.
type ImmersionRepository interface {
	Create(ctx context.Context, im *entity.Immersion) error
	GetByID(ctx context.Context, id string) (*entity.Immersion, error)
	ListByOperation(ctx context.Context, operationID string) ([]*entity.Immersion, error)
}
