package repository

import (
	"context"

	"github.com/jhoicas/Buceo-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company y su agregado de módulos (DIP).
// La implementación vive en infrastructure.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
}

// ModuleRepository persiste el agregado de activaciones por empresa y su bitácora inmutable.
type ModuleRepository interface {
	// GetActivation devuelve el agregado; nunca nil cuando err == nil (sin filas = agregado vacío).
	GetActivation(ctx context.Context, companyID string) (*entity.CompanyModules, error)
	// SaveActivation guarda el registro del módulo y agrega la entrada de bitácora en una sola transacción.
	SaveActivation(ctx context.Context, rec entity.CompanyModule, entry *entity.ModuleActivationLog) error
	ListActivationLog(ctx context.Context, companyID string, limit, offset int) ([]*entity.ModuleActivationLog, error)
}
