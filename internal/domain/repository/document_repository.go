package repository

import (
	"context"

	"github.com/jhoicas/Buceo-api/internal/domain/entity"
)

// Las escrituras de Save son condicionales: solo aplican si el documento sigue en expectedState
// con expectedVersion. Si otro escritor ya lo firmó devuelven domain.ErrAlreadySigned; si cambió
// de otra forma, domain.ErrConflict. Con audit != nil la entrada se guarda en la misma transacción.

// PlanningDocumentRepository persistencia de HPT y Anexo Bravo; único por (operación, tipo).
type PlanningDocumentRepository interface {
	Create(ctx context.Context, doc *entity.PlanningDocument) error
	GetByID(ctx context.Context, id string) (*entity.PlanningDocument, error)
	GetByOperation(ctx context.Context, operationID string, kind entity.DocKind) (*entity.PlanningDocument, error)
	Save(ctx context.Context, doc *entity.PlanningDocument, expectedState entity.DocState, expectedVersion int, audit *entity.DocumentAudit) error
}

// SupervisorLogRepository persistencia de bitácoras de supervisor; única por inmersión.
type SupervisorLogRepository interface {
	Create(ctx context.Context, sl *entity.SupervisorLog) error
	GetByID(ctx context.Context, id string) (*entity.SupervisorLog, error)
	GetByImmersion(ctx context.Context, immersionID string) (*entity.SupervisorLog, error)
	Save(ctx context.Context, sl *entity.SupervisorLog, expectedState entity.DocState, expectedVersion int, audit *entity.DocumentAudit) error
}

// DiverLogRepository persistencia de bitácoras de buzo; única por (inmersión, buzo).
type DiverLogRepository interface {
	// Create falla con domain.ErrDuplicate si ya existe para el par (restricción única, no check-then-act).
	Create(ctx context.Context, dl *entity.DiverLog) error
	GetByID(ctx context.Context, id string) (*entity.DiverLog, error)
	Get(ctx context.Context, immersionID, diverID string) (*entity.DiverLog, error)
	ListByImmersion(ctx context.Context, immersionID string) ([]*entity.DiverLog, error)
	Save(ctx context.Context, dl *entity.DiverLog, expectedState entity.DocState, expectedVersion int, audit *entity.DocumentAudit) error
}

// AuditRepository lectura de la auditoría de anulaciones.
type AuditRepository interface {
	ListByDocument(ctx context.Context, kind entity.DocKind, documentID string) ([]*entity.DocumentAudit, error)
}
