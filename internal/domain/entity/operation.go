package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operation faena de buceo de una empresa; agrupa inmersiones y documentos de planificación.
type Operation struct {
	ID        string
	CompanyID string
	Name      string
	CrewID    *string // equipo asignado a la faena
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Immersion evento de buceo con fecha, profundidad y equipo asignado.
type Immersion struct {
	ID          string
	CompanyID   string
	OperationID *string
	Code        string
	Date        time.Time
	DepthMeters decimal.Decimal
	CrewID      *string // referencia a la asignación activa
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
