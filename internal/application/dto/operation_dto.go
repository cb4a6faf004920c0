package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOperationRequest entrada para crear una faena.
type CreateOperationRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// SetOperationCrewRequest asigna (o libera con crew_id vacío) el equipo de la faena.
type SetOperationCrewRequest struct {
	CrewID string `json:"crew_id"`
}

// OperationResponse salida de una faena.
type OperationResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	CrewID    string    `json:"crew_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateImmersionRequest entrada para crear una inmersión.
type CreateImmersionRequest struct {
	OperationID string          `json:"operation_id"`
	Code        string          `json:"code" validate:"required"`
	Date        string          `json:"date" validate:"required"`
	DepthMeters decimal.Decimal `json:"depth_meters"`
}

// ImmersionResponse salida de una inmersión.
type ImmersionResponse struct {
	ID          string          `json:"id"`
	CompanyID   string          `json:"company_id"`
	OperationID string          `json:"operation_id,omitempty"`
	Code        string          `json:"code"`
	Date        string          `json:"date"`
	DepthMeters decimal.Decimal `json:"depth_meters"`
	CrewID      string          `json:"crew_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
