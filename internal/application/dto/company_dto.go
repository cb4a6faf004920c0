package dto

import "time"

// CreateCompanyRequest entrada para registrar una empresa. ID opcional (lo asigna el proveedor de identidad).
type CreateCompanyRequest struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"required,min=1,max=200"`
	Type string `json:"type" validate:"omitempty,oneof=principal contractor"`
}

// CompanyResponse salida de una empresa.
type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
