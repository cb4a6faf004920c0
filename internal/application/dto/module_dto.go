package dto

import "time"

// AccessResponse módulos resueltos de una empresa.
type AccessResponse struct {
	CompanyID string          `json:"company_id"`
	Modules   map[string]bool `json:"modules"`
}

// ModuleActivationLogResponse entrada de la bitácora de activación.
type ModuleActivationLogResponse struct {
	ID         string    `json:"id"`
	ModuleName string    `json:"module_name"`
	Action     string    `json:"action"`
	ActorID    string    `json:"actor_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// ModuleActivationLogListResponse lista paginada de la bitácora.
type ModuleActivationLogListResponse struct {
	Items []ModuleActivationLogResponse `json:"items"`
	Page  PageResponse                  `json:"page"`
}
