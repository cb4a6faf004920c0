package entity

import "time"

// Tipos de empresa: la salmonera mandante y la empresa de servicios de buceo.
const (
	CompanyTypePrincipal  = "principal"
	CompanyTypeContractor = "contractor"
)

// Company representa una organización/tenant del sistema.
type Company struct {
	ID        string
	Name      string
	Type      string // ver constantes CompanyType*
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Módulos del catálogo.
const (
	ModuleImmersions         = "immersions"
	ModuleCrews              = "crews"
	ModuleBitacoras          = "bitacoras"
	ModulePlanningOperations = "planning_operations"
	ModuleNetworkMaintenance = "network_maintenance"
	ModuleReports            = "reports"
)

// Module describe un área funcional del catálogo. Los módulos core están siempre activos.
type Module struct {
	Name      string
	Category  string
	Core      bool
	DependsOn []string
}

// CompanyModule representa la activación de un módulo opcional en una empresa.
type CompanyModule struct {
	CompanyID   string
	ModuleName  string
	IsActive    bool
	ActivatedAt time.Time
	ExpiresAt   *time.Time // nil = sin vencimiento
	UpdatedAt   time.Time
}

// CompanyModules es el agregado de activaciones de una empresa, cargado y guardado por la persistencia.
type CompanyModules struct {
	CompanyID string
	Records   map[string]CompanyModule
}

// Acciones registradas en la bitácora de activación.
const (
	ModuleActionActivate   = "activate"
	ModuleActionDeactivate = "deactivate"
)

// ModuleActivationLog entrada inmutable de la bitácora de activación de módulos.
type ModuleActivationLog struct {
	ID         string
	CompanyID  string
	ModuleName string
	Action     string
	ActorID    string
	CreatedAt  time.Time
}
