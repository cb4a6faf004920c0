package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Buceo-api/internal/application/documents"
	"github.com/jhoicas/Buceo-api/internal/application/readiness"
	"github.com/jhoicas/Buceo-api/internal/application/scheduling"
	"github.com/jhoicas/Buceo-api/internal/application/usecase"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC      *usecase.CompanyUseCase
	Modules        *usecase.ModuleService
	CrewUC         *usecase.CrewUseCase
	OperationUC    *usecase.OperationUseCase
	Scheduler      *scheduling.Scheduler
	Gate           *documents.Gate
	Validator      *readiness.Validator
	JWTSecret      string
	RequestTimeout time.Duration
	Log            zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	errs := errorMapper{log: deps.Log}
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), RequestTimeout(deps.RequestTimeout))
	adminOnly := RequireRole(entity.UserRoleAdmin)
	authors := RequireRole(entity.UserRoleAdmin, entity.UserRoleSupervisor)

	// Empresas
	companyHandler := NewCompanyHandler(deps.CompanyUC, errs)
	protected.Post("/companies", adminOnly, companyHandler.Create)
	protected.Get("/companies/:id", companyHandler.GetByID)

	// Módulos
	moduleHandler := NewModuleHandler(deps.Modules, errs)
	protected.Get("/access", moduleHandler.Access)
	protected.Get("/modules/log", moduleHandler.Log)
	protected.Post("/modules/:name/activate", adminOnly, moduleHandler.Activate)
	protected.Post("/modules/:name/deactivate", adminOnly, moduleHandler.Deactivate)

	// Equipos y agenda
	crewHandler := NewCrewHandler(deps.CrewUC, deps.Scheduler, errs)
	crews := protected.Group("/crews", RequireModule(entity.ModuleCrews, deps.Modules, deps.Log))
	crews.Get("/", crewHandler.List)
	crews.Post("/", authors, crewHandler.Create)
	crews.Post("/availability", crewHandler.Availability)
	crews.Post("/assign", authors, crewHandler.Assign)
	crews.Post("/unassign", authors, crewHandler.Unassign)
	crews.Get("/:id", crewHandler.GetByID)
	crews.Put("/:id/active", authors, crewHandler.SetActive)
	crews.Post("/:id/members", authors, crewHandler.AddMember)
	crews.Delete("/:id/members/:personId", authors, crewHandler.RemoveMember)

	// Faenas
	operationHandler := NewOperationHandler(deps.OperationUC, errs)
	documentHandler := NewDocumentHandler(deps.Gate, errs)
	operations := protected.Group("/operations")
	operations.Post("/", authors, operationHandler.CreateOperation)
	operations.Get("/:id", operationHandler.GetOperation)
	operations.Put("/:id/crew", authors, operationHandler.SetCrew)
	operations.Get("/:id/immersions", operationHandler.ListImmersions)
	operations.Post("/:id/documents/:kind",
		RequireModule(entity.ModulePlanningOperations, deps.Modules, deps.Log), documentHandler.CreatePlanning)

	// Inmersiones y bitácoras
	immersions := protected.Group("/immersions", RequireModule(entity.ModuleImmersions, deps.Modules, deps.Log))
	immersions.Post("/", authors, operationHandler.CreateImmersion)
	immersions.Get("/:id", operationHandler.GetImmersion)
	bitacoras := RequireModule(entity.ModuleBitacoras, deps.Modules, deps.Log)
	immersions.Get("/:id/completion", bitacoras, documentHandler.Completion)
	immersions.Get("/:id/eligible-divers", bitacoras, documentHandler.EligibleDivers)
	immersions.Post("/:id/supervisor-log", bitacoras, documentHandler.CreateSupervisorLog)
	immersions.Post("/:id/diver-logs", bitacoras, documentHandler.CreateDiverLog)
	immersions.Get("/:id/diver-logs/:diverId/eligibility", bitacoras, documentHandler.DiverLogEligibility)

	// Documentos
	docs := protected.Group("/documents")
	docs.Get("/:kind/:id", documentHandler.Get)
	docs.Get("/:kind/:id/audit", documentHandler.Audit)
	docs.Post("/:kind/:id/sign", documentHandler.Sign)
	docs.Post("/:kind/:id/annul", adminOnly, documentHandler.Annul)

	// Validador
	validateHandler := NewValidateHandler(deps.Validator, errs)
	protected.Post("/validate", validateHandler.Validate)
}
