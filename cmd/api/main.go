package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Buceo-api/internal/application/documents"
	"github.com/jhoicas/Buceo-api/internal/application/ports"
	"github.com/jhoicas/Buceo-api/internal/application/readiness"
	"github.com/jhoicas/Buceo-api/internal/application/scheduling"
	"github.com/jhoicas/Buceo-api/internal/application/usecase"
	"github.com/jhoicas/Buceo-api/internal/domain/modules"
	"github.com/jhoicas/Buceo-api/internal/domain/repository"
	"github.com/jhoicas/Buceo-api/internal/infrastructure/events"
	"github.com/jhoicas/Buceo-api/internal/infrastructure/memory"
	"github.com/jhoicas/Buceo-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Buceo-api/internal/interfaces/http"
	"github.com/jhoicas/Buceo-api/pkg/config"
	"github.com/jhoicas/Buceo-api/pkg/logger"
)

// stores puertos de persistencia según STORE_DRIVER.
type stores struct {
	companies   repository.CompanyRepository
	modules     repository.ModuleRepository
	crews       repository.CrewRepository
	assignments repository.AssignmentRepository
	operations  repository.OperationRepository
	immersions  repository.ImmersionRepository
	docs        documents.Repositories
}

func postgresStores(pool *pgxpool.Pool) stores {
	s := stores{
		companies:   postgres.NewCompanyRepository(pool),
		modules:     postgres.NewModuleRepository(pool),
		crews:       postgres.NewCrewRepository(pool),
		assignments: postgres.NewAssignmentRepository(pool),
		operations:  postgres.NewOperationRepository(pool),
		immersions:  postgres.NewImmersionRepository(pool),
	}
	s.docs = documents.Repositories{
		Operations:     s.operations,
		Immersions:     s.immersions,
		Crews:          s.crews,
		Assignments:    s.assignments,
		Planning:       postgres.NewPlanningRepository(pool),
		SupervisorLogs: postgres.NewSupervisorLogRepository(pool),
		DiverLogs:      postgres.NewDiverLogRepository(pool),
		Audits:         postgres.NewAuditRepository(pool),
	}
	return s
}

func memoryStores() stores {
	m := memory.New()
	s := stores{
		companies:   m.Companies(),
		modules:     m,
		crews:       m.Crews(),
		assignments: m,
		operations:  m.Operations(),
		immersions:  m.Immersions(),
	}
	s.docs = documents.Repositories{
		Operations:     s.operations,
		Immersions:     s.immersions,
		Crews:          s.crews,
		Assignments:    m,
		Planning:       m.Planning(),
		SupervisorLogs: m.SupervisorLogs(),
		DiverLogs:      m.DiverLogs(),
		Audits:         m,
	}
	return s
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	var st stores
	if cfg.App.StoreDriver == "memory" {
		log.Warn().Msg("STORE_DRIVER=memory: los datos no se persisten")
		st = memoryStores()
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		st = postgresStores(pool)
	}

	// Notificaciones: Redis Streams si está configurado, si no quedan en el log.
	var publisher ports.EventPublisher = events.NewLogPublisher(log.Component("events"))
	if cfg.Redis.Enabled() {
		client := events.NewRedisClient(cfg.Redis)
		defer client.Close()
		publisher = events.NewRedisStreamPublisher(client, cfg.Redis.Stream)
		log.Info().Str("addr", cfg.Redis.Addr).Str("stream", cfg.Redis.Stream).Msg("eventos hacia Redis")
	}
	dispatcher := events.NewDispatcher(publisher, events.DispatcherConfig{Buffer: cfg.Events.Buffer}, log.Component("dispatcher"))

	moduleSvc := usecase.NewModuleService(st.modules, modules.DefaultCatalog(), dispatcher, log.Component("modules"))
	scheduler := scheduling.New(st.assignments, st.crews, st.immersions, dispatcher, log.Component("scheduler"))
	gate := documents.NewGate(st.docs, dispatcher, log.Component("documents"))
	validator := readiness.NewValidator(moduleSvc, scheduler, gate, st.operations, st.immersions, st.crews,
		cfg.Ops.RecommendedCrewSize, log.Component("readiness"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Buceo API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CompanyUC:      usecase.NewCompanyUseCase(st.companies),
		Modules:        moduleSvc,
		CrewUC:         usecase.NewCrewUseCase(st.crews),
		OperationUC:    usecase.NewOperationUseCase(st.operations, st.immersions, st.crews),
		Scheduler:      scheduler,
		Gate:           gate,
		Validator:      validator,
		JWTSecret:      cfg.JWT.Secret,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Log:            log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// Vaciar la cola de eventos después de cortar el tráfico entrante.
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("cola de eventos sin vaciar")
	}

	log.Info().Msg("aplicación detenida")
}
