package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Buceo-api/internal/application/dto"
	"github.com/jhoicas/Buceo-api/internal/application/scheduling"
	"github.com/jhoicas/Buceo-api/internal/application/usecase"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
)

// CrewHandler directorio de equipos y agenda de asignaciones.
type CrewHandler struct {
	uc        *usecase.CrewUseCase
	scheduler *scheduling.Scheduler
	errorMapper
}

// NewCrewHandler construye el handler.
func NewCrewHandler(uc *usecase.CrewUseCase, scheduler *scheduling.Scheduler, m errorMapper) *CrewHandler {
	return &CrewHandler{uc: uc, scheduler: scheduler, errorMapper: m}
}

// Create godoc
// @Summary      Crear equipo de buceo
// @Tags         crews
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCrewRequest  true  "Equipo e integrantes"
// @Success      201   {object}  dto.CrewResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/crews [post]
func (h *CrewHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCrewRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Name == "" {
		return validation(c, "name es requerido")
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return h.write(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar equipos
// @Tags         crews
// @Security     Bearer
// @Produce      json
// @Param        active    query  bool    false  "Solo activos"
// @Param        eligible  query  bool    false  "Solo habilitados"
// @Param        role      query  string  false  "Con algún integrante de este rol"
// @Param        q         query  string  false  "Búsqueda por nombre"
// @Param        limit     query  int     false  "Límite"   default(20)
// @Param        offset    query  int     false  "Offset"   default(0)
// @Success      200  {object}  dto.CrewListResponse
// @Router       /api/crews [get]
func (h *CrewHandler) List(c *fiber.Ctx) error {
	f := dto.CrewListFilter{
		ActiveOnly:   c.QueryBool("active", false),
		EligibleOnly: c.QueryBool("eligible", false),
		Role:         c.Query("role"),
		Search:       c.Query("q"),
		PageRequest:  dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)},
	}
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), f)
	if err != nil {
		return h.write(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener equipo
// @Tags         crews
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del equipo"
// @Success      200  {object}  dto.CrewResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/crews/{id} [get]
func (h *CrewHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return h.write(c, err)
	}
	if out == nil {
		return notFound(c, "equipo no encontrado")
	}
	return c.JSON(out)
}

// AddMember godoc
// @Summary      Agregar integrante
// @Tags         crews
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del equipo"
// @Param        body  body  dto.CrewMemberRequest  true  "Integrante"
// @Success      200   {object}  dto.CrewResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/crews/{id}/members [post]
func (h *CrewHandler) AddMember(c *fiber.Ctx) error {
	var in dto.CrewMemberRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.PersonID == "" || in.Role == "" {
		return validation(c, "person_id y role son requeridos")
	}
	out, err := h.uc.AddMember(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return h.write(c, err)
	}
	return c.JSON(out)
}

// RemoveMember godoc
// @Summary      Quitar integrante
// @Tags         crews
// @Security     Bearer
// @Produce      json
// @Param        id        path  string  true  "ID del equipo"
// @Param        personId  path  string  true  "ID de la persona"
// @Success      200  {object}  dto.CrewResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/crews/{id}/members/{personId} [delete]
func (h *CrewHandler) RemoveMember(c *fiber.Ctx) error {
	out, err := h.uc.RemoveMember(c.UserContext(), GetCompanyID(c), c.Params("id"), c.Params("personId"))
	if err != nil {
		return h.write(c, err)
	}
	return c.JSON(out)
}

// SetActive godoc
// @Summary      Activar o dar de baja un equipo
// @Tags         crews
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true  "ID del equipo"
// @Param        active  query  bool    true  "Nuevo estado"
// @Success      200  {object}  dto.CrewResponse
// @Router       /api/crews/{id}/active [put]
func (h *CrewHandler) SetActive(c *fiber.Ctx) error {
	out, err := h.uc.SetActive(c.UserContext(), GetCompanyID(c), c.Params("id"), c.QueryBool("active", true))
	if err != nil {
		return h.write(c, err)
	}
	return c.JSON(out)
}

// Availability godoc
// @Summary      Disponibilidad del equipo en una fecha
// @Tags         schedule
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AvailabilityRequest  true  "Equipo y fecha"
// @Success      200   {object}  dto.AvailabilityResponse
// @Router       /api/crews/availability [post]
func (h *CrewHandler) Availability(c *fiber.Ctx) error {
	var in dto.AvailabilityRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	date, err := dto.ParseDate(in.Date)
	if err != nil || date.IsZero() || in.CrewID == "" {
		return validation(c, "crew_id y date (YYYY-MM-DD) son requeridos")
	}
	owned, err := h.uc.GetByID(c.UserContext(), GetCompanyID(c), in.CrewID)
	if err != nil {
		return h.write(c, err)
	}
	if owned == nil {
		return notFound(c, "equipo no encontrado")
	}
	avail, err := h.scheduler.CheckAvailability(c.UserContext(), in.CrewID, date, in.ExcludeImmersionID)
	if err != nil {
		return h.write(c, err)
	}
	return c.JSON(dto.AvailabilityResponse{
		Available:              avail.Available,
		ConflictingImmersionID: avail.ConflictingImmersionID,
		IntegrityWarning:       avail.IntegrityWarning,
	})
}

// Assign godoc
// @Summary      Asignar equipo a inmersión
// @Tags         schedule
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AssignCrewRequest  true  "Equipo, inmersión y fecha opcional"
// @Success      200   {object}  dto.AssignmentResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/crews/assign [post]
func (h *CrewHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignCrewRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.CrewID == "" || in.ImmersionID == "" {
		return validation(c, "crew_id e immersion_id son requeridos")
	}
	date, err := dto.ParseDate(in.Date)
	if err != nil {
		return validation(c, err.Error())
	}
	a, err := h.scheduler.Assign(c.UserContext(), GetCompanyID(c), in.CrewID, in.ImmersionID, date)
	if err != nil {
		return h.write(c, err)
	}
	return c.JSON(dto.AssignmentResponse{
		ID:          a.ID,
		CrewID:      a.CrewID,
		ImmersionID: a.ImmersionID,
		Date:        dto.FormatDate(a.Date),
		Status:      a.Status,
	})
}

// Unassign godoc
// @Summary      Liberar equipo de inmersión (idempotente)
// @Tags         schedule
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AssignCrewRequest  true  "Equipo e inmersión"
// @Success      200   {object}  dto.AssignmentResponse
// @Router       /api/crews/unassign [post]
func (h *CrewHandler) Unassign(c *fiber.Ctx) error {
	var in dto.AssignCrewRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.CrewID == "" || in.ImmersionID == "" {
		return validation(c, "crew_id e immersion_id son requeridos")
	}
	if _, err := h.scheduler.Unassign(c.UserContext(), GetCompanyID(c), in.CrewID, in.ImmersionID); err != nil {
		return h.write(c, err)
	}
	return c.JSON(dto.AssignmentResponse{
		CrewID:      in.CrewID,
		ImmersionID: in.ImmersionID,
		Status:      entity.AssignmentCancelled,
	})
}
