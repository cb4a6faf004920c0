package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Buceo-api/internal/application/dto"
	"github.com/jhoicas/Buceo-api/internal/application/usecase"
)

// OperationHandler faenas e inmersiones.
type OperationHandler struct {
	uc *usecase.OperationUseCase
	errorMapper
}

// NewOperationHandler construye el handler.
func NewOperationHandler(uc *usecase.OperationUseCase, m errorMapper) *OperationHandler {
	return &OperationHandler{uc: uc, errorMapper: m}
}

// CreateOperation godoc
// @Summary      Crear faena
// @Tags         operations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOperationRequest  true  "Faena"
// @Success      201   {object}  dto.OperationResponse
// @Router       /api/operations [post]
func (h *OperationHandler) CreateOperation(c *fiber.Ctx) error {
	var in dto.CreateOperationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Name == "" {
		return validation(c, "name es requerido")
	}
	out, err := h.uc.CreateOperation(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return h.write(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetOperation godoc
// @Summary      Obtener faena
// @Tags         operations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la faena"
// @Success      200  {object}  dto.OperationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/operations/{id} [get]
func (h *OperationHandler) GetOperation(c *fiber.Ctx) error {
	out, err := h.uc.GetOperation(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return h.write(c, err)
	}
	if out == nil {
		return notFound(c, "faena no encontrada")
	}
	return c.JSON(out)
}

// SetCrew godoc
// @Summary      Fijar equipo de la faena
// @Tags         operations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID de la faena"
// @Param        body  body  dto.SetOperationCrewRequest  true  "Equipo (vacío libera)"
// @Success      200   {object}  dto.OperationResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/operations/{id}/crew [put]
func (h *OperationHandler) SetCrew(c *fiber.Ctx) error {
	var in dto.SetOperationCrewRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.SetOperationCrew(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return h.write(c, err)
	}
	return c.JSON(out)
}

// ListImmersions godoc
// @Summary      Inmersiones de la faena
// @Tags         operations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la faena"
// @Success      200  {array}  dto.ImmersionResponse
// @Router       /api/operations/{id}/immersions [get]
func (h *OperationHandler) ListImmersions(c *fiber.Ctx) error {
	out, err := h.uc.ListImmersions(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return h.write(c, err)
	}
	return c.JSON(out)
}

// CreateImmersion godoc
// @Summary      Crear inmersión
// @Tags         immersions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateImmersionRequest  true  "Inmersión"
// @Success      201   {object}  dto.ImmersionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/immersions [post]
func (h *OperationHandler) CreateImmersion(c *fiber.Ctx) error {
	var in dto.CreateImmersionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Code == "" || in.Date == "" {
		return validation(c, "code y date son requeridos")
	}
	out, err := h.uc.CreateImmersion(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return h.write(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetImmersion godoc
// @Summary      Obtener inmersión
// @Tags         immersions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la inmersión"
// @Success      200  {object}  dto.ImmersionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/immersions/{id} [get]
func (h *OperationHandler) GetImmersion(c *fiber.Ctx) error {
	out, err := h.uc.GetImmersion(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return h.write(c, err)
	}
	if out == nil {
		return notFound(c, "inmersión no encontrada")
	}
	return c.JSON(out)
}
