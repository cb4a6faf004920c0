package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Buceo-api/internal/application/dto"
	"github.com/jhoicas/Buceo-api/internal/application/readiness"
)

// ValidateHandler validador de preparación de faenas.
type ValidateHandler struct {
	validator *readiness.Validator
	errorMapper
}

// NewValidateHandler construye el handler.
func NewValidateHandler(v *readiness.Validator, m errorMapper) *ValidateHandler {
	return &ValidateHandler{validator: v, errorMapper: m}
}

// Validate godoc
// @Summary      ¿Puede proceder la acción?
// @Description  Las denegaciones de negocio vuelven con 200 y can_proceed=false; solo las fallas de infraestructura son error.
// @Tags         validate
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ValidateActionRequest  true  "Acción"
// @Success      200   {object}  dto.ValidateActionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/validate [post]
func (h *ValidateHandler) Validate(c *fiber.Ctx) error {
	var in dto.ValidateActionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.ActionType == "" {
		return validation(c, "action_type es requerido")
	}
	date, err := dto.ParseDate(in.Date)
	if err != nil {
		return validation(c, err.Error())
	}
	out, err := h.validator.Validate(c.UserContext(), readiness.Request{
		ActionType:  in.ActionType,
		CompanyID:   GetCompanyID(c),
		OperationID: in.OperationID,
		ImmersionID: in.ImmersionID,
		CrewID:      in.CrewID,
		DiverID:     in.DiverID,
		Date:        date,
	})
	if err != nil {
		return h.write(c, err)
	}
	return c.JSON(out)
}
