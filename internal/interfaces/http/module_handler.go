package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Buceo-api/internal/application/dto"
	"github.com/jhoicas/Buceo-api/internal/application/usecase"
)

// ModuleHandler acceso a módulos y su activación.
type ModuleHandler struct {
	svc *usecase.ModuleService
	errorMapper
}

// NewModuleHandler construye el handler.
func NewModuleHandler(svc *usecase.ModuleService, m errorMapper) *ModuleHandler {
	return &ModuleHandler{svc: svc, errorMapper: m}
}

// Access godoc
// @Summary      Módulos activos de la empresa
// @Tags         modules
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AccessResponse
// @Router       /api/access [get]
func (h *ModuleHandler) Access(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	access, err := h.svc.Access(c.UserContext(), companyID)
	if err != nil {
		return h.write(c, err)
	}
	return c.JSON(dto.AccessResponse{CompanyID: companyID, Modules: access})
}

// Activate godoc
// @Summary      Activar módulo opcional
// @Tags         modules
// @Security     Bearer
// @Produce      json
// @Param        name  path  string  true  "Nombre del módulo"
// @Success      200  {object}  dto.AccessResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/modules/{name}/activate [post]
func (h *ModuleHandler) Activate(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	access, err := h.svc.Activate(c.UserContext(), companyID, c.Params("name"), GetUserID(c))
	if err != nil {
		return h.write(c, err)
	}
	return c.JSON(dto.AccessResponse{CompanyID: companyID, Modules: access})
}

// Deactivate godoc
// @Summary      Desactivar módulo opcional
// @Tags         modules
// @Security     Bearer
// @Produce      json
// @Param        name  path  string  true  "Nombre del módulo"
// @Success      200  {object}  dto.AccessResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/modules/{name}/deactivate [post]
func (h *ModuleHandler) Deactivate(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	access, err := h.svc.Deactivate(c.UserContext(), companyID, c.Params("name"), GetUserID(c))
	if err != nil {
		return h.write(c, err)
	}
	return c.JSON(dto.AccessResponse{CompanyID: companyID, Modules: access})
}

// Log godoc
// @Summary      Bitácora de activación de módulos
// @Tags         modules
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200  {object}  dto.ModuleActivationLogListResponse
// @Router       /api/modules/log [get]
func (h *ModuleHandler) Log(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	list, err := h.svc.ActivationLog(c.UserContext(), GetCompanyID(c), page.Limit, page.Offset)
	if err != nil {
		return h.write(c, err)
	}
	items := make([]dto.ModuleActivationLogResponse, 0, len(list))
	for _, e := range list {
		items = append(items, dto.ModuleActivationLogResponse{
			ID:         e.ID,
			ModuleName: e.ModuleName,
			Action:     e.Action,
			ActorID:    e.ActorID,
			CreatedAt:  e.CreatedAt,
		})
	}
	return c.JSON(dto.ModuleActivationLogListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}
