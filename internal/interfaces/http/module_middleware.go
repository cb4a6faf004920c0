package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Buceo-api/internal/application/dto"
)

// moduleChecker lo implementa *usecase.ModuleService.
type moduleChecker interface {
	HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error)
}

// RequireModule corta la petición si la empresa del token no tiene moduleName activo.
// Va después de AuthMiddleware. Respuestas: 401 sin empresa, 403 MODULE_INACTIVE,
// 503 MODULE_CHECK_FAILED si la consulta falla (nunca se asume activo).
func RequireModule(moduleName string, checker moduleChecker, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID := GetCompanyID(c)
		if companyID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token sin empresa"})
		}

		active, err := checker.HasActiveModule(c.UserContext(), companyID, moduleName)
		switch {
		case err != nil:
			log.Error().Err(err).Str("company_id", companyID).Str("module", moduleName).Msg("verificación de módulo falló")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "MODULE_CHECK_FAILED",
				Message: "no se pudo verificar el módulo, intente más tarde",
				Context: map[string]string{"module": moduleName},
			})
		case !active:
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "MODULE_INACTIVE",
				Message: "el módulo " + moduleName + " no está activo para la empresa",
				Context: map[string]string{"module": moduleName},
			})
		}
		return c.Next()
	}
}
