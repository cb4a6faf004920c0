package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Buceo-api/internal/application/dto"
	"github.com/jhoicas/Buceo-api/internal/domain"
)

// deniedStatus código HTTP por razón de negocio.
var deniedStatus = map[domain.Reason]int{
	domain.ReasonModuleInactive:      fiber.StatusForbidden,
	domain.ReasonTeamRequired:        fiber.StatusUnprocessableEntity,
	domain.ReasonScheduleConflict:    fiber.StatusConflict,
	domain.ReasonDiverLogNotEligible: fiber.StatusUnprocessableEntity,
	domain.ReasonAlreadySigned:       fiber.StatusConflict,
	domain.ReasonDependencyUnmet:     fiber.StatusUnprocessableEntity,
	domain.ReasonCoreModuleProtected: fiber.StatusUnprocessableEntity,
	domain.ReasonDuplicateMember:     fiber.StatusConflict,
}

// errorMapper traduce errores de dominio a respuestas HTTP. Lo comparten todos los handlers.
type errorMapper struct {
	log zerolog.Logger
}

func (m errorMapper) write(c *fiber.Ctx, err error) error {
	if d, ok := domain.AsDenied(err); ok {
		status, known := deniedStatus[d.Reason]
		if !known {
			status = fiber.StatusUnprocessableEntity
		}
		resp := dto.ErrorResponse{Code: string(d.Reason), Message: d.Message}
		if d.ConflictingImmersionID != "" || d.IntegrityWarning {
			resp.Context = map[string]string{}
			if d.ConflictingImmersionID != "" {
				resp.Context["conflicting_immersion_id"] = d.ConflictingImmersionID
			}
			if d.IntegrityWarning {
				resp.Context["integrity_warning"] = "true"
			}
		}
		return c.Status(status).JSON(resp)
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrUnknownModule):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_MODULE", Message: "módulo desconocido"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "no autorizado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el recurso ya existe"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "el recurso cambió; vuelva a cargarlo"})
	case errors.Is(err, context.DeadlineExceeded):
		return c.Status(fiber.StatusGatewayTimeout).JSON(dto.ErrorResponse{Code: "TIMEOUT", Message: "la operación excedió el tiempo límite"})
	}

	m.log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("falla de infraestructura")
	return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "UNAVAILABLE", Message: "servicio no disponible, intente más tarde"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func validation(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: msg})
}

// RequestTimeout pone un deadline al contexto de cada petición; los casos de uso lo respetan.
func RequestTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}
