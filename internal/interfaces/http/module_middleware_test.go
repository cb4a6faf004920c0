package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Buceo-api/internal/application/dto"
	"github.com/jhoicas/Buceo-api/internal/domain"
	apphttp "github.com/jhoicas/Buceo-api/internal/interfaces/http"
)

type stubChecker struct {
	active bool
	err    error
	calls  int
}

func (s *stubChecker) HasActiveModule(context.Context, string, string) (bool, error) {
	s.calls++
	return s.active, s.err
}

func moduleApp(t *testing.T, checker *stubChecker) (*fiber.App, string) {
	t.Helper()
	app := fiber.New()
	app.Get("/gated",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireModule("planning_operations", checker, zerolog.Nop()),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) },
	)
	return app, tokenForRole(t, "supervisor")
}

func callGated(t *testing.T, app *fiber.App, token string) (int, dto.ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	req.Header.Set("Authorization", token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body dto.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

func TestRequireModule_ModuloActivoPasa(t *testing.T) {
	checker := &stubChecker{active: true}
	app, tok := moduleApp(t, checker)

	status, _ := callGated(t, app, tok)
	assert.Equal(t, fiber.StatusNoContent, status)
	assert.Equal(t, 1, checker.calls)
}

func TestRequireModule_ModuloInactivo403(t *testing.T) {
	app, tok := moduleApp(t, &stubChecker{active: false})

	status, body := callGated(t, app, tok)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "MODULE_INACTIVE", body.Code)
	assert.Equal(t, "planning_operations", body.Context["module"])
}

func TestRequireModule_FallaDeConsulta503(t *testing.T) {
	app, tok := moduleApp(t, &stubChecker{active: true, err: domain.Infra("get activation", errors.New("conn refused"))})

	status, body := callGated(t, app, tok)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "MODULE_CHECK_FAILED", body.Code)
	assert.NotContains(t, body.Message, "conn refused")
}
