package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Buceo-api/internal/application/documents"
	"github.com/jhoicas/Buceo-api/internal/application/readiness"
	"github.com/jhoicas/Buceo-api/internal/application/scheduling"
	"github.com/jhoicas/Buceo-api/internal/application/usecase"
	"github.com/jhoicas/Buceo-api/internal/domain/modules"
	"github.com/jhoicas/Buceo-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Buceo-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Buceo-api/pkg/jwt"
)

type api struct {
	t   *testing.T
	app *fiber.App
}

func newAPI(t *testing.T) api {
	t.Helper()
	store := memory.New()
	log := zerolog.Nop()
	mods := usecase.NewModuleService(store, modules.DefaultCatalog(), nil, log)
	sched := scheduling.New(store, store.Crews(), store.Immersions(), nil, log)
	gate := documents.NewGate(documents.Repositories{
		Operations:     store.Operations(),
		Immersions:     store.Immersions(),
		Crews:          store.Crews(),
		Assignments:    store,
		Planning:       store.Planning(),
		SupervisorLogs: store.SupervisorLogs(),
		DiverLogs:      store.DiverLogs(),
		Audits:         store,
	}, nil, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		CompanyUC:   usecase.NewCompanyUseCase(store.Companies()),
		Modules:     mods,
		CrewUC:      usecase.NewCrewUseCase(store.Crews()),
		OperationUC: usecase.NewOperationUseCase(store.Operations(), store.Immersions(), store.Crews()),
		Scheduler:   sched,
		Gate:        gate,
		Validator:   readiness.NewValidator(mods, sched, gate, store.Operations(), store.Immersions(), store.Crews(), 3, log),
		JWTSecret:   testJWTSecret,
		Log:         log,
	})
	return api{t: t, app: app}
}

func (a api) token(userID, role string) string {
	a.t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{
		UserID: userID, CompanyID: "acme", Role: role, CompanyType: "contractor",
	}, testIssuer, testExpMin)
	require.NoError(a.t, err)
	return "Bearer " + tok
}

func (a api) do(method, path, auth string, body any) (int, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

var alphaMembers = []map[string]string{
	{"person_id": "p-sup", "name": "Sofía", "role": "Supervisor"},
	{"person_id": "d-1", "name": "Andrés", "role": "Buzo Principal"},
	{"person_id": "d-2", "name": "Bruno", "role": "buzo"},
}

func TestRouter_AccesoPorDefecto(t *testing.T) {
	a := newAPI(t)
	status, body := a.do(http.MethodGet, "/api/access", a.token("u-1", "buzo"), nil)
	require.Equal(t, http.StatusOK, status)
	mods := body["modules"].(map[string]any)
	assert.Equal(t, true, mods["crews"])
	assert.Equal(t, true, mods["bitacoras"])
	assert.Equal(t, false, mods["planning_operations"])
}

func TestRouter_ActivarModuloSoloAdmin(t *testing.T) {
	a := newAPI(t)
	status, _ := a.do(http.MethodPost, "/api/modules/planning_operations/activate", a.token("u-1", "buzo"), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := a.do(http.MethodPost, "/api/modules/network_maintenance/activate", a.token("u-admin", "admin"), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "DEPENDENCY_UNMET", body["code"])

	status, body = a.do(http.MethodPost, "/api/modules/crews/deactivate", a.token("u-admin", "admin"), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "CORE_MODULE_PROTECTED", body["code"])

	status, _ = a.do(http.MethodPost, "/api/modules/desconocido/activate", a.token("u-admin", "admin"), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRouter_HPTRequiereModuloYEquipo(t *testing.T) {
	a := newAPI(t)
	sup := a.token("p-sup", "supervisor")
	admin := a.token("u-admin", "admin")

	status, op := a.do(http.MethodPost, "/api/operations", sup, map[string]string{"name": "Centro Chidhuapi"})
	require.Equal(t, http.StatusCreated, status)
	opID := op["id"].(string)

	status, body := a.do(http.MethodPost, "/api/operations/"+opID+"/documents/hpt", sup, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "MODULE_INACTIVE", body["code"])

	status, _ = a.do(http.MethodPost, "/api/modules/planning_operations/activate", admin, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = a.do(http.MethodPost, "/api/operations/"+opID+"/documents/hpt", sup, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "TEAM_REQUIRED", body["code"])

	status, crew := a.do(http.MethodPost, "/api/crews", sup, map[string]any{"name": "Alpha", "members": alphaMembers})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, crew["eligible"])

	status, _ = a.do(http.MethodPut, "/api/operations/"+opID+"/crew", sup, map[string]string{"crew_id": crew["id"].(string)})
	require.Equal(t, http.StatusOK, status)

	status, doc := a.do(http.MethodPost, "/api/operations/"+opID+"/documents/hpt", sup, map[string]any{"content": map[string]any{"tareas": []string{"fondeo"}}})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "draft", doc["state"])

	status, body = a.do(http.MethodPost, "/api/operations/"+opID+"/documents/hpt", sup, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", body["code"])
}

func TestRouter_AsignacionConConflicto(t *testing.T) {
	a := newAPI(t)
	sup := a.token("p-sup", "supervisor")

	_, crew := a.do(http.MethodPost, "/api/crews", sup, map[string]any{"name": "Alpha", "members": alphaMembers})
	crewID := crew["id"].(string)
	_, im1 := a.do(http.MethodPost, "/api/immersions", sup, map[string]any{"code": "IM-001", "date": "2024-06-01", "depth_meters": "18.5"})
	_, im2 := a.do(http.MethodPost, "/api/immersions", sup, map[string]any{"code": "IM-002", "date": "2024-06-01"})

	status, assigned := a.do(http.MethodPost, "/api/crews/assign", sup, map[string]string{"crew_id": crewID, "immersion_id": im1["id"].(string)})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2024-06-01", assigned["date"])
	assert.Equal(t, "active", assigned["status"])

	status, body := a.do(http.MethodPost, "/api/crews/assign", sup, map[string]string{"crew_id": crewID, "immersion_id": im2["id"].(string)})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "SCHEDULE_CONFLICT", body["code"])
	ctx := body["context"].(map[string]any)
	assert.Equal(t, im1["id"], ctx["conflicting_immersion_id"])

	status, avail := a.do(http.MethodPost, "/api/crews/availability", sup, map[string]string{"crew_id": crewID, "date": "2024-06-01"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, avail["available"])

	for i := 0; i < 2; i++ {
		status, _ = a.do(http.MethodPost, "/api/crews/unassign", sup, map[string]string{"crew_id": crewID, "immersion_id": im1["id"].(string)})
		assert.Equal(t, http.StatusOK, status)
	}
	status, avail = a.do(http.MethodPost, "/api/crews/availability", sup, map[string]string{"crew_id": crewID, "date": "2024-06-01"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, avail["available"])
}

func TestRouter_CicloDeBitacoras(t *testing.T) {
	a := newAPI(t)
	sup := a.token("p-sup", "supervisor")
	diver := a.token("d-2", "buzo")

	_, crew := a.do(http.MethodPost, "/api/crews", sup, map[string]any{"name": "Alpha", "members": alphaMembers})
	_, im := a.do(http.MethodPost, "/api/immersions", sup, map[string]any{"code": "IM-001", "date": "2024-06-01"})
	imID := im["id"].(string)
	status, _ := a.do(http.MethodPost, "/api/crews/assign", sup, map[string]string{"crew_id": crew["id"].(string), "immersion_id": imID})
	require.Equal(t, http.StatusOK, status)

	status, body := a.do(http.MethodPost, "/api/immersions/"+imID+"/diver-logs", diver, map[string]string{"diver_id": "d-2"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "DIVER_LOG_NOT_ELIGIBLE", body["code"])

	status, sl := a.do(http.MethodPost, "/api/immersions/"+imID+"/supervisor-log", sup, nil)
	require.Equal(t, http.StatusCreated, status)
	status, signed := a.do(http.MethodPost, "/api/documents/supervisor_log/"+sl["id"].(string)+"/sign", sup, map[string]any{
		"slot": "supervisor", "signer_name": "Sofía", "signature_image": []byte("png"),
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "signed", signed["state"])

	status, check := a.do(http.MethodGet, "/api/immersions/"+imID+"/diver-logs/d-2/eligibility", diver, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, check["allowed"])

	status, _ = a.do(http.MethodPost, "/api/immersions/"+imID+"/diver-logs", diver, map[string]string{"diver_id": "d-2"})
	require.Equal(t, http.StatusCreated, status)
	status, body = a.do(http.MethodPost, "/api/immersions/"+imID+"/diver-logs", diver, map[string]string{"diver_id": "d-2"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", body["code"])

	status, completion := a.do(http.MethodGet, "/api/immersions/"+imID+"/completion", sup, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, completion["expected"])
	assert.EqualValues(t, 1, completion["completed"])
	assert.Equal(t, "in_progress", completion["status"])
}

func TestRouter_ValidarAccion(t *testing.T) {
	a := newAPI(t)
	sup := a.token("p-sup", "supervisor")
	_, op := a.do(http.MethodPost, "/api/operations", sup, map[string]string{"name": "Faena"})

	status, body := a.do(http.MethodPost, "/api/validate", sup, map[string]string{"action_type": "create_hpt", "operation_id": op["id"].(string)})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["can_proceed"])
	assert.Equal(t, "MODULE_INACTIVE", body["reason"])

	status, body = a.do(http.MethodPost, "/api/validate", sup, map[string]string{"action_type": "create_immersion"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["can_proceed"])

	status, _ = a.do(http.MethodPost, "/api/validate", sup, map[string]string{"action_type": "borrar_todo"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_SinTokenRetorna401(t *testing.T) {
	a := newAPI(t)
	status, body := a.do(http.MethodGet, "/api/crews", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TOKEN", body["code"])
}
