package usecase_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Buceo-api/internal/application/usecase"
	"github.com/jhoicas/Buceo-api/internal/domain"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
	"github.com/jhoicas/Buceo-api/internal/domain/modules"
	"github.com/jhoicas/Buceo-api/internal/infrastructure/memory"
)

func newModuleService(t *testing.T) (*memory.Store, *usecase.ModuleService) {
	t.Helper()
	store := memory.New()
	return store, usecase.NewModuleService(store, modules.DefaultCatalog(), nil, zerolog.Nop())
}

func TestModuleService_CoreSiempreActivos(t *testing.T) {
	store, svc := newModuleService(t)
	ctx := context.Background()
	store.SetActivationRow(entity.CompanyModule{CompanyID: "acme", ModuleName: entity.ModuleCrews, IsActive: false})

	access, err := svc.Access(ctx, "acme")
	require.NoError(t, err)
	assert.True(t, access[entity.ModuleImmersions])
	assert.True(t, access[entity.ModuleCrews])
	assert.True(t, access[entity.ModuleBitacoras])
	assert.False(t, access[entity.ModulePlanningOperations])
}

func TestModuleService_DependenciaNoSatisfechaNoCambiaNada(t *testing.T) {
	_, svc := newModuleService(t)
	ctx := context.Background()
	before, err := svc.Access(ctx, "acme")
	require.NoError(t, err)

	_, err = svc.Activate(ctx, "acme", entity.ModuleNetworkMaintenance, "u-admin")
	assert.ErrorIs(t, err, domain.ErrDependencyUnmet)

	after, err := svc.Access(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	log, err := svc.ActivationLog(ctx, "acme", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, log)
}

func TestModuleService_ActivarYDesactivar(t *testing.T) {
	_, svc := newModuleService(t)
	ctx := context.Background()

	access, err := svc.Activate(ctx, "acme", entity.ModulePlanningOperations, "u-admin")
	require.NoError(t, err)
	assert.True(t, access[entity.ModulePlanningOperations])

	access, err = svc.Activate(ctx, "acme", entity.ModuleNetworkMaintenance, "u-admin")
	require.NoError(t, err)
	assert.True(t, access[entity.ModuleNetworkMaintenance])

	// planning_operations sostiene a network_maintenance.
	_, err = svc.Deactivate(ctx, "acme", entity.ModulePlanningOperations, "u-admin")
	assert.ErrorIs(t, err, domain.ErrDependencyUnmet)

	_, err = svc.Deactivate(ctx, "acme", entity.ModuleNetworkMaintenance, "u-admin")
	require.NoError(t, err)
	access, err = svc.Deactivate(ctx, "acme", entity.ModulePlanningOperations, "u-admin")
	require.NoError(t, err)
	assert.False(t, access[entity.ModulePlanningOperations])

	log, err := svc.ActivationLog(ctx, "acme", 10, 0)
	require.NoError(t, err)
	require.Len(t, log, 4)
	assert.Equal(t, entity.ModuleActionDeactivate, log[0].Action)
	assert.Equal(t, entity.ModulePlanningOperations, log[0].ModuleName)
	assert.Equal(t, "u-admin", log[0].ActorID)
}

func TestModuleService_CoreProtegido(t *testing.T) {
	_, svc := newModuleService(t)

	_, err := svc.Deactivate(context.Background(), "acme", entity.ModuleBitacoras, "u-admin")
	assert.ErrorIs(t, err, domain.ErrCoreModuleProtected)
}

func TestModuleService_ModuloDesconocido(t *testing.T) {
	_, svc := newModuleService(t)

	_, err := svc.Activate(context.Background(), "acme", "teleportacion", "u-admin")
	assert.ErrorIs(t, err, domain.ErrUnknownModule)

	ok, err := svc.HasActiveModule(context.Background(), "acme", "teleportacion")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestModuleService_HasActiveModuleArgumentosVacios(t *testing.T) {
	_, svc := newModuleService(t)
	ctx := context.Background()

	_, err := svc.HasActiveModule(ctx, "", entity.ModuleCrews)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.False(t, domain.IsInfrastructure(err))

	_, err = svc.HasActiveModule(ctx, "acme", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
