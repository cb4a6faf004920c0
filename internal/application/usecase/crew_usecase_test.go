package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Buceo-api/internal/application/dto"
	"github.com/jhoicas/Buceo-api/internal/application/usecase"
	"github.com/jhoicas/Buceo-api/internal/domain"
	"github.com/jhoicas/Buceo-api/internal/infrastructure/memory"
)

func TestCrewUseCase_NormalizaRolesHistoricos(t *testing.T) {
	uc := usecase.NewCrewUseCase(memory.New().Crews())

	c, err := uc.Create(context.Background(), "acme", dto.CreateCrewRequest{
		Name: "Alpha",
		Members: []dto.CrewMemberRequest{
			{PersonID: "p1", Name: "Sofía", Role: "Supervisor"},
			{PersonID: "p2", Name: "Andrés", Role: "Buzo Principal"},
			{PersonID: "p3", Name: "Bruno", Role: "buzo asistente"},
		},
	})
	require.NoError(t, err)
	assert.True(t, c.Eligible)
	require.Len(t, c.Members, 3)
	assert.Equal(t, "supervisor", c.Members[0].Role)
	assert.Equal(t, "lead-diver", c.Members[1].Role)
	assert.Equal(t, "support-diver", c.Members[2].Role)
}

func TestCrewUseCase_RolDesconocido(t *testing.T) {
	uc := usecase.NewCrewUseCase(memory.New().Crews())

	_, err := uc.Create(context.Background(), "acme", dto.CreateCrewRequest{
		Name:    "Alpha",
		Members: []dto.CrewMemberRequest{{PersonID: "p1", Role: "capitán"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCrewUseCase_MiembroDuplicado(t *testing.T) {
	uc := usecase.NewCrewUseCase(memory.New().Crews())
	ctx := context.Background()
	c, err := uc.Create(ctx, "acme", dto.CreateCrewRequest{
		Name:    "Alpha",
		Members: []dto.CrewMemberRequest{{PersonID: "p1", Role: "supervisor"}},
	})
	require.NoError(t, err)
	assert.False(t, c.Eligible)

	_, err = uc.AddMember(ctx, "acme", c.ID, dto.CrewMemberRequest{PersonID: "p1", Role: "buzo"})
	assert.ErrorIs(t, err, domain.ErrDuplicateMember)

	updated, err := uc.AddMember(ctx, "acme", c.ID, dto.CrewMemberRequest{PersonID: "p2", Role: "lead-diver"})
	require.NoError(t, err)
	assert.True(t, updated.Eligible)

	updated, err = uc.RemoveMember(ctx, "acme", c.ID, "p2")
	require.NoError(t, err)
	assert.False(t, updated.Eligible)
}

func TestCrewUseCase_ListaConFiltros(t *testing.T) {
	uc := usecase.NewCrewUseCase(memory.New().Crews())
	ctx := context.Background()
	eligible := []dto.CrewMemberRequest{{PersonID: "s", Role: "supervisor"}, {PersonID: "l", Role: "lead-diver"}}
	_, err := uc.Create(ctx, "acme", dto.CreateCrewRequest{Name: "Alpha", Members: eligible})
	require.NoError(t, err)
	beta, err := uc.Create(ctx, "acme", dto.CreateCrewRequest{Name: "Beta", Members: []dto.CrewMemberRequest{{PersonID: "x", Role: "support-diver"}}})
	require.NoError(t, err)
	_, err = uc.Create(ctx, "otra", dto.CreateCrewRequest{Name: "Gamma", Members: eligible})
	require.NoError(t, err)

	all, err := uc.List(ctx, "acme", dto.CrewListFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	onlyEligible, err := uc.List(ctx, "acme", dto.CrewListFilter{EligibleOnly: true})
	require.NoError(t, err)
	require.Len(t, onlyEligible.Items, 1)
	assert.Equal(t, "Alpha", onlyEligible.Items[0].Name)

	_, err = uc.SetActive(ctx, "acme", beta.ID, false)
	require.NoError(t, err)
	active, err := uc.List(ctx, "acme", dto.CrewListFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active.Items, 1)

	byRole, err := uc.List(ctx, "acme", dto.CrewListFilter{Role: "buzo asistente"})
	require.NoError(t, err)
	require.Len(t, byRole.Items, 1)
	assert.Equal(t, "Beta", byRole.Items[0].Name)

	other, err := uc.GetByID(ctx, "otra", beta.ID)
	require.NoError(t, err)
	assert.Nil(t, other)
}
