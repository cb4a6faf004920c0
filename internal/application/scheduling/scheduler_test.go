package scheduling_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Buceo-api/internal/application/ports"
	"github.com/jhoicas/Buceo-api/internal/application/scheduling"
	"github.com/jhoicas/Buceo-api/internal/domain"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
	"github.com/jhoicas/Buceo-api/internal/infrastructure/memory"
)

type captureNotifier struct {
	mu     sync.Mutex
	events []ports.Event
}

func (n *captureNotifier) Notify(evt ports.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, evt)
}

func (n *captureNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seed(t *testing.T) (*memory.Store, *scheduling.Scheduler, *captureNotifier) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Crews().Create(ctx, &entity.Crew{
		ID:        "alpha",
		CompanyID: "acme",
		Name:      "Alpha",
		Active:    true,
		Members: []entity.CrewMember{
			{PersonID: "p-sup", Role: entity.CrewRoleSupervisor},
			{PersonID: "p-lead", Role: entity.CrewRoleLeadDiver},
		},
	}))
	require.NoError(t, store.Crews().Create(ctx, &entity.Crew{
		ID:        "beta",
		CompanyID: "acme",
		Name:      "Beta",
		Active:    true,
		Members: []entity.CrewMember{
			{PersonID: "p-sup2", Role: entity.CrewRoleSupervisor},
			{PersonID: "p-lead2", Role: entity.CrewRoleLeadDiver},
		},
	}))
	for _, im := range []struct {
		id   string
		date time.Time
	}{
		{"IM-001", day(2024, 6, 1)},
		{"IM-002", day(2024, 6, 1)},
		{"IM-003", day(2024, 6, 2)},
	} {
		require.NoError(t, store.Immersions().Create(ctx, &entity.Immersion{ID: im.id, CompanyID: "acme", Code: im.id, Date: im.date}))
	}
	n := &captureNotifier{}
	return store, scheduling.New(store, store.Crews(), store.Immersions(), n, zerolog.Nop()), n
}

func TestScheduler_EscenarioAlpha(t *testing.T) {
	store, s, n := seed(t)
	ctx := context.Background()

	_, err := s.Assign(ctx, "acme", "alpha", "IM-001", day(2024, 6, 1))
	require.NoError(t, err)

	_, err = s.Assign(ctx, "acme", "alpha", "IM-002", day(2024, 6, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrScheduleConflict))
	denied, ok := domain.AsDenied(err)
	require.True(t, ok)
	assert.Equal(t, "IM-001", denied.ConflictingImmersionID)

	_, err = s.Assign(ctx, "acme", "alpha", "IM-003", day(2024, 6, 2))
	require.NoError(t, err)

	assert.Equal(t, 1, store.CountActive("alpha", day(2024, 6, 1)))
	assert.Equal(t, 1, store.CountActive("alpha", day(2024, 6, 2)))
	assert.Equal(t, []string{ports.EventCrewAssigned, ports.EventCrewAssigned}, n.types())

	im, err := store.Immersions().GetByID(ctx, "IM-001")
	require.NoError(t, err)
	require.NotNil(t, im.CrewID)
	assert.Equal(t, "alpha", *im.CrewID)
}

func TestScheduler_AsignacionesConcurrentesSoloUnaGana(t *testing.T) {
	store, s, _ := seed(t)
	ctx := context.Background()
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("IM-C%02d", i)
		require.NoError(t, store.Immersions().Create(ctx, &entity.Immersion{ID: id, CompanyID: "acme", Code: id, Date: day(2024, 7, 1)}))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Assign(ctx, "acme", "alpha", fmt.Sprintf("IM-C%02d", i), day(2024, 7, 1))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrScheduleConflict):
				conflicts++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 7, conflicts)
	assert.Equal(t, 1, store.CountActive("alpha", day(2024, 7, 1)))
}

func TestScheduler_ReasignarMismaInmersionActualizaFecha(t *testing.T) {
	store, s, _ := seed(t)
	ctx := context.Background()

	_, err := s.Assign(ctx, "acme", "alpha", "IM-001", day(2024, 6, 1))
	require.NoError(t, err)
	a, err := s.Assign(ctx, "acme", "alpha", "IM-001", day(2024, 6, 5))
	require.NoError(t, err)

	assert.True(t, a.Date.Equal(day(2024, 6, 5)))
	assert.Equal(t, 0, store.CountActive("alpha", day(2024, 6, 1)))
	assert.Equal(t, 1, store.CountActive("alpha", day(2024, 6, 5)))
}

func TestScheduler_OtroEquipoReemplazaAsignacion(t *testing.T) {
	store, s, _ := seed(t)
	ctx := context.Background()

	_, err := s.Assign(ctx, "acme", "alpha", "IM-001", time.Time{})
	require.NoError(t, err)
	_, err = s.Assign(ctx, "acme", "beta", "IM-001", time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 0, store.CountActive("alpha", day(2024, 6, 1)))
	assert.Equal(t, 1, store.CountActive("beta", day(2024, 6, 1)))
	current, err := store.GetActiveByImmersion(ctx, "IM-001")
	require.NoError(t, err)
	assert.Equal(t, "beta", current.CrewID)
}

func TestScheduler_UnassignEsIdempotente(t *testing.T) {
	store, s, n := seed(t)
	ctx := context.Background()

	_, err := s.Assign(ctx, "acme", "alpha", "IM-001", day(2024, 6, 1))
	require.NoError(t, err)

	cancelled, err := s.Unassign(ctx, "acme", "alpha", "IM-001")
	require.NoError(t, err)
	assert.True(t, cancelled)

	cancelled, err = s.Unassign(ctx, "acme", "alpha", "IM-001")
	require.NoError(t, err)
	assert.False(t, cancelled)

	assert.Equal(t, 0, store.CountActive("alpha", day(2024, 6, 1)))
	assert.Equal(t, []string{ports.EventCrewAssigned, ports.EventCrewUnassigned}, n.types())

	// La fecha queda libre para otra inmersión.
	_, err = s.Assign(ctx, "acme", "alpha", "IM-002", day(2024, 6, 1))
	require.NoError(t, err)
}

func TestScheduler_UnassignSinEmpresaUsaLaDeLaInmersion(t *testing.T) {
	_, s, n := seed(t)
	ctx := context.Background()

	_, err := s.Assign(ctx, "acme", "alpha", "IM-001", day(2024, 6, 1))
	require.NoError(t, err)
	cancelled, err := s.Unassign(ctx, "", "alpha", "IM-001")
	require.NoError(t, err)
	require.True(t, cancelled)

	n.mu.Lock()
	defer n.mu.Unlock()
	last := n.events[len(n.events)-1]
	assert.Equal(t, ports.EventCrewUnassigned, last.Type)
	assert.Equal(t, "acme", last.CompanyID)
}

func TestScheduler_DatosAnomalosReportanAdvertencia(t *testing.T) {
	store, s, _ := seed(t)
	ctx := context.Background()
	for _, id := range []string{"IM-001", "IM-002"} {
		store.InsertRawAssignment(entity.CrewAssignment{ID: "raw-" + id, CrewID: "alpha", ImmersionID: id, Date: day(2024, 6, 1), Status: entity.AssignmentActive})
	}

	avail, err := s.CheckAvailability(ctx, "alpha", day(2024, 6, 1), "")
	require.NoError(t, err)
	assert.False(t, avail.Available)
	assert.Equal(t, "IM-001", avail.ConflictingImmersionID)
	assert.True(t, avail.IntegrityWarning)
}

func TestScheduler_EquipoNoHabilitado(t *testing.T) {
	store, s, _ := seed(t)
	ctx := context.Background()
	require.NoError(t, store.Crews().Create(ctx, &entity.Crew{
		ID:        "gamma",
		CompanyID: "acme",
		Name:      "Gamma",
		Active:    true,
		Members:   []entity.CrewMember{{PersonID: "p-x", Role: entity.CrewRoleSupportDiver}},
	}))

	_, err := s.Assign(ctx, "acme", "gamma", "IM-001", day(2024, 6, 1))
	assert.ErrorIs(t, err, domain.ErrTeamRequired)

	_, err = s.Assign(ctx, "otra", "alpha", "IM-001", day(2024, 6, 1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
