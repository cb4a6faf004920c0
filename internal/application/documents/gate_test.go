package documents_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Buceo-api/internal/application/documents"
	"github.com/jhoicas/Buceo-api/internal/application/dto"
	"github.com/jhoicas/Buceo-api/internal/application/ports"
	"github.com/jhoicas/Buceo-api/internal/domain"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
	"github.com/jhoicas/Buceo-api/internal/infrastructure/memory"
)

var (
	supervisor = entity.Actor{ID: "p-sup", Role: entity.UserRoleSupervisor, CompanyID: "acme", CompanyType: entity.CompanyTypeContractor}
	admin      = entity.Actor{ID: "u-admin", Role: entity.UserRoleAdmin, CompanyID: "acme", CompanyType: entity.CompanyTypeContractor}
	mandante   = entity.Actor{ID: "p-mandante", Role: entity.UserRoleSupervisor, CompanyID: "salmones", CompanyType: entity.CompanyTypePrincipal}
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

func (n *captureNotifier) count(typ string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e.Type == typ {
			c++
		}
	}
	return c
}

type fixture struct {
	store    *memory.Store
	gate     *documents.Gate
	notifier *captureNotifier
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Crews().Create(ctx, &entity.Crew{
		ID:        "alpha",
		CompanyID: "acme",
		Name:      "Alpha",
		Active:    true,
		Members: []entity.CrewMember{
			{PersonID: "p-sup", Name: "Sofía", Role: entity.CrewRoleSupervisor},
			{PersonID: "d-1", Name: "Andrés", Role: entity.CrewRoleLeadDiver},
			{PersonID: "d-2", Name: "Bruno", Role: entity.CrewRoleSupportDiver},
			{PersonID: "d-3", Name: "Camila", Role: entity.CrewRoleSupportDiver},
		},
	}))
	require.NoError(t, store.Operations().Create(ctx, &entity.Operation{ID: "OP-1", CompanyID: "acme", Name: "Centro Chidhuapi"}))
	opID := "OP-1"
	require.NoError(t, store.Immersions().Create(ctx, &entity.Immersion{
		ID: "IM-001", CompanyID: "acme", OperationID: &opID, Code: "IM-001",
		Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}))
	n := &captureNotifier{}
	gate := documents.NewGate(documents.Repositories{
		Operations:     store.Operations(),
		Immersions:     store.Immersions(),
		Crews:          store.Crews(),
		Assignments:    store,
		Planning:       store.Planning(),
		SupervisorLogs: store.SupervisorLogs(),
		DiverLogs:      store.DiverLogs(),
		Audits:         store,
	}, n, zerolog.Nop())
	return fixture{store: store, gate: gate, notifier: n}
}

func (f fixture) assignImmersion(t *testing.T) {
	t.Helper()
	require.NoError(t, f.store.Assign(context.Background(), &entity.CrewAssignment{
		CrewID: "alpha", ImmersionID: "IM-001", Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}))
}

func signature(slot entity.SignerRole, name string) dto.SignatureRequest {
	return dto.SignatureRequest{Slot: string(slot), SignerName: name, SignatureImage: []byte("png:" + name)}
}

func TestGate_HPTRequiereEquipo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.gate.CreatePlanningDocument(ctx, supervisor, entity.DocKindHPT, "OP-1", nil)
	assert.ErrorIs(t, err, domain.ErrTeamRequired)

	alpha := "alpha"
	require.NoError(t, f.store.Operations().SetCrew(ctx, "OP-1", &alpha))
	doc, err := f.gate.CreatePlanningDocument(ctx, supervisor, entity.DocKindHPT, "OP-1", json.RawMessage(`{"tareas":["fondeo"]}`))
	require.NoError(t, err)
	assert.Equal(t, "draft", doc.State)
	assert.Equal(t, "alpha", doc.CrewID)
	assert.Equal(t, []string{"service_supervisor"}, doc.MissingSigners)

	_, err = f.gate.CreatePlanningDocument(ctx, supervisor, entity.DocKindHPT, "OP-1", nil)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestGate_HPTEquipoNoHabilitado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Crews().Create(ctx, &entity.Crew{
		ID: "solo", CompanyID: "acme", Name: "Solo", Active: true,
		Members: []entity.CrewMember{{PersonID: "x", Role: entity.CrewRoleSupervisor}},
	}))
	solo := "solo"
	require.NoError(t, f.store.Operations().SetCrew(ctx, "OP-1", &solo))

	_, err := f.gate.CreatePlanningDocument(ctx, supervisor, entity.DocKindAnexoBravo, "OP-1", nil)
	assert.ErrorIs(t, err, domain.ErrTeamRequired)
}

func TestGate_AnulacionYNuevaFirma(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alpha := "alpha"
	require.NoError(t, f.store.Operations().SetCrew(ctx, "OP-1", &alpha))
	doc, err := f.gate.CreatePlanningDocument(ctx, supervisor, entity.DocKindHPT, "OP-1", nil)
	require.NoError(t, err)

	signed, err := f.gate.Sign(ctx, supervisor, entity.DocKindHPT, doc.ID, signature(entity.SignerServiceSupervisor, "Sofía"))
	require.NoError(t, err)
	assert.Equal(t, "signed", signed.State)
	assert.NotNil(t, signed.SignedAt)

	_, err = f.gate.Sign(ctx, supervisor, entity.DocKindHPT, doc.ID, signature(entity.SignerServiceSupervisor, "Otra"))
	assert.ErrorIs(t, err, domain.ErrAlreadySigned)

	_, err = f.gate.Annul(ctx, supervisor, entity.DocKindHPT, doc.ID, "sin privilegio")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	annulled, err := f.gate.Annul(ctx, admin, entity.DocKindHPT, doc.ID, "firma con datos erróneos")
	require.NoError(t, err)
	assert.Equal(t, "draft", annulled.State)
	assert.Empty(t, annulled.Signatures)
	assert.Nil(t, annulled.SignedAt)

	resigned, err := f.gate.Sign(ctx, supervisor, entity.DocKindHPT, doc.ID, signature(entity.SignerServiceSupervisor, "Sofía Rojas"))
	require.NoError(t, err)
	assert.Equal(t, "signed", resigned.State)
	require.Len(t, resigned.Signatures, 1)
	assert.Equal(t, "Sofía Rojas", resigned.Signatures[0].SignerName)

	trail, err := f.gate.AuditTrail(ctx, admin, entity.DocKindHPT, doc.ID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, entity.AuditActionAnnul, trail[0].Action)
	assert.Len(t, trail[0].SignatureDigest, 64)
	assert.Equal(t, 2, f.notifier.count(ports.EventDocumentSigned))
	assert.Equal(t, 1, f.notifier.count(ports.EventSignatureAnnulled))
}

func TestGate_AnexoBravoRequiereDosFirmas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alpha := "alpha"
	require.NoError(t, f.store.Operations().SetCrew(ctx, "OP-1", &alpha))
	doc, err := f.gate.CreatePlanningDocument(ctx, supervisor, entity.DocKindAnexoBravo, "OP-1", nil)
	require.NoError(t, err)

	partial, err := f.gate.Sign(ctx, supervisor, entity.DocKindAnexoBravo, doc.ID, signature(entity.SignerServiceSupervisor, "Sofía"))
	require.NoError(t, err)
	assert.Equal(t, "draft", partial.State)
	assert.Equal(t, []string{"principal_supervisor"}, partial.MissingSigners)

	_, err = f.gate.Sign(ctx, supervisor, entity.DocKindAnexoBravo, doc.ID, signature(entity.SignerPrincipalSupervisor, "Sofía"))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	full, err := f.gate.Sign(ctx, mandante, entity.DocKindAnexoBravo, doc.ID, signature(entity.SignerPrincipalSupervisor, "Marcela"))
	require.NoError(t, err)
	assert.Equal(t, "signed", full.State)
	assert.Len(t, full.Signatures, 2)
}

func TestGate_CicloBitacoraDeBuzo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.gate.CreateSupervisorLog(ctx, supervisor, "IM-001", nil)
	assert.ErrorIs(t, err, domain.ErrTeamRequired)

	f.assignImmersion(t)
	sl, err := f.gate.CreateSupervisorLog(ctx, supervisor, "IM-001", nil)
	require.NoError(t, err)

	_, err = f.gate.CreateDiverLog(ctx, entity.Actor{ID: "d-1", Role: entity.UserRoleDiver, CompanyID: "acme"}, "IM-001", "d-1", nil)
	assert.ErrorIs(t, err, domain.ErrDiverLogNotEligible)

	signedSL, err := f.gate.Sign(ctx, supervisor, entity.DocKindSupervisorLog, sl.ID, signature(entity.SignerSupervisor, "Sofía"))
	require.NoError(t, err)
	assert.Equal(t, "signed", signedSL.State)
	assert.Len(t, signedSL.Snapshot, 4)
	assert.Equal(t, 1, f.notifier.count(ports.EventSupervisorLogSigned))

	check, err := f.gate.CanCreateDiverLog(ctx, "IM-001", "d-1")
	require.NoError(t, err)
	assert.True(t, check.Allowed)

	check, err = f.gate.CanCreateDiverLog(ctx, "IM-001", "p-sup")
	require.NoError(t, err)
	assert.False(t, check.Allowed)

	diver := entity.Actor{ID: "d-1", Role: entity.UserRoleDiver, CompanyID: "acme"}
	dl, err := f.gate.CreateDiverLog(ctx, diver, "IM-001", "d-1", json.RawMessage(`{"profundidad":18}`))
	require.NoError(t, err)
	assert.Equal(t, "draft", dl.State)

	_, err = f.gate.CreateDiverLog(ctx, diver, "IM-001", "d-1", nil)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	check, err = f.gate.CanCreateDiverLog(ctx, "IM-001", "d-1")
	require.NoError(t, err)
	assert.False(t, check.Allowed)
	assert.True(t, check.Exists)

	_, err = f.gate.CreateDiverLog(ctx, diver, "IM-001", "d-2", nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	eligible, err := f.gate.EligibleDivers(ctx, "acme", "IM-001")
	require.NoError(t, err)
	assert.Len(t, eligible.Divers, 2)
}

func TestGate_Completitud(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.assignImmersion(t)
	sl, err := f.gate.CreateSupervisorLog(ctx, supervisor, "IM-001", nil)
	require.NoError(t, err)
	_, err = f.gate.Sign(ctx, supervisor, entity.DocKindSupervisorLog, sl.ID, signature(entity.SignerSupervisor, "Sofía"))
	require.NoError(t, err)

	signDiver := func(id string) {
		actor := entity.Actor{ID: id, Role: entity.UserRoleDiver, CompanyID: "acme"}
		dl, err := f.gate.CreateDiverLog(ctx, actor, "IM-001", id, nil)
		require.NoError(t, err)
		_, err = f.gate.Sign(ctx, actor, entity.DocKindDiverLog, dl.ID, signature(entity.SignerDiver, id))
		require.NoError(t, err)
	}

	signDiver("d-1")
	signDiver("d-2")
	c, err := f.gate.Completion(ctx, "acme", "IM-001")
	require.NoError(t, err)
	assert.Equal(t, 3, c.Expected)
	assert.Equal(t, 2, c.Completed)
	assert.Equal(t, 1, c.Pending)
	assert.Equal(t, "in_progress", c.Status)

	signDiver("d-3")
	c, err = f.gate.Completion(ctx, "acme", "IM-001")
	require.NoError(t, err)
	assert.Equal(t, 0, c.Pending)
	assert.Equal(t, "complete", c.Status)
}

func TestGate_FirmaConVersionObsoleta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alpha := "alpha"
	require.NoError(t, f.store.Operations().SetCrew(ctx, "OP-1", &alpha))
	doc, err := f.gate.CreatePlanningDocument(ctx, supervisor, entity.DocKindHPT, "OP-1", nil)
	require.NoError(t, err)

	stale, err := f.store.Planning().GetByID(ctx, doc.ID)
	require.NoError(t, err)

	_, err = f.gate.Sign(ctx, supervisor, entity.DocKindHPT, doc.ID, signature(entity.SignerServiceSupervisor, "Sofía"))
	require.NoError(t, err)

	// Un segundo escritor que leyó el borrador antes de la firma pierde la carrera.
	err = f.store.Planning().Save(ctx, stale, entity.DocStateDraft, stale.Version, nil)
	assert.ErrorIs(t, err, domain.ErrAlreadySigned)
}

func TestGate_BitacorasDeBuzoConcurrentesSoloUnaGana(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.assignImmersion(t)
	sl, err := f.gate.CreateSupervisorLog(ctx, supervisor, "IM-001", nil)
	require.NoError(t, err)
	_, err = f.gate.Sign(ctx, supervisor, entity.DocKindSupervisorLog, sl.ID, signature(entity.SignerSupervisor, "Sofía"))
	require.NoError(t, err)

	diver := entity.Actor{ID: "d-1", Role: entity.UserRoleDiver, CompanyID: "acme"}
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok, dupes int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.gate.CreateDiverLog(ctx, diver, "IM-001", "d-1", nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrDuplicate):
				dupes++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
	assert.Equal(t, 15, dupes)
}

func TestGate_FirmasConcurrentesSoloUnaGana(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alpha := "alpha"
	require.NoError(t, f.store.Operations().SetCrew(ctx, "OP-1", &alpha))
	doc, err := f.gate.CreatePlanningDocument(ctx, supervisor, entity.DocKindHPT, "OP-1", nil)
	require.NoError(t, err)

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		ok, already int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.gate.Sign(ctx, supervisor, entity.DocKindHPT, doc.ID, signature(entity.SignerServiceSupervisor, "Sofía"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrAlreadySigned):
				already++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
	assert.Equal(t, 15, already)
	assert.Equal(t, 1, f.notifier.count(ports.EventDocumentSigned))
}
