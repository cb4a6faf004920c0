// Package memory implementa los puertos de persistencia en memoria con las mismas
// restricciones de unicidad que el esquema PostgreSQL. Se usa con STORE_DRIVER=memory y en tests.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Buceo-api/internal/domain"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
	"github.com/jhoicas/Buceo-api/internal/domain/repository"
)

var (
	_ repository.CompanyRepository          = (*CompanyStore)(nil)
	_ repository.ModuleRepository           = (*Store)(nil)
	_ repository.CrewRepository             = (*CrewStore)(nil)
	_ repository.AssignmentRepository       = (*Store)(nil)
	_ repository.OperationRepository        = (*OperationStore)(nil)
	_ repository.ImmersionRepository        = (*ImmersionStore)(nil)
	_ repository.PlanningDocumentRepository = (*PlanningStore)(nil)
	_ repository.SupervisorLogRepository    = (*SupervisorLogStore)(nil)
	_ repository.DiverLogRepository         = (*DiverLogStore)(nil)
	_ repository.AuditRepository            = (*Store)(nil)
)

// Store estado compartido protegido por un único mutex: cada método es una transacción.
type Store struct {
	mu sync.Mutex

	companies   map[string]*entity.Company
	activations map[string]map[string]entity.CompanyModule
	moduleLog   []*entity.ModuleActivationLog
	crews       map[string]*entity.Crew
	assignments []*entity.CrewAssignment
	operations  map[string]*entity.Operation
	immersions  map[string]*entity.Immersion
	planning    map[string]*entity.PlanningDocument
	supLogs     map[string]*entity.SupervisorLog
	diverLogs   map[string]*entity.DiverLog
	audits      []*entity.DocumentAudit
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		companies:   map[string]*entity.Company{},
		activations: map[string]map[string]entity.CompanyModule{},
		crews:       map[string]*entity.Crew{},
		operations:  map[string]*entity.Operation{},
		immersions:  map[string]*entity.Immersion{},
		planning:    map[string]*entity.PlanningDocument{},
		supLogs:     map[string]*entity.SupervisorLog{},
		diverLogs:   map[string]*entity.DiverLog{},
	}
}

// Los puertos con métodos homónimos (Create, GetByID...) se exponen como vistas sobre el mismo Store.
type (
	CompanyStore       struct{ s *Store }
	CrewStore          struct{ s *Store }
	OperationStore     struct{ s *Store }
	ImmersionStore     struct{ s *Store }
	PlanningStore      struct{ s *Store }
	SupervisorLogStore struct{ s *Store }
	DiverLogStore      struct{ s *Store }
)

func (s *Store) Companies() *CompanyStore { return &CompanyStore{s} }
func (s *Store) Crews() *CrewStore { return &CrewStore{s} }
func (s *Store) Operations() *OperationStore { return &OperationStore{s} }
func (s *Store) Immersions() *ImmersionStore { return &ImmersionStore{s} }
func (s *Store) Planning() *PlanningStore { return &PlanningStore{s} }
func (s *Store) SupervisorLogs() *SupervisorLogStore { return &SupervisorLogStore{s} }
func (s *Store) DiverLogs() *DiverLogStore { return &DiverLogStore{s} }

func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return domain.Infra("memory", err)
	}
	return nil
}

// ── Companies & módulos ─────────────────────────────────────────────────────

// Create registra una empresa.
func (r *CompanyStore) Create(ctx context.Context, c *entity.Company) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.companies[c.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *c
	r.s.companies[c.ID] = &cp
	return nil
}

// GetByID obtiene una empresa; nil si no existe.
func (r *CompanyStore) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

// GetActivation devuelve una copia del agregado de activaciones.
func (s *Store) GetActivation(ctx context.Context, companyID string) (*entity.CompanyModules, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := &entity.CompanyModules{CompanyID: companyID, Records: map[string]entity.CompanyModule{}}
	for name, r := range s.activations[companyID] {
		rec.Records[name] = r
	}
	return rec, nil
}

// SaveActivation guarda el registro y agrega la bitácora de forma atómica.
func (s *Store) SaveActivation(ctx context.Context, rec entity.CompanyModule, entry *entity.ModuleActivationLog) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activations[rec.CompanyID] == nil {
		s.activations[rec.CompanyID] = map[string]entity.CompanyModule{}
	}
	s.activations[rec.CompanyID][rec.ModuleName] = rec
	if entry != nil {
		cp := *entry
		s.moduleLog = append(s.moduleLog, &cp)
	}
	return nil
}

// SetActivationRow escribe una fila de activación sin pasar por las reglas (carga inicial y tests).
func (s *Store) SetActivationRow(rec entity.CompanyModule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activations[rec.CompanyID] == nil {
		s.activations[rec.CompanyID] = map[string]entity.CompanyModule{}
	}
	s.activations[rec.CompanyID][rec.ModuleName] = rec
}

// ListActivationLog bitácora de activación, más reciente primero.
func (s *Store) ListActivationLog(ctx context.Context, companyID string, limit, offset int) ([]*entity.ModuleActivationLog, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.ModuleActivationLog
	for i := len(s.moduleLog) - 1; i >= 0; i-- {
		if s.moduleLog[i].CompanyID == companyID {
			cp := *s.moduleLog[i]
			out = append(out, &cp)
		}
	}
	return page(out, limit, offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// ── Crews ───────────────────────────────────────────────────────────────────

func cloneCrew(c *entity.Crew) *entity.Crew {
	cp := *c
	cp.Members = append([]entity.CrewMember(nil), c.Members...)
	return &cp
}

// Create registra un equipo; rechaza personas repetidas como la restricción única.
func (r *CrewStore) Create(ctx context.Context, c *entity.Crew) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, m := range c.Members {
		if seen[m.PersonID] {
			return domain.ErrDuplicateMember
		}
		seen[m.PersonID] = true
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.crews[c.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.crews[c.ID] = cloneCrew(c)
	return nil
}

// GetByID obtiene un equipo; nil si no existe.
func (r *CrewStore) GetByID(ctx context.Context, id string) (*entity.Crew, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.crews[id]
	if !ok {
		return nil, nil
	}
	return cloneCrew(c), nil
}

// List equipos de la empresa ordenados por nombre.
func (r *CrewStore) List(ctx context.Context, companyID string, f entity.CrewFilter) ([]*entity.Crew, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	search := strings.ToLower(f.Search)
	var out []*entity.Crew
	for _, c := range r.s.crews {
		if c.CompanyID != companyID {
			continue
		}
		if f.ActiveOnly && !c.Active {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) {
			continue
		}
		if f.Role != "" && !hasRole(c, f.Role) {
			continue
		}
		out = append(out, cloneCrew(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func hasRole(c *entity.Crew, role entity.CrewRole) bool {
	for _, m := range c.Members {
		if m.Role == role {
			return true
		}
	}
	return false
}

// AddMember agrega al final; ErrDuplicateMember si ya está.
func (r *CrewStore) AddMember(ctx context.Context, crewID string, m entity.CrewMember) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.crews[crewID]
	if !ok {
		return domain.ErrNotFound
	}
	if c.HasMember(m.PersonID) {
		return domain.ErrDuplicateMember
	}
	c.Members = append(c.Members, m)
	c.UpdatedAt = time.Now()
	return nil
}

// RemoveMember quita a la persona conservando el orden del resto.
func (r *CrewStore) RemoveMember(ctx context.Context, crewID, personID string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.crews[crewID]
	if !ok {
		return domain.ErrNotFound
	}
	for i, m := range c.Members {
		if m.PersonID == personID {
			c.Members = append(c.Members[:i:i], c.Members[i+1:]...)
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return domain.ErrNotFound
}

// SetActive activa o desactiva el equipo.
func (r *CrewStore) SetActive(ctx context.Context, crewID string, active bool) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.crews[crewID]
	if !ok {
		return domain.ErrNotFound
	}
	c.Active = active
	c.UpdatedAt = time.Now()
	return nil
}

// ── Asignaciones ────────────────────────────────────────────────────────────

// ListActiveByCrewDate asignaciones activas del equipo en el día, en orden de creación.
func (s *Store) ListActiveByCrewDate(ctx context.Context, crewID string, date time.Time) ([]*entity.CrewAssignment, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	day := entity.DateOnly(date)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.CrewAssignment
	for _, a := range s.assignments {
		if a.CrewID == crewID && a.Status == entity.AssignmentActive && a.Date.Equal(day) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

// GetActiveByImmersion asignación activa de la inmersión; nil si no hay.
func (s *Store) GetActiveByImmersion(ctx context.Context, immersionID string) (*entity.CrewAssignment, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if a := s.activeByImmersion(immersionID); a != nil {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) activeByImmersion(immersionID string) *entity.CrewAssignment {
	for _, a := range s.assignments {
		if a.ImmersionID == immersionID && a.Status == entity.AssignmentActive {
			return a
		}
	}
	return nil
}

// Assign aplica la asignación bajo el mutex, emulando el índice único parcial (crew_id, date) WHERE active.
func (s *Store) Assign(ctx context.Context, a *entity.CrewAssignment) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	day := entity.DateOnly(a.Date)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, other := range s.assignments {
		if other.Status == entity.AssignmentActive && other.CrewID == a.CrewID &&
			other.Date.Equal(day) && other.ImmersionID != a.ImmersionID {
			return domain.ScheduleConflict(other.ImmersionID)
		}
	}

	now := a.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	if prev := s.activeByImmersion(a.ImmersionID); prev != nil {
		if prev.CrewID == a.CrewID {
			prev.Date = day
			*a = *prev
			s.setImmersionCrew(a.ImmersionID, &a.CrewID, now)
			return nil
		}
		prev.Status = entity.AssignmentCancelled
		cancelled := now
		prev.CancelledAt = &cancelled
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.Date = day
	a.Status = entity.AssignmentActive
	a.CreatedAt = now
	cp := *a
	s.assignments = append(s.assignments, &cp)
	s.setImmersionCrew(a.ImmersionID, &a.CrewID, now)
	return nil
}

func (s *Store) setImmersionCrew(immersionID string, crewID *string, now time.Time) {
	if im, ok := s.immersions[immersionID]; ok {
		if crewID != nil {
			id := *crewID
			im.CrewID = &id
		} else {
			im.CrewID = nil
		}
		im.UpdatedAt = now
	}
}

// Cancel marca cancelada la asignación activa del par; false si no había.
func (s *Store) Cancel(ctx context.Context, crewID, immersionID string, at time.Time) (bool, error) {
	if err := ctxErr(ctx); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.activeByImmersion(immersionID)
	if a == nil || a.CrewID != crewID {
		return false, nil
	}
	a.Status = entity.AssignmentCancelled
	a.CancelledAt = &at
	s.setImmersionCrew(immersionID, nil, at)
	return true, nil
}

// CountActive cuenta asignaciones activas de un equipo en un día (verificación en tests).
func (s *Store) CountActive(crewID string, date time.Time) int {
	list, _ := s.ListActiveByCrewDate(context.Background(), crewID, date)
	return len(list)
}

// InsertRawAssignment agrega una fila sin validar, para reproducir datos anómalos heredados.
func (s *Store) InsertRawAssignment(a entity.CrewAssignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.Date = entity.DateOnly(a.Date)
	s.assignments = append(s.assignments, &a)
}

// ── Operaciones e inmersiones ───────────────────────────────────────────────

func cloneOperation(op *entity.Operation) *entity.Operation {
	cp := *op
	if op.CrewID != nil {
		id := *op.CrewID
		cp.CrewID = &id
	}
	return &cp
}

func (r *OperationStore) Create(ctx context.Context, op *entity.Operation) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.operations[op.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.operations[op.ID] = cloneOperation(op)
	return nil
}

func (r *OperationStore) GetByID(ctx context.Context, id string) (*entity.Operation, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	op, ok := r.s.operations[id]
	if !ok {
		return nil, nil
	}
	return cloneOperation(op), nil
}

func (r *OperationStore) SetCrew(ctx context.Context, operationID string, crewID *string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	op, ok := r.s.operations[operationID]
	if !ok {
		return domain.ErrNotFound
	}
	op.CrewID = nil
	if crewID != nil {
		id := *crewID
		op.CrewID = &id
	}
	op.UpdatedAt = time.Now()
	return nil
}

func cloneImmersion(im *entity.Immersion) *entity.Immersion {
	cp := *im
	if im.CrewID != nil {
		id := *im.CrewID
		cp.CrewID = &id
	}
	if im.OperationID != nil {
		id := *im.OperationID
		cp.OperationID = &id
	}
	return &cp
}

func (r *ImmersionStore) Create(ctx context.Context, im *entity.Immersion) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.immersions[im.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := cloneImmersion(im)
	cp.Date = entity.DateOnly(im.Date)
	r.s.immersions[im.ID] = cp
	return nil
}

func (r *ImmersionStore) GetByID(ctx context.Context, id string) (*entity.Immersion, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	im, ok := r.s.immersions[id]
	if !ok {
		return nil, nil
	}
	return cloneImmersion(im), nil
}

func (r *ImmersionStore) ListByOperation(ctx context.Context, operationID string) ([]*entity.Immersion, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Immersion
	for _, im := range r.s.immersions {
		if im.OperationID != nil && *im.OperationID == operationID {
			out = append(out, cloneImmersion(im))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// ── Documentos ──────────────────────────────────────────────────────────────

func cloneDoc(d entity.Document) entity.Document {
	d.Content = append(json.RawMessage(nil), d.Content...)
	d.Signatures = append([]entity.Signature(nil), d.Signatures...)
	if d.SignedAt != nil {
		t := *d.SignedAt
		d.SignedAt = &t
	}
	return d
}

// checkVersion aplica la regla de escritura condicional común a todos los documentos.
func checkVersion(current entity.Document, expectedState entity.DocState, expectedVersion int) error {
	if current.State == expectedState && current.Version == expectedVersion {
		return nil
	}
	if current.State == entity.DocStateSigned && expectedState == entity.DocStateDraft {
		return domain.ErrAlreadySigned
	}
	return domain.ErrConflict
}

func (s *Store) appendAudit(audit *entity.DocumentAudit) {
	if audit == nil {
		return
	}
	if audit.ID == "" {
		audit.ID = uuid.New().String()
	}
	cp := *audit
	s.audits = append(s.audits, &cp)
}

// ListByDocument auditoría de un documento en orden cronológico.
func (s *Store) ListByDocument(ctx context.Context, kind entity.DocKind, documentID string) ([]*entity.DocumentAudit, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.DocumentAudit
	for _, a := range s.audits {
		if a.Kind == kind && a.DocumentID == documentID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func clonePlanning(d *entity.PlanningDocument) *entity.PlanningDocument {
	cp := *d
	cp.Document = cloneDoc(d.Document)
	return &cp
}

func (r *PlanningStore) Create(ctx context.Context, d *entity.PlanningDocument) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.planning {
		if other.OperationID == d.OperationID && other.Kind == d.Kind {
			return domain.ErrDuplicate
		}
	}
	r.s.planning[d.ID] = clonePlanning(d)
	return nil
}

func (r *PlanningStore) GetByID(ctx context.Context, id string) (*entity.PlanningDocument, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.planning[id]
	if !ok {
		return nil, nil
	}
	return clonePlanning(d), nil
}

func (r *PlanningStore) GetByOperation(ctx context.Context, operationID string, kind entity.DocKind) (*entity.PlanningDocument, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.planning {
		if d.OperationID == operationID && d.Kind == kind {
			return clonePlanning(d), nil
		}
	}
	return nil, nil
}

func (r *PlanningStore) Save(ctx context.Context, d *entity.PlanningDocument, expectedState entity.DocState, expectedVersion int, audit *entity.DocumentAudit) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.planning[d.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if err := checkVersion(current.Document, expectedState, expectedVersion); err != nil {
		return err
	}
	d.Version = expectedVersion + 1
	r.s.planning[d.ID] = clonePlanning(d)
	r.s.appendAudit(audit)
	return nil
}

func cloneSupervisorLog(sl *entity.SupervisorLog) *entity.SupervisorLog {
	cp := *sl
	cp.Document = cloneDoc(sl.Document)
	cp.Snapshot = append([]entity.CrewMember(nil), sl.Snapshot...)
	return &cp
}

func (r *SupervisorLogStore) Create(ctx context.Context, sl *entity.SupervisorLog) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.supLogs {
		if other.ImmersionID == sl.ImmersionID {
			return domain.ErrDuplicate
		}
	}
	r.s.supLogs[sl.ID] = cloneSupervisorLog(sl)
	return nil
}

func (r *SupervisorLogStore) GetByID(ctx context.Context, id string) (*entity.SupervisorLog, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sl, ok := r.s.supLogs[id]
	if !ok {
		return nil, nil
	}
	return cloneSupervisorLog(sl), nil
}

func (r *SupervisorLogStore) GetByImmersion(ctx context.Context, immersionID string) (*entity.SupervisorLog, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sl := range r.s.supLogs {
		if sl.ImmersionID == immersionID {
			return cloneSupervisorLog(sl), nil
		}
	}
	return nil, nil
}

func (r *SupervisorLogStore) Save(ctx context.Context, sl *entity.SupervisorLog, expectedState entity.DocState, expectedVersion int, audit *entity.DocumentAudit) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.supLogs[sl.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if err := checkVersion(current.Document, expectedState, expectedVersion); err != nil {
		return err
	}
	sl.Version = expectedVersion + 1
	r.s.supLogs[sl.ID] = cloneSupervisorLog(sl)
	r.s.appendAudit(audit)
	return nil
}

func cloneDiverLog(dl *entity.DiverLog) *entity.DiverLog {
	cp := *dl
	cp.Document = cloneDoc(dl.Document)
	return &cp
}

// Create inserta respetando la unicidad (inmersión, buzo).
func (r *DiverLogStore) Create(ctx context.Context, dl *entity.DiverLog) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.diverLogs {
		if other.ImmersionID == dl.ImmersionID && other.DiverID == dl.DiverID {
			return domain.ErrDuplicate
		}
	}
	r.s.diverLogs[dl.ID] = cloneDiverLog(dl)
	return nil
}

func (r *DiverLogStore) GetByID(ctx context.Context, id string) (*entity.DiverLog, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	dl, ok := r.s.diverLogs[id]
	if !ok {
		return nil, nil
	}
	return cloneDiverLog(dl), nil
}

func (r *DiverLogStore) Get(ctx context.Context, immersionID, diverID string) (*entity.DiverLog, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, dl := range r.s.diverLogs {
		if dl.ImmersionID == immersionID && dl.DiverID == diverID {
			return cloneDiverLog(dl), nil
		}
	}
	return nil, nil
}

func (r *DiverLogStore) ListByImmersion(ctx context.Context, immersionID string) ([]*entity.DiverLog, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.DiverLog
	for _, dl := range r.s.diverLogs {
		if dl.ImmersionID == immersionID {
			out = append(out, cloneDiverLog(dl))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DiverID < out[j].DiverID })
	return out, nil
}

func (r *DiverLogStore) Save(ctx context.Context, dl *entity.DiverLog, expectedState entity.DocState, expectedVersion int, audit *entity.DocumentAudit) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.diverLogs[dl.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if err := checkVersion(current.Document, expectedState, expectedVersion); err != nil {
		return err
	}
	dl.Version = expectedVersion + 1
	r.s.diverLogs[dl.ID] = cloneDiverLog(dl)
	r.s.appendAudit(audit)
	return nil
}
