package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Buceo-api/internal/domain"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
	"github.com/jhoicas/Buceo-api/internal/domain/repository"
)

var (
	_ repository.PlanningDocumentRepository = (*PlanningRepo)(nil)
	_ repository.SupervisorLogRepository    = (*SupervisorLogRepo)(nil)
	_ repository.DiverLogRepository         = (*DiverLogRepo)(nil)
	_ repository.AuditRepository            = (*AuditRepo)(nil)
)

// docStore lógica común de los tres tipos de documento: columnas JSONB y escritura condicional.
type docStore struct {
	pool  *pgxpool.Pool
	tx    *TxRunner
	table string
}

func newDocStore(pool *pgxpool.Pool, table string) docStore {
	return docStore{pool: pool, tx: NewTxRunner(pool), table: table}
}

const docColumns = `id, company_id, state, content, signatures, version, created_by, created_at, updated_at, signed_at`

// docRow destino de escaneo de las columnas comunes.
type docRow struct {
	doc        entity.Document
	state      string
	content    []byte
	signatures []byte
}

func (d *docRow) dest() []any {
	return []any{&d.doc.ID, &d.doc.CompanyID, &d.state, &d.content, &d.signatures, &d.doc.Version,
		&d.doc.CreatedBy, &d.doc.CreatedAt, &d.doc.UpdatedAt, &d.doc.SignedAt}
}

func (d *docRow) document(kind entity.DocKind) (entity.Document, error) {
	doc := d.doc
	doc.Kind = kind
	doc.State = entity.DocState(d.state)
	doc.Content = json.RawMessage(d.content)
	if len(d.signatures) > 0 {
		if err := json.Unmarshal(d.signatures, &doc.Signatures); err != nil {
			return doc, fmt.Errorf("decode signatures: %w", err)
		}
	}
	return doc, nil
}

func encodeDoc(d *entity.Document) (content, signatures string, err error) {
	content = "{}"
	if len(d.Content) > 0 {
		content = string(d.Content)
	}
	sigs := d.Signatures
	if sigs == nil {
		sigs = []entity.Signature{}
	}
	raw, err := json.Marshal(sigs)
	if err != nil {
		return "", "", fmt.Errorf("encode signatures: %w", err)
	}
	return content, string(raw), nil
}

// save actualiza el documento solo si sigue en (expectedState, expectedVersion).
// extraSet agrega columnas propias del tipo, numeradas desde $9.
func (s docStore) save(ctx context.Context, d *entity.Document, expectedState entity.DocState, expectedVersion int,
	audit *entity.DocumentAudit, extraSet string, extraArgs ...any) error {
	content, sigs, err := encodeDoc(d)
	if err != nil {
		return domain.Infra("save "+s.table, err)
	}
	query := `UPDATE ` + s.table + `
		   SET state = $4, content = $5, signatures = $6, version = version + 1, updated_at = $7, signed_at = $8` + extraSet + `
		 WHERE id = $1 AND state = $2 AND version = $3`
	args := append([]any{d.ID, string(expectedState), expectedVersion, string(d.State), content, sigs, d.UpdatedAt, d.SignedAt}, extraArgs...)

	err = s.tx.Run(ctx, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return s.staleWrite(ctx, tx, d.ID, expectedState)
		}
		return insertAudit(ctx, tx, audit)
	})
	if err != nil {
		if isStaleWrite(err) {
			return err
		}
		return translate("save "+s.table, err)
	}
	d.Version = expectedVersion + 1
	return nil
}

// staleWrite explica por qué la escritura condicional no aplicó.
func (s docStore) staleWrite(ctx context.Context, tx pgx.Tx, id string, expectedState entity.DocState) error {
	var state string
	err := tx.QueryRow(ctx, `SELECT state FROM `+s.table+` WHERE id = $1`, id).Scan(&state)
	if isNoRows(err) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	if entity.DocState(state) == entity.DocStateSigned && expectedState == entity.DocStateDraft {
		return domain.ErrAlreadySigned
	}
	return domain.ErrConflict
}

func isStaleWrite(err error) bool {
	return errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrAlreadySigned) || errors.Is(err, domain.ErrConflict)
}

func insertAudit(ctx context.Context, q Querier, a *entity.DocumentAudit) error {
	if a == nil {
		return nil
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	_, err := q.Exec(ctx, `
		INSERT INTO document_audit (id, doc_kind, document_id, action, actor_id, note, signature_digest, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, string(a.Kind), a.DocumentID, a.Action, a.ActorID, a.Note, a.SignatureDigest, a.CreatedAt)
	return err
}

// ── HPT / Anexo Bravo ──────────────────────────────────────────────────────

// PlanningRepo documentos de planificación; únicos por (faena, tipo).
type PlanningRepo struct {
	docStore
}

// NewPlanningRepository construye el adaptador.
func NewPlanningRepository(pool *pgxpool.Pool) *PlanningRepo {
	return &PlanningRepo{newDocStore(pool, "planning_documents")}
}

func scanPlanning(s pgxScanner) (*entity.PlanningDocument, error) {
	var (
		row  docRow
		p    entity.PlanningDocument
		kind string
	)
	if err := s.Scan(append(row.dest(), &p.OperationID, &kind, &p.CrewID)...); err != nil {
		return nil, err
	}
	doc, err := row.document(entity.DocKind(kind))
	if err != nil {
		return nil, err
	}
	p.Document = doc
	return &p, nil
}

func (r *PlanningRepo) Create(ctx context.Context, d *entity.PlanningDocument) error {
	content, sigs, err := encodeDoc(&d.Document)
	if err != nil {
		return domain.Infra("insert planning document", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO planning_documents (`+docColumns+`, operation_id, kind, crew_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		d.ID, d.CompanyID, string(d.State), content, sigs, d.Version, d.CreatedBy, d.CreatedAt, d.UpdatedAt, d.SignedAt,
		d.OperationID, string(d.Kind), d.CrewID)
	return translate("insert planning document", err)
}

func (r *PlanningRepo) GetByID(ctx context.Context, id string) (*entity.PlanningDocument, error) {
	return getOne(ctx, "get planning document", func() (*entity.PlanningDocument, error) {
		return scanPlanning(r.pool.QueryRow(ctx, `
			SELECT `+docColumns+`, operation_id, kind, crew_id
			  FROM planning_documents WHERE id = $1`, id))
	})
}

func (r *PlanningRepo) GetByOperation(ctx context.Context, operationID string, kind entity.DocKind) (*entity.PlanningDocument, error) {
	return getOne(ctx, "get planning document", func() (*entity.PlanningDocument, error) {
		return scanPlanning(r.pool.QueryRow(ctx, `
			SELECT `+docColumns+`, operation_id, kind, crew_id
			  FROM planning_documents WHERE operation_id = $1 AND kind = $2`, operationID, string(kind)))
	})
}

func (r *PlanningRepo) Save(ctx context.Context, d *entity.PlanningDocument, expectedState entity.DocState, expectedVersion int, audit *entity.DocumentAudit) error {
	return r.save(ctx, &d.Document, expectedState, expectedVersion, audit, "")
}

// ── Bitácora de supervisor ─────────────────────────────────────────────────

// SupervisorLogRepo bitácoras de supervisor; una por inmersión. El snapshot del equipo va en JSONB.
type SupervisorLogRepo struct {
	docStore
}

// NewSupervisorLogRepository construye el adaptador.
func NewSupervisorLogRepository(pool *pgxpool.Pool) *SupervisorLogRepo {
	return &SupervisorLogRepo{newDocStore(pool, "supervisor_logs")}
}

func scanSupervisorLog(s pgxScanner) (*entity.SupervisorLog, error) {
	var (
		row      docRow
		sl       entity.SupervisorLog
		snapshot []byte
	)
	if err := s.Scan(append(row.dest(), &sl.ImmersionID, &sl.CrewID, &snapshot)...); err != nil {
		return nil, err
	}
	doc, err := row.document(entity.DocKindSupervisorLog)
	if err != nil {
		return nil, err
	}
	sl.Document = doc
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &sl.Snapshot); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
	}
	return &sl, nil
}

func encodeSnapshot(members []entity.CrewMember) (string, error) {
	if members == nil {
		members = []entity.CrewMember{}
	}
	raw, err := json.Marshal(members)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return string(raw), nil
}

func (r *SupervisorLogRepo) Create(ctx context.Context, sl *entity.SupervisorLog) error {
	content, sigs, err := encodeDoc(&sl.Document)
	if err != nil {
		return domain.Infra("insert supervisor log", err)
	}
	snapshot, err := encodeSnapshot(sl.Snapshot)
	if err != nil {
		return domain.Infra("insert supervisor log", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO supervisor_logs (`+docColumns+`, immersion_id, crew_id, snapshot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		sl.ID, sl.CompanyID, string(sl.State), content, sigs, sl.Version, sl.CreatedBy, sl.CreatedAt, sl.UpdatedAt, sl.SignedAt,
		sl.ImmersionID, sl.CrewID, snapshot)
	return translate("insert supervisor log", err)
}

func (r *SupervisorLogRepo) GetByID(ctx context.Context, id string) (*entity.SupervisorLog, error) {
	return getOne(ctx, "get supervisor log", func() (*entity.SupervisorLog, error) {
		return scanSupervisorLog(r.pool.QueryRow(ctx, `
			SELECT `+docColumns+`, immersion_id, crew_id, snapshot
			  FROM supervisor_logs WHERE id = $1`, id))
	})
}

func (r *SupervisorLogRepo) GetByImmersion(ctx context.Context, immersionID string) (*entity.SupervisorLog, error) {
	return getOne(ctx, "get supervisor log", func() (*entity.SupervisorLog, error) {
		return scanSupervisorLog(r.pool.QueryRow(ctx, `
			SELECT `+docColumns+`, immersion_id, crew_id, snapshot
			  FROM supervisor_logs WHERE immersion_id = $1`, immersionID))
	})
}

func (r *SupervisorLogRepo) Save(ctx context.Context, sl *entity.SupervisorLog, expectedState entity.DocState, expectedVersion int, audit *entity.DocumentAudit) error {
	snapshot, err := encodeSnapshot(sl.Snapshot)
	if err != nil {
		return domain.Infra("save supervisor log", err)
	}
	return r.save(ctx, &sl.Document, expectedState, expectedVersion, audit,
		`, crew_id = $9, snapshot = $10`, sl.CrewID, snapshot)
}

// ── Bitácora de buzo ───────────────────────────────────────────────────────

// DiverLogRepo bitácoras individuales; únicas por (inmersión, buzo).
type DiverLogRepo struct {
	docStore
}

// NewDiverLogRepository construye el adaptador.
func NewDiverLogRepository(pool *pgxpool.Pool) *DiverLogRepo {
	return &DiverLogRepo{newDocStore(pool, "diver_logs")}
}

func scanDiverLog(s pgxScanner) (*entity.DiverLog, error) {
	var (
		row docRow
		dl  entity.DiverLog
	)
	if err := s.Scan(append(row.dest(), &dl.ImmersionID, &dl.DiverID)...); err != nil {
		return nil, err
	}
	doc, err := row.document(entity.DocKindDiverLog)
	if err != nil {
		return nil, err
	}
	dl.Document = doc
	return &dl, nil
}

// Create inserta; la restricción diver_logs_immersion_diver_key produce ErrDuplicate.
func (r *DiverLogRepo) Create(ctx context.Context, dl *entity.DiverLog) error {
	content, sigs, err := encodeDoc(&dl.Document)
	if err != nil {
		return domain.Infra("insert diver log", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO diver_logs (`+docColumns+`, immersion_id, diver_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		dl.ID, dl.CompanyID, string(dl.State), content, sigs, dl.Version, dl.CreatedBy, dl.CreatedAt, dl.UpdatedAt, dl.SignedAt,
		dl.ImmersionID, dl.DiverID)
	return translate("insert diver log", err)
}

func (r *DiverLogRepo) GetByID(ctx context.Context, id string) (*entity.DiverLog, error) {
	return getOne(ctx, "get diver log", func() (*entity.DiverLog, error) {
		return scanDiverLog(r.pool.QueryRow(ctx, `
			SELECT `+docColumns+`, immersion_id, diver_id FROM diver_logs WHERE id = $1`, id))
	})
}

func (r *DiverLogRepo) Get(ctx context.Context, immersionID, diverID string) (*entity.DiverLog, error) {
	return getOne(ctx, "get diver log", func() (*entity.DiverLog, error) {
		return scanDiverLog(r.pool.QueryRow(ctx, `
			SELECT `+docColumns+`, immersion_id, diver_id
			  FROM diver_logs WHERE immersion_id = $1 AND diver_id = $2`, immersionID, diverID))
	})
}

func (r *DiverLogRepo) ListByImmersion(ctx context.Context, immersionID string) ([]*entity.DiverLog, error) {
	return read(ctx, "list diver logs", func() ([]*entity.DiverLog, error) {
		rows, err := r.pool.Query(ctx, `
			SELECT `+docColumns+`, immersion_id, diver_id
			  FROM diver_logs WHERE immersion_id = $1
			 ORDER BY created_at, id`, immersionID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var list []*entity.DiverLog
		for rows.Next() {
			dl, err := scanDiverLog(rows)
			if err != nil {
				return nil, err
			}
			list = append(list, dl)
		}
		return list, rows.Err()
	})
}

func (r *DiverLogRepo) Save(ctx context.Context, dl *entity.DiverLog, expectedState entity.DocState, expectedVersion int, audit *entity.DocumentAudit) error {
	return r.save(ctx, &dl.Document, expectedState, expectedVersion, audit, "")
}

// ── Auditoría ──────────────────────────────────────────────────────────────

// AuditRepo lectura de document_audit; las escrituras van dentro de Save.
type AuditRepo struct {
	pool *pgxpool.Pool
}

// NewAuditRepository construye el adaptador.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// ListByDocument auditoría del documento en orden cronológico.
func (r *AuditRepo) ListByDocument(ctx context.Context, kind entity.DocKind, documentID string) ([]*entity.DocumentAudit, error) {
	return read(ctx, "list document audit", func() ([]*entity.DocumentAudit, error) {
		rows, err := r.pool.Query(ctx, `
			SELECT id, doc_kind, document_id, action, actor_id, note, signature_digest, created_at
			  FROM document_audit
			 WHERE doc_kind = $1 AND document_id = $2
			 ORDER BY created_at, id`, string(kind), documentID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var list []*entity.DocumentAudit
		for rows.Next() {
			var (
				a entity.DocumentAudit
				k string
			)
			if err := rows.Scan(&a.ID, &k, &a.DocumentID, &a.Action, &a.ActorID, &a.Note, &a.SignatureDigest, &a.CreatedAt); err != nil {
				return nil, err
			}
			a.Kind = entity.DocKind(k)
			list = append(list, &a)
		}
		return list, rows.Err()
	})
}
