package documents

import (
	"context"
	"strconv"
	"strings"

	"github.com/jhoicas/Buceo-api/internal/application/dto"
	"github.com/jhoicas/Buceo-api/internal/application/ports"
	"github.com/jhoicas/Buceo-api/internal/domain"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
	"github.com/jhoicas/Buceo-api/internal/domain/workflow"
)

// record vista uniforme sobre los tres tipos persistidos; doc apunta al Document embebido.
type record struct {
	doc         *entity.Document
	operationID string
	immersionID string
	diverID     string
	crewID      string
	supLog      *entity.SupervisorLog
	save        func(ctx context.Context, state entity.DocState, version int, audit *entity.DocumentAudit) error
}

func (g *Gate) load(ctx context.Context, kind entity.DocKind, id string) (*record, error) {
	if !kind.Valid() || id == "" {
		return nil, domain.ErrInvalidInput
	}
	switch kind {
	case entity.DocKindHPT, entity.DocKindAnexoBravo:
		d, err := g.repos.Planning.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if d == nil || d.Kind != kind {
			return nil, domain.ErrNotFound
		}
		return &record{
			doc:         &d.Document,
			operationID: d.OperationID,
			crewID:      d.CrewID,
			save: func(ctx context.Context, state entity.DocState, version int, audit *entity.DocumentAudit) error {
				return g.repos.Planning.Save(ctx, d, state, version, audit)
			},
		}, nil
	case entity.DocKindSupervisorLog:
		sl, err := g.repos.SupervisorLogs.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if sl == nil {
			return nil, domain.ErrNotFound
		}
		return supervisorRecord(g, sl), nil
	default:
		dl, err := g.repos.DiverLogs.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if dl == nil {
			return nil, domain.ErrNotFound
		}
		return diverRecord(g, dl), nil
	}
}

func supervisorRecord(g *Gate, sl *entity.SupervisorLog) *record {
	return &record{
		doc:         &sl.Document,
		immersionID: sl.ImmersionID,
		crewID:      sl.CrewID,
		supLog:      sl,
		save: func(ctx context.Context, state entity.DocState, version int, audit *entity.DocumentAudit) error {
			return g.repos.SupervisorLogs.Save(ctx, sl, state, version, audit)
		},
	}
}

func diverRecord(g *Gate, dl *entity.DiverLog) *record {
	return &record{
		doc:         &dl.Document,
		immersionID: dl.ImmersionID,
		diverID:     dl.DiverID,
		save: func(ctx context.Context, state entity.DocState, version int, audit *entity.DocumentAudit) error {
			return g.repos.DiverLogs.Save(ctx, dl, state, version, audit)
		},
	}
}

// GetDocument estado actual del documento.
func (g *Gate) GetDocument(ctx context.Context, actor entity.Actor, kind entity.DocKind, id string) (*dto.DocumentResponse, error) {
	rec, err := g.load(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if !canRead(actor, rec.doc) {
		return nil, domain.ErrNotFound
	}
	return toDocumentResponse(rec), nil
}

// Sign captura una firma. El documento sigue en draft hasta completar todas las casillas del tipo.
// La escritura exige que siga en draft con la misma versión; si otro escritor lo firmó antes, AlreadySigned.
func (g *Gate) Sign(ctx context.Context, actor entity.Actor, kind entity.DocKind, id string, in dto.SignatureRequest) (*dto.DocumentResponse, error) {
	rec, err := g.load(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	doc := rec.doc
	if !canRead(actor, doc) {
		return nil, domain.ErrNotFound
	}
	slot := entity.SignerRole(strings.TrimSpace(in.Slot))
	if err := authorizeSlot(actor, doc, slot, rec.diverID); err != nil {
		return nil, err
	}
	expectedState, expectedVersion := doc.State, doc.Version
	now := g.now()

	signed, err := workflow.ApplySignature(doc, entity.Signature{
		Slot:       slot,
		SignerID:   actor.ID,
		SignerName: strings.TrimSpace(in.SignerName),
		Image:      in.SignatureImage,
		SignedAt:   in.SignedAt,
	}, now)
	if err != nil {
		return nil, err
	}

	if signed && rec.supLog != nil {
		// El snapshot se toma del equipo asignado al momento de firmar y queda fijo con la firma.
		team, err := g.ImmersionTeam(ctx, rec.immersionID)
		if err != nil {
			return nil, err
		}
		if err := teamRequired(team); err != nil {
			return nil, err
		}
		rec.supLog.CrewID = team.Crew.ID
		rec.supLog.Snapshot = append([]entity.CrewMember(nil), team.Crew.Members...)
		rec.crewID = team.Crew.ID
	}

	if err := rec.save(ctx, expectedState, expectedVersion, nil); err != nil {
		return nil, err
	}

	g.log.Info().
		Str("kind", string(kind)).
		Str("document_id", doc.ID).
		Str("slot", string(slot)).
		Str("actor_id", actor.ID).
		Bool("signed", signed).
		Msg("firma registrada")

	if signed {
		g.notifier.Notify(ports.Event{
			Type:       ports.EventDocumentSigned,
			CompanyID:  doc.CompanyID,
			ResourceID: doc.ID,
			Data:       map[string]string{"kind": string(kind)},
		})
		if rec.supLog != nil {
			g.notifier.Notify(ports.Event{
				Type:       ports.EventSupervisorLogSigned,
				CompanyID:  doc.CompanyID,
				ResourceID: rec.immersionID,
				Data: map[string]string{
					"supervisor_log_id": doc.ID,
					"crew_id":           rec.crewID,
					"eligible_divers":   strconv.Itoa(len(workflow.EligibleDivers(rec.supLog))),
				},
			})
		}
	}
	return toDocumentResponse(rec), nil
}

// Annul devuelve un documento firmado a draft. Descarta las firmas (y el snapshot de la bitácora
// de supervisor) y guarda la auditoría en la misma escritura.
func (g *Gate) Annul(ctx context.Context, actor entity.Actor, kind entity.DocKind, id, note string) (*dto.DocumentResponse, error) {
	rec, err := g.load(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	doc := rec.doc
	if actor.CompanyID != doc.CompanyID {
		return nil, domain.ErrNotFound
	}
	expectedState, expectedVersion := doc.State, doc.Version
	audit, err := workflow.Annul(doc, actor, strings.TrimSpace(note), g.now())
	if err != nil {
		return nil, err
	}
	if rec.supLog != nil {
		rec.supLog.Snapshot = nil
	}
	if err := rec.save(ctx, expectedState, expectedVersion, audit); err != nil {
		return nil, err
	}

	g.log.Warn().
		Str("kind", string(kind)).
		Str("document_id", doc.ID).
		Str("actor_id", actor.ID).
		Str("digest", audit.SignatureDigest).
		Msg("firma anulada")
	g.notifier.Notify(ports.Event{
		Type:       ports.EventSignatureAnnulled,
		CompanyID:  doc.CompanyID,
		ResourceID: doc.ID,
		Data:       map[string]string{"kind": string(kind), "actor_id": actor.ID},
	})
	return toDocumentResponse(rec), nil
}

// AuditTrail anulaciones registradas del documento.
func (g *Gate) AuditTrail(ctx context.Context, actor entity.Actor, kind entity.DocKind, id string) ([]*entity.DocumentAudit, error) {
	rec, err := g.load(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if actor.CompanyID != rec.doc.CompanyID {
		return nil, domain.ErrNotFound
	}
	return g.repos.Audits.ListByDocument(ctx, kind, id)
}

func toDocumentResponse(rec *record) *dto.DocumentResponse {
	doc := rec.doc
	out := &dto.DocumentResponse{
		ID:             doc.ID,
		Kind:           string(doc.Kind),
		CompanyID:      doc.CompanyID,
		State:          string(doc.State),
		OperationID:    rec.operationID,
		ImmersionID:    rec.immersionID,
		DiverID:        rec.diverID,
		CrewID:         rec.crewID,
		Content:        doc.Content,
		Signatures:     make([]dto.SignatureResponse, 0, len(doc.Signatures)),
		MissingSigners: []string{},
		Version:        doc.Version,
		SignedAt:       doc.SignedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
	for _, s := range doc.Signatures {
		out.Signatures = append(out.Signatures, dto.SignatureResponse{
			Slot:       string(s.Slot),
			SignerID:   s.SignerID,
			SignerName: s.SignerName,
			SignedAt:   s.SignedAt,
		})
	}
	for _, r := range workflow.MissingSigners(doc) {
		out.MissingSigners = append(out.MissingSigners, string(r))
	}
	if rec.supLog != nil && len(rec.supLog.Snapshot) > 0 {
		out.Snapshot = memberResponses(rec.supLog.Snapshot)
	}
	return out
}

func memberResponses(members []entity.CrewMember) []dto.CrewMemberResponse {
	out := make([]dto.CrewMemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, dto.CrewMemberResponse{PersonID: m.PersonID, Name: m.Name, Role: string(m.Role)})
	}
	return out
}
